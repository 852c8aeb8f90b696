package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
)

// StringList is a list of strings persisted as a JSON array in a text column.
type StringList []string

// Value implements driver.Valuer.
func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]string(l))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (l *StringList) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*l = StringList{}
		return nil
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("string list: unsupported source type %T", src)
	}
	if len(strings.TrimSpace(string(raw))) == 0 {
		*l = StringList{}
		return nil
	}
	var out []string
	if err := json.Unmarshal(raw, &out); err != nil {
		return fmt.Errorf("string list: %w", err)
	}
	*l = out
	return nil
}

// Contains reports whether name is in the list. Usernames are case-sensitive.
func (l StringList) Contains(name string) bool {
	for _, v := range l {
		if v == name {
			return true
		}
	}
	return false
}

// Without returns a copy of the list with every occurrence of name removed.
func (l StringList) Without(name string) StringList {
	out := make(StringList, 0, len(l))
	for _, v := range l {
		if v != name {
			out = append(out, v)
		}
	}
	return out
}

// With appends name unless it is already present.
func (l StringList) With(name string) StringList {
	if l.Contains(name) {
		return l
	}
	out := make(StringList, len(l), len(l)+1)
	copy(out, l)
	return append(out, name)
}
