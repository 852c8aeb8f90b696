package models

import (
	"sort"
	"strings"
)

// ValidationError maps offending field names to human readable messages.
type ValidationError struct {
	Fields map[string]string
}

// NewValidationError reports a single invalid field.
func NewValidationError(field, msg string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: msg}}
}

// NewUniqueTogetherError reports a collision on a composite unique key; every
// participating field is reported with the same message.
func NewUniqueTogetherError(msg string, fields ...string) *ValidationError {
	e := &ValidationError{Fields: make(map[string]string, len(fields))}
	for _, f := range fields {
		e.Fields[f] = msg
	}
	return e
}

func (e *ValidationError) Error() string {
	keys := e.FieldNames()
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// FieldNames returns the offending fields in sorted order.
func (e *ValidationError) FieldNames() []string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
