package models

import (
	"time"
	"unicode/utf8"

	"gorm.io/gorm"
)

const (
	// MaxChannelNameLen bounds channel names, which also appear in URLs.
	MaxChannelNameLen        = 64
	MaxChannelDescriptionLen = 4000
)

// Channel is a named container of threads owned by one user.
type Channel struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	ChannelName string     `gorm:"size:64;not null;uniqueIndex" json:"channel_name"`
	OwnerID     uint       `gorm:"index;not null" json:"owner_id"`
	Description string     `gorm:"type:text" json:"description"`
	PubDate     time.Time  `gorm:"index;not null" json:"pub_date"`
	Moderators  StringList `gorm:"type:text" json:"moderators"`
	BannedUsers StringList `gorm:"type:text" json:"banned_users"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	Owner       *User      `gorm:"foreignKey:OwnerID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"owner,omitempty"`
	Threads     []Thread   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
}

func (c Channel) String() string { return c.ChannelName }

// IsRecent reports whether the channel was published within the last day.
func (c *Channel) IsRecent() bool { return c.RecentAt(time.Now()) }

// RecentAt is IsRecent evaluated at a fixed instant.
func (c *Channel) RecentAt(now time.Time) bool { return publishedRecently(c.PubDate, now) }

// Validate checks field-level constraints.
func (c *Channel) Validate() error {
	n := utf8.RuneCountInString(c.ChannelName)
	if n == 0 {
		return NewValidationError("channel_name", "channel name cannot be empty")
	}
	if n > MaxChannelNameLen {
		return NewValidationError("channel_name", "channel name is too long")
	}
	if !validSlug(c.ChannelName) {
		return NewValidationError("channel_name", "channel name may only contain letters, digits, '-' and '_'")
	}
	if utf8.RuneCountInString(c.Description) > MaxChannelDescriptionLen {
		return NewValidationError("description", "description is too long")
	}
	return nil
}

// ValidateUnique reports a channel name already taken by another channel.
func (c *Channel) ValidateUnique(db *gorm.DB) error {
	var n int64
	if err := db.Model(&Channel{}).Where("channel_name = ? AND id <> ?", c.ChannelName, c.ID).Count(&n).Error; err != nil {
		return err
	}
	if n > 0 {
		return NewValidationError("channel_name", "a channel with this name already exists")
	}
	return nil
}

func validSlug(s string) bool {
	for _, r := range s {
		if r == '-' || r == '_' {
			continue
		}
		if (r >= '0' && r <= '9') || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
			continue
		}
		return false
	}
	return true
}
