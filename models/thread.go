package models

import (
	"time"
	"unicode/utf8"

	"gorm.io/gorm"
)

const (
	MaxThreadNameLen        = 128
	MaxThreadDescriptionLen = 4000
)

// Thread is a discussion topic inside a channel. Number is dense per channel
// and starts at 0; it is what URLs and clients call the thread id.
type Thread struct {
	ID          uint      `gorm:"primaryKey" json:"-"`
	ChannelID   uint      `gorm:"not null;uniqueIndex:idx_threads_channel_number,priority:1" json:"-"`
	Number      int       `gorm:"not null;uniqueIndex:idx_threads_channel_number,priority:2" json:"thread_id"`
	OwnerID     uint      `gorm:"index;not null" json:"owner_id"`
	ThreadName  string    `gorm:"size:128;not null" json:"thread_name"`
	Description string    `gorm:"type:text" json:"description"`
	PubDate     time.Time `gorm:"index;not null" json:"pub_date"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Channel     *Channel  `gorm:"foreignKey:ChannelID" json:"-"`
	Owner       *User     `gorm:"foreignKey:OwnerID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"owner,omitempty"`
	Comments    []Comment `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
}

func (t Thread) String() string { return t.ThreadName }

// IsRecent reports whether the thread was published within the last day.
func (t *Thread) IsRecent() bool { return t.RecentAt(time.Now()) }

// RecentAt is IsRecent evaluated at a fixed instant.
func (t *Thread) RecentAt(now time.Time) bool { return publishedRecently(t.PubDate, now) }

// Validate checks field-level constraints.
func (t *Thread) Validate() error {
	n := utf8.RuneCountInString(t.ThreadName)
	if n == 0 {
		return NewValidationError("thread_name", "thread name cannot be empty")
	}
	if n > MaxThreadNameLen {
		return NewValidationError("thread_name", "thread name is too long")
	}
	if utf8.RuneCountInString(t.Description) > MaxThreadDescriptionLen {
		return NewValidationError("description", "description is too long")
	}
	return nil
}

// ValidateUnique reports a (channel, thread_id) pair already in use.
func (t *Thread) ValidateUnique(db *gorm.DB) error {
	var n int64
	if err := db.Model(&Thread{}).
		Where("channel_id = ? AND number = ? AND id <> ?", t.ChannelID, t.Number, t.ID).
		Count(&n).Error; err != nil {
		return err
	}
	if n > 0 {
		return NewUniqueTogetherError("thread with this channel and thread id already exists", "channel", "thread_id")
	}
	return nil
}
