package models

import (
	"time"
	"unicode/utf8"

	"gorm.io/gorm"
)

const MaxCommentLen = 10000

// Comment is a message inside a thread. Number is dense per thread and starts
// at 0. OwnerID becomes nil when the author's account is deleted.
type Comment struct {
	ID        uint      `gorm:"primaryKey" json:"-"`
	ThreadID  uint      `gorm:"not null;uniqueIndex:idx_comments_thread_number,priority:1" json:"-"`
	Number    int       `gorm:"not null;uniqueIndex:idx_comments_thread_number,priority:2" json:"comment_id"`
	OwnerID   *uint     `gorm:"index" json:"owner_id"`
	Text      string    `gorm:"type:text;not null" json:"text"`
	ReplyTo   *int      `json:"reply_to,omitempty"`
	PubDate   time.Time `gorm:"index;not null" json:"pub_date"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Thread    *Thread   `gorm:"foreignKey:ThreadID" json:"-"`
	Owner     *User     `gorm:"foreignKey:OwnerID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"owner,omitempty"`
}

func (c Comment) String() string { return c.Text }

// IsRecent reports whether the comment was published within the last day.
func (c *Comment) IsRecent() bool { return c.RecentAt(time.Now()) }

// RecentAt is IsRecent evaluated at a fixed instant.
func (c *Comment) RecentAt(now time.Time) bool { return publishedRecently(c.PubDate, now) }

// Validate checks field-level constraints.
func (c *Comment) Validate() error {
	n := utf8.RuneCountInString(c.Text)
	if n == 0 {
		return NewValidationError("text", "comment cannot be empty")
	}
	if n > MaxCommentLen {
		return NewValidationError("text", "comment is too long")
	}
	return nil
}

// ValidateUnique reports a (thread, comment_id) pair already in use.
func (c *Comment) ValidateUnique(db *gorm.DB) error {
	var n int64
	if err := db.Model(&Comment{}).
		Where("thread_id = ? AND number = ? AND id <> ?", c.ThreadID, c.Number, c.ID).
		Count(&n).Error; err != nil {
		return err
	}
	if n > 0 {
		return NewUniqueTogetherError("comment with this thread and comment id already exists", "thread", "comment_id")
	}
	return nil
}
