package models

import "time"

// UserSettings holds per-user preferences. Exactly one row per user.
type UserSettings struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex" json:"user_id"`
	Signature string    `gorm:"size:255" json:"signature"`
	AvatarURL string    `gorm:"size:512" json:"avatar_url"`
	PageSize  int       `gorm:"not null;default:10" json:"page_size"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	User      *User     `gorm:"foreignKey:UserID" json:"-"`
}

// String returns the owner's username. User must be preloaded.
func (s UserSettings) String() string {
	if s.User == nil {
		return ""
	}
	return s.User.Username
}
