package models

import (
	"time"

	"gorm.io/gorm"
)

// User represents a forum participant. Passwords are stored as bcrypt hashes only.
type User struct {
	ID           uint          `gorm:"primaryKey" json:"id"`
	Username     string        `gorm:"size:64;not null;uniqueIndex" json:"username"`
	Email        string        `gorm:"size:255" json:"email"`
	PasswordHash string        `gorm:"size:255" json:"-"`
	Banned       bool          `gorm:"not null;default:false" json:"banned"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
	Settings     *UserSettings `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
}

// BeforeCreate hook ensures timestamps are set even when not provided.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	now := time.Now()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.UpdatedAt = now
	return nil
}

// BeforeUpdate ensures the UpdatedAt timestamp is refreshed.
func (u *User) BeforeUpdate(tx *gorm.DB) error {
	u.UpdatedAt = time.Now()
	return nil
}

func (u User) String() string { return u.Username }

// ValidateUnique reports a username collision with another stored user.
func (u *User) ValidateUnique(db *gorm.DB) error {
	var n int64
	if err := db.Model(&User{}).Where("username = ? AND id <> ?", u.Username, u.ID).Count(&n).Error; err != nil {
		return err
	}
	if n > 0 {
		return NewValidationError("username", "a user with that username already exists")
	}
	return nil
}
