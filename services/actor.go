package services

import (
	"gorm.io/gorm"

	"github.com/cppla/forumapp/models"
)

// Actor identifies who performs an operation. The zero value is anonymous.
type Actor struct {
	UserID   uint
	Username string
	Admin    bool
}

// Authenticated reports whether the actor is a logged-in user.
func (a Actor) Authenticated() bool { return a.UserID != 0 }

// System is the actor used by the admin shell.
func System() Actor { return Actor{Username: "system", Admin: true} }

// activeUser loads the acting user and rejects anonymous, site-banned or
// stale actors. A token for a deleted account, or for an earlier account that
// held the same name, no longer identifies anyone.
func activeUser(db *gorm.DB, a Actor) (*models.User, error) {
	if !a.Authenticated() {
		return nil, ErrUnauthenticated
	}
	var u models.User
	if err := db.First(&u, a.UserID).Error; err != nil {
		if isNotFound(err) {
			return nil, ErrUnauthenticated
		}
		return nil, err
	}
	if a.Username != "" && u.Username != a.Username {
		return nil, ErrUnauthenticated
	}
	if u.Banned {
		return nil, ErrBanned
	}
	return &u, nil
}

// resolve replaces the actor's claimed identity with the stored one before a
// permission check. The shell's system actor has no account and passes as is.
func resolve(db *gorm.DB, a Actor) (Actor, error) {
	if a.Admin && !a.Authenticated() {
		return a, nil
	}
	u, err := activeUser(db, a)
	if err != nil {
		return Actor{}, err
	}
	return Actor{UserID: u.ID, Username: u.Username, Admin: a.Admin}, nil
}

// Paging normalises page/pageSize to sane bounds and returns the row offset.
func Paging(page, pageSize int) (int, int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	return page, pageSize, (page - 1) * pageSize
}

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)
