package services

import (
	"errors"

	"gorm.io/gorm"
)

var (
	ErrUserNotFound        = errors.New("user not found")
	ErrChannelNotFound     = errors.New("channel not found")
	ErrThreadNotFound      = errors.New("thread not found")
	ErrCommentNotFound     = errors.New("comment not found")
	ErrReplyTargetNotFound = errors.New("reply target not found in this thread")
	ErrInvalidCredentials  = errors.New("invalid username or password")
	ErrUnauthenticated     = errors.New("authentication required")
	ErrForbidden           = errors.New("forbidden")
	ErrBanned              = errors.New("user is banned")
)

// notFound swaps gorm's record-not-found for the given sentinel.
func notFound(err, sentinel error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return sentinel
	}
	return err
}

func isNotFound(err error) bool { return errors.Is(err, gorm.ErrRecordNotFound) }
