package services

import (
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/cppla/forumapp/models"
)

// CommentService manages comments inside threads.
type CommentService struct {
	db *gorm.DB
}

func NewCommentService(db *gorm.DB) *CommentService {
	return &CommentService{db: db}
}

// Create posts a comment. replyTo, when set, must name a comment of the same thread.
func (s *CommentService) Create(a Actor, channel string, thread int, text string, replyTo *int) (*models.Comment, error) {
	author, err := activeUser(s.db, a)
	if err != nil {
		return nil, err
	}
	c := models.Comment{
		OwnerID: &author.ID,
		Text:    strings.TrimSpace(text),
		ReplyTo: replyTo,
		PubDate: time.Now(),
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	err = s.db.Transaction(func(tx *gorm.DB) error {
		th, err := getThread(tx, channel, thread)
		if err != nil {
			return err
		}
		if th.Channel.BannedUsers.Contains(author.Username) {
			return ErrBanned
		}
		if err := lockRow(tx, &models.Thread{}, th.ID); err != nil {
			return err
		}
		if replyTo != nil {
			var n int64
			if err := tx.Model(&models.Comment{}).Where("thread_id = ? AND number = ?", th.ID, *replyTo).Count(&n).Error; err != nil {
				return err
			}
			if n == 0 {
				return ErrReplyTargetNotFound
			}
		}
		next, err := nextNumber(tx, &models.Comment{}, "thread_id", th.ID)
		if err != nil {
			return err
		}
		c.ThreadID, c.Number = th.ID, next
		if err := c.ValidateUnique(tx); err != nil {
			return err
		}
		if err := tx.Create(&c).Error; err != nil {
			return err
		}
		c.Thread = th
		return nil
	})
	if err != nil {
		return nil, err
	}
	c.Owner = author
	return &c, nil
}

// List returns the thread's comments oldest first.
func (s *CommentService) List(channel string, thread, page, pageSize int) ([]models.Comment, int64, error) {
	th, err := getThread(s.db, channel, thread)
	if err != nil {
		return nil, 0, err
	}
	_, size, offset := Paging(page, pageSize)
	var total int64
	if err := s.db.Model(&models.Comment{}).Where("thread_id = ?", th.ID).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var comments []models.Comment
	err = s.db.Preload("Owner").
		Where("thread_id = ?", th.ID).
		Order("number ASC").
		Offset(offset).Limit(size).
		Find(&comments).Error
	if err != nil {
		return nil, 0, err
	}
	return comments, total, nil
}

// Get returns one comment by thread and comment number.
func (s *CommentService) Get(channel string, thread, number int) (*models.Comment, error) {
	th, err := getThread(s.db, channel, thread)
	if err != nil {
		return nil, err
	}
	var c models.Comment
	if err := s.db.Preload("Owner").Where("thread_id = ? AND number = ?", th.ID, number).First(&c).Error; err != nil {
		return nil, notFound(err, ErrCommentNotFound)
	}
	c.Thread = th
	return &c, nil
}

// Delete removes a single comment. Only the channel's owner, its moderators
// and admins may delete; authors cannot remove their own comments.
func (s *CommentService) Delete(a Actor, channel string, thread, number int) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		a, err := resolve(tx, a)
		if err != nil {
			return err
		}
		th, err := getThread(tx, channel, thread)
		if err != nil {
			return err
		}
		if !canModerate(a, th.Channel) {
			return ErrForbidden
		}
		res := tx.Where("thread_id = ? AND number = ?", th.ID, number).Delete(&models.Comment{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrCommentNotFound
		}
		return nil
	})
}
