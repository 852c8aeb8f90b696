package services

import (
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/cppla/forumapp/models"
	"github.com/cppla/forumapp/utils"
)

// ThreadService manages threads inside channels.
type ThreadService struct {
	db *gorm.DB
}

func NewThreadService(db *gorm.DB) *ThreadService {
	return &ThreadService{db: db}
}

// Create opens a thread in the channel, numbering it after the channel's last.
func (s *ThreadService) Create(a Actor, channel, name, description string) (*models.Thread, error) {
	owner, err := activeUser(s.db, a)
	if err != nil {
		return nil, err
	}
	th := models.Thread{
		OwnerID:     owner.ID,
		ThreadName:  strings.TrimSpace(name),
		Description: strings.TrimSpace(description),
		PubDate:     time.Now(),
	}
	if err := th.Validate(); err != nil {
		return nil, err
	}
	err = s.db.Transaction(func(tx *gorm.DB) error {
		ch, err := getChannel(tx, channel)
		if err != nil {
			return err
		}
		if ch.BannedUsers.Contains(owner.Username) {
			return ErrBanned
		}
		if err := lockRow(tx, &models.Channel{}, ch.ID); err != nil {
			return err
		}
		n, err := nextNumber(tx, &models.Thread{}, "channel_id", ch.ID)
		if err != nil {
			return err
		}
		th.ChannelID, th.Number = ch.ID, n
		if err := th.ValidateUnique(tx); err != nil {
			return err
		}
		if err := tx.Create(&th).Error; err != nil {
			return err
		}
		th.Channel = ch
		return nil
	})
	if err != nil {
		return nil, err
	}
	utils.InvalidateThreadLists(channel)
	th.Owner = owner
	return &th, nil
}

// List returns the channel's threads newest first.
func (s *ThreadService) List(channel string, page, pageSize int) ([]models.Thread, int64, error) {
	ch, err := getChannel(s.db, channel)
	if err != nil {
		return nil, 0, err
	}
	_, size, offset := Paging(page, pageSize)
	var total int64
	if err := s.db.Model(&models.Thread{}).Where("channel_id = ?", ch.ID).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var threads []models.Thread
	err = s.db.Preload("Owner").
		Where("channel_id = ?", ch.ID).
		Order("pub_date DESC").Order("number DESC").
		Offset(offset).Limit(size).
		Find(&threads).Error
	if err != nil {
		return nil, 0, err
	}
	return threads, total, nil
}

// Get returns a thread by its per-channel number, with Channel and Owner set.
func (s *ThreadService) Get(channel string, number int) (*models.Thread, error) {
	return getThread(s.db, channel, number)
}

func getThread(db *gorm.DB, channel string, number int) (*models.Thread, error) {
	ch, err := getChannel(db, channel)
	if err != nil {
		return nil, err
	}
	var th models.Thread
	if err := db.Preload("Owner").Where("channel_id = ? AND number = ?", ch.ID, number).First(&th).Error; err != nil {
		return nil, notFound(err, ErrThreadNotFound)
	}
	th.Channel = ch
	return &th, nil
}

// Delete removes a thread and its comments. The thread's creator, the
// channel's moderators and admins may delete.
func (s *ThreadService) Delete(a Actor, channel string, number int) error {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		a, err := resolve(tx, a)
		if err != nil {
			return err
		}
		th, err := getThread(tx, channel, number)
		if err != nil {
			return err
		}
		isCreator := a.Authenticated() && th.OwnerID == a.UserID
		if !isCreator && !canModerate(a, th.Channel) {
			return ErrForbidden
		}
		return deleteThreads(tx, []uint{th.ID})
	})
	if err != nil {
		return err
	}
	utils.InvalidateThreadLists(channel)
	return nil
}
