package services

import (
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/cppla/forumapp/models"
	"github.com/cppla/forumapp/utils"
)

// ChannelService manages channels, their moderators and channel-level bans.
type ChannelService struct {
	db *gorm.DB
}

func NewChannelService(db *gorm.DB) *ChannelService {
	return &ChannelService{db: db}
}

// Create publishes a new channel owned by the actor.
func (s *ChannelService) Create(a Actor, name, description string) (*models.Channel, error) {
	owner, err := activeUser(s.db, a)
	if err != nil {
		return nil, err
	}
	ch := models.Channel{
		ChannelName: strings.TrimSpace(name),
		OwnerID:     owner.ID,
		Description: strings.TrimSpace(description),
		PubDate:     time.Now(),
		Moderators:  models.StringList{},
		BannedUsers: models.StringList{},
	}
	if err := ch.Validate(); err != nil {
		return nil, err
	}
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := ch.ValidateUnique(tx); err != nil {
			return err
		}
		return tx.Create(&ch).Error
	})
	if err != nil {
		return nil, err
	}
	utils.InvalidateChannelLists()
	ch.Owner = owner
	return &ch, nil
}

// List returns channels newest first.
func (s *ChannelService) List(page, pageSize int) ([]models.Channel, int64, error) {
	_, size, offset := Paging(page, pageSize)
	var total int64
	if err := s.db.Model(&models.Channel{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var channels []models.Channel
	err := s.db.Preload("Owner").
		Order("pub_date DESC").Order("id DESC").
		Offset(offset).Limit(size).
		Find(&channels).Error
	if err != nil {
		return nil, 0, err
	}
	return channels, total, nil
}

// Get looks a channel up by name.
func (s *ChannelService) Get(name string) (*models.Channel, error) {
	return getChannel(s.db.Preload("Owner"), name)
}

func getChannel(db *gorm.DB, name string) (*models.Channel, error) {
	var ch models.Channel
	if err := db.Where("channel_name = ?", name).First(&ch).Error; err != nil {
		return nil, notFound(err, ErrChannelNotFound)
	}
	return &ch, nil
}

// CanModerate reports whether the actor may moderate content in the channel.
func (s *ChannelService) CanModerate(a Actor, ch *models.Channel) bool {
	a, err := resolve(s.db, a)
	return err == nil && canModerate(a, ch)
}

func canModerate(a Actor, ch *models.Channel) bool {
	if a.Admin {
		return true
	}
	if !a.Authenticated() {
		return false
	}
	return ch.OwnerID == a.UserID || ch.Moderators.Contains(a.Username)
}

func canManage(a Actor, ch *models.Channel) bool {
	return a.Admin || (a.Authenticated() && ch.OwnerID == a.UserID)
}

// ChannelUpdate carries optional channel changes; nil fields are left alone.
type ChannelUpdate struct {
	Description *string
	Moderators  *[]string
}

// Update changes the description or moderator list. Owner or admin only.
func (s *ChannelService) Update(a Actor, name string, in ChannelUpdate) (*models.Channel, error) {
	var out *models.Channel
	err := s.db.Transaction(func(tx *gorm.DB) error {
		a, err := resolve(tx, a)
		if err != nil {
			return err
		}
		ch, err := getChannel(tx, name)
		if err != nil {
			return err
		}
		if !canManage(a, ch) {
			return ErrForbidden
		}
		updates := map[string]interface{}{}
		if in.Description != nil {
			ch.Description = strings.TrimSpace(*in.Description)
			if err := ch.Validate(); err != nil {
				return err
			}
			updates["description"] = ch.Description
		}
		if in.Moderators != nil {
			mods, err := resolveModerators(tx, ch, *in.Moderators)
			if err != nil {
				return err
			}
			ch.Moderators = mods
			updates["moderators"] = mods
		}
		if len(updates) > 0 {
			if err := tx.Model(&models.Channel{}).Where("id = ?", ch.ID).Updates(updates).Error; err != nil {
				return err
			}
		}
		out = ch
		return nil
	})
	if err != nil {
		return nil, err
	}
	utils.InvalidateChannelLists()
	return out, nil
}

// resolveModerators dedups the names, drops the owner and requires every
// remaining name to be an existing user.
func resolveModerators(tx *gorm.DB, ch *models.Channel, names []string) (models.StringList, error) {
	var owner models.User
	if err := tx.First(&owner, ch.OwnerID).Error; err != nil && !isNotFound(err) {
		return nil, err
	}
	mods := models.StringList{}
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" || n == owner.Username {
			continue
		}
		mods = mods.With(n)
	}
	if len(mods) == 0 {
		return mods, nil
	}
	var found int64
	if err := tx.Model(&models.User{}).Where("username IN ?", []string(mods)).Count(&found).Error; err != nil {
		return nil, err
	}
	if int(found) != len(mods) {
		return nil, models.NewValidationError("moderators", "every moderator must be an existing user")
	}
	return mods, nil
}

// Delete removes the channel with its threads and comments. Owner or admin only.
func (s *ChannelService) Delete(a Actor, name string) error {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		a, err := resolve(tx, a)
		if err != nil {
			return err
		}
		ch, err := getChannel(tx, name)
		if err != nil {
			return err
		}
		if !canManage(a, ch) {
			return ErrForbidden
		}
		return deleteChannel(tx, ch.ID)
	})
	if err != nil {
		return err
	}
	utils.InvalidateChannelLists()
	utils.InvalidateThreadLists(name)
	return nil
}

func deleteChannel(tx *gorm.DB, id uint) error {
	var threadIDs []uint
	if err := tx.Model(&models.Thread{}).Where("channel_id = ?", id).Pluck("id", &threadIDs).Error; err != nil {
		return err
	}
	if err := deleteThreads(tx, threadIDs); err != nil {
		return err
	}
	return tx.Delete(&models.Channel{}, id).Error
}

// Ban bars a user from posting in the channel. The owner cannot be banned.
func (s *ChannelService) Ban(a Actor, name, username string) (*models.Channel, error) {
	return s.setBan(a, name, username, true)
}

// Unban lifts a channel ban.
func (s *ChannelService) Unban(a Actor, name, username string) (*models.Channel, error) {
	return s.setBan(a, name, username, false)
}

func (s *ChannelService) setBan(a Actor, name, username string, ban bool) (*models.Channel, error) {
	var out *models.Channel
	err := s.db.Transaction(func(tx *gorm.DB) error {
		a, err := resolve(tx, a)
		if err != nil {
			return err
		}
		ch, err := getChannel(tx, name)
		if err != nil {
			return err
		}
		if !canModerate(a, ch) {
			return ErrForbidden
		}
		var target models.User
		if err := tx.Where("username = ?", username).First(&target).Error; err != nil {
			return notFound(err, ErrUserNotFound)
		}
		if ban {
			if target.ID == ch.OwnerID {
				return ErrForbidden
			}
			ch.BannedUsers = ch.BannedUsers.With(target.Username)
		} else {
			ch.BannedUsers = ch.BannedUsers.Without(target.Username)
		}
		if err := tx.Model(&models.Channel{}).Where("id = ?", ch.ID).Update("banned_users", ch.BannedUsers).Error; err != nil {
			return err
		}
		out = ch
		return nil
	})
	if err != nil {
		return nil, err
	}
	utils.InvalidateChannelLists()
	return out, nil
}
