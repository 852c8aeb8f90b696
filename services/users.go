package services

import (
	"strings"
	"unicode/utf8"

	"gorm.io/gorm"

	"github.com/cppla/forumapp/config"
	"github.com/cppla/forumapp/models"
	"github.com/cppla/forumapp/utils"
)

const (
	MinUsernameLen = 2
	MaxUsernameLen = 32
)

// UserService owns accounts, their settings and the account deletion cascade.
type UserService struct {
	db *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

// Register is public sign-up. Names listed as admins in the configuration are
// reserved; those accounts are created from the admin shell with Create.
func (s *UserService) Register(username, email, password string) (*models.User, error) {
	if config.Get().IsAdmin(strings.TrimSpace(username)) {
		return nil, models.NewValidationError("username", "this username is reserved")
	}
	return s.Create(username, email, password)
}

// Create makes a user with a bcrypt password hash and default settings.
func (s *UserService) Create(username, email, password string) (*models.User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)
	if err := validateUsername(username); err != nil {
		return nil, err
	}
	if n := len(password); n < utils.MinPasswordLen || n > utils.MaxPasswordLen {
		return nil, models.NewValidationError("password", "password must be between 6 and 72 bytes")
	}
	if email != "" && !strings.Contains(email, "@") {
		return nil, models.NewValidationError("email", "enter a valid email address")
	}
	hash, err := utils.HashPassword(password)
	if err != nil {
		return nil, err
	}
	user := models.User{Username: username, Email: email, PasswordHash: hash}
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := user.ValidateUnique(tx); err != nil {
			return err
		}
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		return tx.Create(&models.UserSettings{UserID: user.ID, PageSize: DefaultPageSize}).Error
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func validateUsername(name string) error {
	n := utf8.RuneCountInString(name)
	if n < MinUsernameLen || n > MaxUsernameLen {
		return models.NewValidationError("username", "username must be between 2 and 32 characters")
	}
	for _, r := range name {
		if r == '-' || r == '_' || (r >= '0' && r <= '9') || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
			continue
		}
		return models.NewValidationError("username", "username may only contain letters, digits, '-' and '_'")
	}
	return nil
}

// Authenticate checks credentials. Site-banned users cannot log in.
func (s *UserService) Authenticate(username, password string) (*models.User, error) {
	var user models.User
	if err := s.db.Where("username = ?", strings.TrimSpace(username)).First(&user).Error; err != nil {
		return nil, notFound(err, ErrInvalidCredentials)
	}
	if !utils.CheckPassword(user.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	if user.Banned {
		return nil, ErrBanned
	}
	return &user, nil
}

func (s *UserService) Get(id uint) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, id).Error; err != nil {
		return nil, notFound(err, ErrUserNotFound)
	}
	return &user, nil
}

func (s *UserService) GetByUsername(username string) (*models.User, error) {
	var user models.User
	if err := s.db.Where("username = ?", username).First(&user).Error; err != nil {
		return nil, notFound(err, ErrUserNotFound)
	}
	return &user, nil
}

// List returns users oldest first together with the total count.
func (s *UserService) List(page, pageSize int) ([]models.User, int64, error) {
	_, size, offset := Paging(page, pageSize)
	var total int64
	if err := s.db.Model(&models.User{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var users []models.User
	if err := s.db.Order("id ASC").Offset(offset).Limit(size).Find(&users).Error; err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

// SetBanned toggles the site-wide ban flag.
func (s *UserService) SetBanned(username string, banned bool) (*models.User, error) {
	user, err := s.GetByUsername(username)
	if err != nil {
		return nil, err
	}
	if err := s.db.Model(user).Update("banned", banned).Error; err != nil {
		return nil, err
	}
	user.Banned = banned
	invalidateLists()
	return user, nil
}

// Settings returns the user's settings row, creating it on first access.
func (s *UserService) Settings(userID uint) (*models.UserSettings, error) {
	user, err := s.Get(userID)
	if err != nil {
		return nil, err
	}
	settings := models.UserSettings{UserID: user.ID, PageSize: DefaultPageSize}
	if err := s.db.Where(models.UserSettings{UserID: user.ID}).FirstOrCreate(&settings).Error; err != nil {
		return nil, err
	}
	settings.User = user
	return &settings, nil
}

// SettingsUpdate carries optional settings changes; nil fields are left alone.
type SettingsUpdate struct {
	Signature *string
	AvatarURL *string
	PageSize  *int
}

func (s *UserService) UpdateSettings(userID uint, in SettingsUpdate) (*models.UserSettings, error) {
	settings, err := s.Settings(userID)
	if err != nil {
		return nil, err
	}
	updates := map[string]interface{}{}
	if in.Signature != nil {
		sig := strings.TrimSpace(*in.Signature)
		if utf8.RuneCountInString(sig) > 255 {
			return nil, models.NewValidationError("signature", "signature is too long")
		}
		updates["signature"] = sig
		settings.Signature = sig
	}
	if in.AvatarURL != nil {
		u := strings.TrimSpace(*in.AvatarURL)
		if u != "" && !strings.HasPrefix(u, "https://") && !strings.HasPrefix(u, "http://") {
			return nil, models.NewValidationError("avatar_url", "avatar url must be http or https")
		}
		updates["avatar_url"] = u
		settings.AvatarURL = u
	}
	if in.PageSize != nil {
		if *in.PageSize < 1 || *in.PageSize > MaxPageSize {
			return nil, models.NewValidationError("page_size", "page size must be between 1 and 100")
		}
		updates["page_size"] = *in.PageSize
		settings.PageSize = *in.PageSize
	}
	if len(updates) == 0 {
		return settings, nil
	}
	if err := s.db.Model(&models.UserSettings{}).Where("id = ?", settings.ID).Updates(updates).Error; err != nil {
		return nil, err
	}
	return settings, nil
}

// Delete removes a user. Owned channels pass to the first moderator that still
// exists, who leaves the moderator list; channels without one are removed with
// their contents. Threads the user started go with their comments. Comments in
// other threads stay with a nil owner.
func (s *UserService) Delete(id uint) error {
	if err := s.db.Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.First(&user, id).Error; err != nil {
			return notFound(err, ErrUserNotFound)
		}

		var owned []models.Channel
		if err := tx.Where("owner_id = ?", user.ID).Order("id ASC").Find(&owned).Error; err != nil {
			return err
		}
		var doomed []uint
		for i := range owned {
			ch := &owned[i]
			heir, err := firstSurvivingModerator(tx, ch, user.Username)
			if err != nil {
				return err
			}
			if heir == nil {
				doomed = append(doomed, ch.ID)
				continue
			}
			mods := ch.Moderators.Without(heir.Username).Without(user.Username)
			if err := tx.Model(&models.Channel{}).Where("id = ?", ch.ID).
				Updates(map[string]interface{}{"owner_id": heir.ID, "moderators": mods}).Error; err != nil {
				return err
			}
		}

		var threadIDs []uint
		if len(doomed) > 0 {
			if err := tx.Model(&models.Thread{}).Where("channel_id IN ?", doomed).Pluck("id", &threadIDs).Error; err != nil {
				return err
			}
		}
		var authored []uint
		if err := tx.Model(&models.Thread{}).Where("owner_id = ?", user.ID).Pluck("id", &authored).Error; err != nil {
			return err
		}
		if err := deleteThreads(tx, utils.UniqueUint(append(threadIDs, authored...))); err != nil {
			return err
		}
		if len(doomed) > 0 {
			if err := tx.Where("id IN ?", doomed).Delete(&models.Channel{}).Error; err != nil {
				return err
			}
		}

		if err := tx.Model(&models.Comment{}).Where("owner_id = ?", user.ID).Update("owner_id", nil).Error; err != nil {
			return err
		}
		if err := forgetUsername(tx, user.Username); err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", user.ID).Delete(&models.UserSettings{}).Error; err != nil {
			return err
		}
		return tx.Delete(&user).Error
	}); err != nil {
		return err
	}
	invalidateLists()
	return nil
}

// invalidateLists drops every cached list page. Account changes show up in the
// owner block of channel and thread pages.
func invalidateLists() {
	utils.InvalidateChannelLists()
	utils.InvalidateThreadLists("")
}

func firstSurvivingModerator(tx *gorm.DB, ch *models.Channel, leaving string) (*models.User, error) {
	for _, name := range ch.Moderators {
		if name == leaving {
			continue
		}
		var u models.User
		err := tx.Where("username = ?", name).First(&u).Error
		if err == nil {
			return &u, nil
		}
		if !isNotFound(err) {
			return nil, err
		}
	}
	return nil, nil
}

// forgetUsername strips a deleted username from every channel's moderator and
// ban lists so a later account with the same name inherits nothing.
func forgetUsername(tx *gorm.DB, username string) error {
	var channels []models.Channel
	pattern := "%" + `"` + username + `"` + "%"
	if err := tx.Where("moderators LIKE ? OR banned_users LIKE ?", pattern, pattern).Find(&channels).Error; err != nil {
		return err
	}
	for _, ch := range channels {
		if !ch.Moderators.Contains(username) && !ch.BannedUsers.Contains(username) {
			continue
		}
		err := tx.Model(&models.Channel{}).Where("id = ?", ch.ID).Updates(map[string]interface{}{
			"moderators":   ch.Moderators.Without(username),
			"banned_users": ch.BannedUsers.Without(username),
		}).Error
		if err != nil {
			return err
		}
	}
	return nil
}

// deleteThreads removes the given threads and every comment inside them.
func deleteThreads(tx *gorm.DB, ids []uint) error {
	if len(ids) == 0 {
		return nil
	}
	if err := tx.Where("thread_id IN ?", ids).Delete(&models.Comment{}).Error; err != nil {
		return err
	}
	return tx.Where("id IN ?", ids).Delete(&models.Thread{}).Error
}
