// Package admin bundles the objects an operator needs in the interactive
// shell: the database handle, the configuration, every forum service and a
// constructor for every model.
package admin

import (
	"sort"

	"gorm.io/gorm"

	"github.com/cppla/forumapp/config"
	"github.com/cppla/forumapp/models"
	"github.com/cppla/forumapp/services"
)

// Session is the fixed set of names the shell exposes.
type Session struct {
	DB       *gorm.DB
	Config   config.AppConfig
	Users    *services.UserService
	Channels *services.ChannelService
	Threads  *services.ThreadService
	Comments *services.CommentService
	Stats    *services.StatsService
	// Models maps a model name to a constructor returning a new zero value.
	Models map[string]func() interface{}
	// Actor performs shell moderation with admin rights.
	Actor services.Actor
}

// NewSession wires a session on top of db.
func NewSession(db *gorm.DB) *Session {
	return &Session{
		DB:       db,
		Config:   config.Get(),
		Users:    services.NewUserService(db),
		Channels: services.NewChannelService(db),
		Threads:  services.NewThreadService(db),
		Comments: services.NewCommentService(db),
		Stats:    services.NewStatsService(db),
		Models: map[string]func() interface{}{
			"User":         func() interface{} { return &models.User{} },
			"UserSettings": func() interface{} { return &models.UserSettings{} },
			"Channel":      func() interface{} { return &models.Channel{} },
			"Thread":       func() interface{} { return &models.Thread{} },
			"Comment":      func() interface{} { return &models.Comment{} },
			"PageView":     func() interface{} { return &models.PageView{} },
		},
		Actor: services.System(),
	}
}

// Names lists what the session exports, sorted.
func (s *Session) Names() []string {
	names := []string{"DB", "Config", "Users", "Channels", "Threads", "Comments", "Stats"}
	for name := range s.Models {
		names = append(names, "models."+name)
	}
	sort.Strings(names)
	return names
}
