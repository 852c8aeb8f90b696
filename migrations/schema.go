package migrations

import (
	"gorm.io/gorm"

	"github.com/cppla/forumapp/models"
)

// All returns the application's migrations in apply order.
func All() []*Migration {
	return []*Migration{
		{
			Version: "20240301000001",
			Name:    "create_forum_tables",
			Up: func(tx *gorm.DB) error {
				return tx.AutoMigrate(&models.User{}, &models.Channel{}, &models.Thread{}, &models.Comment{})
			},
			Down: dropTables("comments", "threads", "channels", "users"),
		},
		{
			Version: "20240301000002",
			Name:    "create_user_settings",
			Up: func(tx *gorm.DB) error {
				return tx.AutoMigrate(&models.UserSettings{})
			},
			Down: dropTables("user_settings"),
		},
		{
			Version: "20240301000003",
			Name:    "create_page_views",
			Up: func(tx *gorm.DB) error {
				return tx.AutoMigrate(&models.PageView{})
			},
			Down: dropTables("page_views"),
		},
	}
}

func dropTables(names ...string) func(*gorm.DB) error {
	return func(tx *gorm.DB) error {
		for _, name := range names {
			if err := tx.Migrator().DropTable(name); err != nil {
				return err
			}
		}
		return nil
	}
}
