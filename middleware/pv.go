package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/cppla/forumapp/models"
	"github.com/cppla/forumapp/utils"
)

// PageViewRecorder counts successful forum reads into the daily page_views table.
func PageViewRecorder(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Request.Method != http.MethodGet {
			return
		}
		if status := c.Writer.Status(); status < 200 || status >= 300 {
			return
		}
		path := c.Request.URL.Path
		if !countsAsPageView(path) {
			return
		}
		if err := recordPageView(db, path, time.Now()); err != nil {
			utils.Sugar.Debugw("page view not recorded", "path", path, "err", err)
		}
	}
}

// recordPageView bumps the (day, path) counter, inserting the row on first hit.
func recordPageView(db *gorm.DB, path string, now time.Time) error {
	return db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "date"}, {Name: "path"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"count":      gorm.Expr("count + 1"),
			"updated_at": now,
		}),
	}).Create(&models.PageView{Date: models.PageViewDay(now), Path: path, Count: 1}).Error
}

// countsAsPageView keeps forum content reads. Health, metrics, stats, auth and
// static assets are not page views.
func countsAsPageView(path string) bool {
	switch {
	case path == "/health", path == "/metrics", strings.HasPrefix(path, "/static/"):
		return false
	case strings.HasPrefix(path, "/api/v1/channels"), strings.HasPrefix(path, "/api/v1/users/"):
		return true
	}
	return path == "/"
}
