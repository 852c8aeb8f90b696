package services

import (
	"time"

	"gorm.io/gorm"

	"github.com/cppla/forumapp/models"
)

// Summary is a snapshot of forum totals.
type Summary struct {
	Users          int64 `json:"users"`
	Channels       int64 `json:"channels"`
	Threads        int64 `json:"threads"`
	Comments       int64 `json:"comments"`
	PageViewsToday int64 `json:"page_views_today"`
	PageViewsTotal int64 `json:"page_views_total"`
}

// StatsService computes forum totals for the stats endpoint and the admin shell.
type StatsService struct {
	db *gorm.DB
}

func NewStatsService(db *gorm.DB) *StatsService {
	return &StatsService{db: db}
}

func (s *StatsService) Summary() (*Summary, error) {
	var sum Summary
	counts := []struct {
		model interface{}
		dest  *int64
	}{
		{&models.User{}, &sum.Users},
		{&models.Channel{}, &sum.Channels},
		{&models.Thread{}, &sum.Threads},
		{&models.Comment{}, &sum.Comments},
	}
	for _, c := range counts {
		if err := s.db.Model(c.model).Count(c.dest).Error; err != nil {
			return nil, err
		}
	}
	today := models.PageViewDay(time.Now())
	if err := s.db.Model(&models.PageView{}).Where("date >= ? AND date < ?", today, today.AddDate(0, 0, 1)).Select("COALESCE(SUM(count), 0)").Scan(&sum.PageViewsToday).Error; err != nil {
		return nil, err
	}
	if err := s.db.Model(&models.PageView{}).Select("COALESCE(SUM(count), 0)").Scan(&sum.PageViewsTotal).Error; err != nil {
		return nil, err
	}
	return &sum, nil
}
