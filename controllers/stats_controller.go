package controllers

import (
	"github.com/gin-gonic/gin"

	"github.com/cppla/forumapp/services"
	"github.com/cppla/forumapp/utils"
)

// StatsController provides forum statistics such as counts and daily page views.
type StatsController struct {
	stats *services.StatsService
}

// NewStatsController creates a new StatsController instance.
func NewStatsController(stats *services.StatsService) *StatsController {
	return &StatsController{stats: stats}
}

// GetStats returns aggregate statistics for the forum.
func (s *StatsController) GetStats(ctx *gin.Context) {
	sum, err := s.stats.Summary()
	if err != nil {
		respondError(ctx, err)
		return
	}
	utils.Success(ctx, sum)
}
