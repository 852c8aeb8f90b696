package controllers

import (
	"github.com/gin-gonic/gin"

	"github.com/cppla/forumapp/config"
	"github.com/cppla/forumapp/utils"
)

// ConfigController serves dynamic, environment-driven UI configuration.
type ConfigController struct{}

func NewConfigController() *ConfigController { return &ConfigController{} }

// GetSite returns the site name and the announcement configured via config.
func (c *ConfigController) GetSite(ctx *gin.Context) {
	cfg := config.Get()
	utils.Success(ctx, gin.H{
		"site_name": cfg.SiteName,
		"notice": gin.H{
			"title": cfg.NoticeTitle,
			"html":  utils.Sanitize(cfg.NoticeHTML),
		},
	})
}
