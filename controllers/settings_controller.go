package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cppla/forumapp/middleware"
	"github.com/cppla/forumapp/services"
	"github.com/cppla/forumapp/utils"
)

// SettingsController exposes the caller's own settings.
type SettingsController struct {
	users *services.UserService
}

func NewSettingsController(users *services.UserService) *SettingsController {
	return &SettingsController{users: users}
}

func (s *SettingsController) Get(ctx *gin.Context) {
	settings, err := s.users.Settings(middleware.CurrentActor(ctx).UserID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	utils.Success(ctx, settings)
}

func (s *SettingsController) Update(ctx *gin.Context) {
	var req struct {
		Signature *string `json:"signature"`
		AvatarURL *string `json:"avatar_url"`
		PageSize  *int    `json:"page_size"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40030, "invalid request payload")
		return
	}
	if req.Signature != nil {
		sig := utils.StripTags(*req.Signature)
		req.Signature = &sig
	}
	settings, err := s.users.UpdateSettings(middleware.CurrentActor(ctx).UserID, services.SettingsUpdate{
		Signature: req.Signature,
		AvatarURL: req.AvatarURL,
		PageSize:  req.PageSize,
	})
	if err != nil {
		respondError(ctx, err)
		return
	}
	utils.Success(ctx, settings)
}
