package controllers

import (
	"github.com/gin-gonic/gin"

	"github.com/cppla/forumapp/services"
	"github.com/cppla/forumapp/utils"
)

// UserController serves public profiles and admin account actions.
type UserController struct {
	users *services.UserService
}

func NewUserController(users *services.UserService) *UserController {
	return &UserController{users: users}
}

// Get returns public user info by username.
func (u *UserController) Get(ctx *gin.Context) {
	user, err := u.users.GetByUsername(ctx.Param("username"))
	if err != nil {
		respondError(ctx, err)
		return
	}
	resp := userResponse(user)
	if settings, err := u.users.Settings(user.ID); err == nil {
		resp["signature"] = settings.Signature
		resp["avatar_url"] = settings.AvatarURL
	}
	utils.Success(ctx, resp)
}

// List is admin only.
func (u *UserController) List(ctx *gin.Context) {
	page, pageSize := parsePagination(ctx, services.DefaultPageSize)
	users, total, err := u.users.List(page, pageSize)
	if err != nil {
		respondError(ctx, err)
		return
	}
	items := make([]gin.H, 0, len(users))
	for i := range users {
		items = append(items, userResponse(&users[i]))
	}
	utils.Success(ctx, utils.Page(items, page, pageSize, total))
}

// Delete removes an account and applies the ownership pass-off rules.
func (u *UserController) Delete(ctx *gin.Context) {
	user, err := u.users.GetByUsername(ctx.Param("username"))
	if err != nil {
		respondError(ctx, err)
		return
	}
	if err := u.users.Delete(user.ID); err != nil {
		respondError(ctx, err)
		return
	}
	utils.Sugar.Infow("user deleted", "user_id", user.ID, "username", user.Username)
	utils.Success(ctx, gin.H{"message": "user deleted"})
}

func (u *UserController) Ban(ctx *gin.Context)   { u.setBanned(ctx, true) }
func (u *UserController) Unban(ctx *gin.Context) { u.setBanned(ctx, false) }

func (u *UserController) setBanned(ctx *gin.Context, banned bool) {
	user, err := u.users.SetBanned(ctx.Param("username"), banned)
	if err != nil {
		respondError(ctx, err)
		return
	}
	utils.Success(ctx, userResponse(user))
}
