package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/cppla/forumapp/middleware"
	"github.com/cppla/forumapp/services"
	"github.com/cppla/forumapp/utils"
)

// AuthController handles local username/password authentication.
type AuthController struct {
	users *services.UserService
}

// NewAuthController creates an AuthController.
func NewAuthController(users *services.UserService) *AuthController {
	return &AuthController{users: users}
}

// Register creates an account and logs it in.
func (a *AuthController) Register(ctx *gin.Context) {
	type request struct {
		Username        string `json:"username" binding:"required"`
		Email           string `json:"email"`
		Password        string `json:"password" binding:"required"`
		ConfirmPassword string `json:"confirm_password"`
	}

	var req request
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40001, "invalid request payload")
		return
	}
	if req.ConfirmPassword != "" && req.ConfirmPassword != req.Password {
		utils.Invalid(ctx, 40010, map[string]string{"confirm_password": "passwords do not match"})
		return
	}

	user, err := a.users.Register(req.Username, req.Email, req.Password)
	if err != nil {
		respondError(ctx, err)
		return
	}

	token, err := utils.GenerateToken(user.ID, user.Username, utils.TokenTTL())
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50003, "failed to generate token")
		return
	}
	utils.Sugar.Infow("user registered", "user_id", user.ID, "username", user.Username)
	utils.Created(ctx, gin.H{
		"token": token,
		"user":  userResponse(user),
	})
}

// Login exchanges credentials for a bearer token.
func (a *AuthController) Login(ctx *gin.Context) {
	type request struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}

	var req request
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40003, "invalid request payload")
		return
	}

	user, err := a.users.Authenticate(req.Username, req.Password)
	if err != nil {
		respondError(ctx, err)
		return
	}

	token, err := utils.GenerateToken(user.ID, user.Username, utils.TokenTTL())
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50004, "failed to generate token")
		return
	}

	utils.Success(ctx, gin.H{
		"token": token,
		"user":  userResponse(user),
	})
}

// Logout revokes the presented token until it would have expired anyway.
func (a *AuthController) Logout(ctx *gin.Context) {
	token := ctx.GetString(middleware.ContextTokenKey)
	expiresAt := time.Now().Add(utils.TokenTTL())
	if v, ok := ctx.Get(middleware.ContextTokenExpiryKey); ok {
		if t, ok := v.(time.Time); ok {
			expiresAt = t
		}
	}
	utils.BlacklistToken(token, expiresAt)
	utils.Success(ctx, gin.H{"message": "logged out"})
}

// Me returns the authenticated user.
func (a *AuthController) Me(ctx *gin.Context) {
	actor := middleware.CurrentActor(ctx)
	user, err := a.users.Get(actor.UserID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	resp := userResponse(user)
	resp["email"] = user.Email
	resp["is_admin"] = actor.Admin
	utils.Success(ctx, resp)
}
