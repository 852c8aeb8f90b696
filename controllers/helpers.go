package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/cppla/forumapp/models"
	"github.com/cppla/forumapp/services"
	"github.com/cppla/forumapp/utils"
)

// parsePagination reads page and page_size, falling back to page 1 and def.
func parsePagination(ctx *gin.Context, def int) (int, int) {
	page, pageSize := 1, def
	if v := strings.TrimSpace(ctx.Query("page")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			page = n
		}
	}
	if v := strings.TrimSpace(ctx.Query("page_size")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= services.MaxPageSize {
			pageSize = n
		}
	}
	return page, pageSize
}

// numberParam parses a non-negative sequence number from the named path parameter.
func numberParam(ctx *gin.Context, name string) (int, bool) {
	n, err := strconv.Atoi(ctx.Param(name))
	if err != nil || n < 0 {
		utils.Error(ctx, http.StatusBadRequest, 40020, "invalid "+name+" id")
		return 0, false
	}
	return n, true
}

// respondError maps service errors onto the JSON envelope.
func respondError(ctx *gin.Context, err error) {
	var verr *models.ValidationError
	switch {
	case errors.As(err, &verr):
		utils.Invalid(ctx, 40010, verr.Fields)
	case errors.Is(err, services.ErrUnauthenticated):
		utils.Error(ctx, http.StatusUnauthorized, 40100, err.Error())
	case errors.Is(err, services.ErrInvalidCredentials):
		utils.Error(ctx, http.StatusUnauthorized, 40106, err.Error())
	case errors.Is(err, services.ErrForbidden):
		utils.Error(ctx, http.StatusForbidden, 40300, err.Error())
	case errors.Is(err, services.ErrBanned):
		utils.Error(ctx, http.StatusForbidden, 40302, err.Error())
	case errors.Is(err, services.ErrUserNotFound):
		utils.Error(ctx, http.StatusNotFound, 40401, err.Error())
	case errors.Is(err, services.ErrChannelNotFound):
		utils.Error(ctx, http.StatusNotFound, 40420, err.Error())
	case errors.Is(err, services.ErrThreadNotFound):
		utils.Error(ctx, http.StatusNotFound, 40430, err.Error())
	case errors.Is(err, services.ErrCommentNotFound):
		utils.Error(ctx, http.StatusNotFound, 40440, err.Error())
	case errors.Is(err, services.ErrReplyTargetNotFound):
		utils.Error(ctx, http.StatusBadRequest, 40045, err.Error())
	default:
		utils.Sugar.Errorw("request failed", "path", ctx.FullPath(), "request_id", ctx.GetString("request_id"), "error", err)
		utils.Error(ctx, http.StatusInternalServerError, 50000, "internal server error")
	}
}

// cachedSuccess serves a list payload from the response cache and stores fresh ones.
func cachedSuccess(ctx *gin.Context, key string, build func() (interface{}, error)) {
	if b, ok := utils.CacheGetBytes(key); ok {
		ctx.Data(http.StatusOK, "application/json", b)
		return
	}
	payload, err := build()
	if err != nil {
		respondError(ctx, err)
		return
	}
	utils.CacheSetJSON(key, utils.JSONResponse{Code: 0, Message: "success", Data: payload})
	utils.Success(ctx, payload)
}

func userResponse(u *models.User) gin.H {
	if u == nil {
		return nil
	}
	return gin.H{
		"id":         u.ID,
		"username":   u.Username,
		"banned":     u.Banned,
		"created_at": u.CreatedAt,
	}
}

func channelResponse(ch *models.Channel) gin.H {
	return gin.H{
		"channel_name": ch.ChannelName,
		"description":  ch.Description,
		"pub_date":     ch.PubDate,
		"is_recent":    ch.IsRecent(),
		"owner":        userResponse(ch.Owner),
		"moderators":   ch.Moderators,
		"banned_users": ch.BannedUsers,
	}
}

func threadResponse(th *models.Thread) gin.H {
	return gin.H{
		"thread_id":   th.Number,
		"thread_name": th.ThreadName,
		"description": th.Description,
		"pub_date":    th.PubDate,
		"is_recent":   th.IsRecent(),
		"owner":       userResponse(th.Owner),
	}
}

func commentResponse(c *models.Comment) gin.H {
	return gin.H{
		"comment_id": c.Number,
		"text":       c.Text,
		"html":       utils.RenderMarkdown(c.Text),
		"reply_to":   c.ReplyTo,
		"pub_date":   c.PubDate,
		"is_recent":  c.IsRecent(),
		"owner":      userResponse(c.Owner),
	}
}
