package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cppla/forumapp/middleware"
	"github.com/cppla/forumapp/models"
	"github.com/cppla/forumapp/services"
	"github.com/cppla/forumapp/utils"
)

// ChannelController serves channel CRUD and channel-level bans.
type ChannelController struct {
	channels *services.ChannelService
}

func NewChannelController(channels *services.ChannelService) *ChannelController {
	return &ChannelController{channels: channels}
}

// List returns channels newest first.
func (c *ChannelController) List(ctx *gin.Context) {
	page, pageSize := parsePagination(ctx, services.DefaultPageSize)
	key := utils.ChannelListKey(page, pageSize)
	cachedSuccess(ctx, key, func() (interface{}, error) {
		channels, total, err := c.channels.List(page, pageSize)
		if err != nil {
			return nil, err
		}
		items := make([]gin.H, 0, len(channels))
		for i := range channels {
			items = append(items, channelResponse(&channels[i]))
		}
		return utils.Page(items, page, pageSize, total), nil
	})
}

func (c *ChannelController) Create(ctx *gin.Context) {
	var req struct {
		ChannelName string `json:"channel_name" binding:"required"`
		Description string `json:"description"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40011, "invalid request payload")
		return
	}
	ch, err := c.channels.Create(middleware.CurrentActor(ctx), req.ChannelName, utils.StripTags(req.Description))
	if err != nil {
		respondError(ctx, err)
		return
	}
	utils.Created(ctx, channelResponse(ch))
}

func (c *ChannelController) Get(ctx *gin.Context) {
	ch, err := c.channels.Get(ctx.Param("channel"))
	if err != nil {
		respondError(ctx, err)
		return
	}
	resp := channelResponse(ch)
	resp["can_moderate"] = c.channels.CanModerate(middleware.CurrentActor(ctx), ch)
	utils.Success(ctx, resp)
}

// Update is a partial update; absent fields are left unchanged.
func (c *ChannelController) Update(ctx *gin.Context) {
	var req struct {
		Description *string   `json:"description"`
		Moderators  *[]string `json:"moderators"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40012, "invalid request payload")
		return
	}
	if req.Description != nil {
		d := utils.StripTags(*req.Description)
		req.Description = &d
	}
	ch, err := c.channels.Update(middleware.CurrentActor(ctx), ctx.Param("channel"), services.ChannelUpdate{
		Description: req.Description,
		Moderators:  req.Moderators,
	})
	if err != nil {
		respondError(ctx, err)
		return
	}
	utils.Success(ctx, channelResponse(ch))
}

func (c *ChannelController) Delete(ctx *gin.Context) {
	name := ctx.Param("channel")
	if err := c.channels.Delete(middleware.CurrentActor(ctx), name); err != nil {
		respondError(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{"message": "channel deleted"})
}

// Ban expects {"username": "..."}.
func (c *ChannelController) Ban(ctx *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40013, "invalid request payload")
		return
	}
	ch, err := c.channels.Ban(middleware.CurrentActor(ctx), ctx.Param("channel"), req.Username)
	c.respondBans(ctx, ch, err)
}

func (c *ChannelController) Unban(ctx *gin.Context) {
	ch, err := c.channels.Unban(middleware.CurrentActor(ctx), ctx.Param("channel"), ctx.Param("username"))
	c.respondBans(ctx, ch, err)
}

func (c *ChannelController) respondBans(ctx *gin.Context, ch *models.Channel, err error) {
	if err != nil {
		respondError(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{"banned_users": ch.BannedUsers})
}
