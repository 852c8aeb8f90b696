package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cppla/forumapp/middleware"
	"github.com/cppla/forumapp/services"
	"github.com/cppla/forumapp/utils"
)

// ThreadController serves the threads of one channel.
type ThreadController struct {
	threads *services.ThreadService
}

func NewThreadController(threads *services.ThreadService) *ThreadController {
	return &ThreadController{threads: threads}
}

func (t *ThreadController) List(ctx *gin.Context) {
	channel := ctx.Param("channel")
	page, pageSize := parsePagination(ctx, services.DefaultPageSize)
	key := utils.ThreadListKey(channel, page, pageSize)
	cachedSuccess(ctx, key, func() (interface{}, error) {
		threads, total, err := t.threads.List(channel, page, pageSize)
		if err != nil {
			return nil, err
		}
		items := make([]gin.H, 0, len(threads))
		for i := range threads {
			items = append(items, threadResponse(&threads[i]))
		}
		return utils.Page(items, page, pageSize, total), nil
	})
}

func (t *ThreadController) Create(ctx *gin.Context) {
	var req struct {
		ThreadName  string `json:"thread_name" binding:"required"`
		Description string `json:"description"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40021, "invalid request payload")
		return
	}
	channel := ctx.Param("channel")
	th, err := t.threads.Create(middleware.CurrentActor(ctx), channel,
		utils.StripTags(req.ThreadName), utils.StripTags(req.Description))
	if err != nil {
		respondError(ctx, err)
		return
	}
	utils.Created(ctx, threadResponse(th))
}

func (t *ThreadController) Get(ctx *gin.Context) {
	number, ok := numberParam(ctx, "thread")
	if !ok {
		return
	}
	th, err := t.threads.Get(ctx.Param("channel"), number)
	if err != nil {
		respondError(ctx, err)
		return
	}
	resp := threadResponse(th)
	resp["channel_name"] = th.Channel.ChannelName
	utils.Success(ctx, resp)
}

func (t *ThreadController) Delete(ctx *gin.Context) {
	number, ok := numberParam(ctx, "thread")
	if !ok {
		return
	}
	channel := ctx.Param("channel")
	if err := t.threads.Delete(middleware.CurrentActor(ctx), channel, number); err != nil {
		respondError(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{"message": "thread deleted"})
}
