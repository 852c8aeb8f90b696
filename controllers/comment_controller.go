package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cppla/forumapp/middleware"
	"github.com/cppla/forumapp/services"
	"github.com/cppla/forumapp/utils"
)

// CommentController serves the comments of one thread. Comments are not
// cached; they change far more often than channel and thread lists.
type CommentController struct {
	comments *services.CommentService
}

func NewCommentController(comments *services.CommentService) *CommentController {
	return &CommentController{comments: comments}
}

func (c *CommentController) List(ctx *gin.Context) {
	thread, ok := numberParam(ctx, "thread")
	if !ok {
		return
	}
	page, pageSize := parsePagination(ctx, services.DefaultPageSize)
	comments, total, err := c.comments.List(ctx.Param("channel"), thread, page, pageSize)
	if err != nil {
		respondError(ctx, err)
		return
	}
	items := make([]gin.H, 0, len(comments))
	for i := range comments {
		items = append(items, commentResponse(&comments[i]))
	}
	utils.Success(ctx, utils.Page(items, page, pageSize, total))
}

func (c *CommentController) Create(ctx *gin.Context) {
	thread, ok := numberParam(ctx, "thread")
	if !ok {
		return
	}
	var req struct {
		Text    string `json:"text" binding:"required"`
		ReplyTo *int   `json:"reply_to"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40031, "invalid request payload")
		return
	}
	comment, err := c.comments.Create(middleware.CurrentActor(ctx), ctx.Param("channel"), thread, req.Text, req.ReplyTo)
	if err != nil {
		respondError(ctx, err)
		return
	}
	utils.Created(ctx, commentResponse(comment))
}

func (c *CommentController) Delete(ctx *gin.Context) {
	thread, ok := numberParam(ctx, "thread")
	if !ok {
		return
	}
	number, ok := numberParam(ctx, "comment")
	if !ok {
		return
	}
	if err := c.comments.Delete(middleware.CurrentActor(ctx), ctx.Param("channel"), thread, number); err != nil {
		respondError(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{"message": "comment deleted"})
}
