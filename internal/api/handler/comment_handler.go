package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/forum/pkg/pagination"
	"github.com/d60-Lab/forum/pkg/response"
)

type commentRequest struct {
	Content string `json:"content" binding:"required,max=2000"`
}

// ListComments 帖子评论
// @Summary 帖子评论（时间正序）
// @Tags 评论
// @Produce json
// @Param id path string true "帖子ID"
// @Param page query int false "页码" default(1)
// @Param limit query int false "每页数量" default(20)
// @Success 200 {object} response.PagedResponse{data=[]model.Comment,meta=pagination.Meta}
// @Failure 404 {object} response.Response
// @Router /api/v1/posts/{id}/comments [get]
func (h *Handler) ListComments(c *gin.Context) {
	page, err := h.commentService.ListByPost(c.Request.Context(), c.Param("id"), pagination.FromQuery(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Paged(c, page.Data, page.Meta)
}

// CreateComment 发表评论
// @Summary 发表评论（内容中的 @用户名 会收到通知）
// @Tags 评论
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "帖子ID"
// @Param request body commentRequest true "评论内容"
// @Success 201 {object} response.Response{data=model.Comment}
// @Failure 404 {object} response.Response
// @Router /api/v1/posts/{id}/comments [post]
func (h *Handler) CreateComment(c *gin.Context) {
	u, ok := actor(c)
	if !ok {
		return
	}
	var req commentRequest
	if !bindJSON(c, &req) {
		return
	}
	comment, err := h.commentService.Create(c.Request.Context(), u, c.Param("id"), req.Content)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, comment)
}

// UpdateComment 编辑评论
// @Summary 编辑评论（作者或版主/管理员）
// @Tags 评论
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "评论ID"
// @Param request body commentRequest true "评论内容"
// @Success 200 {object} response.Response{data=model.Comment}
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/v1/comments/{id} [put]
func (h *Handler) UpdateComment(c *gin.Context) {
	u, ok := actor(c)
	if !ok {
		return
	}
	var req commentRequest
	if !bindJSON(c, &req) {
		return
	}
	comment, err := h.commentService.Update(c.Request.Context(), u, c.Param("id"), req.Content)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, comment)
}

// DeleteComment 删除评论
// @Summary 删除评论（作者或版主/管理员）
// @Tags 评论
// @Security BearerAuth
// @Param id path string true "评论ID"
// @Success 204
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/v1/comments/{id} [delete]
func (h *Handler) DeleteComment(c *gin.Context) {
	u, ok := actor(c)
	if !ok {
		return
	}
	if err := h.commentService.Delete(c.Request.Context(), u, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
