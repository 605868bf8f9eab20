package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/forum/internal/service"
	"github.com/d60-Lab/forum/pkg/pagination"
	"github.com/d60-Lab/forum/pkg/response"
)

type createPostRequest struct {
	Title    string  `json:"title" binding:"max=100"`
	Content  string  `json:"content" binding:"required,max=5000"`
	Category string  `json:"category" binding:"max=64"`
	TopicID  *string `json:"topic_id" binding:"omitempty,uuid"`
}

type updatePostRequest struct {
	Title    *string `json:"title" binding:"omitempty,max=100"`
	Content  *string `json:"content" binding:"omitempty,min=1,max=5000"`
	Category *string `json:"category" binding:"omitempty,max=64"`
}

// ListPosts 帖子列表
// @Summary 帖子列表（最新在前）
// @Tags 帖子
// @Produce json
// @Param category query string false "分类"
// @Param page query int false "页码" default(1)
// @Param limit query int false "每页数量" default(20)
// @Success 200 {object} response.PagedResponse{data=[]model.Post,meta=pagination.Meta}
// @Router /api/v1/posts [get]
func (h *Handler) ListPosts(c *gin.Context) {
	page, err := h.postService.List(c.Request.Context(), c.Query("category"), pagination.FromQuery(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Paged(c, page.Data, page.Meta)
}

// GetPost 帖子详情
// @Summary 帖子详情（含评论与反应）
// @Tags 帖子
// @Produce json
// @Param id path string true "帖子ID"
// @Success 200 {object} response.Response{data=model.Post}
// @Failure 404 {object} response.Response
// @Router /api/v1/posts/{id} [get]
func (h *Handler) GetPost(c *gin.Context) {
	post, err := h.postService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, post)
}

// CreatePost 发帖
// @Summary 发帖（内容中的 @用户名 会收到通知）
// @Tags 帖子
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body createPostRequest true "帖子内容"
// @Success 201 {object} response.Response{data=model.Post}
// @Failure 400 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /api/v1/posts [post]
func (h *Handler) CreatePost(c *gin.Context) {
	u, ok := actor(c)
	if !ok {
		return
	}
	var req createPostRequest
	if !bindJSON(c, &req) {
		return
	}
	post, err := h.postService.Create(c.Request.Context(), u, service.CreatePostInput{
		Title:    req.Title,
		Content:  req.Content,
		Category: req.Category,
		TopicID:  req.TopicID,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, post)
}

// UpdatePost 编辑帖子
// @Summary 编辑帖子（作者或版主/管理员）
// @Tags 帖子
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "帖子ID"
// @Param request body updatePostRequest true "修改内容"
// @Success 200 {object} response.Response{data=model.Post}
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/v1/posts/{id} [put]
func (h *Handler) UpdatePost(c *gin.Context) {
	u, ok := actor(c)
	if !ok {
		return
	}
	var req updatePostRequest
	if !bindJSON(c, &req) {
		return
	}
	post, err := h.postService.Update(c.Request.Context(), u, c.Param("id"), service.UpdatePostInput{
		Title:    req.Title,
		Content:  req.Content,
		Category: req.Category,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, post)
}

// DeletePost 删除帖子
// @Summary 删除帖子（级联删除评论与反应）
// @Tags 帖子
// @Security BearerAuth
// @Param id path string true "帖子ID"
// @Success 204
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/v1/posts/{id} [delete]
func (h *Handler) DeletePost(c *gin.Context) {
	u, ok := actor(c)
	if !ok {
		return
	}
	if err := h.postService.Delete(c.Request.Context(), u, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
