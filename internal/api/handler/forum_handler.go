package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/forum/internal/service"
	"github.com/d60-Lab/forum/pkg/pagination"
	"github.com/d60-Lab/forum/pkg/response"
)

type createCategoryRequest struct {
	Name         string `json:"name" binding:"required,max=100"`
	Slug         string `json:"slug" binding:"max=100"`
	Description  string `json:"description" binding:"max=500"`
	DisplayOrder int    `json:"display_order"`
}

type createForumRequest struct {
	CategoryID   string `json:"category_id" binding:"required,uuid"`
	Name         string `json:"name" binding:"required,max=100"`
	Slug         string `json:"slug" binding:"max=100"`
	Description  string `json:"description" binding:"max=500"`
	DisplayOrder int    `json:"display_order"`
}

type createTopicRequest struct {
	ForumID string `json:"forum_id" binding:"required,uuid"`
	Title   string `json:"title" binding:"required,max=200"`
	Content string `json:"content" binding:"required,max=5000"`
}

type updateTopicRequest struct {
	Title string `json:"title" binding:"required,max=200"`
}

// ListForums 分类与版块
// @Summary 全部分类及其版块（含主题数/帖子数）
// @Tags 论坛
// @Produce json
// @Success 200 {object} response.Response{data=[]model.Category}
// @Router /api/v1/forums [get]
func (h *Handler) ListForums(c *gin.Context) {
	list, err := h.forumService.ListCategories(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, list)
}

// GetForum 版块详情
// @Summary 版块详情及主题分页（置顶在前，按最后回复排序）
// @Tags 论坛
// @Produce json
// @Param category_slug path string true "分类 slug"
// @Param forum_slug path string true "版块 slug"
// @Param page query int false "页码" default(1)
// @Param limit query int false "每页数量" default(20)
// @Success 200 {object} response.Response{data=service.ForumView}
// @Failure 404 {object} response.Response
// @Router /api/v1/forums/{category_slug}/{forum_slug} [get]
func (h *Handler) GetForum(c *gin.Context) {
	view, err := h.forumService.GetForum(c.Request.Context(), c.Param("category_slug"), c.Param("forum_slug"), pagination.FromQuery(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, view)
}

// CreateCategory 新建分类
// @Summary 新建分类（管理员）
// @Tags 论坛
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body createCategoryRequest true "分类"
// @Success 201 {object} response.Response{data=model.Category}
// @Failure 400 {object} response.Response
// @Router /api/v1/forums/categories [post]
func (h *Handler) CreateCategory(c *gin.Context) {
	var req createCategoryRequest
	if !bindJSON(c, &req) {
		return
	}
	cat, err := h.forumService.CreateCategory(c.Request.Context(), service.CategoryInput{
		Name:         req.Name,
		Slug:         req.Slug,
		Description:  req.Description,
		DisplayOrder: req.DisplayOrder,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, cat)
}

// CreateForum 新建版块
// @Summary 新建版块（管理员）
// @Tags 论坛
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body createForumRequest true "版块"
// @Success 201 {object} response.Response{data=model.Forum}
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/v1/forums [post]
func (h *Handler) CreateForum(c *gin.Context) {
	var req createForumRequest
	if !bindJSON(c, &req) {
		return
	}
	f, err := h.forumService.CreateForum(c.Request.Context(), service.ForumInput{
		CategoryID:   req.CategoryID,
		Name:         req.Name,
		Slug:         req.Slug,
		Description:  req.Description,
		DisplayOrder: req.DisplayOrder,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, f)
}

// GetTopic 主题详情
// @Summary 主题详情及帖子分页（时间正序，浏览数 +1）
// @Tags 主题
// @Produce json
// @Param id path string true "主题ID"
// @Param page query int false "页码" default(1)
// @Param limit query int false "每页数量" default(20)
// @Success 200 {object} response.Response{data=service.TopicView}
// @Failure 404 {object} response.Response
// @Router /api/v1/topics/{id} [get]
func (h *Handler) GetTopic(c *gin.Context) {
	view, err := h.forumService.GetTopic(c.Request.Context(), c.Param("id"), pagination.FromQuery(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, view)
}

// CreateTopic 发起主题
// @Summary 发起主题（同时写入首帖）
// @Tags 主题
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body createTopicRequest true "主题"
// @Success 201 {object} response.Response{data=service.TopicView}
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/v1/topics [post]
func (h *Handler) CreateTopic(c *gin.Context) {
	u, ok := actor(c)
	if !ok {
		return
	}
	var req createTopicRequest
	if !bindJSON(c, &req) {
		return
	}
	view, err := h.forumService.CreateTopic(c.Request.Context(), u, service.CreateTopicInput{
		ForumID: req.ForumID,
		Title:   req.Title,
		Content: req.Content,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, view)
}

// UpdateTopic 修改主题标题
// @Summary 修改主题标题（作者或版主/管理员）
// @Tags 主题
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "主题ID"
// @Param request body updateTopicRequest true "标题"
// @Success 200 {object} response.Response{data=model.Topic}
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/v1/topics/{id} [put]
func (h *Handler) UpdateTopic(c *gin.Context) {
	u, ok := actor(c)
	if !ok {
		return
	}
	var req updateTopicRequest
	if !bindJSON(c, &req) {
		return
	}
	t, err := h.forumService.UpdateTopic(c.Request.Context(), u, c.Param("id"), req.Title)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, t)
}

// DeleteTopic 删除主题
// @Summary 删除主题及其全部帖子（作者或版主/管理员）
// @Tags 主题
// @Security BearerAuth
// @Param id path string true "主题ID"
// @Success 204
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/v1/topics/{id} [delete]
func (h *Handler) DeleteTopic(c *gin.Context) {
	u, ok := actor(c)
	if !ok {
		return
	}
	if err := h.forumService.DeleteTopic(c.Request.Context(), u, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// PinTopic 置顶/取消置顶
// @Summary 切换置顶（版主/管理员）
// @Tags 主题
// @Produce json
// @Security BearerAuth
// @Param id path string true "主题ID"
// @Success 200 {object} response.Response{data=model.Topic}
// @Failure 403 {object} response.Response
// @Router /api/v1/topics/{id}/pin [post]
func (h *Handler) PinTopic(c *gin.Context) {
	u, ok := actor(c)
	if !ok {
		return
	}
	t, err := h.forumService.TogglePin(c.Request.Context(), u, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, t)
}

// LockTopic 锁定/解锁
// @Summary 切换锁定（版主/管理员），锁定后普通用户不能回复
// @Tags 主题
// @Produce json
// @Security BearerAuth
// @Param id path string true "主题ID"
// @Success 200 {object} response.Response{data=model.Topic}
// @Failure 403 {object} response.Response
// @Router /api/v1/topics/{id}/lock [post]
func (h *Handler) LockTopic(c *gin.Context) {
	u, ok := actor(c)
	if !ok {
		return
	}
	t, err := h.forumService.ToggleLock(c.Request.Context(), u, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, t)
}
