package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/forum/pkg/pagination"
	"github.com/d60-Lab/forum/pkg/response"
)

// Follow 关注用户
// @Summary 关注用户
// @Tags 关系链
// @Produce json
// @Security BearerAuth
// @Param user_id path string true "被关注用户ID"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/v1/follows/{user_id} [post]
func (h *Handler) Follow(c *gin.Context) {
	u, ok := actor(c)
	if !ok {
		return
	}
	if err := h.relService.Follow(c.Request.Context(), u, c.Param("user_id")); err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, gin.H{"is_following": true})
}

// Unfollow 取消关注
// @Summary 取消关注
// @Tags 关系链
// @Produce json
// @Security BearerAuth
// @Param user_id path string true "被关注用户ID"
// @Success 204
// @Failure 400 {object} response.Response
// @Router /api/v1/follows/{user_id} [delete]
func (h *Handler) Unfollow(c *gin.Context) {
	u, ok := actor(c)
	if !ok {
		return
	}
	if err := h.relService.Unfollow(c.Request.Context(), u, c.Param("user_id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ListFollowers 粉丝列表
// @Summary 查询粉丝列表（最近关注在前）
// @Tags 关系链
// @Produce json
// @Param user_id path string true "用户ID"
// @Param page query int false "页码" default(1)
// @Param limit query int false "每页数量" default(20)
// @Success 200 {object} response.PagedResponse{data=[]service.UserSummary,meta=pagination.Meta}
// @Failure 404 {object} response.Response
// @Router /api/v1/follows/{user_id}/followers [get]
func (h *Handler) ListFollowers(c *gin.Context) {
	page, err := h.relService.ListFollowers(c.Request.Context(), c.Param("user_id"), pagination.FromQuery(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Paged(c, page.Data, page.Meta)
}

// ListFollowing 关注列表
// @Summary 查询关注列表（最近关注在前）
// @Tags 关系链
// @Produce json
// @Param user_id path string true "用户ID"
// @Param page query int false "页码" default(1)
// @Param limit query int false "每页数量" default(20)
// @Success 200 {object} response.PagedResponse{data=[]service.UserSummary,meta=pagination.Meta}
// @Failure 404 {object} response.Response
// @Router /api/v1/follows/{user_id}/following [get]
func (h *Handler) ListFollowing(c *gin.Context) {
	page, err := h.relService.ListFollowing(c.Request.Context(), c.Param("user_id"), pagination.FromQuery(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Paged(c, page.Data, page.Meta)
}

// CheckFollowing 是否已关注
// @Summary 当前用户是否关注了指定用户
// @Tags 关系链
// @Produce json
// @Security BearerAuth
// @Param user_id path string true "用户ID"
// @Success 200 {object} response.Response{data=map[string]bool}
// @Router /api/v1/follows/{user_id}/check [get]
func (h *Handler) CheckFollowing(c *gin.Context) {
	u, ok := actor(c)
	if !ok {
		return
	}
	following, err := h.relService.IsFollowing(c.Request.Context(), u.ID, c.Param("user_id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"is_following": following})
}
