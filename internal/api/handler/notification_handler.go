package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/forum/pkg/response"
)

// ListNotifications 通知列表
// @Summary 当前用户最近的通知（最多 50 条，最新在前）
// @Tags 通知
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response{data=[]model.Notification}
// @Router /api/v1/notifications [get]
func (h *Handler) ListNotifications(c *gin.Context) {
	u, ok := actor(c)
	if !ok {
		return
	}
	list, err := h.notificationService.List(c.Request.Context(), u.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, list)
}

// UnreadCount 未读通知数
// @Summary 未读通知数
// @Tags 通知
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response{data=map[string]int64}
// @Router /api/v1/notifications/unread-count [get]
func (h *Handler) UnreadCount(c *gin.Context) {
	u, ok := actor(c)
	if !ok {
		return
	}
	n, err := h.notificationService.UnreadCount(c.Request.Context(), u.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"count": n})
}

// MarkNotificationRead 标记已读
// @Summary 标记通知为已读（仅接收者本人）
// @Tags 通知
// @Produce json
// @Security BearerAuth
// @Param id path string true "通知ID"
// @Success 200 {object} response.Response{data=model.Notification}
// @Failure 404 {object} response.Response
// @Router /api/v1/notifications/{id}/read [patch]
func (h *Handler) MarkNotificationRead(c *gin.Context) {
	u, ok := actor(c)
	if !ok {
		return
	}
	n, err := h.notificationService.MarkRead(c.Request.Context(), c.Param("id"), u.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, n)
}
