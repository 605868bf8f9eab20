package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/forum/internal/model"
	"github.com/d60-Lab/forum/pkg/response"
)

type reactionRequest struct {
	PostID string `json:"post_id" binding:"required,uuid"`
	Type   string `json:"type" binding:"required,reaction_type"`
}

// ToggleReaction 切换反应
// @Summary 添加/切换/撤销对帖子的反应
// @Description 无反应时添加（作者声望 +1），同类型再次提交撤销（-1），不同类型替换（不变）
// @Tags 反应
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body reactionRequest true "帖子与反应类型"
// @Success 200 {object} response.Response{data=model.Post}
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/v1/reactions [post]
func (h *Handler) ToggleReaction(c *gin.Context) {
	u, ok := actor(c)
	if !ok {
		return
	}
	var req reactionRequest
	if !bindJSON(c, &req) {
		return
	}
	post, err := h.reactionService.Toggle(c.Request.Context(), u, req.PostID, model.ReactionType(req.Type))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, post)
}
