package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/forum/internal/service"
	"github.com/d60-Lab/forum/internal/storage"
	"github.com/d60-Lab/forum/pkg/pagination"
	"github.com/d60-Lab/forum/pkg/response"
)

type updateProfileRequest struct {
	Bio *string `json:"bio" form:"bio" binding:"omitempty,max=500"`
}

type updateRoleRequest struct {
	Role string `json:"role" binding:"required,role"`
}

// ListUsers 用户列表
// @Summary 用户列表（管理员）
// @Tags 用户
// @Produce json
// @Security BearerAuth
// @Param page query int false "页码" default(1)
// @Param limit query int false "每页数量" default(20)
// @Success 200 {object} response.PagedResponse{data=[]service.Account,meta=pagination.Meta}
// @Failure 403 {object} response.Response
// @Router /api/v1/users [get]
func (h *Handler) ListUsers(c *gin.Context) {
	page, err := h.userService.List(c.Request.Context(), pagination.FromQuery(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Paged(c, page.Data, page.Meta)
}

// GetProfile 用户主页
// @Summary 用户主页（含粉丝数/关注数）
// @Tags 用户
// @Produce json
// @Param username path string true "用户名"
// @Success 200 {object} response.Response{data=service.Profile}
// @Failure 404 {object} response.Response
// @Router /api/v1/users/{username} [get]
func (h *Handler) GetProfile(c *gin.Context) {
	profile, err := h.userService.GetProfile(c.Request.Context(), c.Param("username"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, profile)
}

// ListUserPosts 用户的帖子
// @Summary 指定用户的帖子（最新在前）
// @Tags 用户
// @Produce json
// @Param username path string true "用户名"
// @Param page query int false "页码" default(1)
// @Param limit query int false "每页数量" default(20)
// @Success 200 {object} response.PagedResponse{data=[]model.Post,meta=pagination.Meta}
// @Failure 404 {object} response.Response
// @Router /api/v1/users/{username}/posts [get]
func (h *Handler) ListUserPosts(c *gin.Context) {
	page, err := h.postService.ListByAuthor(c.Request.Context(), c.Param("username"), pagination.FromQuery(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Paged(c, page.Data, page.Meta)
}

// UpdateProfile 修改个人资料
// @Summary 修改简介与头像（multipart 上传 avatar 文件，或 JSON 仅修改 bio）
// @Tags 用户
// @Accept mpfd
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param bio formData string false "简介"
// @Param avatar formData file false "头像（jpeg/png/gif/webp，≤2MB）"
// @Success 200 {object} response.Response{data=service.Profile}
// @Failure 400 {object} response.Response
// @Router /api/v1/users/profile [patch]
func (h *Handler) UpdateProfile(c *gin.Context) {
	u, ok := actor(c)
	if !ok {
		return
	}

	var in service.UpdateProfileInput
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		limit := h.maxUploadBytes
		if limit <= 0 {
			limit = storage.MaxAvatarBytes
		}
		// 预留表单字段的空间
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit+64<<10)

		var req updateProfileRequest
		if err := c.ShouldBind(&req); err != nil {
			response.ValidationError(c, err)
			return
		}
		in.Bio = req.Bio

		fh, err := c.FormFile("avatar")
		switch {
		case err == http.ErrMissingFile:
		case err != nil:
			response.BadRequest(c, "invalid avatar upload")
			return
		default:
			if _, err := storage.Validate(fh.Size, fh.Header.Get("Content-Type")); err != nil {
				response.Error(c, err)
				return
			}
			f, err := fh.Open()
			if err != nil {
				response.InternalError(c, err)
				return
			}
			defer f.Close()
			in.Avatar = &storage.Object{Body: f, Size: fh.Size, ContentType: fh.Header.Get("Content-Type")}
		}
	} else {
		var req updateProfileRequest
		if !bindJSON(c, &req) {
			return
		}
		in.Bio = req.Bio
	}

	profile, err := h.userService.UpdateProfile(c.Request.Context(), u, in)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, profile)
}

// UpdateRole 修改用户角色
// @Summary 修改用户角色（管理员）
// @Tags 用户
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param username path string true "用户名"
// @Param request body updateRoleRequest true "角色"
// @Success 200 {object} response.Response{data=service.Account}
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/v1/users/{username}/role [put]
func (h *Handler) UpdateRole(c *gin.Context) {
	var req updateRoleRequest
	if !bindJSON(c, &req) {
		return
	}
	u, err := h.userService.UpdateRole(c.Request.Context(), c.Param("username"), req.Role)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, u)
}

// ToggleActive 启用/停用账号
// @Summary 启用或停用账号（管理员，不能停用自己）
// @Tags 用户
// @Produce json
// @Security BearerAuth
// @Param username path string true "用户名"
// @Success 200 {object} response.Response{data=service.Account}
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/v1/users/{username}/toggle-active [post]
func (h *Handler) ToggleActive(c *gin.Context) {
	u, ok := actor(c)
	if !ok {
		return
	}
	target, err := h.userService.ToggleActive(c.Request.Context(), u, c.Param("username"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, target)
}
