package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/forum/internal/service"
	"github.com/d60-Lab/forum/pkg/response"
)

type registerRequest struct {
	Username string `json:"username" binding:"required,username"`
	Email    string `json:"email" binding:"required,email,max=255"`
	Password string `json:"password" binding:"required,password"`
}

type loginRequest struct {
	UsernameOrEmail string `json:"username_or_email" binding:"required,max=255"`
	Password        string `json:"password" binding:"required,max=100"`
}

type changePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,password"`
}

// Register 注册
// @Summary 注册新用户
// @Tags 认证
// @Accept json
// @Produce json
// @Param request body registerRequest true "注册信息"
// @Success 201 {object} response.Response{data=service.AuthResult}
// @Failure 400 {object} response.Response
// @Router /api/v1/auth/register [post]
func (h *Handler) Register(c *gin.Context) {
	var req registerRequest
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.authService.Register(c.Request.Context(), service.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, res)
}

// Login 登录
// @Summary 用户名或邮箱登录
// @Tags 认证
// @Accept json
// @Produce json
// @Param request body loginRequest true "登录信息"
// @Success 200 {object} response.Response{data=service.AuthResult}
// @Failure 401 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /api/v1/auth/login [post]
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.authService.Login(c.Request.Context(), req.UsernameOrEmail, req.Password)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}

// Me 当前用户
// @Summary 当前登录用户
// @Tags 认证
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response{data=service.Account}
// @Failure 401 {object} response.Response
// @Router /api/v1/auth/me [get]
func (h *Handler) Me(c *gin.Context) {
	u, ok := actor(c)
	if !ok {
		return
	}
	me, err := h.authService.Me(c.Request.Context(), u.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, me)
}

// ChangePassword 修改密码
// @Summary 修改密码
// @Tags 认证
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body changePasswordRequest true "新旧密码"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /api/v1/auth/change-password [post]
func (h *Handler) ChangePassword(c *gin.Context) {
	u, ok := actor(c)
	if !ok {
		return
	}
	var req changePasswordRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.authService.ChangePassword(c.Request.Context(), u, req.OldPassword, req.NewPassword); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"message": "password updated"})
}
