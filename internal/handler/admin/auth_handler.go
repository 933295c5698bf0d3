// Package admin 提供后台管理相关的 HTTP Handler
package admin

import (
	"github.com/gin-gonic/gin"

	"github.com/dumeirei/innflow-backend/internal/common/handler"
	"github.com/dumeirei/innflow-backend/internal/common/response"
	"github.com/dumeirei/innflow-backend/internal/middleware"
	adminService "github.com/dumeirei/innflow-backend/internal/service/admin"
)

// AuthHandler 员工认证处理器
type AuthHandler struct {
	staffService *adminService.StaffService
}

// NewAuthHandler 创建员工认证处理器
func NewAuthHandler(staffSvc *adminService.StaffService) *AuthHandler {
	return &AuthHandler{staffService: staffSvc}
}

// Login 员工登录
// @Summary 员工登录
// @Tags 员工认证
// @Accept json
// @Produce json
// @Param request body adminService.LoginRequest true "请求参数"
// @Success 200 {object} response.Response{data=adminService.LoginResponse}
// @Router /api/v1/admin/auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req adminService.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}
	req.IP = c.ClientIP()

	result, err := h.staffService.Login(c.Request.Context(), &req)
	handler.MustSucceed(c, err, result)
}

// RefreshTokenRequest 刷新令牌请求
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// RefreshToken 刷新令牌
// @Summary 刷新员工令牌
// @Tags 员工认证
// @Accept json
// @Produce json
// @Param request body RefreshTokenRequest true "请求参数"
// @Success 200 {object} response.Response{data=jwt.TokenPair}
// @Router /api/v1/admin/auth/refresh [post]
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	pair, err := h.staffService.RefreshToken(c.Request.Context(), req.RefreshToken)
	handler.MustSucceed(c, err, pair)
}

// Profile 当前员工信息
// @Summary 当前员工信息
// @Tags 员工认证
// @Produce json
// @Security Bearer
// @Success 200 {object} response.Response{data=adminService.StaffInfo}
// @Router /api/v1/admin/auth/profile [get]
func (h *AuthHandler) Profile(c *gin.Context) {
	info, err := h.staffService.Profile(c.Request.Context(), middleware.GetStaffID(c))
	handler.MustSucceed(c, err, info)
}

// ChangePassword 修改密码
// @Summary 修改本人密码
// @Tags 员工认证
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body adminService.ChangePasswordRequest true "请求参数"
// @Success 200 {object} response.Response
// @Router /api/v1/admin/auth/password [put]
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	var req adminService.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	err := h.staffService.ChangePassword(c.Request.Context(), middleware.GetStaffID(c), &req)
	handler.MustSucceed(c, err, nil)
}
