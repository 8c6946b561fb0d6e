package handler

import (
	"github.com/bitfantasy/nimo-mdm/internal/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Login 用户登录
func (h *Handlers) Login(c *gin.Context) {
	var req service.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	result, err := h.services.Auth.Login(c.Request.Context(), &req)
	if err != nil {
		h.logger.Warn("login failed", zap.String("username", req.Username), zap.Error(err))
		Error(c, err)
		return
	}
	Success(c, result)
}

// RefreshToken 续签令牌
func (h *Handlers) RefreshToken(c *gin.Context) {
	result, err := h.services.Auth.Refresh(c.Request.Context(), GetUserID(c))
	if err != nil {
		Error(c, err)
		return
	}
	Success(c, result)
}

// Me 当前用户信息
func (h *Handlers) Me(c *gin.Context) {
	user, err := h.services.Auth.Me(c.Request.Context(), GetUserID(c))
	if err != nil {
		Error(c, err)
		return
	}
	Success(c, user)
}
