package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"tutoros/backend/pkg/jwt"
	"tutoros/backend/pkg/response"
)

// TokenRevoker 令牌注销（Redis 黑名单）
type TokenRevoker interface {
	BlacklistToken(ctx context.Context, jti string, ttl time.Duration) error
}

// AuthHandler 认证相关 HTTP 处理器
// 令牌由外部认证服务签发，本服务只负责注销与身份回显
type AuthHandler struct {
	revoker TokenRevoker
}

// NewAuthHandler 创建 AuthHandler；revoker 为 nil 时登出不可用
func NewAuthHandler(revoker TokenRevoker) *AuthHandler {
	return &AuthHandler{revoker: revoker}
}

// Logout 用户登出：当前 Token 加入黑名单直至过期
// POST /api/v1/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	v, exists := c.Get("claims")
	claims, ok := v.(*jwt.Claims)
	if !exists || !ok {
		response.Unauthorized(c, 10002, "未认证")
		return
	}
	if h.revoker == nil {
		response.Error(c, http.StatusServiceUnavailable, 10006, "登出服务暂不可用")
		return
	}

	if err := h.revoker.BlacklistToken(c.Request.Context(), claims.ID, claims.RemainingTTL(time.Now())); err != nil {
		response.InternalError(c)
		return
	}
	response.OK(c, nil)
}

// Me 返回当前令牌中的身份信息
// GET /api/v1/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	response.OK(c, gin.H{
		"user_id":   actor.UserID,
		"tenant_id": actor.TenantID,
		"role":      actor.Role,
	})
}
