package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"staffhub/backend/internal/model"
	apperrors "staffhub/backend/pkg/errors"
	"staffhub/backend/pkg/jwt"
	"staffhub/backend/pkg/response"
)

// MustGetUserID 从 Gin 上下文中安全提取 user_id。
// 如果 JWT 中间件未正确注入 user_id，返回 false 并写入 401 响应。
// 调用方应在 ok=false 时直接 return。
func MustGetUserID(c *gin.Context) (string, bool) {
	v, exists := c.Get("user_id")
	if !exists {
		response.Unauthorized(c, 10002, "未认证")
		return "", false
	}
	s, ok := v.(string)
	if !ok || s == "" {
		response.Unauthorized(c, 10002, "未认证")
		return "", false
	}
	return s, true
}

// MustGetRole 从 Gin 上下文中安全提取 role。
func MustGetRole(c *gin.Context) (string, bool) {
	v, exists := c.Get("role")
	if !exists {
		response.Unauthorized(c, 10002, "未认证")
		return "", false
	}
	s, ok := v.(string)
	if !ok || s == "" {
		response.Unauthorized(c, 10002, "未认证")
		return "", false
	}
	return s, true
}

// MustGetClaims 从 Gin 上下文中安全提取完整 JWT Claims（登出时需要 jti）。
func MustGetClaims(c *gin.Context) (*jwt.Claims, bool) {
	v, exists := c.Get("claims")
	if !exists {
		response.Unauthorized(c, 10002, "未认证")
		return nil, false
	}
	claims, ok := v.(*jwt.Claims)
	if !ok {
		response.Unauthorized(c, 10002, "未认证")
		return nil, false
	}
	return claims, true
}

// isAdmin 当前请求是否来自管理员
func isAdmin(c *gin.Context) bool {
	role, _ := c.Get("role")
	s, _ := role.(string)
	return s == model.RoleAdmin
}

// handleServiceError 业务错误类别 → HTTP 状态码的统一映射。
// 未识别的错误一律按 500 处理，不向客户端泄漏内部细节。
func handleServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, apperrors.ErrValidation):
		response.BadRequest(c, 10001, err.Error())
	case errors.Is(err, apperrors.ErrForbidden):
		response.Forbidden(c, 10003, err.Error())
	case errors.Is(err, apperrors.ErrNotFound):
		response.NotFound(c, 20001, err.Error())
	case errors.Is(err, apperrors.ErrConflict):
		response.Conflict(c, 20002, err.Error())
	case errors.Is(err, apperrors.ErrCapacityExceeded):
		response.Conflict(c, 20003, err.Error())
	case errors.Is(err, apperrors.ErrInvalidState):
		response.Error(c, http.StatusUnprocessableEntity, 20004, err.Error())
	default:
		response.InternalError(c)
	}
}
