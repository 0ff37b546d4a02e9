package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tamu-thinktank/website-sub002/pkg/response"
)

// MustGetOfficerID 从 Gin 上下文中安全提取 officer_id。
// 如果 JWT 中间件未正确注入 officer_id，返回 false 并写入 401 响应。
// 调用方应在 ok=false 时直接 return。
func MustGetOfficerID(c *gin.Context) (string, bool) {
	return mustGetString(c, "officer_id")
}

// MustGetRole 从 Gin 上下文中安全提取 role。
func MustGetRole(c *gin.Context) (string, bool) {
	return mustGetString(c, "role")
}

// OptionalOfficerID 公开接口中读取可选的登录身份
func OptionalOfficerID(c *gin.Context) string {
	return c.GetString("officer_id")
}

// GetTokenMeta 读取当前 Token 的 JTI 与过期时间（登出使用）
func GetTokenMeta(c *gin.Context) (string, time.Time, bool) {
	jti := c.GetString("token_jti")
	exp, ok := c.Get("token_exp")
	if jti == "" || !ok {
		response.Unauthorized(c, 10002, "未认证")
		return "", time.Time{}, false
	}
	t, ok := exp.(time.Time)
	if !ok {
		response.Unauthorized(c, 10002, "未认证")
		return "", time.Time{}, false
	}
	return jti, t, true
}

func mustGetString(c *gin.Context, key string) (string, bool) {
	v, exists := c.Get(key)
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
