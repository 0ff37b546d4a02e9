package middleware

import (
	"context"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tamu-thinktank/website-sub002/pkg/jwt"
	"github.com/tamu-thinktank/website-sub002/pkg/response"
)

// TokenChecker Token 黑名单与干事吊销查询
type TokenChecker interface {
	IsBlacklisted(ctx context.Context, jti string) (bool, error)
	IsOfficerRevoked(ctx context.Context, officerID string, issuedAt time.Time) (bool, error)
}

// JWTAuth JWT 认证中间件
// 从 Authorization: Bearer <token> 中提取并验证 Access Token；
// WebSocket 握手无法携带自定义头，允许使用 ?token= 代替。
// blacklist 为 nil 时跳过黑名单检查
func JWTAuth(jwtMgr *jwt.Manager, blacklist TokenChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr, ok := extractToken(c)
		if !ok {
			response.Unauthorized(c, 10002, "缺少认证头或格式无效")
			c.Abort()
			return
		}

		claims, err := jwtMgr.ParseToken(tokenStr)
		if err != nil {
			response.Unauthorized(c, 10002, "Token 无效或已过期")
			c.Abort()
			return
		}

		if blacklist != nil {
			revoked, err := isRevoked(c.Request.Context(), blacklist, claims)
			// Redis 出错时降级放行
			if err == nil && revoked {
				response.Unauthorized(c, 10002, "Token 已注销")
				c.Abort()
				return
			}
		}

		setClaims(c, claims)
		c.Next()
	}
}

// OptionalJWT 可选认证：携带有效 Token 时注入身份，否则按匿名处理
func OptionalJWT(jwtMgr *jwt.Manager, blacklist TokenChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.Next()
			return
		}
		tokenStr, ok := bearerToken(header)
		if !ok {
			c.Next()
			return
		}
		claims, err := jwtMgr.ParseToken(tokenStr)
		if err != nil {
			c.Next()
			return
		}
		if blacklist != nil {
			if revoked, err := isRevoked(c.Request.Context(), blacklist, claims); err == nil && revoked {
				c.Next()
				return
			}
		}

		setClaims(c, claims)
		c.Next()
	}
}

// RoleAuth 角色权限中间件
// 检查当前干事是否具有指定角色之一
func RoleAuth(allowedRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userRole := c.GetString("role")
		if userRole == "" {
			response.Unauthorized(c, 10002, "未认证")
			c.Abort()
			return
		}

		for _, r := range allowedRoles {
			if userRole == r {
				c.Next()
				return
			}
		}

		response.Forbidden(c, 10003, "无权限访问")
		c.Abort()
	}
}

// isRevoked 单个 Token 注销或干事被停用、删除、改角色后，旧 Token 均视为失效
func isRevoked(ctx context.Context, checker TokenChecker, claims *jwt.Claims) (bool, error) {
	revoked, err := checker.IsBlacklisted(ctx, claims.ID)
	if err != nil || revoked {
		return revoked, err
	}
	var issuedAt time.Time
	if claims.IssuedAt != nil {
		issuedAt = claims.IssuedAt.Time
	}
	return checker.IsOfficerRevoked(ctx, claims.OfficerID, issuedAt)
}

func extractToken(c *gin.Context) (string, bool) {
	if header := c.GetHeader("Authorization"); header != "" {
		return bearerToken(header)
	}
	if strings.EqualFold(c.GetHeader("Upgrade"), "websocket") {
		if t := c.Query("token"); t != "" {
			return t, true
		}
	}
	return "", false
}

func bearerToken(header string) (string, bool) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

func setClaims(c *gin.Context, claims *jwt.Claims) {
	c.Set("officer_id", claims.OfficerID)
	c.Set("role", claims.Role)
	c.Set("team_id", claims.TeamID)
	c.Set("token_jti", claims.ID)
	if claims.ExpiresAt != nil {
		c.Set("token_exp", claims.ExpiresAt.Time)
	} else {
		c.Set("token_exp", time.Now())
	}
}
