package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"

	"github.com/tamu-thinktank/website-sub002/pkg/response"
)

// BodyLimit 全局请求体大小限制中间件
// maxBytes: 允许的最大请求体字节数（如 1<<20 = 1MB）
// skipRoutes: 自行限制大小的路由（如简历上传），按 gin 路由模板匹配
func BodyLimit(maxBytes int64, skipRoutes ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if maxBytes <= 0 || lo.Contains(skipRoutes, c.FullPath()) {
			c.Next()
			return
		}
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		}

		c.Next()

		// 检查是否因为超出限制而失败
		if c.IsAborted() || c.Writer.Written() {
			return
		}
		for _, ginErr := range c.Errors {
			var tooLarge *http.MaxBytesError
			if errors.As(ginErr.Err, &tooLarge) {
				response.RequestEntityTooLarge(c, "请求体过大")
				return
			}
		}
	}
}
