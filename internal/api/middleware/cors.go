package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"
)

// CORS 跨域中间件
// allowOrigins 含 "*" 时回显任意 Origin；申请人页面与干事后台可能部署在不同域名
func CORS(allowOrigins []string) gin.HandlerFunc {
	origins := lo.SliceToMap(allowOrigins, func(o string) (string, struct{}) {
		return strings.TrimRight(o, "/"), struct{}{}
	})
	_, anyOrigin := origins["*"]

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		_, allowed := origins[origin]

		if origin != "" && (allowed || anyOrigin) {
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Vary", "Origin")
			c.Header("Access-Control-Allow-Credentials", "true")
			c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With, X-Request-ID")
			c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
			c.Header("Access-Control-Expose-Headers", "Content-Disposition, X-Request-ID")
			c.Header("Access-Control-Max-Age", "86400")
		}

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
