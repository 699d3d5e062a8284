package middleware

import (
	"time"

	"recipe-recommender/internal/pkg/metrics"

	"github.com/gin-gonic/gin"
)

// Metrics 記錄每個路由的請求數與處理時間；未匹配的路徑歸為同一類，避免標籤爆量
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.ObserveHTTP(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
