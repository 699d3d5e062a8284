package health

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"recipe-recommender/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const readinessTimeout = 2 * time.Second

// Checker 可回報依賴狀態的元件
type Checker interface {
	Health(ctx context.Context) error
}

// HealthResponse 健康檢查響應
type HealthResponse struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Version   string                 `json:"version"`
	Catalog   string                 `json:"catalog"`
	Uptime    string                 `json:"uptime"`
	Runtime   map[string]interface{} `json:"runtime"`
}

// Handler 健康檢查處理器
type Handler struct {
	version   string
	backend   string
	catalog   Checker
	startedAt time.Time
}

// NewHandler 創建健康檢查處理器，catalog 可為 nil
func NewHandler(version, backend string, catalog Checker) *Handler {
	return &Handler{
		version:   version,
		backend:   backend,
		catalog:   catalog,
		startedAt: time.Now(),
	}
}

// HealthCheck 回傳版本與執行期資訊
func (h *Handler) HealthCheck(c *gin.Context) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	c.JSON(http.StatusOK, HealthResponse{
		Status:    "ok",
		Timestamp: time.Now(),
		Version:   h.version,
		Catalog:   h.backend,
		Uptime:    time.Since(h.startedAt).Round(time.Second).String(),
		Runtime: map[string]interface{}{
			"goroutines": runtime.NumGoroutine(),
			"memory": map[string]interface{}{
				"alloc":       m.Alloc,
				"total_alloc": m.TotalAlloc,
				"sys":         m.Sys,
				"num_gc":      m.NumGC,
			},
		},
	})
}

// ReadinessCheck 目錄可連線時才算就緒
func (h *Handler) ReadinessCheck(c *gin.Context) {
	if h.catalog != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), readinessTimeout)
		defer cancel()

		if err := h.catalog.Health(ctx); err != nil {
			common.LogWarn("Readiness check failed",
				zap.String("catalog", h.backend),
				zap.Error(err),
			)
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":  "not_ready",
				"catalog": h.backend,
				"error":   common.ErrCatalogUnavailable.Message,
			})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "ready",
		"catalog": h.backend,
	})
}

// LivenessCheck 存活檢查處理器
func (h *Handler) LivenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "alive",
	})
}
