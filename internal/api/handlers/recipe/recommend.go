package recipe

import (
	"fmt"
	"net/http"
	"strconv"

	recipeService "recipe-recommender/internal/core/recipe"
	"recipe-recommender/internal/infrastructure/config"
	"recipe-recommender/internal/pkg/common"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// FiltersRequest 篩選條件
type FiltersRequest struct {
	MaxCookingTime *int     `json:"max_cooking_time,omitempty"` // 分鐘
	Difficulty     string   `json:"difficulty,omitempty"`       // EASY / MEDIUM / HARD
	Dietary        []string `json:"dietary,omitempty"`          // 飲食偏好，加分用
	Cuisine        []string `json:"cuisine,omitempty"`          // 料理類型，目前不參與評分
}

// RecommendRequest 依可用食材推薦
type RecommendRequest struct {
	Ingredients []string        `json:"ingredients" binding:"max=200,dive,max=100"`
	Filters     *FiltersRequest `json:"filters,omitempty"`
	Limit       *int            `json:"limit,omitempty"`
}

// ExpiringRequest 依即將過期食材推薦
type ExpiringRequest struct {
	Ingredients []string `json:"ingredients" binding:"max=200,dive,max=100"`
	Limit       *int     `json:"limit,omitempty"`
}

// RecommendResponse 推薦結果
type RecommendResponse struct {
	Recommendations []recipeService.Recommendation `json:"recommendations"`
	Count           int                            `json:"count"`
}

// TrendingResponse 熱門食譜
type TrendingResponse struct {
	Recipes []common.Recipe `json:"recipes"`
	Count   int             `json:"count"`
}

// Handler 食譜推薦處理程序
type Handler struct {
	suggestions *recipeService.SuggestionService
	limits      config.RecommendConfig
	debug       bool
}

// NewHandler 創建新的食譜推薦處理程序
func NewHandler(suggestions *recipeService.SuggestionService, limits config.RecommendConfig, debug bool) *Handler {
	return &Handler{
		suggestions: suggestions,
		limits:      limits,
		debug:       debug,
	}
}

// HandleRecommend POST /recommendations
func (h *Handler) HandleRecommend(c *gin.Context) {
	requestID := common.RequestIDOrNew(requestid.Get(c))

	var req RecommendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, requestID, "請求格式無效", common.ErrInvalidRequest.Wrap(err))
		return
	}

	filters, err := req.Filters.toMatchFilters()
	if err != nil {
		h.respondError(c, requestID, "篩選條件無效", err)
		return
	}
	limit, err := resolveLimit(req.Limit, h.limits.DefaultLimit, h.limits.MaxLimit)
	if err != nil {
		h.respondError(c, requestID, "limit 無效", err)
		return
	}

	common.LogInfo("開始處理食譜推薦請求",
		zap.String("request_id", requestID),
		zap.Int("ingredients", len(req.Ingredients)),
		zap.Int("limit", limit),
	)

	recs, err := h.suggestions.Recommend(c.Request.Context(), req.Ingredients, filters, limit)
	if err != nil {
		h.respondError(c, requestID, "食譜推薦失敗", err)
		return
	}

	c.JSON(http.StatusOK, RecommendResponse{
		Recommendations: recs,
		Count:           len(recs),
	})
}

// HandleRecommendExpiring POST /recommendations/expiring
func (h *Handler) HandleRecommendExpiring(c *gin.Context) {
	requestID := common.RequestIDOrNew(requestid.Get(c))

	var req ExpiringRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, requestID, "請求格式無效", common.ErrInvalidRequest.Wrap(err))
		return
	}
	limit, err := resolveLimit(req.Limit, h.limits.ExpiringDefaultLimit, h.limits.ExpiringMaxLimit)
	if err != nil {
		h.respondError(c, requestID, "limit 無效", err)
		return
	}

	common.LogInfo("開始處理過期食材推薦請求",
		zap.String("request_id", requestID),
		zap.Int("expiring", len(req.Ingredients)),
		zap.Int("limit", limit),
	)

	recs, err := h.suggestions.RecommendForExpiring(c.Request.Context(), req.Ingredients, limit)
	if err != nil {
		h.respondError(c, requestID, "過期食材推薦失敗", err)
		return
	}

	c.JSON(http.StatusOK, RecommendResponse{
		Recommendations: recs,
		Count:           len(recs),
	})
}

// HandleTrending GET /recipes/trending?limit=N
func (h *Handler) HandleTrending(c *gin.Context) {
	requestID := common.RequestIDOrNew(requestid.Get(c))

	var requested *int
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			h.respondError(c, requestID, "limit 無效", common.ErrInvalidLimit.Wrap(err))
			return
		}
		requested = &n
	}
	limit, err := resolveLimit(requested, h.limits.DefaultLimit, h.limits.MaxLimit)
	if err != nil {
		h.respondError(c, requestID, "limit 無效", err)
		return
	}

	recipes, err := h.suggestions.Trending(c.Request.Context(), limit)
	if err != nil {
		h.respondError(c, requestID, "熱門食譜查詢失敗", err)
		return
	}

	c.JSON(http.StatusOK, TrendingResponse{
		Recipes: recipes,
		Count:   len(recipes),
	})
}

// resolveLimit 未指定時用預設值，超過上限時截到上限，零或負數回傳錯誤
func resolveLimit(requested *int, defaultLimit, maxLimit int) (int, error) {
	if requested == nil {
		return defaultLimit, nil
	}
	if *requested <= 0 {
		return 0, fmt.Errorf("%w: got %d", recipeService.ErrInvalidLimit, *requested)
	}
	if *requested > maxLimit {
		return maxLimit, nil
	}
	return *requested, nil
}

func (f *FiltersRequest) toMatchFilters() (recipeService.MatchFilters, error) {
	if f == nil {
		return recipeService.MatchFilters{}, nil
	}

	filters := recipeService.MatchFilters{
		MaxCookingTime: f.MaxCookingTime,
		Dietary:        f.Dietary,
		Cuisine:        f.Cuisine,
	}
	if f.MaxCookingTime != nil && *f.MaxCookingTime < 0 {
		return filters, common.NewValidationError("max_cooking_time must not be negative")
	}
	if f.Difficulty != "" {
		d, err := common.ParseDifficulty(f.Difficulty)
		if err != nil {
			return filters, err
		}
		filters.Difficulty = &d
	}
	return filters, nil
}
