package recipe

import (
	"recipe-recommender/internal/pkg/common"
)

// 評分權重
const (
	UtilizationWeight    = 0.3
	WasteReductionWeight = 0.2
	DietaryWeight        = 0.3

	// MaxMatchScore 總分上限
	MaxMatchScore = 1.0
	// MinMatchScore 一般推薦的門檻，分數必須嚴格大於此值
	MinMatchScore = 0.2
)

// 預設筆數
const (
	DefaultLimit         = 10
	ExpiringDefaultLimit = 5
	TrendingDefaultLimit = 10
)

// Urgency 給呼叫端的緊急程度提示
type Urgency string

const (
	UrgencyHigh Urgency = "high"
)

// MatchFilters 呼叫端提供的篩選條件
// MaxCookingTime 與 Difficulty 為硬性篩選；Dietary 為加分項；Cuisine 目前僅供參考，不參與評分
type MatchFilters struct {
	MaxCookingTime *int               `json:"max_cooking_time,omitempty"`
	Difficulty     *common.Difficulty `json:"difficulty,omitempty"`
	Dietary        []string           `json:"dietary,omitempty"`
	Cuisine        []string           `json:"cuisine,omitempty"`
}

// SubstitutionMatch 缺少的食材有可用替代品
type SubstitutionMatch struct {
	Original   string  `json:"original"`
	Substitute string  `json:"substitute"`
	Confidence float64 `json:"confidence"`
}

// ScoreBreakdown 各項分數，Raw 為封頂前總和
type ScoreBreakdown struct {
	Base           float64 `json:"base"`
	Utilization    float64 `json:"utilization"`
	WasteReduction float64 `json:"waste_reduction"`
	Dietary        float64 `json:"dietary"`
	Raw            float64 `json:"raw"`
}

// Recommendation 推薦結果，每次請求重新計算，不落地
type Recommendation struct {
	Recipe             common.Recipe       `json:"recipe"`
	MatchScore         float64             `json:"match_score"`
	MatchedIngredients []string            `json:"matched_ingredients"`
	MissingIngredients []string            `json:"missing_ingredients"`
	Substitutions      []SubstitutionMatch `json:"substitutions"`
	Breakdown          *ScoreBreakdown     `json:"breakdown,omitempty"`
	Urgency            Urgency             `json:"urgency,omitempty"`
}

// RecipeQuery 目錄層級的硬性篩選
type RecipeQuery struct {
	MaxCookingTime *int
	Difficulty     *common.Difficulty
	// MustIncludeAnyIngredient 已正規化；非空時食譜至少要包含其中一項
	MustIncludeAnyIngredient []string
}

// Matches 檢查食譜是否符合查詢（含 PUBLISHED 狀態）
func (q RecipeQuery) Matches(r common.Recipe) bool {
	if r.Status != common.StatusPublished {
		return false
	}
	if q.MaxCookingTime != nil && r.CookingTime > *q.MaxCookingTime {
		return false
	}
	if q.Difficulty != nil && r.Difficulty != *q.Difficulty {
		return false
	}
	if len(q.MustIncludeAnyIngredient) > 0 {
		wanted := newIngredientSet(NormalizeSet(q.MustIncludeAnyIngredient))
		for _, ing := range r.Ingredients {
			if wanted.has(NormalizeIngredient(ing.Name)) {
				return true
			}
		}
		return false
	}
	return true
}
