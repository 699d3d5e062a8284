package recipe

import (
	"context"
	"math"

	"recipe-recommender/internal/pkg/common"
)

// MatchService 單一食譜評分服務
type MatchService struct {
	substitutions *SubstitutionService
}

// NewMatchService 創建評分服務
func NewMatchService(substitutions *SubstitutionService) *MatchService {
	return &MatchService{
		substitutions: substitutions,
	}
}

// Match 查詢缺少食材的替代關係後計算分數
func (m *MatchService) Match(ctx context.Context, recipe common.Recipe, available []string, filters MatchFilters) (Recommendation, error) {
	recs, err := m.MatchAll(ctx, []common.Recipe{recipe}, available, filters)
	if err != nil {
		return Recommendation{}, err
	}
	return recs[0], nil
}

// MatchAll 為多份食譜評分，所有食譜缺少的食材只查一次替代關係
// 回傳順序與 recipes 相同，不套用最低分數門檻
func (m *MatchService) MatchAll(ctx context.Context, recipes []common.Recipe, available []string, filters MatchFilters) ([]Recommendation, error) {
	availableNames := NormalizeSet(available)
	table := SubstitutionTable{}
	if len(availableNames) > 0 {
		have := newIngredientSet(availableNames)
		var missing []string
		for _, r := range recipes {
			missing = append(missing, missingIngredients(r, have)...)
		}
		var err error
		table, err = m.substitutions.Lookup(ctx, missing)
		if err != nil {
			return nil, err
		}
	}

	recs := make([]Recommendation, 0, len(recipes))
	for _, r := range recipes {
		recs = append(recs, Score(r, availableNames, filters, table))
	}
	return recs, nil
}

// Score 計算食譜對可用食材與篩選條件的綜合分數
//
// 四項分數相加後封頂於 1.0：
//   - base：命中食材數 / 食譜食材數
//   - utilization：命中食材數 / 可用食材數 * 0.3
//   - waste reduction：食譜各食材 wastage_reduction 平均 * 0.2
//   - dietary：食譜標籤與飲食偏好交集數 / 偏好數 * 0.3
//
// 分母為零時該項為 0。有替代品的缺少食材不列入 MissingIngredients。
func Score(recipe common.Recipe, available []string, filters MatchFilters, table SubstitutionTable) Recommendation {
	availableNames := NormalizeSet(available)
	have := newIngredientSet(availableNames)
	recipeNames := NormalizeSet(recipe.IngredientNames())

	matched := have.intersect(recipeNames)
	missing := missingIngredients(recipe, have)

	breakdown := ScoreBreakdown{}
	if len(recipeNames) > 0 {
		breakdown.Base = float64(len(matched)) / float64(len(recipeNames))
	}
	if len(availableNames) > 0 {
		breakdown.Utilization = float64(len(matched)) / float64(len(availableNames)) * UtilizationWeight
	}
	breakdown.WasteReduction = averageWastage(recipe.Ingredients) * WasteReductionWeight
	breakdown.Dietary = dietaryOverlap(recipe.Tags, filters.Dietary) * DietaryWeight
	breakdown.Raw = breakdown.Base + breakdown.Utilization + breakdown.WasteReduction + breakdown.Dietary

	substitutions := table.Resolve(missing, availableNames)
	substituted := make(ingredientSet, len(substitutions))
	for _, sub := range substitutions {
		substituted[sub.Original] = struct{}{}
	}
	reportedMissing := make([]string, 0, len(missing))
	for _, name := range missing {
		if !substituted.has(name) {
			reportedMissing = append(reportedMissing, name)
		}
	}

	return Recommendation{
		Recipe:             recipe,
		MatchScore:         math.Min(breakdown.Raw, MaxMatchScore),
		MatchedIngredients: matched,
		MissingIngredients: reportedMissing,
		Substitutions:      substitutions,
		Breakdown:          &breakdown,
	}
}

// missingIngredients 食譜中不在集合內的食材（已正規化、去重）
func missingIngredients(recipe common.Recipe, have ingredientSet) []string {
	names := NormalizeSet(recipe.IngredientNames())
	out := make([]string, 0, len(names))
	for _, n := range names {
		if !have.has(n) {
			out = append(out, n)
		}
	}
	return out
}

// averageWastage 所有食材使用的平均 wastage_reduction，負值視為 0
func averageWastage(uses []common.RecipeIngredient) float64 {
	if len(uses) == 0 {
		return 0
	}
	var total float64
	for _, use := range uses {
		if use.WastageReduction > 0 {
			total += use.WastageReduction
		}
	}
	return total / float64(len(uses))
}

// dietaryOverlap 偏好中有幾成出現在食譜標籤
func dietaryOverlap(tags, dietary []string) float64 {
	wanted := NormalizeSet(dietary)
	if len(wanted) == 0 {
		return 0
	}
	tagSet := newIngredientSet(NormalizeSet(tags))
	return float64(len(tagSet.intersect(wanted))) / float64(len(wanted))
}
