package recipe

import (
	"context"
	"sort"
	"time"

	"recipe-recommender/internal/pkg/common"
	"recipe-recommender/internal/pkg/metrics"

	"go.uber.org/zap"
)

// SuggestionService 食譜推薦服務
// 不保留任何請求之間的狀態，每次呼叫只依輸入與當下目錄計算
type SuggestionService struct {
	catalog Catalog
	matcher *MatchService
}

// NewSuggestionService 創建新的食譜推薦服務
func NewSuggestionService(catalog Catalog, lookupConcurrency int) *SuggestionService {
	return &SuggestionService{
		catalog: catalog,
		matcher: NewMatchService(NewSubstitutionService(catalog, lookupConcurrency)),
	}
}

// Recommend 依可用食材推薦食譜
// 分數需嚴格大於 MinMatchScore；同分時保留目錄順序
func (s *SuggestionService) Recommend(ctx context.Context, available []string, filters MatchFilters, limit int) (results []Recommendation, err error) {
	defer func() { metrics.ObserveRanking("recommend", len(results), err) }()

	if err := validateLimit(limit); err != nil {
		return nil, err
	}
	start := time.Now()

	query := RecipeQuery{
		MaxCookingTime: filters.MaxCookingTime,
		Difficulty:     filters.Difficulty,
	}
	candidates, err := s.findCandidates(ctx, query)
	if err != nil {
		return nil, err
	}

	scored, err := s.matcher.MatchAll(ctx, candidates, available, filters)
	if err != nil {
		return nil, err
	}

	results = make([]Recommendation, 0, len(scored))
	for _, rec := range scored {
		if rec.MatchScore <= MinMatchScore {
			continue
		}
		results = append(results, rec)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sortByScore(results)
	results = truncate(results, limit)

	common.LogInfo("食譜推薦完成",
		zap.Int("available", len(available)),
		zap.Int("candidates", len(candidates)),
		zap.Int("results", len(results)),
		zap.Strings("cuisine", filters.Cuisine),
		zap.Duration("elapsed", time.Since(start)),
	)
	return results, nil
}

// RecommendForExpiring 優先推薦能用掉即將過期食材的食譜
// 分數 = 食譜用到的過期食材數 / 過期食材總數；不做替代與加分，也沒有最低門檻
func (s *SuggestionService) RecommendForExpiring(ctx context.Context, expiring []string, limit int) (results []Recommendation, err error) {
	defer func() { metrics.ObserveRanking("expiring", len(results), err) }()

	if err := validateLimit(limit); err != nil {
		return nil, err
	}

	expiringNames := NormalizeSet(expiring)
	if len(expiringNames) == 0 {
		return []Recommendation{}, nil
	}
	start := time.Now()

	candidates, err := s.findCandidates(ctx, RecipeQuery{MustIncludeAnyIngredient: expiringNames})
	if err != nil {
		return nil, err
	}

	expiringSet := newIngredientSet(expiringNames)
	results = make([]Recommendation, 0, len(candidates))
	for _, candidate := range candidates {
		used := expiringSet.intersect(NormalizeSet(candidate.IngredientNames()))
		if len(used) == 0 {
			continue
		}
		results = append(results, Recommendation{
			Recipe:             candidate,
			MatchScore:         float64(len(used)) / float64(len(expiringNames)),
			MatchedIngredients: used,
			MissingIngredients: []string{},
			Substitutions:      []SubstitutionMatch{},
			Urgency:            UrgencyHigh,
		})
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sortByScore(results)
	results = truncate(results, limit)

	common.LogInfo("過期食材推薦完成",
		zap.Int("expiring", len(expiringNames)),
		zap.Int("candidates", len(candidates)),
		zap.Int("results", len(results)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return results, nil
}

// Trending 依互動數排序：likes、saves、views 皆為遞減
func (s *SuggestionService) Trending(ctx context.Context, limit int) (recipes []common.Recipe, err error) {
	defer func() { metrics.ObserveRanking("trending", len(recipes), err) }()

	if err := validateLimit(limit); err != nil {
		return nil, err
	}

	recipes, err = s.findCandidates(ctx, RecipeQuery{})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(recipes, func(i, j int) bool {
		a, b := recipes[i], recipes[j]
		if a.Likes != b.Likes {
			return a.Likes > b.Likes
		}
		if a.Saves != b.Saves {
			return a.Saves > b.Saves
		}
		return a.Views > b.Views
	})
	if len(recipes) > limit {
		recipes = recipes[:limit]
	}

	common.LogDebug("熱門食譜排序完成", zap.Int("results", len(recipes)))
	return recipes, nil
}

// findCandidates 從目錄取得候選食譜，並再次套用硬性篩選
func (s *SuggestionService) findCandidates(ctx context.Context, query RecipeQuery) ([]common.Recipe, error) {
	start := time.Now()
	recipes, err := s.catalog.FindPublishedRecipes(ctx, query)
	common.LogCatalogCall("find published recipes", time.Since(start), err)
	metrics.ObserveCatalogCall("find published recipes", time.Since(start), err)
	if err != nil {
		return nil, wrapCatalogError(ctx, "find published recipes", err)
	}

	candidates := make([]common.Recipe, 0, len(recipes))
	for _, r := range recipes {
		if query.Matches(r) {
			candidates = append(candidates, r.WithEmptySlices())
		}
	}
	if dropped := len(recipes) - len(candidates); dropped > 0 {
		common.LogWarn("目錄回傳不符篩選的食譜", zap.Int("dropped", dropped))
	}
	return candidates, nil
}

func sortByScore(results []Recommendation) {
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].MatchScore > results[j].MatchScore
	})
}

func truncate(results []Recommendation, limit int) []Recommendation {
	if len(results) > limit {
		return results[:limit]
	}
	return results
}
