package catalog

import (
	"context"
	"errors"

	"recipe-recommender/internal/core/cache"
	"recipe-recommender/internal/core/recipe"
	"recipe-recommender/internal/pkg/common"
	"recipe-recommender/internal/pkg/metrics"

	"go.uber.org/zap"
)

const substitutionKeyPrefix = "subs:"

// CachedCatalog 只快取替代關係；食譜每次都讀取目錄的當下狀態
type CachedCatalog struct {
	recipe.Catalog
	store cache.Store
}

// NewCachedCatalog 以快取包裝目錄
func NewCachedCatalog(inner recipe.Catalog, store cache.Store) *CachedCatalog {
	return &CachedCatalog{
		Catalog: inner,
		store:   store,
	}
}

// FindSubstitutions 先查快取；快取失敗只記錄，不影響結果
func (c *CachedCatalog) FindSubstitutions(ctx context.Context, original string) ([]common.Substitute, error) {
	name := recipe.NormalizeIngredient(original)
	key := substitutionKeyPrefix + name

	data, err := c.store.Get(ctx, key)
	switch {
	case err == nil:
		var subs []common.Substitute
		if err := common.ParseJSONBytes(data, &subs); err == nil {
			common.LogCacheHit("substitutions", key)
			metrics.SubstitutionCache.WithLabelValues(metrics.CacheHit).Inc()
			return subs, nil
		}
		common.LogWarn("快取內容無法解析，改讀目錄", zap.String("鍵", key))
		metrics.SubstitutionCache.WithLabelValues(metrics.CacheError).Inc()
	case errors.Is(err, common.ErrCacheMiss):
		common.LogCacheMiss("substitutions", key)
		metrics.SubstitutionCache.WithLabelValues(metrics.CacheMiss).Inc()
	case ctx.Err() != nil:
		return nil, ctx.Err()
	default:
		common.LogWarn("快取讀取失敗，改讀目錄", zap.String("鍵", key), zap.Error(err))
		metrics.SubstitutionCache.WithLabelValues(metrics.CacheError).Inc()
	}

	subs, err := c.Catalog.FindSubstitutions(ctx, name)
	if err != nil {
		return nil, err
	}

	if data, err := common.MarshalJSON(subs); err == nil {
		if err := c.store.Set(ctx, key, data); err != nil {
			common.LogWarn("快取寫入失敗", zap.String("鍵", key), zap.Error(err))
		}
	}
	return subs, nil
}

// Health 轉給內層目錄
func (c *CachedCatalog) Health(ctx context.Context) error {
	if h, ok := c.Catalog.(HealthChecker); ok {
		return h.Health(ctx)
	}
	return nil
}
