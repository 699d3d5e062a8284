package catalog

import (
	"context"

	"recipe-recommender/internal/core/recipe"
)

// HealthChecker 可回報連線狀態的目錄
type HealthChecker interface {
	Health(ctx context.Context) error
}

var (
	_ recipe.Catalog = (*MemoryCatalog)(nil)
	_ recipe.Catalog = (*Neo4jCatalog)(nil)
	_ recipe.Catalog = (*HTTPCatalog)(nil)
	_ recipe.Catalog = (*CachedCatalog)(nil)
	_ recipe.Catalog = (*BreakerCatalog)(nil)

	_ HealthChecker = (*MemoryCatalog)(nil)
	_ HealthChecker = (*Neo4jCatalog)(nil)
	_ HealthChecker = (*HTTPCatalog)(nil)
	_ HealthChecker = (*CachedCatalog)(nil)
	_ HealthChecker = (*BreakerCatalog)(nil)
)
