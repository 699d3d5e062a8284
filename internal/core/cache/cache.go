package cache

import (
	"context"
	"fmt"

	"recipe-recommender/internal/infrastructure/config"
)

// New 依設定建立快取後端
func New(ctx context.Context, cfg config.CacheConfig) (Store, error) {
	switch cfg.Backend {
	case config.CacheMemory:
		return NewManager(cfg), nil
	case config.CacheRedis:
		return NewService(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
	}
}
