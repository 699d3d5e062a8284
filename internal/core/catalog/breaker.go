package catalog

import (
	"context"
	"errors"

	"recipe-recommender/internal/core/recipe"
	"recipe-recommender/internal/infrastructure/config"
	"recipe-recommender/internal/pkg/common"
	"recipe-recommender/internal/pkg/metrics"

	gobreaker "github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
)

// BreakerCatalog 目錄連續失敗時暫停存取，直接回傳 gobreaker.ErrOpenState
type BreakerCatalog struct {
	inner   recipe.Catalog
	breaker *gobreaker.CircuitBreaker[any]
}

// NewBreakerCatalog 以斷路器包裝目錄
func NewBreakerCatalog(name string, inner recipe.Catalog, cfg config.BreakerConfig) *BreakerCatalog {
	threshold := cfg.FailureThreshold
	if threshold == 0 {
		threshold = 1
	}

	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: cfg.HalfOpenRequests,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		// 呼叫端 ctx 已結束（取消或逾時）不算目錄失敗；目錄自身的讀取逾時照算
		IsSuccessful: func(err error) bool {
			var done callerDone
			return err == nil || errors.As(err, &done)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			common.LogWarn("目錄斷路器狀態變更",
				zap.String("name", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
			metrics.BreakerState.WithLabelValues(name).Set(float64(to))
		},
	}
	metrics.BreakerState.WithLabelValues(name).Set(float64(gobreaker.StateClosed))

	return &BreakerCatalog{
		inner:   inner,
		breaker: gobreaker.NewCircuitBreaker[any](settings),
	}
}

// callerDone 呼叫端 ctx 結束後才發生的錯誤
type callerDone struct{ err error }

func (e callerDone) Error() string { return e.err.Error() }
func (e callerDone) Unwrap() error { return e.err }

// execute 經斷路器呼叫；呼叫端已離開時把錯誤標記為 callerDone，回傳前再還原
func (c *BreakerCatalog) execute(ctx context.Context, fn func() (any, error)) (any, error) {
	out, err := c.breaker.Execute(func() (any, error) {
		out, err := fn()
		if err != nil && ctx.Err() != nil {
			return nil, callerDone{err: err}
		}
		return out, err
	})
	var done callerDone
	if errors.As(err, &done) {
		return nil, done.err
	}
	return out, err
}

// FindPublishedRecipes 經斷路器讀取食譜
func (c *BreakerCatalog) FindPublishedRecipes(ctx context.Context, query recipe.RecipeQuery) ([]common.Recipe, error) {
	out, err := c.execute(ctx, func() (any, error) {
		return c.inner.FindPublishedRecipes(ctx, query)
	})
	if err != nil {
		return nil, err
	}
	return out.([]common.Recipe), nil
}

// FindSubstitutions 經斷路器讀取替代關係
func (c *BreakerCatalog) FindSubstitutions(ctx context.Context, original string) ([]common.Substitute, error) {
	out, err := c.execute(ctx, func() (any, error) {
		return c.inner.FindSubstitutions(ctx, original)
	})
	if err != nil {
		return nil, err
	}
	return out.([]common.Substitute), nil
}

// Health 不經過斷路器，讓就緒檢查能看到真正的連線狀態
func (c *BreakerCatalog) Health(ctx context.Context) error {
	if h, ok := c.inner.(HealthChecker); ok {
		return h.Health(ctx)
	}
	return nil
}

// State 目前的斷路器狀態
func (c *BreakerCatalog) State() gobreaker.State {
	return c.breaker.State()
}
