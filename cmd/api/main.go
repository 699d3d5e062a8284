package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"recipe-recommender/internal/api"
	"recipe-recommender/internal/core/cache"
	"recipe-recommender/internal/core/catalog"
	recipeService "recipe-recommender/internal/core/recipe"
	"recipe-recommender/internal/infrastructure/config"
	"recipe-recommender/internal/infrastructure/database"
	"recipe-recommender/internal/pkg/common"

	"go.uber.org/zap"
)

func main() {
	// 載入設定（含 .env）
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 初始化 logger（需在載入 config 後）
	if err := common.InitLogger(cfg.Log.Level, cfg.Log.Dir); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer common.Sync()

	common.LogInfo("載入設定",
		zap.String("catalog_backend", cfg.Catalog.Backend),
		zap.Bool("cache_enabled", cfg.Cache.Enabled),
		zap.String("cache_backend", cfg.Cache.Backend),
		zap.Bool("breaker_enabled", cfg.Catalog.Breaker.Enabled),
		zap.Bool("metrics_enabled", cfg.Metrics.Enabled),
	)

	ctx := context.Background()

	// 初始化目錄
	cat, closeCatalog, err := buildCatalog(ctx, cfg)
	if err != nil {
		common.LogFatal("Failed to initialize catalog", zap.Error(err))
	}
	defer closeCatalog()

	// 斷路器在快取之內，快取命中不受影響
	var recipeCatalog recipeService.Catalog = cat
	if cfg.Catalog.Breaker.Enabled {
		recipeCatalog = catalog.NewBreakerCatalog("catalog-"+cfg.Catalog.Backend, recipeCatalog, cfg.Catalog.Breaker)
	}

	// 初始化快取（只快取替代關係）
	if cfg.Cache.Enabled {
		store, err := cache.New(ctx, cfg.Cache)
		if err != nil {
			common.LogFatal("Failed to initialize cache", zap.Error(err))
		}
		defer store.Close()
		recipeCatalog = catalog.NewCachedCatalog(recipeCatalog, store)
	}

	suggestions := recipeService.NewSuggestionService(recipeCatalog, cfg.Recommend.LookupConcurrency)

	router := api.SetupRouter(cfg, api.Dependencies{
		Suggestions: suggestions,
		Catalog:     cat,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// 啟動服務器
	serverErr := make(chan error, 1)
	go func() {
		common.LogInfo("啟動應用",
			zap.String("version", cfg.App.Version),
			zap.String("env", cfg.App.Env),
			zap.Int("port", cfg.Server.Port),
			zap.Bool("debug", cfg.App.Debug),
		)

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// 等待中斷信號
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-serverErr:
		common.LogFatal("Failed to start server", zap.Error(err))
	}

	common.LogInfo("Shutting down server...")

	// 設置關閉超時
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		common.LogError("Server forced to shutdown", zap.Error(err))
		return
	}

	common.LogInfo("Server exited")
}

// catalogBackend 目錄後端需同時支援查詢與健康檢查
type catalogBackend interface {
	recipeService.Catalog
	catalog.HealthChecker
}

// buildCatalog 依設定建立目錄後端，回傳的 close 函式負責釋放連線
func buildCatalog(ctx context.Context, cfg *config.Config) (catalogBackend, func(), error) {
	var seed *catalog.Seed
	if cfg.Catalog.SeedFile != "" {
		s, err := catalog.LoadSeedFile(cfg.Catalog.SeedFile)
		if err != nil {
			return nil, nil, err
		}
		seed = s
	}

	switch cfg.Catalog.Backend {
	case config.CatalogNeo4j:
		client, err := database.NewNeo4jClient(ctx, cfg.Neo4j)
		if err != nil {
			return nil, nil, err
		}
		closeFn := func() {
			if err := client.Close(context.Background()); err != nil {
				common.LogWarn("Failed to close Neo4j driver", zap.Error(err))
			}
		}

		neo := catalog.NewNeo4jCatalog(client, cfg.Catalog.Timeout)
		if seed != nil {
			importCtx, cancel := context.WithTimeout(ctx, time.Minute)
			defer cancel()
			if err := neo.Import(importCtx, seed); err != nil {
				closeFn()
				return nil, nil, err
			}
		}
		return neo, closeFn, nil

	case config.CatalogHTTP:
		return catalog.NewHTTPCatalog(cfg.CatalogAPI), func() {}, nil

	default:
		if seed == nil {
			common.LogWarn("未設定種子檔，記憶體目錄為空")
			return catalog.NewMemoryCatalog(), func() {}, nil
		}
		mem, err := catalog.NewMemoryCatalogFromSeed(seed)
		if err != nil {
			return nil, nil, err
		}
		return mem, func() {}, nil
	}
}
