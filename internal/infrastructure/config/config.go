package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// 目錄後端
const (
	CatalogMemory = "memory"
	CatalogNeo4j  = "neo4j"
	CatalogHTTP   = "http"
)

// 快取後端
const (
	CacheMemory = "memory"
	CacheRedis  = "redis"
)

// Config 應用配置
type Config struct {
	App        AppConfig        `mapstructure:"app"`
	Server     ServerConfig     `mapstructure:"server"`
	Log        LogConfig        `mapstructure:"log"`
	Catalog    CatalogConfig    `mapstructure:"catalog"`
	Neo4j      Neo4jConfig      `mapstructure:"neo4j"`
	CatalogAPI CatalogAPIConfig `mapstructure:"catalog_api"`
	Cache      CacheConfig      `mapstructure:"cache"`
	RateLimit  RateLimitConfig  `mapstructure:"rate_limit"`
	Recommend  RecommendConfig  `mapstructure:"recommend"`
	Metrics    MetricsConfig    `mapstructure:"metrics"`
}

// AppConfig 應用程式設定
type AppConfig struct {
	Env     string `mapstructure:"env"`
	Debug   bool   `mapstructure:"debug"`
	Version string `mapstructure:"version"`
	Name    string `mapstructure:"name"`
}

// ServerConfig 服務器配置
type ServerConfig struct {
	Port           int           `mapstructure:"port"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	IdleTimeout    time.Duration `mapstructure:"idle_timeout"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	MaxBodyBytes   int64         `mapstructure:"max_body_bytes"`
}

// LogConfig 日誌設定
type LogConfig struct {
	Level string `mapstructure:"level"`
	Dir   string `mapstructure:"dir"`
}

// CatalogConfig 食譜目錄設定
type CatalogConfig struct {
	Backend  string        `mapstructure:"backend"`
	SeedFile string        `mapstructure:"seed_file"`
	Timeout  time.Duration `mapstructure:"timeout"`
	Breaker  BreakerConfig `mapstructure:"breaker"`
}

// BreakerConfig 目錄斷路器設定
type BreakerConfig struct {
	Enabled          bool          `mapstructure:"enabled"`
	FailureThreshold uint32        `mapstructure:"failure_threshold"` // 連續失敗幾次後斷開
	OpenTimeout      time.Duration `mapstructure:"open_timeout"`      // 斷開後多久進入半開
	HalfOpenRequests uint32        `mapstructure:"half_open_requests"`
}

// MetricsConfig Prometheus 指標設定
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// Neo4jConfig Neo4j 連線設定
type Neo4jConfig struct {
	URI      string `mapstructure:"uri"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	Database string `mapstructure:"database"`
}

// CatalogAPIConfig 遠端目錄服務設定
type CatalogAPIConfig struct {
	BaseURL    string        `mapstructure:"base_url"`
	Timeout    time.Duration `mapstructure:"timeout"`
	RetryCount int           `mapstructure:"retry_count"`
	RetryWait  time.Duration `mapstructure:"retry_wait"`
}

// CacheConfig 緩存配置（替代關係查詢）
type CacheConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	Backend         string        `mapstructure:"backend"`
	MaxSize         int           `mapstructure:"max_size"`
	TTL             time.Duration `mapstructure:"ttl"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
	RedisAddr       string        `mapstructure:"redis_addr"`
	RedisPassword   string        `mapstructure:"redis_password"`
	RedisDB         int           `mapstructure:"redis_db"`
}

// RateLimitConfig 速率限制配置
type RateLimitConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Requests int           `mapstructure:"requests"`
	Window   time.Duration `mapstructure:"window"`
}

// RecommendConfig 推薦筆數限制
type RecommendConfig struct {
	DefaultLimit         int `mapstructure:"default_limit"`
	MaxLimit             int `mapstructure:"max_limit"`
	ExpiringDefaultLimit int `mapstructure:"expiring_default_limit"`
	ExpiringMaxLimit     int `mapstructure:"expiring_max_limit"`
	LookupConcurrency    int `mapstructure:"lookup_concurrency"`
}

// LoadConfig 載入設定，.env 不存在時只使用環境變數與預設值
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}
	return load(viper.New())
}

func load(v *viper.Viper) (*Config, error) {
	setDefaults(v)

	// 設定環境變數前綴
	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// 綁定環境變量
	bindings := map[string]string{
		"app.env":              "APP_ENV",
		"app.debug":            "APP_DEBUG",
		"server.port":          "PORT",
		"log.level":            "LOG_LEVEL",
		"catalog.backend":      "CATALOG_BACKEND",
		"catalog.seed_file":    "CATALOG_SEED_FILE",
		"neo4j.uri":            "NEO4J_URI",
		"neo4j.username":       "NEO4J_USERNAME",
		"neo4j.password":       "NEO4J_PASSWORD",
		"neo4j.database":       "NEO4J_DATABASE",
		"catalog_api.base_url": "CATALOG_API_URL",
		"cache.enabled":        "CACHE_ENABLED",
		"cache.backend":        "CACHE_BACKEND",
		"cache.redis_addr":     "REDIS_ADDR",
		"cache.redis_password": "REDIS_PASSWORD",
		"rate_limit.enabled":   "RATE_LIMIT_ENABLED",
		"rate_limit.requests":  "RATE_LIMIT_REQUESTS",
		"rate_limit.window":    "RATE_LIMIT_WINDOW",
		"metrics.enabled":      "METRICS_ENABLED",
	}
	for key, env := range bindings {
		if err := v.BindEnv(key, "APP_"+strings.ToUpper(strings.ReplaceAll(key, ".", "_")), env); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", key, err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &config, nil
}

// setDefaults 設定預設值
func setDefaults(v *viper.Viper) {
	// 應用程式設定
	v.SetDefault("app.env", "development")
	v.SetDefault("app.debug", true)
	v.SetDefault("app.version", "1.0.0")
	v.SetDefault("app.name", "recipe-recommender")

	// 伺服器設定
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.idle_timeout", "120s")
	v.SetDefault("server.request_timeout", "10s")
	v.SetDefault("server.max_body_bytes", 1<<20) // 1MB

	// 日誌設定
	v.SetDefault("log.level", "info")
	v.SetDefault("log.dir", "logs")

	// 目錄設定
	v.SetDefault("catalog.backend", CatalogMemory)
	v.SetDefault("catalog.seed_file", "")
	v.SetDefault("catalog.timeout", "5s")
	v.SetDefault("catalog.breaker.enabled", true)
	v.SetDefault("catalog.breaker.failure_threshold", 5)
	v.SetDefault("catalog.breaker.open_timeout", "30s")
	v.SetDefault("catalog.breaker.half_open_requests", 1)

	v.SetDefault("neo4j.username", "neo4j")
	v.SetDefault("neo4j.database", "neo4j")

	v.SetDefault("catalog_api.timeout", "5s")
	v.SetDefault("catalog_api.retry_count", 2)
	v.SetDefault("catalog_api.retry_wait", "200ms")

	// 快取設定
	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.backend", CacheMemory)
	v.SetDefault("cache.max_size", 1000)
	v.SetDefault("cache.ttl", "10m")
	v.SetDefault("cache.cleanup_interval", "1m")
	v.SetDefault("cache.redis_addr", "localhost:6379")
	v.SetDefault("cache.redis_db", 0)

	// 限流設定
	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.requests", 100)
	v.SetDefault("rate_limit.window", "1m")

	// 推薦設定
	v.SetDefault("recommend.default_limit", 10)
	v.SetDefault("recommend.max_limit", 50)
	v.SetDefault("recommend.expiring_default_limit", 5)
	v.SetDefault("recommend.expiring_max_limit", 20)
	v.SetDefault("recommend.lookup_concurrency", 8)


	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")
}

// validateConfig 驗證設定
func validateConfig(config *Config) error {
	if config.Server.Port <= 0 {
		return fmt.Errorf("server port is required")
	}
	if config.Server.RequestTimeout <= 0 {
		return fmt.Errorf("invalid server request timeout")
	}

	switch config.Catalog.Backend {
	case CatalogMemory:
	case CatalogNeo4j:
		if config.Neo4j.URI == "" {
			return fmt.Errorf("neo4j uri is required for the neo4j catalog backend")
		}
	case CatalogHTTP:
		if config.CatalogAPI.BaseURL == "" {
			return fmt.Errorf("catalog api base url is required for the http catalog backend")
		}
		if config.CatalogAPI.RetryCount < 0 {
			return fmt.Errorf("invalid catalog api retry count")
		}
	default:
		return fmt.Errorf("unknown catalog backend %q", config.Catalog.Backend)
	}

	if b := config.Catalog.Breaker; b.Enabled && (b.FailureThreshold == 0 || b.OpenTimeout <= 0) {
		return fmt.Errorf("invalid catalog breaker settings")
	}

	// 驗證快取設定
	if config.Cache.Enabled {
		switch config.Cache.Backend {
		case CacheMemory:
			if config.Cache.MaxSize <= 0 {
				return fmt.Errorf("invalid cache max size")
			}
			if config.Cache.CleanupInterval <= 0 {
				return fmt.Errorf("invalid cache cleanup interval")
			}
		case CacheRedis:
			if config.Cache.RedisAddr == "" {
				return fmt.Errorf("redis address is required for the redis cache backend")
			}
		default:
			return fmt.Errorf("unknown cache backend %q", config.Cache.Backend)
		}
		if config.Cache.TTL <= 0 {
			return fmt.Errorf("invalid cache ttl")
		}
	}

	if config.Metrics.Enabled && !strings.HasPrefix(config.Metrics.Path, "/") {
		return fmt.Errorf("metrics path must start with /")
	}

	if config.RateLimit.Enabled && (config.RateLimit.Requests <= 0 || config.RateLimit.Window <= 0) {
		return fmt.Errorf("invalid rate limit")
	}

	// 驗證推薦筆數
	r := config.Recommend
	if r.DefaultLimit <= 0 || r.MaxLimit <= 0 || r.DefaultLimit > r.MaxLimit {
		return fmt.Errorf("invalid recommend limits: default=%d max=%d", r.DefaultLimit, r.MaxLimit)
	}
	if r.ExpiringDefaultLimit <= 0 || r.ExpiringMaxLimit <= 0 || r.ExpiringDefaultLimit > r.ExpiringMaxLimit {
		return fmt.Errorf("invalid expiring limits: default=%d max=%d", r.ExpiringDefaultLimit, r.ExpiringMaxLimit)
	}
	if r.LookupConcurrency <= 0 {
		return fmt.Errorf("invalid lookup concurrency")
	}

	return nil
}
