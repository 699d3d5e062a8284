package config

import (
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := load(viper.New())
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Fatalf("expected port 8080, got %d", cfg.Server.Port)
	}
	if cfg.Catalog.Backend != CatalogMemory {
		t.Fatalf("expected memory catalog, got %q", cfg.Catalog.Backend)
	}
	if cfg.Recommend.DefaultLimit != 10 || cfg.Recommend.MaxLimit != 50 {
		t.Fatalf("unexpected recommend limits: %+v", cfg.Recommend)
	}
	if cfg.Recommend.ExpiringDefaultLimit != 5 || cfg.Recommend.ExpiringMaxLimit != 20 {
		t.Fatalf("unexpected expiring limits: %+v", cfg.Recommend)
	}
	if cfg.Cache.TTL != 10*time.Minute {
		t.Fatalf("expected cache ttl 10m, got %s", cfg.Cache.TTL)
	}
	if b := cfg.Catalog.Breaker; !b.Enabled || b.FailureThreshold != 5 || b.OpenTimeout != 30*time.Second {
		t.Fatalf("unexpected breaker defaults: %+v", b)
	}
	if !cfg.Metrics.Enabled || cfg.Metrics.Path != "/metrics" {
		t.Fatalf("unexpected metrics defaults: %+v", cfg.Metrics)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("CATALOG_BACKEND", "neo4j")
	t.Setenv("NEO4J_URI", "neo4j://localhost:7687")
	t.Setenv("NEO4J_PASSWORD", "secret")
	t.Setenv("APP_RECOMMEND_MAX_LIMIT", "30")
	t.Setenv("RATE_LIMIT_WINDOW", "30s")

	cfg, err := load(viper.New())
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Catalog.Backend != CatalogNeo4j {
		t.Fatalf("expected neo4j backend, got %q", cfg.Catalog.Backend)
	}
	if cfg.Neo4j.URI != "neo4j://localhost:7687" || cfg.Neo4j.Password != "secret" {
		t.Fatalf("unexpected neo4j config: %+v", cfg.Neo4j)
	}
	if cfg.Recommend.MaxLimit != 30 {
		t.Fatalf("expected max limit 30, got %d", cfg.Recommend.MaxLimit)
	}
	if cfg.RateLimit.Window != 30*time.Second {
		t.Fatalf("expected window 30s, got %s", cfg.RateLimit.Window)
	}
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"unknown catalog", func(c *Config) { c.Catalog.Backend = "sqlite" }, "unknown catalog backend"},
		{"neo4j without uri", func(c *Config) { c.Catalog.Backend = CatalogNeo4j }, "neo4j uri"},
		{"http without url", func(c *Config) { c.Catalog.Backend = CatalogHTTP }, "base url"},
		{"default above max", func(c *Config) { c.Recommend.DefaultLimit = 60 }, "invalid recommend limits"},
		{"zero expiring limit", func(c *Config) { c.Recommend.ExpiringDefaultLimit = 0 }, "invalid expiring limits"},
		{"unknown cache", func(c *Config) { c.Cache.Backend = "memcached" }, "unknown cache backend"},
		{"cache disabled skips checks", func(c *Config) { c.Cache.Enabled = false; c.Cache.Backend = "memcached" }, ""},
		{"bad rate limit", func(c *Config) { c.RateLimit.Requests = 0 }, "invalid rate limit"},
		{"breaker without threshold", func(c *Config) { c.Catalog.Breaker.FailureThreshold = 0 }, "breaker"},
		{"breaker disabled skips checks", func(c *Config) { c.Catalog.Breaker = BreakerConfig{} }, ""},
		{"relative metrics path", func(c *Config) { c.Metrics.Path = "metrics" }, "metrics path"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := load(viper.New())
			if err != nil {
				t.Fatalf("load: %v", err)
			}
			tt.mutate(cfg)

			err = validateConfig(cfg)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}
