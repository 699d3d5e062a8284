package catalog

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"

	"recipe-recommender/internal/core/cache"
	"recipe-recommender/internal/core/recipe"
	"recipe-recommender/internal/infrastructure/config"
	"recipe-recommender/internal/pkg/common"
)

// countingCatalog 記錄每個方法被呼叫的次數
type countingCatalog struct {
	*MemoryCatalog

	mu          sync.Mutex
	recipeCalls int
	subCalls    int
}

func (c *countingCatalog) FindPublishedRecipes(ctx context.Context, q recipe.RecipeQuery) ([]common.Recipe, error) {
	c.mu.Lock()
	c.recipeCalls++
	c.mu.Unlock()
	return c.MemoryCatalog.FindPublishedRecipes(ctx, q)
}

func (c *countingCatalog) FindSubstitutions(ctx context.Context, original string) ([]common.Substitute, error) {
	c.mu.Lock()
	c.subCalls++
	c.mu.Unlock()
	return c.MemoryCatalog.FindSubstitutions(ctx, original)
}

// brokenStore 每次操作都失敗
type brokenStore struct{}

func (brokenStore) Get(context.Context, string) ([]byte, error) { return nil, errors.New("redis down") }
func (brokenStore) Set(context.Context, string, []byte) error   { return errors.New("redis down") }
func (brokenStore) Close() error                                { return nil }

func newCountingCatalog(t *testing.T) *countingCatalog {
	t.Helper()
	mem := NewMemoryCatalog()
	mem.PutRecipe(testRecipe("r1", common.StatusPublished, 10, "rice"))
	if err := mem.AddSubstitution(common.Substitution{Original: "rice", Substitute: "quinoa", Confidence: 0.9}); err != nil {
		t.Fatalf("add: %v", err)
	}
	return &countingCatalog{MemoryCatalog: mem}
}

func TestCachedCatalogCachesSubstitutions(t *testing.T) {
	inner := newCountingCatalog(t)
	store := cache.NewManager(config.CacheConfig{MaxSize: 10, TTL: time.Minute})
	t.Cleanup(func() { _ = store.Close() })
	c := NewCachedCatalog(inner, store)

	want := []common.Substitute{{Name: "quinoa", Confidence: 0.9}}
	for _, name := range []string{"rice", "Rice", " RICE "} {
		got, err := c.FindSubstitutions(context.Background(), name)
		if err != nil {
			t.Fatalf("find: %v", err)
		}
		if !reflect.DeepEqual(got, want) {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
	if inner.subCalls != 1 {
		t.Fatalf("expected one catalog read, got %d", inner.subCalls)
	}

	// 食譜不快取
	for i := 0; i < 2; i++ {
		if _, err := c.FindPublishedRecipes(context.Background(), recipe.RecipeQuery{}); err != nil {
			t.Fatalf("find recipes: %v", err)
		}
	}
	if inner.recipeCalls != 2 {
		t.Fatalf("expected recipes to bypass cache, got %d catalog reads", inner.recipeCalls)
	}
}

func TestCachedCatalogDegradesOnCacheFailure(t *testing.T) {
	inner := newCountingCatalog(t)
	c := NewCachedCatalog(inner, brokenStore{})

	for i := 0; i < 2; i++ {
		got, err := c.FindSubstitutions(context.Background(), "rice")
		if err != nil {
			t.Fatalf("cache failure must not surface, got %v", err)
		}
		if len(got) != 1 {
			t.Fatalf("unexpected substitutions: %v", got)
		}
	}
	if inner.subCalls != 2 {
		t.Fatalf("expected direct reads, got %d", inner.subCalls)
	}
}

func TestCachedCatalogHealth(t *testing.T) {
	c := NewCachedCatalog(newCountingCatalog(t), brokenStore{})
	if err := c.Health(context.Background()); err != nil {
		t.Fatalf("expected healthy, got %v", err)
	}
}
