package catalog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"reflect"
	"sync/atomic"
	"testing"
	"time"

	"recipe-recommender/internal/core/recipe"
	"recipe-recommender/internal/infrastructure/config"
	"recipe-recommender/internal/pkg/common"
)

func newTestHTTPCatalog(t *testing.T, handler http.Handler) *HTTPCatalog {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewHTTPCatalog(config.CatalogAPIConfig{
		BaseURL:    srv.URL,
		Timeout:    2 * time.Second,
		RetryCount: 2,
		RetryWait:  time.Millisecond,
	})
}

func TestHTTPCatalogFindPublishedRecipes(t *testing.T) {
	queries := make(chan map[string][]string, 1)
	c := newTestHTTPCatalog(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/recipes" {
			http.NotFound(w, r)
			return
		}
		queries <- r.URL.Query()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"recipes": [
			{"id": "r2", "title": "B", "status": "PUBLISHED", "difficulty": "EASY"},
			{"id": "r1", "title": "A", "status": "PUBLISHED", "difficulty": "EASY"}
		]}`))
	}))

	maxTime := 40
	difficulty := common.DifficultyEasy
	recipes, err := c.FindPublishedRecipes(context.Background(), recipe.RecipeQuery{
		MaxCookingTime:           &maxTime,
		Difficulty:               &difficulty,
		MustIncludeAnyIngredient: []string{"Tomato", "basil"},
	})
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if !reflect.DeepEqual(ids(recipes), []string{"r1", "r2"}) {
		t.Fatalf("expected recipes sorted by id, got %v", ids(recipes))
	}
	gotQuery := <-queries
	if gotQuery["status"][0] != "PUBLISHED" || gotQuery["max_cooking_time"][0] != "40" || gotQuery["difficulty"][0] != "EASY" {
		t.Fatalf("unexpected query: %v", gotQuery)
	}
	if !reflect.DeepEqual(gotQuery["ingredient"], []string{"tomato", "basil"}) {
		t.Fatalf("unexpected ingredient params: %v", gotQuery["ingredient"])
	}
}

func TestHTTPCatalogFindSubstitutions(t *testing.T) {
	c := newTestHTTPCatalog(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("original") != "butter" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		_, _ = w.Write([]byte(`{"substitutions": [{"substitute": "ghee", "confidence": 0.9}]}`))
	}))

	subs, err := c.FindSubstitutions(context.Background(), "Butter")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if len(subs) != 1 || subs[0].Name != "ghee" || subs[0].Confidence != 0.9 {
		t.Fatalf("unexpected substitutions: %v", subs)
	}
}

func TestHTTPCatalogRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	c := newTestHTTPCatalog(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"substitutions": []}`))
	}))

	if _, err := c.FindSubstitutions(context.Background(), "rice"); err != nil {
		t.Fatalf("expected success after retries, got %v", err)
	}
	if calls.Load() != 3 {
		t.Fatalf("expected 3 attempts, got %d", calls.Load())
	}
}

func TestHTTPCatalogErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		attempt int32
	}{
		{"client error not retried", http.StatusBadRequest, `{}`, 1},
		{"server error exhausts retries", http.StatusInternalServerError, `{}`, 3},
		{"malformed body", http.StatusOK, `{"recipes": [`, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls atomic.Int32
			c := newTestHTTPCatalog(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls.Add(1)
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))

			if _, err := c.FindPublishedRecipes(context.Background(), recipe.RecipeQuery{}); err == nil {
				t.Fatal("expected error")
			}
			if calls.Load() != tt.attempt {
				t.Fatalf("expected %d attempts, got %d", tt.attempt, calls.Load())
			}
		})
	}
}

func TestHTTPCatalogHealth(t *testing.T) {
	var unhealthy atomic.Bool
	c := newTestHTTPCatalog(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if unhealthy.Load() {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))

	if err := c.Health(context.Background()); err != nil {
		t.Fatalf("expected healthy, got %v", err)
	}
	unhealthy.Store(true)
	if err := c.Health(context.Background()); err == nil {
		t.Fatal("expected unhealthy")
	}
}
