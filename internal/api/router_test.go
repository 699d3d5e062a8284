package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"recipe-recommender/internal/core/catalog"
	recipeService "recipe-recommender/internal/core/recipe"
	"recipe-recommender/internal/infrastructure/config"
	"recipe-recommender/internal/pkg/common"
)

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test", Version: "test", Debug: true},
		Server: config.ServerConfig{
			RequestTimeout: time.Second,
			MaxBodyBytes:   1 << 16,
		},
		Catalog:     config.CatalogConfig{Backend: config.CatalogMemory},
		RateLimit:   config.RateLimitConfig{Enabled: true, Requests: 2, Window: time.Minute},
		Metrics:     config.MetricsConfig{Enabled: true, Path: "/metrics"},
		Recommend: config.RecommendConfig{
			DefaultLimit:         10,
			MaxLimit:             50,
			ExpiringDefaultLimit: 5,
			ExpiringMaxLimit:     20,
			LookupConcurrency:    2,
		},
	}
}

func testRouter(t *testing.T) http.Handler {
	t.Helper()
	cat, err := catalog.NewMemoryCatalogFromSeed(&catalog.Seed{
		Recipes: []common.Recipe{{
			ID:          "fried-rice",
			Title:       "Fried Rice",
			Status:      common.StatusPublished,
			CookingTime: 20,
			Difficulty:  common.DifficultyEasy,
			Ingredients: []common.RecipeIngredient{
				{Name: "rice", Quantity: 200, Unit: "g"},
				{Name: "egg", Quantity: 2, Unit: "pc"},
			},
		}},
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	return SetupRouter(testConfig(), Dependencies{
		Suggestions: recipeService.NewSuggestionService(cat, 2),
		Catalog:     cat,
	})
}

func TestRouterRecommend(t *testing.T) {
	r := testRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/recommendations", strings.NewReader(`{"ingredients":["rice","egg"]}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), `"fried-rice"`) {
		t.Fatalf("expected fried-rice, got %s", w.Body.String())
	}
	if !strings.Contains(w.Body.String(), `"tags":[]`) {
		t.Fatalf("expected empty tags array, got %s", w.Body.String())
	}
	if w.Header().Get("X-Request-ID") == "" {
		t.Fatal("expected X-Request-ID header")
	}
}

func TestRouterKeepsRequestID(t *testing.T) {
	r := testRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/recipes/trending", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if got := w.Header().Get("X-Request-ID"); got != "abc-123" {
		t.Fatalf("expected request id to be echoed, got %q", got)
	}
}

func TestRouterRateLimitSkipsHealth(t *testing.T) {
	r := testRouter(t)

	for i := 0; i < 5; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ready", nil))
		if w.Code != http.StatusOK {
			t.Fatalf("ready #%d: expected 200, got %d", i, w.Code)
		}
	}

	var last int
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/recipes/trending", nil))
		last = w.Code
	}
	if last != http.StatusTooManyRequests {
		t.Fatalf("expected third API call to be limited, got %d", last)
	}
}

func postFrom(r http.Handler, ip, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.RemoteAddr = ip + ":5555"
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRouterIdenticalRecommendations(t *testing.T) {
	r := testRouter(t)
	body := `{"ingredients":["rice","egg"]}`

	tests := []struct {
		name string
		ips  []string
	}{
		{"same client", []string{"10.0.0.1", "10.0.0.1"}},
		{"different clients", []string{"10.0.1.1", "10.0.1.2"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			first := postFrom(r, tt.ips[0], "/api/v1/recommendations", body)
			second := postFrom(r, tt.ips[1], "/api/v1/recommendations", body)
			if first.Code != http.StatusOK || second.Code != http.StatusOK {
				t.Fatalf("expected 200 twice, got %d and %d: %s", first.Code, second.Code, second.Body.String())
			}
			if first.Body.String() != second.Body.String() {
				t.Fatalf("expected identical bodies:\n%s\n%s", first.Body.String(), second.Body.String())
			}
		})
	}
}

func TestRouterRateLimitPerClient(t *testing.T) {
	r := testRouter(t)
	body := `{"ingredients":["rice"]}`

	for i := 0; i < 2; i++ {
		if w := postFrom(r, "10.0.2.1", "/api/v1/recommendations", body); w.Code != http.StatusOK {
			t.Fatalf("call #%d: expected 200, got %d", i, w.Code)
		}
	}
	if w := postFrom(r, "10.0.2.1", "/api/v1/recommendations", body); w.Code != http.StatusTooManyRequests {
		t.Fatalf("expected busy client to be limited, got %d", w.Code)
	}
	if w := postFrom(r, "10.0.2.2", "/api/v1/recommendations", body); w.Code != http.StatusOK {
		t.Fatalf("expected other client to pass, got %d", w.Code)
	}
}

func TestRouterNotFound(t *testing.T) {
	r := testRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/unknown", nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), common.ErrCodeNotFound) {
		t.Fatalf("expected %s body, got %s", common.ErrCodeNotFound, w.Body.String())
	}
}

func TestRouterMetrics(t *testing.T) {
	r := testRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/live", nil))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "recipe_http_requests_total") {
		t.Fatal("expected request counter in metrics output")
	}
}
