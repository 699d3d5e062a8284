package catalog

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"time"

	"recipe-recommender/internal/core/recipe"
	"recipe-recommender/internal/infrastructure/config"
	"recipe-recommender/internal/pkg/common"

	"github.com/go-resty/resty/v2"
)

// HTTPCatalog 透過遠端食譜 CRUD 服務讀取目錄
type HTTPCatalog struct {
	client *resty.Client
}

type recipesResponse struct {
	Recipes []common.Recipe `json:"recipes"`
}

type substitutionsResponse struct {
	Substitutions []common.Substitute `json:"substitutions"`
}

// NewHTTPCatalog 創建遠端目錄客戶端，5xx 與連線錯誤會依設定重試
func NewHTTPCatalog(cfg config.CatalogAPIConfig) *HTTPCatalog {
	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", "recipe-recommender").
		SetRetryCount(cfg.RetryCount).
		SetRetryWaitTime(cfg.RetryWait).
		SetRetryMaxWaitTime(cfg.RetryWait * 4).
		AddRetryCondition(func(resp *resty.Response, err error) bool {
			return err != nil || resp.StatusCode() >= http.StatusInternalServerError
		})

	return &HTTPCatalog{client: client}
}

// FindPublishedRecipes GET /recipes，結果依 id 排序
func (c *HTTPCatalog) FindPublishedRecipes(ctx context.Context, query recipe.RecipeQuery) ([]common.Recipe, error) {
	req := c.client.R().
		SetContext(ctx).
		SetQueryParam("status", string(common.StatusPublished))
	if query.MaxCookingTime != nil {
		req.SetQueryParam("max_cooking_time", strconv.Itoa(*query.MaxCookingTime))
	}
	if query.Difficulty != nil {
		req.SetQueryParam("difficulty", string(*query.Difficulty))
	}
	if names := recipe.NormalizeSet(query.MustIncludeAnyIngredient); len(names) > 0 {
		req.SetQueryParamsFromValues(map[string][]string{"ingredient": names})
	}

	var body recipesResponse
	if err := c.get(req, "/recipes", &body); err != nil {
		return nil, err
	}

	sort.SliceStable(body.Recipes, func(i, j int) bool {
		return body.Recipes[i].ID < body.Recipes[j].ID
	})
	return body.Recipes, nil
}

// FindSubstitutions GET /substitutions?original=
func (c *HTTPCatalog) FindSubstitutions(ctx context.Context, original string) ([]common.Substitute, error) {
	req := c.client.R().
		SetContext(ctx).
		SetQueryParam("original", recipe.NormalizeIngredient(original))

	var body substitutionsResponse
	if err := c.get(req, "/substitutions", &body); err != nil {
		return nil, err
	}
	return body.Substitutions, nil
}

// Health GET /health
func (c *HTTPCatalog) Health(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	resp, err := c.client.R().SetContext(ctx).Get("/health")
	if err != nil {
		return fmt.Errorf("catalog api health check failed: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return fmt.Errorf("catalog api health check returned %d", resp.StatusCode())
	}
	return nil
}

func (c *HTTPCatalog) get(req *resty.Request, path string, out interface{}) error {
	resp, err := req.Get(path)
	if err != nil {
		return fmt.Errorf("failed to send request to catalog api %s: %w", path, err)
	}
	if resp.StatusCode() != http.StatusOK {
		return fmt.Errorf("catalog api %s returned %d: %s", path, resp.StatusCode(), resp.String())
	}
	if err := common.ParseJSONBytes(resp.Body(), out); err != nil {
		return fmt.Errorf("failed to parse catalog api response: %w", err)
	}
	return nil
}
