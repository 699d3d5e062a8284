package catalog

import (
	"context"
	"sync"

	"recipe-recommender/internal/core/recipe"
	"recipe-recommender/internal/pkg/common"

	"go.uber.org/zap"
)

// MemoryCatalog 記憶體目錄，依加入順序回傳食譜
type MemoryCatalog struct {
	mu      sync.RWMutex
	recipes []common.Recipe
	index   map[string]int
	subs    map[string][]common.Substitute
}

// NewMemoryCatalog 創建空的記憶體目錄
func NewMemoryCatalog() *MemoryCatalog {
	return &MemoryCatalog{
		index: make(map[string]int),
		subs:  make(map[string][]common.Substitute),
	}
}

// NewMemoryCatalogFromSeed 以種子資料建立記憶體目錄
func NewMemoryCatalogFromSeed(seed *Seed) (*MemoryCatalog, error) {
	if err := seed.Validate(); err != nil {
		return nil, err
	}

	c := NewMemoryCatalog()
	for _, r := range seed.Recipes {
		c.PutRecipe(r)
	}
	for _, s := range seed.Substitutions {
		if err := c.AddSubstitution(s); err != nil {
			return nil, err
		}
	}

	common.LogInfo("記憶體目錄已載入",
		zap.Int("recipes", len(seed.Recipes)),
		zap.Int("substitutions", len(seed.Substitutions)),
	)
	return c, nil
}

// PutRecipe 新增或取代食譜；取代時保留原本位置
func (c *MemoryCatalog) PutRecipe(r common.Recipe) {
	c.mu.Lock()
	defer c.mu.Unlock()

	r = cloneRecipe(r)
	if i, ok := c.index[r.ID]; ok {
		c.recipes[i] = r
		return
	}
	c.index[r.ID] = len(c.recipes)
	c.recipes = append(c.recipes, r)
}

// AddSubstitution 新增替代關係，同一組 original/substitute 只保留最後一次的信心值
func (c *MemoryCatalog) AddSubstitution(s common.Substitution) error {
	if err := validateSubstitution(s); err != nil {
		return err
	}
	original := recipe.NormalizeIngredient(s.Original)
	substitute := recipe.NormalizeIngredient(s.Substitute)

	c.mu.Lock()
	defer c.mu.Unlock()

	edges := c.subs[original]
	for i := range edges {
		if edges[i].Name == substitute {
			edges[i].Confidence = s.Confidence
			return nil
		}
	}
	c.subs[original] = append(edges, common.Substitute{Name: substitute, Confidence: s.Confidence})
	return nil
}

// FindPublishedRecipes 回傳符合查詢的已發佈食譜
func (c *MemoryCatalog) FindPublishedRecipes(ctx context.Context, query recipe.RecipeQuery) ([]common.Recipe, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]common.Recipe, 0, len(c.recipes))
	for _, r := range c.recipes {
		if query.Matches(r) {
			out = append(out, cloneRecipe(r))
		}
	}
	return out, nil
}

// FindSubstitutions 回傳 original 的替代品
func (c *MemoryCatalog) FindSubstitutions(ctx context.Context, original string) ([]common.Substitute, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	edges := c.subs[recipe.NormalizeIngredient(original)]
	out := make([]common.Substitute, len(edges))
	copy(out, edges)
	return out, nil
}

// Health 記憶體目錄永遠可用
func (c *MemoryCatalog) Health(context.Context) error {
	return nil
}

func cloneRecipe(r common.Recipe) common.Recipe {
	r.Ingredients = append(make([]common.RecipeIngredient, 0, len(r.Ingredients)), r.Ingredients...)
	r.Tags = append(make([]string, 0, len(r.Tags)), r.Tags...)
	return r
}
