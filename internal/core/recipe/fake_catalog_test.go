package recipe

import (
	"context"
	"sync"
	"sync/atomic"

	"recipe-recommender/internal/pkg/common"
)

// fakeCatalog 測試用的記憶體目錄
type fakeCatalog struct {
	recipes []common.Recipe
	subs    map[string][]common.Substitute

	// ignoreQuery 模擬不理會篩選條件的目錄
	ignoreQuery bool
	recipeErr   error
	subErr      error
	// blockSubs 讓替代查詢等到 ctx 結束
	blockSubs bool

	mu         sync.Mutex
	subLookups map[string]int
	recipeHits atomic.Int32
}

func (f *fakeCatalog) FindPublishedRecipes(ctx context.Context, query RecipeQuery) ([]common.Recipe, error) {
	f.recipeHits.Add(1)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if f.recipeErr != nil {
		return nil, f.recipeErr
	}
	out := make([]common.Recipe, 0, len(f.recipes))
	for _, r := range f.recipes {
		if f.ignoreQuery || query.Matches(r) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeCatalog) FindSubstitutions(ctx context.Context, original string) ([]common.Substitute, error) {
	f.mu.Lock()
	if f.subLookups == nil {
		f.subLookups = make(map[string]int)
	}
	f.subLookups[original]++
	f.mu.Unlock()

	if f.blockSubs {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if f.subErr != nil {
		return nil, f.subErr
	}
	return f.subs[NormalizeIngredient(original)], nil
}

func (f *fakeCatalog) lookups(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.subLookups[name]
}

func ingredients(names ...string) []common.RecipeIngredient {
	out := make([]common.RecipeIngredient, 0, len(names))
	for _, n := range names {
		out = append(out, common.RecipeIngredient{Name: n, Quantity: 1, Unit: "pc"})
	}
	return out
}

func published(id string, names ...string) common.Recipe {
	return common.Recipe{
		ID:          id,
		Title:       id,
		Status:      common.StatusPublished,
		CookingTime: 30,
		Difficulty:  common.DifficultyEasy,
		Ingredients: ingredients(names...),
	}
}

// tomatoRice 三種食材，wastage 平均 1.0
func tomatoRice() common.Recipe {
	r := published("tomato-rice")
	r.Ingredients = []common.RecipeIngredient{
		{Name: "tomato", Quantity: 2, Unit: "pc", WastageReduction: 2},
		{Name: "rice", Quantity: 200, Unit: "g", WastageReduction: 0},
		{Name: "onion", Quantity: 1, Unit: "pc", WastageReduction: 1},
	}
	return r
}

func intPtr(v int) *int { return &v }

func difficultyPtr(d common.Difficulty) *common.Difficulty { return &d }
