package catalog

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"recipe-recommender/internal/core/recipe"
	"recipe-recommender/internal/pkg/common"
)

type graphCall struct {
	query  string
	params map[string]any
}

type fakeGraph struct {
	rows   []map[string]any
	err    error
	reads  []graphCall
	writes []graphCall
}

func (f *fakeGraph) ExecuteRead(_ context.Context, query string, params map[string]any) ([]map[string]any, error) {
	f.reads = append(f.reads, graphCall{query, params})
	return f.rows, f.err
}

func (f *fakeGraph) ExecuteWrite(_ context.Context, query string, params map[string]any) error {
	f.writes = append(f.writes, graphCall{query, params})
	return f.err
}

func (f *fakeGraph) Health(context.Context) error { return f.err }

func TestRecipeFromRow(t *testing.T) {
	row := map[string]any{
		"recipe": map[string]any{
			"id":           "r1",
			"title":        "Fried Rice",
			"status":       "PUBLISHED",
			"difficulty":   "easy",
			"cooking_time": int64(20),
			"tags":         []any{"vegetarian", "quick"},
			"views":        int64(100),
			"likes":        int64(12),
			"saves":        int64(4),
		},
		"ingredients": []any{
			map[string]any{"name": "rice", "quantity": int64(200), "unit": "g", "wastage_reduction": 0.5},
			map[string]any{"name": "egg", "quantity": 2.0, "unit": "pc", "wastage_reduction": nil},
		},
	}

	got, err := recipeFromRow(row)
	if err != nil {
		t.Fatalf("map: %v", err)
	}
	want := common.Recipe{
		ID:          "r1",
		Title:       "Fried Rice",
		Status:      common.StatusPublished,
		Difficulty:  common.DifficultyEasy,
		CookingTime: 20,
		Tags:        []string{"vegetarian", "quick"},
		Views:       100,
		Likes:       12,
		Saves:       4,
		Ingredients: []common.RecipeIngredient{
			{Name: "rice", Quantity: 200, Unit: "g", WastageReduction: 0.5},
			{Name: "egg", Quantity: 2, Unit: "pc"},
		},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %+v, got %+v", want, got)
	}
}

func TestRecipeFromRowErrors(t *testing.T) {
	tests := []struct {
		name string
		row  map[string]any
	}{
		{"missing recipe", map[string]any{}},
		{"missing id", map[string]any{"recipe": map[string]any{"title": "x"}}},
		{"bad quantity", map[string]any{
			"recipe":      map[string]any{"id": "r"},
			"ingredients": []any{map[string]any{"name": "egg", "quantity": "two"}},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := recipeFromRow(tt.row); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestNeo4jCatalogQueryParams(t *testing.T) {
	graph := &fakeGraph{}
	c := NewNeo4jCatalog(graph, time.Second)

	maxTime := 30
	difficulty := common.DifficultyMedium
	_, err := c.FindPublishedRecipes(context.Background(), recipe.RecipeQuery{
		MaxCookingTime:           &maxTime,
		Difficulty:               &difficulty,
		MustIncludeAnyIngredient: []string{" Milk", "milk", "egg"},
	})
	if err != nil {
		t.Fatalf("find: %v", err)
	}

	params := graph.reads[0].params
	if params["maxCookingTime"] != int64(30) || params["difficulty"] != "MEDIUM" {
		t.Fatalf("unexpected params: %v", params)
	}
	if !reflect.DeepEqual(params["ingredients"], []string{"milk", "egg"}) {
		t.Fatalf("unexpected ingredients: %v", params["ingredients"])
	}

	_, _ = c.FindPublishedRecipes(context.Background(), recipe.RecipeQuery{})
	params = graph.reads[1].params
	if params["maxCookingTime"] != nil || params["difficulty"] != nil {
		t.Fatalf("unset filters must be nil, got %v", params)
	}
}

func TestNeo4jCatalogFindSubstitutions(t *testing.T) {
	graph := &fakeGraph{rows: []map[string]any{
		{"substitute": "ghee", "confidence": 0.9},
		{"substitute": "margarine", "confidence": int64(1)},
	}}
	c := NewNeo4jCatalog(graph, time.Second)

	got, err := c.FindSubstitutions(context.Background(), " Butter ")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	want := []common.Substitute{{Name: "ghee", Confidence: 0.9}, {Name: "margarine", Confidence: 1}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	if graph.reads[0].params["original"] != "butter" {
		t.Fatalf("expected normalized original, got %v", graph.reads[0].params["original"])
	}
}

func TestNeo4jCatalogError(t *testing.T) {
	graph := &fakeGraph{err: errors.New("connection refused")}
	c := NewNeo4jCatalog(graph, time.Second)

	if _, err := c.FindPublishedRecipes(context.Background(), recipe.RecipeQuery{}); err == nil {
		t.Fatal("expected error")
	}
	if err := c.Health(context.Background()); err == nil {
		t.Fatal("expected health error")
	}
}

func TestNeo4jCatalogImport(t *testing.T) {
	graph := &fakeGraph{}
	c := NewNeo4jCatalog(graph, time.Second)

	r := testRecipe("r1", common.StatusPublished, 10, " Tomato ", "rice")
	seed := &Seed{
		Recipes:       []common.Recipe{r},
		Substitutions: []common.Substitution{{Original: "Rice", Substitute: "quinoa", Confidence: 0.9}},
	}
	if err := c.Import(context.Background(), seed); err != nil {
		t.Fatalf("import: %v", err)
	}
	if len(graph.writes) != 4 {
		t.Fatalf("expected 4 write steps, got %d", len(graph.writes))
	}
	if !strings.Contains(graph.writes[0].query, "CONSTRAINT") {
		t.Fatalf("expected constraints first, got %q", graph.writes[0].query)
	}

	recipes := graph.writes[2].params["recipes"].([]map[string]any)
	ings := recipes[0]["ingredients"].([]map[string]any)
	if ings[0]["name"] != "tomato" || ings[1]["position"] != int64(1) {
		t.Fatalf("unexpected ingredient params: %v", ings)
	}
	subs := graph.writes[3].params["substitutions"].([]map[string]any)
	if subs[0]["original"] != "rice" {
		t.Fatalf("unexpected substitution params: %v", subs)
	}

	bad := &Seed{Substitutions: []common.Substitution{{Original: "rice", Substitute: "rice", Confidence: 1}}}
	if err := c.Import(context.Background(), bad); !common.IsValidationError(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
