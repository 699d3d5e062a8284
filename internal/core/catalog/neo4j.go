package catalog

import (
	"context"
	"fmt"
	"strings"
	"time"

	"recipe-recommender/internal/core/recipe"
	"recipe-recommender/internal/pkg/common"

	"go.uber.org/zap"
)

// GraphClient Neo4j 目錄需要的查詢能力，由 database.Neo4jClient 實作
type GraphClient interface {
	ExecuteRead(ctx context.Context, query string, params map[string]any) ([]map[string]any, error)
	ExecuteWrite(ctx context.Context, query string, params map[string]any) error
	Health(ctx context.Context) error
}

// 圖形結構：
//
//	(:Recipe)-[:USES {position, quantity, unit, wastage_reduction}]->(:Ingredient {name})
//	(:Ingredient)-[:SUBSTITUTES_FOR {confidence}]->(:Ingredient)
//
// 食材名稱一律以正規化後的形式存放。
const (
	findRecipesQuery = `
		MATCH (r:Recipe {status: 'PUBLISHED'})
		WHERE ($maxCookingTime IS NULL OR r.cooking_time <= $maxCookingTime)
		  AND ($difficulty IS NULL OR r.difficulty = $difficulty)
		  AND (size($ingredients) = 0 OR EXISTS {
		        MATCH (r)-[:USES]->(m:Ingredient) WHERE m.name IN $ingredients
		      })
		OPTIONAL MATCH (r)-[u:USES]->(i:Ingredient)
		WITH r, u, i ORDER BY u.position
		WITH r, collect(CASE WHEN i IS NULL THEN null ELSE {
		        name: i.name,
		        quantity: u.quantity,
		        unit: u.unit,
		        wastage_reduction: u.wastage_reduction
		     } END) AS ingredients
		RETURN r {.*} AS recipe, ingredients
		ORDER BY r.id
	`

	findSubstitutionsQuery = `
		MATCH (sub:Ingredient)-[s:SUBSTITUTES_FOR]->(o:Ingredient {name: $original})
		RETURN sub.name AS substitute, s.confidence AS confidence
		ORDER BY sub.name
	`

	recipeConstraintQuery     = `CREATE CONSTRAINT recipe_id IF NOT EXISTS FOR (r:Recipe) REQUIRE r.id IS UNIQUE`
	ingredientConstraintQuery = `CREATE CONSTRAINT ingredient_name IF NOT EXISTS FOR (i:Ingredient) REQUIRE i.name IS UNIQUE`

	importRecipesQuery = `
		UNWIND $recipes AS rec
		MERGE (r:Recipe {id: rec.id})
		SET r.title = rec.title,
		    r.description = rec.description,
		    r.status = rec.status,
		    r.cooking_time = rec.cooking_time,
		    r.difficulty = rec.difficulty,
		    r.tags = rec.tags,
		    r.views = rec.views,
		    r.likes = rec.likes,
		    r.saves = rec.saves
		WITH r, rec
		OPTIONAL MATCH (r)-[old:USES]->()
		DELETE old
		WITH DISTINCT r, rec
		UNWIND rec.ingredients AS ing
		MERGE (i:Ingredient {name: ing.name})
		CREATE (r)-[:USES {
		    position: ing.position,
		    quantity: ing.quantity,
		    unit: ing.unit,
		    wastage_reduction: ing.wastage_reduction
		}]->(i)
	`

	importSubstitutionsQuery = `
		UNWIND $substitutions AS s
		MERGE (o:Ingredient {name: s.original})
		MERGE (sub:Ingredient {name: s.substitute})
		MERGE (sub)-[e:SUBSTITUTES_FOR]->(o)
		SET e.confidence = s.confidence
	`
)

// Neo4jCatalog 以 Neo4j 圖形資料庫為後端的目錄
type Neo4jCatalog struct {
	client  GraphClient
	timeout time.Duration
}

// NewNeo4jCatalog 創建 Neo4j 目錄，timeout 為單次查詢上限（0 表示不限制）
func NewNeo4jCatalog(client GraphClient, timeout time.Duration) *Neo4jCatalog {
	return &Neo4jCatalog{
		client:  client,
		timeout: timeout,
	}
}

func (c *Neo4jCatalog) read(ctx context.Context, query string, params map[string]any) ([]map[string]any, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	return c.client.ExecuteRead(ctx, query, params)
}

// FindPublishedRecipes 以 Cypher 套用硬性篩選，依 id 排序
func (c *Neo4jCatalog) FindPublishedRecipes(ctx context.Context, query recipe.RecipeQuery) ([]common.Recipe, error) {
	rows, err := c.read(ctx, findRecipesQuery, queryParams(query))
	if err != nil {
		return nil, err
	}

	recipes := make([]common.Recipe, 0, len(rows))
	for _, row := range rows {
		r, err := recipeFromRow(row)
		if err != nil {
			return nil, fmt.Errorf("failed to map recipe record: %w", err)
		}
		recipes = append(recipes, r)
	}
	return recipes, nil
}

// FindSubstitutions 回傳指向 original 的 SUBSTITUTES_FOR 邊
func (c *Neo4jCatalog) FindSubstitutions(ctx context.Context, original string) ([]common.Substitute, error) {
	rows, err := c.read(ctx, findSubstitutionsQuery, map[string]any{
		"original": recipe.NormalizeIngredient(original),
	})
	if err != nil {
		return nil, err
	}

	subs := make([]common.Substitute, 0, len(rows))
	for _, row := range rows {
		name, _ := row["substitute"].(string)
		confidence, err := toFloat(row["confidence"])
		if err != nil {
			return nil, fmt.Errorf("substitution %s -> %s: %w", original, name, err)
		}
		subs = append(subs, common.Substitute{Name: name, Confidence: confidence})
	}
	return subs, nil
}

// Health 檢查資料庫連線
func (c *Neo4jCatalog) Health(ctx context.Context) error {
	return c.client.Health(ctx)
}

// Import 匯入種子資料；食譜以 id MERGE，既有的 USES 邊會被取代
func (c *Neo4jCatalog) Import(ctx context.Context, seed *Seed) error {
	if err := seed.Validate(); err != nil {
		return err
	}

	steps := []struct {
		name   string
		query  string
		params map[string]any
	}{
		{"recipe constraint", recipeConstraintQuery, nil},
		{"ingredient constraint", ingredientConstraintQuery, nil},
		{"recipes", importRecipesQuery, map[string]any{"recipes": recipeParams(seed.Recipes)}},
		{"substitutions", importSubstitutionsQuery, map[string]any{"substitutions": substitutionParams(seed.Substitutions)}},
	}
	for _, step := range steps {
		if err := c.client.ExecuteWrite(ctx, step.query, step.params); err != nil {
			return fmt.Errorf("failed to import %s: %w", step.name, err)
		}
	}

	common.LogInfo("Neo4j 目錄匯入完成",
		zap.Int("recipes", len(seed.Recipes)),
		zap.Int("substitutions", len(seed.Substitutions)),
	)
	return nil
}

// queryParams 未設定的篩選以 nil 傳入，由 Cypher 的 IS NULL 判斷略過
func queryParams(q recipe.RecipeQuery) map[string]any {
	params := map[string]any{
		"maxCookingTime": nil,
		"difficulty":     nil,
		"ingredients":    recipe.NormalizeSet(q.MustIncludeAnyIngredient),
	}
	if q.MaxCookingTime != nil {
		params["maxCookingTime"] = int64(*q.MaxCookingTime)
	}
	if q.Difficulty != nil {
		params["difficulty"] = string(*q.Difficulty)
	}
	return params
}

func recipeParams(recipes []common.Recipe) []map[string]any {
	out := make([]map[string]any, 0, len(recipes))
	for _, r := range recipes {
		ingredients := make([]map[string]any, 0, len(r.Ingredients))
		for i, ing := range r.Ingredients {
			ingredients = append(ingredients, map[string]any{
				"position":          int64(i),
				"name":              recipe.NormalizeIngredient(ing.Name),
				"quantity":          ing.Quantity,
				"unit":              ing.Unit,
				"wastage_reduction": ing.WastageReduction,
			})
		}
		tags := make([]string, 0, len(r.Tags))
		tags = append(tags, r.Tags...)

		out = append(out, map[string]any{
			"id":           r.ID,
			"title":        r.Title,
			"description":  r.Description,
			"status":       string(r.Status),
			"cooking_time": int64(r.CookingTime),
			"difficulty":   string(r.Difficulty),
			"tags":         tags,
			"views":        r.Views,
			"likes":        r.Likes,
			"saves":        r.Saves,
			"ingredients":  ingredients,
		})
	}
	return out
}

func substitutionParams(subs []common.Substitution) []map[string]any {
	out := make([]map[string]any, 0, len(subs))
	for _, s := range subs {
		out = append(out, map[string]any{
			"original":   recipe.NormalizeIngredient(s.Original),
			"substitute": recipe.NormalizeIngredient(s.Substitute),
			"confidence": s.Confidence,
		})
	}
	return out
}

// recipeFromRow 將查詢結果轉成 Recipe
func recipeFromRow(row map[string]any) (common.Recipe, error) {
	props, ok := row["recipe"].(map[string]any)
	if !ok {
		return common.Recipe{}, fmt.Errorf("missing recipe properties")
	}

	r := common.Recipe{
		ID:          toString(props["id"]),
		Title:       toString(props["title"]),
		Description: toString(props["description"]),
		Status:      common.RecipeStatus(toString(props["status"])),
		Difficulty:  common.Difficulty(strings.ToUpper(toString(props["difficulty"]))),
		CookingTime: int(toInt(props["cooking_time"])),
		Views:       toInt(props["views"]),
		Likes:       toInt(props["likes"]),
		Saves:       toInt(props["saves"]),
	}
	if r.ID == "" {
		return common.Recipe{}, fmt.Errorf("recipe without id")
	}

	if tags, ok := props["tags"].([]any); ok {
		r.Tags = make([]string, 0, len(tags))
		for _, t := range tags {
			r.Tags = append(r.Tags, toString(t))
		}
	}

	items, _ := row["ingredients"].([]any)
	r.Ingredients = make([]common.RecipeIngredient, 0, len(items))
	for _, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		quantity, err := toFloat(m["quantity"])
		if err != nil {
			return common.Recipe{}, fmt.Errorf("recipe %s quantity: %w", r.ID, err)
		}
		wastage, err := toFloat(m["wastage_reduction"])
		if err != nil {
			return common.Recipe{}, fmt.Errorf("recipe %s wastage_reduction: %w", r.ID, err)
		}
		r.Ingredients = append(r.Ingredients, common.RecipeIngredient{
			Name:             toString(m["name"]),
			Quantity:         quantity,
			Unit:             toString(m["unit"]),
			WastageReduction: wastage,
		})
	}
	return r, nil
}

func toString(v any) string {
	s, _ := v.(string)
	return s
}

func toInt(v any) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case int:
		return int64(n)
	case float64:
		return int64(n)
	}
	return 0
}

// toFloat Neo4j 數值可能是 int64 或 float64，缺值視為 0
func toFloat(v any) (float64, error) {
	switch n := v.(type) {
	case nil:
		return 0, nil
	case float64:
		return n, nil
	case int64:
		return float64(n), nil
	case int:
		return float64(n), nil
	}
	return 0, fmt.Errorf("unexpected numeric type %T", v)
}
