package common

import (
	"fmt"
	"strings"
)

// RecipeStatus 食譜發佈狀態
type RecipeStatus string

const (
	StatusDraft     RecipeStatus = "DRAFT"
	StatusPublished RecipeStatus = "PUBLISHED"
	StatusArchived  RecipeStatus = "ARCHIVED"
)

// Difficulty 食譜難度
type Difficulty string

const (
	DifficultyEasy   Difficulty = "EASY"
	DifficultyMedium Difficulty = "MEDIUM"
	DifficultyHard   Difficulty = "HARD"
)

// ParseDifficulty 解析難度字串（不分大小寫）
func ParseDifficulty(s string) (Difficulty, error) {
	d := Difficulty(strings.ToUpper(strings.TrimSpace(s)))
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return d, nil
	}
	return "", NewValidationError(fmt.Sprintf("unknown difficulty %q", s))
}

// RecipeIngredient 食譜使用的食材
// WastageReduction 為使用此食材可減少的浪費估計值，0 表示無特別效益
type RecipeIngredient struct {
	Name             string  `json:"name"`
	Quantity         float64 `json:"quantity"`
	Unit             string  `json:"unit"`
	WastageReduction float64 `json:"wastage_reduction"`
}

// Recipe 食譜（由外部目錄提供，本服務唯讀）
type Recipe struct {
	ID          string             `json:"id"`
	Title       string             `json:"title"`
	Description string             `json:"description,omitempty"`
	Status      RecipeStatus       `json:"status"`
	CookingTime int                `json:"cooking_time"` // 分鐘
	Difficulty  Difficulty         `json:"difficulty"`
	Ingredients []RecipeIngredient `json:"ingredients"`
	Tags        []string           `json:"tags"`
	Views       int64              `json:"views"`
	Likes       int64              `json:"likes"`
	Saves       int64              `json:"saves"`
}

// IngredientNames 回傳食譜宣告的食材名稱（未正規化）
func (r Recipe) IngredientNames() []string {
	names := make([]string, 0, len(r.Ingredients))
	for _, ing := range r.Ingredients {
		names = append(names, ing.Name)
	}
	return names
}

// WithEmptySlices 將 nil 的食材與標籤換成空切片，回應中一律輸出 []
func (r Recipe) WithEmptySlices() Recipe {
	if r.Ingredients == nil {
		r.Ingredients = []RecipeIngredient{}
	}
	if r.Tags == nil {
		r.Tags = []string{}
	}
	return r
}

// Substitute 某食材的一個可用替代品
type Substitute struct {
	Name       string  `json:"substitute"`
	Confidence float64 `json:"confidence"`
}

// Substitution 有向替代關係 original -> substitute
type Substitution struct {
	Original   string  `json:"original"`
	Substitute string  `json:"substitute"`
	Confidence float64 `json:"confidence"`
}
