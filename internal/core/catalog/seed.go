package catalog

import (
	"fmt"

	"recipe-recommender/internal/core/recipe"
	"recipe-recommender/internal/pkg/common"
)

// Seed 目錄初始資料
type Seed struct {
	Recipes       []common.Recipe       `json:"recipes"`
	Substitutions []common.Substitution `json:"substitutions"`
}

// LoadSeedFile 讀取並驗證 JSON 種子檔
func LoadSeedFile(path string) (*Seed, error) {
	var seed Seed
	if err := common.ReadJSONFile(path, &seed); err != nil {
		return nil, err
	}
	if err := seed.Validate(); err != nil {
		return nil, fmt.Errorf("invalid seed %s: %w", path, err)
	}
	return &seed, nil
}

// Validate 檢查食譜 ID 唯一、狀態與難度合法，以及替代關係
func (s *Seed) Validate() error {
	ids := make(map[string]struct{}, len(s.Recipes))
	for i, r := range s.Recipes {
		if r.ID == "" {
			return common.NewValidationError(fmt.Sprintf("recipe #%d has no id", i))
		}
		if _, dup := ids[r.ID]; dup {
			return common.NewValidationError(fmt.Sprintf("duplicate recipe id %q", r.ID))
		}
		ids[r.ID] = struct{}{}

		switch r.Status {
		case common.StatusDraft, common.StatusPublished, common.StatusArchived:
		default:
			return common.NewValidationError(fmt.Sprintf("recipe %q has unknown status %q", r.ID, r.Status))
		}
		if _, err := common.ParseDifficulty(string(r.Difficulty)); err != nil {
			return fmt.Errorf("recipe %q: %w", r.ID, err)
		}
		if r.CookingTime < 0 {
			return common.NewValidationError(fmt.Sprintf("recipe %q has negative cooking time", r.ID))
		}
	}

	for _, sub := range s.Substitutions {
		if err := validateSubstitution(sub); err != nil {
			return err
		}
	}
	return nil
}

// validateSubstitution 拒絕自我替代與信心值超出 [0,1]
func validateSubstitution(sub common.Substitution) error {
	original := recipe.NormalizeIngredient(sub.Original)
	substitute := recipe.NormalizeIngredient(sub.Substitute)
	if original == "" || substitute == "" {
		return common.NewValidationError("substitution requires original and substitute")
	}
	if original == substitute {
		return common.NewValidationError(fmt.Sprintf("ingredient %q cannot substitute itself", original))
	}
	if sub.Confidence < 0 || sub.Confidence > 1 {
		return common.NewValidationError(fmt.Sprintf("confidence %v for %s -> %s is outside [0,1]", sub.Confidence, original, substitute))
	}
	return nil
}
