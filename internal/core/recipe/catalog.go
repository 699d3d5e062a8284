package recipe

import (
	"context"
	"errors"
	"fmt"

	"recipe-recommender/internal/pkg/common"
)

var (
	// ErrInvalidLimit limit 為零或負數
	ErrInvalidLimit = errors.New("limit must be a positive integer")
	// ErrCatalogUnavailable 外部目錄讀取失敗
	ErrCatalogUnavailable = errors.New("catalog unavailable")
)

// Catalog 推薦引擎所需的外部目錄介面
type Catalog interface {
	// FindPublishedRecipes 回傳符合硬性篩選的已發佈食譜，順序需穩定
	FindPublishedRecipes(ctx context.Context, query RecipeQuery) ([]common.Recipe, error)

	SubstitutionSource
}

// SubstitutionSource 替代關係來源
type SubstitutionSource interface {
	// FindSubstitutions 回傳 original 的所有宣告替代品
	FindSubstitutions(ctx context.Context, original string) ([]common.Substitute, error)
}

// CatalogError 目錄存取失敗，errors.Is 可比對 ErrCatalogUnavailable
type CatalogError struct {
	Op  string
	Err error
}

func (e *CatalogError) Error() string {
	return fmt.Sprintf("catalog %s: %v", e.Op, e.Err)
}

func (e *CatalogError) Unwrap() error {
	return e.Err
}

// Is 讓 errors.Is(err, ErrCatalogUnavailable) 成立
func (e *CatalogError) Is(target error) bool {
	return target == ErrCatalogUnavailable
}

// wrapCatalogError 呼叫端取消或逾時時回傳 context 錯誤，其餘包成 CatalogError
func wrapCatalogError(ctx context.Context, op string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("%s: %w", op, ctxErr)
	}
	var ce *CatalogError
	if errors.As(err, &ce) {
		return err
	}
	return &CatalogError{Op: op, Err: err}
}

func validateLimit(limit int) error {
	if limit <= 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidLimit, limit)
	}
	return nil
}
