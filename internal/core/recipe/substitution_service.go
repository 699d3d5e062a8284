package recipe

import (
	"context"
	"sync"
	"time"

	"recipe-recommender/internal/pkg/common"
	"recipe-recommender/internal/pkg/metrics"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// SubstitutionTable 正規化原食材 -> 已正規化的替代品
type SubstitutionTable map[string][]common.Substitute

// SubstitutionService 替代品解析服務
type SubstitutionService struct {
	source      SubstitutionSource
	concurrency int
}

// NewSubstitutionService 創建替代品解析服務，concurrency 為同時查詢上限
func NewSubstitutionService(source SubstitutionSource, concurrency int) *SubstitutionService {
	if concurrency <= 0 {
		concurrency = 1
	}
	return &SubstitutionService{
		source:      source,
		concurrency: concurrency,
	}
}

// Resolve 對每個缺少的食材找出呼叫端手上有的替代品
// 一個食材可能對應零到多筆記錄；順序依 missing 再依目錄回傳順序
func (s *SubstitutionService) Resolve(ctx context.Context, missing, available []string) ([]SubstitutionMatch, error) {
	table, err := s.Lookup(ctx, missing)
	if err != nil {
		return nil, err
	}
	return table.Resolve(missing, available), nil
}

// Lookup 平行查詢多個原食材的替代關係
// 任一查詢失敗或 ctx 取消時整體失敗，不回傳部分結果
func (s *SubstitutionService) Lookup(ctx context.Context, originals []string) (SubstitutionTable, error) {
	names := NormalizeSet(originals)
	table := make(SubstitutionTable, len(names))
	if len(names) == 0 {
		return table, nil
	}

	start := time.Now()
	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for _, name := range names {
		name := name
		g.Go(func() error {
			lookupStart := time.Now()
			subs, err := s.source.FindSubstitutions(gctx, name)
			metrics.ObserveCatalogCall("find substitutions", time.Since(lookupStart), err)
			if err != nil {
				return wrapCatalogError(ctx, "find substitutions", err)
			}
			edges := sanitizeSubstitutes(name, subs)

			mu.Lock()
			table[name] = edges
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	common.LogDebug("替代關係查詢完成",
		zap.Int("ingredients", len(names)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return table, nil
}

// sanitizeSubstitutes 正規化替代品名稱，略過自我替代與信心值超出 [0,1] 的邊
func sanitizeSubstitutes(original string, subs []common.Substitute) []common.Substitute {
	out := make([]common.Substitute, 0, len(subs))
	for _, sub := range subs {
		name := NormalizeIngredient(sub.Name)
		if name == "" || name == original {
			continue
		}
		if sub.Confidence < 0 || sub.Confidence > 1 {
			common.LogWarn("略過信心值無效的替代關係",
				zap.String("original", original),
				zap.String("substitute", name),
				zap.Float64("confidence", sub.Confidence),
			)
			continue
		}
		out = append(out, common.Substitute{Name: name, Confidence: sub.Confidence})
	}
	return out
}

// Resolve 不做任何 I/O，只比對已查到的替代關係
func (t SubstitutionTable) Resolve(missing, available []string) []SubstitutionMatch {
	have := newIngredientSet(NormalizeSet(available))
	matches := make([]SubstitutionMatch, 0)
	for _, original := range NormalizeSet(missing) {
		for _, sub := range t[original] {
			if sub.Name == original || !have.has(sub.Name) {
				continue
			}
			matches = append(matches, SubstitutionMatch{
				Original:   original,
				Substitute: sub.Name,
				Confidence: sub.Confidence,
			})
		}
	}
	return matches
}
