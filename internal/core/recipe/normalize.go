package recipe

import "strings"

// NormalizeIngredient 食材名稱正規化：轉小寫並去除前後空白
// 不做詞幹、單複數或同義詞處理，兩個名稱只有正規化後完全相同才視為同一食材
func NormalizeIngredient(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// NormalizeSet 正規化並去重，保留首次出現的順序，略過空字串
func NormalizeSet(names []string) []string {
	out := make([]string, 0, len(names))
	seen := make(map[string]struct{}, len(names))
	for _, name := range names {
		n := NormalizeIngredient(name)
		if n == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}

// ingredientSet 已正規化的食材集合
type ingredientSet map[string]struct{}

func newIngredientSet(normalized []string) ingredientSet {
	set := make(ingredientSet, len(normalized))
	for _, n := range normalized {
		set[n] = struct{}{}
	}
	return set
}

func (s ingredientSet) has(name string) bool {
	_, ok := s[name]
	return ok
}

// intersect 回傳 names 中存在於集合的項目，順序依 names
func (s ingredientSet) intersect(names []string) []string {
	out := make([]string, 0, len(names))
	for _, n := range names {
		if s.has(n) {
			out = append(out, n)
		}
	}
	return out
}
