package usecase

import (
	"context"
	"strings"

	"storefront-backend/internal/domain"
	"storefront-backend/pkg/logger"
)

// searchLimit bounds the hits requested from the index. The grouped catalog
// is far smaller, so this never truncates a real result set.
const searchLimit = 1000

// search narrows groups to those matching query. The second result is true
// when the groups come back in index relevance order.
func (uc *CatalogUsecase) search(ctx context.Context, groups []domain.ProductGroup, query string) ([]domain.ProductGroup, bool) {
	if uc.searcher != nil {
		names, err := uc.searcher.SearchBaseNames(ctx, query, searchLimit)
		if err == nil {
			return pickByName(groups, names), true
		}
		logger.WithContext(ctx).Warn().Err(err).Str("query", query).Msg("Search index unavailable, matching in process")
	}
	return matchTokens(groups, query), false
}

// pickByName returns the groups named in names, in that order.
func pickByName(groups []domain.ProductGroup, names []string) []domain.ProductGroup {
	idx := make(map[string]int, len(groups))
	for i, g := range groups {
		idx[g.BaseName] = i
	}
	out := make([]domain.ProductGroup, 0, len(names))
	seen := make(map[string]struct{}, len(names))
	for _, n := range names {
		i, ok := idx[n]
		if !ok {
			continue
		}
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, groups[i])
	}
	return out
}

// matchTokens keeps groups whose base name and flavors contain every query
// token, ignoring case.
func matchTokens(groups []domain.ProductGroup, query string) []domain.ProductGroup {
	tokens := strings.Fields(strings.ToUpper(query))
	out := make([]domain.ProductGroup, 0, len(groups))
	for _, g := range groups {
		var b strings.Builder
		b.WriteString(g.BaseName)
		for _, v := range g.Variants {
			b.WriteByte(' ')
			b.WriteString(strings.ToUpper(v.Flavor))
		}
		haystack := b.String()

		match := true
		for _, t := range tokens {
			if !strings.Contains(haystack, t) {
				match = false
				break
			}
		}
		if match {
			out = append(out, g)
		}
	}
	return out
}
