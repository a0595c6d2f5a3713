package catalog

import (
	"strings"

	"storefront-backend/internal/domain"
)

// PolicyOptions are the environment switches for the public catalog.
type PolicyOptions struct {
	ShowAll        bool
	ImageReadyOnly bool
}

// FeaturedPolicy narrows the grouped catalog to the curated base products.
type FeaturedPolicy struct {
	rank        map[string]int
	names       []string
	patterns    []string
	alwaysAllow map[string]struct{}
	canonical   func(string) string
}

func newFeaturedPolicy(rs RuleSet, canonical func(string) string) *FeaturedPolicy {
	p := &FeaturedPolicy{
		rank:        make(map[string]int, len(rs.Featured)),
		alwaysAllow: make(map[string]struct{}, len(rs.AlwaysAllow)),
		canonical:   canonical,
	}

	seen := make(map[string]struct{})
	addPattern := func(name string) {
		pat := LikePattern(name)
		if pat == "" {
			return
		}
		if _, dup := seen[pat]; dup {
			return
		}
		seen[pat] = struct{}{}
		p.patterns = append(p.patterns, pat)
	}

	for _, name := range rs.Featured {
		base := canonical(name)
		if base == "" {
			continue
		}
		if _, dup := p.rank[base]; dup {
			continue
		}
		p.rank[base] = len(p.names)
		p.names = append(p.names, base)
		addPattern(base)
		for _, alias := range rs.FeaturedAliases[name] {
			addPattern(alias)
		}
	}
	for _, name := range rs.AlwaysAllow {
		if base := canonical(name); base != "" {
			p.alwaysAllow[base] = struct{}{}
		}
	}
	return p
}

// IsFeatured matches a base key exactly. Names that are not yet canonical are
// normalized first.
func (p *FeaturedPolicy) IsFeatured(baseKey string) bool {
	_, ok := p.Rank(baseKey)
	return ok
}

// Rank is the position of baseKey in the featured list.
func (p *FeaturedPolicy) Rank(baseKey string) (int, bool) {
	if r, ok := p.rank[baseKey]; ok {
		return r, true
	}
	r, ok := p.rank[p.canonical(baseKey)]
	return r, ok
}

// Names returns the canonical featured base keys in list order.
func (p *FeaturedPolicy) Names() []string {
	out := make([]string, len(p.names))
	copy(out, p.names)
	return out
}

// LikePatterns are coarse ILIKE prefilters for the featured bases. They may
// admit extra rows; Apply is the exact filter.
func (p *FeaturedPolicy) LikePatterns() []string {
	out := make([]string, len(p.patterns))
	copy(out, p.patterns)
	return out
}

// Apply keeps featured groups only. With ImageReadyOnly a featured base also
// needs an image somewhere in the group unless it is always allowed.
func (p *FeaturedPolicy) Apply(groups []domain.ProductGroup, opts PolicyOptions) []domain.ProductGroup {
	if opts.ShowAll {
		return groups
	}

	out := make([]domain.ProductGroup, 0, len(groups))
	for _, g := range groups {
		if !p.IsFeatured(g.BaseName) {
			continue
		}
		if opts.ImageReadyOnly && !hasAnyImage(g) {
			if _, ok := p.alwaysAllow[g.BaseName]; !ok {
				continue
			}
		}
		out = append(out, g)
	}
	return out
}

func hasAnyImage(g domain.ProductGroup) bool {
	if g.HasImage {
		return true
	}
	for _, v := range g.Variants {
		if v.HasImage {
			return true
		}
	}
	return false
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// LikePattern turns "GEEKBAR X 25K" into "%GEEKBAR%X%25K%".
func LikePattern(name string) string {
	tokens := strings.Fields(strings.ToUpper(name))
	if len(tokens) == 0 {
		return ""
	}
	for i, t := range tokens {
		tokens[i] = likeEscaper.Replace(t)
	}
	return "%" + strings.Join(tokens, "%") + "%"
}
