package catalog

import (
	"strings"

	"storefront-backend/internal/domain"
)

// Engine bundles the compiled rule set. It is safe for concurrent use.
type Engine struct {
	Rules      RuleSet
	Normalizer *Normalizer
	Keys       *KeyExtractor
	Restrictor *Restrictor
	Featured   *FeaturedPolicy

	singleAllowed map[string]struct{}
}

func NewEngine(rs RuleSet) *Engine {
	e := &Engine{
		Rules:         rs,
		Normalizer:    NewNormalizer(rs),
		Keys:          NewKeyExtractor(),
		Restrictor:    NewRestrictor(rs),
		singleAllowed: make(map[string]struct{}, len(rs.SingleVariantAllowed)),
	}
	e.Featured = newFeaturedPolicy(rs, e.CanonicalBase)
	for _, name := range rs.SingleVariantAllowed {
		if base := e.CanonicalBase(name); base != "" {
			e.singleAllowed[base] = struct{}{}
		}
	}
	return e
}

// CanonicalBase normalizes a configured base name the same way row names are.
func (e *Engine) CanonicalBase(name string) string {
	return e.Keys.BaseKey(e.Normalizer.Normalize(name))
}

// Key is the image lookup key of s.
func (e *Engine) Key(s string) string {
	return e.Normalizer.Key(s)
}

func (e *Engine) NewGrouper(images ImageSource, opts GroupOptions) *Grouper {
	return &Grouper{engine: e, images: images, opts: opts}
}

// Inspect reports every decision the pipeline makes for one raw name.
func (e *Engine) Inspect(raw string, images ImageSource) domain.NameInspection {
	name := e.Normalizer.Normalize(raw)
	key := e.Keys.Extract(name)
	flavor := e.Keys.Flavor(name, key.Base)

	out := domain.NameInspection{
		Raw:          raw,
		Normalized:   name,
		BaseKey:      key.Base,
		Flavor:       DisplayFlavor(flavor),
		Marker:       key.Marker,
		Fallback:     key.Fallback,
		Restricted:   e.Restrictor.IsRestricted(name, key.Base, raw),
		Discontinued: e.Restrictor.IsDiscontinued(key.Base, flavor),
		Featured:     e.Featured.IsFeatured(key.Base),
	}
	if images != nil {
		if img, ok := images.Current().Resolve(key.Base, flavor); ok {
			out.Image = &img
		}
	}
	return out
}

// FallbackNames returns the distinct raw names whose base key came from the
// generic fallback rule, in input order.
func (e *Engine) FallbackNames(raw []string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, r := range raw {
		if strings.TrimSpace(r) == "" {
			continue
		}
		if _, dup := seen[r]; dup {
			continue
		}
		seen[r] = struct{}{}
		if e.Keys.Extract(e.Normalizer.Normalize(r)).Fallback {
			out = append(out, r)
		}
	}
	return out
}
