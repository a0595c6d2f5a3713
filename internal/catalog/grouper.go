package catalog

import (
	"sort"
	"strings"

	"storefront-backend/internal/domain"
	"storefront-backend/pkg/utils"

	"github.com/rs/zerolog"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

type GroupOptions struct {
	// ShowAll disables the single-variant visibility filter.
	ShowAll bool
	// Logger receives fallback-key diagnostics. Nil discards them.
	Logger *zerolog.Logger
}

// Grouper turns raw inventory rows into product groups.
type Grouper struct {
	engine *Engine
	images ImageSource
	opts   GroupOptions
}

type groupAcc struct {
	group    domain.ProductGroup
	variants map[string]int
	counted  []map[string]struct{}
}

// Group runs the full normalize, key, filter and merge pipeline over rows.
// Groups come back in first-seen order. The image lookup is read once so a
// concurrent rebuild cannot split one call across two snapshots.
func (g *Grouper) Group(rows []domain.RawInventoryRow) []domain.ProductGroup {
	var lookup *ImageLookup
	if g.images != nil {
		lookup = g.images.Current()
	}
	e := g.engine

	order := make([]string, 0)
	accs := make(map[string]*groupAcc)

	for _, row := range rows {
		if row.AnyActive != nil && *row.AnyActive == 0 {
			continue
		}

		name := e.Normalizer.Normalize(row.Name)
		key := e.Keys.Extract(name)
		if key.Base == "" {
			continue
		}
		if key.Fallback && g.opts.Logger != nil {
			g.opts.Logger.Debug().
				Str("raw", row.Name).
				Str("base", key.Base).
				Msg("name matched no size token, using fallback key")
		}

		flavor := e.Keys.Flavor(name, key.Base)
		if e.Restrictor.IsRestricted(name, key.Base, row.Name) {
			continue
		}
		if e.Restrictor.IsDiscontinued(key.Base, flavor) {
			continue
		}

		acc, ok := accs[key.Base]
		if !ok {
			acc = &groupAcc{
				group: domain.ProductGroup{
					BaseName: key.Base,
					Slug:     utils.GenerateSlug(key.Base),
				},
				variants: make(map[string]int),
			}
			accs[key.Base] = acc
			order = append(order, key.Base)
		}

		vkey := strings.ToUpper(flavor)
		if vkey == "" {
			vkey = "ORIGINAL"
		}
		idx, ok := acc.variants[vkey]
		if !ok {
			idx = len(acc.group.Variants)
			acc.variants[vkey] = idx
			acc.group.Variants = append(acc.group.Variants, domain.Variant{
				ID:     row.ID,
				Name:   name,
				Flavor: DisplayFlavor(flavor),
				Price:  row.Price,
			})
			acc.counted = append(acc.counted, make(map[string]struct{}))
		}
		v := &acc.group.Variants[idx]
		if v.Price.IsZero() && !row.Price.IsZero() {
			v.Price = row.Price
		}

		if _, seen := acc.counted[idx][row.Name]; !seen {
			acc.counted[idx][row.Name] = struct{}{}
			v.TotalQty += ParseQuantity(row.Quantity)
		}

		img, found := rowImage(row)
		if !found {
			img, found = lookup.Resolve(key.Base, flavor)
		}
		if !found {
			continue
		}
		if !v.HasImage {
			v.ImageURL, v.ImageAlt, v.HasImage = img.ImageURL, img.ImageAlt, true
		}
		if !acc.group.HasImage {
			acc.group.ImageURL, acc.group.ImageAlt, acc.group.HasImage = img.ImageURL, img.ImageAlt, true
		}
	}

	groups := make([]domain.ProductGroup, 0, len(order))
	for _, base := range order {
		grp := accs[base].group
		sortVariants(grp.Variants)
		if !g.visible(grp) {
			continue
		}
		groups = append(groups, grp)
	}
	return groups
}

func rowImage(row domain.RawInventoryRow) (domain.VariantImageEntry, bool) {
	if strings.TrimSpace(row.ImageURL) == "" {
		return domain.VariantImageEntry{}, false
	}
	return domain.VariantImageEntry{Match: row.Name, ImageURL: row.ImageURL, ImageAlt: row.ImageAlt}, true
}

// sortVariants lists image-bearing variants first, each partition by flavor.
func sortVariants(vs []domain.Variant) {
	sort.SliceStable(vs, func(i, j int) bool {
		if vs[i].HasImage != vs[j].HasImage {
			return vs[i].HasImage
		}
		return strings.ToUpper(vs[i].Flavor) < strings.ToUpper(vs[j].Flavor)
	})
}

func (g *Grouper) visible(grp domain.ProductGroup) bool {
	if len(grp.Variants) == 0 {
		return false
	}
	if g.opts.ShowAll || len(grp.Variants) > 1 || grp.Variants[0].Flavor != domain.FlavorOriginal {
		return true
	}
	if _, ok := g.engine.singleAllowed[grp.BaseName]; ok {
		return true
	}
	return g.engine.Featured.IsFeatured(grp.BaseName)
}

// DisplayFlavor title-cases a flavor for display. Tokens with digits such as
// 3MG or 1-1/4 keep their case.
func DisplayFlavor(flavor string) string {
	if flavor == domain.FlavorOriginal {
		return flavor
	}
	caser := cases.Title(language.English)
	tokens := strings.Fields(flavor)
	for i, tok := range tokens {
		if strings.ContainsAny(tok, "0123456789") {
			tokens[i] = strings.ToUpper(tok)
			continue
		}
		tokens[i] = caser.String(tok)
	}
	return strings.Join(tokens, " ")
}
