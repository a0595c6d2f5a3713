package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"storefront-backend/internal/catalog"
	"storefront-backend/internal/domain"
	"storefront-backend/pkg/logger"
)

type CatalogOptions struct {
	Policy       catalog.PolicyOptions
	DefaultLimit int
	MaxLimit     int
	Timeout      time.Duration
	// Placeholder fills ImageURL where no image resolved. HasImage stays
	// false. Empty leaves the URL blank.
	Placeholder string
}

// CatalogUsecase reads inventory, groups it and serves the public listing.
// Grouping runs on every call; only search hits and the image lookup are
// cached.
type CatalogUsecase struct {
	engine   *catalog.Engine
	repo     domain.InventoryRepository
	images   catalog.ImageSource
	searcher domain.CatalogSearcher
	opts     CatalogOptions
}

// NewCatalogUsecase wires the listing. searcher may be nil, in which case
// queries are matched in process.
func NewCatalogUsecase(engine *catalog.Engine, repo domain.InventoryRepository, images catalog.ImageSource, searcher domain.CatalogSearcher, opts CatalogOptions) *CatalogUsecase {
	if opts.DefaultLimit <= 0 {
		opts.DefaultLimit = 24
	}
	if opts.MaxLimit < opts.DefaultLimit {
		opts.MaxLimit = opts.DefaultLimit
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 5 * time.Second
	}
	return &CatalogUsecase{
		engine:   engine,
		repo:     repo,
		images:   images,
		searcher: searcher,
		opts:     opts,
	}
}

// ListProducts returns one page of visible product groups.
func (uc *CatalogUsecase) ListProducts(ctx context.Context, q domain.ProductQuery) ([]domain.ProductGroup, domain.Pagination, error) {
	if q.Sort != "" && !validSort(q.Sort) {
		return nil, domain.Pagination{}, fmt.Errorf("%w: unknown sort %q", domain.ErrInvalidArgument, q.Sort)
	}

	ctx, cancel := context.WithTimeout(ctx, uc.opts.Timeout)
	defer cancel()

	page, limit := uc.pageBounds(q.Page, q.Limit)

	groups, err := uc.loadGroups(ctx, q.StoreID)
	if err != nil {
		return nil, domain.Pagination{}, err
	}

	ranked := false
	if query := strings.TrimSpace(q.Query); query != "" {
		groups, ranked = uc.search(ctx, groups, query)
	}
	if q.Sort != "" || !ranked {
		uc.sortGroups(groups, q.Sort)
	}

	pagination := domain.NewPagination(page, limit, int64(len(groups)))
	start := (page - 1) * limit
	if start >= len(groups) {
		return []domain.ProductGroup{}, pagination, nil
	}
	end := start + limit
	if end > len(groups) {
		end = len(groups)
	}
	return groups[start:end], pagination, nil
}

// GetProduct finds one visible group by slug or base name.
func (uc *CatalogUsecase) GetProduct(ctx context.Context, key string, storeID int64) (*domain.ProductGroup, error) {
	ctx, cancel := context.WithTimeout(ctx, uc.opts.Timeout)
	defer cancel()

	groups, err := uc.loadGroups(ctx, storeID)
	if err != nil {
		return nil, err
	}

	upper := strings.ToUpper(strings.TrimSpace(key))
	canonical := uc.engine.CanonicalBase(key)
	for i := range groups {
		g := &groups[i]
		if g.Slug == key || g.BaseName == upper || g.BaseName == canonical {
			return g, nil
		}
	}
	return nil, fmt.Errorf("product %q: %w", key, domain.ErrNotFound)
}

// Groups returns every visible group in first-seen order.
func (uc *CatalogUsecase) Groups(ctx context.Context, storeID int64) ([]domain.ProductGroup, error) {
	ctx, cancel := context.WithTimeout(ctx, uc.opts.Timeout)
	defer cancel()
	return uc.loadGroups(ctx, storeID)
}

func (uc *CatalogUsecase) ListStores(ctx context.Context) ([]domain.Store, error) {
	ctx, cancel := context.WithTimeout(ctx, uc.opts.Timeout)
	defer cancel()

	stores, err := uc.repo.ListStores(ctx)
	if err != nil {
		return nil, fmt.Errorf("list stores: %w", err)
	}
	return stores, nil
}

// Inspect runs a single raw name through the engine.
func (uc *CatalogUsecase) Inspect(name string) domain.NameInspection {
	return uc.engine.Inspect(name, uc.images)
}

// ImageStats reports on the image lookup when its source tracks them.
func (uc *CatalogUsecase) ImageStats() domain.ImageLookupStats {
	if s, ok := uc.images.(interface{ Stats() domain.ImageLookupStats }); ok {
		return s.Stats()
	}
	var l *catalog.ImageLookup
	if uc.images != nil {
		l = uc.images.Current()
	}
	return domain.ImageLookupStats{Keys: l.Len(), Entries: l.Sources()}
}

func (uc *CatalogUsecase) Rules() catalog.RuleSet {
	return uc.engine.Rules
}

// RebuildSearchIndex indexes every group the public listing can show.
func (uc *CatalogUsecase) RebuildSearchIndex(ctx context.Context) (int, error) {
	if uc.searcher == nil {
		return 0, domain.ErrSearchDisabled
	}
	groups, err := uc.loadGroups(ctx, 0)
	if err != nil {
		return 0, err
	}
	if err := uc.searcher.IndexGroups(ctx, groups); err != nil {
		return 0, fmt.Errorf("index groups: %w", err)
	}
	return len(groups), nil
}

// AuditFallbacks lists raw names that no size rule recognised.
func (uc *CatalogUsecase) AuditFallbacks(ctx context.Context, storeID int64) ([]string, error) {
	rows, err := uc.repo.ListRows(ctx, domain.InventoryFilter{StoreID: storeID})
	if err != nil {
		return nil, fmt.Errorf("list inventory rows: %w", err)
	}
	names := make([]string, len(rows))
	for i, r := range rows {
		names[i] = r.Name
	}
	return uc.engine.FallbackNames(names), nil
}

func (uc *CatalogUsecase) loadGroups(ctx context.Context, storeID int64) ([]domain.ProductGroup, error) {
	filter := domain.InventoryFilter{StoreID: storeID}
	if !uc.opts.Policy.ShowAll {
		filter.NamePatterns = uc.engine.Featured.LikePatterns()
	}

	rows, err := uc.repo.ListRows(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list inventory rows: %w", err)
	}

	grouper := uc.engine.NewGrouper(uc.images, catalog.GroupOptions{
		ShowAll: uc.opts.Policy.ShowAll,
		Logger:  logger.WithContext(ctx),
	})
	groups := uc.engine.Featured.Apply(grouper.Group(rows), uc.opts.Policy)
	if uc.opts.Placeholder != "" {
		fillPlaceholders(groups, uc.opts.Placeholder)
	}
	return groups, nil
}

func fillPlaceholders(groups []domain.ProductGroup, url string) {
	for i := range groups {
		g := &groups[i]
		if !g.HasImage {
			g.ImageURL, g.ImageAlt = url, g.BaseName
		}
		for j := range g.Variants {
			v := &g.Variants[j]
			if !v.HasImage {
				v.ImageURL, v.ImageAlt = url, v.Name
			}
		}
	}
}

func (uc *CatalogUsecase) pageBounds(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = uc.opts.DefaultLimit
	}
	if limit > uc.opts.MaxLimit {
		limit = uc.opts.MaxLimit
	}
	return page, limit
}

func validSort(s string) bool {
	for _, o := range domain.SortOptions {
		if o == s {
			return true
		}
	}
	return false
}

// sortGroups orders groups in place. Featured order lists curated bases in
// their configured order, then everything else by name.
func (uc *CatalogUsecase) sortGroups(groups []domain.ProductGroup, by string) {
	byName := func(i, j int) bool { return groups[i].BaseName < groups[j].BaseName }

	switch by {
	case domain.SortNameAsc:
		sort.SliceStable(groups, byName)
	case domain.SortNameDesc:
		sort.SliceStable(groups, func(i, j int) bool { return groups[i].BaseName > groups[j].BaseName })
	case domain.SortStockDesc:
		sort.SliceStable(groups, func(i, j int) bool {
			qi, qj := groups[i].TotalQty(), groups[j].TotalQty()
			if qi != qj {
				return qi > qj
			}
			return byName(i, j)
		})
	case domain.SortPriceAsc, domain.SortPriceDesc:
		desc := by == domain.SortPriceDesc
		sort.SliceStable(groups, func(i, j int) bool {
			pi, pj := groups[i].MinPrice(), groups[j].MinPrice()
			if !pi.Equal(pj) {
				return pi.LessThan(pj) != desc
			}
			return byName(i, j)
		})
	default:
		featured := uc.engine.Featured
		sort.SliceStable(groups, func(i, j int) bool {
			ri, oki := featured.Rank(groups[i].BaseName)
			rj, okj := featured.Rank(groups[j].BaseName)
			switch {
			case oki && okj:
				return ri < rj
			case oki != okj:
				return oki
			}
			return byName(i, j)
		})
	}
}
