package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"storefront-backend/internal/domain"
	"storefront-backend/pkg/cache"
)

const sitemapCacheKey = "sitemap:items"

type SitemapItem struct {
	Loc        string
	LastMod    string
	ChangeFreq string
	Priority   float32
}

type groupLister interface {
	Groups(ctx context.Context, storeID int64) ([]domain.ProductGroup, error)
}

// SitemapUsecase lists the storefront pages search engines should crawl:
// the static pages plus one page per visible product group.
type SitemapUsecase struct {
	catalog groupLister
	baseURL string
	cache   cache.CacheService
	ttl     time.Duration
	now     func() time.Time
}

func NewSitemapUsecase(catalog groupLister, baseURL string, c cache.CacheService, ttl time.Duration) *SitemapUsecase {
	return &SitemapUsecase{
		catalog: catalog,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		cache:   c,
		ttl:     ttl,
		now:     time.Now,
	}
}

func (u *SitemapUsecase) GenerateSitemap(ctx context.Context) ([]SitemapItem, error) {
	if val, found := u.cache.Get(sitemapCacheKey); found {
		return val.([]SitemapItem), nil
	}

	groups, err := u.catalog.Groups(ctx, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch products: %w", err)
	}

	today := u.now().Format("2006-01-02")
	items := []SitemapItem{
		{Loc: u.baseURL + "/", LastMod: today, ChangeFreq: "daily", Priority: 1.0},
		{Loc: u.baseURL + "/shop", LastMod: today, ChangeFreq: "daily", Priority: 0.8},
		{Loc: u.baseURL + "/stores", LastMod: today, ChangeFreq: "monthly", Priority: 0.5},
	}

	slugs := make([]string, 0, len(groups))
	for _, g := range groups {
		if g.Slug != "" {
			slugs = append(slugs, g.Slug)
		}
	}
	sort.Strings(slugs)
	for _, slug := range slugs {
		items = append(items, SitemapItem{
			Loc:        fmt.Sprintf("%s/products/%s", u.baseURL, slug),
			LastMod:    today,
			ChangeFreq: "daily",
			Priority:   0.9,
		})
	}

	u.cache.Set(sitemapCacheKey, items, u.ttl)
	return items, nil
}
