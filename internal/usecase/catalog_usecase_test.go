package usecase

import (
	"context"
	"errors"
	"testing"

	"storefront-backend/internal/catalog"
	"storefront-backend/internal/domain"

	"github.com/shopspring/decimal"
)

type fakeInventory struct {
	rows   []domain.RawInventoryRow
	stores []domain.Store
	err    error
	filter domain.InventoryFilter
}

func (f *fakeInventory) ListRows(_ context.Context, filter domain.InventoryFilter) ([]domain.RawInventoryRow, error) {
	f.filter = filter
	if f.err != nil {
		return nil, f.err
	}
	return f.rows, nil
}

func (f *fakeInventory) ListStores(context.Context) ([]domain.Store, error) {
	return f.stores, f.err
}

type fakeSearcher struct {
	names   []string
	err     error
	indexed []domain.ProductGroup
}

func (f *fakeSearcher) SearchBaseNames(context.Context, string, int) ([]string, error) {
	return f.names, f.err
}

func (f *fakeSearcher) IndexGroups(_ context.Context, groups []domain.ProductGroup) error {
	f.indexed = groups
	return f.err
}

func inv(id, name, qty, price string) domain.RawInventoryRow {
	return domain.RawInventoryRow{ID: id, Name: name, Quantity: qty, Price: decimal.RequireFromString(price)}
}

func sampleInventory() *fakeInventory {
	return &fakeInventory{
		rows: []domain.RawInventoryRow{
			inv("1", "GEEK BAR 25K BANANA ICE", "5", "20"),
			inv("2", "GEEKBAR X 25K SOUR APPLE", "3", "20"),
			inv("3", "FUME EXTRA MIAMI MINT", "1", "15"),
			inv("4", "ZYN 3MG COOL MINT", "10", "6"),
			inv("5", "JUUL", "7", "30"),
			inv("6", "RAZZ 9K LEMON", "2", "25"),
		},
		stores: []domain.Store{{ID: 1, Name: "Main St"}},
	}
}

func newTestCatalog(repo domain.InventoryRepository, searcher domain.CatalogSearcher, policy catalog.PolicyOptions) *CatalogUsecase {
	return NewCatalogUsecase(catalog.NewEngine(catalog.DefaultRuleSet()), repo, nil, searcher, CatalogOptions{
		Policy:       policy,
		DefaultLimit: 24,
		MaxLimit:     50,
	})
}

func baseNames(groups []domain.ProductGroup) []string {
	out := make([]string, len(groups))
	for i, g := range groups {
		out[i] = g.BaseName
	}
	return out
}

func equalNames(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestListProducts_Sort(t *testing.T) {
	tests := []struct {
		sort string
		want []string
	}{
		{"", []string{"FUME EXTRA", "GEEKBAR X 25K", "RAZ 9K", "ZYN 3MG"}},
		{domain.SortFeatured, []string{"FUME EXTRA", "GEEKBAR X 25K", "RAZ 9K", "ZYN 3MG"}},
		{domain.SortNameDesc, []string{"ZYN 3MG", "RAZ 9K", "GEEKBAR X 25K", "FUME EXTRA"}},
		{domain.SortStockDesc, []string{"ZYN 3MG", "GEEKBAR X 25K", "RAZ 9K", "FUME EXTRA"}},
		{domain.SortPriceAsc, []string{"ZYN 3MG", "FUME EXTRA", "GEEKBAR X 25K", "RAZ 9K"}},
		{domain.SortPriceDesc, []string{"RAZ 9K", "GEEKBAR X 25K", "FUME EXTRA", "ZYN 3MG"}},
	}

	for _, tt := range tests {
		t.Run("sort "+tt.sort, func(t *testing.T) {
			uc := newTestCatalog(sampleInventory(), nil, catalog.PolicyOptions{})
			groups, page, err := uc.ListProducts(context.Background(), domain.ProductQuery{Sort: tt.sort})
			if err != nil {
				t.Fatalf("ListProducts: %v", err)
			}
			if got := baseNames(groups); !equalNames(got, tt.want) {
				t.Errorf("order = %v, want %v", got, tt.want)
			}
			if page.TotalItems != 4 || page.Limit != 24 || page.Page != 1 {
				t.Errorf("pagination = %+v", page)
			}
		})
	}
}

func TestListProducts_InvalidSort(t *testing.T) {
	uc := newTestCatalog(sampleInventory(), nil, catalog.PolicyOptions{})
	_, _, err := uc.ListProducts(context.Background(), domain.ProductQuery{Sort: "random"})
	if !errors.Is(err, domain.ErrInvalidArgument) {
		t.Fatalf("err = %v, want ErrInvalidArgument", err)
	}
}

func TestListProducts_Pagination(t *testing.T) {
	tests := []struct {
		name      string
		page      int
		limit     int
		want      []string
		wantLimit int
		wantPages int
	}{
		{"second page", 2, 2, []string{"RAZ 9K", "ZYN 3MG"}, 2, 2},
		{"past the end", 3, 2, []string{}, 2, 2},
		{"zero page is first", 0, 3, []string{"FUME EXTRA", "GEEKBAR X 25K", "RAZ 9K"}, 3, 2},
		{"limit clamped", 1, 500, []string{"FUME EXTRA", "GEEKBAR X 25K", "RAZ 9K", "ZYN 3MG"}, 50, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := newTestCatalog(sampleInventory(), nil, catalog.PolicyOptions{})
			groups, page, err := uc.ListProducts(context.Background(), domain.ProductQuery{Page: tt.page, Limit: tt.limit})
			if err != nil {
				t.Fatalf("ListProducts: %v", err)
			}
			if got := baseNames(groups); !equalNames(got, tt.want) {
				t.Errorf("page = %v, want %v", got, tt.want)
			}
			if page.Limit != tt.wantLimit || page.TotalPages != tt.wantPages {
				t.Errorf("pagination = %+v", page)
			}
		})
	}
}

func TestListProducts_PolicyPrefilter(t *testing.T) {
	repo := sampleInventory()
	uc := newTestCatalog(repo, nil, catalog.PolicyOptions{})
	if _, _, err := uc.ListProducts(context.Background(), domain.ProductQuery{StoreID: 3}); err != nil {
		t.Fatalf("ListProducts: %v", err)
	}
	if len(repo.filter.NamePatterns) == 0 {
		t.Error("featured listing should prefilter rows by name")
	}
	if repo.filter.StoreID != 3 {
		t.Errorf("StoreID = %d, want 3", repo.filter.StoreID)
	}

	repo = sampleInventory()
	uc = newTestCatalog(repo, nil, catalog.PolicyOptions{ShowAll: true})
	groups, _, err := uc.ListProducts(context.Background(), domain.ProductQuery{Sort: domain.SortNameAsc})
	if err != nil {
		t.Fatalf("ListProducts: %v", err)
	}
	if repo.filter.NamePatterns != nil {
		t.Errorf("show all must not prefilter, got %v", repo.filter.NamePatterns)
	}
	want := []string{"FUME EXTRA", "GEEKBAR X 25K", "JUUL", "RAZ 9K", "ZYN 3MG"}
	if got := baseNames(groups); !equalNames(got, want) {
		t.Errorf("groups = %v, want %v", got, want)
	}
}

func TestListProducts_Query(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		searcher *fakeSearcher
		want     []string
	}{
		{"token match on flavor", "mint", nil, []string{"FUME EXTRA", "ZYN 3MG"}},
		{"all tokens required", "geekbar apple", nil, []string{"GEEKBAR X 25K"}},
		{"no match", "hookah", nil, []string{}},
		{"index relevance order", "mint", &fakeSearcher{names: []string{"ZYN 3MG", "NOT LISTED", "FUME EXTRA", "ZYN 3MG"}}, []string{"ZYN 3MG", "FUME EXTRA"}},
		{"index failure falls back", "lemon", &fakeSearcher{err: errors.New("connection refused")}, []string{"RAZ 9K"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var searcher domain.CatalogSearcher
			if tt.searcher != nil {
				searcher = tt.searcher
			}
			uc := newTestCatalog(sampleInventory(), searcher, catalog.PolicyOptions{})
			groups, page, err := uc.ListProducts(context.Background(), domain.ProductQuery{Query: tt.query})
			if err != nil {
				t.Fatalf("ListProducts: %v", err)
			}
			if got := baseNames(groups); !equalNames(got, tt.want) {
				t.Errorf("groups = %v, want %v", got, tt.want)
			}
			if page.TotalItems != int64(len(tt.want)) {
				t.Errorf("TotalItems = %d, want %d", page.TotalItems, len(tt.want))
			}
		})
	}
}

func TestListProducts_RepositoryError(t *testing.T) {
	repo := &fakeInventory{err: errors.New("db down")}
	uc := newTestCatalog(repo, nil, catalog.PolicyOptions{})
	if _, _, err := uc.ListProducts(context.Background(), domain.ProductQuery{}); err == nil {
		t.Fatal("expected error")
	}
}

func TestGetProduct(t *testing.T) {
	uc := newTestCatalog(sampleInventory(), nil, catalog.PolicyOptions{})

	tests := []struct {
		key  string
		want string
	}{
		{"geekbar-x-25k", "GEEKBAR X 25K"},
		{"GEEKBAR X 25K", "GEEKBAR X 25K"},
		{"geek bar 25k", "GEEKBAR X 25K"},
		{"zyn 3mg", "ZYN 3MG"},
	}
	for _, tt := range tests {
		g, err := uc.GetProduct(context.Background(), tt.key, 0)
		if err != nil {
			t.Errorf("GetProduct(%q): %v", tt.key, err)
			continue
		}
		if g.BaseName != tt.want {
			t.Errorf("GetProduct(%q) = %q, want %q", tt.key, g.BaseName, tt.want)
		}
	}

	if _, err := uc.GetProduct(context.Background(), "juul", 0); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("hidden product err = %v, want ErrNotFound", err)
	}
}

func TestListStores(t *testing.T) {
	uc := newTestCatalog(sampleInventory(), nil, catalog.PolicyOptions{})
	stores, err := uc.ListStores(context.Background())
	if err != nil {
		t.Fatalf("ListStores: %v", err)
	}
	if len(stores) != 1 || stores[0].Name != "Main St" {
		t.Errorf("stores = %+v", stores)
	}
}

func TestRebuildSearchIndex(t *testing.T) {
	uc := newTestCatalog(sampleInventory(), nil, catalog.PolicyOptions{})
	if _, err := uc.RebuildSearchIndex(context.Background()); !errors.Is(err, domain.ErrSearchDisabled) {
		t.Fatalf("err = %v, want ErrSearchDisabled", err)
	}

	s := &fakeSearcher{}
	uc = newTestCatalog(sampleInventory(), s, catalog.PolicyOptions{})
	n, err := uc.RebuildSearchIndex(context.Background())
	if err != nil {
		t.Fatalf("RebuildSearchIndex: %v", err)
	}
	if n != 4 || len(s.indexed) != 4 {
		t.Errorf("indexed %d groups (%d sent), want 4", n, len(s.indexed))
	}
}

func TestAuditFallbacks(t *testing.T) {
	uc := newTestCatalog(sampleInventory(), nil, catalog.PolicyOptions{})
	names, err := uc.AuditFallbacks(context.Background(), 0)
	if err != nil {
		t.Fatalf("AuditFallbacks: %v", err)
	}
	want := []string{"FUME EXTRA MIAMI MINT", "JUUL"}
	if !equalNames(names, want) {
		t.Errorf("fallbacks = %v, want %v", names, want)
	}
}

func TestImageStats(t *testing.T) {
	e := catalog.NewEngine(catalog.DefaultRuleSet())
	lookup := catalog.BuildLookup(e.Key, []domain.VariantImageEntry{
		{Match: "ZYN 3MG COOL MINT", ImageURL: "/zyn.webp"},
	})
	uc := NewCatalogUsecase(e, sampleInventory(), lookup, nil, CatalogOptions{})

	stats := uc.ImageStats()
	if stats.Keys != 1 || stats.Entries != 1 {
		t.Errorf("stats = %+v", stats)
	}

	groups, _, err := uc.ListProducts(context.Background(), domain.ProductQuery{Query: "zyn"})
	if err != nil {
		t.Fatalf("ListProducts: %v", err)
	}
	if len(groups) != 1 || groups[0].ImageURL != "/zyn.webp" {
		t.Errorf("groups = %+v", groups)
	}

	if got := uc.Inspect("zyn 3mg cool mint"); got.Image == nil || got.Image.ImageURL != "/zyn.webp" {
		t.Errorf("Inspect image = %+v", got.Image)
	}
}

func TestListProducts_Placeholder(t *testing.T) {
	uc := NewCatalogUsecase(catalog.NewEngine(catalog.DefaultRuleSet()), sampleInventory(), nil, nil, CatalogOptions{
		Placeholder: domain.PlaceholderImage,
	})
	g, err := uc.GetProduct(context.Background(), "zyn-3mg", 0)
	if err != nil {
		t.Fatalf("GetProduct: %v", err)
	}
	if g.HasImage || g.ImageURL != domain.PlaceholderImage || g.ImageAlt != "ZYN 3MG" {
		t.Errorf("group image = %q %q %v", g.ImageURL, g.ImageAlt, g.HasImage)
	}
	if v := g.Variants[0]; v.HasImage || v.ImageURL != domain.PlaceholderImage {
		t.Errorf("variant image = %q %v", v.ImageURL, v.HasImage)
	}
}
