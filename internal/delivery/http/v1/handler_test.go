package v1

import (
	"context"
	"encoding/xml"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"storefront-backend/internal/catalog"
	"storefront-backend/internal/domain"
	"storefront-backend/internal/infrastructure/cache"
	"storefront-backend/internal/usecase"

	"github.com/goccy/go-json"
	"github.com/shopspring/decimal"
)

type stubInventory struct {
	rows []domain.RawInventoryRow
	err  error
}

func (s *stubInventory) ListRows(context.Context, domain.InventoryFilter) ([]domain.RawInventoryRow, error) {
	return s.rows, s.err
}

func (s *stubInventory) ListStores(context.Context) ([]domain.Store, error) {
	if s.err != nil {
		return nil, s.err
	}
	return []domain.Store{{ID: 2, Name: "Downtown"}}, nil
}

func newTestServer(repo domain.InventoryRepository) http.Handler {
	engine := catalog.NewEngine(catalog.DefaultRuleSet())
	uc := usecase.NewCatalogUsecase(engine, repo, nil, nil, usecase.CatalogOptions{DefaultLimit: 10, MaxLimit: 20})

	catalogHandler := NewCatalogHandler(uc)
	diag := NewDiagnosticsHandler(cache.NewMemoryCache(time.Minute, time.Minute), uc)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/products", catalogHandler.ListProducts)
	mux.HandleFunc("GET /api/v1/products/{base}", catalogHandler.GetProduct)
	mux.HandleFunc("GET /api/v1/stores", catalogHandler.ListStores)
	mux.HandleFunc("GET /api/v1/catalog/inspect", diag.Inspect)
	mux.HandleFunc("GET /api/v1/catalog/images", diag.Images)
	mux.HandleFunc("GET /api/v1/catalog/rules", diag.Rules)
	return mux
}

func sampleRepo() *stubInventory {
	price := decimal.NewFromInt(20)
	return &stubInventory{rows: []domain.RawInventoryRow{
		{ID: "1", Name: "GEEK BAR 25K BANANA ICE", Quantity: "4", Price: price},
		{ID: "2", Name: "GEEKBAR X 25K SOUR APPLE", Quantity: "1", Price: price},
		{ID: "3", Name: "ZYN 3MG COOL MINT", Quantity: "9", Price: price},
	}}
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Meta    json.RawMessage `json:"meta"`
	Error   string          `json:"error"`
}

func do(t *testing.T, h http.Handler, target string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode %s: %v (body %q)", target, err, rec.Body.String())
	}
	return rec, env
}

func TestListProducts(t *testing.T) {
	h := newTestServer(sampleRepo())

	rec, env := do(t, h, "/api/v1/products?sort=name_desc&limit=1&page=2")
	if rec.Code != http.StatusOK || !env.Success {
		t.Fatalf("status = %d body = %s", rec.Code, rec.Body.String())
	}

	var groups []domain.ProductGroup
	if err := json.Unmarshal(env.Data, &groups); err != nil {
		t.Fatalf("decode groups: %v", err)
	}
	if len(groups) != 1 || groups[0].BaseName != "GEEKBAR X 25K" {
		t.Errorf("groups = %+v", groups)
	}

	var page domain.Pagination
	if err := json.Unmarshal(env.Meta, &page); err != nil {
		t.Fatalf("decode pagination: %v", err)
	}
	if page.TotalItems != 2 || page.TotalPages != 2 || page.Page != 2 {
		t.Errorf("pagination = %+v", page)
	}
}

func TestListProducts_Errors(t *testing.T) {
	tests := []struct {
		name   string
		repo   *stubInventory
		target string
		want   int
	}{
		{"unknown sort", sampleRepo(), "/api/v1/products?sort=cheapest", http.StatusBadRequest},
		{"repository failure", &stubInventory{err: errors.New("db down")}, "/api/v1/products", http.StatusInternalServerError},
		{"unknown product", sampleRepo(), "/api/v1/products/juul", http.StatusNotFound},
		{"stores failure", &stubInventory{err: errors.New("db down")}, "/api/v1/stores", http.StatusInternalServerError},
		{"inspect without name", sampleRepo(), "/api/v1/catalog/inspect", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, env := do(t, newTestServer(tt.repo), tt.target)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
			if env.Error == "" {
				t.Error("error message missing")
			}
			if tt.want == http.StatusInternalServerError && env.Error == "db down" {
				t.Error("internal error leaked to client")
			}
		})
	}
}

func TestGetProduct(t *testing.T) {
	h := newTestServer(sampleRepo())

	for _, target := range []string{"/api/v1/products/geekbar-x-25k", "/api/v1/products/GEEK%20BAR%2025K"} {
		rec, env := do(t, h, target)
		if rec.Code != http.StatusOK {
			t.Fatalf("%s: status = %d", target, rec.Code)
		}
		var g domain.ProductGroup
		if err := json.Unmarshal(env.Data, &g); err != nil {
			t.Fatalf("decode group: %v", err)
		}
		if g.BaseName != "GEEKBAR X 25K" || len(g.Variants) != 2 {
			t.Errorf("%s: group = %+v", target, g)
		}
	}
}

func TestListStores(t *testing.T) {
	rec, env := do(t, newTestServer(sampleRepo()), "/api/v1/stores")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var stores []domain.Store
	if err := json.Unmarshal(env.Data, &stores); err != nil {
		t.Fatalf("decode stores: %v", err)
	}
	if len(stores) != 1 || stores[0].ID != 2 {
		t.Errorf("stores = %+v", stores)
	}
}

func TestInspect(t *testing.T) {
	rec, env := do(t, newTestServer(sampleRepo()), "/api/v1/catalog/inspect?name=fume+pro+zero+nicotine+miami+mint")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var got domain.NameInspection
	if err := json.Unmarshal(env.Data, &got); err != nil {
		t.Fatalf("decode inspection: %v", err)
	}
	if got.Normalized != "FUME PRO 30K ZERO NIC MIAMI MINT" || got.BaseKey != "FUME PRO 30K ZERO NIC" {
		t.Errorf("inspection = %+v", got)
	}
	if got.Flavor != "Miami Mint" || !got.Featured || got.Restricted {
		t.Errorf("inspection = %+v", got)
	}
}

func TestRules_Cached(t *testing.T) {
	h := newTestServer(sampleRepo())

	for i := 0; i < 2; i++ {
		rec, env := do(t, h, "/api/v1/catalog/rules")
		if rec.Code != http.StatusOK {
			t.Fatalf("call %d: status = %d", i, rec.Code)
		}
		if cc := rec.Header().Get("Cache-Control"); cc != "public, max-age=3600" {
			t.Errorf("Cache-Control = %q", cc)
		}
		var rs catalog.RuleSet
		if err := json.Unmarshal(env.Data, &rs); err != nil {
			t.Fatalf("decode rules: %v", err)
		}
		if len(rs.Featured) == 0 || rs.Featured[0] != "FUME EXTRA" {
			t.Errorf("call %d: featured = %v", i, rs.Featured)
		}
	}
}

func TestImages(t *testing.T) {
	rec, env := do(t, newTestServer(sampleRepo()), "/api/v1/catalog/images")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var stats domain.ImageLookupStats
	if err := json.Unmarshal(env.Data, &stats); err != nil {
		t.Fatalf("decode stats: %v", err)
	}
	if stats.Keys != 0 {
		t.Errorf("stats = %+v", stats)
	}
}

func TestSitemap(t *testing.T) {
	engine := catalog.NewEngine(catalog.DefaultRuleSet())
	uc := usecase.NewCatalogUsecase(engine, sampleRepo(), nil, nil, usecase.CatalogOptions{})
	mem := cache.NewMemoryCache(time.Minute, time.Minute)
	h := NewSitemapHandler(usecase.NewSitemapUsecase(uc, "https://shop.example.com", mem, time.Minute))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/sitemap.xml", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/xml" {
		t.Errorf("Content-Type = %q", ct)
	}

	var set URLSet
	if err := xml.Unmarshal(rec.Body.Bytes(), &set); err != nil {
		t.Fatalf("decode sitemap: %v", err)
	}
	locs := make(map[string]bool)
	for _, u := range set.URLs {
		locs[u.Loc] = true
	}
	for _, want := range []string{"https://shop.example.com/", "https://shop.example.com/products/geekbar-x-25k", "https://shop.example.com/products/zyn-3mg"} {
		if !locs[want] {
			t.Errorf("sitemap missing %s", want)
		}
	}
}
