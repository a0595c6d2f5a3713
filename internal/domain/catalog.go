package domain

import (
	"context"

	"github.com/shopspring/decimal"
)

// RawInventoryRow is one SKU at one location as delivered by the inventory feed.
// Name and Quantity are untrusted; the catalog engine coerces them.
type RawInventoryRow struct {
	ID       string
	Name     string
	ImageURL string
	HasImage bool
	ImageAlt string
	Price    decimal.Decimal
	Quantity string
	Brand    string
	// AnyActive is nil when the source has no active flag.
	AnyActive *int
}

// ProductGroup is one base product with its flavor variants.
type ProductGroup struct {
	BaseName string    `json:"baseName"`
	Slug     string    `json:"slug"`
	ImageURL string    `json:"imageUrl"`
	ImageAlt string    `json:"imageAlt"`
	HasImage bool      `json:"hasImage"`
	Variants []Variant `json:"variants"`
}

type Variant struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Flavor   string          `json:"flavor"`
	Price    decimal.Decimal `json:"price"`
	TotalQty int             `json:"totalQty"`
	ImageURL string          `json:"imageUrl"`
	ImageAlt string          `json:"imageAlt"`
	HasImage bool            `json:"hasImage"`
}

// TotalQty sums stock across all variants of the group.
func (g ProductGroup) TotalQty() int {
	total := 0
	for _, v := range g.Variants {
		total += v.TotalQty
	}
	return total
}

// MinPrice returns the cheapest variant price, zero for an empty group.
func (g ProductGroup) MinPrice() decimal.Decimal {
	if len(g.Variants) == 0 {
		return decimal.Zero
	}
	min := g.Variants[0].Price
	for _, v := range g.Variants[1:] {
		if v.Price.LessThan(min) {
			min = v.Price
		}
	}
	return min
}

// VariantImageEntry maps a display name to an image.
type VariantImageEntry struct {
	Match    string `json:"match" yaml:"match"`
	ImageURL string `json:"imageUrl" yaml:"imageUrl"`
	ImageAlt string `json:"imageAlt" yaml:"imageAlt"`
}

type Store struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// InventoryFilter narrows the raw row query.
// StoreID 0 means all locations. NamePatterns are ILIKE patterns ORed together.
type InventoryFilter struct {
	StoreID      int64
	NamePatterns []string
}

type InventoryRepository interface {
	ListRows(ctx context.Context, filter InventoryFilter) ([]RawInventoryRow, error)
	ListStores(ctx context.Context) ([]Store, error)
}

type ProductName struct {
	ID   string
	Name string
}

type ProductNameRepository interface {
	ListNames(ctx context.Context) ([]ProductName, error)
	UpdateName(ctx context.Context, id, name string) error
}

// CatalogSearcher is a full-text index over grouped base products.
type CatalogSearcher interface {
	SearchBaseNames(ctx context.Context, query string, limit int) ([]string, error)
	IndexGroups(ctx context.Context, groups []ProductGroup) error
}

type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// ProductQuery is the public listing request.
type ProductQuery struct {
	Query   string
	Sort    string
	Page    int
	Limit   int
	StoreID int64
}

// NameInspection explains how one raw name flows through the engine.
type NameInspection struct {
	Raw          string             `json:"raw"`
	Normalized   string             `json:"normalized"`
	BaseKey      string             `json:"baseKey"`
	Flavor       string             `json:"flavor"`
	Marker       string             `json:"marker,omitempty"`
	Fallback     bool               `json:"fallback"`
	Restricted   bool               `json:"restricted"`
	Discontinued bool               `json:"discontinued"`
	Featured     bool               `json:"featured"`
	Image        *VariantImageEntry `json:"image,omitempty"`
}

type ImageLookupStats struct {
	Keys      int    `json:"keys"`
	Entries   int    `json:"entries"`
	BuiltAt   string `json:"builtAt,omitempty"`
	Root      string `json:"root"`
	LastError string `json:"lastError,omitempty"`
}
