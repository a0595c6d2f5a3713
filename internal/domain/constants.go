package domain

import "errors"

var ErrNotFound = errors.New("not found")

// Listing sort orders
const (
	SortFeatured  = "featured"
	SortNameAsc   = "name_asc"
	SortNameDesc  = "name_desc"
	SortStockDesc = "stock_desc"
	SortPriceAsc  = "price_asc"
	SortPriceDesc = "price_desc"
)

var SortOptions = []string{
	SortFeatured,
	SortNameAsc,
	SortNameDesc,
	SortStockDesc,
	SortPriceAsc,
	SortPriceDesc,
}

// FlavorOriginal is the flavor of a name with nothing after its base key.
const FlavorOriginal = "Original"

// ErrInvalidArgument marks a request the caller must fix.
var ErrInvalidArgument = errors.New("invalid argument")

// ErrSearchDisabled is returned when no search index is configured.
var ErrSearchDisabled = errors.New("search index not configured")

// PlaceholderImage is the default image for groups without a resolved one.
const PlaceholderImage = "/images/placeholder.webp"
