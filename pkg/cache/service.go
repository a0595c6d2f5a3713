package cache

import "time"

// CacheService is the process-local cache used for search hits, the sitemap
// and rendered rule documents. Keys are namespaced by a "<area>:" prefix.
type CacheService interface {
	// Get returns the cached value and whether it was present.
	Get(key string) (interface{}, bool)

	Set(key string, value interface{}, duration time.Duration)

	Delete(key string)

	// DeletePrefix drops every key in one namespace and reports how many
	// went, e.g. the search hits of an index after it is rebuilt.
	DeletePrefix(prefix string) int

	Flush()
}
