package catalog

import (
	"strings"

	"storefront-backend/internal/domain"
)

// AltSeparator joins brand and flavor in a generated image alt text.
const AltSeparator = " • "

// ImageLookup is an immutable map from normalized key to image entry.
// Rebuilds produce a new lookup; readers never see a partial one.
type ImageLookup struct {
	key     func(string) string
	entries map[string]domain.VariantImageEntry
	sources int
}

// ImageSource hands out the lookup a request should use.
type ImageSource interface {
	Current() *ImageLookup
}

// BuildLookup indexes entries in order. A later entry replaces an earlier one
// with the same key. Entries whose alt label reads "X • X" are also filed
// under the brand key, unless that key is already taken.
func BuildLookup(key func(string) string, entries []domain.VariantImageEntry) *ImageLookup {
	l := &ImageLookup{
		key:     key,
		entries: make(map[string]domain.VariantImageEntry, len(entries)),
		sources: len(entries),
	}

	for _, e := range entries {
		k := key(e.Match)
		if k == "" {
			continue
		}
		l.entries[k] = e

		brand, flavor, ok := strings.Cut(e.ImageAlt, AltSeparator)
		if !ok {
			continue
		}
		brandKey := key(brand)
		if brandKey == "" || brandKey != key(flavor) {
			continue
		}
		if _, exists := l.entries[brandKey]; !exists {
			l.entries[brandKey] = e
		}
	}
	return l
}

// Current lets a fixed lookup act as its own source.
func (l *ImageLookup) Current() *ImageLookup {
	return l
}

// Resolve finds the image for base + flavor, retrying with the base alone
// when the flavor is Original or just repeats the base.
func (l *ImageLookup) Resolve(base, flavor string) (domain.VariantImageEntry, bool) {
	if l == nil {
		return domain.VariantImageEntry{}, false
	}

	if e, ok := l.entries[l.key(base+" "+flavor)]; ok {
		return e, true
	}

	baseKey := l.key(base)
	if flavor == domain.FlavorOriginal || l.key(flavor) == baseKey {
		if e, ok := l.entries[baseKey]; ok {
			return e, true
		}
	}
	return domain.VariantImageEntry{}, false
}

// Len is the number of distinct keys.
func (l *ImageLookup) Len() int {
	if l == nil {
		return 0
	}
	return len(l.entries)
}

// Sources is the number of entries the lookup was built from.
func (l *ImageLookup) Sources() int {
	if l == nil {
		return 0
	}
	return l.sources
}
