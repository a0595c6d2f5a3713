package search

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"storefront-backend/internal/domain"
	"storefront-backend/pkg/cache"

	"github.com/goccy/go-json"
	"github.com/meilisearch/meilisearch-go"
)

// Document is one grouped base product in the search index.
type Document struct {
	ID       string   `json:"id"`
	BaseName string   `json:"baseName"`
	Brand    string   `json:"brand"`
	Flavors  []string `json:"flavors"`
	Variants int      `json:"variants"`
	TotalQty int      `json:"totalQty"`
	HasImage bool     `json:"hasImage"`
	MinPrice float64  `json:"minPrice"`
}

// MeiliSearcher implements domain.CatalogSearcher on a Meilisearch index.
// Query results are cached until the next reindex or the TTL.
type MeiliSearcher struct {
	client meilisearch.ServiceManager
	uid    string
	cache  cache.CacheService
	ttl    time.Duration
}

func NewMeiliSearcher(url, apiKey, indexUID string, c cache.CacheService, ttl time.Duration) *MeiliSearcher {
	return &MeiliSearcher{
		client: meilisearch.New(url, meilisearch.WithAPIKey(apiKey)),
		uid:    indexUID,
		cache:  c,
		ttl:    ttl,
	}
}

func (m *MeiliSearcher) cacheKey(query string, limit int) string {
	return "search:" + m.uid + ":" + strconv.Itoa(limit) + ":" + strings.ToUpper(strings.TrimSpace(query))
}

// SearchBaseNames returns matching base names in relevance order.
func (m *MeiliSearcher) SearchBaseNames(ctx context.Context, query string, limit int) ([]string, error) {
	key := m.cacheKey(query, limit)
	if m.cache != nil {
		if v, ok := m.cache.Get(key); ok {
			if names, ok := v.([]string); ok {
				return names, nil
			}
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res, err := m.client.Index(m.uid).Search(query, &meilisearch.SearchRequest{
		Limit:                int64(limit),
		AttributesToRetrieve: []string{"baseName"},
	})
	if err != nil {
		return nil, fmt.Errorf("meilisearch search: %w", err)
	}

	raw, err := json.Marshal(res.Hits)
	if err != nil {
		return nil, fmt.Errorf("meilisearch hits: %w", err)
	}
	names, err := decodeBaseNames(raw)
	if err != nil {
		return nil, err
	}

	if m.cache != nil {
		m.cache.Set(key, names, m.ttl)
	}
	return names, nil
}

func decodeBaseNames(raw []byte) ([]string, error) {
	var hits []struct {
		BaseName string `json:"baseName"`
	}
	if err := json.Unmarshal(raw, &hits); err != nil {
		return nil, fmt.Errorf("decode meilisearch hits: %w", err)
	}
	names := make([]string, 0, len(hits))
	for _, h := range hits {
		if h.BaseName != "" {
			names = append(names, h.BaseName)
		}
	}
	return names, nil
}

// IndexGroups replaces the index contents with groups.
func (m *MeiliSearcher) IndexGroups(ctx context.Context, groups []domain.ProductGroup) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	_, _ = m.client.DeleteIndex(m.uid)
	if _, err := m.client.CreateIndex(&meilisearch.IndexConfig{Uid: m.uid, PrimaryKey: "id"}); err != nil {
		return fmt.Errorf("meilisearch create index: %w", err)
	}

	index := m.client.Index(m.uid)
	settings := meilisearch.Settings{
		SearchableAttributes: []string{"baseName", "brand", "flavors"},
		SortableAttributes:   []string{"baseName", "totalQty", "minPrice"},
	}
	if _, err := index.UpdateSettings(&settings); err != nil {
		return fmt.Errorf("meilisearch settings: %w", err)
	}

	docs := ToDocuments(groups)
	if len(docs) > 0 {
		if _, err := index.AddDocuments(docs, nil); err != nil {
			return fmt.Errorf("meilisearch add documents: %w", err)
		}
	}

	if m.cache != nil {
		m.cache.DeletePrefix("search:" + m.uid + ":")
	}
	return nil
}

// ToDocuments flattens groups into index documents. Groups without a slug
// cannot be addressed and are skipped.
func ToDocuments(groups []domain.ProductGroup) []Document {
	docs := make([]Document, 0, len(groups))
	for _, g := range groups {
		if g.Slug == "" {
			continue
		}
		flavors := make([]string, 0, len(g.Variants))
		hasImage := g.HasImage
		for _, v := range g.Variants {
			if v.Flavor != domain.FlavorOriginal {
				flavors = append(flavors, v.Flavor)
			}
			hasImage = hasImage || v.HasImage
		}
		brand, _, _ := strings.Cut(g.BaseName, " ")
		price, _ := g.MinPrice().Float64()
		docs = append(docs, Document{
			ID:       g.Slug,
			BaseName: g.BaseName,
			Brand:    brand,
			Flavors:  flavors,
			Variants: len(g.Variants),
			TotalQty: g.TotalQty(),
			HasImage: hasImage,
			MinPrice: price,
		})
	}
	return docs
}
