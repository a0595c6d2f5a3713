package pgxrepo

import (
	"sort"
	"strconv"

	"storefront-backend/internal/catalog"
	"storefront-backend/internal/domain"
)

const sourceSnapshot = 1

type sourceRow struct {
	domain.RawInventoryRow
	snapshot bool
}

type lineKey struct {
	id   string
	name string
}

// reconcileRows merges authoritative and snapshot rows into grouper input.
//
// A product with authoritative stock is represented by that row alone; its
// quantity is already summed over the requested locations. Snapshot lines of
// any other product are summed per raw name across locations, and dropped
// when the product is inactive everywhere. The result is ordered by id, then
// raw name, whatever order the rows arrived in.
func reconcileRows(in []sourceRow) []domain.RawInventoryRow {
	stocked := make(map[string]struct{})
	for _, r := range in {
		if !r.snapshot {
			stocked[r.ID] = struct{}{}
		}
	}

	out := make([]domain.RawInventoryRow, 0, len(in))
	lines := make(map[lineKey]int)
	for _, r := range in {
		if !r.snapshot {
			out = append(out, r.RawInventoryRow)
			continue
		}
		if _, ok := stocked[r.ID]; ok {
			continue
		}
		if r.AnyActive != nil && *r.AnyActive == 0 {
			continue
		}

		k := lineKey{id: r.ID, name: r.Name}
		if i, ok := lines[k]; ok {
			sum := catalog.ParseQuantity(out[i].Quantity) + catalog.ParseQuantity(r.Quantity)
			out[i].Quantity = strconv.Itoa(sum)
			continue
		}
		lines[k] = len(out)
		out = append(out, r.RawInventoryRow)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].ID != out[j].ID {
			return out[i].ID < out[j].ID
		}
		return out[i].Name < out[j].Name
	})
	return out
}
