package pgxrepo

import (
	"context"
	"fmt"

	"storefront-backend/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type inventoryRepository struct {
	db *pgxpool.Pool
}

func NewInventoryRepository(db *pgxpool.Pool) domain.InventoryRepository {
	return &inventoryRepository{db: db}
}

// listRowsSQL reads one row per product from the authoritative inventory
// (source 0) and one per snapshot line whose name matches a product
// (source 1). reconcileRows decides which of them reach the grouper.
//
// $1 store id, 0 for every location
// $2 ILIKE prefilter patterns, empty for no filter
const listRowsSQL = `
WITH stock AS (
    SELECT pi.product_id,
           SUM(pi.quantity_on_hand)::text AS qty,
           MAX(pi.is_active::int)          AS any_active
    FROM product_inventory pi
    WHERE ($1::bigint = 0 OR pi.store_id = $1::bigint)
    GROUP BY pi.product_id
),
activity AS (
    SELECT pi.product_id,
           MAX(pi.is_active::int) AS any_active
    FROM product_inventory pi
    GROUP BY pi.product_id
)
SELECT 0                             AS source,
       p.id::text                    AS id,
       p.name                        AS name,
       COALESCE(img.image_url, '')   AS image_url,
       img.image_url IS NOT NULL     AS has_image,
       COALESCE(img.image_alt, '')   AS image_alt,
       COALESCE(p.unit_price, 0)     AS price,
       s.qty,
       COALESCE(p.brand, '')         AS brand,
       s.any_active
FROM products p
JOIN stock s ON s.product_id = p.id
LEFT JOIN LATERAL (
    SELECT pim.image_url, pim.image_alt
    FROM product_images pim
    WHERE pim.product_id = p.id
    ORDER BY pim.sort_order, pim.id
    LIMIT 1
) img ON true
WHERE cardinality($2::text[]) = 0 OR p.name ILIKE ANY($2::text[])

UNION ALL

SELECT 1,
       p.id::text,
       sn.item_name,
       '',
       false,
       '',
       COALESCE(p.unit_price, 0),
       sn.quantity::text,
       COALESCE(p.brand, ''),
       a.any_active
FROM inventory_snapshots sn
JOIN products p ON UPPER(p.name) = UPPER(sn.item_name)
LEFT JOIN activity a ON a.product_id = p.id
WHERE ($1::bigint = 0 OR sn.store_id = $1::bigint)
  AND (cardinality($2::text[]) = 0 OR sn.item_name ILIKE ANY($2::text[]))`

func (r *inventoryRepository) ListRows(ctx context.Context, filter domain.InventoryFilter) ([]domain.RawInventoryRow, error) {
	patterns := filter.NamePatterns
	if patterns == nil {
		patterns = []string{}
	}

	rows, err := r.db.Query(ctx, listRowsSQL, filter.StoreID, patterns)
	if err != nil {
		return nil, fmt.Errorf("query inventory rows: %w", err)
	}
	defer rows.Close()

	var raw []sourceRow
	for rows.Next() {
		var (
			row    sourceRow
			source int
			price  pgtype.Numeric
			qty    pgtype.Text
		)
		if err := rows.Scan(
			&source, &row.ID, &row.Name, &row.ImageURL, &row.HasImage, &row.ImageAlt,
			&price, &qty, &row.Brand, &row.AnyActive,
		); err != nil {
			return nil, fmt.Errorf("scan inventory row: %w", err)
		}
		row.snapshot = source == sourceSnapshot
		row.Price = numericToDecimal(price)
		row.Quantity = qty.String
		raw = append(raw, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate inventory rows: %w", err)
	}
	return reconcileRows(raw), nil
}

func (r *inventoryRepository) ListStores(ctx context.Context) ([]domain.Store, error) {
	rows, err := r.db.Query(ctx, `SELECT id::bigint, name FROM stores ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("query stores: %w", err)
	}
	stores, err := pgx.CollectRows(rows, pgx.RowToStructByPos[domain.Store])
	if err != nil {
		return nil, fmt.Errorf("collect stores: %w", err)
	}
	return stores, nil
}

func numericToDecimal(n pgtype.Numeric) decimal.Decimal {
	if !n.Valid || n.Int == nil || n.NaN {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(n.Int, n.Exp)
}
