package pgxrepo

import (
	"context"
	"os"
	"strconv"
	"testing"
	"time"

	"storefront-backend/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

// inventoryFixture shadows the catalog tables with session-local temp tables,
// so the pool is pinned to a single connection.
const inventoryFixture = `
CREATE TEMP TABLE products (id bigint PRIMARY KEY, name text NOT NULL, unit_price numeric, brand text);
CREATE TEMP TABLE product_inventory (product_id bigint, store_id bigint, quantity_on_hand integer, is_active boolean);
CREATE TEMP TABLE product_images (id bigserial, product_id bigint, image_url text, image_alt text, sort_order integer);
CREATE TEMP TABLE inventory_snapshots (store_id bigint, item_name text, quantity text);

INSERT INTO products VALUES
    (1, 'RAZ LTX 25K MANGO', 19.99, 'RAZ'),
    (2, 'RAZ LTX 25K GRAPE', 19.99, 'RAZ'),
    (3, 'ZYN 3MG COOL MINT', 6.50, 'ZYN');
INSERT INTO product_inventory VALUES
    (1, 10, 5, true),
    (1, 20, 7, true),
    (2, 10, 4, false);
INSERT INTO product_images (product_id, image_url, image_alt, sort_order) VALUES
    (1, '/images/raz/mango-2.png', 'second', 2),
    (1, '/images/raz/mango.png', 'RAZ LTX 25K • Mango', 1);
INSERT INTO inventory_snapshots VALUES
    (10, 'RAZ LTX 25K MANGO', '5'),
    (20, 'raz ltx 25k mango', '7'),
    (10, 'RAZ LTX 25K GRAPE', '4'),
    (10, 'ZYN 3MG COOL MINT', '1,000'),
    (20, 'ZYN 3MG COOL MINT', '2');
`

func newFixtureRepo(t *testing.T) domain.InventoryRepository {
	t.Helper()
	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		t.Skip("DB_DSN not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		t.Fatalf("parse DB_DSN: %v", err)
	}
	cfg.MaxConns = 1
	cfg.MinConns = 1
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(pool.Close)

	if _, err := pool.Exec(ctx, inventoryFixture); err != nil {
		t.Fatalf("load fixture: %v", err)
	}
	return NewInventoryRepository(pool)
}

func TestListRows_Postgres(t *testing.T) {
	repo := newFixtureRepo(t)

	tests := []struct {
		name   string
		filter domain.InventoryFilter
		want   []string
	}{
		{"all stores", domain.InventoryFilter{}, []string{
			"1|RAZ LTX 25K MANGO|12|1",
			"2|RAZ LTX 25K GRAPE|4|0",
			"3|ZYN 3MG COOL MINT|1002|-",
		}},
		{"one store", domain.InventoryFilter{StoreID: 20}, []string{
			"1|RAZ LTX 25K MANGO|7|1",
			"3|ZYN 3MG COOL MINT|2|-",
		}},
		{"prefilter", domain.InventoryFilter{NamePatterns: []string{"ZYN%"}}, []string{
			"3|ZYN 3MG COOL MINT|1002|-",
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows, err := repo.ListRows(context.Background(), tt.filter)
			if err != nil {
				t.Fatalf("ListRows: %v", err)
			}
			var got []string
			for _, r := range rows {
				active := "-"
				if r.AnyActive != nil {
					active = strconv.Itoa(*r.AnyActive)
				}
				got = append(got, r.ID+"|"+r.Name+"|"+r.Quantity+"|"+active)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("rows = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("row %d = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestListRows_PostgresFirstImage(t *testing.T) {
	repo := newFixtureRepo(t)
	rows, err := repo.ListRows(context.Background(), domain.InventoryFilter{NamePatterns: []string{"%MANGO"}})
	if err != nil {
		t.Fatalf("ListRows: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("rows = %+v", rows)
	}
	if !rows[0].HasImage || rows[0].ImageURL != "/images/raz/mango.png" {
		t.Errorf("image = %q (has %v), want lowest sort order", rows[0].ImageURL, rows[0].HasImage)
	}
	if rows[0].Price.String() != "19.99" {
		t.Errorf("price = %s", rows[0].Price)
	}
}
