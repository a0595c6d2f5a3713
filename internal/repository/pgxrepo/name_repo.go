package pgxrepo

import (
	"context"
	"fmt"

	"storefront-backend/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type productNameRepository struct {
	db *pgxpool.Pool
}

func NewProductNameRepository(db *pgxpool.Pool) domain.ProductNameRepository {
	return &productNameRepository{db: db}
}

func (r *productNameRepository) ListNames(ctx context.Context) ([]domain.ProductName, error) {
	rows, err := conn(ctx, r.db).Query(ctx, `SELECT id::text, name FROM products ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query product names: %w", err)
	}
	names, err := pgx.CollectRows(rows, pgx.RowToStructByPos[domain.ProductName])
	if err != nil {
		return nil, fmt.Errorf("collect product names: %w", err)
	}
	return names, nil
}

func (r *productNameRepository) UpdateName(ctx context.Context, id, name string) error {
	tag, err := conn(ctx, r.db).Exec(ctx, `UPDATE products SET name = $1 WHERE id = $2::bigint`, name, id)
	if err != nil {
		return fmt.Errorf("update product %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update product %s: %w", id, domain.ErrNotFound)
	}
	return nil
}
