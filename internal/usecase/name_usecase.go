package usecase

import (
	"context"
	"fmt"

	"storefront-backend/internal/catalog"
	"storefront-backend/internal/domain"
)

// NameChange is one product rename proposed by the normalizer.
type NameChange struct {
	ID   string `json:"id"`
	From string `json:"from"`
	To   string `json:"to"`
}

// NameFixUsecase rewrites stored product names into normalized form so the
// POS and the storefront agree on spelling.
type NameFixUsecase struct {
	engine *catalog.Engine
	repo   domain.ProductNameRepository
	tx     domain.TransactionManager
}

func NewNameFixUsecase(engine *catalog.Engine, repo domain.ProductNameRepository, tx domain.TransactionManager) *NameFixUsecase {
	return &NameFixUsecase{engine: engine, repo: repo, tx: tx}
}

// Plan lists every stored name whose normalized form differs. Names that
// normalize to nothing are left alone.
func (u *NameFixUsecase) Plan(ctx context.Context) ([]NameChange, error) {
	names, err := u.repo.ListNames(ctx)
	if err != nil {
		return nil, fmt.Errorf("list product names: %w", err)
	}

	var changes []NameChange
	for _, n := range names {
		to := u.engine.Normalizer.Normalize(n.Name)
		if to == "" || to == n.Name {
			continue
		}
		changes = append(changes, NameChange{ID: n.ID, From: n.Name, To: to})
	}
	return changes, nil
}

// Apply writes changes in one transaction; any failure rolls back all.
func (u *NameFixUsecase) Apply(ctx context.Context, changes []NameChange) error {
	if len(changes) == 0 {
		return nil
	}
	return u.tx.Do(ctx, func(ctx context.Context) error {
		for _, c := range changes {
			if err := u.repo.UpdateName(ctx, c.ID, c.To); err != nil {
				return err
			}
		}
		return nil
	})
}
