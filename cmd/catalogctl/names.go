package main

import (
	"fmt"

	"storefront-backend/internal/repository/pgxrepo"
	"storefront-backend/internal/usecase"
	"storefront-backend/pkg/logger"

	"github.com/spf13/cobra"
)

func fixNamesCmd() *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "fix-names",
		Short: "Rewrite stored product names into normalized form",
		Long: `Normalize every products.name and write back the ones that change.
All updates run in a single transaction.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv(cmd)
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			pool, err := e.connect(ctx)
			if err != nil {
				return err
			}
			defer pool.Close()

			uc := usecase.NewNameFixUsecase(e.engine, pgxrepo.NewProductNameRepository(pool), pgxrepo.NewTransactionManager(pool))
			changes, err := uc.Plan(ctx)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, c := range changes {
				fmt.Fprintf(out, "%s\t%q -> %q\n", c.ID, c.From, c.To)
			}
			if dryRun {
				fmt.Fprintf(out, "%d names would change\n", len(changes))
				return nil
			}

			if err := uc.Apply(ctx, changes); err != nil {
				return fmt.Errorf("apply name fixes: %w", err)
			}
			logger.Info().Int("updated", len(changes)).Msg("Product names normalized")
			fmt.Fprintf(out, "%d names updated\n", len(changes))
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "print changes without writing them")
	return cmd
}
