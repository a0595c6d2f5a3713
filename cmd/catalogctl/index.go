package main

import (
	"fmt"

	"storefront-backend/internal/catalog"
	"storefront-backend/internal/domain"
	"storefront-backend/internal/infrastructure/cache"
	"storefront-backend/internal/infrastructure/imagestore"
	"storefront-backend/internal/infrastructure/search"
	"storefront-backend/internal/repository/pgxrepo"
	"storefront-backend/internal/usecase"
	"storefront-backend/pkg/logger"

	"github.com/spf13/cobra"
)

// catalogUsecase builds the listing the way the API does, minus the image
// watcher: one scan is enough for a batch run.
func (e *env) catalogUsecase(cmd *cobra.Command, withSearch bool) (*usecase.CatalogUsecase, func(), error) {
	pool, err := e.connect(cmd.Context())
	if err != nil {
		return nil, nil, err
	}

	var searcher domain.CatalogSearcher
	if withSearch {
		if !e.cfg.SearchEnabled() {
			pool.Close()
			return nil, nil, fmt.Errorf("MEILI_URL is not set")
		}
		searcher = search.NewMeiliSearcher(e.cfg.MeiliURL, e.cfg.MeiliAPIKey, e.cfg.MeiliIndex,
			cache.NewMemoryCache(e.cfg.SearchCacheTTL, 2*e.cfg.SearchCacheTTL), e.cfg.SearchCacheTTL)
	}

	entries, err := scanImages(e)
	if err != nil {
		logger.Warn().Err(err).Str("root", e.cfg.ImageRoot).Msg("Image scan failed, using overrides only")
		entries = e.rules.ImageOverrides
	}
	images := catalog.BuildLookup(e.engine.Key, entries)

	opts := usecase.CatalogOptions{
		Policy: catalog.PolicyOptions{
			ShowAll:        e.cfg.ShowAllLocal,
			ImageReadyOnly: e.cfg.ImageReadyOnly,
		},
		DefaultLimit: e.cfg.DefaultPageLimit,
		MaxLimit:     e.cfg.MaxPageLimit,
		Timeout:      e.cfg.QueryTimeout,
		Placeholder:  e.cfg.ImagePlaceholder,
	}
	uc := usecase.NewCatalogUsecase(e.engine, pgxrepo.NewInventoryRepository(pool), images, searcher, opts)
	return uc, pool.Close, nil
}

func scanImages(e *env) ([]domain.VariantImageEntry, error) {
	urlFor := imagestore.LocalURL(e.cfg.ImageURLPrefix)
	if e.cfg.ImageCDNURL != "" {
		urlFor = imagestore.CDNURL(e.cfg.ImageCDNURL)
	}
	entries, err := imagestore.Scan(e.cfg.ImageRoot, urlFor, e.rules.ImageFolderAliases, e.engine.Key)
	if err != nil {
		return nil, err
	}
	return append(entries, e.rules.ImageOverrides...), nil
}

func indexCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "index",
		Short: "Rebuild the Meilisearch catalog index",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv(cmd)
			if err != nil {
				return err
			}
			uc, closeDB, err := e.catalogUsecase(cmd, true)
			if err != nil {
				return err
			}
			defer closeDB()

			n, err := uc.RebuildSearchIndex(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "indexed %d products into %s\n", n, e.cfg.MeiliIndex)
			return nil
		},
	}
}

func auditCmd() *cobra.Command {
	var storeID int64

	cmd := &cobra.Command{
		Use:   "audit",
		Short: "List inventory names no size rule recognises",
		Long: `Print raw inventory names whose base key came from the generic
two-token fallback. These usually need a brand alias or size default.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv(cmd)
			if err != nil {
				return err
			}
			uc, closeDB, err := e.catalogUsecase(cmd, false)
			if err != nil {
				return err
			}
			defer closeDB()

			names, err := uc.AuditFallbacks(cmd.Context(), storeID)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, n := range names {
				fmt.Fprintln(out, n)
			}
			fmt.Fprintf(out, "%d names use the fallback key\n", len(names))
			return nil
		},
	}

	cmd.Flags().Int64Var(&storeID, "store", 0, "limit to one store location")
	return cmd
}
