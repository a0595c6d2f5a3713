package main

import (
	"fmt"

	"storefront-backend/internal/infrastructure/imagestore"
	"storefront-backend/pkg/logger"
	"storefront-backend/pkg/storage"

	"github.com/spf13/cobra"
)

func imagesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "images",
		Short: "Manage flavor images",
	}
	cmd.AddCommand(imagesSyncCmd())
	return cmd
}

func imagesSyncCmd() *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Convert brand images to WebP and upload them to R2",
		Long: `Walk IMAGE_ROOT, convert each brand image to WebP and upload it to
the R2 bucket under <brand>/<flavor>.webp. Objects already in the bucket are
skipped. Set IMAGE_CDN_URL to R2_PUBLIC_URL to serve the uploaded copies.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv(cmd)
			if err != nil {
				return err
			}
			if err := e.cfg.RequireR2(); err != nil {
				return err
			}
			ctx := cmd.Context()

			bucket, err := storage.NewR2Storage(ctx,
				e.cfg.R2AccountID,
				e.cfg.R2AccessKeyID,
				e.cfg.R2AccessKeySecret,
				e.cfg.R2BucketName,
				e.cfg.R2PublicURL,
				e.cfg.UploadTimeout,
			)
			if err != nil {
				return err
			}

			res, err := imagestore.Sync(ctx, e.cfg.ImageRoot, bucket, dryRun, logger.Get())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, key := range res.Planned {
				fmt.Fprintf(out, "would upload %s\n", key)
			}
			fmt.Fprintf(out, "uploaded %d, skipped %d, failed %d\n", res.Uploaded, res.Skipped, res.Failed)
			if res.Failed > 0 {
				return fmt.Errorf("%d images failed to sync", res.Failed)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "list uploads without performing them")
	return cmd
}
