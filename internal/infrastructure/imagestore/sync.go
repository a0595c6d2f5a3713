package imagestore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"storefront-backend/pkg/media"

	"github.com/rs/zerolog"
)

// ObjectStore is the bucket side of an image sync.
type ObjectStore interface {
	Keys(ctx context.Context, prefix string) (map[string]struct{}, error)
	Put(ctx context.Context, key string, data []byte, contentType string) (string, error)
}

type SyncResult struct {
	Uploaded int
	Skipped  int
	Failed   int
	// Planned lists the keys a dry run would upload.
	Planned []string
}

// Sync publishes every brand image under root to dst as WebP. Keys already
// in the bucket are left alone, so reruns only upload new files. A file that
// fails to convert or upload is logged and counted; the sync carries on.
func Sync(ctx context.Context, root string, dst ObjectStore, dryRun bool, log *zerolog.Logger) (SyncResult, error) {
	var res SyncResult
	if log == nil {
		nop := zerolog.Nop()
		log = &nop
	}

	existing, err := dst.Keys(ctx, "")
	if err != nil {
		return res, fmt.Errorf("list bucket: %w", err)
	}

	dirs, err := os.ReadDir(root)
	if err != nil {
		return res, fmt.Errorf("read image root: %w", err)
	}

	for _, d := range dirs {
		if !d.IsDir() || strings.HasPrefix(d.Name(), ".") {
			continue
		}
		files, err := os.ReadDir(filepath.Join(root, d.Name()))
		if err != nil {
			return res, fmt.Errorf("read brand folder %s: %w", d.Name(), err)
		}

		for _, f := range files {
			if err := ctx.Err(); err != nil {
				return res, err
			}
			if f.IsDir() || strings.HasPrefix(f.Name(), ".") || !media.IsImageFile(f.Name()) {
				continue
			}

			key := ObjectKey(d.Name(), f.Name())
			if _, ok := existing[key]; ok {
				res.Skipped++
				continue
			}
			if dryRun {
				res.Planned = append(res.Planned, key)
				continue
			}

			path := filepath.Join(root, d.Name(), f.Name())
			if err := upload(ctx, dst, path, key); err != nil {
				log.Warn().Err(err).Str("file", path).Str("key", key).Msg("Image sync failed")
				res.Failed++
				continue
			}
			existing[key] = struct{}{}
			res.Uploaded++
			log.Info().Str("key", key).Msg("Image uploaded")
		}
	}
	return res, nil
}

func upload(ctx context.Context, dst ObjectStore, path, key string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	data, contentType, err := media.ToWebP(file, filepath.Base(path))
	if err != nil {
		return err
	}
	if contentType != "image/webp" {
		return fmt.Errorf("encoded as %s, want image/webp", contentType)
	}

	_, err = dst.Put(ctx, key, data, contentType)
	return err
}
