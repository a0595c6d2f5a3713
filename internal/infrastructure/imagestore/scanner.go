package imagestore

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"storefront-backend/internal/catalog"
	"storefront-backend/internal/domain"
	"storefront-backend/pkg/media"
	"storefront-backend/pkg/storage"
	"storefront-backend/pkg/utils"
)

// URLFunc maps a brand folder and image file name to the URL clients load.
type URLFunc func(dir, file string) string

// LocalURL serves files from the API's own static route.
func LocalURL(prefix string) URLFunc {
	prefix = strings.TrimSuffix(prefix, "/")
	return func(dir, file string) string {
		return prefix + "/" + url.PathEscape(dir) + "/" + url.PathEscape(file)
	}
}

// CDNURL points at the WebP copies published by `catalogctl images sync`.
func CDNURL(base string) URLFunc {
	return func(dir, file string) string {
		return storage.PublicURL(base, ObjectKey(dir, file))
	}
}

// ObjectKey is the bucket key for an image: <brand>/<flavor>.webp, slugged.
func ObjectKey(dir, file string) string {
	return utils.GenerateSlug(label(dir)) + "/" + utils.GenerateSlug(label(stem(file))) + ".webp"
}

var squashRe = regexp.MustCompile(`[^A-Z0-9]+`)

// Scan reads one folder per brand under root and derives an entry per image
// file. Files directly under root and non-image files are ignored.
func Scan(root string, urlFor URLFunc, folderAliases map[string]string, key func(string) string) ([]domain.VariantImageEntry, error) {
	dirs, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("read image root: %w", err)
	}

	var entries []domain.VariantImageEntry
	for _, d := range dirs {
		if !d.IsDir() || strings.HasPrefix(d.Name(), ".") {
			continue
		}
		files, err := os.ReadDir(filepath.Join(root, d.Name()))
		if err != nil {
			return nil, fmt.Errorf("read brand folder %s: %w", d.Name(), err)
		}

		brand := brandName(d.Name(), folderAliases)
		brandKey := key(brand)
		for _, f := range files {
			if f.IsDir() || !media.IsImageFile(f.Name()) {
				continue
			}
			lbl := label(stem(f.Name()))
			if lbl == "" {
				continue
			}

			match := brand + " " + lbl
			flavor := lbl
			if brandKey != "" && strings.HasPrefix(key(lbl), brandKey) {
				match = lbl
				flavor = stripBrand(lbl, brand, brandKey, key)
				if flavor == "" {
					flavor = brand
				}
			}

			entries = append(entries, domain.VariantImageEntry{
				Match:    match,
				ImageURL: urlFor(d.Name(), f.Name()),
				ImageAlt: brand + catalog.AltSeparator + flavor,
			})
		}
	}
	return entries, nil
}

// brandName resolves a folder name through the alias table, which is keyed by
// the squashed uppercase folder name.
func brandName(dir string, aliases map[string]string) string {
	if alias, ok := aliases[squashRe.ReplaceAllString(strings.ToUpper(dir), "")]; ok {
		return alias
	}
	return label(dir)
}

func stem(file string) string {
	return strings.TrimSuffix(file, filepath.Ext(file))
}

// label turns underscores and hyphens into spaces.
func label(s string) string {
	s = strings.NewReplacer("_", " ", "-", " ").Replace(s)
	return strings.Join(strings.Fields(s), " ")
}

// stripBrand drops the longest run of leading label words that normalizes to
// the brand, so "FUME PRO MIAMI MINT" under FUME PRO 30K yields "MIAMI MINT".
func stripBrand(lbl, brand, brandKey string, key func(string) string) string {
	words := strings.Fields(lbl)
	for i := len(words); i > 0; i-- {
		if key(strings.Join(words[:i], " ")) == brandKey {
			return strings.Join(words[i:], " ")
		}
	}
	return strings.TrimSpace(trimPrefixFold(lbl, brand))
}

func trimPrefixFold(s, prefix string) string {
	if len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix) {
		return s[len(prefix):]
	}
	return s
}
