package media

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"
	"path/filepath"
	"strings"

	"storefront-backend/pkg/logger"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
)

const (
	// MaxWidth caps product shots; wider sources are downscaled.
	MaxWidth = 2000
	Quality  = 85
)

// imageExts are the file extensions the image catalog serves.
var imageExts = map[string]string{
	".webp": "image/webp",
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
}

// IsImageFile reports whether name has a served image extension.
func IsImageFile(name string) bool {
	_, ok := imageExts[strings.ToLower(filepath.Ext(name))]
	return ok
}

// ContentType returns the MIME type for an image file name, or "".
func ContentType(name string) string {
	return imageExts[strings.ToLower(filepath.Ext(name))]
}

// ToWebP decodes r, downsizes it to MaxWidth and encodes it as WebP. When the
// WebP encoder fails the image is returned as JPEG instead.
func ToWebP(r io.Reader, name string) ([]byte, string, error) {
	img, format, err := image.Decode(r)
	if err != nil {
		return nil, "", fmt.Errorf("decode %s: %w", name, err)
	}
	logger.Debug().Str("file", name).Str("format", format).Msg("Converting image")

	if img.Bounds().Dx() > MaxWidth {
		img = imaging.Resize(img, MaxWidth, 0, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := webp.Encode(&buf, img, &webp.Options{Quality: Quality}); err != nil {
		logger.Warn().Err(err).Str("file", name).Msg("WebP encoding failed, falling back to JPEG")
		buf.Reset()
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: Quality}); err != nil {
			return nil, "", fmt.Errorf("encode %s: %w", name, err)
		}
		return buf.Bytes(), "image/jpeg", nil
	}
	return buf.Bytes(), "image/webp", nil
}

// Ext is the file extension for an encoded content type.
func Ext(contentType string) string {
	switch contentType {
	case "image/webp":
		return ".webp"
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	}
	return ".bin"
}
