// Package imagex normalises uploaded raster images.
package imagex

import (
	"errors"
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"

	// Extra decoders beyond those imaging registers.
	_ "golang.org/x/image/webp"
)

// ErrUnsupportedFormat is returned when the source cannot be decoded.
var ErrUnsupportedFormat = errors.New("imagex: unsupported image format")

// DefaultMaxPixels bounds the declared width*height accepted for decoding.
const DefaultMaxPixels = 40_000_000

// Resizer resizes images to a fixed canvas. The aspect ratio is not kept.
type Resizer struct {
	Width  int
	Height int
	// MaxPixels rejects sources declaring more pixels than this before they
	// are decoded. Zero means DefaultMaxPixels.
	MaxPixels int
}

// AvatarResizer produces 250x250 avatars.
var AvatarResizer = Resizer{Width: 250, Height: 250}

// NormalizeFile decodes the image at path, resizes it and re-encodes it in
// place. The result is written to a sibling temp file and renamed over the
// source, so a failure leaves the original bytes untouched. It returns the
// file extension matching the encoded format, for example ".png".
func (r Resizer) NormalizeFile(path string) (string, error) {
	src, format, err := r.decodeFile(path)
	if err != nil {
		return "", err
	}

	dst := imaging.Resize(src, r.Width, r.Height, imaging.Lanczos)

	outFormat, err := imaging.FormatFromExtension(format)
	if err != nil {
		// Decoded but not encodable (webp): fall back to PNG.
		outFormat = imaging.PNG
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".normalize-*")
	if err != nil {
		return "", fmt.Errorf("imagex: temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if err := imaging.Encode(tmp, dst, outFormat, imaging.JPEGQuality(90)); err != nil {
		_ = tmp.Close()
		return "", fmt.Errorf("imagex: encode: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("imagex: close: %w", err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		return "", fmt.Errorf("imagex: replace: %w", err)
	}
	return extension(outFormat), nil
}

func extension(f imaging.Format) string {
	switch f {
	case imaging.JPEG:
		return ".jpg"
	case imaging.GIF:
		return ".gif"
	case imaging.TIFF:
		return ".tif"
	case imaging.BMP:
		return ".bmp"
	default:
		return ".png"
	}
}

// Dimensions reports the width and height of the image at path.
func Dimensions(path string) (int, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, err
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %v", ErrUnsupportedFormat, err)
	}
	return cfg.Width, cfg.Height, nil
}

func (r Resizer) decodeFile(path string) (image.Image, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, "", fmt.Errorf("imagex: open: %w", err)
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrUnsupportedFormat, err)
	}
	limit := r.MaxPixels
	if limit <= 0 {
		limit = DefaultMaxPixels
	}
	if int64(cfg.Width)*int64(cfg.Height) > int64(limit) {
		return nil, "", fmt.Errorf("%w: %dx%d exceeds pixel limit", ErrUnsupportedFormat, cfg.Width, cfg.Height)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, "", fmt.Errorf("imagex: rewind: %w", err)
	}

	img, format, err := image.Decode(f)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrUnsupportedFormat, err)
	}
	return img, format, nil
}
