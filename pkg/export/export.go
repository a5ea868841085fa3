package export

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/nfnt/resize"
)

// ErrNoImage is returned when asked to export a nil image
var ErrNoImage = errors.New("no image to export")

// Exporter writes a finished or intermediate image somewhere durable
type Exporter interface {
	Export(ctx context.Context, img image.Image, name string) error
}

// FileExporter writes images below a directory. The format follows the
// file extension of the name.
type FileExporter struct {
	Dir string
}

// NewFileExporter creates an exporter rooted at dir
func NewFileExporter(dir string) *FileExporter {
	return &FileExporter{Dir: dir}
}

// Export saves img as Dir/name, creating Dir as needed
func (fe *FileExporter) Export(ctx context.Context, img image.Image, name string) error {
	if img == nil {
		return ErrNoImage
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := os.MkdirAll(fe.Dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory %s: %w", fe.Dir, err)
	}

	path := filepath.Join(fe.Dir, name)
	if err := imaging.Save(img, path); err != nil {
		return fmt.Errorf("failed to save %s: %w", path, err)
	}
	return nil
}

// EncodePNG writes img to w as PNG
func EncodePNG(w io.Writer, img image.Image) error {
	if img == nil {
		return ErrNoImage
	}
	return imaging.Encode(w, img, imaging.PNG)
}

// Thumbnail scales img down to fit in a maxSize square, keeping its aspect
// ratio. Images already small enough are returned unchanged.
func Thumbnail(img image.Image, maxSize uint) image.Image {
	bounds := img.Bounds()
	if maxSize == 0 || (uint(bounds.Dx()) <= maxSize && uint(bounds.Dy()) <= maxSize) {
		return img
	}
	return resize.Thumbnail(maxSize, maxSize, img, resize.Bilinear)
}

// contentType maps a file name to its MIME type
func contentType(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".gif":
		return "image/gif"
	case ".bmp":
		return "image/bmp"
	case ".tif", ".tiff":
		return "image/tiff"
	default:
		return "image/png"
	}
}

// formatFor picks the encoder for a file name, defaulting to PNG
func formatFor(name string) imaging.Format {
	if f, err := imaging.FormatFromFilename(name); err == nil {
		return f
	}
	return imaging.PNG
}
