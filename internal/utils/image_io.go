package utils

import (
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	_ "golang.org/x/image/bmp"
)

// ImageProcessingError represents errors that can occur while reading or
// preparing images.
type ImageProcessingError struct {
	Operation string
	Err       error
}

func (e *ImageProcessingError) Error() string {
	return fmt.Sprintf("image processing error in %s: %v", e.Operation, e.Err)
}

func (e *ImageProcessingError) Unwrap() error { return e.Err }

// SupportedImageExtensions lists supported file extensions for loading.
var SupportedImageExtensions = []string{".jpg", ".jpeg", ".png", ".bmp"}

// IsSupportedImage reports whether the path has a supported image extension.
func IsSupportedImage(path string) bool {
	return slices.Contains(SupportedImageExtensions, strings.ToLower(filepath.Ext(path)))
}

// ImageMetadata captures lightweight file and pixel information.
type ImageMetadata struct {
	Path        string
	Format      string
	SizeBytes   int64
	Width       int
	Height      int
	AspectRatio float64
}

// openSupported opens path after checking its extension. Failures are
// reported under op.
func openSupported(op, path string) (*os.File, error) {
	switch {
	case path == "":
		return nil, &ImageProcessingError{Operation: op, Err: errors.New("empty path")}
	case !IsSupportedImage(path):
		return nil, &ImageProcessingError{Operation: op, Err: fmt.Errorf("unsupported format: %s", filepath.Ext(path))}
	}
	f, err := os.Open(path) //nolint:gosec // G304: image paths are user input
	if err != nil {
		return nil, &ImageProcessingError{Operation: op, Err: err}
	}
	return f, nil
}

func closeQuietly(f *os.File) {
	if err := f.Close(); err != nil {
		slog.Warn("Error closing image file", "path", f.Name(), "error", err)
	}
}

// LoadImage decodes the image at path and reports its metadata.
func LoadImage(path string) (image.Image, ImageMetadata, error) {
	f, err := openSupported("load", path)
	if err != nil {
		return nil, ImageMetadata{}, err
	}
	defer closeQuietly(f)

	fi, err := f.Stat()
	if err != nil {
		return nil, ImageMetadata{}, &ImageProcessingError{Operation: "load", Err: err}
	}
	img, format, err := image.Decode(f)
	if err != nil {
		return nil, ImageMetadata{}, &ImageProcessingError{Operation: "decode", Err: err}
	}

	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	return img, ImageMetadata{
		Path:        path,
		Format:      format,
		SizeBytes:   fi.Size(),
		Width:       w,
		Height:      h,
		AspectRatio: float64(w) / float64(h),
	}, nil
}

// ImageSize reads only the header of an image file and returns its pixel
// dimensions.
func ImageSize(path string) (int, int, error) {
	f, err := openSupported("size", path)
	if err != nil {
		return 0, 0, err
	}
	defer closeQuietly(f)

	cfg, _, err := image.DecodeConfig(f)
	switch {
	case err != nil:
		return 0, 0, &ImageProcessingError{Operation: "decode", Err: err}
	case cfg.Width <= 0 || cfg.Height <= 0:
		return 0, 0, &ImageProcessingError{Operation: "size", Err: errors.New("image has no pixels")}
	}
	return cfg.Width, cfg.Height, nil
}

// ListImages returns the names of the supported image files directly inside
// dir, sorted lexically.
func ListImages(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, &ImageProcessingError{Operation: "list", Err: err}
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || !IsSupportedImage(e.Name()) {
			continue
		}
		names = append(names, e.Name())
	}
	slices.Sort(names)
	return names, nil
}
