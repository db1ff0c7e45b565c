package images

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
)

// OptimizerConfig bounds uploaded assets. The upload threshold mirrors the
// target platform's observed media size limit and is configuration, not an
// invariant of the platform's documented contract.
type OptimizerConfig struct {
	MaxUploadBytes int64 // files at or under this size upload as-is
	MaxEdge        int   // longest edge after resize
	JPEGQuality    int
}

// DefaultOptimizerConfig returns the optimizer bounds used against the
// target platform.
func DefaultOptimizerConfig() OptimizerConfig {
	return OptimizerConfig{
		MaxUploadBytes: 2 * 1024 * 1024,
		MaxEdge:        1600,
		JPEGQuality:    80,
	}
}

// Optimizer prepares local image files for upload, compressing anything
// over the size threshold.
type Optimizer struct {
	config OptimizerConfig
}

// NewOptimizer creates an optimizer with the given bounds
func NewOptimizer(config OptimizerConfig) *Optimizer {
	if config.MaxUploadBytes <= 0 {
		config = DefaultOptimizerConfig()
	}
	return &Optimizer{config: config}
}

// Prepared is an upload-ready image
type Prepared struct {
	FileName   string
	Data       []byte
	Compressed bool
}

// Prepare loads the file at path and returns upload-ready bytes. Files at
// or under the size threshold pass through untouched. Oversized files are
// resized to the configured longest edge and re-encoded as JPEG; a .png
// name becomes .jpg in the process.
func (o *Optimizer) Prepare(path string) (*Prepared, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat image: %w", err)
	}

	name := filepath.Base(path)
	if info.Size() <= o.config.MaxUploadBytes {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read image: %w", err)
		}
		return &Prepared{FileName: name, Data: data}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}

	compressed, err := o.compress(data)
	if err != nil {
		return nil, err
	}

	ext := strings.ToLower(filepath.Ext(name))
	if ext != ".jpg" && ext != ".jpeg" {
		name = strings.TrimSuffix(name, filepath.Ext(name)) + ".jpg"
	}

	return &Prepared{FileName: name, Data: compressed, Compressed: true}, nil
}

// compress resizes to the longest-edge cap and re-encodes as JPEG
func (o *Optimizer) compress(data []byte) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	resized := img
	if width > o.config.MaxEdge || height > o.config.MaxEdge {
		if width >= height {
			resized = imaging.Resize(img, o.config.MaxEdge, 0, imaging.Lanczos)
		} else {
			resized = imaging.Resize(img, 0, o.config.MaxEdge, imaging.Lanczos)
		}
	}

	quality := o.config.JPEGQuality
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, resized, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("failed to encode to JPEG: %w", err)
	}

	// A pathological source can still exceed the threshold at the default
	// quality; step down before giving up.
	for buf.Len() > int(o.config.MaxUploadBytes) && quality > 30 {
		quality -= 15
		buf.Reset()
		if err := jpeg.Encode(&buf, resized, &jpeg.Options{Quality: quality}); err != nil {
			return nil, fmt.Errorf("failed to encode to JPEG: %w", err)
		}
	}
	if buf.Len() > int(o.config.MaxUploadBytes) {
		return nil, fmt.Errorf("image still %d bytes after compression, over the %d byte limit", buf.Len(), o.config.MaxUploadBytes)
	}

	return buf.Bytes(), nil
}
