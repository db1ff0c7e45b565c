package images

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/agenciaDemosle/billardramirez-sub001/internal/models"
)

// Cache is the local image download cache. Files are keyed by a fixed
// naming convention derived from the owning entity, so a re-run skips
// anything already on disk. Idempotency is by filename, not content hash.
type Cache struct {
	dir        string
	httpClient *http.Client
}

// NewCache creates a cache rooted at dir, creating the directory if needed.
// The HTTP client follows redirects, which image CDNs rely on.
func NewCache(dir string) (*Cache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create image cache directory: %w", err)
	}
	return &Cache{
		dir:        dir,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}, nil
}

// Dir returns the cache directory
func (c *Cache) Dir() string {
	return c.dir
}

// FileName returns the cache filename for an image owned by the given
// entity: product_<oldProductId>_<oldImageId>.<ext> for products,
// variation_<oldVariationId>.<ext> for variations.
func FileName(ownerType models.ImageOwnerType, ownerOldID, imageID int, src string) string {
	ext := extFromURL(src)
	if ownerType == models.ImageOwnerVariation {
		return fmt.Sprintf("variation_%d%s", ownerOldID, ext)
	}
	return fmt.Sprintf("product_%d_%d%s", ownerOldID, imageID, ext)
}

// Download fetches the image at src into the cache under name, skipping the
// request entirely when a file with that exact name already exists. It
// returns the path relative to the cache directory.
func (c *Cache) Download(ctx context.Context, src, name string) (string, error) {
	dest := filepath.Join(c.dir, name)
	if _, err := os.Stat(dest); err == nil {
		return name, nil
	}

	req, err := http.NewRequestWithContext(ctx, "GET", src, nil)
	if err != nil {
		return "", err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("image download failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("image download failed with status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read image body: %w", err)
	}

	if err := os.WriteFile(dest, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write cached image: %w", err)
	}
	return name, nil
}

// Path returns the absolute path of a cached file
func (c *Cache) Path(name string) string {
	return filepath.Join(c.dir, name)
}

// Has reports whether a cached file exists
func (c *Cache) Has(name string) bool {
	_, err := os.Stat(c.Path(name))
	return err == nil
}

// extFromURL extracts a usable file extension from an image URL, defaulting
// to .jpg when the URL carries none.
func extFromURL(src string) string {
	ext := strings.ToLower(path.Ext(stripQuery(src)))
	switch ext {
	case ".jpg", ".jpeg", ".png", ".gif", ".webp":
		return ext
	default:
		return ".jpg"
	}
}

func stripQuery(src string) string {
	if i := strings.IndexByte(src, '?'); i >= 0 {
		return src[:i]
	}
	return src
}
