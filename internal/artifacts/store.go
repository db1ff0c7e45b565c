package artifacts

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Canonical artifact filenames. Stages are separate processes coupled only
// through these files, so the names are the inter-stage contract.
const (
	CategoriesFile       = "categories.json"
	AttributesFile       = "attributes.json"
	ProductsFile         = "products.json"
	ProductsToImportFile = "products-to-import.json"
	CategoryMappingFile  = "category-mapping.json"
	ExportReportFile     = "export-report.json"
	ExportReportXLSX     = "export-report.xlsx"
	SyncMappingFile      = "sync-mapping.json"
	DownloadedImagesFile = "downloaded-images-mapping.json"
	SitemapFile          = "sitemap.xml"
)

// Store reads and writes the pipeline's JSON checkpoint artifacts under a
// single export directory. Each run owns the directory exclusively by
// convention; there is no file locking.
type Store struct {
	dir string
}

// NewStore creates a store rooted at dir, creating the directory if needed
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create export directory: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Dir returns the export directory
func (s *Store) Dir() string {
	return s.dir
}

// Path returns the absolute path of a named artifact
func (s *Store) Path(name string) string {
	return filepath.Join(s.dir, name)
}

// Exists reports whether a named artifact is present
func (s *Store) Exists(name string) bool {
	_, err := os.Stat(s.Path(name))
	return err == nil
}

// Save writes v as indented JSON. The write goes through a temp file and a
// rename so a crash never leaves a half-written artifact behind.
func (s *Store) Save(name string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", name, err)
	}

	tmp, err := os.CreateTemp(s.dir, name+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file for %s: %w", name, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close %s: %w", name, err)
	}

	if err := os.Rename(tmpName, s.Path(name)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to move %s into place: %w", name, err)
	}
	return nil
}

// Load reads a named artifact into v
func (s *Store) Load(name string, v interface{}) error {
	data, err := os.ReadFile(s.Path(name))
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", name, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to parse %s: %w", name, err)
	}
	return nil
}
