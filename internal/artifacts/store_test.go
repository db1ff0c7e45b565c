package artifacts

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenciaDemosle/billardramirez-sub001/internal/models"
)

func TestSaveAndLoadRoundTrip(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	in := []models.Category{
		{ID: 1, Name: "Mesas", Slug: "mesas"},
		{ID: 2, Name: "Tacos", Slug: "tacos", Parent: 1},
	}
	require.NoError(t, store.Save(CategoriesFile, in))

	var out []models.Category
	require.NoError(t, store.Load(CategoriesFile, &out))
	assert.Equal(t, in, out)
}

func TestSaveLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(dir)
	require.NoError(t, err)

	require.NoError(t, store.Save(ProductsFile, []models.Product{{ID: 1, Name: "Taco"}}))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, ProductsFile, entries[0].Name())
}

func TestSaveOverwritesExistingArtifact(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Save(ProductsFile, []models.Product{{ID: 1}}))
	require.NoError(t, store.Save(ProductsFile, []models.Product{{ID: 2}, {ID: 3}}))

	var out []models.Product
	require.NoError(t, store.Load(ProductsFile, &out))
	require.Len(t, out, 2)
	assert.Equal(t, 2, out[0].ID)
}

func TestExists(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	assert.False(t, store.Exists(ProductsFile))
	require.NoError(t, store.Save(ProductsFile, []models.Product{}))
	assert.True(t, store.Exists(ProductsFile))
}

func TestLoadMissingArtifactFails(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	var out []models.Product
	assert.Error(t, store.Load(ProductsFile, &out))
}

func TestNewStoreCreatesNestedDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "export", "run-1")
	_, err := NewStore(dir)
	require.NoError(t, err)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}
