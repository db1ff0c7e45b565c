package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/agenciaDemosle/billardramirez-sub001/internal/artifacts"
	"github.com/agenciaDemosle/billardramirez-sub001/internal/clients"
	"github.com/agenciaDemosle/billardramirez-sub001/internal/images"
	"github.com/agenciaDemosle/billardramirez-sub001/internal/models"
)

// imageServer serves fake image bytes for any path except /missing.jpg
func imageServer(t *testing.T) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing.jpg" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte("bytes-of-" + r.URL.Path))
	}))
	t.Cleanup(server.Close)
	return server
}

func testCache(t *testing.T) *images.Cache {
	t.Helper()
	cache, err := images.NewCache(t.TempDir())
	require.NoError(t, err)
	return cache
}

func TestExtractRunSnapshotsCatalogAndImages(t *testing.T) {
	server := imageServer(t)

	source := &mockCatalog{}
	source.On("GetCategories", mock.Anything, mock.Anything).
		Return(categoriesPage(
			models.Category{ID: 1, Name: "Mesas", Slug: "mesas"},
			models.Category{ID: 2, Name: "Tacos", Slug: "tacos", Parent: 1},
		), nil).Once()
	source.On("GetAttributes", mock.Anything).
		Return([]models.Attribute{{ID: 7, Name: "Color", Slug: "pa_color"}}, nil).Once()
	source.On("GetAttributeTerms", mock.Anything, 7).
		Return([]string{"Rojo", "Azul"}, nil).Once()

	source.On("GetProducts", mock.Anything, mock.Anything).
		Return(productsPage(
			models.Product{
				ID: 1, Name: "Mesa Clasica", Slug: "mesa-clasica", Type: models.ProductTypeSimple,
				Images: []models.ImageRef{{ID: 11, Src: server.URL + "/a.jpg"}},
			},
			models.Product{
				ID: 2, Name: "Taco Pro", Slug: "taco-pro", Type: models.ProductTypeVariable,
				Images:       []models.ImageRef{{ID: 21, Src: server.URL + "/c.jpg"}},
				VariationIDs: []int{201, 202},
			},
			models.Product{
				ID: 3, Name: "Tiza Premium", Slug: "tiza-premium", Type: models.ProductTypeSimple,
				Images: []models.ImageRef{{ID: 13, Src: server.URL + "/b.jpg"}},
			},
		), nil).Once()
	source.On("GetVariations", mock.Anything, 2, mock.Anything).
		Return([]models.Variation{
			{ID: 201, SKU: "TACO-R", Image: &models.ImageRef{ID: 31, Src: server.URL + "/v1.jpg"}},
			{ID: 202, SKU: "TACO-A", Image: &models.ImageRef{ID: 32, Src: server.URL + "/v2.jpg"}},
		}, nil).Once()

	store := testStore(t)
	cache := testCache(t)
	service := NewExtractService(source, store, cache, 100, testLogger())

	summary, err := service.Run(context.Background())
	require.NoError(t, err)
	source.AssertExpectations(t)

	assert.Equal(t, 3, summary.Processed)
	assert.Equal(t, 5, summary.Succeeded)
	assert.Equal(t, 0, summary.Failed)

	// All three snapshots written
	assert.True(t, store.Exists(artifacts.CategoriesFile))
	assert.True(t, store.Exists(artifacts.AttributesFile))
	assert.True(t, store.Exists(artifacts.ProductsFile))

	var attrs []models.Attribute
	require.NoError(t, store.Load(artifacts.AttributesFile, &attrs))
	require.Len(t, attrs, 1)
	assert.Equal(t, []string{"Rojo", "Azul"}, attrs[0].Terms)

	var products []models.Product
	require.NoError(t, store.Load(artifacts.ProductsFile, &products))
	require.Len(t, products, 3)

	// Product images carry the owner tuple and cache path
	img := products[0].Images[0]
	assert.Equal(t, models.ImageOwnerProduct, img.OwnerType)
	assert.Equal(t, 1, img.OwnerOldID)
	assert.Equal(t, "product_1_11.jpg", img.LocalPath)

	// Variable product got its variation list expanded
	require.Len(t, products[1].VariationData, 2)
	varImg := products[1].VariationData[0].Image
	assert.Equal(t, models.ImageOwnerVariation, varImg.OwnerType)
	assert.Equal(t, 201, varImg.OwnerOldID)
	assert.Equal(t, "variation_201.jpg", varImg.LocalPath)

	for _, name := range []string{"product_1_11.jpg", "product_2_21.jpg", "product_3_13.jpg", "variation_201.jpg", "variation_202.jpg"} {
		assert.True(t, cache.Has(name), "expected cached file %s", name)
	}
}

func TestExtractImageFailureIsNotFatal(t *testing.T) {
	server := imageServer(t)

	source := &mockCatalog{}
	source.On("GetCategories", mock.Anything, mock.Anything).Return(categoriesPage(), nil).Once()
	source.On("GetAttributes", mock.Anything).Return([]models.Attribute{}, nil).Once()
	source.On("GetProducts", mock.Anything, mock.Anything).
		Return(productsPage(models.Product{
			ID: 3, Name: "Paño", Slug: "pano", Type: models.ProductTypeSimple,
			Images: []models.ImageRef{
				{ID: 41, Src: server.URL + "/missing.jpg"},
				{ID: 42, Src: server.URL + "/ok.jpg"},
			},
		}), nil).Once()

	store := testStore(t)
	service := NewExtractService(source, store, testCache(t), 100, testLogger())

	summary, err := service.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Failed)
	assert.Equal(t, 1, summary.Succeeded)

	var products []models.Product
	require.NoError(t, store.Load(artifacts.ProductsFile, &products))
	assert.Empty(t, products[0].Images[0].LocalPath, "failed download leaves no local path")
	assert.Equal(t, "product_3_42.jpg", products[0].Images[1].LocalPath)
}

func TestExtractFollowsPaginationHeaders(t *testing.T) {
	source := &mockCatalog{}
	source.On("GetCategories", mock.Anything, mock.Anything).Return(categoriesPage(), nil).Once()
	source.On("GetAttributes", mock.Anything).Return([]models.Attribute{}, nil).Once()

	source.On("GetProducts", mock.Anything, &clients.ListOptions{Page: 1, PerPage: 2}).
		Return(&clients.ProductsPage{
			Products: []models.Product{
				{ID: 1, Slug: "uno", Type: models.ProductTypeSimple},
				{ID: 2, Slug: "dos", Type: models.ProductTypeSimple},
			},
			TotalPages: 2,
		}, nil).Once()
	source.On("GetProducts", mock.Anything, &clients.ListOptions{Page: 2, PerPage: 2}).
		Return(&clients.ProductsPage{
			Products:   []models.Product{{ID: 3, Slug: "tres", Type: models.ProductTypeSimple}},
			TotalPages: 2,
		}, nil).Once()

	store := testStore(t)
	service := NewExtractService(source, store, testCache(t), 2, testLogger())

	summary, err := service.Run(context.Background())
	require.NoError(t, err)
	source.AssertExpectations(t)
	assert.Equal(t, 3, summary.Processed)

	var products []models.Product
	require.NoError(t, store.Load(artifacts.ProductsFile, &products))
	assert.Len(t, products, 3)
}

func TestExtractPageFailureIsFatal(t *testing.T) {
	source := &mockCatalog{}
	source.On("GetCategories", mock.Anything, mock.Anything).Return(categoriesPage(), nil).Once()
	source.On("GetAttributes", mock.Anything).Return([]models.Attribute{}, nil).Once()
	source.On("GetProducts", mock.Anything, mock.Anything).
		Return(nil, &clients.APIError{StatusCode: 500, Body: "boom"}).Once()

	store := testStore(t)
	service := NewExtractService(source, store, testCache(t), 100, testLogger())

	_, err := service.Run(context.Background())
	require.Error(t, err)
	assert.False(t, store.Exists(artifacts.ProductsFile))
}

func TestRetryDownloadsOnlyFetchesMissingImages(t *testing.T) {
	server := imageServer(t)

	store := testStore(t)
	cache := testCache(t)
	require.NoError(t, store.Save(artifacts.ProductsFile, []models.Product{
		{
			ID: 1, Slug: "mesa", Type: models.ProductTypeSimple,
			Images: []models.ImageRef{
				{ID: 11, Src: server.URL + "/done.jpg", LocalPath: "product_1_11.jpg",
					OwnerType: models.ImageOwnerProduct, OwnerOldID: 1},
				{ID: 12, Src: server.URL + "/pending.jpg",
					OwnerType: models.ImageOwnerProduct, OwnerOldID: 1},
			},
		},
	}))

	service := NewExtractService(&mockCatalog{}, store, cache, 100, testLogger())
	summary, err := service.RetryDownloads(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Processed)
	assert.Equal(t, 2, summary.Succeeded)

	// The snapshot now carries the recovered local path
	var products []models.Product
	require.NoError(t, store.Load(artifacts.ProductsFile, &products))
	assert.Equal(t, "product_1_12.jpg", products[0].Images[1].LocalPath)
	assert.True(t, cache.Has("product_1_12.jpg"))
	assert.False(t, cache.Has("product_1_11.jpg"), "already-resolved images are not re-fetched")

	var downloaded []models.DownloadedImage
	require.NoError(t, store.Load(artifacts.DownloadedImagesFile, &downloaded))
	assert.Len(t, downloaded, 2)
}
