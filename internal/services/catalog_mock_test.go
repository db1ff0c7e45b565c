package services

import (
	"context"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/agenciaDemosle/billardramirez-sub001/internal/artifacts"
	"github.com/agenciaDemosle/billardramirez-sub001/internal/clients"
	"github.com/agenciaDemosle/billardramirez-sub001/internal/models"
)

// mockCatalog is a testify mock over the catalog client used by every
// stage service test.
type mockCatalog struct {
	mock.Mock
}

func (m *mockCatalog) TestConnection(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *mockCatalog) GetProducts(ctx context.Context, opts *clients.ListOptions) (*clients.ProductsPage, error) {
	args := m.Called(ctx, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*clients.ProductsPage), args.Error(1)
}

func (m *mockCatalog) GetVariations(ctx context.Context, productID int, opts *clients.ListOptions) ([]models.Variation, error) {
	args := m.Called(ctx, productID, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Variation), args.Error(1)
}

func (m *mockCatalog) GetCategories(ctx context.Context, opts *clients.ListOptions) (*clients.CategoriesPage, error) {
	args := m.Called(ctx, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*clients.CategoriesPage), args.Error(1)
}

func (m *mockCatalog) GetAttributes(ctx context.Context) ([]models.Attribute, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Attribute), args.Error(1)
}

func (m *mockCatalog) GetAttributeTerms(ctx context.Context, attributeID int) ([]string, error) {
	args := m.Called(ctx, attributeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *mockCatalog) FindCategoryBySlug(ctx context.Context, slug string) (*models.Category, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Category), args.Error(1)
}

func (m *mockCatalog) CreateCategory(ctx context.Context, cat *models.Category, parentNewID int) (*models.Category, error) {
	args := m.Called(ctx, cat, parentNewID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Category), args.Error(1)
}

func (m *mockCatalog) CreateProduct(ctx context.Context, p *models.Product, categoryIDs []int) (*models.Product, error) {
	args := m.Called(ctx, p, categoryIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

func (m *mockCatalog) CreateVariation(ctx context.Context, productID int, v *models.Variation) (*models.Variation, error) {
	args := m.Called(ctx, productID, v)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Variation), args.Error(1)
}

func (m *mockCatalog) UpdateProductImages(ctx context.Context, productID int, images []clients.ImagePayload) error {
	args := m.Called(ctx, productID, images)
	return args.Error(0)
}

func (m *mockCatalog) UpdateVariationImage(ctx context.Context, productID, variationID int, image clients.ImagePayload) error {
	args := m.Called(ctx, productID, variationID, image)
	return args.Error(0)
}

func (m *mockCatalog) UploadMedia(ctx context.Context, filename string, data []byte) (*clients.MediaResult, error) {
	args := m.Called(ctx, filename, data)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*clients.MediaResult), args.Error(1)
}

func testLogger() *logrus.Entry {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger.WithField("stage", "test")
}

func testStore(t *testing.T) *artifacts.Store {
	t.Helper()
	store, err := artifacts.NewStore(t.TempDir())
	require.NoError(t, err)
	return store
}

// page wraps a product list in a single-page response
func productsPage(products ...models.Product) *clients.ProductsPage {
	return &clients.ProductsPage{Products: products, TotalPages: 1}
}

func categoriesPage(categories ...models.Category) *clients.CategoriesPage {
	return &clients.CategoriesPage{Categories: categories, TotalPages: 1}
}
