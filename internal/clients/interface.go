package clients

import (
	"context"
	"fmt"

	"github.com/agenciaDemosle/billardramirez-sub001/internal/models"
)

// CatalogClient defines the operations every catalog API client must
// implement. The extractor only reads; the importer and image attacher
// also mutate.
type CatalogClient interface {
	// TestConnection verifies credentials before a run starts
	TestConnection(ctx context.Context) error

	// Reads (paginated; Page is 1-based)
	GetProducts(ctx context.Context, opts *ListOptions) (*ProductsPage, error)
	GetVariations(ctx context.Context, productID int, opts *ListOptions) ([]models.Variation, error)
	GetCategories(ctx context.Context, opts *ListOptions) (*CategoriesPage, error)
	GetAttributes(ctx context.Context) ([]models.Attribute, error)
	GetAttributeTerms(ctx context.Context, attributeID int) ([]string, error)

	// Lookups
	FindCategoryBySlug(ctx context.Context, slug string) (*models.Category, error)

	// Mutations
	CreateCategory(ctx context.Context, cat *models.Category, parentNewID int) (*models.Category, error)
	CreateProduct(ctx context.Context, p *models.Product, categoryIDs []int) (*models.Product, error)
	CreateVariation(ctx context.Context, productID int, v *models.Variation) (*models.Variation, error)
	UpdateProductImages(ctx context.Context, productID int, images []ImagePayload) error
	UpdateVariationImage(ctx context.Context, productID, variationID int, image ImagePayload) error

	// Media
	UploadMedia(ctx context.Context, filename string, data []byte) (*MediaResult, error)
}

// ListOptions contains common pagination options
type ListOptions struct {
	Page    int
	PerPage int
}

// ProductsPage contains one page of products plus pagination metadata
// reported by the collaborator's response headers.
type ProductsPage struct {
	Products   []models.Product
	TotalPages int
}

// CategoriesPage contains one page of categories plus pagination metadata
type CategoriesPage struct {
	Categories []models.Category
	TotalPages int
}

// ImagePayload is the image reference shape accepted by product/variation
// update calls. Exactly one of ID or Src should be set: an ID reuses an
// already-uploaded media item, a Src makes the platform fetch the URL
// server-side.
type ImagePayload struct {
	ID  int    `json:"id,omitempty"`
	Src string `json:"src,omitempty"`
	Alt string `json:"alt,omitempty"`
}

// MediaResult is the outcome of a media upload
type MediaResult struct {
	ID        int    `json:"id"`
	SourceURL string `json:"source_url"`
}

// APIError is an error response from a catalog API. Body is truncated for
// log readability before it is stored here.
type APIError struct {
	StatusCode int
	Code       string // remote error code, e.g. "term_exists"
	Body       string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("catalog API error (status %d, code %s): %s", e.StatusCode, e.Code, e.Body)
	}
	return fmt.Sprintf("catalog API error (status %d): %s", e.StatusCode, e.Body)
}

// IsDuplicateTerm reports whether the error is the platform's duplicate
// category slug rejection.
func IsDuplicateTerm(err error) bool {
	apiErr, ok := err.(*APIError)
	return ok && apiErr.Code == "term_exists"
}
