package woocommerce

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/agenciaDemosle/billardramirez-sub001/internal/clients"
	"github.com/agenciaDemosle/billardramirez-sub001/internal/models"
)

const (
	catalogBasePath = "/wp-json/wc/v3"
	mediaPath       = "/wp-json/wp/v2/media"

	// Error bodies are truncated to keep per-entity failure logs readable
	maxErrorBodyLen = 300
)

// Options configures a WooCommerce client
type Options struct {
	BaseURL        string
	ConsumerKey    string
	ConsumerSecret string

	// Media store credentials (WP application password). Only needed by
	// clients that upload images.
	MediaUser     string
	MediaPassword string

	RatePerSec float64
	Timeout    time.Duration
}

// Client implements clients.CatalogClient against a WooCommerce store.
// Catalog routes authenticate with consumer key/secret query parameters;
// the media route uses basic auth.
type Client struct {
	httpClient     *http.Client
	baseURL        string
	consumerKey    string
	consumerSecret string
	mediaUser      string
	mediaPassword  string
	rateLimiter    *rate.Limiter
	retrier        *clients.Retrier
}

// NewClient creates a new WooCommerce REST client
func NewClient(opts Options) *Client {
	timeout := opts.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	perSec := opts.RatePerSec
	if perSec <= 0 {
		perSec = 2
	}
	return &Client{
		httpClient:     &http.Client{Timeout: timeout},
		baseURL:        strings.TrimRight(opts.BaseURL, "/"),
		consumerKey:    opts.ConsumerKey,
		consumerSecret: opts.ConsumerSecret,
		mediaUser:      opts.MediaUser,
		mediaPassword:  opts.MediaPassword,
		rateLimiter:    rate.NewLimiter(rate.Limit(perSec), 1),
		retrier:        clients.NewRetrier(clients.DefaultRetryConfig()),
	}
}

// TestConnection verifies the credentials against the store
func (c *Client) TestConnection(ctx context.Context) error {
	params := url.Values{}
	params.Set("per_page", "1")
	_, _, err := c.doRequestWithHeaders(ctx, "GET", "/products", params, nil)
	return err
}

// GetProducts fetches one page of products
func (c *Client) GetProducts(ctx context.Context, opts *clients.ListOptions) (*clients.ProductsPage, error) {
	params := pageParams(opts)
	body, headers, err := c.doRequestWithHeaders(ctx, "GET", "/products", params, nil)
	if err != nil {
		return nil, err
	}

	var products []models.Product
	if err := json.Unmarshal(body, &products); err != nil {
		return nil, fmt.Errorf("failed to parse products response: %w", err)
	}

	return &clients.ProductsPage{
		Products:   products,
		TotalPages: parseTotalPages(headers),
	}, nil
}

// GetVariations fetches one page of variations for a variable product
func (c *Client) GetVariations(ctx context.Context, productID int, opts *clients.ListOptions) ([]models.Variation, error) {
	params := pageParams(opts)
	body, _, err := c.doRequestWithHeaders(ctx, "GET", fmt.Sprintf("/products/%d/variations", productID), params, nil)
	if err != nil {
		return nil, err
	}

	var variations []models.Variation
	if err := json.Unmarshal(body, &variations); err != nil {
		return nil, fmt.Errorf("failed to parse variations response: %w", err)
	}
	return variations, nil
}

// GetCategories fetches one page of categories
func (c *Client) GetCategories(ctx context.Context, opts *clients.ListOptions) (*clients.CategoriesPage, error) {
	params := pageParams(opts)
	body, headers, err := c.doRequestWithHeaders(ctx, "GET", "/products/categories", params, nil)
	if err != nil {
		return nil, err
	}

	var categories []models.Category
	if err := json.Unmarshal(body, &categories); err != nil {
		return nil, fmt.Errorf("failed to parse categories response: %w", err)
	}

	return &clients.CategoriesPage{
		Categories: categories,
		TotalPages: parseTotalPages(headers),
	}, nil
}

// GetAttributes fetches all attribute definitions
func (c *Client) GetAttributes(ctx context.Context) ([]models.Attribute, error) {
	body, _, err := c.doRequestWithHeaders(ctx, "GET", "/products/attributes", nil, nil)
	if err != nil {
		return nil, err
	}

	var attributes []models.Attribute
	if err := json.Unmarshal(body, &attributes); err != nil {
		return nil, fmt.Errorf("failed to parse attributes response: %w", err)
	}
	return attributes, nil
}

// GetAttributeTerms fetches the term names of one attribute
func (c *Client) GetAttributeTerms(ctx context.Context, attributeID int) ([]string, error) {
	params := url.Values{}
	params.Set("per_page", "100")
	body, _, err := c.doRequestWithHeaders(ctx, "GET", fmt.Sprintf("/products/attributes/%d/terms", attributeID), params, nil)
	if err != nil {
		return nil, err
	}

	var terms []struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(body, &terms); err != nil {
		return nil, fmt.Errorf("failed to parse attribute terms response: %w", err)
	}

	names := make([]string, 0, len(terms))
	for _, t := range terms {
		names = append(names, t.Name)
	}
	return names, nil
}

// FindCategoryBySlug looks up an existing category by its slug
func (c *Client) FindCategoryBySlug(ctx context.Context, slug string) (*models.Category, error) {
	params := url.Values{}
	params.Set("slug", slug)
	body, _, err := c.doRequestWithHeaders(ctx, "GET", "/products/categories", params, nil)
	if err != nil {
		return nil, err
	}

	var categories []models.Category
	if err := json.Unmarshal(body, &categories); err != nil {
		return nil, fmt.Errorf("failed to parse category lookup response: %w", err)
	}
	if len(categories) == 0 {
		return nil, fmt.Errorf("category with slug %q not found", slug)
	}
	return &categories[0], nil
}

// categoryPayload is the create-category request shape
type categoryPayload struct {
	Name   string `json:"name"`
	Slug   string `json:"slug,omitempty"`
	Parent int    `json:"parent,omitempty"`
}

// CreateCategory creates a category under an already-resolved target parent.
// parentNewID is 0 for root categories.
func (c *Client) CreateCategory(ctx context.Context, cat *models.Category, parentNewID int) (*models.Category, error) {
	payload := categoryPayload{
		Name:   cat.Name,
		Slug:   cat.Slug,
		Parent: parentNewID,
	}
	body, _, err := c.doRequestWithHeaders(ctx, "POST", "/products/categories", nil, payload)
	if err != nil {
		return nil, err
	}

	var created models.Category
	if err := json.Unmarshal(body, &created); err != nil {
		return nil, fmt.Errorf("failed to parse created category: %w", err)
	}
	return &created, nil
}

// productPayload is the create-product request shape. Images are deliberately
// absent: the image attacher pushes them in a later stage.
type productPayload struct {
	Name          string                    `json:"name"`
	Slug          string                    `json:"slug,omitempty"`
	SKU           string                    `json:"sku,omitempty"`
	Type          models.ProductType        `json:"type"`
	Description   string                    `json:"description,omitempty"`
	ShortDesc     string                    `json:"short_description,omitempty"`
	RegularPrice  string                    `json:"regular_price,omitempty"`
	SalePrice     string                    `json:"sale_price,omitempty"`
	ManageStock   bool                      `json:"manage_stock"`
	StockQuantity *int                      `json:"stock_quantity,omitempty"`
	StockStatus   models.StockStatus        `json:"stock_status,omitempty"`
	Categories    []models.CategoryRef      `json:"categories,omitempty"`
	Attributes    []models.ProductAttribute `json:"attributes,omitempty"`
}

// CreateProduct creates a product on the target catalog. categoryIDs must
// already be target-side ids; the caller resolves them through the mapping.
func (c *Client) CreateProduct(ctx context.Context, p *models.Product, categoryIDs []int) (*models.Product, error) {
	payload := productPayload{
		Name:          p.Name,
		Slug:          p.Slug,
		SKU:           p.SKU,
		Type:          p.Type,
		Description:   p.Description,
		ShortDesc:     p.ShortDesc,
		RegularPrice:  p.RegularPrice,
		SalePrice:     p.SalePrice,
		ManageStock:   p.StockQuantity != nil,
		StockQuantity: p.StockQuantity,
		StockStatus:   p.StockStatus,
		Attributes:    p.Attributes,
	}
	for _, id := range categoryIDs {
		payload.Categories = append(payload.Categories, models.CategoryRef{ID: id})
	}

	body, _, err := c.doRequestWithHeaders(ctx, "POST", "/products", nil, payload)
	if err != nil {
		return nil, err
	}

	var created models.Product
	if err := json.Unmarshal(body, &created); err != nil {
		return nil, fmt.Errorf("failed to parse created product: %w", err)
	}
	return &created, nil
}

// variationPayload is the create-variation request shape, image stripped
type variationPayload struct {
	SKU           string                      `json:"sku,omitempty"`
	RegularPrice  string                      `json:"regular_price,omitempty"`
	SalePrice     string                      `json:"sale_price,omitempty"`
	ManageStock   bool                        `json:"manage_stock"`
	StockQuantity *int                        `json:"stock_quantity,omitempty"`
	StockStatus   models.StockStatus          `json:"stock_status,omitempty"`
	Attributes    []models.VariationAttribute `json:"attributes,omitempty"`
}

// CreateVariation creates a variation under an already-created target product
func (c *Client) CreateVariation(ctx context.Context, productID int, v *models.Variation) (*models.Variation, error) {
	payload := variationPayload{
		SKU:           v.SKU,
		RegularPrice:  v.RegularPrice,
		SalePrice:     v.SalePrice,
		ManageStock:   v.StockQuantity != nil,
		StockQuantity: v.StockQuantity,
		StockStatus:   v.StockStatus,
		Attributes:    v.Attributes,
	}

	body, _, err := c.doRequestWithHeaders(ctx, "POST", fmt.Sprintf("/products/%d/variations", productID), nil, payload)
	if err != nil {
		return nil, err
	}

	var created models.Variation
	if err := json.Unmarshal(body, &created); err != nil {
		return nil, fmt.Errorf("failed to parse created variation: %w", err)
	}
	return &created, nil
}

// UpdateProductImages replaces the product's whole image list in one call
func (c *Client) UpdateProductImages(ctx context.Context, productID int, images []clients.ImagePayload) error {
	payload := map[string]interface{}{"images": images}
	_, _, err := c.doRequestWithHeaders(ctx, "PUT", fmt.Sprintf("/products/%d", productID), nil, payload)
	return err
}

// UpdateVariationImage sets the single image of a variation
func (c *Client) UpdateVariationImage(ctx context.Context, productID, variationID int, image clients.ImagePayload) error {
	payload := map[string]interface{}{"image": image}
	_, _, err := c.doRequestWithHeaders(ctx, "PUT", fmt.Sprintf("/products/%d/variations/%d", productID, variationID), nil, payload)
	return err
}

// UploadMedia pushes raw image bytes to the WP media store. Unlike catalog
// routes this endpoint wants basic auth and a filename header.
func (c *Client) UploadMedia(ctx context.Context, filename string, data []byte) (*clients.MediaResult, error) {
	if c.mediaUser == "" || c.mediaPassword == "" {
		return nil, fmt.Errorf("media credentials not configured")
	}

	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, err
	}

	contentType := mime.TypeByExtension(filepath.Ext(filename))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	resp, err := c.retrier.DoHTTP(ctx, func(ctx context.Context) (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+mediaPath, bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		req.SetBasicAuth(c.mediaUser, c.mediaPassword)
		req.Header.Set("Content-Type", contentType)
		req.Header.Set("Content-Disposition", fmt.Sprintf(`attachment; filename=%q`, filename))
		return c.httpClient.Do(req)
	})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 400 {
		return nil, newAPIError(resp.StatusCode, body)
	}

	var result clients.MediaResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to parse media upload response: %s", truncate(string(body), maxErrorBodyLen))
	}
	return &result, nil
}

// doRequestWithHeaders performs an authenticated catalog request and
// returns the body and response headers.
func (c *Client) doRequestWithHeaders(ctx context.Context, method, path string, params url.Values, body interface{}) ([]byte, http.Header, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, nil, err
	}

	if params == nil {
		params = url.Values{}
	}
	params.Set("consumer_key", c.consumerKey)
	params.Set("consumer_secret", c.consumerSecret)

	fullURL := c.baseURL + catalogBasePath + path + "?" + params.Encode()

	var jsonBody []byte
	if body != nil {
		var err error
		jsonBody, err = json.Marshal(body)
		if err != nil {
			return nil, nil, err
		}
	}

	resp, err := c.retrier.DoHTTP(ctx, func(ctx context.Context) (*http.Response, error) {
		var reqBody io.Reader
		if jsonBody != nil {
			reqBody = bytes.NewReader(jsonBody)
		}
		req, err := http.NewRequestWithContext(ctx, method, fullURL, reqBody)
		if err != nil {
			return nil, err
		}
		if jsonBody != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		return c.httpClient.Do(req)
	})
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, err
	}

	if resp.StatusCode >= 400 {
		return nil, nil, newAPIError(resp.StatusCode, respBody)
	}

	return respBody, resp.Header, nil
}

// newAPIError builds an APIError from a response body, extracting the remote
// error code when the body is the platform's JSON error shape.
func newAPIError(statusCode int, body []byte) *clients.APIError {
	apiErr := &clients.APIError{
		StatusCode: statusCode,
		Body:       truncate(string(body), maxErrorBodyLen),
	}

	var wireErr struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &wireErr); err == nil && wireErr.Code != "" {
		apiErr.Code = wireErr.Code
		apiErr.Body = truncate(wireErr.Message, maxErrorBodyLen)
	}
	return apiErr
}

func pageParams(opts *clients.ListOptions) url.Values {
	params := url.Values{}
	if opts == nil {
		return params
	}
	if opts.Page > 0 {
		params.Set("page", strconv.Itoa(opts.Page))
	}
	if opts.PerPage > 0 {
		params.Set("per_page", strconv.Itoa(opts.PerPage))
	}
	return params
}

func parseTotalPages(headers http.Header) int {
	total, err := strconv.Atoi(headers.Get("X-WP-TotalPages"))
	if err != nil {
		return 0
	}
	return total
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
