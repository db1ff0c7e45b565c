package models

// ProductType represents the type of a catalog product
type ProductType string

const (
	ProductTypeSimple   ProductType = "simple"
	ProductTypeVariable ProductType = "variable"
)

// StockStatus represents the stock status of a product or variation
type StockStatus string

const (
	StockInStock     StockStatus = "instock"
	StockOutOfStock  StockStatus = "outofstock"
	StockOnBackorder StockStatus = "onbackorder"
)

// ImageOwnerType identifies which kind of entity an image belongs to
type ImageOwnerType string

const (
	ImageOwnerProduct   ImageOwnerType = "product"
	ImageOwnerVariation ImageOwnerType = "variation"
)

// CategoryRef is a category reference as carried on a product
type CategoryRef struct {
	ID   int    `json:"id"`
	Name string `json:"name,omitempty"`
	Slug string `json:"slug,omitempty"`
}

// ImageRef represents a product or variation image. The owner tuple is
// attached at extraction time so later stages never have to re-derive
// ownership from the cache filename.
type ImageRef struct {
	ID        int    `json:"id,omitempty"` // media id on the catalog it was read from
	Src       string `json:"src"`
	Name      string `json:"name,omitempty"`
	Alt       string `json:"alt,omitempty"`
	LocalPath string `json:"local_path,omitempty"` // relative to the image cache dir

	OwnerType  ImageOwnerType `json:"owner_type,omitempty"`
	OwnerOldID int            `json:"owner_old_id,omitempty"`

	// TargetMediaID is set once the image has been uploaded to the target's
	// media store, so re-runs reuse it instead of uploading again.
	TargetMediaID int `json:"target_media_id,omitempty"`
}

// Attribute represents a product attribute definition with its resolved terms
type Attribute struct {
	ID    int      `json:"id"`
	Name  string   `json:"name"`
	Slug  string   `json:"slug"`
	Terms []string `json:"terms,omitempty"`
}

// ProductAttribute is an attribute as declared on a variable product
type ProductAttribute struct {
	ID        int      `json:"id,omitempty"`
	Name      string   `json:"name"`
	Variation bool     `json:"variation"`
	Visible   bool     `json:"visible"`
	Options   []string `json:"options"`
}

// VariationAttribute is a concrete name/option assignment on a variation
type VariationAttribute struct {
	ID     int    `json:"id,omitempty"`
	Name   string `json:"name"`
	Option string `json:"option"`
}

// Variation represents a purchasable configuration of a variable product.
// It is owned exclusively by its parent product.
type Variation struct {
	ID            int                  `json:"id"`
	SKU           string               `json:"sku,omitempty"`
	RegularPrice  string               `json:"regular_price,omitempty"`
	SalePrice     string               `json:"sale_price,omitempty"`
	StockQuantity *int                 `json:"stock_quantity,omitempty"`
	StockStatus   StockStatus          `json:"stock_status,omitempty"`
	Attributes    []VariationAttribute `json:"attributes,omitempty"`
	Image         *ImageRef            `json:"image,omitempty"`
}

// Product represents a catalog product snapshot taken from the source
// catalog. Prices are decimal strings, as the platform reports them.
type Product struct {
	ID            int           `json:"id"`
	Name          string        `json:"name"`
	Slug          string        `json:"slug"`
	SKU           string        `json:"sku,omitempty"`
	Type          ProductType   `json:"type"`
	Description   string        `json:"description,omitempty"`
	ShortDesc     string        `json:"short_description,omitempty"`
	RegularPrice  string        `json:"regular_price,omitempty"`
	SalePrice     string        `json:"sale_price,omitempty"`
	StockQuantity *int          `json:"stock_quantity,omitempty"`
	StockStatus   StockStatus   `json:"stock_status,omitempty"`
	Categories    []CategoryRef `json:"categories,omitempty"`
	Images        []ImageRef    `json:"images,omitempty"`

	// Variable products only
	Attributes    []ProductAttribute `json:"attributes,omitempty"`
	VariationIDs  []int              `json:"variations,omitempty"`
	VariationData []Variation        `json:"variation_data,omitempty"`
}

// IsVariable reports whether the product declares variation children
func (p *Product) IsVariable() bool {
	return p.Type == ProductTypeVariable
}

// Category represents a catalog category. Parent is 0 for root categories.
type Category struct {
	ID     int    `json:"id"`
	Name   string `json:"name"`
	Slug   string `json:"slug"`
	Parent int    `json:"parent"`
}
