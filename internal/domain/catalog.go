package domain

import "time"

// Category groups products in the storefront (e.g. "pubg", "codm").
type Category struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Slug      string    `json:"slug" db:"slug"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Product is the catalog read model the key inventory hangs off.
// Price is the listed storefront price, not the net price used for revenue
// estimates (see the stats price book).
type Product struct {
	ID          string    `json:"id" db:"id"`
	CategoryID  string    `json:"category_id" db:"category_id"`
	Title       string    `json:"title" db:"title"`
	Price       float64   `json:"price" db:"price"`
	Description string    `json:"description" db:"description"`
	Features    []string  `json:"features" db:"features"`
	BuyLink     string    `json:"buy_link" db:"buy_link"`
	ImageURL    string    `json:"image_url,omitempty" db:"image_url"`
	VideoLink   string    `json:"video_link,omitempty" db:"video_link"`
	IsPopular   bool      `json:"is_popular" db:"is_popular"`
	IsHidden    bool      `json:"is_hidden" db:"is_hidden"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// SiteSetting is a single key/value pair of storefront copy or configuration
// edited from the admin dashboard.
type SiteSetting struct {
	Key   string `json:"key" db:"key"`
	Value string `json:"value" db:"value"`
}

// ImageKind distinguishes the two image libraries the shop keeps.
type ImageKind string

const (
	ImagePurchase ImageKind = "purchase" // proof-of-purchase screenshots shown at checkout
	ImageWinning  ImageKind = "winning"  // customer winning photos shown on the storefront
)

// ShopImage is a stored image record. The binary lives in object storage
// under ObjectKey; ImageURL is the public URL handed to the UI.
type ShopImage struct {
	ID           string    `json:"id" db:"id"`
	Kind         ImageKind `json:"kind" db:"kind"`
	Name         string    `json:"name" db:"name"`
	ProductTitle string    `json:"product_title,omitempty" db:"product_title"`
	ObjectKey    string    `json:"object_key" db:"object_key"`
	ImageURL     string    `json:"image_url" db:"image_url"`
	Description  string    `json:"description,omitempty" db:"description"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}
