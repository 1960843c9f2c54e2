package catalog

import (
	"context"

	"github.com/cheatloop/storefront/internal/domain"
)

// Repository defines the data access contract for the catalog.
type Repository interface {
	// ListProducts returns products oldest first. When includeHidden is
	// false, hidden products are filtered out (storefront view).
	ListProducts(ctx context.Context, includeHidden bool) ([]domain.Product, error)

	// GetProduct returns one product or ErrProductNotFound.
	GetProduct(ctx context.Context, id string) (*domain.Product, error)

	// InsertProduct stores a new product, filling id and timestamps.
	InsertProduct(ctx context.Context, p *domain.Product) error

	// UpdateProduct rewrites an existing product. ErrProductNotFound if gone.
	UpdateProduct(ctx context.Context, p *domain.Product) error

	// DeleteProduct hard-deletes a product.
	DeleteProduct(ctx context.Context, id string) error

	// ListCategories returns all categories oldest first.
	ListCategories(ctx context.Context) ([]domain.Category, error)

	// InsertCategory stores a new category, filling id and creation time.
	InsertCategory(ctx context.Context, c *domain.Category) error

	// DeleteCategory hard-deletes a category.
	DeleteCategory(ctx context.Context, id string) error

	// GetSettings returns the whole site-settings table as a map.
	GetSettings(ctx context.Context) (map[string]string, error)

	// UpsertSettings writes settings, inserting or overwriting per key.
	UpsertSettings(ctx context.Context, settings []domain.SiteSetting) error
}
