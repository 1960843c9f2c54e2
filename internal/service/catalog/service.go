package catalog

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/cheatloop/storefront/internal/domain"
)

// Service implements catalog business logic.
type Service struct {
	repo Repository
}

// NewService creates a catalog service backed by the given repository.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// ListProducts returns the catalog. Admin callers pass includeHidden=true;
// the storefront never sees hidden products.
func (s *Service) ListProducts(ctx context.Context, includeHidden bool) ([]domain.Product, error) {
	return s.repo.ListProducts(ctx, includeHidden)
}

// GetProduct returns one product by id.
func (s *Service) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	return s.repo.GetProduct(ctx, id)
}

// AddProduct stores a new product.
func (s *Service) AddProduct(ctx context.Context, p *domain.Product) error {
	p.Title = strings.TrimSpace(p.Title)
	if p.Title == "" {
		return fmt.Errorf("%w: title is required", ErrInvalid)
	}
	if p.Price < 0 {
		return fmt.Errorf("%w: price must not be negative", ErrInvalid)
	}
	return s.repo.InsertProduct(ctx, p)
}

// UpdateProduct rewrites an existing product.
func (s *Service) UpdateProduct(ctx context.Context, p *domain.Product) error {
	if p.ID == "" {
		return fmt.Errorf("%w: product id is required", ErrInvalid)
	}
	p.Title = strings.TrimSpace(p.Title)
	if p.Title == "" {
		return fmt.Errorf("%w: title is required", ErrInvalid)
	}
	return s.repo.UpdateProduct(ctx, p)
}

// DeleteProduct removes a product from the catalog. Its keys cascade away
// with it at the schema level.
func (s *Service) DeleteProduct(ctx context.Context, id string) error {
	return s.repo.DeleteProduct(ctx, id)
}

// ListCategories returns all categories.
func (s *Service) ListCategories(ctx context.Context) ([]domain.Category, error) {
	return s.repo.ListCategories(ctx)
}

// AddCategory creates a category, deriving its slug from the name.
func (s *Service) AddCategory(ctx context.Context, name string) (*domain.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalid)
	}
	c := &domain.Category{Name: name, Slug: Slugify(name)}
	if err := s.repo.InsertCategory(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// DeleteCategory removes a category.
func (s *Service) DeleteCategory(ctx context.Context, id string) error {
	return s.repo.DeleteCategory(ctx, id)
}

// GetSettings returns all site settings as a key/value map.
func (s *Service) GetSettings(ctx context.Context) (map[string]string, error) {
	return s.repo.GetSettings(ctx)
}

// UpdateSettings upserts the given settings.
func (s *Service) UpdateSettings(ctx context.Context, settings []domain.SiteSetting) error {
	for _, st := range settings {
		if st.Key == "" {
			return fmt.Errorf("%w: setting key must not be empty", ErrInvalid)
		}
	}
	return s.repo.UpsertSettings(ctx, settings)
}

var slugStrip = regexp.MustCompile(`[^a-z0-9-]`)

// Slugify turns a display name into a url-safe slug: lowercase, spaces to
// hyphens, everything outside [a-z0-9-] dropped.
func Slugify(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = strings.Join(strings.Fields(s), "-")
	return slugStrip.ReplaceAllString(s, "")
}
