package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/cheatloop/storefront/internal/domain"
	"github.com/cheatloop/storefront/internal/service/catalog"
)

// CatalogRepo implements catalog.Repository against PostgreSQL.
type CatalogRepo struct{ db *sql.DB }

// NewCatalogRepo creates a Postgres-backed catalog repository.
func NewCatalogRepo(db *sql.DB) *CatalogRepo { return &CatalogRepo{db: db} }

const productColumns = `id, category_id, title, price, description, features, buy_link, image_url, video_link, is_popular, is_hidden, created_at, updated_at`

func scanProduct(row interface{ Scan(...any) error }) (*domain.Product, error) {
	var p domain.Product
	err := row.Scan(&p.ID, &p.CategoryID, &p.Title, &p.Price, &p.Description,
		pq.Array(&p.Features), &p.BuyLink, &p.ImageURL, &p.VideoLink,
		&p.IsPopular, &p.IsHidden, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *CatalogRepo) ListProducts(ctx context.Context, includeHidden bool) ([]domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products`
	if !includeHidden {
		query += ` WHERE is_hidden = false`
	}
	query += ` ORDER BY created_at`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var out []domain.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

func (r *CatalogRepo) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	p, err := scanProduct(r.db.QueryRowContext(ctx,
		`SELECT `+productColumns+` FROM products WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, catalog.ErrProductNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

func (r *CatalogRepo) InsertProduct(ctx context.Context, p *domain.Product) error {
	p.ID = uuid.New().String()
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO products (id, category_id, title, price, description, features, buy_link, image_url, video_link, is_popular, is_hidden)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING created_at, updated_at
	`, p.ID, p.CategoryID, p.Title, p.Price, p.Description, pq.Array(p.Features),
		p.BuyLink, p.ImageURL, p.VideoLink, p.IsPopular, p.IsHidden).
		Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

func (r *CatalogRepo) UpdateProduct(ctx context.Context, p *domain.Product) error {
	err := r.db.QueryRowContext(ctx, `
		UPDATE products
		SET category_id = $2, title = $3, price = $4, description = $5, features = $6,
		    buy_link = $7, image_url = $8, video_link = $9, is_popular = $10,
		    is_hidden = $11, updated_at = NOW()
		WHERE id = $1
		RETURNING created_at, updated_at
	`, p.ID, p.CategoryID, p.Title, p.Price, p.Description, pq.Array(p.Features),
		p.BuyLink, p.ImageURL, p.VideoLink, p.IsPopular, p.IsHidden).
		Scan(&p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return catalog.ErrProductNotFound
	}
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	return nil
}

func (r *CatalogRepo) DeleteProduct(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return catalog.ErrProductNotFound
	}
	return nil
}

func (r *CatalogRepo) ListCategories(ctx context.Context) ([]domain.Category, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, slug, created_at FROM categories ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var out []domain.Category
	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Slug, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *CatalogRepo) InsertCategory(ctx context.Context, c *domain.Category) error {
	c.ID = uuid.New().String()
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO categories (id, name, slug)
		VALUES ($1, $2, $3)
		RETURNING created_at
	`, c.ID, c.Name, c.Slug).Scan(&c.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert category: %w", err)
	}
	return nil
}

func (r *CatalogRepo) DeleteCategory(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return catalog.ErrCategoryNotFound
	}
	return nil
}

func (r *CatalogRepo) GetSettings(ctx context.Context) (map[string]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT key, value FROM site_settings`)
	if err != nil {
		return nil, fmt.Errorf("get settings: %w", err)
	}
	defer rows.Close()

	out := make(map[string]string)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, fmt.Errorf("scan setting: %w", err)
		}
		out[k] = v
	}
	return out, rows.Err()
}

func (r *CatalogRepo) UpsertSettings(ctx context.Context, settings []domain.SiteSetting) error {
	if len(settings) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin upsert settings: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO site_settings (key, value)
		VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()
	`)
	if err != nil {
		return fmt.Errorf("prepare upsert settings: %w", err)
	}
	defer stmt.Close()

	for _, s := range settings {
		if _, err := stmt.ExecContext(ctx, s.Key, s.Value); err != nil {
			return fmt.Errorf("upsert setting %q: %w", s.Key, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit upsert settings: %w", err)
	}
	return nil
}
