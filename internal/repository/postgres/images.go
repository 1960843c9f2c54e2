package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/cheatloop/storefront/internal/domain"
	"github.com/cheatloop/storefront/internal/storage"
)

// ImageRepo implements storage.Repository against PostgreSQL.
type ImageRepo struct{ db *sql.DB }

// NewImageRepo creates a Postgres-backed image metadata repository.
func NewImageRepo(db *sql.DB) *ImageRepo { return &ImageRepo{db: db} }

const imageColumns = `id, kind, name, product_title, object_key, image_url, description, created_at`

func scanImage(row interface{ Scan(...any) error }) (*domain.ShopImage, error) {
	var img domain.ShopImage
	err := row.Scan(&img.ID, &img.Kind, &img.Name, &img.ProductTitle,
		&img.ObjectKey, &img.ImageURL, &img.Description, &img.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &img, nil
}

func (r *ImageRepo) InsertImage(ctx context.Context, img *domain.ShopImage) error {
	img.ID = uuid.New().String()
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO shop_images (id, kind, name, product_title, object_key, image_url, description)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at
	`, img.ID, img.Kind, img.Name, img.ProductTitle, img.ObjectKey,
		img.ImageURL, img.Description).Scan(&img.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert image: %w", err)
	}
	return nil
}

func (r *ImageRepo) GetImage(ctx context.Context, id string) (*domain.ShopImage, error) {
	img, err := scanImage(r.db.QueryRowContext(ctx,
		`SELECT `+imageColumns+` FROM shop_images WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrImageNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get image: %w", err)
	}
	return img, nil
}

func (r *ImageRepo) ListImages(ctx context.Context, kind domain.ImageKind) ([]domain.ShopImage, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+imageColumns+` FROM shop_images WHERE kind = $1 ORDER BY created_at DESC`, kind)
	if err != nil {
		return nil, fmt.Errorf("list images: %w", err)
	}
	defer rows.Close()

	var out []domain.ShopImage
	for rows.Next() {
		img, err := scanImage(rows)
		if err != nil {
			return nil, fmt.Errorf("scan image: %w", err)
		}
		out = append(out, *img)
	}
	return out, rows.Err()
}

func (r *ImageRepo) DeleteImage(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM shop_images WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete image: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return storage.ErrImageNotFound
	}
	return nil
}
