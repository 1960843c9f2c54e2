// Package storage manages the shop's two image libraries: proof-of-purchase
// screenshots shown at checkout and customer winning photos shown on the
// storefront. Image bytes live in object storage; metadata rows live in
// Postgres.
package storage

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/cheatloop/storefront/internal/domain"
	"github.com/cheatloop/storefront/internal/pkg/logger"
)

// ErrImageNotFound is returned when an image record does not exist.
var ErrImageNotFound = errors.New("image not found")

// Repository defines the metadata side of the image library.
type Repository interface {
	InsertImage(ctx context.Context, img *domain.ShopImage) error
	GetImage(ctx context.Context, id string) (*domain.ShopImage, error)
	ListImages(ctx context.Context, kind domain.ImageKind) ([]domain.ShopImage, error)
	DeleteImage(ctx context.Context, id string) error
}

// ImageService coordinates object uploads with their metadata rows.
type ImageService struct {
	repo  Repository
	store ObjectStore
}

// NewImageService creates an image service.
func NewImageService(repo Repository, store ObjectStore) *ImageService {
	return &ImageService{repo: repo, store: store}
}

// UploadInput describes one image to store.
type UploadInput struct {
	Kind         domain.ImageKind
	Name         string
	ProductTitle string
	Description  string
	ContentType  string
	Data         []byte
}

// Upload stores the image bytes and records the metadata row. The object key
// is namespaced by kind so the two libraries never collide.
func (s *ImageService) Upload(ctx context.Context, in UploadInput) (*domain.ShopImage, error) {
	if in.Kind != domain.ImagePurchase && in.Kind != domain.ImageWinning {
		return nil, fmt.Errorf("unknown image kind %q", in.Kind)
	}
	if len(in.Data) == 0 {
		return nil, fmt.Errorf("image data is empty")
	}
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return nil, fmt.Errorf("image name is required")
	}

	key := objectKey(in.Kind, in.Name)
	url, err := s.store.Put(ctx, key, in.ContentType, in.Data)
	if err != nil {
		return nil, err
	}

	img := &domain.ShopImage{
		Kind:         in.Kind,
		Name:         in.Name,
		ProductTitle: strings.TrimSpace(in.ProductTitle),
		ObjectKey:    key,
		ImageURL:     url,
		Description:  strings.TrimSpace(in.Description),
	}
	if err := s.repo.InsertImage(ctx, img); err != nil {
		// Best effort: don't strand the uploaded object when the row fails.
		if delErr := s.store.Delete(ctx, key); delErr != nil {
			logger.Warn("orphaned image object", "key", key, "error", delErr)
		}
		return nil, err
	}
	return img, nil
}

// List returns all images of one kind, newest first.
func (s *ImageService) List(ctx context.Context, kind domain.ImageKind) ([]domain.ShopImage, error) {
	return s.repo.ListImages(ctx, kind)
}

// Delete removes the stored object first, then the metadata row. If the
// object delete fails the row survives, so the image stays visible instead
// of dangling a dead URL.
func (s *ImageService) Delete(ctx context.Context, id string) error {
	img, err := s.repo.GetImage(ctx, id)
	if err != nil {
		return err
	}
	if err := s.store.Delete(ctx, img.ObjectKey); err != nil {
		return err
	}
	return s.repo.DeleteImage(ctx, id)
}

func objectKey(kind domain.ImageKind, name string) string {
	ext := path.Ext(name)
	return fmt.Sprintf("%s/%d-%s%s", kind, time.Now().Unix(), uuid.New().String()[:8], ext)
}
