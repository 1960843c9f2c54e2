package intents

import (
	"context"
	"fmt"
	"strings"

	"github.com/cheatloop/storefront/internal/domain"
)

// Service implements purchase-intent business logic.
type Service struct {
	repo Repository
}

// NewService creates an intent service backed by the given repository.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Record stores a new purchase intent from the storefront checkout flow.
func (s *Service) Record(ctx context.Context, intent *domain.PurchaseIntent) error {
	intent.Email = strings.ToLower(strings.TrimSpace(intent.Email))
	intent.PhoneNumber = strings.TrimSpace(intent.PhoneNumber)
	if intent.ProductID == "" {
		return fmt.Errorf("product id is required")
	}
	if intent.Email == "" {
		return fmt.Errorf("email is required")
	}
	return s.repo.Insert(ctx, intent)
}

// Get returns a single intent by id.
func (s *Service) Get(ctx context.Context, id string) (*domain.PurchaseIntent, error) {
	return s.repo.Get(ctx, id)
}

// List returns intents newest first.
func (s *Service) List(ctx context.Context, limit int) ([]domain.PurchaseIntent, error) {
	return s.repo.List(ctx, limit)
}

// DeleteMany removes processed intents from the admin queue.
func (s *Service) DeleteMany(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	return s.repo.DeleteMany(ctx, ids)
}
