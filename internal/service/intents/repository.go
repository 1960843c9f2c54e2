package intents

import (
	"context"

	"github.com/cheatloop/storefront/internal/domain"
)

// Repository defines the data access contract for purchase intents.
type Repository interface {
	// Insert stores a new intent and fills in its id and creation time.
	Insert(ctx context.Context, intent *domain.PurchaseIntent) error

	// Get returns a single intent by id, or ErrNotFound.
	Get(ctx context.Context, id string) (*domain.PurchaseIntent, error)

	// List returns intents newest first. limit <= 0 means no limit.
	List(ctx context.Context, limit int) ([]domain.PurchaseIntent, error)

	// DeleteMany removes a batch of intents. Missing ids are skipped.
	DeleteMany(ctx context.Context, ids []string) error
}
