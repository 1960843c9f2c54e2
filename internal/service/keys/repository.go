package keys

import (
	"context"

	"github.com/cheatloop/storefront/internal/domain"
)

// Repository defines the data access contract for the key inventory.
//
// Implementations must enforce a uniqueness constraint on key_value across
// the whole store and must make ClaimAvailable atomic with respect to
// concurrent claims: two simultaneous callers never receive the same key.
type Repository interface {
	// ClaimAvailable atomically selects one available key for the product,
	// marks it used with the given stamp, and returns its key value.
	// Returns ErrOutOfStock when the product has no available key.
	ClaimAvailable(ctx context.Context, productID, email, intentID string) (string, error)

	// UseManual redeems a specific key value. If the value exists unused it is
	// marked used; if it does not exist it is inserted directly in the used
	// state. Returns ErrAlreadyUsed when the value is already redeemed,
	// including when a concurrent insert of the same value wins the race.
	UseManual(ctx context.Context, productID, keyValue, email, intentID string) (*domain.ProductKey, error)

	// Insert bulk-adds key values for a product, skipping values that collide
	// with existing rows. Returns the number actually inserted.
	Insert(ctx context.Context, productID string, values []string) (int, error)

	// Return resets a key to the available pool. Returns ErrNotFound if the
	// id does not exist; returning an already-available key is a no-op.
	Return(ctx context.Context, id string) error

	// ReturnMany resets a batch of keys. Missing ids are silently skipped.
	ReturnMany(ctx context.Context, ids []string) error

	// Delete hard-deletes a key. Returns ErrNotFound if the id does not exist.
	Delete(ctx context.Context, id string) error

	// DeleteMany hard-deletes a batch of keys.
	DeleteMany(ctx context.Context, ids []string) error

	// List returns keys matching the filter, newest first.
	List(ctx context.Context, f Filter) ([]domain.ProductKey, error)
}

// Filter narrows List results. Nil fields match everything.
type Filter struct {
	ProductID string
	IsUsed    *bool
}
