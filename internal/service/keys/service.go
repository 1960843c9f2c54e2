package keys

import (
	"context"
	"fmt"
	"strings"

	"github.com/cheatloop/storefront/internal/domain"
)

// Service implements key redemption business logic. It is safe for concurrent
// use; all mutation atomicity lives in the repository.
type Service struct {
	repo Repository
}

// NewService creates a key service backed by the given repository.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Claim assigns one available key for the product to the purchase intent and
// returns its value. Which of several available keys is chosen is
// unspecified. Returns ErrOutOfStock when the product has none left.
//
// A claim whose network call times out after the server-side commit may have
// consumed a key the caller never saw; retrying can legitimately consume a
// second one. Operators resolve this through the return operation.
func (s *Service) Claim(ctx context.Context, productID, email, intentID string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if productID == "" {
		return "", fmt.Errorf("%w: product id is required", ErrInvalid)
	}
	if email == "" {
		return "", fmt.Errorf("%w: email is required", ErrInvalid)
	}
	if intentID == "" {
		return "", fmt.Errorf("%w: intent id is required", ErrInvalid)
	}
	return s.repo.ClaimAvailable(ctx, productID, email, intentID)
}

// UseManual redeems a specific key value for the purchase intent. Values
// issued outside the normal inventory are inserted on the fly, already used.
// No format validation is applied to the value on purpose.
func (s *Service) UseManual(ctx context.Context, productID, keyValue, email, intentID string) (*domain.ProductKey, error) {
	keyValue = strings.TrimSpace(keyValue)
	email = strings.ToLower(strings.TrimSpace(email))
	if productID == "" {
		return nil, fmt.Errorf("%w: product id is required", ErrInvalid)
	}
	if keyValue == "" {
		return nil, fmt.Errorf("%w: key value is required", ErrInvalid)
	}
	if email == "" {
		return nil, fmt.Errorf("%w: email is required", ErrInvalid)
	}
	return s.repo.UseManual(ctx, productID, keyValue, email, intentID)
}

// Add bulk-stocks key values for a product. Values are trimmed, empties
// dropped and duplicates collapsed before insertion; values colliding with
// existing rows are skipped. Returns the number actually inserted so the
// caller can report "N added, M skipped".
func (s *Service) Add(ctx context.Context, productID string, values []string) (int, error) {
	if productID == "" {
		return 0, fmt.Errorf("%w: product id is required", ErrInvalid)
	}

	seen := make(map[string]struct{}, len(values))
	cleaned := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		cleaned = append(cleaned, v)
	}
	if len(cleaned) == 0 {
		return 0, nil
	}
	return s.repo.Insert(ctx, productID, cleaned)
}

// Return puts a used key back in the available pool, clearing its redemption
// stamp. Admin action only; keys never return spontaneously.
func (s *Service) Return(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("%w: key id is required", ErrInvalid)
	}
	return s.repo.Return(ctx, id)
}

// ReturnMany puts a batch of keys back in the available pool.
func (s *Service) ReturnMany(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	return s.repo.ReturnMany(ctx, ids)
}

// Delete hard-deletes a key. There is no soft delete or audit trail.
func (s *Service) Delete(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("%w: key id is required", ErrInvalid)
	}
	return s.repo.Delete(ctx, id)
}

// DeleteMany hard-deletes a batch of keys.
func (s *Service) DeleteMany(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	return s.repo.DeleteMany(ctx, ids)
}

// List returns keys matching the filter, newest first.
func (s *Service) List(ctx context.Context, f Filter) ([]domain.ProductKey, error) {
	return s.repo.List(ctx, f)
}
