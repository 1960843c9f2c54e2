package keys

import "errors"

// Sentinel errors for the key redemption service. Anything else returned by
// a repository is treated as a transient persistence failure.
var (
	// ErrOutOfStock means no available key exists for the product. Recoverable
	// by stocking more inventory; callers must surface it distinctly from
	// network errors.
	ErrOutOfStock = errors.New("no available keys for product")

	// ErrAlreadyUsed means the key value is already redeemed (or lost an
	// insert race to a concurrent redemption of the same value).
	ErrAlreadyUsed = errors.New("key already used")

	// ErrNotFound means the referenced key id no longer exists.
	ErrNotFound = errors.New("key not found")

	// ErrInvalid marks caller mistakes (missing product id, empty email) so
	// the API layer can answer 400 instead of 500.
	ErrInvalid = errors.New("invalid request")
)
