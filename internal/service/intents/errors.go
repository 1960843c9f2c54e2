package intents

import "errors"

// ErrNotFound means the referenced intent id no longer exists (e.g. deleted
// by another admin session).
var ErrNotFound = errors.New("purchase intent not found")
