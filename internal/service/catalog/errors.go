package catalog

import "errors"

// Sentinel errors for the catalog service layer.
var (
	ErrProductNotFound  = errors.New("product not found")
	ErrCategoryNotFound = errors.New("category not found")
	ErrInvalid          = errors.New("invalid request")
)
