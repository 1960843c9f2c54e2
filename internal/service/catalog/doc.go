// Package catalog manages the product catalog, its categories, and the
// site-settings key/value store backing the storefront copy.
package catalog
