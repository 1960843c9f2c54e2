// Package domain defines the core types of the storefront: the catalog
// (categories, products, settings), purchase intents, and license keys.
//
// Everything here is a plain value object. No database handles, no HTTP
// types, no imports from other internal/ packages. Validation methods and
// derived-state helpers (key expiry, net pricing inputs) are fine because
// they are pure functions on the type; anything that talks to the outside
// world belongs in a service.
package domain
