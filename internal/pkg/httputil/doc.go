// Package httputil provides the JSON response helpers shared by all API
// handlers.
//
// Handlers go through these helpers rather than writing to the
// http.ResponseWriter directly so that every endpoint behaves the same:
// success payloads are written as plain JSON with the appropriate 2xx
// status, and failures use the ErrorResponse envelope
// ({"error": ..., "code": ...}) with a stable machine-readable code where
// clients need to branch on the cause.
package httputil
