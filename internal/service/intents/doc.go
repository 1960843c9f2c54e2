// Package intents manages purchase-intent records: a customer's pre-payment
// declaration of interest in a product. The redemption manager only references
// intents by id; this package owns their storage and admin-facing listing.
package intents
