package domain

import "time"

// ProductKey is a single license string sold once per unit of inventory.
//
// A key is created available (is_used = false, stamp columns null). Redemption
// marks it used and sets used_by_email, used_at and purchase_intent_id
// together; returning a key clears all three together and makes it claimable
// again. key_value is unique across the whole store, not per product.
type ProductKey struct {
	ID               string     `json:"id" db:"id"`
	ProductID        string     `json:"product_id" db:"product_id"`
	KeyValue         string     `json:"key_value" db:"key_value"`
	IsUsed           bool       `json:"is_used" db:"is_used"`
	UsedByEmail      *string    `json:"used_by_email" db:"used_by_email"`
	UsedAt           *time.Time `json:"used_at" db:"used_at"`
	PurchaseIntentID *string    `json:"purchase_intent_id" db:"purchase_intent_id"`
	CreatedAt        time.Time  `json:"created_at" db:"created_at"`
}

// Available reports whether the key can still be claimed.
func (k ProductKey) Available() bool { return !k.IsUsed }
