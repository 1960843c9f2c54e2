package keys

import "time"

// SubscriptionDays is the fixed validity window of a redeemed key.
const SubscriptionDays = 30

// ExpiryStatus classifies a redeemed key's subscription window.
type ExpiryStatus string

const (
	StatusActive  ExpiryStatus = "active"
	StatusExpired ExpiryStatus = "expired"
)

// ComputeExpiry returns when the subscription bought with a key redeemed at
// usedAt runs out. Expiry is derived, never stored.
func ComputeExpiry(usedAt time.Time) time.Time {
	return usedAt.AddDate(0, 0, SubscriptionDays)
}

// Status classifies a key redeemed at usedAt as of now. A key is expired the
// instant now reaches the expiry, not after it.
func Status(usedAt, now time.Time) ExpiryStatus {
	if now.Before(ComputeExpiry(usedAt)) {
		return StatusActive
	}
	return StatusExpired
}

// ExpiringWithin reports whether a key redeemed at usedAt is still active but
// will expire within d of now. Used for the 3- and 7-day warning buckets on
// the dashboard; the thresholds are display policy, only the expiry formula
// is a contract.
func ExpiringWithin(usedAt, now time.Time, d time.Duration) bool {
	expiry := ComputeExpiry(usedAt)
	if !now.Before(expiry) {
		return false
	}
	return expiry.Sub(now) <= d
}
