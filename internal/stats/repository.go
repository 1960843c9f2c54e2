package stats

import (
	"context"
	"time"
)

// ProductKeyCount is the raw per-product inventory aggregate.
type ProductKeyCount struct {
	ProductID   string
	Title       string
	ListedPrice float64
	Total       int
	Used        int
}

// DailySales is the number of keys redeemed for one product on one day.
type DailySales struct {
	Day       time.Time
	ProductID string
	Count     int
}

// Repository defines the read-only aggregates the stats service needs.
// Counts are always recomputed from live rows, never cached.
type Repository interface {
	// AvailableCount counts unused keys for a product.
	AvailableCount(ctx context.Context, productID string) (int, error)

	// UsedInPeriod counts keys for a product redeemed in [start, end).
	UsedInPeriod(ctx context.Context, productID string, start, end time.Time) (int, error)

	// ProductTotals returns total/used counts for every product, including
	// products with no keys.
	ProductTotals(ctx context.Context) ([]ProductKeyCount, error)

	// DailyUsed returns per-product redemption counts grouped by day for
	// used_at in [start, end).
	DailyUsed(ctx context.Context, start, end time.Time) ([]DailySales, error)
}
