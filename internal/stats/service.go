package stats

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// TrendDays is the length of the daily sales trend window.
const TrendDays = 7

// ProductStats is the per-product dashboard row.
type ProductStats struct {
	ProductID string  `json:"product_id"`
	Title     string  `json:"title"`
	Total     int     `json:"total"`
	Used      int     `json:"used"`
	Available int     `json:"available"`
	Revenue   string  `json:"revenue"` // decimal string, estimate only
	FillRate  float64 `json:"fill_rate"`
}

// TrendPoint is one day of the sales trend.
type TrendPoint struct {
	Date    string `json:"date"` // YYYY-MM-DD
	Count   int    `json:"count"`
	Revenue string `json:"revenue"`
}

// Overview is the full stats dashboard payload.
type Overview struct {
	Products       []ProductStats `json:"products"`
	TotalRevenue   string         `json:"total_revenue"`
	TotalUsed      int            `json:"total_used"`
	TotalAvailable int            `json:"total_available"`
	SalesTrend     []TrendPoint   `json:"sales_trend"`
}

// Service computes inventory statistics and revenue estimates.
type Service struct {
	repo Repository
	book *PriceBook
}

// NewService creates a stats service over the given aggregates repository.
func NewService(repo Repository, book *PriceBook) *Service {
	if book == nil {
		book = NewPriceBook(nil)
	}
	return &Service{repo: repo, book: book}
}

// Available returns the live count of unused keys for a product.
func (s *Service) Available(ctx context.Context, productID string) (int, error) {
	return s.repo.AvailableCount(ctx, productID)
}

// UsedInPeriod returns how many keys for a product were redeemed in [start, end).
func (s *Service) UsedInPeriod(ctx context.Context, productID string, start, end time.Time) (int, error) {
	return s.repo.UsedInPeriod(ctx, productID, start, end)
}

// GetOverview assembles the dashboard: per-product counts and revenue, grand
// totals, and the last-7-day sales trend.
func (s *Service) GetOverview(ctx context.Context) (*Overview, error) {
	return s.overviewAt(ctx, time.Now().UTC())
}

func (s *Service) overviewAt(ctx context.Context, now time.Time) (*Overview, error) {
	totals, err := s.repo.ProductTotals(ctx)
	if err != nil {
		return nil, fmt.Errorf("product totals: %w", err)
	}

	ov := &Overview{Products: make([]ProductStats, 0, len(totals))}
	totalRevenue := decimal.Zero
	unitPrice := make(map[string]decimal.Decimal, len(totals))

	for _, t := range totals {
		price := s.book.Net(t.Title, t.ListedPrice)
		unitPrice[t.ProductID] = price
		revenue := price.Mul(decimal.NewFromInt(int64(t.Used)))

		fillRate := 0.0
		if t.Total > 0 {
			fillRate = float64(t.Used) / float64(t.Total) * 100
		}
		ov.Products = append(ov.Products, ProductStats{
			ProductID: t.ProductID,
			Title:     t.Title,
			Total:     t.Total,
			Used:      t.Used,
			Available: t.Total - t.Used,
			Revenue:   revenue.StringFixed(2),
			FillRate:  fillRate,
		})
		ov.TotalUsed += t.Used
		ov.TotalAvailable += t.Total - t.Used
		totalRevenue = totalRevenue.Add(revenue)
	}
	ov.TotalRevenue = totalRevenue.StringFixed(2)

	trend, err := s.salesTrend(ctx, now, unitPrice)
	if err != nil {
		return nil, err
	}
	ov.SalesTrend = trend
	return ov, nil
}

// salesTrend buckets redemptions of the last TrendDays days (today included)
// by calendar day, pricing each product at its estimated net unit price.
func (s *Service) salesTrend(ctx context.Context, now time.Time, unitPrice map[string]decimal.Decimal) ([]TrendPoint, error) {
	today := now.Truncate(24 * time.Hour)
	start := today.AddDate(0, 0, -(TrendDays - 1))
	end := today.AddDate(0, 0, 1)

	daily, err := s.repo.DailyUsed(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("daily used: %w", err)
	}

	counts := make(map[string]int, TrendDays)
	revenues := make(map[string]decimal.Decimal, TrendDays)
	for _, d := range daily {
		day := d.Day.Format("2006-01-02")
		counts[day] += d.Count
		price, ok := unitPrice[d.ProductID]
		if !ok {
			continue // product deleted since redemption, no price to estimate
		}
		revenues[day] = revenues[day].Add(price.Mul(decimal.NewFromInt(int64(d.Count))))
	}

	trend := make([]TrendPoint, 0, TrendDays)
	for i := 0; i < TrendDays; i++ {
		day := start.AddDate(0, 0, i).Format("2006-01-02")
		trend = append(trend, TrendPoint{
			Date:    day,
			Count:   counts[day],
			Revenue: revenues[day].StringFixed(2),
		})
	}
	return trend, nil
}
