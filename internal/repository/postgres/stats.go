package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/cheatloop/storefront/internal/stats"
)

// StatsRepo implements stats.Repository against PostgreSQL.
//
// Everything here is aggregation over live product_keys rows; none of the
// counts are materialized anywhere.
type StatsRepo struct{ db *sql.DB }

// NewStatsRepo creates a Postgres-backed stats repository.
func NewStatsRepo(db *sql.DB) *StatsRepo { return &StatsRepo{db: db} }

func (r *StatsRepo) AvailableCount(ctx context.Context, productID string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM product_keys WHERE product_id = $1 AND is_used = false`,
		productID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count available keys: %w", err)
	}
	return n, nil
}

func (r *StatsRepo) UsedInPeriod(ctx context.Context, productID string, start, end time.Time) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM product_keys
		WHERE product_id = $1 AND is_used = true AND used_at >= $2 AND used_at < $3
	`, productID, start, end).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count used keys: %w", err)
	}
	return n, nil
}

func (r *StatsRepo) ProductTotals(ctx context.Context) ([]stats.ProductKeyCount, error) {
	// LEFT JOIN so keyless products still show up with zero counts.
	rows, err := r.db.QueryContext(ctx, `
		SELECT p.id, p.title, p.price,
		       COUNT(k.id) AS total,
		       COUNT(k.id) FILTER (WHERE k.is_used) AS used
		FROM products p
		LEFT JOIN product_keys k ON k.product_id = p.id
		GROUP BY p.id, p.title, p.price
		ORDER BY p.title
	`)
	if err != nil {
		return nil, fmt.Errorf("product totals: %w", err)
	}
	defer rows.Close()

	var out []stats.ProductKeyCount
	for rows.Next() {
		var c stats.ProductKeyCount
		if err := rows.Scan(&c.ProductID, &c.Title, &c.ListedPrice, &c.Total, &c.Used); err != nil {
			return nil, fmt.Errorf("scan product totals: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *StatsRepo) DailyUsed(ctx context.Context, start, end time.Time) ([]stats.DailySales, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT date_trunc('day', used_at) AS day, product_id, COUNT(*)
		FROM product_keys
		WHERE is_used = true AND used_at >= $1 AND used_at < $2
		GROUP BY day, product_id
		ORDER BY day
	`, start, end)
	if err != nil {
		return nil, fmt.Errorf("daily sales: %w", err)
	}
	defer rows.Close()

	var out []stats.DailySales
	for rows.Next() {
		var d stats.DailySales
		if err := rows.Scan(&d.Day, &d.ProductID, &d.Count); err != nil {
			return nil, fmt.Errorf("scan daily sales: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}
