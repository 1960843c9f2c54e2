package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/cheatloop/storefront/internal/domain"
	"github.com/cheatloop/storefront/internal/service/intents"
)

// IntentRepo implements intents.Repository against PostgreSQL.
type IntentRepo struct{ db *sql.DB }

// NewIntentRepo creates a Postgres-backed intent repository.
func NewIntentRepo(db *sql.DB) *IntentRepo { return &IntentRepo{db: db} }

const intentColumns = `id, product_id, product_title, email, phone_number, country, created_at`

func scanIntent(row interface{ Scan(...any) error }) (*domain.PurchaseIntent, error) {
	var in domain.PurchaseIntent
	err := row.Scan(&in.ID, &in.ProductID, &in.ProductTitle, &in.Email,
		&in.PhoneNumber, &in.Country, &in.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &in, nil
}

func (r *IntentRepo) Insert(ctx context.Context, intent *domain.PurchaseIntent) error {
	intent.ID = uuid.New().String()
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO purchase_intents (id, product_id, product_title, email, phone_number, country)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`, intent.ID, intent.ProductID, intent.ProductTitle, intent.Email,
		intent.PhoneNumber, intent.Country).Scan(&intent.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert intent: %w", err)
	}
	return nil
}

func (r *IntentRepo) Get(ctx context.Context, id string) (*domain.PurchaseIntent, error) {
	in, err := scanIntent(r.db.QueryRowContext(ctx,
		`SELECT `+intentColumns+` FROM purchase_intents WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, intents.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get intent: %w", err)
	}
	return in, nil
}

func (r *IntentRepo) List(ctx context.Context, limit int) ([]domain.PurchaseIntent, error) {
	query := `SELECT ` + intentColumns + ` FROM purchase_intents ORDER BY created_at DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT $1`
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list intents: %w", err)
	}
	defer rows.Close()

	var out []domain.PurchaseIntent
	for rows.Next() {
		in, err := scanIntent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan intent: %w", err)
		}
		out = append(out, *in)
	}
	return out, rows.Err()
}

func (r *IntentRepo) DeleteMany(ctx context.Context, ids []string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM purchase_intents WHERE id = ANY($1)`, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("delete intents: %w", err)
	}
	return nil
}
