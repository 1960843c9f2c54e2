package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/cheatloop/storefront/internal/domain"
	"github.com/cheatloop/storefront/internal/service/keys"
)

// KeyRepo implements keys.Repository against PostgreSQL.
//
// The unique index on product_keys.key_value is the safety net for racing
// inserts; claims are a single conditional UPDATE so concurrent callers can
// never be handed the same row.
type KeyRepo struct{ db *sql.DB }

// NewKeyRepo creates a Postgres-backed key repository.
func NewKeyRepo(db *sql.DB) *KeyRepo { return &KeyRepo{db: db} }

const keyColumns = `id, product_id, key_value, is_used, used_by_email, used_at, purchase_intent_id, created_at`

func scanKey(row interface{ Scan(...any) error }) (*domain.ProductKey, error) {
	var k domain.ProductKey
	err := row.Scan(&k.ID, &k.ProductID, &k.KeyValue, &k.IsUsed,
		&k.UsedByEmail, &k.UsedAt, &k.PurchaseIntentID, &k.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &k, nil
}

func (r *KeyRepo) ClaimAvailable(ctx context.Context, productID, email, intentID string) (string, error) {
	// One statement: pick any available row for the product, stamp it, hand
	// back the value. SKIP LOCKED keeps concurrent claimants off each
	// other's rows instead of serializing behind a lock.
	var keyValue string
	err := r.db.QueryRowContext(ctx, `
		UPDATE product_keys
		SET is_used = true, used_by_email = $2, used_at = NOW(), purchase_intent_id = $3
		WHERE id = (
			SELECT id FROM product_keys
			WHERE product_id = $1 AND is_used = false
			ORDER BY created_at
			LIMIT 1
			FOR UPDATE SKIP LOCKED
		)
		RETURNING key_value
	`, productID, email, intentID).Scan(&keyValue)
	if errors.Is(err, sql.ErrNoRows) {
		return "", keys.ErrOutOfStock
	}
	if err != nil {
		return "", fmt.Errorf("claim key: %w", err)
	}
	return keyValue, nil
}

func (r *KeyRepo) UseManual(ctx context.Context, productID, keyValue, email, intentID string) (*domain.ProductKey, error) {
	existing, err := scanKey(r.db.QueryRowContext(ctx,
		`SELECT `+keyColumns+` FROM product_keys WHERE key_value = $1`, keyValue))
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("find key: %w", err)
	}

	if existing != nil {
		if existing.IsUsed {
			return nil, keys.ErrAlreadyUsed
		}
		// Guarded by is_used = false so a concurrent redemption of the same
		// row makes this a no-op instead of an overwrite.
		updated, err := scanKey(r.db.QueryRowContext(ctx, `
			UPDATE product_keys
			SET is_used = true, used_by_email = $2, used_at = NOW(), purchase_intent_id = $3
			WHERE id = $1 AND is_used = false
			RETURNING `+keyColumns, existing.ID, email, intentID))
		if errors.Is(err, sql.ErrNoRows) {
			return nil, keys.ErrAlreadyUsed
		}
		if err != nil {
			return nil, fmt.Errorf("use key: %w", err)
		}
		return updated, nil
	}

	// Unknown value: insert it directly in the used state. If a concurrent
	// caller inserts the same value first, the unique index rejects ours.
	inserted, err := scanKey(r.db.QueryRowContext(ctx, `
		INSERT INTO product_keys (id, product_id, key_value, is_used, used_by_email, used_at, purchase_intent_id)
		VALUES ($1, $2, $3, true, $4, NOW(), $5)
		RETURNING `+keyColumns, uuid.New().String(), productID, keyValue, email, intentID))
	if isUniqueViolation(err) {
		return nil, keys.ErrAlreadyUsed
	}
	if err != nil {
		return nil, fmt.Errorf("insert used key: %w", err)
	}
	return inserted, nil
}

func (r *KeyRepo) Insert(ctx context.Context, productID string, values []string) (int, error) {
	if len(values) == 0 {
		return 0, nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin insert keys: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO product_keys (id, product_id, key_value)
		VALUES ($1, $2, $3)
		ON CONFLICT (key_value) DO NOTHING
	`)
	if err != nil {
		return 0, fmt.Errorf("prepare insert keys: %w", err)
	}
	defer stmt.Close()

	inserted := 0
	for _, v := range values {
		res, err := stmt.ExecContext(ctx, uuid.New().String(), productID, v)
		if err != nil {
			return 0, fmt.Errorf("insert key: %w", err)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			inserted++
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit insert keys: %w", err)
	}
	return inserted, nil
}

func (r *KeyRepo) Return(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE product_keys
		SET is_used = false, used_by_email = NULL, used_at = NULL, purchase_intent_id = NULL
		WHERE id = $1
	`, id)
	if err != nil {
		return fmt.Errorf("return key: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return keys.ErrNotFound
	}
	return nil
}

func (r *KeyRepo) ReturnMany(ctx context.Context, ids []string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE product_keys
		SET is_used = false, used_by_email = NULL, used_at = NULL, purchase_intent_id = NULL
		WHERE id = ANY($1)
	`, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("return keys: %w", err)
	}
	return nil
}

func (r *KeyRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM product_keys WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete key: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return keys.ErrNotFound
	}
	return nil
}

func (r *KeyRepo) DeleteMany(ctx context.Context, ids []string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM product_keys WHERE id = ANY($1)`, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("delete keys: %w", err)
	}
	return nil
}

func (r *KeyRepo) List(ctx context.Context, f keys.Filter) ([]domain.ProductKey, error) {
	query := `SELECT ` + keyColumns + ` FROM product_keys WHERE 1=1`
	args := []any{}
	argNum := 1

	if f.ProductID != "" {
		query += fmt.Sprintf(" AND product_id = $%d", argNum)
		args = append(args, f.ProductID)
		argNum++
	}
	if f.IsUsed != nil {
		query += fmt.Sprintf(" AND is_used = $%d", argNum)
		args = append(args, *f.IsUsed)
		argNum++
	}
	query += " ORDER BY created_at DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list keys: %w", err)
	}
	defer rows.Close()

	var out []domain.ProductKey
	for rows.Next() {
		k, err := scanKey(rows)
		if err != nil {
			return nil, fmt.Errorf("scan key: %w", err)
		}
		out = append(out, *k)
	}
	return out, rows.Err()
}

// isUniqueViolation reports whether err is a Postgres unique_violation.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
