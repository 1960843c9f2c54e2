package postgres

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"

	"github.com/cheatloop/storefront/internal/service/keys"
)

func setupTestDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	return db, mock, func() { db.Close() }
}

func TestKeyRepoClaimAvailable(t *testing.T) {
	db, mock, cleanup := setupTestDB(t)
	defer cleanup()
	repo := NewKeyRepo(db)

	mock.ExpectQuery(`UPDATE product_keys`).
		WithArgs("prod-1", "buyer@example.com", "intent-1").
		WillReturnRows(sqlmock.NewRows([]string{"key_value"}).AddRow("AAA-BBB"))

	got, err := repo.ClaimAvailable(context.Background(), "prod-1", "buyer@example.com", "intent-1")
	if err != nil {
		t.Fatalf("ClaimAvailable() error: %v", err)
	}
	if got != "AAA-BBB" {
		t.Errorf("ClaimAvailable() = %q, want %q", got, "AAA-BBB")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestKeyRepoClaimAvailableOutOfStock(t *testing.T) {
	db, mock, cleanup := setupTestDB(t)
	defer cleanup()
	repo := NewKeyRepo(db)

	mock.ExpectQuery(`UPDATE product_keys`).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.ClaimAvailable(context.Background(), "prod-1", "buyer@example.com", "intent-1")
	if !errors.Is(err, keys.ErrOutOfStock) {
		t.Errorf("ClaimAvailable() error = %v, want ErrOutOfStock", err)
	}
}

func TestKeyRepoUseManualAlreadyUsed(t *testing.T) {
	db, mock, cleanup := setupTestDB(t)
	defer cleanup()
	repo := NewKeyRepo(db)

	usedAt := time.Now()
	email := "first@example.com"
	mock.ExpectQuery(`SELECT .+ FROM product_keys WHERE key_value`).
		WithArgs("DUP-KEY").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "product_id", "key_value", "is_used", "used_by_email", "used_at", "purchase_intent_id", "created_at",
		}).AddRow("k1", "prod-1", "DUP-KEY", true, &email, &usedAt, nil, time.Now()))

	_, err := repo.UseManual(context.Background(), "prod-1", "DUP-KEY", "second@example.com", "intent-2")
	if !errors.Is(err, keys.ErrAlreadyUsed) {
		t.Errorf("UseManual() error = %v, want ErrAlreadyUsed", err)
	}
}

func TestKeyRepoUseManualInsertsUnknownValue(t *testing.T) {
	db, mock, cleanup := setupTestDB(t)
	defer cleanup()
	repo := NewKeyRepo(db)

	now := time.Now()
	email := "buyer@example.com"
	intentID := "intent-1"
	mock.ExpectQuery(`SELECT .+ FROM product_keys WHERE key_value`).
		WithArgs("NEW-KEY").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery(`INSERT INTO product_keys`).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "product_id", "key_value", "is_used", "used_by_email", "used_at", "purchase_intent_id", "created_at",
		}).AddRow("k9", "prod-1", "NEW-KEY", true, &email, &now, &intentID, now))

	got, err := repo.UseManual(context.Background(), "prod-1", "NEW-KEY", "buyer@example.com", "intent-1")
	if err != nil {
		t.Fatalf("UseManual() error: %v", err)
	}
	if !got.IsUsed || got.KeyValue != "NEW-KEY" {
		t.Errorf("UseManual() = %+v, want used NEW-KEY", got)
	}
}

func TestKeyRepoUseManualInsertRace(t *testing.T) {
	db, mock, cleanup := setupTestDB(t)
	defer cleanup()
	repo := NewKeyRepo(db)

	mock.ExpectQuery(`SELECT .+ FROM product_keys WHERE key_value`).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery(`INSERT INTO product_keys`).
		WillReturnError(&pq.Error{Code: "23505"})

	_, err := repo.UseManual(context.Background(), "prod-1", "RACE-KEY", "buyer@example.com", "intent-1")
	if !errors.Is(err, keys.ErrAlreadyUsed) {
		t.Errorf("UseManual() error = %v, want ErrAlreadyUsed", err)
	}
}

func TestKeyRepoInsertCountsNewRowsOnly(t *testing.T) {
	db, mock, cleanup := setupTestDB(t)
	defer cleanup()
	repo := NewKeyRepo(db)

	mock.ExpectBegin()
	mock.ExpectPrepare(`INSERT INTO product_keys`)
	mock.ExpectExec(`INSERT INTO product_keys`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO product_keys`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	n, err := repo.Insert(context.Background(), "prod-1", []string{"FRESH", "TAKEN"})
	if err != nil {
		t.Fatalf("Insert() error: %v", err)
	}
	if n != 1 {
		t.Errorf("Insert() = %d, want 1", n)
	}
}

func TestKeyRepoReturnNotFound(t *testing.T) {
	db, mock, cleanup := setupTestDB(t)
	defer cleanup()
	repo := NewKeyRepo(db)

	mock.ExpectExec(`UPDATE product_keys`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Return(context.Background(), "missing")
	if !errors.Is(err, keys.ErrNotFound) {
		t.Errorf("Return() error = %v, want ErrNotFound", err)
	}
}

func TestKeyRepoListFiltersByProductAndUsage(t *testing.T) {
	db, mock, cleanup := setupTestDB(t)
	defer cleanup()
	repo := NewKeyRepo(db)

	used := false
	mock.ExpectQuery(regexp.QuoteMeta(`AND product_id = $1 AND is_used = $2`)).
		WithArgs("prod-1", false).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "product_id", "key_value", "is_used", "used_by_email", "used_at", "purchase_intent_id", "created_at",
		}).AddRow("k1", "prod-1", "AAA", false, nil, nil, nil, time.Now()))

	got, err := repo.List(context.Background(), keys.Filter{ProductID: "prod-1", IsUsed: &used})
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if len(got) != 1 || got[0].KeyValue != "AAA" {
		t.Errorf("List() = %+v, want one row AAA", got)
	}
}
