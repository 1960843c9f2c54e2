package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/cheatloop/storefront/internal/domain"
	"github.com/cheatloop/storefront/internal/service/intents"
)

func TestIntentRepoInsertFillsIDAndTimestamp(t *testing.T) {
	db, mock, cleanup := setupTestDB(t)
	defer cleanup()
	repo := NewIntentRepo(db)

	created := time.Now()
	mock.ExpectQuery(`INSERT INTO purchase_intents`).
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(created))

	in := &domain.PurchaseIntent{
		ProductID:    "prod-1",
		ProductTitle: "PUBG Monthly",
		Email:        "buyer@example.com",
		PhoneNumber:  "+15551234567",
		Country:      "US",
	}
	if err := repo.Insert(context.Background(), in); err != nil {
		t.Fatalf("Insert() error: %v", err)
	}
	if in.ID == "" {
		t.Error("Insert() left ID empty")
	}
	if !in.CreatedAt.Equal(created) {
		t.Errorf("Insert() CreatedAt = %v, want %v", in.CreatedAt, created)
	}
}

func TestIntentRepoGetNotFound(t *testing.T) {
	db, mock, cleanup := setupTestDB(t)
	defer cleanup()
	repo := NewIntentRepo(db)

	mock.ExpectQuery(`SELECT .+ FROM purchase_intents WHERE id`).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.Get(context.Background(), "missing")
	if !errors.Is(err, intents.ErrNotFound) {
		t.Errorf("Get() error = %v, want ErrNotFound", err)
	}
}

func TestIntentRepoListAppliesLimit(t *testing.T) {
	db, mock, cleanup := setupTestDB(t)
	defer cleanup()
	repo := NewIntentRepo(db)

	mock.ExpectQuery(`SELECT .+ FROM purchase_intents ORDER BY created_at DESC LIMIT`).
		WithArgs(20).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "product_id", "product_title", "email", "phone_number", "country", "created_at",
		}).AddRow("i1", "prod-1", "PUBG Monthly", "a@example.com", "+1555", "US", time.Now()))

	got, err := repo.List(context.Background(), 20)
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if len(got) != 1 || got[0].ID != "i1" {
		t.Errorf("List() = %+v, want one row i1", got)
	}
}
