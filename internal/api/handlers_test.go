package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/cheatloop/storefront/internal/domain"
	"github.com/cheatloop/storefront/internal/engine"
	"github.com/cheatloop/storefront/internal/service/intents"
	"github.com/cheatloop/storefront/internal/service/keys"
)

// memKeyRepo is an in-memory keys.Repository for handler tests.
type memKeyRepo struct {
	mu   sync.Mutex
	keys map[string]*domain.ProductKey
}

func newMemKeyRepo() *memKeyRepo {
	return &memKeyRepo{keys: make(map[string]*domain.ProductKey)}
}

func (m *memKeyRepo) stock(productID string, values ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, v := range values {
		id := uuid.New().String()
		m.keys[id] = &domain.ProductKey{
			ID: id, ProductID: productID, KeyValue: v, CreatedAt: time.Now(),
		}
	}
}

func (m *memKeyRepo) ClaimAvailable(ctx context.Context, productID, email, intentID string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range m.keys {
		if k.ProductID == productID && !k.IsUsed {
			now := time.Now()
			k.IsUsed, k.UsedByEmail, k.UsedAt, k.PurchaseIntentID = true, &email, &now, &intentID
			return k.KeyValue, nil
		}
	}
	return "", keys.ErrOutOfStock
}

func (m *memKeyRepo) UseManual(ctx context.Context, productID, keyValue, email, intentID string) (*domain.ProductKey, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range m.keys {
		if k.KeyValue == keyValue {
			if k.IsUsed {
				return nil, keys.ErrAlreadyUsed
			}
			now := time.Now()
			k.IsUsed, k.UsedByEmail, k.UsedAt, k.PurchaseIntentID = true, &email, &now, &intentID
			return k, nil
		}
	}
	now := time.Now()
	k := &domain.ProductKey{
		ID: uuid.New().String(), ProductID: productID, KeyValue: keyValue,
		IsUsed: true, UsedByEmail: &email, UsedAt: &now, PurchaseIntentID: &intentID,
		CreatedAt: now,
	}
	m.keys[k.ID] = k
	return k, nil
}

func (m *memKeyRepo) Insert(ctx context.Context, productID string, values []string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing := make(map[string]struct{}, len(m.keys))
	for _, k := range m.keys {
		existing[k.KeyValue] = struct{}{}
	}
	inserted := 0
	for _, v := range values {
		if _, dup := existing[v]; dup {
			continue
		}
		existing[v] = struct{}{}
		id := uuid.New().String()
		m.keys[id] = &domain.ProductKey{ID: id, ProductID: productID, KeyValue: v, CreatedAt: time.Now()}
		inserted++
	}
	return inserted, nil
}

func (m *memKeyRepo) Return(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	k, ok := m.keys[id]
	if !ok {
		return keys.ErrNotFound
	}
	k.IsUsed, k.UsedByEmail, k.UsedAt, k.PurchaseIntentID = false, nil, nil, nil
	return nil
}

func (m *memKeyRepo) ReturnMany(ctx context.Context, ids []string) error {
	for _, id := range ids {
		if err := m.Return(ctx, id); err != nil && err != keys.ErrNotFound {
			return err
		}
	}
	return nil
}

func (m *memKeyRepo) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.keys[id]; !ok {
		return keys.ErrNotFound
	}
	delete(m.keys, id)
	return nil
}

func (m *memKeyRepo) DeleteMany(ctx context.Context, ids []string) error {
	for _, id := range ids {
		m.Delete(ctx, id)
	}
	return nil
}

func (m *memKeyRepo) List(ctx context.Context, f keys.Filter) ([]domain.ProductKey, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.ProductKey
	for _, k := range m.keys {
		if f.ProductID != "" && k.ProductID != f.ProductID {
			continue
		}
		if f.IsUsed != nil && k.IsUsed != *f.IsUsed {
			continue
		}
		out = append(out, *k)
	}
	return out, nil
}

// memIntentRepo is an in-memory intents.Repository for handler tests.
type memIntentRepo struct {
	mu      sync.Mutex
	intents []domain.PurchaseIntent
}

func (m *memIntentRepo) Insert(ctx context.Context, in *domain.PurchaseIntent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	in.ID = uuid.New().String()
	in.CreatedAt = time.Now()
	m.intents = append([]domain.PurchaseIntent{*in}, m.intents...)
	return nil
}

func (m *memIntentRepo) Get(ctx context.Context, id string) (*domain.PurchaseIntent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, in := range m.intents {
		if in.ID == id {
			return &in, nil
		}
	}
	return nil, intents.ErrNotFound
}

func (m *memIntentRepo) List(ctx context.Context, limit int) ([]domain.PurchaseIntent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if limit > 0 && limit < len(m.intents) {
		return m.intents[:limit], nil
	}
	return m.intents, nil
}

func (m *memIntentRepo) DeleteMany(ctx context.Context, ids []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	drop := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		drop[id] = struct{}{}
	}
	var kept []domain.PurchaseIntent
	for _, in := range m.intents {
		if _, gone := drop[in.ID]; !gone {
			kept = append(kept, in)
		}
	}
	m.intents = kept
	return nil
}

func setupAPITest(t *testing.T) (*memKeyRepo, *memIntentRepo, *engine.IntentHub, http.Handler) {
	t.Helper()
	keyRepo := newMemKeyRepo()
	intentRepo := &memIntentRepo{}
	hub := engine.NewIntentHub()
	handlers := NewHandlers(
		keys.NewService(keyRepo),
		intents.NewService(intentRepo),
		nil, nil, nil,
		hub,
		nil,
	)
	return keyRepo, intentRepo, hub, SetupRoutes(handlers, nil)
}

func doJSON(t *testing.T, handler http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode request: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestHealthCheck(t *testing.T) {
	_, _, _, handler := setupAPITest(t)
	rec := doJSON(t, handler, http.MethodGet, "/health", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /health = %d, want 200", rec.Code)
	}
}

func TestClaimKeyReturnsValue(t *testing.T) {
	keyRepo, _, _, handler := setupAPITest(t)
	keyRepo.stock("prod-1", "AAA-111")

	rec := doJSON(t, handler, http.MethodPost, "/api/keys/claim", map[string]string{
		"product_id": "prod-1",
		"email":      "Buyer@Example.com",
		"intent_id":  "intent-1",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("claim = %d, body %s", rec.Code, rec.Body.String())
	}
	var resp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp["key_value"] != "AAA-111" {
		t.Errorf("key_value = %q, want AAA-111", resp["key_value"])
	}
}

func TestClaimKeyOutOfStock(t *testing.T) {
	_, _, _, handler := setupAPITest(t)

	rec := doJSON(t, handler, http.MethodPost, "/api/keys/claim", map[string]string{
		"product_id": "prod-1",
		"email":      "buyer@example.com",
		"intent_id":  "intent-1",
	})
	if rec.Code != http.StatusConflict {
		t.Fatalf("claim = %d, want 409", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"out_of_stock"`) {
		t.Errorf("body %s missing out_of_stock code", rec.Body.String())
	}
}

func TestClaimKeyValidation(t *testing.T) {
	_, _, _, handler := setupAPITest(t)

	rec := doJSON(t, handler, http.MethodPost, "/api/keys/claim", map[string]string{
		"product_id": "prod-1",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("claim without email = %d, want 400", rec.Code)
	}
}

func TestUseManualKeyAlreadyUsed(t *testing.T) {
	keyRepo, _, _, handler := setupAPITest(t)
	keyRepo.stock("prod-1", "DUP-KEY")

	first := doJSON(t, handler, http.MethodPost, "/api/keys/manual", map[string]string{
		"product_id": "prod-1", "key_value": "DUP-KEY",
		"email": "a@example.com", "intent_id": "i1",
	})
	if first.Code != http.StatusOK {
		t.Fatalf("first manual use = %d", first.Code)
	}

	second := doJSON(t, handler, http.MethodPost, "/api/keys/manual", map[string]string{
		"product_id": "prod-1", "key_value": "DUP-KEY",
		"email": "b@example.com", "intent_id": "i2",
	})
	if second.Code != http.StatusConflict {
		t.Fatalf("second manual use = %d, want 409", second.Code)
	}
	if !strings.Contains(second.Body.String(), `"already_used"`) {
		t.Errorf("body %s missing already_used code", second.Body.String())
	}
}

func TestAddKeysReportsInsertedAndSkipped(t *testing.T) {
	keyRepo, _, _, handler := setupAPITest(t)
	keyRepo.stock("prod-1", "TAKEN")

	rec := doJSON(t, handler, http.MethodPost, "/api/keys", map[string]any{
		"product_id": "prod-1",
		"values":     []string{"FRESH", "TAKEN"},
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("add keys = %d, body %s", rec.Code, rec.Body.String())
	}
	var resp map[string]int
	json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp["inserted"] != 1 || resp["skipped"] != 1 {
		t.Errorf("inserted/skipped = %d/%d, want 1/1", resp["inserted"], resp["skipped"])
	}
}

func TestReturnKeyNotFound(t *testing.T) {
	_, _, _, handler := setupAPITest(t)
	rec := doJSON(t, handler, http.MethodPost, "/api/keys/"+uuid.New().String()+"/return", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("return missing key = %d, want 404", rec.Code)
	}
}

func TestCreateIntentFeedsHub(t *testing.T) {
	_, _, hub, handler := setupAPITest(t)

	events := hub.Subscribe("test")
	defer hub.Unsubscribe("test")

	rec := doJSON(t, handler, http.MethodPost, "/api/intents", map[string]string{
		"product_id":    "prod-1",
		"product_title": "PUBG Monthly",
		"email":         "buyer@example.com",
		"country":       "US",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create intent = %d, body %s", rec.Code, rec.Body.String())
	}

	select {
	case e := <-events:
		if e.Intent.Email != "buyer@example.com" {
			t.Errorf("event email = %q", e.Intent.Email)
		}
	case <-time.After(time.Second):
		t.Fatal("no hub event after intent creation")
	}
}

func TestDeleteIntentsForgetsHubIDs(t *testing.T) {
	_, intentRepo, hub, handler := setupAPITest(t)

	rec := doJSON(t, handler, http.MethodPost, "/api/intents", map[string]string{
		"product_id": "prod-1", "email": "a@example.com",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create intent = %d", rec.Code)
	}
	id := intentRepo.intents[0].ID
	if hub.SeenCount() != 1 {
		t.Fatalf("SeenCount = %d, want 1", hub.SeenCount())
	}

	del := doJSON(t, handler, http.MethodPost, "/api/intents/delete", map[string]any{
		"ids": []string{id},
	})
	if del.Code != http.StatusNoContent {
		t.Fatalf("delete intents = %d, want 204", del.Code)
	}
	if hub.SeenCount() != 0 {
		t.Errorf("SeenCount after delete = %d, want 0", hub.SeenCount())
	}
}

func TestImagesEndpointsWithoutStorage(t *testing.T) {
	_, _, _, handler := setupAPITest(t)

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/api/images/purchase"},
		{http.MethodPost, "/api/images/winning"},
		{http.MethodDelete, "/api/images/purchase/" + uuid.New().String()},
	} {
		rec := doJSON(t, handler, tc.method, tc.path, nil)
		if rec.Code != http.StatusServiceUnavailable {
			t.Errorf("%s %s = %d, want 503", tc.method, tc.path, rec.Code)
		}
		if !strings.Contains(rec.Body.String(), "image storage") {
			t.Errorf("%s %s body = %q, want an image storage error", tc.method, tc.path, rec.Body.String())
		}
	}
}
