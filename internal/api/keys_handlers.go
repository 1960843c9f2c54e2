package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/cheatloop/storefront/internal/pkg/httputil"
	"github.com/cheatloop/storefront/internal/pkg/logger"
	"github.com/cheatloop/storefront/internal/service/keys"
)

type claimKeyRequest struct {
	ProductID string `json:"product_id"`
	Email     string `json:"email"`
	IntentID  string `json:"intent_id"`
}

// ClaimKey assigns one available key for a product to a purchase intent.
func (h *Handlers) ClaimKey(w http.ResponseWriter, r *http.Request) {
	var req claimKeyRequest
	if !httputil.Decode(w, r, &req) {
		return
	}

	keyValue, err := h.keys.Claim(r.Context(), req.ProductID, req.Email, req.IntentID)
	if err != nil {
		writeKeyError(w, err)
		return
	}

	logger.Info("key claimed", "product_id", req.ProductID, "email", req.Email, "intent_id", req.IntentID)
	httputil.OK(w, map[string]string{"key_value": keyValue})
}

type manualKeyRequest struct {
	ProductID string `json:"product_id"`
	KeyValue  string `json:"key_value"`
	Email     string `json:"email"`
	IntentID  string `json:"intent_id"`
}

// UseManualKey redeems a specific key value, inserting it if unknown.
func (h *Handlers) UseManualKey(w http.ResponseWriter, r *http.Request) {
	var req manualKeyRequest
	if !httputil.Decode(w, r, &req) {
		return
	}

	key, err := h.keys.UseManual(r.Context(), req.ProductID, req.KeyValue, req.Email, req.IntentID)
	if err != nil {
		writeKeyError(w, err)
		return
	}

	logger.Info("manual key used", "product_id", req.ProductID, "email", req.Email)
	httputil.OK(w, key)
}

type addKeysRequest struct {
	ProductID string   `json:"product_id"`
	Values    []string `json:"values"`
}

// AddKeys bulk-stocks key values for a product. Duplicate values are skipped;
// the response reports how many were actually added.
func (h *Handlers) AddKeys(w http.ResponseWriter, r *http.Request) {
	var req addKeysRequest
	if !httputil.Decode(w, r, &req) {
		return
	}

	inserted, err := h.keys.Add(r.Context(), req.ProductID, req.Values)
	if err != nil {
		writeKeyError(w, err)
		return
	}

	httputil.Created(w, map[string]int{
		"inserted": inserted,
		"skipped":  len(req.Values) - inserted,
	})
}

// ListKeys returns keys filtered by product and usage state.
func (h *Handlers) ListKeys(w http.ResponseWriter, r *http.Request) {
	filter := keys.Filter{ProductID: r.URL.Query().Get("product_id")}
	if v := r.URL.Query().Get("is_used"); v != "" {
		used, err := strconv.ParseBool(v)
		if err != nil {
			httputil.BadRequest(w, "is_used must be a boolean")
			return
		}
		filter.IsUsed = &used
	}

	list, err := h.keys.List(r.Context(), filter)
	if err != nil {
		httputil.InternalError(w, err)
		return
	}
	httputil.OK(w, map[string]any{"keys": list, "count": len(list)})
}

// ReturnKey puts one used key back in the available pool.
func (h *Handlers) ReturnKey(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "keyId")
	if err := h.keys.Return(r.Context(), id); err != nil {
		writeKeyError(w, err)
		return
	}
	logger.Info("key returned", "key_id", id)
	httputil.NoContent(w)
}

type keyIDsRequest struct {
	IDs []string `json:"ids"`
}

// ReturnKeys puts a batch of keys back in the available pool.
func (h *Handlers) ReturnKeys(w http.ResponseWriter, r *http.Request) {
	var req keyIDsRequest
	if !httputil.Decode(w, r, &req) {
		return
	}
	if len(req.IDs) == 0 {
		httputil.BadRequest(w, "ids is required")
		return
	}
	if err := h.keys.ReturnMany(r.Context(), req.IDs); err != nil {
		writeKeyError(w, err)
		return
	}
	httputil.NoContent(w)
}

// DeleteKey hard-deletes one key.
func (h *Handlers) DeleteKey(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "keyId")
	if err := h.keys.Delete(r.Context(), id); err != nil {
		writeKeyError(w, err)
		return
	}
	httputil.NoContent(w)
}

// DeleteKeys hard-deletes a batch of keys.
func (h *Handlers) DeleteKeys(w http.ResponseWriter, r *http.Request) {
	var req keyIDsRequest
	if !httputil.Decode(w, r, &req) {
		return
	}
	if len(req.IDs) == 0 {
		httputil.BadRequest(w, "ids is required")
		return
	}
	if err := h.keys.DeleteMany(r.Context(), req.IDs); err != nil {
		writeKeyError(w, err)
		return
	}
	httputil.NoContent(w)
}

// GetExpiryReport returns the latest subscription expiry scan.
func (h *Handlers) GetExpiryReport(w http.ResponseWriter, r *http.Request) {
	if h.expiry == nil {
		httputil.OK(w, map[string]any{"report": nil})
		return
	}
	report := h.expiry.LastReport()
	if report == nil {
		httputil.OK(w, map[string]any{"report": nil})
		return
	}
	httputil.OK(w, map[string]any{"report": report})
}

// writeKeyError maps key service errors onto the HTTP error contract.
func writeKeyError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, keys.ErrOutOfStock):
		httputil.Conflict(w, "out_of_stock", "no available keys for this product")
	case errors.Is(err, keys.ErrAlreadyUsed):
		httputil.Conflict(w, "already_used", "this key has already been used")
	case errors.Is(err, keys.ErrNotFound):
		httputil.NotFound(w, "key not found")
	case errors.Is(err, keys.ErrInvalid):
		httputil.BadRequest(w, err.Error())
	default:
		httputil.InternalError(w, err)
	}
}
