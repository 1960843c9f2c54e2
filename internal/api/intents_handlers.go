package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/cheatloop/storefront/internal/domain"
	"github.com/cheatloop/storefront/internal/pkg/httputil"
	"github.com/cheatloop/storefront/internal/pkg/logger"
	"github.com/cheatloop/storefront/internal/service/intents"
)

type createIntentRequest struct {
	ProductID    string `json:"product_id"`
	ProductTitle string `json:"product_title"`
	Email        string `json:"email"`
	PhoneNumber  string `json:"phone_number"`
	Country      string `json:"country"`
}

// CreateIntent records a storefront checkout declaration. The new intent is
// merged into the hub immediately so dashboard clients don't wait for the
// next poll.
func (h *Handlers) CreateIntent(w http.ResponseWriter, r *http.Request) {
	var req createIntentRequest
	if !httputil.Decode(w, r, &req) {
		return
	}

	intent := &domain.PurchaseIntent{
		ProductID:    req.ProductID,
		ProductTitle: req.ProductTitle,
		Email:        req.Email,
		PhoneNumber:  req.PhoneNumber,
		Country:      req.Country,
	}
	if err := h.intents.Record(r.Context(), intent); err != nil {
		httputil.BadRequest(w, err.Error())
		return
	}

	h.hub.Merge([]domain.PurchaseIntent{*intent})
	logger.Info("purchase intent recorded",
		"intent_id", intent.ID,
		"product", intent.ProductTitle,
		"email", intent.Email)
	httputil.Created(w, intent)
}

// ListIntents returns recent purchase intents, newest first.
func (h *Handlers) ListIntents(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			httputil.BadRequest(w, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	list, err := h.intents.List(r.Context(), limit)
	if err != nil {
		if errors.Is(err, intents.ErrNotFound) {
			httputil.NotFound(w, "intent not found")
			return
		}
		httputil.InternalError(w, err)
		return
	}
	httputil.OK(w, map[string]any{"intents": list, "count": len(list)})
}

type deleteIntentsRequest struct {
	IDs []string `json:"ids"`
}

// DeleteIntents removes processed intents and forgets them in the hub so a
// recycled id would surface again.
func (h *Handlers) DeleteIntents(w http.ResponseWriter, r *http.Request) {
	var req deleteIntentsRequest
	if !httputil.Decode(w, r, &req) {
		return
	}
	if len(req.IDs) == 0 {
		httputil.BadRequest(w, "ids is required")
		return
	}

	if err := h.intents.DeleteMany(r.Context(), req.IDs); err != nil {
		httputil.InternalError(w, err)
		return
	}
	h.hub.Forget(req.IDs)
	httputil.NoContent(w)
}

// StreamIntents is the SSE feed of new purchase intents. Each event is a
// JSON IntentEvent; a comment ping every 25s keeps proxies from closing the
// connection.
func (h *Handlers) StreamIntents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		httputil.Error(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	// Long-lived connection: drop the server's write deadline for this
	// response only.
	rc := http.NewResponseController(w)
	_ = rc.SetWriteDeadline(time.Time{})

	clientID := uuid.New().String()
	events := h.hub.Subscribe(clientID)
	defer h.hub.Unsubscribe(clientID)

	logger.Debug("intent stream opened", "client_id", clientID)

	ping := time.NewTicker(25 * time.Second)
	defer ping.Stop()

	for {
		select {
		case <-r.Context().Done():
			logger.Debug("intent stream closed", "client_id", clientID)
			return
		case <-ping.C:
			fmt.Fprint(w, ": ping\n\n")
			flusher.Flush()
		case e, open := <-events:
			if !open {
				return
			}
			data, err := json.Marshal(e)
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", e.Type, data)
			flusher.Flush()
		}
	}
}
