package api

import (
	"net/http"
	"time"

	"github.com/cheatloop/storefront/internal/engine"
	"github.com/cheatloop/storefront/internal/pkg/httputil"
	"github.com/cheatloop/storefront/internal/service/catalog"
	"github.com/cheatloop/storefront/internal/service/intents"
	"github.com/cheatloop/storefront/internal/service/keys"
	"github.com/cheatloop/storefront/internal/stats"
	"github.com/cheatloop/storefront/internal/storage"
	"github.com/cheatloop/storefront/internal/worker"
)

// Handlers holds all HTTP handlers and their service dependencies.
type Handlers struct {
	keys    *keys.Service
	intents *intents.Service
	catalog *catalog.Service
	stats   *stats.Service
	images  *storage.ImageService
	hub     *engine.IntentHub
	expiry  *worker.ExpiryMonitor

	startTime time.Time
}

// NewHandlers creates the handler set. The expiry monitor may be nil; its
// endpoint then reports no data yet.
func NewHandlers(
	keySvc *keys.Service,
	intentSvc *intents.Service,
	catalogSvc *catalog.Service,
	statsSvc *stats.Service,
	imageSvc *storage.ImageService,
	hub *engine.IntentHub,
	expiry *worker.ExpiryMonitor,
) *Handlers {
	return &Handlers{
		keys:      keySvc,
		intents:   intentSvc,
		catalog:   catalogSvc,
		stats:     statsSvc,
		images:    imageSvc,
		hub:       hub,
		expiry:    expiry,
		startTime: time.Now(),
	}
}

// HealthCheck reports liveness.
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	httputil.OK(w, map[string]any{
		"status":         "ok",
		"uptime_seconds": int(time.Since(h.startTime).Seconds()),
	})
}
