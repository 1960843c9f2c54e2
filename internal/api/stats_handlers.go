package api

import (
	"net/http"

	"github.com/cheatloop/storefront/internal/pkg/httputil"
)

// GetStatsOverview returns per-product inventory counts, estimated revenue
// and the 7-day sales trend.
func (h *Handlers) GetStatsOverview(w http.ResponseWriter, r *http.Request) {
	overview, err := h.stats.GetOverview(r.Context())
	if err != nil {
		httputil.InternalError(w, err)
		return
	}
	httputil.OK(w, overview)
}
