package handlers

import (
	"net/http"

	"github.com/peerdex/peerdex/pkg/tracker/service"
	"github.com/peerdex/peerdex/pkg/tracker/store"
)

// HealthHandler serves the liveness and readiness probes.
type HealthHandler struct {
	svc *service.Service
	st  *store.Store
}

// NewHealthHandler creates a health handler.
func NewHealthHandler(svc *service.Service, st *store.Store) *HealthHandler {
	return &HealthHandler{svc: svc, st: st}
}

// Liveness reports that the process is up. It never fails while the
// server can answer at all.
func (h *HealthHandler) Liveness(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthyResponse(map[string]string{
		"service": "peerdex-tracker",
	}))
}

// Readiness reports whether the tracker can serve operations: the session
// table must be armed and the catalog store reachable.
func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	if !h.svc.Ready() {
		writeJSON(w, http.StatusServiceUnavailable,
			unhealthyResponse("session table not armed"))
		return
	}
	if !h.st.Available() {
		writeJSON(w, http.StatusServiceUnavailable,
			unhealthyResponse("catalog store unreachable"))
		return
	}
	writeJSON(w, http.StatusOK, healthyResponse(map[string]interface{}{
		"sessions": h.svc.Sessions(),
	}))
}
