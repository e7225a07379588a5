package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/peerdex/peerdex/pkg/tracker/peers"
	"github.com/peerdex/peerdex/pkg/tracker/service"
)

// AdminHandler serves the operator endpoints.
type AdminHandler struct {
	svc   *service.Service
	table *peers.Table
}

// NewAdminHandler creates an admin handler.
func NewAdminHandler(svc *service.Service, table *peers.Table) *AdminHandler {
	return &AdminHandler{svc: svc, table: table}
}

type capacityRequest struct {
	MaxUsers int `json:"max_users"`
}

// SetCapacity arms (or re-arms) the session table. Until the first
// successful call every tracker operation answers not-ready.
func (h *AdminHandler) SetCapacity(w http.ResponseWriter, r *http.Request) {
	var req capacityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse("malformed request body"))
		return
	}

	if err := h.svc.Arm(req.MaxUsers); err != nil {
		if errors.Is(err, peers.ErrCapacityRange) {
			writeJSON(w, http.StatusBadRequest,
				errorResponse("max_users must be between 1 and 100"))
			return
		}
		writeJSON(w, http.StatusInternalServerError, errorResponse(err.Error()))
		return
	}

	writeJSON(w, http.StatusOK, okResponse(map[string]int{
		"max_users": req.MaxUsers,
	}))
}

// Status reports the session table state for operator dashboards.
func (h *AdminHandler) Status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, okResponse(map[string]interface{}{
		"ready":    h.svc.Ready(),
		"capacity": h.table.Capacity(),
		"sessions": h.table.Len(),
	}))
}

// Sessions lists the live sessions without their tokens.
func (h *AdminHandler) Sessions(w http.ResponseWriter, r *http.Request) {
	type sessionView struct {
		Name       string `json:"name"`
		IP         string `json:"ip"`
		Port       int    `json:"port"`
		LastActive string `json:"last_active"`
	}

	snapshot := h.table.Snapshot()
	views := make([]sessionView, 0, len(snapshot))
	for _, s := range snapshot {
		views = append(views, sessionView{
			Name:       s.Name,
			IP:         s.IP,
			Port:       s.Port,
			LastActive: s.LastActive.UTC().Format("2006-01-02T15:04:05Z"),
		})
	}
	writeJSON(w, http.StatusOK, okResponse(views))
}
