// Package handlers implements the HTTP handlers for the tracker API.
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/peerdex/peerdex/pkg/tracker/service"
)

// RPCHandler dispatches tracker operations.
//
// Every operation is a POST with a JSON object body and answers with a
// JSON string array whose first element is the outcome tag. Malformed or
// out-of-bounds requests never reach the service; they are answered with
// an ERROR outcome right here.
type RPCHandler struct {
	svc      *service.Service
	validate *validator.Validate
}

// NewRPCHandler creates the tracker operation dispatcher.
func NewRPCHandler(svc *service.Service) *RPCHandler {
	return &RPCHandler{
		svc:      svc,
		validate: validator.New(),
	}
}

// Request bodies, one per operation. The validate tags carry the boundary
// length caps; violating any of them yields an ERROR outcome without
// touching the catalog.

type connectRequest struct {
	Name     string `json:"name"     validate:"required,min=5,max=25"`
	Password string `json:"password" validate:"required,min=6,max=50"`
	IP       string `json:"ip"       validate:"required,max=45"`
	Port     int    `json:"port"     validate:"min=0,max=65535"`
}

type resumeRequest struct {
	Token string `json:"token" validate:"max=64"`
	Name  string `json:"name"  validate:"required,min=5,max=25"`
	IP    string `json:"ip"    validate:"required,max=45"`
	Port  int    `json:"port"  validate:"min=0,max=65535"`
}

type sessionRequest struct {
	Token string `json:"token" validate:"required,max=64"`
	Name  string `json:"name"  validate:"required,min=5,max=25"`
}

type registerRequest struct {
	Token    string `json:"token"     validate:"required,max=64"`
	Name     string `json:"name"      validate:"required,min=5,max=25"`
	FileName string `json:"file_name" validate:"required,max=100"`
	FileType string `json:"file_type" validate:"required,max=25"`
	FilePath string `json:"file_path" validate:"required,max=300"`
	FileSize int64  `json:"file_size" validate:"min=0"`
}

type deregisterRequest struct {
	Token    string `json:"token"     validate:"required,max=64"`
	Name     string `json:"name"      validate:"required,min=5,max=25"`
	FileName string `json:"file_name" validate:"required,max=100"`
	FileType string `json:"file_type" validate:"required,max=25"`
	FilePath string `json:"file_path" validate:"required,max=300"`
}

type searchRequest struct {
	Token string `json:"token" validate:"required,max=64"`
	Name  string `json:"name"  validate:"required,min=5,max=25"`
	Query string `json:"query" validate:"required,max=100"`
}

type hostInfoRequest struct {
	Token  string `json:"token"   validate:"required,max=64"`
	Name   string `json:"name"    validate:"required,min=5,max=25"`
	FileID int    `json:"file_id" validate:"min=0,lt=1000000"`
}

// Handle dispatches one tracker operation by its path name.
func (h *RPCHandler) Handle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	switch chi.URLParam(r, "operation") {
	case "connectToServer":
		var req connectRequest
		if !h.decode(w, r, &req) {
			return
		}
		writeOutcome(w, h.svc.Login(ctx, req.Name, req.Password, req.IP, req.Port))

	case "resumeSession":
		var req resumeRequest
		if !h.decode(w, r, &req) {
			return
		}
		writeOutcome(w, h.svc.Resume(ctx, req.Token, req.Name, req.IP, req.Port))

	case "disconnectFromServer":
		var req sessionRequest
		if !h.decode(w, r, &req) {
			return
		}
		writeOutcome(w, h.svc.Disconnect(ctx, req.Token, req.Name))

	case "sendHeartBeat":
		var req sessionRequest
		if !h.decode(w, r, &req) {
			return
		}
		writeOutcome(w, h.svc.Heartbeat(ctx, req.Token, req.Name))

	case "registerFile":
		var req registerRequest
		if !h.decode(w, r, &req) {
			return
		}
		writeOutcome(w, h.svc.Register(ctx,
			req.Token, req.Name, req.FileName, req.FileType, req.FilePath, req.FileSize))

	case "deregisterFile":
		var req deregisterRequest
		if !h.decode(w, r, &req) {
			return
		}
		writeOutcome(w, h.svc.Deregister(ctx,
			req.Token, req.Name, req.FileName, req.FileType, req.FilePath))

	case "getUserFiles":
		var req sessionRequest
		if !h.decode(w, r, &req) {
			return
		}
		writeOutcome(w, h.svc.UserFiles(ctx, req.Token, req.Name))

	case "searchFile":
		var req searchRequest
		if !h.decode(w, r, &req) {
			return
		}
		writeOutcome(w, h.svc.Search(ctx, req.Token, req.Name, req.Query))

	case "getFileHostInfo":
		var req hostInfoRequest
		if !h.decode(w, r, &req) {
			return
		}
		writeOutcome(w, h.svc.HostInfo(ctx, req.Token, req.Name, req.FileID))

	default:
		http.NotFound(w, r)
	}
}

// decode parses and bounds-checks the request body, answering with an
// ERROR outcome on violation. Returns false when the caller should stop.
func (h *RPCHandler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeOutcome(w, service.Outcome{service.TagError, "Malformed request body."})
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		writeOutcome(w, service.Outcome{service.TagError, "Request rejected: " + err.Error()})
		return false
	}
	return true
}

// writeOutcome writes the outcome as a bare JSON string array.
func writeOutcome(w http.ResponseWriter, out service.Outcome) {
	writeJSON(w, http.StatusOK, []string(out))
}
