package http

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/caretrack/caretrack/internal/usecase"
)

// AuditHandler handles HTTP requests for the audit trail
type AuditHandler struct {
	audit *usecase.AuditTrailManager
}

// NewAuditHandler creates a new audit trail handler
func NewAuditHandler(audit *usecase.AuditTrailManager) *AuditHandler {
	return &AuditHandler{audit: audit}
}

// RegisterRoutes registers audit trail routes
func (h *AuditHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/v1/audit/{entity}/{id}", h.ListByEntity).Methods("GET")
}

func (h *AuditHandler) ListByEntity(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	records, total, err := h.audit.ListByEntity(
		r.Context(), vars["entity"], vars["id"], queryInt(r, "limit"), queryInt(r, "offset"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, "Audit records retrieved", map[string]interface{}{
		"items": records,
		"total": total,
	})
}
