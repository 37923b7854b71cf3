package http

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/caretrack/caretrack/internal/usecase"
)

// ReportHandler handles HTTP requests for patient report metadata
type ReportHandler struct {
	reports *usecase.PatientReportManager
}

// NewReportHandler creates a new report handler
func NewReportHandler(reports *usecase.PatientReportManager) *ReportHandler {
	return &ReportHandler{reports: reports}
}

// RegisterRoutes registers report routes
func (h *ReportHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/v1/patients/{id}/reports", h.Create).Methods("POST")
	router.HandleFunc("/api/v1/patients/{id}/reports", h.Search).Methods("GET")
	router.HandleFunc("/api/v1/reports/{id}", h.Get).Methods("GET")
	router.HandleFunc("/api/v1/reports/{id}", h.Update).Methods("PUT")
	router.HandleFunc("/api/v1/reports/{id}", h.Delete).Methods("DELETE")
}

func (h *ReportHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req usecase.CreatePatientReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "Invalid request body")
		return
	}

	report, err := h.reports.Create(r.Context(), mux.Vars(r)["id"], req, actorFrom(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusCreated, "Report created", report)
}

func (h *ReportHandler) Get(w http.ResponseWriter, r *http.Request) {
	report, err := h.reports.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, "Report retrieved", report)
}

func (h *ReportHandler) Search(w http.ResponseWriter, r *http.Request) {
	reports, total, err := h.reports.Search(
		r.Context(), mux.Vars(r)["id"], r.URL.Query().Get("term"),
		queryInt(r, "limit"), queryInt(r, "offset"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, "Reports retrieved", map[string]interface{}{
		"items": reports,
		"total": total,
	})
}

func (h *ReportHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req usecase.UpdatePatientReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "Invalid request body")
		return
	}

	report, err := h.reports.Update(r.Context(), mux.Vars(r)["id"], req, actorFrom(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, "Report updated", report)
}

func (h *ReportHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.reports.Delete(r.Context(), mux.Vars(r)["id"], actorFrom(r)); err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, "Report deleted", nil)
}
