package http

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/caretrack/caretrack/internal/usecase"
)

// ClinicSiteHandler handles HTTP requests for clinic sites
type ClinicSiteHandler struct {
	sites *usecase.ClinicSiteManager
}

// NewClinicSiteHandler creates a new clinic site handler
func NewClinicSiteHandler(sites *usecase.ClinicSiteManager) *ClinicSiteHandler {
	return &ClinicSiteHandler{sites: sites}
}

// RegisterRoutes registers clinic site routes
func (h *ClinicSiteHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/v1/sites", h.Create).Methods("POST")
	router.HandleFunc("/api/v1/sites", h.ListActive).Methods("GET")
	router.HandleFunc("/api/v1/sites/{id}", h.Get).Methods("GET")
	router.HandleFunc("/api/v1/sites/{id}", h.Update).Methods("PUT")
	router.HandleFunc("/api/v1/sites/{id}", h.Delete).Methods("DELETE")
}

func (h *ClinicSiteHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req usecase.CreateClinicSiteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "Invalid request body")
		return
	}

	site, err := h.sites.Create(r.Context(), req, actorFrom(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusCreated, "Clinic site created", site)
}

func (h *ClinicSiteHandler) Get(w http.ResponseWriter, r *http.Request) {
	site, err := h.sites.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, "Clinic site retrieved", site)
}

func (h *ClinicSiteHandler) ListActive(w http.ResponseWriter, r *http.Request) {
	sites, err := h.sites.ListActive(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, "Clinic sites retrieved", sites)
}

func (h *ClinicSiteHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req usecase.UpdateClinicSiteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "Invalid request body")
		return
	}

	site, err := h.sites.Update(r.Context(), mux.Vars(r)["id"], req, actorFrom(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, "Clinic site updated", site)
}

func (h *ClinicSiteHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.sites.Delete(r.Context(), mux.Vars(r)["id"], actorFrom(r)); err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, "Clinic site deleted", nil)
}
