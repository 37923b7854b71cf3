package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/caretrack/caretrack/internal/domain"
	"github.com/caretrack/caretrack/internal/usecase"
)

// PatientHandler handles HTTP requests for patients
type PatientHandler struct {
	patients *usecase.PatientManager
	notes    *usecase.PatientNoteManager
}

// NewPatientHandler creates a new patient handler
func NewPatientHandler(patients *usecase.PatientManager, notes *usecase.PatientNoteManager) *PatientHandler {
	return &PatientHandler{patients: patients, notes: notes}
}

// RegisterRoutes registers patient routes
func (h *PatientHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/v1/patients", h.Create).Methods("POST")
	router.HandleFunc("/api/v1/patients", h.Search).Methods("GET")
	router.HandleFunc("/api/v1/patients/deleted", h.ListDeleted).Methods("GET")
	router.HandleFunc("/api/v1/patients/{id}", h.Get).Methods("GET")
	router.HandleFunc("/api/v1/patients/{id}", h.Update).Methods("PUT")
	router.HandleFunc("/api/v1/patients/{id}", h.Delete).Methods("DELETE")
	router.HandleFunc("/api/v1/patients/{id}/restore", h.Restore).Methods("POST")
	router.HandleFunc("/api/v1/patients/{id}/notes", h.CreateNote).Methods("POST")
	router.HandleFunc("/api/v1/patients/{id}/notes", h.ListNotes).Methods("GET")
}

func (h *PatientHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req usecase.CreatePatientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "Invalid request body")
		return
	}

	patient, err := h.patients.Create(r.Context(), req, actorFrom(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusCreated, "Patient created", patient)
}

func (h *PatientHandler) Get(w http.ResponseWriter, r *http.Request) {
	patient, err := h.patients.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, "Patient retrieved", patient)
}

func (h *PatientHandler) Search(w http.ResponseWriter, r *http.Request) {
	filter := domain.PatientFilter{
		Term:   r.URL.Query().Get("term"),
		Limit:  queryInt(r, "limit"),
		Offset: queryInt(r, "offset"),
	}

	patients, total, err := h.patients.Search(r.Context(), filter)
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, "Patients retrieved", map[string]interface{}{
		"items": patients,
		"total": total,
	})
}

func (h *PatientHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req usecase.UpdatePatientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "Invalid request body")
		return
	}

	patient, err := h.patients.Update(r.Context(), mux.Vars(r)["id"], req, actorFrom(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, "Patient updated", patient)
}

func (h *PatientHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.patients.Delete(r.Context(), mux.Vars(r)["id"], actorFrom(r)); err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, "Patient deleted", nil)
}

func (h *PatientHandler) Restore(w http.ResponseWriter, r *http.Request) {
	patient, err := h.patients.Restore(r.Context(), mux.Vars(r)["id"], actorFrom(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, "Patient restored", patient)
}

func (h *PatientHandler) ListDeleted(w http.ResponseWriter, r *http.Request) {
	patients, err := h.patients.ListDeleted(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, "Deleted patients retrieved", patients)
}

func (h *PatientHandler) CreateNote(w http.ResponseWriter, r *http.Request) {
	var req usecase.CreatePatientNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "Invalid request body")
		return
	}

	note, err := h.notes.Create(r.Context(), mux.Vars(r)["id"], req, actorFrom(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusCreated, "Note created", note)
}

func (h *PatientHandler) ListNotes(w http.ResponseWriter, r *http.Request) {
	notes, err := h.notes.ListByPatient(r.Context(), mux.Vars(r)["id"], queryInt(r, "limit"), queryInt(r, "offset"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, "Notes retrieved", notes)
}

func queryInt(r *http.Request, name string) int {
	if v := r.URL.Query().Get(name); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return 0
}
