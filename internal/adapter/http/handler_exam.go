package http

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/caretrack/caretrack/internal/usecase"
)

// ExamHandler handles HTTP requests for exams and their images
type ExamHandler struct {
	exams *usecase.ExamManager
}

// NewExamHandler creates a new exam handler
func NewExamHandler(exams *usecase.ExamManager) *ExamHandler {
	return &ExamHandler{exams: exams}
}

// RegisterRoutes registers exam routes
func (h *ExamHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/v1/exams", h.Create).Methods("POST")
	router.HandleFunc("/api/v1/exams/{id}", h.Get).Methods("GET")
	router.HandleFunc("/api/v1/exams/{id}", h.Update).Methods("PUT")
	router.HandleFunc("/api/v1/exams/{id}", h.Delete).Methods("DELETE")
	router.HandleFunc("/api/v1/exams/{id}/images", h.AttachImage).Methods("POST")
	router.HandleFunc("/api/v1/exams/{id}/images", h.ListImages).Methods("GET")
	router.HandleFunc("/api/v1/exam-images/{id}", h.DeleteImage).Methods("DELETE")
	router.HandleFunc("/api/v1/patients/{id}/exams", h.ListByPatient).Methods("GET")
}

func (h *ExamHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req usecase.CreateExamRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "Invalid request body")
		return
	}

	exam, err := h.exams.Create(r.Context(), req, actorFrom(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusCreated, "Exam created", exam)
}

func (h *ExamHandler) Get(w http.ResponseWriter, r *http.Request) {
	exam, err := h.exams.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, "Exam retrieved", exam)
}

func (h *ExamHandler) ListByPatient(w http.ResponseWriter, r *http.Request) {
	exams, total, err := h.exams.ListByPatient(
		r.Context(), mux.Vars(r)["id"], queryInt(r, "limit"), queryInt(r, "offset"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, "Exams retrieved", map[string]interface{}{
		"items": exams,
		"total": total,
	})
}

func (h *ExamHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req usecase.UpdateExamRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "Invalid request body")
		return
	}

	exam, err := h.exams.Update(r.Context(), mux.Vars(r)["id"], req, actorFrom(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, "Exam updated", exam)
}

func (h *ExamHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.exams.Delete(r.Context(), mux.Vars(r)["id"], actorFrom(r)); err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, "Exam deleted", nil)
}

func (h *ExamHandler) AttachImage(w http.ResponseWriter, r *http.Request) {
	var req usecase.AttachImageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "Invalid request body")
		return
	}

	img, err := h.exams.AttachImage(r.Context(), mux.Vars(r)["id"], req, actorFrom(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusCreated, "Image attached", img)
}

func (h *ExamHandler) ListImages(w http.ResponseWriter, r *http.Request) {
	images, err := h.exams.ListImages(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, "Images retrieved", images)
}

func (h *ExamHandler) DeleteImage(w http.ResponseWriter, r *http.Request) {
	if err := h.exams.DeleteImage(r.Context(), mux.Vars(r)["id"], actorFrom(r)); err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, "Image deleted", nil)
}
