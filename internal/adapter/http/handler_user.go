package http

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/caretrack/caretrack/internal/usecase"
)

// UserHandler handles HTTP requests for user accounts
type UserHandler struct {
	users *usecase.UserManager
}

// NewUserHandler creates a new user handler
func NewUserHandler(users *usecase.UserManager) *UserHandler {
	return &UserHandler{users: users}
}

// RegisterRoutes registers user routes
func (h *UserHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/v1/users", h.Create).Methods("POST")
	router.HandleFunc("/api/v1/users", h.List).Methods("GET")
	router.HandleFunc("/api/v1/users/{id}", h.Get).Methods("GET")
	router.HandleFunc("/api/v1/users/{id}", h.Update).Methods("PUT")
	router.HandleFunc("/api/v1/users/{id}", h.Delete).Methods("DELETE")
	router.HandleFunc("/api/v1/users/{id}/password", h.ChangePassword).Methods("PUT")
	router.HandleFunc("/api/v1/auth/verify", h.VerifyCredentials).Methods("POST")
}

// VerifyCredentials checks a username/password pair. No token is issued;
// callers get the account back on success and a uniform 401 otherwise.
func (h *UserHandler) VerifyCredentials(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "Invalid request body")
		return
	}

	user, ok, err := h.users.VerifyCredentials(r.Context(), req.Username, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	if !ok {
		writeJSON(w, http.StatusUnauthorized, false, "Invalid credentials", nil)
		return
	}
	writeSuccess(w, http.StatusOK, "Credentials verified", user)
}

func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req usecase.CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "Invalid request body")
		return
	}

	user, err := h.users.Create(r.Context(), req, actorFrom(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusCreated, "User created", user)
}

func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, err := h.users.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, "User retrieved", user)
}

func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.List(r.Context(), queryInt(r, "limit"), queryInt(r, "offset"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, "Users retrieved", users)
}

func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req usecase.UpdateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "Invalid request body")
		return
	}

	user, err := h.users.Update(r.Context(), mux.Vars(r)["id"], req, actorFrom(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, "User updated", user)
}

func (h *UserHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "Invalid request body")
		return
	}

	if err := h.users.ChangePassword(r.Context(), mux.Vars(r)["id"], req.Password, actorFrom(r)); err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, "Password changed", nil)
}

func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.users.Delete(r.Context(), mux.Vars(r)["id"], actorFrom(r)); err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, "User deleted", nil)
}
