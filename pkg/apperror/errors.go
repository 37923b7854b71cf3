package apperror

import (
	"errors"
	"net/http"

	"github.com/caretrack/caretrack/internal/domain"
	"github.com/caretrack/caretrack/internal/persistence"
)

type AppError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status"`
}

func (e *AppError) Error() string {
	return e.Message
}

var (
	ErrBadRequest     = &AppError{Code: "BAD_REQUEST", Message: "Bad request", Status: http.StatusBadRequest}
	ErrNotFound       = &AppError{Code: "NOT_FOUND", Message: "Not found", Status: http.StatusNotFound}
	ErrConflict       = &AppError{Code: "CONFLICT", Message: "Conflict", Status: http.StatusConflict}
	ErrInternalServer = &AppError{Code: "INTERNAL_ERROR", Message: "Internal server error", Status: http.StatusInternalServerError}
)

func NewBadRequest(message string) *AppError {
	return &AppError{Code: "BAD_REQUEST", Message: message, Status: http.StatusBadRequest}
}

func NewNotFound(message string) *AppError {
	return &AppError{Code: "NOT_FOUND", Message: message, Status: http.StatusNotFound}
}

func NewConflict(message string) *AppError {
	return &AppError{Code: "CONFLICT", Message: message, Status: http.StatusConflict}
}

func NewConstraint(message string) *AppError {
	return &AppError{Code: "CONSTRAINT_VIOLATION", Message: message, Status: http.StatusConflict}
}

func NewInternalServer(message string) *AppError {
	return &AppError{Code: "INTERNAL_ERROR", Message: message, Status: http.StatusInternalServerError}
}

// MapError translates domain and persistence errors into HTTP-facing
// application errors. Unknown errors collapse into a generic 500 so
// storage details never leak to clients.
func MapError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	// The not-found sentinels are DomainError values; match them before
	// the generic domain-error case so they keep their 404.
	switch {
	case errors.Is(err, domain.ErrPatientNotFound),
		errors.Is(err, domain.ErrExamNotFound),
		errors.Is(err, domain.ErrExamImageNotFound),
		errors.Is(err, domain.ErrClinicSiteNotFound),
		errors.Is(err, domain.ErrUserNotFound),
		errors.Is(err, domain.ErrNoteNotFound),
		errors.Is(err, domain.ErrReportNotFound):
		return NewNotFound(err.Error())
	}

	var domErr *domain.DomainError
	if errors.As(err, &domErr) {
		return NewBadRequest(domErr.Error())
	}

	if persistence.IsConflict(err) {
		return NewConflict("the record was modified by another request; reload and retry")
	}
	if persistence.IsConstraint(err) {
		return NewConstraint("the change violates a data integrity rule")
	}

	return NewInternalServer("An unexpected error occurred")
}
