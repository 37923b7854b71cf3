package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Patient represents a patient record
type Patient struct {
	Meta
	FirstName   string     `json:"first_name"`
	LastName    string     `json:"last_name"`
	MRN         *string    `json:"mrn,omitempty"` // medical record number, unique when present
	DateOfBirth *time.Time `json:"date_of_birth,omitempty"`
	Gender      *string    `json:"gender,omitempty"`
}

// NewPatient creates a new patient with a generated identifier
func NewPatient(firstName, lastName string) *Patient {
	return &Patient{
		Meta:      Meta{ID: uuid.NewString()},
		FirstName: firstName,
		LastName:  lastName,
	}
}

func (p *Patient) Kind() string { return KindPatient }

func (p *Patient) Snapshot() map[string]any {
	return map[string]any{
		"first_name":    p.FirstName,
		"last_name":     p.LastName,
		"mrn":           p.MRN,
		"date_of_birth": p.DateOfBirth,
		"gender":        p.Gender,
	}
}

// Validate checks the patient's required fields and limits
func (p *Patient) Validate() error {
	if strings.TrimSpace(p.FirstName) == "" {
		return NewDomainError("first name is required")
	}
	if strings.TrimSpace(p.LastName) == "" {
		return NewDomainError("last name is required")
	}
	if len(p.FirstName) > 100 || len(p.LastName) > 100 {
		return NewDomainError("name must not exceed 100 characters")
	}
	if p.MRN != nil && len(*p.MRN) > 50 {
		return NewDomainError("MRN must not exceed 50 characters")
	}
	if p.DateOfBirth != nil && p.DateOfBirth.After(time.Now().UTC()) {
		return NewDomainError("date of birth cannot be in the future")
	}
	return nil
}

// FullName returns the patient's display name
func (p *Patient) FullName() string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}

// PatientFilter represents search criteria for listing patients
type PatientFilter struct {
	Term   string `json:"term,omitempty"` // matches name or MRN
	Limit  int    `json:"limit"`
	Offset int    `json:"offset"`
}
