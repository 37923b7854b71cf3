package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// PatientNote represents a clinical note or observation for a patient
type PatientNote struct {
	Meta
	PatientID  string    `json:"patient_id"`
	NoteType   string    `json:"note_type"`
	Content    string    `json:"content"`
	AuthorName *string   `json:"author_name,omitempty"`
	NoteDate   time.Time `json:"note_date"`
}

// NewPatientNote creates a new clinical note for a patient
func NewPatientNote(patientID, content string) *PatientNote {
	return &PatientNote{
		Meta:      Meta{ID: uuid.NewString()},
		PatientID: patientID,
		NoteType:  "Clinical Note",
		Content:   content,
		NoteDate:  time.Now().UTC(),
	}
}

func (n *PatientNote) Kind() string { return KindPatientNote }

func (n *PatientNote) Snapshot() map[string]any {
	return map[string]any{
		"patient_id":  n.PatientID,
		"note_type":   n.NoteType,
		"content":     n.Content,
		"author_name": n.AuthorName,
		"note_date":   n.NoteDate,
	}
}

// Validate checks the note's required fields
func (n *PatientNote) Validate() error {
	if n.PatientID == "" {
		return NewDomainError("patient id is required")
	}
	if strings.TrimSpace(n.Content) == "" {
		return NewDomainError("note content is required")
	}
	if len(n.Content) > 2000 {
		return NewDomainError("note content must not exceed 2000 characters")
	}
	return nil
}
