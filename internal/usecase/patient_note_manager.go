package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/caretrack/caretrack/internal/domain"
	"github.com/caretrack/caretrack/internal/persistence"
)

// CreatePatientNoteRequest represents the request to record a clinical note
type CreatePatientNoteRequest struct {
	NoteType   string     `json:"note_type,omitempty" validate:"omitempty,max=50"`
	Content    string     `json:"content" validate:"required,max=2000"`
	AuthorName *string    `json:"author_name,omitempty" validate:"omitempty,max=100"`
	NoteDate   *time.Time `json:"note_date,omitempty"`
}

// UpdatePatientNoteRequest represents the request to update a note
type UpdatePatientNoteRequest struct {
	NoteType   string  `json:"note_type" validate:"required,max=50"`
	Content    string  `json:"content" validate:"required,max=2000"`
	AuthorName *string `json:"author_name,omitempty" validate:"omitempty,max=100"`
	RowVersion int64   `json:"row_version" validate:"required"`
}

// PatientNoteManager handles clinical note business logic
type PatientNoteManager struct {
	store  *persistence.Store
	logger *logrus.Logger
}

// NewPatientNoteManager creates a new patient note manager
func NewPatientNoteManager(store *persistence.Store, logger *logrus.Logger) *PatientNoteManager {
	return &PatientNoteManager{store: store, logger: logger}
}

// Create records a new note against a visible patient.
func (m *PatientNoteManager) Create(ctx context.Context, patientID string, req CreatePatientNoteRequest, actor *string) (*domain.PatientNote, error) {
	uow := m.store.NewUnitOfWork()
	if _, err := uow.Patients.GetByID(ctx, patientID); err != nil {
		return nil, err
	}

	note := domain.NewPatientNote(patientID, req.Content)
	if req.NoteType != "" {
		note.NoteType = req.NoteType
	}
	note.AuthorName = req.AuthorName
	if req.NoteDate != nil {
		note.NoteDate = req.NoteDate.UTC()
	}

	if err := note.Validate(); err != nil {
		return nil, err
	}

	uow.PatientNotes.Add(note)
	if _, err := uow.Commit(ctx, actor); err != nil {
		return nil, fmt.Errorf("failed to create patient note: %w", err)
	}

	m.logger.WithFields(logrus.Fields{
		"note_id":    note.ID,
		"patient_id": patientID,
	}).Info("patient note created")
	return note, nil
}

// Get retrieves a visible note by ID.
func (m *PatientNoteManager) Get(ctx context.Context, id string) (*domain.PatientNote, error) {
	if id == "" {
		return nil, domain.NewDomainError("note ID is required")
	}
	return m.store.NewUnitOfWork().PatientNotes.GetByID(ctx, id)
}

// ListByPatient lists a patient's visible notes, newest first.
func (m *PatientNoteManager) ListByPatient(ctx context.Context, patientID string, limit, offset int) ([]*domain.PatientNote, error) {
	if patientID == "" {
		return nil, domain.NewDomainError("patient ID is required")
	}
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	return m.store.NewUnitOfWork().PatientNotes.ListByPatient(ctx, patientID, limit, offset)
}

// Update applies the request to the stored note and commits it with the
// caller's concurrency token.
func (m *PatientNoteManager) Update(ctx context.Context, id string, req UpdatePatientNoteRequest, actor *string) (*domain.PatientNote, error) {
	uow := m.store.NewUnitOfWork()
	note, err := uow.PatientNotes.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	note.NoteType = req.NoteType
	note.Content = req.Content
	note.AuthorName = req.AuthorName
	note.RowVersion = req.RowVersion

	if err := note.Validate(); err != nil {
		return nil, err
	}

	uow.PatientNotes.Update(note)
	if _, err := uow.Commit(ctx, actor); err != nil {
		return nil, fmt.Errorf("failed to update patient note: %w", err)
	}
	return note, nil
}

// Delete soft-deletes a note.
func (m *PatientNoteManager) Delete(ctx context.Context, id string, actor *string) error {
	uow := m.store.NewUnitOfWork()
	note, err := uow.PatientNotes.GetByID(ctx, id)
	if err != nil {
		return err
	}

	uow.PatientNotes.Remove(note)
	if _, err := uow.Commit(ctx, actor); err != nil {
		return fmt.Errorf("failed to delete patient note: %w", err)
	}
	return nil
}
