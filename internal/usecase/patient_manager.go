package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/caretrack/caretrack/internal/domain"
	"github.com/caretrack/caretrack/internal/persistence"
)

// CreatePatientRequest represents the request to register a patient
type CreatePatientRequest struct {
	FirstName   string     `json:"first_name" validate:"required,max=100"`
	LastName    string     `json:"last_name" validate:"required,max=100"`
	MRN         *string    `json:"mrn,omitempty" validate:"omitempty,max=50"`
	DateOfBirth *time.Time `json:"date_of_birth,omitempty"`
	Gender      *string    `json:"gender,omitempty"`
}

// UpdatePatientRequest represents the request to update a patient. The
// row version must be the one the caller loaded; a stale version is
// rejected at commit time.
type UpdatePatientRequest struct {
	FirstName   string     `json:"first_name" validate:"required,max=100"`
	LastName    string     `json:"last_name" validate:"required,max=100"`
	MRN         *string    `json:"mrn,omitempty" validate:"omitempty,max=50"`
	DateOfBirth *time.Time `json:"date_of_birth,omitempty"`
	Gender      *string    `json:"gender,omitempty"`
	RowVersion  int64      `json:"row_version" validate:"required"`
}

// PatientManager handles patient-related business logic
type PatientManager struct {
	store  *persistence.Store
	logger *logrus.Logger
}

// NewPatientManager creates a new patient manager
func NewPatientManager(store *persistence.Store, logger *logrus.Logger) *PatientManager {
	return &PatientManager{store: store, logger: logger}
}

// Create registers a new patient. The MRN, when present, must not be in
// use by another visible patient.
func (m *PatientManager) Create(ctx context.Context, req CreatePatientRequest, actor *string) (*domain.Patient, error) {
	patient := domain.NewPatient(req.FirstName, req.LastName)
	patient.MRN = req.MRN
	patient.DateOfBirth = req.DateOfBirth
	patient.Gender = req.Gender

	if err := patient.Validate(); err != nil {
		return nil, err
	}

	uow := m.store.NewUnitOfWork()
	if req.MRN != nil && *req.MRN != "" {
		exists, err := uow.Patients.ExistsByMRN(ctx, *req.MRN)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, domain.NewDomainError("a patient with this MRN already exists")
		}
	}

	uow.Patients.Add(patient)
	if _, err := uow.Commit(ctx, actor); err != nil {
		return nil, fmt.Errorf("failed to create patient: %w", err)
	}

	m.logger.WithField("patient_id", patient.ID).Info("patient created")
	return patient, nil
}

// Get retrieves a visible patient by ID.
func (m *PatientManager) Get(ctx context.Context, id string) (*domain.Patient, error) {
	if id == "" {
		return nil, domain.NewDomainError("patient ID is required")
	}
	return m.store.NewUnitOfWork().Patients.GetByID(ctx, id)
}

// Search lists visible patients matching the filter term, with the
// total match count for pagination.
func (m *PatientManager) Search(ctx context.Context, filter domain.PatientFilter) ([]*domain.Patient, int, error) {
	if filter.Limit <= 0 {
		filter.Limit = 20
	}
	if filter.Limit > 100 {
		filter.Limit = 100
	}
	return m.store.NewUnitOfWork().Patients.Search(ctx, filter)
}

// Update applies the request to the stored patient and commits it with
// the caller's concurrency token.
func (m *PatientManager) Update(ctx context.Context, id string, req UpdatePatientRequest, actor *string) (*domain.Patient, error) {
	uow := m.store.NewUnitOfWork()
	patient, err := uow.Patients.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.MRN != nil && *req.MRN != "" && (patient.MRN == nil || *patient.MRN != *req.MRN) {
		exists, err := uow.Patients.ExistsByMRN(ctx, *req.MRN)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, domain.NewDomainError("a patient with this MRN already exists")
		}
	}

	patient.FirstName = req.FirstName
	patient.LastName = req.LastName
	patient.MRN = req.MRN
	patient.DateOfBirth = req.DateOfBirth
	patient.Gender = req.Gender
	patient.RowVersion = req.RowVersion

	if err := patient.Validate(); err != nil {
		return nil, err
	}

	uow.Patients.Update(patient)
	if _, err := uow.Commit(ctx, actor); err != nil {
		return nil, fmt.Errorf("failed to update patient: %w", err)
	}
	return patient, nil
}

// Delete soft-deletes a patient. The row survives for the deleted-rows
// views and for restore.
func (m *PatientManager) Delete(ctx context.Context, id string, actor *string) error {
	uow := m.store.NewUnitOfWork()
	patient, err := uow.Patients.GetByID(ctx, id)
	if err != nil {
		return err
	}

	uow.Patients.Remove(patient)
	if _, err := uow.Commit(ctx, actor); err != nil {
		return fmt.Errorf("failed to delete patient: %w", err)
	}

	m.logger.WithField("patient_id", id).Info("patient deleted")
	return nil
}

// Restore reinstates a soft-deleted patient through the normal update
// pipeline, so the flip is audited like any other change.
func (m *PatientManager) Restore(ctx context.Context, id string, actor *string) (*domain.Patient, error) {
	uow := m.store.NewUnitOfWork()
	patient, err := uow.Patients.GetByIDIncludeDeleted(ctx, id)
	if err != nil {
		return nil, err
	}
	if !patient.IsDeleted {
		return nil, domain.NewDomainError("patient is not deleted")
	}

	patient.IsDeleted = false
	uow.Patients.Update(patient)
	if _, err := uow.Commit(ctx, actor); err != nil {
		return nil, fmt.Errorf("failed to restore patient: %w", err)
	}

	m.logger.WithField("patient_id", id).Info("patient restored")
	return patient, nil
}

// ListDeleted lists soft-deleted patients.
func (m *PatientManager) ListDeleted(ctx context.Context) ([]*domain.Patient, error) {
	return m.store.NewUnitOfWork().Patients.GetDeleted(ctx)
}
