package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/caretrack/caretrack/internal/domain"
	"github.com/caretrack/caretrack/internal/persistence"
)

// CreatePatientReportRequest represents the request to record a report document
type CreatePatientReportRequest struct {
	FileName      string     `json:"file_name" validate:"required,max=255"`
	ReportType    string     `json:"report_type" validate:"required,max=100"`
	Description   *string    `json:"description,omitempty" validate:"omitempty,max=500"`
	FileSizeBytes int64      `json:"file_size_bytes"`
	ContentType   string     `json:"content_type" validate:"required,max=100"`
	FilePath      string     `json:"file_path" validate:"required,max=500"`
	UploadDateUtc *time.Time `json:"upload_date_utc,omitempty"`
}

// UpdatePatientReportRequest represents the request to update report metadata
type UpdatePatientReportRequest struct {
	FileName    string  `json:"file_name" validate:"required,max=255"`
	ReportType  string  `json:"report_type" validate:"required,max=100"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=500"`
	RowVersion  int64   `json:"row_version" validate:"required"`
}

// PatientReportManager handles report metadata business logic
type PatientReportManager struct {
	store  *persistence.Store
	logger *logrus.Logger
}

// NewPatientReportManager creates a new patient report manager
func NewPatientReportManager(store *persistence.Store, logger *logrus.Logger) *PatientReportManager {
	return &PatientReportManager{store: store, logger: logger}
}

// Create records report metadata against a visible patient.
func (m *PatientReportManager) Create(ctx context.Context, patientID string, req CreatePatientReportRequest, actor *string) (*domain.PatientReport, error) {
	uow := m.store.NewUnitOfWork()
	if _, err := uow.Patients.GetByID(ctx, patientID); err != nil {
		return nil, err
	}

	report := domain.NewPatientReport(patientID, req.FileName, req.ReportType, req.ContentType, req.FilePath, req.FileSizeBytes)
	report.Description = req.Description
	if req.UploadDateUtc != nil {
		report.UploadDateUtc = req.UploadDateUtc.UTC()
	}

	if err := report.Validate(); err != nil {
		return nil, err
	}

	uow.PatientReports.Add(report)
	if _, err := uow.Commit(ctx, actor); err != nil {
		return nil, fmt.Errorf("failed to create patient report: %w", err)
	}

	m.logger.WithFields(logrus.Fields{
		"report_id":  report.ID,
		"patient_id": patientID,
	}).Info("patient report created")
	return report, nil
}

// Get retrieves a visible report by ID.
func (m *PatientReportManager) Get(ctx context.Context, id string) (*domain.PatientReport, error) {
	if id == "" {
		return nil, domain.NewDomainError("report ID is required")
	}
	return m.store.NewUnitOfWork().PatientReports.GetByID(ctx, id)
}

// Search lists a patient's visible reports, newest first, optionally
// filtered by a term against file name or report type.
func (m *PatientReportManager) Search(ctx context.Context, patientID, term string, limit, offset int) ([]*domain.PatientReport, int, error) {
	if patientID == "" {
		return nil, 0, domain.NewDomainError("patient ID is required")
	}
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if term == "" {
		return m.store.NewUnitOfWork().PatientReports.ListByPatient(ctx, patientID, limit, offset)
	}
	return m.store.NewUnitOfWork().PatientReports.Search(ctx, patientID, term, limit, offset)
}

// Update applies the request to the stored report and commits it with the
// caller's concurrency token.
func (m *PatientReportManager) Update(ctx context.Context, id string, req UpdatePatientReportRequest, actor *string) (*domain.PatientReport, error) {
	uow := m.store.NewUnitOfWork()
	report, err := uow.PatientReports.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	report.FileName = req.FileName
	report.ReportType = req.ReportType
	report.Description = req.Description
	report.RowVersion = req.RowVersion

	if err := report.Validate(); err != nil {
		return nil, err
	}

	uow.PatientReports.Update(report)
	if _, err := uow.Commit(ctx, actor); err != nil {
		return nil, fmt.Errorf("failed to update patient report: %w", err)
	}
	return report, nil
}

// Delete soft-deletes a report.
func (m *PatientReportManager) Delete(ctx context.Context, id string, actor *string) error {
	uow := m.store.NewUnitOfWork()
	report, err := uow.PatientReports.GetByID(ctx, id)
	if err != nil {
		return err
	}

	uow.PatientReports.Remove(report)
	if _, err := uow.Commit(ctx, actor); err != nil {
		return fmt.Errorf("failed to delete patient report: %w", err)
	}

	m.logger.WithField("report_id", id).Info("patient report deleted")
	return nil
}
