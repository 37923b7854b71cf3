package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/caretrack/caretrack/internal/domain"
	"github.com/caretrack/caretrack/internal/persistence"
)

// CreateExamRequest represents the request to record an exam
type CreateExamRequest struct {
	PatientID    string    `json:"patient_id" validate:"required"`
	Modality     string    `json:"modality" validate:"required,max=100"`
	StudyType    string    `json:"study_type" validate:"required,max=100"`
	StudyDateUtc time.Time `json:"study_date_utc" validate:"required"`
	StorageUri   *string   `json:"storage_uri,omitempty"`
	StorageKey   *string   `json:"storage_key,omitempty"`
}

// UpdateExamRequest represents the request to update an exam
type UpdateExamRequest struct {
	Modality     string            `json:"modality" validate:"required,max=100"`
	StudyType    string            `json:"study_type" validate:"required,max=100"`
	StudyDateUtc time.Time         `json:"study_date_utc" validate:"required"`
	StorageUri   *string           `json:"storage_uri,omitempty"`
	StorageKey   *string           `json:"storage_key,omitempty"`
	Status       domain.ExamStatus `json:"status" validate:"required"`
	RowVersion   int64             `json:"row_version" validate:"required"`
}

// AttachImageRequest represents the request to attach an image to an exam
type AttachImageRequest struct {
	FileName      string  `json:"file_name" validate:"required,max=255"`
	FileSizeBytes int64   `json:"file_size_bytes"`
	ContentType   string  `json:"content_type" validate:"required,max=100"`
	FilePath      string  `json:"file_path" validate:"required,max=500"`
	ThumbnailPath *string `json:"thumbnail_path,omitempty"`
	Width         *int    `json:"width,omitempty"`
	Height        *int    `json:"height,omitempty"`
}

// ExamManager handles exam and exam-image business logic
type ExamManager struct {
	store  *persistence.Store
	logger *logrus.Logger
}

// NewExamManager creates a new exam manager
func NewExamManager(store *persistence.Store, logger *logrus.Logger) *ExamManager {
	return &ExamManager{store: store, logger: logger}
}

// Create records a new exam for an existing visible patient.
func (m *ExamManager) Create(ctx context.Context, req CreateExamRequest, actor *string) (*domain.Exam, error) {
	uow := m.store.NewUnitOfWork()
	if _, err := uow.Patients.GetByID(ctx, req.PatientID); err != nil {
		return nil, err
	}

	exam := domain.NewExam(req.PatientID, req.Modality, req.StudyType, req.StudyDateUtc)
	exam.StorageUri = req.StorageUri
	exam.StorageKey = req.StorageKey

	if err := exam.Validate(); err != nil {
		return nil, err
	}

	uow.Exams.Add(exam)
	if _, err := uow.Commit(ctx, actor); err != nil {
		return nil, fmt.Errorf("failed to create exam: %w", err)
	}

	m.logger.WithFields(logrus.Fields{
		"exam_id":    exam.ID,
		"patient_id": exam.PatientID,
	}).Info("exam created")
	return exam, nil
}

// Get retrieves a visible exam by ID.
func (m *ExamManager) Get(ctx context.Context, id string) (*domain.Exam, error) {
	if id == "" {
		return nil, domain.NewDomainError("exam ID is required")
	}
	return m.store.NewUnitOfWork().Exams.GetByID(ctx, id)
}

// ListByPatient lists a patient's visible exams, newest study first.
func (m *ExamManager) ListByPatient(ctx context.Context, patientID string, limit, offset int) ([]*domain.Exam, int, error) {
	if patientID == "" {
		return nil, 0, domain.NewDomainError("patient ID is required")
	}
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	return m.store.NewUnitOfWork().Exams.ListByPatient(ctx, patientID, limit, offset)
}

// Update applies the request to the stored exam and commits it with the
// caller's concurrency token.
func (m *ExamManager) Update(ctx context.Context, id string, req UpdateExamRequest, actor *string) (*domain.Exam, error) {
	uow := m.store.NewUnitOfWork()
	exam, err := uow.Exams.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	exam.Modality = req.Modality
	exam.StudyType = req.StudyType
	exam.StudyDateUtc = req.StudyDateUtc
	exam.StorageUri = req.StorageUri
	exam.StorageKey = req.StorageKey
	exam.Status = req.Status
	exam.RowVersion = req.RowVersion

	if err := exam.Validate(); err != nil {
		return nil, err
	}
	switch exam.Status {
	case domain.ExamStatusNew, domain.ExamStatusInProgress, domain.ExamStatusCompleted:
	default:
		return nil, domain.NewDomainError("invalid exam status")
	}

	uow.Exams.Update(exam)
	if _, err := uow.Commit(ctx, actor); err != nil {
		return nil, fmt.Errorf("failed to update exam: %w", err)
	}
	return exam, nil
}

// Delete soft-deletes an exam together with its visible images in one
// commit, so the whole removal shares a single audit timestamp.
func (m *ExamManager) Delete(ctx context.Context, id string, actor *string) error {
	uow := m.store.NewUnitOfWork()
	exam, err := uow.Exams.GetByID(ctx, id)
	if err != nil {
		return err
	}
	images, err := uow.ExamImages.ListByExam(ctx, id)
	if err != nil {
		return err
	}

	for _, img := range images {
		uow.ExamImages.Remove(img)
	}
	uow.Exams.Remove(exam)

	affected, err := uow.Commit(ctx, actor)
	if err != nil {
		return fmt.Errorf("failed to delete exam: %w", err)
	}

	m.logger.WithFields(logrus.Fields{
		"exam_id": id,
		"rows":    affected,
	}).Info("exam deleted")
	return nil
}

// AttachImage records a new image file against a visible exam.
func (m *ExamManager) AttachImage(ctx context.Context, examID string, req AttachImageRequest, actor *string) (*domain.ExamImage, error) {
	uow := m.store.NewUnitOfWork()
	if _, err := uow.Exams.GetByID(ctx, examID); err != nil {
		return nil, err
	}

	img := domain.NewExamImage(examID, req.FileName, req.ContentType, req.FilePath, req.FileSizeBytes)
	img.ThumbnailPath = req.ThumbnailPath
	img.Width = req.Width
	img.Height = req.Height

	if err := img.Validate(); err != nil {
		return nil, err
	}

	uow.ExamImages.Add(img)
	if _, err := uow.Commit(ctx, actor); err != nil {
		return nil, fmt.Errorf("failed to attach exam image: %w", err)
	}
	return img, nil
}

// ListImages lists an exam's visible images.
func (m *ExamManager) ListImages(ctx context.Context, examID string) ([]*domain.ExamImage, error) {
	if examID == "" {
		return nil, domain.NewDomainError("exam ID is required")
	}
	return m.store.NewUnitOfWork().ExamImages.ListByExam(ctx, examID)
}

// DeleteImage soft-deletes a single exam image.
func (m *ExamManager) DeleteImage(ctx context.Context, imageID string, actor *string) error {
	uow := m.store.NewUnitOfWork()
	img, err := uow.ExamImages.GetByID(ctx, imageID)
	if err != nil {
		return err
	}

	uow.ExamImages.Remove(img)
	if _, err := uow.Commit(ctx, actor); err != nil {
		return fmt.Errorf("failed to delete exam image: %w", err)
	}
	return nil
}
