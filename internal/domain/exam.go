package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// ExamStatus represents the workflow status of an exam
type ExamStatus string

const (
	ExamStatusNew        ExamStatus = "New"
	ExamStatusInProgress ExamStatus = "InProgress"
	ExamStatusCompleted  ExamStatus = "Completed"
)

// Exam represents a medical exam performed for a patient
type Exam struct {
	Meta
	PatientID    string     `json:"patient_id"`
	Modality     string     `json:"modality"` // e.g. CT, MRI, XRAY
	StudyType    string     `json:"study_type"`
	StudyDateUtc time.Time  `json:"study_date_utc"`
	StorageUri   *string    `json:"storage_uri,omitempty"`
	StorageKey   *string    `json:"storage_key,omitempty"`
	Status       ExamStatus `json:"status"`
}

// NewExam creates a new exam for a patient
func NewExam(patientID, modality, studyType string, studyDate time.Time) *Exam {
	return &Exam{
		Meta:         Meta{ID: uuid.NewString()},
		PatientID:    patientID,
		Modality:     modality,
		StudyType:    studyType,
		StudyDateUtc: studyDate,
		Status:       ExamStatusNew,
	}
}

func (e *Exam) Kind() string { return KindExam }

func (e *Exam) Snapshot() map[string]any {
	return map[string]any{
		"patient_id":     e.PatientID,
		"modality":       e.Modality,
		"study_type":     e.StudyType,
		"study_date_utc": e.StudyDateUtc,
		"storage_uri":    e.StorageUri,
		"storage_key":    e.StorageKey,
		"status":         string(e.Status),
	}
}

// Validate checks the exam's required fields
func (e *Exam) Validate() error {
	if e.PatientID == "" {
		return NewDomainError("patient id is required")
	}
	if strings.TrimSpace(e.Modality) == "" {
		return NewDomainError("modality is required")
	}
	if strings.TrimSpace(e.StudyType) == "" {
		return NewDomainError("study type is required")
	}
	if e.StudyDateUtc.IsZero() {
		return NewDomainError("study date is required")
	}
	return nil
}
