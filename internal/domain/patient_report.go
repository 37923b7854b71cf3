package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// PatientReport represents a medical report document attached to a
// patient: blood tests, radiology reports, lab results. Only the file
// metadata lives here; the file content is stored elsewhere.
type PatientReport struct {
	Meta
	PatientID     string    `json:"patient_id"`
	FileName      string    `json:"file_name"`
	ReportType    string    `json:"report_type"`
	Description   *string   `json:"description,omitempty"`
	FileSizeBytes int64     `json:"file_size_bytes"`
	ContentType   string    `json:"content_type"`
	FilePath      string    `json:"file_path"`
	UploadDateUtc time.Time `json:"upload_date_utc"`
}

// NewPatientReport creates a new report attached to a patient, dated now.
func NewPatientReport(patientID, fileName, reportType, contentType, filePath string, sizeBytes int64) *PatientReport {
	return &PatientReport{
		Meta:          Meta{ID: uuid.NewString()},
		PatientID:     patientID,
		FileName:      fileName,
		ReportType:    reportType,
		ContentType:   contentType,
		FilePath:      filePath,
		FileSizeBytes: sizeBytes,
		UploadDateUtc: time.Now().UTC(),
	}
}

func (r *PatientReport) Kind() string { return KindPatientReport }

func (r *PatientReport) Snapshot() map[string]any {
	return map[string]any{
		"patient_id":      r.PatientID,
		"file_name":       r.FileName,
		"report_type":     r.ReportType,
		"description":     r.Description,
		"file_size_bytes": r.FileSizeBytes,
		"content_type":    r.ContentType,
		"file_path":       r.FilePath,
		"upload_date_utc": r.UploadDateUtc,
	}
}

// Validate checks the report's required fields
func (r *PatientReport) Validate() error {
	if r.PatientID == "" {
		return NewDomainError("patient id is required")
	}
	if strings.TrimSpace(r.FileName) == "" {
		return NewDomainError("file name is required")
	}
	if strings.TrimSpace(r.ReportType) == "" {
		return NewDomainError("report type is required")
	}
	if strings.TrimSpace(r.FilePath) == "" {
		return NewDomainError("file path is required")
	}
	if r.FileSizeBytes < 0 {
		return NewDomainError("file size must not be negative")
	}
	return nil
}
