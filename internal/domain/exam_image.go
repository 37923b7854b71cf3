package domain

import (
	"strings"

	"github.com/google/uuid"
)

// ExamImage represents an image file attached to an exam
type ExamImage struct {
	Meta
	ExamID        string  `json:"exam_id"`
	FileName      string  `json:"file_name"`
	FileSizeBytes int64   `json:"file_size_bytes"`
	ContentType   string  `json:"content_type"`
	FilePath      string  `json:"file_path"`
	ThumbnailPath *string `json:"thumbnail_path,omitempty"`
	Width         *int    `json:"width,omitempty"`
	Height        *int    `json:"height,omitempty"`
}

// NewExamImage creates a new image attached to an exam
func NewExamImage(examID, fileName, contentType, filePath string, sizeBytes int64) *ExamImage {
	return &ExamImage{
		Meta:          Meta{ID: uuid.NewString()},
		ExamID:        examID,
		FileName:      fileName,
		ContentType:   contentType,
		FilePath:      filePath,
		FileSizeBytes: sizeBytes,
	}
}

func (i *ExamImage) Kind() string { return KindExamImage }

func (i *ExamImage) Snapshot() map[string]any {
	return map[string]any{
		"exam_id":         i.ExamID,
		"file_name":       i.FileName,
		"file_size_bytes": i.FileSizeBytes,
		"content_type":    i.ContentType,
		"file_path":       i.FilePath,
		"thumbnail_path":  i.ThumbnailPath,
		"width":           i.Width,
		"height":          i.Height,
	}
}

// Validate checks the image's required fields
func (i *ExamImage) Validate() error {
	if i.ExamID == "" {
		return NewDomainError("exam id is required")
	}
	if strings.TrimSpace(i.FileName) == "" {
		return NewDomainError("file name is required")
	}
	if strings.TrimSpace(i.FilePath) == "" {
		return NewDomainError("file path is required")
	}
	if i.FileSizeBytes < 0 {
		return NewDomainError("file size must not be negative")
	}
	return nil
}
