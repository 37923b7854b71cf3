package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/caretrack/caretrack/internal/domain"
)

func init() {
	Register(&EntityBinding{
		Kind:  domain.KindExamImage,
		Table: "exam_images",
		Columns: []string{
			"exam_id", "file_name", "file_size_bytes", "content_type",
			"file_path", "thumbnail_path", "width", "height",
		},
		Load: func(ctx context.Context, q dbtx, d Dialect, id string) (domain.Tracked, error) {
			img, err := loadExamImage(ctx, q, d, id, IncludeDeleted)
			if err != nil {
				return nil, err
			}
			return img, nil
		},
	})
}

// ExamImageRepository provides filtered reads over exam images and
// stages writes into its unit of work.
type ExamImageRepository struct {
	store *Store
	uow   *UnitOfWork
}

func scanExamImage(sc scanner) (*domain.ExamImage, error) {
	var img domain.ExamImage
	var createdBy, modifiedBy, thumbnail sql.NullString
	var modifiedAt sql.NullTime
	var width, height sql.NullInt64
	err := sc.Scan(
		&img.ID, &img.CreatedAtUtc, &createdBy, &modifiedAt, &modifiedBy, &img.IsDeleted, &img.RowVersion,
		&img.ExamID, &img.FileName, &img.FileSizeBytes, &img.ContentType,
		&img.FilePath, &thumbnail, &width, &height,
	)
	if err != nil {
		return nil, err
	}
	img.CreatedBy = strPtr(createdBy)
	img.ModifiedAtUtc = timePtr(modifiedAt)
	img.ModifiedBy = strPtr(modifiedBy)
	img.ThumbnailPath = strPtr(thumbnail)
	img.Width = intPtr(width)
	img.Height = intPtr(height)
	return &img, nil
}

func loadExamImage(ctx context.Context, q dbtx, d Dialect, id string, v Visibility) (*domain.ExamImage, error) {
	b, err := bindingFor(domain.KindExamImage)
	if err != nil {
		return nil, err
	}
	query := d.Rebind(b.scopedSelect(v) + " AND id = ?")
	return scanExamImage(q.QueryRowContext(ctx, query, id))
}

// GetByID retrieves an exam image; soft-deleted rows are invisible here.
func (r *ExamImageRepository) GetByID(ctx context.Context, id string) (*domain.ExamImage, error) {
	img, err := loadExamImage(ctx, r.store.db, r.store.dialect, id, VisibleOnly)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrExamImageNotFound
		}
		return nil, fmt.Errorf("failed to find exam image: %w", err)
	}
	return img, nil
}

// ListByExam lists an exam's visible images, oldest upload first.
func (r *ExamImageRepository) ListByExam(ctx context.Context, examID string) ([]*domain.ExamImage, error) {
	b, err := bindingFor(domain.KindExamImage)
	if err != nil {
		return nil, err
	}
	query := r.store.dialect.Rebind(
		b.scopedSelect(VisibleOnly) + " AND exam_id = ? ORDER BY created_at_utc")
	rows, err := r.store.db.QueryContext(ctx, query, examID)
	if err != nil {
		return nil, fmt.Errorf("failed to query exam images: %w", err)
	}
	defer rows.Close()

	var images []*domain.ExamImage
	for rows.Next() {
		img, err := scanExamImage(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan exam image: %w", err)
		}
		images = append(images, img)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating exam images: %w", err)
	}
	return images, nil
}

// Add stages a new exam image for insertion at commit time.
func (r *ExamImageRepository) Add(img *domain.ExamImage) { r.uow.stage(img, stateAdded) }

// Update stages a modified exam image.
func (r *ExamImageRepository) Update(img *domain.ExamImage) { r.uow.stage(img, stateModified) }

// Remove stages an exam image for soft deletion.
func (r *ExamImageRepository) Remove(img *domain.ExamImage) { r.uow.stage(img, stateRemoved) }
