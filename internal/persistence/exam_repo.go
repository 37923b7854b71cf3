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
		Kind:  domain.KindExam,
		Table: "exams",
		Columns: []string{
			"patient_id", "modality", "study_type", "study_date_utc",
			"storage_uri", "storage_key", "status",
		},
		Load: func(ctx context.Context, q dbtx, d Dialect, id string) (domain.Tracked, error) {
			e, err := loadExam(ctx, q, d, id, IncludeDeleted)
			if err != nil {
				return nil, err
			}
			return e, nil
		},
	})
}

// ExamRepository provides filtered reads over exams and stages writes
// into its unit of work.
type ExamRepository struct {
	store *Store
	uow   *UnitOfWork
}

func scanExam(sc scanner) (*domain.Exam, error) {
	var e domain.Exam
	var createdBy, modifiedBy, storageURI, storageKey sql.NullString
	var modifiedAt sql.NullTime
	var status string
	err := sc.Scan(
		&e.ID, &e.CreatedAtUtc, &createdBy, &modifiedAt, &modifiedBy, &e.IsDeleted, &e.RowVersion,
		&e.PatientID, &e.Modality, &e.StudyType, &e.StudyDateUtc, &storageURI, &storageKey, &status,
	)
	if err != nil {
		return nil, err
	}
	e.CreatedBy = strPtr(createdBy)
	e.ModifiedAtUtc = timePtr(modifiedAt)
	e.ModifiedBy = strPtr(modifiedBy)
	e.StorageUri = strPtr(storageURI)
	e.StorageKey = strPtr(storageKey)
	e.Status = domain.ExamStatus(status)
	return &e, nil
}

func loadExam(ctx context.Context, q dbtx, d Dialect, id string, v Visibility) (*domain.Exam, error) {
	b, err := bindingFor(domain.KindExam)
	if err != nil {
		return nil, err
	}
	query := d.Rebind(b.scopedSelect(v) + " AND id = ?")
	return scanExam(q.QueryRowContext(ctx, query, id))
}

// GetByID retrieves an exam; soft-deleted rows are invisible here.
func (r *ExamRepository) GetByID(ctx context.Context, id string) (*domain.Exam, error) {
	e, err := loadExam(ctx, r.store.db, r.store.dialect, id, VisibleOnly)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrExamNotFound
		}
		return nil, fmt.Errorf("failed to find exam: %w", err)
	}
	return e, nil
}

// ListByPatient lists a patient's visible exams, newest study first,
// with the total count.
func (r *ExamRepository) ListByPatient(ctx context.Context, patientID string, limit, offset int) ([]*domain.Exam, int, error) {
	b, err := bindingFor(domain.KindExam)
	if err != nil {
		return nil, 0, err
	}

	countQuery := r.store.dialect.Rebind(
		"SELECT COUNT(*) FROM exams WHERE is_deleted = FALSE AND patient_id = ?")
	var total int
	if err := r.store.db.QueryRowContext(ctx, countQuery, patientID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count exams: %w", err)
	}

	query := b.scopedSelect(VisibleOnly) + " AND patient_id = ? ORDER BY study_date_utc DESC"
	args := []any{patientID}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	if offset > 0 {
		query += " OFFSET ?"
		args = append(args, offset)
	}

	rows, err := r.store.db.QueryContext(ctx, r.store.dialect.Rebind(query), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query exams: %w", err)
	}
	defer rows.Close()

	var exams []*domain.Exam
	for rows.Next() {
		e, err := scanExam(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan exam: %w", err)
		}
		exams = append(exams, e)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating exams: %w", err)
	}
	return exams, total, nil
}

// Add stages a new exam for insertion at commit time.
func (r *ExamRepository) Add(e *domain.Exam) { r.uow.stage(e, stateAdded) }

// Update stages a modified exam.
func (r *ExamRepository) Update(e *domain.Exam) { r.uow.stage(e, stateModified) }

// Remove stages an exam for soft deletion.
func (r *ExamRepository) Remove(e *domain.Exam) { r.uow.stage(e, stateRemoved) }
