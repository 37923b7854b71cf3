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
		Kind:  domain.KindPatientReport,
		Table: "patient_reports",
		Columns: []string{
			"patient_id", "file_name", "report_type", "description",
			"file_size_bytes", "content_type", "file_path", "upload_date_utc",
		},
		Load: func(ctx context.Context, q dbtx, d Dialect, id string) (domain.Tracked, error) {
			rep, err := loadPatientReport(ctx, q, d, id, IncludeDeleted)
			if err != nil {
				return nil, err
			}
			return rep, nil
		},
	})
}

// PatientReportRepository provides filtered reads over patient report
// metadata and stages writes into its unit of work.
type PatientReportRepository struct {
	store *Store
	uow   *UnitOfWork
}

func scanPatientReport(sc scanner) (*domain.PatientReport, error) {
	var rep domain.PatientReport
	var createdBy, modifiedBy, description sql.NullString
	var modifiedAt sql.NullTime
	err := sc.Scan(
		&rep.ID, &rep.CreatedAtUtc, &createdBy, &modifiedAt, &modifiedBy, &rep.IsDeleted, &rep.RowVersion,
		&rep.PatientID, &rep.FileName, &rep.ReportType, &description,
		&rep.FileSizeBytes, &rep.ContentType, &rep.FilePath, &rep.UploadDateUtc,
	)
	if err != nil {
		return nil, err
	}
	rep.CreatedBy = strPtr(createdBy)
	rep.ModifiedAtUtc = timePtr(modifiedAt)
	rep.ModifiedBy = strPtr(modifiedBy)
	rep.Description = strPtr(description)
	return &rep, nil
}

func loadPatientReport(ctx context.Context, q dbtx, d Dialect, id string, v Visibility) (*domain.PatientReport, error) {
	b, err := bindingFor(domain.KindPatientReport)
	if err != nil {
		return nil, err
	}
	query := d.Rebind(b.scopedSelect(v) + " AND id = ?")
	return scanPatientReport(q.QueryRowContext(ctx, query, id))
}

// GetByID retrieves a report; soft-deleted rows are invisible here.
func (r *PatientReportRepository) GetByID(ctx context.Context, id string) (*domain.PatientReport, error) {
	rep, err := loadPatientReport(ctx, r.store.db, r.store.dialect, id, VisibleOnly)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrReportNotFound
		}
		return nil, fmt.Errorf("failed to find patient report: %w", err)
	}
	return rep, nil
}

// ListByPatient lists a patient's visible reports, newest first, with the
// total match count.
func (r *PatientReportRepository) ListByPatient(ctx context.Context, patientID string, limit, offset int) ([]*domain.PatientReport, int, error) {
	return r.query(ctx, patientID, "", limit, offset)
}

// Search lists a patient's visible reports whose file name or report type
// matches the term, newest first, with the total match count.
func (r *PatientReportRepository) Search(ctx context.Context, patientID, term string, limit, offset int) ([]*domain.PatientReport, int, error) {
	return r.query(ctx, patientID, term, limit, offset)
}

func (r *PatientReportRepository) query(ctx context.Context, patientID, term string, limit, offset int) ([]*domain.PatientReport, int, error) {
	b, err := bindingFor(domain.KindPatientReport)
	if err != nil {
		return nil, 0, err
	}

	where := VisibleOnly.predicate() + " AND patient_id = ?"
	args := []any{patientID}
	if term != "" {
		where += " AND (file_name LIKE ? OR report_type LIKE ?)"
		pattern := "%" + term + "%"
		args = append(args, pattern, pattern)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM patient_reports WHERE %s", where)
	var total int
	if err := r.store.db.QueryRowContext(ctx, r.store.dialect.Rebind(countQuery), args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count patient reports: %w", err)
	}

	query := fmt.Sprintf(
		"SELECT %s FROM patient_reports WHERE %s ORDER BY created_at_utc DESC",
		b.selectList(), where,
	)
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
		return nil, 0, fmt.Errorf("failed to query patient reports: %w", err)
	}
	defer rows.Close()

	var reports []*domain.PatientReport
	for rows.Next() {
		rep, err := scanPatientReport(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan patient report: %w", err)
		}
		reports = append(reports, rep)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating patient reports: %w", err)
	}
	return reports, total, nil
}

// Add stages a new report for insertion at commit time.
func (r *PatientReportRepository) Add(rep *domain.PatientReport) { r.uow.stage(rep, stateAdded) }

// Update stages a modified report.
func (r *PatientReportRepository) Update(rep *domain.PatientReport) { r.uow.stage(rep, stateModified) }

// Remove stages a report for soft deletion.
func (r *PatientReportRepository) Remove(rep *domain.PatientReport) { r.uow.stage(rep, stateRemoved) }
