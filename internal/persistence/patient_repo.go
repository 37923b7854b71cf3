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
		Kind:    domain.KindPatient,
		Table:   "patients",
		Columns: []string{"first_name", "last_name", "mrn", "date_of_birth", "gender"},
		Load: func(ctx context.Context, q dbtx, d Dialect, id string) (domain.Tracked, error) {
			p, err := loadPatient(ctx, q, d, id, IncludeDeleted)
			if err != nil {
				return nil, err
			}
			return p, nil
		},
	})
}

// PatientRepository provides filtered reads over patients and stages
// writes into its unit of work.
type PatientRepository struct {
	store *Store
	uow   *UnitOfWork
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPatient(sc scanner) (*domain.Patient, error) {
	var p domain.Patient
	var createdBy, modifiedBy, mrn, gender sql.NullString
	var modifiedAt, dob sql.NullTime
	err := sc.Scan(
		&p.ID, &p.CreatedAtUtc, &createdBy, &modifiedAt, &modifiedBy, &p.IsDeleted, &p.RowVersion,
		&p.FirstName, &p.LastName, &mrn, &dob, &gender,
	)
	if err != nil {
		return nil, err
	}
	p.CreatedBy = strPtr(createdBy)
	p.ModifiedAtUtc = timePtr(modifiedAt)
	p.ModifiedBy = strPtr(modifiedBy)
	p.MRN = strPtr(mrn)
	p.DateOfBirth = timePtr(dob)
	p.Gender = strPtr(gender)
	return &p, nil
}

func loadPatient(ctx context.Context, q dbtx, d Dialect, id string, v Visibility) (*domain.Patient, error) {
	b, err := bindingFor(domain.KindPatient)
	if err != nil {
		return nil, err
	}
	query := d.Rebind(b.scopedSelect(v) + " AND id = ?")
	return scanPatient(q.QueryRowContext(ctx, query, id))
}

// GetByID retrieves a patient; soft-deleted rows are invisible here.
func (r *PatientRepository) GetByID(ctx context.Context, id string) (*domain.Patient, error) {
	p, err := loadPatient(ctx, r.store.db, r.store.dialect, id, VisibleOnly)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrPatientNotFound
		}
		return nil, fmt.Errorf("failed to find patient: %w", err)
	}
	return p, nil
}

// GetByIDIncludeDeleted is the explicit deleted-inclusive read path.
func (r *PatientRepository) GetByIDIncludeDeleted(ctx context.Context, id string) (*domain.Patient, error) {
	p, err := loadPatient(ctx, r.store.db, r.store.dialect, id, IncludeDeleted)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrPatientNotFound
		}
		return nil, fmt.Errorf("failed to find patient: %w", err)
	}
	return p, nil
}

// ExistsByMRN reports whether a visible patient carries the MRN.
func (r *PatientRepository) ExistsByMRN(ctx context.Context, mrn string) (bool, error) {
	query := r.store.dialect.Rebind(
		"SELECT COUNT(*) FROM patients WHERE is_deleted = FALSE AND mrn = ?")
	var count int
	if err := r.store.db.QueryRowContext(ctx, query, mrn).Scan(&count); err != nil {
		return false, fmt.Errorf("failed to check MRN: %w", err)
	}
	return count > 0, nil
}

// Search lists visible patients matching the term against name or MRN,
// ordered by last then first name, with the total match count.
func (r *PatientRepository) Search(ctx context.Context, filter domain.PatientFilter) ([]*domain.Patient, int, error) {
	b, err := bindingFor(domain.KindPatient)
	if err != nil {
		return nil, 0, err
	}

	where := VisibleOnly.predicate()
	var args []any
	if filter.Term != "" {
		where += " AND (first_name || ' ' || last_name LIKE ? OR last_name || ' ' || first_name LIKE ? OR COALESCE(mrn, '') LIKE ?)"
		pattern := "%" + filter.Term + "%"
		args = append(args, pattern, pattern, pattern)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM patients WHERE %s", where)
	var total int
	if err := r.store.db.QueryRowContext(ctx, r.store.dialect.Rebind(countQuery), args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count patients: %w", err)
	}

	query := fmt.Sprintf(
		"SELECT %s FROM patients WHERE %s ORDER BY last_name, first_name",
		b.selectList(), where,
	)
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}
	if filter.Offset > 0 {
		query += " OFFSET ?"
		args = append(args, filter.Offset)
	}

	rows, err := r.store.db.QueryContext(ctx, r.store.dialect.Rebind(query), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query patients: %w", err)
	}
	defer rows.Close()

	var patients []*domain.Patient
	for rows.Next() {
		p, err := scanPatient(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan patient: %w", err)
		}
		patients = append(patients, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating patients: %w", err)
	}
	return patients, total, nil
}

// GetDeleted lists soft-deleted patients.
func (r *PatientRepository) GetDeleted(ctx context.Context) ([]*domain.Patient, error) {
	b, err := bindingFor(domain.KindPatient)
	if err != nil {
		return nil, err
	}
	query := r.store.dialect.Rebind(b.scopedSelect(DeletedOnly) + " ORDER BY last_name, first_name")
	rows, err := r.store.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query deleted patients: %w", err)
	}
	defer rows.Close()

	var patients []*domain.Patient
	for rows.Next() {
		p, err := scanPatient(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan patient: %w", err)
		}
		patients = append(patients, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating deleted patients: %w", err)
	}
	return patients, nil
}

// Add stages a new patient for insertion at commit time.
func (r *PatientRepository) Add(p *domain.Patient) { r.uow.stage(p, stateAdded) }

// Update stages a modified patient.
func (r *PatientRepository) Update(p *domain.Patient) { r.uow.stage(p, stateModified) }

// Remove stages a patient for soft deletion.
func (r *PatientRepository) Remove(p *domain.Patient) { r.uow.stage(p, stateRemoved) }
