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
		Kind:  domain.KindClinicSite,
		Table: "clinic_sites",
		Columns: []string{
			"name", "code", "address", "city", "state", "postal_code",
			"country", "phone", "email", "is_active", "description",
		},
		Load: func(ctx context.Context, q dbtx, d Dialect, id string) (domain.Tracked, error) {
			s, err := loadClinicSite(ctx, q, d, id, IncludeDeleted)
			if err != nil {
				return nil, err
			}
			return s, nil
		},
	})
}

// ClinicSiteRepository provides filtered reads over clinic sites and
// stages writes into its unit of work.
type ClinicSiteRepository struct {
	store *Store
	uow   *UnitOfWork
}

func scanClinicSite(sc scanner) (*domain.ClinicSite, error) {
	var s domain.ClinicSite
	var createdBy, modifiedBy sql.NullString
	var modifiedAt sql.NullTime
	var address, city, state, postal, country, phone, email, description sql.NullString
	err := sc.Scan(
		&s.ID, &s.CreatedAtUtc, &createdBy, &modifiedAt, &modifiedBy, &s.IsDeleted, &s.RowVersion,
		&s.Name, &s.Code, &address, &city, &state, &postal,
		&country, &phone, &email, &s.IsActive, &description,
	)
	if err != nil {
		return nil, err
	}
	s.CreatedBy = strPtr(createdBy)
	s.ModifiedAtUtc = timePtr(modifiedAt)
	s.ModifiedBy = strPtr(modifiedBy)
	s.Address = strPtr(address)
	s.City = strPtr(city)
	s.State = strPtr(state)
	s.PostalCode = strPtr(postal)
	s.Country = strPtr(country)
	s.Phone = strPtr(phone)
	s.Email = strPtr(email)
	s.Description = strPtr(description)
	return &s, nil
}

func loadClinicSite(ctx context.Context, q dbtx, d Dialect, id string, v Visibility) (*domain.ClinicSite, error) {
	b, err := bindingFor(domain.KindClinicSite)
	if err != nil {
		return nil, err
	}
	query := d.Rebind(b.scopedSelect(v) + " AND id = ?")
	return scanClinicSite(q.QueryRowContext(ctx, query, id))
}

// GetByID retrieves a clinic site; soft-deleted rows are invisible here.
func (r *ClinicSiteRepository) GetByID(ctx context.Context, id string) (*domain.ClinicSite, error) {
	s, err := loadClinicSite(ctx, r.store.db, r.store.dialect, id, VisibleOnly)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrClinicSiteNotFound
		}
		return nil, fmt.Errorf("failed to find clinic site: %w", err)
	}
	return s, nil
}

// GetByCode retrieves a visible clinic site by its unique code.
func (r *ClinicSiteRepository) GetByCode(ctx context.Context, code string) (*domain.ClinicSite, error) {
	b, err := bindingFor(domain.KindClinicSite)
	if err != nil {
		return nil, err
	}
	query := r.store.dialect.Rebind(b.scopedSelect(VisibleOnly) + " AND code = ?")
	s, err := scanClinicSite(r.store.db.QueryRowContext(ctx, query, code))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrClinicSiteNotFound
		}
		return nil, fmt.Errorf("failed to find clinic site by code: %w", err)
	}
	return s, nil
}

// ListActive lists visible, active clinic sites ordered by name.
func (r *ClinicSiteRepository) ListActive(ctx context.Context) ([]*domain.ClinicSite, error) {
	b, err := bindingFor(domain.KindClinicSite)
	if err != nil {
		return nil, err
	}
	query := r.store.dialect.Rebind(
		b.scopedSelect(VisibleOnly) + " AND is_active = TRUE ORDER BY name")
	rows, err := r.store.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query clinic sites: %w", err)
	}
	defer rows.Close()

	var sites []*domain.ClinicSite
	for rows.Next() {
		s, err := scanClinicSite(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan clinic site: %w", err)
		}
		sites = append(sites, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating clinic sites: %w", err)
	}
	return sites, nil
}

// Add stages a new clinic site for insertion at commit time.
func (r *ClinicSiteRepository) Add(s *domain.ClinicSite) { r.uow.stage(s, stateAdded) }

// Update stages a modified clinic site.
func (r *ClinicSiteRepository) Update(s *domain.ClinicSite) { r.uow.stage(s, stateModified) }

// Remove stages a clinic site for soft deletion.
func (r *ClinicSiteRepository) Remove(s *domain.ClinicSite) { r.uow.stage(s, stateRemoved) }
