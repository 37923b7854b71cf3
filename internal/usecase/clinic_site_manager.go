package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/caretrack/caretrack/internal/domain"
	"github.com/caretrack/caretrack/internal/persistence"
)

// CreateClinicSiteRequest represents the request to register a clinic site
type CreateClinicSiteRequest struct {
	Name        string  `json:"name" validate:"required,max=200"`
	Code        string  `json:"code" validate:"required,max=50"`
	Address     *string `json:"address,omitempty"`
	City        *string `json:"city,omitempty"`
	State       *string `json:"state,omitempty"`
	PostalCode  *string `json:"postal_code,omitempty"`
	Country     *string `json:"country,omitempty"`
	Phone       *string `json:"phone,omitempty"`
	Email       *string `json:"email,omitempty"`
	Description *string `json:"description,omitempty"`
}

// UpdateClinicSiteRequest represents the request to update a clinic site
type UpdateClinicSiteRequest struct {
	Name        string  `json:"name" validate:"required,max=200"`
	Code        string  `json:"code" validate:"required,max=50"`
	Address     *string `json:"address,omitempty"`
	City        *string `json:"city,omitempty"`
	State       *string `json:"state,omitempty"`
	PostalCode  *string `json:"postal_code,omitempty"`
	Country     *string `json:"country,omitempty"`
	Phone       *string `json:"phone,omitempty"`
	Email       *string `json:"email,omitempty"`
	IsActive    bool    `json:"is_active"`
	Description *string `json:"description,omitempty"`
	RowVersion  int64   `json:"row_version" validate:"required"`
}

// ClinicSiteManager handles clinic site business logic
type ClinicSiteManager struct {
	store  *persistence.Store
	logger *logrus.Logger
}

// NewClinicSiteManager creates a new clinic site manager
func NewClinicSiteManager(store *persistence.Store, logger *logrus.Logger) *ClinicSiteManager {
	return &ClinicSiteManager{store: store, logger: logger}
}

// Create registers a new clinic site with a unique code.
func (m *ClinicSiteManager) Create(ctx context.Context, req CreateClinicSiteRequest, actor *string) (*domain.ClinicSite, error) {
	site := domain.NewClinicSite(req.Name, req.Code)
	site.Address = req.Address
	site.City = req.City
	site.State = req.State
	site.PostalCode = req.PostalCode
	site.Country = req.Country
	site.Phone = req.Phone
	site.Email = req.Email
	site.Description = req.Description

	if err := site.Validate(); err != nil {
		return nil, err
	}

	uow := m.store.NewUnitOfWork()
	if _, err := uow.ClinicSites.GetByCode(ctx, req.Code); err == nil {
		return nil, domain.NewDomainError("a clinic site with this code already exists")
	} else if !errors.Is(err, domain.ErrClinicSiteNotFound) {
		return nil, err
	}

	uow.ClinicSites.Add(site)
	if _, err := uow.Commit(ctx, actor); err != nil {
		return nil, fmt.Errorf("failed to create clinic site: %w", err)
	}

	m.logger.WithField("site_code", site.Code).Info("clinic site created")
	return site, nil
}

// Get retrieves a visible clinic site by ID.
func (m *ClinicSiteManager) Get(ctx context.Context, id string) (*domain.ClinicSite, error) {
	if id == "" {
		return nil, domain.NewDomainError("clinic site ID is required")
	}
	return m.store.NewUnitOfWork().ClinicSites.GetByID(ctx, id)
}

// ListActive lists visible, active clinic sites.
func (m *ClinicSiteManager) ListActive(ctx context.Context) ([]*domain.ClinicSite, error) {
	return m.store.NewUnitOfWork().ClinicSites.ListActive(ctx)
}

// Update applies the request to the stored site and commits it with the
// caller's concurrency token.
func (m *ClinicSiteManager) Update(ctx context.Context, id string, req UpdateClinicSiteRequest, actor *string) (*domain.ClinicSite, error) {
	uow := m.store.NewUnitOfWork()
	site, err := uow.ClinicSites.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Code != site.Code {
		if _, err := uow.ClinicSites.GetByCode(ctx, req.Code); err == nil {
			return nil, domain.NewDomainError("a clinic site with this code already exists")
		} else if !errors.Is(err, domain.ErrClinicSiteNotFound) {
			return nil, err
		}
	}

	site.Name = req.Name
	site.Code = req.Code
	site.Address = req.Address
	site.City = req.City
	site.State = req.State
	site.PostalCode = req.PostalCode
	site.Country = req.Country
	site.Phone = req.Phone
	site.Email = req.Email
	site.IsActive = req.IsActive
	site.Description = req.Description
	site.RowVersion = req.RowVersion

	if err := site.Validate(); err != nil {
		return nil, err
	}

	uow.ClinicSites.Update(site)
	if _, err := uow.Commit(ctx, actor); err != nil {
		return nil, fmt.Errorf("failed to update clinic site: %w", err)
	}
	return site, nil
}

// Delete soft-deletes a clinic site.
func (m *ClinicSiteManager) Delete(ctx context.Context, id string, actor *string) error {
	uow := m.store.NewUnitOfWork()
	site, err := uow.ClinicSites.GetByID(ctx, id)
	if err != nil {
		return err
	}

	uow.ClinicSites.Remove(site)
	if _, err := uow.Commit(ctx, actor); err != nil {
		return fmt.Errorf("failed to delete clinic site: %w", err)
	}

	m.logger.WithField("site_id", id).Info("clinic site deleted")
	return nil
}
