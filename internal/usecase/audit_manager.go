package usecase

import (
	"context"

	"github.com/caretrack/caretrack/internal/domain"
	"github.com/caretrack/caretrack/internal/persistence"
)

// AuditTrailManager reads the append-only audit trail.
type AuditTrailManager struct {
	store *persistence.Store
}

// NewAuditTrailManager creates a new audit trail manager
func NewAuditTrailManager(store *persistence.Store) *AuditTrailManager {
	return &AuditTrailManager{store: store}
}

// ListByEntity returns an entity's audit history, oldest first, together
// with the total record count.
func (m *AuditTrailManager) ListByEntity(ctx context.Context, entityName, entityID string, limit, offset int) ([]*domain.AuditRecord, int, error) {
	if entityName == "" || entityID == "" {
		return nil, 0, domain.NewDomainError("entity name and ID are required")
	}
	if limit <= 0 {
		limit = 50
	}
	if limit > 200 {
		limit = 200
	}

	uow := m.store.NewUnitOfWork()
	records, err := uow.AuditTrail.ListByEntity(ctx, entityName, entityID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	total, err := uow.AuditTrail.CountByEntity(ctx, entityName, entityID)
	if err != nil {
		return nil, 0, err
	}
	return records, total, nil
}
