package persistence

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/caretrack/caretrack/internal/domain"
)

// diffSnapshots compares the stored domain fields against the pending
// ones and returns the fields whose value actually changed. Audit
// metadata and the row version never appear here; snapshots carry domain
// fields only.
func diffSnapshots(stored, pending map[string]any) map[string]domain.FieldChange {
	changes := make(map[string]domain.FieldChange)
	for field, newVal := range pending {
		oldVal := stored[field]
		if equalValues(oldVal, newVal) {
			continue
		}
		changes[field] = domain.FieldChange{Old: oldVal, New: newVal}
	}
	return changes
}

// marshalChanges serializes a non-empty diff; an empty diff yields nil so
// no payload is recorded for no-op updates.
func marshalChanges(changes map[string]domain.FieldChange) (*string, error) {
	if len(changes) == 0 {
		return nil, nil
	}
	raw, err := json.Marshal(changes)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal audit changes: %w", err)
	}
	s := string(raw)
	return &s, nil
}

// equalValues compares two snapshot values after normalizing pointers and
// timestamps. Snapshot values are scalars (or pointers to scalars), so
// the normalized forms are directly comparable.
func equalValues(a, b any) bool {
	return normalizeValue(a) == normalizeValue(b)
}

func normalizeValue(v any) any {
	switch t := v.(type) {
	case nil:
		return nil
	case *string:
		if t == nil {
			return nil
		}
		return *t
	case *int:
		if t == nil {
			return nil
		}
		return int64(*t)
	case *int64:
		if t == nil {
			return nil
		}
		return *t
	case int:
		return int64(t)
	case *time.Time:
		if t == nil {
			return nil
		}
		return t.UTC().Format(time.RFC3339Nano)
	case time.Time:
		return t.UTC().Format(time.RFC3339Nano)
	case domain.ExamStatus:
		return string(t)
	case domain.UserRole:
		return string(t)
	default:
		return v
	}
}

const auditColumns = "id, entity_name, entity_id, action, timestamp_utc, actor, changes_json"

func insertAuditRecord(ctx context.Context, tx dbtx, d Dialect, rec *domain.AuditRecord) error {
	query := d.Rebind(`INSERT INTO audit_records
		(entity_name, entity_id, action, timestamp_utc, actor, changes_json)
		VALUES (?, ?, ?, ?, ?, ?)`)
	_, err := tx.ExecContext(ctx, query,
		rec.EntityName,
		rec.EntityID,
		rec.Action,
		rec.TimestampUtc,
		rec.Actor,
		rec.ChangesJSON,
	)
	if err != nil {
		return fmt.Errorf("failed to append audit record: %w", err)
	}
	return nil
}

// AuditRepository reads the append-only audit trail. Nothing in this
// system updates or deletes audit rows; retention is an external policy.
type AuditRepository struct {
	store *Store
}

// ListByEntity returns the audit trail for one entity, oldest first.
func (r *AuditRepository) ListByEntity(ctx context.Context, entityName, entityID string, limit, offset int) ([]*domain.AuditRecord, error) {
	query := fmt.Sprintf(
		"SELECT %s FROM audit_records WHERE entity_name = ? AND entity_id = ? ORDER BY id ASC",
		auditColumns,
	)
	args := []any{entityName, entityID}
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
		return nil, fmt.Errorf("failed to query audit records: %w", err)
	}
	defer rows.Close()

	var records []*domain.AuditRecord
	for rows.Next() {
		rec, err := scanAuditRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating audit records: %w", err)
	}
	return records, nil
}

// CountByEntity returns the number of audit rows for one entity.
func (r *AuditRepository) CountByEntity(ctx context.Context, entityName, entityID string) (int, error) {
	query := r.store.dialect.Rebind(
		"SELECT COUNT(*) FROM audit_records WHERE entity_name = ? AND entity_id = ?")
	var count int
	if err := r.store.db.QueryRowContext(ctx, query, entityName, entityID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count audit records: %w", err)
	}
	return count, nil
}

func scanAuditRecord(rows *sql.Rows) (*domain.AuditRecord, error) {
	var rec domain.AuditRecord
	var actor, changes sql.NullString
	if err := rows.Scan(
		&rec.ID,
		&rec.EntityName,
		&rec.EntityID,
		&rec.Action,
		&rec.TimestampUtc,
		&actor,
		&changes,
	); err != nil {
		return nil, fmt.Errorf("failed to scan audit record: %w", err)
	}
	rec.Actor = strPtr(actor)
	rec.ChangesJSON = strPtr(changes)
	return &rec, nil
}
