package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/caretrack/caretrack/internal/domain"
)

type changeState int

const (
	stateAdded changeState = iota
	stateModified
	stateRemoved
)

func (s changeState) auditAction() string {
	switch s {
	case stateAdded:
		return domain.ActionInsert
	case stateRemoved:
		// The row is soft-deleted via an update, but the audit trail
		// records the caller's intent.
		return domain.ActionDelete
	default:
		return domain.ActionUpdate
	}
}

type pendingChange struct {
	entity domain.Tracked
	state  changeState
}

// UnitOfWork collects staged entity changes and commits them atomically
// together with their derived audit records. It is not safe for
// concurrent use; create one per request.
type UnitOfWork struct {
	store   *Store
	pending []pendingChange

	Patients       *PatientRepository
	Exams          *ExamRepository
	ExamImages     *ExamImageRepository
	ClinicSites    *ClinicSiteRepository
	Users          *UserRepository
	PatientNotes   *PatientNoteRepository
	PatientReports *PatientReportRepository
	AuditTrail     *AuditRepository
}

func (u *UnitOfWork) stage(e domain.Tracked, s changeState) {
	u.pending = append(u.pending, pendingChange{entity: e, state: s})
}

// Pending returns the number of staged changes.
func (u *UnitOfWork) Pending() int { return len(u.pending) }

// Commit persists all staged changes and one audit record per change in a
// single transaction. The actor, when known, is stamped into the entity
// audit fields and the audit records. It returns the number of entity
// rows affected; audit rows are not counted.
//
// A stale concurrency token aborts the whole transaction with
// ConflictError. Constraint violations surface as ConstraintError. Every
// other storage error propagates unchanged.
func (u *UnitOfWork) Commit(ctx context.Context, actor *string) (int, error) {
	if len(u.pending) == 0 {
		return 0, nil
	}

	// One instant for the whole batch.
	now := time.Now().UTC()

	for i := range u.pending {
		c := &u.pending[i]
		m := c.entity.Audit()
		switch c.state {
		case stateAdded:
			m.CreatedAtUtc = now
			m.CreatedBy = actor
			m.IsDeleted = false // guard against a caller pre-setting it
			m.RowVersion = 1
		case stateModified:
			t := now
			m.ModifiedAtUtc = &t
			m.ModifiedBy = actor
		case stateRemoved:
			t := now
			m.IsDeleted = true
			m.ModifiedAtUtc = &t
			m.ModifiedBy = actor
		}
	}

	tx, err := u.store.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	audits := make([]domain.AuditRecord, 0, len(u.pending))
	affected := 0

	for _, c := range u.pending {
		b, err := bindingFor(c.entity.Kind())
		if err != nil {
			return 0, err
		}

		var changes *string
		switch c.state {
		case stateAdded:
			if err := insertEntity(ctx, tx, u.store.dialect, b, c.entity); err != nil {
				return 0, classifyError(err)
			}
		case stateModified, stateRemoved:
			stored, err := b.Load(ctx, tx, u.store.dialect, c.entity.Key())
			if err != nil {
				if errors.Is(err, sql.ErrNoRows) {
					return 0, &ConflictError{Kind: c.entity.Kind(), ID: c.entity.Key()}
				}
				return 0, classifyError(err)
			}
			rows, err := updateEntity(ctx, tx, u.store.dialect, b, c.entity)
			if err != nil {
				return 0, classifyError(err)
			}
			if rows == 0 {
				return 0, &ConflictError{Kind: c.entity.Kind(), ID: c.entity.Key()}
			}
			if c.state == stateModified {
				changes, err = marshalChanges(diffSnapshots(stored.Snapshot(), c.entity.Snapshot()))
				if err != nil {
					return 0, err
				}
			}
		}
		affected++

		audits = append(audits, domain.AuditRecord{
			EntityName:   c.entity.Kind(),
			EntityID:     c.entity.Key(),
			Action:       c.state.auditAction(),
			TimestampUtc: now,
			Actor:        actor,
			ChangesJSON:  changes,
		})
	}

	for i := range audits {
		if err := insertAuditRecord(ctx, tx, u.store.dialect, &audits[i]); err != nil {
			return 0, classifyError(err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, classifyError(err)
	}

	// Stored versions were bumped by the update statements; mirror that in
	// memory so a subsequent commit of the same instance does not conflict
	// with itself.
	for _, c := range u.pending {
		if c.state != stateAdded {
			c.entity.Audit().RowVersion++
		}
	}

	u.store.logger.WithFields(logrus.Fields{
		"entities": affected,
		"audits":   len(audits),
	}).Debug("unit of work committed")

	u.pending = nil
	return affected, nil
}

func insertEntity(ctx context.Context, tx dbtx, d Dialect, b *EntityBinding, e domain.Tracked) error {
	cols := b.allColumns()
	query := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s)",
		b.Table,
		strings.Join(cols, ", "),
		placeholders(len(cols)),
	)
	_, err := tx.ExecContext(ctx, d.Rebind(query), entityArgs(b, e)...)
	return err
}

// updateEntity writes the entity's current state, bumping the row version
// and guarding on the version the caller loaded. Zero rows affected means
// the token was stale.
func updateEntity(ctx context.Context, tx dbtx, d Dialect, b *EntityBinding, e domain.Tracked) (int64, error) {
	sets := []string{
		"modified_at_utc = ?",
		"modified_by = ?",
		"is_deleted = ?",
		"row_version = row_version + 1",
	}
	for _, col := range b.Columns {
		sets = append(sets, col+" = ?")
	}
	for _, col := range b.SensitiveColumns {
		sets = append(sets, col+" = ?")
	}
	query := fmt.Sprintf(
		"UPDATE %s SET %s WHERE id = ? AND row_version = ?",
		b.Table,
		strings.Join(sets, ", "),
	)

	m := e.Audit()
	snap := e.Snapshot()
	args := []any{m.ModifiedAtUtc, m.ModifiedBy, m.IsDeleted}
	for _, col := range b.Columns {
		args = append(args, snap[col])
	}
	for _, col := range b.SensitiveColumns {
		args = append(args, sensitiveValue(e, col))
	}
	args = append(args, m.ID, m.RowVersion)

	res, err := tx.ExecContext(ctx, d.Rebind(query), args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func entityArgs(b *EntityBinding, e domain.Tracked) []any {
	m := e.Audit()
	snap := e.Snapshot()
	args := []any{
		m.ID,
		m.CreatedAtUtc,
		m.CreatedBy,
		m.ModifiedAtUtc,
		m.ModifiedBy,
		m.IsDeleted,
		m.RowVersion,
	}
	for _, col := range b.Columns {
		args = append(args, snap[col])
	}
	for _, col := range b.SensitiveColumns {
		args = append(args, sensitiveValue(e, col))
	}
	return args
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
