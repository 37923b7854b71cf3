package persistence

import (
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"
)

// ConflictError signals an optimistic-concurrency conflict: the commit
// targeted a stale row version. The caller should re-fetch and retry.
type ConflictError struct {
	Kind string
	ID   string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("concurrency conflict on %s %s: row was modified or removed by another commit", e.Kind, e.ID)
}

// ConstraintError surfaces a storage-level constraint violation (unique
// index, foreign key, check) without masking the driver error.
type ConstraintError struct {
	Err error
}

func (e *ConstraintError) Error() string {
	return fmt.Sprintf("constraint violation: %v", e.Err)
}

func (e *ConstraintError) Unwrap() error { return e.Err }

// IsConflict reports whether err is a concurrency conflict.
func IsConflict(err error) bool {
	var ce *ConflictError
	return errors.As(err, &ce)
}

// IsConstraint reports whether err is a storage constraint violation.
func IsConstraint(err error) bool {
	var ce *ConstraintError
	return errors.As(err, &ce)
}

// classifyError wraps constraint violations in ConstraintError and passes
// every other storage error through unchanged. Postgres is detected via
// the pq error class, SQLite via its well-known message prefixes.
func classifyError(err error) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		// Class 23 — integrity constraint violation.
		if strings.HasPrefix(string(pqErr.Code), "23") {
			return &ConstraintError{Err: err}
		}
		return err
	}
	msg := err.Error()
	if strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "FOREIGN KEY constraint failed") ||
		strings.Contains(msg, "CHECK constraint failed") ||
		strings.Contains(msg, "constraint failed") {
		return &ConstraintError{Err: err}
	}
	return err
}
