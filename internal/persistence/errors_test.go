package persistence

import (
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func TestClassifyErrorPostgresConstraintClass(t *testing.T) {
	unique := &pq.Error{Code: "23505", Message: "duplicate key value violates unique constraint"}
	classified := classifyError(unique)
	assert.True(t, IsConstraint(classified))
	assert.True(t, errors.Is(classified, unique), "the driver error must stay reachable")

	fk := &pq.Error{Code: "23503"}
	assert.True(t, IsConstraint(classifyError(fk)))

	syntax := &pq.Error{Code: "42601"}
	assert.False(t, IsConstraint(classifyError(syntax)))
}

func TestClassifyErrorSQLiteMessages(t *testing.T) {
	err := fmt.Errorf("constraint failed: UNIQUE constraint failed: patients.mrn (2067)")
	assert.True(t, IsConstraint(classifyError(err)))

	plain := errors.New("disk I/O error")
	assert.Equal(t, plain, classifyError(plain))
	assert.Nil(t, classifyError(nil))
}

func TestConflictErrorDistinctFromConstraint(t *testing.T) {
	conflict := &ConflictError{Kind: "Patient", ID: "p-1"}
	assert.True(t, IsConflict(conflict))
	assert.False(t, IsConstraint(conflict))
	assert.Contains(t, conflict.Error(), "Patient")
}
