package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/caretrack/caretrack/internal/domain"
	"github.com/caretrack/caretrack/internal/persistence"
)

func strp(s string) *string { return &s }

func TestPatientManagerCreateAndGet(t *testing.T) {
	store, log := newManagerTestStore(t)
	mgr := NewPatientManager(store, log)
	ctx := context.Background()

	created, err := mgr.Create(ctx, CreatePatientRequest{
		FirstName: "Jane",
		LastName:  "Doe",
		MRN:       strp("MRN-100"),
	}, strp("alice"))
	require.NoError(t, err)
	assert.Equal(t, "alice", *created.CreatedBy)

	got, err := mgr.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Jane", got.FirstName)
}

func TestPatientManagerCreateRejectsDuplicateMRN(t *testing.T) {
	store, log := newManagerTestStore(t)
	mgr := NewPatientManager(store, log)
	ctx := context.Background()

	_, err := mgr.Create(ctx, CreatePatientRequest{
		FirstName: "Jane", LastName: "Doe", MRN: strp("MRN-1"),
	}, nil)
	require.NoError(t, err)

	_, err = mgr.Create(ctx, CreatePatientRequest{
		FirstName: "John", LastName: "Smith", MRN: strp("MRN-1"),
	}, nil)
	require.Error(t, err)

	var domErr *domain.DomainError
	assert.ErrorAs(t, err, &domErr)
}

func TestPatientManagerCreateValidates(t *testing.T) {
	store, log := newManagerTestStore(t)
	mgr := NewPatientManager(store, log)

	_, err := mgr.Create(context.Background(), CreatePatientRequest{FirstName: "", LastName: "Doe"}, nil)
	require.Error(t, err)
}

func TestPatientManagerUpdateStaleVersionConflicts(t *testing.T) {
	store, log := newManagerTestStore(t)
	mgr := NewPatientManager(store, log)
	ctx := context.Background()

	created, err := mgr.Create(ctx, CreatePatientRequest{FirstName: "Jane", LastName: "Doe"}, nil)
	require.NoError(t, err)

	_, err = mgr.Update(ctx, created.ID, UpdatePatientRequest{
		FirstName: "Janet", LastName: "Doe", RowVersion: 1,
	}, nil)
	require.NoError(t, err)

	_, err = mgr.Update(ctx, created.ID, UpdatePatientRequest{
		FirstName: "Janice", LastName: "Doe", RowVersion: 1,
	}, nil)
	require.Error(t, err)
	assert.True(t, persistence.IsConflict(err))
}

func TestPatientManagerDeleteAndRestore(t *testing.T) {
	store, log := newManagerTestStore(t)
	mgr := NewPatientManager(store, log)
	ctx := context.Background()

	created, err := mgr.Create(ctx, CreatePatientRequest{FirstName: "Jane", LastName: "Doe"}, strp("alice"))
	require.NoError(t, err)

	require.NoError(t, mgr.Delete(ctx, created.ID, strp("bob")))

	_, err = mgr.Get(ctx, created.ID)
	assert.ErrorIs(t, err, domain.ErrPatientNotFound)

	deleted, err := mgr.ListDeleted(ctx)
	require.NoError(t, err)
	require.Len(t, deleted, 1)

	restored, err := mgr.Restore(ctx, created.ID, strp("carol"))
	require.NoError(t, err)
	assert.False(t, restored.IsDeleted)

	got, err := mgr.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "carol", *got.ModifiedBy)
}

func TestPatientManagerRestoreRejectsVisible(t *testing.T) {
	store, log := newManagerTestStore(t)
	mgr := NewPatientManager(store, log)
	ctx := context.Background()

	created, err := mgr.Create(ctx, CreatePatientRequest{FirstName: "Jane", LastName: "Doe"}, nil)
	require.NoError(t, err)

	_, err = mgr.Restore(ctx, created.ID, nil)
	require.Error(t, err)
}

func TestPatientManagerSearch(t *testing.T) {
	store, log := newManagerTestStore(t)
	mgr := NewPatientManager(store, log)
	ctx := context.Background()

	_, err := mgr.Create(ctx, CreatePatientRequest{FirstName: "Jane", LastName: "Doe"}, nil)
	require.NoError(t, err)
	_, err = mgr.Create(ctx, CreatePatientRequest{FirstName: "John", LastName: "Smith"}, nil)
	require.NoError(t, err)

	results, total, err := mgr.Search(ctx, domain.PatientFilter{Term: "Doe"})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, results, 1)
	assert.Equal(t, "Jane", results[0].FirstName)

	_, total, err = mgr.Search(ctx, domain.PatientFilter{})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
}
