package persistence

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/caretrack/caretrack/internal/domain"
)

func strp(s string) *string { return &s }

func TestCommitInsertStampsAndAudits(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	actor := strp("alice")

	patient := domain.NewPatient("Jane", "Doe")
	uow := store.NewUnitOfWork()
	uow.Patients.Add(patient)

	affected, err := uow.Commit(ctx, actor)
	require.NoError(t, err)
	assert.Equal(t, 1, affected)
	assert.Equal(t, 0, uow.Pending())

	assert.False(t, patient.CreatedAtUtc.IsZero())
	assert.Equal(t, "alice", *patient.CreatedBy)
	assert.Nil(t, patient.ModifiedAtUtc)
	assert.Equal(t, int64(1), patient.RowVersion)
	assert.False(t, patient.IsDeleted)

	stored, err := store.NewUnitOfWork().Patients.GetByID(ctx, patient.ID)
	require.NoError(t, err)
	assert.Equal(t, "Jane", stored.FirstName)
	assert.Equal(t, int64(1), stored.RowVersion)

	records, err := store.NewUnitOfWork().AuditTrail.ListByEntity(ctx, domain.KindPatient, patient.ID, 0, 0)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, domain.ActionInsert, records[0].Action)
	assert.Equal(t, "alice", *records[0].Actor)
	assert.Nil(t, records[0].ChangesJSON)
	assert.WithinDuration(t, patient.CreatedAtUtc, records[0].TimestampUtc, time.Second)
}

func TestCommitBatchSharesOneInstant(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	patient := domain.NewPatient("John", "Smith")
	site := domain.NewClinicSite("North Clinic", "NC-01")

	uow := store.NewUnitOfWork()
	uow.Patients.Add(patient)
	uow.ClinicSites.Add(site)

	affected, err := uow.Commit(ctx, strp("bob"))
	require.NoError(t, err)
	assert.Equal(t, 2, affected)

	assert.True(t, patient.CreatedAtUtc.Equal(site.CreatedAtUtc),
		"every change in a batch must carry the same instant")

	pRecs, err := store.NewUnitOfWork().AuditTrail.ListByEntity(ctx, domain.KindPatient, patient.ID, 0, 0)
	require.NoError(t, err)
	sRecs, err := store.NewUnitOfWork().AuditTrail.ListByEntity(ctx, domain.KindClinicSite, site.ID, 0, 0)
	require.NoError(t, err)
	require.Len(t, pRecs, 1)
	require.Len(t, sRecs, 1)
	assert.True(t, pRecs[0].TimestampUtc.Equal(sRecs[0].TimestampUtc))
}

func TestCommitUpdateStampsAndDiffs(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	patient := domain.NewPatient("Jane", "Doe")
	uow := store.NewUnitOfWork()
	uow.Patients.Add(patient)
	_, err := uow.Commit(ctx, strp("alice"))
	require.NoError(t, err)

	uow = store.NewUnitOfWork()
	loaded, err := uow.Patients.GetByID(ctx, patient.ID)
	require.NoError(t, err)

	loaded.LastName = "Doe-Smith"
	loaded.MRN = strp("MRN-42")
	uow.Patients.Update(loaded)

	affected, err := uow.Commit(ctx, strp("bob"))
	require.NoError(t, err)
	assert.Equal(t, 1, affected)

	require.NotNil(t, loaded.ModifiedAtUtc)
	assert.Equal(t, "bob", *loaded.ModifiedBy)
	assert.Equal(t, "alice", *loaded.CreatedBy, "creation stamps must survive updates")
	assert.Equal(t, int64(2), loaded.RowVersion)

	records, err := store.NewUnitOfWork().AuditTrail.ListByEntity(ctx, domain.KindPatient, patient.ID, 0, 0)
	require.NoError(t, err)
	require.Len(t, records, 2)
	update := records[1]
	assert.Equal(t, domain.ActionUpdate, update.Action)
	require.NotNil(t, update.ChangesJSON)

	var changes map[string]domain.FieldChange
	require.NoError(t, json.Unmarshal([]byte(*update.ChangesJSON), &changes))
	assert.Contains(t, changes, "last_name")
	assert.Contains(t, changes, "mrn")
	assert.NotContains(t, changes, "first_name")
	assert.NotContains(t, changes, "row_version")
	assert.NotContains(t, changes, "modified_at_utc")
	assert.Equal(t, "Doe", changes["last_name"].Old)
	assert.Equal(t, "Doe-Smith", changes["last_name"].New)
	assert.Nil(t, changes["mrn"].Old)
	assert.Equal(t, "MRN-42", changes["mrn"].New)
}

func TestCommitNoopUpdateRecordsNoDiff(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	patient := domain.NewPatient("Jane", "Doe")
	uow := store.NewUnitOfWork()
	uow.Patients.Add(patient)
	_, err := uow.Commit(ctx, nil)
	require.NoError(t, err)

	uow = store.NewUnitOfWork()
	loaded, err := uow.Patients.GetByID(ctx, patient.ID)
	require.NoError(t, err)
	uow.Patients.Update(loaded)

	affected, err := uow.Commit(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, affected)

	records, err := store.NewUnitOfWork().AuditTrail.ListByEntity(ctx, domain.KindPatient, patient.ID, 0, 0)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, domain.ActionUpdate, records[1].Action)
	assert.Nil(t, records[1].ChangesJSON, "a no-op update carries no diff payload")
	assert.Nil(t, records[1].Actor)
}

func TestCommitRemoveSoftDeletes(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	patient := domain.NewPatient("Jane", "Doe")
	uow := store.NewUnitOfWork()
	uow.Patients.Add(patient)
	_, err := uow.Commit(ctx, strp("alice"))
	require.NoError(t, err)

	uow = store.NewUnitOfWork()
	loaded, err := uow.Patients.GetByID(ctx, patient.ID)
	require.NoError(t, err)
	uow.Patients.Remove(loaded)
	_, err = uow.Commit(ctx, strp("bob"))
	require.NoError(t, err)

	_, err = store.NewUnitOfWork().Patients.GetByID(ctx, patient.ID)
	assert.ErrorIs(t, err, domain.ErrPatientNotFound, "default reads must not see deleted rows")

	kept, err := store.NewUnitOfWork().Patients.GetByIDIncludeDeleted(ctx, patient.ID)
	require.NoError(t, err)
	assert.True(t, kept.IsDeleted)
	assert.Equal(t, "bob", *kept.ModifiedBy)

	deleted, err := store.NewUnitOfWork().Patients.GetDeleted(ctx)
	require.NoError(t, err)
	require.Len(t, deleted, 1)
	assert.Equal(t, patient.ID, deleted[0].ID)

	records, err := store.NewUnitOfWork().AuditTrail.ListByEntity(ctx, domain.KindPatient, patient.ID, 0, 0)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, domain.ActionDelete, records[1].Action)
	assert.Nil(t, records[1].ChangesJSON)
}

func TestCommitStaleVersionConflicts(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	patient := domain.NewPatient("Jane", "Doe")
	uow := store.NewUnitOfWork()
	uow.Patients.Add(patient)
	_, err := uow.Commit(ctx, nil)
	require.NoError(t, err)

	uowA := store.NewUnitOfWork()
	a, err := uowA.Patients.GetByID(ctx, patient.ID)
	require.NoError(t, err)
	uowB := store.NewUnitOfWork()
	b, err := uowB.Patients.GetByID(ctx, patient.ID)
	require.NoError(t, err)

	a.FirstName = "Janet"
	uowA.Patients.Update(a)
	_, err = uowA.Commit(ctx, nil)
	require.NoError(t, err)

	b.FirstName = "Janice"
	uowB.Patients.Update(b)
	_, err = uowB.Commit(ctx, nil)
	require.Error(t, err)
	assert.True(t, IsConflict(err))

	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, domain.KindPatient, conflict.Kind)
	assert.Equal(t, patient.ID, conflict.ID)

	stored, err := store.NewUnitOfWork().Patients.GetByID(ctx, patient.ID)
	require.NoError(t, err)
	assert.Equal(t, "Janet", stored.FirstName, "the losing write must not apply")
	assert.Equal(t, int64(2), stored.RowVersion)
}

func TestCommitVanishedRowConflicts(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	ghost := domain.NewPatient("No", "Body")
	ghost.RowVersion = 1

	uow := store.NewUnitOfWork()
	uow.Patients.Update(ghost)
	_, err := uow.Commit(ctx, nil)
	require.Error(t, err)
	assert.True(t, IsConflict(err))
}

func TestCommitConflictAbortsWholeBatch(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	patient := domain.NewPatient("Jane", "Doe")
	uow := store.NewUnitOfWork()
	uow.Patients.Add(patient)
	_, err := uow.Commit(ctx, nil)
	require.NoError(t, err)

	stale, err := store.NewUnitOfWork().Patients.GetByID(ctx, patient.ID)
	require.NoError(t, err)
	stale.RowVersion = 99 // stale token

	fresh := domain.NewClinicSite("South Clinic", "SC-01")

	uow = store.NewUnitOfWork()
	uow.ClinicSites.Add(fresh)
	stale.FirstName = "Janet"
	uow.Patients.Update(stale)

	_, err = uow.Commit(ctx, nil)
	require.Error(t, err)
	assert.True(t, IsConflict(err))

	_, err = store.NewUnitOfWork().ClinicSites.GetByCode(ctx, "SC-01")
	assert.ErrorIs(t, err, domain.ErrClinicSiteNotFound,
		"a conflict anywhere in the batch must roll back everything")
}

func TestCommitFailureWritesNoAuditOrRows(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	// Forcing the audit append to fail must abort the entity writes too.
	_, err := store.DB().ExecContext(ctx, "DROP TABLE audit_records")
	require.NoError(t, err)

	patient := domain.NewPatient("Jane", "Doe")
	uow := store.NewUnitOfWork()
	uow.Patients.Add(patient)

	_, err = uow.Commit(ctx, nil)
	require.Error(t, err)

	var count int
	require.NoError(t, store.DB().QueryRowContext(ctx,
		"SELECT COUNT(*) FROM patients").Scan(&count))
	assert.Equal(t, 0, count)
}

func TestCommitEmptyIsNoop(t *testing.T) {
	store := newTestStore(t)

	affected, err := store.NewUnitOfWork().Commit(context.Background(), strp("alice"))
	require.NoError(t, err)
	assert.Equal(t, 0, affected)
}

func TestCommitCountExcludesAuditRows(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	uow := store.NewUnitOfWork()
	uow.Patients.Add(domain.NewPatient("A", "One"))
	uow.Patients.Add(domain.NewPatient("B", "Two"))
	uow.ClinicSites.Add(domain.NewClinicSite("East Clinic", "EC-01"))

	affected, err := uow.Commit(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, affected)

	var auditRows int
	require.NoError(t, store.DB().QueryRowContext(ctx,
		"SELECT COUNT(*) FROM audit_records").Scan(&auditRows))
	assert.Equal(t, 3, auditRows, "one audit row per change, not counted in affected")
}

func TestCommitUniqueViolationIsConstraintError(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	first := domain.NewPatient("Jane", "Doe")
	first.MRN = strp("MRN-1")
	uow := store.NewUnitOfWork()
	uow.Patients.Add(first)
	_, err := uow.Commit(ctx, nil)
	require.NoError(t, err)

	second := domain.NewPatient("John", "Smith")
	second.MRN = strp("MRN-1")
	uow = store.NewUnitOfWork()
	uow.Patients.Add(second)
	_, err = uow.Commit(ctx, nil)
	require.Error(t, err)
	assert.True(t, IsConstraint(err))
	assert.False(t, IsConflict(err))
}

func TestCommitSensitiveFieldsPersistButNeverDiff(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	user := domain.NewUser("jdoe", "jdoe@example.com", "hash-one")
	uow := store.NewUnitOfWork()
	uow.Users.Add(user)
	_, err := uow.Commit(ctx, strp("alice"))
	require.NoError(t, err)

	uow = store.NewUnitOfWork()
	loaded, err := uow.Users.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "hash-one", loaded.PasswordHash)

	loaded.PasswordHash = "hash-two"
	uow.Users.Update(loaded)
	_, err = uow.Commit(ctx, strp("alice"))
	require.NoError(t, err)

	stored, err := store.NewUnitOfWork().Users.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "hash-two", stored.PasswordHash)

	records, err := store.NewUnitOfWork().AuditTrail.ListByEntity(ctx, domain.KindUser, user.ID, 0, 0)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Nil(t, records[1].ChangesJSON, "password hashes must never reach the audit trail")
}

func TestCommitRestoreFlipsDeletedFlag(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	patient := domain.NewPatient("Jane", "Doe")
	uow := store.NewUnitOfWork()
	uow.Patients.Add(patient)
	_, err := uow.Commit(ctx, nil)
	require.NoError(t, err)

	uow = store.NewUnitOfWork()
	loaded, err := uow.Patients.GetByID(ctx, patient.ID)
	require.NoError(t, err)
	uow.Patients.Remove(loaded)
	_, err = uow.Commit(ctx, nil)
	require.NoError(t, err)

	uow = store.NewUnitOfWork()
	deleted, err := uow.Patients.GetByIDIncludeDeleted(ctx, patient.ID)
	require.NoError(t, err)
	deleted.IsDeleted = false
	uow.Patients.Update(deleted)
	_, err = uow.Commit(ctx, nil)
	require.NoError(t, err)

	restored, err := store.NewUnitOfWork().Patients.GetByID(ctx, patient.ID)
	require.NoError(t, err)
	assert.False(t, restored.IsDeleted)
	assert.Equal(t, int64(3), restored.RowVersion)
}

func TestCommitCancelledContextHasNoEffect(t *testing.T) {
	store := newTestStore(t)

	uow := store.NewUnitOfWork()
	uow.Patients.Add(domain.NewPatient("Jane", "Doe"))
	uow.ClinicSites.Add(domain.NewClinicSite("North Clinic", "NC-01"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := uow.Commit(ctx, strp("alice"))
	require.ErrorIs(t, err, context.Canceled)

	// Nothing may have landed: no entity rows, no audit rows.
	for _, table := range []string{"patients", "clinic_sites", "audit_records"} {
		var count int
		require.NoError(t, store.DB().QueryRowContext(context.Background(),
			"SELECT COUNT(*) FROM "+table).Scan(&count))
		assert.Zero(t, count, table)
	}
}
