package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/caretrack/caretrack/internal/domain"
)

func TestPatientNoteManagerCreateRequiresPatient(t *testing.T) {
	store, log := newManagerTestStore(t)
	mgr := NewPatientNoteManager(store, log)

	_, err := mgr.Create(context.Background(), "no-such-patient", CreatePatientNoteRequest{
		Content: "Stable overnight.",
	}, nil)
	assert.ErrorIs(t, err, domain.ErrPatientNotFound)
}

func TestPatientNoteManagerCreateAndList(t *testing.T) {
	store, log := newManagerTestStore(t)
	patients := NewPatientManager(store, log)
	mgr := NewPatientNoteManager(store, log)
	ctx := context.Background()

	patient, err := patients.Create(ctx, CreatePatientRequest{FirstName: "Jane", LastName: "Doe"}, nil)
	require.NoError(t, err)

	note, err := mgr.Create(ctx, patient.ID, CreatePatientNoteRequest{
		Content:    "Stable overnight.",
		AuthorName: strp("Dr. Reyes"),
	}, strp("dreyes"))
	require.NoError(t, err)
	assert.Equal(t, "Clinical Note", note.NoteType)

	notes, err := mgr.ListByPatient(ctx, patient.ID, 0, 0)
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, note.ID, notes[0].ID)
}

func TestPatientNoteManagerDeleteHidesNote(t *testing.T) {
	store, log := newManagerTestStore(t)
	patients := NewPatientManager(store, log)
	mgr := NewPatientNoteManager(store, log)
	ctx := context.Background()

	patient, err := patients.Create(ctx, CreatePatientRequest{FirstName: "Jane", LastName: "Doe"}, nil)
	require.NoError(t, err)

	note, err := mgr.Create(ctx, patient.ID, CreatePatientNoteRequest{Content: "Follow up in two weeks."}, nil)
	require.NoError(t, err)

	require.NoError(t, mgr.Delete(ctx, note.ID, nil))

	_, err = mgr.Get(ctx, note.ID)
	assert.ErrorIs(t, err, domain.ErrNoteNotFound)

	notes, err := mgr.ListByPatient(ctx, patient.ID, 0, 0)
	require.NoError(t, err)
	assert.Empty(t, notes)
}
