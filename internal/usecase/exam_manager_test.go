package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/caretrack/caretrack/internal/domain"
)

func newExamFixture(t *testing.T) (*ExamManager, *domain.Patient) {
	t.Helper()
	store, log := newManagerTestStore(t)
	patients := NewPatientManager(store, log)

	patient, err := patients.Create(context.Background(), CreatePatientRequest{
		FirstName: "Jane", LastName: "Doe",
	}, nil)
	require.NoError(t, err)
	return NewExamManager(store, log), patient
}

func TestExamManagerCreateRequiresPatient(t *testing.T) {
	store, log := newManagerTestStore(t)
	mgr := NewExamManager(store, log)

	_, err := mgr.Create(context.Background(), CreateExamRequest{
		PatientID:    "no-such-patient",
		Modality:     "XRAY",
		StudyType:    "Chest PA",
		StudyDateUtc: time.Now().UTC(),
	}, nil)
	assert.ErrorIs(t, err, domain.ErrPatientNotFound)
}

func TestExamManagerCreateAndList(t *testing.T) {
	mgr, patient := newExamFixture(t)
	ctx := context.Background()

	exam, err := mgr.Create(ctx, CreateExamRequest{
		PatientID:    patient.ID,
		Modality:     "XRAY",
		StudyType:    "Chest PA",
		StudyDateUtc: time.Now().UTC(),
	}, strp("tech1"))
	require.NoError(t, err)
	assert.Equal(t, domain.ExamStatusNew, exam.Status)

	exams, total, err := mgr.ListByPatient(ctx, patient.ID, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, exams, 1)
	assert.Equal(t, exam.ID, exams[0].ID)
}

func TestExamManagerUpdateRejectsUnknownStatus(t *testing.T) {
	mgr, patient := newExamFixture(t)
	ctx := context.Background()

	exam, err := mgr.Create(ctx, CreateExamRequest{
		PatientID:    patient.ID,
		Modality:     "XRAY",
		StudyType:    "Chest PA",
		StudyDateUtc: time.Now().UTC(),
	}, nil)
	require.NoError(t, err)

	_, err = mgr.Update(ctx, exam.ID, UpdateExamRequest{
		Modality:     exam.Modality,
		StudyType:    exam.StudyType,
		StudyDateUtc: exam.StudyDateUtc,
		Status:       "Archived",
		RowVersion:   exam.RowVersion,
	}, nil)
	require.Error(t, err)

	var domErr *domain.DomainError
	assert.ErrorAs(t, err, &domErr)
}

func TestExamManagerDeleteCascadesToImages(t *testing.T) {
	mgr, patient := newExamFixture(t)
	ctx := context.Background()

	exam, err := mgr.Create(ctx, CreateExamRequest{
		PatientID:    patient.ID,
		Modality:     "CT",
		StudyType:    "Head",
		StudyDateUtc: time.Now().UTC(),
	}, nil)
	require.NoError(t, err)

	img1, err := mgr.AttachImage(ctx, exam.ID, AttachImageRequest{
		FileName: "slice-001.dcm", ContentType: "application/dicom", FilePath: "/store/slice-001.dcm",
	}, nil)
	require.NoError(t, err)
	_, err = mgr.AttachImage(ctx, exam.ID, AttachImageRequest{
		FileName: "slice-002.dcm", ContentType: "application/dicom", FilePath: "/store/slice-002.dcm",
	}, nil)
	require.NoError(t, err)

	require.NoError(t, mgr.Delete(ctx, exam.ID, strp("tech1")))

	_, err = mgr.Get(ctx, exam.ID)
	assert.ErrorIs(t, err, domain.ErrExamNotFound)

	images, err := mgr.ListImages(ctx, exam.ID)
	require.NoError(t, err)
	assert.Empty(t, images)

	err = mgr.DeleteImage(ctx, img1.ID, nil)
	assert.ErrorIs(t, err, domain.ErrExamImageNotFound)
}
