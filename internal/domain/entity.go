package domain

import "time"

// Action values recorded in the audit trail. Delete reflects the caller's
// intent even though the row itself is soft-deleted via an update.
const (
	ActionInsert = "Insert"
	ActionUpdate = "Update"
	ActionDelete = "Delete"
)

// Meta carries the fields shared by every tracked entity: identity, audit
// stamps, the soft-delete flag, and the optimistic-concurrency token.
// Entities embed it anonymously.
type Meta struct {
	ID            string     `json:"id"`
	CreatedAtUtc  time.Time  `json:"created_at_utc"`
	CreatedBy     *string    `json:"created_by,omitempty"`
	ModifiedAtUtc *time.Time `json:"modified_at_utc,omitempty"`
	ModifiedBy    *string    `json:"modified_by,omitempty"`
	IsDeleted     bool       `json:"is_deleted"`
	RowVersion    int64      `json:"row_version"`
}

// Audit exposes the embedded metadata for stamping by the persistence
// gateway; promotion makes every embedding entity satisfy Tracked.
func (m *Meta) Audit() *Meta { return m }

// Key returns the entity identifier coerced to text.
func (m *Meta) Key() string { return m.ID }

// Tracked is implemented by every entity subject to the audit and
// soft-delete discipline. Snapshot returns the persistent domain fields
// only; audit metadata and the row version are never part of a diff.
type Tracked interface {
	Kind() string
	Key() string
	Audit() *Meta
	Snapshot() map[string]any
}

// Entity kinds. New tracked types must be added here and registered with
// the persistence registry; registry_test enforces the pairing.
const (
	KindPatient       = "Patient"
	KindExam          = "Exam"
	KindExamImage     = "ExamImage"
	KindClinicSite    = "ClinicSite"
	KindUser          = "User"
	KindPatientNote   = "PatientNote"
	KindPatientReport = "PatientReport"
)

// TrackedKinds enumerates every tracked entity kind.
var TrackedKinds = []string{
	KindPatient,
	KindExam,
	KindExamImage,
	KindClinicSite,
	KindUser,
	KindPatientNote,
	KindPatientReport,
}
