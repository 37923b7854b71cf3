package domain

import (
	"testing"
	"time"
)

func TestNewPatient(t *testing.T) {
	p := NewPatient("Jane", "Doe")

	if p.ID == "" {
		t.Error("expected a generated ID")
	}
	if p.Kind() != KindPatient {
		t.Errorf("expected kind %s, got %s", KindPatient, p.Kind())
	}
	if p.Key() != p.ID {
		t.Errorf("expected key %s, got %s", p.ID, p.Key())
	}
	if p.IsDeleted {
		t.Error("new patients must not be deleted")
	}
	if p.FullName() != "Jane Doe" {
		t.Errorf("unexpected full name: %s", p.FullName())
	}
}

func TestPatientValidate(t *testing.T) {
	p := NewPatient("Jane", "Doe")
	if err := p.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	p.FirstName = "  "
	if err := p.Validate(); err == nil {
		t.Error("expected error for blank first name")
	}

	p.FirstName = "Jane"
	future := time.Now().UTC().Add(48 * time.Hour)
	p.DateOfBirth = &future
	if err := p.Validate(); err == nil {
		t.Error("expected error for future date of birth")
	}
}

func TestPatientSnapshotCoversDomainFieldsOnly(t *testing.T) {
	p := NewPatient("Jane", "Doe")
	snap := p.Snapshot()

	for _, field := range []string{"first_name", "last_name", "mrn", "date_of_birth", "gender"} {
		if _, ok := snap[field]; !ok {
			t.Errorf("snapshot missing field %s", field)
		}
	}
	for _, meta := range []string{"id", "created_at_utc", "row_version", "is_deleted"} {
		if _, ok := snap[meta]; ok {
			t.Errorf("snapshot must not contain audit field %s", meta)
		}
	}
}

func TestNewExamDefaults(t *testing.T) {
	e := NewExam("p-1", "CT", "Head", time.Now().UTC())
	if e.Status != ExamStatusNew {
		t.Errorf("expected status %s, got %s", ExamStatusNew, e.Status)
	}
	if err := e.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	e.Modality = ""
	if err := e.Validate(); err == nil {
		t.Error("expected error for missing modality")
	}
}

func TestExamImageValidate(t *testing.T) {
	img := NewExamImage("e-1", "scan.png", "image/png", "/store/scan.png", 1024)
	if err := img.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	img.FileSizeBytes = -1
	if err := img.Validate(); err == nil {
		t.Error("expected error for negative file size")
	}
}

func TestClinicSiteValidate(t *testing.T) {
	s := NewClinicSite("North Clinic", "NC-01")
	if !s.IsActive {
		t.Error("new sites must start active")
	}
	if err := s.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	bad := "not-an-email"
	s.Email = &bad
	if err := s.Validate(); err == nil {
		t.Error("expected error for invalid email")
	}
}

func TestUserValidateAndSensitiveFields(t *testing.T) {
	u := NewUser("jdoe", "jdoe@example.com", "hash")
	if u.Role != UserRoleUser {
		t.Errorf("expected default role %s, got %s", UserRoleUser, u.Role)
	}
	if err := u.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	if _, ok := u.Snapshot()["password_hash"]; ok {
		t.Error("snapshot must not expose the password hash")
	}
	if u.SensitiveFields()["password_hash"] != "hash" {
		t.Error("sensitive fields must carry the password hash")
	}

	u.Role = "Wizard"
	if err := u.Validate(); err == nil {
		t.Error("expected error for unknown role")
	}
}

func TestPatientReportValidate(t *testing.T) {
	r := NewPatientReport("p-1", "cbc.pdf", "Blood Test", "application/pdf", "/store/cbc.pdf", 2048)
	if r.Kind() != KindPatientReport {
		t.Errorf("expected kind %s, got %s", KindPatientReport, r.Kind())
	}
	if r.UploadDateUtc.IsZero() {
		t.Error("new reports must carry an upload date")
	}
	if err := r.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	r.ReportType = " "
	if err := r.Validate(); err == nil {
		t.Error("expected error for blank report type")
	}

	r.ReportType = "Blood Test"
	r.FileSizeBytes = -1
	if err := r.Validate(); err == nil {
		t.Error("expected error for negative file size")
	}
}

func TestPatientNoteValidate(t *testing.T) {
	n := NewPatientNote("p-1", "Stable overnight.")
	if n.NoteType != "Clinical Note" {
		t.Errorf("unexpected default note type: %s", n.NoteType)
	}
	if err := n.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	n.Content = ""
	if err := n.Validate(); err == nil {
		t.Error("expected error for empty content")
	}
}
