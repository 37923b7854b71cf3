package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
)

// Store wraps the SQL database handle together with its dialect. It holds
// no per-request state; units of work are created per operation and all
// durable state lives in the database.
type Store struct {
	db      *sql.DB
	dialect Dialect
	logger  *logrus.Logger
}

// NewStore creates a store over an open database handle.
func NewStore(db *sql.DB, dialect Dialect, logger *logrus.Logger) *Store {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Store{db: db, dialect: dialect, logger: logger}
}

// Open connects to the database and verifies the connection.
func Open(ctx context.Context, driver, dsn string, logger *logrus.Logger) (*Store, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return NewStore(db, ParseDialect(driver), logger), nil
}

// DB exposes the underlying handle for migrations and health checks.
func (s *Store) DB() *sql.DB { return s.db }

// Close closes the underlying database handle.
func (s *Store) Close() error { return s.db.Close() }

// NewUnitOfWork starts an empty unit of work with repositories bound to
// this store. Stage changes through the repositories, then Commit.
func (s *Store) NewUnitOfWork() *UnitOfWork {
	u := &UnitOfWork{store: s}
	u.Patients = &PatientRepository{store: s, uow: u}
	u.Exams = &ExamRepository{store: s, uow: u}
	u.ExamImages = &ExamImageRepository{store: s, uow: u}
	u.ClinicSites = &ClinicSiteRepository{store: s, uow: u}
	u.Users = &UserRepository{store: s, uow: u}
	u.PatientNotes = &PatientNoteRepository{store: s, uow: u}
	u.PatientReports = &PatientReportRepository{store: s, uow: u}
	u.AuditTrail = &AuditRepository{store: s}
	return u
}

// Null conversion helpers shared by the repositories.

func strPtr(ns sql.NullString) *string {
	if ns.Valid {
		return &ns.String
	}
	return nil
}

func timePtr(nt sql.NullTime) *time.Time {
	if nt.Valid {
		t := nt.Time
		return &t
	}
	return nil
}

func intPtr(ni sql.NullInt64) *int {
	if ni.Valid {
		v := int(ni.Int64)
		return &v
	}
	return nil
}
