package usecase

import (
	"context"
	"database/sql"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/caretrack/caretrack/internal/persistence"
)

// Manager tests run against in-memory SQLite with the tables they touch.
const managerTestSchema = `
CREATE TABLE patients (
	id              TEXT PRIMARY KEY,
	created_at_utc  TIMESTAMP NOT NULL,
	created_by      TEXT,
	modified_at_utc TIMESTAMP,
	modified_by     TEXT,
	is_deleted      INTEGER NOT NULL DEFAULT 0,
	row_version     INTEGER NOT NULL DEFAULT 1,
	first_name      TEXT NOT NULL,
	last_name       TEXT NOT NULL,
	mrn             TEXT,
	date_of_birth   TIMESTAMP,
	gender          TEXT
);
CREATE UNIQUE INDEX ux_patients_mrn ON patients (mrn) WHERE mrn IS NOT NULL;

CREATE TABLE users (
	id              TEXT PRIMARY KEY,
	created_at_utc  TIMESTAMP NOT NULL,
	created_by      TEXT,
	modified_at_utc TIMESTAMP,
	modified_by     TEXT,
	is_deleted      INTEGER NOT NULL DEFAULT 0,
	row_version     INTEGER NOT NULL DEFAULT 1,
	username        TEXT NOT NULL,
	email           TEXT NOT NULL,
	role            TEXT NOT NULL DEFAULT 'User',
	is_active       INTEGER NOT NULL DEFAULT 1,
	password_hash   TEXT NOT NULL
);
CREATE UNIQUE INDEX ux_users_username ON users (username);
CREATE UNIQUE INDEX ux_users_email ON users (email);

CREATE TABLE patient_notes (
	id              TEXT PRIMARY KEY,
	created_at_utc  TIMESTAMP NOT NULL,
	created_by      TEXT,
	modified_at_utc TIMESTAMP,
	modified_by     TEXT,
	is_deleted      INTEGER NOT NULL DEFAULT 0,
	row_version     INTEGER NOT NULL DEFAULT 1,
	patient_id      TEXT NOT NULL,
	note_type       TEXT NOT NULL DEFAULT 'Clinical Note',
	content         TEXT NOT NULL,
	author_name     TEXT,
	note_date       TIMESTAMP NOT NULL
);

CREATE TABLE exams (
	id              TEXT PRIMARY KEY,
	created_at_utc  TIMESTAMP NOT NULL,
	created_by      TEXT,
	modified_at_utc TIMESTAMP,
	modified_by     TEXT,
	is_deleted      INTEGER NOT NULL DEFAULT 0,
	row_version     INTEGER NOT NULL DEFAULT 1,
	patient_id      TEXT NOT NULL,
	modality        TEXT NOT NULL,
	study_type      TEXT NOT NULL,
	study_date_utc  TIMESTAMP NOT NULL,
	storage_uri     TEXT,
	storage_key     TEXT,
	status          TEXT NOT NULL DEFAULT 'New'
);

CREATE TABLE exam_images (
	id              TEXT PRIMARY KEY,
	created_at_utc  TIMESTAMP NOT NULL,
	created_by      TEXT,
	modified_at_utc TIMESTAMP,
	modified_by     TEXT,
	is_deleted      INTEGER NOT NULL DEFAULT 0,
	row_version     INTEGER NOT NULL DEFAULT 1,
	exam_id         TEXT NOT NULL,
	file_name       TEXT NOT NULL,
	file_size_bytes INTEGER NOT NULL DEFAULT 0,
	content_type    TEXT NOT NULL,
	file_path       TEXT NOT NULL,
	thumbnail_path  TEXT,
	width           INTEGER,
	height          INTEGER
);

CREATE TABLE patient_reports (
	id              TEXT PRIMARY KEY,
	created_at_utc  TIMESTAMP NOT NULL,
	created_by      TEXT,
	modified_at_utc TIMESTAMP,
	modified_by     TEXT,
	is_deleted      INTEGER NOT NULL DEFAULT 0,
	row_version     INTEGER NOT NULL DEFAULT 1,
	patient_id      TEXT NOT NULL,
	file_name       TEXT NOT NULL,
	report_type     TEXT NOT NULL,
	description     TEXT,
	file_size_bytes INTEGER NOT NULL DEFAULT 0,
	content_type    TEXT NOT NULL,
	file_path       TEXT NOT NULL,
	upload_date_utc TIMESTAMP NOT NULL
);

CREATE TABLE audit_records (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	entity_name   TEXT NOT NULL,
	entity_id     TEXT NOT NULL,
	action        TEXT NOT NULL,
	timestamp_utc TIMESTAMP NOT NULL,
	actor         TEXT,
	changes_json  TEXT
);
`

func newManagerTestStore(t *testing.T) (*persistence.Store, *logrus.Logger) {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	_, err = db.ExecContext(context.Background(), managerTestSchema)
	require.NoError(t, err)

	log := logrus.New()
	log.SetOutput(io.Discard)
	return persistence.NewStore(db, persistence.DialectSQLite, log), log
}
