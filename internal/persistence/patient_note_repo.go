package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/caretrack/caretrack/internal/domain"
)

func init() {
	Register(&EntityBinding{
		Kind:    domain.KindPatientNote,
		Table:   "patient_notes",
		Columns: []string{"patient_id", "note_type", "content", "author_name", "note_date"},
		Load: func(ctx context.Context, q dbtx, d Dialect, id string) (domain.Tracked, error) {
			n, err := loadPatientNote(ctx, q, d, id, IncludeDeleted)
			if err != nil {
				return nil, err
			}
			return n, nil
		},
	})
}

// PatientNoteRepository provides filtered reads over clinical notes and
// stages writes into its unit of work.
type PatientNoteRepository struct {
	store *Store
	uow   *UnitOfWork
}

func scanPatientNote(sc scanner) (*domain.PatientNote, error) {
	var n domain.PatientNote
	var createdBy, modifiedBy, author sql.NullString
	var modifiedAt sql.NullTime
	err := sc.Scan(
		&n.ID, &n.CreatedAtUtc, &createdBy, &modifiedAt, &modifiedBy, &n.IsDeleted, &n.RowVersion,
		&n.PatientID, &n.NoteType, &n.Content, &author, &n.NoteDate,
	)
	if err != nil {
		return nil, err
	}
	n.CreatedBy = strPtr(createdBy)
	n.ModifiedAtUtc = timePtr(modifiedAt)
	n.ModifiedBy = strPtr(modifiedBy)
	n.AuthorName = strPtr(author)
	return &n, nil
}

func loadPatientNote(ctx context.Context, q dbtx, d Dialect, id string, v Visibility) (*domain.PatientNote, error) {
	b, err := bindingFor(domain.KindPatientNote)
	if err != nil {
		return nil, err
	}
	query := d.Rebind(b.scopedSelect(v) + " AND id = ?")
	return scanPatientNote(q.QueryRowContext(ctx, query, id))
}

// GetByID retrieves a note; soft-deleted rows are invisible here.
func (r *PatientNoteRepository) GetByID(ctx context.Context, id string) (*domain.PatientNote, error) {
	n, err := loadPatientNote(ctx, r.store.db, r.store.dialect, id, VisibleOnly)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNoteNotFound
		}
		return nil, fmt.Errorf("failed to find patient note: %w", err)
	}
	return n, nil
}

// ListByPatient lists a patient's visible notes, newest first.
func (r *PatientNoteRepository) ListByPatient(ctx context.Context, patientID string, limit, offset int) ([]*domain.PatientNote, error) {
	b, err := bindingFor(domain.KindPatientNote)
	if err != nil {
		return nil, err
	}
	query := b.scopedSelect(VisibleOnly) + " AND patient_id = ? ORDER BY note_date DESC"
	args := []any{patientID}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	if offset > 0 {
		query += " OFFSET ?"
		args = append(args, offset)
	}
	rows, err := r.store.db.QueryContext(ctx, r.store.dialect.Rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query patient notes: %w", err)
	}
	defer rows.Close()

	var notes []*domain.PatientNote
	for rows.Next() {
		n, err := scanPatientNote(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan patient note: %w", err)
		}
		notes = append(notes, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating patient notes: %w", err)
	}
	return notes, nil
}

// Add stages a new note for insertion at commit time.
func (r *PatientNoteRepository) Add(n *domain.PatientNote) { r.uow.stage(n, stateAdded) }

// Update stages a modified note.
func (r *PatientNoteRepository) Update(n *domain.PatientNote) { r.uow.stage(n, stateModified) }

// Remove stages a note for soft deletion.
func (r *PatientNoteRepository) Remove(n *domain.PatientNote) { r.uow.stage(n, stateRemoved) }
