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
		Kind:             domain.KindUser,
		Table:            "users",
		Columns:          []string{"username", "email", "role", "is_active"},
		SensitiveColumns: []string{"password_hash"},
		Load: func(ctx context.Context, q dbtx, d Dialect, id string) (domain.Tracked, error) {
			u, err := loadUser(ctx, q, d, id, IncludeDeleted)
			if err != nil {
				return nil, err
			}
			return u, nil
		},
	})
}

// UserRepository provides filtered reads over user accounts and stages
// writes into its unit of work.
type UserRepository struct {
	store *Store
	uow   *UnitOfWork
}

const userSelect = `SELECT id, created_at_utc, created_by, modified_at_utc, modified_by,
	is_deleted, row_version, username, email, role, is_active, password_hash
	FROM users`

func scanUser(sc scanner) (*domain.User, error) {
	var u domain.User
	var createdBy, modifiedBy sql.NullString
	var modifiedAt sql.NullTime
	var role string
	err := sc.Scan(
		&u.ID, &u.CreatedAtUtc, &createdBy, &modifiedAt, &modifiedBy, &u.IsDeleted, &u.RowVersion,
		&u.Username, &u.Email, &role, &u.IsActive, &u.PasswordHash,
	)
	if err != nil {
		return nil, err
	}
	u.CreatedBy = strPtr(createdBy)
	u.ModifiedAtUtc = timePtr(modifiedAt)
	u.ModifiedBy = strPtr(modifiedBy)
	u.Role = domain.UserRole(role)
	return &u, nil
}

func loadUser(ctx context.Context, q dbtx, d Dialect, id string, v Visibility) (*domain.User, error) {
	query := d.Rebind(fmt.Sprintf("%s WHERE %s AND id = ?", userSelect, v.predicate()))
	return scanUser(q.QueryRowContext(ctx, query, id))
}

// GetByID retrieves a user; soft-deleted rows are invisible here.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	u, err := loadUser(ctx, r.store.db, r.store.dialect, id, VisibleOnly)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return u, nil
}

// GetByUsername retrieves a visible user by unique username.
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	query := r.store.dialect.Rebind(
		fmt.Sprintf("%s WHERE %s AND username = ?", userSelect, VisibleOnly.predicate()))
	u, err := scanUser(r.store.db.QueryRowContext(ctx, query, username))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user by username: %w", err)
	}
	return u, nil
}

// GetByEmail retrieves a visible user by unique email.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := r.store.dialect.Rebind(
		fmt.Sprintf("%s WHERE %s AND email = ?", userSelect, VisibleOnly.predicate()))
	u, err := scanUser(r.store.db.QueryRowContext(ctx, query, email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user by email: %w", err)
	}
	return u, nil
}

// List lists visible users ordered by username.
func (r *UserRepository) List(ctx context.Context, limit, offset int) ([]*domain.User, error) {
	query := fmt.Sprintf("%s WHERE %s ORDER BY username", userSelect, VisibleOnly.predicate())
	var args []any
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
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	var users []*domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating users: %w", err)
	}
	return users, nil
}

// Add stages a new user for insertion at commit time.
func (r *UserRepository) Add(u *domain.User) { r.uow.stage(u, stateAdded) }

// Update stages a modified user.
func (r *UserRepository) Update(u *domain.User) { r.uow.stage(u, stateModified) }

// Remove stages a user for soft deletion.
func (r *UserRepository) Remove(u *domain.User) { r.uow.stage(u, stateRemoved) }
