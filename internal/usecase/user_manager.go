package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/caretrack/caretrack/internal/domain"
	"github.com/caretrack/caretrack/internal/persistence"
	"github.com/caretrack/caretrack/internal/service/password"
)

// CreateUserRequest represents the request to register a user account
type CreateUserRequest struct {
	Username string          `json:"username" validate:"required,max=100"`
	Email    string          `json:"email" validate:"required,email"`
	Password string          `json:"password" validate:"required,min=8"`
	Role     domain.UserRole `json:"role,omitempty"`
}

// UpdateUserRequest represents the request to update a user account.
// Passwords change through ChangePassword, not here.
type UpdateUserRequest struct {
	Email      string          `json:"email" validate:"required,email"`
	Role       domain.UserRole `json:"role" validate:"required"`
	IsActive   bool            `json:"is_active"`
	RowVersion int64           `json:"row_version" validate:"required"`
}

// UserManager handles user account business logic
type UserManager struct {
	store  *persistence.Store
	hasher *password.BcryptHasher
	logger *logrus.Logger
}

// NewUserManager creates a new user manager
func NewUserManager(store *persistence.Store, hasher *password.BcryptHasher, logger *logrus.Logger) *UserManager {
	return &UserManager{store: store, hasher: hasher, logger: logger}
}

// Create registers a new user with a unique username and email. The
// password is hashed before it ever reaches the store.
func (m *UserManager) Create(ctx context.Context, req CreateUserRequest, actor *string) (*domain.User, error) {
	if len(req.Password) < 8 {
		return nil, domain.NewDomainError("password must be at least 8 characters")
	}

	hash, err := m.hasher.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := domain.NewUser(req.Username, req.Email, hash)
	if req.Role != "" {
		user.Role = req.Role
	}
	if err := user.Validate(); err != nil {
		return nil, err
	}

	uow := m.store.NewUnitOfWork()
	if err := m.checkUnique(ctx, uow, req.Username, req.Email); err != nil {
		return nil, err
	}

	uow.Users.Add(user)
	if _, err := uow.Commit(ctx, actor); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	m.logger.WithField("username", user.Username).Info("user created")
	return user, nil
}

// Get retrieves a visible user by ID.
func (m *UserManager) Get(ctx context.Context, id string) (*domain.User, error) {
	if id == "" {
		return nil, domain.NewDomainError("user ID is required")
	}
	return m.store.NewUnitOfWork().Users.GetByID(ctx, id)
}

// List lists visible users ordered by username.
func (m *UserManager) List(ctx context.Context, limit, offset int) ([]*domain.User, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	return m.store.NewUnitOfWork().Users.List(ctx, limit, offset)
}

// Update applies the request to the stored user and commits it with the
// caller's concurrency token.
func (m *UserManager) Update(ctx context.Context, id string, req UpdateUserRequest, actor *string) (*domain.User, error) {
	uow := m.store.NewUnitOfWork()
	user, err := uow.Users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Email != user.Email {
		if _, err := uow.Users.GetByEmail(ctx, req.Email); err == nil {
			return nil, domain.NewDomainError("a user with this email already exists")
		} else if !errors.Is(err, domain.ErrUserNotFound) {
			return nil, err
		}
	}

	user.Email = req.Email
	user.Role = req.Role
	user.IsActive = req.IsActive
	user.RowVersion = req.RowVersion

	if err := user.Validate(); err != nil {
		return nil, err
	}

	uow.Users.Update(user)
	if _, err := uow.Commit(ctx, actor); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return user, nil
}

// ChangePassword rehashes and stores a new password for the user.
func (m *UserManager) ChangePassword(ctx context.Context, id, newPassword string, actor *string) error {
	if len(newPassword) < 8 {
		return domain.NewDomainError("password must be at least 8 characters")
	}

	uow := m.store.NewUnitOfWork()
	user, err := uow.Users.GetByID(ctx, id)
	if err != nil {
		return err
	}

	hash, err := m.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	user.PasswordHash = hash

	uow.Users.Update(user)
	if _, err := uow.Commit(ctx, actor); err != nil {
		return fmt.Errorf("failed to change password: %w", err)
	}

	m.logger.WithField("user_id", id).Info("password changed")
	return nil
}

// VerifyCredentials checks a username/password pair against the stored
// hash. It reports false for unknown or inactive users rather than
// leaking which part failed.
func (m *UserManager) VerifyCredentials(ctx context.Context, username, plainPassword string) (*domain.User, bool, error) {
	user, err := m.store.NewUnitOfWork().Users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, false, nil
		}
		return nil, false, err
	}
	if !user.IsActive {
		return nil, false, nil
	}

	ok, err := m.hasher.Verify(plainPassword, user.PasswordHash)
	if err != nil {
		return nil, false, err
	}
	if !ok {
		return nil, false, nil
	}
	return user, true, nil
}

// Delete soft-deletes a user account.
func (m *UserManager) Delete(ctx context.Context, id string, actor *string) error {
	uow := m.store.NewUnitOfWork()
	user, err := uow.Users.GetByID(ctx, id)
	if err != nil {
		return err
	}

	uow.Users.Remove(user)
	if _, err := uow.Commit(ctx, actor); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	m.logger.WithField("user_id", id).Info("user deleted")
	return nil
}

func (m *UserManager) checkUnique(ctx context.Context, uow *persistence.UnitOfWork, username, email string) error {
	if _, err := uow.Users.GetByUsername(ctx, username); err == nil {
		return domain.NewDomainError("a user with this username already exists")
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return err
	}
	if _, err := uow.Users.GetByEmail(ctx, email); err == nil {
		return domain.NewDomainError("a user with this email already exists")
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return err
	}
	return nil
}
