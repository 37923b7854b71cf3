package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/caretrack/caretrack/internal/domain"
	"github.com/caretrack/caretrack/internal/service/password"
)

func newUserManager(t *testing.T) *UserManager {
	t.Helper()
	store, log := newManagerTestStore(t)
	// Minimum cost keeps the bcrypt work factor out of the test runtime.
	return NewUserManager(store, password.NewBcryptHasher(4), log)
}

func TestUserManagerCreateHashesPassword(t *testing.T) {
	mgr := newUserManager(t)
	ctx := context.Background()

	user, err := mgr.Create(ctx, CreateUserRequest{
		Username: "jdoe",
		Email:    "jdoe@example.com",
		Password: "s3cret-pass",
	}, strp("admin"))
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret-pass", user.PasswordHash)
	assert.Equal(t, domain.UserRoleUser, user.Role)

	verified, ok, err := mgr.VerifyCredentials(ctx, "jdoe", "s3cret-pass")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, user.ID, verified.ID)

	_, ok, err = mgr.VerifyCredentials(ctx, "jdoe", "wrong-pass")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestUserManagerCreateRejectsDuplicates(t *testing.T) {
	mgr := newUserManager(t)
	ctx := context.Background()

	_, err := mgr.Create(ctx, CreateUserRequest{
		Username: "jdoe", Email: "jdoe@example.com", Password: "s3cret-pass",
	}, nil)
	require.NoError(t, err)

	_, err = mgr.Create(ctx, CreateUserRequest{
		Username: "jdoe", Email: "other@example.com", Password: "s3cret-pass",
	}, nil)
	require.Error(t, err)

	_, err = mgr.Create(ctx, CreateUserRequest{
		Username: "other", Email: "jdoe@example.com", Password: "s3cret-pass",
	}, nil)
	require.Error(t, err)
}

func TestUserManagerRejectsShortPassword(t *testing.T) {
	mgr := newUserManager(t)

	_, err := mgr.Create(context.Background(), CreateUserRequest{
		Username: "jdoe", Email: "jdoe@example.com", Password: "short",
	}, nil)
	require.Error(t, err)
}

func TestUserManagerChangePassword(t *testing.T) {
	mgr := newUserManager(t)
	ctx := context.Background()

	user, err := mgr.Create(ctx, CreateUserRequest{
		Username: "jdoe", Email: "jdoe@example.com", Password: "s3cret-pass",
	}, nil)
	require.NoError(t, err)

	require.NoError(t, mgr.ChangePassword(ctx, user.ID, "brand-new-pass", strp("admin")))

	_, ok, err := mgr.VerifyCredentials(ctx, "jdoe", "brand-new-pass")
	require.NoError(t, err)
	assert.True(t, ok)

	_, ok, err = mgr.VerifyCredentials(ctx, "jdoe", "s3cret-pass")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestUserManagerVerifyInactiveUser(t *testing.T) {
	mgr := newUserManager(t)
	ctx := context.Background()

	user, err := mgr.Create(ctx, CreateUserRequest{
		Username: "jdoe", Email: "jdoe@example.com", Password: "s3cret-pass",
	}, nil)
	require.NoError(t, err)

	_, err = mgr.Update(ctx, user.ID, UpdateUserRequest{
		Email: user.Email, Role: user.Role, IsActive: false, RowVersion: user.RowVersion,
	}, nil)
	require.NoError(t, err)

	_, ok, err := mgr.VerifyCredentials(ctx, "jdoe", "s3cret-pass")
	require.NoError(t, err)
	assert.False(t, ok)
}
