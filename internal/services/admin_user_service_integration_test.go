//go:build integration

package services

import (
	"context"
	"testing"

	contextutils "gearreport/internal/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdminUserService_CreateAndAuthenticate(t *testing.T) {
	db := SharedTestDBSetup(t)
	defer db.Close()
	svc := NewAdminUserService(db, testLogger())
	ctx := context.Background()

	created, err := svc.CreateUser(ctx, "moderator", "hunter2hunter2", "mod@example.com")
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.NotEqual(t, "hunter2hunter2", created.PasswordHash)

	user, err := svc.AuthenticateUser(ctx, "moderator", "hunter2hunter2")
	require.NoError(t, err)
	assert.Equal(t, created.ID, user.ID)

	_, err = svc.AuthenticateUser(ctx, "moderator", "wrong-password")
	require.Error(t, err)
	assert.True(t, contextutils.IsError(err, contextutils.ErrInvalidCredentials))

	// Unknown users get the same error as wrong passwords
	_, err = svc.AuthenticateUser(ctx, "nobody", "hunter2hunter2")
	require.Error(t, err)
	assert.True(t, contextutils.IsError(err, contextutils.ErrInvalidCredentials))
}

func TestAdminUserService_CreateUser_MissingFields(t *testing.T) {
	db := SharedTestDBSetup(t)
	defer db.Close()
	svc := NewAdminUserService(db, testLogger())

	_, err := svc.CreateUser(context.Background(), "", "password", "")
	require.Error(t, err)
	assert.True(t, contextutils.IsError(err, contextutils.ErrMissingRequired))

	_, err = svc.CreateUser(context.Background(), "moderator", "", "")
	require.Error(t, err)
}

func TestAdminUserService_ResetPassword(t *testing.T) {
	db := SharedTestDBSetup(t)
	defer db.Close()
	svc := NewAdminUserService(db, testLogger())
	ctx := context.Background()

	_, err := svc.CreateUser(ctx, "moderator", "old-password", "")
	require.NoError(t, err)

	require.NoError(t, svc.ResetPassword(ctx, "moderator", "new-password"))

	_, err = svc.AuthenticateUser(ctx, "moderator", "old-password")
	require.Error(t, err)

	_, err = svc.AuthenticateUser(ctx, "moderator", "new-password")
	require.NoError(t, err)

	err = svc.ResetPassword(ctx, "nobody", "whatever")
	require.Error(t, err)
	assert.True(t, contextutils.IsError(err, contextutils.ErrRecordNotFound))
}

func TestAdminUserService_EnsureAdminUser(t *testing.T) {
	db := SharedTestDBSetup(t)
	defer db.Close()
	svc := NewAdminUserService(db, testLogger())
	ctx := context.Background()

	// Empty credentials are a no-op, not an error
	require.NoError(t, svc.EnsureAdminUser(ctx, "", ""))

	require.NoError(t, svc.EnsureAdminUser(ctx, "admin", "bootstrap-pass"))
	user, err := svc.GetUserByUsername(ctx, "admin")
	require.NoError(t, err)

	// Idempotent: a second call leaves the existing account untouched
	require.NoError(t, svc.EnsureAdminUser(ctx, "admin", "different-pass"))
	again, err := svc.GetUserByUsername(ctx, "admin")
	require.NoError(t, err)
	assert.Equal(t, user.ID, again.ID)
	assert.Equal(t, user.PasswordHash, again.PasswordHash)
}

func TestAdminUserService_UpdateLastActive(t *testing.T) {
	db := SharedTestDBSetup(t)
	defer db.Close()
	svc := NewAdminUserService(db, testLogger())
	ctx := context.Background()

	created, err := svc.CreateUser(ctx, "moderator", "password123", "")
	require.NoError(t, err)
	assert.False(t, created.LastActiveAt.Valid)

	require.NoError(t, svc.UpdateLastActive(ctx, created.ID))

	user, err := svc.GetUserByUsername(ctx, "moderator")
	require.NoError(t, err)
	assert.True(t, user.LastActiveAt.Valid)
}
