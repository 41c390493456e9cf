package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/smarttransit/backend/internal/apperr"
	"github.com/smarttransit/backend/internal/models"
)

func newTestUser(email, phone string) *models.User {
	return &models.User{
		FirstName:    "Ada",
		LastName:     "Lovelace",
		PhoneNumber:  phone,
		Email:        email,
		PasswordHash: "not-a-real-hash",
		Age:          30,
		Role:         models.RoleCommuter,
		IsActive:     true,
	}
}

func TestUserCreateAndGetByEmail(t *testing.T) {
	repo := &UserRepo{DB: initTestDB(t)}
	ctx := context.Background()

	u := newTestUser("ada@example.com", "+100000001")
	require.NoError(t, repo.Create(ctx, u))
	require.NotEmpty(t, u.ID)

	found, err := repo.GetByEmail(ctx, "ada@example.com")
	require.NoError(t, err)
	require.NotNil(t, found)
	require.Equal(t, u.ID, found.ID)

	// exact match only
	found, err = repo.GetByEmail(ctx, "ADA@example.com")
	require.NoError(t, err)
	require.Nil(t, found)
}

func TestUserDuplicateEmailConflict(t *testing.T) {
	repo := &UserRepo{DB: initTestDB(t)}
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newTestUser("dup@example.com", "+100000002")))

	err := repo.Create(ctx, newTestUser("dup@example.com", "+100000003"))
	require.Error(t, err)
	require.Equal(t, apperr.KindConflict, apperr.KindOf(err))
}

func TestUserGetByIDNotFound(t *testing.T) {
	repo := &UserRepo{DB: initTestDB(t)}
	ctx := context.Background()

	u := newTestUser("gone@example.com", "+100000004")
	require.NoError(t, repo.Create(ctx, u))
	require.NoError(t, repo.Delete(ctx, u.ID))

	_, err := repo.GetByID(ctx, u.ID)
	require.Error(t, err)
	require.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}
