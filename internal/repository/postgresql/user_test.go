package postgresql_test

import (
	"context"
	"testing"
	"time"

	"github.com/cmlabs-hris/appraisal-backend-go/internal/domain/auth"
	"github.com/cmlabs-hris/appraisal-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/appraisal-backend-go/internal/repository/postgresql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestUser(t *testing.T, repo user.UserRepository, username, department string) user.User {
	t.Helper()
	hash := "hash"
	u, err := repo.Create(context.Background(), user.User{
		ID:           newID(t),
		Username:     username,
		Name:         "User " + username,
		PasswordHash: &hash,
		Role:         user.RoleRater,
		Department:   department,
	})
	require.NoError(t, err)
	return u
}

func TestUserRepository_CreateAndGet(t *testing.T) {
	db := newTestDB(t)
	repo := postgresql.NewUserRepository(db)
	ctx := context.Background()

	created := createTestUser(t, repo, "Rater01", "jingkong")
	assert.Equal(t, user.RoleRater, created.Role)
	assert.False(t, created.CreatedAt.IsZero())

	byID, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Rater01", byID.Username)

	byName, err := repo.GetByUsername(ctx, "rater01")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byName.ID)

	_, err = repo.GetByID(ctx, newID(t))
	assert.ErrorIs(t, err, user.ErrUserNotFound)
}

func TestUserRepository_DuplicateUsername(t *testing.T) {
	db := newTestDB(t)
	repo := postgresql.NewUserRepository(db)

	createTestUser(t, repo, "dup", "kaitou")
	_, err := repo.Create(context.Background(), user.User{ID: newID(t), Username: "dup", Name: "Other", Role: user.RoleRater, Department: "kaitou"})
	assert.ErrorIs(t, err, user.ErrUsernameExists)
}

func TestUserRepository_LinkGoogleAccountAndList(t *testing.T) {
	db := newTestDB(t)
	repo := postgresql.NewUserRepository(db)
	ctx := context.Background()

	a := createTestUser(t, repo, "alice@example.com", "kaitou")
	b := createTestUser(t, repo, "bob@example.com", "kaitou")
	createTestUser(t, repo, "carol@example.com", "jingkong")

	linked, err := repo.LinkGoogleAccount(ctx, a.ID, "google-1")
	require.NoError(t, err)
	require.NotNil(t, linked.OAuthProviderID)
	assert.Equal(t, "google-1", *linked.OAuthProviderID)

	_, err = repo.LinkGoogleAccount(ctx, b.ID, "google-1")
	assert.ErrorIs(t, err, user.ErrOAuthProviderIDExists)

	users, err := repo.ListByDepartment(ctx, "kaitou")
	require.NoError(t, err)
	assert.Len(t, users, 2)
}

func TestRefreshTokenRepository(t *testing.T) {
	db := newTestDB(t)
	users := postgresql.NewUserRepository(db)
	repo := postgresql.NewRefreshTokenRepository(db)
	ctx := context.Background()

	u := createTestUser(t, users, "tokens", "general")

	revoked, err := repo.IsRefreshTokenRevoked(ctx, "unknown")
	require.NoError(t, err)
	assert.True(t, revoked, "unknown tokens count as revoked")

	require.NoError(t, repo.CreateRefreshToken(ctx, u.ID, "tok", time.Now().Add(time.Hour), auth.SessionTrackingRequest{UserAgent: "test"}))
	revoked, err = repo.IsRefreshTokenRevoked(ctx, "tok")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, repo.RevokeRefreshToken(ctx, "tok"))
	revoked, err = repo.IsRefreshTokenRevoked(ctx, "tok")
	require.NoError(t, err)
	assert.True(t, revoked)
}
