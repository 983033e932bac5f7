package auth

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/cmlabs-hris/appraisal-backend-go/internal/domain/auth"
	"github.com/cmlabs-hris/appraisal-backend-go/internal/domain/personnel"
	"github.com/cmlabs-hris/appraisal-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/appraisal-backend-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/appraisal-backend-go/internal/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const (
	testAccessExp  = "1h"
	testRefreshExp = "24h"
	testSecret     = "test-secret-key-for-jwt"
)

type noTx struct{}

func (noTx) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]user.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]user.User)}
}

func (f *fakeUserRepo) Create(_ context.Context, u user.User) (user.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.users {
		if strings.EqualFold(existing.Username, u.Username) {
			return user.User{}, user.ErrUsernameExists
		}
	}
	u.CreatedAt = time.Now()
	f.users[u.ID] = u
	return u, nil
}

func (f *fakeUserRepo) GetByID(_ context.Context, id string) (user.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return user.User{}, user.ErrUserNotFound
	}
	return u, nil
}

func (f *fakeUserRepo) GetByUsername(_ context.Context, username string) (user.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if strings.EqualFold(u.Username, username) {
			return u, nil
		}
	}
	return user.User{}, user.ErrUserNotFound
}

func (f *fakeUserRepo) LinkGoogleAccount(_ context.Context, id string, googleID string) (user.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return user.User{}, user.ErrUserNotFound
	}
	provider := "google"
	u.OAuthProvider = &provider
	u.OAuthProviderID = &googleID
	f.users[id] = u
	return u, nil
}

func (f *fakeUserRepo) ListByDepartment(_ context.Context, department string) ([]user.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []user.User
	for _, u := range f.users {
		if u.Department == department {
			out = append(out, u)
		}
	}
	return out, nil
}

type fakePersonnelRepo struct {
	personnel.PersonnelRepository
	people map[string]personnel.Personnel
}

func (f *fakePersonnelRepo) GetByID(_ context.Context, id string) (personnel.Personnel, error) {
	p, ok := f.people[id]
	if !ok {
		return personnel.Personnel{}, personnel.ErrPersonnelNotFound
	}
	return p, nil
}

type fakeRefreshTokenRepo struct {
	mu      sync.Mutex
	tokens  map[string]string
	revoked map[string]bool
}

func newFakeRefreshTokenRepo() *fakeRefreshTokenRepo {
	return &fakeRefreshTokenRepo{tokens: make(map[string]string), revoked: make(map[string]bool)}
}

func (f *fakeRefreshTokenRepo) CreateRefreshToken(_ context.Context, userID string, token string, _ time.Time, _ auth.SessionTrackingRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tokens[token] = userID
	return nil
}

func (f *fakeRefreshTokenRepo) IsRefreshTokenRevoked(_ context.Context, token string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.tokens[token]; !ok {
		return true, nil
	}
	return f.revoked[token], nil
}

func (f *fakeRefreshTokenRepo) RevokeRefreshToken(_ context.Context, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.revoked[token] = true
	return nil
}

type testEnv struct {
	svc    auth.AuthService
	users  *fakeUserRepo
	tokens *fakeRefreshTokenRepo
	jwt    jwt.Service
}

const testPersonnelID = "0188d0f2-7b8c-7b4a-8a2b-6b8b8b8b8b8b"

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{
		users:  newFakeUserRepo(),
		tokens: newFakeRefreshTokenRepo(),
		jwt:    jwt.NewJWTService(testSecret, testAccessExp, testRefreshExp),
	}
	people := &fakePersonnelRepo{people: map[string]personnel.Personnel{
		testPersonnelID: {ID: testPersonnelID, Name: "Wang Wei", Department: "jingkong", Active: true},
	}}
	env.svc = NewAuthService(noTx{}, env.users, people, env.tokens, env.jwt)
	return env
}

func (e *testEnv) addUser(t *testing.T, id, username, password string, role user.Role) user.User {
	t.Helper()
	var hash *string
	if password != "" {
		b, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
		require.NoError(t, err)
		s := string(b)
		hash = &s
	}
	u, err := e.users.Create(context.Background(), user.User{
		ID: id, Username: username, Name: username, PasswordHash: hash, Role: role, Department: "jingkong",
	})
	require.NoError(t, err)
	return u
}

func adminCtx() context.Context {
	return user.WithPrincipal(context.Background(), user.Principal{UserID: "admin-1", Role: user.RoleAdmin, Department: "general"})
}

func TestAuthService_Login_Success(t *testing.T) {
	env := newTestEnv(t)
	env.addUser(t, "u1", "rater01", "password123", user.RoleRater)

	session := auth.SessionTrackingRequest{IPAddress: "127.0.0.1", UserAgent: "Mozilla/5.0"}
	response, err := env.svc.Login(context.Background(), auth.LoginRequest{Username: "Rater01", Password: "password123"}, session)

	require.NoError(t, err)
	assert.NotEmpty(t, response.AccessToken)
	assert.NotEmpty(t, response.RefreshToken)
	assert.Greater(t, response.AccessTokenExpiresIn, int64(0))
	assert.Greater(t, response.RefreshTokenExpiresIn, int64(0))
	assert.Equal(t, "u1", env.tokens.tokens[response.RefreshToken])
}

func TestAuthService_Login_InvalidCredentials(t *testing.T) {
	env := newTestEnv(t)
	env.addUser(t, "u1", "rater01", "password123", user.RoleRater)
	env.addUser(t, "u2", "oauth-only@example.com", "", user.RoleRater)

	cases := []auth.LoginRequest{
		{Username: "rater01", Password: "wrong-password"},
		{Username: "nobody", Password: "password123"},
		{Username: "oauth-only@example.com", Password: "anything"},
	}
	for _, req := range cases {
		_, err := env.svc.Login(context.Background(), req, auth.SessionTrackingRequest{})
		assert.ErrorIs(t, err, auth.ErrInvalidCredentials, req.Username)
	}

	_, err := env.svc.Login(context.Background(), auth.LoginRequest{}, auth.SessionTrackingRequest{})
	var verrs validator.ValidationErrors
	assert.ErrorAs(t, err, &verrs)
}

func TestAuthService_RefreshToken_Rotates(t *testing.T) {
	env := newTestEnv(t)
	env.addUser(t, "u1", "rater01", "password123", user.RoleRater)
	ctx := context.Background()

	login, err := env.svc.Login(ctx, auth.LoginRequest{Username: "rater01", Password: "password123"}, auth.SessionTrackingRequest{})
	require.NoError(t, err)

	refreshed, err := env.svc.RefreshToken(ctx, auth.RefreshTokenRequest{RefreshToken: login.RefreshToken}, auth.SessionTrackingRequest{})
	require.NoError(t, err)
	assert.NotEqual(t, login.RefreshToken, refreshed.RefreshToken)

	// The old token cannot be used twice
	_, err = env.svc.RefreshToken(ctx, auth.RefreshTokenRequest{RefreshToken: login.RefreshToken}, auth.SessionTrackingRequest{})
	assert.ErrorIs(t, err, auth.ErrRefreshTokenRevoked)

	// Access tokens are not refresh tokens
	_, err = env.svc.RefreshToken(ctx, auth.RefreshTokenRequest{RefreshToken: login.AccessToken}, auth.SessionTrackingRequest{})
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestAuthService_Logout(t *testing.T) {
	env := newTestEnv(t)
	env.addUser(t, "u1", "rater01", "password123", user.RoleRater)
	ctx := context.Background()

	login, err := env.svc.Login(ctx, auth.LoginRequest{Username: "rater01", Password: "password123"}, auth.SessionTrackingRequest{})
	require.NoError(t, err)

	require.NoError(t, env.svc.Logout(ctx, login.RefreshToken))
	assert.True(t, env.tokens.revoked[login.RefreshToken])
	assert.ErrorIs(t, env.svc.Logout(ctx, ""), auth.ErrRefreshTokenCookieNotFound)
}

func TestAuthService_LoginWithGoogle(t *testing.T) {
	env := newTestEnv(t)
	env.addUser(t, "u1", "alice@example.com", "", user.RoleRater)
	ctx := context.Background()

	_, err := env.svc.LoginWithGoogle(ctx, "stranger@example.com", "g-1", auth.SessionTrackingRequest{})
	assert.ErrorIs(t, err, auth.ErrGoogleAccountNotLinked)

	tokens, err := env.svc.LoginWithGoogle(ctx, "alice@example.com", "g-1", auth.SessionTrackingRequest{})
	require.NoError(t, err)
	assert.NotEmpty(t, tokens.AccessToken)
	require.NotNil(t, env.users.users["u1"].OAuthProviderID)
	assert.Equal(t, "g-1", *env.users.users["u1"].OAuthProviderID)

	_, err = env.svc.LoginWithGoogle(ctx, "alice@example.com", "g-2", auth.SessionTrackingRequest{})
	assert.ErrorIs(t, err, auth.ErrGoogleAccountNotLinked)
}

func TestAuthService_Me(t *testing.T) {
	env := newTestEnv(t)
	env.addUser(t, "u1", "rater01", "password123", user.RoleRater)

	_, err := env.svc.Me(context.Background())
	assert.ErrorIs(t, err, user.ErrUnauthenticated)

	ctx := user.WithPrincipal(context.Background(), user.Principal{UserID: "u1", Role: user.RoleRater})
	me, err := env.svc.Me(ctx)
	require.NoError(t, err)
	assert.Equal(t, "rater01", me.Username)
}

func TestAuthService_CreateUser(t *testing.T) {
	env := newTestEnv(t)
	personnelID := testPersonnelID

	req := user.CreateUserRequest{
		Username:    "  rater02 ",
		Name:        "Rater Two",
		Password:    "password123",
		Role:        user.RoleRater,
		Department:  "jingkong",
		PersonnelID: &personnelID,
	}

	raterCtx := user.WithPrincipal(context.Background(), user.Principal{UserID: "u9", Role: user.RoleRater})
	_, err := env.svc.CreateUser(raterCtx, req)
	assert.ErrorIs(t, err, user.ErrAdminPrivilegeRequired)

	created, err := env.svc.CreateUser(adminCtx(), req)
	require.NoError(t, err)
	assert.Equal(t, "rater02", created.Username)
	assert.True(t, validator.IsValidUUID(created.ID))

	_, err = env.svc.CreateUser(adminCtx(), req)
	assert.ErrorIs(t, err, user.ErrUsernameExists)

	req.Username = "rater03"
	req.Department = "kaitou"
	_, err = env.svc.CreateUser(adminCtx(), req)
	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Contains(t, verrs.ToMap(), "personnel_id")
}

func TestAuthService_EnsureAdmin(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	require.NoError(t, env.svc.EnsureAdmin(ctx, "admin", "Administrator", ""))
	assert.Empty(t, env.users.users, "no admin without a password")

	require.NoError(t, env.svc.EnsureAdmin(ctx, "admin", "Administrator", "s3cret-password"))
	require.NoError(t, env.svc.EnsureAdmin(ctx, "admin", "Administrator", "s3cret-password"))
	require.Len(t, env.users.users, 1)

	admin, err := env.users.GetByUsername(ctx, "admin")
	require.NoError(t, err)
	assert.Equal(t, user.RoleAdmin, admin.Role)

	_, err = env.svc.Login(ctx, auth.LoginRequest{Username: "admin", Password: "s3cret-password"}, auth.SessionTrackingRequest{})
	assert.NoError(t, err)
}
