package service

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fjod/freshbuy/internal/auth"
	"github.com/fjod/freshbuy/internal/domain"
	"github.com/fjod/freshbuy/internal/repository"
)

type mockUserRepo struct {
	m     sync.Mutex
	users []*domain.User
}

func (r *mockUserRepo) CreateUser(_ context.Context, u *domain.User) error {
	r.m.Lock()
	defer r.m.Unlock()
	for _, existing := range r.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return repository.ErrDuplicateEmail
		}
	}
	u.ID = int64(len(r.users) + 1)
	c := *u
	r.users = append(r.users, &c)
	return nil
}

func (r *mockUserRepo) GetUserByEmail(_ context.Context, email string) (*domain.User, error) {
	r.m.Lock()
	defer r.m.Unlock()
	for _, u := range r.users {
		if strings.EqualFold(u.Email, email) {
			c := *u
			return &c, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (r *mockUserRepo) GetUser(_ context.Context, id int64) (*domain.User, error) {
	r.m.Lock()
	defer r.m.Unlock()
	for _, u := range r.users {
		if u.ID == id {
			c := *u
			return &c, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func newTestAuthService() (*AuthService, *mockUserRepo, *auth.Tokens) {
	repo := &mockUserRepo{}
	tokens := auth.NewTokens("test-secret")
	return NewAuthService(repo, tokens), repo, tokens
}

func TestAuthService_SignUpAndSignIn(t *testing.T) {
	svc, repo, tokens := newTestAuthService()
	ctx := context.Background()

	user, err := svc.SignUp(ctx, " ada@example.com ", "ada", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", user.Email)
	assert.False(t, user.IsAdmin)
	assert.NotEqual(t, "s3cret", repo.users[0].PasswordHash)

	res, err := svc.SignIn(ctx, "ADA@example.com", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, user.ID, res.User.ID)

	claims, err := tokens.Parse(res.Tokens.Access, auth.TokenTypeAccess)
	require.NoError(t, err)
	id, err := claims.UserID()
	require.NoError(t, err)
	assert.Equal(t, user.ID, id)
	assert.Equal(t, "ada@example.com", claims.Email)

	access, err := svc.Refresh(res.Tokens.Refresh)
	require.NoError(t, err)
	_, err = tokens.Parse(access, auth.TokenTypeAccess)
	assert.NoError(t, err)
}

func TestAuthService_SignUpValidation(t *testing.T) {
	svc, _, _ := newTestAuthService()
	ctx := context.Background()

	_, err := svc.SignUp(ctx, "", "x", "pw")
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.SignUp(ctx, "not-an-email", "x", "pw")
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.SignUp(ctx, "a@example.com", "x", "pw")
	require.NoError(t, err)
	_, err = svc.SignUp(ctx, "a@example.com", "y", "pw")
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.ErrorContains(t, err, "already exists")
}

func TestAuthService_SignInFailures(t *testing.T) {
	svc, _, _ := newTestAuthService()
	ctx := context.Background()
	_, err := svc.SignUp(ctx, "a@example.com", "", "right")
	require.NoError(t, err)

	_, err = svc.SignIn(ctx, "a@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.SignIn(ctx, "b@example.com", "right")
	assert.ErrorIs(t, err, repository.ErrUserNotFound)

	_, err = svc.SignIn(ctx, "a@example.com", "")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestAuthService_RefreshRejectsAccessToken(t *testing.T) {
	svc, _, _ := newTestAuthService()
	ctx := context.Background()
	_, err := svc.SignUp(ctx, "a@example.com", "", "pw")
	require.NoError(t, err)
	res, err := svc.SignIn(ctx, "a@example.com", "pw")
	require.NoError(t, err)

	_, err = svc.Refresh(res.Tokens.Access)
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Refresh("")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestAuthService_EnsureSuperuser(t *testing.T) {
	svc, repo, _ := newTestAuthService()
	ctx := context.Background()

	created, err := svc.EnsureSuperuser(ctx, "root@example.com", "pw")
	require.NoError(t, err)
	assert.True(t, created)

	created, err = svc.EnsureSuperuser(ctx, "root@example.com", "other")
	require.NoError(t, err)
	assert.False(t, created)
	require.Len(t, repo.users, 1)

	admin, err := svc.IsAdmin(ctx, repo.users[0].ID)
	require.NoError(t, err)
	assert.True(t, admin)

	_, err = svc.IsAdmin(ctx, 42)
	assert.ErrorIs(t, err, repository.ErrUserNotFound)
}

func TestAuthService_IsAdminReadsStore(t *testing.T) {
	svc, repo, _ := newTestAuthService()
	ctx := context.Background()
	user, err := svc.SignUp(ctx, "a@example.com", "", "pw")
	require.NoError(t, err)

	admin, err := svc.IsAdmin(ctx, user.ID)
	require.NoError(t, err)
	assert.False(t, admin)

	repo.users[0].IsAdmin = true
	admin, err = svc.IsAdmin(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, admin)
}
