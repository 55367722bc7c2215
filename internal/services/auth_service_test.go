package services

import (
	"context"
	"testing"
	"time"

	"social-go/internal/auth"
	"social-go/internal/config"
	"social-go/internal/pagination"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testAuthConfig() config.Config {
	return config.Config{
		Auth: config.AuthConfig{
			JWTSecretKey: "test-secret-key",
			JWTExpiry:    15 * time.Minute,
		},
	}
}

func TestRegister_Success(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewAuthService(repo, testAuthConfig())

	user, err := svc.Register(context.Background(), "alice@example.com", "Alice", "Smith", "s3cretpass")
	require.NoError(t, err)
	assert.NotZero(t, user.ID)
	assert.Equal(t, "alice@example.com", user.Email)
	assert.NotEqual(t, "s3cretpass", user.PasswordHash, "password must be stored hashed")
	assert.True(t, auth.CheckPasswordHash("s3cretpass", user.PasswordHash))
}

func TestRegister_DuplicateEmail(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewAuthService(repo, testAuthConfig())

	_, err := svc.Register(context.Background(), "alice@example.com", "Alice", "Smith", "s3cretpass")
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), "alice@example.com", "Other", "Person", "differentpass")
	assert.ErrorIs(t, err, ErrUserAlreadyExists)
}

func TestLogin_Success(t *testing.T) {
	repo := newFakeUserRepo()
	cfg := testAuthConfig()
	svc := NewAuthService(repo, cfg)

	registered, err := svc.Register(context.Background(), "alice@example.com", "Alice", "Smith", "s3cretpass")
	require.NoError(t, err)

	token, user, err := svc.Login(context.Background(), "alice@example.com", "s3cretpass")
	require.NoError(t, err)
	assert.Equal(t, registered.ID, user.ID)

	claims, err := auth.ValidateToken(context.Background(), token, cfg.Auth.JWTSecretKey, nil)
	require.NoError(t, err)
	assert.Equal(t, registered.ID, claims.UserID)
	assert.Equal(t, "alice@example.com", claims.Email)
	assert.NotEmpty(t, claims.ID, "tokens must carry a jti for revocation")
}

func TestLogin_WrongPassword(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewAuthService(repo, testAuthConfig())

	_, err := svc.Register(context.Background(), "alice@example.com", "Alice", "Smith", "s3cretpass")
	require.NoError(t, err)

	_, _, err = svc.Login(context.Background(), "alice@example.com", "wrongpass")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLogin_UnknownEmail(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewAuthService(repo, testAuthConfig())

	_, _, err := svc.Login(context.Background(), "nobody@example.com", "whatever")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestSearchUsers_ExcludesCaller(t *testing.T) {
	repo := newFakeUserRepo(
		testUser(1, "alice@example.com"),
		testUser(2, "bob@example.com"),
		testUser(3, "bobby@example.com"),
	)
	svc := NewUserService(repo)

	page, err := svc.SearchUsers(context.Background(), "bob", 2, paginationDefaults())
	require.NoError(t, err)
	require.Len(t, page.Results, 1)
	assert.Equal(t, uint(3), page.Results[0].ID)
}

func TestSearchUsers_EmptyQueryListsEveryoneElse(t *testing.T) {
	repo := newFakeUserRepo(
		testUser(1, "alice@example.com"),
		testUser(2, "bob@example.com"),
		testUser(3, "carol@example.com"),
	)
	svc := NewUserService(repo)

	page, err := svc.SearchUsers(context.Background(), "", 1, paginationDefaults())
	require.NoError(t, err)
	assert.Equal(t, int64(2), page.Count)
	for _, result := range page.Results {
		assert.NotEqual(t, uint(1), result.ID)
	}
}

func TestGetProfile_HidesPasswordHash(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewAuthService(repo, testAuthConfig())
	userSvc := NewUserService(repo)

	registered, err := svc.Register(context.Background(), "alice@example.com", "Alice", "Smith", "s3cretpass")
	require.NoError(t, err)

	profile, err := userSvc.GetProfile(context.Background(), registered.ID)
	require.NoError(t, err)
	assert.Empty(t, profile.PasswordHash)
	assert.Equal(t, "alice@example.com", profile.Email)
}

func paginationDefaults() pagination.Params {
	return pagination.Params{Page: 1, PageSize: 20}
}
