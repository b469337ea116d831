package auth

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/equitas/internal/common"
	"github.com/ternarybob/equitas/internal/interfaces"
	"github.com/ternarybob/equitas/internal/models"
	"github.com/ternarybob/equitas/internal/storage/badger"
)

func newTestService(t *testing.T, config common.AuthConfig) (*Service, interfaces.UserStorage) {
	t.Helper()
	manager, err := badger.NewManager(arbor.NewLogger(), &common.BadgerConfig{Path: t.TempDir()})
	require.NoError(t, err)
	t.Cleanup(func() { manager.Close() })

	if config.JWTSecret == "" {
		config.JWTSecret = "test-secret"
	}
	return NewService(manager.UserStorage(), config, arbor.NewLogger()), manager.UserStorage()
}

func TestSignupLoginVerify(t *testing.T) {
	service, _ := newTestService(t, common.AuthConfig{})
	ctx := context.Background()

	token, user, err := service.Signup(ctx, "Alice", "secret123")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, "alice", user.UserName)
	assert.Equal(t, models.RoleUser, user.Role)
	assert.NotEqual(t, "secret123", user.PasswordHash)

	identity, err := service.VerifyToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, identity.UserID)
	assert.Equal(t, "alice", identity.UserName)
	assert.Equal(t, models.RoleUser, identity.Role)

	loginToken, loginUser, err := service.Login(ctx, "ALICE", "secret123")
	require.NoError(t, err)
	assert.Equal(t, user.ID, loginUser.ID)
	assert.NotEmpty(t, loginToken)
}

func TestSignup_Duplicate(t *testing.T) {
	service, _ := newTestService(t, common.AuthConfig{})
	ctx := context.Background()

	_, _, err := service.Signup(ctx, "bob", "secret123")
	require.NoError(t, err)

	_, _, err = service.Signup(ctx, "Bob", "another1")
	assert.ErrorIs(t, err, interfaces.ErrUserExists)
}

func TestSignup_Validation(t *testing.T) {
	service, _ := newTestService(t, common.AuthConfig{})

	tests := []struct {
		name     string
		userName string
		password string
		want     string
	}{
		{"missing user name", "", "secret123", "userName is required"},
		{"short user name", "ab", "secret123", "userName must be at least 3 characters"},
		{"long user name", strings.Repeat("x", 51), "secret123", "userName must be at most 50 characters"},
		{"short password", "carol", "12345", "password must be at least 6 characters"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := service.Signup(context.Background(), tt.userName, tt.password)

			var validationErr *ValidationError
			require.ErrorAs(t, err, &validationErr)
			assert.Equal(t, tt.want, validationErr.Error())
		})
	}
}

func TestLogin_InvalidCredentials(t *testing.T) {
	service, _ := newTestService(t, common.AuthConfig{})
	ctx := context.Background()

	_, _, err := service.Signup(ctx, "dave", "secret123")
	require.NoError(t, err)

	_, _, err = service.Login(ctx, "dave", "wrong-password")
	assert.ErrorIs(t, err, interfaces.ErrInvalidCredentials)

	_, _, err = service.Login(ctx, "nobody", "secret123")
	assert.ErrorIs(t, err, interfaces.ErrInvalidCredentials)
}

func TestVerifyToken_Rejects(t *testing.T) {
	service, _ := newTestService(t, common.AuthConfig{JWTSecret: "right-secret"})
	other, _ := newTestService(t, common.AuthConfig{JWTSecret: "wrong-secret"})

	user := &models.User{ID: "usr_1", UserName: "erin", Role: models.RoleUser}

	forged, err := other.IssueToken(user)
	require.NoError(t, err)
	_, err = service.VerifyToken(forged)
	assert.ErrorIs(t, err, ErrInvalidToken)

	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "usr_1",
		"iss": tokenIssuer,
		"exp": time.Now().Add(-time.Hour).Unix(),
	})
	expiredString, err := expired.SignedString([]byte("right-secret"))
	require.NoError(t, err)
	_, err = service.VerifyToken(expiredString)
	assert.ErrorIs(t, err, ErrInvalidToken)

	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"sub": "usr_1",
		"iss": tokenIssuer,
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	noneString, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = service.VerifyToken(noneString)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = service.VerifyToken("")
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = service.VerifyToken("not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestEnsureAdmin(t *testing.T) {
	service, users := newTestService(t, common.AuthConfig{AdminUsername: "admin", AdminPassword: "admin-pass"})
	ctx := context.Background()

	require.NoError(t, service.EnsureAdmin(ctx))
	require.NoError(t, service.EnsureAdmin(ctx), "second call is a no-op")

	count, err := users.CountUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	_, admin, err := service.Login(ctx, "admin", "admin-pass")
	require.NoError(t, err)
	assert.True(t, admin.IsAdmin())
}

func TestEnsureAdmin_NotConfigured(t *testing.T) {
	service, users := newTestService(t, common.AuthConfig{})

	require.NoError(t, service.EnsureAdmin(context.Background()))

	count, err := users.CountUsers(context.Background())
	require.NoError(t, err)
	assert.Zero(t, count)
}
