package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"

	"taskmanager-api/internal/common"
	"taskmanager-api/internal/models"
	"taskmanager-api/internal/repository"
	"taskmanager-api/pkg/security"
)

var testSecret = []byte("service-test-secret")

func newAuth(t *testing.T) (AuthService, *repository.MemoryUserRepository) {
	t.Helper()
	users := repository.NewMemoryUserRepository()
	svc := NewAuthService(users, AuthConfig{
		Secret:     testSecret,
		Algorithm:  "HS256",
		TokenTTL:   30 * time.Minute,
		BcryptCost: bcrypt.MinCost,
	})
	return svc, users
}

func register(t *testing.T, svc AuthService, username string) models.User {
	t.Helper()
	user, err := svc.RegisterUser(context.Background(), models.UserCreate{
		Username: username,
		Email:    username + "@example.com",
		Password: "correct-horse",
	})
	require.NoError(t, err)
	return user
}

func TestRegisterUser_HashesPassword(t *testing.T) {
	svc, _ := newAuth(t)

	user := register(t, svc, "alice")

	assert.NotEmpty(t, user.ID)
	assert.NotEqual(t, "correct-horse", user.HashedPassword)
	assert.True(t, security.VerifyPassword("correct-horse", user.HashedPassword))
	assert.False(t, user.CreatedAt.IsZero())
}

func TestRegisterUser_Duplicate(t *testing.T) {
	svc, _ := newAuth(t)
	register(t, svc, "alice")

	_, err := svc.RegisterUser(context.Background(), models.UserCreate{
		Username: "alice",
		Email:    "other@example.com",
		Password: "correct-horse",
	})
	assert.ErrorIs(t, err, common.ErrUniqueViolation)
}

func TestAuthenticateUser(t *testing.T) {
	svc, _ := newAuth(t)
	registered := register(t, svc, "alice")
	ctx := context.Background()

	user, ok, err := svc.AuthenticateUser(ctx, "alice", "correct-horse")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, registered.ID, user.ID)

	_, ok, err = svc.AuthenticateUser(ctx, "alice", "wrong-password")
	require.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = svc.AuthenticateUser(ctx, "nobody", "correct-horse")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestAuthenticateUser_StoreFailure(t *testing.T) {
	svc, _ := newAuth(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, ok, err := svc.AuthenticateUser(ctx, "alice", "correct-horse")
	assert.False(t, ok)
	assert.ErrorIs(t, err, common.ErrStoreUnavailable)
}

func TestCurrentUser_RoundTrip(t *testing.T) {
	svc, _ := newAuth(t)
	registered := register(t, svc, "alice")

	token, err := svc.MintAccessToken(registered.ID)
	require.NoError(t, err)

	user, err := svc.CurrentUser(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, registered.ID, user.ID)
	assert.Equal(t, "alice", user.Username)
}

func TestCurrentUser_Rejects(t *testing.T) {
	svc, _ := newAuth(t)
	registered := register(t, svc, "alice")

	foreign, err := security.MintToken(registered.ID, time.Minute, []byte("another-secret"), "HS256")
	require.NoError(t, err)
	expired, err := security.MintToken(registered.ID, -time.Minute, testSecret, "HS256")
	require.NoError(t, err)
	unknown, err := security.MintToken(primitive.NewObjectID().Hex(), time.Minute, testSecret, "HS256")
	require.NoError(t, err)
	malformedSub, err := security.MintToken("not-an-object-id", time.Minute, testSecret, "HS256")
	require.NoError(t, err)
	otherAlg, err := security.MintToken(registered.ID, time.Minute, testSecret, "HS512")
	require.NoError(t, err)

	cases := map[string]string{
		"garbage":       "not.a.token",
		"wrong secret":  foreign,
		"expired":       expired,
		"unknown user":  unknown,
		"malformed sub": malformedSub,
		"other alg":     otherAlg,
	}
	for name, token := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.CurrentUser(context.Background(), token)
			assert.ErrorIs(t, err, common.ErrUnauthenticated)
		})
	}
}
