package security

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"taskmanager-api/internal/common"
)

var testSecret = []byte("super-secret")

func TestHashAndVerifyPassword(t *testing.T) {
	t.Parallel()

	hash, err := HashPassword("correct horse", bcrypt.MinCost)
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse", hash)

	assert.True(t, VerifyPassword("correct horse", hash))
	assert.False(t, VerifyPassword("battery staple", hash))
}

func TestHashPassword_Salted(t *testing.T) {
	t.Parallel()

	a, err := HashPassword("same-password", bcrypt.MinCost)
	require.NoError(t, err)
	b, err := HashPassword("same-password", bcrypt.MinCost)
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestVerifyPassword_MalformedHash(t *testing.T) {
	t.Parallel()

	assert.False(t, VerifyPassword("anything", ""))
	assert.False(t, VerifyPassword("anything", "not-a-bcrypt-hash"))
}

func TestHashPassword_TooLong(t *testing.T) {
	t.Parallel()

	_, err := HashPassword(strings.Repeat("a", MaxPasswordBytes+1), bcrypt.MinCost)
	assert.Error(t, err)
}

func TestMintAndVerifyToken(t *testing.T) {
	t.Parallel()

	tok, err := MintToken("652f1c2e9b1e8a0001a1b2c3", 30*time.Minute, testSecret, "HS256")
	require.NoError(t, err)

	claims, err := VerifyToken(tok, testSecret, []string{"HS256"})
	require.NoError(t, err)

	assert.Equal(t, "652f1c2e9b1e8a0001a1b2c3", claims.Subject)
	assert.False(t, claims.IssuedAt.IsZero())
	assert.Equal(t, 30*time.Minute, claims.ExpiresAt.Sub(claims.IssuedAt))
}

func TestVerifyToken_TamperedSignature(t *testing.T) {
	t.Parallel()

	tok, err := MintToken("u1", time.Hour, testSecret, "HS256")
	require.NoError(t, err)
	other, err := MintToken("u1", time.Hour, []byte("other-secret"), "HS256")
	require.NoError(t, err)

	parts := strings.Split(tok, ".")
	forged := strings.Join([]string{parts[0], parts[1], strings.Split(other, ".")[2]}, ".")

	_, err = VerifyToken(forged, testSecret, []string{"HS256"})
	assert.True(t, errors.Is(err, common.ErrTokenInvalid))
}

func TestVerifyToken_Expired(t *testing.T) {
	t.Parallel()

	tok, err := MintToken("u1", -time.Second, testSecret, "HS256")
	require.NoError(t, err)

	_, err = VerifyToken(tok, testSecret, []string{"HS256"})
	assert.True(t, errors.Is(err, common.ErrTokenInvalid))
}

func TestVerifyToken_Malformed(t *testing.T) {
	t.Parallel()

	_, err := VerifyToken("not.a.jwt", testSecret, []string{"HS256"})
	assert.True(t, errors.Is(err, common.ErrTokenInvalid))
}

func TestVerifyToken_AlgorithmNotAllowed(t *testing.T) {
	t.Parallel()

	tok, err := MintToken("u1", time.Hour, testSecret, "HS512")
	require.NoError(t, err)

	_, err = VerifyToken(tok, testSecret, []string{"HS256"})
	assert.True(t, errors.Is(err, common.ErrTokenInvalid))
}

func TestMintToken_UnsupportedAlgorithm(t *testing.T) {
	t.Parallel()

	_, err := MintToken("u1", time.Hour, testSecret, "RS256")
	assert.Error(t, err)
}
