// Package security holds the password and bearer token codecs.
package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"taskmanager-api/internal/common"
)

// Claims is the verified content of an access token.
type Claims struct {
	Subject   string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

func hmacMethod(algorithm string) (*jwt.SigningMethodHMAC, error) {
	m, ok := jwt.GetSigningMethod(algorithm).(*jwt.SigningMethodHMAC)
	if !ok {
		return nil, fmt.Errorf("unsupported signing algorithm %q", algorithm)
	}
	return m, nil
}

// MintToken signs a token for subject that expires ttl from now. iat and exp
// are encoded as seconds since the epoch.
func MintToken(subject string, ttl time.Duration, secret []byte, algorithm string) (string, error) {
	method, err := hmacMethod(algorithm)
	if err != nil {
		return "", err
	}

	now := jwt.TimeFunc()
	token := jwt.NewWithClaims(method, jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	})
	return token.SignedString(secret)
}

// VerifyToken checks signature, algorithm and expiry of token and returns its
// claims. Every failure is reported as common.ErrTokenInvalid.
func VerifyToken(token string, secret []byte, algorithms []string) (Claims, error) {
	var rc jwt.RegisteredClaims
	parsed, err := jwt.ParseWithClaims(token, &rc, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return secret, nil
	}, jwt.WithValidMethods(algorithms))
	if err != nil {
		return Claims{}, common.TokenInvalid(err)
	}
	if !parsed.Valid {
		return Claims{}, common.TokenInvalid(nil)
	}
	if rc.Subject == "" {
		return Claims{}, common.TokenInvalid(errors.New("missing sub claim"))
	}
	if rc.ExpiresAt == nil {
		return Claims{}, common.TokenInvalid(errors.New("missing exp claim"))
	}

	claims := Claims{
		Subject:   rc.Subject,
		ExpiresAt: rc.ExpiresAt.Time,
	}
	if rc.IssuedAt != nil {
		claims.IssuedAt = rc.IssuedAt.Time
	}
	return claims, nil
}
