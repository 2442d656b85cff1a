// Package service holds the auth and task use-cases. Store errors pass through
// unchanged; the only translation is AuthenticateUser turning bad credentials
// into an absent result.
package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"taskmanager-api/internal/common"
	"taskmanager-api/internal/models"
	"taskmanager-api/internal/repository"
	"taskmanager-api/pkg/security"
)

type AuthService interface {
	RegisterUser(ctx context.Context, req models.UserCreate) (models.User, error)
	// AuthenticateUser reports ok=false both for an unknown username and for
	// a wrong password.
	AuthenticateUser(ctx context.Context, username, password string) (models.User, bool, error)
	MintAccessToken(userID string) (string, error)
	// CurrentUser resolves a bearer token to its user. Invalid tokens and
	// subjects that no longer resolve yield common.ErrUnauthenticated.
	CurrentUser(ctx context.Context, token string) (models.User, error)
}

type AuthConfig struct {
	Secret     []byte
	Algorithm  string
	TokenTTL   time.Duration
	BcryptCost int
}

type authService struct {
	users repository.UserRepository
	cfg   AuthConfig
	now   func() time.Time

	dummyOnce sync.Once
	dummyHash string
}

func NewAuthService(users repository.UserRepository, cfg AuthConfig) AuthService {
	return &authService{users: users, cfg: cfg, now: time.Now}
}

func (s *authService) RegisterUser(ctx context.Context, req models.UserCreate) (models.User, error) {
	hashed, err := security.HashPassword(req.Password, s.cfg.BcryptCost)
	if err != nil {
		return models.User{}, err
	}

	user := models.User{
		Username:       req.Username,
		Email:          req.Email,
		HashedPassword: hashed,
		CreatedAt:      s.now().UTC(),
	}
	return s.users.Create(ctx, user)
}

// burnCompare spends one bcrypt comparison so that unknown usernames take
// as long to reject as wrong passwords.
func (s *authService) burnCompare(password string) {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = security.HashPassword("placeholder-password", s.cfg.BcryptCost)
	})
	security.VerifyPassword(password, s.dummyHash)
}

func (s *authService) AuthenticateUser(ctx context.Context, username, password string) (models.User, bool, error) {
	user, found, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return models.User{}, false, err
	}
	if !found {
		s.burnCompare(password)
		return models.User{}, false, nil
	}
	if !security.VerifyPassword(password, user.HashedPassword) {
		return models.User{}, false, nil
	}
	return user, true, nil
}

func (s *authService) MintAccessToken(userID string) (string, error) {
	return security.MintToken(userID, s.cfg.TokenTTL, s.cfg.Secret, s.cfg.Algorithm)
}

func (s *authService) CurrentUser(ctx context.Context, token string) (models.User, error) {
	claims, err := security.VerifyToken(token, s.cfg.Secret, []string{s.cfg.Algorithm})
	if err != nil {
		return models.User{}, common.Unauthenticated("Invalid authentication token")
	}

	user, err := s.users.GetByID(ctx, claims.Subject)
	switch {
	case errors.Is(err, common.ErrNotFound), errors.Is(err, common.ErrInvalidID):
		return models.User{}, common.Unauthenticated("User not found")
	case err != nil:
		return models.User{}, err
	}
	return user, nil
}
