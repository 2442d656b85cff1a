package repository

import (
	"context"
	"strings"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"taskmanager-api/internal/common"
	"taskmanager-api/internal/models"
)

// MemoryUserRepository keeps users in process memory with the same
// uniqueness and lookup rules as the mongo adapter.
type MemoryUserRepository struct {
	mu    sync.RWMutex
	users []models.User
}

func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{}
}

func (r *MemoryUserRepository) Create(ctx context.Context, u models.User) (models.User, error) {
	if err := ctx.Err(); err != nil {
		return models.User{}, common.StoreUnavailable(err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.users {
		if strings.EqualFold(existing.Username, u.Username) || strings.EqualFold(existing.Email, u.Email) {
			return models.User{}, common.UniqueViolation(msgUserExists)
		}
	}

	u.ID = primitive.NewObjectID().Hex()
	u.CreatedAt = storeTime(u.CreatedAt)
	r.users = append(r.users, u)
	return u, nil
}

func (r *MemoryUserRepository) GetByUsername(ctx context.Context, username string) (models.User, bool, error) {
	if err := ctx.Err(); err != nil {
		return models.User{}, false, common.StoreUnavailable(err)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if strings.EqualFold(u.Username, username) {
			return u, true, nil
		}
	}
	return models.User{}, false, nil
}

func (r *MemoryUserRepository) GetByID(ctx context.Context, id string) (models.User, error) {
	oid, err := parseID(id, msgInvalidUserID)
	if err != nil {
		return models.User{}, err
	}
	id = oid.Hex()
	if err := ctx.Err(); err != nil {
		return models.User{}, common.StoreUnavailable(err)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if u.ID == id {
			return u, nil
		}
	}
	return models.User{}, common.NotFound(msgUserNotFound)
}
