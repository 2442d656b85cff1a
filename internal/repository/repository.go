// Package repository holds the user and task store adapters. Every adapter
// reports failures only as members of the common error taxonomy.
package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"taskmanager-api/internal/common"
	"taskmanager-api/internal/models"
)

const (
	UsersCollection = "users"
	TasksCollection = "tasks"
)

type UserRepository interface {
	// Create persists u and returns it with its assigned ID.
	Create(ctx context.Context, u models.User) (models.User, error)
	// GetByUsername reports found=false when no user matches; that is not an error.
	GetByUsername(ctx context.Context, username string) (models.User, bool, error)
	GetByID(ctx context.Context, id string) (models.User, error)
}

// TaskRepository is owner-scoped: a task owned by someone else behaves exactly
// like a missing one.
type TaskRepository interface {
	Create(ctx context.Context, t models.Task) (models.Task, error)
	Get(ctx context.Context, id, ownerID string) (models.Task, error)
	Delete(ctx context.Context, id, ownerID string) error
	List(ctx context.Context, opts models.ListOptions, filter models.TaskFilter) ([]models.Task, error)
	Count(ctx context.Context, filter models.TaskFilter) (int64, error)
	// Replace swaps the whole stored record; the caller carries ID and
	// CreatedAt forward.
	Replace(ctx context.Context, id, ownerID string, t models.Task) (models.Task, error)
	// Patch writes only the present fields of p and stamps updated_at.
	Patch(ctx context.Context, id, ownerID string, p models.TaskPatch) (models.Task, error)
}

const (
	msgTaskNotFound   = "task not found"
	msgUserNotFound   = "user not found"
	msgTaskTitleTaken = "title must be unique per owner"
	msgUserExists     = "username or email already exists"
	msgInvalidUserID  = "invalid user id format"
)

func parseID(id, msg string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, common.InvalidID(msg)
	}
	return oid, nil
}

// storeTime matches the millisecond precision of BSON datetimes.
func storeTime(t time.Time) time.Time {
	return t.UTC().Truncate(time.Millisecond)
}
