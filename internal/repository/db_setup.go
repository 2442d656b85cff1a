package repository

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// caseInsensitive is the collation of every unique index; queries that must
// use those indexes pass the same collation.
var caseInsensitive = &options.Collation{Locale: "en", Strength: 2}

func userIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "username", Value: 1}},
			Options: options.Index().SetName("uniq_username").SetUnique(true).SetCollation(caseInsensitive),
		},
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetName("uniq_email").SetUnique(true).SetCollation(caseInsensitive),
		},
		{
			Keys:    bson.D{{Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_users_created_at"),
		},
	}
}

func taskIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "owner_id", Value: 1}, {Key: "title", Value: 1}},
			Options: options.Index().SetName("uniq_owner_title").SetUnique(true).SetCollation(caseInsensitive),
		},
		{
			Keys:    bson.D{{Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_tasks_created_at"),
		},
		{
			Keys:    bson.D{{Key: "updated_at", Value: -1}},
			Options: options.Index().SetName("idx_tasks_updated_at"),
		},
		{
			Keys:    bson.D{{Key: "status", Value: 1}},
			Options: options.Index().SetName("idx_tasks_status"),
		},
		{
			Keys:    bson.D{{Key: "priority", Value: 1}},
			Options: options.Index().SetName("idx_tasks_priority"),
		},
	}
}

// EnsureIndexes creates the users and tasks indexes. It is idempotent.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	if _, err := db.Collection(UsersCollection).Indexes().CreateMany(ctx, userIndexes()); err != nil {
		return fmt.Errorf("creating %s indexes: %w", UsersCollection, err)
	}
	if _, err := db.Collection(TasksCollection).Indexes().CreateMany(ctx, taskIndexes()); err != nil {
		return fmt.Errorf("creating %s indexes: %w", TasksCollection, err)
	}
	return nil
}

// DropCollections removes both collections and their indexes.
func DropCollections(ctx context.Context, db *mongo.Database) error {
	for _, name := range []string{TasksCollection, UsersCollection} {
		if err := db.Collection(name).Drop(ctx); err != nil {
			return fmt.Errorf("dropping %s: %w", name, err)
		}
	}
	return nil
}
