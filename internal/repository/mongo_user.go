package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"taskmanager-api/internal/common"
	"taskmanager-api/internal/models"
)

type userDocument struct {
	ID             primitive.ObjectID `bson:"_id,omitempty"`
	Username       string             `bson:"username"`
	Email          string             `bson:"email"`
	HashedPassword string             `bson:"hashed_password"`
	CreatedAt      time.Time          `bson:"created_at"`
}

func (d userDocument) model() models.User {
	return models.User{
		ID:             d.ID.Hex(),
		Username:       d.Username,
		Email:          d.Email,
		HashedPassword: d.HashedPassword,
		CreatedAt:      d.CreatedAt.UTC(),
	}
}

type MongoUserRepository struct {
	coll *mongo.Collection
}

func NewMongoUserRepository(db *mongo.Database) *MongoUserRepository {
	return &MongoUserRepository{coll: db.Collection(UsersCollection)}
}

func (r *MongoUserRepository) Create(ctx context.Context, u models.User) (models.User, error) {
	doc := userDocument{
		Username:       u.Username,
		Email:          u.Email,
		HashedPassword: u.HashedPassword,
		CreatedAt:      storeTime(u.CreatedAt),
	}

	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		return models.User{}, translateError(err, msgUserExists)
	}

	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return models.User{}, common.StoreUnavailable(errors.New("unexpected inserted id type"))
	}
	doc.ID = oid
	return doc.model(), nil
}

func (r *MongoUserRepository) GetByUsername(ctx context.Context, username string) (models.User, bool, error) {
	var doc userDocument
	opts := options.FindOne().SetCollation(caseInsensitive)
	err := r.coll.FindOne(ctx, bson.M{"username": username}, opts).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.User{}, false, nil
	}
	if err != nil {
		return models.User{}, false, translateError(err, "")
	}
	return doc.model(), true, nil
}

func (r *MongoUserRepository) GetByID(ctx context.Context, id string) (models.User, error) {
	oid, err := parseID(id, msgInvalidUserID)
	if err != nil {
		return models.User{}, err
	}

	var doc userDocument
	err = r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.User{}, common.NotFound(msgUserNotFound)
	}
	if err != nil {
		return models.User{}, translateError(err, "")
	}
	return doc.model(), nil
}
