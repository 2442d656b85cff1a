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

type taskDocument struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	OwnerID     string             `bson:"owner_id"`
	Title       string             `bson:"title"`
	Description *string            `bson:"description"`
	Status      string             `bson:"status"`
	Priority    string             `bson:"priority"`
	CreatedAt   time.Time          `bson:"created_at"`
	UpdatedAt   *time.Time         `bson:"updated_at"`
}

func newTaskDocument(t models.Task) taskDocument {
	doc := taskDocument{
		OwnerID:     t.OwnerID,
		Title:       t.Title,
		Description: t.Description,
		Status:      string(t.Status),
		Priority:    string(t.Priority),
		CreatedAt:   storeTime(t.CreatedAt),
	}
	if t.UpdatedAt != nil {
		u := storeTime(*t.UpdatedAt)
		doc.UpdatedAt = &u
	}
	return doc
}

func (d taskDocument) model() models.Task {
	t := models.Task{
		ID:          d.ID.Hex(),
		OwnerID:     d.OwnerID,
		Title:       d.Title,
		Description: d.Description,
		Status:      models.TaskStatus(d.Status),
		Priority:    models.TaskPriority(d.Priority),
		CreatedAt:   d.CreatedAt.UTC(),
	}
	if d.UpdatedAt != nil {
		u := d.UpdatedAt.UTC()
		t.UpdatedAt = &u
	}
	return t
}

type MongoTaskRepository struct {
	coll *mongo.Collection
	now  func() time.Time
}

func NewMongoTaskRepository(db *mongo.Database) *MongoTaskRepository {
	return &MongoTaskRepository{coll: db.Collection(TasksCollection), now: time.Now}
}

func taskFilterDocument(f models.TaskFilter) bson.M {
	q := bson.M{}
	if f.OwnerID != "" {
		q["owner_id"] = f.OwnerID
	}
	if f.Status != "" {
		q["status"] = string(f.Status)
	}
	if f.Priority != "" {
		q["priority"] = string(f.Priority)
	}
	return q
}

func ownedBy(oid primitive.ObjectID, ownerID string) bson.M {
	return bson.M{"_id": oid, "owner_id": ownerID}
}

func (r *MongoTaskRepository) Create(ctx context.Context, t models.Task) (models.Task, error) {
	doc := newTaskDocument(t)
	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		return models.Task{}, translateError(err, msgTaskTitleTaken)
	}

	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return models.Task{}, common.StoreUnavailable(errors.New("unexpected inserted id type"))
	}
	doc.ID = oid
	return doc.model(), nil
}

func (r *MongoTaskRepository) Get(ctx context.Context, id, ownerID string) (models.Task, error) {
	oid, err := parseID(id, "")
	if err != nil {
		return models.Task{}, err
	}

	var doc taskDocument
	err = r.coll.FindOne(ctx, ownedBy(oid, ownerID)).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Task{}, common.NotFound(msgTaskNotFound)
	}
	if err != nil {
		return models.Task{}, translateError(err, "")
	}
	return doc.model(), nil
}

func (r *MongoTaskRepository) Delete(ctx context.Context, id, ownerID string) error {
	oid, err := parseID(id, "")
	if err != nil {
		return err
	}

	res, err := r.coll.DeleteOne(ctx, ownedBy(oid, ownerID))
	if err != nil {
		return translateError(err, "")
	}
	if res.DeletedCount == 0 {
		return common.NotFound(msgTaskNotFound)
	}
	return nil
}

func (r *MongoTaskRepository) List(ctx context.Context, opts models.ListOptions, filter models.TaskFilter) ([]models.Task, error) {
	dir := 1
	if opts.SortDir == models.SortDesc {
		dir = -1
	}
	findOpts := options.Find().
		SetSort(bson.D{{Key: string(opts.Sort), Value: dir}}).
		SetSkip(opts.Skip).
		SetLimit(opts.Limit)

	cur, err := r.coll.Find(ctx, taskFilterDocument(filter), findOpts)
	if err != nil {
		return nil, translateError(err, "")
	}

	var docs []taskDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, translateError(err, "")
	}

	tasks := make([]models.Task, 0, len(docs))
	for _, d := range docs {
		tasks = append(tasks, d.model())
	}
	return tasks, nil
}

func (r *MongoTaskRepository) Count(ctx context.Context, filter models.TaskFilter) (int64, error) {
	n, err := r.coll.CountDocuments(ctx, taskFilterDocument(filter))
	if err != nil {
		return 0, translateError(err, "")
	}
	return n, nil
}

func (r *MongoTaskRepository) Replace(ctx context.Context, id, ownerID string, t models.Task) (models.Task, error) {
	oid, err := parseID(id, "")
	if err != nil {
		return models.Task{}, err
	}

	t.OwnerID = ownerID
	opts := options.FindOneAndReplace().SetReturnDocument(options.After)

	var doc taskDocument
	err = r.coll.FindOneAndReplace(ctx, ownedBy(oid, ownerID), newTaskDocument(t), opts).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Task{}, common.NotFound(msgTaskNotFound)
	}
	if err != nil {
		return models.Task{}, translateError(err, msgTaskTitleTaken)
	}
	return doc.model(), nil
}

func patchDocument(p models.TaskPatch, now time.Time) bson.M {
	set := bson.M{"updated_at": storeTime(now)}
	if p.Title.Present() {
		set["title"] = p.Title.Value
	}
	if p.Description.Set {
		if p.Description.Null {
			set["description"] = nil
		} else {
			set["description"] = p.Description.Value
		}
	}
	if p.Status.Present() {
		set["status"] = string(p.Status.Value)
	}
	if p.Priority.Present() {
		set["priority"] = string(p.Priority.Value)
	}
	return bson.M{"$set": set}
}

func (r *MongoTaskRepository) Patch(ctx context.Context, id, ownerID string, p models.TaskPatch) (models.Task, error) {
	oid, err := parseID(id, "")
	if err != nil {
		return models.Task{}, err
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc taskDocument
	err = r.coll.FindOneAndUpdate(ctx, ownedBy(oid, ownerID), patchDocument(p, r.now()), opts).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Task{}, common.NotFound(msgTaskNotFound)
	}
	if err != nil {
		return models.Task{}, translateError(err, msgTaskTitleTaken)
	}
	return doc.model(), nil
}
