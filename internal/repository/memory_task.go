package repository

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"taskmanager-api/internal/common"
	"taskmanager-api/internal/models"
)

// MemoryTaskRepository keeps tasks in process memory. Ordering, uniqueness
// and ownership follow the mongo adapter, including null updated_at values
// sorting first in ascending order.
type MemoryTaskRepository struct {
	mu    sync.RWMutex
	tasks []models.Task
	now   func() time.Time
}

func NewMemoryTaskRepository() *MemoryTaskRepository {
	return &MemoryTaskRepository{now: time.Now}
}

// indexOf expects id in the lowercase hex form produced by parseID.
func (r *MemoryTaskRepository) indexOf(id, ownerID string) int {
	for i, t := range r.tasks {
		if t.ID == id && t.OwnerID == ownerID {
			return i
		}
	}
	return -1
}

func (r *MemoryTaskRepository) titleTaken(ownerID, title, exceptID string) bool {
	for _, t := range r.tasks {
		if t.ID != exceptID && t.OwnerID == ownerID && strings.EqualFold(t.Title, title) {
			return true
		}
	}
	return false
}

func matches(t models.Task, f models.TaskFilter) bool {
	if f.OwnerID != "" && t.OwnerID != f.OwnerID {
		return false
	}
	if f.Status != "" && t.Status != f.Status {
		return false
	}
	if f.Priority != "" && t.Priority != f.Priority {
		return false
	}
	return true
}

func (r *MemoryTaskRepository) Create(ctx context.Context, t models.Task) (models.Task, error) {
	if err := ctx.Err(); err != nil {
		return models.Task{}, common.StoreUnavailable(err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.titleTaken(t.OwnerID, t.Title, "") {
		return models.Task{}, common.UniqueViolation(msgTaskTitleTaken)
	}

	t = t.Clone()
	t.ID = primitive.NewObjectID().Hex()
	t.CreatedAt = storeTime(t.CreatedAt)
	if t.UpdatedAt != nil {
		u := storeTime(*t.UpdatedAt)
		t.UpdatedAt = &u
	}
	r.tasks = append(r.tasks, t)
	return t.Clone(), nil
}

func (r *MemoryTaskRepository) Get(ctx context.Context, id, ownerID string) (models.Task, error) {
	oid, err := parseID(id, "")
	if err != nil {
		return models.Task{}, err
	}
	id = oid.Hex()
	if err := ctx.Err(); err != nil {
		return models.Task{}, common.StoreUnavailable(err)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	i := r.indexOf(id, ownerID)
	if i < 0 {
		return models.Task{}, common.NotFound(msgTaskNotFound)
	}
	return r.tasks[i].Clone(), nil
}

func (r *MemoryTaskRepository) Delete(ctx context.Context, id, ownerID string) error {
	oid, err := parseID(id, "")
	if err != nil {
		return err
	}
	id = oid.Hex()
	if err := ctx.Err(); err != nil {
		return common.StoreUnavailable(err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(id, ownerID)
	if i < 0 {
		return common.NotFound(msgTaskNotFound)
	}
	r.tasks = slices.Delete(r.tasks, i, i+1)
	return nil
}

func compareTimes(a, b *time.Time) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	default:
		return a.Compare(*b)
	}
}

func (r *MemoryTaskRepository) List(ctx context.Context, opts models.ListOptions, filter models.TaskFilter) ([]models.Task, error) {
	if err := ctx.Err(); err != nil {
		return nil, common.StoreUnavailable(err)
	}

	r.mu.RLock()
	matched := make([]models.Task, 0)
	for _, t := range r.tasks {
		if matches(t, filter) {
			matched = append(matched, t.Clone())
		}
	}
	r.mu.RUnlock()

	slices.SortStableFunc(matched, func(a, b models.Task) int {
		var c int
		if opts.Sort == models.SortUpdatedAt {
			c = compareTimes(a.UpdatedAt, b.UpdatedAt)
		} else {
			c = a.CreatedAt.Compare(b.CreatedAt)
		}
		if opts.SortDir == models.SortDesc {
			return -c
		}
		return c
	})

	start := min(max(opts.Skip, 0), int64(len(matched)))
	end := int64(len(matched))
	if opts.Limit > 0 {
		end = min(start+opts.Limit, end)
	}
	return matched[start:end], nil
}

func (r *MemoryTaskRepository) Count(ctx context.Context, filter models.TaskFilter) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, common.StoreUnavailable(err)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	var n int64
	for _, t := range r.tasks {
		if matches(t, filter) {
			n++
		}
	}
	return n, nil
}

func (r *MemoryTaskRepository) Replace(ctx context.Context, id, ownerID string, t models.Task) (models.Task, error) {
	oid, err := parseID(id, "")
	if err != nil {
		return models.Task{}, err
	}
	id = oid.Hex()
	if err := ctx.Err(); err != nil {
		return models.Task{}, common.StoreUnavailable(err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(id, ownerID)
	if i < 0 {
		return models.Task{}, common.NotFound(msgTaskNotFound)
	}
	if r.titleTaken(ownerID, t.Title, id) {
		return models.Task{}, common.UniqueViolation(msgTaskTitleTaken)
	}

	t = t.Clone()
	t.ID = id
	t.OwnerID = ownerID
	t.CreatedAt = storeTime(t.CreatedAt)
	if t.UpdatedAt != nil {
		u := storeTime(*t.UpdatedAt)
		t.UpdatedAt = &u
	}
	r.tasks[i] = t
	return t.Clone(), nil
}

func (r *MemoryTaskRepository) Patch(ctx context.Context, id, ownerID string, p models.TaskPatch) (models.Task, error) {
	oid, err := parseID(id, "")
	if err != nil {
		return models.Task{}, err
	}
	id = oid.Hex()
	if err := ctx.Err(); err != nil {
		return models.Task{}, common.StoreUnavailable(err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(id, ownerID)
	if i < 0 {
		return models.Task{}, common.NotFound(msgTaskNotFound)
	}
	if p.Title.Present() && r.titleTaken(ownerID, p.Title.Value, id) {
		return models.Task{}, common.UniqueViolation(msgTaskTitleTaken)
	}

	t := r.tasks[i].Clone()
	if p.Title.Present() {
		t.Title = p.Title.Value
	}
	if p.Description.Set {
		if p.Description.Null {
			t.Description = nil
		} else {
			d := p.Description.Value
			t.Description = &d
		}
	}
	if p.Status.Present() {
		t.Status = p.Status.Value
	}
	if p.Priority.Present() {
		t.Priority = p.Priority.Value
	}
	now := storeTime(r.now())
	t.UpdatedAt = &now

	r.tasks[i] = t
	return t.Clone(), nil
}
