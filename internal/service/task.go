package service

import (
	"context"
	"time"

	"taskmanager-api/internal/models"
	"taskmanager-api/internal/repository"
)

type TaskService interface {
	CreateTask(ctx context.Context, ownerID string, req models.TaskCreate) (models.Task, error)
	GetTask(ctx context.Context, id, ownerID string) (models.Task, error)
	// ListTasks runs list and count as two separate store calls; under
	// concurrent writes the total may not match the page.
	ListTasks(ctx context.Context, ownerID string, q models.TaskQuery) (models.TaskPage, error)
	DeleteTask(ctx context.Context, id, ownerID string) error
	// ReplaceTask reads the current record to keep its ID and CreatedAt, then
	// replaces it. The read and the write are not atomic.
	ReplaceTask(ctx context.Context, id, ownerID string, req models.TaskReplace) (models.Task, error)
	PatchTask(ctx context.Context, id, ownerID string, p models.TaskPatch) (models.Task, error)
}

// TaskMiddleware decorates a TaskService.
type TaskMiddleware func(TaskService) TaskService

type taskService struct {
	tasks repository.TaskRepository
	now   func() time.Time
}

func NewTaskService(tasks repository.TaskRepository, mws ...TaskMiddleware) TaskService {
	var svc TaskService = &taskService{tasks: tasks, now: time.Now}
	for _, mw := range mws {
		svc = mw(svc)
	}
	return svc
}

func withDefaults(status models.TaskStatus, priority models.TaskPriority) (models.TaskStatus, models.TaskPriority) {
	if status == "" {
		status = models.StatusNew
	}
	if priority == "" {
		priority = models.PriorityMedium
	}
	return status, priority
}

func (s *taskService) CreateTask(ctx context.Context, ownerID string, req models.TaskCreate) (models.Task, error) {
	status, priority := withDefaults(req.Status, req.Priority)
	task := models.Task{
		OwnerID:     ownerID,
		Title:       req.Title,
		Description: req.Description,
		Status:      status,
		Priority:    priority,
		CreatedAt:   s.now().UTC(),
	}
	return s.tasks.Create(ctx, task)
}

func (s *taskService) GetTask(ctx context.Context, id, ownerID string) (models.Task, error) {
	return s.tasks.Get(ctx, id, ownerID)
}

func (s *taskService) ListTasks(ctx context.Context, ownerID string, q models.TaskQuery) (models.TaskPage, error) {
	filter := models.TaskFilter{OwnerID: ownerID, Status: q.Status, Priority: q.Priority}
	opts := models.ListOptions{Limit: q.Limit, Skip: q.Skip, Sort: q.Sort, SortDir: q.SortDir}

	items, err := s.tasks.List(ctx, opts, filter)
	if err != nil {
		return models.TaskPage{}, err
	}
	if items == nil {
		items = []models.Task{}
	}
	total, err := s.tasks.Count(ctx, filter)
	if err != nil {
		return models.TaskPage{}, err
	}

	return models.TaskPage{
		Items: items,
		Meta: models.PageMeta{
			Total:   total,
			Limit:   q.Limit,
			Skip:    q.Skip,
			Sort:    q.Sort,
			SortDir: q.SortDir,
		},
	}, nil
}

func (s *taskService) DeleteTask(ctx context.Context, id, ownerID string) error {
	return s.tasks.Delete(ctx, id, ownerID)
}

func (s *taskService) ReplaceTask(ctx context.Context, id, ownerID string, req models.TaskReplace) (models.Task, error) {
	existing, err := s.tasks.Get(ctx, id, ownerID)
	if err != nil {
		return models.Task{}, err
	}

	status, priority := withDefaults(req.Status, req.Priority)
	now := s.now().UTC()
	replacement := models.Task{
		ID:          existing.ID,
		OwnerID:     ownerID,
		Title:       req.Title,
		Description: req.Description,
		Status:      status,
		Priority:    priority,
		CreatedAt:   existing.CreatedAt,
		UpdatedAt:   &now,
	}
	return s.tasks.Replace(ctx, id, ownerID, replacement)
}

func (s *taskService) PatchTask(ctx context.Context, id, ownerID string, p models.TaskPatch) (models.Task, error) {
	return s.tasks.Patch(ctx, id, ownerID, p)
}
