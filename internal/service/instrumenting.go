package service

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"taskmanager-api/internal/common"
	"taskmanager-api/internal/models"
)

type TaskMetrics struct {
	requests *prometheus.CounterVec
	latency  *prometheus.HistogramVec
}

// NewTaskMetrics registers the task use-case collectors with reg.
func NewTaskMetrics(reg prometheus.Registerer) *TaskMetrics {
	m := &TaskMetrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "taskmanager",
			Subsystem: "task_service",
			Name:      "requests_total",
			Help:      "Number of task use-case calls by method and outcome.",
		}, []string{"method", "outcome"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "taskmanager",
			Subsystem: "task_service",
			Name:      "request_duration_seconds",
			Help:      "Duration of task use-case calls in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
	}
	reg.MustRegister(m.requests, m.latency)
	return m
}

func outcome(err error) string {
	switch kind := common.KindOf(err); {
	case err == nil:
		return "ok"
	case errors.Is(kind, common.ErrNotFound):
		return "not_found"
	case errors.Is(kind, common.ErrUniqueViolation):
		return "unique_violation"
	case errors.Is(kind, common.ErrInvalidID):
		return "invalid_id"
	case errors.Is(kind, common.ErrStoreUnavailable):
		return "store_unavailable"
	default:
		return "error"
	}
}

func (m *TaskMetrics) observe(method string, begin time.Time, err error) {
	m.requests.WithLabelValues(method, outcome(err)).Inc()
	m.latency.WithLabelValues(method).Observe(time.Since(begin).Seconds())
}

// InstrumentingMiddleware records call counts and latency for every method.
func InstrumentingMiddleware(m *TaskMetrics) TaskMiddleware {
	return func(next TaskService) TaskService {
		return instrumentingMiddleware{m: m, next: next}
	}
}

type instrumentingMiddleware struct {
	m    *TaskMetrics
	next TaskService
}

func (mw instrumentingMiddleware) CreateTask(ctx context.Context, ownerID string, req models.TaskCreate) (t models.Task, err error) {
	defer func(begin time.Time) { mw.m.observe("create_task", begin, err) }(time.Now())
	return mw.next.CreateTask(ctx, ownerID, req)
}

func (mw instrumentingMiddleware) GetTask(ctx context.Context, id, ownerID string) (t models.Task, err error) {
	defer func(begin time.Time) { mw.m.observe("get_task", begin, err) }(time.Now())
	return mw.next.GetTask(ctx, id, ownerID)
}

func (mw instrumentingMiddleware) ListTasks(ctx context.Context, ownerID string, q models.TaskQuery) (p models.TaskPage, err error) {
	defer func(begin time.Time) { mw.m.observe("list_tasks", begin, err) }(time.Now())
	return mw.next.ListTasks(ctx, ownerID, q)
}

func (mw instrumentingMiddleware) DeleteTask(ctx context.Context, id, ownerID string) (err error) {
	defer func(begin time.Time) { mw.m.observe("delete_task", begin, err) }(time.Now())
	return mw.next.DeleteTask(ctx, id, ownerID)
}

func (mw instrumentingMiddleware) ReplaceTask(ctx context.Context, id, ownerID string, req models.TaskReplace) (t models.Task, err error) {
	defer func(begin time.Time) { mw.m.observe("replace_task", begin, err) }(time.Now())
	return mw.next.ReplaceTask(ctx, id, ownerID, req)
}

func (mw instrumentingMiddleware) PatchTask(ctx context.Context, id, ownerID string, p models.TaskPatch) (t models.Task, err error) {
	defer func(begin time.Time) { mw.m.observe("patch_task", begin, err) }(time.Now())
	return mw.next.PatchTask(ctx, id, ownerID, p)
}
