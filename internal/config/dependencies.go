package config

import (
	"context"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"taskmanager-api/configs"
	"taskmanager-api/internal/models"
	"taskmanager-api/internal/repository"
	"taskmanager-api/internal/service"
	"taskmanager-api/internal/websocket"
	"taskmanager-api/pkg/security"
)

// Dependencies is everything the HTTP layer needs, built once at startup.
type Dependencies struct {
	Config   configs.Config
	Auth     service.AuthService
	Tasks    service.TaskService
	Hub      *websocket.Hub
	Validate *validator.Validate
	Registry *prometheus.Registry
	// Redis is nil when no REDIS_HOST is configured.
	Redis *redis.Client
	// Ping checks the backing store for /health.
	Ping func(ctx context.Context) error
}

func NewDependencies(
	cfg configs.Config,
	users repository.UserRepository,
	tasks repository.TaskRepository,
	ping func(ctx context.Context) error,
	rdb *redis.Client,
) *Dependencies {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	if ping == nil {
		ping = func(context.Context) error { return nil }
	}

	auth := service.NewAuthService(users, service.AuthConfig{
		Secret:     []byte(cfg.JWTSecretKey),
		Algorithm:  cfg.JWTAlgorithm,
		TokenTTL:   cfg.AccessTokenTTL,
		BcryptCost: cfg.BcryptCost,
	})
	metrics := service.NewTaskMetrics(registry)

	return &Dependencies{
		Config:   cfg,
		Auth:     auth,
		Tasks:    service.NewTaskService(tasks, service.InstrumentingMiddleware(metrics)),
		Hub:      websocket.NewHub(),
		Validate: NewValidator(),
		Registry: registry,
		Redis:    rdb,
		Ping:     ping,
	}
}

// optionalValue exposes a present Optional as a pointer to its value so the
// usual tags apply to it; absent and null fields validate as nil.
func optionalValue(field reflect.Value) interface{} {
	switch o := field.Interface().(type) {
	case models.Optional[string]:
		if o.Present() {
			return &o.Value
		}
	case models.Optional[models.TaskStatus]:
		if o.Present() {
			return &o.Value
		}
	case models.Optional[models.TaskPriority]:
		if o.Present() {
			return &o.Value
		}
	}
	return nil
}

// fieldName reports fields by their wire name in validation errors.
func fieldName(fld reflect.StructField) string {
	for _, tag := range []string{"json", "query", "form"} {
		name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name != "" {
			return name
		}
	}
	return fld.Name
}

// NewValidator returns a validator that knows the task enums, the bcrypt
// input limit and the Optional patch fields.
func NewValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(fieldName)
	v.RegisterCustomTypeFunc(optionalValue,
		models.Optional[string]{},
		models.Optional[models.TaskStatus]{},
		models.Optional[models.TaskPriority]{},
	)
	_ = v.RegisterValidation("task_status", func(fl validator.FieldLevel) bool {
		return models.TaskStatus(fl.Field().String()).Valid()
	})
	_ = v.RegisterValidation("task_priority", func(fl validator.FieldLevel) bool {
		return models.TaskPriority(fl.Field().String()).Valid()
	})
	_ = v.RegisterValidation("bcrypt_len", func(fl validator.FieldLevel) bool {
		return len(fl.Field().String()) <= security.MaxPasswordBytes
	})
	return v
}
