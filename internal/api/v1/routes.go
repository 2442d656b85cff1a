package v1

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"taskmanager-api/internal/api/v1/handlers"
	"taskmanager-api/internal/config"
	"taskmanager-api/internal/middleware"
)

// NewApp builds the fiber application with the global middleware stack and
// every route registered.
func NewApp(deps *config.Dependencies) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "taskmanager-api",
		ErrorHandler: handlers.ErrorHandler,
	})

	app.Use(requestid.New(requestid.Config{Generator: uuid.NewString}))
	app.Use(middleware.ErrorHandler())
	app.Use(cors.New(cors.Config{
		AllowOrigins: deps.Config.CORSOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: strings.Join([]string{
			fiber.MethodGet, fiber.MethodPost, fiber.MethodPut,
			fiber.MethodPatch, fiber.MethodDelete, fiber.MethodOptions,
		}, ","),
		ExposeHeaders: "Location",
	}))
	if deps.Config.RateLimitMax > 0 {
		var storage fiber.Storage
		if deps.Redis != nil {
			storage = middleware.NewRedisStorage(deps.Redis, "taskmanager:limiter:")
		}
		app.Use(middleware.RateLimiter(deps.Config.RateLimitMax, deps.Config.RateLimitWindow, storage))
	}

	RegisterRoutes(app, deps)
	return app
}

func RegisterRoutes(app *fiber.App, deps *config.Dependencies) {
	app.Get("/", handlers.Root(deps.Config.Mode))
	app.Get("/health", handlers.Health(deps.Ping))
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{})))

	api := app.Group("/api/v1")
	requireUser := middleware.UseToken(deps.Auth)

	// Auth
	auth := handlers.NewAuthHandler(deps.Auth, deps.Validate)
	authRoutes := api.Group("/auth")
	authRoutes.Post("/register", auth.Register)
	authRoutes.Post("/login", auth.Login)
	authRoutes.Get("/me", requireUser, handlers.Me)

	// Task
	tasks := handlers.NewTaskHandler(deps.Tasks, deps.Hub, deps.Validate)
	taskRoutes := api.Group("/tasks", requireUser)
	taskRoutes.Post("/", tasks.CreateTask)
	taskRoutes.Get("/", tasks.ListTasks)
	taskRoutes.Get("/:id", tasks.GetTask)
	taskRoutes.Put("/:id", tasks.ReplaceTask)
	taskRoutes.Patch("/:id", tasks.PatchTask)
	taskRoutes.Delete("/:id", tasks.DeleteTask)

	// Task events
	api.Get("/ws/tasks", handlers.RequireUpgrade, requireUser, handlers.StreamTasks(deps.Hub))
}
