package api

import (
	"context"
	"fmt"
	"time"

	"github.com/example/task-todo-api/config"
	"github.com/example/task-todo-api/middleware/ratelimit"
	"github.com/example/task-todo-api/modules/auth"
	"github.com/example/task-todo-api/modules/task"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/types"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

// HealthChecker is a module whose health is reported on /health.
type HealthChecker interface {
	Name() string
	Health(ctx context.Context) mono.HealthStatus
}

// APIModule is the HTTP API module.
type APIModule struct {
	cfg         config.HTTPConfig
	limiter     *ratelimit.Middleware
	checks      []HealthChecker
	logger      types.Logger
	app         *fiber.App
	taskAdapter task.TaskPort
	authAdapter auth.AuthPort
}

// Compile-time interface checks.
var _ mono.Module = (*APIModule)(nil)
var _ mono.DependentModule = (*APIModule)(nil)
var _ mono.HealthCheckableModule = (*APIModule)(nil)

// NewModule creates a new APIModule. limiter may be nil to serve login
// without throttling.
func NewModule(cfg config.HTTPConfig, limiter *ratelimit.Middleware, logger types.Logger, checks ...HealthChecker) *APIModule {
	return &APIModule{
		cfg:     cfg,
		limiter: limiter,
		checks:  checks,
		logger:  logger.WithModule("api"),
	}
}

// Name returns the module name.
func (m *APIModule) Name() string {
	return "api"
}

// Dependencies returns the list of module dependencies.
func (m *APIModule) Dependencies() []string {
	return []string{"task", "auth"}
}

// SetDependencyServiceContainer receives service containers from dependencies.
func (m *APIModule) SetDependencyServiceContainer(dependency string, container mono.ServiceContainer) {
	switch dependency {
	case "task":
		m.taskAdapter = task.NewTaskAdapter(container)
	case "auth":
		m.authAdapter = auth.NewAuthAdapter(container)
	}
}

// Start initializes the Fiber HTTP server.
func (m *APIModule) Start(_ context.Context) error {
	if m.taskAdapter == nil {
		return fmt.Errorf("task dependency not set")
	}
	if m.authAdapter == nil {
		return fmt.Errorf("auth dependency not set")
	}

	m.app = m.buildApp()

	// Catch immediate startup errors such as the port being in use.
	errCh := make(chan error, 1)
	go func() {
		if err := m.app.Listen(m.cfg.Addr); err != nil {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("HTTP server failed to start: %w", err)
	case <-time.After(100 * time.Millisecond):
	}

	m.logger.Info("HTTP server started", "addr", m.cfg.Addr, "rate_limited_login", m.limiter != nil)
	return nil
}

// Stop gracefully shuts down the HTTP server.
func (m *APIModule) Stop(ctx context.Context) error {
	if m.app != nil {
		if err := m.app.ShutdownWithContext(ctx); err != nil {
			return fmt.Errorf("failed to shutdown server: %w", err)
		}
	}
	if m.limiter != nil {
		if err := m.limiter.Close(); err != nil {
			m.logger.Error("Failed to close rate limiter", "error", err)
		}
	}
	m.logger.Info("HTTP server stopped")
	return nil
}

// Health returns the health status of the module.
func (m *APIModule) Health(_ context.Context) mono.HealthStatus {
	return mono.HealthStatus{
		Healthy: m.app != nil,
		Message: "operational",
		Details: map[string]any{
			"addr": m.cfg.Addr,
		},
	}
}

// buildApp creates the Fiber app with middleware and routes.
func (m *APIModule) buildApp() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "Task ToDo API",
		DisableStartupMessage: true,
		ErrorHandler:          m.errorHandler,
	})

	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: m.cfg.AllowedOrigins(),
		AllowMethods: "GET,POST,PUT,PATCH,DELETE,OPTIONS",
		AllowHeaders: "Content-Type,Authorization",
	}))

	m.setupRoutes(app)
	return app
}

// setupRoutes configures all API routes.
func (m *APIModule) setupRoutes(app *fiber.App) {
	handlers := NewHandlers(m.taskAdapter, m.authAdapter, m.checks, m.logger)

	app.Get("/health", handlers.Health)

	v1 := app.Group("/api/v1")

	authRoutes := v1.Group("/auth")
	if m.limiter != nil {
		authRoutes.Post("/login", m.limiter.IPRateLimit(), handlers.Login)
	} else {
		authRoutes.Post("/login", handlers.Login)
	}

	tasks := v1.Group("/tasks", AuthMiddleware(m.authAdapter))
	tasks.Get("/", handlers.ListTasks)
	tasks.Post("/", handlers.CreateTask)
	tasks.Get("/:id", handlers.GetTask)
	tasks.Put("/:id", handlers.UpdateTask)
	tasks.Delete("/:id", handlers.DeleteTask)
	tasks.Patch("/:id/complete", handlers.CompleteTask)
}
