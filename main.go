package main

import (
	"context"
	"flag"
	"log"
	"os"

	"github.com/example/task-todo-api/config"
	"github.com/example/task-todo-api/middleware/ratelimit"
	"github.com/example/task-todo-api/modules/api"
	"github.com/example/task-todo-api/modules/auth"
	"github.com/example/task-todo-api/modules/task"
	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/go-monolith/mono"
)

func main() {
	configPath := flag.String("config", "", "path to a TOML config file")
	envFile := flag.String("env", ".env", "path to a .env file (ignored if missing)")
	flag.Parse()

	cfg, err := config.Load(*configPath, *envFile)
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	logLevel := mono.LogLevelInfo
	if cfg.Log.Level == "error" {
		logLevel = mono.LogLevelError
	}

	app, err := mono.NewMonoApplication(
		mono.WithShutdownTimeout(cfg.ShutdownTimeout.Duration),
		mono.WithLogLevel(logLevel),
		mono.WithLogFormat(mono.LogFormatText),
	)
	if err != nil {
		log.Fatalf("Failed to create application: %v", err)
	}

	logger := app.Logger()

	var limiter *ratelimit.Middleware
	if cfg.RateLimit.RedisAddr != "" {
		limiter, err = ratelimit.New(context.Background(), cfg.RateLimit, logger.WithModule("ratelimit"))
		if err != nil {
			log.Fatalf("Failed to create rate limiter: %v", err)
		}
	} else {
		logger.Info("Rate limiting disabled (no redis address configured)")
	}

	taskModule := task.NewModule(cfg.Database, logger)
	authModule := auth.NewModule(cfg.JWT, cfg.Auth, logger)
	apiModule := api.NewModule(cfg.HTTP, limiter, logger, taskModule, authModule)

	// Independent modules first, then the API module that depends on them.
	app.Register(taskModule)
	app.Register(authModule)
	app.Register(apiModule)

	if err := app.Start(context.Background()); err != nil {
		log.Fatalf("Failed to start application: %v", err)
	}

	logger.Info("Task ToDo API started",
		"addr", cfg.HTTP.Addr,
		"database", cfg.Database.Driver,
		"login", "POST /api/v1/auth/login",
		"tasks", "/api/v1/tasks (Bearer token required)",
	)

	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		cfg.ShutdownTimeout.Duration,
		map[string]gfshutdown.Operation{
			"mono-app": func(ctx context.Context) error {
				logger.Info("Graceful shutdown initiated")
				return app.Stop(ctx)
			},
		},
	)

	exitCode := <-wait
	log.Printf("Application exited with code: %d", exitCode)
	os.Exit(exitCode)
}
