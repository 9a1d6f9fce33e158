package api

import (
	"context"
	"errors"

	"github.com/example/task-todo-api/domain/identity"
	domain "github.com/example/task-todo-api/domain/task"
	"github.com/example/task-todo-api/modules/task"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/types"
	"github.com/gofiber/fiber/v2"
)

// mockLogger implements types.Logger for testing
type mockLogger struct{}

func (m *mockLogger) Debug(msg string, args ...any)         {}
func (m *mockLogger) Info(msg string, args ...any)          {}
func (m *mockLogger) Warn(msg string, args ...any)          {}
func (m *mockLogger) Error(msg string, args ...any)         {}
func (m *mockLogger) With(args ...any) types.Logger         { return m }
func (m *mockLogger) WithError(err error) types.Logger      { return m }
func (m *mockLogger) WithModule(module string) types.Logger { return m }

// mockAuthPort implements auth.AuthPort for testing
type mockAuthPort struct {
	loginFunc         func(ctx context.Context, cred identity.Credential) (*identity.Token, error)
	validateTokenFunc func(ctx context.Context, token string) (*identity.Claims, error)
}

func (m *mockAuthPort) Login(ctx context.Context, cred identity.Credential) (*identity.Token, error) {
	if m.loginFunc != nil {
		return m.loginFunc(ctx, cred)
	}
	return nil, errors.New("not implemented")
}

func (m *mockAuthPort) ValidateToken(ctx context.Context, token string) (*identity.Claims, error) {
	if m.validateTokenFunc != nil {
		return m.validateTokenFunc(ctx, token)
	}
	return nil, errors.New("not implemented")
}

// acceptToken returns an auth port that accepts exactly the given token.
func acceptToken(valid string) *mockAuthPort {
	return &mockAuthPort{
		validateTokenFunc: func(_ context.Context, token string) (*identity.Claims, error) {
			if token != valid {
				return nil, errors.New("invalid token")
			}
			return &identity.Claims{Username: "admin"}, nil
		},
	}
}

// mockTaskPort implements task.TaskPort for testing
type mockTaskPort struct {
	listFunc          func(ctx context.Context, filter domain.Filter) ([]domain.Task, error)
	getFunc           func(ctx context.Context, id int64) (*domain.Task, error)
	createFunc        func(ctx context.Context, req *task.CreateTaskRequest) (*domain.Task, error)
	updateFunc        func(ctx context.Context, req *task.UpdateTaskRequest) (*domain.Task, error)
	deleteFunc        func(ctx context.Context, id int64) error
	setCompletionFunc func(ctx context.Context, id int64, isCompleted bool) error
}

func (m *mockTaskPort) ListTasks(ctx context.Context, filter domain.Filter) ([]domain.Task, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, filter)
	}
	return nil, errors.New("not implemented")
}

func (m *mockTaskPort) GetTask(ctx context.Context, id int64) (*domain.Task, error) {
	if m.getFunc != nil {
		return m.getFunc(ctx, id)
	}
	return nil, errors.New("not implemented")
}

func (m *mockTaskPort) CreateTask(ctx context.Context, req *task.CreateTaskRequest) (*domain.Task, error) {
	if m.createFunc != nil {
		return m.createFunc(ctx, req)
	}
	return nil, errors.New("not implemented")
}

func (m *mockTaskPort) UpdateTask(ctx context.Context, req *task.UpdateTaskRequest) (*domain.Task, error) {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, req)
	}
	return nil, errors.New("not implemented")
}

func (m *mockTaskPort) DeleteTask(ctx context.Context, id int64) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id)
	}
	return errors.New("not implemented")
}

func (m *mockTaskPort) SetCompletion(ctx context.Context, id int64, isCompleted bool) error {
	if m.setCompletionFunc != nil {
		return m.setCompletionFunc(ctx, id, isCompleted)
	}
	return errors.New("not implemented")
}

// staticHealth is a HealthChecker with a fixed answer.
type staticHealth struct {
	name    string
	healthy bool
}

func (s staticHealth) Name() string { return s.name }

func (s staticHealth) Health(context.Context) mono.HealthStatus {
	return mono.HealthStatus{Healthy: s.healthy, Message: "static"}
}

// newTestApp builds the API app around the given ports without listening.
func newTestApp(tasks task.TaskPort, authPort *mockAuthPort, checks ...HealthChecker) *fiber.App {
	m := &APIModule{
		logger:      &mockLogger{},
		taskAdapter: tasks,
		authAdapter: authPort,
		checks:      checks,
	}
	return m.buildApp()
}
