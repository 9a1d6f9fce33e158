package task

import (
	"context"

	"github.com/example/task-todo-api/domain/apperror"
	domain "github.com/example/task-todo-api/domain/task"
)

// Service names registered by the task module.
const (
	ServiceListTasks     = "list-tasks"
	ServiceGetTask       = "get-task"
	ServiceCreateTask    = "create-task"
	ServiceUpdateTask    = "update-task"
	ServiceDeleteTask    = "delete-task"
	ServiceSetCompletion = "set-task-completion"
)

// TaskPort defines the interface for task operations.
// This is the port other modules use to reach the task module.
type TaskPort interface {
	ListTasks(ctx context.Context, filter domain.Filter) ([]domain.Task, error)
	GetTask(ctx context.Context, id int64) (*domain.Task, error)
	CreateTask(ctx context.Context, req *CreateTaskRequest) (*domain.Task, error)
	UpdateTask(ctx context.Context, req *UpdateTaskRequest) (*domain.Task, error)
	DeleteTask(ctx context.Context, id int64) error
	SetCompletion(ctx context.Context, id int64, isCompleted bool) error
}

// ListTasksRequest is the request for listing tasks.
type ListTasksRequest struct {
	Filter domain.Filter `json:"filter"`
}

// ListTasksResponse is the response for listing tasks.
type ListTasksResponse struct {
	Tasks []domain.Task   `json:"tasks"`
	Error *apperror.Error `json:"error,omitempty"`
}

// GetTaskRequest is the request for getting a task.
type GetTaskRequest struct {
	ID int64 `json:"id"`
}

// CreateTaskRequest is the request for creating a task.
type CreateTaskRequest struct {
	Description string `json:"description" validate:"required,notblank,max=255"`
}

// UpdateTaskRequest is the request for updating a task.
// IsCompleted is a pointer so an explicit false passes the required check.
type UpdateTaskRequest struct {
	ID          int64  `json:"id"`
	Description string `json:"description" validate:"required,notblank,max=255"`
	IsCompleted *bool  `json:"isCompleted" validate:"required"`
}

// TaskResponse carries a single task or the error that prevented it.
type TaskResponse struct {
	Task  *domain.Task    `json:"task,omitempty"`
	Error *apperror.Error `json:"error,omitempty"`
}

// DeleteTaskRequest is the request for deleting a task.
type DeleteTaskRequest struct {
	ID int64 `json:"id"`
}

// SetCompletionRequest is the request for changing only the completion flag.
type SetCompletionRequest struct {
	ID          int64 `json:"id"`
	IsCompleted bool  `json:"isCompleted"`
}

// AckResponse is the reply of operations that return no data.
type AckResponse struct {
	Error *apperror.Error `json:"error,omitempty"`
}
