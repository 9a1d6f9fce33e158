package task

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/example/task-todo-api/domain/apperror"
	domain "github.com/example/task-todo-api/domain/task"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
)

// taskAdapter implements TaskPort over the task module's service container.
type taskAdapter struct {
	container mono.ServiceContainer
}

// NewTaskAdapter creates a new adapter for task services.
func NewTaskAdapter(container mono.ServiceContainer) TaskPort {
	if container == nil {
		panic("task adapter requires non-nil ServiceContainer")
	}
	return &taskAdapter{container: container}
}

// call invokes a task service. A failed call is reported as unexpected since
// the outcome of the operation is unknown.
func call[Req, Resp any](ctx context.Context, container mono.ServiceContainer, service string, req *Req, resp *Resp) error {
	if err := helper.CallRequestReplyService(
		ctx,
		container,
		service,
		json.Marshal,
		json.Unmarshal,
		req,
		resp,
	); err != nil {
		return apperror.Unexpected(fmt.Errorf("%s service call failed: %w", service, err))
	}
	return nil
}

// ListTasks lists tasks via the list-tasks service.
func (a *taskAdapter) ListTasks(ctx context.Context, filter domain.Filter) ([]domain.Task, error) {
	req := ListTasksRequest{Filter: filter}
	var resp ListTasksResponse
	if err := call(ctx, a.container, ServiceListTasks, &req, &resp); err != nil {
		return nil, err
	}
	if resp.Error != nil {
		return nil, resp.Error
	}
	return resp.Tasks, nil
}

// GetTask retrieves a task via the get-task service.
func (a *taskAdapter) GetTask(ctx context.Context, id int64) (*domain.Task, error) {
	req := GetTaskRequest{ID: id}
	var resp TaskResponse
	if err := call(ctx, a.container, ServiceGetTask, &req, &resp); err != nil {
		return nil, err
	}
	return taskOrError(resp)
}

// CreateTask creates a task via the create-task service.
func (a *taskAdapter) CreateTask(ctx context.Context, req *CreateTaskRequest) (*domain.Task, error) {
	var resp TaskResponse
	if err := call(ctx, a.container, ServiceCreateTask, req, &resp); err != nil {
		return nil, err
	}
	return taskOrError(resp)
}

// UpdateTask updates a task via the update-task service.
func (a *taskAdapter) UpdateTask(ctx context.Context, req *UpdateTaskRequest) (*domain.Task, error) {
	var resp TaskResponse
	if err := call(ctx, a.container, ServiceUpdateTask, req, &resp); err != nil {
		return nil, err
	}
	return taskOrError(resp)
}

// DeleteTask deletes a task via the delete-task service.
func (a *taskAdapter) DeleteTask(ctx context.Context, id int64) error {
	req := DeleteTaskRequest{ID: id}
	var resp AckResponse
	if err := call(ctx, a.container, ServiceDeleteTask, &req, &resp); err != nil {
		return err
	}
	if resp.Error != nil {
		return resp.Error
	}
	return nil
}

// SetCompletion sets the completion flag via the set-task-completion service.
func (a *taskAdapter) SetCompletion(ctx context.Context, id int64, isCompleted bool) error {
	req := SetCompletionRequest{ID: id, IsCompleted: isCompleted}
	var resp AckResponse
	if err := call(ctx, a.container, ServiceSetCompletion, &req, &resp); err != nil {
		return err
	}
	if resp.Error != nil {
		return resp.Error
	}
	return nil
}

func taskOrError(resp TaskResponse) (*domain.Task, error) {
	if resp.Error != nil {
		return nil, resp.Error
	}
	if resp.Task == nil {
		return nil, apperror.Unexpected(errors.New("empty task reply"))
	}
	return resp.Task, nil
}
