package task

import (
	"context"

	"github.com/example/task-todo-api/domain/apperror"
	"github.com/example/task-todo-api/pkg/validation"
	"github.com/go-monolith/mono"
)

// Expected failures travel back inside the reply envelope. A non-nil error
// from a handler is reserved for transport problems.

func (m *TaskModule) handleListTasks(ctx context.Context, req ListTasksRequest, _ *mono.Msg) (ListTasksResponse, error) {
	tasks, err := m.repo.List(ctx, req.Filter)
	if err != nil {
		return ListTasksResponse{Error: apperror.From(err)}, nil
	}
	return ListTasksResponse{Tasks: tasks}, nil
}

func (m *TaskModule) handleGetTask(ctx context.Context, req GetTaskRequest, _ *mono.Msg) (TaskResponse, error) {
	t, err := m.repo.Get(ctx, req.ID)
	if err != nil {
		return TaskResponse{Error: apperror.From(err)}, nil
	}
	return TaskResponse{Task: t}, nil
}

func (m *TaskModule) handleCreateTask(ctx context.Context, req CreateTaskRequest, _ *mono.Msg) (TaskResponse, error) {
	if err := validation.Struct(req); err != nil {
		return TaskResponse{Error: apperror.From(err)}, nil
	}

	t, err := m.repo.Create(ctx, req.Description)
	if err != nil {
		return TaskResponse{Error: apperror.From(err)}, nil
	}

	m.logger.Info("Task created", "id", t.ID)
	return TaskResponse{Task: t}, nil
}

func (m *TaskModule) handleUpdateTask(ctx context.Context, req UpdateTaskRequest, _ *mono.Msg) (TaskResponse, error) {
	if err := validation.Struct(req); err != nil {
		return TaskResponse{Error: apperror.From(err)}, nil
	}

	t, err := m.repo.Update(ctx, req.ID, req.Description, *req.IsCompleted)
	if err != nil {
		return TaskResponse{Error: apperror.From(err)}, nil
	}
	return TaskResponse{Task: t}, nil
}

func (m *TaskModule) handleDeleteTask(ctx context.Context, req DeleteTaskRequest, _ *mono.Msg) (AckResponse, error) {
	if err := m.repo.Delete(ctx, req.ID); err != nil {
		return AckResponse{Error: apperror.From(err)}, nil
	}

	m.logger.Info("Task deleted", "id", req.ID)
	return AckResponse{}, nil
}

func (m *TaskModule) handleSetCompletion(ctx context.Context, req SetCompletionRequest, _ *mono.Msg) (AckResponse, error) {
	if err := m.repo.SetCompletion(ctx, req.ID, req.IsCompleted); err != nil {
		return AckResponse{Error: apperror.From(err)}, nil
	}
	return AckResponse{}, nil
}
