package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/example/task-todo-api/domain/apperror"
	"github.com/example/task-todo-api/domain/identity"
	domain "github.com/example/task-todo-api/domain/task"
	"github.com/example/task-todo-api/modules/auth"
	"github.com/example/task-todo-api/modules/task"
	"github.com/go-monolith/mono/pkg/types"
	"github.com/gofiber/fiber/v2"
)

// Handlers contains HTTP handlers for the API.
type Handlers struct {
	tasks  task.TaskPort
	auth   auth.AuthPort
	checks []HealthChecker
	logger types.Logger
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(tasks task.TaskPort, authPort auth.AuthPort, checks []HealthChecker, logger types.Logger) *Handlers {
	return &Handlers{
		tasks:  tasks,
		auth:   authPort,
		checks: checks,
		logger: logger,
	}
}

// Health reports the health of every registered module.
func (h *Handlers) Health(c *fiber.Ctx) error {
	resp := HealthResponse{
		Status:  "healthy",
		Modules: make(map[string]ModuleHealth, len(h.checks)),
	}
	for _, check := range h.checks {
		status := check.Health(c.UserContext())
		resp.Modules[check.Name()] = ModuleHealth{
			Healthy: status.Healthy,
			Message: status.Message,
			Details: status.Details,
		}
		if !status.Healthy {
			resp.Status = "unhealthy"
		}
	}

	code := fiber.StatusOK
	if resp.Status != "healthy" {
		code = fiber.StatusServiceUnavailable
	}
	return c.Status(code).JSON(resp)
}

// Login handles user login.
func (h *Handlers) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return h.writeError(c, "login", invalidBody(err))
	}

	token, err := h.auth.Login(c.UserContext(), identity.Credential{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		return h.writeError(c, "login", err)
	}

	return c.JSON(TokenResponse{
		Token:     token.Value,
		ExpiresAt: token.ExpiresAt,
	})
}

// ListTasks handles GET /tasks?filter=&isCompleted=.
func (h *Handlers) ListTasks(c *fiber.Ctx) error {
	var filter domain.Filter

	if raw := c.Query("filter"); raw != "" {
		filter.Description = &raw
	}
	if raw := c.Query("isCompleted"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return h.writeError(c, "list-tasks", apperror.Validation(
				"One or more validation errors occurred.",
				map[string]string{"isCompleted": "The isCompleted value must be true or false."},
			))
		}
		filter.IsCompleted = &v
	}

	tasks, err := h.tasks.ListTasks(c.UserContext(), filter)
	if err != nil {
		return h.writeError(c, "list-tasks", err)
	}
	if tasks == nil {
		tasks = []domain.Task{}
	}
	return c.JSON(tasks)
}

// GetTask handles GET /tasks/:id.
func (h *Handlers) GetTask(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return h.writeError(c, "get-task", err)
	}

	t, err := h.tasks.GetTask(c.UserContext(), id)
	if err != nil {
		return h.writeError(c, "get-task", err)
	}
	return c.JSON(t)
}

// CreateTask handles POST /tasks.
func (h *Handlers) CreateTask(c *fiber.Ctx) error {
	var req CreateTaskRequest
	if err := c.BodyParser(&req); err != nil {
		return h.writeError(c, "create-task", invalidBody(err))
	}

	t, err := h.tasks.CreateTask(c.UserContext(), &task.CreateTaskRequest{
		Description: req.Description,
	})
	if err != nil {
		return h.writeError(c, "create-task", err)
	}

	if caller, ok := CallerIdentity(c); ok {
		h.logger.Debug("Task created", "id", t.ID, "by", caller.Username)
	}

	c.Location(fmt.Sprintf("/api/v1/tasks/%d", t.ID))
	return c.Status(fiber.StatusCreated).JSON(t)
}

// UpdateTask handles PUT /tasks/:id.
func (h *Handlers) UpdateTask(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return h.writeError(c, "update-task", err)
	}

	var req UpdateTaskRequest
	if err := c.BodyParser(&req); err != nil {
		return h.writeError(c, "update-task", invalidBody(err))
	}

	t, err := h.tasks.UpdateTask(c.UserContext(), &task.UpdateTaskRequest{
		ID:          id,
		Description: req.Description,
		IsCompleted: req.IsCompleted,
	})
	if err != nil {
		return h.writeError(c, "update-task", err)
	}
	return c.JSON(t)
}

// DeleteTask handles DELETE /tasks/:id.
func (h *Handlers) DeleteTask(c *fiber.Ctx) error {
	id, err := parsePositiveID(c)
	if err != nil {
		return h.writeError(c, "delete-task", err)
	}

	if err := h.tasks.DeleteTask(c.UserContext(), id); err != nil {
		return h.writeError(c, "delete-task", err)
	}

	if caller, ok := CallerIdentity(c); ok {
		h.logger.Debug("Task deleted", "id", id, "by", caller.Username)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// CompleteTask handles PATCH /tasks/:id/complete. The body is either a bare
// JSON boolean or {"isCompleted": bool}.
func (h *Handlers) CompleteTask(c *fiber.Ctx) error {
	id, err := parsePositiveID(c)
	if err != nil {
		return h.writeError(c, "complete-task", err)
	}

	isCompleted, err := parseCompletion(c.Body())
	if err != nil {
		return h.writeError(c, "complete-task", err)
	}

	if err := h.tasks.SetCompletion(c.UserContext(), id, isCompleted); err != nil {
		return h.writeError(c, "complete-task", err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func parseID(c *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return 0, apperror.Validation(apperror.MsgInvalidTaskID, nil)
	}
	return id, nil
}

func parsePositiveID(c *fiber.Ctx) (int64, error) {
	id, err := parseID(c)
	if err != nil {
		return 0, err
	}
	if id <= 0 {
		return 0, apperror.Validation(apperror.MsgInvalidTaskID, nil)
	}
	return id, nil
}

func parseCompletion(body []byte) (bool, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return false, apperror.Validation("A request body is required.", nil)
	}

	var flag bool
	if err := json.Unmarshal(body, &flag); err == nil {
		return flag, nil
	}

	var req CompletionRequest
	if err := json.Unmarshal(body, &req); err != nil || req.IsCompleted == nil {
		return false, apperror.Validation(
			"One or more validation errors occurred.",
			map[string]string{"isCompleted": "The isCompleted field is required."},
		)
	}
	return *req.IsCompleted, nil
}

func invalidBody(err error) *apperror.Error {
	return apperror.Wrap(apperror.KindValidation, "Invalid request body.", err)
}
