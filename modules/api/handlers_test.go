package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/example/task-todo-api/domain/apperror"
	"github.com/example/task-todo-api/domain/identity"
	domain "github.com/example/task-todo-api/domain/task"
	"github.com/example/task-todo-api/modules/task"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testToken = "valid-token"

func doRequest(t *testing.T, app *fiber.App, method, path, body string, authed bool) (*http.Response, []byte) {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if authed {
		req.Header.Set("Authorization", "Bearer "+testToken)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()
	return resp, data
}

func decodeError(t *testing.T, data []byte) ErrorResponse {
	t.Helper()
	var e ErrorResponse
	require.NoError(t, json.Unmarshal(data, &e), "body: %s", data)
	return e
}

func TestLogin(t *testing.T) {
	expires := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	authPort := &mockAuthPort{
		loginFunc: func(_ context.Context, cred identity.Credential) (*identity.Token, error) {
			switch {
			case cred.Username == "":
				return nil, apperror.Validation("One or more validation errors occurred.",
					map[string]string{"username": "The username field is required."})
			case cred.Username == "admin" && cred.Password == "password":
				return &identity.Token{Value: "signed.jwt.value", ExpiresAt: expires}, nil
			default:
				return nil, apperror.Unauthorized(apperror.MsgInvalidCredentials)
			}
		},
	}
	app := newTestApp(&mockTaskPort{}, authPort)

	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantKind   string
	}{
		{"success", `{"username":"admin","password":"password"}`, http.StatusOK, ""},
		{"wrong password", `{"username":"admin","password":"wrong"}`, http.StatusUnauthorized, "unauthorized"},
		{"empty username", `{"username":""}`, http.StatusBadRequest, "validation_error"},
		{"malformed body", `{"username":`, http.StatusBadRequest, "validation_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, data := doRequest(t, app, http.MethodPost, "/api/v1/auth/login", tt.body, false)
			assert.Equal(t, tt.wantStatus, resp.StatusCode, "body: %s", data)

			if tt.wantKind != "" {
				assert.Equal(t, tt.wantKind, decodeError(t, data).Error)
				return
			}

			var token TokenResponse
			require.NoError(t, json.Unmarshal(data, &token))
			assert.Equal(t, "signed.jwt.value", token.Token)
			assert.True(t, token.ExpiresAt.Equal(expires))
		})
	}
}

func TestTaskRoutesRequireToken(t *testing.T) {
	app := newTestApp(&mockTaskPort{}, acceptToken(testToken))

	routes := []struct{ method, path string }{
		{http.MethodGet, "/api/v1/tasks"},
		{http.MethodPost, "/api/v1/tasks"},
		{http.MethodGet, "/api/v1/tasks/1"},
		{http.MethodPut, "/api/v1/tasks/1"},
		{http.MethodDelete, "/api/v1/tasks/1"},
		{http.MethodPatch, "/api/v1/tasks/1/complete"},
	}
	for _, r := range routes {
		resp, _ := doRequest(t, app, r.method, r.path, "", false)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, "%s %s", r.method, r.path)
	}
}

func TestListTasks(t *testing.T) {
	var got domain.Filter
	tasks := &mockTaskPort{
		listFunc: func(_ context.Context, filter domain.Filter) ([]domain.Task, error) {
			got = filter
			return []domain.Task{{ID: 1, Description: "Buy milk", IsCompleted: true}}, nil
		},
	}
	app := newTestApp(tasks, acceptToken(testToken))

	resp, data := doRequest(t, app, http.MethodGet, "/api/v1/tasks?filter=milk&isCompleted=true", "", true)
	require.Equal(t, http.StatusOK, resp.StatusCode, "body: %s", data)

	require.NotNil(t, got.Description)
	assert.Equal(t, "milk", *got.Description)
	require.NotNil(t, got.IsCompleted)
	assert.True(t, *got.IsCompleted)

	var list []domain.Task
	require.NoError(t, json.Unmarshal(data, &list))
	require.Len(t, list, 1)
	assert.Equal(t, "Buy milk", list[0].Description)
	assert.Contains(t, string(data), `"isCompleted":true`)
}

func TestListTasks_NoFiltersAndEmptyResult(t *testing.T) {
	tasks := &mockTaskPort{
		listFunc: func(_ context.Context, filter domain.Filter) ([]domain.Task, error) {
			assert.Nil(t, filter.Description)
			assert.Nil(t, filter.IsCompleted)
			return nil, nil
		},
	}
	app := newTestApp(tasks, acceptToken(testToken))

	resp, data := doRequest(t, app, http.MethodGet, "/api/v1/tasks", "", true)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `[]`, string(data))
}

func TestListTasks_BadCompletionQuery(t *testing.T) {
	app := newTestApp(&mockTaskPort{}, acceptToken(testToken))

	resp, data := doRequest(t, app, http.MethodGet, "/api/v1/tasks?isCompleted=maybe", "", true)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, decodeError(t, data).Fields, "isCompleted")
}

func TestListTasks_StorageErrorIs500(t *testing.T) {
	tasks := &mockTaskPort{
		listFunc: func(context.Context, domain.Filter) ([]domain.Task, error) {
			return nil, apperror.Storage(errors.New("database is locked"))
		},
	}
	app := newTestApp(tasks, acceptToken(testToken))

	resp, data := doRequest(t, app, http.MethodGet, "/api/v1/tasks", "", true)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)

	e := decodeError(t, data)
	assert.Equal(t, "storage_error", e.Error)
	assert.Equal(t, apperror.MsgStorage, e.Message)
	assert.NotContains(t, string(data), "database is locked")
}

func TestCreateThenGetTask(t *testing.T) {
	stored := map[int64]domain.Task{}
	tasks := &mockTaskPort{
		createFunc: func(_ context.Context, req *task.CreateTaskRequest) (*domain.Task, error) {
			if req.Description == "" {
				return nil, apperror.Validation("One or more validation errors occurred.",
					map[string]string{"description": "The description field is required."})
			}
			created := domain.Task{ID: int64(len(stored) + 1), Description: req.Description, CreatedAt: time.Now().UTC()}
			stored[created.ID] = created
			return &created, nil
		},
		getFunc: func(_ context.Context, id int64) (*domain.Task, error) {
			found, ok := stored[id]
			if !ok {
				return nil, apperror.NotFound(apperror.MsgTaskNotFound)
			}
			return &found, nil
		},
	}
	app := newTestApp(tasks, acceptToken(testToken))

	resp, data := doRequest(t, app, http.MethodPost, "/api/v1/tasks", `{"description":"Buy milk"}`, true)
	require.Equal(t, http.StatusCreated, resp.StatusCode, "body: %s", data)

	var created domain.Task
	require.NoError(t, json.Unmarshal(data, &created))
	assert.Greater(t, created.ID, int64(0))
	assert.False(t, created.IsCompleted)
	assert.Equal(t, "/api/v1/tasks/1", resp.Header.Get("Location"))

	resp, data = doRequest(t, app, http.MethodGet, "/api/v1/tasks/1", "", true)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var fetched domain.Task
	require.NoError(t, json.Unmarshal(data, &fetched))
	assert.Equal(t, "Buy milk", fetched.Description)

	resp, data = doRequest(t, app, http.MethodPost, "/api/v1/tasks", `{"description":""}`, true)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, decodeError(t, data).Fields, "description")

	resp, data = doRequest(t, app, http.MethodGet, "/api/v1/tasks/42", "", true)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, apperror.MsgTaskNotFound, decodeError(t, data).Message)
}

func TestGetTask_UnparseableID(t *testing.T) {
	app := newTestApp(&mockTaskPort{}, acceptToken(testToken))

	resp, data := doRequest(t, app, http.MethodGet, "/api/v1/tasks/abc", "", true)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, apperror.MsgInvalidTaskID, decodeError(t, data).Message)
}

func TestUpdateTask(t *testing.T) {
	var got *task.UpdateTaskRequest
	tasks := &mockTaskPort{
		updateFunc: func(_ context.Context, req *task.UpdateTaskRequest) (*domain.Task, error) {
			got = req
			if req.ID == 9999 {
				return nil, apperror.NotFound(apperror.MsgTaskNotFound)
			}
			return &domain.Task{ID: req.ID, Description: req.Description, IsCompleted: *req.IsCompleted}, nil
		},
	}
	app := newTestApp(tasks, acceptToken(testToken))

	resp, data := doRequest(t, app, http.MethodPut, "/api/v1/tasks/3", `{"description":"Buy bread","isCompleted":false}`, true)
	require.Equal(t, http.StatusOK, resp.StatusCode, "body: %s", data)
	require.NotNil(t, got)
	assert.Equal(t, int64(3), got.ID)
	require.NotNil(t, got.IsCompleted)
	assert.False(t, *got.IsCompleted)

	resp, _ = doRequest(t, app, http.MethodPut, "/api/v1/tasks/9999", `{"description":"x","isCompleted":true}`, true)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestDeleteTask(t *testing.T) {
	deleted := map[int64]bool{}
	tasks := &mockTaskPort{
		deleteFunc: func(_ context.Context, id int64) error {
			if id == 9999 {
				return apperror.NotFound(apperror.MsgTaskNotFound)
			}
			deleted[id] = true
			return nil
		},
	}
	app := newTestApp(tasks, acceptToken(testToken))

	tests := []struct {
		name       string
		path       string
		wantStatus int
	}{
		{"existing", "/api/v1/tasks/7", http.StatusNoContent},
		{"missing", "/api/v1/tasks/9999", http.StatusNotFound},
		{"zero id", "/api/v1/tasks/0", http.StatusBadRequest},
		{"negative id", "/api/v1/tasks/-3", http.StatusBadRequest},
		{"not a number", "/api/v1/tasks/seven", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, data := doRequest(t, app, http.MethodDelete, tt.path, "", true)
			assert.Equal(t, tt.wantStatus, resp.StatusCode, "body: %s", data)
		})
	}
	assert.True(t, deleted[7])
	assert.False(t, deleted[0])
}

func TestCompleteTask(t *testing.T) {
	type call struct {
		id   int64
		flag bool
	}
	var calls []call
	tasks := &mockTaskPort{
		setCompletionFunc: func(_ context.Context, id int64, isCompleted bool) error {
			if id == 9999 {
				return apperror.NotFound(apperror.MsgTaskNotFound)
			}
			calls = append(calls, call{id, isCompleted})
			return nil
		},
	}
	app := newTestApp(tasks, acceptToken(testToken))

	tests := []struct {
		name       string
		path       string
		body       string
		wantStatus int
	}{
		{"bare true", "/api/v1/tasks/5/complete", `true`, http.StatusNoContent},
		{"bare false", "/api/v1/tasks/5/complete", `false`, http.StatusNoContent},
		{"object form", "/api/v1/tasks/6/complete", `{"isCompleted":true}`, http.StatusNoContent},
		{"missing body", "/api/v1/tasks/5/complete", ``, http.StatusBadRequest},
		{"wrong shape", "/api/v1/tasks/5/complete", `"yes"`, http.StatusBadRequest},
		{"zero id", "/api/v1/tasks/0/complete", `true`, http.StatusBadRequest},
		{"missing task", "/api/v1/tasks/9999/complete", `true`, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, data := doRequest(t, app, http.MethodPatch, tt.path, tt.body, true)
			assert.Equal(t, tt.wantStatus, resp.StatusCode, "body: %s", data)
		})
	}

	assert.Equal(t, []call{{5, true}, {5, false}, {6, true}}, calls)
}

func TestUnexpectedErrorIs500(t *testing.T) {
	tasks := &mockTaskPort{
		getFunc: func(context.Context, int64) (*domain.Task, error) {
			return nil, errors.New("get-task service call failed: nats: timeout")
		},
	}
	app := newTestApp(tasks, acceptToken(testToken))

	resp, data := doRequest(t, app, http.MethodGet, "/api/v1/tasks/1", "", true)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)

	e := decodeError(t, data)
	assert.Equal(t, "unexpected_error", e.Error)
	assert.Equal(t, apperror.MsgUnexpected, e.Message)
}

func TestHealth(t *testing.T) {
	app := newTestApp(&mockTaskPort{}, &mockAuthPort{},
		staticHealth{name: "task", healthy: true},
		staticHealth{name: "auth", healthy: true},
	)
	resp, data := doRequest(t, app, http.MethodGet, "/health", "", false)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var health HealthResponse
	require.NoError(t, json.Unmarshal(data, &health))
	assert.Equal(t, "healthy", health.Status)
	assert.Len(t, health.Modules, 2)

	app = newTestApp(&mockTaskPort{}, &mockAuthPort{}, staticHealth{name: "task", healthy: false})
	resp, _ = doRequest(t, app, http.MethodGet, "/health", "", false)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, statusFor(apperror.KindValidation))
	assert.Equal(t, http.StatusNotFound, statusFor(apperror.KindNotFound))
	assert.Equal(t, http.StatusUnauthorized, statusFor(apperror.KindUnauthorized))
	assert.Equal(t, http.StatusInternalServerError, statusFor(apperror.KindStorage))
	assert.Equal(t, http.StatusInternalServerError, statusFor(apperror.KindUnexpected))
}
