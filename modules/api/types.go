package api

import "time"

// LoginRequest represents a login request body.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// TokenResponse represents a successful login.
type TokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// CreateTaskRequest represents a create task request body.
type CreateTaskRequest struct {
	Description string `json:"description"`
}

// UpdateTaskRequest represents an update task request body.
type UpdateTaskRequest struct {
	Description string `json:"description"`
	IsCompleted *bool  `json:"isCompleted"`
}

// CompletionRequest is the object form of the completion body.
type CompletionRequest struct {
	IsCompleted *bool `json:"isCompleted"`
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error   string            `json:"error"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// HealthResponse reports the health of every registered module.
type HealthResponse struct {
	Status  string                  `json:"status"`
	Modules map[string]ModuleHealth `json:"modules"`
}

// ModuleHealth is the health of a single module.
type ModuleHealth struct {
	Healthy bool           `json:"healthy"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}
