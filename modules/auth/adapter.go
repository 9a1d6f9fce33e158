package auth

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/example/task-todo-api/domain/apperror"
	"github.com/example/task-todo-api/domain/identity"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
)

// AuthPort defines the interface for authentication operations.
// This is the port that other modules use to access auth functionality.
type AuthPort interface {
	Login(ctx context.Context, cred identity.Credential) (*identity.Token, error)
	ValidateToken(ctx context.Context, token string) (*identity.Claims, error)
}

// AuthAdapter implements AuthPort using the service container.
type AuthAdapter struct {
	container mono.ServiceContainer
}

// NewAuthAdapter creates a new AuthAdapter.
func NewAuthAdapter(container mono.ServiceContainer) *AuthAdapter {
	return &AuthAdapter{
		container: container,
	}
}

// Login exchanges a credential for a token.
func (a *AuthAdapter) Login(ctx context.Context, cred identity.Credential) (*identity.Token, error) {
	req := LoginRequest{Username: cred.Username, Password: cred.Password}
	var resp LoginResponse

	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		ServiceLogin,
		json.Marshal,
		json.Unmarshal,
		&req,
		&resp,
	); err != nil {
		return nil, apperror.Unexpected(fmt.Errorf("login request failed: %w", err))
	}

	if resp.Error != nil {
		return nil, resp.Error
	}

	return &identity.Token{
		Value:     resp.Token,
		ExpiresAt: resp.ExpiresAt,
	}, nil
}

// ValidateToken validates a bearer token and returns the asserted identity.
func (a *AuthAdapter) ValidateToken(ctx context.Context, token string) (*identity.Claims, error) {
	req := ValidateTokenRequest{Token: token}
	var resp ValidateTokenResponse

	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		ServiceValidateToken,
		json.Marshal,
		json.Unmarshal,
		&req,
		&resp,
	); err != nil {
		return nil, fmt.Errorf("validate-token request failed: %w", err)
	}

	if !resp.Valid {
		return nil, fmt.Errorf("token validation failed: %s", resp.Error)
	}

	return &identity.Claims{
		Username:  resp.Username,
		TokenID:   resp.TokenID,
		ExpiresAt: resp.ExpiresAt,
	}, nil
}
