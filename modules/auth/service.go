package auth

import (
	"context"
	"fmt"

	"github.com/example/task-todo-api/domain/apperror"
	"github.com/example/task-todo-api/domain/identity"
	"github.com/example/task-todo-api/pkg/validation"
	"github.com/go-monolith/mono/pkg/types"
)

// AuthService is the authentication gate. It holds no per-user state; every
// call is evaluated from scratch.
type AuthService struct {
	verifier CredentialVerifier
	issuer   *TokenIssuer
	logger   types.Logger
}

// NewAuthService creates a new AuthService.
func NewAuthService(verifier CredentialVerifier, issuer *TokenIssuer, logger types.Logger) *AuthService {
	return &AuthService{
		verifier: verifier,
		issuer:   issuer,
		logger:   logger,
	}
}

// Login validates cred, verifies it and issues a token for its username.
// Errors are *apperror.Error values of kind validation, unauthorized or
// unexpected.
func (s *AuthService) Login(ctx context.Context, cred identity.Credential) (*identity.Token, error) {
	if err := validation.Struct(cred); err != nil {
		return nil, err
	}

	ok, err := s.verifier.Verify(ctx, cred)
	if err != nil {
		s.logger.Error("Credential verification failed", "error", err)
		return nil, apperror.Unexpected(fmt.Errorf("verify credentials: %w", err))
	}
	if !ok {
		s.logger.Warn("Login rejected", "username", cred.Username)
		return nil, apperror.Unauthorized(apperror.MsgInvalidCredentials)
	}

	token, err := s.issuer.Issue(cred.Username)
	if err != nil {
		s.logger.Error("Token issuance failed", "error", err)
		return nil, apperror.Unexpected(fmt.Errorf("issue token: %w", err))
	}

	s.logger.Info("Login succeeded", "username", cred.Username)
	return token, nil
}

// ValidateToken returns the identity asserted by a bearer token.
func (s *AuthService) ValidateToken(_ context.Context, token string) (*identity.Claims, error) {
	return s.issuer.Validate(token)
}
