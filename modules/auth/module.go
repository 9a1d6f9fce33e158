package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/example/task-todo-api/config"
	"github.com/example/task-todo-api/domain/apperror"
	"github.com/example/task-todo-api/domain/identity"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"github.com/go-monolith/mono/pkg/types"
)

// AuthModule provides login and token validation services.
type AuthModule struct {
	jwtCfg  config.JWTConfig
	authCfg config.AuthConfig
	logger  types.Logger
	service *AuthService
	mode    string
}

// Compile-time interface checks.
var _ mono.Module = (*AuthModule)(nil)
var _ mono.ServiceProviderModule = (*AuthModule)(nil)
var _ mono.HealthCheckableModule = (*AuthModule)(nil)

// NewModule creates a new AuthModule.
func NewModule(jwtCfg config.JWTConfig, authCfg config.AuthConfig, logger types.Logger) *AuthModule {
	return &AuthModule{
		jwtCfg:  jwtCfg,
		authCfg: authCfg,
		logger:  logger.WithModule("auth"),
	}
}

// Name returns the module name.
func (m *AuthModule) Name() string {
	return "auth"
}

// Start builds the credential verifier and token issuer.
func (m *AuthModule) Start(_ context.Context) error {
	if m.jwtCfg.SecretKey == "" {
		return errors.New("jwt secret key is not configured")
	}

	verifier, mode, err := m.newVerifier()
	if err != nil {
		return err
	}
	m.mode = mode

	issuer := NewTokenIssuer(JWTConfig{
		SecretKey: m.jwtCfg.SecretKey,
		Issuer:    m.jwtCfg.Issuer,
		Audience:  m.jwtCfg.Audience,
		Lifetime:  m.jwtCfg.Lifetime.Duration,
	})

	m.service = NewAuthService(verifier, issuer, m.logger)

	m.logger.Info("Auth module started",
		"verifier", mode,
		"issuer", m.jwtCfg.Issuer,
		"audience", m.jwtCfg.Audience,
		"token_lifetime", m.jwtCfg.Lifetime.String(),
	)
	return nil
}

func (m *AuthModule) newVerifier() (CredentialVerifier, string, error) {
	if m.authCfg.IdentityProviderURL != "" {
		return NewIdentityProviderVerifier(
			m.authCfg.IdentityProviderURL,
			m.authCfg.IdentityProviderTimeout.Duration,
		), "identity-provider", nil
	}

	fixed, err := NewFixedCredentialVerifier(
		m.authCfg.Username,
		m.authCfg.Password,
		NewPasswordHasher(DefaultBcryptCost),
	)
	if err != nil {
		return nil, "", err
	}
	return fixed, "fixed", nil
}

// Stop shuts down the module.
func (m *AuthModule) Stop(_ context.Context) error {
	m.logger.Info("Auth module stopped")
	return nil
}

// Health returns the health status of the module.
func (m *AuthModule) Health(_ context.Context) mono.HealthStatus {
	if m.service == nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: "not started",
		}
	}
	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"verifier": m.mode,
		},
	}
}

// RegisterServices registers request-reply services in the service container.
func (m *AuthModule) RegisterServices(container mono.ServiceContainer) error {
	if err := helper.RegisterTypedRequestReplyService(
		container,
		ServiceLogin,
		json.Unmarshal,
		json.Marshal,
		m.handleLogin,
	); err != nil {
		return fmt.Errorf("failed to register login service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container,
		ServiceValidateToken,
		json.Unmarshal,
		json.Marshal,
		m.handleValidateToken,
	); err != nil {
		return fmt.Errorf("failed to register validate-token service: %w", err)
	}

	m.logger.Info("Registered auth services", "services", []string{ServiceLogin, ServiceValidateToken})
	return nil
}

// handleLogin handles user login. Rejections are returned in the reply.
func (m *AuthModule) handleLogin(ctx context.Context, req LoginRequest, _ *mono.Msg) (LoginResponse, error) {
	token, err := m.service.Login(ctx, identity.Credential{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		return LoginResponse{Error: apperror.From(err)}, nil
	}

	return LoginResponse{
		Token:     token.Value,
		ExpiresAt: token.ExpiresAt,
	}, nil
}

// handleValidateToken handles token validation.
func (m *AuthModule) handleValidateToken(ctx context.Context, req ValidateTokenRequest, _ *mono.Msg) (ValidateTokenResponse, error) {
	claims, err := m.service.ValidateToken(ctx, req.Token)
	if err != nil {
		errMsg := "invalid token"
		if errors.Is(err, ErrExpiredToken) {
			errMsg = "token expired"
		}
		return ValidateTokenResponse{
			Valid: false,
			Error: errMsg,
		}, nil
	}

	return ValidateTokenResponse{
		Valid:     true,
		Username:  claims.Username,
		TokenID:   claims.TokenID,
		ExpiresAt: claims.ExpiresAt,
	}, nil
}
