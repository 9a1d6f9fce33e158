package auth

import (
	"errors"
	"time"

	"github.com/example/task-todo-api/domain/identity"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	// ErrInvalidToken is returned when the token is invalid.
	ErrInvalidToken = errors.New("invalid token")
	// ErrExpiredToken is returned when the token has expired.
	ErrExpiredToken = errors.New("token has expired")
)

// JWTConfig holds token issuer configuration.
type JWTConfig struct {
	SecretKey string
	Issuer    string
	Audience  string
	Lifetime  time.Duration
}

// JWTClaims represents the claims carried by an issued token.
type JWTClaims struct {
	UniqueName string `json:"unique_name"`
	jwt.RegisteredClaims
}

// TokenIssuer signs and validates HS256 bearer tokens.
type TokenIssuer struct {
	config JWTConfig
	now    func() time.Time
}

// NewTokenIssuer creates a new TokenIssuer with the given configuration.
func NewTokenIssuer(config JWTConfig) *TokenIssuer {
	return &TokenIssuer{
		config: config,
		now:    time.Now,
	}
}

// Issue produces a token asserting username, valid for the configured lifetime.
func (i *TokenIssuer) Issue(username string) (*identity.Token, error) {
	now := i.now()
	expiresAt := now.Add(i.config.Lifetime)

	claims := JWTClaims{
		UniqueName: username,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    i.config.Issuer,
			Subject:   username,
			Audience:  jwt.ClaimStrings{i.config.Audience},
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ID:        uuid.New().String(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(i.config.SecretKey))
	if err != nil {
		return nil, err
	}

	return &identity.Token{
		Value:     signed,
		ExpiresAt: expiresAt.UTC().Truncate(time.Second),
	}, nil
}

// Validate checks signature, issuer, audience and expiry, and returns the
// asserted identity.
func (i *TokenIssuer) Validate(tokenString string) (*identity.Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (any, error) {
		return []byte(i.config.SecretKey), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(i.config.Issuer),
		jwt.WithAudience(i.config.Audience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*JWTClaims)
	if !ok || !token.Valid || claims.Subject == "" {
		return nil, ErrInvalidToken
	}

	return &identity.Claims{
		Username:  claims.Subject,
		TokenID:   claims.ID,
		ExpiresAt: claims.ExpiresAt.Time.UTC(),
	}, nil
}
