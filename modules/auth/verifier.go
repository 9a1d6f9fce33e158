package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/example/task-todo-api/domain/identity"
	"github.com/gofiber/fiber/v2"
)

// CredentialVerifier decides whether a credential identifies a trusted user.
// A false result with a nil error is a rejection; an error means the decision
// could not be made.
type CredentialVerifier interface {
	Verify(ctx context.Context, cred identity.Credential) (bool, error)
}

// FixedCredentialVerifier trusts exactly one username/password pair. Only a
// bcrypt hash of the password is kept in memory.
type FixedCredentialVerifier struct {
	username     string
	passwordHash string
	hasher       *PasswordHasher
}

var _ CredentialVerifier = (*FixedCredentialVerifier)(nil)

// NewFixedCredentialVerifier hashes password and returns a verifier for the pair.
func NewFixedCredentialVerifier(username, password string, hasher *PasswordHasher) (*FixedCredentialVerifier, error) {
	if username == "" || password == "" {
		return nil, errors.New("fixed credential requires username and password")
	}
	hash, err := hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash trusted password: %w", err)
	}
	return &FixedCredentialVerifier{
		username:     username,
		passwordHash: hash,
		hasher:       hasher,
	}, nil
}

// Verify reports whether cred matches the trusted pair exactly.
func (v *FixedCredentialVerifier) Verify(_ context.Context, cred identity.Credential) (bool, error) {
	userOK := subtle.ConstantTimeCompare([]byte(cred.Username), []byte(v.username)) == 1
	// Always run the hash comparison so timing does not reveal a username match.
	passOK := v.hasher.Verify(cred.Password, v.passwordHash)
	return userOK && passOK, nil
}

// IdentityProviderVerifier delegates verification to an external HTTP
// identity provider. The provider receives {"username","password"} as JSON
// and answers 200 to accept, 401 or 403 to reject.
type IdentityProviderVerifier struct {
	url     string
	timeout time.Duration
}

var _ CredentialVerifier = (*IdentityProviderVerifier)(nil)

// NewIdentityProviderVerifier creates a verifier that POSTs to url.
func NewIdentityProviderVerifier(url string, timeout time.Duration) *IdentityProviderVerifier {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &IdentityProviderVerifier{url: url, timeout: timeout}
}

type identityProviderRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Verify asks the identity provider about cred.
func (v *IdentityProviderVerifier) Verify(ctx context.Context, cred identity.Credential) (bool, error) {
	timeout := v.timeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			timeout = remaining
		}
	}
	if timeout <= 0 {
		return false, context.DeadlineExceeded
	}

	agent := fiber.Post(v.url).
		JSON(identityProviderRequest{Username: cred.Username, Password: cred.Password}).
		Timeout(timeout)

	code, _, errs := agent.Bytes()
	if len(errs) > 0 {
		return false, fmt.Errorf("identity provider request failed: %w", errors.Join(errs...))
	}

	switch code {
	case fiber.StatusOK:
		return true, nil
	case fiber.StatusUnauthorized, fiber.StatusForbidden:
		return false, nil
	default:
		return false, fmt.Errorf("identity provider returned status %d", code)
	}
}
