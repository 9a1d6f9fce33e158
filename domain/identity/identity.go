package identity

import "time"

// Claims is the caller identity asserted by a validated bearer token.
type Claims struct {
	Username  string    `json:"username"`
	TokenID   string    `json:"token_id,omitempty"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Token is a signed bearer token returned by a successful login.
type Token struct {
	Value     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Credential is a transient username/password pair submitted at login.
type Credential struct {
	Username string `json:"username" validate:"required,notblank,max=50"`
	Password string `json:"password" validate:"required,notblank,max=100"`
}
