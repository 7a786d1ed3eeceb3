package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// IdentityPayload captures what the identity provider asserts about a user.
type IdentityPayload struct {
	UserID string
	Email  string
	Name   string
	Phone  *string
	TTL    time.Duration
	JTI    string
}

// IdentityClaims is the typed JWT minted by the identity provider. The user id
// travels in the standard subject claim.
type IdentityClaims struct {
	Email string  `json:"email"`
	Name  string  `json:"name"`
	Phone *string `json:"phone,omitempty"`
	jwt.RegisteredClaims
}

// UserID returns the subject claim.
func (c *IdentityClaims) UserID() string {
	return c.Subject
}

// ExpiresAtTime returns the expiry or the zero time when absent.
func (c *IdentityClaims) ExpiresAtTime() time.Time {
	if c.ExpiresAt == nil {
		return time.Time{}
	}
	return c.ExpiresAt.Time
}
