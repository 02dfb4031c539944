package identity

import (
	"github.com/golang-jwt/jwt/v5"
)

// Claims are the token claims issued by the external identity provider.
// The service verifies them but never issues tokens itself.
type Claims struct {
	IdentityID int64    `json:"identity_id"`
	Email      string   `json:"email"`
	Name       string   `json:"name,omitempty"`
	Photo      string   `json:"photo,omitempty"`
	Roles      []string `json:"roles,omitempty"`
	jwt.RegisteredClaims
}

// HasRole checks if the claims contain a specific role
func (c *Claims) HasRole(role string) bool {
	for _, r := range c.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// IsAdmin checks if user is an admin (including super admin)
func (c *Claims) IsAdmin() bool {
	return c.HasRole("admin") || c.HasRole("super_admin")
}

// VerifyAudience checks if the expected audience is listed in the claims.
func (c *Claims) VerifyAudience(audience string, required bool) bool {
	if len(c.Audience) == 0 {
		return !required
	}

	for _, aud := range c.Audience {
		if aud == audience {
			return true
		}
	}

	return false
}
