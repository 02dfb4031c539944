package middleware

import (
	"net/http"

	"toolhub-service/internal/pkg/response"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

// OperatorKey guards operational endpoints (cleanup jobs) behind a
// shared key. Only the bcrypt hash of the key is configured on the
// server.
func OperatorKey(keyHash string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if keyHash == "" {
			response.Error(c, http.StatusForbidden, "operator endpoints are disabled", nil)
			return
		}

		key := c.GetHeader("X-Operator-Key")
		if key == "" {
			response.Error(c, http.StatusUnauthorized, "missing operator key", nil)
			return
		}

		if err := bcrypt.CompareHashAndPassword([]byte(keyHash), []byte(key)); err != nil {
			response.Error(c, http.StatusUnauthorized, "invalid operator key", nil)
			return
		}

		c.Next()
	}
}
