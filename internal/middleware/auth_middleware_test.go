package middleware

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"toolhub-service/internal/domain/user"
	"toolhub-service/internal/pkg/identity"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const (
	testIssuer   = "https://id.example.com"
	testAudience = "toolhub"
)

type fakeProfileStore struct {
	upserts []user.User
	err     error
}

func (f *fakeProfileStore) Upsert(ctx context.Context, u *user.User) error {
	if f.err != nil {
		return f.err
	}
	f.upserts = append(f.upserts, *u)
	return nil
}

func signToken(t *testing.T, key *rsa.PrivateKey, claims *identity.Claims) string {
	t.Helper()
	claims.Issuer = testIssuer
	claims.Audience = jwt.ClaimStrings{testAudience}
	claims.ExpiresAt = jwt.NewNumericDate(time.Now().Add(time.Hour))
	token, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(key)
	require.NoError(t, err)
	return token
}

func TestAuth(t *testing.T) {
	t.Run("valid token sets identity context and syncs the profile", func(t *testing.T) {
		gin.SetMode(gin.TestMode)
		key, err := rsa.GenerateKey(rand.Reader, 2048)
		require.NoError(t, err)

		profiles := &fakeProfileStore{}
		m := NewAuthMiddleware(identity.NewVerifier(&key.PublicKey, testIssuer, testAudience), profiles, zap.NewNop())

		var gotID int64
		var gotEmail string
		engine := gin.New()
		engine.GET("/me", m.Auth(), func(c *gin.Context) {
			gotID = MustGetIdentityID(c)
			gotEmail = MustGetEmail(c)
			c.Status(http.StatusOK)
		})

		token := signToken(t, key, &identity.Claims{
			IdentityID: 42,
			Email:      "u@example.com",
			Name:       "Ada",
		})

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		engine.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, int64(42), gotID)
		assert.Equal(t, "u@example.com", gotEmail)

		require.Len(t, profiles.upserts, 1)
		synced := profiles.upserts[0]
		assert.Equal(t, int64(42), synced.ID)
		assert.Equal(t, "u@example.com", synced.Email)
		assert.True(t, synced.Name.Valid)
		assert.Equal(t, "Ada", synced.Name.String)

		// Photo was absent from the claims, so the column stays NULL
		assert.False(t, synced.Photo.Valid)
	})

	t.Run("missing token is rejected", func(t *testing.T) {
		gin.SetMode(gin.TestMode)
		key, err := rsa.GenerateKey(rand.Reader, 2048)
		require.NoError(t, err)

		m := NewAuthMiddleware(identity.NewVerifier(&key.PublicKey, testIssuer, testAudience), &fakeProfileStore{}, zap.NewNop())
		engine := gin.New()
		engine.GET("/me", m.Auth(), func(c *gin.Context) { c.Status(http.StatusOK) })

		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/me", nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("token signed by another key is rejected", func(t *testing.T) {
		gin.SetMode(gin.TestMode)
		key, err := rsa.GenerateKey(rand.Reader, 2048)
		require.NoError(t, err)
		otherKey, err := rsa.GenerateKey(rand.Reader, 2048)
		require.NoError(t, err)

		m := NewAuthMiddleware(identity.NewVerifier(&key.PublicKey, testIssuer, testAudience), &fakeProfileStore{}, zap.NewNop())
		engine := gin.New()
		engine.GET("/me", m.Auth(), func(c *gin.Context) { c.Status(http.StatusOK) })

		token := signToken(t, otherKey, &identity.Claims{IdentityID: 42, Email: "u@example.com"})

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		engine.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("profile sync failure does not block the request", func(t *testing.T) {
		gin.SetMode(gin.TestMode)
		key, err := rsa.GenerateKey(rand.Reader, 2048)
		require.NoError(t, err)

		profiles := &fakeProfileStore{err: errors.New("database down")}
		m := NewAuthMiddleware(identity.NewVerifier(&key.PublicKey, testIssuer, testAudience), profiles, zap.NewNop())
		engine := gin.New()
		engine.GET("/me", m.Auth(), func(c *gin.Context) { c.Status(http.StatusOK) })

		token := signToken(t, key, &identity.Claims{IdentityID: 42, Email: "u@example.com"})

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		engine.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	})
}
