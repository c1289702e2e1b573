package platform

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/FACorreiaa/pos-templui/internal/pkg/config"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, jwtSecret string) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(config.PlatformConfig{
		URL:            srv.URL,
		AnonKey:        "anon-key",
		JWTSecret:      jwtSecret,
		RequestTimeout: 2 * time.Second,
		DeleteFunction: "delete-user",
	}, zap.NewNop())
}

func signedToken(t *testing.T, secret string, exp time.Time) string {
	t.Helper()
	claims := AccessClaims{
		Email: "admin@example.com",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return s
}

func TestClient_GetUser(t *testing.T) {
	t.Run("live session", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/auth/v1/user", r.URL.Path)
			assert.Equal(t, "Bearer token-1", r.Header.Get("Authorization"))
			assert.Equal(t, "anon-key", r.Header.Get("apikey"))
			_ = json.NewEncoder(w).Encode(map[string]any{
				"id":            "user-1",
				"email":         "admin@example.com",
				"user_metadata": map[string]any{"role": "admin"},
			})
		}, "")

		user, err := client.GetUser(context.Background(), "token-1")
		require.NoError(t, err)
		assert.Equal(t, "user-1", user.ID)
		assert.Equal(t, "admin", user.Role())
	})

	t.Run("unauthorized maps to ErrNoSession", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"msg":"invalid JWT"}`))
		}, "")

		_, err := client.GetUser(context.Background(), "stale")
		assert.ErrorIs(t, err, ErrNoSession)
	})

	t.Run("server error stays a remote error", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}, "")

		_, err := client.GetUser(context.Background(), "token")
		require.Error(t, err)
		assert.False(t, errors.Is(err, ErrNoSession))
		var apiErr *APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, http.StatusBadGateway, apiErr.Status)
	})

	t.Run("locally expired token skips the network", func(t *testing.T) {
		called := false
		client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
			called = true
		}, "project-secret")

		token := signedToken(t, "project-secret", time.Now().Add(-time.Minute))
		_, err := client.GetUser(context.Background(), token)
		assert.ErrorIs(t, err, ErrNoSession)
		assert.False(t, called)
	})

	t.Run("empty token", func(t *testing.T) {
		client := newTestClient(t, func(http.ResponseWriter, *http.Request) {}, "")
		_, err := client.GetUser(context.Background(), "")
		assert.ErrorIs(t, err, ErrNoSession)
	})
}

func TestClient_SignUp(t *testing.T) {
	t.Run("bare user response", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/auth/v1/signup", r.URL.Path)
			var body map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "new@example.com", body["email"])
			assert.Equal(t, map[string]any{"role": "cashier"}, body["data"])
			_, _ = w.Write([]byte(`{"id":"acc-1","email":"new@example.com"}`))
		}, "")

		user, err := client.SignUp(context.Background(), "new@example.com", "secret1", map[string]any{"role": "cashier"})
		require.NoError(t, err)
		assert.Equal(t, "acc-1", user.ID)
	})

	t.Run("session wrapped response", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"access_token":"a","user":{"id":"acc-2","email":"x@example.com"}}`))
		}, "")

		user, err := client.SignUp(context.Background(), "x@example.com", "secret1", nil)
		require.NoError(t, err)
		assert.Equal(t, "acc-2", user.ID)
	})

	t.Run("already registered", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusUnprocessableEntity)
			_, _ = w.Write([]byte(`{"error_code":"user_already_exists","msg":"User already registered"}`))
		}, "")

		_, err := client.SignUp(context.Background(), "x@example.com", "secret1", nil)
		var apiErr *APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, "user_already_exists", apiErr.Code)
		assert.Equal(t, "User already registered", apiErr.Message)
	})
}

func TestClient_SignInAndRefresh(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("grant_type") {
		case "password":
			_, _ = w.Write([]byte(`{"access_token":"a1","refresh_token":"r1","expires_in":3600,"user":{"id":"u1"}}`))
		case "refresh_token":
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"invalid_grant","error_description":"Refresh Token Not Found"}`))
		}
	}, "")

	sess, err := client.SignInWithPassword(context.Background(), "a@example.com", "pw")
	require.NoError(t, err)
	assert.Equal(t, "a1", sess.AccessToken)
	assert.WithinDuration(t, time.Now().Add(time.Hour), sess.ExpiresAt, 5*time.Second)

	_, err = client.Refresh(context.Background(), "r1")
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestClient_DeleteUserAndSignOut(t *testing.T) {
	var paths []string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		if r.URL.Path == "/auth/v1/logout" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.WriteHeader(http.StatusOK)
	}, "")

	require.NoError(t, client.DeleteUser(context.Background(), "admin-token", "acc-9"))
	require.NoError(t, client.SignOut(context.Background(), "dead-token"))
	assert.Equal(t, []string{"/functions/v1/delete-user", "/auth/v1/logout"}, paths)
}
