package backend_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/irtassedat/qrmenu-gateway/internal/backend"
)

func newClient(t *testing.T, handler http.Handler) *backend.Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return backend.New(srv.URL, 5*time.Second, zerolog.Nop())
}

func TestClient_Login(t *testing.T) {
	t.Run("success parses user, token and expiresIn", func(t *testing.T) {
		client := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, http.MethodPost, r.Method)
			require.Equal(t, "/api/auth/login", r.URL.Path)
			require.Empty(t, r.Header.Get("Authorization"))

			var creds map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&creds))
			require.Equal(t, "demo", creds["username"])

			json.NewEncoder(w).Encode(map[string]any{
				"user":      map[string]any{"id": 1, "username": "demo", "email": "demo@example.com", "role": "super_admin"},
				"token":     "tok-123",
				"expiresIn": "1d",
			})
		}))

		result, err := client.Login(context.Background(), "demo", "secret")
		require.NoError(t, err)
		require.Equal(t, "tok-123", result.Token)
		require.Equal(t, "1d", result.ExpiresIn)
		require.Equal(t, backend.RoleSuperAdmin, result.User.Role)
	})

	t.Run("rejected credentials surface the backend message verbatim", func(t *testing.T) {
		client := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"error": "invalid credentials"}`))
		}))

		_, err := client.Login(context.Background(), "demo", "wrong")
		require.Error(t, err)

		var authErr *backend.AuthenticationError
		require.ErrorAs(t, err, &authErr)
		require.Equal(t, "invalid credentials", authErr.Message)
		require.True(t, backend.IsUnauthorized(err))
	})

	t.Run("empty error body falls back to a generic message", func(t *testing.T) {
		client := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		}))

		_, err := client.Login(context.Background(), "demo", "wrong")

		var authErr *backend.AuthenticationError
		require.ErrorAs(t, err, &authErr)
		require.NotEmpty(t, authErr.Message)
	})
}

func TestClient_ErrorTaxonomy(t *testing.T) {
	t.Run("422 becomes a ValidationError", func(t *testing.T) {
		client := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnprocessableEntity)
			w.Write([]byte(`{"message": "password too short"}`))
		}))

		err := client.ChangePassword(context.Background(), "tok", "old", "new")

		var valErr *backend.ValidationError
		require.ErrorAs(t, err, &valErr)
		require.Equal(t, "password too short", valErr.Message)
	})

	t.Run("unreachable backend becomes a NetworkError", func(t *testing.T) {
		// Port 1 refuses connections
		client := backend.New("http://127.0.0.1:1", time.Second, zerolog.Nop())

		_, err := client.Me(context.Background(), "tok")

		var netErr *backend.NetworkError
		require.ErrorAs(t, err, &netErr)
		require.False(t, backend.IsUnauthorized(err))
	})

	t.Run("403 is an AuthenticationError but not unauthorized", func(t *testing.T) {
		client := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
		}))

		_, err := client.Me(context.Background(), "tok")

		var authErr *backend.AuthenticationError
		require.ErrorAs(t, err, &authErr)
		require.False(t, backend.IsUnauthorized(err))
	})
}

func TestClient_BearerToken(t *testing.T) {
	var gotAuth string
	client := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`[]`))
	}))

	_, err := client.Branches(context.Background(), "tok-abc")
	require.NoError(t, err)
	require.Equal(t, "Bearer tok-abc", gotAuth)

	// Public calls carry no token at all
	_, err = client.Products(context.Background(), "", 3)
	require.NoError(t, err)
	require.Empty(t, gotAuth)
}
