package webserver_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/irtassedat/qrmenu-gateway/internal/config"
	"github.com/irtassedat/qrmenu-gateway/internal/webserver"
)

// fakeChainBackend mimics the REST backend the gateway fronts.
func fakeChainBackend(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()

	mux.HandleFunc("/api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var creds map[string]string
		json.NewDecoder(r.Body).Decode(&creds)

		role := "super_admin"
		if strings.HasPrefix(creds["username"], "manager") {
			role = "branch_manager"
		}

		if creds["password"] != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"error": "invalid credentials"}`))
			return
		}

		json.NewEncoder(w).Encode(map[string]any{
			"user":      map[string]any{"id": 1, "username": creds["username"], "email": "u@example.com", "role": role, "branch_id": 4},
			"token":     "tok-" + creds["username"],
			"expiresIn": "1h",
		})
	})

	mux.HandleFunc("/api/branches", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]map[string]any{{"id": 1, "name": "Central", "is_active": true}})
	})
	mux.HandleFunc("/api/templates/price", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]map[string]any{{"id": 1, "name": "Standard"}})
	})
	mux.HandleFunc("/api/integrations", func(w http.ResponseWriter, r *http.Request) {
		// Fails on demand so the dashboard join can be exercised
		if r.Header.Get("Authorization") == "Bearer tok-broken" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode([]map[string]any{{"id": 1, "provider": "pos", "enabled": true}})
	})
	mux.HandleFunc("/api/products", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]map[string]any{{"id": 9, "branch_id": 4, "name": "Flat White", "price": 4.5}})
	})
	mux.HandleFunc("/api/categories", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]map[string]any{{"id": 2, "name": "Coffee"}})
	})
	mux.HandleFunc("/api/branches/4", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"id": 4, "name": "Harbour", "is_active": true})
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newGateway(t *testing.T) *webserver.Webserver {
	t.Helper()

	backendSrv := fakeChainBackend(t)

	conf := new(config.Config)
	conf.BaseURL = "https://menu.example.com"
	conf.Env = "development"
	conf.Backend.URL = backendSrv.URL
	conf.Backend.TimeoutSeconds = 5
	conf.Session.Store = "memory"
	conf.Session.RefreshInterval = 60
	conf.Session.RefreshThreshold = 900
	conf.Session.Cookie.Secret = "0123456789abcdef"
	conf.Session.Cookie.Name = "_qrmenu_session"
	conf.Routes.LoginPath = "/login"
	conf.Routes.AdminHome = "/admin"
	conf.Routes.BranchManagerHome = "/admin/branch-products"

	gw, err := webserver.New(conf, zerolog.Nop())
	require.NoError(t, err)
	return gw
}

func login(t *testing.T, gw *webserver.Webserver, username, password string) (*httptest.ResponseRecorder, *http.Cookie) {
	t.Helper()

	body := `{"username": "` + username + `", "password": "` + password + `"}`
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	gw.ServeHTTP(rec, req)

	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == "_qrmenu_session" && cookie.Value != "" {
			return rec, cookie
		}
	}
	return rec, nil
}

func TestLoginEndpoint(t *testing.T) {
	t.Run("successful login sets a session cookie and returns the user", func(t *testing.T) {
		gw := newGateway(t)

		rec, cookie := login(t, gw, "demo", "secret")
		require.Equal(t, http.StatusOK, rec.Code)
		require.NotNil(t, cookie)

		var user map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &user))
		require.Equal(t, "demo", user["username"])
	})

	t.Run("wrong password surfaces the backend message and sets no cookie", func(t *testing.T) {
		gw := newGateway(t)

		rec, cookie := login(t, gw, "demo", "wrong")
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.Nil(t, cookie)
		require.JSONEq(t, `{"error": "invalid credentials"}`, rec.Body.String())
	})

	t.Run("missing fields are rejected before reaching the backend", func(t *testing.T) {
		gw := newGateway(t)

		rec, cookie := login(t, gw, "demo", "")
		require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		require.Nil(t, cookie)
	})
}

func TestSessionEndpoints(t *testing.T) {
	t.Run("me echoes the logged-in user", func(t *testing.T) {
		gw := newGateway(t)
		_, cookie := login(t, gw, "demo", "secret")
		require.NotNil(t, cookie)

		req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
		req.AddCookie(cookie)
		rec := httptest.NewRecorder()
		gw.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)

		var user map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &user))
		require.Equal(t, "demo", user["username"])
	})

	t.Run("me without a session bounces to login", func(t *testing.T) {
		gw := newGateway(t)

		req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
		rec := httptest.NewRecorder()
		gw.ServeHTTP(rec, req)

		require.Equal(t, http.StatusFound, rec.Code)
		require.Contains(t, rec.Header().Get("Location"), "/login")
	})

	t.Run("logout then me is anonymous again, and logging out twice is fine", func(t *testing.T) {
		gw := newGateway(t)
		_, cookie := login(t, gw, "demo", "secret")
		require.NotNil(t, cookie)

		for i := 0; i < 2; i++ {
			req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
			req.AddCookie(cookie)
			rec := httptest.NewRecorder()
			gw.ServeHTTP(rec, req)
			require.Equal(t, http.StatusNoContent, rec.Code)
		}

		req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
		req.AddCookie(cookie)
		rec := httptest.NewRecorder()
		gw.ServeHTTP(rec, req)
		require.Equal(t, http.StatusFound, rec.Code)
	})
}

func TestRoleGating(t *testing.T) {
	t.Run("branch manager is redirected off super admin screens", func(t *testing.T) {
		gw := newGateway(t)
		_, cookie := login(t, gw, "manager1", "secret")
		require.NotNil(t, cookie)

		req := httptest.NewRequest(http.MethodGet, "/admin/users", nil)
		req.AddCookie(cookie)
		rec := httptest.NewRecorder()
		gw.ServeHTTP(rec, req)

		require.Equal(t, http.StatusFound, rec.Code)
		require.Equal(t, "/admin/branch-products", rec.Header().Get("Location"))
	})

	t.Run("branch manager can use shared screens", func(t *testing.T) {
		gw := newGateway(t)
		_, cookie := login(t, gw, "manager1", "secret")
		require.NotNil(t, cookie)

		req := httptest.NewRequest(http.MethodGet, "/admin/branch-products", nil)
		req.AddCookie(cookie)
		rec := httptest.NewRecorder()
		gw.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("super admin can use super admin screens", func(t *testing.T) {
		gw := newGateway(t)
		_, cookie := login(t, gw, "demo", "secret")
		require.NotNil(t, cookie)

		req := httptest.NewRequest(http.MethodGet, "/admin/branches", nil)
		req.AddCookie(cookie)
		rec := httptest.NewRecorder()
		gw.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestDashboard(t *testing.T) {
	t.Run("joins its three fetches", func(t *testing.T) {
		gw := newGateway(t)
		_, cookie := login(t, gw, "demo", "secret")
		require.NotNil(t, cookie)

		req := httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil)
		req.AddCookie(cookie)
		rec := httptest.NewRecorder()
		gw.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)

		var res struct {
			Branches     []map[string]any `json:"branches"`
			Templates    []map[string]any `json:"templates"`
			Integrations []map[string]any `json:"integrations"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
		require.Len(t, res.Branches, 1)
		require.Len(t, res.Templates, 1)
		require.Len(t, res.Integrations, 1)
	})

	t.Run("fails as a group when one fetch fails", func(t *testing.T) {
		gw := newGateway(t)
		// The fake backend 500s /api/integrations for this user's token
		_, cookie := login(t, gw, "broken", "secret")
		require.NotNil(t, cookie)

		req := httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil)
		req.AddCookie(cookie)
		rec := httptest.NewRecorder()
		gw.ServeHTTP(rec, req)

		require.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}

func TestPublicMenu(t *testing.T) {
	t.Run("menu joins branch, categories and products", func(t *testing.T) {
		gw := newGateway(t)

		req := httptest.NewRequest(http.MethodGet, "/menu/4", nil)
		rec := httptest.NewRecorder()
		gw.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)

		var res struct {
			Branch     map[string]any   `json:"branch"`
			Categories []map[string]any `json:"categories"`
			Products   []map[string]any `json:"products"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
		require.Equal(t, "Harbour", res.Branch["name"])
		require.Len(t, res.Products, 1)
	})

	t.Run("qr endpoint redirects to the image service", func(t *testing.T) {
		gw := newGateway(t)

		req := httptest.NewRequest(http.MethodGet, "/qr/4", nil)
		rec := httptest.NewRecorder()
		gw.ServeHTTP(rec, req)

		require.Equal(t, http.StatusFound, rec.Code)
		loc := rec.Header().Get("Location")
		require.Contains(t, loc, "api.qrserver.com")
		require.Contains(t, loc, "menu%2F4")
	})

	t.Run("order without items is rejected with form state intact", func(t *testing.T) {
		gw := newGateway(t)

		req := httptest.NewRequest(http.MethodPost, "/confirm", strings.NewReader(`{"branch_id": 4, "items": []}`))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		gw.ServeHTTP(rec, req)

		require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})
}
