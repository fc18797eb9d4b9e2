package session_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/irtassedat/qrmenu-gateway/internal/backend"
	"github.com/irtassedat/qrmenu-gateway/internal/session"
)

func newEchoContext(req *http.Request) (echo.Context, *httptest.ResponseRecorder) {
	rec := httptest.NewRecorder()
	return echo.New().NewContext(req, rec), rec
}

func testCodec() *session.CookieCodec {
	return &session.CookieCodec{
		Secret: []byte("0123456789abcdef"),
		Name:   "_qrmenu_session",
	}
}

func testSession() *session.Session {
	return &session.Session{
		ID:        "sess-1",
		Token:     "tok-123",
		User:      backend.User{ID: 1, Username: "demo", Role: backend.RoleSuperAdmin},
		ExpiresAt: time.Now().Add(time.Hour).Unix(),
	}
}

func TestCookieCodec(t *testing.T) {
	t.Run("round-trips the session id", func(t *testing.T) {
		codec := testCodec()

		c, rec := newEchoContext(httptest.NewRequest(http.MethodPost, "/auth/login", nil))
		require.NoError(t, codec.Write(c, testSession()))

		cookies := rec.Result().Cookies()
		require.Len(t, cookies, 1)
		require.True(t, cookies[0].HttpOnly)

		req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
		req.AddCookie(cookies[0])
		c2, _ := newEchoContext(req)

		id, err := codec.Read(c2)
		require.NoError(t, err)
		require.Equal(t, "sess-1", id)
	})

	t.Run("missing cookie is invalid", func(t *testing.T) {
		c, _ := newEchoContext(httptest.NewRequest(http.MethodGet, "/auth/me", nil))

		_, err := testCodec().Read(c)
		require.ErrorIs(t, err, session.ErrInvalidSession)
	})

	t.Run("tampered cookie is invalid", func(t *testing.T) {
		codec := testCodec()

		c, rec := newEchoContext(httptest.NewRequest(http.MethodPost, "/auth/login", nil))
		require.NoError(t, codec.Write(c, testSession()))

		cookie := rec.Result().Cookies()[0]
		cookie.Value += "x"

		req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
		req.AddCookie(cookie)
		c2, _ := newEchoContext(req)

		_, err := codec.Read(c2)
		require.ErrorIs(t, err, session.ErrInvalidSession)
	})

	t.Run("cookie signed with another secret is invalid", func(t *testing.T) {
		codec := testCodec()

		c, rec := newEchoContext(httptest.NewRequest(http.MethodPost, "/auth/login", nil))
		require.NoError(t, codec.Write(c, testSession()))

		other := &session.CookieCodec{Secret: []byte("fedcba9876543210"), Name: codec.Name}

		req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
		req.AddCookie(rec.Result().Cookies()[0])
		c2, _ := newEchoContext(req)

		_, err := other.Read(c2)
		require.ErrorIs(t, err, session.ErrInvalidSession)
	})
}
