package guard

import (
	"net/http"
	"net/url"

	"github.com/labstack/echo/v4"

	"github.com/irtassedat/qrmenu-gateway/internal/backend"
	"github.com/irtassedat/qrmenu-gateway/internal/session"
)

const contextKeySession = "qrmenu.session"

// Guard gates the admin route tree. It holds no state of its own: every
// evaluation reads the session manager through the request's cookie.
type Guard struct {
	Manager *session.Manager
	Cookie  *session.CookieCodec

	LoginPath         string
	AdminHome         string
	BranchManagerHome string
}

// Require returns middleware that only lets authenticated users through,
// optionally restricted to the given roles. An empty role list means any
// authenticated user. Anonymous requests bounce to the login page;
// authenticated users with the wrong role are silently sent to a landing
// page their role is allowed on, never an explicit forbidden message.
func (g *Guard) Require(allowedRoles ...backend.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			// An outer Require may have resolved the session already
			sess, ok := c.Get(contextKeySession).(*session.Session)
			if !ok {
				id, err := g.Cookie.Read(c)
				if err != nil {
					return g.redirectToLogin(c)
				}

				sess, err = g.Manager.Get(c.Request().Context(), id)
				if err != nil {
					g.Cookie.Clear(c)
					return g.redirectToLogin(c)
				}
			}

			if len(allowedRoles) > 0 && !roleAllowed(sess.User.Role, allowedRoles) {
				return c.Redirect(http.StatusFound, g.landingFor(sess.User.Role))
			}

			c.Set(contextKeySession, sess)
			return next(c)
		}
	}
}

func (g *Guard) redirectToLogin(c echo.Context) error {
	return c.Redirect(http.StatusFound, g.LoginPath+"?redir="+url.QueryEscape(c.Request().URL.Path))
}

func (g *Guard) landingFor(role backend.Role) string {
	if role == backend.RoleBranchManager {
		return g.BranchManagerHome
	}
	return g.AdminHome
}

func roleAllowed(role backend.Role, allowed []backend.Role) bool {
	for _, r := range allowed {
		if r == role {
			return true
		}
	}
	return false
}

// CurrentSession returns the session Require stashed on the context. Only
// valid inside a guarded handler.
func CurrentSession(c echo.Context) *session.Session {
	sess, _ := c.Get(contextKeySession).(*session.Session)
	return sess
}
