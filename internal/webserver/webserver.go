package webserver

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/irtassedat/qrmenu-gateway/internal/backend"
	"github.com/irtassedat/qrmenu-gateway/internal/config"
	"github.com/irtassedat/qrmenu-gateway/internal/guard"
	"github.com/irtassedat/qrmenu-gateway/internal/session"
	"github.com/irtassedat/qrmenu-gateway/internal/telemetry"
)

type Webserver struct {
	conf    *config.Config
	log     zerolog.Logger
	e       *echo.Echo
	api     *backend.Client
	manager *session.Manager
	cookies *session.CookieCodec
	guard   *guard.Guard
}

func New(conf *config.Config, logger zerolog.Logger) (*Webserver, error) {
	api := backend.New(conf.Backend.URL, conf.BackendTimeout(), logger)

	store, err := buildStore(conf)
	if err != nil {
		return nil, err
	}

	manager := session.NewManager(store, api, logger, session.Options{
		RefreshInterval:  conf.RefreshInterval(),
		RefreshThreshold: conf.RefreshThreshold(),
	})

	cookies := &session.CookieCodec{
		Secret: []byte(conf.Session.Cookie.Secret),
		Name:   conf.Session.Cookie.Name,
		Domain: conf.Session.Cookie.Domain,
		Secure: conf.Session.Cookie.Secure,
	}

	w := &Webserver{
		conf:    conf,
		log:     logger.With().Str("component", "webserver").Logger(),
		e:       echo.New(),
		api:     api,
		manager: manager,
		cookies: cookies,
		guard: &guard.Guard{
			Manager:           manager,
			Cookie:            cookies,
			LoginPath:         conf.Routes.LoginPath,
			AdminHome:         conf.Routes.AdminHome,
			BranchManagerHome: conf.Routes.BranchManagerHome,
		},
	}

	w.e.HideBanner = true
	w.e.Use(middleware.Recover())
	w.e.Use(middleware.Logger())
	w.e.Use(telemetry.New(conf.Env, logger).Middleware())

	w.registerRoutes()

	return w, nil
}

func buildStore(conf *config.Config) (session.Store, error) {
	switch conf.Session.Store {
	case "redis":
		store := session.NewRedisStore(conf.Session.Redis.Addr, conf.Session.Redis.Password, conf.Session.Redis.DB)
		if err := store.Ping(context.Background()); err != nil {
			return nil, fmt.Errorf("couldn't reach redis at %s: %w", conf.Session.Redis.Addr, err)
		}
		return store, nil
	case "memory":
		return session.NewMemoryStore(), nil
	}

	return nil, fmt.Errorf("unknown session store %q", conf.Session.Store)
}

func (w *Webserver) ServeHTTP(rw http.ResponseWriter, r *http.Request) {
	w.e.ServeHTTP(rw, r)
}

// Run clears stale sessions, arms the sweep, and serves until the listener
// dies.
func (w *Webserver) Run() error {
	if err := w.manager.Init(context.Background()); err != nil {
		return err
	}

	if err := w.manager.StartSweep(); err != nil {
		return err
	}
	defer w.manager.Stop()

	return w.e.Start(fmt.Sprintf(":%d", w.conf.ListenPort))
}

type errorResponse struct {
	Error string `json:"error"`
}

// renderError is the single place API errors become user-facing messages
// (the toast equivalent). Nothing propagates past here; the only global
// side effect in the system, forced logout on a refresh 401, lives in the
// session manager, not in handlers.
func (w *Webserver) renderError(c echo.Context, err error) error {
	var authErr *backend.AuthenticationError
	var valErr *backend.ValidationError
	var netErr *backend.NetworkError

	switch {
	case errors.As(err, &authErr):
		return c.JSON(http.StatusUnauthorized, errorResponse{Error: authErr.Message})
	case errors.As(err, &valErr):
		return c.JSON(http.StatusUnprocessableEntity, errorResponse{Error: valErr.Message})
	case errors.As(err, &netErr):
		w.log.Warn().Err(netErr.Err).Msg("backend unreachable")
		return c.JSON(http.StatusBadGateway, errorResponse{Error: "could not reach the server"})
	}

	w.log.Error().Err(err).Msg("unexpected error")
	return c.JSON(http.StatusInternalServerError, errorResponse{Error: "something went wrong"})
}
