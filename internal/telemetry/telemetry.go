package telemetry

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// Collector emits a request event per served request, but only in
// production. Everywhere else it is a no-op, matching the original's
// production-gated telemetry script.
type Collector struct {
	enabled bool
	log     zerolog.Logger
}

func New(env string, logger zerolog.Logger) *Collector {
	return &Collector{
		enabled: env == "production",
		log:     logger.With().Str("component", "telemetry").Logger(),
	}
}

func (t *Collector) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		if !t.enabled {
			return next
		}

		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			t.log.Info().
				Str("method", c.Request().Method).
				Str("path", c.Path()).
				Int("status", c.Response().Status).
				Dur("duration", time.Since(start)).
				Msg("request")

			return err
		}
	}
}
