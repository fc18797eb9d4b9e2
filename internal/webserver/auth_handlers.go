package webserver

import (
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/labstack/echo/v4"

	"github.com/irtassedat/qrmenu-gateway/internal/guard"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (r loginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Username, validation.Required),
		validation.Field(&r.Password, validation.Required),
	)
}

func (w *Webserver) loginHandler(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body"})
	}

	if err := req.Validate(); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, errorResponse{Error: err.Error()})
	}

	sess, err := w.manager.Login(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		return w.renderError(c, err)
	}

	if err := w.cookies.Write(c, sess); err != nil {
		w.log.Error().Err(err).Msg("couldn't write session cookie")
		// The backend session exists but the browser can't reference it;
		// clean up rather than strand it
		w.manager.Logout(c.Request().Context(), sess.ID)
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: "could not start your session"})
	}

	return c.JSON(http.StatusOK, sess.User)
}

func (w *Webserver) logoutHandler(c echo.Context) error {
	// Safe to call logged out: a missing or garbage cookie just means
	// there is nothing to destroy
	if id, err := w.cookies.Read(c); err == nil {
		w.manager.Logout(c.Request().Context(), id)
	}

	w.cookies.Clear(c)
	return c.NoContent(http.StatusNoContent)
}

func (w *Webserver) meHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, guard.CurrentSession(c).User)
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

func (r changePasswordRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.CurrentPassword, validation.Required),
		validation.Field(&r.NewPassword, validation.Required, validation.Length(8, 128)),
	)
}

func (w *Webserver) changePasswordHandler(c echo.Context) error {
	var req changePasswordRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body"})
	}

	if err := req.Validate(); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, errorResponse{Error: err.Error()})
	}

	sess := guard.CurrentSession(c)
	if err := w.manager.ChangePassword(c.Request().Context(), sess.ID, req.CurrentPassword, req.NewPassword); err != nil {
		return w.renderError(c, err)
	}

	return c.NoContent(http.StatusNoContent)
}
