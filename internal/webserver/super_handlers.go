package webserver

import (
	"errors"
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/labstack/echo/v4"

	"github.com/irtassedat/qrmenu-gateway/internal/backend"
	"github.com/irtassedat/qrmenu-gateway/internal/guard"
)

// Handlers in this file sit behind the super_admin gate.

// --- Branches ---

func (w *Webserver) listBranchesHandler(c echo.Context) error {
	sess := guard.CurrentSession(c)

	branches, err := w.api.Branches(c.Request().Context(), sess.Token)
	if err != nil {
		return w.renderError(c, err)
	}

	return c.JSON(http.StatusOK, branches)
}

type branchRequest struct {
	Name     string `json:"name"`
	Address  string `json:"address"`
	Phone    string `json:"phone"`
	IsActive bool   `json:"is_active"`
}

func (r branchRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required),
	)
}

func (w *Webserver) createBranchHandler(c echo.Context) error {
	sess := guard.CurrentSession(c)

	var req branchRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body"})
	}
	if err := req.Validate(); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, errorResponse{Error: err.Error()})
	}

	branch, err := w.api.CreateBranch(c.Request().Context(), sess.Token, backend.Branch{
		Name:     req.Name,
		Address:  req.Address,
		Phone:    req.Phone,
		IsActive: req.IsActive,
	})
	if err != nil {
		return w.renderError(c, err)
	}

	return c.JSON(http.StatusCreated, branch)
}

func (w *Webserver) updateBranchHandler(c echo.Context) error {
	sess := guard.CurrentSession(c)

	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid branch id"})
	}

	var req branchRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body"})
	}
	if err := req.Validate(); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, errorResponse{Error: err.Error()})
	}

	branch, err := w.api.UpdateBranch(c.Request().Context(), sess.Token, backend.Branch{
		ID:       id,
		Name:     req.Name,
		Address:  req.Address,
		Phone:    req.Phone,
		IsActive: req.IsActive,
	})
	if err != nil {
		return w.renderError(c, err)
	}

	return c.JSON(http.StatusOK, branch)
}

func (w *Webserver) deleteBranchHandler(c echo.Context) error {
	sess := guard.CurrentSession(c)

	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid branch id"})
	}

	if err := w.api.DeleteBranch(c.Request().Context(), sess.Token, id); err != nil {
		return w.renderError(c, err)
	}

	return c.NoContent(http.StatusNoContent)
}

// --- Staff users ---

func (w *Webserver) listUsersHandler(c echo.Context) error {
	sess := guard.CurrentSession(c)

	users, err := w.api.Users(c.Request().Context(), sess.Token)
	if err != nil {
		return w.renderError(c, err)
	}

	return c.JSON(http.StatusOK, users)
}

type userRequest struct {
	Username string       `json:"username"`
	Email    string       `json:"email"`
	Role     backend.Role `json:"role"`
	BranchID int64        `json:"branch_id"`
	Password string       `json:"password"`
}

func (r userRequest) Validate() error {
	err := validation.ValidateStruct(&r,
		validation.Field(&r.Username, validation.Required, validation.Length(3, 30)),
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Role, validation.Required, validation.In(backend.RoleSuperAdmin, backend.RoleBranchManager)),
	)
	if err != nil {
		return err
	}

	if r.Role == backend.RoleBranchManager && r.BranchID == 0 {
		return errors.New("branch_id: cannot be blank for branch managers")
	}

	return nil
}

func (w *Webserver) createUserHandler(c echo.Context) error {
	sess := guard.CurrentSession(c)

	var req userRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body"})
	}
	if err := req.Validate(); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, errorResponse{Error: err.Error()})
	}

	user, err := w.api.CreateUser(c.Request().Context(), sess.Token, backend.StaffUser{
		Username: req.Username,
		Email:    req.Email,
		Role:     req.Role,
		BranchID: req.BranchID,
		Password: req.Password,
	})
	if err != nil {
		return w.renderError(c, err)
	}

	return c.JSON(http.StatusCreated, user)
}

func (w *Webserver) updateUserHandler(c echo.Context) error {
	sess := guard.CurrentSession(c)

	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid user id"})
	}

	var req userRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body"})
	}
	if err := req.Validate(); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, errorResponse{Error: err.Error()})
	}

	user, err := w.api.UpdateUser(c.Request().Context(), sess.Token, backend.StaffUser{
		ID:       id,
		Username: req.Username,
		Email:    req.Email,
		Role:     req.Role,
		BranchID: req.BranchID,
		Password: req.Password,
	})
	if err != nil {
		return w.renderError(c, err)
	}

	return c.JSON(http.StatusOK, user)
}

func (w *Webserver) deleteUserHandler(c echo.Context) error {
	sess := guard.CurrentSession(c)

	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid user id"})
	}

	if err := w.api.DeleteUser(c.Request().Context(), sess.Token, id); err != nil {
		return w.renderError(c, err)
	}

	return c.NoContent(http.StatusNoContent)
}

// --- Categories ---

func (w *Webserver) listCategoriesHandler(c echo.Context) error {
	sess := guard.CurrentSession(c)

	categories, err := w.api.Categories(c.Request().Context(), sess.Token)
	if err != nil {
		return w.renderError(c, err)
	}

	return c.JSON(http.StatusOK, categories)
}

type categoryRequest struct {
	Name      string `json:"name"`
	SortOrder int    `json:"sort_order"`
}

func (r categoryRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required),
	)
}

func (w *Webserver) createCategoryHandler(c echo.Context) error {
	sess := guard.CurrentSession(c)

	var req categoryRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body"})
	}
	if err := req.Validate(); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, errorResponse{Error: err.Error()})
	}

	category, err := w.api.CreateCategory(c.Request().Context(), sess.Token, backend.Category{
		Name:      req.Name,
		SortOrder: req.SortOrder,
	})
	if err != nil {
		return w.renderError(c, err)
	}

	return c.JSON(http.StatusCreated, category)
}

func (w *Webserver) updateCategoryHandler(c echo.Context) error {
	sess := guard.CurrentSession(c)

	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid category id"})
	}

	var req categoryRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body"})
	}
	if err := req.Validate(); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, errorResponse{Error: err.Error()})
	}

	category, err := w.api.UpdateCategory(c.Request().Context(), sess.Token, backend.Category{
		ID:        id,
		Name:      req.Name,
		SortOrder: req.SortOrder,
	})
	if err != nil {
		return w.renderError(c, err)
	}

	return c.JSON(http.StatusOK, category)
}

func (w *Webserver) deleteCategoryHandler(c echo.Context) error {
	sess := guard.CurrentSession(c)

	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid category id"})
	}

	if err := w.api.DeleteCategory(c.Request().Context(), sess.Token, id); err != nil {
		return w.renderError(c, err)
	}

	return c.NoContent(http.StatusNoContent)
}

// --- Price templates ---

func (w *Webserver) listTemplatesHandler(c echo.Context) error {
	sess := guard.CurrentSession(c)

	templates, err := w.api.PriceTemplates(c.Request().Context(), sess.Token)
	if err != nil {
		return w.renderError(c, err)
	}

	return c.JSON(http.StatusOK, templates)
}

type templateRequest struct {
	Name   string             `json:"name"`
	Prices map[string]float64 `json:"prices"`
}

func (r templateRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required),
	)
}

func (w *Webserver) createTemplateHandler(c echo.Context) error {
	sess := guard.CurrentSession(c)

	var req templateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body"})
	}
	if err := req.Validate(); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, errorResponse{Error: err.Error()})
	}

	template, err := w.api.CreatePriceTemplate(c.Request().Context(), sess.Token, backend.PriceTemplate{
		Name:   req.Name,
		Prices: req.Prices,
	})
	if err != nil {
		return w.renderError(c, err)
	}

	return c.JSON(http.StatusCreated, template)
}

func (w *Webserver) updateTemplateHandler(c echo.Context) error {
	sess := guard.CurrentSession(c)

	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid template id"})
	}

	var req templateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body"})
	}
	if err := req.Validate(); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, errorResponse{Error: err.Error()})
	}

	template, err := w.api.UpdatePriceTemplate(c.Request().Context(), sess.Token, backend.PriceTemplate{
		ID:     id,
		Name:   req.Name,
		Prices: req.Prices,
	})
	if err != nil {
		return w.renderError(c, err)
	}

	return c.JSON(http.StatusOK, template)
}

func (w *Webserver) deleteTemplateHandler(c echo.Context) error {
	sess := guard.CurrentSession(c)

	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid template id"})
	}

	if err := w.api.DeletePriceTemplate(c.Request().Context(), sess.Token, id); err != nil {
		return w.renderError(c, err)
	}

	return c.NoContent(http.StatusNoContent)
}

func (w *Webserver) assignTemplateHandler(c echo.Context) error {
	sess := guard.CurrentSession(c)

	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid template id"})
	}

	var req struct {
		BranchID int64 `json:"branch_id"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body"})
	}
	if req.BranchID == 0 {
		return c.JSON(http.StatusUnprocessableEntity, errorResponse{Error: "branch_id cannot be blank"})
	}

	if err := w.api.AssignPriceTemplate(c.Request().Context(), sess.Token, id, req.BranchID); err != nil {
		return w.renderError(c, err)
	}

	return c.NoContent(http.StatusNoContent)
}

// --- Integrations ---

func (w *Webserver) listIntegrationsHandler(c echo.Context) error {
	sess := guard.CurrentSession(c)

	integrations, err := w.api.Integrations(c.Request().Context(), sess.Token)
	if err != nil {
		return w.renderError(c, err)
	}

	return c.JSON(http.StatusOK, integrations)
}

func (w *Webserver) updateIntegrationHandler(c echo.Context) error {
	sess := guard.CurrentSession(c)

	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid integration id"})
	}

	var req struct {
		BranchID int64  `json:"branch_id"`
		Provider string `json:"provider"`
		Enabled  bool   `json:"enabled"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body"})
	}

	integration, err := w.api.UpdateIntegration(c.Request().Context(), sess.Token, backend.Integration{
		ID:       id,
		BranchID: req.BranchID,
		Provider: req.Provider,
		Enabled:  req.Enabled,
	})
	if err != nil {
		return w.renderError(c, err)
	}

	return c.JSON(http.StatusOK, integration)
}
