package webserver

import (
	"net/http"
	"strconv"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/labstack/echo/v4"
	"golang.org/x/sync/errgroup"

	"github.com/irtassedat/qrmenu-gateway/internal/backend"
	"github.com/irtassedat/qrmenu-gateway/internal/guard"
	"github.com/irtassedat/qrmenu-gateway/internal/session"
)

// scopedBranchID picks which branch an admin request operates on. Branch
// managers are pinned to their own branch no matter what the request says;
// super admins can address any branch via ?branch_id= (0 = all).
func scopedBranchID(c echo.Context, sess *session.Session) int64 {
	if sess.User.Role == backend.RoleBranchManager {
		return sess.User.BranchID
	}

	id, _ := strconv.ParseInt(c.QueryParam("branch_id"), 10, 64)
	return id
}

func pathID(c echo.Context) (int64, error) {
	return strconv.ParseInt(c.Param("id"), 10, 64)
}

// --- Dashboard ---

type dashboardResponse struct {
	Branches     []backend.Branch        `json:"branches"`
	Templates    []backend.PriceTemplate `json:"templates"`
	Integrations []backend.Integration   `json:"integrations"`
}

// dashboardHandler fires its three fetches concurrently and renders once
// all resolve, failing the whole group if any one rejects.
func (w *Webserver) dashboardHandler(c echo.Context) error {
	sess := guard.CurrentSession(c)

	var res dashboardResponse

	g, ctx := errgroup.WithContext(c.Request().Context())
	g.Go(func() error {
		branches, err := w.api.Branches(ctx, sess.Token)
		if err != nil {
			return err
		}
		res.Branches = branches
		return nil
	})
	g.Go(func() error {
		templates, err := w.api.PriceTemplates(ctx, sess.Token)
		if err != nil {
			return err
		}
		res.Templates = templates
		return nil
	})
	g.Go(func() error {
		integrations, err := w.api.Integrations(ctx, sess.Token)
		if err != nil {
			return err
		}
		res.Integrations = integrations
		return nil
	})

	if err := g.Wait(); err != nil {
		return w.renderError(c, err)
	}

	return c.JSON(http.StatusOK, res)
}

// --- Branch products (shared) ---

func (w *Webserver) listBranchProductsHandler(c echo.Context) error {
	sess := guard.CurrentSession(c)

	products, err := w.api.Products(c.Request().Context(), sess.Token, scopedBranchID(c, sess))
	if err != nil {
		return w.renderError(c, err)
	}

	return c.JSON(http.StatusOK, products)
}

type productRequest struct {
	BranchID    int64   `json:"branch_id"`
	CategoryID  int64   `json:"category_id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	ImageURL    string  `json:"image_url"`
	IsActive    bool    `json:"is_active"`
}

func (r productRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required),
		validation.Field(&r.CategoryID, validation.Required),
		validation.Field(&r.Price, validation.Min(0.0)),
	)
}

func (r productRequest) toProduct(id, branchID int64) backend.Product {
	return backend.Product{
		ID:          id,
		BranchID:    branchID,
		CategoryID:  r.CategoryID,
		Name:        r.Name,
		Description: r.Description,
		Price:       r.Price,
		ImageURL:    r.ImageURL,
		IsActive:    r.IsActive,
	}
}

func (w *Webserver) createBranchProductHandler(c echo.Context) error {
	sess := guard.CurrentSession(c)

	var req productRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body"})
	}
	if err := req.Validate(); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, errorResponse{Error: err.Error()})
	}

	branchID := req.BranchID
	if sess.User.Role == backend.RoleBranchManager {
		branchID = sess.User.BranchID
	}

	product, err := w.api.CreateProduct(c.Request().Context(), sess.Token, req.toProduct(0, branchID))
	if err != nil {
		return w.renderError(c, err)
	}

	return c.JSON(http.StatusCreated, product)
}

func (w *Webserver) updateBranchProductHandler(c echo.Context) error {
	sess := guard.CurrentSession(c)

	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid product id"})
	}

	var req productRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body"})
	}
	if err := req.Validate(); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, errorResponse{Error: err.Error()})
	}

	branchID := req.BranchID
	if sess.User.Role == backend.RoleBranchManager {
		branchID = sess.User.BranchID
	}

	product, err := w.api.UpdateProduct(c.Request().Context(), sess.Token, req.toProduct(id, branchID))
	if err != nil {
		return w.renderError(c, err)
	}

	return c.JSON(http.StatusOK, product)
}

func (w *Webserver) deleteBranchProductHandler(c echo.Context) error {
	sess := guard.CurrentSession(c)

	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid product id"})
	}

	if err := w.api.DeleteProduct(c.Request().Context(), sess.Token, id); err != nil {
		return w.renderError(c, err)
	}

	return c.NoContent(http.StatusNoContent)
}

// --- Orders (shared) ---

func (w *Webserver) listOrdersHandler(c echo.Context) error {
	sess := guard.CurrentSession(c)

	orders, err := w.api.Orders(c.Request().Context(), sess.Token, scopedBranchID(c, sess))
	if err != nil {
		return w.renderError(c, err)
	}

	return c.JSON(http.StatusOK, orders)
}

func (w *Webserver) updateOrderStatusHandler(c echo.Context) error {
	sess := guard.CurrentSession(c)

	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid order id"})
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body"})
	}
	if req.Status == "" {
		return c.JSON(http.StatusUnprocessableEntity, errorResponse{Error: "status cannot be blank"})
	}

	order, err := w.api.UpdateOrderStatus(c.Request().Context(), sess.Token, id, req.Status)
	if err != nil {
		return w.renderError(c, err)
	}

	return c.JSON(http.StatusOK, order)
}

// --- Loyalty (shared) ---

func (w *Webserver) listLoyaltyProgramsHandler(c echo.Context) error {
	sess := guard.CurrentSession(c)

	programs, err := w.api.LoyaltyPrograms(c.Request().Context(), sess.Token)
	if err != nil {
		return w.renderError(c, err)
	}

	return c.JSON(http.StatusOK, programs)
}

type loyaltyProgramRequest struct {
	Name        string `json:"name"`
	StampTarget int    `json:"stamp_target"`
	Reward      string `json:"reward"`
	IsActive    bool   `json:"is_active"`
}

func (r loyaltyProgramRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required),
		validation.Field(&r.StampTarget, validation.Required, validation.Min(1)),
		validation.Field(&r.Reward, validation.Required),
	)
}

func (w *Webserver) createLoyaltyProgramHandler(c echo.Context) error {
	sess := guard.CurrentSession(c)

	var req loyaltyProgramRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body"})
	}
	if err := req.Validate(); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, errorResponse{Error: err.Error()})
	}

	program, err := w.api.CreateLoyaltyProgram(c.Request().Context(), sess.Token, backend.LoyaltyProgram{
		Name:        req.Name,
		StampTarget: req.StampTarget,
		Reward:      req.Reward,
		IsActive:    req.IsActive,
	})
	if err != nil {
		return w.renderError(c, err)
	}

	return c.JSON(http.StatusCreated, program)
}

func (w *Webserver) updateLoyaltyProgramHandler(c echo.Context) error {
	sess := guard.CurrentSession(c)

	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid program id"})
	}

	var req loyaltyProgramRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body"})
	}
	if err := req.Validate(); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, errorResponse{Error: err.Error()})
	}

	program, err := w.api.UpdateLoyaltyProgram(c.Request().Context(), sess.Token, backend.LoyaltyProgram{
		ID:          id,
		Name:        req.Name,
		StampTarget: req.StampTarget,
		Reward:      req.Reward,
		IsActive:    req.IsActive,
	})
	if err != nil {
		return w.renderError(c, err)
	}

	return c.JSON(http.StatusOK, program)
}

func (w *Webserver) listLoyaltyCardsHandler(c echo.Context) error {
	sess := guard.CurrentSession(c)

	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid program id"})
	}

	cards, err := w.api.LoyaltyCards(c.Request().Context(), sess.Token, id)
	if err != nil {
		return w.renderError(c, err)
	}

	return c.JSON(http.StatusOK, cards)
}

func (w *Webserver) stampLoyaltyCardHandler(c echo.Context) error {
	sess := guard.CurrentSession(c)

	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid program id"})
	}

	var req struct {
		CustomerPhone string `json:"customer_phone"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body"})
	}
	if req.CustomerPhone == "" {
		return c.JSON(http.StatusUnprocessableEntity, errorResponse{Error: "customer_phone cannot be blank"})
	}

	card, err := w.api.StampLoyaltyCard(c.Request().Context(), sess.Token, id, req.CustomerPhone)
	if err != nil {
		return w.renderError(c, err)
	}

	return c.JSON(http.StatusOK, card)
}
