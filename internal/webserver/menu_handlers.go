package webserver

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/labstack/echo/v4"
	"golang.org/x/sync/errgroup"

	"github.com/irtassedat/qrmenu-gateway/internal/backend"
)

// qrImageAPI is the public image service that turns a menu URL into a QR
// code. Generation is delegated entirely; we never render images ourselves.
const qrImageAPI = "https://api.qrserver.com/v1/create-qr-code/"

func (w *Webserver) branchListHandler(c echo.Context) error {
	branches, err := w.api.Branches(c.Request().Context(), "")
	if err != nil {
		return w.renderError(c, err)
	}

	return c.JSON(http.StatusOK, branches)
}

type menuResponse struct {
	Branch     *backend.Branch    `json:"branch"`
	Categories []backend.Category `json:"categories"`
	Products   []backend.Product  `json:"products"`
}

// menuHandler fetches everything a branch menu needs in parallel and joins
// before responding. If any one fetch fails, the whole menu fails; a
// partial menu is worse than a toast.
func (w *Webserver) menuHandler(c echo.Context) error {
	branchID, err := strconv.ParseInt(c.Param("branchId"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid branch id"})
	}

	var res menuResponse

	g, ctx := errgroup.WithContext(c.Request().Context())
	g.Go(func() error {
		branch, err := w.api.Branch(ctx, "", branchID)
		if err != nil {
			return err
		}
		res.Branch = branch
		return nil
	})
	g.Go(func() error {
		categories, err := w.api.Categories(ctx, "")
		if err != nil {
			return err
		}
		res.Categories = categories
		return nil
	})
	g.Go(func() error {
		products, err := w.api.Products(ctx, "", branchID)
		if err != nil {
			return err
		}
		res.Products = products
		return nil
	})

	if err := g.Wait(); err != nil {
		return w.renderError(c, err)
	}

	return c.JSON(http.StatusOK, res)
}

func (w *Webserver) productHandler(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid product id"})
	}

	product, err := w.api.Product(c.Request().Context(), "", id)
	if err != nil {
		return w.renderError(c, err)
	}

	return c.JSON(http.StatusOK, product)
}

type orderRequest struct {
	BranchID int64               `json:"branch_id"`
	TableNo  string              `json:"table_no"`
	Items    []backend.OrderItem `json:"items"`
}

func (r orderRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.BranchID, validation.Required),
		validation.Field(&r.Items, validation.Required, validation.Length(1, 0)),
	)
}

func (w *Webserver) orderHandler(c echo.Context) error {
	var req orderRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body"})
	}

	if err := req.Validate(); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, errorResponse{Error: err.Error()})
	}

	order, err := w.api.CreateOrder(c.Request().Context(), backend.Order{
		BranchID: req.BranchID,
		TableNo:  req.TableNo,
		Items:    req.Items,
	})
	if err != nil {
		return w.renderError(c, err)
	}

	return c.JSON(http.StatusCreated, order)
}

type feedbackRequest struct {
	BranchID int64  `json:"branch_id"`
	Rating   int    `json:"rating"`
	Comment  string `json:"comment"`
}

func (r feedbackRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.BranchID, validation.Required),
		validation.Field(&r.Rating, validation.Required, validation.Min(1), validation.Max(5)),
	)
}

func (w *Webserver) feedbackHandler(c echo.Context) error {
	var req feedbackRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body"})
	}

	if err := req.Validate(); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, errorResponse{Error: err.Error()})
	}

	if err := w.api.SubmitFeedback(c.Request().Context(), backend.Feedback{
		BranchID: req.BranchID,
		Rating:   req.Rating,
		Comment:  req.Comment,
	}); err != nil {
		return w.renderError(c, err)
	}

	return c.NoContent(http.StatusNoContent)
}

// qrHandler bounces to the third-party QR image for a branch's menu URL.
func (w *Webserver) qrHandler(c echo.Context) error {
	branchID, err := strconv.ParseInt(c.Param("branchId"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid branch id"})
	}

	menuURL := fmt.Sprintf("%s/menu/%d", w.conf.BaseURL, branchID)
	imageURL := fmt.Sprintf("%s?size=300x300&data=%s", qrImageAPI, url.QueryEscape(menuURL))

	return c.Redirect(http.StatusFound, imageURL)
}
