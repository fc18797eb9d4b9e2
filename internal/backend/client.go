package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Client is a typed client for the chain backend's REST API. The bearer
// token is passed per call rather than held in a shared header slot, so the
// caller always decides which session a request runs under.
type Client struct {
	baseURL string
	httpc   *http.Client
	log     zerolog.Logger
}

func New(baseURL string, timeout time.Duration, logger zerolog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpc:   &http.Client{Timeout: timeout},
		log:     logger.With().Str("component", "backend").Logger(),
	}
}

// errorEnvelope is the backend's error body. Some endpoints use "error",
// some use "message".
type errorEnvelope struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func (c *Client) do(ctx context.Context, method, path, token string, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		buff, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("couldn't marshal request body for %s %s: %w", method, path, err)
		}
		reqBody = bytes.NewReader(buff)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("couldn't build request for %s %s: %w", method, path, err)
	}

	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return &NetworkError{Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return &NetworkError{Err: err}
	}

	if resp.StatusCode >= 400 {
		return c.errorFromResponse(method, path, resp.StatusCode, respBody)
	}

	if out != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("couldn't decode response for %s %s: %w", method, path, err)
		}
	}

	return nil
}

func (c *Client) errorFromResponse(method, path string, status int, body []byte) error {
	var envelope errorEnvelope
	_ = json.Unmarshal(body, &envelope)

	message := envelope.Error
	if message == "" {
		message = envelope.Message
	}

	c.log.Debug().Str("method", method).Str("path", path).Int("status", status).Str("message", message).Msg("backend rejected request")

	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		if message == "" {
			message = genericAuthMessage
		}
		return &AuthenticationError{Message: message, StatusCode: status}
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		if message == "" {
			message = genericValidationMessage
		}
		return &ValidationError{Message: message}
	}

	if message == "" {
		message = http.StatusText(status)
	}
	return fmt.Errorf("backend returned %d for %s %s: %s", status, method, path, message)
}

// --- Auth ---

func (c *Client) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	creds := map[string]string{
		"username": username,
		"password": password,
	}

	result := new(LoginResult)
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", "", creds, result); err != nil {
		return nil, err
	}

	return result, nil
}

func (c *Client) Me(ctx context.Context, token string) (*User, error) {
	user := new(User)
	if err := c.do(ctx, http.MethodGet, "/api/auth/me", token, nil, user); err != nil {
		return nil, err
	}

	return user, nil
}

func (c *Client) ChangePassword(ctx context.Context, token, currentPassword, newPassword string) error {
	body := map[string]string{
		"currentPassword": currentPassword,
		"newPassword":     newPassword,
	}

	return c.do(ctx, http.MethodPut, "/api/auth/change-password", token, body, nil)
}

// --- Branches ---

func (c *Client) Branches(ctx context.Context, token string) ([]Branch, error) {
	var branches []Branch
	if err := c.do(ctx, http.MethodGet, "/api/branches", token, nil, &branches); err != nil {
		return nil, err
	}
	return branches, nil
}

func (c *Client) Branch(ctx context.Context, token string, id int64) (*Branch, error) {
	branch := new(Branch)
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/branches/%d", id), token, nil, branch); err != nil {
		return nil, err
	}
	return branch, nil
}

func (c *Client) CreateBranch(ctx context.Context, token string, branch Branch) (*Branch, error) {
	created := new(Branch)
	if err := c.do(ctx, http.MethodPost, "/api/branches", token, branch, created); err != nil {
		return nil, err
	}
	return created, nil
}

func (c *Client) UpdateBranch(ctx context.Context, token string, branch Branch) (*Branch, error) {
	updated := new(Branch)
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/api/branches/%d", branch.ID), token, branch, updated); err != nil {
		return nil, err
	}
	return updated, nil
}

func (c *Client) DeleteBranch(ctx context.Context, token string, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/branches/%d", id), token, nil, nil)
}

// --- Products ---

func (c *Client) Products(ctx context.Context, token string, branchID int64) ([]Product, error) {
	path := "/api/products"
	if branchID != 0 {
		path = fmt.Sprintf("/api/products?branch_id=%d", branchID)
	}

	var products []Product
	if err := c.do(ctx, http.MethodGet, path, token, nil, &products); err != nil {
		return nil, err
	}
	return products, nil
}

func (c *Client) Product(ctx context.Context, token string, id int64) (*Product, error) {
	product := new(Product)
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/products/%d", id), token, nil, product); err != nil {
		return nil, err
	}
	return product, nil
}

func (c *Client) CreateProduct(ctx context.Context, token string, product Product) (*Product, error) {
	created := new(Product)
	if err := c.do(ctx, http.MethodPost, "/api/products", token, product, created); err != nil {
		return nil, err
	}
	return created, nil
}

func (c *Client) UpdateProduct(ctx context.Context, token string, product Product) (*Product, error) {
	updated := new(Product)
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/api/products/%d", product.ID), token, product, updated); err != nil {
		return nil, err
	}
	return updated, nil
}

func (c *Client) DeleteProduct(ctx context.Context, token string, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/products/%d", id), token, nil, nil)
}

// --- Categories ---

func (c *Client) Categories(ctx context.Context, token string) ([]Category, error) {
	var categories []Category
	if err := c.do(ctx, http.MethodGet, "/api/categories", token, nil, &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

func (c *Client) CreateCategory(ctx context.Context, token string, category Category) (*Category, error) {
	created := new(Category)
	if err := c.do(ctx, http.MethodPost, "/api/categories", token, category, created); err != nil {
		return nil, err
	}
	return created, nil
}

func (c *Client) UpdateCategory(ctx context.Context, token string, category Category) (*Category, error) {
	updated := new(Category)
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/api/categories/%d", category.ID), token, category, updated); err != nil {
		return nil, err
	}
	return updated, nil
}

func (c *Client) DeleteCategory(ctx context.Context, token string, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/categories/%d", id), token, nil, nil)
}

// --- Staff users ---

func (c *Client) Users(ctx context.Context, token string) ([]StaffUser, error) {
	var users []StaffUser
	if err := c.do(ctx, http.MethodGet, "/api/users", token, nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (c *Client) CreateUser(ctx context.Context, token string, user StaffUser) (*StaffUser, error) {
	created := new(StaffUser)
	if err := c.do(ctx, http.MethodPost, "/api/users", token, user, created); err != nil {
		return nil, err
	}
	return created, nil
}

func (c *Client) UpdateUser(ctx context.Context, token string, user StaffUser) (*StaffUser, error) {
	updated := new(StaffUser)
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/api/users/%d", user.ID), token, user, updated); err != nil {
		return nil, err
	}
	return updated, nil
}

func (c *Client) DeleteUser(ctx context.Context, token string, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/users/%d", id), token, nil, nil)
}

// --- Price templates ---

func (c *Client) PriceTemplates(ctx context.Context, token string) ([]PriceTemplate, error) {
	var templates []PriceTemplate
	if err := c.do(ctx, http.MethodGet, "/api/templates/price", token, nil, &templates); err != nil {
		return nil, err
	}
	return templates, nil
}

func (c *Client) CreatePriceTemplate(ctx context.Context, token string, template PriceTemplate) (*PriceTemplate, error) {
	created := new(PriceTemplate)
	if err := c.do(ctx, http.MethodPost, "/api/templates/price", token, template, created); err != nil {
		return nil, err
	}
	return created, nil
}

func (c *Client) UpdatePriceTemplate(ctx context.Context, token string, template PriceTemplate) (*PriceTemplate, error) {
	updated := new(PriceTemplate)
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/api/templates/price/%d", template.ID), token, template, updated); err != nil {
		return nil, err
	}
	return updated, nil
}

func (c *Client) DeletePriceTemplate(ctx context.Context, token string, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/templates/price/%d", id), token, nil, nil)
}

// AssignPriceTemplate applies a template's price list to a branch.
func (c *Client) AssignPriceTemplate(ctx context.Context, token string, templateID, branchID int64) error {
	body := map[string]int64{"branch_id": branchID}
	return c.do(ctx, http.MethodPost, fmt.Sprintf("/api/templates/price/%d/assign", templateID), token, body, nil)
}

// --- Integrations ---

func (c *Client) Integrations(ctx context.Context, token string) ([]Integration, error) {
	var integrations []Integration
	if err := c.do(ctx, http.MethodGet, "/api/integrations", token, nil, &integrations); err != nil {
		return nil, err
	}
	return integrations, nil
}

func (c *Client) UpdateIntegration(ctx context.Context, token string, integration Integration) (*Integration, error) {
	updated := new(Integration)
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/api/integrations/%d", integration.ID), token, integration, updated); err != nil {
		return nil, err
	}
	return updated, nil
}

// --- Loyalty ---

func (c *Client) LoyaltyPrograms(ctx context.Context, token string) ([]LoyaltyProgram, error) {
	var programs []LoyaltyProgram
	if err := c.do(ctx, http.MethodGet, "/api/loyalty/programs", token, nil, &programs); err != nil {
		return nil, err
	}
	return programs, nil
}

func (c *Client) CreateLoyaltyProgram(ctx context.Context, token string, program LoyaltyProgram) (*LoyaltyProgram, error) {
	created := new(LoyaltyProgram)
	if err := c.do(ctx, http.MethodPost, "/api/loyalty/programs", token, program, created); err != nil {
		return nil, err
	}
	return created, nil
}

func (c *Client) UpdateLoyaltyProgram(ctx context.Context, token string, program LoyaltyProgram) (*LoyaltyProgram, error) {
	updated := new(LoyaltyProgram)
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/api/loyalty/programs/%d", program.ID), token, program, updated); err != nil {
		return nil, err
	}
	return updated, nil
}

func (c *Client) LoyaltyCards(ctx context.Context, token string, programID int64) ([]LoyaltyCard, error) {
	var cards []LoyaltyCard
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/loyalty/programs/%d/cards", programID), token, nil, &cards); err != nil {
		return nil, err
	}
	return cards, nil
}

// StampLoyaltyCard adds a stamp for a customer, creating the card on first
// stamp.
func (c *Client) StampLoyaltyCard(ctx context.Context, token string, programID int64, customerPhone string) (*LoyaltyCard, error) {
	body := map[string]string{"customer_phone": customerPhone}

	card := new(LoyaltyCard)
	if err := c.do(ctx, http.MethodPost, fmt.Sprintf("/api/loyalty/programs/%d/stamps", programID), token, body, card); err != nil {
		return nil, err
	}
	return card, nil
}

// --- Orders ---

func (c *Client) Orders(ctx context.Context, token string, branchID int64) ([]Order, error) {
	path := "/orders"
	if branchID != 0 {
		path = fmt.Sprintf("/orders?branch_id=%d", branchID)
	}

	var orders []Order
	if err := c.do(ctx, http.MethodGet, path, token, nil, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// CreateOrder is called from the public menu, so it carries no token.
func (c *Client) CreateOrder(ctx context.Context, order Order) (*Order, error) {
	created := new(Order)
	if err := c.do(ctx, http.MethodPost, "/orders", "", order, created); err != nil {
		return nil, err
	}
	return created, nil
}

func (c *Client) UpdateOrderStatus(ctx context.Context, token string, id int64, status string) (*Order, error) {
	body := map[string]string{"status": status}

	updated := new(Order)
	if err := c.do(ctx, http.MethodPatch, fmt.Sprintf("/orders/%d", id), token, body, updated); err != nil {
		return nil, err
	}
	return updated, nil
}

// --- Feedback ---

// SubmitFeedback is public, like CreateOrder.
func (c *Client) SubmitFeedback(ctx context.Context, feedback Feedback) error {
	return c.do(ctx, http.MethodPost, "/api/feedback", "", feedback, nil)
}
