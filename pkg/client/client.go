// Package client is the Go caller for the cajaflow API: a thin resty wrapper
// that attaches the session token to every call, maps responses onto the
// shared error taxonomy, and hosts the live order feed. Nothing here retries
// automatically; retries are the caller's decision.
package client

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"

	"cajaflow/domain"
)

type Client struct {
	http *resty.Client

	mu      sync.Mutex
	session domain.Session
}

func New(baseURL string) *Client {
	return &Client{
		http: resty.New().SetBaseURL(baseURL).SetHeader("Content-Type", "application/json"),
	}
}

// Session returns the current immutable session value.
func (c *Client) Session() domain.Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session
}

// Logout replaces the session with an empty one. There is no ambient state
// to clear anywhere else.
func (c *Client) Logout() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.session = domain.Session{}
}

type RegisterRequest struct {
	Username   string `json:"username"`
	Email      string `json:"email"`
	Password   string `json:"password"`
	Role       string `json:"role"`
	RegisterID *int64 `json:"register_id,omitempty"`
}

// Register creates an account and adopts the returned session.
func (c *Client) Register(req RegisterRequest) (domain.Session, error) {
	var resp loginResponse
	if err := c.do(http.MethodPost, "/auth/register", req, &resp); err != nil {
		return domain.Session{}, err
	}
	session := domain.Session{
		UserID:     resp.User.ID,
		Role:       resp.User.Role,
		RegisterID: resp.User.RegisterID,
		Token:      resp.Token,
		ExpiresAt:  resp.ExpiresAt,
	}
	c.mu.Lock()
	c.session = session
	c.mu.Unlock()
	return session, nil
}

type loginResponse struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expires_at"`
	User      domain.User `json:"user"`
}

func (c *Client) Login(email, password string) (domain.Session, error) {
	var resp loginResponse
	err := c.do(http.MethodPost, "/auth/login", map[string]string{"email": email, "password": password}, &resp)
	if err != nil {
		return domain.Session{}, err
	}
	session := domain.Session{
		UserID:     resp.User.ID,
		Role:       resp.User.Role,
		RegisterID: resp.User.RegisterID,
		Token:      resp.Token,
		ExpiresAt:  resp.ExpiresAt,
	}
	c.mu.Lock()
	c.session = session
	c.mu.Unlock()
	return session, nil
}

// do executes one request. 401 clears the session and comes back as
// UnauthorizedError regardless of sub-reason; transport failures are
// NetworkError; any other non-2xx carries the server's message verbatim.
func (c *Client) do(method, path string, body, out any) error {
	req := c.http.R()
	if s := c.Session(); s.Token != "" {
		req.SetAuthToken(s.Token)
	}
	if body != nil {
		req.SetBody(body)
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		return &domain.NetworkError{Err: err}
	}

	if resp.StatusCode() == http.StatusUnauthorized {
		c.Logout()
		var payload struct {
			Reason string `json:"reason"`
		}
		reason := domain.ReasonTokenInvalid
		if json.Unmarshal(resp.Body(), &payload) == nil && payload.Reason != "" {
			reason = domain.UnauthorizedReason(payload.Reason)
		}
		return &domain.UnauthorizedError{Reason: reason}
	}
	if resp.StatusCode() >= 400 {
		var payload struct {
			Error string `json:"error"`
		}
		message := resp.Status()
		if json.Unmarshal(resp.Body(), &payload) == nil && payload.Error != "" {
			message = payload.Error
		}
		if resp.StatusCode() == http.StatusConflict {
			return &domain.ConflictError{Msg: message}
		}
		return &domain.ServerError{Status: resp.StatusCode(), Message: message}
	}

	if out != nil {
		if err := json.Unmarshal(resp.Body(), out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

// Typed operations

type created struct {
	ID int64 `json:"id"`
}

func (c *Client) CreateRegister(name, location string) (int64, error) {
	var resp created
	err := c.do(http.MethodPost, "/registers", map[string]string{"name": name, "location": location}, &resp)
	return resp.ID, err
}

func (c *Client) CreatePartner(name, address, phone string) (int64, error) {
	var resp created
	err := c.do(http.MethodPost, "/partners", map[string]string{"name": name, "address": address, "phone": phone}, &resp)
	return resp.ID, err
}

func (c *Client) CreateProduct(name, category string, unitPrice float64) (int64, error) {
	var resp created
	err := c.do(http.MethodPost, "/products", map[string]any{"name": name, "category": category, "unit_price": unitPrice}, &resp)
	return resp.ID, err
}

func (c *Client) CreateExpense(registerID int64, amount float64, motive string) (int64, error) {
	var resp created
	err := c.do(http.MethodPost, "/expenses", map[string]any{"register_id": registerID, "amount": amount, "motive": motive}, &resp)
	return resp.ID, err
}

func (c *Client) DeleteSale(orderID int64) error {
	return c.do(http.MethodDelete, fmt.Sprintf("/sales/%d", orderID), nil, nil)
}

type SaleItem struct {
	ProductID int64 `json:"product_id"`
	Quantity  int64 `json:"quantity"`
}

type SaleRequest struct {
	RegisterID int64      `json:"register_id"`
	PartnerID  *int64     `json:"partner_id,omitempty"`
	Items      []SaleItem `json:"items"`
	OnAccount  bool       `json:"on_account"`
}

func (c *Client) CreateSale(req SaleRequest) (domain.Order, error) {
	var order domain.Order
	err := c.do(http.MethodPost, "/sales", req, &order)
	return order, err
}

func (c *Client) ApplyPayment(orderID int64, amount float64, method string, deferred bool) (domain.Order, error) {
	var order domain.Order
	err := c.do(http.MethodPost, fmt.Sprintf("/sales/%d/payments", orderID),
		map[string]any{"amount": amount, "method": method, "deferred": deferred}, &order)
	return order, err
}

func (c *Client) PendingDeliveries(registerID int64) ([]domain.Order, error) {
	var orders []domain.Order
	err := c.do(http.MethodGet, fmt.Sprintf("/deliveries/pending?register_id=%d", registerID), nil, &orders)
	return orders, err
}

func (c *Client) AccountSummary(partnerID int64) (domain.AccountSummary, error) {
	var summary domain.AccountSummary
	err := c.do(http.MethodGet, fmt.Sprintf("/accounts/%d/summary", partnerID), nil, &summary)
	return summary, err
}

func (c *Client) MarkDelivered(orderID int64) (domain.Order, error) {
	var order domain.Order
	err := c.do(http.MethodPost, fmt.Sprintf("/accounts/orders/%d/delivered", orderID), nil, &order)
	return order, err
}

type ClosingRequest struct {
	RegisterID  int64    `json:"register_id"`
	Date        string   `json:"date,omitempty"`
	CountedCash *float64 `json:"counted_cash,omitempty"`
}

func (c *Client) OpenClosing(req ClosingRequest) (domain.Closing, error) {
	var closing domain.Closing
	err := c.do(http.MethodPost, "/closings", req, &closing)
	return closing, err
}

func (c *Client) PatchClosing(closingID int64, countedCash *float64, finalize bool) (domain.Closing, error) {
	var closing domain.Closing
	err := c.do(http.MethodPatch, fmt.Sprintf("/closings/%d", closingID),
		map[string]any{"counted_cash": countedCash, "finalize": finalize}, &closing)
	return closing, err
}
