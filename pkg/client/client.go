// Package client is a Go client for the storefront HTTP API. A Client keeps
// the session cookie from Register or Login and sends it on later calls.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"strings"
	"time"

	"storefront/internal/models"
	"storefront/internal/services"
)

// APIError is a non-2xx response.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("storefront: %d %s", e.Status, e.Message)
}

// Client talks to one storefront server.
type Client struct {
	baseURL *url.URL
	http    *http.Client
}

// Option customizes a Client.
type Option func(*Client)

// WithTransport replaces the HTTP transport.
func WithTransport(rt http.RoundTripper) Option {
	return func(c *Client) { c.http.Transport = rt }
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// New creates a Client for the server at baseURL, e.g. "http://localhost:8080".
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}

	c := &Client{
		baseURL: u,
		http:    &http.Client{Jar: jar, Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL.String()+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode >= 300 {
		apiErr := &APIError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		var payload struct {
			Message string `json:"message"`
		}
		if json.Unmarshal(raw, &payload) == nil && payload.Message != "" {
			apiErr.Message = payload.Message
		}
		return apiErr
	}
	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}

// Register creates an account and starts a session.
func (c *Client) Register(ctx context.Context, name, email, password string) (*models.User, error) {
	var user models.User
	body := map[string]string{"name": name, "email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/api/users", body, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Login starts a session.
func (c *Client) Login(ctx context.Context, email, password string) (*models.User, error) {
	var user models.User
	body := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/api/users/login", body, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Logout ends the session.
func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/api/users/logout", nil, nil)
}

// Profile returns the signed-in user.
func (c *Client) Profile(ctx context.Context) (*models.User, error) {
	var user models.User
	if err := c.do(ctx, http.MethodGet, "/api/users/profile", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Products lists the catalog.
func (c *Client) Products(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	if err := c.do(ctx, http.MethodGet, "/api/products", nil, &products); err != nil {
		return nil, err
	}
	return products, nil
}

// Product fetches one product.
func (c *Client) Product(ctx context.Context, id string) (*models.Product, error) {
	var product models.Product
	if err := c.do(ctx, http.MethodGet, "/api/products/"+url.PathEscape(id), nil, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

// Addresses returns the caller's address book.
func (c *Client) Addresses(ctx context.Context) (models.AddressBook, error) {
	var book models.AddressBook
	err := c.do(ctx, http.MethodGet, "/api/users/addresses", nil, &book)
	return book, err
}

// AddAddress appends an address and returns the updated book.
func (c *Client) AddAddress(ctx context.Context, addr models.Address) (models.AddressBook, error) {
	var book models.AddressBook
	err := c.do(ctx, http.MethodPost, "/api/users/addresses", addr, &book)
	return book, err
}

// UpdateAddress replaces the address at idx.
func (c *Client) UpdateAddress(ctx context.Context, idx int, addr models.Address) (models.AddressBook, error) {
	var book models.AddressBook
	err := c.do(ctx, http.MethodPut, "/api/users/addresses/"+strconv.Itoa(idx), addr, &book)
	return book, err
}

// RemoveAddress deletes the address at idx.
func (c *Client) RemoveAddress(ctx context.Context, idx int) (models.AddressBook, error) {
	var book models.AddressBook
	err := c.do(ctx, http.MethodDelete, "/api/users/addresses/"+strconv.Itoa(idx), nil, &book)
	return book, err
}

// SetDefaultAddress marks the address at idx as default.
func (c *Client) SetDefaultAddress(ctx context.Context, idx int) (models.AddressBook, error) {
	var book models.AddressBook
	err := c.do(ctx, http.MethodPut, "/api/users/addresses/default/"+strconv.Itoa(idx), nil, &book)
	return book, err
}

// CreateOrder submits a checkout snapshot.
func (c *Client) CreateOrder(ctx context.Context, req services.CreateOrderRequest) (*models.Order, error) {
	var order models.Order
	if err := c.do(ctx, http.MethodPost, "/api/orders", req, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// Order fetches one order.
func (c *Client) Order(ctx context.Context, id string) (*models.Order, error) {
	var order models.Order
	if err := c.do(ctx, http.MethodGet, "/api/orders/"+url.PathEscape(id), nil, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// MyOrders lists the caller's orders.
func (c *Client) MyOrders(ctx context.Context) ([]models.Order, error) {
	var orders []models.Order
	if err := c.do(ctx, http.MethodGet, "/api/orders/myorders", nil, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// PayOrder marks an order paid; result may be nil.
func (c *Client) PayOrder(ctx context.Context, id string, result *models.PaymentResult) (*models.Order, error) {
	var body interface{}
	if result != nil {
		body = result
	}
	var order models.Order
	if err := c.do(ctx, http.MethodPut, "/api/orders/"+url.PathEscape(id)+"/pay", body, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// DeliverOrder marks an order delivered (admin only).
func (c *Client) DeliverOrder(ctx context.Context, id string) (*models.Order, error) {
	var order models.Order
	if err := c.do(ctx, http.MethodPut, "/api/orders/"+url.PathEscape(id)+"/deliver", nil, &order); err != nil {
		return nil, err
	}
	return &order, nil
}
