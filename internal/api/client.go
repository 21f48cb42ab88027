package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/SuleimanKh97/test2Master/internal/domain"
)

// TokenFunc supplies the bearer credential attached to every request.
// An empty token sends no Authorization header.
type TokenFunc func(ctx context.Context) (string, error)

// Client talks to the backend Cart resource. All failures come back as
// *Error; the last good cart state held by the caller is never touched here.
type Client struct {
	baseURL string
	http    *http.Client
	token   TokenFunc
	breaker *gobreaker.CircuitBreaker[response]
	log     *zap.Logger
}

type response struct {
	status int
	body   []byte
}

type Option func(*Client)

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

func WithToken(fn TokenFunc) Option {
	return func(c *Client) { c.token = fn }
}

func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.log = l }
}

func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		http: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
			Timeout:   30 * time.Second,
		},
		log: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}

	// The breaker only counts transport failures and 5xx; a 400 from
	// validation must not starve the whole cart of connectivity.
	c.breaker = gobreaker.NewCircuitBreaker[response](gobreaker.Settings{
		Name:    "cart-api",
		Timeout: 15 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})

	return c
}

// cartItemDTO matches the backend cart representation.
type cartItemDTO struct {
	ProductID   int64           `json:"productId"`
	ProductName string          `json:"productName"`
	Quantity    int             `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
	ImageURL    *string         `json:"imageUrl"`
}

type addItemRequest struct {
	ProductID int64 `json:"productId"`
	Quantity  int   `json:"quantity"`
}

type updateQuantityRequest struct {
	Quantity int `json:"quantity"`
}

// FetchCart loads the full server-side cart.
func (c *Client) FetchCart(ctx context.Context) ([]domain.CartLine, error) {
	body, err := c.do(ctx, http.MethodGet, "/Cart", nil)
	if err != nil {
		return nil, err
	}

	var dtos []cartItemDTO
	if err := json.Unmarshal(body, &dtos); err != nil {
		return nil, &Error{Kind: KindServer, Message: "Unexpected response from the server."}
	}

	lines := make([]domain.CartLine, 0, len(dtos))
	for _, d := range dtos {
		line := domain.CartLine{
			ProductID:   d.ProductID,
			ProductName: d.ProductName,
			UnitPrice:   d.Price,
			Quantity:    d.Quantity,
		}
		if d.ImageURL != nil {
			line.ImageURL = *d.ImageURL
		}
		lines = append(lines, line)
	}
	return lines, nil
}

// AddItem adds quantity of a product to the server cart.
func (c *Client) AddItem(ctx context.Context, productID int64, quantity int) error {
	_, err := c.do(ctx, http.MethodPost, "/Cart", addItemRequest{ProductID: productID, Quantity: quantity})
	return err
}

// UpdateQuantity replaces the quantity of a product already in the cart.
func (c *Client) UpdateQuantity(ctx context.Context, productID int64, quantity int) error {
	path := fmt.Sprintf("/Cart/%d", productID)
	_, err := c.do(ctx, http.MethodPut, path, updateQuantityRequest{Quantity: quantity})
	return err
}

// RemoveItem deletes one product from the server cart.
func (c *Client) RemoveItem(ctx context.Context, productID int64) error {
	_, err := c.do(ctx, http.MethodDelete, fmt.Sprintf("/Cart/%d", productID), nil)
	return err
}

// ClearCart deletes the whole server cart.
func (c *Client) ClearCart(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodDelete, "/Cart", nil)
	return err
}

func (c *Client) do(ctx context.Context, method, path string, payload any) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("marshal request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != nil {
		token, err := c.token(ctx)
		if err != nil {
			return nil, &Error{Kind: KindAuth, Message: "Authentication error. Please ensure you are logged in."}
		}
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.breaker.Execute(func() (response, error) {
		httpResp, err := c.http.Do(req)
		if err != nil {
			return response{}, err
		}
		defer httpResp.Body.Close()

		data, err := io.ReadAll(httpResp.Body)
		if err != nil {
			return response{}, err
		}
		r := response{status: httpResp.StatusCode, body: data}
		if httpResp.StatusCode >= 500 {
			// Feed the breaker, keep the response for classification.
			return r, fmt.Errorf("server returned %d", httpResp.StatusCode)
		}
		return r, nil
	})
	if err != nil && resp.status == 0 {
		c.log.Warn("cart request failed", zap.String("method", method), zap.String("path", path), zap.Error(err))
		return nil, networkError(err)
	}

	if resp.status >= 400 {
		apiErr := statusError(resp.status, serverMessage(resp.body))
		c.log.Warn("cart request rejected",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", resp.status))
		return nil, apiErr
	}

	return resp.body, nil
}

// serverMessage pulls the structured message out of an error body, if the
// backend sent one. Plain-text bodies are used as-is.
func serverMessage(body []byte) string {
	var structured struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &structured); err == nil {
		if structured.Message != "" {
			return structured.Message
		}
		if structured.Error != "" {
			return structured.Error
		}
	}
	if len(body) > 0 && body[0] != '{' && body[0] != '[' {
		return string(body)
	}
	return ""
}
