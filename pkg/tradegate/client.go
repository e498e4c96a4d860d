// Package tradegate provides a Go SDK for the tradegate-server ops API.
package tradegate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client talks to a tradegate-server instance.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a client for the gateway at baseURL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// Summary retrieves the account's money view.
func (c *Client) Summary(ctx context.Context) (AccountSummary, error) {
	var out AccountSummary
	err := c.do(ctx, http.MethodGet, "/api/account/summary", nil, nil, &out)
	return out, err
}

// Positions retrieves current holdings.
func (c *Client) Positions(ctx context.Context) ([]Position, error) {
	var env struct {
		Positions []Position `json:"positions"`
	}
	err := c.do(ctx, http.MethodGet, "/api/account/positions", nil, nil, &env)
	return env.Positions, err
}

// Orders retrieves today's live order snapshots.
func (c *Client) Orders(ctx context.Context) ([]Order, error) {
	var env struct {
		Orders []Order `json:"orders"`
	}
	err := c.do(ctx, http.MethodGet, "/api/account/orders", nil, nil, &env)
	return env.Orders, err
}

// OrderHistory retrieves journaled order snapshots recorded within
// [start, end]. An empty symbol matches every symbol.
func (c *Client) OrderHistory(ctx context.Context, symbol string, start, end time.Time) ([]OrderSnapshot, error) {
	q := url.Values{}
	q.Set("start", start.Format("2006-01-02"))
	q.Set("end", end.Format("2006-01-02"))
	if symbol != "" {
		q.Set("symbol", symbol)
	}

	var env struct {
		Snapshots []OrderSnapshot `json:"snapshots"`
	}
	err := c.do(ctx, http.MethodGet, "/api/account/orders/history", q, nil, &env)
	return env.Snapshots, err
}

// Quotes retrieves intraday quotes keyed by symbol.
func (c *Client) Quotes(ctx context.Context, symbols []string) (map[string]Quote, error) {
	q := url.Values{}
	q.Set("symbols", strings.Join(symbols, ","))

	var env struct {
		Quotes map[string]Quote `json:"quotes"`
	}
	err := c.do(ctx, http.MethodGet, "/api/quotes", q, nil, &env)
	return env.Quotes, err
}

// Prices retrieves daily reference prices keyed by symbol.
func (c *Client) Prices(ctx context.Context, symbols []string) (map[string]PriceInfo, error) {
	q := url.Values{}
	q.Set("symbols", strings.Join(symbols, ","))

	var env struct {
		Prices map[string]PriceInfo `json:"prices"`
	}
	err := c.do(ctx, http.MethodGet, "/api/prices", q, nil, &env)
	return env.Prices, err
}

// Trades retrieves fills whose trade date falls within [start, end].
func (c *Client) Trades(ctx context.Context, start, end time.Time) ([]Order, error) {
	q := url.Values{}
	q.Set("start", start.Format("2006-01-02"))
	q.Set("end", end.Format("2006-01-02"))

	var env struct {
		Trades []Order `json:"trades"`
	}
	err := c.do(ctx, http.MethodGet, "/api/trades", q, nil, &env)
	return env.Trades, err
}

// CreateOrder places an order and returns the venue order id.
func (c *Client) CreateOrder(ctx context.Context, req OrderRequest) (string, error) {
	var env struct {
		OrderID string `json:"order_id"`
	}
	err := c.do(ctx, http.MethodPost, "/api/orders", nil, req, &env)
	return env.OrderID, err
}

// UpdateOrder changes the price or quantity of an open order.
func (c *Client) UpdateOrder(ctx context.Context, orderID string, upd OrderUpdate) error {
	return c.do(ctx, http.MethodPatch, "/api/orders/"+url.PathEscape(orderID), nil, upd, nil)
}

// CancelOrder cancels an open order by id.
func (c *Client) CancelOrder(ctx context.Context, orderID string) error {
	return c.do(ctx, http.MethodDelete, "/api/orders/"+url.PathEscape(orderID), nil, nil, nil)
}

// do performs one API round trip: optional JSON request body, optional JSON
// response decoding, and error envelope handling for non-2xx statuses.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var rd *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		rd = bytes.NewReader(data)
	} else {
		rd = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, rd)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr struct {
			Error string `json:"error"`
		}
		if derr := json.NewDecoder(resp.Body).Decode(&apiErr); derr == nil && apiErr.Error != "" {
			return fmt.Errorf("%s %s: %s (status %d)", method, path, apiErr.Error, resp.StatusCode)
		}
		return fmt.Errorf("%s %s: status %d", method, path, resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}
