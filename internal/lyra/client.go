// Package lyra is the HTTP client for the upstream Lyra fulfilment API.
//
// All calls carry bearer-token authorization and a per-call timeout so a
// single slow upstream response cannot stall a batch or an export
// indefinitely.
package lyra

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// UpstreamError is a non-2xx response from the Lyra API.
type UpstreamError struct {
	Status int
	Body   string
}

func (e *UpstreamError) Error() string {
	body := e.Body
	if len(body) > 200 {
		body = body[:200] + "..."
	}
	return fmt.Sprintf("lyra api returned %d: %s", e.Status, body)
}

// Client talks to the Lyra API.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// New creates a Client. timeout applies to each individual call.
func New(baseURL, token string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: timeout},
	}
}

// SubmitOrder posts one order submission and returns the raw acknowledgement
// body.
func (c *Client) SubmitOrder(ctx context.Context, sub OrderSubmission) (json.RawMessage, error) {
	payload, err := json.Marshal(sub)
	if err != nil {
		return nil, fmt.Errorf("encode order submission: %w", err)
	}

	body, err := c.do(ctx, http.MethodPost, "/order", nil, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	return json.RawMessage(body), nil
}

// ListOrders fetches one page of the order listing and decodes it,
// tolerating the upstream's layout variants.
func (c *Client) ListOrders(ctx context.Context, query url.Values) (*OrdersPage, error) {
	body, err := c.do(ctx, http.MethodGet, "/orders", query, nil)
	if err != nil {
		return nil, err
	}
	return DecodeOrdersPage(body)
}

// ListProducts fetches the product catalog in a single large page.
func (c *Client) ListProducts(ctx context.Context, perPage int) ([]Product, error) {
	query := url.Values{}
	query.Set("per_page", strconv.Itoa(perPage))

	body, err := c.do(ctx, http.MethodGet, "/products", query, nil)
	if err != nil {
		return nil, err
	}

	// The catalog listing nests entries under "data".
	var envelope struct {
		Data []Product `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("decode product catalog: %w", err)
	}
	return envelope.Data, nil
}

// Forward performs a GET against the given upstream path and returns the raw
// JSON body. Used by the pass-through listing endpoints.
func (c *Client) Forward(ctx context.Context, path string, query url.Values) (json.RawMessage, error) {
	body, err := c.do(ctx, http.MethodGet, path, query, nil)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(body), nil
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body io.Reader) ([]byte, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, fmt.Errorf("build request %s %s: %w", method, path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response of %s %s: %w", method, path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &UpstreamError{Status: resp.StatusCode, Body: string(data)}
	}

	return data, nil
}
