// Package storefront is the HTTP client for the external e-commerce
// stock-update endpoint. The endpoint accepts a map of storefront product ids
// to target stock quantities and answers {"message"} on success or
// {"error","details"} on failure.
package storefront

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const defaultTimeout = 30 * time.Second

// APIError is a failure reported by the storefront endpoint itself, as
// opposed to a transport-level failure.
type APIError struct {
	StatusCode int
	Message    string
	Details    json.RawMessage
}

func (e *APIError) Error() string {
	return fmt.Sprintf("storefront API error (HTTP %d): %s", e.StatusCode, e.Message)
}

type updateStockRequest struct {
	ProductsToUpdate map[string]int `json:"productsToUpdate"`
}

type updateStockResponse struct {
	Message string          `json:"message"`
	Error   string          `json:"error"`
	Details json.RawMessage `json:"details"`
}

type Client struct {
	endpoint   string
	token      string // optional bearer credential for the authenticated deployment variant
	httpClient *http.Client
}

func NewClient(endpoint, token string) *Client {
	return &Client{
		endpoint:   endpoint,
		token:      token,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
}

// UpdateStock POSTs the target quantities and returns the endpoint's success
// message. The call is stateless and carries no idempotency key; callers may
// simply resend current counts.
func (c *Client) UpdateStock(ctx context.Context, products map[string]int) (string, error) {
	body, err := json.Marshal(updateStockRequest{ProductsToUpdate: products})
	if err != nil {
		return "", fmt.Errorf("failed to encode sync payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build sync request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("network error: %w", err)
	}
	defer resp.Body.Close()

	var decoded updateStockResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return "", nil
		}
		return "", &APIError{StatusCode: resp.StatusCode, Message: "unreadable response from storefront"}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := decoded.Error
		if msg == "" {
			msg = "unknown server error"
		}
		return "", &APIError{StatusCode: resp.StatusCode, Message: msg, Details: decoded.Details}
	}

	return decoded.Message, nil
}
