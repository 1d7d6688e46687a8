// Package mealsync notifies the remote backend about logged meals.
package mealsync

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	// DefaultEndpoint is the backend's calorie-tracker route.
	DefaultEndpoint = "http://127.0.0.1:5000/api/calorie-tracker"
	defaultTimeout  = 10 * time.Second
	maxDrain        = 64 << 10
	userAgent       = "foogie/1.0"
)

// ErrNoEndpoint is returned by New when the endpoint is blank.
var ErrNoEndpoint = errors.New("mealsync: no endpoint configured")

// Meal is the notification body.
type Meal struct {
	Calories   float64 `json:"calories"`
	RecipeName string  `json:"recipe_name"`
}

// Client posts meal notifications. The response status is not inspected:
// only transport-level failures are reported.
type Client struct {
	endpoint string
	timeout  time.Duration
	http     *http.Client
}

// New creates a client for endpoint. A zero timeout uses the default.
func New(endpoint string, timeout time.Duration) (*Client, error) {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		return nil, ErrNoEndpoint
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		endpoint: endpoint,
		timeout:  timeout,
		http:     &http.Client{},
	}, nil
}

// Endpoint returns the URL notifications are sent to.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// SyncMeal sends one notification.
func (c *Client) SyncMeal(ctx context.Context, m Meal) error {
	body, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("mealsync: encoding body: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("mealsync: creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("X-Request-ID", uuid.NewString())

	//nolint:gosec // endpoint comes from local config
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("mealsync: request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	// Drain so the connection can be reused.
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxDrain))
	return nil
}
