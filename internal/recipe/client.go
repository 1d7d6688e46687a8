package recipe

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	// DefaultBaseURL is where the backend runs in development.
	DefaultBaseURL = "http://127.0.0.1:5000"
	requestTimeout = 90 * time.Second
	maxBodySize    = 4 << 20
	userAgent      = "foogie/1.0"
)

var (
	// ErrNoInventory means the backend had nothing in the fridge to cook with.
	ErrNoInventory = errors.New("recipe: no inventory available")
	// ErrMissingBin is returned by Consume without a bin id.
	ErrMissingBin = errors.New("recipe: inventory bin id required")
)

// GenerateRequest is the body of POST /api/generate-recipes.
type GenerateRequest struct {
	NumRecipes            int    `json:"num_recipes"`
	DietaryRestrictions   string `json:"dietary_restrictions"`
	CuisinePreference     string `json:"cuisine_preference"`
	TargetCaloriesPerMeal int    `json:"target_calories_per_meal"`
}

type generateResponse struct {
	Recipes []Recipe `json:"recipes"`
	Error   string   `json:"error"`
}

type consumeRequest struct {
	RecipeName         string   `json:"recipe_name"`
	InventoryItemsUsed []string `json:"inventory_items_used"`
}

// Client talks to the recipe backend.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a client rooted at baseURL.
func NewClient(baseURL string) *Client {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{},
	}
}

// Generate asks the backend for recipes built from the current inventory.
func (c *Client) Generate(ctx context.Context, req GenerateRequest) ([]Recipe, error) {
	req.DietaryRestrictions = strings.TrimSpace(req.DietaryRestrictions)
	req.CuisinePreference = strings.TrimSpace(req.CuisinePreference)

	status, body, err := c.post(ctx, "/api/generate-recipes", req)
	if err != nil {
		return nil, err
	}

	var resp generateResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("recipe: parsing response: %w", err)
	}

	if status < 200 || status >= 300 {
		if strings.Contains(resp.Error, "No inventory") || strings.Contains(resp.Error, "empty") {
			return nil, ErrNoInventory
		}
		if resp.Error == "" {
			resp.Error = "failed to generate recipes"
		}
		return nil, fmt.Errorf("recipe: %s (status %d)", resp.Error, status)
	}
	if len(resp.Recipes) == 0 {
		return nil, ErrNoInventory
	}
	return resp.Recipes, nil
}

// Consume tells the inventory bin that r's fridge items were used up.
func (c *Client) Consume(ctx context.Context, binID string, r Recipe) error {
	binID = strings.TrimSpace(binID)
	if binID == "" {
		return ErrMissingBin
	}

	items := r.InventoryItemsUsed
	if items == nil {
		items = []string{}
	}
	status, body, err := c.post(ctx, "/api/consume/"+url.PathEscape(binID), consumeRequest{
		RecipeName:         r.Name,
		InventoryItemsUsed: items,
	})
	if err != nil {
		return err
	}
	if status < 200 || status >= 300 {
		var e struct {
			Error string `json:"error"`
		}
		_ = json.Unmarshal(body, &e)
		if e.Error == "" {
			e.Error = http.StatusText(status)
		}
		return fmt.Errorf("recipe: consume: %s (status %d)", e.Error, status)
	}
	return nil
}

func (c *Client) post(ctx context.Context, path string, payload any) (int, []byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return 0, nil, fmt.Errorf("recipe: encoding request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return 0, nil, fmt.Errorf("recipe: creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("X-Request-ID", uuid.NewString())

	//nolint:gosec // base URL comes from local config
	resp, err := c.http.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("recipe: request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return 0, nil, fmt.Errorf("recipe: reading response: %w", err)
	}
	return resp.StatusCode, body, nil
}
