package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Fetcher retrieves one reference lookup table from the master-data service.
type Fetcher interface {
	FetchCatalog(ctx context.Context, kind Kind) ([]Entry, error)
}

// Client fetches reference data over HTTP from the master-data service.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// NewClient constructs a master-data HTTP client.
func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: timeout},
	}
}

type catalogResponse struct {
	Items []Entry `json:"items"`
}

// FetchCatalog loads all entries of one kind.
func (c *Client) FetchCatalog(ctx context.Context, kind Kind) ([]Entry, error) {
	url := fmt.Sprintf("%s/masterdata/%s", c.baseURL, kind)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("catalog: build request: %w", err)
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: fetch %s: %v", ErrUnavailable, kind, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: fetch %s: status %d", ErrUnavailable, kind, resp.StatusCode)
	}

	var payload catalogResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("catalog: decode %s: %w", kind, err)
	}
	return payload.Items, nil
}
