// Package feed provides a client for the external statement feed that
// exports raw financial statement records as CSV.
package feed

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client is an HTTP client for the statement feed.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// NewClient creates a statement feed client for the given base URL.
func NewClient(baseURL string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    baseURL,
	}
}

// FetchStatements downloads the feed's current statement export. The caller
// must close the returned body. token may be empty for unauthenticated feeds.
func (c *Client) FetchStatements(ctx context.Context, token string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create feed request: %w", err)
	}
	req.Header.Set("Accept", "text/csv")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch statement feed: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("statement feed returned status %d", resp.StatusCode)
	}

	return resp.Body, nil
}
