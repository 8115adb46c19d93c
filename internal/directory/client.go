// Package directory talks to the central directory service that indexes
// registered client identities, and waits for new clients to become
// searchable.
package directory

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Match is one client identity returned by a directory search.
type Match struct {
	Name string `json:"name"`
}

// Searcher abstracts the directory's client search. The filter is a
// name-based expression such as "name:web-01".
type Searcher interface {
	SearchClients(ctx context.Context, filter string) ([]Match, error)
}

// Client queries the directory service over HTTP.
type Client struct {
	address    string
	token      string
	httpClient *http.Client
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithToken sets the bearer token sent on directory requests.
func WithToken(token string) ClientOption {
	return func(c *Client) {
		c.token = token
	}
}

// withHTTPClient overrides the HTTP client used for directory calls. This
// is intended for testing only.
func withHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// NewClient creates a directory client pointed at the given address.
func NewClient(address string, opts ...ClientOption) (*Client, error) {
	if address == "" {
		return nil, fmt.Errorf("directory address is required")
	}

	c := &Client{
		address:    strings.TrimRight(address, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// searchResponse represents the relevant fields from the directory's
// search endpoint.
type searchResponse struct {
	Results []Match `json:"results"`
}

// SearchClients queries the directory for clients matching the filter and
// returns the matches in directory order.
func (c *Client) SearchClients(ctx context.Context, filter string) ([]Match, error) {
	endpoint := c.address + "/v1/search/client?q=" + url.QueryEscape(filter)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var result searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	return result.Results, nil
}
