// Package supastore provides a client for a hosted row-store exposing a
// PostgREST-style REST API. The application stores finished ballots and
// the sentinel config row in a single `votes` table.
package supastore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/vladicamp/campvote/internal/logger"
)

// ErrNotConfigured is returned by the Disabled client. The voter flow
// treats it like any other store failure: logged, surfaced, never fatal.
var ErrNotConfigured = fmt.Errorf("remote store is not configured")

// Row is a generic table row keyed by an auto-assigned identifier
type Row struct {
	ID        int64                  `json:"id,omitempty"`
	Email     string                 `json:"email"`
	Votes     map[string]interface{} `json:"votes"`
	CreatedAt time.Time              `json:"created_at,omitempty"`
}

// Order describes a result ordering for SelectRows
type Order struct {
	Column     string
	Descending bool
}

// param renders the order as a PostgREST order parameter
func (o Order) param() string {
	dir := "asc"
	if o.Descending {
		dir = "desc"
	}
	return o.Column + "." + dir
}

// Client defines the interface for remote row-store operations
type Client interface {
	// InsertRow inserts one row into the table
	InsertRow(ctx context.Context, table string, row Row) error
	// SelectRows returns all rows from the table in the given order
	SelectRows(ctx context.Context, table string, order Order) ([]Row, error)
	// DeleteRowsEq deletes rows where column equals value
	DeleteRowsEq(ctx context.Context, table, column, value string) error
	// DeleteRowsNeq deletes rows where column does not equal value
	DeleteRowsNeq(ctx context.Context, table, column, value string) error
	// Configured reports whether the client can reach a store
	Configured() bool
	// SetConfig updates the connection settings at runtime
	SetConfig(baseURL, key string)
}

// HTTPClient is a real HTTP client for the row store
type HTTPClient struct {
	baseURL    string
	key        string
	httpClient *http.Client
	log        logger.Logger
}

// NewHTTPClient creates a new row-store HTTP client
func NewHTTPClient(baseURL, key string, log logger.Logger) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		key:     key,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		log: log,
	}
}

// NewHTTPClientWithHTTPClient creates a client with a custom http.Client
func NewHTTPClientWithHTTPClient(baseURL, key string, httpClient *http.Client, log logger.Logger) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		key:        key,
		httpClient: httpClient,
		log:        log,
	}
}

// Configured reports whether URL and key are both set
func (c *HTTPClient) Configured() bool {
	return c.baseURL != "" && c.key != ""
}

// SetConfig updates the connection settings at runtime (admin override)
func (c *HTTPClient) SetConfig(baseURL, key string) {
	c.baseURL = strings.TrimRight(baseURL, "/")
	c.key = key
}

// doRequest executes an HTTP request against the store's REST endpoint and
// checks the status. A non-nil out receives the decoded JSON body.
func (c *HTTPClient) doRequest(ctx context.Context, method, table string, query url.Values, body interface{}, out interface{}) error {
	if !c.Configured() {
		return ErrNotConfigured
	}

	reqURL := fmt.Sprintf("%s/rest/v1/%s", c.baseURL, table)
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	c.log.Debug("Store request", "method", method, "url", reqURL)

	req, err := http.NewRequestWithContext(ctx, method, reqURL, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("apikey", c.key)
	req.Header.Set("Authorization", "Bearer "+c.key)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Prefer", "return=minimal")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to connect to store: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	c.log.Debug("Store response", "status", resp.StatusCode, "body", string(respBody))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("store returned status %d: %s", resp.StatusCode, string(respBody))
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("failed to parse response: %w", err)
		}
	}
	return nil
}

// InsertRow inserts one row into the table
func (c *HTTPClient) InsertRow(ctx context.Context, table string, row Row) error {
	// The store assigns id and created_at; send only payload columns
	payload := map[string]interface{}{
		"email": row.Email,
		"votes": row.Votes,
	}
	return c.doRequest(ctx, http.MethodPost, table, nil, []interface{}{payload}, nil)
}

// SelectRows returns all rows from the table in the given order
func (c *HTTPClient) SelectRows(ctx context.Context, table string, order Order) ([]Row, error) {
	query := url.Values{}
	query.Set("select", "*")
	if order.Column != "" {
		query.Set("order", order.param())
	}

	var rows []Row
	if err := c.doRequest(ctx, http.MethodGet, table, query, nil, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// DeleteRowsEq deletes rows where column equals value
func (c *HTTPClient) DeleteRowsEq(ctx context.Context, table, column, value string) error {
	query := url.Values{}
	query.Set(column, "eq."+value)
	return c.doRequest(ctx, http.MethodDelete, table, query, nil, nil)
}

// DeleteRowsNeq deletes rows where column does not equal value
func (c *HTTPClient) DeleteRowsNeq(ctx context.Context, table, column, value string) error {
	query := url.Values{}
	query.Set(column, "neq."+value)
	return c.doRequest(ctx, http.MethodDelete, table, query, nil, nil)
}

// Ensure HTTPClient implements Client
var _ Client = (*HTTPClient)(nil)

// Disabled is a client used when no store configuration could be resolved.
// Every operation fails with ErrNotConfigured.
type Disabled struct{}

func (Disabled) InsertRow(ctx context.Context, table string, row Row) error { return ErrNotConfigured }
func (Disabled) SelectRows(ctx context.Context, table string, order Order) ([]Row, error) {
	return nil, ErrNotConfigured
}
func (Disabled) DeleteRowsEq(ctx context.Context, table, column, value string) error {
	return ErrNotConfigured
}
func (Disabled) DeleteRowsNeq(ctx context.Context, table, column, value string) error {
	return ErrNotConfigured
}
func (Disabled) Configured() bool          { return false }
func (Disabled) SetConfig(baseURL, key string) {}

var _ Client = Disabled{}
