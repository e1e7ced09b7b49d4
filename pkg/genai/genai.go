// Package genai provides a client for an external text-generation API,
// used to turn a completed ballot into humorous commentary.
package genai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/vladicamp/campvote/internal/logger"
)

const (
	defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	defaultModel   = "gemini-2.5-flash"
)

// ErrNoAPIKey is returned when the client has no credential configured
var ErrNoAPIKey = fmt.Errorf("generation API key is not configured")

// Client defines the interface for text generation
type Client interface {
	// Generate produces free text from a prompt
	Generate(ctx context.Context, prompt string) (string, error)
	// Configured reports whether a credential is available
	Configured() bool
}

// request/response shapes of the generateContent endpoint

type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

// HTTPClient is a real HTTP client for the text-generation API
type HTTPClient struct {
	baseURL    string
	model      string
	apiKey     string
	httpClient *http.Client
	log        logger.Logger
}

// NewHTTPClient creates a new generation client
func NewHTTPClient(apiKey string, log logger.Logger) *HTTPClient {
	return &HTTPClient{
		baseURL: defaultBaseURL,
		model:   defaultModel,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		log: log,
	}
}

// NewHTTPClientWithHTTPClient creates a client with a custom http.Client
// and base URL (for tests against httptest servers)
func NewHTTPClientWithHTTPClient(baseURL, apiKey string, httpClient *http.Client, log logger.Logger) *HTTPClient {
	return &HTTPClient{
		baseURL:    baseURL,
		model:      defaultModel,
		apiKey:     apiKey,
		httpClient: httpClient,
		log:        log,
	}
}

// Configured reports whether a credential is available
func (c *HTTPClient) Configured() bool {
	return c.apiKey != ""
}

// Generate produces free text from a prompt
func (c *HTTPClient) Generate(ctx context.Context, prompt string) (string, error) {
	if !c.Configured() {
		return "", ErrNoAPIKey
	}

	reqURL := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.baseURL, c.model, c.apiKey)

	body, err := json.Marshal(generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode request: %w", err)
	}

	c.log.Debug("Generation request", "model", c.model, "prompt_len", len(prompt))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to connect to generation API: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	c.log.Debug("Generation response", "status", resp.StatusCode)

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("generation API returned status %d: %s", resp.StatusCode, string(respBody))
	}

	var parsed generateResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}

	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("generation API returned no candidates")
	}
	return parsed.Candidates[0].Content.Parts[0].Text, nil
}

// Ensure HTTPClient implements Client
var _ Client = (*HTTPClient)(nil)
