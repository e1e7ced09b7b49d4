package genai

import "context"

// MockClient is a mock generation client for testing
type MockClient struct {
	text        string
	generateErr error
	configured  bool
	prompts     []string
}

// MockOption configures the mock client
type MockOption func(*MockClient)

// WithText sets the text to return from Generate
func WithText(text string) MockOption {
	return func(m *MockClient) {
		m.text = text
	}
}

// WithGenerateError sets an error to return from Generate
func WithGenerateError(err error) MockOption {
	return func(m *MockClient) {
		m.generateErr = err
	}
}

// WithUnconfigured makes the mock report no credential
func WithUnconfigured() MockOption {
	return func(m *MockClient) {
		m.configured = false
	}
}

// NewMockClient creates a new mock generation client
func NewMockClient(opts ...MockOption) *MockClient {
	m := &MockClient{
		text:       "mock analysis",
		configured: true,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Generate returns the configured text or error and records the prompt
func (m *MockClient) Generate(ctx context.Context, prompt string) (string, error) {
	if !m.configured {
		return "", ErrNoAPIKey
	}
	if m.generateErr != nil {
		return "", m.generateErr
	}
	m.prompts = append(m.prompts, prompt)
	return m.text, nil
}

// Configured reports the configured flag
func (m *MockClient) Configured() bool {
	return m.configured
}

// Prompts returns the prompts passed to Generate (test helper)
func (m *MockClient) Prompts() []string {
	return m.prompts
}

// Ensure MockClient implements Client
var _ Client = (*MockClient)(nil)
