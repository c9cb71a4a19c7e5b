package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// Client sends a conversation to a hosted model and returns one completion.
type Client interface {
	Complete(ctx context.Context, messages []Message) (*Response, error)
	Provider() Provider
	Model() string
}

// NewClient creates the client for opts.Provider.
func NewClient(opts Options) (Client, error) {
	if opts.APIKey == "" {
		return nil, fmt.Errorf("%s environment variable required", CredentialEnv(opts.Provider))
	}
	if opts.Model == "" {
		opts.Model = DefaultModel(opts.Provider)
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = DefaultMaxTokens
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}

	switch opts.Provider {
	case ProviderAnthropic:
		c := NewAnthropicClient(opts.APIKey, opts.Model)
		c.maxTokens = opts.MaxTokens
		c.httpClient.Timeout = opts.Timeout
		if opts.BaseURL != "" {
			c.baseURL = opts.BaseURL
		}
		return c, nil
	case ProviderOpenAI:
		c := NewOpenAIClient(opts.APIKey, opts.Model)
		c.maxTokens = opts.MaxTokens
		c.httpClient.Timeout = opts.Timeout
		if opts.BaseURL != "" {
			c.baseURL = opts.BaseURL
		}
		return c, nil
	case ProviderGoogle:
		c := NewGoogleClient(opts.APIKey, opts.Model)
		c.maxTokens = opts.MaxTokens
		c.httpClient.Timeout = opts.Timeout
		c.baseURL = opts.BaseURL
		return c, nil
	default:
		return nil, fmt.Errorf("unknown provider %q", opts.Provider)
	}
}

// DefaultModel returns the model used when none is configured.
func DefaultModel(p Provider) string {
	switch p {
	case ProviderOpenAI:
		return "gpt-4o-mini"
	case ProviderGoogle:
		return "gemini-2.5-flash"
	default:
		return "claude-3-5-haiku-20241022"
	}
}

// CredentialEnv returns the environment variable holding the provider API key.
func CredentialEnv(p Provider) string {
	switch p {
	case ProviderOpenAI:
		return "OPENAI_API_KEY"
	case ProviderGoogle:
		return "GOOGLE_API_KEY"
	default:
		return "ANTHROPIC_API_KEY"
	}
}

// ValidProvider reports whether p names a supported provider.
func ValidProvider(p Provider) bool {
	switch p {
	case ProviderAnthropic, ProviderOpenAI, ProviderGoogle:
		return true
	}
	return false
}

// postJSON sends body as JSON and decodes a 200 response into out.
func postJSON(ctx context.Context, hc *http.Client, url string, headers map[string]string, body, out any) error {
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(jsonBody))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := hc.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("API error (%d): %s", resp.StatusCode, string(respBody))
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}
