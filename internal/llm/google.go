package llm

import (
	"context"
	"fmt"
	"net/http"

	"google.golang.org/genai"
)

// GoogleClient implements Client for Google Gemini through the genai SDK
type GoogleClient struct {
	apiKey     string
	model      string
	maxTokens  int
	httpClient *http.Client
	baseURL    string // empty uses the SDK default endpoint
}

// NewGoogleClient creates a new Google Gemini client
func NewGoogleClient(apiKey, model string) *GoogleClient {
	return &GoogleClient{
		apiKey:     apiKey,
		model:      model,
		maxTokens:  DefaultMaxTokens,
		httpClient: &http.Client{Timeout: DefaultTimeout},
	}
}

// Complete sends a request to Google Gemini
func (c *GoogleClient) Complete(ctx context.Context, messages []Message) (*Response, error) {
	cfg := &genai.ClientConfig{
		APIKey:     c.apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: c.httpClient,
	}
	if c.baseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: c.baseURL}
	}

	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("google: failed to create client: %w", err)
	}

	genCfg := &genai.GenerateContentConfig{
		MaxOutputTokens: int32(c.maxTokens),
	}

	contents := make([]*genai.Content, 0, len(messages))
	for _, msg := range messages {
		switch msg.Role {
		case "system":
			genCfg.SystemInstruction = genai.NewContentFromText(msg.Content, genai.RoleUser)
		case "assistant":
			// Gemini calls the assistant role "model"
			contents = append(contents, genai.NewContentFromText(msg.Content, genai.RoleModel))
		default:
			contents = append(contents, genai.NewContentFromText(msg.Content, genai.RoleUser))
		}
	}

	resp, err := client.Models.GenerateContent(ctx, c.model, contents, genCfg)
	if err != nil {
		return nil, fmt.Errorf("google: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return nil, fmt.Errorf("google: empty response from model")
	}

	out := &Response{
		Content: text,
		Model:   c.model,
	}
	if resp.ModelVersion != "" {
		out.Model = resp.ModelVersion
	}
	if resp.UsageMetadata != nil {
		out.InputTokens = int(resp.UsageMetadata.PromptTokenCount)
		out.OutputTokens = int(resp.UsageMetadata.CandidatesTokenCount)
	}
	return out, nil
}

// Provider returns the provider name
func (c *GoogleClient) Provider() Provider {
	return ProviderGoogle
}

// Model returns the model name
func (c *GoogleClient) Model() string {
	return c.model
}
