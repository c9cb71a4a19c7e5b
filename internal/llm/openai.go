package llm

import (
	"context"
	"fmt"
	"net/http"
)

// OpenAIClient implements Client for OpenAI-compatible chat completion endpoints.
// Pointing baseURL at Ollama or vLLM serves a self-hosted model.
type OpenAIClient struct {
	apiKey     string
	model      string
	maxTokens  int
	httpClient *http.Client
	baseURL    string
}

// NewOpenAIClient creates a new OpenAI client
func NewOpenAIClient(apiKey, model string) *OpenAIClient {
	return &OpenAIClient{
		apiKey:     apiKey,
		model:      model,
		maxTokens:  DefaultMaxTokens,
		httpClient: &http.Client{Timeout: DefaultTimeout},
		baseURL:    "https://api.openai.com/v1",
	}
}

type openAIRequest struct {
	Model     string          `json:"model"`
	Messages  []openAIMessage `json:"messages"`
	MaxTokens int             `json:"max_tokens,omitempty"`
}

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIResponse struct {
	ID      string         `json:"id"`
	Choices []openAIChoice `json:"choices"`
	Usage   openAIUsage    `json:"usage"`
	Model   string         `json:"model"`
}

type openAIChoice struct {
	Message      openAIMessage `json:"message"`
	FinishReason string        `json:"finish_reason"`
}

type openAIUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
}

// Complete sends a request to the chat completions endpoint
func (c *OpenAIClient) Complete(ctx context.Context, messages []Message) (*Response, error) {
	openAIMessages := make([]openAIMessage, len(messages))
	for i, msg := range messages {
		openAIMessages[i] = openAIMessage{Role: msg.Role, Content: msg.Content}
	}

	reqBody := openAIRequest{
		Model:     c.model,
		Messages:  openAIMessages,
		MaxTokens: c.maxTokens,
	}
	headers := map[string]string{"Authorization": "Bearer " + c.apiKey}

	var resp openAIResponse
	if err := postJSON(ctx, c.httpClient, c.baseURL+"/chat/completions", headers, reqBody, &resp); err != nil {
		return nil, fmt.Errorf("openai: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("openai: no response choices")
	}

	model := resp.Model
	if model == "" {
		model = c.model
	}

	return &Response{
		Content:      resp.Choices[0].Message.Content,
		InputTokens:  resp.Usage.PromptTokens,
		OutputTokens: resp.Usage.CompletionTokens,
		Model:        model,
	}, nil
}

// Provider returns the provider name
func (c *OpenAIClient) Provider() Provider {
	return ProviderOpenAI
}

// Model returns the model name
func (c *OpenAIClient) Model() string {
	return c.model
}
