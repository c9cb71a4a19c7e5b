package llm

import "time"

// Provider represents an LLM provider
type Provider string

const (
	ProviderAnthropic Provider = "anthropic"
	ProviderOpenAI    Provider = "openai"
	ProviderGoogle    Provider = "google"
)

// DefaultMaxTokens bounds the length of a single completion.
const DefaultMaxTokens = 1024

// DefaultTimeout bounds a single completion request.
const DefaultTimeout = 60 * time.Second

// Message is a single chat message sent to a provider.
type Message struct {
	Role    string `json:"role"` // "system", "user" or "assistant"
	Content string `json:"content"`
}

// Response is the text completion returned by a provider.
type Response struct {
	Content      string `json:"content"`
	InputTokens  int    `json:"input_tokens"`
	OutputTokens int    `json:"output_tokens"`
	Model        string `json:"model"`
}

// Options configures a provider client.
type Options struct {
	Provider  Provider
	Model     string // empty selects the provider default
	APIKey    string
	BaseURL   string // empty selects the provider endpoint
	MaxTokens int
	Timeout   time.Duration
}
