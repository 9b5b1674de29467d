package generator

import "context"

// Provider names
const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"

	// Default models
	DefaultOpenAIModel = "gpt-5"
	DefaultGeminiModel = "gemini-2.5-flash"
)

// Provider defines a single completion call against an external
// text-generation service.
type Provider interface {
	// Complete sends a prompt and returns the raw completion text.
	Complete(ctx context.Context, prompt string) (string, error)

	// Name returns the provider name
	Name() string

	// Model returns the model name
	Model() string

	// Close releases any resources held by the provider
	Close() error
}
