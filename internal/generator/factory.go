package generator

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/dshills/paragen/internal/config"
	"github.com/dshills/paragen/pkg/types"
)

// New creates a provider from explicit configuration.
func New(ctx context.Context, cfg config.ProviderConfig) (Provider, error) {
	switch strings.ToLower(cfg.Name) {
	case ProviderOpenAI:
		return NewOpenAIProvider(cfg.APIKey, cfg.Model, cfg.BaseURL)
	case ProviderGemini:
		return NewGeminiProvider(ctx, cfg.APIKey, cfg.Model)
	case "":
		return NewFromEnv(ctx)
	default:
		return nil, fmt.Errorf("%w: %s", types.ErrUnsupportedModel, cfg.Name)
	}
}

// NewFromEnv creates a provider based on environment variables.
// Priority:
// 1. PARAGEN_PROVIDER (openai, gemini)
// 2. Check for API keys: OPENAI_API_KEY, GEMINI_API_KEY
func NewFromEnv(ctx context.Context) (Provider, error) {
	provider := strings.ToLower(os.Getenv("PARAGEN_PROVIDER"))
	openaiKey := os.Getenv("OPENAI_API_KEY")
	geminiKey := os.Getenv("GEMINI_API_KEY")

	switch provider {
	case ProviderOpenAI:
		return NewOpenAIProvider(openaiKey, "", "")
	case ProviderGemini:
		return NewGeminiProvider(ctx, geminiKey, "")
	case "":
		// Auto-detect based on available API keys
		if openaiKey != "" {
			return NewOpenAIProvider(openaiKey, "", "")
		}
		if geminiKey != "" {
			return NewGeminiProvider(ctx, geminiKey, "")
		}
		return nil, fmt.Errorf("%w: set OPENAI_API_KEY or GEMINI_API_KEY", types.ErrNoProviderEnabled)
	default:
		return nil, fmt.Errorf("%w: unknown provider %s", types.ErrUnsupportedModel, provider)
	}
}
