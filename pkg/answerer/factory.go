package answerer

import (
	"fmt"

	"go.uber.org/zap"
)

// Provider constants for the client factory.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

// ClientConfig holds configuration for creating an LLM client.
type ClientConfig struct {
	Provider string // "openai" (default, covers OpenAI-compatible endpoints) or "anthropic"
	Endpoint string // Optional base URL override
	Model    string
	APIKey   string
}

// NewClient creates the LLM client for the configured provider.
func NewClient(cfg *ClientConfig, logger *zap.Logger) (Client, error) {
	switch cfg.Provider {
	case "", ProviderOpenAI:
		return NewOpenAIClient(cfg, logger)
	case ProviderAnthropic:
		return NewAnthropicClient(cfg, logger)
	default:
		return nil, fmt.Errorf("unknown answerer provider %q", cfg.Provider)
	}
}
