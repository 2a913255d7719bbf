// Package xai implements the xAI Grok chat-completions adapter. Grok's
// API is OpenAI-compatible for chat completions.
package xai

import (
	"strings"

	"github.com/digitallysavvy/go-ai/pkg/provider/types"
	"github.com/digitallysavvy/go-ai/pkg/providerutils/openaicompat"
)

// DefaultBaseURL is the default xAI API base URL.
const DefaultBaseURL = "https://api.x.ai/v1"

// Config configures the xAI adapter.
type Config struct {
	APIKey  string
	BaseURL string
}

// New builds an adapter.Adapter backed by xAI's chat-completions API.
func New(cfg Config) *openaicompat.Adapter {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	return openaicompat.NewAdapter(openaicompat.Config{
		ProviderName:     "xai",
		BaseURL:          baseURL,
		APIKey:           cfg.APIKey,
		CapabilitiesFunc: capabilities,
	})
}

func capabilities(modelName string) types.CapabilityTable {
	vision := strings.Contains(modelName, "vision") || strings.HasPrefix(modelName, "grok-4")
	return types.CapabilityTable{
		types.CapabilityTools:            true,
		types.CapabilityStreaming:        true,
		types.CapabilityStructuredOutput: true,
		types.CapabilityImageInput:       vision,
		types.CapabilityReasoning:        strings.Contains(modelName, "reasoning") || strings.HasPrefix(modelName, "grok-3-mini"),
	}
}
