// Package openrouter implements the OpenRouter chat-completions adapter.
// OpenRouter fronts many upstream vendors behind one OpenAI-compatible API
// and expects the upstream model name in the "model" field, e.g.
// "anthropic/claude-3.5-sonnet".
package openrouter

import (
	"github.com/digitallysavvy/go-ai/pkg/provider/types"
	"github.com/digitallysavvy/go-ai/pkg/providerutils/openaicompat"
)

// DefaultBaseURL is the default OpenRouter API base URL.
const DefaultBaseURL = "https://openrouter.ai/api/v1"

// Config configures the OpenRouter adapter.
type Config struct {
	APIKey  string
	BaseURL string

	// SiteURL and AppName populate OpenRouter's optional attribution
	// headers (HTTP-Referer, X-Title).
	SiteURL string
	AppName string
}

// New builds an adapter.Adapter backed by OpenRouter's chat-completions
// API.
func New(cfg Config) *openaicompat.Adapter {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	extra := map[string]string{}
	if cfg.SiteURL != "" {
		extra["HTTP-Referer"] = cfg.SiteURL
	}
	if cfg.AppName != "" {
		extra["X-Title"] = cfg.AppName
	}

	return openaicompat.NewAdapter(openaicompat.Config{
		ProviderName: "openrouter",
		BaseURL:      baseURL,
		APIKey:       cfg.APIKey,
		ExtraHeaders: extra,
		CapabilitiesFunc: func(modelName string) types.CapabilityTable {
			return types.CapabilityTable{
				types.CapabilityTools:            true,
				types.CapabilityStreaming:        true,
				types.CapabilityStructuredOutput: true,
				types.CapabilityImageInput:       true,
			}
		},
	})
}
