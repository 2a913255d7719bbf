// Package together implements the Together AI chat-completions adapter.
package together

import (
	"github.com/digitallysavvy/go-ai/pkg/provider/types"
	"github.com/digitallysavvy/go-ai/pkg/providerutils/openaicompat"
)

// DefaultBaseURL is the default Together AI API base URL.
const DefaultBaseURL = "https://api.together.xyz/v1"

// Config configures the Together AI adapter.
type Config struct {
	APIKey  string
	BaseURL string
}

// New builds an adapter.Adapter backed by Together's chat-completions API.
func New(cfg Config) *openaicompat.Adapter {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	return openaicompat.NewAdapter(openaicompat.Config{
		ProviderName: "together",
		BaseURL:      baseURL,
		APIKey:       cfg.APIKey,
		CapabilitiesFunc: func(modelName string) types.CapabilityTable {
			return types.CapabilityTable{
				types.CapabilityTools:            true,
				types.CapabilityStreaming:        true,
				types.CapabilityStructuredOutput: true,
				types.CapabilityImageInput:       false,
			}
		},
	})
}
