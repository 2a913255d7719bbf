// Package mistral implements the Mistral AI chat-completions adapter.
package mistral

import (
	"github.com/digitallysavvy/go-ai/pkg/provider/types"
	"github.com/digitallysavvy/go-ai/pkg/providerutils/openaicompat"
)

// DefaultBaseURL is the default Mistral AI API base URL.
const DefaultBaseURL = "https://api.mistral.ai/v1"

// Config configures the Mistral adapter.
type Config struct {
	APIKey  string
	BaseURL string
}

// New builds an adapter.Adapter backed by Mistral's chat-completions API.
func New(cfg Config) *openaicompat.Adapter {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	return openaicompat.NewAdapter(openaicompat.Config{
		ProviderName: "mistral",
		BaseURL:      baseURL,
		APIKey:       cfg.APIKey,
		CapabilitiesFunc: func(modelName string) types.CapabilityTable {
			return types.CapabilityTable{
				types.CapabilityTools:            true,
				types.CapabilityStreaming:        true,
				types.CapabilityStructuredOutput: true,
				types.CapabilityImageInput:       modelName == "pixtral-large-latest" || modelName == "pixtral-12b",
			}
		},
	})
}
