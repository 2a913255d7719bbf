// Package groq implements the Groq chat-completions adapter. Groq's API
// is OpenAI-compatible.
package groq

import (
	"github.com/digitallysavvy/go-ai/pkg/provider/types"
	"github.com/digitallysavvy/go-ai/pkg/providerutils/openaicompat"
)

// DefaultBaseURL is the default Groq API base URL.
const DefaultBaseURL = "https://api.groq.com/openai/v1"

// Config configures the Groq adapter.
type Config struct {
	APIKey  string
	BaseURL string
}

// New builds an adapter.Adapter backed by Groq's chat-completions API.
func New(cfg Config) *openaicompat.Adapter {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	return openaicompat.NewAdapter(openaicompat.Config{
		ProviderName: "groq",
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
