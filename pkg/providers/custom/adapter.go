// Package custom implements a generic OpenAI-compatible adapter for
// self-hosted or unlisted endpoints (vLLM, LM Studio, llama.cpp server,
// etc.) that speak the chat-completions wire format.
package custom

import (
	"github.com/digitallysavvy/go-ai/pkg/provider/types"
	"github.com/digitallysavvy/go-ai/pkg/providerutils/openaicompat"
)

// Config configures a custom OpenAI-compatible adapter. BaseURL is
// required; there is no sensible default for a self-hosted endpoint.
type Config struct {
	Name       string
	BaseURL    string
	APIKey     string
	AuthHeader string

	// Capabilities overrides the default (everything true). Self-hosted
	// runtimes vary widely in what they actually support.
	Capabilities types.CapabilityTable
}

// New builds an adapter.Adapter backed by an arbitrary OpenAI-compatible
// endpoint.
func New(cfg Config) *openaicompat.Adapter {
	name := cfg.Name
	if name == "" {
		name = "custom"
	}

	caps := cfg.Capabilities
	var capsFunc func(string) types.CapabilityTable
	if caps != nil {
		capsFunc = func(string) types.CapabilityTable { return caps }
	}

	return openaicompat.NewAdapter(openaicompat.Config{
		ProviderName:     name,
		BaseURL:          cfg.BaseURL,
		APIKey:           cfg.APIKey,
		AuthHeader:       cfg.AuthHeader,
		CapabilitiesFunc: capsFunc,
	})
}
