// Package openai implements the OpenAI chat-completions adapter.
package openai

import (
	"strings"

	"github.com/digitallysavvy/go-ai/pkg/provider/types"
	"github.com/digitallysavvy/go-ai/pkg/providerutils/openaicompat"
)

// DefaultBaseURL is the default OpenAI API base URL.
const DefaultBaseURL = "https://api.openai.com/v1"

// Config configures the OpenAI adapter.
type Config struct {
	APIKey       string
	BaseURL      string
	Organization string
	Project      string
}

// New builds an adapter.Adapter backed by OpenAI's chat-completions API.
func New(cfg Config) *openaicompat.Adapter {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	extra := map[string]string{}
	if cfg.Organization != "" {
		extra["OpenAI-Organization"] = cfg.Organization
	}
	if cfg.Project != "" {
		extra["OpenAI-Project"] = cfg.Project
	}

	return openaicompat.NewAdapter(openaicompat.Config{
		ProviderName:     "openai",
		BaseURL:          baseURL,
		APIKey:           cfg.APIKey,
		ExtraHeaders:     extra,
		CapabilitiesFunc: capabilities,
	})
}

// capabilities reports OpenAI's per-model feature support. Reasoning
// models (o1/o3/o4, and the gpt-5 family apart from its -chat variants)
// don't accept sampling parameters the way chat models do, but they
// support tools and structured output; only vision-capable chat models
// accept images. Parallel tool calls are reported off for the o-series.
func capabilities(modelName string) types.CapabilityTable {
	oSeries := strings.HasPrefix(modelName, "o1") ||
		strings.HasPrefix(modelName, "o3") ||
		strings.HasPrefix(modelName, "o4")
	reasoning := oSeries ||
		(strings.HasPrefix(modelName, "gpt-5") && !strings.Contains(modelName, "-chat"))

	vision := strings.Contains(modelName, "gpt-4o") ||
		strings.Contains(modelName, "gpt-4.1") ||
		strings.Contains(modelName, "gpt-5") ||
		modelName == ModelGPT4Turbo

	return types.CapabilityTable{
		types.CapabilityTools:            true,
		types.CapabilityStreaming:        true,
		types.CapabilityStructuredOutput: true,
		types.CapabilityImageInput:       vision,
		types.CapabilityReasoning:        reasoning,
		types.CapabilityParallelToolCall: !oSeries,
	}
}
