// Package azure implements the Azure OpenAI chat-completions adapter.
// Azure addresses models by deployment name rather than model name, and
// pins the API surface with an api-version query parameter instead of a
// path segment.
package azure

import (
	"fmt"

	"github.com/digitallysavvy/go-ai/pkg/provider/types"
	"github.com/digitallysavvy/go-ai/pkg/providerutils/openaicompat"
)

// DefaultAPIVersion is used when Config.APIVersion is empty.
const DefaultAPIVersion = "2024-10-21"

// Config configures the Azure OpenAI adapter.
type Config struct {
	APIKey       string
	ResourceName string

	// DeploymentID names the deployment every request is sent to. It is
	// fixed when the adapter is built; a CanonicalRequest's ModelID.Name is
	// sent only as the body's "model" field and does not select a deployment.
	DeploymentID string

	APIVersion string

	// BaseURL overrides the derived "https://<resource>.openai.azure.com"
	// endpoint, for Azure private-link or sovereign-cloud setups.
	BaseURL string
}

// New builds an adapter.Adapter backed by an Azure OpenAI deployment.
func New(cfg Config) *openaicompat.Adapter {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = fmt.Sprintf("https://%s.openai.azure.com", cfg.ResourceName)
	}

	apiVersion := cfg.APIVersion
	if apiVersion == "" {
		apiVersion = DefaultAPIVersion
	}

	deployment := cfg.DeploymentID
	chatPath := fmt.Sprintf("/openai/deployments/%s/chat/completions?api-version=%s", deployment, apiVersion)

	return openaicompat.NewAdapter(openaicompat.Config{
		ProviderName: "azure",
		BaseURL:      baseURL,
		APIKey:       cfg.APIKey,
		AuthHeader:   "api-key",
		ChatPath:     chatPath,
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
