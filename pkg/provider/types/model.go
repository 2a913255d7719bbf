package types

import "strings"

// Vendor identifies which adapter family a ModelId resolves to.
type Vendor string

const (
	VendorOpenAI           Vendor = "openai"
	VendorAnthropic        Vendor = "anthropic"
	VendorGoogle           Vendor = "google"
	VendorGrok             Vendor = "xai"
	VendorOpenAICompatible Vendor = "openai-compatible"
	VendorAzure            Vendor = "azure"
	VendorOpenRouter       Vendor = "openrouter"
	VendorTogether         Vendor = "together"
	VendorReplicate        Vendor = "replicate"
	VendorCustom           Vendor = "custom"
)

// ModelId is the canonical, tagged identification of a model: which vendor
// adapter should handle it, and the vendor-specific model name. Every
// request in this library is addressed to a ModelId, never to a bare
// string, so capability checks and adapter dispatch happen against a single
// typed value.
type ModelId struct {
	Vendor Vendor `json:"vendor"`
	Name   string `json:"name"`

	// BaseURL overrides the adapter's default endpoint. Required for
	// VendorCustom, optional elsewhere (e.g. a self-hosted Azure
	// deployment, a proxy in front of OpenAI).
	BaseURL string `json:"baseUrl,omitempty"`
}

func (m ModelId) String() string {
	if m.BaseURL != "" {
		return string(m.Vendor) + ":" + m.Name + "@" + m.BaseURL
	}
	return string(m.Vendor) + ":" + m.Name
}

// Capability is a feature an adapter may or may not support for a given
// model.
type Capability string

const (
	CapabilityTools            Capability = "tools"
	CapabilityStreaming        Capability = "streaming"
	CapabilityImageInput       Capability = "image-input"
	CapabilityStructuredOutput Capability = "structured-output"
	CapabilityReasoning        Capability = "reasoning"
	CapabilityParallelToolCall Capability = "parallel-tool-call"
)

// CapabilityTable reports which capabilities a model supports. Adapters
// provide one per model family; the engine consults it at request-
// construction time, before any network call, to fail fast on a mismatch
// (e.g. tools requested against a model that cannot call them) instead of
// surfacing a confusing vendor 400.
type CapabilityTable map[Capability]bool

// Supports reports whether cap is present and true.
func (t CapabilityTable) Supports(cap Capability) bool {
	return t[cap]
}

// providerPriority breaks ties when more than one vendor could plausibly
// serve a bare model-name alias (spec.md's lenient alias resolution).
var providerPriority = []Vendor{
	VendorOpenAI, VendorAnthropic, VendorGoogle, VendorGrok, VendorAzure,
	"groq", "mistral", VendorTogether, VendorOpenRouter, VendorReplicate, VendorCustom,
}

// ProviderPriority returns the tie-break order used by alias resolution.
func ProviderPriority() []Vendor {
	out := make([]Vendor, len(providerPriority))
	copy(out, providerPriority)
	return out
}

// ParseModelId parses the "vendor:name" or "vendor:name@baseurl" wire form
// used by CLI-style callers and config files.
func ParseModelId(s string) (ModelId, bool) {
	vendor, rest, ok := strings.Cut(s, ":")
	if !ok {
		return ModelId{}, false
	}
	name, baseURL, _ := strings.Cut(rest, "@")
	return ModelId{Vendor: Vendor(vendor), Name: name, BaseURL: baseURL}, true
}
