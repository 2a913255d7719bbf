// Package registry resolves a types.ModelId (or a lenient alias string)
// to a registered provider.Adapter and validates that the adapter can
// serve the capabilities a request asks for.
package registry

import (
	"sync"

	provider_errors "github.com/digitallysavvy/go-ai/pkg/provider/errors"
	"github.com/digitallysavvy/go-ai/pkg/provider"
	"github.com/digitallysavvy/go-ai/pkg/provider/types"
)

var globalRegistry = NewRegistry()

// Registry maps vendors to adapters and maintains a lenient alias table
// ("gpt-4o" -> openai:gpt-4o) so callers rarely need to spell out a full
// ModelId.
type Registry struct {
	mu       sync.RWMutex
	adapters map[types.Vendor]provider.Adapter
	aliases  map[string]types.ModelId
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		adapters: make(map[types.Vendor]provider.Adapter),
		aliases:  make(map[string]types.ModelId),
	}
}

// RegisterAdapter registers an adapter for a vendor.
func (r *Registry) RegisterAdapter(vendor types.Vendor, a provider.Adapter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.adapters[vendor] = a
}

// RegisterAlias registers a bare-name alias that resolves to a full
// ModelId, e.g. RegisterAlias("gpt-4o", types.ModelId{Vendor: types.VendorOpenAI, Name: "gpt-4o"}).
func (r *Registry) RegisterAlias(alias string, target types.ModelId) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.aliases[alias] = target
}

// Resolve turns a ModelId into its adapter, resolving aliases first when
// id.Vendor is empty.
func (r *Registry) Resolve(id types.ModelId) (provider.Adapter, types.ModelId, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if id.Vendor == "" {
		target, ok := r.aliases[id.Name]
		if !ok {
			return nil, id, provider_errors.NewModelNotFoundError(id.Name)
		}
		id = target
	}

	a, ok := r.adapters[id.Vendor]
	if !ok {
		return nil, id, provider_errors.NewModelNotFoundError(id.String())
	}
	return a, id, nil
}

// ResolveString parses "vendor:name" or a bare alias and resolves it.
func (r *Registry) ResolveString(s string) (provider.Adapter, types.ModelId, error) {
	if id, ok := types.ParseModelId(s); ok {
		return r.Resolve(id)
	}
	return r.Resolve(types.ModelId{Name: s})
}

// CheckCapabilities validates req against the adapter's capability table
// for its model, failing fast before any network call (spec: capability
// mismatches are validation errors, not vendor 400s).
func CheckCapabilities(a provider.Adapter, req types.CanonicalRequest) error {
	caps := a.Capabilities(req.ModelID.Name)
	if len(req.Tools) > 0 && !caps.Supports(types.CapabilityTools) {
		return provider_errors.NewCapabilityMismatchError(a.Name(),
			"model "+req.ModelID.Name+" does not support tool calling")
	}
	if req.Settings.ResponseFormat != nil &&
		req.Settings.ResponseFormat.Type == types.ResponseFormatJSONSchema &&
		!caps.Supports(types.CapabilityStructuredOutput) {
		return provider_errors.NewCapabilityMismatchError(a.Name(),
			"model "+req.ModelID.Name+" does not support structured output")
	}
	for _, msg := range req.Messages {
		for _, part := range msg.Content {
			if _, ok := part.(types.ImageContent); ok && !caps.Supports(types.CapabilityImageInput) {
				return provider_errors.NewCapabilityMismatchError(a.Name(),
					"model "+req.ModelID.Name+" does not accept image input")
			}
		}
	}
	return nil
}

// ListVendors returns all registered vendors.
func (r *Registry) ListVendors() []types.Vendor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]types.Vendor, 0, len(r.adapters))
	for v := range r.adapters {
		out = append(out, v)
	}
	return out
}

// Global registry convenience wrappers, mirroring the teacher's
// process-wide default instance.

func RegisterAdapter(vendor types.Vendor, a provider.Adapter) { globalRegistry.RegisterAdapter(vendor, a) }

func RegisterAlias(alias string, target types.ModelId) { globalRegistry.RegisterAlias(alias, target) }

func Resolve(id types.ModelId) (provider.Adapter, types.ModelId, error) { return globalRegistry.Resolve(id) }

func ResolveString(s string) (provider.Adapter, types.ModelId, error) {
	return globalRegistry.ResolveString(s)
}

func GetGlobalRegistry() *Registry { return globalRegistry }
