// Package provider defines the interface every vendor adapter implements
// and the shapes the generation engine drives it through.
package provider

//go:generate mockgen -destination=../internal/mockprovider/adapter_mock.go -package=mockprovider github.com/digitallysavvy/go-ai/pkg/provider Adapter

import (
	"context"

	"github.com/digitallysavvy/go-ai/pkg/provider/types"
)

// Adapter encodes a CanonicalRequest into a vendor's wire format, sends it,
// and decodes the response back into canonical shapes. One Adapter serves
// one Vendor across all of that vendor's model names.
type Adapter interface {
	// Name returns the adapter's vendor name, matching types.Vendor.
	Name() string

	// Capabilities reports what modelName supports for this vendor.
	Capabilities(modelName string) types.CapabilityTable

	// Generate performs the unary (non-streaming) request/response cycle.
	Generate(ctx context.Context, req types.CanonicalRequest) (*types.CanonicalResponse, error)

	// Stream performs the streaming request/response cycle, returning a
	// channel of decoded deltas. The channel is closed after a terminal
	// DoneDelta or ErrorDelta delta, or when ctx is canceled.
	Stream(ctx context.Context, req types.CanonicalRequest) (<-chan types.StreamDelta, error)
}
