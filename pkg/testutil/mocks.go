// Package testutil provides mock implementations for testing adapters,
// the registry, and the generation engine without a network.
package testutil

import (
	"context"
	"sync"

	"github.com/digitallysavvy/go-ai/pkg/provider"
	"github.com/digitallysavvy/go-ai/pkg/provider/types"
)

// MockAdapter is a scriptable provider.Adapter for tests.
type MockAdapter struct {
	NameValue    string
	CapsFunc     func(modelName string) types.CapabilityTable
	GenerateFunc func(ctx context.Context, req types.CanonicalRequest) (*types.CanonicalResponse, error)
	StreamFunc   func(ctx context.Context, req types.CanonicalRequest) (<-chan types.StreamDelta, error)

	mu            sync.Mutex
	GenerateCalls []types.CanonicalRequest
	StreamCalls   []types.CanonicalRequest
}

func (m *MockAdapter) Name() string {
	if m.NameValue == "" {
		return "mock"
	}
	return m.NameValue
}

func (m *MockAdapter) Capabilities(modelName string) types.CapabilityTable {
	if m.CapsFunc != nil {
		return m.CapsFunc(modelName)
	}
	return types.CapabilityTable{
		types.CapabilityTools:            true,
		types.CapabilityStructuredOutput: true,
		types.CapabilityImageInput:       true,
		types.CapabilityStreaming:        true,
	}
}

func (m *MockAdapter) Generate(ctx context.Context, req types.CanonicalRequest) (*types.CanonicalResponse, error) {
	m.mu.Lock()
	m.GenerateCalls = append(m.GenerateCalls, req)
	m.mu.Unlock()

	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, req)
	}

	inputTokens := int64(10)
	outputTokens := int64(5)
	totalTokens := int64(15)
	return &types.CanonicalResponse{
		ID:           "mock-response",
		ModelString:  req.ModelID.String(),
		Parts:        []types.ContentPart{types.TextContent{Text: "mock response"}},
		Usage:        &types.Usage{InputTokens: &inputTokens, OutputTokens: &outputTokens, TotalTokens: &totalTokens},
		FinishReason: types.FinishReasonStop,
	}, nil
}

func (m *MockAdapter) Stream(ctx context.Context, req types.CanonicalRequest) (<-chan types.StreamDelta, error) {
	m.mu.Lock()
	m.StreamCalls = append(m.StreamCalls, req)
	m.mu.Unlock()

	if m.StreamFunc != nil {
		return m.StreamFunc(ctx, req)
	}

	ch := make(chan types.StreamDelta, 4)
	go func() {
		defer close(ch)
		ch <- types.ResponseStartedDelta{ID: "mock-response"}
		ch <- types.TextDeltaEvent{Text: "mock "}
		ch <- types.TextDeltaEvent{Text: "response"}
		ch <- types.DoneDelta{FinishReason: types.FinishReasonStop}
	}()
	return ch, nil
}

var _ provider.Adapter = (*MockAdapter)(nil)

// CollectStream drains a delta channel into a slice, for assertions in
// tests that don't need to process deltas incrementally.
func CollectStream(ch <-chan types.StreamDelta) []types.StreamDelta {
	var deltas []types.StreamDelta
	for d := range ch {
		deltas = append(deltas, d)
	}
	return deltas
}
