package engine

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	provider_errors "github.com/digitallysavvy/go-ai/pkg/provider/errors"
	"github.com/digitallysavvy/go-ai/pkg/provider/types"
	"github.com/digitallysavvy/go-ai/pkg/registry"
	"github.com/digitallysavvy/go-ai/pkg/testutil"
)

func TestStreamText_ForwardsDeltasInOrder(t *testing.T) {
	a := &testutil.MockAdapter{}
	reg := registry.NewRegistry()
	reg.RegisterAdapter(types.VendorOpenAI, a)
	e := New(reg)

	id := types.ModelId{Vendor: types.VendorOpenAI, Name: "gpt-4o"}
	ch, err := e.StreamText(context.Background(), userReq(id), Hooks{})
	require.NoError(t, err)

	deltas := testutil.CollectStream(ch)
	require.NotEmpty(t, deltas)

	assert.IsType(t, types.StepStartDelta{}, deltas[0])
	assert.IsType(t, types.ResponseStartedDelta{}, deltas[1])
	assert.IsType(t, types.TextDeltaEvent{}, deltas[2])
	assert.IsType(t, types.TextDeltaEvent{}, deltas[3])

	last := deltas[len(deltas)-1]
	assert.IsType(t, types.DoneDelta{}, last)
}

func TestStreamText_ToolCallLoopAcrossSteps(t *testing.T) {
	step := 0
	a := &testutil.MockAdapter{
		StreamFunc: func(ctx context.Context, req types.CanonicalRequest) (<-chan types.StreamDelta, error) {
			step++
			out := make(chan types.StreamDelta, 8)
			go func() {
				defer close(out)
				if step == 1 {
					out <- types.ToolCallStartDelta{ID: "call-1", Name: "lookup"}
					out <- types.ToolCallArgsDeltaEvent{ID: "call-1", JSONFragment: `{"q":"x"}`}
					out <- types.ToolCallEndDelta{ID: "call-1", ArgsFinalJSON: `{"q":"x"}`}
					out <- types.StepEndDelta{FinishReason: types.FinishReasonToolCalls}
					out <- types.DoneDelta{FinishReason: types.FinishReasonToolCalls}
					return
				}
				out <- types.TextDeltaEvent{Text: "done"}
				out <- types.StepEndDelta{FinishReason: types.FinishReasonStop}
				out <- types.DoneDelta{FinishReason: types.FinishReasonStop}
			}()
			return out, nil
		},
	}
	reg := registry.NewRegistry()
	reg.RegisterAdapter(types.VendorOpenAI, a)
	e := New(reg)

	id := types.ModelId{Vendor: types.VendorOpenAI, Name: "gpt-4o"}
	req := userReq(id)
	req.Settings.MaxSteps = 5
	req.Tools = []types.ToolDefinition{{
		Name: "lookup",
		Execute: func(ctx context.Context, call types.ToolCallContent) (json.RawMessage, error) {
			return json.RawMessage(`{"result":"ok"}`), nil
		},
	}}

	ch, err := e.StreamText(context.Background(), req, Hooks{})
	require.NoError(t, err)
	deltas := testutil.CollectStream(ch)
	require.NotEmpty(t, deltas)

	var stepStarts int
	for _, d := range deltas {
		if _, ok := d.(types.StepStartDelta); ok {
			stepStarts++
		}
	}
	assert.Equal(t, 2, stepStarts)
	assert.Equal(t, 2, step)

	last := deltas[len(deltas)-1]
	done, ok := last.(types.DoneDelta)
	require.True(t, ok)
	assert.Equal(t, types.FinishReasonStop, done.FinishReason)
}

func TestStreamText_MidStreamErrorIsNotRetried(t *testing.T) {
	var connectionAttempts int
	a := &testutil.MockAdapter{
		StreamFunc: func(ctx context.Context, req types.CanonicalRequest) (<-chan types.StreamDelta, error) {
			connectionAttempts++
			out := make(chan types.StreamDelta, 4)
			go func() {
				defer close(out)
				out <- types.TextDeltaEvent{Text: "partial"}
				out <- types.ErrorDelta{Kind: "stream", Message: "connection reset"}
			}()
			return out, nil
		},
	}
	reg := registry.NewRegistry()
	reg.RegisterAdapter(types.VendorOpenAI, a)
	e := New(reg)

	id := types.ModelId{Vendor: types.VendorOpenAI, Name: "gpt-4o"}
	ch, err := e.StreamText(context.Background(), userReq(id), Hooks{})
	require.NoError(t, err)

	deltas := testutil.CollectStream(ch)
	require.NotEmpty(t, deltas)

	var sawPartial bool
	var errDeltas int
	for _, d := range deltas {
		if td, ok := d.(types.TextDeltaEvent); ok && td.Text == "partial" {
			sawPartial = true
		}
		if _, ok := d.(types.ErrorDelta); ok {
			errDeltas++
		}
	}
	assert.True(t, sawPartial, "partial content emitted before the mid-stream error must still reach the caller")
	assert.Equal(t, 1, errDeltas, "a mid-stream error must surface exactly once, never retried")
	assert.Equal(t, 1, connectionAttempts, "a mid-stream failure must not trigger a reconnect")
}

func TestStreamText_RetriesOnlyInitialConnectionFailure(t *testing.T) {
	var attempts int
	a := &testutil.MockAdapter{
		StreamFunc: func(ctx context.Context, req types.CanonicalRequest) (<-chan types.StreamDelta, error) {
			attempts++
			if attempts < 3 {
				return nil, provider_errors.NewRateLimitError("mock", "try again", nil, nil)
			}
			out := make(chan types.StreamDelta, 2)
			go func() {
				defer close(out)
				out <- types.TextDeltaEvent{Text: "ok"}
				out <- types.DoneDelta{FinishReason: types.FinishReasonStop}
			}()
			return out, nil
		},
	}
	reg := registry.NewRegistry()
	reg.RegisterAdapter(types.VendorOpenAI, a)
	e := New(reg)
	e.RetryPolicy.BaseDelay = time.Millisecond
	e.RetryPolicy.MaxDelay = time.Millisecond

	id := types.ModelId{Vendor: types.VendorOpenAI, Name: "gpt-4o"}
	ch, err := e.StreamText(context.Background(), userReq(id), Hooks{})
	require.NoError(t, err)

	deltas := testutil.CollectStream(ch)
	require.NotEmpty(t, deltas)
	assert.Equal(t, 3, attempts)

	last := deltas[len(deltas)-1]
	assert.IsType(t, types.DoneDelta{}, last)
}
