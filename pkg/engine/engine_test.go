package engine

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/digitallysavvy/go-ai/pkg/cache"
	provider_errors "github.com/digitallysavvy/go-ai/pkg/provider/errors"
	"github.com/digitallysavvy/go-ai/pkg/provider/types"
	"github.com/digitallysavvy/go-ai/pkg/registry"
	"github.com/digitallysavvy/go-ai/pkg/testutil"
)

func newTestEngine(t *testing.T, a *testutil.MockAdapter) (*Engine, types.ModelId) {
	t.Helper()
	reg := registry.NewRegistry()
	reg.RegisterAdapter(types.VendorOpenAI, a)
	return New(reg), types.ModelId{Vendor: types.VendorOpenAI, Name: "gpt-4o"}
}

func userReq(id types.ModelId) types.CanonicalRequest {
	return types.CanonicalRequest{
		ModelID:  id,
		Messages: []types.Message{{Role: types.RoleUser, Content: []types.ContentPart{types.TextContent{Text: "hi"}}}},
	}
}

func TestGenerateText_SingleStep(t *testing.T) {
	a := &testutil.MockAdapter{}
	e, id := newTestEngine(t, a)

	result, err := e.GenerateText(context.Background(), userReq(id), Hooks{})
	require.NoError(t, err)
	require.NotNil(t, result.Response)
	assert.Equal(t, "mock response", result.Response.Text())
	assert.Len(t, result.Steps, 1)
	assert.Len(t, a.GenerateCalls, 1)
}

func TestGenerateText_ValidatesEmptyMessages(t *testing.T) {
	a := &testutil.MockAdapter{}
	e, id := newTestEngine(t, a)

	_, err := e.GenerateText(context.Background(), types.CanonicalRequest{ModelID: id}, Hooks{})
	assert.Error(t, err)
}

func TestGenerateText_RejectsCapabilityMismatch(t *testing.T) {
	a := &testutil.MockAdapter{CapsFunc: func(string) types.CapabilityTable {
		return types.CapabilityTable{}
	}}
	e, id := newTestEngine(t, a)

	req := userReq(id)
	req.Tools = []types.ToolDefinition{{Name: "lookup"}}
	_, err := e.GenerateText(context.Background(), req, Hooks{})
	require.Error(t, err)
	assert.True(t, provider_errors.IsKind(err, provider_errors.KindCapabilityMismatch))
}

func TestGenerateText_RejectsMalformedToolParametersSchema(t *testing.T) {
	a := &testutil.MockAdapter{}
	e, id := newTestEngine(t, a)

	req := userReq(id)
	req.Tools = []types.ToolDefinition{{
		Name:             "lookup",
		ParametersSchema: json.RawMessage(`{"type": 123}`),
	}}
	_, err := e.GenerateText(context.Background(), req, Hooks{})
	require.Error(t, err)
	assert.True(t, provider_errors.IsKind(err, provider_errors.KindValidation))
}

func TestGenerateText_ToolLoopRunsUntilNoMoreCalls(t *testing.T) {
	calls := 0
	a := &testutil.MockAdapter{
		GenerateFunc: func(ctx context.Context, req types.CanonicalRequest) (*types.CanonicalResponse, error) {
			calls++
			if calls == 1 {
				return &types.CanonicalResponse{
					ModelString: req.ModelID.String(),
					Parts: []types.ContentPart{
						types.ToolCallContent{ID: "call-1", Name: "lookup", ArgumentsJSON: json.RawMessage(`{"q":"x"}`)},
					},
					FinishReason: types.FinishReasonToolCalls,
				}, nil
			}
			return &types.CanonicalResponse{
				ModelString:  req.ModelID.String(),
				Parts:        []types.ContentPart{types.TextContent{Text: "done"}},
				FinishReason: types.FinishReasonStop,
			}, nil
		},
	}
	e, id := newTestEngine(t, a)

	req := userReq(id)
	req.Settings.MaxSteps = 5
	req.Tools = []types.ToolDefinition{{
		Name: "lookup",
		Execute: func(ctx context.Context, call types.ToolCallContent) (json.RawMessage, error) {
			return json.RawMessage(`{"result":"ok"}`), nil
		},
	}}

	result, err := e.GenerateText(context.Background(), req, Hooks{})
	require.NoError(t, err)
	assert.Equal(t, "done", result.Response.Text())
	assert.Len(t, result.Steps, 2)
	assert.Len(t, result.Steps[0].ToolResults, 1)
	assert.Equal(t, 2, calls)
}

func TestGenerateText_MissingToolExecutorErrors(t *testing.T) {
	a := &testutil.MockAdapter{
		GenerateFunc: func(ctx context.Context, req types.CanonicalRequest) (*types.CanonicalResponse, error) {
			return &types.CanonicalResponse{
				ModelString: req.ModelID.String(),
				Parts: []types.ContentPart{
					types.ToolCallContent{ID: "call-1", Name: "lookup", ArgumentsJSON: json.RawMessage(`{}`)},
				},
				FinishReason: types.FinishReasonToolCalls,
			}, nil
		},
	}
	e, id := newTestEngine(t, a)

	req := userReq(id)
	req.Settings.MaxSteps = 3
	req.Tools = []types.ToolDefinition{{Name: "lookup"}}

	_, err := e.GenerateText(context.Background(), req, Hooks{})
	assert.Error(t, err)
}

func TestGenerateText_UsesCacheOnSecondCall(t *testing.T) {
	a := &testutil.MockAdapter{}
	reg := registry.NewRegistry()
	reg.RegisterAdapter(types.VendorOpenAI, a)
	e := New(reg)
	e.Cache = cache.New(cache.Config{MaxEntries: 16})

	id := types.ModelId{Vendor: types.VendorOpenAI, Name: "gpt-4o"}
	req := userReq(id)

	_, err := e.GenerateText(context.Background(), req, Hooks{})
	require.NoError(t, err)
	_, err = e.GenerateText(context.Background(), req, Hooks{})
	require.NoError(t, err)

	assert.Len(t, a.GenerateCalls, 1)
}

func TestGenerateText_HooksAreInvoked(t *testing.T) {
	a := &testutil.MockAdapter{}
	e, id := newTestEngine(t, a)

	var started, finished int
	hooks := Hooks{
		OnStepStart:  func(ctx context.Context, stepNumber int, req types.CanonicalRequest) { started++ },
		OnStepFinish: func(ctx context.Context, step StepResult) { finished++ },
	}

	_, err := e.GenerateText(context.Background(), userReq(id), hooks)
	require.NoError(t, err)
	assert.Equal(t, 1, started)
	assert.Equal(t, 1, finished)
}
