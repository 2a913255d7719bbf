package anthropic

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/digitallysavvy/go-ai/pkg/provider/types"
)

func TestCapabilities_StructuredOutputGating(t *testing.T) {
	a := New(Config{APIKey: "test"})
	assert.True(t, a.Capabilities("claude-opus-4-6")[types.CapabilityStructuredOutput])
	assert.True(t, a.Capabilities("claude-sonnet-4-5")[types.CapabilityStructuredOutput])
	assert.False(t, a.Capabilities("claude-3-haiku-20240307")[types.CapabilityStructuredOutput])
}

func TestBuildRequestBody_IncludesSystemAndTools(t *testing.T) {
	req := types.CanonicalRequest{
		ModelID:            types.ModelId{Name: "claude-opus-4-6"},
		SystemInstructions: "be terse",
		Messages: []types.Message{
			{Role: types.RoleUser, Content: []types.ContentPart{types.TextContent{Text: "hi"}}},
		},
		Tools: []types.ToolDefinition{
			{Name: "lookup", Description: "look something up", ParametersSchema: json.RawMessage(`{"type":"object"}`)},
		},
	}

	body := buildRequestBody(req, false)
	assert.Equal(t, "be terse", body["system"])
	assert.NotNil(t, body["tools"])
	assert.Equal(t, false, body["stream"])
}

func TestDecodeResponse_TextAndToolUse(t *testing.T) {
	raw := `{
		"id": "msg_123",
		"model": "claude-opus-4-6",
		"content": [
			{"type": "text", "text": "hello"},
			{"type": "tool_use", "id": "call_1", "name": "lookup", "input": {"q": "go"}}
		],
		"stop_reason": "tool_use",
		"usage": {"input_tokens": 10, "output_tokens": 5}
	}`
	var decoded messagesResponse
	require.NoError(t, json.Unmarshal([]byte(raw), &decoded))

	resp := decodeResponse(decoded)
	assert.Equal(t, "hello", resp.Text())
	assert.Equal(t, types.FinishReasonToolCalls, resp.FinishReason)
	require.NotNil(t, resp.Usage)
	assert.EqualValues(t, 10, *resp.Usage.InputTokens)

	calls := resp.ToolCalls()
	require.Len(t, calls, 1)
	assert.Equal(t, "lookup", calls[0].Name)
}

func TestAdapter_Generate_RoundTrip(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("x-api-key"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"msg_1","model":"claude-opus-4-6","content":[{"type":"text","text":"hi there"}],"stop_reason":"end_turn","usage":{"input_tokens":1,"output_tokens":2}}`))
	}))
	defer server.Close()

	a := New(Config{APIKey: "test-key", BaseURL: server.URL})
	resp, err := a.Generate(context.Background(), types.CanonicalRequest{
		ModelID:  types.ModelId{Name: "claude-opus-4-6"},
		Messages: []types.Message{{Role: types.RoleUser, Content: []types.ContentPart{types.TextContent{Text: "hi"}}}},
	})
	require.NoError(t, err)
	assert.Equal(t, "hi there", resp.Text())
}

func TestAdapter_Stream_EmitsDeltasInOrder(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		events := []string{
			`{"type":"message_start","message":{"id":"msg_1","model":"claude-opus-4-6","usage":{"input_tokens":3,"output_tokens":0}}}`,
			`{"type":"content_block_start","index":0,"content_block":{"type":"text"}}`,
			`{"type":"content_block_delta","index":0,"delta":{"type":"text_delta","text":"hel"}}`,
			`{"type":"content_block_delta","index":0,"delta":{"type":"text_delta","text":"lo"}}`,
			`{"type":"content_block_stop","index":0}`,
			`{"type":"message_delta","delta":{"stop_reason":"end_turn"},"usage":{"input_tokens":3,"output_tokens":2}}`,
			`{"type":"message_stop"}`,
		}
		for _, e := range events {
			w.Write([]byte("data: " + e + "\n\n"))
		}
	}))
	defer server.Close()

	a := New(Config{APIKey: "test-key", BaseURL: server.URL})
	ch, err := a.Stream(context.Background(), types.CanonicalRequest{
		ModelID:  types.ModelId{Name: "claude-opus-4-6"},
		Messages: []types.Message{{Role: types.RoleUser, Content: []types.ContentPart{types.TextContent{Text: "hi"}}}},
	})
	require.NoError(t, err)

	var deltas []types.StreamDelta
	for d := range ch {
		deltas = append(deltas, d)
	}
	require.NotEmpty(t, deltas)
	_, isStart := deltas[0].(types.ResponseStartedDelta)
	assert.True(t, isStart)

	var text strings.Builder
	sawDone := false
	for _, d := range deltas {
		if td, ok := d.(types.TextDeltaEvent); ok {
			text.WriteString(td.Text)
		}
		if _, ok := d.(types.DoneDelta); ok {
			sawDone = true
		}
	}
	assert.Equal(t, "hello", text.String())
	assert.True(t, sawDone)
}
