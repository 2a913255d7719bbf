package openaicompat

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/digitallysavvy/go-ai/pkg/provider/types"
)

func TestBuildRequestBody_IncludesSystemAndSettings(t *testing.T) {
	t.Parallel()

	maxTokens := int64(256)
	temp := 0.4
	req := types.CanonicalRequest{
		Messages:           []types.Message{{Role: types.RoleUser, Content: []types.ContentPart{types.TextContent{Text: "hi"}}}},
		SystemInstructions: "be terse",
		ModelID:            types.ModelId{Vendor: types.VendorOpenAI, Name: "gpt-4o"},
		Settings:           types.GenerationSettings{MaxTokens: &maxTokens, Temperature: &temp},
	}

	body := BuildRequestBody(req, false)

	assert.Equal(t, "gpt-4o", body["model"])
	assert.Equal(t, false, body["stream"])
	assert.Equal(t, int64(256), body["max_tokens"])
	assert.Equal(t, 0.4, body["temperature"])

	msgs := body["messages"].([]map[string]interface{})
	require.Len(t, msgs, 2)
	assert.Equal(t, "system", msgs[0]["role"])
	assert.Equal(t, "be terse", msgs[0]["content"])
}

func TestBuildRequestBody_IncludesTools(t *testing.T) {
	t.Parallel()

	req := types.CanonicalRequest{
		Messages: []types.Message{{Role: types.RoleUser, Content: []types.ContentPart{types.TextContent{Text: "weather?"}}}},
		Tools: []types.ToolDefinition{
			{Name: "get_weather", Description: "fetch weather", ParametersSchema: json.RawMessage(`{"type":"object"}`)},
		},
		ModelID: types.ModelId{Vendor: types.VendorOpenAI, Name: "gpt-4o"},
	}

	body := BuildRequestBody(req, false)
	tools, ok := body["tools"].([]map[string]interface{})
	require.True(t, ok)
	require.Len(t, tools, 1)
}

func TestDecodeResponse_TextAndToolCalls(t *testing.T) {
	t.Parallel()

	var raw chatResponse
	err := json.Unmarshal([]byte(`{
		"id": "resp-1",
		"model": "gpt-4o",
		"choices": [{
			"message": {
				"content": "done",
				"tool_calls": [{"id": "call_1", "function": {"name": "get_weather", "arguments": "{\"city\":\"nyc\"}"}}]
			},
			"finish_reason": "tool_calls"
		}]
	}`), &raw)
	require.NoError(t, err)

	resp := DecodeResponse(raw, "gpt-4o")

	assert.Equal(t, "resp-1", resp.ID)
	assert.Equal(t, types.FinishReasonToolCalls, resp.FinishReason)
	assert.Equal(t, "done", resp.Text())
	calls := resp.ToolCalls()
	require.Len(t, calls, 1)
	assert.Equal(t, "get_weather", calls[0].Name)
}

func TestAdapter_Generate_RoundTrip(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"resp-1","model":"gpt-4o","choices":[{"message":{"content":"hello"},"finish_reason":"stop"}],"usage":{"prompt_tokens":3,"completion_tokens":1,"total_tokens":4}}`))
	}))
	defer srv.Close()

	a := NewAdapter(Config{ProviderName: "openai", BaseURL: srv.URL, APIKey: "test-key"})
	resp, err := a.Generate(context.Background(), types.CanonicalRequest{
		Messages: []types.Message{{Role: types.RoleUser, Content: []types.ContentPart{types.TextContent{Text: "hi"}}}},
		ModelID:  types.ModelId{Vendor: types.VendorOpenAI, Name: "gpt-4o"},
	})

	require.NoError(t, err)
	assert.Equal(t, "hello", resp.Text())
	require.NotNil(t, resp.Usage)
	assert.EqualValues(t, 4, *resp.Usage.TotalTokens)
}

func TestAdapter_Stream_EmitsDeltasInOrder(t *testing.T) {
	t.Parallel()

	chunks := []string{
		`data: {"choices":[{"delta":{"content":"he"}}]}`,
		`data: {"choices":[{"delta":{"content":"llo"}}]}`,
		`data: {"choices":[{"delta":{},"finish_reason":"stop"}]}`,
		`data: [DONE]`,
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		for _, c := range chunks {
			_, _ = io.WriteString(w, c+"\n\n")
		}
	}))
	defer srv.Close()

	a := NewAdapter(Config{ProviderName: "openai", BaseURL: srv.URL, APIKey: "test-key"})
	ch, err := a.Stream(context.Background(), types.CanonicalRequest{
		Messages: []types.Message{{Role: types.RoleUser, Content: []types.ContentPart{types.TextContent{Text: "hi"}}}},
		ModelID:  types.ModelId{Vendor: types.VendorOpenAI, Name: "gpt-4o"},
	})
	require.NoError(t, err)

	var deltas []types.StreamDelta
	for d := range ch {
		deltas = append(deltas, d)
	}

	require.NotEmpty(t, deltas)
	assert.Equal(t, "response-started", deltas[0].DeltaKind())

	var text strings.Builder
	sawDone := false
	for _, d := range deltas {
		if td, ok := d.(types.TextDeltaEvent); ok {
			text.WriteString(td.Text)
		}
		if d.DeltaKind() == "done" {
			sawDone = true
		}
	}
	assert.Equal(t, "hello", text.String())
	assert.True(t, sawDone)
}
