package google

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

func TestBuildRequestBody_IncludesSystemAndGenerationConfig(t *testing.T) {
	temp := 0.5
	maxTokens := int64(256)
	req := types.CanonicalRequest{
		SystemInstructions: "be terse",
		Messages: []types.Message{
			{Role: types.RoleUser, Content: []types.ContentPart{types.TextContent{Text: "hi"}}},
		},
		Settings: types.GenerationSettings{
			Temperature: &temp,
			MaxTokens:   &maxTokens,
		},
	}

	body := buildRequestBody(req)
	assert.NotNil(t, body["contents"])

	sys, ok := body["systemInstruction"].(map[string]interface{})
	require.True(t, ok)
	parts := sys["parts"].([]map[string]interface{})
	assert.Equal(t, "be terse", parts[0]["text"])

	genConfig := body["generationConfig"].(map[string]interface{})
	assert.Equal(t, 0.5, genConfig["temperature"])
	assert.Equal(t, int64(256), genConfig["maxOutputTokens"])
}

func TestDecodeResponse_TextAndFunctionCall(t *testing.T) {
	raw := `{
		"candidates": [{
			"content": {"parts": [{"text": "hello"}, {"functionCall": {"name": "lookup", "args": {"q": "go"}}}]},
			"finishReason": "STOP"
		}],
		"usageMetadata": {"promptTokenCount": 3, "candidatesTokenCount": 5, "totalTokenCount": 8}
	}`
	var decoded generateResponse
	require.NoError(t, json.Unmarshal([]byte(raw), &decoded))

	resp := decodeResponse("gemini-1.5-pro", decoded)
	assert.Equal(t, "hello", resp.Text())
	assert.Equal(t, types.FinishReasonStop, resp.FinishReason)
	require.NotNil(t, resp.Usage)
	assert.EqualValues(t, 3, *resp.Usage.InputTokens)

	calls := resp.ToolCalls()
	require.Len(t, calls, 1)
	assert.Equal(t, "lookup", calls[0].Name)
}

func TestAdapter_Generate_RoundTrip(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.Contains(r.URL.Path, "generateContent"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"hi there"}]},"finishReason":"STOP"}]}`))
	}))
	defer server.Close()

	a := New(Config{APIKey: "test", BaseURL: server.URL})
	resp, err := a.Generate(context.Background(), types.CanonicalRequest{
		ModelID:  types.ModelId{Name: "gemini-1.5-pro"},
		Messages: []types.Message{{Role: types.RoleUser, Content: []types.ContentPart{types.TextContent{Text: "hi"}}}},
	})
	require.NoError(t, err)
	assert.Equal(t, "hi there", resp.Text())
}

func TestAdapter_Stream_EmitsDeltasInOrder(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		w.Write([]byte("data: {\"candidates\":[{\"content\":{\"parts\":[{\"text\":\"hel\"}]}}]}\n\n"))
		w.Write([]byte("data: {\"candidates\":[{\"content\":{\"parts\":[{\"text\":\"lo\"}]},\"finishReason\":\"STOP\"}]}\n\n"))
	}))
	defer server.Close()

	a := New(Config{APIKey: "test", BaseURL: server.URL})
	ch, err := a.Stream(context.Background(), types.CanonicalRequest{
		ModelID:  types.ModelId{Name: "gemini-1.5-pro"},
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
