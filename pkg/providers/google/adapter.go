// Package google implements the Gemini generateContent adapter.
package google

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	internalhttp "github.com/digitallysavvy/go-ai/pkg/internal/http"
	"github.com/digitallysavvy/go-ai/pkg/provider"
	providererrors "github.com/digitallysavvy/go-ai/pkg/provider/errors"
	"github.com/digitallysavvy/go-ai/pkg/provider/types"
	"github.com/digitallysavvy/go-ai/pkg/providerutils/prompt"
	"github.com/digitallysavvy/go-ai/pkg/providerutils/streaming"
	"github.com/digitallysavvy/go-ai/pkg/providerutils/tool"
)

// DefaultBaseURL is the default Google Generative Language API base URL.
const DefaultBaseURL = "https://generativelanguage.googleapis.com"

// Config configures the Google adapter.
type Config struct {
	APIKey  string
	BaseURL string
}

// Adapter implements provider.Adapter against the Gemini
// generateContent/streamGenerateContent API. The API key travels as a
// query parameter rather than a header, so requests are built with the
// key appended to the path.
type Adapter struct {
	client *internalhttp.Client
	apiKey string
}

// New builds a Google adapter.
func New(cfg Config) *Adapter {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	client := internalhttp.NewClient(internalhttp.Config{
		BaseURL:      baseURL,
		ProviderName: "google",
	})

	return &Adapter{client: client, apiKey: cfg.APIKey}
}

func (a *Adapter) Name() string { return "google" }

// Capabilities reports tool and structured-output support for the Gemini
// Pro/Flash family, and vision support for the known multimodal models.
func (a *Adapter) Capabilities(modelName string) types.CapabilityTable {
	vision := strings.Contains(modelName, "vision") ||
		strings.Contains(modelName, "gemini-1.5") ||
		strings.Contains(modelName, "gemini-2")

	return types.CapabilityTable{
		types.CapabilityTools:            true,
		types.CapabilityStreaming:        true,
		types.CapabilityStructuredOutput: true,
		types.CapabilityImageInput:       vision,
		types.CapabilityParallelToolCall: true,
	}
}

func (a *Adapter) Generate(ctx context.Context, req types.CanonicalRequest) (*types.CanonicalResponse, error) {
	body := buildRequestBody(req)
	path := fmt.Sprintf("/v1beta/models/%s:generateContent?key=%s", req.ModelID.Name, a.apiKey)

	var raw generateResponse
	if err := a.client.PostJSON(ctx, path, body, &raw); err != nil {
		return nil, err
	}
	return decodeResponse(req.ModelID.Name, raw), nil
}

func (a *Adapter) Stream(ctx context.Context, req types.CanonicalRequest) (<-chan types.StreamDelta, error) {
	body := buildRequestBody(req)
	path := fmt.Sprintf("/v1beta/models/%s:streamGenerateContent?alt=sse&key=%s", req.ModelID.Name, a.apiKey)

	httpResp, err := a.client.DoStream(ctx, internalhttp.Request{
		Method: http.MethodPost,
		Path:   path,
		Body:   body,
		Headers: map[string]string{
			"Accept": "text/event-stream",
		},
	})
	if err != nil {
		return nil, err
	}

	out := make(chan types.StreamDelta, 16)
	go decodeStream(req.ModelID.Name, httpResp.Body, out)
	return out, nil
}

var _ provider.Adapter = (*Adapter)(nil)

func buildRequestBody(req types.CanonicalRequest) map[string]interface{} {
	body := map[string]interface{}{
		"contents": prompt.ToGoogleMessages(req.Messages),
	}

	system := req.SystemInstructions
	if system == "" {
		system = prompt.ExtractSystemMessage(req.Messages)
	}
	if system != "" {
		body["systemInstruction"] = map[string]interface{}{
			"parts": []map[string]interface{}{{"text": system}},
		}
	}

	genConfig := map[string]interface{}{}
	s := req.Settings
	if s.Temperature != nil {
		genConfig["temperature"] = *s.Temperature
	}
	if s.MaxTokens != nil {
		genConfig["maxOutputTokens"] = *s.MaxTokens
	}
	if s.TopP != nil {
		genConfig["topP"] = *s.TopP
	}
	if s.TopK != nil {
		genConfig["topK"] = *s.TopK
	}
	if len(s.StopSequences) > 0 {
		genConfig["stopSequences"] = s.StopSequences
	}
	if s.ResponseFormat != nil && (s.ResponseFormat.Type == types.ResponseFormatJSONObject || s.ResponseFormat.Type == types.ResponseFormatJSONSchema) {
		genConfig["responseMimeType"] = "application/json"
	}
	if len(genConfig) > 0 {
		body["generationConfig"] = genConfig
	}

	if len(req.Tools) > 0 {
		body["tools"] = []map[string]interface{}{
			{"functionDeclarations": tool.ToGoogleFormat(req.Tools)},
		}
		if s.ToolChoice != nil {
			body["toolConfig"] = map[string]interface{}{
				"functionCallingConfig": map[string]interface{}{
					"mode": tool.ConvertToolChoiceToGoogle(*s.ToolChoice),
				},
			}
		}
	}

	return body
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []googlePart `json:"parts"`
			Role  string       `json:"role"`
		} `json:"content"`
		FinishReason string `json:"finishReason"`
		Index        int    `json:"index"`
	} `json:"candidates"`
	UsageMetadata *struct {
		PromptTokenCount     int64 `json:"promptTokenCount"`
		CandidatesTokenCount int64 `json:"candidatesTokenCount"`
		TotalTokenCount      int64 `json:"totalTokenCount"`
	} `json:"usageMetadata,omitempty"`
}

type googlePart struct {
	Text         string `json:"text,omitempty"`
	FunctionCall *struct {
		Name string                 `json:"name"`
		Args map[string]interface{} `json:"args"`
	} `json:"functionCall,omitempty"`
}

func decodeResponse(modelName string, raw generateResponse) *types.CanonicalResponse {
	resp := &types.CanonicalResponse{ModelString: modelName}

	if raw.UsageMetadata != nil {
		in, out, total := raw.UsageMetadata.PromptTokenCount, raw.UsageMetadata.CandidatesTokenCount, raw.UsageMetadata.TotalTokenCount
		resp.Usage = &types.Usage{InputTokens: &in, OutputTokens: &out, TotalTokens: &total}
	}

	if len(raw.Candidates) > 0 {
		candidate := raw.Candidates[0]
		for _, part := range candidate.Content.Parts {
			if part.Text != "" {
				resp.Parts = append(resp.Parts, types.TextContent{Text: part.Text})
			}
			if part.FunctionCall != nil {
				args, _ := json.Marshal(part.FunctionCall.Args)
				resp.Parts = append(resp.Parts, types.ToolCallContent{
					ID:            part.FunctionCall.Name,
					Name:          part.FunctionCall.Name,
					ArgumentsJSON: args,
				})
			}
		}
		resp.FinishReason = mapFinishReason(candidate.FinishReason)
	}

	return resp
}

func mapFinishReason(reason string) types.FinishReason {
	switch reason {
	case "STOP":
		return types.FinishReasonStop
	case "MAX_TOKENS":
		return types.FinishReasonLength
	case "SAFETY", "RECITATION":
		return types.FinishReasonContentFilter
	default:
		return types.FinishReasonOther
	}
}

// decodeStream parses the SSE stream of partial generateResponse chunks
// Gemini sends and translates them into canonical deltas. Each chunk
// carries the next fragment of the candidate's text, so text parts are
// emitted as they arrive; function calls are emitted whole (Gemini does
// not fragment tool-call arguments).
func decodeStream(modelName string, body io.ReadCloser, out chan<- types.StreamDelta) {
	defer close(out)
	defer body.Close()

	parser := streaming.NewSSEParser(body)
	started := false

	for {
		event, err := parser.Next()
		if err != nil {
			if err == io.EOF {
				out <- types.DoneDelta{FinishReason: types.FinishReasonStop}
				return
			}
			out <- types.ErrorDelta{Kind: string(providererrors.KindStream), Message: err.Error()}
			return
		}

		if streaming.IsStreamDone(event) {
			out <- types.DoneDelta{FinishReason: types.FinishReasonStop}
			return
		}

		var chunk generateResponse
		if err := json.Unmarshal([]byte(event.Data), &chunk); err != nil {
			continue
		}

		if !started {
			out <- types.ResponseStartedDelta{Model: modelName}
			started = true
		}

		if chunk.UsageMetadata != nil {
			in, outTok, total := chunk.UsageMetadata.PromptTokenCount, chunk.UsageMetadata.CandidatesTokenCount, chunk.UsageMetadata.TotalTokenCount
			out <- types.UsageDelta{Usage: types.Usage{InputTokens: &in, OutputTokens: &outTok, TotalTokens: &total}}
		}

		if len(chunk.Candidates) == 0 {
			continue
		}
		candidate := chunk.Candidates[0]

		for _, part := range candidate.Content.Parts {
			if part.Text != "" {
				out <- types.TextDeltaEvent{Text: part.Text}
			}
			if part.FunctionCall != nil {
				args, _ := json.Marshal(part.FunctionCall.Args)
				id := part.FunctionCall.Name
				out <- types.ToolCallStartDelta{ID: id, Name: part.FunctionCall.Name}
				out <- types.ToolCallArgsDeltaEvent{ID: id, JSONFragment: string(args)}
				out <- types.ToolCallEndDelta{ID: id, ArgsFinalJSON: string(args)}
			}
		}

		if candidate.FinishReason != "" {
			out <- types.StepEndDelta{FinishReason: mapFinishReason(candidate.FinishReason)}
		}
	}
}
