// Package openaicompat implements the request/response/stream codec shared
// by every vendor whose HTTP API is a chat-completions lookalike: OpenAI
// itself, Azure OpenAI, xAI, Mistral, Together, Groq, OpenRouter, and a
// generic Custom endpoint. Each vendor package wires this codec to its own
// base URL, auth header, and capability table instead of reimplementing
// the wire format.
package openaicompat

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
	"github.com/digitallysavvy/go-ai/pkg/providerutils"
	"github.com/digitallysavvy/go-ai/pkg/providerutils/prompt"
	"github.com/digitallysavvy/go-ai/pkg/providerutils/streaming"
	"github.com/digitallysavvy/go-ai/pkg/providerutils/tool"
)

// Config parameterizes the codec for one vendor.
type Config struct {
	// ProviderName tags errors and shows up in Adapter.Name().
	ProviderName string

	// BaseURL is the chat-completions root, e.g. "https://api.openai.com/v1".
	BaseURL string

	// APIKey is sent as "Authorization: Bearer <key>" unless AuthHeader is
	// set, in which case it is sent under that header name verbatim
	// (Azure uses "api-key").
	APIKey     string
	AuthHeader string

	// ExtraHeaders are merged in as-is (organization/project IDs, etc).
	ExtraHeaders map[string]string

	// ChatPath overrides the default "/chat/completions".
	ChatPath string

	// CapabilitiesFunc reports what a given model name supports. Defaults
	// to tools+streaming+structured-output+image-input all true.
	CapabilitiesFunc func(modelName string) types.CapabilityTable
}

// Adapter is a provider.Adapter backed by an OpenAI-compatible chat API.
type Adapter struct {
	cfg    Config
	client *internalhttp.Client
}

// NewAdapter builds an Adapter from cfg.
func NewAdapter(cfg Config) *Adapter {
	headers := map[string]string{}
	for k, v := range cfg.ExtraHeaders {
		headers[k] = v
	}
	if cfg.APIKey != "" {
		if cfg.AuthHeader != "" {
			headers[cfg.AuthHeader] = cfg.APIKey
		} else {
			headers["Authorization"] = "Bearer " + cfg.APIKey
		}
	}

	client := internalhttp.NewClient(internalhttp.Config{
		BaseURL:      cfg.BaseURL,
		Headers:      headers,
		ProviderName: cfg.ProviderName,
	})

	return &Adapter{cfg: cfg, client: client}
}

func (a *Adapter) Name() string { return a.cfg.ProviderName }

func (a *Adapter) Capabilities(modelName string) types.CapabilityTable {
	if a.cfg.CapabilitiesFunc != nil {
		return a.cfg.CapabilitiesFunc(modelName)
	}
	return types.CapabilityTable{
		types.CapabilityTools:            true,
		types.CapabilityStreaming:        true,
		types.CapabilityStructuredOutput: true,
		types.CapabilityImageInput:       true,
	}
}

func (a *Adapter) chatPath() string {
	if a.cfg.ChatPath != "" {
		return a.cfg.ChatPath
	}
	return "/chat/completions"
}

// Generate performs a non-streaming chat completion.
func (a *Adapter) Generate(ctx context.Context, req types.CanonicalRequest) (*types.CanonicalResponse, error) {
	body := BuildRequestBody(req, false)

	var raw chatResponse
	if err := a.client.PostJSON(ctx, a.chatPath(), body, &raw); err != nil {
		return nil, err
	}
	return DecodeResponse(raw, req.ModelID.Name), nil
}

// Stream performs a streaming chat completion, decoding server-sent events
// into canonical StreamDelta values.
func (a *Adapter) Stream(ctx context.Context, req types.CanonicalRequest) (<-chan types.StreamDelta, error) {
	body := BuildRequestBody(req, true)

	httpResp, err := a.client.DoStream(ctx, internalhttp.Request{
		Method: http.MethodPost,
		Path:   a.chatPath(),
		Body:   body,
		Headers: map[string]string{
			"Accept": "text/event-stream",
		},
	})
	if err != nil {
		return nil, err
	}

	out := make(chan types.StreamDelta, 16)
	go decodeStream(httpResp.Body, req.ModelID.Name, out)
	return out, nil
}

var _ provider.Adapter = (*Adapter)(nil)

// BuildRequestBody converts a CanonicalRequest into an OpenAI chat-
// completions request body.
func BuildRequestBody(req types.CanonicalRequest, stream bool) map[string]interface{} {
	messages := prompt.ToOpenAIMessages(req.Messages)
	if req.SystemInstructions != "" {
		sys := map[string]interface{}{"role": "system", "content": req.SystemInstructions}
		messages = append([]map[string]interface{}{sys}, messages...)
	}

	body := map[string]interface{}{
		"model":    req.ModelID.Name,
		"messages": messages,
		"stream":   stream,
	}

	s := req.Settings
	if s.MaxTokens != nil {
		body["max_tokens"] = *s.MaxTokens
	}
	if s.Temperature != nil {
		body["temperature"] = *s.Temperature
	}
	if s.TopP != nil {
		body["top_p"] = *s.TopP
	}
	if s.FrequencyPenalty != nil {
		body["frequency_penalty"] = *s.FrequencyPenalty
	}
	if s.PresencePenalty != nil {
		body["presence_penalty"] = *s.PresencePenalty
	}
	if len(s.StopSequences) > 0 {
		body["stop"] = s.StopSequences
	}
	if s.Seed != nil {
		body["seed"] = *s.Seed
	}
	if s.ParallelToolCalls != nil {
		body["parallel_tool_calls"] = *s.ParallelToolCalls
	}
	if s.ReasoningEffort != "" {
		body["reasoning_effort"] = string(s.ReasoningEffort)
	}
	if s.ResponseFormat != nil {
		rf := map[string]interface{}{"type": string(s.ResponseFormat.Type)}
		if s.ResponseFormat.Type == types.ResponseFormatJSONSchema {
			var schema interface{}
			_ = json.Unmarshal(s.ResponseFormat.Schema, &schema)
			rf["json_schema"] = map[string]interface{}{
				"name":   s.ResponseFormat.Name,
				"strict": s.ResponseFormat.Strict,
				"schema": schema,
			}
		}
		body["response_format"] = rf
	}

	if len(req.Tools) > 0 {
		body["tools"] = tool.ToOpenAIFormat(req.Tools)
		if s.ToolChoice != nil {
			body["tool_choice"] = tool.ConvertToolChoiceToOpenAI(*s.ToolChoice)
		}
	}

	if stream {
		body["stream_options"] = map[string]interface{}{"include_usage": true}
	}

	return body
}

type chatResponse struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		Message struct {
			Content   string `json:"content"`
			ToolCalls []struct {
				ID       string `json:"id"`
				Function struct {
					Name      string `json:"name"`
					Arguments string `json:"arguments"`
				} `json:"function"`
			} `json:"tool_calls"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage chatUsage `json:"usage"`
}

type chatUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`

	PromptTokensDetails *struct {
		CachedTokens int `json:"cached_tokens"`
	} `json:"prompt_tokens_details,omitempty"`
	CompletionTokensDetails *struct {
		ReasoningTokens int `json:"reasoning_tokens"`
	} `json:"completion_tokens_details,omitempty"`
}

// DecodeResponse converts a chat-completions response into a
// CanonicalResponse.
func DecodeResponse(raw chatResponse, modelName string) *types.CanonicalResponse {
	resp := &types.CanonicalResponse{
		ID:          raw.ID,
		ModelString: orDefault(raw.Model, modelName),
		Usage:       decodeUsage(raw.Usage),
	}

	if len(raw.Choices) == 0 {
		return resp
	}
	choice := raw.Choices[0]

	if choice.Message.Content != "" {
		resp.Parts = append(resp.Parts, types.TextContent{Text: choice.Message.Content})
	}
	for _, tc := range choice.Message.ToolCalls {
		resp.Parts = append(resp.Parts, types.ToolCallContent{
			ID:            tc.ID,
			Name:          tc.Function.Name,
			ArgumentsJSON: json.RawMessage(tc.Function.Arguments),
		})
	}
	resp.FinishReason = providerutils.MapOpenAIFinishReason(choice.FinishReason)

	return resp
}

func decodeUsage(u chatUsage) *types.Usage {
	if u.TotalTokens == 0 && u.PromptTokens == 0 && u.CompletionTokens == 0 {
		return nil
	}
	in := int64(u.PromptTokens)
	out := int64(u.CompletionTokens)
	total := int64(u.TotalTokens)
	usage := &types.Usage{InputTokens: &in, OutputTokens: &out, TotalTokens: &total}

	if u.PromptTokensDetails != nil && u.PromptTokensDetails.CachedTokens > 0 {
		cached := int64(u.PromptTokensDetails.CachedTokens)
		noCache := in - cached
		usage.InputDetails = &types.InputTokenDetails{CacheReadTokens: &cached, NoCacheTokens: &noCache}
	}
	if u.CompletionTokensDetails != nil && u.CompletionTokensDetails.ReasoningTokens > 0 {
		reasoning := int64(u.CompletionTokensDetails.ReasoningTokens)
		text := out - reasoning
		usage.OutputDetails = &types.OutputTokenDetails{ReasoningTokens: &reasoning, TextTokens: &text}
	}
	return usage
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

type streamToolCall struct {
	id   string
	name string
	args strings.Builder
}

// decodeStream reads SSE chunks and emits canonical deltas, accumulating
// per-index tool call fragments until each one closes.
func decodeStream(body io.ReadCloser, modelName string, out chan<- types.StreamDelta) {
	defer close(out)
	defer body.Close()

	parser := streaming.NewSSEParser(body)
	started := false
	toolCalls := map[int]*streamToolCall{}
	var openOrder []int

	emitStart := func() {
		if !started {
			started = true
			out <- types.ResponseStartedDelta{Model: modelName}
		}
	}

	for {
		event, err := parser.Next()
		if err != nil {
			if err == io.EOF {
				return
			}
			out <- types.ErrorDelta{Kind: string(providererrors.KindStream), Message: err.Error()}
			return
		}
		if streaming.IsStreamDone(event) {
			for _, idx := range openOrder {
				tc := toolCalls[idx]
				out <- types.ToolCallEndDelta{ID: tc.id, ArgsFinalJSON: tc.args.String()}
			}
			out <- types.DoneDelta{FinishReason: types.FinishReasonStop}
			return
		}

		var chunk struct {
			Model   string `json:"model"`
			Choices []struct {
				Delta struct {
					Content   string `json:"content"`
					ToolCalls []struct {
						Index    int    `json:"index"`
						ID       string `json:"id"`
						Function struct {
							Name      string `json:"name"`
							Arguments string `json:"arguments"`
						} `json:"function"`
					} `json:"tool_calls"`
				} `json:"delta"`
				FinishReason *string `json:"finish_reason"`
			} `json:"choices"`
			Usage *chatUsage `json:"usage"`
		}
		if err := json.Unmarshal([]byte(event.Data), &chunk); err != nil {
			continue
		}

		emitStart()

		if chunk.Usage != nil {
			out <- types.UsageDelta{Usage: *decodeUsage(*chunk.Usage)}
		}

		if len(chunk.Choices) == 0 {
			continue
		}
		choice := chunk.Choices[0]

		if choice.Delta.Content != "" {
			out <- types.TextDeltaEvent{Text: choice.Delta.Content}
		}

		for _, tc := range choice.Delta.ToolCalls {
			existing, ok := toolCalls[tc.Index]
			if !ok {
				existing = &streamToolCall{id: tc.ID, name: tc.Function.Name}
				toolCalls[tc.Index] = existing
				openOrder = append(openOrder, tc.Index)
				out <- types.ToolCallStartDelta{ID: tc.ID, Name: tc.Function.Name}
			}
			if tc.Function.Arguments != "" {
				existing.args.WriteString(tc.Function.Arguments)
				out <- types.ToolCallArgsDeltaEvent{ID: existing.id, JSONFragment: tc.Function.Arguments}
			}
		}

		if choice.FinishReason != nil {
			for _, idx := range openOrder {
				tc := toolCalls[idx]
				out <- types.ToolCallEndDelta{ID: tc.id, ArgsFinalJSON: tc.args.String()}
			}
			toolCalls = map[int]*streamToolCall{}
			openOrder = nil
			out <- types.StepEndDelta{FinishReason: providerutils.MapOpenAIFinishReason(*choice.FinishReason)}
		}
	}
}

// ParseError converts an arbitrary adapter-returned error into an
// ErrorDelta, for callers assembling a stream terminator from Generate's
// error path.
func ParseError(providerName string, err error) types.ErrorDelta {
	kind := string(providererrors.KindProvider)
	if providererrors.IsKind(err, providererrors.KindRateLimit) {
		kind = string(providererrors.KindRateLimit)
	}
	return types.ErrorDelta{Kind: kind, Message: fmt.Sprintf("%s: %s", providerName, err.Error())}
}
