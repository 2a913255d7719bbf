// Package anthropic implements the Claude Messages API adapter.
package anthropic

import (
	"context"
	"encoding/json"
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

// DefaultBaseURL is the default Anthropic API base URL.
const DefaultBaseURL = "https://api.anthropic.com"

// DefaultAPIVersion is the default Anthropic API version header value.
const DefaultAPIVersion = "2023-06-01"

// Config configures the Anthropic adapter.
type Config struct {
	APIKey     string
	BaseURL    string
	APIVersion string
}

// Adapter implements provider.Adapter against the Claude Messages API.
type Adapter struct {
	client *internalhttp.Client
}

// New builds an Anthropic adapter.
func New(cfg Config) *Adapter {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	apiVersion := cfg.APIVersion
	if apiVersion == "" {
		apiVersion = DefaultAPIVersion
	}

	client := internalhttp.NewClient(internalhttp.Config{
		BaseURL:      baseURL,
		ProviderName: "anthropic",
		Headers: map[string]string{
			"x-api-key":         cfg.APIKey,
			"anthropic-version": apiVersion,
		},
	})

	return &Adapter{client: client}
}

func (a *Adapter) Name() string { return "anthropic" }

// Capabilities reports tool support on every model, vision on every model
// except claude-instant, structured output on the 4.5/4.6 family and Opus
// 4.1, and reasoning on the Claude 4 Opus/Sonnet family.
func (a *Adapter) Capabilities(modelName string) types.CapabilityTable {
	structured := strings.Contains(modelName, "claude-sonnet-4-6") ||
		strings.Contains(modelName, "claude-opus-4-6") ||
		strings.Contains(modelName, "claude-sonnet-4-5") ||
		strings.Contains(modelName, "claude-opus-4-5") ||
		strings.Contains(modelName, "claude-haiku-4-5") ||
		strings.Contains(modelName, "claude-opus-4-1")

	return types.CapabilityTable{
		types.CapabilityTools:            true,
		types.CapabilityStreaming:        true,
		types.CapabilityStructuredOutput: structured,
		types.CapabilityImageInput:       !strings.Contains(modelName, "claude-instant"),
		types.CapabilityReasoning:        strings.Contains(modelName, "claude-opus-4") || strings.Contains(modelName, "claude-sonnet-4"),
	}
}

func (a *Adapter) Generate(ctx context.Context, req types.CanonicalRequest) (*types.CanonicalResponse, error) {
	body := buildRequestBody(req, false)

	var raw messagesResponse
	if err := a.client.PostJSON(ctx, "/v1/messages", body, &raw); err != nil {
		return nil, err
	}
	return decodeResponse(raw), nil
}

func (a *Adapter) Stream(ctx context.Context, req types.CanonicalRequest) (<-chan types.StreamDelta, error) {
	body := buildRequestBody(req, true)

	httpResp, err := a.client.DoStream(ctx, internalhttp.Request{
		Method: http.MethodPost,
		Path:   "/v1/messages",
		Body:   body,
		Headers: map[string]string{
			"Accept": "text/event-stream",
		},
	})
	if err != nil {
		return nil, err
	}

	out := make(chan types.StreamDelta, 16)
	go decodeStream(httpResp.Body, out)
	return out, nil
}

var _ provider.Adapter = (*Adapter)(nil)

func buildRequestBody(req types.CanonicalRequest, stream bool) map[string]interface{} {
	body := map[string]interface{}{
		"model":    req.ModelID.Name,
		"messages": prompt.ToAnthropicMessages(req.Messages),
		"stream":   stream,
		"max_tokens": 4096,
	}

	system := req.SystemInstructions
	if system == "" {
		system = prompt.ExtractSystemMessage(req.Messages)
	}
	if system != "" {
		body["system"] = system
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
	if s.TopK != nil {
		body["top_k"] = *s.TopK
	}
	if len(s.StopSequences) > 0 {
		body["stop_sequences"] = s.StopSequences
	}

	if len(req.Tools) > 0 {
		body["tools"] = tool.ToAnthropicFormat(req.Tools)
		if s.ToolChoice != nil {
			body["tool_choice"] = tool.ConvertToolChoiceToAnthropic(*s.ToolChoice)
		}
	}

	return body
}

type messagesResponse struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Content []struct {
		Type  string          `json:"type"`
		Text  string          `json:"text"`
		ID    string          `json:"id"`
		Name  string          `json:"name"`
		Input json.RawMessage `json:"input"`
	} `json:"content"`
	StopReason string              `json:"stop_reason"`
	Usage      anthropicUsageBlock `json:"usage"`
}

type anthropicUsageBlock struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

func decodeResponse(raw messagesResponse) *types.CanonicalResponse {
	resp := &types.CanonicalResponse{
		ID:          raw.ID,
		ModelString: raw.Model,
		FinishReason: mapStopReason(raw.StopReason),
	}

	for _, block := range raw.Content {
		switch block.Type {
		case "text":
			resp.Parts = append(resp.Parts, types.TextContent{Text: block.Text})
		case "tool_use":
			resp.Parts = append(resp.Parts, types.ToolCallContent{
				ID:            block.ID,
				Name:          block.Name,
				ArgumentsJSON: block.Input,
			})
		}
	}

	in := int64(raw.Usage.InputTokens)
	out := int64(raw.Usage.OutputTokens)
	total := in + out
	resp.Usage = &types.Usage{InputTokens: &in, OutputTokens: &out, TotalTokens: &total}

	return resp
}

func mapStopReason(reason string) types.FinishReason {
	switch reason {
	case "end_turn", "stop_sequence":
		return types.FinishReasonStop
	case "max_tokens":
		return types.FinishReasonLength
	case "tool_use":
		return types.FinishReasonToolCalls
	default:
		return types.FinishReasonOther
	}
}

type activeBlock struct {
	index int
	kind  string
	id    string
	name  string
	args  strings.Builder
}

// decodeStream translates Anthropic's message_start/content_block_*/
// message_delta/message_stop SSE events into canonical deltas.
func decodeStream(body io.ReadCloser, out chan<- types.StreamDelta) {
	defer close(out)
	defer body.Close()

	parser := streaming.NewSSEParser(body)
	blocks := map[int]*activeBlock{}

	for {
		event, err := parser.Next()
		if err != nil {
			if err == io.EOF {
				return
			}
			out <- types.ErrorDelta{Kind: string(providererrors.KindStream), Message: err.Error()}
			return
		}

		var envelope struct {
			Type  string `json:"type"`
			Index int    `json:"index"`
			Message struct {
				ID    string `json:"id"`
				Model string `json:"model"`
				Usage anthropicUsageBlock `json:"usage"`
			} `json:"message"`
			ContentBlock struct {
				Type string `json:"type"`
				ID   string `json:"id"`
				Name string `json:"name"`
			} `json:"content_block"`
			Delta struct {
				Type        string `json:"type"`
				Text        string `json:"text"`
				PartialJSON string `json:"partial_json"`
				StopReason  string `json:"stop_reason"`
			} `json:"delta"`
			Usage anthropicUsageBlock `json:"usage"`
		}
		if err := json.Unmarshal([]byte(event.Data), &envelope); err != nil {
			continue
		}

		switch envelope.Type {
		case "message_start":
			out <- types.ResponseStartedDelta{ID: envelope.Message.ID, Model: envelope.Message.Model}

		case "content_block_start":
			b := &activeBlock{index: envelope.Index, kind: envelope.ContentBlock.Type, id: envelope.ContentBlock.ID, name: envelope.ContentBlock.Name}
			blocks[envelope.Index] = b
			if b.kind == "tool_use" {
				out <- types.ToolCallStartDelta{ID: b.id, Name: b.name}
			}

		case "content_block_delta":
			b := blocks[envelope.Index]
			switch envelope.Delta.Type {
			case "text_delta":
				out <- types.TextDeltaEvent{Text: envelope.Delta.Text}
			case "thinking_delta":
				out <- types.ReasoningDeltaEvent{Text: envelope.Delta.Text}
			case "input_json_delta":
				if b != nil {
					b.args.WriteString(envelope.Delta.PartialJSON)
					out <- types.ToolCallArgsDeltaEvent{ID: b.id, JSONFragment: envelope.Delta.PartialJSON}
				}
			}

		case "content_block_stop":
			if b := blocks[envelope.Index]; b != nil && b.kind == "tool_use" {
				out <- types.ToolCallEndDelta{ID: b.id, ArgsFinalJSON: b.args.String()}
			}
			delete(blocks, envelope.Index)

		case "message_delta":
			if envelope.Delta.StopReason != "" {
				out <- types.StepEndDelta{FinishReason: mapStopReason(envelope.Delta.StopReason)}
			}
			if envelope.Usage.OutputTokens > 0 {
				in := int64(envelope.Usage.InputTokens)
				outTok := int64(envelope.Usage.OutputTokens)
				total := in + outTok
				out <- types.UsageDelta{Usage: types.Usage{InputTokens: &in, OutputTokens: &outTok, TotalTokens: &total}}
			}

		case "message_stop":
			out <- types.DoneDelta{FinishReason: types.FinishReasonStop}
			return
		}
	}
}
