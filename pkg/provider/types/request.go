package types

// ReasoningEffort hints how much hidden deliberation a reasoning-capable
// model should spend.
type ReasoningEffort string

const (
	ReasoningEffortLow    ReasoningEffort = "low"
	ReasoningEffortMedium ReasoningEffort = "medium"
	ReasoningEffortHigh   ReasoningEffort = "high"
)

// ResponseFormatType selects how the model must shape its output.
type ResponseFormatType string

const (
	ResponseFormatText       ResponseFormatType = "text"
	ResponseFormatJSONObject ResponseFormatType = "json_object"
	ResponseFormatJSONSchema ResponseFormatType = "json_schema"
)

// ResponseFormat constrains generation output shape.
type ResponseFormat struct {
	Type ResponseFormatType `json:"type"`

	// Name, Strict, Schema apply only when Type is ResponseFormatJSONSchema.
	Name   string          `json:"name,omitempty"`
	Strict bool            `json:"strict,omitempty"`
	Schema []byte          `json:"schema,omitempty"`
}

// GenerationSettings carries the generation knobs spec.md enumerates.
// Fields are pointers so "unset" (use vendor default) is distinguishable
// from the zero value. An adapter leaves a setting it cannot express out
// of the request body; it records no Warning for the drop and returns no
// error for it.
type GenerationSettings struct {
	MaxTokens         *int64           `json:"maxTokens,omitempty"`
	Temperature       *float64         `json:"temperature,omitempty"`
	TopP              *float64         `json:"topP,omitempty"`
	TopK              *int64           `json:"topK,omitempty"`
	FrequencyPenalty  *float64         `json:"frequencyPenalty,omitempty"`
	PresencePenalty   *float64         `json:"presencePenalty,omitempty"`
	StopSequences     []string         `json:"stopSequences,omitempty"`
	Seed              *int64           `json:"seed,omitempty"`
	ResponseFormat    *ResponseFormat  `json:"responseFormat,omitempty"`
	ToolChoice        *ToolChoice      `json:"toolChoice,omitempty"`
	ParallelToolCalls *bool            `json:"parallelToolCalls,omitempty"`
	ReasoningEffort   ReasoningEffort  `json:"reasoningEffort,omitempty"`

	// MaxSteps caps the engine's tool-call loop. Zero means the engine
	// default (see pkg/engine).
	MaxSteps int `json:"maxSteps,omitempty"`
}

// CanonicalRequest is the vendor-independent shape every adapter encodes
// from. It is immutable once constructed: adapters and the engine only
// ever read it.
type CanonicalRequest struct {
	Messages           []Message        `json:"messages"`
	Tools              []ToolDefinition `json:"tools,omitempty"`
	Settings           GenerationSettings `json:"settings"`
	SystemInstructions string           `json:"systemInstructions,omitempty"`
	ModelID            ModelId          `json:"modelId"`
}

// CanonicalResponse is the vendor-independent shape every adapter decodes
// into for the unary path.
type CanonicalResponse struct {
	ID           string       `json:"id"`
	ModelString  string       `json:"modelString"`
	Parts        []ContentPart `json:"parts"`
	Usage        *Usage       `json:"usage,omitempty"`
	FinishReason FinishReason `json:"finishReason"`

	// Flagged reports a vendor content-moderation hold.
	Flagged bool `json:"flagged,omitempty"`

	// Channel carries a channel tag when the response as a whole belongs
	// to one (mirrors Message.Channel for single-part assistant replies).
	Channel string `json:"channel,omitempty"`

	// Warnings holds non-fatal notices (see pkg/provider/types.Warning).
	// None of the adapters in this module fill it.
	Warnings []Warning `json:"warnings,omitempty"`

	Metadata ResponseMetadata `json:"metadata,omitempty"`
}

// Text concatenates the TextContent parts of the response.
func (r CanonicalResponse) Text() string {
	var out string
	for _, part := range r.Parts {
		if tc, ok := part.(TextContent); ok {
			out += tc.Text
		}
	}
	return out
}

// ToolCalls returns the ToolCallContent parts of the response, in order.
func (r CanonicalResponse) ToolCalls() []ToolCallContent {
	var out []ToolCallContent
	for _, part := range r.Parts {
		if tc, ok := part.(ToolCallContent); ok {
			out = append(out, tc)
		}
	}
	return out
}
