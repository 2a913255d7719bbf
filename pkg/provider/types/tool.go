package types

import (
	"context"
	"encoding/json"
)

// ToolDefinition describes a tool the model may call. It is the canonical
// shape adapters encode into each vendor's function/tool-calling wire
// format.
type ToolDefinition struct {
	// Name of the tool (must be unique within a request).
	Name string `json:"name"`

	// Description of what the tool does, helping the model decide when to
	// use it.
	Description string `json:"description"`

	// ParametersSchema is a JSON Schema object describing the tool's
	// arguments. The engine compiles it with pkg/schema during request
	// validation, before the request reaches an adapter, and rejects the
	// request if it does not parse as a well-formed JSON Schema document.
	ParametersSchema json.RawMessage `json:"parametersSchema"`

	// Strict enables strict schema enforcement where the vendor supports
	// it (e.g. OpenAI structured outputs).
	Strict bool `json:"strict,omitempty"`

	// ProviderExecuted marks a tool that the vendor itself executes
	// (e.g. Anthropic's web-search, OpenAI's code-interpreter) rather
	// than one the caller must run locally and answer with a
	// ToolResultContent.
	ProviderExecuted bool `json:"providerExecuted,omitempty"`

	// Execute runs the tool locally. Nil for ProviderExecuted tools and
	// for tools whose results the caller supplies directly via
	// NewToolResultMessage instead of through the engine's loop.
	Execute ToolExecutor `json:"-"`
}

// ToolExecutor runs a tool given its call arguments.
type ToolExecutor func(ctx context.Context, call ToolCallContent) (json.RawMessage, error)

// ToolCall is a convenience, flattened view of a ToolCallContent used by
// callers that don't want to walk a message's Content slice.
type ToolCall struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	ArgumentsJSON json.RawMessage `json:"argumentsJson"`
}

// ToolResult is a convenience, flattened view of a ToolResultContent.
type ToolResult struct {
	CallID      string          `json:"callId"`
	PayloadJSON json.RawMessage `json:"payloadJson"`
	IsError     bool            `json:"isError,omitempty"`
}

// ToolChoice specifies how the model should choose tools.
type ToolChoice struct {
	Type ToolChoiceType `json:"type"`

	// ToolName is set only when Type is ToolChoiceTool.
	ToolName string `json:"toolName,omitempty"`
}

// ToolChoiceType represents the type of tool choice.
type ToolChoiceType string

const (
	// ToolChoiceAuto lets the model decide whether to call tools.
	ToolChoiceAuto ToolChoiceType = "auto"

	// ToolChoiceNone prevents the model from calling any tools.
	ToolChoiceNone ToolChoiceType = "none"

	// ToolChoiceRequired forces the model to call at least one tool.
	ToolChoiceRequired ToolChoiceType = "required"

	// ToolChoiceTool forces the model to call a specific tool.
	ToolChoiceTool ToolChoiceType = "tool"
)

// AutoToolChoice returns a ToolChoice that lets the model decide.
func AutoToolChoice() ToolChoice { return ToolChoice{Type: ToolChoiceAuto} }

// NoneToolChoice returns a ToolChoice that prevents tool calls.
func NoneToolChoice() ToolChoice { return ToolChoice{Type: ToolChoiceNone} }

// RequiredToolChoice returns a ToolChoice that requires at least one tool
// call.
func RequiredToolChoice() ToolChoice { return ToolChoice{Type: ToolChoiceRequired} }

// SpecificToolChoice returns a ToolChoice for a specific tool.
func SpecificToolChoice(toolName string) ToolChoice {
	return ToolChoice{Type: ToolChoiceTool, ToolName: toolName}
}

// ToolExecutionError wraps an error raised while running a tool locally.
type ToolExecutionError struct {
	ToolCallID       string
	ToolName         string
	Err              error
	ProviderExecuted bool
}

func (e *ToolExecutionError) Error() string {
	kind := "local"
	if e.ProviderExecuted {
		kind = "provider-executed"
	}
	return "tool execution failed [" + kind + "] (tool: " + e.ToolName + ", call: " + e.ToolCallID + "): " + e.Err.Error()
}

func (e *ToolExecutionError) Unwrap() error { return e.Err }

// MissingToolResultError indicates the engine did not receive a
// ToolResultContent for an outstanding ToolCallContent.
type MissingToolResultError struct {
	ToolCallID string
	ToolName   string
}

func (e *MissingToolResultError) Error() string {
	return "missing tool result for call " + e.ToolCallID + " (tool: " + e.ToolName + ")"
}
