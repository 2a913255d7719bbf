// Package tool converts canonical ToolDefinitions and ToolChoices into the
// wire shapes each vendor family expects.
package tool

import (
	"encoding/json"
	"fmt"

	"github.com/digitallysavvy/go-ai/pkg/provider/types"
)

// ToJSONSchema converts a ToolDefinition to the OpenAI-style
// {"type":"function","function":{...}} wrapper.
func ToJSONSchema(t types.ToolDefinition) map[string]interface{} {
	functionDef := map[string]interface{}{
		"name":        t.Name,
		"description": t.Description,
	}
	if len(t.ParametersSchema) > 0 {
		var schema interface{}
		if err := json.Unmarshal(t.ParametersSchema, &schema); err == nil {
			functionDef["parameters"] = schema
		}
	}
	if t.Strict {
		functionDef["strict"] = true
	}
	return map[string]interface{}{
		"type":     "function",
		"function": functionDef,
	}
}

// ToOpenAIFormat converts tools to OpenAI's tool array format.
func ToOpenAIFormat(tools []types.ToolDefinition) []map[string]interface{} {
	result := make([]map[string]interface{}, len(tools))
	for i, t := range tools {
		result[i] = ToJSONSchema(t)
	}
	return result
}

// ToAnthropicFormat converts tools to Anthropic's tool array format.
func ToAnthropicFormat(tools []types.ToolDefinition) []map[string]interface{} {
	result := make([]map[string]interface{}, len(tools))
	for i, t := range tools {
		entry := map[string]interface{}{
			"name":        t.Name,
			"description": t.Description,
		}
		if len(t.ParametersSchema) > 0 {
			var schema interface{}
			if err := json.Unmarshal(t.ParametersSchema, &schema); err == nil {
				entry["input_schema"] = schema
			}
		}
		result[i] = entry
	}
	return result
}

// ToGoogleFormat converts tools to Google's function-declaration format.
func ToGoogleFormat(tools []types.ToolDefinition) []map[string]interface{} {
	result := make([]map[string]interface{}, len(tools))
	for i, t := range tools {
		entry := map[string]interface{}{
			"name":        t.Name,
			"description": t.Description,
		}
		if len(t.ParametersSchema) > 0 {
			var schema interface{}
			if err := json.Unmarshal(t.ParametersSchema, &schema); err == nil {
				entry["parameters"] = schema
			}
		}
		result[i] = entry
	}
	return result
}

// ParseToolCallArguments normalizes tool call arguments from the varied
// shapes vendor SDKs hand back into json.RawMessage.
func ParseToolCallArguments(args interface{}) (json.RawMessage, error) {
	switch v := args.(type) {
	case json.RawMessage:
		return v, nil
	case string:
		if !json.Valid([]byte(v)) {
			return nil, fmt.Errorf("tool arguments are not valid JSON")
		}
		return json.RawMessage(v), nil
	case []byte:
		if !json.Valid(v) {
			return nil, fmt.Errorf("tool arguments are not valid JSON")
		}
		return json.RawMessage(v), nil
	case map[string]interface{}:
		b, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal tool arguments: %w", err)
		}
		return b, nil
	default:
		return nil, fmt.Errorf("unsupported tool arguments type: %T", args)
	}
}

// FindTool finds a tool by name.
func FindTool(toolName string, tools []types.ToolDefinition) (*types.ToolDefinition, error) {
	for i := range tools {
		if tools[i].Name == toolName {
			return &tools[i], nil
		}
	}
	return nil, fmt.Errorf("tool not found: %s", toolName)
}

// ConvertToolChoiceToOpenAI converts a canonical ToolChoice to OpenAI's
// format.
func ConvertToolChoiceToOpenAI(choice types.ToolChoice) interface{} {
	switch choice.Type {
	case types.ToolChoiceAuto:
		return "auto"
	case types.ToolChoiceNone:
		return "none"
	case types.ToolChoiceRequired:
		return "required"
	case types.ToolChoiceTool:
		return map[string]interface{}{
			"type":     "function",
			"function": map[string]interface{}{"name": choice.ToolName},
		}
	default:
		return "auto"
	}
}

// ConvertToolChoiceToAnthropic converts a canonical ToolChoice to
// Anthropic's format.
func ConvertToolChoiceToAnthropic(choice types.ToolChoice) interface{} {
	switch choice.Type {
	case types.ToolChoiceAuto:
		return map[string]interface{}{"type": "auto"}
	case types.ToolChoiceNone:
		return nil
	case types.ToolChoiceRequired:
		return map[string]interface{}{"type": "any"}
	case types.ToolChoiceTool:
		return map[string]interface{}{"type": "tool", "name": choice.ToolName}
	default:
		return map[string]interface{}{"type": "auto"}
	}
}

// ConvertToolChoiceToGoogle converts a canonical ToolChoice to Google's
// format.
func ConvertToolChoiceToGoogle(choice types.ToolChoice) string {
	switch choice.Type {
	case types.ToolChoiceAuto:
		return "AUTO"
	case types.ToolChoiceNone:
		return "NONE"
	case types.ToolChoiceRequired:
		return "ANY"
	default:
		return "AUTO"
	}
}
