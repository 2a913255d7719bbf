// Package prompt converts canonical messages into the per-vendor wire
// shapes shared by pkg/providerutils/openaicompat and the bespoke
// Anthropic/Google adapters.
package prompt

import (
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/digitallysavvy/go-ai/pkg/provider/types"
)

// ToOpenAIMessages converts canonical messages to OpenAI chat-completions
// format.
func ToOpenAIMessages(messages []types.Message) []map[string]interface{} {
	result := make([]map[string]interface{}, 0, len(messages))

	for _, msg := range messages {
		openAIMsg := map[string]interface{}{"role": string(msg.Role)}

		if len(msg.Content) == 1 && msg.Content[0].ContentType() == "text" {
			if textContent, ok := msg.Content[0].(types.TextContent); ok {
				openAIMsg["content"] = textContent.Text
			}
		} else {
			contentParts := make([]map[string]interface{}, 0, len(msg.Content))
			for _, part := range msg.Content {
				switch p := part.(type) {
				case types.TextContent:
					contentParts = append(contentParts, map[string]interface{}{
						"type": "text",
						"text": p.Text,
					})
				case types.ImageContent:
					var imageData string
					if p.URL != "" {
						imageData = p.URL
					} else {
						imageData = fmt.Sprintf("data:%s;base64,%s",
							p.MimeType, base64.StdEncoding.EncodeToString(p.Data))
					}
					contentParts = append(contentParts, map[string]interface{}{
						"type":      "image_url",
						"image_url": map[string]interface{}{"url": imageData},
					})
				case types.ToolResultContent:
					contentParts = append(contentParts, map[string]interface{}{
						"type": "tool_result",
						"tool_call_id": p.CallID,
						"content":      string(p.PayloadJSON),
					})
				}
			}
			openAIMsg["content"] = contentParts
		}

		if msg.Name != "" {
			openAIMsg["name"] = msg.Name
		}

		for _, part := range msg.Content {
			if tc, ok := part.(types.ToolCallContent); ok {
				calls, _ := openAIMsg["tool_calls"].([]map[string]interface{})
				calls = append(calls, map[string]interface{}{
					"id":   tc.ID,
					"type": "function",
					"function": map[string]interface{}{
						"name":      tc.Name,
						"arguments": string(tc.ArgumentsJSON),
					},
				})
				openAIMsg["tool_calls"] = calls
			}
			if tr, ok := part.(types.ToolResultContent); ok {
				openAIMsg["role"] = "tool"
				openAIMsg["tool_call_id"] = tr.CallID
				openAIMsg["content"] = string(tr.PayloadJSON)
			}
		}

		result = append(result, openAIMsg)
	}

	return result
}

// ToAnthropicMessages converts canonical messages to Anthropic's messages
// format. System messages are dropped; callers extract them separately via
// ExtractSystemMessage.
func ToAnthropicMessages(messages []types.Message) []map[string]interface{} {
	result := make([]map[string]interface{}, 0, len(messages))

	for _, msg := range messages {
		if msg.Role == types.RoleSystem {
			continue
		}

		role := string(msg.Role)
		if msg.Role == types.RoleTool {
			role = "user"
		}
		anthropicMsg := map[string]interface{}{"role": role}

		contentParts := make([]map[string]interface{}, 0, len(msg.Content))
		for _, part := range msg.Content {
			switch p := part.(type) {
			case types.TextContent:
				contentParts = append(contentParts, map[string]interface{}{
					"type": "text",
					"text": p.Text,
				})
			case types.ImageContent:
				contentParts = append(contentParts, map[string]interface{}{
					"type": "image",
					"source": map[string]interface{}{
						"type":       "base64",
						"media_type": p.MimeType,
						"data":       base64.StdEncoding.EncodeToString(p.Data),
					},
				})
			case types.ToolCallContent:
				var input interface{}
				_ = json.Unmarshal(p.ArgumentsJSON, &input)
				contentParts = append(contentParts, map[string]interface{}{
					"type":  "tool_use",
					"id":    p.ID,
					"name":  p.Name,
					"input": input,
				})
			case types.ToolResultContent:
				contentParts = append(contentParts, map[string]interface{}{
					"type":        "tool_result",
					"tool_use_id": p.CallID,
					"content":     string(p.PayloadJSON),
					"is_error":    p.IsError,
				})
			}
		}
		anthropicMsg["content"] = contentParts

		result = append(result, anthropicMsg)
	}

	return result
}

// ExtractSystemMessage returns the text of the first system message, for
// vendors (Anthropic, Gemini) that take system instructions out-of-band.
func ExtractSystemMessage(messages []types.Message) string {
	for _, msg := range messages {
		if msg.Role == types.RoleSystem && len(msg.Content) > 0 {
			if textContent, ok := msg.Content[0].(types.TextContent); ok {
				return textContent.Text
			}
		}
	}
	return ""
}

// ToGoogleMessages converts canonical messages to Gemini's contents format.
func ToGoogleMessages(messages []types.Message) []map[string]interface{} {
	result := make([]map[string]interface{}, 0, len(messages))

	for _, msg := range messages {
		if msg.Role == types.RoleSystem {
			continue
		}
		role := "user"
		if msg.Role == types.RoleAssistant {
			role = "model"
		}

		parts := make([]map[string]interface{}, 0, len(msg.Content))
		for _, part := range msg.Content {
			switch p := part.(type) {
			case types.TextContent:
				parts = append(parts, map[string]interface{}{"text": p.Text})
			case types.ImageContent:
				parts = append(parts, map[string]interface{}{
					"inline_data": map[string]interface{}{
						"mime_type": p.MimeType,
						"data":      base64.StdEncoding.EncodeToString(p.Data),
					},
				})
			case types.ToolCallContent:
				var args interface{}
				_ = json.Unmarshal(p.ArgumentsJSON, &args)
				parts = append(parts, map[string]interface{}{
					"functionCall": map[string]interface{}{"name": p.Name, "args": args},
				})
			case types.ToolResultContent:
				var response interface{}
				_ = json.Unmarshal(p.PayloadJSON, &response)
				parts = append(parts, map[string]interface{}{
					"functionResponse": map[string]interface{}{"name": p.CallID, "response": response},
				})
			}
		}

		result = append(result, map[string]interface{}{"role": role, "parts": parts})
	}

	return result
}

// SimpleTextToMessages wraps a bare prompt string as a single user message.
func SimpleTextToMessages(text string) []types.Message {
	return []types.Message{
		{Role: types.RoleUser, Content: []types.ContentPart{types.TextContent{Text: text}}},
	}
}

// MessagesToSimpleText concatenates every TextContent part across messages.
// Lossy: tool calls, images, and reasoning are dropped.
func MessagesToSimpleText(messages []types.Message) string {
	var result string
	for _, msg := range messages {
		for _, part := range msg.Content {
			if textContent, ok := part.(types.TextContent); ok {
				if result != "" {
					result += "\n"
				}
				result += textContent.Text
			}
		}
	}
	return result
}

// AddToolResultsToMessages appends a Tool message per result.
func AddToolResultsToMessages(messages []types.Message, toolResults []types.ToolResult) []types.Message {
	out := messages
	for _, r := range toolResults {
		out = append(out, types.NewToolResultMessage(r.CallID, r.PayloadJSON, r.IsError))
	}
	return out
}

// ValidateMessages checks that messages are well-formed enough to send.
func ValidateMessages(messages []types.Message) error {
	if len(messages) == 0 {
		return fmt.Errorf("messages cannot be empty")
	}
	for i, msg := range messages {
		if msg.Role == "" {
			return fmt.Errorf("message %d has empty role", i)
		}
		if len(msg.Content) == 0 {
			return fmt.Errorf("message %d has empty content", i)
		}
	}
	return nil
}
