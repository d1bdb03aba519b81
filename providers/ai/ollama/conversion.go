package ollama

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fwlab/olgo/providers/ai"
)

// convertMessages maps the provider-agnostic conversation onto the wire
// message array. Turn order is caller-supplied and preserved; only system
// turns are subject to the placement policy carried by the model family.
//
// Fatal errors are reserved for structurally invalid input (unknown role or
// part kind, unsupported media type); placement degradations surface as
// warnings instead.
func convertMessages(messages []ai.Message, mode SystemMessageMode) ([]wireMessage, []ai.CallWarning, error) {
	var result []wireMessage
	var warnings []ai.CallWarning

	for _, message := range messages {
		switch message.Role {
		case ai.RoleSystem:
			switch mode {
			case SystemMessageModeSystem, "":
				result = append(result, wireMessage{Role: "system", Content: message.Content})
			case SystemMessageModeDeveloper:
				result = append(result, wireMessage{Role: "developer", Content: message.Content})
			case SystemMessageModeRemove:
				warnings = append(warnings, ai.CallWarning{
					Type:    ai.WarningOther,
					Details: "system messages are removed for this model family",
				})
			default:
				return nil, nil, fmt.Errorf("unknown system message mode: %q", mode)
			}

		case ai.RoleUser:
			userMessage, err := convertUserMessage(message)
			if err != nil {
				return nil, nil, err
			}
			result = append(result, userMessage)

		case ai.RoleAssistant:
			assistantMessage, err := convertAssistantMessage(message)
			if err != nil {
				return nil, nil, err
			}
			result = append(result, assistantMessage)

		case ai.RoleTool:
			toolMessages, err := convertToolMessage(message)
			if err != nil {
				return nil, nil, err
			}
			result = append(result, toolMessages...)

		default:
			// Exhaustiveness contract: adding a new role variant must force an
			// explicit decision here.
			return nil, nil, &ai.UnsupportedRoleError{Role: message.Role}
		}
	}

	return result, warnings, nil
}

// convertUserMessage maps a user turn. A turn with exactly one text part (or
// a flat Content string) collapses to plain string content for wire
// efficiency; anything else becomes an ordered array of typed parts.
func convertUserMessage(message ai.Message) (wireMessage, error) {
	if len(message.ContentParts) == 0 {
		return wireMessage{Role: "user", Content: message.Content}, nil
	}

	if len(message.ContentParts) == 1 && message.ContentParts[0].Type == ai.ContentTypeText {
		return wireMessage{Role: "user", Content: message.ContentParts[0].Text}, nil
	}

	parts := make([]wireContentPart, 0, len(message.ContentParts))
	for _, part := range message.ContentParts {
		converted, err := convertUserPart(part)
		if err != nil {
			return wireMessage{}, err
		}
		parts = append(parts, converted)
	}

	return wireMessage{Role: "user", Content: parts}, nil
}

// convertUserPart maps one user content part to its wire attachment shape,
// keyed by media type.
func convertUserPart(part ai.ContentPart) (wireContentPart, error) {
	switch part.Type {
	case ai.ContentTypeText:
		return wireContentPart{Type: "text", Text: part.Text}, nil

	case ai.ContentTypeImage:
		if part.Image == nil {
			return wireContentPart{}, &ai.UnsupportedContentPartError{Role: ai.RoleUser, Part: part.Type}
		}
		// Inline bytes become a base64 data-URL; remote references pass
		// through untouched.
		url := part.Image.URI
		if url == "" {
			url = fmt.Sprintf("data:%s;base64,%s", part.Image.MimeType, part.Image.Data)
		}
		return wireContentPart{Type: "image_url", ImageURL: &wireImageURL{URL: url}}, nil

	case ai.ContentTypeAudio:
		if part.Audio == nil {
			return wireContentPart{}, &ai.UnsupportedContentPartError{Role: ai.RoleUser, Part: part.Type}
		}
		format, ok := audioFormat(part.Audio.MimeType)
		if !ok {
			return wireContentPart{}, &ai.UnsupportedContentTypeError{MimeType: part.Audio.MimeType}
		}
		return wireContentPart{Type: "input_audio", InputAudio: &wireInputAudio{
			Data:   part.Audio.Data,
			Format: format,
		}}, nil

	case ai.ContentTypeDocument:
		if part.Document == nil {
			return wireContentPart{}, &ai.UnsupportedContentPartError{Role: ai.RoleUser, Part: part.Type}
		}
		if part.Document.MimeType != "application/pdf" {
			return wireContentPart{}, &ai.UnsupportedContentTypeError{MimeType: part.Document.MimeType}
		}
		return wireContentPart{Type: "file", File: &wireFile{
			FileData: fmt.Sprintf("data:%s;base64,%s", part.Document.MimeType, part.Document.Data),
		}}, nil

	default:
		return wireContentPart{}, &ai.UnsupportedContentPartError{Role: ai.RoleUser, Part: part.Type}
	}
}

// audioFormat maps an audio media type to the wire format discriminator.
func audioFormat(mimeType string) (string, bool) {
	switch strings.ToLower(mimeType) {
	case "audio/mpeg", "audio/mp3":
		return "mp3", true
	case "audio/wav", "audio/x-wav", "audio/wave":
		return "wav", true
	default:
		return "", false
	}
}

// convertAssistantMessage maps an assistant turn: all text parts concatenate
// into one content string, all reasoning content concatenates into the
// thinking field, and tool calls collect into an ordered array. Any other
// part kind is structurally invalid in an assistant turn.
func convertAssistantMessage(message ai.Message) (wireMessage, error) {
	var textBuilder strings.Builder
	textBuilder.WriteString(message.Content)

	thinking := message.Reasoning
	toolCalls := make([]wireToolCall, 0, len(message.ToolCalls))

	for _, part := range message.ContentParts {
		switch part.Type {
		case ai.ContentTypeText:
			textBuilder.WriteString(part.Text)
		default:
			return wireMessage{}, &ai.UnsupportedContentPartError{Role: ai.RoleAssistant, Part: part.Type}
		}
	}

	for _, call := range message.ToolCalls {
		toolCalls = append(toolCalls, wireToolCall{
			ID:   call.ID,
			Type: "function",
			Function: wireToolCallFunction{
				Name:      call.Function.Name,
				Arguments: argumentsJSON(call.Function.Arguments),
			},
		})
	}

	result := wireMessage{
		Role:     "assistant",
		Content:  textBuilder.String(),
		Thinking: thinking,
	}
	if len(toolCalls) > 0 {
		result.ToolCalls = toolCalls
	}
	return result, nil
}

// argumentsJSON coerces a tool call's argument string to a raw JSON object.
// Canonical tool calls carry arguments as a JSON string; the wire expects an
// object, so invalid or empty strings degrade to the empty object rather
// than producing a malformed request.
func argumentsJSON(arguments string) json.RawMessage {
	trimmed := strings.TrimSpace(arguments)
	if trimmed == "" || !json.Valid([]byte(trimmed)) {
		return json.RawMessage(`{}`)
	}
	return json.RawMessage(trimmed)
}

// convertToolMessage maps a tool turn to one wire message per tool-result
// part, each carrying its tool-call id and a string-coerced result payload.
// A flat tool message (ToolCallID + Content) maps to a single wire message.
func convertToolMessage(message ai.Message) ([]wireMessage, error) {
	if len(message.ContentParts) == 0 {
		return []wireMessage{{
			Role:       "tool",
			Content:    message.Content,
			ToolCallID: message.ToolCallID,
			Name:       message.Name,
		}}, nil
	}

	var result []wireMessage
	for _, part := range message.ContentParts {
		if part.Type != ai.ContentTypeToolResult || part.ToolResult == nil {
			return nil, &ai.UnsupportedContentPartError{Role: ai.RoleTool, Part: part.Type}
		}
		payload, err := coerceToolResult(part.ToolResult.Result)
		if err != nil {
			return nil, err
		}
		result = append(result, wireMessage{
			Role:       "tool",
			Content:    payload,
			ToolCallID: part.ToolResult.ToolCallID,
			Name:       part.ToolResult.ToolName,
		})
	}
	return result, nil
}

// coerceToolResult renders a tool result payload as the string the wire
// expects: strings pass through, everything else is JSON-stringified.
func coerceToolResult(result any) (string, error) {
	if text, ok := result.(string); ok {
		return text, nil
	}
	encoded, err := json.Marshal(result)
	if err != nil {
		return "", fmt.Errorf("failed to encode tool result: %w", err)
	}
	return string(encoded), nil
}
