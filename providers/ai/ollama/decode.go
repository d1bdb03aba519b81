package ollama

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/fwlab/olgo/internal/utils"
	"github.com/fwlab/olgo/providers/ai"
)

// fragment is one decoded unit of a response, normalized across the chat and
// generate wire shapes so a single decoder state machine can process both.
type fragment struct {
	model     string
	createdAt time.Time

	text      string
	thinking  string
	toolCalls []responseToolCall

	done       bool
	doneReason string
	usage      *ai.Usage
}

// fragmentParser decodes one raw JSON payload into a normalized fragment.
// Implementations return an error when the payload is valid JSON but not a
// recognizable fragment of their wire shape.
type fragmentParser func(data []byte) (*fragment, error)

// parseChatFragment decodes a chat-endpoint wire object. A payload that
// carries neither a model id, a message, nor a done flag is not a chat
// fragment (e.g. an unrelated JSON line) and is rejected.
func parseChatFragment(data []byte) (*fragment, error) {
	var wire chatResponse
	if err := json.Unmarshal(data, &wire); err != nil {
		return nil, err
	}
	if wire.Model == "" && wire.Message == nil && !wire.Done {
		return nil, &ai.InvalidResponseDataError{
			Message: "payload is not a chat response fragment",
			Payload: utils.TruncateStringDefault(string(data)),
		}
	}

	result := &fragment{
		model:      wire.Model,
		createdAt:  parseCreatedAt(wire.CreatedAt),
		done:       wire.Done,
		doneReason: wire.DoneReason,
		usage:      usageFromCounters(wire.PromptEvalCount, wire.EvalCount),
	}
	if wire.Message != nil {
		result.text = wire.Message.Content
		result.thinking = wire.Message.Thinking
		result.toolCalls = wire.Message.ToolCalls
	}
	return result, nil
}

// parseGenerateFragment decodes a completion-endpoint wire object.
func parseGenerateFragment(data []byte) (*fragment, error) {
	var wire generateResponse
	if err := json.Unmarshal(data, &wire); err != nil {
		return nil, err
	}
	if wire.Model == "" && wire.Response == "" && !wire.Done {
		return nil, &ai.InvalidResponseDataError{
			Message: "payload is not a completion response fragment",
			Payload: utils.TruncateStringDefault(string(data)),
		}
	}

	return &fragment{
		model:      wire.Model,
		createdAt:  parseCreatedAt(wire.CreatedAt),
		text:       wire.Response,
		thinking:   wire.Thinking,
		done:       wire.Done,
		doneReason: wire.DoneReason,
		usage:      usageFromCounters(wire.PromptEvalCount, wire.EvalCount),
	}, nil
}

// parseCreatedAt parses the wire timestamp, returning the zero time when the
// field is absent or malformed. Timestamps are informational only.
func parseCreatedAt(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	parsed, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}
	}
	return parsed
}

// decodeChatResponse converts a complete (non-streaming) chat wire response
// into the canonical result shape. Content block order follows generation
// order: reasoning first, then text, then tool calls.
func decodeChatResponse(wire *chatResponse, warnings []ai.CallWarning) (*ai.ChatResponse, error) {
	if wire == nil || wire.Message == nil {
		return nil, &ai.InvalidResponseDataError{Message: "response has no message"}
	}

	response := &ai.ChatResponse{
		Id:              newResponseID(),
		Model:           wire.Model,
		RawFinishReason: wire.DoneReason,
		Usage:           usageFromCounters(wire.PromptEvalCount, wire.EvalCount),
		Warnings:        warnings,
	}
	if createdAt := parseCreatedAt(wire.CreatedAt); !createdAt.IsZero() {
		response.Created = createdAt.Unix()
	}

	if wire.Message.Thinking != "" {
		response.Content = append(response.Content, ai.ContentBlock{
			Type: ai.ContentBlockReasoning,
			Text: wire.Message.Thinking,
		})
	}
	if wire.Message.Content != "" {
		response.Content = append(response.Content, ai.ContentBlock{
			Type: ai.ContentBlockText,
			Text: wire.Message.Content,
		})
	}

	for _, wireCall := range wire.Message.ToolCalls {
		call, err := convertResponseToolCall(wireCall)
		if err != nil {
			return nil, err
		}
		response.Content = append(response.Content, ai.ContentBlock{
			Type:     ai.ContentBlockToolCall,
			ToolCall: call,
		})
	}

	response.FinishReason = finishReasonFor(wire.DoneReason, len(wire.Message.ToolCalls) > 0)
	return response, nil
}

// decodeGenerateResponse converts a complete prompt-completion wire response.
// The endpoint has no message structure and no tool calls; only reasoning and
// text blocks can appear.
func decodeGenerateResponse(wire *generateResponse, warnings []ai.CallWarning) *ai.ChatResponse {
	response := &ai.ChatResponse{
		Id:              newResponseID(),
		Model:           wire.Model,
		RawFinishReason: wire.DoneReason,
		Usage:           usageFromCounters(wire.PromptEvalCount, wire.EvalCount),
		Warnings:        warnings,
	}
	if createdAt := parseCreatedAt(wire.CreatedAt); !createdAt.IsZero() {
		response.Created = createdAt.Unix()
	}

	if wire.Thinking != "" {
		response.Content = append(response.Content, ai.ContentBlock{
			Type: ai.ContentBlockReasoning,
			Text: wire.Thinking,
		})
	}
	if wire.Response != "" {
		response.Content = append(response.Content, ai.ContentBlock{
			Type: ai.ContentBlockText,
			Text: wire.Response,
		})
	}

	response.FinishReason = finishReasonFor(wire.DoneReason, false)
	return response
}

// finishReasonFor maps the raw done reason, preferring tool-calls when the
// response carried tool calls: the service reports "stop" for tool-call
// turns, which would mislead dispatch loops.
func finishReasonFor(rawReason string, hasToolCalls bool) ai.FinishReason {
	if hasToolCalls && (rawReason == "" || rawReason == "stop") {
		return ai.FinishReasonToolCalls
	}
	return mapDoneReason(rawReason)
}

// convertResponseToolCall validates and converts one wire tool call. A tool
// call without a function name cannot be dispatched, so its absence is fatal.
func convertResponseToolCall(wireCall responseToolCall) (*ai.ToolCall, error) {
	if wireCall.Function.Name == nil || *wireCall.Function.Name == "" {
		return nil, &ai.InvalidResponseDataError{
			Message: "tool call is missing its function name",
			Payload: utils.TruncateStringDefault(utils.JSONToString(wireCall)),
		}
	}

	arguments := "{}"
	if len(wireCall.Function.Arguments) > 0 {
		arguments = string(wireCall.Function.Arguments)
	}

	return &ai.ToolCall{
		ID:   toolCallID(wireCall.ID),
		Type: "function",
		Function: ai.ToolCallFunction{
			Name:      *wireCall.Function.Name,
			Arguments: arguments,
		},
	}, nil
}

// toolCallID returns the wire id when the service provided one, otherwise a
// generated id so every call stays addressable by the dispatch layer.
func toolCallID(wireID string) string {
	if wireID != "" {
		return wireID
	}
	return "call_" + uuid.NewString()
}

// newResponseID generates the response identifier. The wire service does not
// assign response ids, so the adapter does.
func newResponseID() string {
	return "resp_" + uuid.NewString()
}
