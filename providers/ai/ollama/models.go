package ollama

import (
	"encoding/json"
	"fmt"
)

/*
	##### WIRE REQUEST #####
*/

// chatRequest is the JSON body POSTed to the chat endpoint. The object is
// flat; most fields are optional and some are mutually exclusive depending on
// the detected model family (reasoning vs. standard). Built fresh per call
// and never mutated after being issued.
type chatRequest struct {
	Model    string        `json:"model"`
	Messages []wireMessage `json:"messages"`
	Stream   *bool         `json:"stream,omitempty"`

	// Format is either the JSON string "json" (bare JSON mode) or a full
	// JSON-Schema object (structured outputs).
	Format json.RawMessage `json:"format,omitempty"`

	Tools      []wireTool `json:"tools,omitempty"`
	ToolChoice any        `json:"tool_choice,omitempty"` // "auto" | "none" | "required" | wireForcedTool

	// Sampling parameters. Reasoning families reject most of these; the
	// request builder strips them with a warning before marshaling.
	Temperature      *float64       `json:"temperature,omitempty"`
	TopP             *float64       `json:"top_p,omitempty"`
	FrequencyPenalty *float64       `json:"frequency_penalty,omitempty"`
	PresencePenalty  *float64       `json:"presence_penalty,omitempty"`
	Seed             *int64         `json:"seed,omitempty"`
	Stop             []string       `json:"stop,omitempty"`
	LogitBias        map[string]int `json:"logit_bias,omitempty"`
	Logprobs         *bool          `json:"logprobs,omitempty"`
	TopLogprobs      *int           `json:"top_logprobs,omitempty"`

	// MaxTokens is the classic completion limit; reasoning families require
	// the limit relocated to MaxCompletionTokens instead.
	MaxTokens           *int `json:"max_tokens,omitempty"`
	MaxCompletionTokens *int `json:"max_completion_tokens,omitempty"`

	// Truncate asks the server to clip over-length prompts instead of
	// rejecting them; set for families that require auto truncation.
	Truncate *bool `json:"truncate,omitempty"`

	// Options carries provider-specific extension options verbatim.
	Options map[string]any `json:"options,omitempty"`
}

// wireMessage is one element of the wire message array. Content is either a
// plain string (single-text-part turns collapse to this for wire efficiency)
// or an ordered array of wireContentPart.
type wireMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content,omitempty"`

	Thinking   string         `json:"thinking,omitempty"`
	ToolCalls  []wireToolCall `json:"tool_calls,omitempty"`
	ToolCallID string         `json:"tool_call_id,omitempty"`
	Name       string         `json:"name,omitempty"`
}

// wireContentPart is one typed element of a multi-part message content array.
type wireContentPart struct {
	Type string `json:"type"` // "text" | "image_url" | "input_audio" | "file"

	Text       string          `json:"text,omitempty"`
	ImageURL   *wireImageURL   `json:"image_url,omitempty"`
	InputAudio *wireInputAudio `json:"input_audio,omitempty"`
	File       *wireFile       `json:"file,omitempty"`
}

type wireImageURL struct {
	URL string `json:"url"` // Remote URL or base64 data-URL
}

type wireInputAudio struct {
	Data   string `json:"data"`   // Base64-encoded audio bytes
	Format string `json:"format"` // "mp3" | "wav"
}

type wireFile struct {
	Filename string `json:"filename,omitempty"`
	FileData string `json:"file_data"` // Base64 data-URL
}

// wireTool is one function tool definition on the wire.
type wireTool struct {
	Type     string           `json:"type"` // Always "function"
	Function wireToolFunction `json:"function"`
}

type wireToolFunction struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Parameters  json.RawMessage `json:"parameters"`
}

// wireForcedTool is the tool_choice shape forcing one specific function.
type wireForcedTool struct {
	Type     string             `json:"type"` // Always "function"
	Function wireForcedToolName `json:"function"`
}

type wireForcedToolName struct {
	Name string `json:"name"`
}

// wireToolCall is an assistant-turn tool call echoed back to the service.
// Arguments are sent as a raw JSON object, not a string.
type wireToolCall struct {
	ID       string               `json:"id,omitempty"`
	Type     string               `json:"type"`
	Function wireToolCallFunction `json:"function"`
}

type wireToolCallFunction struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
}

/*
	##### WIRE RESPONSE #####
*/

// chatResponse is the JSON object returned by the chat endpoint. In streaming
// mode the same shape arrives once per fragment, with counters and done_reason
// only populated on the final (done=true) fragment.
type chatResponse struct {
	Model     string               `json:"model"`
	CreatedAt string               `json:"created_at"`
	Message   *chatResponseMessage `json:"message"`

	Done       bool   `json:"done"`
	DoneReason string `json:"done_reason"`

	// Trailing usage/timing counters.
	TotalDuration      int64 `json:"total_duration"`
	LoadDuration       int64 `json:"load_duration"`
	PromptEvalCount    int   `json:"prompt_eval_count"`
	PromptEvalDuration int64 `json:"prompt_eval_duration"`
	EvalCount          int   `json:"eval_count"`
	EvalDuration       int64 `json:"eval_duration"`
}

// chatResponseMessage is the message payload of a chat response or fragment.
type chatResponseMessage struct {
	Role      string             `json:"role"`
	Content   string             `json:"content"`
	Thinking  string             `json:"thinking,omitempty"`
	ToolCalls []responseToolCall `json:"tool_calls,omitempty"`
}

// responseToolCall is a tool call as delivered by the service. Name is a
// pointer so that an explicit null (a malformed, undispatchable call) is
// distinguishable from a missing field.
type responseToolCall struct {
	ID       string                   `json:"id,omitempty"`
	Function responseToolCallFunction `json:"function"`
}

type responseToolCallFunction struct {
	Name      *string         `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
}

// generateResponse is the JSON object returned by the completion ("generate")
// endpoint. Same envelope as chatResponse but with a flat response string
// instead of a message object.
type generateResponse struct {
	Model     string `json:"model"`
	CreatedAt string `json:"created_at"`

	Response string `json:"response"`
	Thinking string `json:"thinking,omitempty"`

	Done       bool   `json:"done"`
	DoneReason string `json:"done_reason"`

	TotalDuration      int64 `json:"total_duration"`
	LoadDuration       int64 `json:"load_duration"`
	PromptEvalCount    int   `json:"prompt_eval_count"`
	PromptEvalDuration int64 `json:"prompt_eval_duration"`
	EvalCount          int   `json:"eval_count"`
	EvalDuration       int64 `json:"eval_duration"`
}

// generateRequest is the JSON body POSTed to the completion endpoint.
type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	System string `json:"system,omitempty"`
	Stream *bool  `json:"stream,omitempty"`

	Format json.RawMessage `json:"format,omitempty"`

	Temperature         *float64 `json:"temperature,omitempty"`
	TopP                *float64 `json:"top_p,omitempty"`
	FrequencyPenalty    *float64 `json:"frequency_penalty,omitempty"`
	PresencePenalty     *float64 `json:"presence_penalty,omitempty"`
	Seed                *int64   `json:"seed,omitempty"`
	Stop                []string `json:"stop,omitempty"`
	MaxTokens           *int     `json:"max_tokens,omitempty"`
	MaxCompletionTokens *int     `json:"max_completion_tokens,omitempty"`
	Truncate            *bool    `json:"truncate,omitempty"`

	Options map[string]any `json:"options,omitempty"`
}

/*
	##### ERROR ENVELOPE #####
*/

// errorEnvelope is the error wire shape: {"error": {...}} with either a
// structured detail object or, for some server builds, a bare string.
type errorEnvelope struct {
	Error json.RawMessage `json:"error"`
}

// wireErrorDetail is the structured error detail object.
type wireErrorDetail struct {
	Message string `json:"message"`
	Type    string `json:"type,omitempty"`
	Param   string `json:"param,omitempty"`
	Code    any    `json:"code,omitempty"`
}

// decodeErrorEnvelope extracts the error detail from a wire error body.
// The second return value is false when body is not an error envelope.
func decodeErrorEnvelope(body []byte) (*wireErrorDetail, bool) {
	var envelope errorEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil || len(envelope.Error) == 0 {
		return nil, false
	}

	// Structured detail object.
	var detail wireErrorDetail
	if err := json.Unmarshal(envelope.Error, &detail); err == nil && detail.Message != "" {
		return &detail, true
	}

	// Bare string form.
	var message string
	if err := json.Unmarshal(envelope.Error, &message); err == nil && message != "" {
		return &wireErrorDetail{Message: message}, true
	}

	return nil, false
}

// codeString renders the envelope's code field, which may be a string or a
// number, as a string for the typed call error.
func codeString(code any) string {
	if code == nil {
		return ""
	}
	if text, ok := code.(string); ok {
		return text
	}
	return fmt.Sprintf("%v", code)
}
