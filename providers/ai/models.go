package ai

import (
	"encoding/json"
	"strings"

	"github.com/fwlab/olgo/internal/jsonschema"
)

/*
	##### PROVIDER INPUT #####
*/

// ChatRequest represents a request to generate a chat completion.
type ChatRequest struct {
	Model            string            `json:"model,omitempty"`             // Model name or identifier
	Messages         []Message         `json:"messages"`                    // Ordered conversation turns, including system turns
	Tools            []ToolDescription `json:"tools,omitempty"`             // Tool definitions if any
	ToolChoice       *ToolChoice       `json:"tool_choice,omitempty"`       // Optional tool choice directive
	ResponseFormat   *ResponseFormat   `json:"response_format,omitempty"`   // Optional response format
	GenerationConfig *GenerationConfig `json:"generation_config,omitempty"` // Optional generation configuration
	ProviderOptions  map[string]any    `json:"provider_options,omitempty"`  // Provider-specific passthrough options
}

// ToolDescription describes a callable tool offered to the model.
// Parameters follow the JSON Schema standard; a nil schema is treated as an
// empty object schema by the provider conversion layer.
type ToolDescription struct {
	Name        string             `json:"name"`
	Description string             `json:"description,omitempty"`
	Parameters  *jsonschema.Schema `json:"parameters,omitempty"`
	Kind        ToolKind           `json:"kind,omitempty"` // Defaults to ToolKindFunction when empty
}

// ToolKind identifies the flavor of a tool definition. Only function tools can
// be sent to the wire service; other kinds are dropped with a warning.
type ToolKind string

const (
	// ToolKindFunction is a standard JSON-Schema-parameterized function tool.
	ToolKindFunction ToolKind = "function"
	// ToolKindProviderDefined is a tool executed by the provider itself
	// (e.g. hosted web search). Not supported by local model servers.
	ToolKindProviderDefined ToolKind = "provider-defined"
)

// ToolChoice directs how the model may use the supplied tools.
type ToolChoice struct {
	Type     ToolChoiceType `json:"type"`
	ToolName string         `json:"tool_name,omitempty"` // Required when Type == ToolChoiceTool
}

// ToolChoiceType enumerates the tool choice directives.
type ToolChoiceType string

const (
	ToolChoiceAuto     ToolChoiceType = "auto"     // Model decides whether to call a tool
	ToolChoiceNone     ToolChoiceType = "none"     // Model must not call tools
	ToolChoiceRequired ToolChoiceType = "required" // Model must call at least one tool
	ToolChoiceTool     ToolChoiceType = "tool"     // Model must call the named tool
)

// Message represents a single turn in a conversation. A turn either carries a
// flat Content string (the common case) or an ordered list of typed
// ContentParts for multimodal input. When both are set, ContentParts wins.
type Message struct {
	// Core fields (always present)
	Role    MessageRole `json:"role"`
	Content string      `json:"content,omitempty"`

	// Multimodal content parts; order is preserved on the wire.
	ContentParts []ContentPart `json:"content_parts,omitempty"`

	// Tool calling fields
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`   // For role=assistant requesting tools
	ToolCallID string     `json:"tool_call_id,omitempty"` // For role=tool, links to the tool call being responded to
	Name       string     `json:"name,omitempty"`         // For role=tool, name of the tool that generated this response

	// Reasoning holds the chain-of-thought trace of assistant turns produced
	// by reasoning models.
	Reasoning string `json:"reasoning,omitempty"`
}

// GenerationConfig carries the standardized sampling parameters. Scalar fields
// are pointers so that "unset" is distinguishable from a zero value; providers
// strip unsupported fields with a warning instead of failing.
type GenerationConfig struct {
	MaxTokens        *int           `json:"max_tokens,omitempty"`        // Optional max tokens for the response
	Temperature      *float64       `json:"temperature,omitempty"`       // Sampling temperature [0..2]
	TopP             *float64       `json:"top_p,omitempty"`             // Nucleus sampling [0..1]
	FrequencyPenalty *float64       `json:"frequency_penalty,omitempty"` // Penalty [-2..2] reducing repetition
	PresencePenalty  *float64       `json:"presence_penalty,omitempty"`  // Penalty [-2..2] encouraging new topics
	Seed             *int64         `json:"seed,omitempty"`              // Deterministic sampling seed
	Stop             []string       `json:"stop,omitempty"`              // Stop sequences
	LogitBias        map[string]int `json:"logit_bias,omitempty"`        // Token id -> bias
	Logprobs         *bool          `json:"logprobs,omitempty"`          // Return token log probabilities
	TopLogprobs      *int           `json:"top_logprobs,omitempty"`      // Number of top logprobs per token
}

// ResponseFormat hints at the expected output shape.
type ResponseFormat struct {
	Type         string             `json:"type,omitempty"`          // "text" (default) or "json"
	OutputSchema *jsonschema.Schema `json:"output_schema,omitempty"` // Optional schema for structured response
	Strict       bool               `json:"strict,omitempty"`        // If true, the model must strictly adhere to the schema
}

/*
	##### CONTENT PARTS #####
*/

// ContentType identifies the kind of a ContentPart.
type ContentType string

const (
	ContentTypeText       ContentType = "text"
	ContentTypeImage      ContentType = "image"
	ContentTypeAudio      ContentType = "audio"
	ContentTypeDocument   ContentType = "document"
	ContentTypeToolResult ContentType = "tool_result"
)

// ContentPart is one typed element of a multimodal message. Exactly one of
// the payload fields is populated, selected by Type.
type ContentPart struct {
	Type ContentType `json:"type"`

	Text       string          `json:"text,omitempty"`
	Image      *MediaData      `json:"image,omitempty"`
	Audio      *MediaData      `json:"audio,omitempty"`
	Document   *MediaData      `json:"document,omitempty"`
	ToolResult *ToolResultData `json:"tool_result,omitempty"`
}

// MediaData carries binary media either inline (base64 Data) or by reference
// (URI). MimeType is always required so providers can route by media type.
type MediaData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data,omitempty"` // Base64-encoded bytes
	URI      string `json:"uri,omitempty"`  // Remote or provider-internal reference
}

// ToolResultData is the payload of a tool-result content part.
type ToolResultData struct {
	ToolCallID string `json:"tool_call_id"`
	ToolName   string `json:"tool_name,omitempty"`
	Result     any    `json:"result"` // Strings pass through; anything else is JSON-stringified on the wire
}

// NewTextPart creates a plain text content part.
func NewTextPart(text string) ContentPart {
	return ContentPart{Type: ContentTypeText, Text: text}
}

// NewImagePart creates an image part from inline base64 data.
func NewImagePart(mimeType, base64Data string) ContentPart {
	return ContentPart{Type: ContentTypeImage, Image: &MediaData{MimeType: mimeType, Data: base64Data}}
}

// NewImagePartFromURI creates an image part referencing a remote URI.
func NewImagePartFromURI(mimeType, uri string) ContentPart {
	return ContentPart{Type: ContentTypeImage, Image: &MediaData{MimeType: mimeType, URI: uri}}
}

// NewAudioPart creates an audio part from inline base64 data.
func NewAudioPart(mimeType, base64Data string) ContentPart {
	return ContentPart{Type: ContentTypeAudio, Audio: &MediaData{MimeType: mimeType, Data: base64Data}}
}

// NewDocumentPart creates a document part (e.g. PDF) from inline base64 data.
func NewDocumentPart(mimeType, base64Data string) ContentPart {
	return ContentPart{Type: ContentTypeDocument, Document: &MediaData{MimeType: mimeType, Data: base64Data}}
}

// NewToolResultPart creates a tool-result part answering the given tool call.
func NewToolResultPart(toolCallID, toolName string, result any) ContentPart {
	return ContentPart{Type: ContentTypeToolResult, ToolResult: &ToolResultData{
		ToolCallID: toolCallID,
		ToolName:   toolName,
		Result:     result,
	}}
}

/*
	##### PROVIDER OUTPUT #####
*/

// Usage reports token consumption for one call. A zero value means the wire
// service did not report that counter.
type Usage struct {
	InputTokens  int `json:"input_tokens,omitempty"`
	OutputTokens int `json:"output_tokens,omitempty"`
	TotalTokens  int `json:"total_tokens,omitempty"`

	// Extended token metrics
	ReasoningTokens   int `json:"reasoning_tokens,omitempty"`
	CachedInputTokens int `json:"cached_input_tokens,omitempty"`
}

// FinishReason is the canonical vocabulary for why generation stopped.
type FinishReason string

const (
	FinishReasonStop          FinishReason = "stop"           // Model generated a natural stop
	FinishReasonLength        FinishReason = "length"         // Token limit reached
	FinishReasonContentFilter FinishReason = "content-filter" // Content was filtered
	FinishReasonToolCalls     FinishReason = "tool-calls"     // Model requested tool calls
	FinishReasonError         FinishReason = "error"          // Generation terminated by an error
	FinishReasonOther         FinishReason = "other"          // Wire service reported an unrecognized reason
	FinishReasonUnknown       FinishReason = "unknown"        // Wire service never reported a reason
)

// ContentBlockType identifies the kind of a response content block.
type ContentBlockType string

const (
	ContentBlockText      ContentBlockType = "text"
	ContentBlockReasoning ContentBlockType = "reasoning"
	ContentBlockToolCall  ContentBlockType = "tool_call"
)

// ContentBlock is one ordered element of a response's content.
type ContentBlock struct {
	Type     ContentBlockType `json:"type"`
	Text     string           `json:"text,omitempty"`      // For text and reasoning blocks
	ToolCall *ToolCall        `json:"tool_call,omitempty"` // For tool_call blocks
}

// ChatResponse represents the finished result of a generation call.
type ChatResponse struct {
	Id      string `json:"id,omitempty"`
	Model   string `json:"model,omitempty"`
	Created int64  `json:"created,omitempty"`

	Content []ContentBlock `json:"content"`

	FinishReason    FinishReason `json:"finish_reason,omitempty"`
	RawFinishReason string       `json:"raw_finish_reason,omitempty"` // Wire service's original value, kept for diagnostics
	Usage           *Usage       `json:"usage,omitempty"`

	// Warnings attached by the provider for settings it could not honor.
	// Warnings are data, never errors: the call still succeeded.
	Warnings []CallWarning `json:"warnings,omitempty"`
}

// Text returns the concatenation of all text blocks, in order.
func (response *ChatResponse) Text() string {
	var builder strings.Builder
	for _, block := range response.Content {
		if block.Type == ContentBlockText {
			builder.WriteString(block.Text)
		}
	}
	return builder.String()
}

// Reasoning returns the concatenation of all reasoning blocks, in order.
func (response *ChatResponse) Reasoning() string {
	var builder strings.Builder
	for _, block := range response.Content {
		if block.Type == ContentBlockReasoning {
			builder.WriteString(block.Text)
		}
	}
	return builder.String()
}

// ToolCalls returns all tool-call blocks, in order.
func (response *ChatResponse) ToolCalls() []ToolCall {
	var calls []ToolCall
	for _, block := range response.Content {
		if block.Type == ContentBlockToolCall && block.ToolCall != nil {
			calls = append(calls, *block.ToolCall)
		}
	}
	return calls
}

/*
	##### WARNINGS #####
*/

// WarningType classifies a CallWarning.
type WarningType string

const (
	// WarningUnsupportedSetting flags a caller-requested setting the target
	// model family does not support. The setting was stripped from the request.
	WarningUnsupportedSetting WarningType = "unsupported-setting"
	// WarningUnsupportedTool flags a tool definition kind the wire service
	// cannot accept. The tool was dropped from the request.
	WarningUnsupportedTool WarningType = "unsupported-tool"
	// WarningOther carries any other non-fatal degradation notice.
	WarningOther WarningType = "other"
)

// CallWarning records a non-fatal degradation applied while building a
// request. The call proceeds; the warning is returned alongside the result.
type CallWarning struct {
	Type     WarningType `json:"type"`
	Setting  string      `json:"setting,omitempty"`   // For unsupported-setting warnings
	ToolName string      `json:"tool_name,omitempty"` // For unsupported-tool warnings
	Details  string      `json:"details,omitempty"`
}

/*
	##### TOOL CALLS #####
*/

// ToolCall represents a function/tool call request from the LLM.
type ToolCall struct {
	ID       string           `json:"id,omitempty"` // Unique identifier for this tool call
	Type     string           `json:"type"`         // "function"
	Function ToolCallFunction `json:"function"`
}

type ToolCallFunction struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"` // JSON string
}

// ToolResult represents a standardized tool execution result.
// This structure provides consistent error handling and success reporting
// for tool executions, making it easier for LLMs to understand outcomes.
type ToolResult struct {
	Success bool   `json:"success"`           // Whether the tool executed successfully
	Error   string `json:"error,omitempty"`   // Error type if success=false (e.g., "tool_not_found")
	Message string `json:"message,omitempty"` // Human-readable message or error description
	Data    any    `json:"data,omitempty"`    // Actual result data if success=true
}

// NewToolResultSuccess creates a successful tool result.
// The data parameter contains the actual result from the tool execution.
func NewToolResultSuccess(data any) ToolResult {
	return ToolResult{
		Success: true,
		Data:    data,
	}
}

// NewToolResultError creates a failed tool result with error details.
// errorType should be a machine-readable error code (e.g., "tool_not_found")
// and message a human-readable description of what went wrong.
func NewToolResultError(errorType, message string) ToolResult {
	return ToolResult{
		Success: false,
		Error:   errorType,
		Message: message,
	}
}

// ToJSON converts the ToolResult to a JSON string.
// Returns the JSON string and any marshaling error.
func (tr ToolResult) ToJSON() (string, error) {
	bytes, err := json.Marshal(tr)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

// MessageRole represents the role of a message; compatible with string
type MessageRole string

const (
	RoleSystem    MessageRole = "system"    // System instructions/configuration
	RoleUser      MessageRole = "user"      // End-user message
	RoleAssistant MessageRole = "assistant" // Model response
	RoleTool      MessageRole = "tool"      // Tool/function output
)
