package observability

// Semantic conventions for observability attributes.
// These constants define standard attribute names to ensure consistency
// across different components of the system.

// --- LLM Provider Attributes ---

const (
	// AttrLLMProvider is the name of the LLM provider (e.g., "ollama")
	AttrLLMProvider = "llm.provider"

	// AttrLLMModel is the model identifier (e.g., "llama3.2", "deepseek-r1")
	AttrLLMModel = "llm.model"

	// AttrLLMEndpoint is the API endpoint URL
	AttrLLMEndpoint = "llm.endpoint"

	// AttrLLMResponseID is the unique response identifier assigned to the call
	AttrLLMResponseID = "llm.response.id"

	// AttrLLMFinishReason is the canonical reason the generation finished
	AttrLLMFinishReason = "llm.finish_reason"
)

// --- Token Usage Attributes ---

const (
	// AttrLLMTokensInput is the number of prompt tokens
	AttrLLMTokensInput = "llm.tokens.input" // #nosec G101 -- Not a credential, token refers to LLM tokens

	// AttrLLMTokensOutput is the number of completion tokens
	AttrLLMTokensOutput = "llm.tokens.output" // #nosec G101 -- Not a credential, token refers to LLM tokens

	// AttrLLMTokensTotal is the total number of tokens
	AttrLLMTokensTotal = "llm.tokens.total" // #nosec G101 -- Not a credential, token refers to LLM tokens
)

// --- Request Attributes ---

const (
	// AttrRequestMessagesCount is the number of conversation turns in a request
	AttrRequestMessagesCount = "request.messages.count"

	// AttrRequestToolsCount is the number of tool definitions in a request
	AttrRequestToolsCount = "request.tools.count"

	// AttrRequestWarningsCount is the number of warnings collected while
	// building the wire request
	AttrRequestWarningsCount = "request.warnings.count"
)

// --- HTTP Attributes ---

const (
	// AttrHTTPMethod is the HTTP request method
	AttrHTTPMethod = "http.method"

	// AttrHTTPURL is the full request URL
	AttrHTTPURL = "http.url"

	// AttrHTTPStatusCode is the HTTP response status code
	AttrHTTPStatusCode = "http.status_code"

	// AttrHTTPRequestBodySize is the request body size in bytes
	AttrHTTPRequestBodySize = "http.request.body.size"

	// AttrHTTPResponseBodySize is the response body size in bytes
	AttrHTTPResponseBodySize = "http.response.body.size"
)

// --- Event Names ---

const (
	// EventLLMRequestStart marks the start of an LLM request
	EventLLMRequestStart = "llm.request.start"

	// EventLLMStreamFragment marks one decoded stream fragment
	EventLLMStreamFragment = "llm.stream.fragment"

	// EventLLMStreamFinish marks the terminal flush of a stream
	EventLLMStreamFinish = "llm.stream.finish"
)
