package ollama

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"

	"github.com/fwlab/olgo/internal/utils"
	"github.com/fwlab/olgo/providers/ai"
	"github.com/fwlab/olgo/providers/observability"
)

const (
	defaultBaseURL   = "http://localhost:11434/api"
	chatEndpoint     = "/chat"
	generateEndpoint = "/generate"
)

// CompatibilityMode selects how strictly the adapter targets the modern wire
// surface. Legacy mode keeps max_tokens in place and never emits structured
// output schemas, for servers predating those fields.
type CompatibilityMode string

const (
	CompatibilityModern CompatibilityMode = "modern"
	CompatibilityLegacy CompatibilityMode = "legacy"
)

// OllamaProvider implements the Provider interface for a local Ollama-style
// model server.
type OllamaProvider struct {
	apiKey        string
	baseURL       string
	client        *http.Client
	headers       []utils.HeaderOption
	compatibility CompatibilityMode

	// familyOverride replaces prefix-based model classification when set.
	familyOverride *ModelFamily
}

// NewOllamaProvider creates a new Ollama provider instance with default
// values. The base URL is read from OLLAMA_BASE_URL when set; local servers
// usually need no API key.
func NewOllamaProvider() *OllamaProvider {
	baseURL := os.Getenv("OLLAMA_BASE_URL")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	return &OllamaProvider{
		apiKey:        os.Getenv("OLLAMA_API_KEY"),
		baseURL:       baseURL,
		client:        &http.Client{},
		compatibility: CompatibilityModern,
	}
}

// WithAPIKey sets the API key for the provider
func (provider *OllamaProvider) WithAPIKey(apiKey string) ai.Provider {
	provider.apiKey = apiKey
	return provider
}

// WithBaseURL sets the base URL for the API
func (provider *OllamaProvider) WithBaseURL(baseURL string) ai.Provider {
	provider.baseURL = baseURL
	return provider
}

// WithHttpClient sets a custom HTTP client
func (provider *OllamaProvider) WithHttpClient(httpClient *http.Client) ai.Provider {
	provider.client = httpClient
	return provider
}

// WithHeaders sets extra headers sent with every request, applied after the
// defaults so they can override them.
func (provider *OllamaProvider) WithHeaders(headers ...utils.HeaderOption) *OllamaProvider {
	provider.headers = headers
	return provider
}

// WithCompatibility sets the compatibility mode.
func (provider *OllamaProvider) WithCompatibility(mode CompatibilityMode) *OllamaProvider {
	provider.compatibility = mode
	return provider
}

// WithModelFamily forces a model family, bypassing prefix classification.
// Useful for custom or fine-tuned model names the built-in table cannot
// recognize.
func (provider *OllamaProvider) WithModelFamily(family ModelFamily) *OllamaProvider {
	provider.familyOverride = &family
	return provider
}

func (provider *OllamaProvider) headerOptions() []utils.HeaderOption {
	return provider.headers
}

// SendMessage implements the Provider interface
func (provider *OllamaProvider) SendMessage(ctx context.Context, request ai.ChatRequest) (*ai.ChatResponse, error) {
	span := observability.SpanFromContext(ctx)
	if span != nil {
		span.AddEvent(observability.EventLLMRequestStart)
		span.SetAttributes(
			observability.String(observability.AttrLLMProvider, "ollama"),
			observability.String(observability.AttrLLMEndpoint, provider.baseURL),
			observability.String(observability.AttrLLMModel, request.Model),
		)
	}

	wireRequest, _, warnings, err := provider.buildChatRequest(request)
	if err != nil {
		return nil, err
	}
	wireRequest.Stream = utils.Ptr(false)

	requestURL := provider.baseURL + chatEndpoint
	httpResponse, wireResponse, err := utils.DoPostSync[chatResponse](ctx, provider.client, requestURL, provider.apiKey, wireRequest, provider.headerOptions()...)
	if err != nil {
		return nil, provider.asCallError(err, requestURL)
	}

	if wireResponse == nil {
		return nil, &ai.InvalidResponseDataError{Message: fmt.Sprintf("empty response from Ollama API: %s", httpResponse.Status)}
	}

	response, err := decodeChatResponse(wireResponse, warnings)
	if err != nil {
		return nil, err
	}

	if span != nil {
		span.SetAttributes(
			observability.String(observability.AttrLLMResponseID, response.Id),
			observability.String(observability.AttrLLMFinishReason, string(response.FinishReason)),
		)
		if response.Usage != nil {
			span.SetAttributes(
				observability.Int(observability.AttrLLMTokensInput, response.Usage.InputTokens),
				observability.Int(observability.AttrLLMTokensOutput, response.Usage.OutputTokens),
				observability.Int(observability.AttrLLMTokensTotal, response.Usage.TotalTokens),
			)
		}
	}

	return response, nil
}

// IsStopMessage reports whether the given chat response should be treated as a stop/end signal.
func (provider *OllamaProvider) IsStopMessage(message *ai.ChatResponse) bool {
	if message == nil {
		return true
	}
	switch message.FinishReason {
	case ai.FinishReasonStop, ai.FinishReasonLength, ai.FinishReasonContentFilter, ai.FinishReasonError:
		return true
	}
	// Without content and tool calls there is nothing left to act on.
	if message.Text() == "" && len(message.ToolCalls()) == 0 {
		return true
	}
	return false
}

// asCallError converts a transport failure into a typed API error. Non-2xx
// responses carry the upstream error envelope when one can be decoded from
// the body; everything else passes through unchanged.
func (provider *OllamaProvider) asCallError(err error, requestURL string) error {
	var httpErr *utils.HTTPError
	if !errors.As(err, &httpErr) {
		return err
	}

	callErr := &ai.APICallError{
		StatusCode: httpErr.StatusCode,
		URL:        requestURL,
		Message:    http.StatusText(httpErr.StatusCode),
	}
	if detail, ok := decodeErrorEnvelope(httpErr.Body); ok {
		if detail.Message != "" {
			callErr.Message = detail.Message
		}
		callErr.Kind = detail.Type
		callErr.Param = detail.Param
		callErr.Code = codeString(detail.Code)
	}
	return callErr
}
