package ollama

import (
	"context"
	"fmt"
	"strings"

	"github.com/fwlab/olgo/internal/utils"
	"github.com/fwlab/olgo/providers/ai"
)

// buildGenerateRequest maps a generic request onto the prompt-completion wire
// shape. Completion calls have no message structure: system messages become
// the dedicated system field, everything else is concatenated into a single
// prompt. Tools cannot be expressed on this endpoint, so requesting them
// yields an unsupported-setting warning rather than an error.
func (provider *OllamaProvider) buildGenerateRequest(request ai.ChatRequest) (*generateRequest, ModelFamily, []ai.CallWarning, error) {
	family := provider.familyFor(request.Model)
	var warnings []ai.CallWarning

	if len(request.Tools) > 0 || request.ToolChoice != nil {
		warnings = append(warnings, ai.CallWarning{
			Type:    ai.WarningUnsupportedSetting,
			Setting: "tools",
			Details: "the completion endpoint does not support tool calling",
		})
	}

	var systemParts, promptParts []string
	for _, message := range request.Messages {
		text := messageText(message)
		switch message.Role {
		case ai.RoleSystem:
			if family.SystemMessageMode == SystemMessageModeRemove {
				warnings = append(warnings, ai.CallWarning{
					Type:    ai.WarningOther,
					Details: fmt.Sprintf("system message removed: model family for %q does not accept system messages", request.Model),
				})
				continue
			}
			systemParts = append(systemParts, text)
		case ai.RoleUser, ai.RoleAssistant:
			if text != "" {
				promptParts = append(promptParts, text)
			}
		default:
			return nil, family, warnings, &ai.UnsupportedRoleError{Role: message.Role}
		}
	}

	wireRequest := &generateRequest{
		Model:  request.Model,
		Prompt: strings.Join(promptParts, "\n\n"),
		System: strings.Join(systemParts, "\n\n"),
	}

	if config := request.GenerationConfig; config != nil {
		wireRequest.Temperature = config.Temperature
		wireRequest.TopP = config.TopP
		wireRequest.FrequencyPenalty = config.FrequencyPenalty
		wireRequest.PresencePenalty = config.PresencePenalty
		wireRequest.Seed = config.Seed
		wireRequest.Stop = config.Stop
		wireRequest.MaxTokens = config.MaxTokens
	}
	if len(request.ProviderOptions) > 0 {
		wireRequest.Options = request.ProviderOptions
	}

	warnings = append(warnings, applyGenerateFamilyOverrides(wireRequest, family, provider.compatibility)...)

	format, formatWarnings := responseFormatDirective(request.ResponseFormat, family, provider.compatibility)
	warnings = append(warnings, formatWarnings...)
	wireRequest.Format = format

	return wireRequest, family, warnings, nil
}

// applyGenerateFamilyOverrides is the completion-endpoint counterpart of
// applyFamilyOverrides, covering the narrower field set the wire shape has.
func applyGenerateFamilyOverrides(wireRequest *generateRequest, family ModelFamily, compatibility CompatibilityMode) []ai.CallWarning {
	var warnings []ai.CallWarning

	if family.Reasoning {
		strip := func(setting string, clear func()) {
			clear()
			warnings = append(warnings, ai.CallWarning{
				Type:    ai.WarningUnsupportedSetting,
				Setting: setting,
				Details: "not supported by reasoning models; removed",
			})
		}
		if wireRequest.Temperature != nil {
			strip("temperature", func() { wireRequest.Temperature = nil })
		}
		if wireRequest.TopP != nil {
			strip("top_p", func() { wireRequest.TopP = nil })
		}
		if wireRequest.FrequencyPenalty != nil {
			strip("frequency_penalty", func() { wireRequest.FrequencyPenalty = nil })
		}
		if wireRequest.PresencePenalty != nil {
			strip("presence_penalty", func() { wireRequest.PresencePenalty = nil })
		}
		if wireRequest.MaxTokens != nil && compatibility != CompatibilityLegacy {
			wireRequest.MaxCompletionTokens = wireRequest.MaxTokens
			wireRequest.MaxTokens = nil
		}
	}

	if family.RequiresAutoTruncation {
		wireRequest.Truncate = utils.Ptr(true)
	}

	return warnings
}

// messageText flattens a message to plain text, ignoring non-text parts.
func messageText(message ai.Message) string {
	if message.Content != "" {
		return message.Content
	}
	var builder strings.Builder
	for _, part := range message.ContentParts {
		if part.Type == ai.ContentTypeText {
			builder.WriteString(part.Text)
		}
	}
	return builder.String()
}

// Complete sends a non-streaming prompt-completion request.
func (provider *OllamaProvider) Complete(ctx context.Context, request ai.ChatRequest) (*ai.ChatResponse, error) {
	wireRequest, _, warnings, err := provider.buildGenerateRequest(request)
	if err != nil {
		return nil, err
	}
	wireRequest.Stream = utils.Ptr(false)

	requestURL := provider.baseURL + generateEndpoint
	httpResponse, wireResponse, err := utils.DoPostSync[generateResponse](ctx, provider.client, requestURL, provider.apiKey, wireRequest, provider.headerOptions()...)
	if err != nil {
		return nil, provider.asCallError(err, requestURL)
	}

	if wireResponse == nil {
		return nil, &ai.InvalidResponseDataError{Message: fmt.Sprintf("empty response from Ollama API: %s", httpResponse.Status)}
	}

	return decodeGenerateResponse(wireResponse, warnings), nil
}

// StreamCompletion sends a streaming prompt-completion request, yielding the
// same canonical event sequence as StreamMessage (without tool-call events,
// which the endpoint cannot produce).
func (provider *OllamaProvider) StreamCompletion(ctx context.Context, request ai.ChatRequest) (*ai.ChatStream, error) {
	wireRequest, _, warnings, err := provider.buildGenerateRequest(request)
	if err != nil {
		return nil, err
	}
	wireRequest.Stream = utils.Ptr(true)

	requestURL := provider.baseURL + generateEndpoint
	httpResponse, err := utils.DoPostStream(ctx, provider.client, requestURL, provider.apiKey, wireRequest, provider.headerOptions()...)
	if err != nil {
		return nil, provider.asCallError(err, requestURL)
	}

	return ai.NewChatStream(provider.streamIterator(ctx, httpResponse, parseGenerateFragment, warnings)), nil
}
