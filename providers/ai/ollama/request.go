package ollama

import (
	"encoding/json"
	"fmt"

	"github.com/fwlab/olgo/internal/utils"
	"github.com/fwlab/olgo/providers/ai"
)

// buildChatRequest composes the wire request body from a generic chat
// request: model id, converted messages, prepared tools, sampling parameters,
// response-format directive, and the provider extension bag. Model-family
// override rules are applied last.
//
// Unsupported settings never fail the build; each one is cleared and recorded
// as a warning. Only structurally invalid input (bad role/part/tool-choice)
// returns an error.
func (provider *OllamaProvider) buildChatRequest(request ai.ChatRequest) (*chatRequest, ModelFamily, []ai.CallWarning, error) {
	family := provider.familyFor(request.Model)
	var warnings []ai.CallWarning

	messages, messageWarnings, err := convertMessages(request.Messages, family.SystemMessageMode)
	if err != nil {
		return nil, family, nil, err
	}
	warnings = append(warnings, messageWarnings...)

	tools, toolChoice, toolWarnings, err := prepareTools(request.Tools, request.ToolChoice)
	if err != nil {
		return nil, family, nil, err
	}
	warnings = append(warnings, toolWarnings...)

	wireRequest := &chatRequest{
		Model:      request.Model,
		Messages:   messages,
		Tools:      tools,
		ToolChoice: toolChoice,
	}

	if config := request.GenerationConfig; config != nil {
		wireRequest.Temperature = config.Temperature
		wireRequest.TopP = config.TopP
		wireRequest.FrequencyPenalty = config.FrequencyPenalty
		wireRequest.PresencePenalty = config.PresencePenalty
		wireRequest.Seed = config.Seed
		wireRequest.Stop = config.Stop
		wireRequest.LogitBias = config.LogitBias
		wireRequest.Logprobs = config.Logprobs
		wireRequest.TopLogprobs = config.TopLogprobs
		wireRequest.MaxTokens = config.MaxTokens
	}

	if len(request.ProviderOptions) > 0 {
		wireRequest.Options = request.ProviderOptions
	}

	warnings = append(warnings, applyFamilyOverrides(wireRequest, family, provider.compatibility)...)

	format, formatWarnings := responseFormatDirective(request.ResponseFormat, family, provider.compatibility)
	wireRequest.Format = format
	warnings = append(warnings, formatWarnings...)

	return wireRequest, family, warnings, nil
}

// applyFamilyOverrides mutates the wire request according to the detected
// model family and compatibility mode, returning one warning per cleared
// setting.
func applyFamilyOverrides(wireRequest *chatRequest, family ModelFamily, compatibility CompatibilityMode) []ai.CallWarning {
	var warnings []ai.CallWarning

	if family.Reasoning {
		// Reasoning-only models reject sampling controls outright; clear each
		// one that was set and record why.
		strip := func(setting string, clear func()) {
			clear()
			warnings = append(warnings, ai.CallWarning{
				Type:    ai.WarningUnsupportedSetting,
				Setting: setting,
				Details: fmt.Sprintf("%s is not supported for reasoning models and was removed", setting),
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
		if wireRequest.LogitBias != nil {
			strip("logit_bias", func() { wireRequest.LogitBias = nil })
		}
		if wireRequest.Logprobs != nil {
			strip("logprobs", func() { wireRequest.Logprobs = nil })
		}
		if wireRequest.TopLogprobs != nil {
			strip("top_logprobs", func() { wireRequest.TopLogprobs = nil })
		}

		// Reasoning families take their token limit via max_completion_tokens;
		// legacy servers only understand max_tokens, so the limit stays put
		// there.
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

// responseFormatDirective maps the response-format hint to the wire format
// field: a full schema object when the family supports structured outputs, a
// bare JSON-mode directive otherwise, and nothing for plain text.
func responseFormatDirective(format *ai.ResponseFormat, family ModelFamily, compatibility CompatibilityMode) (json.RawMessage, []ai.CallWarning) {
	if format == nil || format.Type == "" || format.Type == "text" {
		return nil, nil
	}

	if format.Type != "json" {
		return nil, []ai.CallWarning{{
			Type:    ai.WarningUnsupportedSetting,
			Setting: "response_format",
			Details: fmt.Sprintf("response format %q is not supported; using plain text", format.Type),
		}}
	}

	if format.OutputSchema != nil {
		if family.SupportsStructuredOutputs && compatibility != CompatibilityLegacy {
			encoded, err := json.Marshal(format.OutputSchema)
			if err == nil {
				return encoded, nil
			}
			// Unmarshalable schema degrades to JSON mode below.
		}
		return json.RawMessage(`"json"`), []ai.CallWarning{{
			Type:    ai.WarningUnsupportedSetting,
			Setting: "response_format.output_schema",
			Details: "schema-constrained output is not supported for this model; falling back to JSON mode",
		}}
	}

	return json.RawMessage(`"json"`), nil
}

// familyFor resolves the model family, honoring a caller override when set.
func (provider *OllamaProvider) familyFor(modelID string) ModelFamily {
	if provider.familyOverride != nil {
		return *provider.familyOverride
	}
	return classifyModel(modelID)
}
