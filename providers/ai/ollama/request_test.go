package ollama

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fwlab/olgo/internal/jsonschema"
	"github.com/fwlab/olgo/internal/utils"
	"github.com/fwlab/olgo/providers/ai"
)

func testProvider() *OllamaProvider {
	return NewOllamaProvider().WithBaseURL("http://test.invalid/api").(*OllamaProvider)
}

func TestBuildChatRequestGeneralModel(t *testing.T) {
	provider := testProvider()

	wireRequest, family, warnings, err := provider.buildChatRequest(ai.ChatRequest{
		Model: "llama3.2",
		Messages: []ai.Message{
			{Role: ai.RoleSystem, Content: "be terse"},
			{Role: ai.RoleUser, Content: "hello"},
		},
		GenerationConfig: &ai.GenerationConfig{
			Temperature: utils.Ptr(0.2),
			TopP:        utils.Ptr(0.9),
			MaxTokens:   utils.Ptr(256),
			Stop:        []string{"###"},
		},
		ProviderOptions: map[string]any{"num_ctx": 8192},
	})
	require.NoError(t, err)
	assert.Empty(t, warnings)
	assert.False(t, family.Reasoning)

	assert.Equal(t, "llama3.2", wireRequest.Model)
	require.Len(t, wireRequest.Messages, 2)
	assert.Equal(t, "system", wireRequest.Messages[0].Role)

	// General models keep sampling parameters untouched.
	assert.Equal(t, 0.2, *wireRequest.Temperature)
	assert.Equal(t, 0.9, *wireRequest.TopP)
	assert.Equal(t, 256, *wireRequest.MaxTokens)
	assert.Nil(t, wireRequest.MaxCompletionTokens)
	assert.Equal(t, []string{"###"}, wireRequest.Stop)
	assert.Equal(t, map[string]any{"num_ctx": 8192}, wireRequest.Options)
}

func TestBuildChatRequestReasoningModelStripsSampling(t *testing.T) {
	provider := testProvider()

	wireRequest, family, warnings, err := provider.buildChatRequest(ai.ChatRequest{
		Model:    "deepseek-r1:7b",
		Messages: []ai.Message{{Role: ai.RoleUser, Content: "prove it"}},
		GenerationConfig: &ai.GenerationConfig{
			Temperature:      utils.Ptr(0.7),
			TopP:             utils.Ptr(0.9),
			FrequencyPenalty: utils.Ptr(0.1),
			PresencePenalty:  utils.Ptr(0.1),
			LogitBias:        map[string]int{"50256": -100},
			Logprobs:         utils.Ptr(true),
			TopLogprobs:      utils.Ptr(5),
			MaxTokens:        utils.Ptr(1024),
		},
	})
	require.NoError(t, err)
	assert.True(t, family.Reasoning)

	// All seven sampling settings cleared, one warning each.
	assert.Nil(t, wireRequest.Temperature)
	assert.Nil(t, wireRequest.TopP)
	assert.Nil(t, wireRequest.FrequencyPenalty)
	assert.Nil(t, wireRequest.PresencePenalty)
	assert.Nil(t, wireRequest.LogitBias)
	assert.Nil(t, wireRequest.Logprobs)
	assert.Nil(t, wireRequest.TopLogprobs)
	assert.Len(t, warnings, 7)
	for _, warning := range warnings {
		assert.Equal(t, ai.WarningUnsupportedSetting, warning.Type)
	}

	// Token limit relocates for reasoning families.
	assert.Nil(t, wireRequest.MaxTokens)
	require.NotNil(t, wireRequest.MaxCompletionTokens)
	assert.Equal(t, 1024, *wireRequest.MaxCompletionTokens)

	// Reasoning families also opt into automatic prompt truncation.
	require.NotNil(t, wireRequest.Truncate)
	assert.True(t, *wireRequest.Truncate)
}

func TestBuildChatRequestLegacyKeepsMaxTokens(t *testing.T) {
	provider := testProvider()
	provider.WithCompatibility(CompatibilityLegacy)

	wireRequest, _, _, err := provider.buildChatRequest(ai.ChatRequest{
		Model:            "qwq",
		Messages:         []ai.Message{{Role: ai.RoleUser, Content: "x"}},
		GenerationConfig: &ai.GenerationConfig{MaxTokens: utils.Ptr(64)},
	})
	require.NoError(t, err)

	assert.Equal(t, 64, *wireRequest.MaxTokens)
	assert.Nil(t, wireRequest.MaxCompletionTokens)
}

func TestBuildChatRequestFamilyOverride(t *testing.T) {
	provider := testProvider()
	provider.WithModelFamily(ModelFamily{Reasoning: true, SystemMessageMode: SystemMessageModeSystem})

	wireRequest, family, _, err := provider.buildChatRequest(ai.ChatRequest{
		Model:            "my-custom-finetune",
		Messages:         []ai.Message{{Role: ai.RoleUser, Content: "x"}},
		GenerationConfig: &ai.GenerationConfig{Temperature: utils.Ptr(0.5)},
	})
	require.NoError(t, err)
	assert.True(t, family.Reasoning)
	assert.Nil(t, wireRequest.Temperature)
}

func TestResponseFormatDirective(t *testing.T) {
	schema := &jsonschema.Schema{
		Type:       "object",
		Properties: map[string]*jsonschema.Schema{"name": {Type: "string"}},
	}

	t.Run("plain text emits nothing", func(t *testing.T) {
		format, warnings := responseFormatDirective(nil, defaultFamily, CompatibilityModern)
		assert.Nil(t, format)
		assert.Empty(t, warnings)

		format, _ = responseFormatDirective(&ai.ResponseFormat{Type: "text"}, defaultFamily, CompatibilityModern)
		assert.Nil(t, format)
	})

	t.Run("json mode without schema", func(t *testing.T) {
		format, warnings := responseFormatDirective(&ai.ResponseFormat{Type: "json"}, defaultFamily, CompatibilityModern)
		assert.Equal(t, `"json"`, string(format))
		assert.Empty(t, warnings)
	})

	t.Run("schema passes through for structured-output families", func(t *testing.T) {
		family := ModelFamily{SupportsStructuredOutputs: true}
		format, warnings := responseFormatDirective(&ai.ResponseFormat{Type: "json", OutputSchema: schema}, family, CompatibilityModern)
		assert.JSONEq(t, `{"type":"object","properties":{"name":{"type":"string"}}}`, string(format))
		assert.Empty(t, warnings)
	})

	t.Run("schema degrades to json mode otherwise", func(t *testing.T) {
		format, warnings := responseFormatDirective(&ai.ResponseFormat{Type: "json", OutputSchema: schema}, defaultFamily, CompatibilityModern)
		assert.Equal(t, `"json"`, string(format))
		require.Len(t, warnings, 1)
		assert.Equal(t, ai.WarningUnsupportedSetting, warnings[0].Type)
	})

	t.Run("legacy mode never sends schemas", func(t *testing.T) {
		family := ModelFamily{SupportsStructuredOutputs: true}
		format, warnings := responseFormatDirective(&ai.ResponseFormat{Type: "json", OutputSchema: schema}, family, CompatibilityLegacy)
		assert.Equal(t, `"json"`, string(format))
		assert.Len(t, warnings, 1)
	})

	t.Run("unknown format type warns and falls back to text", func(t *testing.T) {
		format, warnings := responseFormatDirective(&ai.ResponseFormat{Type: "xml"}, defaultFamily, CompatibilityModern)
		assert.Nil(t, format)
		assert.Len(t, warnings, 1)
	})
}
