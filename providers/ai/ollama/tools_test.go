package ollama

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fwlab/olgo/internal/jsonschema"
	"github.com/fwlab/olgo/providers/ai"
)

func TestPrepareTools(t *testing.T) {
	tools := []ai.ToolDescription{{
		Name:        "get_weather",
		Description: "Current weather for a city",
		Kind:        ai.ToolKindFunction,
		Parameters: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"city": {Type: "string"},
			},
			Required: []string{"city"},
		},
	}}

	wireTools, choice, warnings, err := prepareTools(tools, nil)
	require.NoError(t, err)
	assert.Empty(t, warnings)
	assert.Nil(t, choice)

	require.Len(t, wireTools, 1)
	assert.Equal(t, "function", wireTools[0].Type)
	assert.Equal(t, "get_weather", wireTools[0].Function.Name)
	assert.JSONEq(t, `{
		"type": "object",
		"properties": {"city": {"type": "string"}},
		"required": ["city"]
	}`, string(wireTools[0].Function.Parameters))
}

func TestPrepareToolsNilSchemaDefaultsToEmptyObject(t *testing.T) {
	wireTools, _, _, err := prepareTools([]ai.ToolDescription{{
		Name: "ping",
		Kind: ai.ToolKindFunction,
	}}, nil)
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"object"}`, string(wireTools[0].Function.Parameters))
}

func TestPrepareToolsDropsUnsupportedKinds(t *testing.T) {
	tools := []ai.ToolDescription{
		{Name: "web_search", Kind: ai.ToolKindProviderDefined},
		{Name: "calculator", Kind: ai.ToolKindFunction},
	}

	wireTools, _, warnings, err := prepareTools(tools, nil)
	require.NoError(t, err)
	require.Len(t, wireTools, 1)
	assert.Equal(t, "calculator", wireTools[0].Function.Name)
	require.Len(t, warnings, 1)
	assert.Equal(t, ai.WarningUnsupportedTool, warnings[0].Type)
	assert.Equal(t, "web_search", warnings[0].ToolName)
}

func TestPrepareToolsAllDroppedDiscardsChoice(t *testing.T) {
	// When no tool survives, sending a choice alone would be invalid.
	choice := &ai.ToolChoice{Type: ai.ToolChoiceRequired}
	wireTools, wireChoice, warnings, err := prepareTools(
		[]ai.ToolDescription{{Name: "web_search", Kind: ai.ToolKindProviderDefined}}, choice)
	require.NoError(t, err)
	assert.Nil(t, wireTools)
	assert.Nil(t, wireChoice)
	assert.Len(t, warnings, 1)
}

func TestPrepareToolChoice(t *testing.T) {
	for _, mode := range []ai.ToolChoiceType{ai.ToolChoiceAuto, ai.ToolChoiceNone, ai.ToolChoiceRequired} {
		choice, err := prepareToolChoice(&ai.ToolChoice{Type: mode})
		require.NoError(t, err)
		assert.Equal(t, string(mode), choice)
	}

	forced, err := prepareToolChoice(&ai.ToolChoice{Type: ai.ToolChoiceTool, ToolName: "calculator"})
	require.NoError(t, err)
	assert.Equal(t, wireForcedTool{
		Type:     "function",
		Function: wireForcedToolName{Name: "calculator"},
	}, forced)

	_, err = prepareToolChoice(&ai.ToolChoice{Type: "sometimes"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ai.ErrUnsupportedToolChoice))
}
