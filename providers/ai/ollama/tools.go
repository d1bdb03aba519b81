package ollama

import (
	"encoding/json"
	"fmt"

	"github.com/fwlab/olgo/internal/jsonschema"
	"github.com/fwlab/olgo/providers/ai"
)

// prepareTools maps the tool definitions and tool-choice directive onto their
// wire shapes. An empty tool list normalizes to "no tools" (nil, not an empty
// array; the wire service rejects empty arrays). Non-function tool kinds are
// dropped with a warning, never an error; an out-of-union tool choice is the
// only fatal case.
func prepareTools(tools []ai.ToolDescription, choice *ai.ToolChoice) ([]wireTool, any, []ai.CallWarning, error) {
	var warnings []ai.CallWarning
	var wireTools []wireTool

	for _, tool := range tools {
		if tool.Kind != "" && tool.Kind != ai.ToolKindFunction {
			warnings = append(warnings, ai.CallWarning{
				Type:     ai.WarningUnsupportedTool,
				ToolName: tool.Name,
				Details:  fmt.Sprintf("tool kind %q is not supported", tool.Kind),
			})
			continue
		}

		parameters, err := json.Marshal(jsonschema.NormalizeObject(tool.Parameters))
		if err != nil {
			return nil, nil, nil, fmt.Errorf("failed to marshal parameters for tool %q: %w", tool.Name, err)
		}

		wireTools = append(wireTools, wireTool{
			Type: "function",
			Function: wireToolFunction{
				Name:        tool.Name,
				Description: tool.Description,
				Parameters:  parameters,
			},
		})
	}

	if len(wireTools) == 0 {
		// Without tools a tool choice is meaningless; drop both.
		return nil, nil, warnings, nil
	}

	wireChoice, err := prepareToolChoice(choice)
	if err != nil {
		return nil, nil, nil, err
	}

	return wireTools, wireChoice, warnings, nil
}

// prepareToolChoice maps the canonical tool-choice union to its wire value.
// The switch is exhaustive over ToolChoiceType; anything else is a fatal
// UnsupportedToolChoiceError.
func prepareToolChoice(choice *ai.ToolChoice) (any, error) {
	if choice == nil {
		return nil, nil
	}

	switch choice.Type {
	case ai.ToolChoiceAuto, ai.ToolChoiceNone, ai.ToolChoiceRequired:
		return string(choice.Type), nil

	case ai.ToolChoiceTool:
		return wireForcedTool{
			Type:     "function",
			Function: wireForcedToolName{Name: choice.ToolName},
		}, nil

	default:
		return nil, &ai.UnsupportedToolChoiceError{Choice: choice.Type}
	}
}
