package ollama

import "strings"

// ModelFamily describes the feature set and quirks of a model id served by
// the local endpoint. It drives system-message placement, the reasoning
// override pass, and structured-output selection. Families are detected
// automatically by [classifyModel] but can be overridden via
// [OllamaProvider.WithModelFamily] for custom model names.
type ModelFamily struct {
	// Reasoning marks model families that separate an internal deliberation
	// trace from the final answer and reject most sampling parameters.
	Reasoning bool

	// SystemMessageMode selects where system turns go on the wire.
	SystemMessageMode SystemMessageMode

	// RequiresAutoTruncation marks families that need the server to truncate
	// over-length prompts instead of rejecting them.
	RequiresAutoTruncation bool

	// SupportsStructuredOutputs indicates the family honors a JSON-Schema
	// constrained format directive.
	SupportsStructuredOutputs bool

	// Vision indicates the family accepts image parts.
	Vision bool
}

// SystemMessageMode is the placement policy for system turns.
type SystemMessageMode string

const (
	// SystemMessageModeSystem emits system turns with role "system".
	SystemMessageModeSystem SystemMessageMode = "system"

	// SystemMessageModeDeveloper retags system turns as role "developer",
	// required by reasoning families trained on the newer role vocabulary.
	SystemMessageModeDeveloper SystemMessageMode = "developer"

	// SystemMessageModeRemove drops system turns entirely (with a warning);
	// used for families that reject any system instruction.
	SystemMessageModeRemove SystemMessageMode = "remove"
)

// familyRule binds a set of model-id prefixes to a family descriptor.
// Rules are evaluated in order; the first prefix match wins. Keeping the
// table data-driven means new families are added as rows, not branches.
type familyRule struct {
	prefixes []string
	family   ModelFamily
}

var familyRules = []familyRule{
	// Reasoning families: deliberation trace in "thinking", sampling
	// parameters rejected by the server.
	{
		prefixes: []string{"deepseek-r1", "qwq", "gpt-oss", "magistral"},
		family: ModelFamily{
			Reasoning:                 true,
			SystemMessageMode:         SystemMessageModeDeveloper,
			RequiresAutoTruncation:    true,
			SupportsStructuredOutputs: true,
		},
	},

	// Vision families.
	{
		prefixes: []string{"llava", "bakllava", "moondream", "llama3.2-vision", "minicpm-v", "qwen2.5vl"},
		family: ModelFamily{
			SystemMessageMode:         SystemMessageModeSystem,
			SupportsStructuredOutputs: true,
			Vision:                    true,
		},
	},

	// Current general-purpose chat families with reliable schema support.
	{
		prefixes: []string{"llama3", "llama4", "qwen2", "qwen3", "gemma2", "gemma3", "mistral", "mixtral", "phi3", "phi4", "deepseek-v"},
		family: ModelFamily{
			SystemMessageMode:         SystemMessageModeSystem,
			SupportsStructuredOutputs: true,
		},
	},

	// Base/completion-oriented families that were not instruction tuned for
	// system prompts.
	{
		prefixes: []string{"codellama", "starcoder"},
		family: ModelFamily{
			SystemMessageMode: SystemMessageModeRemove,
		},
	},
}

// defaultFamily is the conservative descriptor for unrecognized model ids.
var defaultFamily = ModelFamily{
	SystemMessageMode: SystemMessageModeSystem,
}

// classifyModel maps a model id to its family descriptor via the prefix rule
// table. Matching ignores case and the optional ":tag" suffix (e.g.
// "deepseek-r1:32b-qwen-distill" matches the "deepseek-r1" rule).
func classifyModel(modelID string) ModelFamily {
	id := strings.ToLower(modelID)

	for _, rule := range familyRules {
		for _, prefix := range rule.prefixes {
			if strings.HasPrefix(id, prefix) {
				return rule.family
			}
		}
	}

	return defaultFamily
}
