package ollama

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fwlab/olgo/providers/ai"
)

func TestMapDoneReason(t *testing.T) {
	cases := map[string]ai.FinishReason{
		"stop":           ai.FinishReasonStop,
		"length":         ai.FinishReasonLength,
		"content_filter": ai.FinishReasonContentFilter,
		"function_call":  ai.FinishReasonToolCalls,
		"tool_calls":     ai.FinishReasonToolCalls,
		"":               ai.FinishReasonUnknown,
		"load":           ai.FinishReasonOther,
		"unload":         ai.FinishReasonOther,
	}

	for rawReason, expected := range cases {
		assert.Equal(t, expected, mapDoneReason(rawReason), "raw reason %q", rawReason)
	}
}

func TestFinishReasonForPrefersToolCalls(t *testing.T) {
	// Servers report "stop" (or nothing) for tool-call turns; dispatch loops
	// need tool-calls to know the model expects a tool result.
	assert.Equal(t, ai.FinishReasonToolCalls, finishReasonFor("stop", true))
	assert.Equal(t, ai.FinishReasonToolCalls, finishReasonFor("", true))

	// Explicit non-stop reasons win over the presence of tool calls.
	assert.Equal(t, ai.FinishReasonLength, finishReasonFor("length", true))

	assert.Equal(t, ai.FinishReasonStop, finishReasonFor("stop", false))
}

func TestUsageFromCounters(t *testing.T) {
	usage := usageFromCounters(3, 5)
	assert.Equal(t, &ai.Usage{InputTokens: 3, OutputTokens: 5, TotalTokens: 8}, usage)

	// One-sided counts still produce usage.
	usage = usageFromCounters(0, 7)
	assert.Equal(t, &ai.Usage{OutputTokens: 7, TotalTokens: 7}, usage)

	// Mid-stream fragments carry no counters; usage must stay absent rather
	// than report zeros.
	assert.Nil(t, usageFromCounters(0, 0))
}
