package ollama

import "github.com/fwlab/olgo/providers/ai"

// mapDoneReason normalizes the wire service's done_reason vocabulary to the
// canonical finish reason set. The raw string is retained by callers for
// diagnostics; this function only maps. An absent reason maps to unknown and
// any unrecognized non-empty reason to other.
func mapDoneReason(rawReason string) ai.FinishReason {
	switch rawReason {
	case "stop":
		return ai.FinishReasonStop
	case "length":
		return ai.FinishReasonLength
	case "content_filter":
		return ai.FinishReasonContentFilter
	case "function_call", "tool_calls":
		return ai.FinishReasonToolCalls
	case "":
		return ai.FinishReasonUnknown
	default:
		return ai.FinishReasonOther
	}
}

// usageFromCounters maps the wire's trailing counters to canonical usage.
// Returns nil when the service reported nothing, so mid-stream fragments do
// not fabricate zero counts.
func usageFromCounters(promptEvalCount, evalCount int) *ai.Usage {
	if promptEvalCount == 0 && evalCount == 0 {
		return nil
	}
	return &ai.Usage{
		InputTokens:  promptEvalCount,
		OutputTokens: evalCount,
		TotalTokens:  promptEvalCount + evalCount,
	}
}
