package ai

import (
	"errors"
	"testing"
)

// TestNewSingleEventStream verifies that a finished response replays as a
// canonical event sequence: stream start, metadata, one lifecycle per content
// block, and a single trailing finish event.
func TestNewSingleEventStream(t *testing.T) {
	response := &ChatResponse{
		Id:    "resp_1",
		Model: "llama3.2",
		Content: []ContentBlock{
			{Type: ContentBlockReasoning, Text: "thinking it through"},
			{Type: ContentBlockText, Text: "the answer"},
			{Type: ContentBlockToolCall, ToolCall: &ToolCall{
				ID:       "call_1",
				Type:     "function",
				Function: ToolCallFunction{Name: "lookup", Arguments: `{"q":"x"}`},
			}},
		},
		FinishReason: FinishReasonToolCalls,
		Usage:        &Usage{InputTokens: 1, OutputTokens: 2, TotalTokens: 3},
		Warnings:     []CallWarning{{Type: WarningOther, Details: "note"}},
	}

	var types []StreamEventType
	for event, err := range NewSingleEventStream(response).Iter() {
		if err != nil {
			t.Fatalf("unexpected iterator error: %v", err)
		}
		types = append(types, event.Type)
	}

	expected := []StreamEventType{
		StreamEventStreamStart,
		StreamEventResponseMetadata,
		StreamEventReasoningStart,
		StreamEventReasoningDelta,
		StreamEventReasoningEnd,
		StreamEventTextStart,
		StreamEventTextDelta,
		StreamEventTextEnd,
		StreamEventToolInputStart,
		StreamEventToolInputDelta,
		StreamEventToolInputEnd,
		StreamEventToolCall,
		StreamEventFinish,
	}
	if len(types) != len(expected) {
		t.Fatalf("expected %d events, got %d: %v", len(expected), len(types), types)
	}
	for index, eventType := range expected {
		if types[index] != eventType {
			t.Errorf("event %d: expected %s, got %s", index, eventType, types[index])
		}
	}
}

// TestSingleEventStreamRoundTrip verifies that collecting a replayed response
// reconstructs it: block order, text, tool calls, finish reason, and usage
// all survive the trip through the event sequence.
func TestSingleEventStreamRoundTrip(t *testing.T) {
	original := &ChatResponse{
		Id:    "resp_2",
		Model: "deepseek-r1",
		Content: []ContentBlock{
			{Type: ContentBlockReasoning, Text: "step 1, step 2"},
			{Type: ContentBlockText, Text: "result"},
		},
		FinishReason: FinishReasonStop,
		Usage:        &Usage{InputTokens: 5, OutputTokens: 7, TotalTokens: 12},
	}

	collected, err := NewSingleEventStream(original).Collect()
	if err != nil {
		t.Fatalf("Collect returned unexpected error: %v", err)
	}

	if collected.Id != original.Id {
		t.Errorf("expected id %q, got %q", original.Id, collected.Id)
	}
	if collected.Text() != "result" {
		t.Errorf("expected text %q, got %q", "result", collected.Text())
	}
	if collected.Reasoning() != "step 1, step 2" {
		t.Errorf("expected reasoning to survive, got %q", collected.Reasoning())
	}
	if collected.FinishReason != FinishReasonStop {
		t.Errorf("expected finish reason stop, got %s", collected.FinishReason)
	}
	if collected.Usage == nil || collected.Usage.TotalTokens != 12 {
		t.Errorf("expected usage to survive, got %+v", collected.Usage)
	}
}

// TestCollectMidStreamError verifies that Collect returns the partial
// response alongside the error when the iterator fails mid-stream.
func TestCollectMidStreamError(t *testing.T) {
	streamErr := errors.New("connection reset")
	stream := NewChatStream(func(yield func(StreamEvent, error) bool) {
		if !yield(StreamEvent{Type: StreamEventTextStart, ID: "text-0"}, nil) {
			return
		}
		if !yield(StreamEvent{Type: StreamEventTextDelta, ID: "text-0", Delta: "partial"}, nil) {
			return
		}
		yield(StreamEvent{}, streamErr)
	})

	partial, err := stream.Collect()
	if !errors.Is(err, streamErr) {
		t.Fatalf("expected the mid-stream error, got %v", err)
	}
	if partial.Text() != "partial" {
		t.Errorf("expected partial text to be preserved, got %q", partial.Text())
	}
}

// TestCollectInterleavedChannels verifies that deltas append to the block
// belonging to their channel even when two channels interleave.
func TestCollectInterleavedChannels(t *testing.T) {
	stream := NewChatStream(func(yield func(StreamEvent, error) bool) {
		events := []StreamEvent{
			{Type: StreamEventReasoningStart, ID: "reasoning-0"},
			{Type: StreamEventReasoningDelta, ID: "reasoning-0", Delta: "think "},
			{Type: StreamEventTextStart, ID: "text-0"},
			{Type: StreamEventTextDelta, ID: "text-0", Delta: "answer "},
			{Type: StreamEventReasoningDelta, ID: "reasoning-0", Delta: "more"},
			{Type: StreamEventTextDelta, ID: "text-0", Delta: "here"},
			{Type: StreamEventTextEnd, ID: "text-0"},
			{Type: StreamEventReasoningEnd, ID: "reasoning-0"},
			{Type: StreamEventFinish, FinishReason: FinishReasonStop},
		}
		for _, event := range events {
			if !yield(event, nil) {
				return
			}
		}
	})

	collected, err := stream.Collect()
	if err != nil {
		t.Fatalf("Collect returned unexpected error: %v", err)
	}
	if collected.Reasoning() != "think more" {
		t.Errorf("reasoning deltas misrouted: %q", collected.Reasoning())
	}
	if collected.Text() != "answer here" {
		t.Errorf("text deltas misrouted: %q", collected.Text())
	}
}

// TestCollectText verifies that only text deltas contribute to the output.
func TestCollectText(t *testing.T) {
	stream := NewChatStream(func(yield func(StreamEvent, error) bool) {
		events := []StreamEvent{
			{Type: StreamEventReasoningDelta, ID: "reasoning-0", Delta: "ignored"},
			{Type: StreamEventTextDelta, ID: "text-0", Delta: "kept"},
			{Type: StreamEventFinish, FinishReason: FinishReasonStop},
		}
		for _, event := range events {
			if !yield(event, nil) {
				return
			}
		}
	})

	text, err := stream.CollectText()
	if err != nil {
		t.Fatalf("CollectText returned unexpected error: %v", err)
	}
	if text != "kept" {
		t.Errorf("expected %q, got %q", "kept", text)
	}
}
