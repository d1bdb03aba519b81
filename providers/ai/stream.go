package ai

import (
	"iter"
	"strconv"
	"strings"
	"time"
)

// StreamEventType identifies the kind of lifecycle event carried by a StreamEvent.
type StreamEventType string

const (
	// StreamEventStreamStart is always the first event and carries the
	// request-build warnings, if any.
	StreamEventStreamStart StreamEventType = "stream_start"
	// StreamEventResponseMetadata carries identifying fields (response id,
	// model, timestamp) from the first decoded fragment. Emitted exactly once.
	StreamEventResponseMetadata StreamEventType = "response_metadata"

	// StreamEventTextStart opens the plain-text channel identified by ID.
	StreamEventTextStart StreamEventType = "text_start"
	// StreamEventTextDelta carries an incremental text fragment.
	StreamEventTextDelta StreamEventType = "text_delta"
	// StreamEventTextEnd closes the plain-text channel.
	StreamEventTextEnd StreamEventType = "text_end"

	// StreamEventReasoningStart opens the reasoning ("thinking") channel.
	StreamEventReasoningStart StreamEventType = "reasoning_start"
	// StreamEventReasoningDelta carries an incremental reasoning fragment.
	StreamEventReasoningDelta StreamEventType = "reasoning_delta"
	// StreamEventReasoningEnd closes the reasoning channel.
	StreamEventReasoningEnd StreamEventType = "reasoning_end"

	// StreamEventToolInputStart opens a tool-call channel (ID + ToolName).
	StreamEventToolInputStart StreamEventType = "tool_input_start"
	// StreamEventToolInputDelta carries a fragment of the tool call's
	// JSON-encoded arguments.
	StreamEventToolInputDelta StreamEventType = "tool_input_delta"
	// StreamEventToolInputEnd closes a tool-call channel.
	StreamEventToolInputEnd StreamEventType = "tool_input_end"
	// StreamEventToolCall carries the finished tool call with complete input.
	StreamEventToolCall StreamEventType = "tool_call"

	// StreamEventError reports a non-fatal upstream error. The stream remains
	// consumable and ends with a finish event carrying FinishReasonError.
	StreamEventError StreamEventType = "error"
	// StreamEventFinish is always the last event. It carries the canonical
	// finish reason, the raw wire reason, and final usage counters.
	StreamEventFinish StreamEventType = "finish"
)

// StreamEvent represents a single lifecycle event yielded while streaming a
// response. Each event carries the payload fields relevant to its Type; the
// rest are zero.
//
// Channel framing invariant: every channel id that appears in a *-start event
// appears in exactly one matching *-end event, and deltas for an id occur
// strictly between its start and end. A finish event is emitted exactly once,
// as the last event of the sequence.
type StreamEvent struct {
	Type StreamEventType `json:"type"`

	// ID identifies the content channel for text/reasoning/tool events.
	ID string `json:"id,omitempty"`

	// Delta is the incremental payload for *_delta events.
	Delta string `json:"delta,omitempty"`

	// ToolName accompanies tool_input_start and tool_call events.
	ToolName string `json:"tool_name,omitempty"`
	// ToolCall is the completed call for tool_call events.
	ToolCall *ToolCall `json:"tool_call,omitempty"`

	// Warnings accompany the stream_start event.
	Warnings []CallWarning `json:"warnings,omitempty"`

	// Response metadata fields (response_metadata events).
	ResponseID string    `json:"response_id,omitempty"`
	Model      string    `json:"model,omitempty"`
	Timestamp  time.Time `json:"timestamp,omitzero"`

	// Terminal fields (finish events).
	FinishReason    FinishReason `json:"finish_reason,omitempty"`
	RawFinishReason string       `json:"raw_finish_reason,omitempty"`
	Usage           *Usage       `json:"usage,omitempty"`

	// Err carries the upstream cause for error events. Error events do not
	// terminate iteration by themselves; fatal failures come through the
	// iterator's error channel instead.
	Err error `json:"-"`
}

// ChatStream wraps a streaming iterator and provides automatic accumulation
// of events into a final ChatResponse. It supports both range-based iteration
// for real-time token processing and a convenience Collect() method for
// callers who want the complete response.
//
// Important: callers must consume the stream, either by iterating with Iter()
// (including breaking out of the loop early) or by calling Collect(). The
// underlying provider may hold open resources (such as an HTTP response body)
// that are only released when the iterator completes or is abandoned via a
// loop break. Constructing a ChatStream and never iterating it will leak those
// resources.
type ChatStream struct {
	iterator iter.Seq2[StreamEvent, error]
}

// NewChatStream creates a ChatStream from a raw streaming iterator.
// The iterator is expected to yield StreamEvent values (with nil error) for
// normal events, and may yield a non-nil error to signal a mid-stream failure.
// The caller is responsible for consuming the returned ChatStream (see
// ChatStream documentation for resource management details).
func NewChatStream(iterator iter.Seq2[StreamEvent, error]) *ChatStream {
	return &ChatStream{iterator: iterator}
}

// NewSingleEventStream wraps a finished ChatResponse as a stream that replays
// the response as a canonical event sequence: one start/delta/end lifecycle
// per content block followed by a single finish event. This is used as a
// fallback when the provider does not support streaming.
func NewSingleEventStream(response *ChatResponse) *ChatStream {
	iteratorFunc := func(yield func(StreamEvent, error) bool) {
		if !yield(StreamEvent{Type: StreamEventStreamStart, Warnings: response.Warnings}, nil) {
			return
		}

		if response.Id != "" || response.Model != "" {
			metadata := StreamEvent{
				Type:       StreamEventResponseMetadata,
				ResponseID: response.Id,
				Model:      response.Model,
			}
			if response.Created != 0 {
				metadata.Timestamp = time.Unix(response.Created, 0).UTC()
			}
			if !yield(metadata, nil) {
				return
			}
		}

		textCounter := 0
		reasoningCounter := 0

		for _, block := range response.Content {
			switch block.Type {
			case ContentBlockText:
				id := channelID("text", textCounter)
				textCounter++
				if !yieldLifecycle(yield, StreamEventTextStart, StreamEventTextDelta, StreamEventTextEnd, id, block.Text) {
					return
				}

			case ContentBlockReasoning:
				id := channelID("reasoning", reasoningCounter)
				reasoningCounter++
				if !yieldLifecycle(yield, StreamEventReasoningStart, StreamEventReasoningDelta, StreamEventReasoningEnd, id, block.Text) {
					return
				}

			case ContentBlockToolCall:
				if block.ToolCall == nil {
					continue
				}
				call := *block.ToolCall
				events := []StreamEvent{
					{Type: StreamEventToolInputStart, ID: call.ID, ToolName: call.Function.Name},
					{Type: StreamEventToolInputDelta, ID: call.ID, Delta: call.Function.Arguments},
					{Type: StreamEventToolInputEnd, ID: call.ID},
					{Type: StreamEventToolCall, ID: call.ID, ToolName: call.Function.Name, ToolCall: &call},
				}
				for _, event := range events {
					if !yield(event, nil) {
						return
					}
				}
			}
		}

		yield(StreamEvent{
			Type:            StreamEventFinish,
			FinishReason:    response.FinishReason,
			RawFinishReason: response.RawFinishReason,
			Usage:           response.Usage,
		}, nil)
	}

	return NewChatStream(iteratorFunc)
}

// yieldLifecycle emits the start/delta/end triple for one text-like channel.
// Returns false if the consumer stopped iteration.
func yieldLifecycle(yield func(StreamEvent, error) bool, start, delta, end StreamEventType, id, content string) bool {
	if !yield(StreamEvent{Type: start, ID: id}, nil) {
		return false
	}
	if content != "" {
		if !yield(StreamEvent{Type: delta, ID: id, Delta: content}, nil) {
			return false
		}
	}
	return yield(StreamEvent{Type: end, ID: id}, nil)
}

// channelID builds a stable channel identifier from a kind prefix and an
// ordinal, e.g. "text-0".
func channelID(kind string, ordinal int) string {
	return kind + "-" + strconv.Itoa(ordinal)
}

// Iter returns the underlying iterator for use with range-over-func loops.
//
// Example:
//
//	for event, err := range stream.Iter() {
//	    if err != nil { handle error }
//	    if event.Type == ai.StreamEventTextDelta { fmt.Print(event.Delta) }
//	}
func (stream *ChatStream) Iter() iter.Seq2[StreamEvent, error] {
	return stream.iterator
}

// Collect consumes the entire stream and returns the accumulated ChatResponse.
// This is a convenience method for callers who want the complete response but
// still benefit from streaming transport (lower time-to-first-byte).
// Any mid-stream error terminates collection and returns the partial response
// with the error.
func (stream *ChatStream) Collect() (*ChatResponse, error) {
	accumulated := &ChatResponse{}

	// blockIndexByChannel maps an open channel id to its position in
	// accumulated.Content so deltas append to the right block.
	blockIndexByChannel := map[string]int{}

	for event, err := range stream.iterator {
		if err != nil {
			return accumulated, err
		}

		switch event.Type {
		case StreamEventStreamStart:
			accumulated.Warnings = append(accumulated.Warnings, event.Warnings...)

		case StreamEventResponseMetadata:
			accumulated.Id = event.ResponseID
			accumulated.Model = event.Model
			if !event.Timestamp.IsZero() {
				accumulated.Created = event.Timestamp.Unix()
			}

		case StreamEventTextStart:
			blockIndexByChannel[event.ID] = len(accumulated.Content)
			accumulated.Content = append(accumulated.Content, ContentBlock{Type: ContentBlockText})

		case StreamEventReasoningStart:
			blockIndexByChannel[event.ID] = len(accumulated.Content)
			accumulated.Content = append(accumulated.Content, ContentBlock{Type: ContentBlockReasoning})

		case StreamEventTextDelta, StreamEventReasoningDelta:
			if index, ok := blockIndexByChannel[event.ID]; ok {
				accumulated.Content[index].Text += event.Delta
			}

		case StreamEventTextEnd, StreamEventReasoningEnd, StreamEventToolInputStart,
			StreamEventToolInputDelta, StreamEventToolInputEnd:
			// Channel closures carry no payload; tool input fragments are
			// superseded by the finished tool_call event.

		case StreamEventToolCall:
			if event.ToolCall != nil {
				call := *event.ToolCall
				accumulated.Content = append(accumulated.Content, ContentBlock{
					Type:     ContentBlockToolCall,
					ToolCall: &call,
				})
			}

		case StreamEventFinish:
			accumulated.FinishReason = event.FinishReason
			accumulated.RawFinishReason = event.RawFinishReason
			if event.Usage != nil {
				accumulated.Usage = event.Usage
			}

		case StreamEventError:
			// Error events are informational; the stream still terminates with
			// a finish event carrying FinishReasonError.
		}
	}

	return accumulated, nil
}

// CollectText consumes the stream and returns only the concatenated text
// content. Convenience for callers that do not need the full response.
func (stream *ChatStream) CollectText() (string, error) {
	var builder strings.Builder
	for event, err := range stream.iterator {
		if err != nil {
			return builder.String(), err
		}
		if event.Type == StreamEventTextDelta {
			builder.WriteString(event.Delta)
		}
	}
	return builder.String(), nil
}
