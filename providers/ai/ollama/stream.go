package ollama

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/kaptinlin/jsonrepair"

	"github.com/fwlab/olgo/internal/utils"
	"github.com/fwlab/olgo/providers/ai"
	"github.com/fwlab/olgo/providers/observability"
)

// channelState tracks one content channel through its lifecycle. Transitions
// are monotonic: notStarted -> started -> ended. The decoder synthesizes the
// missing start itself on first delta, so a delta or end before start cannot
// occur by construction.
type channelState int

const (
	channelNotStarted channelState = iota
	channelStarted
	channelEnded
)

// Channel ids for the two singleton channels of a generation. Tool-call
// channels use the tool call id instead.
const (
	textChannelID      = "text-0"
	reasoningChannelID = "reasoning-0"
)

// streamDecoder is the per-call state machine that turns raw response chunks
// into the canonical ordered event sequence. One instance serves exactly one
// in-flight call; no state is shared across calls.
//
// The decoder retains only the undecoded residual tail of the current chunk
// plus open-channel bookkeeping, both O(1) relative to total stream length.
type streamDecoder struct {
	parse      fragmentParser
	responseID string

	// residual holds the trailing bytes of the previous chunk that did not
	// yet form a complete JSON line.
	residual []byte

	metadataSent   bool
	textState      channelState
	reasoningState channelState

	sawToolCalls  bool
	rawDoneReason string
	finishReason  ai.FinishReason
	usage         *ai.Usage

	// errored is set when a chunk carried an upstream error object and no
	// usable fragments; the driver stops reading and flushes.
	errored  bool
	finished bool
}

func newStreamDecoder(parse fragmentParser) *streamDecoder {
	return &streamDecoder{
		parse:        parse,
		responseID:   newResponseID(),
		finishReason: ai.FinishReasonUnknown,
	}
}

// Decode consumes one raw chunk and returns the events it produced, in order.
//
// The decode contract has two paths: the chunk (prefixed with any residual
// from earlier chunks) is first parsed as a single JSON object; when that
// fails, it is split on newlines and every line that independently validates
// is processed as its own fragment. A complete line that still fails gets one
// repair attempt before being dropped: chunk boundaries are not guaranteed
// to align with line boundaries, and a bad residual line must never block the
// sibling lines that did decode. The trailing line of a chunk without a
// newline terminator is carried over as the next chunk's residual.
//
// A non-nil error is returned only for structurally fatal fragments (a tool
// call without a name); it aborts the stream.
func (decoder *streamDecoder) Decode(chunk []byte) ([]ai.StreamEvent, error) {
	data := chunk
	if len(decoder.residual) > 0 {
		data = append(decoder.residual, chunk...)
		decoder.residual = nil
	}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, nil
	}

	// Fast path: the chunk is exactly one JSON object.
	if parsed, err := decoder.parse(trimmed); err == nil {
		return decoder.apply(parsed)
	}

	// Recovery path: line-oriented decode.
	var events []ai.StreamEvent
	usableFragments := 0
	var upstreamError *wireErrorDetail

	lines := bytes.Split(data, []byte("\n"))
	lastIndex := len(lines) - 1

	for index, rawLine := range lines {
		line := bytes.TrimSpace(rawLine)
		if len(line) == 0 {
			continue
		}

		parsed, parseErr := decoder.parse(line)
		if parseErr != nil {
			if detail, ok := decodeErrorEnvelope(line); ok {
				upstreamError = detail
				continue
			}

			// The final line may simply be split mid-object; hold the raw
			// bytes for the next chunk. Trimming here would corrupt a string
			// literal whose interior whitespace landed on the chunk boundary.
			// Copied because rawLine aliases the caller's reused read buffer.
			if index == lastIndex {
				decoder.residual = append([]byte(nil), rawLine...)
				continue
			}

			// A complete interior line that does not parse gets one repair
			// attempt before being dropped.
			parsed = decoder.repairLine(line)
			if parsed == nil {
				continue
			}
		}

		fragmentEvents, applyErr := decoder.apply(parsed)
		if applyErr != nil {
			return events, applyErr
		}
		events = append(events, fragmentEvents...)
		usableFragments++
	}

	// A chunk that yields nothing usable and carries an explicit upstream
	// error object ends the stream with an error/finish pair. Framing
	// artifacts alone never error the stream.
	if usableFragments == 0 && upstreamError != nil {
		decoder.errored = true
		decoder.finishReason = ai.FinishReasonError
		events = append(events, ai.StreamEvent{
			Type: ai.StreamEventError,
			Err:  fmt.Errorf("upstream error: %s", upstreamError.Message),
		})
	}

	return events, nil
}

// repairLine makes a single best-effort repair attempt on a malformed line.
// Returns nil when the line stays undecodable.
func (decoder *streamDecoder) repairLine(line []byte) *fragment {
	repaired, err := jsonrepair.JSONRepair(string(line))
	if err != nil {
		return nil
	}
	parsed, err := decoder.parse([]byte(repaired))
	if err != nil {
		return nil
	}
	return parsed
}

// apply folds one decoded fragment into the state machine and returns the
// events it produced.
func (decoder *streamDecoder) apply(parsed *fragment) ([]ai.StreamEvent, error) {
	var events []ai.StreamEvent

	// The first successfully decoded fragment identifies the response.
	if !decoder.metadataSent {
		decoder.metadataSent = true
		events = append(events, ai.StreamEvent{
			Type:       ai.StreamEventResponseMetadata,
			ResponseID: decoder.responseID,
			Model:      parsed.model,
			Timestamp:  parsed.createdAt,
		})
	}

	// Reasoning precedes text within a fragment: the deliberation trace is
	// generated before the answer.
	if parsed.thinking != "" {
		if decoder.reasoningState == channelNotStarted {
			decoder.reasoningState = channelStarted
			events = append(events, ai.StreamEvent{Type: ai.StreamEventReasoningStart, ID: reasoningChannelID})
		}
		events = append(events, ai.StreamEvent{
			Type:  ai.StreamEventReasoningDelta,
			ID:    reasoningChannelID,
			Delta: parsed.thinking,
		})
	}

	if parsed.text != "" {
		if decoder.textState == channelNotStarted {
			decoder.textState = channelStarted
			events = append(events, ai.StreamEvent{Type: ai.StreamEventTextStart, ID: textChannelID})
		}
		events = append(events, ai.StreamEvent{
			Type:  ai.StreamEventTextDelta,
			ID:    textChannelID,
			Delta: parsed.text,
		})
	}

	// The wire protocol delivers each tool call whole, never as incremental
	// argument deltas, so every tool-call fragment becomes one atomic
	// start/delta/end/call burst sharing a single id.
	for _, wireCall := range parsed.toolCalls {
		call, err := convertResponseToolCall(wireCall)
		if err != nil {
			return events, err
		}
		decoder.sawToolCalls = true
		events = append(events,
			ai.StreamEvent{Type: ai.StreamEventToolInputStart, ID: call.ID, ToolName: call.Function.Name},
			ai.StreamEvent{Type: ai.StreamEventToolInputDelta, ID: call.ID, Delta: call.Function.Arguments},
			ai.StreamEvent{Type: ai.StreamEventToolInputEnd, ID: call.ID},
			ai.StreamEvent{Type: ai.StreamEventToolCall, ID: call.ID, ToolName: call.Function.Name, ToolCall: call},
		)
	}

	if parsed.usage != nil {
		decoder.usage = parsed.usage
	}

	if parsed.done {
		decoder.rawDoneReason = parsed.doneReason
		decoder.finishReason = finishReasonFor(parsed.doneReason, decoder.sawToolCalls)
		events = append(events, decoder.closeOpenChannels()...)
	}

	return events, nil
}

// closeOpenChannels synthesizes the end events for any channel still open:
// text before reasoning, matching channel-open order guarantees. Tool-call
// channels never dangle because their bursts are atomic.
func (decoder *streamDecoder) closeOpenChannels() []ai.StreamEvent {
	var events []ai.StreamEvent
	if decoder.textState == channelStarted {
		decoder.textState = channelEnded
		events = append(events, ai.StreamEvent{Type: ai.StreamEventTextEnd, ID: textChannelID})
	}
	if decoder.reasoningState == channelStarted {
		decoder.reasoningState = channelEnded
		events = append(events, ai.StreamEvent{Type: ai.StreamEventReasoningEnd, ID: reasoningChannelID})
	}
	return events
}

// Flush terminates the stream: it drains any decodable residual, closes
// channels the wire never closed, and emits the single finish event. Safe to
// call once the transport reports EOF or after an upstream error.
func (decoder *streamDecoder) Flush() []ai.StreamEvent {
	var events []ai.StreamEvent

	if trimmed := bytes.TrimSpace(decoder.residual); len(trimmed) > 0 && !decoder.errored {
		decoder.residual = nil
		if parsed, err := decoder.parse(trimmed); err == nil {
			if fragmentEvents, applyErr := decoder.apply(parsed); applyErr == nil {
				events = append(events, fragmentEvents...)
			}
		} else if detail, ok := decodeErrorEnvelope(trimmed); ok {
			decoder.errored = true
			decoder.finishReason = ai.FinishReasonError
			events = append(events, ai.StreamEvent{
				Type: ai.StreamEventError,
				Err:  fmt.Errorf("upstream error: %s", detail.Message),
			})
		}
	}

	events = append(events, decoder.closeOpenChannels()...)

	if !decoder.finished {
		decoder.finished = true
		events = append(events, ai.StreamEvent{
			Type:            ai.StreamEventFinish,
			ResponseID:      decoder.responseID,
			FinishReason:    decoder.finishReason,
			RawFinishReason: decoder.rawDoneReason,
			Usage:           decoder.usage,
		})
	}

	return events
}

// streamReadBufferSize is the transport read granularity. Chunk boundaries
// carry no meaning; the decoder reassembles lines across reads.
const streamReadBufferSize = 32 * 1024

// StreamMessage implements [ai.StreamProvider] for the chat endpoint. It
// sends a streaming request and returns a [ai.ChatStream] yielding canonical
// lifecycle events as fragments arrive.
//
// Pre-stream errors (non-2xx HTTP response, network failure) are returned
// immediately as a non-nil error. Mid-stream failures are yielded through the
// iterator; upstream error objects end the stream with an error event and a
// finish event carrying [ai.FinishReasonError].
func (provider *OllamaProvider) StreamMessage(ctx context.Context, request ai.ChatRequest) (*ai.ChatStream, error) {
	span := observability.SpanFromContext(ctx)
	observer := observability.ObserverFromContext(ctx)

	if span != nil {
		span.AddEvent(observability.EventLLMRequestStart)
		span.SetAttributes(
			observability.String(observability.AttrLLMProvider, "ollama"),
			observability.String(observability.AttrLLMEndpoint, provider.baseURL),
			observability.String(observability.AttrLLMModel, request.Model),
			observability.Bool("llm.streaming", true),
		)
	}

	wireRequest, _, warnings, err := provider.buildChatRequest(request)
	if err != nil {
		return nil, err
	}
	wireRequest.Stream = utils.Ptr(true)

	if observer != nil {
		observer.Trace(ctx, "Ollama provider prepared streaming request",
			observability.String(observability.AttrLLMModel, request.Model),
			observability.Int(observability.AttrRequestMessagesCount, len(request.Messages)),
			observability.Int(observability.AttrRequestToolsCount, len(request.Tools)),
			observability.Int(observability.AttrRequestWarningsCount, len(warnings)),
		)
	}

	streamURL := provider.baseURL + chatEndpoint
	httpResponse, err := utils.DoPostStream(ctx, provider.client, streamURL, provider.apiKey, wireRequest, provider.headerOptions()...)
	if err != nil {
		return nil, provider.asCallError(err, streamURL)
	}

	return ai.NewChatStream(provider.streamIterator(ctx, httpResponse, parseChatFragment, warnings)), nil
}

// streamIterator drives one open streaming response body through a fresh
// decoder, yielding events until EOF, fatal error, or consumer break.
// The response body is closed when the iterator exits.
func (provider *OllamaProvider) streamIterator(ctx context.Context, httpResponse *http.Response, parse fragmentParser, warnings []ai.CallWarning) func(yield func(ai.StreamEvent, error) bool) {
	return func(yield func(ai.StreamEvent, error) bool) {
		defer utils.CloseWithLog(httpResponse.Body)

		span := observability.SpanFromContext(ctx)
		decoder := newStreamDecoder(parse)

		if !yield(ai.StreamEvent{Type: ai.StreamEventStreamStart, Warnings: warnings}, nil) {
			return
		}

		yieldAll := func(events []ai.StreamEvent) bool {
			for _, event := range events {
				if !yield(event, nil) {
					return false
				}
			}
			return true
		}

		flush := func() {
			if span != nil {
				span.AddEvent(observability.EventLLMStreamFinish)
			}
			yieldAll(decoder.Flush())
		}

		if utils.IsEventStream(httpResponse) {
			// SSE framing: one envelope per event, reassembled by the scanner.
			scanner := utils.NewSSEScanner(httpResponse.Body)
			for {
				if ctx.Err() != nil {
					yield(ai.StreamEvent{}, ctx.Err())
					return
				}

				payload, scanErr := scanner.Next()
				if scanErr == io.EOF {
					flush()
					return
				}
				if scanErr != nil {
					yield(ai.StreamEvent{}, fmt.Errorf("stream read error: %w", scanErr))
					return
				}

				events, decodeErr := decoder.Decode([]byte(payload))
				if span != nil && len(events) > 0 {
					span.AddEvent(observability.EventLLMStreamFragment)
				}
				if !yieldAll(events) {
					return
				}
				if decodeErr != nil {
					yield(ai.StreamEvent{}, decodeErr)
					return
				}
				if decoder.errored {
					flush()
					return
				}
			}
		}

		// Newline-delimited JSON framing: raw byte chunks, reassembled by the
		// decoder's residual buffer.
		buffer := make([]byte, streamReadBufferSize)
		for {
			if ctx.Err() != nil {
				yield(ai.StreamEvent{}, ctx.Err())
				return
			}

			bytesRead, readErr := httpResponse.Body.Read(buffer)
			if bytesRead > 0 {
				events, decodeErr := decoder.Decode(buffer[:bytesRead])
				if span != nil && len(events) > 0 {
					span.AddEvent(observability.EventLLMStreamFragment)
				}
				if !yieldAll(events) {
					return
				}
				if decodeErr != nil {
					yield(ai.StreamEvent{}, decodeErr)
					return
				}
				if decoder.errored {
					flush()
					return
				}
			}

			if readErr == io.EOF {
				flush()
				return
			}
			if readErr != nil {
				yield(ai.StreamEvent{}, fmt.Errorf("stream read error: %w", readErr))
				return
			}
		}
	}
}
