// Package orchestration runs a chat conversation against a streaming LLM:
// it records user turns, streams the assistant reply into the transcript and
// classifies whatever goes wrong on the way.
package orchestration

import (
	"context"
	"errors"
	"strings"

	"github.com/koscakluka/ema-chat/core/conversations"
	"github.com/koscakluka/ema-chat/core/events"
	"github.com/koscakluka/ema-chat/core/llms"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

var _ conversations.ActiveContext = (*Orchestrator)(nil)

// errStaleGeneration stops a stream whose history was cleared.
var errStaleGeneration = errors.New("conversation was cleared")

type Orchestrator struct {
	conversation activeConversation
	llm          llm

	callbacks callbackOptions
	emit      eventEmitter
}

func NewOrchestrator(opts ...OrchestratorOption) *Orchestrator {
	o := &Orchestrator{}
	for _, opt := range opts {
		opt(o)
	}
	o.emit = newCallbackEventEmitter(o.callbacks)

	return o
}

// SendMessage records text as a user turn and streams the assistant reply
// into the transcript. It blocks until the reply is complete, ctx is
// cancelled or the request fails.
//
// Only one request may be in flight at a time; callers should not call
// SendMessage while IsLoading reports true.
func (o *Orchestrator) SendMessage(ctx context.Context, text string) (outcome Outcome) {
	if strings.TrimSpace(text) == "" {
		return Outcome{Kind: OutcomeRejected}
	}

	ctx, span := tracer.Start(ctx, "send message")
	defer span.End()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	userTurn := llms.NewUserTurn(text)
	generation, history := o.conversation.begin(userTurn, cancel)
	span.SetAttributes(attribute.Int("conversation.turns", len(history)))

	defer func() {
		attributes := []attribute.KeyValue{attribute.String("outcome", string(outcome.Kind))}
		if outcome.Err != nil {
			attributes = append(attributes, attribute.String("error.kind", string(outcome.Err.Kind)))
			span.RecordError(outcome.Err)
			span.SetStatus(codes.Error, outcome.Err.Error())
		}
		span.SetAttributes(attributes...)
		outcomeCounter.Add(ctx, 1, metric.WithAttributes(attributes...))
	}()

	run := panicSafeNamedWorker("response stream", func(ctx context.Context) error {
		o.emit(events.NewUserTurnAdded(userTurn))
		o.emit(events.NewTranscriptUpdated(history))
		o.emit(events.NewTurnLoadingChanged(true))

		return o.streamResponse(ctx, span, generation, history)
	})
	return o.settle(ctx, generation, run(ctx))
}

func (o *Orchestrator) streamResponse(ctx context.Context, span trace.Span, generation uint64, history []llms.Turn) error {
	for chunk, err := range o.llm.stream(ctx, history) {
		if err != nil {
			return err
		}

		switch chunk := chunk.(type) {
		case llms.StreamOpenedChunk:
			if !o.conversation.markStreaming(generation) {
				return errStaleGeneration
			}
			span.AddEvent("response stream opened")

		case llms.StreamContentChunk:
			if chunk.Content() == "" {
				continue
			}
			turn, started, ok := o.conversation.applyDelta(ctx, generation, chunk.Content())
			if !ok {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				return errStaleGeneration
			}
			if started {
				o.emit(events.NewAssistantResponseStarted(turn.ID))
			}
			o.emit(events.NewAssistantResponseSegment(chunk.Content(), turn.Content))
			o.emit(events.NewTranscriptUpdated(o.conversation.Transcript()))

		case llms.StreamUsageChunk:
			usage := chunk.Usage()
			logger.DebugContext(ctx, "token usage reported",
				"input", usage.InputTokens,
				"output", usage.OutputTokens,
				"total", usage.TotalTokens)
		}
	}

	return nil
}

// settle moves the request into its terminal state and emits the closing
// events. A request whose history was cleared in the meantime is discarded
// without touching the transcript.
func (o *Orchestrator) settle(ctx context.Context, generation uint64, err error) Outcome {
	state := StateCompleted
	var classified *llms.Error
	switch {
	case err == nil:
	case errors.Is(err, errStaleGeneration):
		return Outcome{Kind: OutcomeDiscarded}
	case errors.Is(ctx.Err(), context.Canceled):
		state = StateAborted
	default:
		state = StateFailed
		classified = llms.ClassifyError(err)
	}

	final, transcript, ok := o.conversation.finish(generation, state, classified)
	if !ok {
		return Outcome{Kind: OutcomeDiscarded}
	}

	if final != nil {
		o.emit(events.NewAssistantResponseFinal(*final))
		o.emit(events.NewTranscriptUpdated(transcript))
	}

	var outcome Outcome
	switch state {
	case StateCompleted:
		outcome = Outcome{Kind: OutcomeCompleted}
		o.emit(events.NewTurnCompleted())
	case StateAborted:
		outcome = Outcome{Kind: OutcomeAborted}
		o.emit(events.NewTurnCancelled())
	default:
		outcome = Outcome{Kind: OutcomeFailed, Err: classified}
		logger.WarnContext(ctx, "request failed",
			"kind", string(classified.Kind),
			"status", classified.StatusCode,
			"error", classified.Error())
		o.emit(events.NewTurnFailed(classified))
		o.emit(events.NewNotification(classified))
	}
	o.emit(events.NewTurnLoadingChanged(false))

	return outcome
}

// ClearHistory empties the transcript and clears the last error. A request
// in flight is cancelled and nothing it receives afterwards is recorded.
func (o *Orchestrator) ClearHistory() {
	wasLoading := o.conversation.clear()

	o.emit(events.NewTranscriptCleared())
	if wasLoading {
		o.emit(events.NewTurnLoadingChanged(false))
	}
}

// Cancel aborts the request in flight, if any. The partial reply stays in
// the transcript marked as interrupted.
func (o *Orchestrator) Cancel() bool {
	return o.conversation.cancelActive()
}

// Transcript returns a point-in-time copy of all turns.
func (o *Orchestrator) Transcript() []llms.Turn {
	return o.conversation.Transcript()
}

func (o *Orchestrator) IsLoading() bool {
	return o.conversation.IsLoading()
}

func (o *Orchestrator) LastError() *llms.Error {
	return o.conversation.LastError()
}

func (o *Orchestrator) State() State {
	return o.conversation.State()
}

// Snapshot returns transcript, state and last error read together.
func (o *Orchestrator) Snapshot() ConversationSnapshot {
	return o.conversation.Snapshot()
}
