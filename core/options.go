package orchestration

import (
	"context"

	"github.com/koscakluka/ema-chat/core/events"
	"github.com/koscakluka/ema-chat/core/llms"
)

type OrchestratorOption func(*Orchestrator)

type LLMWithStream interface {
	PromptWithStream(ctx context.Context, turns []llms.Turn) llms.Stream
}

func WithStreamingLLM(client LLMWithStream) OrchestratorOption {
	return func(o *Orchestrator) {
		o.llm.set(client)
	}
}

// WithEventHandler receives every emitted event, before any of the typed
// callbacks below.
func WithEventHandler(handler func(events.Event)) OrchestratorOption {
	return func(o *Orchestrator) {
		o.callbacks.onEvent = handler
	}
}

// WithResponseCallback is called with each streamed response delta.
func WithResponseCallback(callback func(string)) OrchestratorOption {
	return func(o *Orchestrator) {
		o.callbacks.onResponse = callback
	}
}

// WithResponseEndCallback is called once per assistant reply, after its last
// delta.
func WithResponseEndCallback(callback func()) OrchestratorOption {
	return func(o *Orchestrator) {
		o.callbacks.onResponseEnd = callback
	}
}

func WithNotificationCallback(callback func(events.Notification)) OrchestratorOption {
	return func(o *Orchestrator) {
		o.callbacks.onNotification = callback
	}
}

// WithTranscriptCallback is called with a transcript snapshot after every
// change, including ClearHistory.
func WithTranscriptCallback(callback func([]llms.Turn)) OrchestratorOption {
	return func(o *Orchestrator) {
		o.callbacks.onTranscript = callback
	}
}

func WithLoadingCallback(callback func(bool)) OrchestratorOption {
	return func(o *Orchestrator) {
		o.callbacks.onLoadingChanged = callback
	}
}

type callbackOptions struct {
	onEvent          func(events.Event)
	onResponse       func(string)
	onResponseEnd    func()
	onNotification   func(events.Notification)
	onTranscript     func([]llms.Turn)
	onLoadingChanged func(bool)
}
