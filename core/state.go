package orchestration

import "github.com/koscakluka/ema-chat/core/llms"

// State is the request lifecycle of an orchestrator. A terminal state is kept
// until the next SendMessage.
type State int

const (
	StateIdle State = iota
	StateSending
	StateStreaming
	StateCompleted
	StateAborted
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSending:
		return "sending"
	case StateStreaming:
		return "streaming"
	case StateCompleted:
		return "completed"
	case StateAborted:
		return "aborted"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// IsLoading is true while a request is being sent or streamed.
func (s State) IsLoading() bool {
	return s == StateSending || s == StateStreaming
}

type OutcomeKind string

const (
	// OutcomeCompleted means the endpoint finished the reply, with or without
	// the terminal sentinel.
	OutcomeCompleted OutcomeKind = "completed"
	// OutcomeAborted means the request context was cancelled.
	OutcomeAborted OutcomeKind = "aborted"
	// OutcomeFailed means the request failed; Outcome.Err holds the reason.
	OutcomeFailed OutcomeKind = "failed"
	// OutcomeRejected means nothing was sent because the text was blank.
	OutcomeRejected OutcomeKind = "rejected"
	// OutcomeDiscarded means history was cleared while the request was in
	// flight and its results were dropped.
	OutcomeDiscarded OutcomeKind = "discarded"
)

// Outcome is the result of a single SendMessage call.
type Outcome struct {
	Kind OutcomeKind
	Err  *llms.Error
}

func (o Outcome) String() string {
	if o.Err != nil {
		return string(o.Kind) + ": " + o.Err.Error()
	}
	return string(o.Kind)
}
