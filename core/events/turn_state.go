package events

import "github.com/koscakluka/ema-chat/core/llms"

const (
	// KindTurnLoadingChanged identifies a request starting or finishing.
	KindTurnLoadingChanged Kind = "turn_state.loading_changed"
	// KindTurnCompleted identifies successful turn completion.
	KindTurnCompleted Kind = "turn_state.completed"
	// KindTurnCancelled identifies turn cancellation.
	KindTurnCancelled Kind = "turn_state.cancelled"
	// KindTurnFailed identifies turn failure.
	KindTurnFailed Kind = "turn_state.failed"
)

// TurnLoadingChanged reports the loading flag.
type TurnLoadingChanged struct {
	Base
	Loading bool
}

// NewTurnLoadingChanged creates a loading changed event.
func NewTurnLoadingChanged(loading bool) TurnLoadingChanged {
	return TurnLoadingChanged{Base: NewBase(KindTurnLoadingChanged), Loading: loading}
}

// TurnCompleted marks successful completion of the current turn.
type TurnCompleted struct{ Base }

// NewTurnCompleted creates a turn completed event.
func NewTurnCompleted() TurnCompleted {
	return TurnCompleted{Base: NewBase(KindTurnCompleted)}
}

// TurnCancelled marks cancellation of the current turn.
type TurnCancelled struct{ Base }

// NewTurnCancelled creates a turn cancelled event.
func NewTurnCancelled() TurnCancelled {
	return TurnCancelled{Base: NewBase(KindTurnCancelled)}
}

// TurnFailed marks failure of the current turn.
type TurnFailed struct {
	Base
	Err *llms.Error
}

// NewTurnFailed creates a turn failed event.
func NewTurnFailed(err *llms.Error) TurnFailed {
	return TurnFailed{Base: NewBase(KindTurnFailed), Err: err}
}
