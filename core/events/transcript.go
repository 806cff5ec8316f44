package events

import "github.com/koscakluka/ema-chat/core/llms"

const (
	// KindUserTurnAdded identifies a recorded user turn.
	KindUserTurnAdded Kind = "transcript.user_turn_added"
	// KindTranscriptUpdated identifies a transcript snapshot.
	KindTranscriptUpdated Kind = "transcript.updated"
	// KindTranscriptCleared identifies a history reset.
	KindTranscriptCleared Kind = "transcript.cleared"
)

// UserTurnAdded carries the user turn that was just recorded.
type UserTurnAdded struct {
	Base
	Turn llms.Turn
}

// NewUserTurnAdded creates a user turn added event.
func NewUserTurnAdded(turn llms.Turn) UserTurnAdded {
	return UserTurnAdded{Base: NewBase(KindUserTurnAdded), Turn: turn}
}

// TranscriptUpdated carries a snapshot of the transcript. Turns is owned by
// the receiver.
type TranscriptUpdated struct {
	Base
	Turns []llms.Turn
}

// NewTranscriptUpdated creates a transcript updated event.
func NewTranscriptUpdated(turns []llms.Turn) TranscriptUpdated {
	return TranscriptUpdated{Base: NewBase(KindTranscriptUpdated), Turns: turns}
}

// TranscriptCleared marks a history reset.
type TranscriptCleared struct{ Base }

// NewTranscriptCleared creates a transcript cleared event.
func NewTranscriptCleared() TranscriptCleared {
	return TranscriptCleared{Base: NewBase(KindTranscriptCleared)}
}
