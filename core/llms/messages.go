package llms

import (
	"time"

	"github.com/google/uuid"
)

// Turn is a single message in the conversation transcript.
type Turn struct {
	ID   string
	Role TurnRole

	// Content is the content of the turn
	// In user's turn it is the prompt,
	// in assistant's turn it is the (possibly partial) response
	Content   string
	Timestamp time.Time

	// InProgress is true while the assistant is still generating the turn.
	// Only the last turn of a transcript can be in progress.
	InProgress bool
	// Interrupted is true if the assistant turn was closed before the
	// endpoint finished it, e.g. the request was cancelled or the stream
	// failed midway. The content is whatever arrived up to that point.
	Interrupted bool
}

type TurnRole string

const (
	TurnRoleUser      TurnRole = "user"
	TurnRoleAssistant TurnRole = "assistant"
)

func NewUserTurn(content string) Turn {
	return Turn{
		ID:        uuid.NewString(),
		Role:      TurnRoleUser,
		Content:   content,
		Timestamp: time.Now(),
	}
}

func NewAssistantTurn(content string) Turn {
	return Turn{
		ID:         uuid.NewString(),
		Role:       TurnRoleAssistant,
		Content:    content,
		Timestamp:  time.Now(),
		InProgress: true,
	}
}

// IsCompleted reports whether the turn is finished and was not cut short.
func (t Turn) IsCompleted() bool {
	return !t.InProgress && !t.Interrupted
}
