package orchestration

import (
	"slices"

	"github.com/koscakluka/ema-chat/core/llms"
)

// Turns is the transcript store. At most one turn is in progress and it is
// always the last one.
type Turns struct {
	turns []llms.Turn
}

// Push adds a new turn to the stored turns, closing an in-progress turn as
// interrupted first
func (t *Turns) Push(turn llms.Turn) {
	t.FinaliseActive(true)
	t.turns = append(t.turns, turn)
}

// Pop removes the last turn from the stored turns, returns nil if empty
func (t *Turns) Pop() *llms.Turn {
	if len(t.turns) == 0 {
		return nil
	}
	lastElementIdx := len(t.turns) - 1
	turn := t.turns[lastElementIdx]
	t.turns = t.turns[:lastElementIdx]
	return &turn
}

// Clear removes all stored turns
func (t *Turns) Clear() {
	t.turns = nil
}

func (t *Turns) Len() int {
	return len(t.turns)
}

// Values is an iterator that goes over all the stored turns starting from the
// earliest towards the latest
func (t *Turns) Values(yield func(llms.Turn) bool) {
	for _, turn := range t.turns {
		if !yield(turn) {
			return
		}
	}
}

// RValues is an iterator that goes over all the stored turns starting from
// the latest towards the earliest
func (t *Turns) RValues(yield func(llms.Turn) bool) {
	for _, turn := range slices.Backward(t.turns) {
		if !yield(turn) {
			return
		}
	}
}

// Snapshot returns a copy of the stored turns that the caller owns.
func (t *Turns) Snapshot() []llms.Turn {
	return slices.Clone(t.turns)
}

// AppendDelta extends the in-progress assistant turn with delta, creating it
// when there is none. started reports whether the turn was created.
func (t *Turns) AppendDelta(delta string) (turn llms.Turn, started bool) {
	if active := t.active(); active != nil {
		active.Content += delta
		return *active, false
	}

	turn = llms.NewAssistantTurn(delta)
	t.turns = append(t.turns, turn)
	return turn, true
}

// FinaliseActive closes the in-progress turn, if any, and returns it.
func (t *Turns) FinaliseActive(interrupted bool) *llms.Turn {
	active := t.active()
	if active == nil {
		return nil
	}

	active.InProgress = false
	active.Interrupted = interrupted
	finalised := *active
	return &finalised
}

func (t *Turns) active() *llms.Turn {
	if len(t.turns) == 0 {
		return nil
	}
	if last := &t.turns[len(t.turns)-1]; last.InProgress {
		return last
	}
	return nil
}
