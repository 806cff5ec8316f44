package orchestration

import (
	"context"
	"sync"

	"github.com/koscakluka/ema-chat/core/conversations"
	"github.com/koscakluka/ema-chat/core/llms"
)

var _ conversations.ActiveContext = (*activeConversation)(nil)

// activeConversation owns the transcript and the request lifecycle. Writes
// from a request carry the generation that was current when it began; once
// ClearHistory bumps the generation those writes are dropped.
type activeConversation struct {
	mu sync.RWMutex

	turns   Turns
	state   State
	lastErr *llms.Error

	generation uint64
	cancel     context.CancelFunc
}

// ConversationSnapshot is a point-in-time view of conversation state.
type ConversationSnapshot struct {
	Turns     []llms.Turn
	State     State
	LastError *llms.Error
}

func (c *activeConversation) Snapshot() ConversationSnapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return ConversationSnapshot{
		Turns:     c.turns.Snapshot(),
		State:     c.state,
		LastError: c.lastErr,
	}
}

func (c *activeConversation) Transcript() []llms.Turn {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.turns.Snapshot()
}

func (c *activeConversation) IsLoading() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.state.IsLoading()
}

func (c *activeConversation) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.state
}

func (c *activeConversation) LastError() *llms.Error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.lastErr
}

// begin records the user turn and moves to Sending. It returns the
// generation the request belongs to and the history to send.
func (c *activeConversation) begin(turn llms.Turn, cancel context.CancelFunc) (uint64, []llms.Turn) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.turns.Push(turn)
	c.state = StateSending
	c.lastErr = nil
	c.cancel = cancel
	return c.generation, c.turns.Snapshot()
}

func (c *activeConversation) markStreaming(generation uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if generation != c.generation {
		return false
	}
	if c.state == StateSending {
		c.state = StateStreaming
	}
	return true
}

// applyDelta appends delta to the assistant turn of the request. ok is false
// when the write was refused because the request was cancelled or its
// generation is stale.
func (c *activeConversation) applyDelta(ctx context.Context, generation uint64, delta string) (turn llms.Turn, started bool, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if generation != c.generation || ctx.Err() != nil {
		return llms.Turn{}, false, false
	}

	c.state = StateStreaming
	turn, started = c.turns.AppendDelta(delta)
	return turn, started, true
}

// finish moves the request to its terminal state and closes the assistant
// turn. Anything but a completion marks the turn interrupted.
func (c *activeConversation) finish(generation uint64, state State, err *llms.Error) (final *llms.Turn, transcript []llms.Turn, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if generation != c.generation {
		return nil, nil, false
	}

	final = c.turns.FinaliseActive(state != StateCompleted)
	c.state = state
	c.lastErr = err
	c.cancel = nil
	return final, c.turns.Snapshot(), true
}

// clear empties the transcript and cancels the request in flight, if any.
// It reports whether a request was in flight.
func (c *activeConversation) clear() (wasLoading bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	wasLoading = c.state.IsLoading()
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}

	c.generation++
	c.turns.Clear()
	c.lastErr = nil
	c.state = StateIdle
	return wasLoading
}

// cancelActive cancels the request in flight without touching history.
func (c *activeConversation) cancelActive() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cancel == nil {
		return false
	}
	c.cancel()
	return true
}
