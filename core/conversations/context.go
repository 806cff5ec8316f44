package conversations

import "github.com/koscakluka/ema-chat/core/llms"

// ActiveContext exposes live conversation state to renderers and event
// handlers. All methods are safe to call from any goroutine.
type ActiveContext interface {
	// Transcript is a snapshot of all turns. Ordering: oldest -> newest. The
	// last turn may still be in progress.
	Transcript() []llms.Turn

	// IsLoading reports whether a request is being sent or streamed.
	IsLoading() bool

	// LastError is the classified failure of the most recent request; nil
	// after a success or ClearHistory.
	LastError() *llms.Error
}
