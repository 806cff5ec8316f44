package llms

import (
	"context"
	"iter"
)

type Stream interface {
	Chunks(context.Context) iter.Seq2[StreamChunk, error]
}

type StreamChunk interface {
	FinishReason() *string
}

// StreamOpenedChunk is yielded once the endpoint accepted the request and
// the response body started streaming.
type StreamOpenedChunk interface {
	StreamChunk
	StatusCode() int
}

type StreamContentChunk interface {
	StreamChunk
	Content() string
}

type StreamUsageChunk interface {
	StreamChunk
	Usage() Usage
}

type Usage struct {
	// InputTokens represents the number of input tokens.
	InputTokens int
	// OutputTokens represents the number of output tokens.
	OutputTokens int
	// TotalTokens represents the total number of tokens used.
	TotalTokens int
}
