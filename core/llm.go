package orchestration

import (
	"context"
	"errors"
	"iter"

	"github.com/koscakluka/ema-chat/core/llms"
)

var ErrNoLLM = errors.New("no streaming LLM configured")

type llm struct {
	// client is the configured streaming LLM implementation.
	client LLMWithStream
}

func (runtime *llm) set(client LLMWithStream) {
	if runtime == nil {
		return
	}

	runtime.client = client
}

// stream prompts the client with the conversation so far. Without a client it
// yields ErrNoLLM once.
func (runtime *llm) stream(ctx context.Context, conversation []llms.Turn) iter.Seq2[llms.StreamChunk, error] {
	if runtime == nil || runtime.client == nil {
		return func(yield func(llms.StreamChunk, error) bool) {
			yield(nil, ErrNoLLM)
		}
	}

	stream := runtime.client.PromptWithStream(ctx, conversation)
	if stream == nil {
		return func(yield func(llms.StreamChunk, error) bool) {
			yield(nil, errors.New("llm returned no stream"))
		}
	}
	return stream.Chunks(ctx)
}
