package orchestration

import (
	"context"
	"iter"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/koscakluka/ema-chat/core/events"
	"github.com/koscakluka/ema-chat/core/llms"
	"github.com/koscakluka/ema-chat/core/llms/chatstream"
	"github.com/stretchr/testify/require"
)

type fakeLLM struct {
	mu      sync.Mutex
	prompts [][]llms.Turn
	run     func(ctx context.Context, yield func(llms.StreamChunk, error) bool)
}

func (f *fakeLLM) PromptWithStream(_ context.Context, turns []llms.Turn) llms.Stream {
	f.mu.Lock()
	f.prompts = append(f.prompts, turns)
	f.mu.Unlock()
	return fakeStream{run: f.run}
}

func (f *fakeLLM) lastPrompt() []llms.Turn {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.prompts) == 0 {
		return nil
	}
	return f.prompts[len(f.prompts)-1]
}

type fakeStream struct {
	run func(ctx context.Context, yield func(llms.StreamChunk, error) bool)
}

func (s fakeStream) Chunks(ctx context.Context) iter.Seq2[llms.StreamChunk, error] {
	return func(yield func(llms.StreamChunk, error) bool) {
		s.run(ctx, yield)
	}
}

type openedChunk struct{}

func (openedChunk) FinishReason() *string { return nil }
func (openedChunk) StatusCode() int       { return http.StatusOK }

type contentChunk string

func (contentChunk) FinishReason() *string { return nil }
func (c contentChunk) Content() string     { return string(c) }

// streamOf opens the stream and yields each delta in order.
func streamOf(deltas ...string) *fakeLLM {
	return &fakeLLM{run: func(_ context.Context, yield func(llms.StreamChunk, error) bool) {
		if !yield(openedChunk{}, nil) {
			return
		}
		for _, delta := range deltas {
			if !yield(contentChunk(delta), nil) {
				return
			}
		}
	}}
}

// eventRecorder collects emitted events for later assertions.
type eventRecorder struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *eventRecorder) handle(event events.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *eventRecorder) kinds() []events.Kind {
	r.mu.Lock()
	defer r.mu.Unlock()
	kinds := make([]events.Kind, 0, len(r.events))
	for _, event := range r.events {
		kinds = append(kinds, event.Kind())
	}
	return kinds
}

func (r *eventRecorder) count(kind events.Kind) int {
	count := 0
	for _, k := range r.kinds() {
		if k == kind {
			count++
		}
	}
	return count
}

// newSSEServer serves each chunk as a separate flushed write.
func newSSEServer(t *testing.T, status int, chunks ...string) *httptest.Server {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if status != http.StatusOK {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(status)
			for _, chunk := range chunks {
				_, _ = w.Write([]byte(chunk))
			}
			return
		}

		w.Header().Set("Content-Type", "text/event-stream")
		w.WriteHeader(http.StatusOK)
		flusher, _ := w.(http.Flusher)
		for _, chunk := range chunks {
			_, _ = w.Write([]byte(chunk))
			if flusher != nil {
				flusher.Flush()
			}
		}
	}))
	t.Cleanup(server.Close)
	return server
}

func newServerClient(t *testing.T, server *httptest.Server) *chatstream.Client {
	t.Helper()

	client, err := chatstream.NewClient(server.URL, "test-key", chatstream.WithHTTPClient(server.Client()))
	require.NoError(t, err)
	return client
}
