package chatstream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"iter"
	"net/http"
	"time"

	"github.com/koscakluka/ema-chat/core/llms"
	"github.com/koscakluka/ema-chat/core/llms/sse"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const (
	readBufferSize = 4 * 1024
	// maxErrorBodySize bounds how much of a failure response is read.
	maxErrorBodySize = 64 * 1024
)

type Stream struct {
	client *Client
	turns  []llms.Turn
}

// Chunks sends the request and yields the response as it streams in.
//
// Content chunks are yielded in arrival order. Iteration ends after the
// terminal sentinel or when the endpoint closes the body without one; both
// are normal completions. A failure is yielded once as a classified
// *llms.Error and ends iteration. When ctx is cancelled the yielded error
// wraps ctx.Err() and nothing is read afterwards.
func (s *Stream) Chunks(ctx context.Context) iter.Seq2[llms.StreamChunk, error] {
	return func(yield func(llms.StreamChunk, error) bool) {
		ctx, span := tracer.Start(ctx, "chat stream")
		defer span.End()

		fail := func(err error) {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			yield(nil, err)
		}

		messages, err := toMessages(s.turns)
		if err != nil {
			fail(llms.ClassifyError(err))
			return
		}
		span.SetAttributes(attribute.Int("request.messages", len(messages)))

		requestBodyBytes, err := json.Marshal(requestBody{Messages: messages})
		if err != nil {
			fail(llms.ClassifyError(fmt.Errorf("error marshalling JSON: %w", err)))
			return
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.client.endpoint, bytes.NewReader(requestBodyBytes))
		if err != nil {
			fail(llms.ClassifyError(fmt.Errorf("error creating HTTP request: %w", err)))
			return
		}
		for key, value := range s.client.headers {
			req.Header.Set(key, value)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "text/event-stream")
		req.Header.Set("Authorization", "Bearer "+s.client.apiKey)
		span.SetAttributes(attribute.String("request.url", req.URL.String()))

		requestStarted := time.Now()
		span.AddEvent("request started")
		resp, err := s.client.httpClient.Do(req)
		if err != nil {
			err = fmt.Errorf("error sending request: %w", err)
			if ctx.Err() != nil {
				fail(err)
				return
			}
			fail(llms.ClassifyError(err))
			return
		}
		defer resp.Body.Close()

		span.SetAttributes(attribute.Int("response.status_code", resp.StatusCode))
		requestCounter.Add(ctx, 1, metric.WithAttributes(attribute.Int("status_code", resp.StatusCode)))

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			errorBody, readErr := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))
			if readErr != nil {
				span.SetAttributes(attribute.String("error", fmt.Errorf("error reading error body: %w", readErr).Error()))
			} else {
				span.SetAttributes(attribute.String("response.error", string(errorBody)))
			}

			classified := llms.ClassifyResponse(resp.StatusCode, errorBody)
			logger.WarnContext(ctx, "chat endpoint rejected request",
				"status", resp.StatusCode,
				"kind", string(classified.Kind),
				"message", classified.Message)
			fail(classified)
			return
		}

		span.AddEvent("response stream opened")
		if !yield(StreamOpenedChunk{statusCode: resp.StatusCode}, nil) {
			return
		}

		r := reader{
			ctx:            ctx,
			span:           span,
			decoder:        sse.NewDecoder(),
			yield:          yield,
			requestStarted: requestStarted,
		}
		defer r.record()

		buf := make([]byte, readBufferSize)
		for {
			n, readErr := resp.Body.Read(buf)
			if n > 0 {
				if !r.consume(buf[:n]) {
					return
				}
			}

			if errors.Is(readErr, io.EOF) {
				break
			}
			if readErr != nil {
				err := fmt.Errorf("error reading streamed response: %w", readErr)
				if ctx.Err() != nil {
					fail(err)
					return
				}
				fail(llms.ClassifyError(err))
				return
			}
		}

		span.AddEvent("stream closed by endpoint")
		r.flush()
	}
}

// reader drives one response body through the decoder and the interpreter.
type reader struct {
	ctx     context.Context
	span    trace.Span
	decoder *sse.Decoder
	yield   func(llms.StreamChunk, error) bool

	requestStarted time.Time
	firstTokenSeen bool
	deltas         int
	usage          *usage
}

// consume feeds one raw chunk. It returns false once iteration must stop,
// either because the sentinel arrived or the consumer stopped.
func (r *reader) consume(chunk []byte) bool {
	for frame := range r.decoder.Feed(chunk) {
		body, result := interpret(frame.Data)
		switch result {
		case interpretedDone:
			r.span.AddEvent("received end of stream")
			return false
		case interpretedIncomplete:
			r.decoder.Unread(frame)
			continue
		case interpretedEmpty:
			continue
		}

		if !r.emit(body) {
			return false
		}
	}
	return true
}

// flush decodes whatever was left when the endpoint closed the body without
// an explicit sentinel. Fragments that still do not parse are dropped.
func (r *reader) flush() {
	for frame := range r.decoder.Flush() {
		body, result := interpret(frame.Data)
		switch result {
		case interpretedDone:
			return
		case interpretedIncomplete:
			logger.DebugContext(r.ctx, "dropping unparsable trailing fragment", "size", len(frame.Data))
			discardedCounter.Add(r.ctx, 1)
			continue
		case interpretedEmpty:
			continue
		}

		if !r.emit(body) {
			return
		}
	}
}

func (r *reader) emit(body streamingResponseBody) bool {
	finishReason := body.finishReason()

	if content := body.delta(); content != "" {
		if !r.firstTokenSeen {
			r.firstTokenSeen = true
			r.span.SetAttributes(attribute.Float64("response.request_to_first_token_time", time.Since(r.requestStarted).Seconds()))
			r.span.AddEvent("received first chunk")
		}
		r.deltas++
		if !r.yield(StreamContentChunk{finishReason: finishReason, content: content}, nil) {
			return false
		}
	}

	if body.Usage != nil {
		r.usage = body.Usage
		if !r.yield(StreamUsageChunk{
			finishReason: finishReason,
			usage: llms.Usage{
				InputTokens:  body.Usage.PromptTokens,
				OutputTokens: body.Usage.CompletionTokens,
				TotalTokens:  body.Usage.TotalTokens,
			},
		}, nil) {
			return false
		}
	}
	return true
}

func (r *reader) record() {
	r.span.SetAttributes(attribute.Int("response.deltas", r.deltas))
	deltaCounter.Add(r.ctx, int64(r.deltas))

	if discarded := r.decoder.Discarded(); discarded > 0 {
		r.span.SetAttributes(attribute.Int("response.discarded_fragments", discarded))
		discardedCounter.Add(r.ctx, int64(discarded))
		logger.DebugContext(r.ctx, "dropped unparsable fragments", "count", discarded)
	}

	if r.usage != nil {
		r.span.SetAttributes(attribute.Int("usage.input", r.usage.PromptTokens))
		r.span.SetAttributes(attribute.Int("usage.output", r.usage.CompletionTokens))
		r.span.SetAttributes(attribute.Int("usage.total", r.usage.TotalTokens))
	}
}

type StreamOpenedChunk struct {
	statusCode int
}

func (s StreamOpenedChunk) FinishReason() *string {
	return nil
}

func (s StreamOpenedChunk) StatusCode() int {
	return s.statusCode
}

type StreamContentChunk struct {
	finishReason *string
	content      string
}

func (s StreamContentChunk) FinishReason() *string {
	return s.finishReason
}

func (s StreamContentChunk) Content() string {
	return s.content
}

type StreamUsageChunk struct {
	finishReason *string
	usage        llms.Usage
}

func (s StreamUsageChunk) FinishReason() *string {
	return s.finishReason
}

func (s StreamUsageChunk) Usage() llms.Usage {
	return s.usage
}
