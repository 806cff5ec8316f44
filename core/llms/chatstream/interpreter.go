package chatstream

import (
	"encoding/json"
	"strings"
)

// endMessage is the payload of the terminal frame.
const endMessage = "[DONE]"

type interpretation int

const (
	// interpretedPayload means the payload was parsed; it may still carry
	// no text.
	interpretedPayload interpretation = iota
	// interpretedDone means the terminal sentinel was seen.
	interpretedDone
	// interpretedIncomplete means the payload did not parse. It may be the
	// first half of a payload broken across lines, so it is not an error.
	interpretedIncomplete
	// interpretedEmpty means the frame carried nothing at all.
	interpretedEmpty
)

func interpret(data string) (streamingResponseBody, interpretation) {
	payload := strings.TrimSpace(data)
	if payload == "" {
		return streamingResponseBody{}, interpretedEmpty
	}

	if payload == endMessage {
		return streamingResponseBody{}, interpretedDone
	}

	var body streamingResponseBody
	if err := json.Unmarshal([]byte(payload), &body); err != nil {
		return streamingResponseBody{}, interpretedIncomplete
	}
	return body, interpretedPayload
}

// delta returns the text at choices[0].delta.content.
func (b streamingResponseBody) delta() string {
	if len(b.Choices) == 0 {
		return ""
	}
	return b.Choices[0].Delta.Content
}

func (b streamingResponseBody) finishReason() *string {
	if len(b.Choices) == 0 {
		return nil
	}
	return b.Choices[0].FinishReason
}
