package events

import "github.com/koscakluka/ema-chat/core/llms"

const (
	// KindAssistantResponseStarted identifies the first streamed delta of a reply.
	KindAssistantResponseStarted Kind = "assistant_response.started"
	// KindAssistantResponseSegment identifies streamed assistant response text.
	KindAssistantResponseSegment Kind = "assistant_response.segment"
	// KindAssistantResponseFinal identifies assistant response stream completion.
	KindAssistantResponseFinal Kind = "assistant_response.final"
)

// AssistantResponseStarted marks creation of the assistant turn.
type AssistantResponseStarted struct {
	Base
	TurnID string
}

// NewAssistantResponseStarted creates an assistant response started event.
func NewAssistantResponseStarted(turnID string) AssistantResponseStarted {
	return AssistantResponseStarted{Base: NewBase(KindAssistantResponseStarted), TurnID: turnID}
}

// AssistantResponseSegment carries a streamed assistant response text segment.
type AssistantResponseSegment struct {
	Base
	Segment string
	// Content is the whole reply accumulated so far, Segment included.
	Content string
}

// NewAssistantResponseSegment creates an assistant response segment event.
func NewAssistantResponseSegment(segment string, content string) AssistantResponseSegment {
	return AssistantResponseSegment{Base: NewBase(KindAssistantResponseSegment), Segment: segment, Content: content}
}

// AssistantResponseFinal marks the end of the assistant reply.
type AssistantResponseFinal struct {
	Base
	Turn llms.Turn
}

// NewAssistantResponseFinal creates an assistant response final event.
func NewAssistantResponseFinal(turn llms.Turn) AssistantResponseFinal {
	return AssistantResponseFinal{Base: NewBase(KindAssistantResponseFinal), Turn: turn}
}
