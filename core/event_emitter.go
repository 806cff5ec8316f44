package orchestration

import (
	"github.com/koscakluka/ema-chat/core/events"
	"github.com/koscakluka/ema-chat/core/llms"
)

type eventEmitter func(events.Event)

func newCallbackEventEmitter(opts callbackOptions) eventEmitter {
	return func(event events.Event) {
		if opts.onEvent != nil {
			opts.onEvent(event)
		}

		switch typedEvent := event.(type) {
		case events.AssistantResponseSegment:
			if opts.onResponse != nil {
				opts.onResponse(typedEvent.Segment)
			}
		case events.AssistantResponseFinal:
			if opts.onResponseEnd != nil {
				opts.onResponseEnd()
			}
		case events.TranscriptUpdated:
			if opts.onTranscript != nil {
				opts.onTranscript(typedEvent.Turns)
			}
		case events.TranscriptCleared:
			if opts.onTranscript != nil {
				opts.onTranscript([]llms.Turn{})
			}
		case events.TurnLoadingChanged:
			if opts.onLoadingChanged != nil {
				opts.onLoadingChanged(typedEvent.Loading)
			}
		case events.Notification:
			if opts.onNotification != nil {
				opts.onNotification(typedEvent)
			}
		}
	}
}
