// Package tui is the interactive chat front end: a bubbletea program that
// renders the orchestrator transcript and forwards input to it.
package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	orchestration "github.com/koscakluka/ema-chat/core"
	"github.com/koscakluka/ema-chat/core/conversations"
	"github.com/koscakluka/ema-chat/core/events"
	"github.com/koscakluka/ema-chat/core/llms"
)

const bridgeBuffer = 256

// Session is the part of the orchestrator the chat view drives.
type Session interface {
	conversations.ActiveContext
	SendMessage(ctx context.Context, text string) orchestration.Outcome
	ClearHistory()
	Cancel() bool
}

// Bridge turns orchestrator callbacks into bubbletea messages. Callbacks run
// on the request goroutine, the messages are drained by the program.
type Bridge struct {
	updates chan tea.Msg
}

func NewBridge() *Bridge {
	return &Bridge{updates: make(chan tea.Msg, bridgeBuffer)}
}

// Options wires the bridge into an orchestrator.
func (b *Bridge) Options() []orchestration.OrchestratorOption {
	return []orchestration.OrchestratorOption{
		orchestration.WithTranscriptCallback(func(turns []llms.Turn) {
			b.updates <- transcriptMsg{Turns: turns}
		}),
		orchestration.WithLoadingCallback(func(loading bool) {
			b.updates <- loadingMsg{Loading: loading}
		}),
		orchestration.WithNotificationCallback(func(notification events.Notification) {
			b.updates <- notificationMsg{Notification: notification}
		}),
	}
}

func (b *Bridge) wait() tea.Cmd {
	return func() tea.Msg {
		return <-b.updates
	}
}

type transcriptMsg struct{ Turns []llms.Turn }

type loadingMsg struct{ Loading bool }

type notificationMsg struct{ Notification events.Notification }

type outcomeMsg struct{ Outcome orchestration.Outcome }
