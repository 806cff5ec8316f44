package tui

import (
	"context"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	orchestration "github.com/koscakluka/ema-chat/core"
	"github.com/koscakluka/ema-chat/core/events"
	"github.com/koscakluka/ema-chat/core/llms"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSession struct {
	mu        sync.Mutex
	sent      []string
	cleared   int
	cancelled int
	loading   bool
}

func (s *fakeSession) SendMessage(_ context.Context, text string) orchestration.Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, text)
	return orchestration.Outcome{Kind: orchestration.OutcomeCompleted}
}

func (s *fakeSession) ClearHistory() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cleared++
}

func (s *fakeSession) Cancel() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelled++
	return true
}

func (s *fakeSession) Transcript() []llms.Turn { return nil }
func (s *fakeSession) IsLoading() bool         { return s.loading }
func (s *fakeSession) LastError() *llms.Error  { return nil }

func newTestModel(t *testing.T) (Model, *fakeSession) {
	t.Helper()
	session := &fakeSession{}
	m := NewModel(context.Background(), session, NewBridge())
	return update(t, m, tea.WindowSizeMsg{Width: 80, Height: 24}), session
}

func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	updated, _ := m.Update(msg)
	model, ok := updated.(Model)
	require.True(t, ok)
	return model
}

func TestModelRendersEmptyTranscript(t *testing.T) {
	m, _ := newTestModel(t)
	assert.Contains(t, m.View(), "No messages yet")
}

func TestModelRendersStreamingTranscript(t *testing.T) {
	m, _ := newTestModel(t)

	assistant := llms.NewAssistantTurn("Hel")
	m = update(t, m, transcriptMsg{Turns: []llms.Turn{llms.NewUserTurn("Say hello"), assistant}})

	view := m.View()
	assert.Contains(t, view, "Say hello")
	assert.Contains(t, view, "Hel")
}

func TestModelSubmitSendsMessage(t *testing.T) {
	m, session := newTestModel(t)
	m.input.SetValue("  hello there ")

	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = updated.(Model)
	require.NotNil(t, cmd)
	assert.True(t, m.loading, "input is disabled as soon as a message is sent")
	assert.Empty(t, m.input.Value())

	msg := cmd()
	outcome, ok := msg.(outcomeMsg)
	require.True(t, ok)
	assert.Equal(t, orchestration.OutcomeCompleted, outcome.Outcome.Kind)
	assert.Equal(t, []string{"hello there"}, session.sent)

	m = update(t, m, loadingMsg{Loading: false})
	assert.False(t, m.loading)
}

func TestModelIgnoresEnterWhileLoading(t *testing.T) {
	m, session := newTestModel(t)
	m = update(t, m, loadingMsg{Loading: true})
	m.input.SetValue("second")

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})

	assert.Nil(t, cmd)
	assert.Empty(t, session.sent)
}

func TestModelBlankSubmitIsIgnored(t *testing.T) {
	m, session := newTestModel(t)
	m.input.SetValue("   ")

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})

	assert.Nil(t, cmd)
	assert.Empty(t, session.sent)
}

func TestModelClearCommand(t *testing.T) {
	m, session := newTestModel(t)
	m.input.SetValue("/clear")

	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	cmd()

	assert.Equal(t, 1, session.cleared)
	assert.Empty(t, session.sent)
	assert.False(t, updated.(Model).loading)
}

func TestModelEscCancelsRequest(t *testing.T) {
	m, session := newTestModel(t)

	update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Zero(t, session.cancelled, "nothing to cancel while idle")

	m = update(t, m, loadingMsg{Loading: true})
	update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, 1, session.cancelled)
}

func TestModelShowsNotification(t *testing.T) {
	m, _ := newTestModel(t)

	m = update(t, m, notificationMsg{Notification: events.NewNotification(llms.ClassifyResponse(429, nil))})

	assert.Contains(t, m.View(), llms.ErrorKindRateLimited.Title())
}

func TestBridgeForwardsCallbacks(t *testing.T) {
	bridge := NewBridge()
	o := orchestration.NewOrchestrator(bridge.Options()...)

	o.ClearHistory()

	msg := bridge.wait()()
	transcript, ok := msg.(transcriptMsg)
	require.True(t, ok)
	assert.Empty(t, transcript.Turns)
}

func TestRendererMarksInterruptedTurns(t *testing.T) {
	r := newRenderer()
	r.setWidth(60)

	turn := llms.NewAssistantTurn("partial answer")
	turn.InProgress = false
	turn.Interrupted = true

	rendered := r.turn(turn)
	assert.Contains(t, rendered, "(interrupted)")
	assert.Contains(t, rendered, "partial answer")
}

func TestRendererCachesCompletedTurns(t *testing.T) {
	r := newRenderer()
	r.setWidth(60)

	turn := llms.NewAssistantTurn("Hello")
	turn.InProgress = false

	first := r.turn(turn)
	assert.Contains(t, first, "Hello")
	assert.Contains(t, r.cache, turn.ID)

	r.setWidth(40)
	assert.Empty(t, r.cache, "width change invalidates renders")
}
