package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	orchestration "github.com/koscakluka/ema-chat/core"
	"github.com/koscakluka/ema-chat/core/events"
	"github.com/koscakluka/ema-chat/core/llms"
)

const (
	inputHeight = 3
	clearCmd    = "/clear"
)

// Model is the root bubbletea model of the chat view.
type Model struct {
	ctx     context.Context
	session Session
	bridge  *Bridge

	viewport viewport.Model
	input    textarea.Model
	spinner  spinner.Model
	renderer *renderer

	turns        []llms.Turn
	loading      bool
	notification *events.Notification
	width        int
	height       int
	ready        bool
}

// NewModel builds the chat view. The session must have been created with
// bridge.Options() so the view receives its updates.
func NewModel(ctx context.Context, session Session, bridge *Bridge) Model {
	ta := textarea.New()
	ta.Placeholder = "Type your message..."
	ta.Prompt = "> "
	ta.ShowLineNumbers = false
	ta.CharLimit = 0
	ta.SetHeight(inputHeight)
	ta.FocusedStyle.CursorLine = lipgloss.NewStyle()
	ta.KeyMap.InsertNewline.SetEnabled(false)
	ta.Focus()

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(colorAccent)

	return Model{
		ctx:      ctx,
		session:  session,
		bridge:   bridge,
		viewport: viewport.New(0, 0),
		input:    ta,
		spinner:  s,
		renderer: newRenderer(),
		turns:    session.Transcript(),
		loading:  session.IsLoading(),
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(textarea.Blink, m.spinner.Tick, m.bridge.wait())
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.layout()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case transcriptMsg:
		m.turns = msg.Turns
		m.refresh()
		return m, m.bridge.wait()

	case loadingMsg:
		m.setLoading(msg.Loading)
		return m, m.bridge.wait()

	case notificationMsg:
		notification := msg.Notification
		m.notification = &notification
		return m, m.bridge.wait()

	case outcomeMsg:
		// Loading is driven by the bridge; the outcome only settles a
		// request whose history was cleared while it ran.
		if msg.Outcome.Kind == orchestration.OutcomeDiscarded {
			m.setLoading(m.session.IsLoading())
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		m.session.Cancel()
		return m, tea.Quit

	case tea.KeyEsc:
		if m.loading {
			m.session.Cancel()
		}
		return m, nil

	case tea.KeyEnter:
		if m.loading {
			return m, nil
		}
		return m.submit(m.input.Value())

	case tea.KeyPgUp, tea.KeyPgDown:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	if m.loading {
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) submit(value string) (tea.Model, tea.Cmd) {
	text := strings.TrimSpace(value)
	if text == "" {
		return m, nil
	}
	m.input.Reset()
	m.notification = nil

	session := m.session
	if text == clearCmd {
		return m, func() tea.Msg {
			session.ClearHistory()
			return nil
		}
	}

	// Loading flips before the request goroutine reports it, so a second
	// enter cannot start a concurrent request.
	m.setLoading(true)
	ctx := m.ctx
	return m, func() tea.Msg {
		return outcomeMsg{Outcome: session.SendMessage(ctx, text)}
	}
}

func (m *Model) setLoading(loading bool) {
	m.loading = loading
	if loading {
		m.input.Blur()
	} else {
		m.input.Focus()
	}
}

func (m *Model) layout() {
	m.input.SetWidth(m.width - 2)
	viewportHeight := m.height - inputHeight - 2
	if viewportHeight < 1 {
		viewportHeight = 1
	}
	m.viewport.Width = m.width
	m.viewport.Height = viewportHeight
	m.renderer.setWidth(m.width - 2)
	m.ready = true
	m.refresh()
}

func (m *Model) refresh() {
	m.viewport.SetContent(m.renderer.transcript(m.turns))
	m.viewport.GotoBottom()
}

func (m Model) statusLine() string {
	switch {
	case m.loading:
		return statusStyle.Render(m.spinner.View() + " " + mutedStyle.Render("Waiting for the assistant... esc to cancel"))
	case m.notification != nil:
		return statusStyle.Render(errorTitleStyle.Render(m.notification.Title) + " " + m.notification.Message)
	default:
		return statusStyle.Render(mutedStyle.Render("enter to send, /clear to reset, ctrl+c to quit"))
	}
}

func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	return m.viewport.View() + "\n" + m.statusLine() + "\n" + m.input.View()
}

// Run starts the chat program and blocks until it exits.
func Run(ctx context.Context, session Session, bridge *Bridge) error {
	program := tea.NewProgram(NewModel(ctx, session, bridge), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := program.Run()
	return err
}
