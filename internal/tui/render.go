package tui

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/koscakluka/ema-chat/core/llms"
	"github.com/muesli/reflow/wordwrap"
)

const minContentWidth = 20

// renderer turns transcript turns into terminal text. Completed assistant
// turns are rendered as markdown once and cached by turn ID.
type renderer struct {
	width    int
	markdown *glamour.TermRenderer
	cache    map[string]string
}

func newRenderer() *renderer {
	return &renderer{cache: map[string]string{}}
}

func (r *renderer) setWidth(width int) {
	if width < minContentWidth {
		width = minContentWidth
	}
	if width == r.width {
		return
	}
	r.width = width
	r.markdown = nil
	clear(r.cache)
}

func (r *renderer) transcript(turns []llms.Turn) string {
	if len(turns) == 0 {
		return mutedStyle.Render("No messages yet. Type below and press enter.")
	}

	var sb strings.Builder
	for i, turn := range turns {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		sb.WriteString(r.turn(turn))
	}
	return sb.String()
}

func (r *renderer) turn(turn llms.Turn) string {
	if turn.Role == llms.TurnRoleUser {
		return userLabelStyle.Render("You") + "\n" + wordwrap.String(turn.Content, r.width)
	}

	label := assistantLabelStyle.Render("Assistant")
	switch {
	case turn.InProgress:
		return label + "\n" + wordwrap.String(turn.Content, r.width)
	case turn.Interrupted:
		return label + " " + mutedStyle.Render("(interrupted)") + "\n" + wordwrap.String(turn.Content, r.width)
	default:
		return label + "\n" + r.markdownOf(turn)
	}
}

func (r *renderer) markdownOf(turn llms.Turn) string {
	if rendered, ok := r.cache[turn.ID]; ok {
		return rendered
	}

	if r.markdown == nil {
		markdown, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(r.width),
		)
		if err != nil {
			return wordwrap.String(turn.Content, r.width)
		}
		r.markdown = markdown
	}

	rendered, err := r.markdown.Render(turn.Content)
	if err != nil {
		return wordwrap.String(turn.Content, r.width)
	}
	rendered = strings.Trim(rendered, "\n")
	r.cache[turn.ID] = rendered
	return rendered
}
