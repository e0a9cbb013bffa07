// Package chat is the terminal learning assistant.
package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/skillroute/internal/assist"
	"github.com/abhisek/skillroute/internal/tracker"
	"github.com/abhisek/skillroute/internal/ui/components"
	"github.com/abhisek/skillroute/internal/ui/layout"
	"github.com/abhisek/skillroute/internal/ui/theme"
	"github.com/abhisek/skillroute/internal/voice"
)

// Assistant answers learner questions.
type Assistant interface {
	Ask(ctx context.Context, query, pathTitle string) string
}

// Role is who wrote a transcript line.
type Role int

const (
	User Role = iota + 1
	Bot
)

// Line is one transcript entry.
type Line struct {
	Role Role
	Text string
}

// answerMsg carries the assistant's reply.
type answerMsg struct {
	Text string
}

// transcriptMsg carries a finished voice capture.
type transcriptMsg struct {
	Text string
	Err  error
}

// voiceTickMsg refreshes the speaking indicator while an utterance plays.
type voiceTickMsg time.Time

const voiceTick = 250 * time.Millisecond

// Model is the assistant screen. Voice is optional.
type Model struct {
	ctx       context.Context
	assistant Assistant
	voice     *voice.Coordinator
	pathTitle string

	input     components.TextInput
	lines     []Line
	errMsg    string
	busy      tracker.InFlight
	listening bool

	width  int
	height int
}

// New creates the assistant screen. pathTitle, when set, is sent as
// context with every question. v may be nil.
func New(ctx context.Context, a Assistant, v *voice.Coordinator, pathTitle string) *Model {
	return &Model{
		ctx:       ctx,
		assistant: a,
		voice:     v,
		pathTitle: pathTitle,
		input:     components.NewTextInput("Ask about your learning path...", 500),
	}
}

// Lines returns the transcript.
func (m *Model) Lines() []Line {
	return append([]Line(nil), m.lines...)
}

// Error returns the message shown under the input, if any.
func (m *Model) Error() string {
	return m.errMsg
}

// Busy reports whether a question is outstanding.
func (m *Model) Busy() bool {
	return m.busy.Busy()
}

func (m *Model) Init() tea.Cmd {
	return m.input.Init()
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case answerMsg:
		m.busy.Done()
		m.lines = append(m.lines, Line{Role: Bot, Text: msg.Text})
		return m, nil

	case transcriptMsg:
		m.listening = false
		if msg.Err != nil {
			if !errors.Is(msg.Err, context.Canceled) {
				m.errMsg = voiceError(msg.Err)
			}
			return m, nil
		}
		m.input.SetValue(msg.Text)
		return m, nil

	case voiceTickMsg:
		if m.voice == nil {
			return m, nil
		}
		if err := m.voice.LastFailure(); err != nil {
			m.errMsg = err.Error()
		}
		if m.voice.Speaking() {
			return m, m.tick()
		}
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.shutdownVoice()
			return m, tea.Quit
		case "enter":
			return m, m.submit()
		case "ctrl+r":
			return m, m.toggleListening()
		case "ctrl+s":
			return m, m.toggleSpeaking()
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// submit sends the input as a question. A blank input or a question still
// outstanding is ignored without a model call.
func (m *Model) submit() tea.Cmd {
	if m.input.Blank() {
		m.errMsg = assist.MsgEmptyQuery
		return nil
	}
	if !m.busy.TryStart() {
		return nil
	}
	if m.voice != nil {
		m.voice.BeforeSubmit()
	}

	query := strings.TrimSpace(m.input.Value())
	m.errMsg = ""
	m.lines = append(m.lines, Line{Role: User, Text: query})
	m.input.Reset()

	ctx, a, title := m.ctx, m.assistant, m.pathTitle
	return func() tea.Msg {
		return answerMsg{Text: a.Ask(ctx, query, title)}
	}
}

func (m *Model) toggleListening() tea.Cmd {
	if m.voice == nil {
		m.errMsg = voice.ErrRecognitionUnavailable.Error()
		return nil
	}
	if m.listening {
		m.voice.StopListening()
		return nil
	}
	m.listening = true
	m.errMsg = ""
	m.input.Reset()

	ctx, v := m.ctx, m.voice
	return func() tea.Msg {
		text, err := v.Listen(ctx)
		return transcriptMsg{Text: text, Err: err}
	}
}

func (m *Model) toggleSpeaking() tea.Cmd {
	if m.voice == nil {
		m.errMsg = voice.ErrSynthesisUnavailable.Error()
		return nil
	}
	if m.voice.Speaking() {
		m.voice.CancelSpeech()
		return nil
	}
	if err := m.voice.Speak(m.ctx, m.lastAnswer()); err != nil {
		m.errMsg = err.Error()
		return nil
	}
	m.errMsg = ""
	return m.tick()
}

func (m *Model) tick() tea.Cmd {
	return tea.Tick(voiceTick, func(t time.Time) tea.Msg { return voiceTickMsg(t) })
}

func (m *Model) shutdownVoice() {
	if m.voice == nil {
		return
	}
	m.voice.StopListening()
	m.voice.CancelSpeech()
}

func (m *Model) lastAnswer() string {
	for i := len(m.lines) - 1; i >= 0; i-- {
		if m.lines[i].Role == Bot {
			return m.lines[i].Text
		}
	}
	return ""
}

func voiceError(err error) string {
	var rec *voice.RecognitionError
	if errors.As(err, &rec) {
		return voice.UserMessage(rec)
	}
	return err.Error()
}

func (m *Model) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true
	if m.width == 0 || m.height == 0 {
		return v
	}
	v.SetContent(m.render())
	return v
}

func (m *Model) render() string {
	if layout.IsTooSmall(m.width, m.height) {
		return layout.RenderMinSizeMessage(m.width, m.height)
	}

	header := layout.RenderHeader("AI Learning Assistant", m.status(), m.width)
	footer := layout.RenderFooter(m.keyHints(), m.width)

	contentHeight := layout.ContentHeight(header, footer, m.height)
	return layout.RenderFrame(header, m.renderBody(contentHeight), footer, m.width, m.height)
}

func (m *Model) status() string {
	switch {
	case m.busy.Busy():
		return "thinking..."
	case m.listening:
		return "listening..."
	case m.voice != nil && m.voice.Speaking():
		return "speaking..."
	}
	return ""
}

func (m *Model) keyHints() []layout.KeyHint {
	hints := []layout.KeyHint{{Key: "Enter", Description: "Ask"}}
	if m.voice != nil {
		hints = append(hints,
			layout.KeyHint{Key: "Ctrl+R", Description: "Speak question"},
			layout.KeyHint{Key: "Ctrl+S", Description: "Read answer"},
		)
	}
	return append(hints, layout.KeyHint{Key: "Esc", Description: "Quit"})
}

// renderBody shows the tail of the transcript above the input.
func (m *Model) renderBody(height int) string {
	wrap := lipgloss.NewStyle().Width(m.width - 4)

	var rows []string
	if m.pathTitle != "" {
		rows = append(rows, theme.Hint.Render(fmt.Sprintf("Context: %s", m.pathTitle)), "")
	}
	for _, l := range m.lines {
		label := theme.UserLabel.Render("You")
		if l.Role == Bot {
			label = theme.AssistantLabel.Render("Assistant")
		}
		rows = append(rows, label, wrap.Render(l.Text), "")
	}

	footer := []string{m.input.View()}
	if m.errMsg != "" {
		footer = append(footer, theme.Failure.Render(m.errMsg))
	}

	transcript := strings.Split(strings.Join(rows, "\n"), "\n")
	room := height - len(footer) - 1
	if room < 0 {
		room = 0
	}
	if len(transcript) > room {
		transcript = transcript[len(transcript)-room:]
	}
	return strings.Join(transcript, "\n") + "\n\n" + strings.Join(footer, "\n")
}

// Run starts the assistant program.
func Run(ctx context.Context, a Assistant, v *voice.Coordinator, pathTitle string) error {
	p := tea.NewProgram(New(ctx, a, v, pathTitle))
	_, err := p.Run()
	return err
}
