// Package tui implements the interactive chat interface using bubbletea.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/wuffchat/wuffchat-cli/internal/conversation"
)

// eventMsg wraps a controller event for the bubbletea update loop.
type eventMsg struct{ ev conversation.Event }

// Model is the bubbletea model for the chat view. It mirrors the
// controller's transcript locally and owns turn serialization: Enter only
// submits while the controller sits in Idle.
type Model struct {
	ctrl   *conversation.Controller
	events <-chan conversation.Event

	textinput textinput.Model
	viewport  viewport.Model
	spinner   spinner.Model
	styles    Styles

	history []conversation.Entry
	typing  bool
	state   conversation.State

	width  int
	height int
	ready  bool
}

// New builds the chat model. The events channel must be fed by the
// controller's listener.
func New(ctrl *conversation.Controller, events <-chan conversation.Event) Model {
	ti := textinput.New()
	ti.Placeholder = "Schreib dem DogBot... (Enter zum Senden, Ctrl+C zum Beenden)"
	ti.Focus()
	ti.Prompt = "│ "
	ti.CharLimit = 2048
	ti.Width = 80

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	vp := viewport.New(80, 20)
	vp.SetContent("")

	styles := DefaultStyles()
	ti.PromptStyle = styles.Prompt
	sp.Style = styles.Spinner

	return Model{
		ctrl:      ctrl,
		events:    events,
		textinput: ti,
		viewport:  vp,
		spinner:   sp,
		styles:    styles,
		state:     conversation.StateUninitialized,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		textinput.Blink,
		m.spinner.Tick,
		m.bootstrapCmd(),
		m.waitForEvent(),
	)
}

func (m Model) bootstrapCmd() tea.Cmd {
	ctrl := m.ctrl
	return func() tea.Msg {
		ctrl.Bootstrap(context.Background())
		return nil
	}
}

func (m Model) waitForEvent() tea.Cmd {
	events := m.events
	return func() tea.Msg {
		return eventMsg{ev: <-events}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var (
		tiCmd tea.Cmd
		vpCmd tea.Cmd
		spCmd tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit

		case tea.KeyCtrlN:
			// Fresh conversation, any time.
			return m, m.bootstrapCmd()

		case tea.KeyEnter:
			return m.handleSubmit()
		}

		m.textinput, tiCmd = m.textinput.Update(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		headerHeight := 2
		footerHeight := 2
		inputHeight := 2
		typingHeight := 1

		contentHeight := msg.Height - headerHeight - footerHeight - inputHeight - typingHeight
		if !m.ready {
			m.viewport = viewport.New(msg.Width-2, contentHeight)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width - 2
			m.viewport.Height = contentHeight
		}
		m.textinput.Width = msg.Width - 6
		m.viewport.SetContent(m.renderHistory())
		m.viewport.GotoBottom()

	case spinner.TickMsg:
		if m.busy() {
			m.spinner, spCmd = m.spinner.Update(msg)
			return m, spCmd
		}

	case eventMsg:
		m.applyEvent(msg.ev)
		m.viewport.SetContent(m.renderHistory())
		m.viewport.GotoBottom()
		cmds := []tea.Cmd{m.waitForEvent()}
		if m.busy() {
			cmds = append(cmds, m.spinner.Tick)
		}
		return m, tea.Batch(cmds...)
	}

	m.viewport, vpCmd = m.viewport.Update(msg)

	return m, tea.Batch(tiCmd, vpCmd, spCmd)
}

// applyEvent folds one controller event into the local view state.
func (m *Model) applyEvent(ev conversation.Event) {
	switch ev := ev.(type) {
	case conversation.EntryAppended:
		m.history = append(m.history, ev.Entry)
	case conversation.HistoryReplaced:
		m.history = ev.Entries
	case conversation.TypingChanged:
		m.typing = ev.Typing
	case conversation.StateChanged:
		m.state = ev.State
	}
}

// handleSubmit sends the current input as one turn. Turns are serialized
// here: submission is only allowed while the controller is idle.
func (m Model) handleSubmit() (tea.Model, tea.Cmd) {
	if m.state != conversation.StateIdle {
		return m, nil
	}
	text := m.textinput.Value()
	if strings.TrimSpace(text) == "" {
		return m, nil
	}
	m.textinput.Reset()

	ctrl := m.ctrl
	return m, func() tea.Msg {
		ctrl.SubmitTurn(context.Background(), text)
		return nil
	}
}

// busy reports whether a spinner should animate: a turn is in flight or
// the typing indicator is showing.
func (m Model) busy() bool {
	return m.typing || m.state == conversation.StateAwaitingResponse || m.state == conversation.StateBootstrapping
}

func (m Model) renderHistory() string {
	var b strings.Builder
	for _, entry := range m.history {
		b.WriteString(m.renderEntry(entry))
		b.WriteString("\n\n")
	}
	return b.String()
}

func (m Model) renderEntry(entry conversation.Entry) string {
	width := m.viewport.Width
	if width <= 0 {
		width = 78
	}

	switch entry.Role {
	case conversation.RoleUser:
		return m.styles.UserLabel.Render("Du") + "\n" +
			m.styles.User.Width(width).Render(entry.Text)
	case conversation.RoleSystem:
		return m.styles.System.Width(width).Render(entry.Text)
	case conversation.RoleError:
		return m.styles.Error.Width(width).Render(entry.Text)
	default:
		// Bot and any unknown sender render the same generic way.
		return m.styles.BotLabel.Render("DogBot") + "\n" +
			m.styles.Bot.Width(width).Render(entry.Text)
	}
}

func (m Model) View() string {
	if !m.ready {
		return "Lade wuffchat..."
	}

	header := m.styles.Header.Render("🐶 wuffchat")

	typingRow := " "
	switch {
	case m.typing:
		typingRow = fmt.Sprintf("%s %s", m.spinner.View(), m.styles.Typing.Render("DogBot tippt..."))
	case m.state == conversation.StateAwaitingResponse:
		typingRow = fmt.Sprintf("%s %s", m.spinner.View(), m.styles.Typing.Render("DogBot denkt nach..."))
	case m.state == conversation.StateBootstrapping:
		typingRow = fmt.Sprintf("%s %s", m.spinner.View(), m.styles.Typing.Render("Verbinde..."))
	}

	help := m.styles.Help.Render("Enter: senden · Ctrl+N: neue Unterhaltung · Ctrl+C: beenden")

	return fmt.Sprintf("%s\n%s\n%s\n%s\n%s",
		header,
		m.viewport.View(),
		typingRow,
		m.textinput.View(),
		help,
	)
}
