package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/wuffchat/wuffchat-cli/internal/conversation"
)

func TestApplyEventFoldsViewState(t *testing.T) {
	m := New(nil, nil)

	m.applyEvent(conversation.StateChanged{State: conversation.StateIdle})
	m.applyEvent(conversation.EntryAppended{Entry: conversation.Entry{Text: "Hallo", Role: conversation.RoleBot}})
	m.applyEvent(conversation.TypingChanged{Typing: true})

	if m.state != conversation.StateIdle {
		t.Fatalf("state not folded: %v", m.state)
	}
	if len(m.history) != 1 || m.history[0].Text != "Hallo" {
		t.Fatalf("history not folded: %+v", m.history)
	}
	if !m.typing {
		t.Fatal("typing flag not folded")
	}

	m.applyEvent(conversation.HistoryReplaced{Entries: nil})
	if len(m.history) != 0 {
		t.Fatal("history replacement not folded")
	}
}

func TestSubmitBlockedWhileNotIdle(t *testing.T) {
	m := New(nil, nil)
	m.state = conversation.StateAwaitingResponse
	m.textinput.SetValue("hallo")

	_, cmd := m.handleSubmit()
	if cmd != nil {
		t.Fatal("submission must be blocked while a turn is in flight")
	}
}

func TestSubmitIgnoresWhitespace(t *testing.T) {
	m := New(nil, nil)
	m.state = conversation.StateIdle
	m.textinput.SetValue("   ")

	_, cmd := m.handleSubmit()
	if cmd != nil {
		t.Fatal("whitespace input must not produce a command")
	}
}

func TestRenderEntryUnknownRoleFallsBack(t *testing.T) {
	m := New(nil, nil)

	out := m.renderEntry(conversation.Entry{Text: "???", Role: conversation.Role("mystery")})
	if out == "" {
		t.Fatal("unknown roles must still render")
	}
}

func TestQuitKey(t *testing.T) {
	m := New(nil, nil)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	if cmd == nil {
		t.Fatal("ctrl+c should produce a quit command")
	}
}
