package tui

import "github.com/charmbracelet/lipgloss"

// Styles collects the lipgloss styles for the chat view.
type Styles struct {
	Header    lipgloss.Style
	UserLabel lipgloss.Style
	BotLabel  lipgloss.Style
	User      lipgloss.Style
	Bot       lipgloss.Style
	System    lipgloss.Style
	Error     lipgloss.Style
	Typing    lipgloss.Style
	Spinner   lipgloss.Style
	Prompt    lipgloss.Style
	Help      lipgloss.Style
}

// DefaultStyles returns the wuffchat palette.
func DefaultStyles() Styles {
	return Styles{
		Header:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("215")).Padding(0, 1),
		UserLabel: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		BotLabel:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("215")),
		User:      lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		Bot:       lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		System:    lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("245")),
		Error:     lipgloss.NewStyle().Foreground(lipgloss.Color("203")),
		Typing:    lipgloss.NewStyle().Faint(true),
		Spinner:   lipgloss.NewStyle().Foreground(lipgloss.Color("215")),
		Prompt:    lipgloss.NewStyle().Foreground(lipgloss.Color("215")),
		Help:      lipgloss.NewStyle().Faint(true),
	}
}
