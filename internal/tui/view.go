package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/truncate"
)

var (
	headerStyle  = lipgloss.NewStyle().Bold(true)
	cursorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	activeStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	statusStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	legendStyle  = lipgloss.NewStyle().Faint(true)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

const legend = "↑/↓ move · space select · a add · d delete · q quit"

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(headerStyle.Render("claspx accounts"))
	b.WriteString("\n\n")

	if m.loadErr != nil {
		b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.loadErr)))
		b.WriteString("\n")
		return b.String()
	}

	if len(m.entries) == 0 {
		b.WriteString("No accounts yet. Press 'a' to add one.\n")
	}
	for i, e := range m.entries {
		cursor := "  "
		if i == m.cursor {
			cursor = cursorStyle.Render("> ")
		}
		checkbox := "[ ]"
		if e.selected {
			checkbox = "[x]"
		}
		name := truncate.StringWithTail(e.name, uint(max(m.width-12, 16)), "…")
		line := fmt.Sprintf("%s%s %s", cursor, checkbox, name)
		if e.name == m.active {
			line += activeStyle.Render(" (active)")
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	switch m.mode {
	case modeAdding:
		b.WriteString("\nNew account name (enter to log in, esc to cancel):\n")
		b.WriteString(m.input.View())
		b.WriteString("\n")
	case modeConfirmDelete:
		b.WriteString("\n")
		if m.activeSelected() {
			b.WriteString(warningStyle.Render(fmt.Sprintf("WARNING: %q is the active account for this project.", m.active)))
			b.WriteString("\n")
		}
		b.WriteString(fmt.Sprintf("Delete %d selected account(s)? (y/n)\n", len(m.selectedNames())))
	}

	if m.status != "" {
		b.WriteString("\n")
		b.WriteString(statusStyle.Render(m.status))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(legendStyle.Render(legend))
	b.WriteString("\n")
	return b.String()
}
