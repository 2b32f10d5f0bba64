package tui

import (
	"errors"
	"os"
	"os/exec"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/claspx/cli/internal/interaction"
)

// ErrNotInteractive is returned when the manager is started without a
// terminal attached.
var ErrNotInteractive = errors.New("the account manager requires an interactive terminal")

// Run starts the account manager. loginCommand builds the external login
// invocation; it runs with the terminal released and the manager resumes
// once it exits. active is the project's configured account, if any.
func Run(store Store, prov Provisioner, loginCommand func() *exec.Cmd, active string) error {
	if !interaction.IsTerminal(os.Stdin) {
		return ErrNotInteractive
	}

	loginCmd := func(name string) tea.Cmd {
		return tea.ExecProcess(loginCommand(), func(err error) tea.Msg {
			return loginDoneMsg{name: name, err: err}
		})
	}

	m := NewModel(store, prov, loginCmd, active)
	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return err
	}
	return nil
}
