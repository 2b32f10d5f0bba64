// Package tui implements the interactive account manager: a keyboard
// driven list over the vault with add and delete flows.
package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

type mode int

const (
	modeListing mode = iota
	modeAdding
	modeConfirmDelete
)

func (m mode) String() string {
	switch m {
	case modeListing:
		return "listing"
	case modeAdding:
		return "adding"
	case modeConfirmDelete:
		return "confirm_delete"
	default:
		return "unknown"
	}
}

// Store is the vault surface the manager drives.
type Store interface {
	List() ([]string, error)
	Delete(name string) error
}

// Provisioner validates proposed names and commits the credentials the
// login flow leaves in the active slot.
type Provisioner interface {
	Validate(name string) error
	Commit(name string) error
}

type entry struct {
	name     string
	selected bool
}

// loginDoneMsg arrives when the external login subprocess finishes.
type loginDoneMsg struct {
	name string
	err  error
}

// Model is the account manager state machine. All state lives here; the
// entry list is rebuilt from the store after every mutation so it never
// diverges from on-disk reality.
type Model struct {
	store    Store
	prov     Provisioner
	loginCmd func(name string) tea.Cmd
	active   string // account configured for the current project, may be empty

	mode    mode
	entries []entry
	cursor  int
	status  string
	loadErr error
	input   textinput.Model
	width   int
}

func NewModel(store Store, prov Provisioner, loginCmd func(string) tea.Cmd, active string) Model {
	input := textinput.New()
	input.Placeholder = "account name"
	input.CharLimit = 64

	m := Model{
		store:    store,
		prov:     prov,
		loginCmd: loginCmd,
		active:   active,
		input:    input,
		width:    80,
	}
	m.reload()
	return m
}

// reload rebuilds the entry list from the store and re-clamps the cursor.
// Selection flags are intentionally reset: after add/delete the set of
// names may have shifted under them.
func (m *Model) reload() {
	names, err := m.store.List()
	if err != nil {
		m.loadErr = err
		return
	}
	m.loadErr = nil
	entries := make([]entry, len(names))
	for i, name := range names {
		entries[i] = entry{name: name}
	}
	m.entries = entries
	if m.cursor > len(entries)-1 {
		m.cursor = len(entries) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m *Model) selectedNames() []string {
	var names []string
	for _, e := range m.entries {
		if e.selected {
			names = append(names, e.name)
		}
	}
	return names
}

func (m *Model) activeSelected() bool {
	if m.active == "" {
		return false
	}
	for _, name := range m.selectedNames() {
		if name == m.active {
			return true
		}
	}
	return false
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case loginDoneMsg:
		m.mode = modeListing
		switch {
		case msg.err != nil:
			m.status = fmt.Sprintf("Login failed: %v", msg.err)
		default:
			if err := m.prov.Commit(msg.name); err != nil {
				m.status = fmt.Sprintf("Could not save account %q: %v", msg.name, err)
			} else {
				m.status = fmt.Sprintf("Added account %q", msg.name)
			}
		}
		m.reload()
		return m, nil

	case tea.KeyMsg:
		// Status messages live for exactly one redraw.
		m.status = ""
		switch m.mode {
		case modeAdding:
			return m.updateAdding(msg)
		case modeConfirmDelete:
			return m.updateConfirmDelete(msg)
		default:
			return m.updateListing(msg)
		}
	}
	return m, nil
}

func (m Model) updateListing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.entries)-1 {
			m.cursor++
		}
	case " ":
		if len(m.entries) > 0 {
			m.entries[m.cursor].selected = !m.entries[m.cursor].selected
		}
	case "a":
		m.mode = modeAdding
		m.input.Reset()
		return m, m.input.Focus()
	case "d":
		if len(m.selectedNames()) == 0 {
			m.status = "No accounts selected. Press space to select first."
			return m, nil
		}
		m.mode = modeConfirmDelete
	case "q", "esc", "ctrl+c":
		return m, tea.Quit
	}
	return m, nil
}

func (m Model) updateAdding(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.mode = modeListing
		return m, nil
	case "enter":
		name := m.input.Value()
		if err := m.prov.Validate(name); err != nil {
			m.status = err.Error()
			return m, nil
		}
		// The login subprocess takes over the terminal; the model resumes
		// on loginDoneMsg.
		return m, m.loginCmd(name)
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) updateConfirmDelete(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		deleted := 0
		for _, name := range m.selectedNames() {
			if err := m.store.Delete(name); err != nil {
				m.status = fmt.Sprintf("Failed to delete %q: %v", name, err)
				m.mode = modeListing
				m.reload()
				return m, nil
			}
			deleted++
		}
		m.status = fmt.Sprintf("Deleted %d account(s)", deleted)
		m.mode = modeListing
		m.reload()
	case "n", "N", "esc", "q":
		m.status = "Delete cancelled"
		m.mode = modeListing
	}
	return m, nil
}
