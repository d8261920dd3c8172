package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// configInitModel is the first-run prompt for the worktree naming template.
// Remaining fields keep their defaults; the config file is there to edit.
type configInitModel struct {
	input textinput.Model
	err   string
	done  bool
}

func newConfigInitModel() configInitModel {
	ti := textinput.New()
	current := defaultWorktreeTemplate
	if cfg, err := LoadConfig(); err == nil && strings.TrimSpace(cfg.WorktreeTemplate) != "" {
		current = cfg.WorktreeTemplate
	}
	ti.Placeholder = defaultWorktreeTemplate
	ti.SetValue(current)
	ti.CharLimit = 200
	ti.Width = 40
	ti.Focus()
	return configInitModel{input: ti}
}

func (m configInitModel) Init() tea.Cmd {
	return tea.Batch(tea.ExitAltScreen, tea.ClearScreen)
}

func (m configInitModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit
		case "enter":
			value := strings.TrimSpace(m.input.Value())
			if value == "" {
				value = defaultWorktreeTemplate
			}
			if err := SaveConfig(Config{WorktreeTemplate: value}); err != nil {
				m.err = err.Error()
				return m, nil
			}
			m.done = true
			return m, tea.Quit
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m configInitModel) View() string {
	if m.done {
		return ""
	}
	var b strings.Builder
	b.WriteString(titleStyle.Render("arbo"))
	b.WriteString("\n\n")
	b.WriteString("Worktree location template ({repo} and {branch} expand):\n")
	b.WriteString(m.input.View())
	b.WriteString("\n")
	b.WriteString(secondaryStyle.Render("Press enter to save, esc to cancel."))
	b.WriteString("\n")
	if m.err != "" {
		b.WriteString("\n")
		b.WriteString(errStyle.Render(fmt.Sprintf("Error: %s", m.err)))
		b.WriteString("\n")
	}
	return b.String()
}

func runConfigInitUI() error {
	if testModeEnabled() {
		return SaveConfig(DefaultConfig())
	}
	_, err := tea.NewProgram(newConfigInitModel()).Run()
	return err
}
