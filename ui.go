package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	uiview "github.com/arbogit/arbo/ui"
)

type uiMode int

const (
	modeList uiMode = iota
	modeCreate
	modeConfirmRemove
)

var (
	titleStyle            = lipgloss.NewStyle().Foreground(lipgloss.Color("15")).Bold(true)
	selectorHeaderStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("15")).Bold(true)
	selectorNormalStyle   = lipgloss.NewStyle()
	selectorSelectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#2E7D32")).Bold(true)
	selectorDimStyle      = lipgloss.NewStyle().Faint(true)
	secondaryStyle        = lipgloss.NewStyle().Faint(true)
	errStyle              = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
	warnStyle             = lipgloss.NewStyle().Foreground(lipgloss.Color("3")).Bold(true)
)

func viewStyles() uiview.Styles {
	return uiview.Styles{
		Header:    func(s string) string { return selectorHeaderStyle.Render(s) },
		Normal:    func(s string) string { return selectorNormalStyle.Render(s) },
		Selected:  func(s string) string { return selectorSelectedStyle.Render(s) },
		Disabled:  func(s string) string { return selectorDimStyle.Render(s) },
		Secondary: func(s string) string { return secondaryStyle.Render(s) },
	}
}

type snapshotMsg struct {
	records []WorktreeRecord
	main    WorktreeRecord
}

type actionDoneMsg struct {
	note string
	err  error
}

type pickerModel struct {
	engine      *Engine
	records     []WorktreeRecord
	main        WorktreeRecord
	cursor      int
	mode        uiMode
	refreshing  bool
	spinner     spinner.Model
	branchInput textinput.Model
	errMsg      string
	warnMsg     string
	chosenPath  string
}

func newSpinner() spinner.Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#2E7D32"))
	return s
}

func newBranchInput() textinput.Model {
	input := textinput.New()
	input.Placeholder = "new branch name"
	input.CharLimit = 120
	input.Width = 40
	return input
}

func newPickerModel(engine *Engine) pickerModel {
	return pickerModel{
		engine:      engine,
		spinner:     newSpinner(),
		branchInput: newBranchInput(),
		refreshing:  true,
	}
}

func (m pickerModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, refreshCmd(m.engine))
}

func refreshCmd(engine *Engine) tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		if err := engine.Refresh(ctx); err != nil {
			return actionDoneMsg{err: err}
		}
		return snapshotMsg{records: engine.ListWorktrees(), main: engine.ResolveMainWorktree(ctx)}
	}
}

func createCmd(engine *Engine, branch string) tea.Cmd {
	return func() tea.Msg {
		err := engine.CreateWorktree(context.Background(), BranchRef(branch), "", CreateOptions{NewBranch: true})
		if err != nil {
			return actionDoneMsg{err: err}
		}
		return actionDoneMsg{note: "created worktree for " + branch}
	}
}

func removeCmd(engine *Engine, path string, force bool) tea.Cmd {
	return func() tea.Msg {
		err := engine.RemoveWorktree(context.Background(), path, force)
		if err != nil {
			return actionDoneMsg{err: err}
		}
		return actionDoneMsg{note: "removed " + path}
	}
}

func (m pickerModel) rows() []uiview.WorktreeRow {
	rows := make([]uiview.WorktreeRow, 0, len(m.records)+1)
	rows = append(rows, worktreeRow(m.main, true))
	for _, rec := range m.records {
		rows = append(rows, worktreeRow(rec, false))
	}
	return rows
}

func (m pickerModel) selected() (WorktreeRecord, bool) {
	if m.cursor == 0 {
		return m.main, true
	}
	idx := m.cursor - 1
	if idx < 0 || idx >= len(m.records) {
		return WorktreeRecord{}, false
	}
	return m.records[idx], true
}

func (m pickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case snapshotMsg:
		m.records = msg.records
		m.main = msg.main
		m.refreshing = false
		if m.cursor >= len(m.records)+1 {
			m.cursor = len(m.records)
		}
		return m, nil
	case actionDoneMsg:
		m.refreshing = false
		if msg.err != nil {
			if isCancelled(msg.err) {
				return m, nil
			}
			m.errMsg = msg.err.Error()
			return m, nil
		}
		m.errMsg = ""
		m.warnMsg = msg.note
		m.refreshing = true
		return m, refreshCmd(m.engine)
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m pickerModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.mode {
	case modeCreate:
		switch msg.String() {
		case "enter":
			branch := strings.TrimSpace(m.branchInput.Value())
			if branch == "" {
				m.errMsg = "branch name required"
				return m, nil
			}
			m.mode = modeList
			m.refreshing = true
			m.branchInput.Reset()
			return m, createCmd(m.engine, branch)
		case "esc":
			m.mode = modeList
			m.branchInput.Reset()
			return m, nil
		default:
			var cmd tea.Cmd
			m.branchInput, cmd = m.branchInput.Update(msg)
			return m, cmd
		}
	case modeConfirmRemove:
		selected, ok := m.selected()
		if !ok {
			m.mode = modeList
			return m, nil
		}
		switch msg.String() {
		case "y":
			m.mode = modeList
			m.refreshing = true
			return m, removeCmd(m.engine, selected.Path, false)
		case "f":
			m.mode = modeList
			m.refreshing = true
			return m, removeCmd(m.engine, selected.Path, true)
		case "n", "esc":
			m.mode = modeList
			return m, nil
		}
		return m, nil
	}

	switch msg.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.records) {
			m.cursor++
		}
	case "r":
		if !m.refreshing {
			m.refreshing = true
			return m, refreshCmd(m.engine)
		}
	case "c":
		m.mode = modeCreate
		m.errMsg = ""
		m.branchInput.Focus()
		return m, textinput.Blink
	case "d":
		if selected, ok := m.selected(); ok {
			if pathsEqual(selected.Path, m.engine.RepoRoot()) {
				m.errMsg = errMainRepositoryProtected.Error()
				return m, nil
			}
			m.mode = modeConfirmRemove
			m.errMsg = ""
		}
		return m, nil
	case "enter":
		if selected, ok := m.selected(); ok {
			m.chosenPath = selected.Path
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m pickerModel) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("arbo worktrees"))
	if m.refreshing {
		b.WriteString(" " + m.spinner.View())
	}
	b.WriteString("\n\n")
	b.WriteString(uiview.RenderWorktreeSelector(m.rows(), m.cursor, viewStyles()))
	b.WriteString("\n")

	switch m.mode {
	case modeCreate:
		b.WriteString("new branch: " + m.branchInput.View() + "\n")
		b.WriteString(secondaryStyle.Render("enter to create, esc to cancel") + "\n")
	case modeConfirmRemove:
		if selected, ok := m.selected(); ok {
			b.WriteString(warnStyle.Render(fmt.Sprintf("remove %s? y = remove, f = force, n = cancel", selected.DisplayName())) + "\n")
		}
	default:
		b.WriteString(secondaryStyle.Render("enter select · c create · d remove · r refresh · q quit") + "\n")
	}

	if m.errMsg != "" {
		b.WriteString(errStyle.Render(m.errMsg) + "\n")
	} else if m.warnMsg != "" {
		b.WriteString(secondaryStyle.Render(m.warnMsg) + "\n")
	}
	return b.String()
}

func runPicker() error {
	engine, err := newEngineFromCwd()
	if err != nil {
		return err
	}
	program := tea.NewProgram(newPickerModel(engine))
	finalModel, err := program.Run()
	if err != nil {
		return err
	}
	if m, ok := finalModel.(pickerModel); ok && m.chosenPath != "" {
		fmt.Println(m.chosenPath)
	}
	return nil
}
