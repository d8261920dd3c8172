package main

import (
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

func arboHuhTheme() *huh.Theme {
	t := *huh.ThemeCharm()
	t.Focused.FocusedButton = t.Focused.FocusedButton.Background(lipgloss.Color("#2E7D32"))
	t.Focused.Next = t.Focused.FocusedButton
	return &t
}

func newConfirmForm(title string, description string, result *bool) *huh.Form {
	confirm := huh.NewConfirm().
		Title(title).
		Description(description).
		Affirmative("Yes").
		Negative("No").
		Value(result)

	return huh.NewForm(huh.NewGroup(confirm)).
		WithTheme(arboHuhTheme()).
		WithShowHelp(false)
}

// confirmPrompt runs an interactive yes/no form. Test mode answers yes so
// scripted runs never block on a terminal.
func confirmPrompt(title string, description string) (bool, error) {
	if testModeEnabled() {
		return true, nil
	}
	result := false
	if err := newConfirmForm(title, description, &result).Run(); err != nil {
		return false, err
	}
	return result, nil
}
