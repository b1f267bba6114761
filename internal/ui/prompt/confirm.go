// Package prompt provides small interactive terminal prompts.
package prompt

import (
	"fmt"
	"os"

	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/colorprofile"
)

// ConfirmResult holds the result of a confirmation prompt.
type ConfirmResult struct {
	Confirmed bool
	Cancelled bool
}

type confirmModel struct {
	lines     []string
	prompt    string
	confirmed bool
	done      bool
	cancelled bool
}

func (m confirmModel) Init() tea.Cmd {
	return nil
}

func (m confirmModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyPressMsg:
		switch msg.String() {
		case "y", "Y":
			m.confirmed = true
			m.done = true
			return m, tea.Quit
		case "n", "N", "enter":
			m.confirmed = false
			m.done = true
			return m, tea.Quit
		case "ctrl+c", "q", "esc":
			m.cancelled = true
			m.done = true
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m confirmModel) View() tea.View {
	if m.done {
		return tea.NewView("")
	}
	view := ""
	for _, l := range m.lines {
		view += l + "\n"
	}
	return tea.NewView(fmt.Sprintf("%s%s [y/N] ", view, m.prompt))
}

// Confirm shows the given detail lines followed by a yes/no prompt and
// returns the user's choice. Defaults to "no" on enter, reports Cancelled
// on ctrl+c/q/esc so callers can abort rather than treat it as a decline.
func Confirm(prompt string, lines ...string) (ConfirmResult, error) {
	model := confirmModel{prompt: prompt, lines: lines}
	profile := colorprofile.Detect(os.Stderr, os.Environ())
	p := tea.NewProgram(model, tea.WithOutput(os.Stderr), tea.WithColorProfile(profile))
	finalModel, err := p.Run()
	if err != nil {
		return ConfirmResult{}, err
	}
	m := finalModel.(confirmModel)
	return ConfirmResult{Confirmed: m.confirmed, Cancelled: m.cancelled}, nil
}
