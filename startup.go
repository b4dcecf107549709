package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/olivier-w/sugarviz/internal/config"
)

type sourceOpenedMsg openedSource

// startupModel shows a spinner while the capture source opens. PortAudio
// device enumeration can take a noticeable moment on some hosts.
type startupModel struct {
	spinner spinner.Model
	label   string
	open    func() openedSource
	result  openedSource
	done    bool
}

func newStartupModel(label string, open func() openedSource) startupModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#555555", Dark: "#AAAAAA"})
	return startupModel{spinner: s, label: label, open: open}
}

func (m startupModel) Init() tea.Cmd {
	open := m.open
	return tea.Batch(m.spinner.Tick, func() tea.Msg {
		return sourceOpenedMsg(open())
	})
}

func (m startupModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case sourceOpenedMsg:
		m.result = openedSource(msg)
		m.done = true
		return m, tea.Quit
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			m.result.cancelled = true
			m.done = true
			return m, tea.Quit
		}
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m startupModel) View() string {
	if m.done {
		return ""
	}
	return fmt.Sprintf("\n  %s %s\n", m.spinner.View(), m.label)
}

// runStartup opens the configured source behind a spinner. A source that
// finishes opening after the user cancelled is closed.
func runStartup(ctx context.Context, cfg config.Config) (openedSource, error) {
	label := "Opening input device…"
	if cfg.File != "" {
		label = "Opening " + cfg.File + "…"
	}

	results := make(chan openedSource, 1)
	model := newStartupModel(label, func() openedSource {
		o := openSource(cfg)
		results <- o
		return o
	})

	final, err := tea.NewProgram(model, tea.WithContext(ctx)).Run()
	if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return openedSource{}, err
	}

	sm, ok := final.(startupModel)
	if ok && sm.done && !sm.result.cancelled {
		return sm.result, nil
	}

	// Cancelled: whatever open was in flight must be released.
	go func() {
		if o := <-results; o.err == nil {
			o.src.Close()
		}
	}()
	return openedSource{cancelled: true}, nil
}
