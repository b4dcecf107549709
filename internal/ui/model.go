package ui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/olivier-w/sugarviz/internal/analysis"
	"github.com/olivier-w/sugarviz/internal/visualizer"
)

const (
	defaultWidth  = 80
	defaultHeight = 24
	// chromeLines is the height of everything around the visualizer.
	chromeLines = 11
)

// Options configures the TUI.
type Options struct {
	Title  string
	Source string
	FPS    int
	// Mode indexes visualizer.Modes.
	Mode int
	// SourceDone closes when a finite source has been fully played. Nil for
	// live devices.
	SourceDone <-chan struct{}
}

// Model is the Bubbletea model for the sugarviz TUI. It renders one frame per
// tick from whatever the analysis pipeline last published.
type Model struct {
	pipeline *analysis.Pipeline
	reactor  *visualizer.Reactor
	modes    []visualizer.Visualizer
	mode     int
	frame    visualizer.Frame

	level progress.Model
	help  help.Model
	keys  keyMap

	title      string
	source     string
	fps        int
	sourceDone <-chan struct{}

	width    int
	height   int
	quitting bool

	kicks     uint64
	kickTimer int

	started time.Time
	now     time.Time

	rateSince   time.Time
	rateWindows uint64
	rate        float64
}

// New creates a Model consuming p's snapshots.
func New(p *analysis.Pipeline, opts Options) Model {
	fps := opts.FPS
	if fps < 1 {
		fps = 30
	}
	modes := visualizer.Modes()
	mode := opts.Mode
	if mode < 0 || mode >= len(modes) {
		mode = 0
	}
	return Model{
		pipeline:   p,
		reactor:    visualizer.NewReactor(p.Snapshots(), fps),
		modes:      modes,
		mode:       mode,
		level:      progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage()),
		help:       help.New(),
		keys:       newKeyMap(),
		title:      opts.Title,
		source:     opts.Source,
		fps:        fps,
		sourceDone: opts.SourceDone,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		frameCmd(m.fps),
		waitFor(m.sourceDone, sourceEndedMsg{}),
		waitFor(m.pipeline.Done(), pipelineDoneMsg{}),
		tea.SetWindowTitle(windowTitle(m.title)),
	)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.NextViz):
			m.mode = (m.mode + 1) % len(m.modes)
			m.renderViz()
		}
		return m, nil

	case frameMsg:
		m.now = time.Time(msg)
		if m.started.IsZero() {
			m.started = m.now
		}
		m.frame = m.reactor.Poll()
		if m.frame.Kicked {
			m.kicks++
			m.kickTimer = kickFlash
		} else if m.kickTimer > 0 {
			m.kickTimer--
		}
		m.updateRate(time.Time(msg))
		m.renderViz()
		return m, frameCmd(m.fps)

	case sourceEndedMsg, pipelineDoneMsg:
		m.quitting = true
		return m, tea.Quit

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.level.Width = max(10, m.width-16)
		m.help.Width = m.width
		m.renderViz()
		return m, nil
	}

	return m, nil
}

// updateRate refreshes the analyzer cadence about once a second.
func (m *Model) updateRate(now time.Time) {
	windows := m.pipeline.Windows()
	if m.rateSince.IsZero() {
		m.rateSince, m.rateWindows = now, windows
		return
	}
	elapsed := now.Sub(m.rateSince)
	if elapsed < time.Second {
		return
	}
	m.rate = float64(windows-m.rateWindows) / elapsed.Seconds()
	m.rateSince, m.rateWindows = now, windows
}

func (m *Model) renderViz() {
	w, h := m.size()
	m.modes[m.mode].Update(m.frame, w-2, max(4, h-chromeLines))
}

func (m Model) size() (int, int) {
	w, h := m.width, m.height
	if w < 30 {
		w = defaultWidth
	}
	if h < chromeLines+4 {
		h = defaultHeight
	}
	return w, h
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}
	w, _ := m.size()

	header := headerStyle.Render("sugarviz") + "  " + statusStyle.Render(m.modes[m.mode].Name())
	title := titleStyle.Render(m.title)
	source := sourceStyle.Render(m.source)

	volStr := renderVolumePercent(m.frame.Level())
	volumeLine := m.level.ViewAs(m.frame.Level()) + " " + statusStyle.Render(volStr)

	state := "live"
	switch {
	case m.frame.Closed:
		state = "stopped"
	case m.frame.Stale:
		state = "waiting"
	}
	leftText := fmt.Sprintf("● %s %s  %s", state, formatDuration(m.now.Sub(m.started)), renderCadence(m.rate))
	rightText := fmt.Sprintf("kicks %d  dropped %d", m.kicks, m.pipeline.Publisher().Superseded())
	kick := ""
	if m.kickTimer > 0 {
		kick = "  " + kickStyle.Render("KICK")
	}
	gap := w - lipgloss.Width(leftText) - lipgloss.Width(rightText) - lipgloss.Width(kick) - 4
	statusLine := statusStyle.Render(leftText) + kick + spaces(max(2, gap)) + statusStyle.Render(rightText)

	lines := "\n"
	lines += "  " + header + "\n"
	lines += "  " + title + "\n"
	lines += "  " + source + "\n"
	lines += "\n"
	lines += padLines(m.modes[m.mode].View()) + "\n"
	lines += "\n"
	lines += "  " + volumeLine + "\n"
	lines += "  " + statusLine + "\n"
	lines += "\n"
	lines += "  " + m.help.View(m.keys) + "\n"

	return lines
}

func windowTitle(title string) string {
	return "♪ " + title + " · sugarviz"
}
