package tui

import (
	"context"
	"time"

	"github.com/Veraticus/constructo/internal/engine"
	"github.com/Veraticus/constructo/internal/tui/themes"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// Phase is the lifecycle stage of a run as seen by the view.
type Phase int

// Phases.
const (
	PhaseRunning Phase = iota
	PhaseInterrupting
	PhaseCanceling
	PhaseDone
)

const (
	barPadding  = 4
	maxBarWidth = 80
)

// Model holds the progress view state.
type Model struct {
	startTime   time.Time
	theme       themes.Theme
	err         error
	now         func() time.Time
	onInterrupt func()
	onCancel    context.CancelFunc
	result      *engine.ClassifyResult
	title       string
	keymap      KeyMap
	help        help.Model
	bar         progress.Model
	spinner     spinner.Model
	done        int
	total       int
	phase       Phase
}

// NewModel builds the view. cancel aborts the run outright on a second
// interrupt request.
func NewModel(cfg Config, cancel context.CancelFunc) Model {
	width := cfg.Width
	if width <= 0 || width > maxBarWidth {
		width = maxBarWidth
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	return Model{
		startTime:   now(),
		theme:       cfg.Theme,
		now:         now,
		onInterrupt: cfg.Interrupt,
		onCancel:    cancel,
		title:       cfg.Title,
		keymap:      DefaultKeyMap(),
		help:        help.New(),
		bar: progress.New(
			progress.WithGradient(cfg.Theme.ProgressStart, cfg.Theme.ProgressEnd),
			progress.WithWidth(width),
		),
		spinner: spinner.New(
			spinner.WithSpinner(spinner.Dot),
			spinner.WithStyle(cfg.Theme.StatusInfo),
		),
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.bar.Width = min(max(msg.Width-barPadding, 10), maxBarWidth)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case ProgressMsg:
		m.done = msg.Done
		m.total = msg.Total
		return m, nil

	case FinishedMsg:
		m.result = msg.Result
		m.err = msg.Err
		m.phase = PhaseDone
		if msg.Result != nil {
			m.done = msg.Result.Recorded
			m.total = msg.Result.Total
		}
		return m, tea.Quit

	case spinner.TickMsg:
		if m.phase == PhaseDone {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.phase == PhaseDone {
		if key.Matches(msg, m.keymap.Close) {
			return m, tea.Quit
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keymap.ForceQuit):
		if m.phase == PhaseRunning {
			m.requestInterrupt()
			return m, nil
		}
		if m.phase == PhaseInterrupting && m.onCancel != nil {
			m.onCancel()
			m.phase = PhaseCanceling
		}
	case key.Matches(msg, m.keymap.Interrupt):
		if m.phase == PhaseRunning {
			m.requestInterrupt()
		}
	}
	return m, nil
}

func (m *Model) requestInterrupt() {
	if m.onInterrupt != nil {
		m.onInterrupt()
	}
	m.phase = PhaseInterrupting
}

// Phase returns the current lifecycle stage.
func (m Model) Phase() Phase {
	return m.phase
}

// Percent is the completed fraction in [0, 1].
func (m Model) Percent() float64 {
	if m.total <= 0 {
		return 0
	}
	p := float64(m.done) / float64(m.total)
	if p > 1 {
		return 1
	}
	return p
}

// Result returns what the classification goroutine reported.
func (m Model) Result() (*engine.ClassifyResult, error) {
	return m.result, m.err
}
