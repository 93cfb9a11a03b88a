package simtui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Snapshot is a point-in-time view of one engine's running statistics.
type Snapshot struct {
	Engine                    string
	TotalPoints               int64
	TotalWrites               int64
	AverageWriteAmplification float64
	LastFanin                 int
	CyclesCompleted           int
}

// StatsProvider supplies the dashboard's latest Snapshot on every tick.
type StatsProvider interface {
	Snapshot() Snapshot
}

type keyMap struct {
	Quit key.Binding
}

var keys = keyMap{
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

type tickMsg time.Time

func tickCmd() tea.Cmd {
	return tea.Tick(500*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Model is the bubbletea model backing the dashboard.
type Model struct {
	provider  StatsProvider
	snapshot  Snapshot
	startTime time.Time
	width     int
}

// NewModel builds a dashboard model polling provider for updates.
func NewModel(provider StatsProvider) Model {
	return Model{
		provider:  provider,
		snapshot:  provider.Snapshot(),
		startTime: time.Now(),
	}
}

// Init satisfies tea.Model.
func (m Model) Init() tea.Cmd {
	return tickCmd()
}

// Update satisfies tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
	case tickMsg:
		m.snapshot = m.provider.Snapshot()
		return m, tickCmd()
	case tea.KeyMsg:
		if key.Matches(msg, keys.Quit) {
			return m, tea.Quit
		}
	}
	return m, nil
}

// View satisfies tea.Model.
func (m Model) View() string {
	uptime := time.Since(m.startTime).Round(time.Second)
	s := m.snapshot

	stats := fmt.Sprintf(
		"Engine:      %s\nUptime:      %s\nPoints:      %d\nWrites:      %d\nWrite amp:   %.3f\nLast fanin:  %d\nCycles:      %d",
		s.Engine, uptime, s.TotalPoints, s.TotalWrites, s.AverageWriteAmplification, s.LastFanin, s.CyclesCompleted,
	)

	title := titleStyle.Render("write-amplification simulator")
	box := statsBoxStyle.Render(stats)
	help := helpStyle.Render("q: quit")

	return lipgloss.JoinVertical(lipgloss.Left, title, contentStyle.Render(box), help)
}

// Run starts the dashboard in the terminal's alternate screen buffer and
// blocks until the user quits.
func Run(provider StatsProvider) error {
	_, err := tea.NewProgram(NewModel(provider), tea.WithAltScreen()).Run()
	return err
}
