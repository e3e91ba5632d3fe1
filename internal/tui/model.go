// Package tui renders a live terminal view of the daemon status file.
package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"loadwatch/internal/logging"
	"loadwatch/internal/state"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("62")).
			Padding(0, 1)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")).
			Width(14)

	lowStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	highStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	dimStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(1, 2)
)

// tickMsg drives the periodic status refresh
type tickMsg time.Time

// Model represents the watch view state
type Model struct {
	logger   *logging.Logger
	manager  *state.Manager
	status   state.Status
	loaded   bool
	loadErr  string
	quitting bool
}

// NewModel creates a watch model reading from the given status file
func NewModel(statusPath string, logger *logging.Logger) Model {
	m := Model{
		logger:  logger,
		manager: state.NewManager(statusPath, logger),
	}
	m.refresh()
	return m
}

// refresh reloads the status snapshot from disk
func (m *Model) refresh() {
	status, err := m.manager.Load()
	if err != nil {
		m.loadErr = err.Error()
		return
	}
	m.status = status
	m.loaded = true
	m.loadErr = ""
}

// Init starts the refresh ticker
func (m Model) Init() tea.Cmd {
	return tickCmd()
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		}

	case tickMsg:
		m.refresh()
		return m, tickCmd()
	}

	return m, nil
}

// View renders the watch screen
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	b.WriteString(titleStyle.Render("loadwatch"))
	b.WriteString("\n\n")

	if !m.loaded {
		b.WriteString("Waiting for status file...\n")
		if m.loadErr != "" {
			b.WriteString(dimStyle.Render(m.loadErr) + "\n")
		}
		b.WriteString("\n" + dimStyle.Render("q to quit"))
		return boxStyle.Render(b.String())
	}

	verdict := highStyle.Render("HIGH")
	if m.status.LowLoad {
		verdict = lowStyle.Render("low")
	}

	b.WriteString(labelStyle.Render("Load (5 min)") + fmt.Sprintf("%.2f  %s", m.status.Load, verdict) + "\n")
	b.WriteString(labelStyle.Render("Threshold") + fmt.Sprintf("%.2f", m.status.Threshold) + "\n")
	b.WriteString(labelStyle.Render("Streak") + renderStreak(m.status.Streak, m.status.Required) + "\n")
	b.WriteString(labelStyle.Render("Suspends") + fmt.Sprintf("%d", m.status.Suspends) + "\n")
	b.WriteString(labelStyle.Render("Updated") + renderAge(time.Since(m.status.Timestamp)) + "\n")

	if m.loadErr != "" {
		b.WriteString("\n" + dimStyle.Render("refresh error: "+m.loadErr) + "\n")
	}

	b.WriteString("\n" + dimStyle.Render("q to quit"))

	return boxStyle.Render(b.String())
}

// renderStreak draws the low-load streak as filled and empty markers
func renderStreak(streak, required int) string {
	if required < 1 {
		return fmt.Sprintf("%d", streak)
	}
	if streak > required {
		streak = required
	}

	filled := lowStyle.Render(strings.Repeat("●", streak))
	empty := dimStyle.Render(strings.Repeat("○", required-streak))
	return fmt.Sprintf("%s%s  %d/%d", filled, empty, streak, required)
}

// renderAge formats how long ago the snapshot was written
func renderAge(age time.Duration) string {
	if age < 0 {
		age = 0
	}
	if age < time.Minute {
		return fmt.Sprintf("%ds ago", int(age.Seconds()))
	}
	return fmt.Sprintf("%dm%ds ago", int(age.Minutes()), int(age.Seconds())%60)
}
