package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/balkashynov/stride/internal/execution"
	"github.com/balkashynov/stride/internal/models"
	"github.com/balkashynov/stride/internal/mutation"
)

// TimerModel is the TUI model for the running task timer.
type TimerModel struct {
	width  int
	height int

	mutator *mutation.Mutator
	weekIdx int
	taskIdx int

	// Display state. The clock is recomputed from the plan document on
	// every tick, never accumulated locally.
	elapsed  time.Duration
	weekBar  progress.Model
	errorMsg string

	// Outcome flags read by RunTimerTUI after the program exits
	paused    bool
	completed bool
	detached  bool
}

// timerTickMsg is sent every second to update the clock
type timerTickMsg struct{}

// NewTimerModel creates a timer model for the task at the given location.
func NewTimerModel(m *mutation.Mutator, weekIdx, taskIdx int) TimerModel {
	bar := progress.New(progress.WithGradient(ColorAccentMain, ColorAccentBright))
	return TimerModel{
		mutator: m,
		weekIdx: weekIdx,
		taskIdx: taskIdx,
		elapsed: execution.DisplayElapsed(m.Plan().Task(weekIdx, taskIdx), time.Now()),
		weekBar: bar,
	}
}

func (m TimerModel) task() *models.Task {
	return m.mutator.Plan().Task(m.weekIdx, m.taskIdx)
}

// Init starts the once-per-second tick.
func (m TimerModel) Init() tea.Cmd {
	return tick()
}

func tick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return timerTickMsg{}
	})
}

// Update handles messages
func (m TimerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case timerTickMsg:
		m.elapsed = execution.DisplayElapsed(m.task(), time.Now())

		// Keep ticking only while the timer is still live; stopping the
		// tick on exit is what prevents leaked intervals.
		if !m.paused && !m.completed && !m.detached {
			return m, tick()
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.weekBar.Width = min(40, msg.Width-8)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "p", "P":
			res := m.mutator.PauseActive()
			if !res.OK {
				m.errorMsg = resultMessage(res)
				return m, nil
			}
			m.paused = true
			return m, tea.Quit
		case "enter", "d", "D":
			res := m.mutator.CompleteActive("")
			if !res.OK {
				m.errorMsg = resultMessage(res)
				return m, nil
			}
			m.completed = true
			return m, tea.Quit
		case "ctrl+c", "esc", "q":
			// Leave the timer running and detach
			m.detached = true
			return m, tea.Quit
		}
	}

	return m, nil
}

func resultMessage(res mutation.Result) string {
	if res.Reason != "" {
		return res.Reason
	}
	return fmt.Sprintf("not saved, try again (%v)", res.Err)
}

// View renders the timer screen
func (m TimerModel) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}
	task := m.task()

	title := lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorPrimaryText)).
		Bold(true).
		Render(task.Title)

	clock := lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorAccentBright)).
		Bold(true).
		Render(formatClock(m.elapsed))

	estimate := lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorSecondaryText)).
		Italic(true).
		Render(fmt.Sprintf("estimated %.1fh · %s priority", task.EstimatedHours, task.Priority))

	week := m.mutator.Plan().Weeks[m.weekIdx]
	done := 0
	for i := range week.Tasks {
		if week.Tasks[i].ExecutionState == models.StateDone {
			done++
		}
	}
	weekRatio := 0.0
	if len(week.Tasks) > 0 {
		weekRatio = float64(done) / float64(len(week.Tasks))
	}
	weekLine := fmt.Sprintf("Week %d  %s  %d/%d done",
		week.Number, m.weekBar.ViewAs(weekRatio), done, len(week.Tasks))

	lines := []string{
		"⏱️  TRACKING TIME",
		"",
		title,
		estimate,
		"",
		clock,
		"",
		weekLine,
	}
	if m.errorMsg != "" {
		lines = append(lines, "",
			lipgloss.NewStyle().Foreground(lipgloss.Color(ColorError)).Render(m.errorMsg))
	}

	content := lipgloss.NewStyle().
		Width(m.width).
		Height(m.height-2).
		Align(lipgloss.Center, lipgloss.Center).
		Render(lipgloss.JoinVertical(lipgloss.Center, lines...))

	help := lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorHelpText)).
		Width(m.width).
		Align(lipgloss.Center).
		Render("enter/d complete · p pause · q detach (keeps running)")

	return lipgloss.JoinVertical(lipgloss.Left, content, help)
}

// formatClock renders elapsed time as HH:MM:SS
func formatClock(d time.Duration) string {
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
