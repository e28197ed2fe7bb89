package tui

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/balkashynov/stride/internal/config"
	"github.com/balkashynov/stride/internal/execution"
	"github.com/balkashynov/stride/internal/mutation"
)

// RunTimerTUI runs the interactive timer for an already-started task.
func RunTimerTUI(m *mutation.Mutator, weekIdx, taskIdx int) error {
	model := NewTimerModel(m, weekIdx, taskIdx)

	p := tea.NewProgram(model, tea.WithAltScreen())
	finalModel, err := p.Run()
	if err != nil {
		return err
	}

	final, ok := finalModel.(TimerModel)
	if !ok {
		return nil
	}

	switch {
	case final.completed:
		clearTimerCache()
		task := m.Plan().Task(weekIdx, taskIdx)
		fmt.Printf("✅ Completed: %s\n", task.Title)
		fmt.Printf("Total time: %s\n", time.Duration(task.TimeSpentSeconds)*time.Second)
	case final.paused:
		clearTimerCache()
		task := m.Plan().Task(weekIdx, taskIdx)
		fmt.Printf("⏸️  Paused: %s\n", task.Title)
		fmt.Printf("Time spent so far: %s\n", time.Duration(task.TimeSpentSeconds)*time.Second)
	case final.detached:
		fmt.Println("Timer keeps running — 'stride pause' or 'stride done' when you stop")
	}
	return nil
}

// clearTimerCache drops the durable timer cache after pause/complete.
func clearTimerCache() {
	dir, err := config.Dir()
	if err != nil {
		return
	}
	_ = execution.NewTimerCache(dir).Clear()
}
