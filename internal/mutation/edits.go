package mutation

import (
	"math"
	"strings"

	"github.com/balkashynov/stride/internal/execution"
	"github.com/balkashynov/stride/internal/models"
)

// AddTask appends a new pending task to the given week.
func (m *Mutator) AddTask(weekIdx int, title, priority string, estimatedHours float64) Result {
	return m.apply(
		func(p *models.Plan) error {
			return validateAdd(p, weekIdx, title, estimatedHours)
		},
		func(p *models.Plan) error {
			if err := validateAdd(p, weekIdx, title, estimatedHours); err != nil {
				return err
			}
			p.Weeks[weekIdx].Tasks = append(p.Weeks[weekIdx].Tasks, models.Task{
				Title:          strings.TrimSpace(title),
				Priority:       priority,
				EstimatedHours: estimatedHours,
				ExecutionState: models.StatePending,
			})
			noteLateAdjustment(p)
			return nil
		},
	)
}

func validateAdd(p *models.Plan, weekIdx int, title string, estimatedHours float64) error {
	if weekIdx < 0 || weekIdx >= len(p.Weeks) {
		return execution.GuardError{Reason: "that week does not exist"}
	}
	if strings.TrimSpace(title) == "" {
		return execution.GuardError{Reason: "task title cannot be empty"}
	}
	if estimatedHours <= 0 {
		return execution.GuardError{Reason: "estimated hours must be positive"}
	}
	return nil
}

// SplitTask replaces the task with two tasks splitting its estimate at
// ratio percent (10-90). Both halves inherit the priority, start
// pending, and occupy the original index contiguously.
func (m *Mutator) SplitTask(weekIdx, taskIdx, ratio int) Result {
	return m.apply(
		func(p *models.Plan) error {
			return validateSplit(p, weekIdx, taskIdx, ratio)
		},
		func(p *models.Plan) error {
			if err := validateSplit(p, weekIdx, taskIdx, ratio); err != nil {
				return err
			}
			original := p.Weeks[weekIdx].Tasks[taskIdx]
			first := models.Task{
				Title:          original.Title + " (1/2)",
				Priority:       original.Priority,
				EstimatedHours: roundHours(original.EstimatedHours * float64(ratio) / 100),
				ExecutionState: models.StatePending,
			}
			second := models.Task{
				Title:          original.Title + " (2/2)",
				Priority:       original.Priority,
				EstimatedHours: roundHours(original.EstimatedHours * float64(100-ratio) / 100),
				ExecutionState: models.StatePending,
			}

			tasks := p.Weeks[weekIdx].Tasks
			out := make([]models.Task, 0, len(tasks)+1)
			out = append(out, tasks[:taskIdx]...)
			out = append(out, first, second)
			out = append(out, tasks[taskIdx+1:]...)
			p.Weeks[weekIdx].Tasks = out

			noteLateAdjustment(p)
			return nil
		},
	)
}

func validateSplit(p *models.Plan, weekIdx, taskIdx, ratio int) error {
	t := p.Task(weekIdx, taskIdx)
	if t == nil {
		return execution.GuardError{Reason: "that task does not exist"}
	}
	if ratio < 10 || ratio > 90 {
		return execution.GuardError{Reason: "split ratio must be between 10 and 90"}
	}
	if execution.WeekLocked(p, weekIdx) {
		return execution.GuardError{Reason: "tasks in a locked week cannot be split"}
	}
	if t.ExecutionState == models.StateDone {
		return execution.GuardError{Reason: "a completed task cannot be split"}
	}
	if t.ExecutionState == models.StateDoing {
		return execution.GuardError{Reason: "stop the timer before splitting this task"}
	}
	return nil
}

// roundHours rounds to one decimal, matching how estimates are entered.
func roundHours(h float64) float64 {
	return math.Round(h*10) / 10
}

// MoveTask splices a task out of its source position and into the
// destination. Same-week moves are plain reorders; cross-week moves run
// the same guards as split plus the lock check on both weeks.
func (m *Mutator) MoveTask(fromWeek, fromIdx, toWeek, toIdx int) Result {
	return m.apply(
		func(p *models.Plan) error {
			return validateMove(p, fromWeek, fromIdx, toWeek, toIdx)
		},
		func(p *models.Plan) error {
			if err := validateMove(p, fromWeek, fromIdx, toWeek, toIdx); err != nil {
				return err
			}
			task := p.Weeks[fromWeek].Tasks[fromIdx]

			src := p.Weeks[fromWeek].Tasks
			p.Weeks[fromWeek].Tasks = append(src[:fromIdx:fromIdx], src[fromIdx+1:]...)

			dst := p.Weeks[toWeek].Tasks
			idx := toIdx
			if idx > len(dst) {
				idx = len(dst)
			}
			out := make([]models.Task, 0, len(dst)+1)
			out = append(out, dst[:idx]...)
			out = append(out, task)
			out = append(out, dst[idx:]...)
			p.Weeks[toWeek].Tasks = out

			noteLateAdjustment(p)
			return nil
		},
	)
}

func validateMove(p *models.Plan, fromWeek, fromIdx, toWeek, toIdx int) error {
	t := p.Task(fromWeek, fromIdx)
	if t == nil {
		return execution.GuardError{Reason: "that task does not exist"}
	}
	if toWeek < 0 || toWeek >= len(p.Weeks) {
		return execution.GuardError{Reason: "the destination week does not exist"}
	}
	if toIdx < 0 {
		return execution.GuardError{Reason: "the destination position is invalid"}
	}
	if fromWeek == toWeek {
		return nil
	}
	if t.ExecutionState == models.StateDoing {
		return execution.GuardError{Reason: "stop the timer before moving this task"}
	}
	if t.ExecutionState == models.StateDone {
		return execution.GuardError{Reason: "a completed task cannot be moved to another week"}
	}
	if execution.WeekLocked(p, fromWeek) {
		return execution.GuardError{Reason: "tasks cannot be moved out of a locked week"}
	}
	if execution.WeekLocked(p, toWeek) {
		return execution.GuardError{Reason: "tasks cannot be moved into a locked week"}
	}
	return nil
}

// CloseDay appends a daily summary to the plan document.
func (m *Mutator) CloseDay(summary string) Result {
	return m.apply(
		func(p *models.Plan) error {
			if strings.TrimSpace(summary) == "" {
				return execution.GuardError{Reason: "the day summary cannot be empty"}
			}
			return nil
		},
		func(p *models.Plan) error {
			p.DayClosures = append(p.DayClosures, models.DayClosure{
				Date:    m.now(),
				Summary: strings.TrimSpace(summary),
			})
			return nil
		},
	)
}
