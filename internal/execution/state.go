package execution

import (
	"fmt"
	"time"

	"github.com/balkashynov/stride/internal/models"
)

// GuardError is a precondition failure. It carries a human-readable
// reason and never reaches persistence.
type GuardError struct {
	Reason string
}

func (e GuardError) Error() string {
	return e.Reason
}

func deny(format string, args ...interface{}) error {
	return GuardError{Reason: fmt.Sprintf(format, args...)}
}

// CanStart checks the start preconditions: the task exists, is pending,
// its week is not locked, and no other task is currently doing.
func CanStart(p *models.Plan, weekIdx, taskIdx int) error {
	t := p.Task(weekIdx, taskIdx)
	if t == nil {
		return deny("no task at week %d position %d", weekIdx+1, taskIdx+1)
	}
	if t.ExecutionState == models.StateDone {
		return deny("task %q is already completed", t.Title)
	}
	if t.ExecutionState == models.StateDoing {
		return deny("task %q is already running", t.Title)
	}
	if WeekLocked(p, weekIdx) {
		return deny("week %d is locked until earlier weeks are completed", weekIdx+1)
	}
	if wi, ti, ok := p.ActiveTask(); ok {
		active := p.Task(wi, ti)
		return deny("another task is already running: %q (pause or complete it first)", active.Title)
	}
	return nil
}

// Start transitions a pending task to doing. The time accumulator is
// preserved so a paused task resumes where it left off.
func Start(p *models.Plan, weekIdx, taskIdx int, now time.Time) error {
	if err := CanStart(p, weekIdx, taskIdx); err != nil {
		return err
	}
	t := p.Task(weekIdx, taskIdx)
	t.ExecutionState = models.StateDoing
	startedAt := now
	t.ExecutionStartedAt = &startedAt
	return nil
}

// CanPause checks that the task at the given location is the currently
// running one.
func CanPause(p *models.Plan, weekIdx, taskIdx int) error {
	t := p.Task(weekIdx, taskIdx)
	if t == nil {
		return deny("no task at week %d position %d", weekIdx+1, taskIdx+1)
	}
	if t.ExecutionState != models.StateDoing {
		return deny("task %q is not running", t.Title)
	}
	return nil
}

// Pause stops the running task, folding the live elapsed duration into
// the accumulator and returning the task to pending.
func Pause(p *models.Plan, weekIdx, taskIdx int, now time.Time) error {
	if err := CanPause(p, weekIdx, taskIdx); err != nil {
		return err
	}
	t := p.Task(weekIdx, taskIdx)
	foldElapsed(t, now)
	t.ExecutionState = models.StatePending
	return nil
}

// CanComplete mirrors CanPause: only the running task may be completed,
// which forces deliberate time tracking.
func CanComplete(p *models.Plan, weekIdx, taskIdx int) error {
	t := p.Task(weekIdx, taskIdx)
	if t == nil {
		return deny("no task at week %d position %d", weekIdx+1, taskIdx+1)
	}
	if t.ExecutionState == models.StateDone {
		return deny("task %q is already completed", t.Title)
	}
	if t.ExecutionState != models.StateDoing {
		return deny("task %q is not running; start it before completing", t.Title)
	}
	return nil
}

// Complete folds elapsed time exactly as Pause does, then marks the task
// done and syncs the legacy completed flag.
func Complete(p *models.Plan, weekIdx, taskIdx int, effort string, now time.Time) error {
	if err := CanComplete(p, weekIdx, taskIdx); err != nil {
		return err
	}
	t := p.Task(weekIdx, taskIdx)
	foldElapsed(t, now)
	t.ExecutionState = models.StateDone
	t.Completed = true
	completedAt := now
	t.CompletedAt = &completedAt
	if effort != "" {
		t.Effort = effort
	}
	return nil
}

// foldElapsed adds the live elapsed duration to the accumulator and
// clears the start timestamp. The accumulator only ever grows.
func foldElapsed(t *models.Task, now time.Time) {
	if t.ExecutionStartedAt == nil {
		return
	}
	elapsed := int64(now.Sub(*t.ExecutionStartedAt).Seconds())
	if elapsed > 0 {
		t.TimeSpentSeconds += elapsed
	}
	t.ExecutionStartedAt = nil
}

// DisplayElapsed derives the elapsed duration shown while a task runs:
// accumulator plus live wall-clock time. It is display-only and is never
// written back to the plan outside pause/complete.
func DisplayElapsed(t *models.Task, now time.Time) time.Duration {
	d := time.Duration(t.TimeSpentSeconds) * time.Second
	if t.ExecutionState == models.StateDoing && t.ExecutionStartedAt != nil {
		live := now.Sub(*t.ExecutionStartedAt)
		if live > 0 {
			d += live
		}
	}
	return d
}
