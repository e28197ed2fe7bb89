package mutation

import (
	"github.com/balkashynov/stride/internal/execution"
	"github.com/balkashynov/stride/internal/models"
)

// StartTask starts the timer on a task. Guards (locked week, single
// active timer) are re-evaluated inside the transform against the
// current document, so a stale render cannot slip a second timer in.
func (m *Mutator) StartTask(weekIdx, taskIdx int) Result {
	return m.apply(
		func(p *models.Plan) error {
			return execution.CanStart(p, weekIdx, taskIdx)
		},
		func(p *models.Plan) error {
			return execution.Start(p, weekIdx, taskIdx, m.now())
		},
	)
}

// PauseActive pauses the currently running task.
func (m *Mutator) PauseActive() Result {
	wi, ti, ok := m.plan.ActiveTask()
	if !ok {
		return denied("no task is currently running")
	}
	return m.apply(
		func(p *models.Plan) error {
			return execution.CanPause(p, wi, ti)
		},
		func(p *models.Plan) error {
			return execution.Pause(p, wi, ti, m.now())
		},
	)
}

// CompleteActive completes the currently running task, optionally
// tagging how hard it felt.
func (m *Mutator) CompleteActive(effort string) Result {
	wi, ti, ok := m.plan.ActiveTask()
	if !ok {
		return denied("no task is currently running; start the task you want to complete")
	}
	return m.apply(
		func(p *models.Plan) error {
			return execution.CanComplete(p, wi, ti)
		},
		func(p *models.Plan) error {
			return execution.Complete(p, wi, ti, effort, m.now())
		},
	)
}

// Archive closes the current plan cycle: the running task (if any) is
// paused first so no live time is lost, then the plan and its snapshot
// are handed to the store, which retires the plan and appends to
// history. The snapshot is built by the caller from the paused document.
func (m *Mutator) Archive(buildSnapshot func(p *models.Plan) *models.PlanCycleSnapshot) Result {
	backup := m.plan
	if wi, ti, ok := m.plan.ActiveTask(); ok {
		next := m.plan.Clone()
		if err := execution.Pause(next, wi, ti, m.now()); err != nil {
			return denied(err.Error())
		}
		m.plan = next
	}

	snapshot := buildSnapshot(m.plan)
	if err := m.store.ArchivePlan(m.userID, m.plan, snapshot); err != nil {
		m.plan = backup
		return failed(err)
	}
	return Result{OK: true}
}
