package execution

import "github.com/balkashynov/stride/internal/models"

// WeekCompleted reports whether every task in the week is done. A week
// with no tasks counts as completed so it never blocks later weeks.
func WeekCompleted(w *models.Week) bool {
	for i := range w.Tasks {
		if w.Tasks[i].ExecutionState != models.StateDone {
			return false
		}
	}
	return true
}

// WeekLocked reports whether the week at weekIdx is locked. A week is
// locked while any earlier week still has unfinished tasks; the first
// week is never locked. Callers must re-evaluate this at action time,
// never act on a cached result.
func WeekLocked(p *models.Plan, weekIdx int) bool {
	if weekIdx <= 0 || weekIdx >= len(p.Weeks) {
		return false
	}
	for i := 0; i < weekIdx; i++ {
		if !WeekCompleted(&p.Weeks[i]) {
			return true
		}
	}
	return false
}
