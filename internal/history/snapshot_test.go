package history

import (
	"testing"
	"time"

	"github.com/balkashynov/stride/internal/models"
)

// weekOf builds a week with doneCount of total tasks completed, each
// carrying an hour of tracked time and an optional completion stamp.
func weekOf(number, total, doneCount int, at *time.Time) models.Week {
	w := models.Week{Number: number}
	for i := 0; i < total; i++ {
		task := models.Task{
			Title:          "t",
			Priority:       models.PriorityMedium,
			EstimatedHours: 1,
			ExecutionState: models.StatePending,
		}
		if i < doneCount {
			task.ExecutionState = models.StateDone
			task.Completed = true
			task.TimeSpentSeconds = 3600
			if at != nil {
				stamp := at.Add(time.Duration(number*100+i) * time.Minute)
				task.CompletedAt = &stamp
			}
		}
		w.Tasks = append(w.Tasks, task)
	}
	return w
}

func TestCompletionSmoothness_EvenCompletionScoresFull(t *testing.T) {
	p := &models.Plan{Weeks: []models.Week{
		weekOf(1, 2, 2, nil),
		weekOf(2, 2, 2, nil),
		weekOf(3, 2, 2, nil),
	}}
	if got := completionSmoothness(p); got != 100 {
		t.Errorf("smoothness = %.1f, want 100 for evenly completed weeks", got)
	}
}

func TestCompletionSmoothness_ConcentrationCollapses(t *testing.T) {
	p := &models.Plan{Weeks: []models.Week{
		weekOf(1, 2, 2, nil),
		weekOf(2, 2, 0, nil),
		weekOf(3, 2, 0, nil),
	}}
	if got := completionSmoothness(p); got != 0 {
		t.Errorf("smoothness = %.1f, want 0 when one week holds all completions", got)
	}
}

func TestCompletionSmoothness_NothingDone(t *testing.T) {
	p := &models.Plan{Weeks: []models.Week{weekOf(1, 2, 0, nil)}}
	if got := completionSmoothness(p); got != 0 {
		t.Errorf("smoothness = %.1f, want 0 with no completions", got)
	}
}

func TestPlanningAlignment_OrderedExecution(t *testing.T) {
	base := time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)
	// weekOf stamps later weeks later, so execution follows plan order.
	p := &models.Plan{Weeks: []models.Week{
		weekOf(1, 2, 2, &base),
		weekOf(2, 2, 2, &base),
	}}
	if got := planningAlignment(p); got != 100 {
		t.Errorf("alignment = %.1f, want 100 for in-order completion", got)
	}
}

func TestPlanningAlignment_BackwardsJumpCounted(t *testing.T) {
	t1 := time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)
	t2 := t1.Add(time.Hour)
	t3 := t1.Add(2 * time.Hour)
	done := func(at time.Time) models.Task {
		return models.Task{Title: "t", ExecutionState: models.StateDone, Completed: true, CompletedAt: &at}
	}
	// Completion order by time: week1, week2, week1 again.
	p := &models.Plan{Weeks: []models.Week{
		{Number: 1, Tasks: []models.Task{done(t1), done(t3)}},
		{Number: 2, Tasks: []models.Task{done(t2)}},
	}}
	if got := planningAlignment(p); got != 50 {
		t.Errorf("alignment = %.1f, want 50 (one ordered pair of two)", got)
	}
}

func TestPlanningAlignment_TooFewStamps(t *testing.T) {
	at := time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)
	p := &models.Plan{Weeks: []models.Week{
		{Number: 1, Tasks: []models.Task{
			{Title: "stamped", ExecutionState: models.StateDone, CompletedAt: &at},
			{Title: "unstamped", ExecutionState: models.StateDone},
		}},
	}}
	if got := planningAlignment(p); got != 100 {
		t.Errorf("alignment = %.1f, want 100 with fewer than two datable completions", got)
	}
}

func TestFrontLoaded(t *testing.T) {
	p := &models.Plan{Weeks: []models.Week{
		weekOf(1, 4, 4, nil),
		weekOf(2, 4, 3, nil),
		weekOf(3, 4, 1, nil),
		weekOf(4, 4, 1, nil),
	}}
	// 7 completions in the first half vs 2 in the second.
	if !frontLoaded(p) {
		t.Error("expected the plan to read as front-loaded")
	}

	even := &models.Plan{Weeks: []models.Week{
		weekOf(1, 4, 2, nil),
		weekOf(2, 4, 2, nil),
	}}
	if frontLoaded(even) {
		t.Error("evenly completed plan should not read as front-loaded")
	}

	single := &models.Plan{Weeks: []models.Week{weekOf(1, 4, 4, nil)}}
	if frontLoaded(single) {
		t.Error("a single-week plan cannot be front-loaded")
	}
}

func TestBuildSnapshot(t *testing.T) {
	base := time.Date(2026, 8, 20, 9, 0, 0, 0, time.UTC)
	p := &models.Plan{
		ID:                   "plan-1",
		PlanType:             models.PlanTypeStrategic,
		LateStageAdjustments: 2,
		Weeks: []models.Week{
			weekOf(1, 2, 2, &base),
			weekOf(2, 2, 2, &base),
		},
	}

	now := time.Date(2026, 8, 25, 18, 0, 0, 0, time.UTC)
	snap := BuildSnapshot(p, now)

	if snap.ID == "" {
		t.Error("snapshot missing an id")
	}
	if !snap.Date.Equal(now) {
		t.Errorf("date = %v, want %v", snap.Date, now)
	}
	if snap.PlanType != models.PlanTypeStrategic {
		t.Errorf("plan type = %s, want strategic", snap.PlanType)
	}
	if snap.Metrics.CompletionRate != 100 {
		t.Errorf("completion rate = %.1f, want 100", snap.Metrics.CompletionRate)
	}
	if snap.Metrics.TasksCompleted != 4 {
		t.Errorf("tasks completed = %d, want 4", snap.Metrics.TasksCompleted)
	}
	if snap.Metrics.TotalTimeSpentSeconds != 4*3600 {
		t.Errorf("total time = %d, want %d", snap.Metrics.TotalTimeSpentSeconds, 4*3600)
	}
	if snap.Metrics.CompletionSmoothness != 100 {
		t.Errorf("smoothness = %.1f, want 100", snap.Metrics.CompletionSmoothness)
	}
	if !snap.Patterns.ConsistentPace {
		t.Error("smoothness 100 should read as consistent pace")
	}
	if !snap.Patterns.ReworkRequired {
		t.Error("two late-stage adjustments should read as rework required")
	}
	if snap.Patterns.FrontLoaded {
		t.Error("even completion should not read as front-loaded")
	}
}
