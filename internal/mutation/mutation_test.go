package mutation

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/balkashynov/stride/internal/models"
)

// fakeStore keeps the plan in memory and can be told to fail saves, so
// the rollback path is observable without a database.
type fakeStore struct {
	plan      *models.Plan
	revision  int64
	failSaves bool
	saves     int
	archived  *models.PlanCycleSnapshot
}

func (f *fakeStore) LoadPlan(userID string) (*models.Plan, int64, error) {
	return f.plan.Clone(), f.revision, nil
}

func (f *fakeStore) SavePlan(planID string, doc *models.Plan, revision int64) error {
	f.saves++
	if f.failSaves {
		return errors.New("backend unavailable")
	}
	if revision != f.revision {
		return errors.New("stale write")
	}
	f.plan = doc.Clone()
	f.revision++
	return nil
}

func (f *fakeStore) ArchivePlan(userID string, doc *models.Plan, snapshot *models.PlanCycleSnapshot) error {
	if f.failSaves {
		return errors.New("backend unavailable")
	}
	f.plan = doc.Clone()
	f.archived = snapshot
	return nil
}

func (f *fakeStore) LoadHistory(userID string) (*models.ProgressHistory, error) {
	return &models.ProgressHistory{}, nil
}

func newTestMutator(t *testing.T) (*Mutator, *fakeStore) {
	t.Helper()
	store := &fakeStore{
		revision: 1,
		plan: &models.Plan{
			ID:       "plan-1",
			UserID:   "local",
			PlanType: models.PlanTypeStandard,
			Weeks: []models.Week{
				{Number: 1, Tasks: []models.Task{
					{Title: "research", Priority: models.PriorityHigh, EstimatedHours: 10, ExecutionState: models.StatePending},
					{Title: "outline", Priority: models.PriorityMedium, EstimatedHours: 2, ExecutionState: models.StatePending},
					{Title: "draft", Priority: models.PriorityLow, EstimatedHours: 4, ExecutionState: models.StatePending},
				}},
				{Number: 2, Tasks: []models.Task{
					{Title: "revise", Priority: models.PriorityMedium, EstimatedHours: 3, ExecutionState: models.StatePending},
				}},
			},
		},
	}
	m, err := NewMutator(store, "local")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return m, store
}

func planJSON(t *testing.T, p *models.Plan) string {
	t.Helper()
	data, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("marshal plan: %v", err)
	}
	return string(data)
}

func TestSplitTask_Semantics(t *testing.T) {
	m, _ := newTestMutator(t)

	res := m.SplitTask(0, 0, 30)
	if !res.OK {
		t.Fatalf("split failed: %+v", res)
	}

	tasks := m.Plan().Weeks[0].Tasks
	if len(tasks) != 4 {
		t.Fatalf("task count = %d, want 4", len(tasks))
	}
	first, second := tasks[0], tasks[1]
	if first.EstimatedHours != 3.0 || second.EstimatedHours != 7.0 {
		t.Errorf("estimates = %.1f/%.1f, want 3.0/7.0", first.EstimatedHours, second.EstimatedHours)
	}
	if first.Priority != models.PriorityHigh || second.Priority != models.PriorityHigh {
		t.Error("split halves did not inherit the priority")
	}
	if first.ExecutionState != models.StatePending || second.ExecutionState != models.StatePending {
		t.Error("split halves must start pending")
	}
	// Order preserved: the halves occupy the original index contiguously.
	if tasks[2].Title != "outline" || tasks[3].Title != "draft" {
		t.Errorf("following tasks disturbed: %q, %q", tasks[2].Title, tasks[3].Title)
	}
}

func TestSplitTask_RatioBounds(t *testing.T) {
	m, store := newTestMutator(t)

	for _, ratio := range []int{9, 91, 0, 100} {
		res := m.SplitTask(0, 0, ratio)
		if res.OK || res.Reason == "" {
			t.Errorf("ratio %d: expected a denial with reason, got %+v", ratio, res)
		}
	}
	if store.saves != 0 {
		t.Errorf("denied splits reached persistence %d times", store.saves)
	}
}

func TestSplitTask_GuardsDenied(t *testing.T) {
	m, _ := newTestMutator(t)

	// A running task cannot be split.
	if res := m.StartTask(0, 0); !res.OK {
		t.Fatalf("start failed: %+v", res)
	}
	if res := m.SplitTask(0, 0, 50); res.OK {
		t.Error("splitting the running task should be denied")
	}

	// A task in a locked week cannot be split.
	if res := m.SplitTask(1, 0, 50); res.OK {
		t.Error("splitting a task in a locked week should be denied")
	}
}

func TestRollback_RestoresExactPlan(t *testing.T) {
	m, store := newTestMutator(t)
	before := planJSON(t, m.Plan())

	store.failSaves = true
	res := m.MoveTask(0, 0, 0, 2)
	if res.OK {
		t.Fatal("expected a persistence failure")
	}
	if res.Err == nil || res.Reason != "" {
		t.Fatalf("expected a persistence error result, got %+v", res)
	}

	if after := planJSON(t, m.Plan()); after != before {
		t.Error("plan after failed save is not deep-equal to the pre-mutation plan")
	}

	// Retrying the same action after the backend recovers succeeds.
	store.failSaves = false
	if res := m.MoveTask(0, 0, 0, 2); !res.OK {
		t.Fatalf("retry failed: %+v", res)
	}
	if got := m.Plan().Weeks[0].Tasks[2].Title; got != "research" {
		t.Errorf("moved task = %q, want research", got)
	}
}

func TestMoveTask_SpliceSemantics(t *testing.T) {
	m, _ := newTestMutator(t)

	// Reorder within week 1: move index 2 to the top.
	res := m.MoveTask(0, 2, 0, 0)
	if !res.OK {
		t.Fatalf("reorder failed: %+v", res)
	}
	titles := []string{}
	for _, task := range m.Plan().Weeks[0].Tasks {
		titles = append(titles, task.Title)
	}
	want := []string{"draft", "research", "outline"}
	for i := range want {
		if titles[i] != want[i] {
			t.Fatalf("order = %v, want %v", titles, want)
		}
	}
}

func TestMoveTask_LockedWeekDenied(t *testing.T) {
	m, store := newTestMutator(t)
	saves := store.saves

	// Week 2 is locked while week 1 is unfinished.
	if res := m.MoveTask(0, 0, 1, 0); res.OK {
		t.Error("moving into a locked week should be denied")
	}
	if res := m.MoveTask(1, 0, 0, 0); res.OK {
		t.Error("moving out of a locked week should be denied")
	}
	if store.saves != saves {
		t.Error("denied moves reached persistence")
	}
}

func TestStartTask_GuardsReCheckedAtCallTime(t *testing.T) {
	m, _ := newTestMutator(t)

	if res := m.StartTask(0, 0); !res.OK {
		t.Fatalf("start failed: %+v", res)
	}
	res := m.StartTask(0, 1)
	if res.OK {
		t.Fatal("second concurrent start should be denied")
	}
	if res.Reason == "" {
		t.Error("denial should carry a reason")
	}

	// Starting a locked-week task fails and mutates nothing.
	before := planJSON(t, m.Plan())
	if res := m.StartTask(1, 0); res.OK {
		t.Fatal("locked-week start should be denied")
	}
	if after := planJSON(t, m.Plan()); after != before {
		t.Error("denied start changed the plan")
	}
}

func TestPauseAndCompleteActive(t *testing.T) {
	m, _ := newTestMutator(t)
	base := time.Date(2026, 8, 25, 9, 0, 0, 0, time.UTC)
	clock := base
	m.now = func() time.Time { return clock }

	if res := m.PauseActive(); res.OK {
		t.Error("pausing with no running task should be denied")
	}

	if res := m.StartTask(0, 0); !res.OK {
		t.Fatalf("start failed: %+v", res)
	}
	clock = base.Add(90 * time.Second)
	if res := m.PauseActive(); !res.OK {
		t.Fatalf("pause failed: %+v", res)
	}
	if got := m.Plan().Task(0, 0).TimeSpentSeconds; got != 90 {
		t.Errorf("accumulator = %d, want 90", got)
	}

	clock = base.Add(10 * time.Minute)
	if res := m.StartTask(0, 0); !res.OK {
		t.Fatalf("restart failed: %+v", res)
	}
	clock = base.Add(10*time.Minute + 30*time.Second)
	if res := m.CompleteActive(models.EffortOkay); !res.OK {
		t.Fatalf("complete failed: %+v", res)
	}

	task := m.Plan().Task(0, 0)
	if task.TimeSpentSeconds != 120 {
		t.Errorf("accumulator = %d, want 120", task.TimeSpentSeconds)
	}
	if task.ExecutionState != models.StateDone || !task.Completed {
		t.Error("task not marked done with synced mirror")
	}
	if task.Effort != models.EffortOkay {
		t.Errorf("effort = %q, want okay", task.Effort)
	}
}

func TestAddTask_Validation(t *testing.T) {
	m, _ := newTestMutator(t)

	if res := m.AddTask(0, "", models.PriorityLow, 1); res.OK {
		t.Error("empty title should be denied")
	}
	if res := m.AddTask(0, "x", models.PriorityLow, 0); res.OK {
		t.Error("non-positive estimate should be denied")
	}
	if res := m.AddTask(5, "x", models.PriorityLow, 1); res.OK {
		t.Error("missing week should be denied")
	}

	res := m.AddTask(1, "polish", models.PriorityLow, 1.5)
	if !res.OK {
		t.Fatalf("add failed: %+v", res)
	}
	tasks := m.Plan().Weeks[1].Tasks
	got := tasks[len(tasks)-1]
	if got.Title != "polish" || got.EstimatedHours != 1.5 || got.ExecutionState != models.StatePending {
		t.Errorf("added task mismatch: %+v", got)
	}
}

func TestLateStageAdjustmentCounter(t *testing.T) {
	m, _ := newTestMutator(t)
	base := time.Date(2026, 8, 25, 9, 0, 0, 0, time.UTC)
	clock := base
	m.now = func() time.Time { return clock }

	// Complete 3 of 4 tasks (75% > 60% threshold).
	for ti := 0; ti < 3; ti++ {
		if res := m.StartTask(0, ti); !res.OK {
			t.Fatalf("start %d failed: %+v", ti, res)
		}
		clock = clock.Add(time.Minute)
		if res := m.CompleteActive(""); !res.OK {
			t.Fatalf("complete %d failed: %+v", ti, res)
		}
	}

	if res := m.SplitTask(1, 0, 50); !res.OK {
		t.Fatalf("split failed: %+v", res)
	}
	if got := m.Plan().LateStageAdjustments; got != 1 {
		t.Errorf("late-stage adjustments = %d, want 1", got)
	}
}

func TestArchive_PausesRunningTimerAndRollsBackOnFailure(t *testing.T) {
	m, store := newTestMutator(t)
	base := time.Date(2026, 8, 25, 9, 0, 0, 0, time.UTC)
	clock := base
	m.now = func() time.Time { return clock }

	if res := m.StartTask(0, 0); !res.OK {
		t.Fatalf("start failed: %+v", res)
	}
	clock = base.Add(50 * time.Second)

	store.failSaves = true
	before := planJSON(t, m.Plan())
	res := m.Archive(func(p *models.Plan) *models.PlanCycleSnapshot {
		return &models.PlanCycleSnapshot{ID: "snap-1"}
	})
	if res.OK {
		t.Fatal("expected archive to fail")
	}
	if after := planJSON(t, m.Plan()); after != before {
		t.Error("failed archive left the plan modified")
	}

	store.failSaves = false
	res = m.Archive(func(p *models.Plan) *models.PlanCycleSnapshot {
		return &models.PlanCycleSnapshot{ID: "snap-1"}
	})
	if !res.OK {
		t.Fatalf("archive failed: %+v", res)
	}
	if store.archived == nil || store.archived.ID != "snap-1" {
		t.Error("snapshot not handed to the store")
	}
	// The archived document must not carry a live timer.
	if _, _, ok := store.plan.ActiveTask(); ok {
		t.Error("archived plan still has a running task")
	}
	if got := store.plan.Task(0, 0).TimeSpentSeconds; got != 50 {
		t.Errorf("archived accumulator = %d, want 50", got)
	}
}
