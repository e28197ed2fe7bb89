package models

import (
	"encoding/json"
	"strings"
	"time"
)

// ExecutionState is the lifecycle status of a task.
type ExecutionState string

const (
	StatePending ExecutionState = "pending"
	StateDoing   ExecutionState = "doing"
	StatePaused  ExecutionState = "paused" // accepted on load, normalized to pending
	StateDone    ExecutionState = "done"
)

// Priority levels for tasks
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

// Effort tags users can attach when completing a task
const (
	EffortEasy = "easy"
	EffortOkay = "okay"
	EffortHard = "hard"
)

// Plan type constants
const (
	PlanTypeStandard  = "standard"
	PlanTypeStrategic = "strategic"
)

// Task is a single planned piece of work inside a week.
type Task struct {
	Title              string         `json:"title"`
	Priority           string         `json:"priority"`
	EstimatedHours     float64        `json:"estimated_hours"`
	ExecutionState     ExecutionState `json:"execution_state"`
	Completed          bool           `json:"completed"` // legacy mirror of ExecutionState == done
	ExecutionStartedAt *time.Time     `json:"execution_started_at,omitempty"`
	TimeSpentSeconds   int64          `json:"time_spent_seconds"`
	CompletedAt        *time.Time     `json:"completed_at,omitempty"`
	Effort             string         `json:"effort,omitempty"`
}

// Week is an ordered member of a plan. Number is 1-based and matches position.
type Week struct {
	Number int    `json:"number"`
	Focus  string `json:"focus"`
	Tasks  []Task `json:"tasks"`
}

// DayClosure is a free-form end-of-day summary attached to the plan.
type DayClosure struct {
	Date    time.Time `json:"date"`
	Summary string    `json:"summary"`
}

// Plan is the root multi-week task document owned by a user.
type Plan struct {
	ID                   string       `json:"id"`
	UserID               string       `json:"user_id"`
	CreatedAt            time.Time    `json:"created_at"`
	PlanType             string       `json:"plan_type"`
	Weeks                []Week       `json:"weeks"`
	DayClosures          []DayClosure `json:"day_closures,omitempty"`
	LateStageAdjustments int          `json:"late_stage_adjustments"`
}

// Clone returns a deep copy of the plan document. The document is
// JSON-native, so a marshal round-trip is an exact copy.
func (p *Plan) Clone() *Plan {
	data, err := json.Marshal(p)
	if err != nil {
		// Plan contains only JSON-encodable fields; this cannot fail
		// for a well-formed document.
		panic(err)
	}
	var out Plan
	if err := json.Unmarshal(data, &out); err != nil {
		panic(err)
	}
	return &out
}

// ActiveTask returns the location of the task currently in the doing
// state, or ok=false when no timer is running.
func (p *Plan) ActiveTask() (weekIdx, taskIdx int, ok bool) {
	for wi := range p.Weeks {
		for ti := range p.Weeks[wi].Tasks {
			if p.Weeks[wi].Tasks[ti].ExecutionState == StateDoing {
				return wi, ti, true
			}
		}
	}
	return 0, 0, false
}

// Task returns a pointer into the plan document for the given location.
func (p *Plan) Task(weekIdx, taskIdx int) *Task {
	if weekIdx < 0 || weekIdx >= len(p.Weeks) {
		return nil
	}
	w := &p.Weeks[weekIdx]
	if taskIdx < 0 || taskIdx >= len(w.Tasks) {
		return nil
	}
	return &w.Tasks[taskIdx]
}

// TotalTasks counts all tasks across all weeks.
func (p *Plan) TotalTasks() int {
	n := 0
	for i := range p.Weeks {
		n += len(p.Weeks[i].Tasks)
	}
	return n
}

// CompletedCount counts tasks in the done state.
func (p *Plan) CompletedCount() int {
	n := 0
	for wi := range p.Weeks {
		for ti := range p.Weeks[wi].Tasks {
			if p.Weeks[wi].Tasks[ti].ExecutionState == StateDone {
				n++
			}
		}
	}
	return n
}

// Progress returns the completed fraction of the plan in [0,1].
func (p *Plan) Progress() float64 {
	total := p.TotalTasks()
	if total == 0 {
		return 0
	}
	return float64(p.CompletedCount()) / float64(total)
}

// Normalize is the legacy adapter applied at the load boundary. Older
// documents carry only the completed boolean, or use the paused state.
// ExecutionState is the source of truth going forward; the completed
// flag is kept write-synchronized for external readers.
func (p *Plan) Normalize() {
	for wi := range p.Weeks {
		p.Weeks[wi].Number = wi + 1
		for ti := range p.Weeks[wi].Tasks {
			t := &p.Weeks[wi].Tasks[ti]
			switch t.ExecutionState {
			case "":
				if t.Completed {
					t.ExecutionState = StateDone
				} else {
					t.ExecutionState = StatePending
				}
			case StatePaused:
				// Paused keeps its accumulator; pending is the single
				// canonical actionable state.
				t.ExecutionState = StatePending
			}
			t.Completed = t.ExecutionState == StateDone
			if t.ExecutionState != StateDoing {
				t.ExecutionStartedAt = nil
			}
		}
	}
}

// ParsePriority normalizes a priority flag value. Accepts names or 1/2/3.
func ParsePriority(s string) (string, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "low", "1":
		return PriorityLow, true
	case "medium", "2", "":
		return PriorityMedium, true
	case "high", "3":
		return PriorityHigh, true
	default:
		return "", false
	}
}

// ParseEffort normalizes an effort tag. Empty input is valid and means
// the task stays untagged.
func ParseEffort(s string) (string, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return "", true
	case EffortEasy:
		return EffortEasy, true
	case EffortOkay, "ok":
		return EffortOkay, true
	case EffortHard:
		return EffortHard, true
	default:
		return "", false
	}
}
