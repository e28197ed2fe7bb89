package models

import "time"

// SnapshotMetrics is the metrics bundle captured when a plan cycle is
// archived.
type SnapshotMetrics struct {
	AverageOverrunPercent float64 `json:"average_overrun_percent"`
	CompletionRate        float64 `json:"completion_rate"`
	CompletionSmoothness  float64 `json:"completion_smoothness"`
	PlanningAlignment     float64 `json:"planning_alignment"`
	LateStageAdjustments  int     `json:"late_stage_adjustments"`
	TasksCompleted        int     `json:"tasks_completed"`
	TotalTimeSpentSeconds int64   `json:"total_time_spent_seconds"`
}

// SnapshotPatterns labels how the cycle was executed.
type SnapshotPatterns struct {
	FrontLoaded    bool `json:"front_loaded"`
	ConsistentPace bool `json:"consistent_pace"`
	ReworkRequired bool `json:"rework_required"`
}

// PlanCycleSnapshot is an immutable record appended to history when a
// plan is archived.
type PlanCycleSnapshot struct {
	ID       string           `json:"id"`
	Date     time.Time        `json:"date"`
	PlanType string           `json:"plan_type"`
	Metrics  SnapshotMetrics  `json:"metrics"`
	Patterns SnapshotPatterns `json:"patterns"`
}

// ProgressHistory holds the rolling snapshot window (most-recent-last)
// plus a lifetime counter that keeps counting past the retained window.
type ProgressHistory struct {
	Snapshots         []PlanCycleSnapshot `json:"snapshots"`
	LastSnapshotDate  *time.Time          `json:"last_snapshot_date,omitempty"`
	TotalPlansTracked int                 `json:"total_plans_tracked"`
}

// Latest returns the most recent snapshot, or nil when history is empty.
func (h *ProgressHistory) Latest() *PlanCycleSnapshot {
	if len(h.Snapshots) == 0 {
		return nil
	}
	return &h.Snapshots[len(h.Snapshots)-1]
}

// LastN returns up to n of the most recent snapshots in chronological
// order.
func (h *ProgressHistory) LastN(n int) []PlanCycleSnapshot {
	if n <= 0 || len(h.Snapshots) == 0 {
		return nil
	}
	if len(h.Snapshots) <= n {
		return h.Snapshots
	}
	return h.Snapshots[len(h.Snapshots)-n:]
}
