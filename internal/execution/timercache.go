package execution

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/balkashynov/stride/internal/models"
)

const timerCacheFileName = "timer.json"

// ActiveTimerState is the client-local projection of the running timer.
// The plan document is authoritative; this cache only bridges reloads
// that race with an in-flight save.
type ActiveTimerState struct {
	PlanID             string    `json:"plan_id"`
	WeekIdx            int       `json:"week_idx"`
	TaskIdx            int       `json:"task_idx"`
	StartedAt          time.Time `json:"started_at"`
	AccumulatedSeconds int64     `json:"accumulated_seconds"`
}

// TimerCache reads and writes the durable timer state file. Only the
// execution timer component writes it.
type TimerCache struct {
	path string
}

// NewTimerCache creates a cache rooted at the given directory.
func NewTimerCache(dir string) *TimerCache {
	return &TimerCache{path: filepath.Join(dir, timerCacheFileName)}
}

// Load reads the cached timer state. A missing or unreadable file is
// treated as no cache, not an error worth surfacing.
func (c *TimerCache) Load() *ActiveTimerState {
	data, err := os.ReadFile(c.path)
	if err != nil {
		return nil
	}
	var state ActiveTimerState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil
	}
	return &state
}

// Save atomically writes the timer state using a temp file + rename.
func (c *TimerCache) Save(state *ActiveTimerState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to marshal timer state: %w", err)
	}
	tmpPath := fmt.Sprintf("%s.tmp.%d", c.path, os.Getpid())
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write timer state: %w", err)
	}
	if err := os.Rename(tmpPath, c.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to replace timer state: %w", err)
	}
	return nil
}

// Clear removes the cached state. A missing file is fine.
func (c *TimerCache) Clear() error {
	err := os.Remove(c.path)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Reconcile resolves the two-tier timer state against a freshly loaded
// plan. The plan wins: if it has a doing task, the state is rebuilt from
// the document and the cache is ignored. The cache is only used as a
// fallback when the plan shows no running task but still has the
// referenced task in an actionable state (a stale reload where the start
// write had not landed yet). Anything else is stale and discarded.
func Reconcile(p *models.Plan, cached *ActiveTimerState) *ActiveTimerState {
	if wi, ti, ok := p.ActiveTask(); ok {
		t := p.Task(wi, ti)
		state := &ActiveTimerState{
			PlanID:             p.ID,
			WeekIdx:            wi,
			TaskIdx:            ti,
			AccumulatedSeconds: t.TimeSpentSeconds,
		}
		if t.ExecutionStartedAt != nil {
			state.StartedAt = *t.ExecutionStartedAt
		}
		return state
	}

	if cached == nil || cached.PlanID != p.ID {
		return nil
	}
	t := p.Task(cached.WeekIdx, cached.TaskIdx)
	if t == nil || t.ExecutionState == models.StateDone {
		return nil
	}
	return cached
}
