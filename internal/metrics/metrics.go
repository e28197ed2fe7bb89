package metrics

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/balkashynov/stride/internal/models"
)

// Estimation pattern labels
const (
	PatternOptimistic    = "optimistic"  // consistently underestimated, work took longer
	PatternPessimistic   = "pessimistic" // consistently overestimated
	PatternAccurate      = "accurate"
	PatternNotEnoughData = "not_enough_data"
)

// variance tolerance band, in percent
const accuracyTolerance = 20.0

// CompletedTask is a done task together with its location in the plan.
type CompletedTask struct {
	WeekIdx int
	TaskIdx int
	Task    models.Task
}

// TaskVariance is the estimation outcome for one completed task.
type TaskVariance struct {
	Title            string
	WeekIdx          int
	EstimatedSeconds int64
	ActualSeconds    int64
	VariancePercent  float64
	Classification   string // overestimated | underestimated | accurate
}

// EstimationAccuracy aggregates estimate-vs-actual across the plan.
type EstimationAccuracy struct {
	AverageVariancePercent float64
	Overestimated          int
	Underestimated         int
	Accurate               int
	Pattern                string
	PerTask                []TaskVariance
}

// EffortPatterns summarizes the optional self-reported effort tags.
type EffortPatterns struct {
	EasyCount          int
	OkayCount          int
	HardCount          int
	HardTasksTimeRatio float64 // percent of tagged time spent on hard tasks
}

// Velocity captures completion pace.
type Velocity struct {
	TasksPerDay        float64
	AverageTimePerTask float64 // seconds
	Fastest            *TaskVariance
	Slowest            *TaskVariance
}

// ExecutionMetrics is the full derived view over completed tasks.
type ExecutionMetrics struct {
	Accuracy EstimationAccuracy
	Effort   EffortPatterns
	Velocity Velocity
}

// CompletedTasks selects the tasks metrics operate on: done with
// tracked time.
func CompletedTasks(p *models.Plan) []CompletedTask {
	var out []CompletedTask
	for wi := range p.Weeks {
		for ti := range p.Weeks[wi].Tasks {
			t := p.Weeks[wi].Tasks[ti]
			if t.ExecutionState == models.StateDone && t.TimeSpentSeconds > 0 {
				out = append(out, CompletedTask{WeekIdx: wi, TaskIdx: ti, Task: t})
			}
		}
	}
	return out
}

// Compute derives all execution metrics for the plan. Every
// sub-computation is pure and guards its divisions; with no completed
// tasks everything degrades to zeros and the not-enough-data pattern.
func Compute(p *models.Plan) ExecutionMetrics {
	completed := CompletedTasks(p)
	return ExecutionMetrics{
		Accuracy: ComputeAccuracy(completed),
		Effort:   ComputeEffort(completed),
		Velocity: ComputeVelocity(completed),
	}
}

// ComputeAccuracy classifies each completed task against its estimate
// and labels the overall estimation pattern.
func ComputeAccuracy(completed []CompletedTask) EstimationAccuracy {
	acc := EstimationAccuracy{Pattern: PatternNotEnoughData}
	if len(completed) == 0 {
		return acc
	}

	var sum float64
	for _, c := range completed {
		estimated := int64(c.Task.EstimatedHours * 3600)
		if estimated <= 0 {
			continue
		}
		variance := float64(c.Task.TimeSpentSeconds-estimated) / float64(estimated) * 100

		tv := TaskVariance{
			Title:            c.Task.Title,
			WeekIdx:          c.WeekIdx,
			EstimatedSeconds: estimated,
			ActualSeconds:    c.Task.TimeSpentSeconds,
			VariancePercent:  variance,
		}
		switch {
		case variance > accuracyTolerance:
			tv.Classification = "underestimated"
			acc.Underestimated++
		case variance < -accuracyTolerance:
			tv.Classification = "overestimated"
			acc.Overestimated++
		default:
			tv.Classification = "accurate"
			acc.Accurate++
		}
		acc.PerTask = append(acc.PerTask, tv)
		sum += variance
	}

	if len(acc.PerTask) == 0 {
		return acc
	}
	acc.AverageVariancePercent = sum / float64(len(acc.PerTask))
	switch {
	case acc.AverageVariancePercent > accuracyTolerance:
		acc.Pattern = PatternOptimistic
	case acc.AverageVariancePercent < -accuracyTolerance:
		acc.Pattern = PatternPessimistic
	default:
		acc.Pattern = PatternAccurate
	}
	return acc
}

// ComputeEffort counts effort tags and measures what share of tagged
// time went to self-reported-hard tasks.
func ComputeEffort(completed []CompletedTask) EffortPatterns {
	var eff EffortPatterns
	var taggedSeconds, hardSeconds int64
	for _, c := range completed {
		switch c.Task.Effort {
		case models.EffortEasy:
			eff.EasyCount++
		case models.EffortOkay:
			eff.OkayCount++
		case models.EffortHard:
			eff.HardCount++
			hardSeconds += c.Task.TimeSpentSeconds
		default:
			continue
		}
		taggedSeconds += c.Task.TimeSpentSeconds
	}
	if taggedSeconds > 0 {
		eff.HardTasksTimeRatio = float64(hardSeconds) / float64(taggedSeconds) * 100
	}
	return eff
}

// ComputeVelocity measures completion pace. Fastest and slowest are the
// extreme variance tasks, not the shortest and longest ones.
func ComputeVelocity(completed []CompletedTask) Velocity {
	var v Velocity
	if len(completed) == 0 {
		return v
	}

	var total int64
	var first, last *time.Time
	for _, c := range completed {
		total += c.Task.TimeSpentSeconds
		if c.Task.CompletedAt == nil {
			continue
		}
		at := *c.Task.CompletedAt
		if first == nil || at.Before(*first) {
			t := at
			first = &t
		}
		if last == nil || at.After(*last) {
			t := at
			last = &t
		}
	}

	days := 1.0
	if first != nil && last != nil {
		span := last.Sub(*first).Seconds()
		days = math.Max(1, math.Ceil(span/86400))
	}
	v.TasksPerDay = float64(len(completed)) / days
	v.AverageTimePerTask = float64(total) / float64(len(completed))

	acc := ComputeAccuracy(completed)
	for i := range acc.PerTask {
		tv := &acc.PerTask[i]
		if v.Fastest == nil || tv.VariancePercent < v.Fastest.VariancePercent {
			v.Fastest = tv
		}
		if v.Slowest == nil || tv.VariancePercent > v.Slowest.VariancePercent {
			v.Slowest = tv
		}
	}
	return v
}

// VersionHash builds a cheap cache-invalidation key over the plan's
// task positions and accumulated time. It has no role in the metrics
// math itself.
func VersionHash(p *models.Plan) string {
	var b strings.Builder
	for wi := range p.Weeks {
		for ti := range p.Weeks[wi].Tasks {
			fmt.Fprintf(&b, "%d-%d-%d;", wi, ti, p.Weeks[wi].Tasks[ti].TimeSpentSeconds)
		}
	}
	return b.String()
}
