package history

import (
	"math"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/balkashynov/stride/internal/metrics"
	"github.com/balkashynov/stride/internal/models"
)

// BuildSnapshot derives the immutable cycle record for a plan being
// archived.
func BuildSnapshot(p *models.Plan, now time.Time) *models.PlanCycleSnapshot {
	completed := metrics.CompletedTasks(p)
	accuracy := metrics.ComputeAccuracy(completed)
	smoothness := completionSmoothness(p)

	var totalSeconds int64
	for _, c := range completed {
		totalSeconds += c.Task.TimeSpentSeconds
	}

	completionRate := 0.0
	if total := p.TotalTasks(); total > 0 {
		completionRate = float64(p.CompletedCount()) / float64(total) * 100
	}

	return &models.PlanCycleSnapshot{
		ID:       uuid.NewString(),
		Date:     now,
		PlanType: p.PlanType,
		Metrics: models.SnapshotMetrics{
			AverageOverrunPercent: accuracy.AverageVariancePercent,
			CompletionRate:        completionRate,
			CompletionSmoothness:  smoothness,
			PlanningAlignment:     planningAlignment(p),
			LateStageAdjustments:  p.LateStageAdjustments,
			TasksCompleted:        p.CompletedCount(),
			TotalTimeSpentSeconds: totalSeconds,
		},
		Patterns: models.SnapshotPatterns{
			FrontLoaded:    frontLoaded(p),
			ConsistentPace: smoothness >= 70,
			ReworkRequired: p.LateStageAdjustments >= 2,
		},
	}
}

// completionSmoothness measures whether completion was spread evenly
// across weeks. It is 100 minus the relative spread of per-week
// completion ratios, clamped to [0,100]: even completion scores 100,
// completion concentrated in a single week collapses toward 0.
func completionSmoothness(p *models.Plan) float64 {
	var ratios []float64
	for wi := range p.Weeks {
		w := &p.Weeks[wi]
		if len(w.Tasks) == 0 {
			continue
		}
		done := 0
		for ti := range w.Tasks {
			if w.Tasks[ti].ExecutionState == models.StateDone {
				done++
			}
		}
		ratios = append(ratios, float64(done)/float64(len(w.Tasks)))
	}
	if len(ratios) == 0 {
		return 0
	}

	mean := 0.0
	for _, r := range ratios {
		mean += r
	}
	mean /= float64(len(ratios))
	if mean == 0 {
		return 0
	}

	variance := 0.0
	for _, r := range ratios {
		variance += (r - mean) * (r - mean)
	}
	variance /= float64(len(ratios))
	spread := math.Sqrt(variance) / mean

	return clamp(100-100*spread, 0, 100)
}

// planningAlignment measures whether execution followed planned week
// order: the percentage of consecutive completion pairs (sorted by
// completion time) whose week indices are non-decreasing. Tasks that
// never got a completion timestamp are excluded; with fewer than two
// datable completions there is no evidence of misalignment and the
// score is 100.
func planningAlignment(p *models.Plan) float64 {
	type stamped struct {
		week int
		at   time.Time
	}
	var done []stamped
	for wi := range p.Weeks {
		for ti := range p.Weeks[wi].Tasks {
			t := p.Weeks[wi].Tasks[ti]
			if t.ExecutionState == models.StateDone && t.CompletedAt != nil {
				done = append(done, stamped{week: wi, at: *t.CompletedAt})
			}
		}
	}
	if len(done) < 2 {
		return 100
	}
	sort.Slice(done, func(i, j int) bool { return done[i].at.Before(done[j].at) })

	ordered := 0
	pairs := len(done) - 1
	for i := 0; i < pairs; i++ {
		if done[i+1].week >= done[i].week {
			ordered++
		}
	}
	return float64(ordered) / float64(pairs) * 100
}

// frontLoaded reports whether completions concentrated in the first half
// of the plan: first-half count strictly above 1.3x the second half.
func frontLoaded(p *models.Plan) bool {
	if len(p.Weeks) < 2 {
		return false
	}
	half := (len(p.Weeks) + 1) / 2
	firstHalf, secondHalf := 0, 0
	for wi := range p.Weeks {
		for ti := range p.Weeks[wi].Tasks {
			if p.Weeks[wi].Tasks[ti].ExecutionState != models.StateDone {
				continue
			}
			if wi < half {
				firstHalf++
			} else {
				secondHalf++
			}
		}
	}
	if firstHalf == 0 {
		return false
	}
	return float64(firstHalf) > 1.3*float64(secondHalf)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
