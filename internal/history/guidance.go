package history

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/balkashynov/stride/internal/models"
)

// Adjustment is one next-cycle suggestion emitted by a detector.
type Adjustment struct {
	Source     string `json:"source"`
	Suggestion string `json:"suggestion"`
	Confidence string `json:"confidence"`
}

// GuidanceResult is the assembled next-cycle guidance.
type GuidanceResult struct {
	Adjustments   []Adjustment `json:"adjustments"`
	SnapshotCount int          `json:"snapshot_count"`
	GeneratedAt   time.Time    `json:"generated_at"`
}

// guidanceWindow is how many recent snapshots the detectors see.
const guidanceWindow = 3

// maxAdjustments caps how many suggestions are surfaced per cycle.
const maxAdjustments = 3

// detector inspects the recent snapshots and either abstains (nil) or
// emits exactly one adjustment.
type detector func(snaps []models.PlanCycleSnapshot) *Adjustment

var detectors = []struct {
	name string
	fn   detector
}{
	{"parallel_overload", detectParallelOverload},
	{"coordination_buffer", detectCoordinationBuffer},
	{"late_rework", detectLateRework},
	{"front_loading", detectFrontLoadingBenefit},
	{"estimation_bias", detectEstimationBias},
	{"smoothness_decline", detectSmoothnessDecline},
	{"strategic_advantage", detectStrategicAdvantage},
}

// Guidance runs every detector over the last snapshots, sorts what
// fired by confidence and keeps the top suggestions. Detectors are
// independent; the confidence sort is the only priority between them.
func Guidance(h *models.ProgressHistory, now time.Time) GuidanceResult {
	snaps := h.LastN(guidanceWindow)

	var adjustments []Adjustment
	for _, d := range detectors {
		if adj := d.fn(snaps); adj != nil {
			adj.Source = d.name
			adjustments = append(adjustments, *adj)
		}
	}

	sort.SliceStable(adjustments, func(i, j int) bool {
		return confidenceRank(adjustments[i].Confidence) > confidenceRank(adjustments[j].Confidence)
	})
	if len(adjustments) > maxAdjustments {
		adjustments = adjustments[:maxAdjustments]
	}

	return GuidanceResult{
		Adjustments:   adjustments,
		SnapshotCount: len(h.Snapshots),
		GeneratedAt:   now,
	}
}

// Valid reports whether a cached guidance result may still be served:
// it must come from the same snapshot count as the current history and
// be younger than 24 hours. A newly archived plan invalidates it
// immediately regardless of age.
func (g *GuidanceResult) Valid(h *models.ProgressHistory, now time.Time) bool {
	if g.SnapshotCount != len(h.Snapshots) {
		return false
	}
	return now.Sub(g.GeneratedAt) < 24*time.Hour
}

// detectParallelOverload fires when the last cycle pushed through many
// tasks but completion came out lumpy, a sign of too much in flight at
// once.
func detectParallelOverload(snaps []models.PlanCycleSnapshot) *Adjustment {
	if len(snaps) == 0 {
		return nil
	}
	latest := snaps[len(snaps)-1]
	if latest.Metrics.TasksCompleted < 8 || latest.Metrics.CompletionSmoothness >= 50 {
		return nil
	}
	conf := ConfidenceMedium
	if latest.Metrics.CompletionSmoothness < 25 {
		conf = ConfidenceHigh
	}
	return &Adjustment{
		Suggestion: "Limit how many tasks run in parallel; completion bunched up despite high throughput",
		Confidence: conf,
	}
}

// detectCoordinationBuffer fires when estimates keep overrunning while
// the plan also needed late restructuring: both point at missing buffer
// time around dependent work.
func detectCoordinationBuffer(snaps []models.PlanCycleSnapshot) *Adjustment {
	if len(snaps) == 0 {
		return nil
	}
	latest := snaps[len(snaps)-1]
	if latest.Metrics.AverageOverrunPercent <= 25 || latest.Metrics.LateStageAdjustments < 2 {
		return nil
	}
	return &Adjustment{
		Suggestion: "Add explicit buffer tasks for coordination; overruns plus late plan changes suggest hidden waiting time",
		Confidence: ConfidenceMedium,
	}
}

// detectLateRework fires when most recent cycles needed rework late in
// the plan.
func detectLateRework(snaps []models.PlanCycleSnapshot) *Adjustment {
	if len(snaps) < 2 {
		return nil
	}
	rework := 0
	for i := range snaps {
		if snaps[i].Patterns.ReworkRequired {
			rework++
		}
	}
	if rework*2 <= len(snaps) {
		return nil
	}
	conf := ConfidenceMedium
	if rework == len(snaps) && len(snaps) >= 3 {
		conf = ConfidenceHigh
	}
	return &Adjustment{
		Suggestion: "Schedule a mid-cycle review week; recent cycles kept needing late restructuring",
		Confidence: conf,
	}
}

// detectFrontLoadingBenefit compares overrun between front-loaded and
// evenly loaded cycles and recommends front-loading when it clearly
// paid off.
func detectFrontLoadingBenefit(snaps []models.PlanCycleSnapshot) *Adjustment {
	var frontSum, restSum float64
	var frontN, restN int
	for i := range snaps {
		if snaps[i].Patterns.FrontLoaded {
			frontSum += snaps[i].Metrics.AverageOverrunPercent
			frontN++
		} else {
			restSum += snaps[i].Metrics.AverageOverrunPercent
			restN++
		}
	}
	if frontN == 0 || restN == 0 {
		return nil
	}
	if frontSum/float64(frontN) >= restSum/float64(restN)-10 {
		return nil
	}
	return &Adjustment{
		Suggestion: "Front-load the heavier tasks into the first weeks; your front-loaded cycles overran noticeably less",
		Confidence: ConfidenceMedium,
	}
}

// detectEstimationBias fires when every recent cycle missed estimates in
// the same direction beyond the tolerance band.
func detectEstimationBias(snaps []models.PlanCycleSnapshot) *Adjustment {
	if len(snaps) < 2 {
		return nil
	}
	allOver, allUnder := true, true
	sum := 0.0
	for i := range snaps {
		v := snaps[i].Metrics.AverageOverrunPercent
		sum += v
		if v <= 20 {
			allOver = false
		}
		if v >= -20 {
			allUnder = false
		}
	}
	if !allOver && !allUnder {
		return nil
	}
	avg := sum / float64(len(snaps))
	conf := ConfidenceMedium
	if len(snaps) >= 3 {
		conf = ConfidenceHigh
	}
	if allOver {
		return &Adjustment{
			Suggestion: fmt.Sprintf("Scale estimates up by roughly %.0f%%; every recent cycle ran over", math.Abs(avg)),
			Confidence: conf,
		}
	}
	return &Adjustment{
		Suggestion: fmt.Sprintf("Scale estimates down by roughly %.0f%%; every recent cycle finished well under", math.Abs(avg)),
		Confidence: conf,
	}
}

// detectSmoothnessDecline defers to the trend engine and fires when
// smoothness is declining with at least medium confidence.
func detectSmoothnessDecline(snaps []models.PlanCycleSnapshot) *Adjustment {
	values := make([]float64, 0, len(snaps))
	for i := range snaps {
		values = append(values, snaps[i].Metrics.CompletionSmoothness)
	}
	t := DetectTrend("completion_smoothness", values, false)
	if t.Direction != TrendDeclining || t.Confidence == ConfidenceLow {
		return nil
	}
	return &Adjustment{
		Suggestion: "Plan smaller weekly batches; completion is getting lumpier cycle over cycle",
		Confidence: t.Confidence,
	}
}

// detectStrategicAdvantage fires when strategic cycles clearly
// outperform standard ones on completion rate.
func detectStrategicAdvantage(snaps []models.PlanCycleSnapshot) *Adjustment {
	var stratSum, stdSum float64
	var stratN, stdN int
	for i := range snaps {
		switch snaps[i].PlanType {
		case models.PlanTypeStrategic:
			stratSum += snaps[i].Metrics.CompletionRate
			stratN++
		case models.PlanTypeStandard:
			stdSum += snaps[i].Metrics.CompletionRate
			stdN++
		}
	}
	if stratN == 0 || stdN == 0 {
		return nil
	}
	if stratSum/float64(stratN) <= stdSum/float64(stdN)+10 {
		return nil
	}
	return &Adjustment{
		Suggestion: "Keep using strategic plans; they complete at a clearly higher rate than your standard cycles",
		Confidence: ConfidenceMedium,
	}
}
