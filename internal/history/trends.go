package history

import (
	"math"

	"github.com/balkashynov/stride/internal/models"
)

// Trend directions
const (
	TrendImproving = "improving"
	TrendStable    = "stable"
	TrendDeclining = "declining"
)

// Confidence levels, shared by trends and guidance
const (
	ConfidenceHigh   = "high"
	ConfidenceMedium = "medium"
	ConfidenceLow    = "low"
)

// DefaultTrendWindow is how many recent snapshots a trend looks at.
const DefaultTrendWindow = 3

// Trend is the outcome of comparing a metric's early window against its
// late window.
type Trend struct {
	Metric        string
	Direction     string
	PercentChange float64
	Confidence    string
}

// trendMetric names a snapshot metric and whether lower values are
// better (inverted).
type trendMetric struct {
	name     string
	inverted bool
	value    func(s *models.PlanCycleSnapshot) float64
}

var trendMetrics = []trendMetric{
	{"completion_rate", false, func(s *models.PlanCycleSnapshot) float64 { return s.Metrics.CompletionRate }},
	{"completion_smoothness", false, func(s *models.PlanCycleSnapshot) float64 { return s.Metrics.CompletionSmoothness }},
	{"planning_alignment", false, func(s *models.PlanCycleSnapshot) float64 { return s.Metrics.PlanningAlignment }},
	{"average_overrun_percent", true, func(s *models.PlanCycleSnapshot) float64 { return s.Metrics.AverageOverrunPercent }},
	{"late_stage_adjustments", true, func(s *models.PlanCycleSnapshot) float64 { return float64(s.Metrics.LateStageAdjustments) }},
}

// DetectTrend runs the two-window comparison over the given values in
// chronological order. This is deliberately not a regression: with 2-10
// snapshots a half-vs-half average comparison is the honest amount of
// statistics.
func DetectTrend(metric string, values []float64, inverted bool) Trend {
	t := Trend{Metric: metric, Direction: TrendStable, Confidence: ConfidenceLow}
	if len(values) < 2 {
		return t
	}

	mid := len(values) / 2
	earlier := average(values[:mid])
	later := average(values[mid:])

	var change float64
	switch {
	case earlier != 0:
		change = (later - earlier) / math.Abs(earlier) * 100
	case later != 0:
		change = 100
	}
	t.PercentChange = change

	if math.Abs(change) >= 5 {
		better := change > 0
		if inverted {
			better = change < 0
		}
		if better {
			t.Direction = TrendImproving
		} else {
			t.Direction = TrendDeclining
		}
	}

	switch {
	case len(values) >= 3 && math.Abs(change) > 15:
		t.Confidence = ConfidenceHigh
	case len(values) >= 2 && math.Abs(change) > 5:
		t.Confidence = ConfidenceMedium
	}
	return t
}

// Trends computes the trend for every tracked metric over the last
// window snapshots.
func Trends(h *models.ProgressHistory, window int) []Trend {
	if window <= 0 {
		window = DefaultTrendWindow
	}
	snaps := h.LastN(window)

	out := make([]Trend, 0, len(trendMetrics))
	for _, m := range trendMetrics {
		values := make([]float64, 0, len(snaps))
		for i := range snaps {
			values = append(values, m.value(&snaps[i]))
		}
		out = append(out, DetectTrend(m.name, values, m.inverted))
	}
	return out
}

func average(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func confidenceRank(c string) int {
	switch c {
	case ConfidenceHigh:
		return 2
	case ConfidenceMedium:
		return 1
	default:
		return 0
	}
}
