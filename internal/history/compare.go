package history

import (
	"fmt"
	"math"

	"github.com/balkashynov/stride/internal/models"
)

// ComparisonInsight is one material difference between the two most
// recent plan cycles.
type ComparisonInsight struct {
	Metric   string
	Previous float64
	Latest   float64
	Improved bool
	Summary  string
}

// ComparePlans diffs the two most recent snapshots on overrun,
// smoothness and late-stage adjustments. A difference only becomes an
// insight when it clears the metric's materiality threshold (5, 10 and
// 1 respectively); smaller moves are noise at this sample size.
func ComparePlans(h *models.ProgressHistory) []ComparisonInsight {
	if len(h.Snapshots) < 2 {
		return nil
	}
	prev := h.Snapshots[len(h.Snapshots)-2]
	latest := h.Snapshots[len(h.Snapshots)-1]

	var out []ComparisonInsight

	if d := latest.Metrics.AverageOverrunPercent - prev.Metrics.AverageOverrunPercent; math.Abs(d) >= 5 {
		improved := d < 0
		out = append(out, ComparisonInsight{
			Metric:   "average_overrun_percent",
			Previous: prev.Metrics.AverageOverrunPercent,
			Latest:   latest.Metrics.AverageOverrunPercent,
			Improved: improved,
			Summary:  deltaSummary("Estimate overrun", d, improved, "pp"),
		})
	}

	if d := latest.Metrics.CompletionSmoothness - prev.Metrics.CompletionSmoothness; math.Abs(d) >= 10 {
		improved := d > 0
		out = append(out, ComparisonInsight{
			Metric:   "completion_smoothness",
			Previous: prev.Metrics.CompletionSmoothness,
			Latest:   latest.Metrics.CompletionSmoothness,
			Improved: improved,
			Summary:  deltaSummary("Completion smoothness", d, improved, "points"),
		})
	}

	if d := latest.Metrics.LateStageAdjustments - prev.Metrics.LateStageAdjustments; d != 0 {
		improved := d < 0
		out = append(out, ComparisonInsight{
			Metric:   "late_stage_adjustments",
			Previous: float64(prev.Metrics.LateStageAdjustments),
			Latest:   float64(latest.Metrics.LateStageAdjustments),
			Improved: improved,
			Summary:  deltaSummary("Late-stage plan changes", float64(d), improved, ""),
		})
	}

	return out
}

func deltaSummary(label string, delta float64, improved bool, unit string) string {
	verb := "worsened"
	if improved {
		verb = "improved"
	}
	if unit != "" {
		unit = " " + unit
	}
	return fmt.Sprintf("%s %s by %.1f%s vs the previous cycle", label, verb, math.Abs(delta), unit)
}
