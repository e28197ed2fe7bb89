package history

import "github.com/balkashynov/stride/internal/models"

// Attribution labels a likely cause for an improvement between the two
// most recent cycles. These are co-occurrence heuristics, not causal
// claims, and at most two are surfaced per cycle.
type Attribution struct {
	Source  string
	Summary string
}

const maxAttributions = 2

type attributionRule struct {
	source string
	apply  func(prev, latest *models.PlanCycleSnapshot) (string, bool)
}

var attributionRules = []attributionRule{
	{
		source: "front_loading",
		apply: func(prev, latest *models.PlanCycleSnapshot) (string, bool) {
			if latest.Patterns.FrontLoaded && latest.Metrics.AverageOverrunPercent < prev.Metrics.AverageOverrunPercent-5 {
				return "Estimate overrun dropped in a cycle where you front-loaded work", true
			}
			return "", false
		},
	},
	{
		source: "consistent_pace",
		apply: func(prev, latest *models.PlanCycleSnapshot) (string, bool) {
			if latest.Patterns.ConsistentPace && latest.Metrics.CompletionRate > prev.Metrics.CompletionRate+5 {
				return "Completion rate rose in a cycle with a consistent weekly pace", true
			}
			return "", false
		},
	},
	{
		source: "less_rework",
		apply: func(prev, latest *models.PlanCycleSnapshot) (string, bool) {
			if prev.Patterns.ReworkRequired && !latest.Patterns.ReworkRequired &&
				latest.Metrics.CompletionSmoothness > prev.Metrics.CompletionSmoothness {
				return "Smoothness recovered once late rework stopped", true
			}
			return "", false
		},
	},
	{
		source: "strategic_planning",
		apply: func(prev, latest *models.PlanCycleSnapshot) (string, bool) {
			if latest.PlanType == models.PlanTypeStrategic && prev.PlanType == models.PlanTypeStandard &&
				latest.Metrics.CompletionRate > prev.Metrics.CompletionRate+5 {
				return "Completion rate improved after switching to a strategic plan", true
			}
			return "", false
		},
	},
}

// Attributions runs the fixed rule set over the two most recent
// snapshots, capped so the system never over-claims.
func Attributions(h *models.ProgressHistory) []Attribution {
	if len(h.Snapshots) < 2 {
		return nil
	}
	prev := &h.Snapshots[len(h.Snapshots)-2]
	latest := &h.Snapshots[len(h.Snapshots)-1]

	var out []Attribution
	for _, rule := range attributionRules {
		if len(out) == maxAttributions {
			break
		}
		if summary, ok := rule.apply(prev, latest); ok {
			out = append(out, Attribution{Source: rule.source, Summary: summary})
		}
	}
	return out
}
