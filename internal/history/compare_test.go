package history

import (
	"testing"
	"time"

	"github.com/balkashynov/stride/internal/models"
)

func TestComparePlans_MaterialDifferences(t *testing.T) {
	base := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	h := historyOf(
		makeSnap(base, 30, 70, 50, 2, 5),
		makeSnap(base.AddDate(0, 0, 30), 10, 80, 80, 0, 6),
	)

	insights := ComparePlans(h)
	if len(insights) != 3 {
		t.Fatalf("insight count = %d, want 3: %+v", len(insights), insights)
	}

	byMetric := map[string]ComparisonInsight{}
	for _, in := range insights {
		byMetric[in.Metric] = in
	}

	overrun, ok := byMetric["average_overrun_percent"]
	if !ok || !overrun.Improved {
		t.Errorf("overrun drop from 30 to 10 should be an improvement: %+v", overrun)
	}
	smooth, ok := byMetric["completion_smoothness"]
	if !ok || !smooth.Improved {
		t.Errorf("smoothness rise from 50 to 80 should be an improvement: %+v", smooth)
	}
	late, ok := byMetric["late_stage_adjustments"]
	if !ok || !late.Improved {
		t.Errorf("late adjustments dropping to zero should be an improvement: %+v", late)
	}
	if late.Previous != 2 || late.Latest != 0 {
		t.Errorf("late adjustment values = %.0f -> %.0f, want 2 -> 0", late.Previous, late.Latest)
	}
}

func TestComparePlans_NoiseSuppressed(t *testing.T) {
	base := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	h := historyOf(
		makeSnap(base, 10, 80, 70, 1, 5),
		makeSnap(base.AddDate(0, 0, 30), 13, 82, 75, 1, 5),
	)

	if insights := ComparePlans(h); len(insights) != 0 {
		t.Errorf("sub-threshold moves produced insights: %+v", insights)
	}
}

func TestComparePlans_NeedsTwoSnapshots(t *testing.T) {
	h := historyOf(makeSnap(time.Now(), 10, 80, 70, 0, 5))
	if insights := ComparePlans(h); insights != nil {
		t.Errorf("single snapshot produced insights: %+v", insights)
	}
}

func TestAttributions_CappedAtTwo(t *testing.T) {
	base := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	prev := makeSnap(base, 30, 60, 50, 2, 5)
	latest := makeSnap(base.AddDate(0, 0, 30), 10, 90, 85, 0, 8)
	latest.Patterns.FrontLoaded = true
	latest.PlanType = models.PlanTypeStrategic

	// Four rules match this pair; only the first two may surface.
	attrs := Attributions(historyOf(prev, latest))
	if len(attrs) != maxAttributions {
		t.Fatalf("attribution count = %d, want %d", len(attrs), maxAttributions)
	}
	if attrs[0].Source != "front_loading" || attrs[1].Source != "consistent_pace" {
		t.Errorf("attribution order = %s, %s; want front_loading, consistent_pace", attrs[0].Source, attrs[1].Source)
	}
}

func TestAttributions_NoSignal(t *testing.T) {
	base := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	h := historyOf(
		makeSnap(base, 10, 80, 80, 0, 5),
		makeSnap(base.AddDate(0, 0, 30), 12, 78, 80, 0, 5),
	)
	if attrs := Attributions(h); len(attrs) != 0 {
		t.Errorf("flat cycles produced attributions: %+v", attrs)
	}
}
