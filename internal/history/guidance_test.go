package history

import (
	"testing"
	"time"

	"github.com/balkashynov/stride/internal/models"
)

func historyOf(snaps ...models.PlanCycleSnapshot) *models.ProgressHistory {
	return &models.ProgressHistory{Snapshots: snaps, TotalPlansTracked: len(snaps)}
}

func TestGuidance_EstimationBias(t *testing.T) {
	base := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	h := historyOf(
		makeSnap(base, 30, 80, 80, 0, 5),
		makeSnap(base.AddDate(0, 0, 30), 40, 80, 80, 0, 5),
		makeSnap(base.AddDate(0, 0, 60), 35, 80, 80, 0, 5),
	)

	now := base.AddDate(0, 0, 61)
	g := Guidance(h, now)

	if g.SnapshotCount != 3 {
		t.Errorf("snapshot count = %d, want 3", g.SnapshotCount)
	}
	if !g.GeneratedAt.Equal(now) {
		t.Errorf("generated at = %v, want %v", g.GeneratedAt, now)
	}

	var bias *Adjustment
	for i := range g.Adjustments {
		if g.Adjustments[i].Source == "estimation_bias" {
			bias = &g.Adjustments[i]
		}
	}
	if bias == nil {
		t.Fatal("three consistently overrun cycles should trigger the estimation bias detector")
	}
	if bias.Confidence != ConfidenceHigh {
		t.Errorf("confidence = %s, want high with three cycles of evidence", bias.Confidence)
	}
}

func TestGuidance_DetectorsAbstainOnCleanHistory(t *testing.T) {
	base := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	h := historyOf(
		makeSnap(base, 0, 90, 85, 0, 5),
		makeSnap(base.AddDate(0, 0, 30), 5, 95, 90, 0, 6),
	)

	g := Guidance(h, base.AddDate(0, 0, 31))
	if len(g.Adjustments) != 0 {
		t.Errorf("clean history produced adjustments: %+v", g.Adjustments)
	}
}

func TestGuidance_CapsAndOrdersByConfidence(t *testing.T) {
	base := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	// Built to fire five detectors at once: heavy overrun every cycle,
	// rework every cycle, lumpy high-throughput latest cycle, declining
	// smoothness and late restructuring plus overrun.
	h := historyOf(
		makeSnap(base, 30, 80, 80, 2, 10),
		makeSnap(base.AddDate(0, 0, 30), 40, 80, 40, 2, 10),
		makeSnap(base.AddDate(0, 0, 60), 45, 80, 20, 3, 10),
	)

	g := Guidance(h, base.AddDate(0, 0, 61))
	if len(g.Adjustments) != maxAdjustments {
		t.Fatalf("adjustment count = %d, want the cap of %d", len(g.Adjustments), maxAdjustments)
	}
	for i := 1; i < len(g.Adjustments); i++ {
		if confidenceRank(g.Adjustments[i-1].Confidence) < confidenceRank(g.Adjustments[i].Confidence) {
			t.Errorf("adjustments not ordered by confidence: %+v", g.Adjustments)
		}
	}
}

func TestGuidance_EmptyHistory(t *testing.T) {
	g := Guidance(&models.ProgressHistory{}, time.Now())
	if len(g.Adjustments) != 0 || g.SnapshotCount != 0 {
		t.Errorf("empty history guidance = %+v", g)
	}
}

func TestGuidanceResult_Valid(t *testing.T) {
	base := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	h := historyOf(
		makeSnap(base, 0, 90, 85, 0, 5),
		makeSnap(base.AddDate(0, 0, 30), 0, 90, 85, 0, 5),
	)

	generated := base.AddDate(0, 0, 31)
	g := &GuidanceResult{SnapshotCount: 2, GeneratedAt: generated}

	if !g.Valid(h, generated.Add(time.Hour)) {
		t.Error("fresh cache for the current history should be valid")
	}
	if g.Valid(h, generated.Add(25*time.Hour)) {
		t.Error("cache older than a day should be invalid")
	}

	// A new snapshot invalidates immediately, age notwithstanding.
	h.Snapshots = append(h.Snapshots, makeSnap(generated, 0, 90, 85, 0, 5))
	if g.Valid(h, generated.Add(time.Minute)) {
		t.Error("cache must be invalid once the snapshot count changes")
	}
}

func TestGuidanceCache_RoundTrip(t *testing.T) {
	cache := NewGuidanceCache(t.TempDir())

	if cache.Load() != nil {
		t.Fatal("empty cache returned a result")
	}

	result := &GuidanceResult{
		Adjustments:   []Adjustment{{Source: "estimation_bias", Suggestion: "scale up", Confidence: ConfidenceHigh}},
		SnapshotCount: 4,
		GeneratedAt:   time.Date(2026, 8, 25, 10, 0, 0, 0, time.UTC),
	}
	if err := cache.Save(result); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := cache.Load()
	if got == nil {
		t.Fatal("saved result not loaded")
	}
	if got.SnapshotCount != 4 || len(got.Adjustments) != 1 {
		t.Errorf("loaded result mismatch: %+v", got)
	}
	if got.Adjustments[0].Source != "estimation_bias" {
		t.Errorf("adjustment source = %s, want estimation_bias", got.Adjustments[0].Source)
	}
	if !got.GeneratedAt.Equal(result.GeneratedAt) {
		t.Errorf("generated at = %v, want %v", got.GeneratedAt, result.GeneratedAt)
	}

	if err := cache.Clear(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cache.Load() != nil {
		t.Error("cache not cleared")
	}
	if err := cache.Clear(); err != nil {
		t.Errorf("clearing an empty cache should be fine: %v", err)
	}
}
