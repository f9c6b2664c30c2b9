package metrics

import (
	"strings"
	"testing"
)

func TestHistogramBucketsAreCumulative(t *testing.T) {
	h := newHistogram([]float64{10, 100})
	h.Observe(5)
	h.Observe(50)
	h.Observe(500)

	snap := h.Snapshot()
	var cumulative uint64
	for i := range snap.buckets {
		cumulative += snap.counts[i]
	}
	if cumulative != 2 {
		t.Fatalf("expected 2 observations within bounds, got %d", cumulative)
	}
	if snap.count != 3 {
		t.Fatalf("expected count 3, got %d", snap.count)
	}
}

func TestRenderIncludesStageFailures(t *testing.T) {
	IncGenerationStarted()
	IncStageFailure("rewrite")
	IncStageFailure("rewrite")
	IncConversion(false)

	out := Render()
	for _, want := range []string{
		"resume_generation_started_total",
		`resume_stage_failures_total{stage="rewrite"}`,
		"resume_conversion_failures_total",
		`resume_generation_duration_ms_bucket{le="+Inf"}`,
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in metrics output:\n%s", want, out)
		}
	}
}
