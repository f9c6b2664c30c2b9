package metrics

import (
	"bytes"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/gin-gonic/gin"
)

var (
	generationStartedTotal   atomic.Uint64
	generationCompletedTotal atomic.Uint64
	generationFailedTotal    atomic.Uint64
	conversionsTotal         atomic.Uint64
	conversionFailuresTotal  atomic.Uint64

	stageFailures sync.Map // stage name -> *atomic.Uint64

	generationDuration = newHistogram([]float64{500, 1000, 2500, 5000, 10000, 20000, 30000, 60000, 120000})
)

// IncGenerationStarted increments the started counter.
func IncGenerationStarted() {
	generationStartedTotal.Add(1)
}

// IncGenerationCompleted increments the completed counter.
func IncGenerationCompleted() {
	generationCompletedTotal.Add(1)
}

// IncGenerationFailed increments the failed counter.
func IncGenerationFailed() {
	generationFailedTotal.Add(1)
}

// IncStageFailure counts a pipeline failure attributed to stage.
func IncStageFailure(stage string) {
	v, _ := stageFailures.LoadOrStore(stage, new(atomic.Uint64))
	v.(*atomic.Uint64).Add(1)
}

// IncConversion records a portable-format conversion attempt.
func IncConversion(ok bool) {
	conversionsTotal.Add(1)
	if !ok {
		conversionFailuresTotal.Add(1)
	}
}

// ObserveGenerationDurationMs records a generation duration in milliseconds.
func ObserveGenerationDurationMs(value float64) {
	if value < 0 {
		value = 0
	}
	generationDuration.Observe(value)
}

// Handler exposes metrics in Prometheus text format.
func Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Content-Type", "text/plain; version=0.0.4")
		c.String(http.StatusOK, Render())
	}
}

// Render renders metrics in Prometheus text format.
func Render() string {
	var buf bytes.Buffer
	writeCounter(&buf, "resume_generation_started_total", "Total resume generations started", generationStartedTotal.Load())
	writeCounter(&buf, "resume_generation_completed_total", "Total resume generations completed", generationCompletedTotal.Load())
	writeCounter(&buf, "resume_generation_failed_total", "Total resume generations failed", generationFailedTotal.Load())
	writeCounter(&buf, "resume_conversions_total", "Total portable conversions attempted", conversionsTotal.Load())
	writeCounter(&buf, "resume_conversion_failures_total", "Total portable conversions failed", conversionFailuresTotal.Load())
	writeStageFailures(&buf)
	writeHistogram(&buf, "resume_generation_duration_ms", "Resume generation duration in milliseconds", generationDuration.Snapshot())
	return buf.String()
}

type histogram struct {
	mu      sync.Mutex
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

type histogramSnapshot struct {
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

func newHistogram(buckets []float64) *histogram {
	return &histogram{
		buckets: buckets,
		counts:  make([]uint64, len(buckets)),
	}
}

func (h *histogram) Observe(value float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.count++
	h.sum += value
	for i, bound := range h.buckets {
		if value <= bound {
			h.counts[i]++
			return
		}
	}
}

func (h *histogram) Snapshot() histogramSnapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := histogramSnapshot{
		buckets: append([]float64(nil), h.buckets...),
		counts:  append([]uint64(nil), h.counts...),
		sum:     h.sum,
		count:   h.count,
	}
	return out
}

func writeCounter(buf *bytes.Buffer, name, help string, value uint64) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s counter\n", name)
	fmt.Fprintf(buf, "%s %d\n", name, value)
}

func writeHistogram(buf *bytes.Buffer, name, help string, snap histogramSnapshot) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s histogram\n", name)
	var cumulative uint64
	for i, bound := range snap.buckets {
		cumulative += snap.counts[i]
		fmt.Fprintf(buf, "%s_bucket{le=\"%s\"} %d\n", name, formatFloat(bound), cumulative)
	}
	fmt.Fprintf(buf, "%s_bucket{le=\"+Inf\"} %d\n", name, snap.count)
	fmt.Fprintf(buf, "%s_sum %s\n", name, formatFloat(snap.sum))
	fmt.Fprintf(buf, "%s_count %d\n", name, snap.count)
}

func writeStageFailures(buf *bytes.Buffer) {
	var stages []string
	stageFailures.Range(func(k, _ any) bool {
		stages = append(stages, k.(string))
		return true
	})
	sort.Strings(stages)
	fmt.Fprintf(buf, "# HELP resume_stage_failures_total Pipeline failures by stage\n")
	fmt.Fprintf(buf, "# TYPE resume_stage_failures_total counter\n")
	for _, stage := range stages {
		v, _ := stageFailures.Load(stage)
		fmt.Fprintf(buf, "resume_stage_failures_total{stage=%q} %d\n", stage, v.(*atomic.Uint64).Load())
	}
}

func formatFloat(value float64) string {
	if value == float64(int64(value)) {
		return strconv.FormatInt(int64(value), 10)
	}
	return strconv.FormatFloat(value, 'f', -1, 64)
}
