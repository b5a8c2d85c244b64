package metrics

import (
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PipelineMetrics records per-step timings and outcomes for sale runs.
type PipelineMetrics struct {
	stepDuration *prometheus.HistogramVec
	stepSuccess  *prometheus.CounterVec
	stepFailure  *prometheus.CounterVec
	runOutcome   *prometheus.CounterVec
}

// NewPipelineMetrics registers the sale pipeline metrics on the provided registerer.
func NewPipelineMetrics(reg prometheus.Registerer) *PipelineMetrics {
	if reg == nil {
		return &PipelineMetrics{}
	}
	stepDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "sale_step_duration_seconds",
		Help:    "Duration of sale pipeline steps in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"step"})
	stepSuccess := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sale_step_success",
		Help: "Successful sale pipeline step executions.",
	}, []string{"step"})
	stepFailure := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sale_step_failure",
		Help: "Failed sale pipeline step executions.",
	}, []string{"step"})
	runOutcome := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sale_run_outcome",
		Help: "Terminal sale run outcomes.",
	}, []string{"outcome"})
	reg.MustRegister(stepDuration, stepSuccess, stepFailure, runOutcome)
	return &PipelineMetrics{
		stepDuration: stepDuration,
		stepSuccess:  stepSuccess,
		stepFailure:  stepFailure,
		runOutcome:   runOutcome,
	}
}

// ObserveStep records one step execution.
func (p *PipelineMetrics) ObserveStep(step string, duration time.Duration, failed bool) {
	if p == nil || p.stepDuration == nil {
		return
	}
	label := normalizeLabel(step)
	p.stepDuration.WithLabelValues(label).Observe(duration.Seconds())
	if failed {
		p.stepFailure.WithLabelValues(label).Inc()
		return
	}
	p.stepSuccess.WithLabelValues(label).Inc()
}

// ObserveRun records the terminal outcome of a run.
func (p *PipelineMetrics) ObserveRun(outcome string) {
	if p == nil || p.runOutcome == nil {
		return
	}
	p.runOutcome.WithLabelValues(normalizeLabel(outcome)).Inc()
}

func normalizeLabel(value string) string {
	value = strings.TrimSpace(strings.ToLower(value))
	if value == "" {
		return "unknown"
	}
	return strings.ReplaceAll(value, " ", "_")
}
