package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/classifystack/drift-engine/internal/models"
)

var (
	runsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "drift_engine",
			Name:      "runs_total",
			Help:      "Total number of drift analysis runs, partitioned by report status.",
		},
		[]string{"status"},
	)

	runDurationSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "drift_engine",
			Name:      "run_seconds",
			Help:      "Drift analysis latency in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 3, 5, 8, 10},
		},
	)

	overallDriftScore = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "drift_engine",
			Name:      "overall_drift_score",
			Help:      "Overall drift score from the most recent completed run.",
		},
	)

	severityLevel = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "drift_engine",
			Name:      "severity_level",
			Help:      "Severity rank from the most recent completed run (0=OK 1=WARNING 2=ALERT 3=CRITICAL).",
		},
	)
)

// Register attaches drift-engine collectors to the supplied Prometheus registerer.
func Register(reg prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		runsTotal,
		runDurationSeconds,
		overallDriftScore,
		severityLevel,
	}

	for _, collector := range collectors {
		if err := reg.Register(collector); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); ok {
				continue
			}
			return err
		}
	}
	return nil
}

// ObserveRun records one drift analysis run. Score and severity gauges are
// only updated for completed runs so a failed run does not zero them out.
func ObserveRun(duration time.Duration, report models.DriftReport) {
	runsTotal.WithLabelValues(string(report.Status)).Inc()
	if duration < 0 {
		duration = 0
	}
	runDurationSeconds.Observe(duration.Seconds())

	if report.Status == models.StatusCompleted {
		overallDriftScore.Set(report.OverallDriftScore)
		severityLevel.Set(float64(report.Severity.Rank()))
	}
}
