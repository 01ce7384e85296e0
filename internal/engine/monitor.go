// Package engine implements the drift analysis pipeline: window selection
// over the inference log, the statistical test suite per dimension, score
// aggregation, severity classification, and report construction.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/classifystack/drift-engine/internal/inferlog"
	"github.com/classifystack/drift-engine/internal/models"
)

// LogSource loads the inference records to analyse.
type LogSource interface {
	Load(ctx context.Context) ([]models.InferenceRecord, error)
}

// ReportStore persists one report row per run.
type ReportStore interface {
	SaveReport(ctx context.Context, report models.DriftReport) (int64, error)
}

// Config carries the analysis parameters. Construct once and pass in; the
// engine never consults process-wide state, so concurrent runs with
// different settings stay reproducible.
type Config struct {
	ReferenceWindowDays   int
	CurrentWindowDays     int
	MinSamplesForAnalysis int
	Bins                  int
	Thresholds            Thresholds
}

// withDefaults fills zero values with the standard parameters.
func (c Config) withDefaults() Config {
	if c.ReferenceWindowDays <= 0 {
		c.ReferenceWindowDays = 30
	}
	if c.CurrentWindowDays <= 0 {
		c.CurrentWindowDays = 7
	}
	if c.MinSamplesForAnalysis <= 0 {
		c.MinSamplesForAnalysis = 100
	}
	if c.Bins <= 0 {
		c.Bins = 10
	}
	if c.Thresholds == (Thresholds{}) {
		c.Thresholds = DefaultThresholds()
	}
	return c
}

// Monitor runs the drift analysis as a single synchronous batch job.
type Monitor struct {
	logger *slog.Logger
	source LogSource
	store  ReportStore
	cfg    Config
	now    func() time.Time
}

// NewMonitor constructs a Monitor. store may be nil for dry runs.
func NewMonitor(logger *slog.Logger, source LogSource, store ReportStore, cfg Config) *Monitor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Monitor{
		logger: logger,
		source: source,
		store:  store,
		cfg:    cfg.withDefaults(),
		now:    time.Now,
	}
}

// Run executes one analysis pass. Every path terminates in a well-formed
// DriftReport: a missing log becomes status=error, thin data becomes
// status=insufficient_data, and a persistence failure is logged but never
// propagated to the caller.
func (m *Monitor) Run(ctx context.Context) models.DriftReport {
	records, err := m.source.Load(ctx)
	if err != nil {
		msg := fmt.Sprintf("failed to read inference log: %v", err)
		if errors.Is(err, inferlog.ErrLogMissing) {
			msg = "no inference log available"
		}
		m.logger.Warn("drift analysis has no input", slog.Any("error", err))
		return m.persist(ctx, m.baseReport(models.StatusError, msg))
	}

	total := len(records)
	if total == 0 {
		return m.persist(ctx, m.baseReport(models.StatusInsufficientData, "inference log is empty"))
	}
	if total < m.cfg.MinSamplesForAnalysis {
		report := m.baseReport(models.StatusInsufficientData,
			fmt.Sprintf("only %d samples, need %d", total, m.cfg.MinSamplesForAnalysis))
		report.TotalSamples = total
		return m.persist(ctx, report)
	}

	windows, short := SelectWindows(records, m.now(), m.cfg.ReferenceWindowDays, m.cfg.CurrentWindowDays)
	if short != nil {
		report := m.baseReport(models.StatusInsufficientData, short.Message())
		report.TotalSamples = total
		report.ReferenceSamples = len(windows.Reference)
		report.CurrentSamples = len(windows.Current)
		return m.persist(ctx, report)
	}
	if windows.RandomSplit {
		m.logger.Warn("time-based reference window too small, used random split",
			slog.Int("total_samples", total))
	}

	details := ComputeDriftScores(windows.Reference, windows.Current, m.cfg.Bins)
	overall, _ := OverallScore(details)
	severity := ClassifySeverity(overall, m.cfg.Thresholds)

	report := m.baseReport(models.StatusCompleted, "")
	report.Details = details
	report.OverallDriftScore = overall
	report.DriftDetected = overall > m.cfg.Thresholds.Warning
	report.Severity = severity
	report.ReferenceSamples = len(windows.Reference)
	report.CurrentSamples = len(windows.Current)
	report.TotalSamples = total
	if details.DataDrift != nil {
		report.DataDriftScore = details.DataDrift.PSI
	}
	if details.PredictionDrift != nil {
		report.PredictionDriftScore = details.PredictionDrift.PSI
	}
	if details.ConfidenceDrift != nil {
		report.PerformanceDriftScore = math.Abs(details.ConfidenceDrift.MeanDelta)
	}

	m.logger.Info("drift analysis complete",
		slog.Float64("overall_score", overall),
		slog.String("severity", string(severity)),
		slog.Int("reference_samples", report.ReferenceSamples),
		slog.Int("current_samples", report.CurrentSamples))

	return m.persist(ctx, report)
}

func (m *Monitor) baseReport(status models.Status, message string) models.DriftReport {
	now := m.now().UTC()
	return models.DriftReport{
		ReportDate: now,
		Status:     status,
		Severity:   models.SeverityOK,
		Message:    message,
		CreatedAt:  now,
	}
}

// persist appends the report row. Storage being unreachable must not abort
// the run: the report is still returned to the invoker.
func (m *Monitor) persist(ctx context.Context, report models.DriftReport) models.DriftReport {
	if m.store == nil {
		return report
	}
	id, err := m.store.SaveReport(ctx, report)
	if err != nil {
		m.logger.Error("failed to persist drift report", slog.Any("error", err))
		return report
	}
	report.ID = id
	return report
}
