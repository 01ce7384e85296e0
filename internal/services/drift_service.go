package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/classifystack/drift-engine/internal/alerting"
	"github.com/classifystack/drift-engine/internal/engine"
	"github.com/classifystack/drift-engine/internal/metrics"
	"github.com/classifystack/drift-engine/internal/models"
	"github.com/classifystack/drift-engine/internal/utils"
)

// DriftService fronts the monitor and alert manager for the HTTP API, the
// CLI, and the scheduler.
type DriftService struct {
	logger    *slog.Logger
	monitor   *engine.Monitor
	alerts    *alerting.Manager
	latencies *utils.LatencyTracker
}

// NewDriftService constructs the drift service facade.
func NewDriftService(logger *slog.Logger, monitor *engine.Monitor, alerts *alerting.Manager) *DriftService {
	if logger == nil {
		logger = slog.Default()
	}
	return &DriftService{
		logger:    logger,
		monitor:   monitor,
		alerts:    alerts,
		latencies: utils.NewLatencyTracker(1024),
	}
}

// RunAnalysis executes one full drift analysis cycle: the monitor produces
// and persists a report, metrics are recorded, and the alert manager turns
// the report into an alert when severity warrants one. The run never
// returns an error: failures surface as the report's status and message.
func (s *DriftService) RunAnalysis(ctx context.Context) (models.DriftReport, *models.Alert) {
	start := time.Now()
	report := s.monitor.Run(ctx)
	duration := time.Since(start)

	s.latencies.Observe(duration)
	metrics.ObserveRun(duration, report)
	if count := s.latencies.Count(); count >= 20 && count%20 == 0 {
		p95 := s.latencies.Percentile(95)
		s.logger.Info("analysis latency", slog.Duration("p95", p95), slog.Int("samples", count))
	}

	alert, err := s.alerts.ProcessReport(ctx, report)
	if err != nil {
		s.logger.Error("alert processing failed", slog.Any("error", err))
		return report, nil
	}
	return report, alert
}

// ActiveAlerts returns the unacknowledged-or-acknowledged alert view.
func (s *DriftService) ActiveAlerts(ctx context.Context, limit int) ([]models.Alert, error) {
	return s.alerts.ActiveAlerts(ctx, limit)
}

// ReportHistory returns recent reports, newest first.
func (s *DriftService) ReportHistory(ctx context.Context, limit int) ([]models.DriftReport, error) {
	return s.alerts.ReportHistory(ctx, limit)
}

// ReportSummary aggregates the recent report history.
func (s *DriftService) ReportSummary(ctx context.Context, limit int) (alerting.Summary, error) {
	return s.alerts.ReportSummary(ctx, limit)
}

// ActionHistory returns the recorded action audit trail, newest first.
func (s *DriftService) ActionHistory(ctx context.Context, limit int) ([]models.Action, error) {
	return s.alerts.ActionHistory(ctx, limit)
}

// Acknowledge records an operator action against a report.
func (s *DriftService) Acknowledge(ctx context.Context, reportID int64, actionType models.ActionType, details map[string]any, performedBy string) (models.Action, error) {
	return s.alerts.Acknowledge(ctx, reportID, actionType, details, performedBy)
}
