// Package alerting manages the human-in-the-loop alert lifecycle over
// persisted drift reports. An alert is not a stored entity: any report at
// WARNING or above is active until at least one action references it, and
// acknowledgment is computed from linked actions rather than a mutable flag.
package alerting

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/classifystack/drift-engine/internal/cache"
	"github.com/classifystack/drift-engine/internal/models"
)

const (
	defaultAlertLimit  = 20
	defaultReportLimit = 50
	defaultActionLimit = 50

	// cacheFetchLimit is how many rows a cache fill pulls so that any
	// smaller caller limit can be served from the same entry.
	cacheFetchLimit = 100

	activeAlertsKey  = "alerts:active"
	recentReportsKey = "reports:recent"
)

// Store abstracts report and action persistence for the alert lifecycle.
type Store interface {
	LatestReport(ctx context.Context) (models.DriftReport, error)
	GetReport(ctx context.Context, id int64) (models.DriftReport, error)
	ListReports(ctx context.Context, limit int) ([]models.DriftReport, error)
	ListActiveAlerts(ctx context.Context, limit int) ([]models.Alert, error)
	InsertAction(ctx context.Context, action models.Action) (int64, error)
	ListActions(ctx context.Context, limit int) ([]models.Action, error)
}

// Manager creates alerts from drift reports and serves query and
// acknowledge operations.
type Manager struct {
	logger   *slog.Logger
	store    Store
	cache    cache.Provider
	cacheTTL time.Duration
	playbook *Playbook
}

// NewManager constructs a Manager. provider may be nil to disable caching;
// playbook may be nil to use the built-in recommended actions.
func NewManager(logger *slog.Logger, store Store, provider cache.Provider, cacheTTL time.Duration, playbook *Playbook) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	if provider == nil {
		provider = cache.NoopProvider{}
	}
	if cacheTTL <= 0 {
		cacheTTL = 30 * time.Second
	}
	return &Manager{
		logger:   logger,
		store:    store,
		cache:    provider,
		cacheTTL: cacheTTL,
		playbook: playbook,
	}
}

// ProcessReport decides whether a freshly produced report warrants an
// alert. Severity OK is terminal: no alert is created. Otherwise the alert
// carries a human-readable message and a recommended action keyed by
// severity. The report row itself is never touched.
func (m *Manager) ProcessReport(ctx context.Context, report models.DriftReport) (*models.Alert, error) {
	if !report.Severity.AtLeast(models.SeverityWarning) {
		m.logger.Info("drift severity OK, no alert created")
		return nil, nil
	}

	reportID := report.ID
	if reportID == 0 && m.store != nil {
		// The report was persisted by the monitor; resolve its row id so
		// actions can reference it.
		latest, err := m.store.LatestReport(ctx)
		if err != nil {
			m.logger.Warn("could not resolve report id for alert", slog.Any("error", err))
		} else {
			reportID = latest.ID
		}
	}

	alert := &models.Alert{
		ReportID:             reportID,
		ReportDate:           report.ReportDate,
		Severity:             report.Severity,
		OverallDriftScore:    report.OverallDriftScore,
		DataDriftScore:       report.DataDriftScore,
		PredictionDriftScore: report.PredictionDriftScore,
		DriftDetected:        report.DriftDetected,
		ReferenceSamples:     report.ReferenceSamples,
		CurrentSamples:       report.CurrentSamples,
		Message:              alertMessage(report),
		RecommendedAction:    m.recommendedAction(report.Severity),
		CreatedAt:            report.CreatedAt,
	}

	m.invalidate(ctx, activeAlertsKey)
	m.logger.Info("drift alert created",
		slog.Int64("report_id", reportID),
		slog.String("severity", string(report.Severity)),
		slog.Float64("overall_score", report.OverallDriftScore))
	return alert, nil
}

// ActiveAlerts lists unresolved-or-acknowledged alerts (severity >=
// WARNING), most recent first, with the acknowledged flag derived from
// linked actions.
func (m *Manager) ActiveAlerts(ctx context.Context, limit int) ([]models.Alert, error) {
	if limit <= 0 {
		limit = defaultAlertLimit
	}

	var alerts []models.Alert
	if m.cachedList(ctx, activeAlertsKey, &alerts) {
		return truncateAlerts(alerts, limit), nil
	}

	alerts, err := m.store.ListActiveAlerts(ctx, cacheFetchLimit)
	if err != nil {
		return nil, fmt.Errorf("list active alerts: %w", err)
	}
	for i := range alerts {
		alerts[i].Message = activeAlertMessage(alerts[i])
		alerts[i].RecommendedAction = m.recommendedAction(alerts[i].Severity)
	}

	m.storeList(ctx, activeAlertsKey, alerts)
	return truncateAlerts(alerts, limit), nil
}

// ReportHistory lists recent reports of every severity, including OK runs.
func (m *Manager) ReportHistory(ctx context.Context, limit int) ([]models.DriftReport, error) {
	if limit <= 0 {
		limit = defaultReportLimit
	}

	var reports []models.DriftReport
	if m.cachedList(ctx, recentReportsKey, &reports) && len(reports) >= limit {
		return reports[:limit], nil
	}

	reports, err := m.store.ListReports(ctx, cacheFetchLimit)
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	m.storeList(ctx, recentReportsKey, reports)
	if len(reports) > limit {
		reports = reports[:limit]
	}
	return reports, nil
}

// ReportSummary aggregates the recent report history for dashboards.
func (m *Manager) ReportSummary(ctx context.Context, limit int) (Summary, error) {
	reports, err := m.ReportHistory(ctx, limit)
	if err != nil {
		return Summary{}, err
	}
	return Summarize(reports), nil
}

// ActionHistory lists recorded actions joined with the originating
// report's severity and score, newest first.
func (m *Manager) ActionHistory(ctx context.Context, limit int) ([]models.Action, error) {
	if limit <= 0 {
		limit = defaultActionLimit
	}
	actions, err := m.store.ListActions(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list actions: %w", err)
	}
	return actions, nil
}

// Acknowledge appends one action row for an existing report. The report is
// validated but never modified; the audit trail is additive only.
func (m *Manager) Acknowledge(ctx context.Context, reportID int64, actionType models.ActionType, details map[string]any, performedBy string) (models.Action, error) {
	if !actionType.Valid() {
		return models.Action{}, fmt.Errorf("unknown action type %q", actionType)
	}
	if performedBy == "" {
		performedBy = "user"
	}

	report, err := m.store.GetReport(ctx, reportID)
	if err != nil {
		return models.Action{}, fmt.Errorf("acknowledge report %d: %w", reportID, err)
	}

	action := models.Action{
		DriftReportID:  report.ID,
		ActionType:     actionType,
		Details:        details,
		PerformedBy:    performedBy,
		ReportSeverity: report.Severity,
		ReportScore:    report.OverallDriftScore,
	}
	id, err := m.store.InsertAction(ctx, action)
	if err != nil {
		return models.Action{}, fmt.Errorf("record action: %w", err)
	}
	action.ID = id

	m.invalidate(ctx, activeAlertsKey)
	m.logger.Info("alert acknowledged",
		slog.Int64("report_id", reportID),
		slog.String("action_type", string(actionType)),
		slog.String("performed_by", performedBy))
	return action, nil
}

func (m *Manager) recommendedAction(severity models.Severity) string {
	if m.playbook != nil {
		if action, ok := m.playbook.Action(severity); ok {
			return action
		}
	}
	switch severity {
	case models.SeverityWarning:
		return "Monitor closely. No immediate action required."
	case models.SeverityAlert:
		return "Investigate drift sources. Consider retraining."
	case models.SeverityCritical:
		return "Retrain model or rollback to previous version."
	default:
		return "No action."
	}
}

func alertMessage(report models.DriftReport) string {
	return fmt.Sprintf(
		"[%s] Drift detected (overall=%.4f). Data drift PSI=%.4f, prediction drift PSI=%.4f, confidence drift=%.4f.",
		report.Severity, report.OverallDriftScore,
		report.DataDriftScore, report.PredictionDriftScore, report.PerformanceDriftScore)
}

func activeAlertMessage(alert models.Alert) string {
	return fmt.Sprintf(
		"[%s] Drift detected (overall=%.4f). Data drift PSI=%.4f, prediction drift PSI=%.4f.",
		alert.Severity, alert.OverallDriftScore,
		alert.DataDriftScore, alert.PredictionDriftScore)
}

func truncateAlerts(alerts []models.Alert, limit int) []models.Alert {
	if len(alerts) > limit {
		return alerts[:limit]
	}
	return alerts
}

// cachedList loads a cached JSON list into out, reporting whether the
// cache held the key. Cache errors degrade to a miss.
func (m *Manager) cachedList(ctx context.Context, key string, out any) bool {
	payload, err := m.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, cache.ErrCacheMiss) {
			m.logger.Warn("cache read failed", slog.String("key", key), slog.Any("error", err))
		}
		return false
	}
	if err := json.Unmarshal(payload, out); err != nil {
		m.logger.Warn("cache payload corrupt", slog.String("key", key), slog.Any("error", err))
		return false
	}
	return true
}

func (m *Manager) storeList(ctx context.Context, key string, value any) {
	payload, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := m.cache.Set(ctx, key, payload, m.cacheTTL); err != nil {
		m.logger.Warn("cache write failed", slog.String("key", key), slog.Any("error", err))
	}
}

func (m *Manager) invalidate(ctx context.Context, key string) {
	if err := m.cache.Del(ctx, key); err != nil {
		m.logger.Warn("cache invalidation failed", slog.String("key", key), slog.Any("error", err))
	}
}
