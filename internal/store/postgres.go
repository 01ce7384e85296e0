// Package store persists drift reports and alert actions in PostgreSQL.
// Both tables are append-only: reports are never updated after creation and
// every acknowledgment is its own row, so concurrent runs need no locking.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/lib/pq"

	"github.com/classifystack/drift-engine/internal/models"
	"github.com/classifystack/drift-engine/internal/utils"
)

// ErrReportNotFound signals that no drift report matches the given id.
var ErrReportNotFound = errors.New("drift report not found")

// Config holds PostgreSQL connection parameters.
type Config struct {
	Host         string        `yaml:"host"`
	Port         int           `yaml:"port"`
	Name         string        `yaml:"name"`
	User         string        `yaml:"user"`
	Password     string        `yaml:"password"`
	SSLMode      string        `yaml:"sslMode"`
	ConnTimeout  time.Duration `yaml:"connTimeout"`
	MaxOpenConns int           `yaml:"maxOpenConns"`
	MaxIdleConns int           `yaml:"maxIdleConns"`
}

// Postgres implements report and action persistence over database/sql.
type Postgres struct {
	db     *sql.DB
	logger *slog.Logger
}

// Open connects to PostgreSQL, verifies connectivity within the configured
// timeout, and creates the schema if it does not exist.
func Open(cfg Config, logger *slog.Logger) (*Postgres, error) {
	if logger == nil {
		logger = slog.Default()
	}
	sslMode := cfg.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	dsn := fmt.Sprintf("host=%s port=%d dbname=%s user=%s password=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.Name, cfg.User, cfg.Password, sslMode)

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}

	timeout := cfg.ConnTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, utils.NewAppError("store.Open", "database unreachable", err)
	}

	p := &Postgres{db: db, logger: logger}
	if err := p.ensureSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}
	logger.Info("postgres connected",
		slog.String("host", cfg.Host), slog.String("database", cfg.Name))
	return p, nil
}

// Close releases the underlying connection pool.
func (p *Postgres) Close() error {
	return p.db.Close()
}

func (p *Postgres) ensureSchema(ctx context.Context) error {
	const reports = `
		CREATE TABLE IF NOT EXISTS drift_reports (
			id SERIAL PRIMARY KEY,
			report_date TIMESTAMPTZ NOT NULL,
			status VARCHAR(50) NOT NULL,
			data_drift_score DOUBLE PRECISION NOT NULL DEFAULT 0,
			prediction_drift_score DOUBLE PRECISION NOT NULL DEFAULT 0,
			performance_drift_score DOUBLE PRECISION NOT NULL DEFAULT 0,
			overall_drift_score DOUBLE PRECISION NOT NULL DEFAULT 0,
			drift_detected BOOLEAN NOT NULL DEFAULT FALSE,
			severity VARCHAR(20) NOT NULL,
			reference_samples INTEGER NOT NULL DEFAULT 0,
			current_samples INTEGER NOT NULL DEFAULT 0,
			total_samples INTEGER NOT NULL DEFAULT 0,
			message TEXT,
			details JSONB,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`
	const actions = `
		CREATE TABLE IF NOT EXISTS alert_actions (
			id SERIAL PRIMARY KEY,
			drift_report_id INTEGER NOT NULL REFERENCES drift_reports(id),
			action_type VARCHAR(50) NOT NULL,
			action_details JSONB,
			performed_by VARCHAR(100) NOT NULL DEFAULT 'user',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`

	if _, err := p.db.ExecContext(ctx, reports); err != nil {
		return fmt.Errorf("create drift_reports: %w", err)
	}
	if _, err := p.db.ExecContext(ctx, actions); err != nil {
		return fmt.Errorf("create alert_actions: %w", err)
	}
	return nil
}

// SaveReport appends exactly one report row and returns its id.
func (p *Postgres) SaveReport(ctx context.Context, report models.DriftReport) (int64, error) {
	var details any
	if report.Details != nil {
		payload, err := json.Marshal(report.Details)
		if err != nil {
			return 0, fmt.Errorf("marshal report details: %w", err)
		}
		details = payload
	}

	var id int64
	err := p.db.QueryRowContext(ctx, `
		INSERT INTO drift_reports
			(report_date, status, data_drift_score, prediction_drift_score,
			 performance_drift_score, overall_drift_score, drift_detected,
			 severity, reference_samples, current_samples, total_samples,
			 message, details)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id`,
		report.ReportDate, report.Status,
		report.DataDriftScore, report.PredictionDriftScore,
		report.PerformanceDriftScore, report.OverallDriftScore,
		report.DriftDetected, report.Severity,
		report.ReferenceSamples, report.CurrentSamples, report.TotalSamples,
		nullString(report.Message), details,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert drift report: %w", err)
	}
	return id, nil
}

const reportColumns = `
	id, report_date, status, data_drift_score, prediction_drift_score,
	performance_drift_score, overall_drift_score, drift_detected, severity,
	reference_samples, current_samples, total_samples, message, details,
	created_at`

// LatestReport returns the most recently persisted report.
func (p *Postgres) LatestReport(ctx context.Context) (models.DriftReport, error) {
	row := p.db.QueryRowContext(ctx,
		`SELECT `+reportColumns+` FROM drift_reports ORDER BY created_at DESC, id DESC LIMIT 1`)
	return scanReport(row)
}

// GetReport returns one report by id, or ErrReportNotFound.
func (p *Postgres) GetReport(ctx context.Context, id int64) (models.DriftReport, error) {
	row := p.db.QueryRowContext(ctx,
		`SELECT `+reportColumns+` FROM drift_reports WHERE id = $1`, id)
	return scanReport(row)
}

// ListReports returns recent reports of every severity, newest first.
func (p *Postgres) ListReports(ctx context.Context, limit int) ([]models.DriftReport, error) {
	rows, err := p.db.QueryContext(ctx,
		`SELECT `+reportColumns+` FROM drift_reports ORDER BY report_date DESC, id DESC LIMIT $1`,
		normalizeLimit(limit, 50))
	if err != nil {
		return nil, fmt.Errorf("list drift reports: %w", err)
	}
	defer rows.Close()

	var reports []models.DriftReport
	for rows.Next() {
		report, err := scanReport(rows)
		if err != nil {
			return nil, err
		}
		reports = append(reports, report)
	}
	return reports, rows.Err()
}

// ListActiveAlerts returns reports at WARNING or above, newest first, with
// the acknowledged flag derived from the existence of any linked action.
func (p *Postgres) ListActiveAlerts(ctx context.Context, limit int) ([]models.Alert, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT dr.id, dr.report_date, dr.severity, dr.overall_drift_score,
		       dr.data_drift_score, dr.prediction_drift_score, dr.drift_detected,
		       dr.reference_samples, dr.current_samples, dr.created_at,
		       EXISTS (
		           SELECT 1 FROM alert_actions aa WHERE aa.drift_report_id = dr.id
		       ) AS acknowledged
		FROM drift_reports dr
		WHERE dr.severity IN ('WARNING', 'ALERT', 'CRITICAL')
		ORDER BY dr.report_date DESC, dr.id DESC
		LIMIT $1`,
		normalizeLimit(limit, 20))
	if err != nil {
		return nil, fmt.Errorf("list active alerts: %w", err)
	}
	defer rows.Close()

	var alerts []models.Alert
	for rows.Next() {
		var a models.Alert
		if err := rows.Scan(&a.ReportID, &a.ReportDate, &a.Severity,
			&a.OverallDriftScore, &a.DataDriftScore, &a.PredictionDriftScore,
			&a.DriftDetected, &a.ReferenceSamples, &a.CurrentSamples,
			&a.CreatedAt, &a.Acknowledged); err != nil {
			return nil, fmt.Errorf("scan alert: %w", err)
		}
		alerts = append(alerts, a)
	}
	return alerts, rows.Err()
}

// InsertAction appends one audit row referencing an existing report.
func (p *Postgres) InsertAction(ctx context.Context, action models.Action) (int64, error) {
	var details any
	if action.Details != nil {
		payload, err := json.Marshal(action.Details)
		if err != nil {
			return 0, fmt.Errorf("marshal action details: %w", err)
		}
		details = payload
	}

	var id int64
	err := p.db.QueryRowContext(ctx, `
		INSERT INTO alert_actions (drift_report_id, action_type, action_details, performed_by)
		VALUES ($1, $2, $3, $4)
		RETURNING id`,
		action.DriftReportID, action.ActionType, details, action.PerformedBy,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert alert action: %w", err)
	}
	return id, nil
}

// ListActions returns the action history joined with the originating
// report's severity and overall score, newest first.
func (p *Postgres) ListActions(ctx context.Context, limit int) ([]models.Action, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT aa.id, aa.drift_report_id, aa.action_type, aa.action_details,
		       aa.performed_by, aa.created_at, dr.severity, dr.overall_drift_score
		FROM alert_actions aa
		JOIN drift_reports dr ON dr.id = aa.drift_report_id
		ORDER BY aa.created_at DESC, aa.id DESC
		LIMIT $1`,
		normalizeLimit(limit, 50))
	if err != nil {
		return nil, fmt.Errorf("list alert actions: %w", err)
	}
	defer rows.Close()

	var actions []models.Action
	for rows.Next() {
		var a models.Action
		var details []byte
		if err := rows.Scan(&a.ID, &a.DriftReportID, &a.ActionType, &details,
			&a.PerformedBy, &a.CreatedAt, &a.ReportSeverity, &a.ReportScore); err != nil {
			return nil, fmt.Errorf("scan alert action: %w", err)
		}
		if len(details) > 0 {
			if err := json.Unmarshal(details, &a.Details); err != nil {
				return nil, fmt.Errorf("unmarshal action details: %w", err)
			}
		}
		actions = append(actions, a)
	}
	return actions, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReport(row rowScanner) (models.DriftReport, error) {
	var r models.DriftReport
	var message sql.NullString
	var details []byte
	err := row.Scan(&r.ID, &r.ReportDate, &r.Status,
		&r.DataDriftScore, &r.PredictionDriftScore, &r.PerformanceDriftScore,
		&r.OverallDriftScore, &r.DriftDetected, &r.Severity,
		&r.ReferenceSamples, &r.CurrentSamples, &r.TotalSamples,
		&message, &details, &r.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.DriftReport{}, ErrReportNotFound
	}
	if err != nil {
		return models.DriftReport{}, fmt.Errorf("scan drift report: %w", err)
	}
	r.Message = message.String
	if len(details) > 0 {
		if err := json.Unmarshal(details, &r.Details); err != nil {
			return models.DriftReport{}, fmt.Errorf("unmarshal report details: %w", err)
		}
	}
	return r, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func normalizeLimit(limit, fallback int) int {
	if limit <= 0 {
		return fallback
	}
	return limit
}
