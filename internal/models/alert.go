package models

import "time"

// ActionType enumerates the recorded responses to a drift alert.
type ActionType string

const (
	ActionAcknowledge      ActionType = "acknowledge"
	ActionRetrain          ActionType = "retrain"
	ActionRollback         ActionType = "rollback"
	ActionInvestigate      ActionType = "investigate"
	ActionAdjustThresholds ActionType = "adjust_thresholds"
)

// Valid reports whether t is one of the known action types.
func (t ActionType) Valid() bool {
	switch t {
	case ActionAcknowledge, ActionRetrain, ActionRollback, ActionInvestigate, ActionAdjustThresholds:
		return true
	}
	return false
}

// Alert is a derived view over drift_reports: any report at WARNING or above
// is an active alert until at least one action references it. There is no
// stored alert row; Acknowledged is computed from linked actions.
type Alert struct {
	ReportID             int64     `json:"report_id"`
	ReportDate           time.Time `json:"report_date"`
	Severity             Severity  `json:"severity"`
	OverallDriftScore    float64   `json:"overall_drift_score"`
	DataDriftScore       float64   `json:"data_drift_score"`
	PredictionDriftScore float64   `json:"prediction_drift_score"`
	DriftDetected        bool      `json:"drift_detected"`
	ReferenceSamples     int       `json:"reference_samples"`
	CurrentSamples       int       `json:"current_samples"`
	Message              string    `json:"message"`
	RecommendedAction    string    `json:"recommended_action"`
	Acknowledged         bool      `json:"acknowledged"`
	CreatedAt            time.Time `json:"created_at"`
}

// Action is an append-only audit row recording a human or automated
// response to an alert. Multiple actions may reference the same report.
type Action struct {
	ID            int64          `json:"id"`
	DriftReportID int64          `json:"drift_report_id"`
	ActionType    ActionType     `json:"action_type"`
	Details       map[string]any `json:"details,omitempty"`
	PerformedBy   string         `json:"performed_by"`
	CreatedAt     time.Time      `json:"created_at"`

	// Joined from the originating report for history views.
	ReportSeverity Severity `json:"report_severity,omitempty"`
	ReportScore    float64  `json:"report_score,omitempty"`
}
