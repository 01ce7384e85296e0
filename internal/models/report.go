package models

import "time"

// Status describes the outcome of a drift analysis run.
type Status string

const (
	StatusCompleted        Status = "completed"
	StatusError            Status = "error"
	StatusInsufficientData Status = "insufficient_data"
)

// Severity classifies overall drift magnitude.
type Severity string

const (
	SeverityOK       Severity = "OK"
	SeverityWarning  Severity = "WARNING"
	SeverityAlert    Severity = "ALERT"
	SeverityCritical Severity = "CRITICAL"
)

// Rank returns the position of the severity in ascending order, OK lowest.
func (s Severity) Rank() int {
	switch s {
	case SeverityWarning:
		return 1
	case SeverityAlert:
		return 2
	case SeverityCritical:
		return 3
	default:
		return 0
	}
}

// AtLeast reports whether s is at or above other in severity order.
func (s Severity) AtLeast(other Severity) bool {
	return s.Rank() >= other.Rank()
}

// DriftReport is the append-only record produced by every analysis run.
// Degenerate runs (missing log, too few samples) still produce a report
// with the matching status; rows are never updated after creation.
type DriftReport struct {
	ID                    int64         `json:"id,omitempty"`
	ReportDate            time.Time     `json:"report_date"`
	Status                Status        `json:"status"`
	DataDriftScore        float64       `json:"data_drift_score"`
	PredictionDriftScore  float64       `json:"prediction_drift_score"`
	PerformanceDriftScore float64       `json:"performance_drift_score"`
	OverallDriftScore     float64       `json:"overall_drift_score"`
	DriftDetected         bool          `json:"drift_detected"`
	Severity              Severity      `json:"severity"`
	ReferenceSamples      int           `json:"reference_samples"`
	CurrentSamples        int           `json:"current_samples"`
	TotalSamples          int           `json:"total_samples"`
	Message               string        `json:"message,omitempty"`
	Details               *DriftDetails `json:"details,omitempty"`
	CreatedAt             time.Time     `json:"created_at,omitempty"`
}

// DriftDetails nests the per-dimension test results. A dimension absent
// from both windows is nil rather than zero-valued.
type DriftDetails struct {
	DataDrift       *NumericDriftResult     `json:"data_drift,omitempty"`
	PredictionDrift *CategoricalDriftResult `json:"prediction_drift,omitempty"`
	ConfidenceDrift *ConfidenceDriftResult  `json:"confidence_drift,omitempty"`
}

// KSResult holds a two-sample Kolmogorov-Smirnov test outcome.
type KSResult struct {
	Statistic     float64 `json:"statistic"`
	PValue        float64 `json:"p_value"`
	DriftDetected bool    `json:"drift_detected"`
}

// ChiSquareResult holds a chi-square goodness-of-fit outcome over the
// categories present in the reference window.
type ChiSquareResult struct {
	Statistic     float64 `json:"statistic"`
	PValue        float64 `json:"p_value"`
	DriftDetected bool    `json:"drift_detected"`
}

// NumericDriftResult covers a continuous feature dimension.
type NumericDriftResult struct {
	PSI float64  `json:"psi"`
	KS  KSResult `json:"ks"`
	JSD float64  `json:"jsd"`
}

// CategoricalDriftResult covers the predicted-class distribution.
type CategoricalDriftResult struct {
	PSI       float64         `json:"psi"`
	ChiSquare ChiSquareResult `json:"chi_square"`
}

// ConfidenceDriftResult covers the model confidence distribution.
type ConfidenceDriftResult struct {
	PSI       float64  `json:"psi"`
	KS        KSResult `json:"ks"`
	MeanRef   float64  `json:"mean_ref"`
	MeanCur   float64  `json:"mean_cur"`
	MeanDelta float64  `json:"mean_delta"`
}
