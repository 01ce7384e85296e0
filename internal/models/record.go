package models

import "time"

// FieldAbsent marks an integer field that was missing or unparseable in the
// inference log. Class codes and text lengths are never negative, so a
// negative value is unambiguous.
const FieldAbsent = -1

// InferenceRecord is one logged prediction from the serving layer. The
// engine reads records but never mutates them; only the timestamp,
// predicted class, confidence and text length participate in analysis.
type InferenceRecord struct {
	Timestamp      time.Time `json:"timestamp"`
	PredictionID   string    `json:"prediction_id"`
	Designation    string    `json:"designation"`
	Description    string    `json:"description"`
	PredictedClass int       `json:"predicted_class"`
	Confidence     float64   `json:"confidence"`
	TextLength     int       `json:"text_length"`
	ModelVersion   string    `json:"model_version"`
	ModelStage     string    `json:"model_stage"`
}
