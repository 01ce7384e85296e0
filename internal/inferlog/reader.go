// Package inferlog reads and appends the CSV inference log produced by the
// serving layer. The log is the sole input to drift analysis; records are
// immutable once written.
package inferlog

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"math"
	"os"
	"strconv"
	"time"

	"github.com/classifystack/drift-engine/internal/models"
)

// ErrLogMissing signals that no inference log exists yet.
var ErrLogMissing = errors.New("inference log not found")

// logHeader is the canonical column order written by the serving layer.
var logHeader = []string{
	"timestamp",
	"prediction_id",
	"designation",
	"description",
	"predicted_class",
	"confidence",
	"text_length",
	"model_version",
	"model_stage",
}

// timestampLayouts covers RFC3339 plus the bare ISO form older log writers
// emitted.
var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
}

// Reader loads inference records from a CSV log file.
type Reader struct {
	path   string
	logger *slog.Logger
}

// NewReader constructs a Reader for the given log path.
func NewReader(path string, logger *slog.Logger) *Reader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reader{path: path, logger: logger}
}

// Load reads every parseable record from the log. Rows with an unparseable
// timestamp are dropped; other malformed fields degrade to absent values so
// a single bad column never discards a record. Returns ErrLogMissing when
// the file does not exist.
func (r *Reader) Load(ctx context.Context) ([]models.InferenceRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(r.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrLogMissing, r.path)
		}
		return nil, fmt.Errorf("open inference log: %w", err)
	}
	defer f.Close()

	cr := csv.NewReader(f)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("read inference log header: %w", err)
	}
	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[name] = i
	}
	if _, ok := columns["timestamp"]; !ok {
		return nil, fmt.Errorf("inference log %s has no timestamp column", r.path)
	}

	var records []models.InferenceRecord
	dropped := 0
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			dropped++
			continue
		}

		ts, ok := parseTimestamp(field(row, columns, "timestamp"))
		if !ok {
			dropped++
			continue
		}

		records = append(records, models.InferenceRecord{
			Timestamp:      ts,
			PredictionID:   field(row, columns, "prediction_id"),
			Designation:    field(row, columns, "designation"),
			Description:    field(row, columns, "description"),
			PredictedClass: parseIntField(field(row, columns, "predicted_class")),
			Confidence:     parseFloatField(field(row, columns, "confidence")),
			TextLength:     parseIntField(field(row, columns, "text_length")),
			ModelVersion:   field(row, columns, "model_version"),
			ModelStage:     field(row, columns, "model_stage"),
		})
	}

	if dropped > 0 {
		r.logger.Warn("dropped malformed inference log rows",
			slog.String("path", r.path), slog.Int("dropped", dropped))
	}
	return records, nil
}

func field(row []string, columns map[string]int, name string) string {
	idx, ok := columns[name]
	if !ok || idx >= len(row) {
		return ""
	}
	return row[idx]
}

func parseTimestamp(value string) (time.Time, bool) {
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, value); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}

func parseIntField(value string) int {
	n, err := strconv.Atoi(value)
	if err != nil || n < 0 {
		return models.FieldAbsent
	}
	return n
}

func parseFloatField(value string) float64 {
	v, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return math.NaN()
	}
	return v
}
