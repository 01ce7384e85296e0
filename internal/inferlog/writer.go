package inferlog

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/classifystack/drift-engine/internal/models"
)

const (
	maxDesignationLen = 100
	maxDescriptionLen = 500
)

// Writer appends prediction records to the inference log. It creates the
// file with a header on first use and rotates it once the row count exceeds
// maxRows, keeping the newest half so drift analysis always has recent data.
type Writer struct {
	path    string
	maxRows int
	logger  *slog.Logger

	mu sync.Mutex
}

// NewWriter constructs a Writer. maxRows <= 0 disables rotation.
func NewWriter(path string, maxRows int, logger *slog.Logger) *Writer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Writer{path: path, maxRows: maxRows, logger: logger}
}

// Append logs one prediction, assigning it a fresh prediction ID. Free-text
// fields are truncated before writing so a single long product description
// cannot bloat the log.
func (w *Writer) Append(designation, description string, predictedClass int, confidence float64, modelVersion, modelStage string) (models.InferenceRecord, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.ensureLogFile(); err != nil {
		return models.InferenceRecord{}, err
	}

	rec := models.InferenceRecord{
		Timestamp:      time.Now().UTC(),
		PredictionID:   uuid.NewString(),
		Designation:    truncate(designation, maxDesignationLen),
		Description:    truncate(description, maxDescriptionLen),
		PredictedClass: predictedClass,
		Confidence:     confidence,
		TextLength:     len(designation) + len(description),
		ModelVersion:   modelVersion,
		ModelStage:     modelStage,
	}

	f, err := os.OpenFile(w.path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return models.InferenceRecord{}, fmt.Errorf("open inference log: %w", err)
	}
	cw := csv.NewWriter(f)
	if err := cw.Write(recordRow(rec)); err != nil {
		f.Close()
		return models.InferenceRecord{}, fmt.Errorf("write inference log row: %w", err)
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		f.Close()
		return models.InferenceRecord{}, fmt.Errorf("flush inference log: %w", err)
	}
	if err := f.Close(); err != nil {
		return models.InferenceRecord{}, fmt.Errorf("close inference log: %w", err)
	}

	if err := w.rotateIfNeeded(); err != nil {
		// Rotation failure must not lose the prediction that was just logged.
		w.logger.Warn("inference log rotation failed", slog.Any("error", err))
	}
	return rec, nil
}

func (w *Writer) ensureLogFile() error {
	if _, err := os.Stat(w.path); err == nil {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(w.path), 0o755); err != nil {
		return fmt.Errorf("create inference log directory: %w", err)
	}
	f, err := os.Create(w.path)
	if err != nil {
		return fmt.Errorf("create inference log: %w", err)
	}
	cw := csv.NewWriter(f)
	if err := cw.Write(logHeader); err != nil {
		f.Close()
		return fmt.Errorf("write inference log header: %w", err)
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		f.Close()
		return fmt.Errorf("flush inference log header: %w", err)
	}
	w.logger.Info("created inference log", slog.String("path", w.path))
	return f.Close()
}

func (w *Writer) rotateIfNeeded() error {
	if w.maxRows <= 0 {
		return nil
	}

	f, err := os.Open(w.path)
	if err != nil {
		return err
	}
	cr := csv.NewReader(f)
	cr.FieldsPerRecord = -1
	rows, err := cr.ReadAll()
	f.Close()
	if err != nil {
		return err
	}
	// rows includes the header.
	if len(rows)-1 <= w.maxRows {
		return nil
	}

	keep := rows[len(rows)-w.maxRows/2:]
	tmp := w.path + ".tmp"
	out, err := os.Create(tmp)
	if err != nil {
		return err
	}
	cw := csv.NewWriter(out)
	if err := cw.Write(logHeader); err != nil {
		out.Close()
		return err
	}
	if err := cw.WriteAll(keep); err != nil {
		out.Close()
		return err
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmp, w.path); err != nil {
		return err
	}
	w.logger.Info("rotated inference log",
		slog.String("path", w.path), slog.Int("kept_rows", len(keep)))
	return nil
}

func recordRow(rec models.InferenceRecord) []string {
	return []string{
		rec.Timestamp.Format(time.RFC3339Nano),
		rec.PredictionID,
		rec.Designation,
		rec.Description,
		strconv.Itoa(rec.PredictedClass),
		strconv.FormatFloat(rec.Confidence, 'f', -1, 64),
		strconv.Itoa(rec.TextLength),
		rec.ModelVersion,
		rec.ModelStage,
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
