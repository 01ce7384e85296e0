package engine

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/classifystack/drift-engine/internal/models"
)

const (
	// Minimum populations below which a window cannot support the tests.
	minReferenceSamples = 30
	minCurrentSamples   = 10

	// referenceShare is the reference fraction under the random fallback.
	referenceShare = 0.6

	// shuffleSeed fixes the fallback shuffle for reproducible runs.
	shuffleSeed = 42
)

// Windows holds the two record sets compared for drift.
type Windows struct {
	Reference []models.InferenceRecord
	Current   []models.InferenceRecord

	// RandomSplit is true when the cold-start fallback produced the split.
	RandomSplit bool
}

// InsufficientWindow signals that a window is below its minimum population.
// It is a value, not an error: the caller turns it into a degenerate report.
type InsufficientWindow struct {
	Window string
	Size   int
	Need   int
}

// Message renders the signal for report consumers.
func (iw *InsufficientWindow) Message() string {
	return fmt.Sprintf("%s window has only %d samples (need >= %d)", iw.Window, iw.Size, iw.Need)
}

// SelectWindows splits the inference log into reference and current windows.
//
// Time-based split: current = records from the last currentDays, reference =
// records from the preceding referenceDays-currentDays span.
//
// Cold-start fallback: when the time-based reference window is too small but
// the log as a whole can support analysis, the records are shuffled with a
// fixed seed and split 60/40. A chronological split on a young deployment
// turns early-testing vs. later-traffic artifacts into spurious drift; a
// random split keeps both halves representative of the same distribution.
func SelectWindows(records []models.InferenceRecord, now time.Time, referenceDays, currentDays int) (Windows, *InsufficientWindow) {
	currentStart := now.AddDate(0, 0, -currentDays)
	referenceStart := now.AddDate(0, 0, -referenceDays)

	var w Windows
	for _, rec := range records {
		switch {
		case !rec.Timestamp.Before(currentStart):
			w.Current = append(w.Current, rec)
		case !rec.Timestamp.Before(referenceStart):
			w.Reference = append(w.Reference, rec)
		}
	}

	if len(w.Reference) < minReferenceSamples && len(records) >= minReferenceSamples+minCurrentSamples {
		shuffled := append([]models.InferenceRecord(nil), records...)
		rng := rand.New(rand.NewSource(shuffleSeed))
		rng.Shuffle(len(shuffled), func(i, j int) {
			shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
		})
		split := int(float64(len(shuffled)) * referenceShare)
		w = Windows{
			Reference:   shuffled[:split],
			Current:     shuffled[split:],
			RandomSplit: true,
		}
	}

	if len(w.Reference) < minReferenceSamples {
		return w, &InsufficientWindow{Window: "reference", Size: len(w.Reference), Need: minReferenceSamples}
	}
	if len(w.Current) < minCurrentSamples {
		return w, &InsufficientWindow{Window: "current", Size: len(w.Current), Need: minCurrentSamples}
	}
	return w, nil
}
