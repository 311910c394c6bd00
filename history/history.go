// Package history records per-epoch training metrics.
//
// Unlike a history that belongs to a single training run, a History keeps
// accumulating when training is resumed: epochs and metric values of the new
// run are appended to the ones already recorded.
package history

import (
	"maps"
	"slices"
	"strings"

	"github.com/pkg/errors"
)

// ValidationPrefix marks metrics measured on the validation data, e.g. "val_loss".
const ValidationPrefix = "val_"

// History holds the epochs seen and, for each metric name, its values in the
// order they were reported.
//
// It is not safe for concurrent use.
type History struct {
	epochs  []int
	metrics map[string][]float64
}

// New returns an empty History.
func New() *History {
	return &History{metrics: make(map[string][]float64)}
}

// OnEpochEnd records the metrics reported at the end of epoch.
// A nil logs records the epoch only.
func (h *History) OnEpochEnd(epoch int, logs map[string]float64) {
	h.epochs = append(h.epochs, epoch)
	for key, value := range logs {
		h.metrics[key] = append(h.metrics[key], value)
	}
}

// Len returns the number of recorded epochs.
func (h *History) Len() int { return len(h.epochs) }

// Epochs returns a copy of the recorded epoch numbers.
func (h *History) Epochs() []int { return slices.Clone(h.epochs) }

// Keys returns the sorted metric names.
func (h *History) Keys() []string {
	return slices.Sorted(maps.Keys(h.metrics))
}

// Values returns a copy of the values recorded for key, nil if there are none.
func (h *History) Values(key string) []float64 {
	return slices.Clone(h.metrics[key])
}

// Validation returns the values of the validation counterpart of key
// ("val_" + key), and whether it was recorded.
func (h *History) Validation(key string) ([]float64, bool) {
	if strings.HasPrefix(key, ValidationPrefix) {
		return nil, false
	}
	values, found := h.metrics[ValidationPrefix+key]
	return slices.Clone(values), found
}

// Last returns the most recent value of key.
func (h *History) Last(key string) (float64, error) {
	values := h.metrics[key]
	if len(values) == 0 {
		return 0, errors.Errorf("no values recorded for metric %q", key)
	}
	return values[len(values)-1], nil
}
