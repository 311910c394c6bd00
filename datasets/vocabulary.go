package datasets

import (
	"slices"

	"github.com/pkg/errors"
)

// Vocabulary is the fixed, sorted set of label names. The position of a label
// in the vocabulary is its index in the encoded label vectors.
type Vocabulary struct {
	labels []string
	index  map[string]int
}

// NewVocabulary creates a Vocabulary from the given labels. The labels are
// copied, sorted and deduplicated.
func NewVocabulary(labels []string) *Vocabulary {
	sorted := slices.Clone(labels)
	slices.Sort(sorted)
	sorted = slices.Compact(sorted)
	v := &Vocabulary{
		labels: sorted,
		index:  make(map[string]int, len(sorted)),
	}
	for i, label := range sorted {
		v.index[label] = i
	}
	return v
}

// Len returns the number of labels, which is also the length of the encoded vectors.
func (v *Vocabulary) Len() int { return len(v.labels) }

// Labels returns a copy of the sorted label names.
func (v *Vocabulary) Labels() []string { return slices.Clone(v.labels) }

// Index returns the position of label in the vocabulary.
func (v *Vocabulary) Index(label string) (int, bool) {
	idx, ok := v.index[label]
	return idx, ok
}

// Encode returns a vector of length Len() with 1 added at the index of each
// of the given labels.
//
// Multiple labels are summed, not clamped: a label given twice yields a 2 in
// its position.
func (v *Vocabulary) Encode(labels ...string) ([]float32, error) {
	vec := make([]float32, v.Len())
	if err := v.EncodeInto(vec, labels...); err != nil {
		return nil, err
	}
	return vec, nil
}

// EncodeInto is like Encode, but adds the one-hot contributions into dst,
// which must have length Len() and is expected to be zeroed.
func (v *Vocabulary) EncodeInto(dst []float32, labels ...string) error {
	if len(dst) != v.Len() {
		return errors.Errorf("label vector has length %d, vocabulary has %d labels", len(dst), v.Len())
	}
	for _, label := range labels {
		idx, ok := v.index[label]
		if !ok {
			return errors.Wrapf(ErrUnrecognizedLabel, "label %q", label)
		}
		dst[idx] += 1
	}
	return nil
}
