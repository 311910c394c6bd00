package history

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistoryRecordsEpochs(t *testing.T) {
	h := New()
	assert.Equal(t, 0, h.Len())
	assert.Empty(t, h.Keys())

	h.OnEpochEnd(0, map[string]float64{"loss": 0.9, "acc": 0.4, "val_loss": 1.1})
	h.OnEpochEnd(1, map[string]float64{"loss": 0.5, "acc": 0.7, "val_loss": 0.8})

	assert.Equal(t, 2, h.Len())
	assert.Equal(t, []int{0, 1}, h.Epochs())
	assert.Equal(t, []string{"acc", "loss", "val_loss"}, h.Keys())
	assert.Equal(t, []float64{0.9, 0.5}, h.Values("loss"))
	assert.Nil(t, h.Values("missing"))

	last, err := h.Last("acc")
	require.NoError(t, err)
	assert.Equal(t, 0.7, last)
	_, err = h.Last("missing")
	require.Error(t, err)
}

func TestHistoryKeepsAccumulatingAcrossRuns(t *testing.T) {
	h := New()
	for epoch := 0; epoch < 3; epoch++ {
		h.OnEpochEnd(epoch, map[string]float64{"loss": float64(3 - epoch)})
	}
	// A second training run starts counting epochs from zero again.
	for epoch := 0; epoch < 2; epoch++ {
		h.OnEpochEnd(epoch, map[string]float64{"loss": 0.5})
	}
	assert.Equal(t, []int{0, 1, 2, 0, 1}, h.Epochs())
	assert.Equal(t, []float64{3, 2, 1, 0.5, 0.5}, h.Values("loss"))
}

func TestHistoryValidation(t *testing.T) {
	h := New()
	h.OnEpochEnd(0, map[string]float64{"loss": 1, "val_loss": 2})
	h.OnEpochEnd(1, nil)

	values, found := h.Validation("loss")
	require.True(t, found)
	assert.Equal(t, []float64{2}, values)

	_, found = h.Validation("acc")
	assert.False(t, found)
	_, found = h.Validation("val_loss")
	assert.False(t, found)
	assert.Equal(t, 2, h.Len())
}

func TestHistoryReturnsCopies(t *testing.T) {
	h := New()
	h.OnEpochEnd(0, map[string]float64{"loss": 1})
	values := h.Values("loss")
	values[0] = 42
	epochs := h.Epochs()
	epochs[0] = 42
	assert.Equal(t, []float64{1}, h.Values("loss"))
	assert.Equal(t, []int{0}, h.Epochs())
}
