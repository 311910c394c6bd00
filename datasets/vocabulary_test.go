package datasets

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewVocabularySortsAndDeduplicates(t *testing.T) {
	v := NewVocabulary([]string{"water", "clear", "agriculture", "clear", "road"})
	assert.Equal(t, []string{"agriculture", "clear", "road", "water"}, v.Labels())
	assert.Equal(t, 4, v.Len())
	idx, ok := v.Index("road")
	assert.True(t, ok)
	assert.Equal(t, 2, idx)
	_, ok = v.Index("haze")
	assert.False(t, ok)
}

func TestVocabularyEncodeSingleLabel(t *testing.T) {
	v := NewVocabulary([]string{"cat", "dog", "fish"})
	for i, label := range v.Labels() {
		vec, err := v.Encode(label)
		require.NoError(t, err)
		require.Len(t, vec, 3)
		for j, value := range vec {
			if j == i {
				assert.Equal(t, float32(1), value, "label %q", label)
			} else {
				assert.Equal(t, float32(0), value, "label %q", label)
			}
		}
	}
}

func TestVocabularyEncodeMultiLabel(t *testing.T) {
	v := NewVocabulary([]string{"a", "b", "c", "d"})
	vec, err := v.Encode("d", "a", "c")
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 0, 1, 1}, vec)

	var sum float32
	for _, value := range vec {
		sum += value
	}
	assert.Equal(t, float32(3), sum)
}

func TestVocabularyEncodeDuplicatesAccumulate(t *testing.T) {
	v := NewVocabulary([]string{"a", "b"})
	vec, err := v.Encode("b", "b")
	require.NoError(t, err)
	assert.Equal(t, []float32{0, 2}, vec)
}

func TestVocabularyEncodeUnrecognized(t *testing.T) {
	v := NewVocabulary([]string{"a", "b"})
	_, err := v.Encode("a", "zebra")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnrecognizedLabel))
	assert.Contains(t, err.Error(), "zebra")
}

func TestVocabularyEncodeIntoWrongLength(t *testing.T) {
	v := NewVocabulary([]string{"a", "b"})
	require.Error(t, v.EncodeInto(make([]float32, 3), "a"))
}

func TestVocabularyEmptyEncode(t *testing.T) {
	v := NewVocabulary([]string{"a", "b"})
	vec, err := v.Encode()
	require.NoError(t, err)
	assert.Equal(t, []float32{0, 0}, vec)
}
