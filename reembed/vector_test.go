package reembed

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeVector(t *testing.T) {
	t.Run("basic normalization", func(t *testing.T) {
		result := NormalizeVector([]float32{3, 4})
		require.Len(t, result, 2)
		assert.InDelta(t, 0.6, result[0], 1e-6)
		assert.InDelta(t, 0.8, result[1], 1e-6)
	})

	t.Run("already unit length", func(t *testing.T) {
		result := NormalizeVector([]float32{1, 0, 0})
		assert.Equal(t, []float32{1, 0, 0}, result)
	})

	t.Run("zero vector stays zero", func(t *testing.T) {
		result := NormalizeVector([]float32{0, 0, 0})
		assert.Equal(t, []float32{0, 0, 0}, result)
	})

	t.Run("empty vector", func(t *testing.T) {
		result := NormalizeVector([]float32{})
		assert.Empty(t, result)
	})

	t.Run("input unchanged", func(t *testing.T) {
		input := []float32{3, 4}
		_ = NormalizeVector(input)
		assert.Equal(t, []float32{3, 4}, input)
	})
}
