package vector

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name     string
		a        []float32
		b        []float32
		expected float64
	}{
		{"identical", []float32{1, 0, 0}, []float32{1, 0, 0}, 1},
		{"orthogonal", []float32{1, 0, 0}, []float32{0, 1, 0}, 0},
		{"opposite", []float32{1, 0, 0}, []float32{-1, 0, 0}, -1},
		{"similar", []float32{1, 2, 3}, []float32{4, 5, 6}, 0.9746318461970762},
		{"empty", []float32{}, []float32{}, 0},
		{"mismatched_dimensions", []float32{1, 2}, []float32{1, 2, 3}, 0},
		{"zero_vector", []float32{0, 0, 0}, []float32{1, 2, 3}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, CosineSimilarity(tt.a, tt.b), 0.001)
		})
	}
}

func TestMean(t *testing.T) {
	t.Run("averages", func(t *testing.T) {
		got := Mean([]float32{1, 0}, []float32{0, 1}, nil)
		assert.Equal(t, []float32{0.5, 0.5}, got)
	})

	t.Run("skips_other_dimensions", func(t *testing.T) {
		got := Mean([]float32{2, 2}, []float32{9, 9, 9})
		assert.Equal(t, []float32{2, 2}, got)
	})

	t.Run("nothing_to_average", func(t *testing.T) {
		assert.Nil(t, Mean())
		assert.Nil(t, Mean(nil, nil))
	})
}

func TestNormalize(t *testing.T) {
	v := []float32{3, 4}
	n := Normalize(v)
	assert.InDelta(t, 0.6, n[0], 1e-6)
	assert.InDelta(t, 0.8, n[1], 1e-6)
	assert.Equal(t, []float32{3, 4}, v, "input untouched")
	assert.Equal(t, []float32{0, 0}, Normalize([]float32{0, 0}))
}
