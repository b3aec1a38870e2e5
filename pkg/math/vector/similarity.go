// Package vector holds the word-embedding arithmetic used by pairwise
// features: cosine similarity and span averages.
package vector

import "math"

// CosineSimilarity returns the cosine of the angle between a and b, in
// [-1, 1]. Mismatched lengths, empty input and zero vectors yield 0.
// Accumulation is done in float64.
//
// Example:
//
//	sim := CosineSimilarity([]float32{1, 2, 3}, []float32{4, 5, 6}) // 0.9746...
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// Mean averages vectors of equal dimension, skipping nil entries and
// entries whose dimension differs from the first non-nil one. It returns
// nil when nothing was averaged.
func Mean(vecs ...[]float32) []float32 {
	var sum []float64
	n := 0
	for _, v := range vecs {
		if v == nil {
			continue
		}
		if sum == nil {
			sum = make([]float64, len(v))
		}
		if len(v) != len(sum) {
			continue
		}
		for i, x := range v {
			sum[i] += float64(x)
		}
		n++
	}
	if n == 0 {
		return nil
	}
	out := make([]float32, len(sum))
	for i, s := range sum {
		out[i] = float32(s / float64(n))
	}
	return out
}

// Normalize returns a unit-length copy of vec; a zero vector is returned
// unchanged.
func Normalize(vec []float32) []float32 {
	var norm float64
	for _, x := range vec {
		norm += float64(x) * float64(x)
	}
	out := make([]float32, len(vec))
	copy(out, vec)
	if norm == 0 {
		return out
	}
	norm = math.Sqrt(norm)
	for i := range out {
		out[i] = float32(float64(out[i]) / norm)
	}
	return out
}
