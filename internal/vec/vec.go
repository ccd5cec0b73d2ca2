// Package vec holds the small amount of vector arithmetic the pipeline
// needs: dot products, mean pooling, and L2 normalization.
package vec

import "math"

const normEpsilon = 1e-8

// Dot returns the dot product of a and b. Mismatched lengths score zero.
func Dot(a, b []float64) float64 {
	if len(a) != len(b) {
		return 0
	}
	var sum float64
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}

// L2Normalize scales v to unit length in place and returns it. A zero-norm
// vector is divided by a small epsilon floor instead of zero.
func L2Normalize(v []float64) []float64 {
	var sum float64
	for _, x := range v {
		sum += x * x
	}
	norm := math.Sqrt(sum)
	if norm == 0 {
		norm = normEpsilon
	}
	for i := range v {
		v[i] /= norm
	}
	return v
}

// Mean returns the arithmetic mean of the given vectors. It returns false
// when vectors is empty or the dimensionalities disagree.
func Mean(vectors [][]float64) ([]float64, bool) {
	if len(vectors) == 0 {
		return nil, false
	}
	dim := len(vectors[0])
	out := make([]float64, dim)
	for _, v := range vectors {
		if len(v) != dim {
			return nil, false
		}
		for i, x := range v {
			out[i] += x
		}
	}
	for i := range out {
		out[i] /= float64(len(vectors))
	}
	return out, true
}

// Zero returns a zero vector of the given dimensionality.
func Zero(dim int) []float64 {
	if dim < 0 {
		dim = 0
	}
	return make([]float64, dim)
}
