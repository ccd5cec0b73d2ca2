package vec

import (
	"math"
	"testing"
)

func TestDot(t *testing.T) {
	t.Parallel()

	if got := Dot([]float64{1, 2, 3}, []float64{4, 5, 6}); got != 32 {
		t.Fatalf("expected 32, got %v", got)
	}
	if got := Dot([]float64{1, 2}, []float64{1, 2, 3}); got != 0 {
		t.Fatalf("mismatched lengths must score zero, got %v", got)
	}
}

func TestL2Normalize(t *testing.T) {
	t.Parallel()

	v := L2Normalize([]float64{3, 4})
	if math.Abs(v[0]-0.6) > 1e-12 || math.Abs(v[1]-0.8) > 1e-12 {
		t.Fatalf("unexpected normalized vector: %v", v)
	}

	zero := L2Normalize([]float64{0, 0, 0})
	for i, x := range zero {
		if x != 0 {
			t.Fatalf("zero vector must stay zero at index %d: %v", i, x)
		}
	}
}

func TestMean(t *testing.T) {
	t.Parallel()

	m, ok := Mean([][]float64{{1, 3}, {3, 5}})
	if !ok {
		t.Fatal("expected mean to succeed")
	}
	if m[0] != 2 || m[1] != 4 {
		t.Fatalf("unexpected mean: %v", m)
	}

	if _, ok := Mean(nil); ok {
		t.Fatal("empty input must fail")
	}
	if _, ok := Mean([][]float64{{1, 2}, {1}}); ok {
		t.Fatal("dimension mismatch must fail")
	}
}
