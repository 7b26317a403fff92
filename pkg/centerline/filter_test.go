package centerline

import (
	"math"
	"testing"
)

// TestGaussianFilterConstant verifies that a constant signal passes through
// the filter unchanged.
func TestGaussianFilterConstant(t *testing.T) {
	values := make([]float64, 50)
	for i := range values {
		values[i] = 3.5
	}
	out := GaussianFilter(values, 5.0)
	for i, v := range out {
		if math.Abs(v-3.5) > 1e-9 {
			t.Fatalf("Expected constant signal preserved, got %f at index %d", v, i)
		}
	}
}

// TestGaussianFilterSpreadsPeak verifies that a delta spike is attenuated
// and spread.
func TestGaussianFilterSpreadsPeak(t *testing.T) {
	values := make([]float64, 41)
	values[20] = 1.0
	out := GaussianFilter(values, 2.0)
	if out[20] >= 1.0 {
		t.Errorf("Expected peak attenuation, got %f", out[20])
	}
	if out[18] <= 0 || out[22] <= 0 {
		t.Error("Expected peak energy to spread to neighbors")
	}

	// The kernel is normalized, so total mass is preserved away from the
	// boundary.
	sum := 0.0
	for _, v := range out {
		sum += v
	}
	if math.Abs(sum-1.0) > 1e-9 {
		t.Errorf("Expected mass preservation, got total %f", sum)
	}
}

// TestGaussianFilterNoSigma verifies that non-positive sigma is a copy.
func TestGaussianFilterNoSigma(t *testing.T) {
	values := []float64{1, 2, 3}
	out := GaussianFilter(values, 0)
	for i := range values {
		if out[i] != values[i] {
			t.Errorf("Expected unchanged copy at index %d, got %f", i, out[i])
		}
	}
	out[0] = 99
	if values[0] != 1 {
		t.Error("Expected output to be a copy, input was mutated")
	}
}

// TestReflectIndex verifies the mirror boundary mapping.
func TestReflectIndex(t *testing.T) {
	cases := []struct{ i, n, want int }{
		{0, 4, 0},
		{3, 4, 3},
		{-1, 4, 0},
		{-2, 4, 1},
		{4, 4, 3},
		{5, 4, 2},
		{7, 4, 0},
		{8, 4, 0},
		{5, 1, 0},
	}
	for _, c := range cases {
		if got := reflectIndex(c.i, c.n); got != c.want {
			t.Errorf("reflectIndex(%d, %d): expected %d, got %d", c.i, c.n, c.want, got)
		}
	}
}

// TestLocalMaxima verifies strict interior maxima detection.
func TestLocalMaxima(t *testing.T) {
	values := []float64{5, 1, 3, 2, 4, 4, 1, 0}
	got := LocalMaxima(values)
	if len(got) != 1 || got[0] != 2 {
		t.Errorf("Expected single maximum at index 2, got %v", got)
	}

	if got := LocalMaxima([]float64{1, 2, 3}); len(got) != 0 {
		t.Errorf("Expected no interior maxima on monotone data, got %v", got)
	}
}

// TestResampleScalars verifies endpoint preservation and the identity case.
func TestResampleScalars(t *testing.T) {
	values := []float64{0, 1, 2, 3, 4}

	same := ResampleScalars(values, 5)
	for i := range values {
		if same[i] != values[i] {
			t.Errorf("Expected identity resampling at index %d, got %f", i, same[i])
		}
	}

	up := ResampleScalars(values, 9)
	if up[0] != 0 || up[8] != 4 {
		t.Errorf("Expected endpoints preserved, got %f and %f", up[0], up[8])
	}
	if math.Abs(up[1]-0.5) > 1e-9 {
		t.Errorf("Expected linear interpolation 0.5 at index 1, got %f", up[1])
	}

	down := ResampleScalars(values, 3)
	if down[0] != 0 || down[1] != 2 || down[2] != 4 {
		t.Errorf("Expected downsampled values [0 2 4], got %v", down)
	}
}

// TestResamplePoints verifies uniform arc-length spacing.
func TestResamplePoints(t *testing.T) {
	// Non-uniform spacing along the x axis.
	line := New([]Vec3{{X: 0}, {X: 0.1}, {X: 0.2}, {X: 3}, {X: 10}})
	out, err := ResamplePoints(line, 11)
	if err != nil {
		t.Fatalf("Failed to resample: %v", err)
	}
	if out.Len() != 11 {
		t.Fatalf("Expected 11 points, got %d", out.Len())
	}
	if out.Point(0).X != 0 || math.Abs(out.Point(10).X-10) > 1e-9 {
		t.Errorf("Expected endpoints 0 and 10, got %f and %f", out.Point(0).X, out.Point(10).X)
	}
	for i := 1; i < 11; i++ {
		step := out.Point(i).X - out.Point(i-1).X
		if math.Abs(step-1.0) > 1e-9 {
			t.Errorf("Expected uniform step 1.0, got %f at index %d", step, i)
		}
	}

	if _, err := ResamplePoints(New([]Vec3{{}}), 5); err == nil {
		t.Error("Expected error resampling a single point")
	}
	if _, err := ResamplePoints(line, 1); err == nil {
		t.Error("Expected error resampling to fewer than 2 points")
	}
}
