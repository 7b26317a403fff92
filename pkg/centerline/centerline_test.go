package centerline

import (
	"math"
	"testing"
)

// straightLine creates n points evenly spaced along the X axis.
func straightLine(n int) *Centerline {
	pts := make([]Vec3, n)
	for i := range pts {
		pts[i] = Vec3{X: float64(i)}
	}
	return New(pts)
}

// circlePoints creates n points on a circle of the given radius in the XY
// plane, spanning the angle range [0, span].
func circlePoints(n int, radius, span float64) []Vec3 {
	pts := make([]Vec3, n)
	for i := range pts {
		theta := span * float64(i) / float64(n-1)
		pts[i] = Vec3{X: radius * math.Cos(theta), Y: radius * math.Sin(theta)}
	}
	return pts
}

// TestNewCopiesPoints verifies that the constructor copies the input slice.
func TestNewCopiesPoints(t *testing.T) {
	pts := []Vec3{{X: 1}, {X: 2}}
	line := New(pts)
	pts[0].X = 99
	if line.Point(0).X != 1 {
		t.Errorf("Expected constructor to copy points, got mutated value %f", line.Point(0).X)
	}
	if line.Len() != 2 {
		t.Errorf("Expected 2 points, got %d", line.Len())
	}
}

// TestScalarArrays verifies attach, read-back and length validation of
// scalar arrays.
func TestScalarArrays(t *testing.T) {
	line := straightLine(5)

	if err := line.SetScalars("radius", []float64{1, 2, 3, 4, 5}); err != nil {
		t.Fatalf("Failed to attach scalar array: %v", err)
	}
	got, ok := line.Scalars("radius")
	if !ok {
		t.Fatal("Expected attached scalar array to be present")
	}
	if got[2] != 3 {
		t.Errorf("Expected value 3 at index 2, got %f", got[2])
	}

	// Returned slice is a copy.
	got[0] = 42
	again, _ := line.Scalars("radius")
	if again[0] != 1 {
		t.Errorf("Expected scalar array to be copy-on-read, got %f", again[0])
	}

	// Wrong length fails.
	if err := line.SetScalars("bad", []float64{1, 2}); err == nil {
		t.Error("Expected error attaching scalar array with wrong length")
	}
	if _, ok := line.Scalars("absent"); ok {
		t.Error("Expected absent array to report false")
	}
}

// TestExtract verifies inclusive sub-centerline extraction with array
// slicing.
func TestExtract(t *testing.T) {
	line := straightLine(10)
	if err := line.SetScalars("v", []float64{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}); err != nil {
		t.Fatal(err)
	}

	sub, err := line.Extract(2, 5)
	if err != nil {
		t.Fatalf("Failed to extract segment: %v", err)
	}
	if sub.Len() != 4 {
		t.Errorf("Expected 4 points, got %d", sub.Len())
	}
	if sub.Point(0).X != 2 || sub.Point(3).X != 5 {
		t.Errorf("Expected points 2..5, got %f..%f", sub.Point(0).X, sub.Point(3).X)
	}
	v, ok := sub.Scalars("v")
	if !ok || v[0] != 2 || v[3] != 5 {
		t.Errorf("Expected scalar array sliced to 2..5, got %v", v)
	}

	// Full-range extraction is the identity.
	full, err := line.Extract(0, line.Len()-1)
	if err != nil {
		t.Fatalf("Failed to extract full range: %v", err)
	}
	if full.Len() != line.Len() {
		t.Errorf("Expected full extraction to keep %d points, got %d", line.Len(), full.Len())
	}
}

// TestExtractErrors verifies index validation of Extract and Cut.
func TestExtractErrors(t *testing.T) {
	line := straightLine(5)
	cases := []struct{ start, end int }{
		{-1, 3},
		{0, 5},
		{3, 2},
		{5, 5},
	}
	for _, c := range cases {
		if _, err := line.Extract(c.start, c.end); err == nil {
			t.Errorf("Expected error extracting [%d, %d]", c.start, c.end)
		}
	}

	if _, err := line.Cut(0); err == nil {
		t.Error("Expected error cutting to zero points")
	}
	if _, err := line.Cut(6); err == nil {
		t.Error("Expected error cutting past the end")
	}
	cut, err := line.Cut(3)
	if err != nil {
		t.Fatalf("Failed to cut: %v", err)
	}
	if cut.Len() != 3 || cut.Point(2).X != 2 {
		t.Errorf("Expected cut prefix of 3 points ending at x=2, got %d points ending at %f", cut.Len(), cut.Point(cut.Len()-1).X)
	}
}

// TestReverse verifies point and array reversal.
func TestReverse(t *testing.T) {
	line := straightLine(4)
	if err := line.SetScalars("v", []float64{0, 1, 2, 3}); err != nil {
		t.Fatal(err)
	}
	rev := line.Reverse()
	if rev.Point(0).X != 3 || rev.Point(3).X != 0 {
		t.Errorf("Expected reversed points, got %f..%f", rev.Point(0).X, rev.Point(3).X)
	}
	v, _ := rev.Scalars("v")
	if v[0] != 3 || v[3] != 0 {
		t.Errorf("Expected reversed scalar array, got %v", v)
	}
}

// TestLengths verifies cumulative and total arc length.
func TestLengths(t *testing.T) {
	line := straightLine(5)
	if got := line.Length(); math.Abs(got-4) > 1e-12 {
		t.Errorf("Expected length 4, got %f", got)
	}
	cum := line.CumulativeLengths()
	if cum[0] != 0 {
		t.Errorf("Expected cumulative length to start at 0, got %f", cum[0])
	}
	if math.Abs(cum[4]-4) > 1e-12 {
		t.Errorf("Expected final cumulative length 4, got %f", cum[4])
	}
}

// TestClone verifies deep copy semantics.
func TestClone(t *testing.T) {
	line := straightLine(3)
	if err := line.SetVectors("t", []Vec3{{X: 1}, {X: 1}, {X: 1}}); err != nil {
		t.Fatal(err)
	}
	clone := line.Clone()
	if clone.Len() != 3 {
		t.Errorf("Expected 3 points, got %d", clone.Len())
	}
	if _, ok := clone.Vectors("t"); !ok {
		t.Error("Expected clone to carry vector arrays")
	}
}

// TestVec3Operations verifies the basic vector algebra.
func TestVec3Operations(t *testing.T) {
	v := Vec3{X: 3, Y: 4}
	if got := v.Norm(); math.Abs(got-5) > 1e-12 {
		t.Errorf("Expected norm 5, got %f", got)
	}
	u := v.Normalize()
	if math.Abs(u.Norm()-1) > 1e-12 {
		t.Errorf("Expected unit norm, got %f", u.Norm())
	}
	if z := (Vec3{}).Normalize(); z.Norm() != 0 {
		t.Errorf("Expected zero vector to normalize to itself, got %v", z)
	}
	cross := Vec3{X: 1}.Cross(Vec3{Y: 1})
	if cross.Z != 1 || cross.X != 0 || cross.Y != 0 {
		t.Errorf("Expected x cross y = z, got %v", cross)
	}
	mid := Vec3{}.Lerp(Vec3{X: 2}, 0.5)
	if mid.X != 1 {
		t.Errorf("Expected midpoint x=1, got %f", mid.X)
	}
}
