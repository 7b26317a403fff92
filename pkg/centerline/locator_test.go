package centerline

import (
	"math"
	"testing"
)

// TestFindClosestPoint verifies nearest-point lookup on a helix.
func TestFindClosestPoint(t *testing.T) {
	n := 200
	pts := make([]Vec3, n)
	for i := range pts {
		theta := 4 * math.Pi * float64(i) / float64(n-1)
		pts[i] = Vec3{X: math.Cos(theta), Y: math.Sin(theta), Z: 0.1 * theta}
	}
	line := New(pts)
	locator := NewLocator(line)

	for _, want := range []int{0, 17, 99, 150, n - 1} {
		// Query slightly off the exact point.
		q := pts[want].Add(Vec3{X: 1e-4, Y: -1e-4})
		if got := locator.FindClosestPoint(q); got != want {
			t.Errorf("Expected closest point %d, got %d", want, got)
		}
	}
}

// TestFindClosestPointExact verifies lookup of the exact point positions.
func TestFindClosestPointExact(t *testing.T) {
	line := straightLine(50)
	locator := NewLocator(line)
	for i := 0; i < line.Len(); i++ {
		if got := locator.FindClosestPoint(line.Point(i)); got != i {
			t.Errorf("Expected index %d for its own position, got %d", i, got)
		}
	}
}

// TestFindClosestPointTie verifies that ties resolve to the lowest index.
func TestFindClosestPointTie(t *testing.T) {
	pts := []Vec3{
		{X: 0},
		{X: 1},
		{X: 1}, // duplicate of index 1
		{X: 2},
	}
	locator := NewLocator(New(pts))
	if got := locator.FindClosestPoint(Vec3{X: 1, Y: 0.1}); got != 1 {
		t.Errorf("Expected tie to resolve to index 1, got %d", got)
	}

	// Query equidistant between two distinct points.
	if got := locator.FindClosestPoint(Vec3{X: 1.5}); got != 1 {
		t.Errorf("Expected equidistant query to resolve to index 1, got %d", got)
	}
}
