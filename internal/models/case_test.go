package models

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/PeterZs/morphMan/pkg/centerline"
)

// TestCasePaths verifies the per-case file naming convention.
func TestCasePaths(t *testing.T) {
	c := Case{Name: "C0001", Dir: filepath.Join("input", "C0001")}

	if got := c.CenterlinePath(); got != filepath.Join("input", "C0001", "C0001_centerline.txt") {
		t.Errorf("Unexpected centerline path %q", got)
	}
	if got := c.SiphonPath(); got != filepath.Join("input", "C0001", "C0001_siphon.txt") {
		t.Errorf("Unexpected siphon path %q", got)
	}
	if got := c.LandmarksPath(); got != filepath.Join("input", "C0001", "C0001_siphon_points.particles") {
		t.Errorf("Unexpected landmarks path %q", got)
	}
	if got := c.ConfigPath(); got != filepath.Join("input", "C0001", "config.yaml") {
		t.Errorf("Unexpected config path %q", got)
	}
}

// TestDiscoverCases verifies sorted discovery and name filtering.
func TestDiscoverCases(t *testing.T) {
	root := t.TempDir()
	for _, name := range []string{"C0002", "C0001", "C0003"} {
		if err := os.Mkdir(filepath.Join(root, name), 0755); err != nil {
			t.Fatal(err)
		}
	}
	// Stray files are not cases.
	if err := os.WriteFile(filepath.Join(root, "notes.txt"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	cases, err := DiscoverCases(root, "")
	if err != nil {
		t.Fatalf("Failed to discover cases: %v", err)
	}
	if len(cases) != 3 {
		t.Fatalf("Expected 3 cases, got %d", len(cases))
	}
	for i, want := range []string{"C0001", "C0002", "C0003"} {
		if cases[i].Name != want {
			t.Errorf("Expected case %q at position %d, got %q", want, i, cases[i].Name)
		}
	}

	filtered, err := DiscoverCases(root, "C0002")
	if err != nil {
		t.Fatalf("Failed to discover filtered case: %v", err)
	}
	if len(filtered) != 1 || filtered[0].Name != "C0002" {
		t.Errorf("Expected single case C0002, got %v", filtered)
	}

	if _, err := DiscoverCases(root, "C9999"); err == nil {
		t.Error("Expected error for unmatched case filter")
	}
}

// TestCenterlineRoundTrip verifies write-then-read of a centerline with a
// radius array.
func TestCenterlineRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "line.txt")

	pts := []centerline.Vec3{
		{X: 0.5, Y: -1.25, Z: 3},
		{X: 1, Y: 2, Z: -0.125},
		{X: 4, Y: 0, Z: 0},
	}
	line := centerline.New(pts)
	if err := line.SetScalars(centerline.RadiusArrayName, []float64{0.25, 0.5, 0.75}); err != nil {
		t.Fatal(err)
	}

	if err := WriteCenterline(path, line); err != nil {
		t.Fatalf("Failed to write centerline: %v", err)
	}
	got, err := ReadCenterline(path)
	if err != nil {
		t.Fatalf("Failed to read centerline: %v", err)
	}

	if got.Len() != 3 {
		t.Fatalf("Expected 3 points, got %d", got.Len())
	}
	for i := range pts {
		if got.Point(i) != pts[i] {
			t.Errorf("Expected point %v at index %d, got %v", pts[i], i, got.Point(i))
		}
	}
	radius, ok := got.Scalars(centerline.RadiusArrayName)
	if !ok {
		t.Fatal("Expected radius array present after round trip")
	}
	if radius[1] != 0.5 {
		t.Errorf("Expected radius 0.5 at index 1, got %f", radius[1])
	}
}

// TestReadCenterlineWithoutRadius verifies the 3-column format.
func TestReadCenterlineWithoutRadius(t *testing.T) {
	path := filepath.Join(t.TempDir(), "line.txt")
	content := "# comment line\n0 0 0\n\n1 0 0\n2 0 0\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	got, err := ReadCenterline(path)
	if err != nil {
		t.Fatalf("Failed to read centerline: %v", err)
	}
	if got.Len() != 3 {
		t.Errorf("Expected 3 points (comments and blanks skipped), got %d", got.Len())
	}
	if _, ok := got.Scalars(centerline.RadiusArrayName); ok {
		t.Error("Expected no radius array for 3-column input")
	}
}

// TestReadCenterlineMissing verifies the typed missing-file error.
func TestReadCenterlineMissing(t *testing.T) {
	_, err := ReadCenterline(filepath.Join(t.TempDir(), "absent.txt"))
	var missing *centerline.MissingInputError
	if !errors.As(err, &missing) {
		t.Errorf("Expected MissingInputError, got %v", err)
	}
}

// TestReadCenterlineMalformed verifies rejection of bad rows.
func TestReadCenterlineMalformed(t *testing.T) {
	dir := t.TempDir()

	badColumns := filepath.Join(dir, "cols.txt")
	if err := os.WriteFile(badColumns, []byte("1 2\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := ReadCenterline(badColumns); err == nil {
		t.Error("Expected error for wrong column count")
	}

	badNumber := filepath.Join(dir, "num.txt")
	if err := os.WriteFile(badNumber, []byte("1 2 x\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := ReadCenterline(badNumber); err == nil {
		t.Error("Expected error for non-numeric value")
	}

	empty := filepath.Join(dir, "empty.txt")
	if err := os.WriteFile(empty, []byte("# only comments\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := ReadCenterline(empty); err == nil {
		t.Error("Expected error for centerline without points")
	}
}

// TestLandmarksRoundTrip verifies the landmark file helpers.
func TestLandmarksRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "points.particles")
	pts := []centerline.Vec3{{X: 1, Y: 2, Z: 3}, {X: -4, Y: 5, Z: -6}}

	if err := WriteLandmarks(path, pts); err != nil {
		t.Fatalf("Failed to write landmarks: %v", err)
	}
	got, err := ReadLandmarks(path)
	if err != nil {
		t.Fatalf("Failed to read landmarks: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("Expected 2 landmarks, got %d", len(got))
	}
	for i := range pts {
		if got[i] != pts[i] {
			t.Errorf("Expected landmark %v at index %d, got %v", pts[i], i, got[i])
		}
	}
}
