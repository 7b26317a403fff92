package sweep

import (
	"bufio"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/PeterZs/morphMan/pkg/centerline"
	"github.com/PeterZs/morphMan/pkg/config"
)

// bentVessel creates a straight lead-in, a semicircular bend with an
// out-of-plane twist and a straight lead-out, with a constant vessel radius
// attached.
func bentVessel(tail, bend int, radius float64) *centerline.Centerline {
	var pts []centerline.Vec3
	step := radius * math.Pi / float64(bend-1)
	for i := tail; i > 0; i-- {
		pts = append(pts, centerline.Vec3{X: -radius, Y: -float64(i) * step})
	}
	for i := 0; i < bend; i++ {
		theta := math.Pi * float64(i) / float64(bend-1)
		pts = append(pts, centerline.Vec3{
			X: -radius * math.Cos(theta),
			Y: radius * math.Sin(theta),
			Z: 0.2 * radius * math.Sin(2 * theta),
		})
	}
	for i := 1; i <= tail; i++ {
		pts = append(pts, centerline.Vec3{X: radius, Y: -float64(i) * step})
	}
	line := centerline.New(pts)
	r := make([]float64, len(pts))
	for i := range r {
		r[i] = 0.15 * radius
	}
	line.SetScalars(centerline.RadiusArrayName, r)
	return line
}

// sweepParams builds grid-mode parameters over a small synthetic case.
func sweepParams(t *testing.T, outDir string) *Params {
	t.Helper()
	line := bentVessel(20, 80, 2.0)
	id1, id2 := 20, line.Len()-21

	cfg := config.DefaultConfig()
	cfg.Grid.N = 2
	cfg.Grid.AlphaMin, cfg.Grid.AlphaMax = -0.05, 0.05
	cfg.Grid.BetaMin, cfg.Grid.BetaMax = -0.05, 0.05

	return &Params{
		Config:   cfg,
		CaseName: "synthetic",
		Line:     line,
		Landmarks: [2]centerline.Vec3{
			line.Point(id1).Add(centerline.Vec3{Y: -1e-3}),
			line.Point(id2).Add(centerline.Vec3{Y: -1e-3}),
		},
		OutputDir:        outDir,
		ComputeCurvature: true,
		ComputeAngle:     true,
	}
}

// TestNewOrchestratorValidation verifies method selector validation.
func TestNewOrchestratorValidation(t *testing.T) {
	params := sweepParams(t, t.TempDir())

	params.Config.Methods.Curvature = "bogus"
	if _, err := NewOrchestrator(params); err == nil {
		t.Error("Expected error for unknown curvature method")
	}

	params.Config.Methods.Curvature = "disc"
	params.Config.Methods.Angle = "bogus"
	if _, err := NewOrchestrator(params); err == nil {
		t.Error("Expected error for unknown angle method")
	}

	params.Config.Methods.Angle = "odrline"
	params.Config.Methods.ODRLimit = "bogus"
	if _, err := NewOrchestrator(params); err == nil {
		t.Error("Expected error for unknown odr limit")
	}

	params.Config.Methods.ODRLimit = "sd"
	if _, err := NewOrchestrator(params); err != nil {
		t.Errorf("Expected valid selectors to pass, got %v", err)
	}
}

// TestRunGrid verifies a 2x2 sweep persists both result matrices in the
// expected format.
func TestRunGrid(t *testing.T) {
	outDir := t.TempDir()
	params := sweepParams(t, outDir)

	orch, err := NewOrchestrator(params)
	if err != nil {
		t.Fatalf("Failed to build orchestrator: %v", err)
	}
	if err := orch.Run(); err != nil {
		t.Fatalf("Sweep failed: %v", err)
	}

	for _, quantity := range []string{"curvature", "angle"} {
		path := filepath.Join(outDir, "new_"+quantity+"_synthetic.txt")
		f, err := os.Open(path)
		if err != nil {
			t.Fatalf("Expected result file for %s: %v", quantity, err)
		}
		var rows []string
		scanner := bufio.NewScanner(f)
		for scanner.Scan() {
			rows = append(rows, scanner.Text())
		}
		f.Close()
		if len(rows) != 2 {
			t.Fatalf("Expected 2 rows in %s matrix, got %d", quantity, len(rows))
		}
		for i, row := range rows {
			cols := strings.Fields(row)
			if len(cols) != 2 {
				t.Fatalf("Expected 2 columns in %s row %d, got %d", quantity, i, len(cols))
			}
			for _, c := range cols {
				if !strings.Contains(c, ".") || len(c)-strings.Index(c, ".") != 4 {
					t.Errorf("Expected 3 decimal digits in %s cell %q", quantity, c)
				}
			}
		}
	}
}

// TestRunSingle verifies single-configuration mode runs without persisting
// matrices.
func TestRunSingle(t *testing.T) {
	outDir := t.TempDir()
	params := sweepParams(t, outDir)
	alpha, beta := 0.05, -0.05
	params.FixedAlpha = &alpha
	params.FixedBeta = &beta

	orch, err := NewOrchestrator(params)
	if err != nil {
		t.Fatalf("Failed to build orchestrator: %v", err)
	}
	if err := orch.Run(); err != nil {
		t.Fatalf("Single run failed: %v", err)
	}

	entries, err := os.ReadDir(outDir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("Expected no result files in single mode, found %d", len(entries))
	}
}

// TestRunGridTooSmall verifies the minimum grid size.
func TestRunGridTooSmall(t *testing.T) {
	params := sweepParams(t, t.TempDir())
	params.Config.Grid.N = 1

	orch, err := NewOrchestrator(params)
	if err != nil {
		t.Fatalf("Failed to build orchestrator: %v", err)
	}
	if err := orch.Run(); err == nil {
		t.Error("Expected error for a 1x1 grid")
	}
}
