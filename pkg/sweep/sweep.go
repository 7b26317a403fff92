// Package sweep orchestrates the (alpha, beta) parameter sweep of a case:
// it deforms the centerline for every grid cell, invokes the configured
// angle and curvature estimators and persists the result matrices.
package sweep

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/PeterZs/morphMan/pkg/angle"
	"github.com/PeterZs/morphMan/pkg/centerline"
	"github.com/PeterZs/morphMan/pkg/config"
	"github.com/PeterZs/morphMan/pkg/curvature"
	"github.com/PeterZs/morphMan/pkg/deform"
	"gonum.org/v1/gonum/floats"
)

// Params holds one case's sweep inputs.
type Params struct {
	// Config is the per-case configuration (grid boundary, methods,
	// deformation and smoothing parameters).
	Config *config.Config

	// CaseName names the case in log output and result filenames.
	CaseName string

	// Line is the complete centerline of the case.
	Line *centerline.Centerline

	// Siphon is the siphon centerline. Nil reuses Line.
	Siphon *centerline.Centerline

	// Landmarks are the two clipping points bounding the bend.
	Landmarks [2]centerline.Vec3

	// OutputDir receives the result matrices in grid mode.
	OutputDir string

	// ComputeCurvature and ComputeAngle select the quantities to compute.
	ComputeCurvature bool
	ComputeAngle     bool

	// FixedAlpha and FixedBeta switch to single-configuration mode when
	// both are set: one computation, results logged instead of persisted.
	FixedAlpha *float64
	FixedBeta  *float64
}

// Orchestrator runs the sweep for one case.
type Orchestrator struct {
	params     *Params
	engine     *deform.Engine
	curvMethod curvature.Method
	strategy   angle.Strategy
	odrLimit   angle.ODRLimit
	logger     *slog.Logger
}

// NewOrchestrator validates the configured method selectors and prepares a
// sweep. Unrecognized selector names fail with UnknownStrategyError.
func NewOrchestrator(params *Params) (*Orchestrator, error) {
	cfg := params.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
		params.Config = cfg
	}
	if params.Siphon == nil {
		params.Siphon = params.Line
	}

	curvMethod, err := curvature.ParseMethod(cfg.Methods.Curvature)
	if err != nil {
		return nil, err
	}
	strategy, err := angle.ParseStrategy(cfg.Methods.Angle)
	if err != nil {
		return nil, err
	}
	odrLimit := angle.ODRLimit(cfg.Methods.ODRLimit)
	if strategy == angle.ODRLine {
		if odrLimit, err = angle.ParseODRLimit(cfg.Methods.ODRLimit); err != nil {
			return nil, err
		}
	}

	engineParams := deform.DefaultParams()
	engineParams.Eye = cfg.Deformation.Eye
	if cfg.Deformation.EyeClipOffset > 0 {
		engineParams.EyeClipOffset = cfg.Deformation.EyeClipOffset
	}

	return &Orchestrator{
		params:     params,
		engine:     deform.NewEngine(engineParams),
		curvMethod: curvMethod,
		strategy:   strategy,
		odrLimit:   odrLimit,
		logger:     slog.Default().With("case", params.CaseName),
	}, nil
}

// Run executes the sweep. In single-configuration mode the results are
// logged; in grid mode an n x n matrix per requested quantity is persisted
// to the output directory. The sweep is fail-fast: the first failing cell
// aborts it.
func (o *Orchestrator) Run() error {
	if o.params.FixedAlpha != nil && o.params.FixedBeta != nil {
		return o.runSingle(*o.params.FixedAlpha, *o.params.FixedBeta)
	}
	return o.runGrid()
}

func (o *Orchestrator) runSingle(alpha, beta float64) error {
	maxCurv, deg, err := o.cell(alpha, beta)
	if err != nil {
		return err
	}
	if o.params.ComputeCurvature {
		o.logger.Info("curvature", "alpha", alpha, "beta", beta, "max", fmt.Sprintf("%.3f", maxCurv))
	}
	if o.params.ComputeAngle {
		o.logger.Info("angle", "alpha", alpha, "beta", beta, "degrees", fmt.Sprintf("%.3f", deg))
	}
	return nil
}

func (o *Orchestrator) runGrid() error {
	cfg := o.params.Config
	n := cfg.Grid.N
	if n < 2 {
		return fmt.Errorf("grid size must be at least 2, got %d", n)
	}

	alphas := make([]float64, n)
	betas := make([]float64, n)
	floats.Span(alphas, cfg.Grid.AlphaMin, cfg.Grid.AlphaMax)
	floats.Span(betas, cfg.Grid.BetaMin, cfg.Grid.BetaMax)

	curvMatrix := NewMatrix(n)
	angleMatrix := NewMatrix(n)

	for i, alpha := range alphas {
		for j, beta := range betas {
			maxCurv, deg, err := o.cell(alpha, beta)
			if err != nil {
				return errors.Wrapf(err, "sweep cell alpha=%.3f beta=%.3f", alpha, beta)
			}
			if o.params.ComputeCurvature {
				curvMatrix.Set(i, j, maxCurv)
			}
			if o.params.ComputeAngle {
				angleMatrix.Set(i, j, deg)
			}
		}
		o.logger.Info("sweep progress", "row", i+1, "rows", n)
	}

	if o.params.ComputeCurvature {
		path := o.resultPath("curvature")
		if err := curvMatrix.Save(path); err != nil {
			return err
		}
		o.logger.Info("saved curvature matrix", "path", path)
	}
	if o.params.ComputeAngle {
		path := o.resultPath("angle")
		if err := angleMatrix.Save(path); err != nil {
			return err
		}
		o.logger.Info("saved angle matrix", "path", path)
	}
	return nil
}

// cell computes the requested quantities for one (alpha, beta) pair.
func (o *Orchestrator) cell(alpha, beta float64) (maxCurv, deg float64, err error) {
	cfg := o.params.Config
	if o.params.ComputeCurvature {
		maxCurv, err = curvature.Compute(curvature.Input{
			Line:   o.params.Line,
			P1:     o.params.Landmarks[0],
			P2:     o.params.Landmarks[1],
			Alpha:  alpha,
			Beta:   beta,
			Method: o.curvMethod,
			Engine: o.engine,
			Sigma:  cfg.Smoothing.Sigma,
			Margin: cfg.Smoothing.Margin,
		})
		if err != nil {
			return 0, 0, errors.Wrap(err, "curvature computation")
		}
	}
	if o.params.ComputeAngle {
		var res angle.Result
		res, err = angle.Compute(angle.Input{
			Line:      o.params.Line,
			Siphon:    o.params.Siphon,
			P1:        o.params.Landmarks[0],
			P2:        o.params.Landmarks[1],
			Alpha:     alpha,
			Beta:      beta,
			Strategy:  o.strategy,
			Projected: cfg.Methods.Projected,
			ODRLimit:  o.odrLimit,
			Engine:    o.engine,
		})
		if err != nil {
			return 0, 0, errors.Wrap(err, "angle computation")
		}
		deg = res.Moved
	}
	return maxCurv, deg, nil
}

// resultPath names the persisted matrix of one quantity.
func (o *Orchestrator) resultPath(quantity string) string {
	return filepath.Join(o.params.OutputDir, fmt.Sprintf("new_%s_%s.txt", quantity, o.params.CaseName))
}
