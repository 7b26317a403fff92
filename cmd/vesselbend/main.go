// Command vesselbend quantifies the bend angle and peak curvature of vessel
// centerlines under a parametric (alpha, beta) deformation, either for a
// single configuration or as a grid sweep per case.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/PeterZs/morphMan/internal/models"
	"github.com/PeterZs/morphMan/pkg/centerline"
	"github.com/PeterZs/morphMan/pkg/config"
	"github.com/PeterZs/morphMan/pkg/sweep"
)

func main() {
	cmd := &cli.Command{
		Name:  "vesselbend",
		Usage: "Compute bend angle and curvature variation of vessel centerlines",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Category: "Inputs",
				Name:     "input",
				Aliases:  []string{"i"},
				Usage:    "Path to the folder with all the cases",
				Required: true,
			},
			&cli.StringFlag{
				Category: "Inputs",
				Name:     "case",
				Aliases:  []string{"c"},
				Usage:    "Restrict the run to a single case",
			},
			&cli.StringFlag{
				Category: "Inputs",
				Name:     "output",
				Aliases:  []string{"o"},
				Usage:    "Directory for result matrices (default: the case directory)",
			},
			&cli.BoolFlag{
				Category: "Methods",
				Name:     "curvature",
				Aliases:  []string{"k"},
				Usage:    "Compute curvature variation",
			},
			&cli.BoolFlag{
				Category: "Methods",
				Name:     "angle",
				Aliases:  []string{"t"},
				Usage:    "Compute angle variation",
			},
			&cli.StringFlag{
				Category: "Methods",
				Name:     "method-curv",
				Usage:    "Curvature method: disc | knotfree | vmtkfactor | vmtkit | spline",
			},
			&cli.StringFlag{
				Category: "Methods",
				Name:     "method-angle",
				Usage:    "Angle method: plane | itplane | itplane_clip | maxcurv | smooth | discrete | frac | odrline | MISR | maxdist",
			},
			&cli.StringFlag{
				Category: "Methods",
				Name:     "odr-limit",
				Usage:    "Stopping rule of the odrline method: cumulative | sd",
			},
			&cli.BoolFlag{
				Category: "Methods",
				Name:     "projected",
				Usage:    "Compute 2D angles by zeroing the first coordinate axis",
			},
			&cli.Float64Flag{
				Category: "Grid",
				Name:     "alpha",
				Aliases:  []string{"a"},
				Usage:    "Fixed compression factor in vertical direction, from -1.0 to 1.0",
			},
			&cli.Float64Flag{
				Category: "Grid",
				Name:     "beta",
				Aliases:  []string{"b"},
				Usage:    "Fixed compression factor in horizontal direction, from -1.0 to 1.0",
			},
			&cli.StringFlag{
				Category: "Grid",
				Name:     "boundary",
				Usage:    "Grid boundary override: \"alphaMin,alphaMax,betaMin,betaMax\"",
			},
		},
		Action: run,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatalf("vesselbend failed: %v", err)
	}
}

func run(ctx context.Context, cmd *cli.Command) error {
	if !cmd.Bool("curvature") && !cmd.Bool("angle") {
		return fmt.Errorf("nothing to do: pass --curvature and/or --angle")
	}

	cases, err := models.DiscoverCases(cmd.String("input"), cmd.String("case"))
	if err != nil {
		return err
	}
	if len(cases) == 0 {
		return fmt.Errorf("no cases found under %s", cmd.String("input"))
	}

	for _, c := range cases {
		if err := runCase(cmd, c); err != nil {
			return fmt.Errorf("case %s: %w", c.Name, err)
		}
	}
	return nil
}

func runCase(cmd *cli.Command, c models.Case) error {
	cfg, err := config.LoadConfig(c.ConfigPath())
	if err != nil {
		return err
	}
	applyOverrides(cmd, cfg)

	line, err := models.ReadCenterline(c.CenterlinePath())
	if err != nil {
		return err
	}
	// A separately extracted siphon file is optional; the complete
	// centerline doubles as the siphon when it is absent.
	siphon, err := models.ReadCenterline(c.SiphonPath())
	if err != nil {
		var missing *centerline.MissingInputError
		if !errors.As(err, &missing) {
			return err
		}
		siphon = nil
	}
	landmarks, err := models.ReadLandmarks(c.LandmarksPath())
	if err != nil {
		return err
	}
	if len(landmarks) < 2 {
		return fmt.Errorf("landmark file %s holds %d points, need 2", c.LandmarksPath(), len(landmarks))
	}

	outputDir := c.Dir
	if cmd.IsSet("output") {
		outputDir = cmd.String("output")
		if err := os.MkdirAll(outputDir, 0755); err != nil {
			return fmt.Errorf("could not create output directory: %w", err)
		}
	}

	params := &sweep.Params{
		Config:           cfg,
		CaseName:         c.Name,
		Line:             line,
		Siphon:           siphon,
		Landmarks:        [2]centerline.Vec3{landmarks[0], landmarks[1]},
		OutputDir:        outputDir,
		ComputeCurvature: cmd.Bool("curvature"),
		ComputeAngle:     cmd.Bool("angle"),
	}
	if cmd.IsSet("alpha") && cmd.IsSet("beta") {
		alpha := cmd.Float64("alpha")
		beta := cmd.Float64("beta")
		params.FixedAlpha = &alpha
		params.FixedBeta = &beta
	}

	orch, err := sweep.NewOrchestrator(params)
	if err != nil {
		return err
	}
	return orch.Run()
}

func applyOverrides(cmd *cli.Command, cfg *config.Config) {
	if cmd.IsSet("method-curv") {
		cfg.Methods.Curvature = cmd.String("method-curv")
	}
	if cmd.IsSet("method-angle") {
		cfg.Methods.Angle = cmd.String("method-angle")
	}
	if cmd.IsSet("odr-limit") {
		cfg.Methods.ODRLimit = cmd.String("odr-limit")
	}
	if cmd.IsSet("projected") {
		cfg.Methods.Projected = cmd.Bool("projected")
	}
	if b := cmd.String("boundary"); b != "" {
		if vals, err := parseBoundary(b); err == nil {
			cfg.Grid.AlphaMin, cfg.Grid.AlphaMax = vals[0], vals[1]
			cfg.Grid.BetaMin, cfg.Grid.BetaMax = vals[2], vals[3]
		} else {
			slog.Warn("ignoring invalid boundary override", "value", b, "error", err)
		}
	}
}

// parseBoundary parses "alphaMin,alphaMax,betaMin,betaMax".
func parseBoundary(s string) ([4]float64, error) {
	var out [4]float64
	fields := strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ' ' })
	if len(fields) != 4 {
		return out, fmt.Errorf("expected 4 values, got %d", len(fields))
	}
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return out, err
		}
		out[i] = v
	}
	return out, nil
}
