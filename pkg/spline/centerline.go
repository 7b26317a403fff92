package spline

import (
	"github.com/PeterZs/morphMan/pkg/centerline"
)

// Options configures Centerline resampling.
type Options struct {
	// Knots is the number of interior knots of the smoothing spline.
	Knots int

	// Samples is the number of output points. Zero means "same as input",
	// which keeps old and new centerlines comparable point-for-point.
	Samples int

	// Radius carries the vessel radius array through the resampling
	// (linearly resampled) when the input centerline has one attached.
	Radius bool
}

// Centerline fits a smoothing B-spline through the input centerline and
// returns the resampled smooth curve together with its per-point curvature.
// The curvature array is also attached to the returned centerline.
func Centerline(line *centerline.Centerline, opts Options) (*centerline.Centerline, []float64, error) {
	s, err := Fit(line.Points(), opts.Knots)
	if err != nil {
		return nil, nil, err
	}

	samples := opts.Samples
	if samples == 0 {
		samples = line.Len()
	}
	if samples < 2 {
		return nil, nil, &centerline.InsufficientPointsError{Op: "spline resampling", Points: samples, Required: 2}
	}

	pts := make([]centerline.Vec3, samples)
	curv := make([]float64, samples)
	for i := 0; i < samples; i++ {
		u := float64(i) / float64(samples-1)
		pts[i] = s.Evaluate(u)
		curv[i] = s.Curvature(u)
	}

	out := centerline.New(pts)
	if err := out.SetScalars(centerline.CurvatureArrayName, curv); err != nil {
		return nil, nil, err
	}
	if opts.Radius {
		if radius, ok := line.Scalars(centerline.RadiusArrayName); ok {
			if err := out.SetScalars(centerline.RadiusArrayName, centerline.ResampleScalars(radius, samples)); err != nil {
				return nil, nil, err
			}
		}
	}
	return out, curv, nil
}
