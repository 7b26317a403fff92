// Package angle estimates the bend angle of a vessel siphon before and
// after a parametric deformation, using one of several interchangeable
// representative-point selection strategies that all feed a single shared
// angle formula.
package angle

import (
	"math"

	"github.com/pkg/errors"

	"github.com/PeterZs/morphMan/pkg/centerline"
	"github.com/PeterZs/morphMan/pkg/deform"
	"github.com/PeterZs/morphMan/pkg/spline"
)

// discreteNeigh is the finite-difference window of the discrete strategy.
const discreteNeigh = 30

// siphonKnots is the interior knot count of the siphon smoothing spline
// used by the spline-sourced strategies.
const siphonKnots = 11

// Input bundles everything a bend angle computation needs.
type Input struct {
	// Line is the complete centerline, carrying the vessel radius array.
	Line *centerline.Centerline

	// Siphon is the centerline restricted to the anatomically interesting
	// bend region's vessel; it may be the same polyline as Line.
	Siphon *centerline.Centerline

	// P1, P2 are the clipping points delimiting the bend.
	P1, P2 centerline.Vec3

	// Alpha, Beta are the deformation factors, each in [-1, 1].
	Alpha, Beta float64

	// Strategy selects the representative-point rule.
	Strategy Strategy

	// Projected zeroes the first coordinate axis before the dot product,
	// measuring the 2D angle in the remaining plane.
	Projected bool

	// ODRLimit is the stopping rule of the ODRLine strategy. Empty means
	// cumulative.
	ODRLimit ODRLimit

	// MISRScale overrides the vessel-radius multiplier of the MISR walk.
	// Zero means the default 1.5.
	MISRScale float64

	// Engine performs the deformation. Nil uses default parameters.
	Engine *deform.Engine
}

// Result is the pair of bend angles in degrees, with the representative
// points retained for diagnostics.
type Result struct {
	Original, Moved float64

	PA, PB           centerline.Vec3
	MovedPA, MovedPB centerline.Vec3
}

// segment is one side (original or deformed) of the comparison: the bend
// cut between its landmarks, re-indexed from 0.
type segment struct {
	line      *centerline.Centerline
	p1, p2    centerline.Vec3
	curv      []float64
	radius    []float64
	misrScale float64
	direction centerline.Vec3
}

// FindAngle computes the angle in degrees between the vectors pA-p1 and
// pB-p2 with the classic arccos formula, in [0, 180]. With projected set,
// the first coordinate of both vectors is zeroed first. Coincident pA/p1 or
// pB/p2 produce a zero-length vector and fail with DegenerateVectorError;
// the cosine is clamped only against floating-point rounding past +-1.
func FindAngle(pA, pB, p1, p2 centerline.Vec3, projected bool) (float64, error) {
	v1 := pA.Sub(p1)
	v2 := pB.Sub(p2)
	if projected {
		v1.X = 0
		v2.X = 0
	}
	n1 := v1.Norm()
	n2 := v2.Norm()
	if n1 == 0 || n2 == 0 {
		return 0, &centerline.DegenerateVectorError{Op: "angle formula (coincident representative and anchor point)"}
	}
	return math.Acos(clampUnit(v1.Dot(v2)/(n1*n2))) * 180 / math.Pi, nil
}

// FindAngleODR computes the angle between two fitted line directions. The
// sign of d1 is corrected so the dot product of the two directions is
// negative before the arccos computation, making the result independent of
// the arbitrary orientation of the SVD directions.
func FindAngleODR(d1, d2 centerline.Vec3, projected bool) (float64, error) {
	if d1.Dot(d2) > 0 {
		d1 = d1.Scale(-1)
	}
	if projected {
		d1.X = 0
		d2.X = 0
	}
	neg := d2.Scale(-1)
	n1 := d1.Norm()
	n2 := neg.Norm()
	if n1 == 0 || n2 == 0 {
		return 0, &centerline.DegenerateVectorError{Op: "odr angle formula (zero-length fitted direction)"}
	}
	return math.Acos(clampUnit(d1.Dot(neg)/(n1*n2))) * 180 / math.Pi, nil
}

func clampUnit(v float64) float64 {
	if v > 1 {
		return 1
	}
	if v < -1 {
		return -1
	}
	return v
}

// Compute deforms the centerline by (alpha, beta), remaps the siphon onto
// the deformed geometry and reports the bend angle of both, selected with
// the same rule on each side.
func Compute(in Input) (Result, error) {
	engine := in.Engine
	if engine == nil {
		engine = deform.NewEngine(deform.DefaultParams())
	}

	// Landmark indices on the full centerline, for the deformation.
	lineLocator := centerline.NewLocator(in.Line)
	lineID1 := lineLocator.FindClosestPoint(in.P1)
	lineID2 := lineLocator.FindClosestPoint(in.P2)
	if lineID1 >= lineID2 {
		return Result{}, &centerline.IndexRangeError{Op: "angle landmarks on centerline", Index: lineID2, Length: in.Line.Len()}
	}

	newLine, disp, err := engine.Deform(in.Line, lineID1, lineID2, in.Alpha, in.Beta)
	if err != nil {
		return Result{}, errors.Wrap(err, "could not deform centerline")
	}

	// Landmark indices on the siphon; these differ from the centerline
	// indices whenever the siphon is a separately extracted polyline.
	siphonLocator := centerline.NewLocator(in.Siphon)
	id1 := siphonLocator.FindClosestPoint(in.P1)
	id2 := siphonLocator.FindClosestPoint(in.P2)
	if id1 >= id2 {
		return Result{}, &centerline.IndexRangeError{Op: "angle landmarks on siphon", Index: id2, Length: in.Siphon.Len()}
	}
	endID := in.Siphon.Len() - 1

	rm, err := deform.Remap(newLine, in.Siphon, endID, in.P1, in.P2)
	if err != nil {
		return Result{}, errors.Wrap(err, "could not remap siphon")
	}

	old, moved, err := buildSegments(in, engine, id1, id2, lineID1, lineID2, rm, disp)
	if err != nil {
		return Result{}, err
	}

	if in.Strategy == ODRLine {
		limit := in.ODRLimit
		if limit == "" {
			limit = LimitCumulative
		}
		d1, d2, err := odrDirections(old, limit)
		if err != nil {
			return Result{}, errors.Wrap(err, "odr fit on original siphon")
		}
		md1, md2, err := odrDirections(moved, limit)
		if err != nil {
			return Result{}, errors.Wrap(err, "odr fit on deformed siphon")
		}
		deg, err := FindAngleODR(d1, d2, in.Projected)
		if err != nil {
			return Result{}, err
		}
		newDeg, err := FindAngleODR(md1, md2, in.Projected)
		if err != nil {
			return Result{}, err
		}
		return Result{Original: deg, Moved: newDeg}, nil
	}

	pA, pB, a1, a2, err := selectPoints(in.Strategy, old)
	if err != nil {
		return Result{}, errors.Wrap(err, "point selection on original siphon")
	}
	mpA, mpB, ma1, ma2, err := selectPoints(in.Strategy, moved)
	if err != nil {
		return Result{}, errors.Wrap(err, "point selection on deformed siphon")
	}

	deg, err := FindAngle(pA, pB, a1, a2, in.Projected)
	if err != nil {
		return Result{}, err
	}
	newDeg, err := FindAngle(mpA, mpB, ma1, ma2, in.Projected)
	if err != nil {
		return Result{}, err
	}
	return Result{
		Original: deg,
		Moved:    newDeg,
		PA:       pA,
		PB:       pB,
		MovedPA:  mpA,
		MovedPB:  mpB,
	}, nil
}

// buildSegments cuts the bend out of both geometries and attaches the
// per-strategy curvature or radius data the selection rule needs.
func buildSegments(in Input, engine *deform.Engine, id1, id2, lineID1, lineID2 int, rm *deform.RemapResult, disp deform.Displacement) (old, moved *segment, err error) {
	movedCut, err := rm.Siphon.Extract(rm.ID1, rm.ID2)
	if err != nil {
		return nil, nil, errors.Wrap(err, "cut deformed siphon")
	}
	moved = &segment{
		line:      movedCut,
		p1:        rm.P1,
		p2:        rm.P2,
		direction: disp.Direction,
	}

	old = &segment{
		p1:        in.P1,
		p2:        in.P2,
		direction: disp.Direction,
	}

	switch in.Strategy {
	case MaxCurv, Smooth, Frac, ODRLine:
		// Spline-sourced curvature, resampled to the siphon's point count
		// so segment indices stay interchangeable with the raw siphon.
		splined, curv, err := spline.Centerline(in.Siphon, spline.Options{Knots: siphonKnots})
		if err != nil {
			return nil, nil, errors.Wrap(err, "spline siphon")
		}
		old.line, err = splined.Extract(id1, id2)
		if err != nil {
			return nil, nil, err
		}
		old.curv = curv[id1 : id2+1]
		moved.curv = rm.Curvature[rm.ID1 : rm.ID2+1]

	case Discrete:
		_, curv, err := centerline.DiscreteGeometry(in.Siphon, discreteNeigh)
		if err != nil {
			return nil, nil, errors.Wrap(err, "discrete geometry of siphon")
		}
		old.line, err = in.Siphon.Extract(id1, id2)
		if err != nil {
			return nil, nil, err
		}
		old.curv = curv[id1 : id2+1]

		_, movedCurv, err := centerline.DiscreteGeometry(rm.Siphon, discreteNeigh)
		if err != nil {
			return nil, nil, errors.Wrap(err, "discrete geometry of deformed siphon")
		}
		moved.curv = movedCurv[rm.ID1 : rm.ID2+1]

	case MISR:
		old.line, err = in.Siphon.Extract(id1, id2)
		if err != nil {
			return nil, nil, err
		}
		bend, err := in.Line.Extract(lineID1, lineID2)
		if err != nil {
			return nil, nil, err
		}
		radius, ok := bend.Scalars(centerline.RadiusArrayName)
		if !ok {
			return nil, nil, &centerline.MissingInputError{Path: "centerline radius array " + centerline.RadiusArrayName}
		}
		old.radius = centerline.ResampleScalars(radius, old.line.Len())
		moved.radius = centerline.ResampleScalars(radius, moved.line.Len())
		scale := in.MISRScale
		if scale <= 0 {
			scale = misrScale
		}
		old.misrScale = scale
		moved.misrScale = scale

	default:
		old.line, err = in.Siphon.Extract(id1, id2)
		if err != nil {
			return nil, nil, err
		}
	}

	return old, moved, nil
}
