// Package deform manipulates a vessel centerline between two landmark
// points. The bend region is translated in two phases, horizontally
// (beta-scaled, within the bend plane) and then vertically (alpha-scaled,
// out of the bend plane), with the vertical displacement computed relative
// to the already horizontally-displaced geometry. The phase order is
// load-bearing and must not be swapped.
package deform

import (
	"math"

	"github.com/pkg/errors"

	"github.com/PeterZs/morphMan/pkg/centerline"
	"github.com/PeterZs/morphMan/pkg/spline"
)

// Params holds the deformation configuration.
type Params struct {
	// Eye marks cases where the ophthalmic artery branches off near the
	// first landmark. The displaced region is then clipped at its start so
	// the branch point is not distorted.
	Eye bool

	// EyeClipOffset is the number of points the displaced region is moved
	// inward from the first landmark when Eye is set.
	EyeClipOffset int

	// ControlPoints is the number of interior control samples the reference
	// spline of each phase is fit through.
	ControlPoints int

	// SplineKnots is the interior knot count of the reference spline.
	SplineKnots int
}

// DefaultParams returns the deformation parameters used by the analysis
// pipeline.
func DefaultParams() Params {
	return Params{
		Eye:           false,
		EyeClipOffset: 10,
		ControlPoints: 10,
		SplineKnots:   6,
	}
}

// Displacement records the net translation applied to the bend region.
// Direction is the unit vector of the vertical (alpha) phase; it stays
// well-defined even when alpha is zero and is the plane-normal reference
// used by the plane-family angle strategies. Vector is Direction scaled by
// the applied vertical amplitude.
type Displacement struct {
	Vector    centerline.Vec3
	Direction centerline.Vec3
}

// Engine deforms centerlines according to its parameters.
type Engine struct {
	params Params
}

// NewEngine creates a deformation engine with the provided parameters.
func NewEngine(params Params) *Engine {
	if params.ControlPoints < 3 {
		params.ControlPoints = 3
	}
	if params.SplineKnots < 1 {
		params.SplineKnots = 1
	}
	// The reference spline needs SplineKnots+4 control points; keep the knot
	// count satisfiable by ControlPoints+2 samples.
	if params.SplineKnots > params.ControlPoints-2 {
		params.SplineKnots = params.ControlPoints - 2
	}
	return &Engine{params: params}
}

// Deform builds a new centerline where the region between the landmark
// indices id1 and id2 has been displaced according to the factors
// alpha (vertical) and beta (horizontal), both in [-1, 1]. Points outside
// the region keep their positions; inside it, each point is translated by a
// displacement profile that vanishes at the region boundary, so the output
// stays continuous. The returned displacement records the vertical-phase
// translation.
func (e *Engine) Deform(line *centerline.Centerline, id1, id2 int, alpha, beta float64) (*centerline.Centerline, Displacement, error) {
	n := line.Len()
	if id1 < 0 || id1 >= n {
		return nil, Displacement{}, &centerline.IndexRangeError{Op: "deform", Index: id1, Length: n}
	}
	if id2 <= id1 || id2 >= n {
		return nil, Displacement{}, &centerline.IndexRangeError{Op: "deform", Index: id2, Length: n}
	}

	required := e.params.ControlPoints + 2
	startID := id1
	if e.params.Eye {
		// Keep the ophthalmic branch point outside the displaced region.
		startID = id1 + e.params.EyeClipOffset
		if startID > id2-required {
			startID = id2 - required
		}
		if startID < id1 {
			startID = id1
		}
	}
	if id2-startID+1 < required {
		return nil, Displacement{}, &centerline.InsufficientPointsError{
			Op: "deform region", Points: id2 - startID + 1, Required: required,
		}
	}

	// Phase 1: horizontal, within the bend plane.
	dirH, _ := bendFrame(line, startID, id2)
	moved, _, err := e.movePhase(line, startID, id2, beta, dirH)
	if err != nil {
		return nil, Displacement{}, errors.Wrap(err, "horizontal phase")
	}

	// Phase 2: vertical, out of the bend plane of the moved geometry.
	dirHMoved, chordMoved := bendFrame(moved, startID, id2)
	dirV := chordMoved.Cross(dirHMoved).Normalize()
	moved, vector, err := e.movePhase(moved, startID, id2, alpha, dirV)
	if err != nil {
		return nil, Displacement{}, errors.Wrap(err, "vertical phase")
	}

	return moved, Displacement{Vector: vector, Direction: dirV}, nil
}

// bendFrame returns the in-plane displacement direction of the region
// between id1 and id2 (unit vector from the chord toward the bend apex) and
// the unit chord direction. On a locally straight region the in-plane
// direction falls back to an arbitrary deterministic vector orthogonal to
// the chord.
func bendFrame(line *centerline.Centerline, id1, id2 int) (inPlane, chord centerline.Vec3) {
	p1 := line.Point(id1)
	p2 := line.Point(id2)
	chord = p2.Sub(p1).Normalize()

	apex := line.Point((id1 + id2) / 2)
	chordMid := p1.Lerp(p2, 0.5)
	w := apex.Sub(chordMid)
	w = w.Sub(chord.Scale(w.Dot(chord)))
	if w.Norm() > 1e-9 {
		return w.Normalize(), chord
	}

	ref := centerline.Vec3{X: 1}
	if math.Abs(chord.Dot(ref)) > 0.9 {
		ref = centerline.Vec3{Y: 1}
	}
	return chord.Cross(ref).Normalize(), chord
}

// movePhase translates the region [id1, id2] of the line along dir, scaled
// by factor and the bend height. The per-point displacement is derived from
// a pair of reference splines fit through the region boundary points and
// interior control samples, one through the samples in place and one through
// the displaced samples; their difference is a smooth displacement profile
// that vanishes at the region boundary. The original points are translated
// by that profile, never replaced, so local geometry detail inside the
// region survives the move. Returns the new line and the net translation at
// the bend apex.
func (e *Engine) movePhase(line *centerline.Centerline, id1, id2 int, factor float64, dir centerline.Vec3) (*centerline.Centerline, centerline.Vec3, error) {
	middle, err := line.Extract(id1, id2)
	if err != nil {
		return nil, centerline.Vec3{}, err
	}
	m := middle.Len()

	// The displacement amplitude is relative to the bend height, so factors
	// in [-1, 1] stay proportionate across vessels of different size. A
	// straight region has zero height and is left untouched.
	height := bendHeight(middle)
	amplitude := factor * height
	if amplitude == 0 {
		return line.Clone(), centerline.Vec3{}, nil
	}

	k := e.params.ControlPoints
	base := make([]centerline.Vec3, 0, k+2)
	moved := make([]centerline.Vec3, 0, k+2)
	base = append(base, middle.Point(0))
	moved = append(moved, middle.Point(0))
	for j := 0; j < k; j++ {
		f := float64(j+1) / float64(k+1)
		idx := int(math.Round(f * float64(m-1)))
		offset := amplitude * math.Sin(math.Pi*f)
		base = append(base, middle.Point(idx))
		moved = append(moved, middle.Point(idx).Add(dir.Scale(offset)))
	}
	base = append(base, middle.Point(m-1))
	moved = append(moved, middle.Point(m-1))

	s0, err := spline.Fit(base, e.params.SplineKnots)
	if err != nil {
		return nil, centerline.Vec3{}, err
	}
	s1, err := spline.Fit(moved, e.params.SplineKnots)
	if err != nil {
		return nil, centerline.Vec3{}, err
	}

	pts := line.Points()
	for i := 0; i < m; i++ {
		u := float64(i) / float64(m-1)
		dx := s1.Evaluate(u).Sub(s0.Evaluate(u))
		pts[id1+i] = middle.Point(i).Add(dx)
	}

	out := centerline.New(pts)
	if radius, ok := line.Scalars(centerline.RadiusArrayName); ok {
		// Positions move, the local vessel radius does not.
		if err := out.SetScalars(centerline.RadiusArrayName, radius); err != nil {
			return nil, centerline.Vec3{}, err
		}
	}
	return out, dir.Scale(amplitude), nil
}

// bendHeight returns the maximum perpendicular distance from the region's
// chord to its points.
func bendHeight(region *centerline.Centerline) float64 {
	p1 := region.Point(0)
	chord := region.Point(region.Len() - 1).Sub(p1).Normalize()
	max := 0.0
	for i := 0; i < region.Len(); i++ {
		w := region.Point(i).Sub(p1)
		d := w.Sub(chord.Scale(w.Dot(chord))).Norm()
		if d > max {
			max = d
		}
	}
	return max
}
