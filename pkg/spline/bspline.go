// Package spline fits smoothing cubic B-splines to centerlines and
// evaluates position, derivatives and curvature analytically. The fit is a
// linear least-squares problem over a clamped uniform knot vector, solved
// with gonum's QR-based dense solver.
package spline

import (
	"github.com/pkg/errors"

	"github.com/PeterZs/morphMan/pkg/centerline"
	"gonum.org/v1/gonum/mat"
)

const degree = 3

// BSpline is a clamped cubic B-spline curve in 3D, parameterized on [0, 1].
type BSpline struct {
	knots []float64
	ctrl  []centerline.Vec3

	// d1 and d2 are the derivative curves, precomputed at fit time.
	d1, d2 *derivativeSpline
}

type derivativeSpline struct {
	degree int
	knots  []float64
	ctrl   []centerline.Vec3
}

// Fit fits a smoothing cubic B-spline with nknots uniformly spaced interior
// knots through the given points, parameterized by normalized chord length.
// The number of control points is nknots + 4; fitting fails with
// InsufficientPointsError when fewer data points than control points are
// supplied.
func Fit(points []centerline.Vec3, nknots int) (*BSpline, error) {
	if nknots < 1 {
		nknots = 1
	}
	n := len(points)
	nctrl := nknots + degree + 1
	if n < nctrl {
		return nil, &centerline.InsufficientPointsError{Op: "spline fit", Points: n, Required: nctrl}
	}

	// Clamped knot vector: degree+1 repeats at each end, uniform interior.
	knots := make([]float64, 0, nctrl+degree+1)
	for i := 0; i <= degree; i++ {
		knots = append(knots, 0)
	}
	for i := 1; i <= nknots; i++ {
		knots = append(knots, float64(i)/float64(nknots+1))
	}
	for i := 0; i <= degree; i++ {
		knots = append(knots, 1)
	}

	params := chordParams(points)

	a := mat.NewDense(n, nctrl, nil)
	b := mat.NewDense(n, 3, nil)
	for j := 0; j < n; j++ {
		basis := basisAll(knots, nctrl, params[j])
		a.SetRow(j, basis)
		b.Set(j, 0, points[j].X)
		b.Set(j, 1, points[j].Y)
		b.Set(j, 2, points[j].Z)
	}

	var c mat.Dense
	if err := c.Solve(a, b); err != nil {
		return nil, errors.Wrap(err, "could not solve spline least-squares system")
	}

	ctrl := make([]centerline.Vec3, nctrl)
	for i := 0; i < nctrl; i++ {
		ctrl[i] = centerline.Vec3{X: c.At(i, 0), Y: c.At(i, 1), Z: c.At(i, 2)}
	}

	s := &BSpline{knots: knots, ctrl: ctrl}
	s.d1 = derive(degree, knots, ctrl)
	s.d2 = derive(s.d1.degree, s.d1.knots, s.d1.ctrl)
	return s, nil
}

// chordParams returns normalized cumulative chord-length parameters in
// [0, 1] for the point sequence.
func chordParams(points []centerline.Vec3) []float64 {
	t := make([]float64, len(points))
	for i := 1; i < len(points); i++ {
		t[i] = t[i-1] + points[i].Distance(points[i-1])
	}
	total := t[len(t)-1]
	if total == 0 {
		total = 1
	}
	for i := range t {
		t[i] /= total
	}
	return t
}

// basisAll evaluates every B-spline basis function of the given knot vector
// at parameter u via the Cox-de Boor recursion.
func basisAll(knots []float64, nctrl int, u float64) []float64 {
	deg := len(knots) - nctrl - 1
	m := len(knots)
	n := make([]float64, m-1)
	if u >= knots[m-1] {
		// Clamp the end of the parameter range into the last non-empty span.
		for i := m - 2; i >= 0; i-- {
			if knots[i] < knots[i+1] {
				n[i] = 1
				break
			}
		}
	} else {
		for i := 0; i < m-1; i++ {
			if knots[i] <= u && u < knots[i+1] {
				n[i] = 1
				break
			}
		}
	}
	for k := 1; k <= deg; k++ {
		for i := 0; i+k+1 < m; i++ {
			var acc float64
			if d := knots[i+k] - knots[i]; d > 0 {
				acc += (u - knots[i]) / d * n[i]
			}
			if d := knots[i+k+1] - knots[i+1]; d > 0 {
				acc += (knots[i+k+1] - u) / d * n[i+1]
			}
			n[i] = acc
		}
	}
	return n[:nctrl]
}

// derive returns the derivative spline (one degree lower) of the given
// curve.
func derive(deg int, knots []float64, ctrl []centerline.Vec3) *derivativeSpline {
	nctrl := len(ctrl) - 1
	dctrl := make([]centerline.Vec3, nctrl)
	for i := 0; i < nctrl; i++ {
		span := knots[i+deg+1] - knots[i+1]
		if span == 0 {
			dctrl[i] = centerline.Vec3{}
			continue
		}
		dctrl[i] = ctrl[i+1].Sub(ctrl[i]).Scale(float64(deg) / span)
	}
	return &derivativeSpline{
		degree: deg - 1,
		knots:  knots[1 : len(knots)-1],
		ctrl:   dctrl,
	}
}

func (d *derivativeSpline) evaluate(u float64) centerline.Vec3 {
	basis := basisAll(d.knots, len(d.ctrl), u)
	var p centerline.Vec3
	for i, w := range basis {
		if w != 0 {
			p = p.Add(d.ctrl[i].Scale(w))
		}
	}
	return p
}

// Evaluate returns the curve position at parameter u in [0, 1].
func (s *BSpline) Evaluate(u float64) centerline.Vec3 {
	basis := basisAll(s.knots, len(s.ctrl), u)
	var p centerline.Vec3
	for i, w := range basis {
		if w != 0 {
			p = p.Add(s.ctrl[i].Scale(w))
		}
	}
	return p
}

// Derivative1 returns the first derivative of the curve at parameter u.
func (s *BSpline) Derivative1(u float64) centerline.Vec3 {
	return s.d1.evaluate(u)
}

// Derivative2 returns the second derivative of the curve at parameter u.
func (s *BSpline) Derivative2(u float64) centerline.Vec3 {
	return s.d2.evaluate(u)
}

// Curvature returns |r' x r''| / |r'|^3 at parameter u. Locally degenerate
// parameterizations (zero speed) report zero curvature.
func (s *BSpline) Curvature(u float64) float64 {
	r1 := s.Derivative1(u)
	speed := r1.Norm()
	if speed == 0 {
		return 0
	}
	return r1.Cross(s.Derivative2(u)).Norm() / (speed * speed * speed)
}
