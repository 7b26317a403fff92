package angle

import (
	"github.com/pkg/errors"

	"github.com/PeterZs/morphMan/pkg/centerline"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// odrCumulativeLimit is the cumulative-curvature threshold of the
// cumulative stopping rule.
const odrCumulativeLimit = 10.0

// odrInitialHalfWindow is the half-width of the fixed initial window of the
// sd stopping rule (11 points total).
const odrInitialHalfWindow = 5

// odrSDFactor scales the standard deviation in the sd stopping-rule
// tolerance mean + 1.96 SD.
const odrSDFactor = 1.96

// odrDirections grows a neighborhood around each landmark of the segment
// according to the stopping rule, then fits a best-fit 3D line through each
// neighborhood by orthogonal distance regression (principal direction of
// the SVD of the mean-centered points). All window growth is clamped to the
// valid index range; near the segment edges the grown windows simply stop
// at the boundary.
func odrDirections(seg *segment, limit ODRLimit) (d1, d2 centerline.Vec3, err error) {
	n := seg.line.Len()
	if n < 3 {
		err = &centerline.InsufficientPointsError{Op: "odr neighborhood", Points: n, Required: 3}
		return
	}
	curv := seg.curv
	lim := n - 1

	// The segment is cut to the bend, so the landmarks sit at its ends.
	id1, id2 := 0, n-1

	var id1Down, id1Up, id2Up, id2Down int
	switch limit {
	case LimitCumulative:
		id1Down = clampIndex(id1-1, n)
		id1Up = clampIndex(id1+1, n)
		id2Up = clampIndex(id2-1, n)
		id2Down = clampIndex(id2+1, n)
		for floats.Sum(curv[id1:id1Up+1]) < odrCumulativeLimit && id1Up < lim {
			id1Up++
		}
		for floats.Sum(curv[id1Down:id1+1]) < odrCumulativeLimit && id1Down > 0 {
			id1Down--
		}
		for floats.Sum(curv[id2Up:id2+1]) < odrCumulativeLimit && id2Up > 0 {
			id2Up--
		}
		for floats.Sum(curv[id2:id2Down+1]) < odrCumulativeLimit && id2Down < lim {
			id2Down++
		}

	case LimitSD:
		id1Down = clampIndex(id1-odrInitialHalfWindow, n)
		id1Up = clampIndex(id1+odrInitialHalfWindow, n)
		id2Up = clampIndex(id2-odrInitialHalfWindow, n)
		id2Down = clampIndex(id2+odrInitialHalfWindow, n)

		mean1 := stat.Mean(curv[id1Down:id1Up+1], nil)
		mean2 := stat.Mean(curv[id2Up:id2Down+1], nil)
		tol1 := mean1 + odrSDFactor*stat.StdDev(curv[id1Down:id1Up+1], nil)
		tol2 := mean2 + odrSDFactor*stat.StdDev(curv[id2Up:id2Down+1], nil)

		for curv[id1Up] < tol1 && id1Up < lim {
			id1Up++
		}
		for curv[id1Down] < tol1 && id1Down > 0 {
			id1Down--
		}
		for curv[id2Up] < tol2 && id2Up > 0 {
			id2Up--
		}
		for curv[id2Down] < tol2 && id2Down < lim {
			id2Down++
		}

	default:
		err = &centerline.UnknownStrategyError{Kind: "odr limit", Name: string(limit)}
		return
	}

	d1, err = principalDirection(seg.line, id1Down, id1Up)
	if err != nil {
		err = errors.Wrap(err, "first landmark neighborhood")
		return
	}
	d2, err = principalDirection(seg.line, id2Up, id2Down)
	if err != nil {
		err = errors.Wrap(err, "second landmark neighborhood")
	}
	return
}

// principalDirection returns the dominant direction of the points in
// [lo, hi] via the first right singular vector of the mean-centered point
// matrix.
func principalDirection(line *centerline.Centerline, lo, hi int) (centerline.Vec3, error) {
	if hi-lo+1 < 2 {
		return centerline.Vec3{}, &centerline.InsufficientPointsError{Op: "odr line fit", Points: hi - lo + 1, Required: 2}
	}

	m := hi - lo + 1
	xs := make([]float64, m)
	ys := make([]float64, m)
	zs := make([]float64, m)
	for i := 0; i < m; i++ {
		p := line.Point(lo + i)
		xs[i] = p.X
		ys[i] = p.Y
		zs[i] = p.Z
	}
	meanX := stat.Mean(xs, nil)
	meanY := stat.Mean(ys, nil)
	meanZ := stat.Mean(zs, nil)

	centered := mat.NewDense(m, 3, nil)
	for i := 0; i < m; i++ {
		centered.Set(i, 0, xs[i]-meanX)
		centered.Set(i, 1, ys[i]-meanY)
		centered.Set(i, 2, zs[i]-meanZ)
	}

	var svd mat.SVD
	if !svd.Factorize(centered, mat.SVDThin) {
		return centerline.Vec3{}, errors.New("svd factorization of odr neighborhood failed")
	}
	var v mat.Dense
	svd.VTo(&v)
	return centerline.Vec3{X: v.At(0, 0), Y: v.At(1, 0), Z: v.At(2, 0)}, nil
}
