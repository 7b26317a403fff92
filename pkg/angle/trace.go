package angle

import (
	"math"

	"github.com/PeterZs/morphMan/pkg/centerline"
	"gonum.org/v1/gonum/floats"
)

// traceFrac is the fractional offset applied from the maximal point toward
// each landmark when deriving the representative pair.
const traceFrac = 4.0 / 5.0

// smoothSigma is the Gaussian blur width used by the smooth strategy.
const smoothSigma = 2.0

// smoothMaxPasses caps the progressive blurring of the smooth strategy.
const smoothMaxPasses = 50

// misrScale is the default multiplier applied to the local vessel radius by
// the MISR walk.
const misrScale = 1.5

// selectPoints applies the strategy's representative-point selection rule
// to one segment and returns the pair together with the anchor points the
// shared angle formula should use.
func selectPoints(s Strategy, seg *segment) (pA, pB, a1, a2 centerline.Vec3, err error) {
	n := seg.line.Len()
	if n < 3 {
		err = &centerline.InsufficientPointsError{Op: "representative point selection", Points: n, Required: 3}
		return
	}

	switch s {
	case Plane:
		var maxID int
		maxID, err = furthestFromPlane(seg.direction, seg.line)
		if err != nil {
			return
		}
		return tracePair(seg, maxID)

	case ITPlane, ITPlaneClip:
		return iterativePlanePair(seg, s == ITPlaneClip)

	case MaxCurv, Discrete:
		return tracePair(seg, floats.MaxIdx(seg.curv))

	case Smooth:
		return tracePair(seg, singleMaximum(seg.curv))

	case MaxDist:
		return tracePair(seg, maxDistIndex(seg))

	case Frac:
		idA := clampInterior(int(float64(n-1)*2.0/5.0), n)
		idB := clampInterior(int(float64(n-1)*3.0/5.0), n)
		return seg.line.Point(idA), seg.line.Point(idB), seg.p1, seg.p2, nil

	case MISR:
		return misrPair(seg)
	}

	err = &centerline.UnknownStrategyError{Kind: "angle", Name: s.String()}
	return
}

// tracePair applies the fractional-offset rule around maxID and anchors the
// angle at the segment landmarks. The traced indices are kept strictly
// inside the segment: on a monotone segment the offset rule lands on an end
// point, which coincides with its anchor and would degenerate the angle
// formula.
func tracePair(seg *segment, maxID int) (pA, pB, a1, a2 centerline.Vec3, err error) {
	n := seg.line.Len()
	idA := clampInterior(int(float64(maxID)*traceFrac), n)
	idB := clampInterior(int(float64(maxID)*(2-traceFrac)), n)
	return seg.line.Point(idA), seg.line.Point(idB), seg.p1, seg.p2, nil
}

// furthestFromPlane returns the index of the segment point with the largest
// distance to the plane through the segment start with the given normal.
func furthestFromPlane(normal centerline.Vec3, line *centerline.Centerline) (int, error) {
	if normal.Norm() == 0 {
		return 0, &centerline.DegenerateVectorError{Op: "furthest point search (zero plane normal)"}
	}
	n := normal.Normalize()
	ref := line.Point(0)
	maxID := 0
	maxDist := 0.0
	for i := 0; i < line.Len(); i++ {
		d := math.Abs(line.Point(i).Sub(ref).Dot(n))
		if d > maxDist {
			maxDist = d
			maxID = i
		}
	}
	return maxID, nil
}

// closestToPlane returns the point in [start, stop) minimizing the distance
// to the plane through p with the given normal. Empty or inverted ranges
// collapse to the clamped start index.
func closestToPlane(normal centerline.Vec3, start, stop int, p centerline.Vec3, line *centerline.Centerline) (centerline.Vec3, int) {
	start = clampIndex(start, line.Len())
	if stop > line.Len() {
		stop = line.Len()
	}
	if stop <= start {
		return line.Point(start), start
	}
	n := normal.Normalize()
	minID := start
	minDist := math.Inf(1)
	for i := start; i < stop; i++ {
		d := math.Abs(line.Point(i).Sub(p).Dot(n))
		if d < minDist {
			minDist = d
			minID = i
		}
	}
	return line.Point(minID), minID
}

// iterativePlanePair refines the splitting plane normal with the local
// Frenet binormal before applying the fractional-offset rule. The clip
// variant computes the fractional window relative to the re-derived
// landmark indices and anchors the angle at the re-derived points.
func iterativePlanePair(seg *segment, clip bool) (pA, pB, a1, a2 centerline.Vec3, err error) {
	n := seg.line.Len()
	maxID, err := furthestFromPlane(seg.direction, seg.line)
	if err != nil {
		return
	}

	framed, err := centerline.FrenetFrames(seg.line)
	if err != nil {
		return
	}
	tangents, _ := framed.Vectors(centerline.FrenetTangentName)
	binormals, _ := framed.Vectors(centerline.FrenetBinormalName)

	// Re-derive the landmark correspondence: the point before the apex
	// closest to the plane of the far landmark, and vice versa.
	p11, p1id := closestToPlane(tangents[n-1], 0, maxID, seg.p2, seg.line)
	p22, p2id := closestToPlane(tangents[0], maxID, n, seg.p1, seg.line)

	normal := p11.Sub(p22).Cross(binormals[p1id])
	if normal.Norm() == 0 {
		// Locally straight geometry gives no binormal; keep the original
		// displacement normal.
		normal = seg.direction
	}
	maxID, err = furthestFromPlane(normal, seg.line)
	if err != nil {
		return
	}

	if !clip {
		return tracePair(seg, maxID)
	}

	idMid := (p2id - p1id) / 2
	var idA, idB int
	if maxID > idMid {
		idA = clampIndex(int(float64(maxID-p1id)*traceFrac)+p1id, n)
		idB = clampIndex(int(float64(maxID-p1id)*(2-traceFrac))+p1id, n)
	} else {
		idA = clampIndex(int(float64(p2id-maxID)*traceFrac), n)
		idB = clampIndex(int(float64(p2id-maxID)*(2-traceFrac)), n)
	}
	return seg.line.Point(idA), seg.line.Point(idB), p11, p22, nil
}

// singleMaximum progressively blurs the curvature curve until at most one
// interior local maximum remains and returns its index. When blurring
// flattens the curve completely, the global argmax is used.
func singleMaximum(curv []float64) int {
	tmp := make([]float64, len(curv))
	copy(tmp, curv)
	maxima := centerline.LocalMaxima(tmp)
	for pass := 0; len(maxima) > 1 && pass < smoothMaxPasses; pass++ {
		tmp = centerline.GaussianFilter(tmp, smoothSigma)
		maxima = centerline.LocalMaxima(tmp)
	}
	if len(maxima) == 1 {
		return maxima[0]
	}
	return floats.MaxIdx(tmp)
}

// maxDistIndex exhaustively searches index pairs for the one jointly
// maximizing the sum of squared distances to the two landmarks, traversing
// the second distance list in reverse, and returns the first index of the
// best pair.
func maxDistIndex(seg *segment) int {
	n := seg.line.Len()
	normP1 := make([]float64, n)
	normP2 := make([]float64, n)
	for i := 0; i < n; i++ {
		normP1[i] = seg.p1.Distance(seg.line.Point(i))
		normP2[i] = seg.p2.Distance(seg.line.Point(n - 1 - i))
	}
	maxID := 0
	maxDist := 0.0
	for i, d1 := range normP1 {
		for _, d2 := range normP2 {
			if d := d1*d1 + d2*d2; d > maxDist {
				maxDist = d
				maxID = i
			}
		}
	}
	return maxID
}

// misrPair walks inward from each landmark until the point clears a sphere
// of the configured multiple of the local vessel radius centered at that
// landmark.
func misrPair(seg *segment) (pA, pB, a1, a2 centerline.Vec3, err error) {
	n := seg.line.Len()
	if len(seg.radius) != n {
		err = &centerline.IndexRangeError{Op: "misr radius array", Index: len(seg.radius), Length: n}
		return
	}
	scale := seg.misrScale
	if scale <= 0 {
		scale = misrScale
	}
	pA, _ = movePastSphere(seg.line, seg.p1, scale*seg.radius[0], 0, 1, n-1)
	pB, _ = movePastSphere(seg.line, seg.p2, scale*seg.radius[n-1], n-1, -1, 0)
	return pA, pB, seg.p1, seg.p2, nil
}

// movePastSphere walks from start toward stop (by step) and returns the
// first point outside the sphere of the given radius centered at center.
// When every visited point stays inside, the stop point is returned.
func movePastSphere(line *centerline.Centerline, center centerline.Vec3, threshold float64, start, step, stop int) (centerline.Vec3, int) {
	i := start
	for ; i != stop; i += step {
		if line.Point(i).Distance(center) >= threshold {
			return line.Point(i), i
		}
	}
	return line.Point(stop), stop
}

// clampIndex confines i to the valid index range of an n-point segment.
func clampIndex(i, n int) int {
	if i < 0 {
		return 0
	}
	if i > n-1 {
		return n - 1
	}
	return i
}

// clampInterior confines i to the interior indices of an n-point segment,
// one point away from either end.
func clampInterior(i, n int) int {
	if i < 1 {
		return 1
	}
	if i > n-2 {
		return n - 2
	}
	return i
}
