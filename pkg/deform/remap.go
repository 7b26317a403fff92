package deform

import (
	"github.com/PeterZs/morphMan/pkg/centerline"
	"github.com/PeterZs/morphMan/pkg/spline"
)

// remapKnots is the fixed interior knot count of the smoothing spline fit
// through the remapped segment.
const remapKnots = 11

// RemapResult holds the landmark correspondence re-derived on a deformed
// centerline. Indices refer to the remapped (resplined) siphon, which may
// have a different point count than the original segment.
type RemapResult struct {
	// ID1, ID2 are the landmark indices on Siphon.
	ID1, ID2 int

	// P1, P2 are the landmark positions read back from the resplined
	// geometry.
	P1, P2 centerline.Vec3

	// Siphon is the cut, resplined centerline with curvature and (when
	// available) radius attached.
	Siphon *centerline.Centerline

	// Curvature is the per-point curvature of Siphon.
	Curvature []float64
}

// Remap re-derives landmark correspondence after a deformation. Deformation
// changes point count and spacing, so original indices are invalid on the
// new centerline; only 3D positions survive. The new line is cut at the
// point nearest the original siphon's end position, the cut segment is
// resplined with a fixed knot count, and the landmark indices are re-located
// by nearest-point lookup of the original landmark positions.
//
// Index-based correspondence after deformation is inherently lossy: the
// returned positions agree with the originals only up to the resampling
// tolerance of the spline fit.
func Remap(newLine, siphon *centerline.Centerline, endID int, p1, p2 centerline.Vec3) (*RemapResult, error) {
	if endID < 0 || endID >= siphon.Len() {
		return nil, &centerline.IndexRangeError{Op: "remap siphon end", Index: endID, Length: siphon.Len()}
	}

	locator := centerline.NewLocator(newLine)
	movedEnd := locator.FindClosestPoint(siphon.Point(endID))

	cut, err := newLine.Cut(movedEnd + 1)
	if err != nil {
		return nil, err
	}

	movedID1 := locator.FindClosestPoint(p1)
	movedID2 := locator.FindClosestPoint(p2)
	if movedID1 > movedEnd {
		return nil, &centerline.IndexRangeError{Op: "remap first landmark", Index: movedID1, Length: cut.Len()}
	}
	if movedID2 > movedEnd {
		return nil, &centerline.IndexRangeError{Op: "remap second landmark", Index: movedID2, Length: cut.Len()}
	}
	if movedID1 >= movedID2 {
		return nil, &centerline.IndexRangeError{Op: "remap landmark order", Index: movedID2, Length: cut.Len()}
	}

	resplined, curv, err := spline.Centerline(cut, spline.Options{Knots: remapKnots, Radius: true})
	if err != nil {
		return nil, err
	}

	return &RemapResult{
		ID1:       movedID1,
		ID2:       movedID2,
		P1:        resplined.Point(movedID1),
		P2:        resplined.Point(movedID2),
		Siphon:    resplined,
		Curvature: curv,
	}, nil
}
