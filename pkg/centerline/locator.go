package centerline

import (
	"gonum.org/v1/gonum/spatial/kdtree"
)

// locatorPoint is a centerline point together with its index, stored in the
// locator's KD-tree.
type locatorPoint struct {
	p   Vec3
	idx int
}

// Compare implements the kdtree.Comparable interface
func (p locatorPoint) Compare(c kdtree.Comparable, d kdtree.Dim) float64 {
	q := c.(locatorPoint)
	switch d {
	case 0:
		return p.p.X - q.p.X
	case 1:
		return p.p.Y - q.p.Y
	case 2:
		return p.p.Z - q.p.Z
	default:
		panic("illegal dimension")
	}
}

// Dims returns the number of dimensions for the KD-tree
func (p locatorPoint) Dims() int { return 3 }

// Distance returns the squared Euclidean distance between two points
func (p locatorPoint) Distance(c kdtree.Comparable) float64 {
	q := c.(locatorPoint)
	d := p.p.Sub(q.p)
	return d.Dot(d) // squared distance for efficiency
}

// locatorPoints is a collection of locatorPoint that satisfies
// kdtree.Interface.
type locatorPoints []locatorPoint

func (p locatorPoints) Index(i int) kdtree.Comparable          { return p[i] }
func (p locatorPoints) Len() int                               { return len(p) }
func (p locatorPoints) Slice(start, end int) kdtree.Interface  { return p[start:end] }

// Pivot implements the kdtree.Interface method
func (p locatorPoints) Pivot(d kdtree.Dim) int {
	return kdtree.Partition(pointPlane{locatorPoints: p, Dim: d}, kdtree.MedianOfRandoms(pointPlane{locatorPoints: p, Dim: d}, 100))
}

// pointPlane implements sort.Interface and kdtree.SortSlicer for locatorPoints
type pointPlane struct {
	locatorPoints
	kdtree.Dim
}

func (p pointPlane) Less(i, j int) bool {
	switch p.Dim {
	case 0:
		return p.locatorPoints[i].p.X < p.locatorPoints[j].p.X
	case 1:
		return p.locatorPoints[i].p.Y < p.locatorPoints[j].p.Y
	case 2:
		return p.locatorPoints[i].p.Z < p.locatorPoints[j].p.Z
	default:
		panic("illegal dimension")
	}
}

func (p pointPlane) Slice(start, end int) kdtree.SortSlicer {
	return pointPlane{locatorPoints: p.locatorPoints[start:end], Dim: p.Dim}
}

func (p pointPlane) Swap(i, j int) {
	p.locatorPoints[i], p.locatorPoints[j] = p.locatorPoints[j], p.locatorPoints[i]
}

// tieEpsilon bounds the squared-distance slack within which two candidate
// points are considered equally close, in which case the lower index wins.
const tieEpsilon = 1e-12

// Locator performs deterministic nearest-point lookup on one centerline
// instance. Indices returned by a locator are only valid for the instance it
// was built on; a new centerline requires a new locator.
type Locator struct {
	line *Centerline
	tree *kdtree.Tree
}

// NewLocator builds a locator for the given centerline.
func NewLocator(line *Centerline) *Locator {
	pts := make(locatorPoints, line.Len())
	for i := 0; i < line.Len(); i++ {
		pts[i] = locatorPoint{p: line.Point(i), idx: i}
	}
	return &Locator{line: line, tree: kdtree.New(pts, false)}
}

// FindClosestPoint returns the index of the centerline point nearest to the
// query point. Ties are broken by the lowest index.
func (l *Locator) FindClosestPoint(q Vec3) int {
	got, dist := l.tree.Nearest(locatorPoint{p: q})
	best := got.(locatorPoint).idx
	// The tree returns an arbitrary member of a tied set; prefer the lowest
	// index among points at the same distance.
	for i := 0; i < best; i++ {
		d := l.line.Point(i).Sub(q)
		if d.Dot(d) <= dist+tieEpsilon {
			return i
		}
	}
	return best
}
