// Package centerline provides the shared geometric primitives of the bend
// quantification pipeline: an ordered 3D polyline with parallel data arrays,
// nearest-point lookup, segment extraction, smoothing and discrete
// differential geometry.
package centerline

// Names of the point data arrays attached to centerlines. RadiusArrayName
// follows the VTK/VMTK convention used by the centerline extraction service
// that produces the input files.
const (
	RadiusArrayName    = "MaximumInscribedSphereRadius"
	CurvatureArrayName = "Curvature"
	FrenetTangentName  = "FrenetTangent"
	FrenetNormalName   = "FrenetNormal"
	FrenetBinormalName = "FrenetBinormal"
)

// Centerline is an ordered sequence of 3D points approximating the medial
// axis of a tubular structure. Insertion order is arc-length order. A
// centerline may carry parallel scalar and vector arrays indexed identically
// to its points; all attached arrays always have length equal to the point
// count.
//
// Centerlines are immutable once constructed: smoothing, clipping and
// splining operations return a new instance rather than mutating in place,
// so an original line can safely be reused as reference geometry. Point
// indices are only meaningful for the instance they were derived on and must
// be re-derived (via a Locator) for any new instance.
type Centerline struct {
	points  []Vec3
	scalars map[string][]float64
	vectors map[string][]Vec3
}

// New creates a centerline from an ordered point sequence. The slice is
// copied.
func New(points []Vec3) *Centerline {
	c := &Centerline{points: make([]Vec3, len(points))}
	copy(c.points, points)
	return c
}

// Len returns the number of points.
func (c *Centerline) Len() int {
	return len(c.points)
}

// Point returns the point at index i.
func (c *Centerline) Point(i int) Vec3 {
	return c.points[i]
}

// Points returns a copy of the point sequence.
func (c *Centerline) Points() []Vec3 {
	out := make([]Vec3, len(c.points))
	copy(out, c.points)
	return out
}

// SetScalars attaches a named scalar array. The array length must match the
// point count.
func (c *Centerline) SetScalars(name string, values []float64) error {
	if len(values) != len(c.points) {
		return &IndexRangeError{Op: "attach scalar array " + name, Index: len(values), Length: len(c.points)}
	}
	if c.scalars == nil {
		c.scalars = make(map[string][]float64)
	}
	v := make([]float64, len(values))
	copy(v, values)
	c.scalars[name] = v
	return nil
}

// Scalars returns the named scalar array, or false when absent. The returned
// slice is a copy.
func (c *Centerline) Scalars(name string) ([]float64, bool) {
	v, ok := c.scalars[name]
	if !ok {
		return nil, false
	}
	out := make([]float64, len(v))
	copy(out, v)
	return out, true
}

// SetVectors attaches a named vector array. The array length must match the
// point count.
func (c *Centerline) SetVectors(name string, values []Vec3) error {
	if len(values) != len(c.points) {
		return &IndexRangeError{Op: "attach vector array " + name, Index: len(values), Length: len(c.points)}
	}
	if c.vectors == nil {
		c.vectors = make(map[string][]Vec3)
	}
	v := make([]Vec3, len(values))
	copy(v, values)
	c.vectors[name] = v
	return nil
}

// Vectors returns the named vector array, or false when absent. The returned
// slice is a copy.
func (c *Centerline) Vectors(name string) ([]Vec3, bool) {
	v, ok := c.vectors[name]
	if !ok {
		return nil, false
	}
	out := make([]Vec3, len(v))
	copy(out, v)
	return out, true
}

// Clone returns a deep copy of the centerline including all attached arrays.
func (c *Centerline) Clone() *Centerline {
	out := New(c.points)
	for name, v := range c.scalars {
		out.SetScalars(name, v)
	}
	for name, v := range c.vectors {
		out.SetVectors(name, v)
	}
	return out
}

// Extract returns the contiguous sub-centerline covering points
// [start, end] inclusive, re-indexed from 0, with all attached arrays
// sliced accordingly. Callers that need a reversed segment must reverse
// before extracting; no implicit reversal is performed.
func (c *Centerline) Extract(start, end int) (*Centerline, error) {
	if start < 0 || start >= len(c.points) {
		return nil, &IndexRangeError{Op: "extract segment", Index: start, Length: len(c.points)}
	}
	if end < start || end >= len(c.points) {
		return nil, &IndexRangeError{Op: "extract segment", Index: end, Length: len(c.points)}
	}
	out := New(c.points[start : end+1])
	for name, v := range c.scalars {
		out.SetScalars(name, v[start:end+1])
	}
	for name, v := range c.vectors {
		out.SetVectors(name, v[start:end+1])
	}
	return out, nil
}

// Cut returns the prefix of the centerline containing the first end points,
// i.e. indices [0, end).
func (c *Centerline) Cut(end int) (*Centerline, error) {
	if end < 1 || end > len(c.points) {
		return nil, &IndexRangeError{Op: "cut centerline", Index: end, Length: len(c.points)}
	}
	return c.Extract(0, end-1)
}

// Reverse returns the centerline traversed in the opposite direction, with
// all attached arrays reversed alongside the points.
func (c *Centerline) Reverse() *Centerline {
	n := len(c.points)
	pts := make([]Vec3, n)
	for i := range c.points {
		pts[n-1-i] = c.points[i]
	}
	out := New(pts)
	for name, v := range c.scalars {
		rv := make([]float64, n)
		for i := range v {
			rv[n-1-i] = v[i]
		}
		out.SetScalars(name, rv)
	}
	for name, v := range c.vectors {
		rv := make([]Vec3, n)
		for i := range v {
			rv[n-1-i] = v[i]
		}
		out.SetVectors(name, rv)
	}
	return out
}

// CumulativeLengths returns the cumulative chord length at every point. The
// first entry is 0 and the last is the total polyline length.
func (c *Centerline) CumulativeLengths() []float64 {
	t := make([]float64, len(c.points))
	for i := 1; i < len(c.points); i++ {
		t[i] = t[i-1] + c.points[i].Distance(c.points[i-1])
	}
	return t
}

// Length returns the total arc length of the polyline.
func (c *Centerline) Length() float64 {
	total := 0.0
	for i := 1; i < len(c.points); i++ {
		total += c.points[i].Distance(c.points[i-1])
	}
	return total
}
