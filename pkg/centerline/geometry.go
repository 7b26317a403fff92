package centerline

// DiscreteGeometry estimates curvature along a centerline from finite
// differences of position over a symmetric window of neigh neighboring
// points. The first and second derivatives are taken as centered differences
// between the window endpoints, parameterized by cumulative chord length,
// and curvature follows the usual |r' x r''| / |r'|^3 formula. Points within
// neigh of either end use a clamped, shrunk window so no index ever leaves
// the valid range.
//
// The returned centerline shares the input geometry and carries the computed
// curvature as its Curvature array.
func DiscreteGeometry(line *Centerline, neigh int) (*Centerline, []float64, error) {
	n := line.Len()
	if n < 3 {
		return nil, nil, &InsufficientPointsError{Op: "discrete geometry", Points: n, Required: 3}
	}
	if neigh < 1 {
		neigh = 1
	}

	t := line.CumulativeLengths()

	window := func(i int) (int, int) {
		lo := i - neigh
		if lo < 0 {
			lo = 0
		}
		hi := i + neigh
		if hi > n-1 {
			hi = n - 1
		}
		return lo, hi
	}

	d1 := make([]Vec3, n)
	for i := 0; i < n; i++ {
		lo, hi := window(i)
		dt := t[hi] - t[lo]
		if dt == 0 {
			dt = 1
		}
		d1[i] = line.Point(hi).Sub(line.Point(lo)).Scale(1 / dt)
	}

	curv := make([]float64, n)
	for i := 0; i < n; i++ {
		lo, hi := window(i)
		dt := t[hi] - t[lo]
		if dt == 0 {
			dt = 1
		}
		d2 := d1[hi].Sub(d1[lo]).Scale(1 / dt)
		speed := d1[i].Norm()
		if speed == 0 {
			curv[i] = 0
			continue
		}
		curv[i] = d1[i].Cross(d2).Norm() / (speed * speed * speed)
	}

	out := line.Clone()
	if err := out.SetScalars(CurvatureArrayName, curv); err != nil {
		return nil, nil, err
	}
	return out, curv, nil
}

// SmoothLaplacian applies iterative Laplacian smoothing of point positions
// for a fixed iteration count and blend factor in (0, 1]. Endpoints stay
// fixed. Attached arrays are carried over unchanged; curvature must be
// recomputed from the smoothed geometry afterward.
func SmoothLaplacian(line *Centerline, iterations int, factor float64) *Centerline {
	n := line.Len()
	pts := line.Points()
	if n < 3 || iterations < 1 {
		out := line.Clone()
		return out
	}
	next := make([]Vec3, n)
	for it := 0; it < iterations; it++ {
		next[0] = pts[0]
		next[n-1] = pts[n-1]
		for i := 1; i < n-1; i++ {
			mid := pts[i-1].Add(pts[i+1]).Scale(0.5)
			next[i] = pts[i].Lerp(mid, factor)
		}
		pts, next = next, pts
	}
	out := New(pts)
	for name, v := range line.scalars {
		out.SetScalars(name, v)
	}
	for name, v := range line.vectors {
		out.SetVectors(name, v)
	}
	return out
}

// FrenetFrames computes the local tangent, normal and binormal frame at
// every point, together with curvature, and returns a new centerline with
// the four arrays attached. On locally straight stretches the binormal is
// undefined; the last well-defined binormal is carried forward (zero until
// the first bend).
func FrenetFrames(line *Centerline) (*Centerline, error) {
	n := line.Len()
	if n < 3 {
		return nil, &InsufficientPointsError{Op: "frenet frames", Points: n, Required: 3}
	}

	t := line.CumulativeLengths()
	d1 := make([]Vec3, n)
	for i := 0; i < n; i++ {
		lo, hi := i-1, i+1
		if lo < 0 {
			lo = 0
		}
		if hi > n-1 {
			hi = n - 1
		}
		dt := t[hi] - t[lo]
		if dt == 0 {
			dt = 1
		}
		d1[i] = line.Point(hi).Sub(line.Point(lo)).Scale(1 / dt)
	}

	tangent := make([]Vec3, n)
	normal := make([]Vec3, n)
	binormal := make([]Vec3, n)
	curv := make([]float64, n)
	var lastBinormal Vec3
	for i := 0; i < n; i++ {
		lo, hi := i-1, i+1
		if lo < 0 {
			lo = 0
		}
		if hi > n-1 {
			hi = n - 1
		}
		dt := t[hi] - t[lo]
		if dt == 0 {
			dt = 1
		}
		d2 := d1[hi].Sub(d1[lo]).Scale(1 / dt)

		tangent[i] = d1[i].Normalize()
		speed := d1[i].Norm()
		cross := d1[i].Cross(d2)
		if speed > 0 {
			curv[i] = cross.Norm() / (speed * speed * speed)
		}
		if cross.Norm() > 0 {
			lastBinormal = cross.Normalize()
		}
		binormal[i] = lastBinormal
		normal[i] = binormal[i].Cross(tangent[i])
	}

	out := line.Clone()
	if err := out.SetScalars(CurvatureArrayName, curv); err != nil {
		return nil, err
	}
	if err := out.SetVectors(FrenetTangentName, tangent); err != nil {
		return nil, err
	}
	if err := out.SetVectors(FrenetNormalName, normal); err != nil {
		return nil, err
	}
	if err := out.SetVectors(FrenetBinormalName, binormal); err != nil {
		return nil, err
	}
	return out, nil
}

// SmoothedGeometry smooths the centerline with the given Laplacian iteration
// count and factor, then recomputes Frenet frames and curvature on the
// smoothed geometry. This is the vmtk-factor / vmtk-iteration estimation
// strategy.
func SmoothedGeometry(line *Centerline, iterations int, factor float64) (*Centerline, []float64, error) {
	smoothed := SmoothLaplacian(line, iterations, factor)
	framed, err := FrenetFrames(smoothed)
	if err != nil {
		return nil, nil, err
	}
	curv, _ := framed.Scalars(CurvatureArrayName)
	return framed, curv, nil
}
