package centerline

import "math"

// GaussianFilter smooths a scalar array with a Gaussian kernel of the given
// standard deviation (in samples), using reflect padding at the boundaries.
// A non-positive sigma returns an unmodified copy. This is the mandatory
// post-filter applied to curvature arrays before peak extraction.
func GaussianFilter(values []float64, sigma float64) []float64 {
	out := make([]float64, len(values))
	if sigma <= 0 || len(values) == 0 {
		copy(out, values)
		return out
	}

	radius := int(4*sigma + 0.5)
	if radius < 1 {
		radius = 1
	}
	kernel := make([]float64, 2*radius+1)
	sum := 0.0
	for i := -radius; i <= radius; i++ {
		w := math.Exp(-float64(i*i) / (2 * sigma * sigma))
		kernel[i+radius] = w
		sum += w
	}
	for i := range kernel {
		kernel[i] /= sum
	}

	n := len(values)
	for i := 0; i < n; i++ {
		acc := 0.0
		for k := -radius; k <= radius; k++ {
			acc += kernel[k+radius] * values[reflectIndex(i+k, n)]
		}
		out[i] = acc
	}
	return out
}

// reflectIndex maps an out-of-range index into [0, n) by mirroring about the
// array edges (the "reflect" boundary mode: d c b a | a b c d | d c b a).
func reflectIndex(i, n int) int {
	if n == 1 {
		return 0
	}
	period := 2 * n
	i = ((i % period) + period) % period
	if i >= n {
		i = period - 1 - i
	}
	return i
}

// LocalMaxima returns the indices of strict interior local maxima of the
// array, in increasing order. Endpoints are never reported.
func LocalMaxima(values []float64) []int {
	var maxima []int
	for i := 1; i < len(values)-1; i++ {
		if values[i] > values[i-1] && values[i] > values[i+1] {
			maxima = append(maxima, i)
		}
	}
	return maxima
}

// ResampleScalars linearly resamples a scalar array to m samples over the
// same index span. Used to compare per-point quantities between centerlines
// with different point counts.
func ResampleScalars(values []float64, m int) []float64 {
	out := make([]float64, m)
	if len(values) == 0 || m == 0 {
		return out
	}
	if len(values) == 1 {
		for i := range out {
			out[i] = values[0]
		}
		return out
	}
	if m == 1 {
		out[0] = values[0]
		return out
	}
	scale := float64(len(values)-1) / float64(m-1)
	for i := 0; i < m; i++ {
		x := float64(i) * scale
		j := int(x)
		if j >= len(values)-1 {
			out[i] = values[len(values)-1]
			continue
		}
		f := x - float64(j)
		out[i] = values[j]*(1-f) + values[j+1]*f
	}
	return out
}

// ResamplePoints linearly resamples the centerline to m points uniformly
// spaced in arc length. Attached arrays are not carried over; per-point
// quantities must be resampled explicitly.
func ResamplePoints(line *Centerline, m int) (*Centerline, error) {
	if line.Len() < 2 {
		return nil, &InsufficientPointsError{Op: "resample points", Points: line.Len(), Required: 2}
	}
	if m < 2 {
		return nil, &InsufficientPointsError{Op: "resample points", Points: m, Required: 2}
	}
	t := line.CumulativeLengths()
	total := t[len(t)-1]
	pts := make([]Vec3, m)
	j := 0
	for i := 0; i < m; i++ {
		target := total * float64(i) / float64(m-1)
		for j < len(t)-2 && t[j+1] < target {
			j++
		}
		span := t[j+1] - t[j]
		f := 0.0
		if span > 0 {
			f = (target - t[j]) / span
		}
		pts[i] = line.Point(j).Lerp(line.Point(j+1), f)
	}
	return New(pts), nil
}
