package centerline

import "fmt"

// InsufficientPointsError reports a centerline that is too short for the
// requested window, knot count or boundary margin.
type InsufficientPointsError struct {
	// Op is the operation that needed more points.
	Op string

	// Points is the number of points that were available.
	Points int

	// Required is the minimum number of points the operation needs.
	Required int
}

func (e *InsufficientPointsError) Error() string {
	return fmt.Sprintf("%s: centerline has %d points, needs at least %d", e.Op, e.Points, e.Required)
}

// IndexRangeError reports a landmark or segment index outside the valid
// range of a centerline, including indices produced by a failed remapping.
type IndexRangeError struct {
	// Op is the operation that received the index.
	Op string

	// Index is the offending index.
	Index int

	// Length is the point count of the centerline the index was applied to.
	Length int
}

func (e *IndexRangeError) Error() string {
	return fmt.Sprintf("%s: index %d out of range for centerline with %d points", e.Op, e.Index, e.Length)
}

// MissingInputError reports an expected precomputed input file that was not
// found. It is surfaced to the caller instead of silently recomputing,
// except where recomputation is the documented fallback.
type MissingInputError struct {
	Path string
}

func (e *MissingInputError) Error() string {
	return fmt.Sprintf("missing input file: %s", e.Path)
}

// UnknownStrategyError reports an unrecognized curvature or angle method
// name.
type UnknownStrategyError struct {
	// Kind is the selector the name was given to ("curvature" or "angle").
	Kind string

	// Name is the unrecognized method name.
	Name string
}

func (e *UnknownStrategyError) Error() string {
	return fmt.Sprintf("unknown %s method %q", e.Kind, e.Name)
}

// DegenerateVectorError reports a zero-length direction vector where a
// well-defined direction is required, such as coincident representative and
// anchor points in the angle formula.
type DegenerateVectorError struct {
	// Op names the computation and the input condition that produced the
	// zero vector.
	Op string
}

func (e *DegenerateVectorError) Error() string {
	return fmt.Sprintf("%s: degenerate zero-length vector", e.Op)
}
