package angle

import (
	"github.com/PeterZs/morphMan/pkg/centerline"
)

// Strategy selects how the representative point pair of the bend is chosen.
// All strategies share the same angle formula and differ only in the
// selection rule, which is applied identically to the original and the
// deformed geometry.
type Strategy int

const (
	// Plane picks the point maximally displaced along the deformation
	// direction and offsets fractionally toward each landmark.
	Plane Strategy = iota

	// ITPlane iteratively refines the splitting plane normal with the local
	// Frenet binormal before applying the fractional offsets.
	ITPlane

	// ITPlaneClip is ITPlane with the fractional window clipped relative to
	// re-derived landmark indices instead of the raw segment ends.
	ITPlaneClip

	// MaxCurv picks around the index of maximum spline curvature.
	MaxCurv

	// Smooth blurs the curvature curve until a single interior local
	// maximum remains, then picks around it.
	Smooth

	// Discrete picks around the maximum of discrete-derivative curvature,
	// regardless of the globally selected curvature strategy.
	Discrete

	// MaxDist picks around the point pair jointly maximizing the sum of
	// squared distances to the two landmarks.
	MaxDist

	// Frac samples fixed fractional indices (2/5 and 3/5 of the span).
	Frac

	// ODRLine fits a line through a grown neighborhood around each landmark
	// by orthogonal distance regression and measures the angle between the
	// two line directions.
	ODRLine

	// MISR walks inward from each landmark until a sphere scaled from the
	// local vessel radius clears the walk origin.
	MISR
)

var strategyNames = map[Strategy]string{
	Plane:       "plane",
	ITPlane:     "itplane",
	ITPlaneClip: "itplane_clip",
	MaxCurv:     "maxcurv",
	Smooth:      "smooth",
	Discrete:    "discrete",
	MaxDist:     "maxdist",
	Frac:        "frac",
	ODRLine:     "odrline",
	MISR:        "MISR",
}

func (s Strategy) String() string {
	if name, ok := strategyNames[s]; ok {
		return name
	}
	return "unknown"
}

// ParseStrategy maps a method selector name to its strategy.
func ParseStrategy(name string) (Strategy, error) {
	for s, n := range strategyNames {
		if n == name {
			return s, nil
		}
	}
	return 0, &centerline.UnknownStrategyError{Kind: "angle", Name: name}
}

// ODRLimit selects the neighborhood growth stopping rule of the ODRLine
// strategy.
type ODRLimit string

const (
	// LimitCumulative grows the neighborhood until cumulative curvature
	// exceeds a fixed threshold.
	LimitCumulative ODRLimit = "cumulative"

	// LimitSD grows the neighborhood while curvature stays below
	// mean + 1.96 SD of an initial fixed window.
	LimitSD ODRLimit = "sd"
)

// ParseODRLimit validates an ODR stopping-rule name.
func ParseODRLimit(name string) (ODRLimit, error) {
	switch ODRLimit(name) {
	case LimitCumulative, LimitSD:
		return ODRLimit(name), nil
	}
	return "", &centerline.UnknownStrategyError{Kind: "odr limit", Name: name}
}
