// Package trilat estimates a transmitter position from signal strength
// measured at three known anchor points.
package trilat

import (
	"fmt"
	"math"
)

// singularTolerance bounds |det(M)| relative to the product of its row norms,
// i.e. the sine of the angle between the two anchor baselines.
const singularTolerance = 1e-9

// baselineTolerance bounds the shortest anchor-to-anchor distance relative to
// the longest one. Shorter baselines count as coincident anchors.
const baselineTolerance = 1e-6

// Solution is a location estimate together with the values it was derived from.
type Solution struct {
	Location  Location
	Distances [3]float64 // Estimated distance from each anchor
	Residuals [3]float64 // |Location - anchor| - distance, per anchor
}

// Solve estimates the transmitter location from three measured anchors and
// the path-loss exponent n.
func Solve(anchors [3]AnchorPoint, n float64) (Location, error) {
	sol, err := SolveDetailed(anchors, n)
	if err != nil {
		return Location{}, err
	}
	return sol.Location, nil
}

// SolveDetailed is Solve, also returning per-anchor distances and residuals.
func SolveDetailed(anchors [3]AnchorPoint, n float64) (Solution, error) {
	if err := ValidateExponent(n); err != nil {
		return Solution{}, err
	}

	var sol Solution
	for i := range anchors {
		m := anchors[i].Measurement
		if !m.Complete() {
			e := &MissingMeasurementError{Anchor: i}
			if m != nil {
				e.Field = missingField(m)
			}
			return Solution{}, e
		}
		d, err := Distance(*m, n)
		if err != nil {
			return Solution{}, fmt.Errorf("anchor %d: %w", i+1, err)
		}
		if !isFinite(d) {
			return Solution{}, fmt.Errorf("%w: anchor %d distance is not finite", ErrNoUniqueSolution, i+1)
		}
		sol.Distances[i] = d
	}

	loc, err := solveLinear(anchors, sol.Distances)
	if err != nil {
		return Solution{}, err
	}
	sol.Location = loc

	for i := range anchors {
		sol.Residuals[i] = math.Hypot(loc.X-anchors[i].X, loc.Y-anchors[i].Y) - sol.Distances[i]
	}
	return sol, nil
}

// solveLinear subtracts the first circle equation from the second and third,
// leaving the 2x2 system M·[x y]ᵗ = b, and solves it with the closed-form inverse.
func solveLinear(anchors [3]AnchorPoint, r [3]float64) (Location, error) {
	x1, y1 := anchors[0].X, anchors[0].Y
	x2, y2 := anchors[1].X, anchors[1].Y
	x3, y3 := anchors[2].X, anchors[2].Y

	base12 := math.Hypot(x2-x1, y2-y1)
	base13 := math.Hypot(x3-x1, y3-y1)
	base23 := math.Hypot(x3-x2, y3-y2)
	shortest := math.Min(base12, math.Min(base13, base23))
	longest := math.Max(base12, math.Max(base13, base23))
	if !isFinite(longest) || shortest <= baselineTolerance*longest {
		return Location{}, fmt.Errorf("%w: anchors are coincident", ErrNoUniqueSolution)
	}

	a := 2 * (x2 - x1)
	b := 2 * (y2 - y1)
	c := r[0]*r[0] - r[1]*r[1] - x1*x1 + x2*x2 - y1*y1 + y2*y2

	d := 2 * (x3 - x1)
	e := 2 * (y3 - y1)
	f := r[0]*r[0] - r[2]*r[2] - x1*x1 + x3*x3 - y1*y1 + y3*y3

	det := a*e - b*d
	scale := math.Hypot(a, b) * math.Hypot(d, e)
	if !isFinite(det) || scale == 0 || math.Abs(det) <= singularTolerance*scale {
		return Location{}, fmt.Errorf("%w: anchors are collinear or coincident", ErrNoUniqueSolution)
	}

	// [[a b] [d e]]⁻¹ = 1/det · [[e -b] [-d a]]
	x := (e*c - b*f) / det
	y := (a*f - d*c) / det
	if !isFinite(x) || !isFinite(y) {
		return Location{}, fmt.Errorf("%w: result is not finite", ErrNoUniqueSolution)
	}
	return Location{X: x, Y: y}, nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
