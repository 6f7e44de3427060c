// Package survey tracks one estimation round: three anchors, which of them
// have been measured, and the outcome of the last solve.
package survey

import (
	"errors"
	"fmt"

	"trigator.klederson.com/internal/trilat"
)

var (
	ErrAnchorIndex = errors.New("anchor index out of range")
	ErrBusy        = errors.New("a sampling run is already in progress")
	ErrNotReady    = errors.New("all three anchors must be measured first")
)

// Phase is the aggregate state of a round.
type Phase int

const (
	PhaseEmpty       Phase = iota // no anchor measured
	PhaseSampling                 // a sampling run is in progress
	PhaseMeasuring                // some, not all, anchors measured
	PhaseReady                    // all three measured, not solved
	PhaseSolved                   // last solve produced a location
	PhaseSolveFailed              // last solve failed
)

func (p Phase) String() string {
	switch p {
	case PhaseSampling:
		return "SAMPLING"
	case PhaseMeasuring:
		return "MEASURING"
	case PhaseReady:
		return "READY"
	case PhaseSolved:
		return "SOLVED"
	case PhaseSolveFailed:
		return "FAILED"
	default:
		return "EMPTY"
	}
}

// NoAnchor marks "no anchor" for Selected and Sampling.
const NoAnchor = -1

// Round holds the caller-side state across sampler and solver calls.
// It is not safe for concurrent use; the owner serializes
// select -> sample -> assign.
type Round struct {
	anchors  [3]trilat.AnchorPoint
	layout   [3]trilat.AnchorPoint
	selected int
	sampling int
	solution *trilat.Solution
	failed   bool // last solve failed
	err      error
}

// NewRound starts an empty round over the given anchor layout.
// Any measurements on the input are dropped.
func NewRound(layout [3]trilat.AnchorPoint) *Round {
	r := &Round{selected: NoAnchor, sampling: NoAnchor}
	for i := range layout {
		r.layout[i] = trilat.AnchorPoint{X: layout[i].X, Y: layout[i].Y}
	}
	r.anchors = r.layout
	return r
}

// Anchors returns a copy of the three anchors.
func (r *Round) Anchors() [3]trilat.AnchorPoint {
	return r.anchors
}

// Anchor returns a copy of anchor i.
func (r *Round) Anchor(i int) (trilat.AnchorPoint, error) {
	if err := checkIndex(i); err != nil {
		return trilat.AnchorPoint{}, err
	}
	return r.anchors[i], nil
}

// Selected returns the selected anchor index or NoAnchor.
func (r *Round) Selected() int {
	return r.selected
}

// Sampling returns the anchor being sampled or NoAnchor.
func (r *Round) Sampling() int {
	return r.sampling
}

// Select makes anchor i the current one.
func (r *Round) Select(i int) error {
	if err := checkIndex(i); err != nil {
		return err
	}
	r.selected = i
	return nil
}

// BeginSampling marks anchor i as being sampled. Only one run may be active.
func (r *Round) BeginSampling(i int) error {
	if err := checkIndex(i); err != nil {
		return err
	}
	if r.sampling != NoAnchor {
		return fmt.Errorf("%w (anchor %d)", ErrBusy, r.sampling+1)
	}
	r.sampling = i
	r.selected = i
	r.err = nil
	return nil
}

// FinishSampling ends the run on anchor i. On success the measurement replaces
// whatever the anchor held and any previous solution is discarded; on failure
// the anchor keeps its previous measurement.
func (r *Round) FinishSampling(i int, m trilat.Measurement, sampleErr error) error {
	if err := checkIndex(i); err != nil {
		return err
	}
	if r.sampling != i {
		return fmt.Errorf("anchor %d is not being sampled", i+1)
	}
	r.sampling = NoAnchor
	if sampleErr != nil {
		r.err = sampleErr
		return nil
	}
	r.anchors[i].Measurement = &m
	r.solution = nil
	r.failed = false
	r.err = nil
	return nil
}

// MoveAnchor repositions anchor i. Its measurement no longer describes the
// new position, so it is cleared along with any solution.
func (r *Round) MoveAnchor(i int, x, y float64) error {
	if err := checkIndex(i); err != nil {
		return err
	}
	if r.sampling == i {
		return fmt.Errorf("%w (anchor %d)", ErrBusy, i+1)
	}
	r.anchors[i].X = x
	r.anchors[i].Y = y
	r.anchors[i].Measurement = nil
	r.solution = nil
	r.failed = false
	r.err = nil
	return nil
}

// Measured returns how many anchors carry a complete measurement.
func (r *Round) Measured() int {
	n := 0
	for i := range r.anchors {
		if r.anchors[i].Measured() {
			n++
		}
	}
	return n
}

// Ready reports whether Solve may be attempted.
func (r *Round) Ready() bool {
	return r.sampling == NoAnchor && trilat.Ready(r.anchors)
}

// Solve runs the solver over the three anchors with exponent n.
// The outcome, success or failure, is recorded on the round.
func (r *Round) Solve(n float64) (trilat.Solution, error) {
	if r.sampling != NoAnchor {
		return trilat.Solution{}, fmt.Errorf("%w (anchor %d)", ErrBusy, r.sampling+1)
	}
	if !trilat.Ready(r.anchors) {
		return trilat.Solution{}, fmt.Errorf("%w (%d/3 measured)", ErrNotReady, r.Measured())
	}

	sol, err := trilat.SolveDetailed(r.anchors, n)
	if err != nil {
		r.solution = nil
		r.failed = true
		r.err = err
		return trilat.Solution{}, err
	}
	r.solution = &sol
	r.failed = false
	r.err = nil
	return sol, nil
}

// Solution returns the last successful solve, if any.
func (r *Round) Solution() (trilat.Solution, bool) {
	if r.solution == nil {
		return trilat.Solution{}, false
	}
	return *r.solution, true
}

// Err returns the last sampling or solve failure.
func (r *Round) Err() error {
	return r.err
}

// Phase derives the aggregate state of the round.
func (r *Round) Phase() Phase {
	switch {
	case r.sampling != NoAnchor:
		return PhaseSampling
	case r.solution != nil:
		return PhaseSolved
	case r.failed:
		return PhaseSolveFailed
	}
	switch r.Measured() {
	case 0:
		return PhaseEmpty
	case len(r.anchors):
		return PhaseReady
	default:
		return PhaseMeasuring
	}
}

// Reset starts a new round: measurements, solution and errors are cleared and
// anchor positions kept. A running sample must be finished first.
func (r *Round) Reset() error {
	if r.sampling != NoAnchor {
		return fmt.Errorf("%w (anchor %d)", ErrBusy, r.sampling+1)
	}
	for i := range r.anchors {
		r.anchors[i].Measurement = nil
	}
	r.selected = NoAnchor
	r.solution = nil
	r.failed = false
	r.err = nil
	return nil
}

// RestoreLayout moves all anchors back to the layout the round was created with.
func (r *Round) RestoreLayout() error {
	if err := r.Reset(); err != nil {
		return err
	}
	r.anchors = r.layout
	return nil
}

func checkIndex(i int) error {
	if i < 0 || i > 2 {
		return fmt.Errorf("%w: %d", ErrAnchorIndex, i)
	}
	return nil
}
