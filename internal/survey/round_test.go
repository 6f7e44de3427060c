package survey

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trigator.klederson.com/internal/trilat"
)

// measurementFor returns what an anchor at (x, y) would record for a
// transmitter at target.
func measurementFor(x, y float64, target trilat.Location, n float64) trilat.Measurement {
	d := math.Hypot(target.X-x, target.Y-y)
	return trilat.NewMeasurement(15, trilat.ReceivedPower(15, d, n))
}

func measureAll(t *testing.T, r *Round, target trilat.Location, n float64) {
	t.Helper()
	for i, a := range r.Anchors() {
		require.NoError(t, r.BeginSampling(i))
		require.NoError(t, r.FinishSampling(i, measurementFor(a.X, a.Y, target, n), nil))
	}
}

func TestRoundLifecycle(t *testing.T) {
	r := NewRound(trilat.DefaultAnchors())
	target := trilat.Location{X: 40, Y: 30}

	assert.Equal(t, PhaseEmpty, r.Phase())
	assert.Equal(t, NoAnchor, r.Selected())
	assert.False(t, r.Ready())

	require.NoError(t, r.BeginSampling(0))
	assert.Equal(t, PhaseSampling, r.Phase())
	assert.Equal(t, 0, r.Sampling())
	assert.Equal(t, 0, r.Selected())

	a0 := r.Anchors()[0]
	require.NoError(t, r.FinishSampling(0, measurementFor(a0.X, a0.Y, target, 2.5), nil))
	assert.Equal(t, PhaseMeasuring, r.Phase())
	assert.Equal(t, 1, r.Measured())

	for i := 1; i < 3; i++ {
		a := r.Anchors()[i]
		require.NoError(t, r.BeginSampling(i))
		require.NoError(t, r.FinishSampling(i, measurementFor(a.X, a.Y, target, 2.5), nil))
	}
	assert.Equal(t, PhaseReady, r.Phase())
	assert.True(t, r.Ready())

	sol, err := r.Solve(2.5)
	require.NoError(t, err)
	assert.InDelta(t, target.X, sol.Location.X, 1e-6)
	assert.InDelta(t, target.Y, sol.Location.Y, 1e-6)
	assert.Equal(t, PhaseSolved, r.Phase())

	got, ok := r.Solution()
	require.True(t, ok)
	assert.Equal(t, sol.Location, got.Location)

	require.NoError(t, r.Reset())
	assert.Equal(t, PhaseEmpty, r.Phase())
	assert.Zero(t, r.Measured())
	_, ok = r.Solution()
	assert.False(t, ok)
	assert.Equal(t, trilat.DefaultAnchors()[2].Y, r.Anchors()[2].Y, "reset keeps positions")
}

func TestRoundSolveBeforeReady(t *testing.T) {
	r := NewRound(trilat.DefaultAnchors())
	require.NoError(t, r.BeginSampling(1))
	require.NoError(t, r.FinishSampling(1, trilat.NewMeasurement(15, -40), nil))

	_, err := r.Solve(2.5)
	assert.ErrorIs(t, err, ErrNotReady)
	assert.Equal(t, PhaseMeasuring, r.Phase())
}

func TestRoundSolveFailed(t *testing.T) {
	layout := [3]trilat.AnchorPoint{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 2, Y: 0}}
	r := NewRound(layout)
	measureAll(t, r, trilat.Location{X: 5, Y: 5}, 2.5)

	_, err := r.Solve(2.5)
	require.ErrorIs(t, err, trilat.ErrNoUniqueSolution)
	assert.Equal(t, PhaseSolveFailed, r.Phase())
	assert.ErrorIs(t, r.Err(), trilat.ErrNoUniqueSolution)

	// Re-measuring clears the failure.
	require.NoError(t, r.BeginSampling(0))
	require.NoError(t, r.FinishSampling(0, trilat.NewMeasurement(15, -45), nil))
	assert.Equal(t, PhaseReady, r.Phase())
}

func TestRoundBusy(t *testing.T) {
	r := NewRound(trilat.DefaultAnchors())
	require.NoError(t, r.BeginSampling(0))

	assert.ErrorIs(t, r.BeginSampling(1), ErrBusy)
	assert.ErrorIs(t, r.BeginSampling(0), ErrBusy)
	assert.ErrorIs(t, r.Reset(), ErrBusy)
	assert.ErrorIs(t, r.MoveAnchor(0, 3, 3), ErrBusy)
	_, err := r.Solve(2.5)
	assert.ErrorIs(t, err, ErrBusy)

	assert.Error(t, r.FinishSampling(1, trilat.Measurement{}, nil), "only the running anchor may finish")
	assert.NoError(t, r.FinishSampling(0, trilat.NewMeasurement(15, -40), nil))
	assert.NoError(t, r.BeginSampling(1))
}

func TestRoundFailedSampleKeepsMeasurement(t *testing.T) {
	r := NewRound(trilat.DefaultAnchors())
	require.NoError(t, r.BeginSampling(2))
	require.NoError(t, r.FinishSampling(2, trilat.NewMeasurement(15, -40), nil))

	sampleErr := errors.New("iwconfig exploded")
	require.NoError(t, r.BeginSampling(2))
	require.NoError(t, r.FinishSampling(2, trilat.Measurement{}, sampleErr))

	a, err := r.Anchor(2)
	require.NoError(t, err)
	require.True(t, a.Measured())
	assert.Equal(t, -40.0, *a.Measurement.RxPowerDBm)
	assert.ErrorIs(t, r.Err(), sampleErr)
	assert.Equal(t, PhaseMeasuring, r.Phase())
}

func TestRoundMoveAnchorClearsMeasurement(t *testing.T) {
	r := NewRound(trilat.DefaultAnchors())
	measureAll(t, r, trilat.Location{X: 20, Y: 20}, 3)
	_, err := r.Solve(3)
	require.NoError(t, err)

	require.NoError(t, r.MoveAnchor(1, 90, 5))
	a, _ := r.Anchor(1)
	assert.Equal(t, 90.0, a.X)
	assert.Equal(t, 5.0, a.Y)
	assert.False(t, a.Measured())
	assert.Equal(t, PhaseMeasuring, r.Phase())
	_, ok := r.Solution()
	assert.False(t, ok)

	require.NoError(t, r.RestoreLayout())
	assert.Equal(t, trilat.DefaultAnchors(), r.Anchors())
}

func TestRoundIndexChecks(t *testing.T) {
	r := NewRound(trilat.DefaultAnchors())
	for _, i := range []int{-1, 3, 17} {
		assert.ErrorIs(t, r.Select(i), ErrAnchorIndex)
		assert.ErrorIs(t, r.BeginSampling(i), ErrAnchorIndex)
		assert.ErrorIs(t, r.MoveAnchor(i, 0, 0), ErrAnchorIndex)
		_, err := r.Anchor(i)
		assert.ErrorIs(t, err, ErrAnchorIndex)
	}
	require.NoError(t, r.Select(2))
	assert.Equal(t, 2, r.Selected())
}

func TestNewRoundDropsMeasurements(t *testing.T) {
	layout := trilat.DefaultAnchors()
	m := trilat.NewMeasurement(15, -40)
	layout[0].Measurement = &m

	r := NewRound(layout)
	assert.Zero(t, r.Measured())
}

func TestPhaseString(t *testing.T) {
	assert.Equal(t, "EMPTY", PhaseEmpty.String())
	assert.Equal(t, "SOLVED", PhaseSolved.String())
	assert.Equal(t, "FAILED", PhaseSolveFailed.String())
}
