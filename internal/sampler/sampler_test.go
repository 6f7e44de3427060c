package sampler

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trigator.klederson.com/internal/trilat"
)

// scriptedSource returns its readings in order; a nil entry fails that read.
type scriptedSource struct {
	mu       sync.Mutex
	readings []*Reading
	calls    int
}

func (s *scriptedSource) Read(ctx context.Context) (Reading, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.calls
	s.calls++
	if i >= len(s.readings) || s.readings[i] == nil {
		return Reading{}, fmt.Errorf("scripted read %d: %w", i, ErrRawSampleUnavailable)
	}
	return *s.readings[i], nil
}

func repeat(r Reading, n int) []*Reading {
	out := make([]*Reading, n)
	for i := range out {
		out[i] = &r
	}
	return out
}

func TestSampleIdenticalReadings(t *testing.T) {
	src := &scriptedSource{readings: repeat(Reading{TxPowerDBm: 15, RxPowerDBm: -40}, 5)}

	m, err := New(src).Sample(context.Background(), 5, time.Millisecond)
	require.NoError(t, err)
	require.True(t, m.Complete())
	assert.Equal(t, 15.0, *m.TxPowerDBm)
	assert.Equal(t, -40.0, *m.RxPowerDBm)
	assert.Equal(t, 5, src.calls)
}

func TestSampleAveragesBothPowers(t *testing.T) {
	src := &scriptedSource{readings: []*Reading{
		{TxPowerDBm: 14, RxPowerDBm: -42},
		{TxPowerDBm: 16, RxPowerDBm: -38},
		{TxPowerDBm: 15, RxPowerDBm: -46},
		{TxPowerDBm: 15, RxPowerDBm: -34},
	}}

	m, err := New(src).Sample(context.Background(), 4, time.Millisecond)
	require.NoError(t, err)
	assert.InDelta(t, 15.0, *m.TxPowerDBm, 1e-12)
	assert.InDelta(t, -40.0, *m.RxPowerDBm, 1e-12)
}

func TestSampleSkipsFailedIterations(t *testing.T) {
	good := Reading{TxPowerDBm: 20, RxPowerDBm: -60}
	src := &scriptedSource{readings: []*Reading{&good, nil, &good, nil, &good}}

	var progress []Progress
	s := New(src, WithObserver(func(p Progress) { progress = append(progress, p) }))
	m, err := s.Sample(context.Background(), 5, time.Millisecond)
	require.NoError(t, err)

	// Failed reads are left out of the mean rather than counted as zero.
	assert.Equal(t, 20.0, *m.TxPowerDBm)
	assert.Equal(t, -60.0, *m.RxPowerDBm)

	require.Len(t, progress, 5)
	for i, p := range progress {
		assert.Equal(t, i+1, p.Iteration)
		assert.Equal(t, 5, p.Count)
	}
	assert.NoError(t, progress[0].Err)
	assert.ErrorIs(t, progress[1].Err, ErrRawSampleUnavailable)
	assert.ErrorIs(t, progress[3].Err, ErrRawSampleUnavailable)
}

func TestSampleAllFailed(t *testing.T) {
	src := &scriptedSource{}
	_, err := New(src).Sample(context.Background(), 3, time.Millisecond)
	assert.ErrorIs(t, err, ErrNoSamples)
	assert.Equal(t, 3, src.calls)
}

func TestSampleInvalidParams(t *testing.T) {
	src := &scriptedSource{}
	_, err := New(src).Sample(context.Background(), 0, time.Millisecond)
	assert.ErrorIs(t, err, ErrInvalidParams)
	_, err = New(src).Sample(context.Background(), 5, 0)
	assert.ErrorIs(t, err, ErrInvalidParams)
	assert.Zero(t, src.calls)
}

func TestSampleCancelled(t *testing.T) {
	src := &scriptedSource{readings: repeat(Reading{TxPowerDBm: 15, RxPowerDBm: -40}, 20)}
	ctx, cancel := context.WithCancel(context.Background())

	s := New(src, WithObserver(func(p Progress) {
		if p.Iteration == 2 {
			cancel()
		}
	}))

	start := time.Now()
	_, err := s.Sample(ctx, 20, time.Second)
	assert.ErrorIs(t, err, ErrCancelled)
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, ErrNoSamples)
	assert.Less(t, time.Since(start), 5*time.Second)
	assert.Equal(t, 2, src.calls)
}

func TestSampleAlreadyCancelled(t *testing.T) {
	src := &scriptedSource{readings: repeat(Reading{}, 3)}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(src).Sample(ctx, 3, time.Millisecond)
	assert.ErrorIs(t, err, ErrCancelled)
	assert.Zero(t, src.calls)
}

func TestSampleWaitsBetweenQueries(t *testing.T) {
	src := &scriptedSource{readings: repeat(Reading{TxPowerDBm: 1, RxPowerDBm: -1}, 3)}

	start := time.Now()
	_, err := New(src).Sample(context.Background(), 3, 20*time.Millisecond)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, time.Since(start), Duration(3, 20*time.Millisecond))
}

func TestSampleInto(t *testing.T) {
	anchor := trilat.AnchorPoint{X: 1, Y: 2}

	s := New(&scriptedSource{readings: repeat(Reading{TxPowerDBm: 15, RxPowerDBm: -50}, 2)})
	require.NoError(t, s.SampleInto(context.Background(), &anchor, 2, time.Millisecond))
	require.True(t, anchor.Measured())
	assert.Equal(t, -50.0, *anchor.Measurement.RxPowerDBm)

	failing := New(&scriptedSource{})
	err := failing.SampleInto(context.Background(), &anchor, 2, time.Millisecond)
	assert.ErrorIs(t, err, ErrNoSamples)
	assert.Equal(t, -50.0, *anchor.Measurement.RxPowerDBm, "failed run must not overwrite the anchor")
}

func TestSourceFunc(t *testing.T) {
	src := SourceFunc(func(context.Context) (Reading, error) {
		return Reading{TxPowerDBm: 3, RxPowerDBm: -70}, nil
	})
	m, err := New(src).Sample(context.Background(), 2, time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, -70.0, *m.RxPowerDBm)
}

func TestDuration(t *testing.T) {
	assert.Equal(t, time.Duration(0), Duration(1, time.Second))
	assert.Equal(t, 38*time.Second, Duration(20, 2*time.Second))
}
