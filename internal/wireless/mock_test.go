package wireless

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trigator.klederson.com/internal/sampler"
	"trigator.klederson.com/internal/trilat"
)

func TestQuietMockSourceFollowsModel(t *testing.T) {
	target := trilat.Location{X: 30, Y: 40}
	s := NewQuietMockSource(target, 3)

	s.MoveTo(0, 0)
	r, err := s.Read(context.Background())
	require.NoError(t, err)
	assert.Equal(t, mockTxPower, r.TxPowerDBm)
	assert.InDelta(t, trilat.ReceivedPower(mockTxPower, 50, 3), r.RxPowerDBm, 1e-9)
}

func TestQuietMockSourceEndToEnd(t *testing.T) {
	const n = 2.5
	target := trilat.Location{X: 62, Y: 35}
	src := NewQuietMockSource(target, n)
	smp := sampler.New(src)

	anchors := trilat.DefaultAnchors()
	for i := range anchors {
		src.MoveTo(anchors[i].X, anchors[i].Y)
		require.NoError(t, smp.SampleInto(context.Background(), &anchors[i], 3, time.Millisecond))
	}

	got, err := trilat.Solve(anchors, n)
	require.NoError(t, err)
	assert.InDelta(t, target.X, got.X, 1e-6)
	assert.InDelta(t, target.Y, got.Y, 1e-6)
}

func TestMockSourceNoisyButBounded(t *testing.T) {
	target := trilat.Location{X: 10, Y: 0}
	s := NewMockSource(target, 2, 42)
	s.MoveTo(0, 0)

	want := trilat.ReceivedPower(mockTxPower, 10, 2)
	dropped := 0
	for i := 0; i < 500; i++ {
		r, err := s.Read(context.Background())
		if err != nil {
			require.True(t, errors.Is(err, sampler.ErrRawSampleUnavailable))
			dropped++
			continue
		}
		// amplitude <= 3 dB, noise <= 1 dB each way, rounding <= 0.5 dB
		assert.InDelta(t, want, r.RxPowerDBm, 4.5)
	}
	assert.Less(t, dropped, 100)
}

func TestMockSourceMinimumDistance(t *testing.T) {
	s := NewQuietMockSource(trilat.Location{X: 5, Y: 5}, 2)
	s.MoveTo(5, 5)
	r, err := s.Read(context.Background())
	require.NoError(t, err)
	assert.InDelta(t, trilat.ReceivedPower(mockTxPower, mockMinDistance, 2), r.RxPowerDBm, 1e-9)
}

func TestMockSourceCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewQuietMockSource(trilat.Location{}, 2).Read(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
