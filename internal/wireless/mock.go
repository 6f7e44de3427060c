package wireless

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"sync"

	"trigator.klederson.com/internal/sampler"
	"trigator.klederson.com/internal/trilat"
)

// Demo transmitter parameters.
const (
	mockTxPower     = 15.0 // dBm, typical laptop/AP Tx-Power
	mockMinDistance = 0.5  // meters; keeps the model finite next to the transmitter
	mockDropRate    = 0.03 // fraction of reads that fail like a flaky iwconfig call
)

// MockSource simulates a transmitter at a fixed hidden position for demo mode.
// The receiver is wherever MoveTo last put it.
type MockSource struct {
	mu        sync.Mutex
	rng       *rand.Rand
	target    trilat.Location
	receiver  trilat.Location
	exponent  float64
	amplitude float64 // slow fading swing in dB
	noise     float64 // peak-to-peak fast fading in dB
	phase     float64
	t         float64
}

// NewMockSource places a transmitter at target and simulates propagation with
// path-loss exponent n. A zero seed picks a random one.
func NewMockSource(target trilat.Location, n float64, seed int64) *MockSource {
	if seed == 0 {
		seed = rand.Int63()
	}
	rng := rand.New(rand.NewSource(seed))
	return &MockSource{
		rng:       rng,
		target:    target,
		exponent:  n,
		amplitude: 1 + rng.Float64()*2, // 1-3 dB swing
		noise:     2,
		phase:     rng.Float64() * 2 * math.Pi,
	}
}

// NewQuietMockSource is a MockSource without fading or dropped reads.
func NewQuietMockSource(target trilat.Location, n float64) *MockSource {
	s := NewMockSource(target, n, 1)
	s.amplitude = 0
	s.noise = 0
	return s
}

// MoveTo sets the simulated receiver position.
func (s *MockSource) MoveTo(x, y float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.receiver = trilat.Location{X: x, Y: y}
}

// Target returns the hidden transmitter position.
func (s *MockSource) Target() trilat.Location {
	return s.target
}

// Read produces one reading at the current receiver position.
func (s *MockSource) Read(ctx context.Context) (sampler.Reading, error) {
	if err := ctx.Err(); err != nil {
		return sampler.Reading{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.t += 0.2
	if s.noise > 0 && s.rng.Float64() < mockDropRate {
		return sampler.Reading{}, fmt.Errorf("%w: simulated link dropout", sampler.ErrRawSampleUnavailable)
	}

	d := math.Hypot(s.target.X-s.receiver.X, s.target.Y-s.receiver.Y)
	if d < mockMinDistance {
		d = mockMinDistance
	}

	// Path loss + sinusoidal slow fading + uniform fast fading
	rx := trilat.ReceivedPower(mockTxPower, d, s.exponent) +
		s.amplitude*math.Sin(s.t*0.5+s.phase) +
		(s.rng.Float64()-0.5)*s.noise

	if s.noise > 0 {
		rx = math.Round(rx) // iwconfig reports whole dBm
	}
	return sampler.Reading{TxPowerDBm: mockTxPower, RxPowerDBm: rx}, nil
}
