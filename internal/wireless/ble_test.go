package wireless

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trigator.klederson.com/internal/sampler"
)

func TestParseTxPowerLevel(t *testing.T) {
	tests := []struct {
		name    string
		payload []byte
		want    int8
		ok      bool
	}{
		{
			name:    "flags then tx power",
			payload: []byte{0x02, 0x01, 0x06, 0x02, 0x0A, 0xF4},
			want:    -12, ok: true,
		},
		{
			name:    "tx power after name",
			payload: []byte{0x05, 0x09, 'b', 'e', 'a', 'c', 0x02, 0x0A, 0x04},
			want:    4, ok: true,
		},
		{
			name:    "no tx power",
			payload: []byte{0x02, 0x01, 0x06, 0x03, 0x03, 0xAA, 0xFE},
		},
		{
			name:    "truncated",
			payload: []byte{0x02, 0x01, 0x06, 0x05, 0x0A},
		},
		{
			name: "nil",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := parseTxPowerLevel(tt.payload)
			require.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBLESourceReading(t *testing.T) {
	s := NewBLESource("aa:bb:cc:dd:ee:ff", -59, 50*time.Millisecond)
	assert.Equal(t, "AA:BB:CC:DD:EE:FF", s.target)

	assert.Equal(t, sampler.Reading{TxPowerDBm: -59, RxPowerDBm: -70}, s.reading(advertisement{rssi: -70}))

	tx := -8.0
	assert.Equal(t, sampler.Reading{TxPowerDBm: -8, RxPowerDBm: -66}, s.reading(advertisement{rssi: -66, txPower: &tx}))
}

func TestBLESourcePublishKeepsLatest(t *testing.T) {
	s := NewBLESource("AA:BB:CC:DD:EE:FF", -59, 50*time.Millisecond)
	s.publish(advertisement{rssi: -80})
	s.publish(advertisement{rssi: -75})
	s.publish(advertisement{rssi: -60})

	adv := <-s.updates
	assert.Equal(t, -60.0, adv.rssi)
	assert.Empty(t, s.updates)
}

// startedBLESource returns a source whose scan is considered running, so Read
// only consumes what the test publishes.
func startedBLESource(window time.Duration) *BLESource {
	s := NewBLESource("AA:BB:CC:DD:EE:FF", -59, window)
	s.startOnce.Do(func() {})
	return s
}

func TestBLESourceReadDropsStaleAdvertisement(t *testing.T) {
	s := startedBLESource(50 * time.Millisecond)
	s.publish(advertisement{rssi: -80, at: time.Now()})
	time.Sleep(20 * time.Millisecond)

	_, err := s.Read(context.Background())
	assert.ErrorIs(t, err, sampler.ErrRawSampleUnavailable)
	assert.Empty(t, s.updates)
}

func TestBLESourceReadWaitsForFreshAdvertisement(t *testing.T) {
	s := startedBLESource(time.Second)
	s.publish(advertisement{rssi: -80, at: time.Now().Add(-time.Minute)})

	go func() {
		time.Sleep(20 * time.Millisecond)
		s.publish(advertisement{rssi: -52, at: time.Now()})
	}()

	r, err := s.Read(context.Background())
	require.NoError(t, err)
	assert.Equal(t, -52.0, r.RxPowerDBm)
}

func TestBLESourceStopWithoutStart(t *testing.T) {
	s := NewBLESource("AA:BB:CC:DD:EE:FF", -59, time.Millisecond)
	s.Stop()
	assert.False(t, s.running.Load())
}

func TestBLESourceInvalidTarget(t *testing.T) {
	s := NewBLESource("not-a-mac", -59, 10*time.Millisecond)
	_, err := s.Read(context.Background())
	assert.ErrorIs(t, err, sampler.ErrRawSampleUnavailable)
}

func TestIsValidMAC(t *testing.T) {
	assert.True(t, isValidMAC("AA:BB:CC:DD:EE:FF"))
	assert.True(t, isValidMAC("01:23:45:67:89:ab"))
	assert.False(t, isValidMAC("AA:BB:CC:DD:EE"))
	assert.False(t, isValidMAC("AA-BB-CC-DD-EE-FF"))
	assert.False(t, isValidMAC("GG:BB:CC:DD:EE:FF"))
}
