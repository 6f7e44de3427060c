package wireless

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"tinygo.org/x/bluetooth"

	"trigator.klederson.com/internal/sampler"
)

// adTypeTxPowerLevel is the GAP advertising data type for "Tx Power Level".
const adTypeTxPowerLevel = 0x0A

type advertisement struct {
	rssi    float64
	txPower *float64
	at      time.Time // when it was received
}

// BLESource measures a BLE beacon: the RSSI of its advertisements is the
// received power; the advertised Tx Power Level is used as transmit power,
// falling back to the configured power at 1 m.
type BLESource struct {
	adapter       *bluetooth.Adapter
	target        string
	measuredPower float64
	window        time.Duration

	startOnce sync.Once
	startErr  error
	updates   chan advertisement
	running   atomic.Bool
}

// NewBLESource creates a source for the beacon with the given address.
// window bounds how long one Read waits for an advertisement.
func NewBLESource(target string, measuredPower float64, window time.Duration) *BLESource {
	return &BLESource{
		adapter:       bluetooth.DefaultAdapter,
		target:        strings.ToUpper(strings.TrimSpace(target)),
		measuredPower: measuredPower,
		window:        window,
		updates:       make(chan advertisement, 1),
	}
}

func (s *BLESource) start() {
	if !isValidMAC(s.target) {
		s.startErr = fmt.Errorf("invalid beacon address %q", s.target)
		return
	}
	if err := s.adapter.Enable(); err != nil {
		s.startErr = fmt.Errorf("failed to enable BLE adapter: %w (try running with sudo or setcap cap_net_admin+ep)", err)
		return
	}

	s.running.Store(true)
	go func() {
		_ = s.adapter.Scan(func(adapter *bluetooth.Adapter, result bluetooth.ScanResult) {
			if !s.running.Load() {
				return
			}
			if !strings.EqualFold(result.Address.String(), s.target) {
				return
			}
			adv := advertisement{rssi: float64(result.RSSI), at: time.Now()}
			if tx, ok := parseTxPowerLevel(result.Bytes()); ok {
				v := float64(tx)
				adv.txPower = &v
			}
			s.publish(adv)
		})
	}()
}

// publish keeps only the most recent advertisement.
func (s *BLESource) publish(adv advertisement) {
	for {
		select {
		case s.updates <- adv:
			return
		default:
		}
		select {
		case <-s.updates:
		default:
		}
	}
}

// Read waits up to the configured window for an advertisement from the beacon
// received after Read was called. Older advertisements were taken elsewhere
// and are dropped.
func (s *BLESource) Read(ctx context.Context) (sampler.Reading, error) {
	s.startOnce.Do(s.start)
	if s.startErr != nil {
		return sampler.Reading{}, fmt.Errorf("%w: %w", sampler.ErrRawSampleUnavailable, s.startErr)
	}

	start := time.Now()
	timer := time.NewTimer(s.window)
	defer timer.Stop()

	for {
		select {
		case adv := <-s.updates:
			if adv.at.Before(start) {
				continue
			}
			return s.reading(adv), nil
		case <-timer.C:
			return sampler.Reading{}, fmt.Errorf("%w: no advertisement from %s within %s",
				sampler.ErrRawSampleUnavailable, s.target, s.window)
		case <-ctx.Done():
			return sampler.Reading{}, ctx.Err()
		}
	}
}

func (s *BLESource) reading(adv advertisement) sampler.Reading {
	tx := s.measuredPower
	if adv.txPower != nil {
		tx = *adv.txPower
	}
	return sampler.Reading{TxPowerDBm: tx, RxPowerDBm: adv.rssi}
}

// Stop halts the BLE scan.
func (s *BLESource) Stop() {
	if !s.running.CompareAndSwap(true, false) {
		return
	}
	_ = s.adapter.StopScan()
}

// parseTxPowerLevel walks raw advertising data (length, type, value...) and
// returns the Tx Power Level field if present.
func parseTxPowerLevel(payload []byte) (int8, bool) {
	for i := 0; i < len(payload); {
		length := int(payload[i])
		if length == 0 || i+1+length > len(payload) {
			return 0, false
		}
		if payload[i+1] == adTypeTxPowerLevel && length >= 2 {
			return int8(payload[i+2]), true
		}
		i += 1 + length
	}
	return 0, false
}

func isValidMAC(mac string) bool {
	if len(mac) != 17 {
		return false
	}
	for i, c := range mac {
		if (i+1)%3 == 0 {
			if c != ':' {
				return false
			}
		} else {
			if !((c >= '0' && c <= '9') || (c >= 'A' && c <= 'F') || (c >= 'a' && c <= 'f')) {
				return false
			}
		}
	}
	return true
}
