package wireless

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcap"

	"trigator.klederson.com/internal/sampler"
)

// RadiotapSource captures 802.11 frames on a monitor-mode interface and reads
// the antenna signal of frames sent by one BSSID. The remote transmit power is
// not carried by the frames, so it comes from configuration.
type RadiotapSource struct {
	iface   string
	bssid   string
	txPower float64
	window  time.Duration
	logger  *slog.Logger

	mu     sync.Mutex
	handle *pcap.Handle
	source *gopacket.PacketSource
}

// NewRadiotapSource creates a capture source. The handle is opened on first Read.
// A nil logger discards capture setup diagnostics.
func NewRadiotapSource(iface, bssid string, txPower float64, window time.Duration, logger *slog.Logger) *RadiotapSource {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &RadiotapSource{
		iface:   iface,
		bssid:   strings.ToUpper(strings.TrimSpace(bssid)),
		txPower: txPower,
		window:  window,
		logger:  logger.With("iface", iface),
	}
}

func (s *RadiotapSource) open() error {
	if s.handle != nil {
		return nil
	}
	if !isValidMAC(s.bssid) {
		return fmt.Errorf("invalid BSSID %q", s.bssid)
	}

	inactive, err := pcap.NewInactiveHandle(s.iface)
	if err != nil {
		return fmt.Errorf("creating capture handle on %s: %w", s.iface, err)
	}
	defer inactive.CleanUp()

	// Interfaces already in monitor mode may refuse these; Activate and the
	// link type check below decide whether capture works.
	if err := inactive.SetRFMon(true); err != nil {
		s.logger.Debug("enabling rfmon failed", "error", err)
	}
	if err := inactive.SetSnapLen(512); err != nil {
		s.logger.Debug("setting snaplen failed", "error", err)
	}
	if err := inactive.SetPromisc(true); err != nil {
		s.logger.Debug("enabling promiscuous mode failed", "error", err)
	}
	if err := inactive.SetTimeout(100 * time.Millisecond); err != nil {
		s.logger.Debug("setting read timeout failed", "error", err)
	}

	handle, err := inactive.Activate()
	if err != nil {
		return fmt.Errorf("activating monitor capture on %s: %w", s.iface, err)
	}
	if handle.LinkType() != layers.LinkTypeIEEE80211Radio {
		handle.Close()
		return fmt.Errorf("%s is not delivering radiotap frames (link type %s); is it in monitor mode?", s.iface, handle.LinkType())
	}

	s.handle = handle
	s.source = gopacket.NewPacketSource(handle, handle.LinkType())
	s.source.DecodeOptions = gopacket.Lazy
	return nil
}

// Read returns the signal of the next frame from the BSSID captured within the
// window. Frames queued before Read was called are skipped.
func (s *RadiotapSource) Read(ctx context.Context) (sampler.Reading, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.open(); err != nil {
		return sampler.Reading{}, fmt.Errorf("%w: %w", sampler.ErrRawSampleUnavailable, err)
	}

	start := time.Now()
	deadline := start.Add(s.window)
	for time.Now().Before(deadline) {
		if err := ctx.Err(); err != nil {
			return sampler.Reading{}, err
		}
		packet, err := s.source.NextPacket()
		if err != nil {
			// Read timeouts: keep polling until the deadline
			continue
		}
		if rx, ok := frameSignal(packet, s.bssid, start); ok {
			return sampler.Reading{TxPowerDBm: s.txPower, RxPowerDBm: rx}, nil
		}
	}
	return sampler.Reading{}, fmt.Errorf("%w: no frame from %s within %s", sampler.ErrRawSampleUnavailable, s.bssid, s.window)
}

// frameSignal returns the radiotap antenna signal of packet if it was
// transmitted by bssid, carries a dBm signal field and was not captured before
// since. Packets without a capture timestamp are accepted.
func frameSignal(packet gopacket.Packet, bssid string, since time.Time) (float64, bool) {
	if md := packet.Metadata(); md != nil && !md.Timestamp.IsZero() && md.Timestamp.Before(since) {
		return 0, false
	}
	rtLayer := packet.Layer(layers.LayerTypeRadioTap)
	dotLayer := packet.Layer(layers.LayerTypeDot11)
	if rtLayer == nil || dotLayer == nil {
		return 0, false
	}
	rt := rtLayer.(*layers.RadioTap)
	dot11 := dotLayer.(*layers.Dot11)

	if !rt.Present.DBMAntennaSignal() {
		return 0, false
	}
	if !strings.EqualFold(dot11.Address2.String(), bssid) {
		return 0, false
	}
	return float64(rt.DBMAntennaSignal), true
}

// Close releases the capture handle.
func (s *RadiotapSource) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.handle != nil {
		s.handle.Close()
		s.handle = nil
		s.source = nil
	}
}
