package wireless

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"trigator.klederson.com/internal/sampler"
)

// IWConfigSource reads the signal level and transmit power of the active
// link from iwconfig (wireless-tools). No root needed.
type IWConfigSource struct {
	iface   string
	timeout time.Duration
	command func(ctx context.Context, name string, args ...string) ([]byte, error)
}

// NewIWConfigSource creates a source for iface. An empty iface queries all
// interfaces and uses the first one that reports a signal level.
func NewIWConfigSource(iface string, timeout time.Duration) *IWConfigSource {
	return &IWConfigSource{
		iface:   iface,
		timeout: timeout,
		command: runCommand,
	}
}

// Read runs one iwconfig query.
func (s *IWConfigSource) Read(ctx context.Context) (sampler.Reading, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	args := []string{}
	if s.iface != "" {
		args = append(args, s.iface)
	}
	out, err := s.command(ctx, "iwconfig", args...)
	if err != nil {
		return sampler.Reading{}, fmt.Errorf("%w: iwconfig: %w", sampler.ErrRawSampleUnavailable, err)
	}

	r, ok := parseIWConfig(string(out))
	if !ok {
		return sampler.Reading{}, fmt.Errorf("%w: iwconfig: no signal level or tx power in output", sampler.ErrRawSampleUnavailable)
	}
	return r, nil
}

func runCommand(ctx context.Context, name string, args ...string) ([]byte, error) {
	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("%w: %s", err, msg)
		}
		return nil, err
	}
	return out, nil
}

// parseIWConfig extracts Tx-Power and Signal level from iwconfig output.
//
//	wlan0     IEEE 802.11  ESSID:"home"
//	          Bit Rate=72.2 Mb/s   Tx-Power=15 dBm
//	          Link Quality=60/70  Signal level=-50 dBm
//
// Only the first interface block carrying a signal level is used.
func parseIWConfig(output string) (sampler.Reading, bool) {
	var (
		r            sampler.Reading
		haveTx       bool
		haveRx       bool
		currentTx    float64
		currentHasTx bool
	)

	scanner := bufio.NewScanner(strings.NewReader(output))
	for scanner.Scan() {
		line := scanner.Text()

		// Non-indented lines start a new interface block
		if line != "" && line[0] != ' ' && line[0] != '\t' {
			if haveRx {
				break
			}
			currentHasTx = false
		}

		if v, ok := fieldValue(line, "Tx-Power="); ok {
			currentTx = v
			currentHasTx = true
		}
		if v, ok := fieldValue(line, "Signal level="); ok {
			r.RxPowerDBm = v
			haveRx = true
		}
		if haveRx && currentHasTx {
			r.TxPowerDBm = currentTx
			haveTx = true
		}
	}

	return r, haveTx && haveRx
}

// fieldValue parses the number after key, e.g. "Signal level=-50 dBm" or
// "Signal level=-50dBm". Relative values such as "level=60/100" are rejected.
func fieldValue(line, key string) (float64, bool) {
	idx := strings.Index(line, key)
	if idx < 0 {
		return 0, false
	}
	rest := line[idx+len(key):]
	if end := strings.IndexAny(rest, " \t"); end >= 0 {
		rest = rest[:end]
	}
	rest = strings.TrimSuffix(rest, "dBm")
	v, err := strconv.ParseFloat(rest, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// IWConfigAvailable checks if iwconfig is available on the system.
func IWConfigAvailable() bool {
	_, err := exec.LookPath("iwconfig")
	return err == nil
}
