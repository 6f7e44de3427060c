package trilat

import (
	"fmt"
	"math"
)

// Distance estimates the transmitter distance from one anchor using the
// log-distance path loss model.
// Formula: d = 10^((txPower - rxPower) / (10 * n))
func Distance(m Measurement, n float64) (float64, error) {
	if !m.Complete() {
		return 0, fmt.Errorf("%w: %s not set", ErrMissingMeasurement, missingField(&m))
	}
	return math.Pow(10, (*m.TxPowerDBm-*m.RxPowerDBm)/(10*n)), nil
}

// ReceivedPower is the inverse of Distance: the level a receiver would see
// at distance d from a transmitter of txDBm.
func ReceivedPower(txDBm, d, n float64) float64 {
	return txDBm - 10*n*math.Log10(d)
}

// ValidateExponent checks n against [MinPathLossExponent, MaxPathLossExponent].
func ValidateExponent(n float64) error {
	if math.IsNaN(n) || n < MinPathLossExponent || n > MaxPathLossExponent {
		return fmt.Errorf("%w: %g (must be between %.1f and %.1f)",
			ErrInvalidExponent, n, MinPathLossExponent, MaxPathLossExponent)
	}
	return nil
}

func missingField(m *Measurement) string {
	switch {
	case m == nil:
		return "measurement"
	case m.TxPowerDBm == nil:
		return "transmit power"
	case m.RxPowerDBm == nil:
		return "received power"
	}
	return ""
}
