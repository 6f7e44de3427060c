package trilat

import "fmt"

// Path-loss exponent bounds. Free space is 2; dense indoor environments reach 4-5.
const (
	MinPathLossExponent     = 2.0
	MaxPathLossExponent     = 5.0
	DefaultPathLossExponent = 2.5
)

// Measurement is the averaged radio observation taken at one anchor.
// Both fields must be set before the solver can use it.
type Measurement struct {
	TxPowerDBm *float64 // Transmit power in dBm
	RxPowerDBm *float64 // Received signal level in dBm
}

// NewMeasurement returns a fully populated measurement.
func NewMeasurement(txDBm, rxDBm float64) Measurement {
	return Measurement{TxPowerDBm: &txDBm, RxPowerDBm: &rxDBm}
}

// Complete reports whether both powers are present.
func (m *Measurement) Complete() bool {
	return m != nil && m.TxPowerDBm != nil && m.RxPowerDBm != nil
}

func (m Measurement) String() string {
	return fmt.Sprintf("tx=%s rx=%s", formatDBm(m.TxPowerDBm), formatDBm(m.RxPowerDBm))
}

// AnchorPoint is one of the three known test locations.
type AnchorPoint struct {
	X, Y        float64
	Measurement *Measurement
}

// Measured reports whether the anchor carries a complete measurement.
func (a *AnchorPoint) Measured() bool {
	return a.Measurement.Complete()
}

// Location is an estimated transmitter position in the anchors' plane.
type Location struct {
	X, Y float64
}

func (l Location) String() string {
	return fmt.Sprintf("(%.2f, %.2f)", l.X, l.Y)
}

// DefaultAnchors returns the default triangle layout with no measurements.
func DefaultAnchors() [3]AnchorPoint {
	return [3]AnchorPoint{
		{X: 0, Y: 0},   // Bottom left
		{X: 100, Y: 0}, // Bottom right
		{X: 50, Y: 86}, // Top
	}
}

// Ready reports whether all three anchors are measured and a solve may be attempted.
func Ready(anchors [3]AnchorPoint) bool {
	for i := range anchors {
		if !anchors[i].Measured() {
			return false
		}
	}
	return true
}

func formatDBm(v *float64) string {
	if v == nil {
		return "?"
	}
	return fmt.Sprintf("%.1fdBm", *v)
}
