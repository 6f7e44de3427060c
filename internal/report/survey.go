// Package report solves recorded surveys and prints the result as a table.
package report

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"trigator.klederson.com/internal/trilat"
)

// ErrInvalidSurvey means a survey file could not be used as a round.
var ErrInvalidSurvey = errors.New("invalid survey file")

// Survey is a recorded estimation round.
type Survey struct {
	Name     string         `yaml:"name"`
	Exponent *float64       `yaml:"exponent"` // optional, overrides the configured exponent
	Anchors  []AnchorRecord `yaml:"anchors"`
}

// AnchorRecord is one anchor position with its averaged powers. Either power
// may be left out to record an unmeasured anchor.
type AnchorRecord struct {
	X  float64  `yaml:"x"`
	Y  float64  `yaml:"y"`
	TX *float64 `yaml:"tx"`
	RX *float64 `yaml:"rx"`
}

// LoadSurvey reads a YAML survey file.
func LoadSurvey(path string) (*Survey, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read survey: %w", err)
	}
	return ParseSurvey(data)
}

// ParseSurvey decodes a YAML survey.
func ParseSurvey(data []byte) (*Survey, error) {
	var s Survey
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSurvey, err)
	}
	if len(s.Anchors) != 3 {
		return nil, fmt.Errorf("%w: exactly 3 anchors required, got %d", ErrInvalidSurvey, len(s.Anchors))
	}
	return &s, nil
}

// AnchorPoints converts the records into solver input.
func (s *Survey) AnchorPoints() [3]trilat.AnchorPoint {
	var anchors [3]trilat.AnchorPoint
	for i, rec := range s.Anchors[:3] {
		anchors[i] = trilat.AnchorPoint{X: rec.X, Y: rec.Y}
		if rec.TX != nil || rec.RX != nil {
			anchors[i].Measurement = &trilat.Measurement{TxPowerDBm: rec.TX, RxPowerDBm: rec.RX}
		}
	}
	return anchors
}

// ExponentOr returns the survey's exponent, or fallback when it has none.
func (s *Survey) ExponentOr(fallback float64) float64 {
	if s.Exponent != nil {
		return *s.Exponent
	}
	return fallback
}
