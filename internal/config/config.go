package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"trigator.klederson.com/internal/trilat"
)

const (
	// Sampling limits
	MinSampleCount    = 1
	MaxSampleCount    = 20
	MinSampleInterval = 1 * time.Millisecond
	MaxSampleInterval = 2000 * time.Millisecond

	// UI adjustment steps
	ExponentStep     = 0.1
	IntervalStep     = 50 * time.Millisecond
	AnchorMoveStep   = 1.0
	AnchorMoveFast   = 10.0
	HistoryCapacity  = 64
	CommandTimeout   = 5 * time.Second // iwconfig invocation timeout
	TargetFPS        = 10
	PlaneAspectRatio = 0.5 // Terminal char aspect correction (chars are ~2:1 tall)

	// App
	AppName    = "TRI-GATOR"
	AppVersion = "1.0"
)

// Source kinds
const (
	SourceIWConfig = "iwconfig"
	SourceBLE      = "ble"
	SourceRadiotap = "radiotap"
	SourceDemo     = "demo"
)

// Config represents the complete application configuration.
type Config struct {
	Source           string         `mapstructure:"source" yaml:"source"`                         // Raw reading source
	Interface        string         `mapstructure:"interface" yaml:"interface"`                   // Wireless interface (iwconfig, radiotap)
	PathLossExponent float64        `mapstructure:"path_loss_exponent" yaml:"path_loss_exponent"` // Initial exponent
	Sampling         SamplingConfig `mapstructure:"sampling" yaml:"sampling"`
	Anchors          []AnchorConfig `mapstructure:"anchors" yaml:"anchors"`
	BLE              BLEConfig      `mapstructure:"ble" yaml:"ble"`
	Radiotap         RadiotapConfig `mapstructure:"radiotap" yaml:"radiotap"`
	Demo             DemoConfig     `mapstructure:"demo" yaml:"demo"`
	Logging          LoggingConfig  `mapstructure:"logging" yaml:"logging"`
}

// SamplingConfig controls one sampling run per anchor.
type SamplingConfig struct {
	Count    int           `mapstructure:"count" yaml:"count"`       // Readings per anchor (1-20)
	Interval time.Duration `mapstructure:"interval" yaml:"interval"` // Pause between readings (1ms-2s)
}

// AnchorConfig is the initial position of one anchor.
type AnchorConfig struct {
	X float64 `mapstructure:"x" yaml:"x"`
	Y float64 `mapstructure:"y" yaml:"y"`
}

// BLEConfig selects the beacon measured by the ble source.
type BLEConfig struct {
	Target        string        `mapstructure:"target" yaml:"target"`                 // Beacon address AA:BB:CC:DD:EE:FF
	MeasuredPower float64       `mapstructure:"measured_power" yaml:"measured_power"` // Fallback Tx power (RSSI at 1 m)
	Window        time.Duration `mapstructure:"window" yaml:"window"`                 // Max wait per reading
}

// RadiotapConfig selects the access point measured by the radiotap source.
type RadiotapConfig struct {
	BSSID   string        `mapstructure:"bssid" yaml:"bssid"`
	TxPower float64       `mapstructure:"tx_power" yaml:"tx_power"` // Assumed AP transmit power in dBm
	Window  time.Duration `mapstructure:"window" yaml:"window"`
}

// DemoConfig places the simulated transmitter.
type DemoConfig struct {
	TargetX float64 `mapstructure:"target_x" yaml:"target_x"`
	TargetY float64 `mapstructure:"target_y" yaml:"target_y"`
	Seed    int64   `mapstructure:"seed" yaml:"seed"` // 0 = random
}

// LoggingConfig contains logging configuration parameters.
type LoggingConfig struct {
	Level string `mapstructure:"level" yaml:"level"` // debug, info, warn, error
	File  string `mapstructure:"file" yaml:"file"`   // Empty disables logging
}

// DefaultConfig returns a configuration with sensible default values.
func DefaultConfig() *Config {
	anchors := trilat.DefaultAnchors()
	cfg := &Config{
		Source:           SourceIWConfig,
		Interface:        "",
		PathLossExponent: trilat.DefaultPathLossExponent,
		Sampling: SamplingConfig{
			Count:    5,
			Interval: 100 * time.Millisecond,
		},
		BLE: BLEConfig{
			MeasuredPower: -59, // Typical iBeacon RSSI at 1 m
			Window:        2 * time.Second,
		},
		Radiotap: RadiotapConfig{
			TxPower: 20,
			Window:  time.Second,
		},
		Demo: DemoConfig{
			TargetX: 62,
			TargetY: 35,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
	for _, a := range anchors {
		cfg.Anchors = append(cfg.Anchors, AnchorConfig{X: a.X, Y: a.Y})
	}
	return cfg
}

// Validate checks the configuration for values the core cannot work with.
func (c *Config) Validate() error {
	switch c.Source {
	case SourceIWConfig, SourceDemo:
	case SourceBLE:
		if c.BLE.Target == "" {
			return fmt.Errorf("ble source needs ble.target (beacon address)")
		}
	case SourceRadiotap:
		if c.Interface == "" {
			return fmt.Errorf("radiotap source needs an interface in monitor mode")
		}
		if c.Radiotap.BSSID == "" {
			return fmt.Errorf("radiotap source needs radiotap.bssid")
		}
	default:
		return fmt.Errorf("invalid source: %s (must be '%s', '%s', '%s' or '%s')",
			c.Source, SourceIWConfig, SourceBLE, SourceRadiotap, SourceDemo)
	}

	if err := trilat.ValidateExponent(c.PathLossExponent); err != nil {
		return err
	}
	if c.Sampling.Count < MinSampleCount || c.Sampling.Count > MaxSampleCount {
		return fmt.Errorf("invalid sample count: %d (must be between %d and %d)", c.Sampling.Count, MinSampleCount, MaxSampleCount)
	}
	if c.Sampling.Interval < MinSampleInterval || c.Sampling.Interval > MaxSampleInterval {
		return fmt.Errorf("invalid sample interval: %s (must be between %s and %s)", c.Sampling.Interval, MinSampleInterval, MaxSampleInterval)
	}
	if len(c.Anchors) != 3 {
		return fmt.Errorf("exactly 3 anchors required, got %d", len(c.Anchors))
	}
	if _, err := ParseLevel(c.Logging.Level); err != nil {
		return err
	}
	return nil
}

// AnchorPoints converts the configured anchors into unmeasured anchor points.
// It assumes Validate has passed.
func (c *Config) AnchorPoints() [3]trilat.AnchorPoint {
	var anchors [3]trilat.AnchorPoint
	for i := range anchors {
		anchors[i] = trilat.AnchorPoint{X: c.Anchors[i].X, Y: c.Anchors[i].Y}
	}
	return anchors
}

// ParseLevel maps a logging level name onto slog.
func ParseLevel(level string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.ToUpper(level))); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log level: %s (must be debug, info, warn or error)", level)
	}
	return l, nil
}

// ClampCount keeps a sample count within the supported range.
func ClampCount(n int) int {
	return min(max(n, MinSampleCount), MaxSampleCount)
}

// ClampInterval keeps a sample interval within the supported range.
func ClampInterval(d time.Duration) time.Duration {
	return min(max(d, MinSampleInterval), MaxSampleInterval)
}

// ClampExponent keeps a path-loss exponent within the supported range.
func ClampExponent(n float64) float64 {
	return min(max(n, trilat.MinPathLossExponent), trilat.MaxPathLossExponent)
}
