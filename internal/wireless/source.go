// Package wireless provides raw signal readings from the platform's radios.
package wireless

import (
	"fmt"
	"log/slog"

	"trigator.klederson.com/internal/config"
	"trigator.klederson.com/internal/sampler"
	"trigator.klederson.com/internal/trilat"
)

// Positioner is implemented by sources that simulate the receiver position.
type Positioner interface {
	MoveTo(x, y float64)
}

// Handle is an opened source and the function that releases it.
type Handle struct {
	Source sampler.Source
	Name   string // what the status bar shows, e.g. "iwconfig wlan0"
	Close  func()
}

// Open builds the source named by cfg.Source. logger receives source
// diagnostics and may be nil.
func Open(cfg *config.Config, logger *slog.Logger) (*Handle, error) {
	switch cfg.Source {
	case config.SourceIWConfig:
		if !IWConfigAvailable() {
			return nil, fmt.Errorf("iwconfig not found in PATH (install wireless-tools or use --demo)")
		}
		name := "iwconfig"
		if cfg.Interface != "" {
			name += " " + cfg.Interface
		}
		return &Handle{
			Source: NewIWConfigSource(cfg.Interface, config.CommandTimeout),
			Name:   name,
			Close:  func() {},
		}, nil

	case config.SourceBLE:
		s := NewBLESource(cfg.BLE.Target, cfg.BLE.MeasuredPower, cfg.BLE.Window)
		return &Handle{Source: s, Name: "ble " + s.target, Close: s.Stop}, nil

	case config.SourceRadiotap:
		s := NewRadiotapSource(cfg.Interface, cfg.Radiotap.BSSID, cfg.Radiotap.TxPower, cfg.Radiotap.Window, logger)
		return &Handle{Source: s, Name: "radiotap " + cfg.Interface, Close: s.Close}, nil

	case config.SourceDemo:
		target := trilat.Location{X: cfg.Demo.TargetX, Y: cfg.Demo.TargetY}
		s := NewMockSource(target, cfg.PathLossExponent, cfg.Demo.Seed)
		return &Handle{Source: s, Name: "demo", Close: func() {}}, nil
	}
	return nil, fmt.Errorf("unknown source %q", cfg.Source)
}
