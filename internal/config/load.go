package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides, e.g. TRIGATOR_SAMPLING_COUNT.
const EnvPrefix = "TRIGATOR"

// Load reads the configuration from path (or the default search paths when
// path is empty), the environment and any flags already bound to v.
// A missing default config file is not an error.
func Load(v *viper.Viper, path string) (*Config, error) {
	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("trigator")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, "trigator"))
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := DefaultConfig()
	setDefaults(v, cfg)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	// A configured anchor list replaces the default one instead of merging.
	if v.InConfig("anchors") {
		cfg.Anchors = nil
	}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// setDefaults registers every scalar key so environment overrides are seen
// even when no config file mentions them.
func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("source", cfg.Source)
	v.SetDefault("interface", cfg.Interface)
	v.SetDefault("path_loss_exponent", cfg.PathLossExponent)
	v.SetDefault("sampling.count", cfg.Sampling.Count)
	v.SetDefault("sampling.interval", cfg.Sampling.Interval)
	v.SetDefault("ble.target", cfg.BLE.Target)
	v.SetDefault("ble.measured_power", cfg.BLE.MeasuredPower)
	v.SetDefault("ble.window", cfg.BLE.Window)
	v.SetDefault("radiotap.bssid", cfg.Radiotap.BSSID)
	v.SetDefault("radiotap.tx_power", cfg.Radiotap.TxPower)
	v.SetDefault("radiotap.window", cfg.Radiotap.Window)
	v.SetDefault("demo.target_x", cfg.Demo.TargetX)
	v.SetDefault("demo.target_y", cfg.Demo.TargetY)
	v.SetDefault("demo.seed", cfg.Demo.Seed)
	v.SetDefault("logging.level", cfg.Logging.Level)
	v.SetDefault("logging.file", cfg.Logging.File)
}
