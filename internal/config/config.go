// Package config defines the tracker configuration and how it is loaded.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/artemis-hunt/artemis-go/pkg/artemis/session"
)

// EnvPrefix prefixes every environment variable read by Load.
// Nested keys use a double underscore: ARTEMIS_IDENTIFY__MIN_CONFIDENCE.
const EnvPrefix = "ARTEMIS_"

// EnvConfigFile names the config file when no path is given to Load.
const EnvConfigFile = EnvPrefix + "CONFIG"

// Config is the tracker configuration.
type Config struct {
	// LogPath is the chat log to follow. Empty means auto-detect.
	LogPath string `koanf:"log_path"`

	// PlayerName is the avatar name used to attribute location links and globals.
	PlayerName string `koanf:"player_name"`

	// Timezone is the IANA zone chat timestamps are written in. Empty means local.
	Timezone string `koanf:"timezone"`

	// ReferenceData is a YAML file of spawns and species. Empty disables identification.
	ReferenceData string `koanf:"reference_data"`
	CacheSize     int    `koanf:"cache_size"`

	// SessionDir receives session snapshots. Empty disables saving.
	SessionDir string `koanf:"session_dir"`

	LogLevel    string `koanf:"log_level"`
	MetricsAddr string `koanf:"metrics_addr"`

	Poll      bool `koanf:"poll"`
	FromStart bool `koanf:"from_start"`

	Debounce     time.Duration `koanf:"debounce"`
	PollInterval time.Duration `koanf:"poll_interval"`
	TickInterval time.Duration `koanf:"tick_interval"`
	SaveInterval time.Duration `koanf:"save_interval"`

	RetroWindow         time.Duration `koanf:"retro_window"`
	RetroScanLimit      int           `koanf:"retro_scan_limit"`
	FirstShotPingWindow time.Duration `koanf:"first_shot_ping_window"`

	Identify Identify `koanf:"identify"`
	Zones    Zones    `koanf:"zones"`

	Loadout session.CostProfile `koanf:"loadout"`
}

// Identify holds the mob identification thresholds.
type Identify struct {
	MaxAcceptRadius float64 `koanf:"max_accept_radius"`
	HealthTolerance float64 `koanf:"health_tolerance"`
	MinConfidence   float64 `koanf:"min_confidence"`
	LootBoost       float64 `koanf:"loot_boost"`
}

// Zones holds the zone clustering parameters.
type Zones struct {
	MaxGroupDistance float64 `koanf:"max_group_distance"`
	MinRadius        float64 `koanf:"min_radius"`
}

// New returns a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:       "info",
		CacheSize:      256,
		FromStart:      true,
		Debounce:       250 * time.Millisecond,
		PollInterval:   time.Second,
		TickInterval:   time.Second,
		SaveInterval:   30 * time.Second,
		RetroWindow:    session.DefaultRetroWindow,
		RetroScanLimit: session.DefaultRetroScanLimit,
		Identify: Identify{
			MaxAcceptRadius: 500,
			HealthTolerance: 0.2,
			MinConfidence:   0.55,
			LootBoost:       0.15,
		},
		Zones: Zones{
			MaxGroupDistance: 500,
			MinRadius:        50,
		},
		Loadout: session.CostProfile{ID: "default", Name: "Default"},
	}
}

// Load builds a Config by layering, from low to high precedence:
//  1. defaults (New)
//  2. the YAML file at path, or at $ARTEMIS_CONFIG when path is empty
//  3. ARTEMIS_* environment variables
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if path == "" {
		path = os.Getenv(EnvConfigFile)
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("loading config %s: %w", path, err)
		}
	}

	envProvider := env.Provider(EnvPrefix, ".", func(s string) string {
		s = strings.TrimPrefix(s, EnvPrefix)
		s = strings.ToLower(s)
		return strings.ReplaceAll(s, "__", ".")
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("loading environment: %w", err)
	}

	cfg := New()
	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports every invalid setting.
func (c *Config) Validate() error {
	var errs []error
	for _, d := range []struct {
		name string
		v    time.Duration
	}{
		{"debounce", c.Debounce},
		{"poll_interval", c.PollInterval},
		{"tick_interval", c.TickInterval},
		{"save_interval", c.SaveInterval},
		{"retro_window", c.RetroWindow},
	} {
		if d.v <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive", d.name))
		}
	}
	if c.FirstShotPingWindow < 0 {
		errs = append(errs, errors.New("first_shot_ping_window must not be negative"))
	}
	if c.RetroScanLimit <= 0 {
		errs = append(errs, errors.New("retro_scan_limit must be positive"))
	}
	if c.Identify.MinConfidence <= 0 || c.Identify.MinConfidence > 1 {
		errs = append(errs, errors.New("identify.min_confidence must be in (0, 1]"))
	}
	if c.Identify.MaxAcceptRadius <= 0 || c.Identify.HealthTolerance <= 0 {
		errs = append(errs, errors.New("identify.max_accept_radius and identify.health_tolerance must be positive"))
	}
	if c.Zones.MaxGroupDistance <= 0 || c.Zones.MinRadius < 0 {
		errs = append(errs, errors.New("zones.max_group_distance must be positive and zones.min_radius not negative"))
	}
	if _, err := c.Location(); err != nil {
		errs = append(errs, err)
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("log_level %q: want debug, info, warn or error", c.LogLevel))
	}
	return errors.Join(errs...)
}

// Location resolves Timezone.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" || strings.EqualFold(c.Timezone, "local") {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}
