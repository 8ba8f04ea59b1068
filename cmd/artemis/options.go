package main

import (
	"log/slog"

	"github.com/artemis-hunt/artemis-go/internal/config"
	"github.com/artemis-hunt/artemis-go/pkg/artemis"
)

// engineOptions translates a loaded config into engine options.
func engineOptions(cfg *config.Config, logger *slog.Logger) ([]artemis.Option, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	opts := []artemis.Option{
		artemis.WithLogger(logger),
		artemis.WithPlayerName(cfg.PlayerName),
		artemis.WithLocation(loc),
		artemis.WithPoll(cfg.Poll),
		artemis.WithFromStart(cfg.FromStart),
		artemis.WithDebounce(cfg.Debounce),
		artemis.WithPollInterval(cfg.PollInterval),
		artemis.WithTickInterval(cfg.TickInterval),
		artemis.WithSaveInterval(cfg.SaveInterval),
		artemis.WithRetroWindow(cfg.RetroWindow),
		artemis.WithRetroScanLimit(cfg.RetroScanLimit),
		artemis.WithFirstShotPingWindow(cfg.FirstShotPingWindow),
		artemis.WithCostProfile(cfg.Loadout),
		artemis.WithCacheSize(cfg.CacheSize),
		artemis.WithIdentifyConfig(artemis.IdentifyConfig{
			MaxAcceptRadius: cfg.Identify.MaxAcceptRadius,
			HealthTolerance: cfg.Identify.HealthTolerance,
			MinConfidence:   cfg.Identify.MinConfidence,
			LootBoost:       cfg.Identify.LootBoost,
		}),
	}
	if cfg.LogPath != "" {
		opts = append(opts, artemis.WithLogPath(cfg.LogPath))
	}
	if cfg.ReferenceData != "" {
		opts = append(opts, artemis.WithReferenceFile(cfg.ReferenceData))
	}
	if cfg.SessionDir != "" {
		opts = append(opts, artemis.WithSaver(artemis.NewFileSaver(cfg.SessionDir)))
	}
	return opts, nil
}
