package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/artemis-hunt/artemis-go/internal/config"
	"github.com/artemis-hunt/artemis-go/pkg/artemis"
)

var (
	// zones flags
	zonesFormat      string
	zonesPlayer      string
	zonesReference   string
	zonesMaxDistance float64
	zonesMinRadius   float64
)

var zonesCmd = &cobra.Command{
	Use:   "zones [file]",
	Short: "Cluster located kills of a chat log into hunting zones",
	Long: `Replay a chat log and group its located kills and deaths into hunting
zones, each with its kill count and profit.

Kills are only placed when a location link follows them closely, so post
your location regularly while hunting. With no argument the configured or
auto-detected chat log is used.

Examples:
  # Zones of the auto-detected chat log
  artemis zones --format pretty

  # Tighter zones
  artemis zones --max-distance 200 --min-radius 25 chat.log`,
	Args: cobra.MaximumNArgs(1),
	RunE: runZones,
}

func init() {
	zonesCmd.Flags().StringVarP(&zonesFormat, "format", "f", "jsonl",
		"Output format: jsonl, pretty")
	zonesCmd.Flags().StringVarP(&zonesPlayer, "player", "p", "",
		"Avatar name used to attribute location links")
	zonesCmd.Flags().StringVar(&zonesReference, "reference", "",
		"Reference data YAML used to identify unnamed kills")
	zonesCmd.Flags().Float64Var(&zonesMaxDistance, "max-distance", artemis.DefaultZoneGroupDistance,
		"Largest distance between a kill and a zone center")
	zonesCmd.Flags().Float64Var(&zonesMinRadius, "min-radius", artemis.DefaultZoneMinRadius,
		"Smallest reported zone radius")
}

func runZones(cmd *cobra.Command, args []string) error {
	if !ValidFormats[zonesFormat] {
		return fmt.Errorf("invalid format %q: must be one of: jsonl, pretty", zonesFormat)
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if flags.Changed("player") {
		cfg.PlayerName = zonesPlayer
	}
	if flags.Changed("reference") {
		cfg.ReferenceData = zonesReference
	}
	if flags.Changed("max-distance") {
		cfg.Zones.MaxGroupDistance = zonesMaxDistance
	}
	if flags.Changed("min-radius") {
		cfg.Zones.MinRadius = zonesMinRadius
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	s, err := replaySession(ctx, cfg, args)
	if err != nil {
		if errors.Is(err, context.Canceled) && ctx.Err() != nil {
			return nil
		}
		return err
	}

	zones := artemis.ClusterZones(s, cfg.Loadout, cfg.Zones.MaxGroupDistance, cfg.Zones.MinRadius)
	if len(zones) == 0 {
		fmt.Fprintln(os.Stderr, "no located kills")
		return nil
	}
	return OutputZones(zonesFormat, zones, os.Stdout)
}
