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
	// replay flags
	replayFormat     string
	replayPlayer     string
	replayReference  string
	replaySessionDir string
)

// validReplayFormats lists the accepted --format values for replay.
var validReplayFormats = map[string]bool{
	"summary": true,
	"json":    true,
}

var replayCmd = &cobra.Command{
	Use:   "replay [file]",
	Short: "Aggregate a saved chat log into a session",
	Long: `Replay a chat log from start to end through the session aggregator and
print the finished session.

The session starts at the first event and ends at the last, so durations
and profit per hour reflect the time actually spent hunting. With no
argument the configured or auto-detected chat log is used.

Examples:
  # Summary of the auto-detected chat log
  artemis replay

  # Full session as JSON, including every event
  artemis replay --format json chat.log > session.json

  # Identify unnamed kills and save the session
  artemis replay --reference spawns.yaml --session-dir ./sessions chat.log`,
	Args: cobra.MaximumNArgs(1),
	RunE: runReplay,
}

func init() {
	replayCmd.Flags().StringVarP(&replayFormat, "format", "f", "summary",
		"Output format: summary, json")
	replayCmd.Flags().StringVarP(&replayPlayer, "player", "p", "",
		"Avatar name used to attribute location links")
	replayCmd.Flags().StringVar(&replayReference, "reference", "",
		"Reference data YAML used to identify unnamed kills")
	replayCmd.Flags().StringVar(&replaySessionDir, "session-dir", "",
		"Directory to save the replayed session to")
}

func runReplay(cmd *cobra.Command, args []string) error {
	if !validReplayFormats[replayFormat] {
		return fmt.Errorf("invalid format %q: must be one of: summary, json", replayFormat)
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if flags.Changed("player") {
		cfg.PlayerName = replayPlayer
	}
	if flags.Changed("reference") {
		cfg.ReferenceData = replayReference
	}
	if flags.Changed("session-dir") {
		cfg.SessionDir = replaySessionDir
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

	if cfg.SessionDir != "" {
		saver := artemis.NewFileSaver(cfg.SessionDir)
		if err := saver.Save(ctx, s); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "saved %s\n", saver.Path(s.ID))
	}

	switch replayFormat {
	case "json":
		return OutputJSON(s, os.Stdout)
	default:
		return OutputSummary(s, os.Stdout)
	}
}

// replaySession resolves the chat log and aggregates it with the
// configured loadout and reference data.
func replaySession(ctx context.Context, cfg *config.Config, args []string) (*artemis.Session, error) {
	paths, err := logPaths(cfg, args)
	if err != nil {
		return nil, err
	}
	opts, err := engineOptions(cfg, newLogger(cfg.LogLevel, verbose))
	if err != nil {
		return nil, err
	}
	return artemis.ReplayFile(ctx, paths[0], opts...)
}
