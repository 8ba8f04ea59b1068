package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/artemis-hunt/artemis-go/internal/config"
	"github.com/artemis-hunt/artemis-go/internal/logfinder"
	"github.com/artemis-hunt/artemis-go/pkg/artemis"
)

var (
	// parse flags
	parseIncludeTypes []string
	parseExcludeTypes []string
	parseSince        string
	parseUntil        string
	parseFormat       string
	parsePlayer       string
	parseRaw          bool
	parseStopOnError  bool
)

var parseCmd = &cobra.Command{
	Use:   "parse [files...]",
	Short: "Parse chat log files (batch mode)",
	Long: `Parse chat log files and output events.

Unlike 'track', this command processes historical files without real-time
following and without aggregating a session. Files are read in the order
given; with no arguments the configured or auto-detected chat log is used.

Examples:
  # Parse the auto-detected chat log
  artemis parse

  # Filter by time range
  artemis parse --since "2025-03-01T18:00:00Z" --until "2025-03-01T20:00:00Z"

  # Filter by event type
  artemis parse --include-types mob_killed,loot_received

  # Human-readable output
  artemis parse --format pretty

  # Parse specific files
  artemis parse chat-2025-03-01.log chat-2025-03-02.log

  # Pipe to jq for filtering
  artemis parse | jq 'select(.type == "skill_gain") | .payload.amount'`,
	RunE: runParse,
}

func init() {
	parseCmd.Flags().StringSliceVar(&parseIncludeTypes, "include-types", nil,
		"Event types to include (comma-separated: mob_killed,loot_received)")
	parseCmd.Flags().StringSliceVar(&parseExcludeTypes, "exclude-types", nil,
		"Event types to exclude (comma-separated)")
	parseCmd.Flags().StringVar(&parseSince, "since", "",
		"Only events at/after timestamp (RFC3339 format, e.g., 2025-03-01T18:00:00Z)")
	parseCmd.Flags().StringVar(&parseUntil, "until", "",
		"Only events before timestamp (RFC3339 format)")
	parseCmd.Flags().StringVarP(&parseFormat, "format", "f", "jsonl",
		"Output format: jsonl, pretty")
	parseCmd.Flags().StringVarP(&parsePlayer, "player", "p", "",
		"Avatar name used to attribute location links")
	parseCmd.Flags().BoolVar(&parseRaw, "raw", false,
		"Include raw log lines in output")
	parseCmd.Flags().BoolVar(&parseStopOnError, "stop-on-error", false,
		"Stop on first malformed line instead of skipping")

	registerEventCompletions(parseCmd)
}

func runParse(cmd *cobra.Command, args []string) error {
	if !ValidFormats[parseFormat] {
		return fmt.Errorf("invalid format %q: must be one of: jsonl, pretty", parseFormat)
	}
	includes, excludes, err := eventTypeFilters(parseIncludeTypes, parseExcludeTypes)
	if err != nil {
		return err
	}
	sinceTime, untilTime, err := parseTimeRange(parseSince, parseUntil)
	if err != nil {
		return err
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("player") {
		cfg.PlayerName = parsePlayer
	}
	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	paths, err := logPaths(cfg, args)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	opts := []artemis.ParseOption{
		artemis.WithParsePlayerName(cfg.PlayerName),
		artemis.WithParseLocation(loc),
		artemis.WithParseIncludeRawLine(parseRaw),
		artemis.WithParseStopOnError(parseStopOnError),
	}
	if len(includes) > 0 || len(excludes) > 0 {
		opts = append(opts, artemis.WithParseFilter(includes, excludes))
	}
	if !sinceTime.IsZero() || !untilTime.IsZero() {
		opts = append(opts, artemis.WithParseTimeRange(sinceTime, untilTime))
	}

	for _, path := range paths {
		for ev, err := range artemis.ParseFile(ctx, path, opts...) {
			if err != nil {
				// Ctrl+C: exit silently
				if errors.Is(err, context.Canceled) && ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("parse error: %w", err)
			}

			if err := OutputEvent(parseFormat, ev, os.Stdout); err != nil {
				return fmt.Errorf("output error: %w", err)
			}
		}
	}

	return nil
}

// logPaths returns the explicit file arguments, or the configured or
// auto-detected chat log when there are none.
func logPaths(cfg *config.Config, args []string) ([]string, error) {
	if len(args) > 0 {
		return args, nil
	}
	path, err := logfinder.FindLogPath(cfg.LogPath)
	if err != nil {
		return nil, err
	}
	return []string{path}, nil
}

// parseTimeRange parses since and until strings into time.Time values.
func parseTimeRange(since, until string) (time.Time, time.Time, error) {
	var sinceTime, untilTime time.Time
	var err error

	if since != "" {
		sinceTime, err = time.Parse(time.RFC3339, since)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid --since format: %w (expected RFC3339, e.g., 2025-03-01T18:00:00Z)", err)
		}
	}

	if until != "" {
		untilTime, err = time.Parse(time.RFC3339, until)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid --until format: %w (expected RFC3339, e.g., 2025-03-01T18:00:00Z)", err)
		}
	}

	if !sinceTime.IsZero() && !untilTime.IsZero() && sinceTime.After(untilTime) {
		return time.Time{}, time.Time{}, fmt.Errorf("--since must be before --until")
	}

	return sinceTime, untilTime, nil
}
