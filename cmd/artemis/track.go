package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/artemis-hunt/artemis-go/internal/config"
	"github.com/artemis-hunt/artemis-go/pkg/artemis"
)

var (
	// track flags
	trackLogPath      string
	trackPlayer       string
	trackFormat       string
	trackIncludeTypes []string
	trackExcludeTypes []string
	trackRaw          bool
	trackFromStart    bool
	trackPoll         bool
	trackSessionDir   string
	trackReference    string
	trackMetricsAddr  string
)

// metricsShutdownTimeout bounds the metrics server's graceful shutdown.
const metricsShutdownTimeout = 5 * time.Second

var trackCmd = &cobra.Command{
	Use:   "track",
	Short: "Follow the chat log and output hunting events",
	Long: `Follow the Entropia Universe chat log in real time, aggregate it into a
hunting session and output parsed events.

Events are output as JSON Lines by default (one JSON object per line),
which makes it easy to process with tools like jq. A session summary is
printed to stderr on exit.

Examples:
  # Follow the auto-detected chat log
  artemis track

  # Specify the chat log and avatar name
  artemis track --log-path "C:\Users\me\Documents\Entropia Universe\chat.log" --player "Jane Doe"

  # Output only kills and loot
  artemis track --include-types mob_killed,loot_received

  # Human-readable output, ignoring what is already in the log
  artemis track --format pretty --from-start=false

  # Save the session every 30s and expose Prometheus metrics
  artemis track --session-dir ./sessions --metrics-addr :9090

  # Pipe to jq for filtering
  artemis track | jq 'select(.type == "global_announced")'`,
	RunE: runTrack,
}

func init() {
	trackCmd.Flags().StringVarP(&trackLogPath, "log-path", "l", "",
		"Chat log file or directory (auto-detected if not specified)")
	trackCmd.Flags().StringVarP(&trackPlayer, "player", "p", "",
		"Avatar name used to attribute location links")
	trackCmd.Flags().StringVarP(&trackFormat, "format", "f", "jsonl",
		"Output format: jsonl, pretty")
	trackCmd.Flags().StringSliceVar(&trackIncludeTypes, "include-types", nil,
		"Event types to include (comma-separated: mob_killed,loot_received)")
	trackCmd.Flags().StringSliceVar(&trackExcludeTypes, "exclude-types", nil,
		"Event types to exclude (comma-separated)")
	trackCmd.Flags().BoolVar(&trackRaw, "raw", false,
		"Include raw log lines in output")
	trackCmd.Flags().BoolVar(&trackFromStart, "from-start", true,
		"Read the existing log content before following")
	trackCmd.Flags().BoolVar(&trackPoll, "poll", false,
		"Poll the log instead of using file system notifications")
	trackCmd.Flags().StringVar(&trackSessionDir, "session-dir", "",
		"Directory to save session snapshots to")
	trackCmd.Flags().StringVar(&trackReference, "reference", "",
		"Reference data YAML used to identify unnamed kills")
	trackCmd.Flags().StringVar(&trackMetricsAddr, "metrics-addr", "",
		"Serve Prometheus metrics on this address (e.g. :9090)")

	registerEventCompletions(trackCmd)
}

// applyTrackFlags overrides config values with the flags the user set.
func applyTrackFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("log-path") {
		cfg.LogPath = trackLogPath
	}
	if flags.Changed("player") {
		cfg.PlayerName = trackPlayer
	}
	if flags.Changed("from-start") {
		cfg.FromStart = trackFromStart
	}
	if flags.Changed("poll") {
		cfg.Poll = trackPoll
	}
	if flags.Changed("session-dir") {
		cfg.SessionDir = trackSessionDir
	}
	if flags.Changed("reference") {
		cfg.ReferenceData = trackReference
	}
	if flags.Changed("metrics-addr") {
		cfg.MetricsAddr = trackMetricsAddr
	}
}

func runTrack(cmd *cobra.Command, args []string) error {
	if !ValidFormats[trackFormat] {
		return fmt.Errorf("invalid format %q: must be one of: jsonl, pretty", trackFormat)
	}
	includes, excludes, err := eventTypeFilters(trackIncludeTypes, trackExcludeTypes)
	if err != nil {
		return err
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	applyTrackFlags(cmd, cfg)
	logger := newLogger(cfg.LogLevel, verbose)

	opts, err := engineOptions(cfg, logger)
	if err != nil {
		return err
	}
	if trackRaw {
		opts = append(opts, artemis.WithIncludeRawLine(true))
	}
	if len(includes) > 0 {
		opts = append(opts, artemis.WithIncludeTypes(includes...))
	}
	if len(excludes) > 0 {
		opts = append(opts, artemis.WithExcludeTypes(excludes...))
	}
	var registry *prometheus.Registry
	if cfg.MetricsAddr != "" {
		registry = prometheus.NewRegistry()
		opts = append(opts, artemis.WithMetrics(registry))
	}

	engine, err := artemis.NewEngine(opts...)
	if err != nil {
		return err
	}
	logger.Info("tracking", "path", engine.LogPath(), "session", engine.SessionID())

	ctx, stop := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	updates, errs, err := engine.Start(gctx)
	if err != nil {
		return err
	}

	g.Go(func() error {
		return outputUpdates(updates, errs, trackFormat, os.Stdout, os.Stderr)
	})

	if registry != nil {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry}))
		srv := &http.Server{Addr: cfg.MetricsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

		g.Go(func() error {
			logger.Info("serving metrics", "addr", cfg.MetricsAddr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("metrics server: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), metricsShutdownTimeout)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
	}

	runErr := g.Wait()

	// A failed final save was already reported on the error channel.
	final, _ := engine.Stop()
	if final != nil {
		if err := OutputSummary(final, os.Stderr); err != nil {
			return err
		}
	}
	return runErr
}

// outputUpdates writes every event of every update until the engine closes
// its channels. Errors from the engine are warnings on errOut.
func outputUpdates(updates <-chan artemis.Update, errs <-chan error, format string, out, errOut io.Writer) error {
	for updates != nil || errs != nil {
		select {
		case u, ok := <-updates:
			if !ok {
				updates = nil
				continue
			}
			if u.Truncated {
				fmt.Fprintln(errOut, "notice: chat log was truncated or replaced")
			}
			for _, ev := range u.Events {
				if err := OutputEvent(format, ev, out); err != nil {
					return fmt.Errorf("output error: %w", err)
				}
			}
			for _, ev := range u.Patched {
				if err := OutputPatched(format, ev, out); err != nil {
					return fmt.Errorf("output error: %w", err)
				}
			}
			if u.NeedsLocationPing {
				fmt.Fprintln(errOut, "hint: post a location link to place your last kill")
			}

		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			fmt.Fprintf(errOut, "warning: %v\n", err)
		}
	}
	return nil
}
