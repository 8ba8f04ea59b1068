package artemis

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"

	"github.com/artemis-hunt/artemis-go/pkg/artemis/session"
)

// replayBatch is the number of events folded per AddEvents call.
const replayBatch = 256

// ReplayFile aggregates a saved chat log into a finalized session without
// following it. It accepts the engine's options; those that only concern
// live tracking (intervals, saver, metrics, poll) are ignored.
//
// The session starts at the first event and ends at the last. A file with
// no events yields an empty, finalized session.
func ReplayFile(ctx context.Context, path string, opts ...Option) (*Session, error) {
	cfg := applyOptions(opts)
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	logger := cfg.logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if cfg.sessionID == "" {
		cfg.sessionID = uuid.NewString()
	}
	identifier, err := newIdentifier(cfg, logger)
	if err != nil {
		return nil, err
	}

	var (
		agg     *session.Aggregator
		pending []Event
	)
	fold := func() error {
		if len(pending) == 0 {
			return nil
		}
		if agg == nil {
			agg, err = newAggregator(cfg, identifier, logger, pending[0].Timestamp)
			if err != nil {
				return err
			}
		}
		_, _, err := agg.AddEvents(ctx, pending, cfg.profile)
		pending = pending[:0]
		return err
	}

	var last Event
	for ev, err := range ParseFile(ctx, path,
		WithParsePlayerName(cfg.playerName),
		WithParseLocation(cfg.location),
		WithParseSessionID(cfg.sessionID),
		WithParseIncludeRawLine(cfg.includeRawLine),
	) {
		if err != nil {
			return nil, err
		}
		pending = append(pending, ev)
		last = ev
		if len(pending) == replayBatch {
			if err := fold(); err != nil {
				return nil, err
			}
		}
	}
	if err := fold(); err != nil {
		return nil, err
	}
	if agg == nil {
		agg, err = newAggregator(cfg, identifier, logger, last.Timestamp)
		if err != nil {
			return nil, err
		}
	}

	final := agg.Finalize(last.Timestamp)
	logger.Debug("replay finished",
		"path", path,
		"events", len(final.Events),
		"kills", final.Stats.Kills,
	)
	return final, nil
}
