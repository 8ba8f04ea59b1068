package artemis

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/artemis-hunt/artemis-go/internal/batcher"
	"github.com/artemis-hunt/artemis-go/internal/logfinder"
	"github.com/artemis-hunt/artemis-go/internal/metrics"
	"github.com/artemis-hunt/artemis-go/internal/parser"
	"github.com/artemis-hunt/artemis-go/internal/refdata"
	"github.com/artemis-hunt/artemis-go/internal/spatial"
	"github.com/artemis-hunt/artemis-go/internal/tailer"
	"github.com/artemis-hunt/artemis-go/pkg/artemis/session"
)

// saveTimeout bounds the final save made while stopping.
const saveTimeout = 10 * time.Second

// Update is sent on the engine's update channel after every change to the
// session.
type Update struct {
	// Session is an immutable snapshot taken after the change.
	Session *Session

	// Events are the newly appended events that pass the type filter.
	Events []Event

	// Patched are earlier events whose location or mob name was back-filled.
	Patched []Event

	// Truncated is set on the update flushed when the log shrank or was
	// replaced. Consumers may reset any state derived from earlier lines.
	Truncated bool

	// NeedsLocationPing asks the player to post a location link so the
	// most recent kill can be placed.
	NeedsLocationPing bool
}

type profileRequest struct {
	profile CostProfile
	done    chan error
}

// Engine follows a chat log and aggregates it into a hunting session.
//
// All session state is owned by a single goroutine started by Start; the
// other methods talk to it over channels and are safe for concurrent use.
type Engine struct {
	cfg     *engineConfig
	path    string
	logger  *slog.Logger
	parser  *parser.Parser
	agg     *session.Aggregator
	metrics *metrics.Manager

	profiles  chan profileRequest
	snapshots chan chan *Session

	mu       sync.Mutex
	started  bool
	stopping bool
	stopCh   chan struct{}
	doneCh   chan struct{}
	final    *Session
	finalErr error
}

// NewEngine creates an engine.
// Validates options, resolves the log path and loads reference data.
// Does NOT start goroutines (cheap to call).
// Returns ErrLogPathNotFound if no chat log can be resolved.
func NewEngine(opts ...Option) (*Engine, error) {
	cfg := applyOptions(opts)
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	path, err := logfinder.FindLogPath(cfg.logPath)
	if err != nil {
		return nil, err
	}

	logger := cfg.logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if cfg.sessionID == "" {
		cfg.sessionID = uuid.NewString()
	}

	var m *metrics.Manager
	if cfg.registry != nil {
		m = metrics.NewManager(metrics.WithRegistry(cfg.registry))
	}

	identifier, err := newIdentifier(cfg, logger)
	if err != nil {
		return nil, err
	}
	if identifier != nil {
		identifier = instrumentedIdentifier{next: identifier, metrics: m}
	}

	agg, err := newAggregator(cfg, identifier, logger, time.Now())
	if err != nil {
		return nil, err
	}

	return &Engine{
		cfg:    cfg,
		path:   path,
		logger: logger,
		parser: parser.New(parser.Options{
			PlayerName:  cfg.playerName,
			Location:    cfg.location,
			KeepRawLine: cfg.includeRawLine,
			Logger:      logger,
		}),
		agg:       agg,
		metrics:   m,
		profiles:  make(chan profileRequest),
		snapshots: make(chan chan *Session),
		stopCh:    make(chan struct{}),
		doneCh:    make(chan struct{}),
	}, nil
}

// newIdentifier builds the kill identifier from the configured reference
// data. It returns nil when identification is disabled.
func newIdentifier(cfg *engineConfig, logger *slog.Logger) (session.Identifier, error) {
	if cfg.identifier != nil {
		return cfg.identifier, nil
	}
	store := cfg.store
	if store == nil && cfg.referencePath != "" {
		mem, err := refdata.Load(cfg.referencePath)
		if err != nil {
			return nil, fmt.Errorf("loading reference data: %w", err)
		}
		logger.Info("reference data loaded",
			"path", cfg.referencePath,
			"spawns", mem.SpawnCount(),
			"species", len(mem.Species()),
		)
		store = mem
	}
	if store == nil {
		return nil, nil
	}
	return spatial.New(refdata.NewCachedStore(store, cfg.cacheSize), cfg.identify, logger), nil
}

func newAggregator(cfg *engineConfig, identifier session.Identifier, logger *slog.Logger, start time.Time) (*session.Aggregator, error) {
	agg := session.NewAggregator(cfg.sessionID, start,
		session.WithRetroWindow(cfg.retroWindow),
		session.WithRetroScanLimit(cfg.retroScanLimit),
		session.WithFirstShotPingWindow(cfg.firstShotPingWindow),
		session.WithIdentifier(identifier),
		session.WithLogger(logger),
	)
	// Price the empty session so snapshots report the loadout from the start.
	if _, _, err := agg.AddEvents(context.Background(), nil, cfg.profile); err != nil {
		return nil, err
	}
	return agg, nil
}

// LogPath returns the resolved chat log path.
func (e *Engine) LogPath() string { return e.path }

// SessionID returns the ID of the engine's session.
func (e *Engine) SessionID() string { return e.cfg.sessionID }

// Start opens the log and starts the event loop.
// The update and error channels are closed when the loop exits, which
// happens on Stop or when ctx is cancelled; either way the session is
// finalized and saved first.
// Start can only be called once per Engine.
func (e *Engine) Start(ctx context.Context) (<-chan Update, <-chan error, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.stopping {
		return nil, nil, ErrEngineStopped
	}
	if e.started {
		return nil, nil, ErrEngineStarted
	}

	cfg := tailer.DefaultConfig()
	cfg.Poll = e.cfg.poll
	cfg.FromStart = e.cfg.fromStart
	t, err := tailer.New(e.path, cfg)
	if err != nil {
		return nil, nil, err
	}
	e.started = true

	updates := make(chan Update, 16)
	errs := make(chan error, 16)
	go e.run(ctx, t, updates, errs)

	e.logger.Info("tracking started",
		"path", e.path,
		"session", e.cfg.sessionID,
		"offset", t.Offset(),
	)
	return updates, errs, nil
}

// Stop ends tracking: pending lines are flushed, the session is finalized
// and saved. It blocks until the event loop has exited and returns the
// final session and the error of the final save.
// Safe to call multiple times; later calls return the same session and a
// nil error.
func (e *Engine) Stop() (*Session, error) {
	e.mu.Lock()
	if e.stopping {
		e.mu.Unlock()
		<-e.doneCh
		return e.final, nil
	}
	e.stopping = true
	started := e.started
	close(e.stopCh)
	e.mu.Unlock()

	if !started {
		// No loop owns the aggregator; finalize here.
		e.final, e.finalErr = e.finish(context.Background())
		close(e.doneCh)
	}
	<-e.doneCh
	return e.final, e.finalErr
}

// SetCostProfile reprices the session with a new loadout. Combat counters
// are untouched. Returns ErrEngineStopped once the engine has stopped.
func (e *Engine) SetCostProfile(ctx context.Context, p CostProfile) error {
	e.mu.Lock()
	if e.stopping {
		e.mu.Unlock()
		return ErrEngineStopped
	}
	if !e.started {
		defer e.mu.Unlock()
		e.cfg.profile = p
		_, _, err := e.agg.AddEvents(ctx, nil, p)
		return err
	}
	e.mu.Unlock()

	req := profileRequest{profile: p, done: make(chan error, 1)}
	select {
	case e.profiles <- req:
	case <-e.doneCh:
		return ErrEngineStopped
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-req.done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Snapshot returns an immutable view of the current session. After Stop it
// returns the final session.
func (e *Engine) Snapshot(ctx context.Context) (*Session, error) {
	e.mu.Lock()
	if !e.started && !e.stopping {
		defer e.mu.Unlock()
		return e.agg.Snapshot(), nil
	}
	e.mu.Unlock()

	reply := make(chan *Session, 1)
	select {
	case e.snapshots <- reply:
	case <-e.doneCh:
		return e.final, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	select {
	case s := <-reply:
		return s, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (e *Engine) run(ctx context.Context, t *tailer.Tailer, updates chan<- Update, errs chan<- error) {
	defer close(e.doneCh) // Signal that the loop has exited
	defer close(updates)
	defer close(errs)
	defer func() { _ = t.Close() }()

	lines := batcher.New(e.cfg.debounce)
	defer lines.Stop()

	poll := time.NewTicker(e.cfg.pollInterval)
	defer poll.Stop()
	tick := time.NewTicker(e.cfg.tickInterval)
	defer tick.Stop()
	save := time.NewTicker(e.cfg.saveInterval)
	defer save.Stop()

	l := &loop{e: e, ctx: ctx, t: t, lines: lines, updates: updates, errs: errs}
	l.read()

	for {
		select {
		case <-ctx.Done():
			l.shutdown()
			return
		case <-e.stopCh:
			l.shutdown()
			return
		case <-t.Changes():
			l.read()
		case <-poll.C:
			l.read()
		case <-lines.C():
			l.flush(lines.Flush(), false)
		case now := <-tick.C:
			e.agg.Tick(now)
			l.emit(Update{Session: e.agg.Snapshot()})
		case <-save.C:
			l.save(ctx)
		case req := <-e.profiles:
			sess, _, err := e.agg.AddEvents(ctx, nil, req.profile)
			req.done <- err
			if err == nil {
				e.logger.Info("cost profile changed", "loadout", req.profile.ID)
				l.emit(Update{Session: sess})
			}
		case reply := <-e.snapshots:
			reply <- e.agg.Snapshot()
		}
	}
}

// loop carries the event loop's per-run state. Its methods run only on the
// loop goroutine.
type loop struct {
	e       *Engine
	ctx     context.Context
	t       *tailer.Tailer
	lines   *batcher.Batcher
	updates chan<- Update
	errs    chan<- error

	// closing makes emit non-blocking while the loop shuts down.
	closing bool
}

// read pulls newly appended bytes into the batcher. Read errors are
// transient: the offset is kept and the next notification or poll retries.
func (l *loop) read() {
	chunk, err := l.t.Read()
	if err != nil {
		l.e.metrics.IncReadError()
		l.e.logger.Debug("read failed", "path", l.t.Path(), "error", err)
		sendError(l.errs, &StageError{Stage: StageRead, Err: err})
		return
	}
	if chunk.Truncated {
		l.e.logger.Info("log truncated", "path", l.t.Path())
		// Lines from before the truncation are delivered on their own.
		l.flush(l.lines.Drain(), true)
	}
	n := l.lines.Add(chunk.Data, chunk.Offset)
	l.e.metrics.ObserveRead(len(chunk.Data), n, chunk.Truncated)
}

// flush parses one batch and folds it into the session.
func (l *loop) flush(raw []batcher.RawLine, truncated bool) {
	if len(raw) == 0 && !truncated {
		return
	}
	e := l.e
	events, skipped := e.parser.Parse(e.cfg.sessionID, raw)
	e.metrics.ObserveBatch(len(raw), events, skipped)

	sess, patched, err := e.agg.AddEvents(l.ctx, events, e.agg.Profile())
	if err != nil {
		e.logger.Warn("dropping batch", "lines", len(raw), "error", err)
		return
	}
	e.metrics.ObserveAggregate(len(sess.Events), len(patched))
	e.logger.Debug("batch flushed",
		"lines", len(raw),
		"events", len(events),
		"skipped", skipped,
		"patched", len(patched),
	)

	l.emit(Update{
		Session:           sess,
		Events:            e.cfg.filter.apply(events),
		Patched:           patched,
		Truncated:         truncated,
		NeedsLocationPing: e.agg.PendingLocationPing(),
	})
}

// emit delivers u unless the engine is stopping or ctx is done. While
// closing, u is only delivered if the channel has room.
func (l *loop) emit(u Update) {
	if l.closing {
		select {
		case l.updates <- u:
		default:
		}
		return
	}
	select {
	case l.updates <- u:
	case <-l.ctx.Done():
	case <-l.e.stopCh:
	}
}

func (l *loop) save(ctx context.Context) {
	if l.e.cfg.saver == nil {
		return
	}
	if err := l.e.save(ctx, l.e.agg.Snapshot()); err != nil {
		sendError(l.errs, &StageError{Stage: StageSave, Err: err})
	}
}

// shutdown drains what is left of the log, then finalizes and saves.
func (l *loop) shutdown() {
	l.closing = true
	l.ctx = context.WithoutCancel(l.ctx)
	l.read()
	l.flush(l.lines.Drain(), false)

	final, err := l.e.finish(l.ctx)
	if err != nil {
		sendError(l.errs, &StageError{Stage: StageSave, Err: err})
	}
	l.e.final, l.e.finalErr = final, err
}

// finish finalizes the session and hands it to the saver.
func (e *Engine) finish(ctx context.Context) (*Session, error) {
	final := e.agg.Finalize(time.Now())
	e.logger.Info("tracking stopped",
		"session", final.ID,
		"events", len(final.Events),
		"kills", final.Stats.Kills,
		"profit", final.Stats.Profit,
	)
	if e.cfg.saver == nil {
		return final, nil
	}
	ctx, cancel := context.WithTimeout(ctx, saveTimeout)
	defer cancel()
	return final, e.save(ctx, final)
}

func (e *Engine) save(ctx context.Context, s *Session) error {
	err := e.cfg.saver.Save(ctx, s)
	e.metrics.ObserveSave(err)
	if err != nil {
		e.logger.Warn("save failed", "session", s.ID, "error", err)
		return err
	}
	e.logger.Debug("session saved", "session", s.ID, "events", len(s.Events))
	return nil
}

// sendError sends an error non-blocking.
func sendError(errCh chan<- error, err error) {
	select {
	case errCh <- err:
	default:
		// Drop error if channel is full
	}
}
