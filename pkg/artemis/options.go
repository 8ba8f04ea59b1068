package artemis

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/artemis-hunt/artemis-go/internal/batcher"
	"github.com/artemis-hunt/artemis-go/internal/refdata"
	"github.com/artemis-hunt/artemis-go/internal/spatial"
	"github.com/artemis-hunt/artemis-go/pkg/artemis/session"
)

// Default engine intervals.
const (
	DefaultPollInterval = time.Second
	DefaultTickInterval = time.Second
	DefaultSaveInterval = 30 * time.Second
)

// Option configures an Engine using the functional options pattern.
type Option func(*engineConfig)

// engineConfig holds internal configuration for the engine.
type engineConfig struct {
	logPath    string
	playerName string
	location   *time.Location
	sessionID  string
	logger     *slog.Logger

	poll      bool
	fromStart bool

	debounce     time.Duration
	pollInterval time.Duration
	tickInterval time.Duration
	saveInterval time.Duration

	retroWindow         time.Duration
	retroScanLimit      int
	firstShotPingWindow time.Duration

	profile session.CostProfile

	referencePath string
	store         spatial.ReferenceStore
	cacheSize     int
	identify      spatial.Config
	identifier    session.Identifier

	saver    Saver
	registry *prometheus.Registry

	includeRawLine bool
	filter         *compiledFilter
}

// defaultEngineConfig returns an engineConfig with sensible defaults.
func defaultEngineConfig() *engineConfig {
	return &engineConfig{
		location:       time.Local,
		fromStart:      true,
		debounce:       batcher.DefaultDebounce,
		pollInterval:   DefaultPollInterval,
		tickInterval:   DefaultTickInterval,
		saveInterval:   DefaultSaveInterval,
		retroWindow:    session.DefaultRetroWindow,
		retroScanLimit: session.DefaultRetroScanLimit,
		cacheSize:      refdata.DefaultCacheSize,
		identify:       spatial.DefaultConfig(),
	}
}

// applyOptions applies functional options to an engineConfig.
func applyOptions(opts []Option) *engineConfig {
	cfg := defaultEngineConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(cfg)
		}
	}
	return cfg
}

func (c *engineConfig) validate() error {
	for _, d := range []struct {
		name string
		v    time.Duration
	}{
		{"debounce", c.debounce},
		{"poll interval", c.pollInterval},
		{"tick interval", c.tickInterval},
		{"save interval", c.saveInterval},
		{"retro window", c.retroWindow},
	} {
		if d.v <= 0 {
			return fmt.Errorf("%s must be positive, got %v", d.name, d.v)
		}
	}
	if c.firstShotPingWindow < 0 {
		return fmt.Errorf("first shot ping window must be non-negative, got %v", c.firstShotPingWindow)
	}
	if c.retroScanLimit <= 0 {
		return fmt.Errorf("retro scan limit must be positive, got %d", c.retroScanLimit)
	}
	if c.location == nil {
		return fmt.Errorf("location must be set")
	}
	return nil
}

// WithLogPath sets the chat log to follow. A directory holding chat.log is
// accepted. If not set, the path comes from ARTEMIS_CHATLOG or a default
// Documents location.
func WithLogPath(path string) Option {
	return func(c *engineConfig) {
		c.logPath = path
	}
}

// WithPlayerName sets the avatar name used to attribute location links
// and globals. Empty accepts only location links posted without a sender.
func WithPlayerName(name string) Option {
	return func(c *engineConfig) {
		c.playerName = name
	}
}

// WithLocation sets the time zone chat timestamps are written in.
// Default: time.Local.
func WithLocation(loc *time.Location) Option {
	return func(c *engineConfig) {
		c.location = loc
	}
}

// WithSessionID sets the session ID. Default: a random UUID.
func WithSessionID(id string) Option {
	return func(c *engineConfig) {
		c.sessionID = id
	}
}

// WithLogger sets the slog logger for debug output.
// If nil (default), logging is disabled.
func WithLogger(logger *slog.Logger) Option {
	return func(c *engineConfig) {
		c.logger = logger
	}
}

// WithPoll uses a polling file watcher instead of inotify.
func WithPoll(poll bool) Option {
	return func(c *engineConfig) {
		c.poll = poll
	}
}

// WithFromStart reads the existing content of the log before following it.
// Default: true.
func WithFromStart(fromStart bool) Option {
	return func(c *engineConfig) {
		c.fromStart = fromStart
	}
}

// WithDebounce sets the quiet period after which pending lines are flushed.
// Default: 250ms.
func WithDebounce(d time.Duration) Option {
	return func(c *engineConfig) {
		c.debounce = d
	}
}

// WithPollInterval sets how often the log is read regardless of change
// notifications. Default: 1 second.
func WithPollInterval(d time.Duration) Option {
	return func(c *engineConfig) {
		c.pollInterval = d
	}
}

// WithTickInterval sets how often the session duration advances.
// Default: 1 second.
func WithTickInterval(d time.Duration) Option {
	return func(c *engineConfig) {
		c.tickInterval = d
	}
}

// WithSaveInterval sets how often the session is handed to the Saver.
// Default: 30 seconds.
func WithSaveInterval(d time.Duration) Option {
	return func(c *engineConfig) {
		c.saveInterval = d
	}
}

// WithRetroWindow sets how far back a GPS fix locates earlier kills and deaths.
// Default: 2 minutes.
func WithRetroWindow(d time.Duration) Option {
	return func(c *engineConfig) {
		c.retroWindow = d
	}
}

// WithRetroScanLimit caps how many events a GPS fix scans back.
// Default: 256.
func WithRetroScanLimit(n int) Option {
	return func(c *engineConfig) {
		c.retroScanLimit = n
	}
}

// WithFirstShotPingWindow requests a location ping when the first shot after
// an unlocated kill arrives within d of it. Default: 0 (never).
func WithFirstShotPingWindow(d time.Duration) Option {
	return func(c *engineConfig) {
		c.firstShotPingWindow = d
	}
}

// WithCostProfile sets the initial cost profile. See Engine.SetCostProfile.
func WithCostProfile(p CostProfile) Option {
	return func(c *engineConfig) {
		c.profile = p
	}
}

// WithReferenceFile loads spawn and species reference data from a YAML file
// and enables spatial identification of unnamed kills.
func WithReferenceFile(path string) Option {
	return func(c *engineConfig) {
		c.referencePath = path
	}
}

// WithReferenceStore enables spatial identification against store.
// It takes precedence over WithReferenceFile.
func WithReferenceStore(store ReferenceStore) Option {
	return func(c *engineConfig) {
		c.store = store
	}
}

// WithCacheSize sets the number of reference lookups cached per kind.
// Default: 256.
func WithCacheSize(n int) Option {
	return func(c *engineConfig) {
		c.cacheSize = n
	}
}

// WithIdentifyConfig tunes spatial identification.
func WithIdentifyConfig(cfg IdentifyConfig) Option {
	return func(c *engineConfig) {
		c.identify = cfg
	}
}

// WithIdentifier replaces spatial identification with id.
func WithIdentifier(id Identifier) Option {
	return func(c *engineConfig) {
		c.identifier = id
	}
}

// WithSaver hands the session to s every save interval and on Stop.
func WithSaver(s Saver) Option {
	return func(c *engineConfig) {
		c.saver = s
	}
}

// WithMetrics registers pipeline metrics with registry.
func WithMetrics(registry *prometheus.Registry) Option {
	return func(c *engineConfig) {
		c.registry = registry
	}
}

// WithIncludeRawLine includes the original log line in Event.RawLine.
// Default: false.
func WithIncludeRawLine(include bool) Option {
	return func(c *engineConfig) {
		c.includeRawLine = include
	}
}

// WithIncludeTypes limits Update.Events to the specified types.
// The session itself always receives every event.
func WithIncludeTypes(types ...EventType) Option {
	return func(c *engineConfig) {
		if c.filter == nil {
			c.filter = &compiledFilter{}
		}
		c.filter.include = typeSet(types)
	}
}

// WithExcludeTypes drops the specified types from Update.Events.
// Exclude takes precedence over include.
func WithExcludeTypes(types ...EventType) Option {
	return func(c *engineConfig) {
		if c.filter == nil {
			c.filter = &compiledFilter{}
		}
		c.filter.exclude = typeSet(types)
	}
}

// ParseOption configures ParseFile behavior.
type ParseOption func(*parseConfig)

// parseConfig holds internal configuration for parsing.
type parseConfig struct {
	playerName     string
	location       *time.Location
	sessionID      string
	filter         *compiledFilter
	includeRawLine bool
	since          time.Time
	until          time.Time
	stopOnError    bool
}

// applyParseOptions applies functional options to a parseConfig.
func applyParseOptions(opts []ParseOption) *parseConfig {
	cfg := &parseConfig{location: time.Local}
	for _, opt := range opts {
		if opt != nil {
			opt(cfg)
		}
	}
	return cfg
}

// WithParsePlayerName sets the avatar name used to attribute location links.
func WithParsePlayerName(name string) ParseOption {
	return func(c *parseConfig) {
		c.playerName = name
	}
}

// WithParseLocation sets the time zone chat timestamps are written in.
func WithParseLocation(loc *time.Location) ParseOption {
	return func(c *parseConfig) {
		if loc != nil {
			c.location = loc
		}
	}
}

// WithParseSessionID stamps parsed events with id.
func WithParseSessionID(id string) ParseOption {
	return func(c *parseConfig) {
		c.sessionID = id
	}
}

// WithParseFilter sets both include and exclude type filters for parsing.
func WithParseFilter(include, exclude []EventType) ParseOption {
	return func(c *parseConfig) {
		c.filter = newCompiledFilter(include, exclude)
	}
}

// WithParseIncludeRawLine includes the original log line in Event.RawLine.
func WithParseIncludeRawLine(include bool) ParseOption {
	return func(c *parseConfig) {
		c.includeRawLine = include
	}
}

// WithParseTimeRange filters events to only include those within the time range.
// since is inclusive, until is exclusive.
// Zero values are ignored (no filtering for that boundary).
func WithParseTimeRange(since, until time.Time) ParseOption {
	return func(c *parseConfig) {
		c.since = since
		c.until = until
	}
}

// WithParseStopOnError stops parsing on the first malformed line instead of skipping.
// Default: false.
func WithParseStopOnError(stop bool) ParseOption {
	return func(c *parseConfig) {
		c.stopOnError = stop
	}
}
