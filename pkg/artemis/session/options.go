package session

import (
	"io"
	"log/slog"
	"time"
)

const (
	// DefaultRetroWindow bounds how long before a GPS fix a kill may have
	// happened and still receive that fix.
	DefaultRetroWindow = 2 * time.Minute

	// DefaultRetroScanLimit bounds how many trailing events a GPS fix scans.
	DefaultRetroScanLimit = 256
)

type options struct {
	retroWindow         time.Duration
	retroScanLimit      int
	firstShotPingWindow time.Duration
	identifier          Identifier
	logger              *slog.Logger
}

func defaultOptions() options {
	return options{
		retroWindow:    DefaultRetroWindow,
		retroScanLimit: DefaultRetroScanLimit,
		logger:         slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// Option configures an Aggregator.
type Option func(*options)

// WithRetroWindow sets the maximum age of a kill that a GPS fix back-fills.
// Non-positive values are ignored.
func WithRetroWindow(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.retroWindow = d
		}
	}
}

// WithRetroScanLimit sets how many trailing events a GPS fix examines.
// Non-positive values are ignored.
func WithRetroScanLimit(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.retroScanLimit = n
		}
	}
}

// WithFirstShotPingWindow enables location ping requests: when the first shot
// after an unlocated kill lands within d of that kill, PendingLocationPing
// reports true. Zero disables the request.
func WithFirstShotPingWindow(d time.Duration) Option {
	return func(o *options) {
		o.firstShotPingWindow = d
	}
}

// WithIdentifier sets the identifier consulted for unnamed kills.
// nil disables identification; locations are still back-filled.
func WithIdentifier(id Identifier) Option {
	return func(o *options) {
		o.identifier = id
	}
}

// WithLogger sets the logger. nil keeps the discard logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}
