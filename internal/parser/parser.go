// Package parser converts raw chat log lines into domain events.
package parser

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/artemis-hunt/artemis-go/internal/batcher"
	"github.com/artemis-hunt/artemis-go/pkg/artemis/event"
)

// timestampLayout is the chat log timestamp format.
const timestampLayout = "2006-01-02 15:04:05"

// headerPattern splits "2025-01-02 15:04:05 [System] [] message".
var headerPattern = regexp.MustCompile(`^(\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}) \[([^\]]*)\] \[([^\]]*)\] ?(.*)$`)

// ErrMalformed wraps failures of a line that matched a grammar but whose
// fields could not be parsed.
var ErrMalformed = errors.New("malformed line")

// Options configures a Parser.
type Options struct {
	// PlayerName is the avatar name; it attributes GPS links and globals.
	// Empty accepts only links posted without a sender.
	PlayerName string

	// Location is the zone chat timestamps are written in. nil means time.Local.
	Location *time.Location

	// NewID generates event IDs. nil uses random UUIDs.
	NewID func() string

	// KeepRawLine stores the source line on each event.
	KeepRawLine bool

	Logger *slog.Logger
}

// Parser is stateless between calls and safe for concurrent use.
type Parser struct {
	opts   Options
	logger *slog.Logger
}

// New creates a Parser.
func New(opts Options) *Parser {
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Parser{opts: opts, logger: logger}
}

// Parse converts an ordered batch into events. Output preserves line order.
// Lines that match no grammar, or match but fail field parsing, produce no
// events. skipped counts the lines that failed field parsing.
func (p *Parser) Parse(sessionID string, lines []batcher.RawLine) (events []event.Event, skipped int) {
	s := p.NewStream(sessionID)
	for _, rl := range lines {
		out, _ := s.Push(rl)
		events = append(events, out...)
	}
	events = append(events, s.Flush()...)
	return events, s.Skipped
}

// Stream parses lines one at a time for callers that cannot batch, such as
// a file scan. The events of a line ending in a self hit are held back until
// the next line shows whether a critical modifier follows.
type Stream struct {
	p         *Parser
	sessionID string
	held      []event.Event

	// Skipped counts lines that matched a grammar but failed field parsing.
	Skipped int
}

// NewStream starts a Stream whose events carry sessionID.
func (p *Parser) NewStream(sessionID string) *Stream {
	return &Stream{p: p, sessionID: sessionID}
}

// Push parses one line and returns the events that are now final. A line
// that fails field parsing is skipped and reported as an error wrapping
// ErrMalformed; the returned events are still valid.
func (s *Stream) Push(rl batcher.RawLine) ([]event.Event, error) {
	out, modifier, err := s.p.parse(s.sessionID, rl.Text, rl.Offset)
	if err != nil {
		s.Skipped++
		s.p.logger.Debug("skipping malformed line",
			"offset", rl.Offset,
			"line", rl.Text,
			"error", err,
		)
		return s.Flush(), err
	}
	if modifier {
		if n := len(s.held); n > 0 {
			if h, ok := s.held[n-1].Payload.(event.Hit); ok {
				h.Critical = true
				s.held[n-1] = s.held[n-1].WithPayload(h)
			}
		}
		return s.Flush(), nil
	}
	if len(out) == 0 {
		return s.Flush(), nil
	}

	ready := s.Flush()
	last := out[len(out)-1]
	if last.Type() == event.HitRegistered && last.Actor == event.ActorSelf {
		s.held = out
		return ready, nil
	}
	return append(ready, out...), nil
}

// Flush releases any held events.
func (s *Stream) Flush() []event.Event {
	out := s.held
	s.held = nil
	return out
}

// ParseLine parses a single line. A line matching no grammar returns nil, nil;
// a line matching a grammar but failing field parsing returns an error
// wrapping ErrMalformed. A standalone critical modifier yields no events.
func (p *Parser) ParseLine(sessionID, text string) ([]event.Event, error) {
	events, _, err := p.parse(sessionID, text, 0)
	return events, err
}

func (p *Parser) parse(sessionID, text string, offset int64) ([]event.Event, bool, error) {
	text = strings.TrimRight(text, "\r\n")
	if strings.TrimSpace(text) == "" {
		return nil, false, nil
	}
	m := headerPattern.FindStringSubmatch(text)
	if m == nil {
		return nil, false, nil
	}
	ts, err := time.ParseInLocation(timestampLayout, m[1], p.opts.Location)
	if err != nil {
		return nil, false, fmt.Errorf("%w: timestamp %q: %v", ErrMalformed, m[1], err)
	}
	l := line{channel: m[2], sender: m[3], message: strings.TrimSpace(m[4])}

	for i := range registry {
		g := &registry[i]
		if g.channel != "" && g.channel != l.channel {
			continue
		}
		sub := g.re.FindStringSubmatch(l.message)
		if sub == nil {
			continue
		}
		if g.modifier {
			return nil, true, nil
		}
		drafts, err := g.build(p, l, sub)
		if errors.Is(err, errNotApplicable) {
			continue
		}
		if err != nil {
			return nil, false, fmt.Errorf("%w: %s: %v", ErrMalformed, g.name, err)
		}
		events := make([]event.Event, 0, len(drafts))
		for _, d := range drafts {
			ev := event.Event{
				ID:        p.opts.NewID(),
				SessionID: sessionID,
				Timestamp: ts,
				Actor:     d.actor,
				Offset:    offset,
				Payload:   d.payload,
			}
			if p.opts.KeepRawLine {
				ev.RawLine = text
			}
			events = append(events, ev)
		}
		return events, false, nil
	}
	return nil, false, nil
}

func (p *Parser) isSelf(name string) bool {
	name = strings.TrimSpace(name)
	if name == "" {
		return true
	}
	if p.opts.PlayerName == "" {
		return false
	}
	return strings.EqualFold(name, p.opts.PlayerName)
}
