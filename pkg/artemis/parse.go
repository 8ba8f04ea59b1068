package artemis

import (
	"context"
	"errors"
	"io"
	"iter"
	"os"

	"github.com/artemis-hunt/artemis-go/internal/batcher"
	"github.com/artemis-hunt/artemis-go/internal/parser"
)

// readChunkSize is the read size ParseFile feeds the line splitter.
const readChunkSize = 64 * 1024

func (c *parseConfig) newParser() *parser.Parser {
	return parser.New(parser.Options{
		PlayerName:  c.playerName,
		Location:    c.location,
		KeepRawLine: c.includeRawLine,
	})
}

// ParseLine parses a single chat log line into events. One line may yield
// several events, e.g. a shot and the hit it landed.
//
// Return values:
//   - (events, nil): Successfully parsed line
//   - (nil, nil): Line doesn't match any known grammar (not an error)
//   - (nil, error): Line matches a grammar but is malformed
//
// Example:
//
//	line := "2025-03-01 18:20:05 [System] [] You inflicted 42.5 points of damage"
//	events, err := artemis.ParseLine(line)
//	if err != nil {
//	    log.Printf("parse error: %v", err)
//	}
//	for _, ev := range events {
//	    fmt.Println(ev.Type())
//	}
func ParseLine(line string, opts ...ParseOption) ([]Event, error) {
	cfg := applyParseOptions(opts)
	events, err := cfg.newParser().ParseLine(cfg.sessionID, line)
	if err != nil {
		return nil, &ParseError{Line: line, Err: err}
	}
	return cfg.filter.apply(events), nil
}

// ParseFile parses a chat log and returns an iterator over events.
// The file is opened lazily on first iteration, so the returned iterator
// is cheap to create but must be consumed to release resources.
//
// Lines are parsed in file order exactly as the engine parses them, so a
// critical hit modifier amends the hit on the line before it.
//
// The iterator yields (Event, error) pairs. When an error occurs:
//   - File open or read errors: yields (Event{}, error) once and stops
//   - Parse errors: skips the line by default, or yields a *ParseError and
//     stops if WithParseStopOnError is set
//   - Context cancellation: yields (Event{}, ctx.Err()) and stops
//
// Example:
//
//	for ev, err := range artemis.ParseFile(ctx, "chat.log") {
//	    if err != nil {
//	        log.Printf("error: %v", err)
//	        break
//	    }
//	    fmt.Printf("event: %s\n", ev.Type())
//	}
func ParseFile(ctx context.Context, path string, opts ...ParseOption) iter.Seq2[Event, error] {
	if path == "" {
		return func(yield func(Event, error) bool) {
			yield(Event{}, errors.New("artemis: path required"))
		}
	}

	cfg := applyParseOptions(opts)

	return func(yield func(Event, error) bool) {
		file, err := os.Open(path)
		if err != nil {
			yield(Event{}, err)
			return
		}
		defer file.Close()

		stream := cfg.newParser().NewStream(cfg.sessionID)
		lines := batcher.New(batcher.DefaultDebounce)
		defer lines.Stop()

		// emit returns false when iteration must stop.
		emit := func(events []Event) bool {
			for _, ev := range events {
				if !cfg.filter.Allows(ev.Type()) {
					continue
				}
				if !cfg.since.IsZero() && ev.Timestamp.Before(cfg.since) {
					continue
				}
				if !cfg.until.IsZero() && !ev.Timestamp.Before(cfg.until) {
					return false // Past the time window
				}
				if !yield(ev, nil) {
					return false
				}
			}
			return true
		}
		process := func(raw []batcher.RawLine) bool {
			for _, rl := range raw {
				events, err := stream.Push(rl)
				if err != nil && cfg.stopOnError {
					if !emit(events) {
						return false
					}
					yield(Event{}, &ParseError{Line: rl.Text, Err: err})
					return false
				}
				if !emit(events) {
					return false
				}
			}
			return true
		}

		buf := make([]byte, readChunkSize)
		var offset int64
		for {
			if err := ctx.Err(); err != nil {
				yield(Event{}, err)
				return
			}

			n, rerr := file.Read(buf)
			if n > 0 {
				lines.Add(buf[:n], offset)
				offset += int64(n)
				if !process(lines.Flush()) {
					return
				}
			}
			if errors.Is(rerr, io.EOF) {
				break
			}
			if rerr != nil {
				yield(Event{}, rerr)
				return
			}
		}

		if !process(lines.Drain()) {
			return
		}
		emit(stream.Flush())
	}
}

// ParseFileAll is a convenience function that parses a chat log and collects
// all events into a slice. Stops on first error and returns events collected so far.
//
// For large files, consider using ParseFile directly to avoid loading all events
// into memory at once.
func ParseFileAll(ctx context.Context, path string, opts ...ParseOption) ([]Event, error) {
	events := make([]Event, 0, 256)
	for ev, err := range ParseFile(ctx, path, opts...) {
		if err != nil {
			return events, err
		}
		events = append(events, ev)
	}
	return events, nil
}
