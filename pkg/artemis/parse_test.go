package artemis_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/artemis-hunt/artemis-go/pkg/artemis"
	"github.com/artemis-hunt/artemis-go/pkg/artemis/event"
)

const sampleLog = `2025-03-01 12:00:00 [System] [] You inflicted 40 points of damage
2025-03-01 12:00:00 [System] [] Critical hit - Armor penetration!
2025-03-01 12:00:01 [System] [] You missed
2025-03-01 12:00:02 [System] [] You killed a creature (Atrox Young)
2025-03-01 12:00:03 [System] [] You received Animal Oil Residue x (52) Value: 0.52 PED
`

func writeSample(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "chat.log")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestParseLine(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantTypes []artemis.EventType
	}{
		{
			name:      "hit yields shot and hit",
			input:     "2025-03-01 12:00:00 [System] [] You inflicted 40 points of damage",
			wantTypes: []artemis.EventType{artemis.EventShotFired, artemis.EventHitRegistered},
		},
		{
			name:      "kill",
			input:     "2025-03-01 12:00:02 [System] [] You killed a creature (Atrox Young)",
			wantTypes: []artemis.EventType{artemis.EventMobKilled},
		},
		{
			name:  "unrecognized line returns nil",
			input: "some random text",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := artemis.ParseLine(tt.input, artemis.WithParseLocation(time.UTC))
			if err != nil {
				t.Fatalf("ParseLine() error = %v", err)
			}
			if len(got) != len(tt.wantTypes) {
				t.Fatalf("ParseLine() = %d events, want %d", len(got), len(tt.wantTypes))
			}
			for i, want := range tt.wantTypes {
				if got[i].Type() != want {
					t.Errorf("event %d: got type %v, want %v", i, got[i].Type(), want)
				}
			}
		})
	}
}

func TestParseLine_Malformed(t *testing.T) {
	_, err := artemis.ParseLine("2025-03-01 12:00:00 [System] [] You inflicted lots points of damage")
	var parseErr *artemis.ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("ParseLine() error = %v, want *ParseError", err)
	}
	if !strings.Contains(parseErr.Line, "lots") {
		t.Errorf("ParseError.Line = %q", parseErr.Line)
	}
}

func TestParseFile_Basic(t *testing.T) {
	path := writeSample(t, sampleLog)

	var events []artemis.Event
	for ev, err := range artemis.ParseFile(context.Background(), path, artemis.WithParseSessionID("s1")) {
		if err != nil {
			t.Fatalf("ParseFile error: %v", err)
		}
		events = append(events, ev)
	}

	want := []artemis.EventType{
		artemis.EventShotFired, artemis.EventHitRegistered,
		artemis.EventShotFired, artemis.EventMissRegistered,
		artemis.EventMobKilled, artemis.EventLootReceived,
	}
	if len(events) != len(want) {
		t.Fatalf("got %d events, want %d", len(events), len(want))
	}
	for i, w := range want {
		if events[i].Type() != w {
			t.Errorf("event %d: got type %v, want %v", i, events[i].Type(), w)
		}
		if events[i].SessionID != "s1" {
			t.Errorf("event %d: session %q, want s1", i, events[i].SessionID)
		}
	}
	if h := events[1].Payload.(event.Hit); !h.Critical {
		t.Error("hit followed by a critical modifier should be critical")
	}
	if events[2].Offset <= events[0].Offset {
		t.Errorf("offsets not increasing: %d then %d", events[0].Offset, events[2].Offset)
	}
}

func TestParseFile_EmptyPath(t *testing.T) {
	var errCount int
	for _, err := range artemis.ParseFile(context.Background(), "") {
		if err != nil {
			errCount++
			break
		}
	}
	if errCount != 1 {
		t.Error("ParseFile with empty path should yield an error")
	}
}

func TestParseFile_FileNotFound(t *testing.T) {
	var errCount int
	for _, err := range artemis.ParseFile(context.Background(), "/nonexistent/chat.log") {
		if err != nil {
			errCount++
			break
		}
	}
	if errCount != 1 {
		t.Error("ParseFile with nonexistent file should yield an error")
	}
}

func TestParseFile_WithFilter(t *testing.T) {
	path := writeSample(t, sampleLog)

	events, err := artemis.ParseFileAll(context.Background(), path,
		artemis.WithParseFilter([]artemis.EventType{artemis.EventShotFired, artemis.EventMobKilled}, []artemis.EventType{artemis.EventShotFired}),
	)
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 1 || events[0].Type() != artemis.EventMobKilled {
		t.Errorf("got %d events, want only the kill", len(events))
	}
}

func TestParseFile_WithTimeRange(t *testing.T) {
	path := writeSample(t, sampleLog)

	since := time.Date(2025, 3, 1, 12, 0, 1, 0, time.UTC)
	until := time.Date(2025, 3, 1, 12, 0, 3, 0, time.UTC)
	events, err := artemis.ParseFileAll(context.Background(), path,
		artemis.WithParseLocation(time.UTC),
		artemis.WithParseTimeRange(since, until),
	)
	if err != nil {
		t.Fatal(err)
	}
	// The miss (shot and miss) and the kill; the loot is at until.
	if len(events) != 3 {
		t.Errorf("got %d events, want 3", len(events))
	}
}

func TestParseFile_WithIncludeRawLine(t *testing.T) {
	path := writeSample(t, sampleLog)

	events, err := artemis.ParseFileAll(context.Background(), path, artemis.WithParseIncludeRawLine(true))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasSuffix(events[4].RawLine, "You killed a creature (Atrox Young)") {
		t.Errorf("RawLine = %q", events[4].RawLine)
	}
}

func TestParseFile_SkipsMalformed(t *testing.T) {
	path := writeSample(t, "2025-03-01 12:00:00 [System] [] You inflicted x points of damage\n"+sampleLog)

	events, err := artemis.ParseFileAll(context.Background(), path)
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 6 {
		t.Errorf("got %d events, want 6", len(events))
	}
}

func TestParseFile_StopOnError(t *testing.T) {
	path := writeSample(t, sampleLog+"2025-03-01 12:00:04 [System] [] You inflicted x points of damage\n")

	events, err := artemis.ParseFileAll(context.Background(), path, artemis.WithParseStopOnError(true))
	var parseErr *artemis.ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("ParseFileAll() error = %v, want *ParseError", err)
	}
	if len(events) != 6 {
		t.Errorf("got %d events before the error, want 6", len(events))
	}
}

func TestParseFile_NoTrailingNewline(t *testing.T) {
	path := writeSample(t, strings.TrimSuffix(sampleLog, "\n"))

	events, err := artemis.ParseFileAll(context.Background(), path)
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 6 || events[5].Type() != artemis.EventLootReceived {
		t.Errorf("last line without newline was not parsed: %d events", len(events))
	}
}

func TestParseFile_ContextCancellation(t *testing.T) {
	path := writeSample(t, sampleLog)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var gotErr error
	for _, err := range artemis.ParseFile(ctx, path) {
		if err != nil {
			gotErr = err
			break
		}
	}
	if !errors.Is(gotErr, context.Canceled) {
		t.Errorf("got error %v, want context.Canceled", gotErr)
	}
}

func TestParseFileAll_FileNotFound(t *testing.T) {
	if _, err := artemis.ParseFileAll(context.Background(), "/nonexistent/chat.log"); err == nil {
		t.Error("ParseFileAll with nonexistent file should return an error")
	}
}
