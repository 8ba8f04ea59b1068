package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"

	"github.com/artemis-hunt/artemis-go/internal/config"
	"github.com/artemis-hunt/artemis-go/pkg/artemis"
	"github.com/artemis-hunt/artemis-go/pkg/artemis/event"
)

func TestValidFormats(t *testing.T) {
	tests := []struct {
		format string
		valid  bool
	}{
		{"jsonl", true},
		{"pretty", true},
		{"json", false},
		{"summary", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			if got := ValidFormats[tt.format]; got != tt.valid {
				t.Errorf("ValidFormats[%q] = %v, want %v", tt.format, got, tt.valid)
			}
		})
	}
}

func TestRunTrackInvalidEventType(t *testing.T) {
	origInclude, origExclude, origFormat := trackIncludeTypes, trackExcludeTypes, trackFormat
	defer func() {
		trackIncludeTypes, trackExcludeTypes, trackFormat = origInclude, origExclude, origFormat
	}()

	trackFormat = "jsonl"
	trackIncludeTypes = []string{"invalid_type"}
	trackExcludeTypes = nil

	err := runTrack(trackCmd, nil)
	if err == nil {
		t.Fatal("expected error for invalid event type, got nil")
	}
	if !strings.Contains(err.Error(), "unknown event type") {
		t.Errorf("expected 'unknown event type' error, got: %v", err)
	}
}

func TestRunTrackOverlapEventTypes(t *testing.T) {
	origInclude, origExclude, origFormat := trackIncludeTypes, trackExcludeTypes, trackFormat
	defer func() {
		trackIncludeTypes, trackExcludeTypes, trackFormat = origInclude, origExclude, origFormat
	}()

	trackFormat = "jsonl"
	trackIncludeTypes = []string{"loot_received"}
	trackExcludeTypes = []string{"loot_received"}

	err := runTrack(trackCmd, nil)
	if err == nil {
		t.Fatal("expected error for overlapping event types, got nil")
	}
	if !strings.Contains(err.Error(), "cannot be both included and excluded") {
		t.Errorf("expected overlap error, got: %v", err)
	}
}

func TestApplyTrackFlags(t *testing.T) {
	origPlayer, origPoll, origFromStart := trackPlayer, trackPoll, trackFromStart
	defer func() {
		trackPlayer, trackPoll, trackFromStart = origPlayer, origPoll, origFromStart
	}()

	cmd := &cobra.Command{}
	cmd.Flags().StringVar(&trackPlayer, "player", "", "")
	cmd.Flags().BoolVar(&trackPoll, "poll", false, "")
	cmd.Flags().BoolVar(&trackFromStart, "from-start", true, "")
	if err := cmd.Flags().Set("player", "Jane Doe"); err != nil {
		t.Fatal(err)
	}

	cfg := config.New()
	cfg.Poll = true
	applyTrackFlags(cmd, cfg)

	if cfg.PlayerName != "Jane Doe" {
		t.Errorf("PlayerName = %q, want flag value", cfg.PlayerName)
	}
	if !cfg.Poll {
		t.Error("unset --poll flag should keep the config value")
	}
	if !cfg.FromStart {
		t.Error("unset --from-start flag should keep the config value")
	}
}

func TestEngineOptions(t *testing.T) {
	cfg := config.New()
	cfg.Timezone = "Mars/Olympus"
	if _, err := engineOptions(cfg, nil); err == nil {
		t.Error("engineOptions() with an unknown timezone should fail")
	}

	cfg = config.New()
	cfg.Timezone = "UTC"
	cfg.SessionDir = t.TempDir()
	opts, err := engineOptions(cfg, nil)
	if err != nil {
		t.Fatalf("engineOptions() error = %v", err)
	}
	if len(opts) == 0 {
		t.Error("engineOptions() returned no options")
	}
}

func TestOutputUpdates(t *testing.T) {
	updates := make(chan artemis.Update, 2)
	errs := make(chan error, 1)

	updates <- artemis.Update{
		Truncated: true,
		Events: []artemis.Event{
			{Timestamp: time.Date(2025, 3, 1, 18, 20, 1, 0, time.UTC), Payload: event.Kill{MobName: "Atrox Young"}},
		},
		NeedsLocationPing: true,
	}
	updates <- artemis.Update{
		Patched: []artemis.Event{
			{Timestamp: time.Date(2025, 3, 1, 18, 20, 1, 0, time.UTC), Payload: event.Kill{MobName: "Atrox Young", Location: calypsoFix}},
		},
	}
	errs <- errors.New("read: boom")
	close(updates)
	close(errs)

	var out, errOut bytes.Buffer
	if err := outputUpdates(updates, errs, "pretty", &out, &errOut); err != nil {
		t.Fatalf("outputUpdates() error = %v", err)
	}

	want := "[18:20:01] x Killed Atrox Young at unknown\n" +
		"[18:20:01] updated: x Killed Atrox Young at " + calypsoFix.String() + "\n"
	if got := out.String(); got != want {
		t.Errorf("stdout = %q, want %q", got, want)
	}
	for _, want := range []string{"truncated", "post a location link", "warning: read: boom"} {
		if !strings.Contains(errOut.String(), want) {
			t.Errorf("stderr = %q, want to contain %q", errOut.String(), want)
		}
	}
}

var calypsoFix = event.Location{Planet: "Calypso", Lon: 79085, Lat: 67537, Alt: 104}

func TestOutputUpdates_PatchedJSONL(t *testing.T) {
	updates := make(chan artemis.Update, 1)
	updates <- artemis.Update{
		Events: []artemis.Event{
			{ID: "gps-1", Timestamp: time.Date(2025, 3, 1, 18, 20, 30, 0, time.UTC), Payload: event.Gps{Location: calypsoFix}},
		},
		Patched: []artemis.Event{
			{ID: "kill-1", Timestamp: time.Date(2025, 3, 1, 18, 20, 1, 0, time.UTC), Payload: event.Kill{MobName: "Atrox Young", Location: calypsoFix}},
		},
	}
	close(updates)

	var out bytes.Buffer
	if err := outputUpdates(updates, nil, "jsonl", &out, io.Discard); err != nil {
		t.Fatalf("outputUpdates() error = %v", err)
	}

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2: %q", len(lines), out.String())
	}
	if strings.Contains(lines[0], `"patched"`) {
		t.Errorf("new event marked patched: %s", lines[0])
	}
	var kill map[string]any
	if err := json.Unmarshal([]byte(lines[1]), &kill); err != nil {
		t.Fatalf("patched line is not JSON: %v", err)
	}
	if kill["patched"] != true || kill["id"] != "kill-1" || kill["type"] != "mob_killed" {
		t.Errorf("patched line = %v", kill)
	}
}

func TestOutputUpdates_BadFormat(t *testing.T) {
	updates := make(chan artemis.Update, 1)
	updates <- artemis.Update{Events: []artemis.Event{{Payload: event.Miss{}}}}

	var out bytes.Buffer
	if err := outputUpdates(updates, nil, "xml", &out, &out); err == nil {
		t.Error("outputUpdates() with unknown format should fail")
	}
}
