package artemis_test

import (
	"context"
	"testing"
	"time"

	"github.com/artemis-hunt/artemis-go/pkg/artemis"
	"github.com/artemis-hunt/artemis-go/pkg/artemis/event"
)

func TestReplayFile(t *testing.T) {
	path := writeLog(t, sampleLog)

	s, err := artemis.ReplayFile(context.Background(), path,
		artemis.WithLocation(time.UTC),
		artemis.WithSessionID("replay"),
		artemis.WithCostProfile(artemis.CostProfile{ID: "opalo", AmmoPerShot: 0.1}),
	)
	if err != nil {
		t.Fatalf("ReplayFile() error = %v", err)
	}
	if !s.Finalized() {
		t.Error("replayed session should be finalized")
	}
	if s.ID != "replay" {
		t.Errorf("ID = %q, want replay", s.ID)
	}
	if len(s.Events) != 6 {
		t.Fatalf("got %d events, want 6", len(s.Events))
	}
	if s.Stats.Shots != 2 || s.Stats.Kills != 1 || s.Stats.Criticals != 1 {
		t.Errorf("Stats = %+v", s.Stats)
	}
	if want := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC); !s.StartTime.Equal(want) {
		t.Errorf("StartTime = %v, want %v", s.StartTime, want)
	}
	if want := 3 * time.Second; s.Duration != want {
		t.Errorf("Duration = %v, want %v", s.Duration, want)
	}
	if s.LoadoutID != "opalo" {
		t.Errorf("LoadoutID = %q, want opalo", s.LoadoutID)
	}
}

func TestReplayFile_PatchesKills(t *testing.T) {
	path := writeLog(t,
		"2025-03-01 18:20:00 [System] [] You inflicted 650 points of damage\n"+
			"2025-03-01 18:20:01 [System] [] You killed a creature\n"+
			gpsLine("2025-03-01 18:20:30"))

	s, err := artemis.ReplayFile(context.Background(), path,
		artemis.WithLocation(time.UTC),
		artemis.WithPlayerName("Jane Doe"),
	)
	if err != nil {
		t.Fatalf("ReplayFile() error = %v", err)
	}
	var kill event.Kill
	for _, e := range s.Events {
		if k, ok := e.Payload.(event.Kill); ok {
			kill = k
		}
	}
	if kill.Location.Planet != "Calypso" {
		t.Errorf("kill location = %v, want Calypso", kill.Location)
	}

	zones := artemis.ClusterZones(s, artemis.CostProfile{}, artemis.DefaultZoneGroupDistance, artemis.DefaultZoneMinRadius)
	if len(zones) != 1 || zones[0].Kills != 1 {
		t.Errorf("ClusterZones() = %+v, want one zone with one kill", zones)
	}
}

func TestReplayFile_Empty(t *testing.T) {
	path := writeLog(t, "")

	s, err := artemis.ReplayFile(context.Background(), path)
	if err != nil {
		t.Fatalf("ReplayFile() error = %v", err)
	}
	if len(s.Events) != 0 || !s.Finalized() {
		t.Errorf("empty replay = %d events, finalized %v", len(s.Events), s.Finalized())
	}
}

func TestReplayFile_FileNotFound(t *testing.T) {
	if _, err := artemis.ReplayFile(context.Background(), "/nonexistent/chat.log"); err == nil {
		t.Error("ReplayFile with nonexistent file should return an error")
	}
}
