package artemis

import (
	"testing"

	"github.com/artemis-hunt/artemis-go/pkg/artemis/event"
)

func TestCompiledFilter_Allows(t *testing.T) {
	tests := []struct {
		name    string
		include []EventType
		exclude []EventType
		event   EventType
		want    bool
	}{
		{
			name:  "nil filter allows all",
			event: EventMobKilled,
			want:  true,
		},
		{
			name:    "include only specified types",
			include: []EventType{EventMobKilled},
			event:   EventMobKilled,
			want:    true,
		},
		{
			name:    "include rejects non-specified types",
			include: []EventType{EventMobKilled},
			event:   EventShotFired,
			want:    false,
		},
		{
			name:    "exclude specified types",
			exclude: []EventType{EventShotFired},
			event:   EventShotFired,
			want:    false,
		},
		{
			name:    "exclude allows non-specified types",
			exclude: []EventType{EventShotFired},
			event:   EventLootReceived,
			want:    true,
		},
		{
			name:    "exclude takes precedence over include",
			include: []EventType{EventMobKilled, EventShotFired},
			exclude: []EventType{EventShotFired},
			event:   EventShotFired,
			want:    false,
		},
		{
			name:    "empty include allows all",
			include: []EventType{},
			event:   EventGpsUpdate,
			want:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newCompiledFilter(tt.include, tt.exclude)
			if got := f.Allows(tt.event); got != tt.want {
				t.Errorf("Allows(%v) = %v, want %v", tt.event, got, tt.want)
			}
		})
	}
}

func TestNewCompiledFilter_NilForEmpty(t *testing.T) {
	if f := newCompiledFilter(nil, nil); f != nil {
		t.Errorf("newCompiledFilter(nil, nil) = %v, want nil", f)
	}
}

func TestCompiledFilter_Apply(t *testing.T) {
	events := []Event{
		{ID: "1", Payload: event.Shot{}},
		{ID: "2", Payload: event.Kill{MobName: event.UnknownCreature}},
		{ID: "3", Payload: event.Shot{}},
	}

	var nilFilter *compiledFilter
	if got := nilFilter.apply(events); len(got) != 3 {
		t.Errorf("nil filter kept %d events, want 3", len(got))
	}

	f := newCompiledFilter([]EventType{EventMobKilled}, nil)
	got := f.apply(events)
	if len(got) != 1 || got[0].ID != "2" {
		t.Errorf("apply() = %v, want only the kill", got)
	}
}
