// Package session aggregates hunting events into a running session.
//
// An Aggregator owns one Session. It appends parsed events, folds them into
// Stats incrementally and, when a GPS fix arrives, back-fills the location of
// recent kills and asks an Identifier to name unidentified ones. Readers only
// ever receive snapshots.
package session

import (
	"errors"
	"slices"
	"time"

	"github.com/artemis-hunt/artemis-go/pkg/artemis/event"
)

// ErrSessionFinalized is returned when events are added to a finalized session.
var ErrSessionFinalized = errors.New("session finalized")

// Session is a hunting session: its event log and the aggregate over it.
type Session struct {
	ID        string        `json:"id"`
	StartTime time.Time     `json:"start_time"`
	EndTime   *time.Time    `json:"end_time,omitempty"`
	Duration  time.Duration `json:"duration"`
	LoadoutID string        `json:"loadout_id,omitempty"`

	Events []event.Event `json:"events"`
	Stats  Stats         `json:"stats"`
}

// Finalized reports whether the session has ended.
func (s *Session) Finalized() bool { return s.EndTime != nil }

// Clone returns a deep copy of s.
func (s *Session) Clone() *Session {
	c := *s
	c.Events = slices.Clone(s.Events)
	if s.EndTime != nil {
		end := *s.EndTime
		c.EndTime = &end
	}
	return &c
}

// Find returns the event with the given ID.
func (s *Session) Find(id string) (event.Event, bool) {
	for i := len(s.Events) - 1; i >= 0; i-- {
		if s.Events[i].ID == id {
			return s.Events[i], true
		}
	}
	return event.Event{}, false
}
