package session

import (
	"context"
	"slices"
	"time"

	"github.com/artemis-hunt/artemis-go/pkg/artemis/event"
)

// Aggregator owns a Session and folds events into it.
//
// It is not safe for concurrent use; the engine drives it from a single
// goroutine. Snapshots returned from its methods are immutable and may be
// shared freely.
type Aggregator struct {
	opts    options
	sess    Session
	profile CostProfile

	// patched marks arena indexes whose payload was already back-filled.
	patched []bool

	// signatures holds the combat signature of each unlocated kill, keyed
	// by arena index, until the kill is patched or ages out of the scan window.
	signatures map[int]CombatSignature
	tracker    signatureTracker

	// shared is set while a snapshot aliases the arena's backing array.
	// The next patch copies the arena first.
	shared bool

	pingArmed  bool
	pingKillAt time.Time
	needsPing  bool
}

// NewAggregator creates an aggregator for a new, empty session.
func NewAggregator(id string, start time.Time, opts ...Option) *Aggregator {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Aggregator{
		opts:       o,
		sess:       Session{ID: id, StartTime: start},
		signatures: make(map[int]CombatSignature),
	}
}

// Profile returns the cost profile used by the last AddEvents call.
func (a *Aggregator) Profile() CostProfile { return a.profile }

// AddEvents appends events, folds them into the stats and returns a snapshot
// together with any previously appended events that were patched as a
// result. With no events and a different profile it only reprices the
// session; combat counters are left untouched.
func (a *Aggregator) AddEvents(ctx context.Context, events []event.Event, profile CostProfile) (*Session, []event.Event, error) {
	if a.sess.Finalized() {
		return nil, nil, ErrSessionFinalized
	}
	a.profile = profile
	a.sess.LoadoutID = profile.ID

	var patched []int
	for _, e := range events {
		i := len(a.sess.Events)
		a.sess.Events = append(a.sess.Events, e)
		a.patched = append(a.patched, false)
		a.sess.Stats.fold(e)
		a.tracker.fold(e)

		switch p := e.Payload.(type) {
		case event.Kill:
			sig := a.tracker.take()
			if !p.Location.IsKnown() {
				a.signatures[i] = sig
				a.pingArmed = true
				a.pingKillAt = e.Timestamp
			}
		case event.Shot:
			if e.Actor != event.ActorOther {
				a.observeShot(e.Timestamp)
			}
		case event.Gps:
			a.pingArmed = false
			a.needsPing = false
			patched = append(patched, a.backfill(ctx, i, p.Location)...)
		}
	}
	a.sess.Stats.finalize(profile)
	a.pruneSignatures()

	out := make([]event.Event, len(patched))
	for j, i := range patched {
		out[j] = a.sess.Events[i]
	}
	return a.snapshot(), out, nil
}

// Tick advances the session duration. It never touches stats.
func (a *Aggregator) Tick(now time.Time) {
	if a.sess.Finalized() {
		return
	}
	if d := now.Sub(a.sess.StartTime); d > 0 {
		a.sess.Duration = d
	}
}

// Finalize ends the session and returns its final snapshot. Calling it again
// returns the same final state.
func (a *Aggregator) Finalize(now time.Time) *Session {
	if !a.sess.Finalized() {
		a.Tick(now)
		end := now
		a.sess.EndTime = &end
	}
	return a.snapshot()
}

// Snapshot returns an immutable view of the current session.
func (a *Aggregator) Snapshot() *Session {
	return a.snapshot()
}

// PendingLocationPing reports, once, whether the first shot after an
// unlocated kill came quickly enough that a location ping should be
// requested from the player.
func (a *Aggregator) PendingLocationPing() bool {
	v := a.needsPing
	a.needsPing = false
	return v
}

func (a *Aggregator) observeShot(ts time.Time) {
	if !a.pingArmed {
		return
	}
	a.pingArmed = false
	w := a.opts.firstShotPingWindow
	if w <= 0 {
		return
	}
	if d := ts.Sub(a.pingKillAt); d >= 0 && d <= w {
		a.needsPing = true
	}
}

// backfill applies the GPS fix at arena index gps to recent unlocated kills
// and deaths. It returns the patched indexes in ascending order.
func (a *Aggregator) backfill(ctx context.Context, gps int, loc event.Location) []int {
	at := a.sess.Events[gps].Timestamp
	lo := max(0, gps-a.opts.retroScanLimit)

	var out []int
	for i := gps - 1; i >= lo; i-- {
		if a.patched[i] {
			continue
		}
		e := a.sess.Events[i]
		if age := at.Sub(e.Timestamp); age < 0 || age >= a.opts.retroWindow {
			continue
		}
		switch p := e.Payload.(type) {
		case event.Kill:
			if p.Location.IsKnown() {
				continue
			}
			p.Location = loc
			if p.Unidentified() {
				a.identify(ctx, i, &p)
			}
			a.patch(i, e.WithPayload(p))
			out = append(out, i)
		case event.Death:
			if p.Location.IsKnown() {
				continue
			}
			p.Location = loc
			a.patch(i, e.WithPayload(p))
			out = append(out, i)
		}
	}
	slices.Reverse(out)
	return out
}

func (a *Aggregator) identify(ctx context.Context, i int, k *event.Kill) {
	if a.opts.identifier == nil {
		return
	}
	sig := a.signatures[i]
	hints := a.lootHints(i)
	id, ok := a.opts.identifier.Identify(ctx, sig, k.Location, hints)
	if !ok || id == nil {
		a.opts.logger.Debug("kill not identified",
			"event_id", a.sess.Events[i].ID,
			"location", k.Location.String(),
			"estimated_health", sig.EstimatedHealth,
		)
		return
	}
	k.MobName = id.MobName()
	k.Species = id.Species
	k.Maturity = id.Maturity
	k.MobID = id.MobID
	a.opts.logger.Info("kill identified",
		"event_id", a.sess.Events[i].ID,
		"mob", k.MobName,
		"confidence", id.Confidence,
		"distance", id.Distance,
	)
}

// lootHints collects item names looted between the kill at index i and the
// next kill.
func (a *Aggregator) lootHints(i int) []string {
	var hints []string
	for _, e := range a.sess.Events[i+1:] {
		switch p := e.Payload.(type) {
		case event.Kill:
			return hints
		case event.Loot:
			for _, it := range p.Items {
				if !slices.Contains(hints, it.Name) {
					hints = append(hints, it.Name)
				}
			}
		}
	}
	return hints
}

// patch replaces the payload at index i exactly once.
func (a *Aggregator) patch(i int, e event.Event) {
	if a.shared {
		a.sess.Events = slices.Clone(a.sess.Events)
		a.shared = false
	}
	a.sess.Events[i] = e
	a.patched[i] = true
	delete(a.signatures, i)
}

// pruneSignatures forgets kills that no future GPS fix can reach.
func (a *Aggregator) pruneSignatures() {
	horizon := len(a.sess.Events) - a.opts.retroScanLimit
	for i := range a.signatures {
		if i < horizon {
			delete(a.signatures, i)
		}
	}
}

func (a *Aggregator) snapshot() *Session {
	s := a.sess
	n := len(a.sess.Events)
	s.Events = a.sess.Events[:n:n]
	if a.sess.EndTime != nil {
		end := *a.sess.EndTime
		s.EndTime = &end
	}
	a.shared = true
	return &s
}
