package session

import (
	"context"

	"github.com/artemis-hunt/artemis-go/pkg/artemis/event"
)

// CombatSignature summarizes the player's offense between the previous kill
// and the kill being identified.
type CombatSignature struct {
	// EstimatedHealth is the damage dealt to the target.
	EstimatedHealth float64 `json:"estimated_health"`
	Shots           int     `json:"shots"`
	Hits            int     `json:"hits"`
	Criticals       int     `json:"criticals"`
	Accuracy        float64 `json:"accuracy"`
}

// Identification is a confident guess at which creature was killed.
type Identification struct {
	Species    string  `json:"species"`
	Maturity   string  `json:"maturity"`
	MobID      string  `json:"mob_id,omitempty"`
	SpawnArea  string  `json:"spawn_area,omitempty"`
	Confidence float64 `json:"confidence"`

	// Distance is from the kill to the spawn area's centroid.
	Distance float64 `json:"distance"`

	// Reasoning has one line per candidate considered.
	Reasoning []string `json:"reasoning,omitempty"`
}

// MobName is the display name of the identified creature.
func (id *Identification) MobName() string {
	return event.JoinMobName(id.Species, id.Maturity)
}

// Identifier names a creature from how it fought and where it died.
// Implementations must be read-only; a false result leaves the kill unnamed.
type Identifier interface {
	Identify(ctx context.Context, sig CombatSignature, loc event.Location, lootHints []string) (*Identification, bool)
}

// IdentifierFunc adapts a function to Identifier.
type IdentifierFunc func(ctx context.Context, sig CombatSignature, loc event.Location, lootHints []string) (*Identification, bool)

func (f IdentifierFunc) Identify(ctx context.Context, sig CombatSignature, loc event.Location, lootHints []string) (*Identification, bool) {
	return f(ctx, sig, loc, lootHints)
}

// signatureTracker accumulates the offense since the last kill.
type signatureTracker struct {
	sig CombatSignature
}

func (t *signatureTracker) fold(e event.Event) {
	if e.Actor == event.ActorOther {
		return
	}
	switch p := e.Payload.(type) {
	case event.Shot:
		t.sig.Shots++
	case event.Hit:
		t.sig.Hits++
		t.sig.EstimatedHealth += p.Damage
		if p.Critical {
			t.sig.Criticals++
		}
	}
}

// take returns the signature accumulated so far and starts a new one.
func (t *signatureTracker) take() CombatSignature {
	sig := t.sig
	if sig.Shots > 0 {
		sig.Accuracy = float64(sig.Hits) / float64(sig.Shots)
	}
	t.sig = CombatSignature{}
	return sig
}
