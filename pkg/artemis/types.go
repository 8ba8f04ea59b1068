package artemis

import (
	"github.com/artemis-hunt/artemis-go/internal/spatial"
	"github.com/artemis-hunt/artemis-go/internal/zones"
	"github.com/artemis-hunt/artemis-go/pkg/artemis/event"
	"github.com/artemis-hunt/artemis-go/pkg/artemis/session"
)

// Re-export the domain types so callers can import just
// "github.com/artemis-hunt/artemis-go/pkg/artemis".

// Event is one parsed chat log fact.
type Event = event.Event

// EventType is the kind of an Event.
type EventType = event.Type

// Session is an immutable session snapshot.
type Session = session.Session

// Stats are the derived session statistics.
type Stats = session.Stats

// CostProfile prices shots and damage for the active loadout.
type CostProfile = session.CostProfile

// Identifier resolves unnamed kills; see WithIdentifier.
type Identifier = session.Identifier

// ReferenceStore serves spawn polygons and species data for identification.
type ReferenceStore = spatial.ReferenceStore

// SpawnArea is one spawn polygon of a ReferenceStore.
type SpawnArea = spatial.SpawnArea

// SpeciesHealthRecord is one species maturity of a ReferenceStore.
type SpeciesHealthRecord = spatial.SpeciesHealthRecord

// IdentifyConfig tunes spatial identification.
type IdentifyConfig = spatial.Config

// HuntingZone is a cluster of located kills; see ClusterZones.
type HuntingZone = zones.HuntingZone

// Event type constants.
const (
	EventShotFired         = event.ShotFired
	EventHitRegistered     = event.HitRegistered
	EventMissRegistered    = event.MissRegistered
	EventDodgeRegistered   = event.DodgeRegistered
	EventEvadeRegistered   = event.EvadeRegistered
	EventDeflectRegistered = event.DeflectRegistered
	EventMobKilled         = event.MobKilled
	EventPlayerDeath       = event.PlayerDeath
	EventLootReceived      = event.LootReceived
	EventGpsUpdate         = event.GpsUpdate
	EventSkillGain         = event.SkillGain
	EventSkillRankGain     = event.SkillRankGain
	EventAttributeGain     = event.AttributeGain
	EventNewSkillAcquired  = event.NewSkillAcquired
	EventGlobalAnnounced   = event.GlobalAnnounced
)

// DefaultIdentifyConfig returns the default identification thresholds.
func DefaultIdentifyConfig() IdentifyConfig {
	return spatial.DefaultConfig()
}
