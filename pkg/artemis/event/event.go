// Package event defines the typed domain events produced from a hunting chat log.
//
// This package is separated from the main artemis package to avoid import cycles
// between pkg/artemis, pkg/artemis/session and internal/parser.
package event

import (
	"encoding/json"
	"sort"
	"strings"
	"time"
)

// Type represents the kind of a domain event.
type Type string

const (
	ShotFired         Type = "shot_fired"
	HitRegistered     Type = "hit_registered"
	MissRegistered    Type = "miss_registered"
	DodgeRegistered   Type = "dodge_registered"
	EvadeRegistered   Type = "evade_registered"
	DeflectRegistered Type = "deflect_registered"
	MobKilled         Type = "mob_killed"
	PlayerDeath       Type = "player_death"
	LootReceived      Type = "loot_received"
	GpsUpdate         Type = "gps_update"
	SkillGain         Type = "skill_gain"
	SkillRankGain     Type = "skill_rank_gain"
	AttributeGain     Type = "attribute_gain"
	NewSkillAcquired  Type = "new_skill_acquired"
	GlobalAnnounced   Type = "global_announced"
)

// allTypes is the canonical list of all event types.
// Add new event types here when extending the parser.
var allTypes = []Type{
	ShotFired, HitRegistered, MissRegistered,
	DodgeRegistered, EvadeRegistered, DeflectRegistered,
	MobKilled, PlayerDeath, LootReceived, GpsUpdate,
	SkillGain, SkillRankGain, AttributeGain, NewSkillAcquired,
	GlobalAnnounced,
}

// TypeNames returns a sorted list of all valid event type names.
// This is the single source of truth for event type enumeration.
func TypeNames() []string {
	names := make([]string, len(allTypes))
	for i, t := range allTypes {
		names[i] = string(t)
	}
	sort.Strings(names)
	return names
}

// typeByName maps lowercase string names to Type for efficient lookup.
var typeByName = func() map[string]Type {
	m := make(map[string]Type, len(allTypes))
	for _, t := range allTypes {
		m[string(t)] = t
	}
	return m
}()

// ParseType converts a string to Type if valid.
// It is case-insensitive and trims leading/trailing whitespace.
func ParseType(name string) (Type, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	t, ok := typeByName[name]
	return t, ok
}

// Actor identifies who performed the action an event describes.
type Actor string

const (
	ActorUnknown Actor = ""
	ActorSelf    Actor = "self"
	ActorOther   Actor = "other"
)

// Event is one immutable fact parsed from the log.
//
// Once appended to a session the ID and Timestamp never change. Only the
// location and mob identity of MobKilled/PlayerDeath payloads may be patched,
// and only through WithPayload, which returns a copy.
type Event struct {
	ID        string    `json:"id"`
	SessionID string    `json:"session_id"`
	Timestamp time.Time `json:"timestamp"`
	Actor     Actor     `json:"actor,omitempty"`

	// Offset is the byte offset of the originating line in the log file.
	Offset int64 `json:"offset"`

	// RawLine is the original log line (only included if requested).
	RawLine string `json:"raw_line,omitempty"`

	Payload Payload `json:"-"`
}

// Type returns the payload's event type, or "" for an empty event.
func (e Event) Type() Type {
	if e.Payload == nil {
		return ""
	}
	return e.Payload.Type()
}

// WithPayload returns a copy of e carrying p.
func (e Event) WithPayload(p Payload) Event {
	e.Payload = p
	return e
}

// MarshalJSON flattens the payload next to the common fields.
func (e Event) MarshalJSON() ([]byte, error) {
	type common Event
	return json.Marshal(struct {
		common
		Type    Type    `json:"type"`
		Payload Payload `json:"payload,omitempty"`
	}{common: common(e), Type: e.Type(), Payload: e.Payload})
}
