// Package refdata loads and serves the reference data used for mob
// identification: spawn polygons, species health tables and loot tables.
package refdata

import (
	"context"
	"errors"
	"slices"
	"strings"

	"github.com/artemis-hunt/artemis-go/internal/spatial"
)

// ErrUnknownSpecies is returned for lookups of a species with no records.
var ErrUnknownSpecies = errors.New("unknown species")

// MemoryStore is an immutable in-memory ReferenceStore.
// Planet and species keys are case-insensitive.
type MemoryStore struct {
	spawns  map[string][]spatial.SpawnArea
	health  map[string][]spatial.SpeciesHealthRecord
	loot    map[string][]string
	species []string
}

var _ spatial.ReferenceStore = (*MemoryStore)(nil)

// NewMemoryStore builds a store from already validated data.
func NewMemoryStore(spawns []spatial.SpawnArea, health []spatial.SpeciesHealthRecord, loot map[string][]string) *MemoryStore {
	s := &MemoryStore{
		spawns: make(map[string][]spatial.SpawnArea),
		health: make(map[string][]spatial.SpeciesHealthRecord),
		loot:   make(map[string][]string, len(loot)),
	}
	for _, a := range spawns {
		k := key(a.Planet)
		s.spawns[k] = append(s.spawns[k], a)
	}
	for _, r := range health {
		k := key(r.Species)
		if _, ok := s.health[k]; !ok {
			s.species = append(s.species, r.Species)
		}
		s.health[k] = append(s.health[k], r)
	}
	for sp, items := range loot {
		s.loot[key(sp)] = slices.Clone(items)
	}
	slices.Sort(s.species)
	return s
}

// SpawnAreas returns the spawn areas on planet. An unknown planet has none.
func (s *MemoryStore) SpawnAreas(_ context.Context, planet string) ([]spatial.SpawnArea, error) {
	return s.spawns[key(planet)], nil
}

// SpeciesHealth returns the maturity records of species.
func (s *MemoryStore) SpeciesHealth(_ context.Context, species string) ([]spatial.SpeciesHealthRecord, error) {
	recs, ok := s.health[key(species)]
	if !ok {
		return nil, ErrUnknownSpecies
	}
	return recs, nil
}

// SpeciesLoot returns the item names species is known to drop.
func (s *MemoryStore) SpeciesLoot(_ context.Context, species string) ([]string, error) {
	return s.loot[key(species)], nil
}

// Species lists the species with health records, sorted.
func (s *MemoryStore) Species() []string {
	return slices.Clone(s.species)
}

// SpawnCount returns the total number of spawn areas.
func (s *MemoryStore) SpawnCount() int {
	n := 0
	for _, areas := range s.spawns {
		n += len(areas)
	}
	return n
}

func key(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
