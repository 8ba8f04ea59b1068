package spatial

import (
	"context"
	"strings"

	"github.com/paulmach/orb"

	"github.com/artemis-hunt/artemis-go/pkg/artemis/event"
)

// SpawnArea is a region where one species spawns.
type SpawnArea struct {
	ID          int
	Name        string // "Atrox - Young/Provider"
	Planet      string
	Centroid    orb.Point
	DensityTier string
	Polygon     orb.Ring
}

// SpeciesHealthRecord is the health range of one maturity of a species.
type SpeciesHealthRecord struct {
	ID       string
	Species  string
	Maturity string
	HP       float64
	HPMax    float64 // 0 when only a point value is known
	Level    int
}

// ReferenceStore supplies read-only reference data.
type ReferenceStore interface {
	SpawnAreas(ctx context.Context, planet string) ([]SpawnArea, error)
	SpeciesHealth(ctx context.Context, species string) ([]SpeciesHealthRecord, error)
	SpeciesLoot(ctx context.Context, species string) ([]string, error)
}

// ParseSpawnName splits a spawn name such as "Atrox - Young/Provider" into
// the species and the maturities it lists. Parts that are not maturity names
// are dropped.
func ParseSpawnName(name string) (species string, maturities []string) {
	head, tail, found := strings.Cut(name, " - ")
	species = strings.TrimSpace(head)
	if !found {
		return species, nil
	}
	for _, part := range strings.Split(tail, "/") {
		part = strings.TrimSpace(part)
		if event.IsMaturity(part) {
			maturities = append(maturities, part)
		}
	}
	return species, maturities
}
