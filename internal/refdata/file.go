package refdata

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/paulmach/orb"
	"gopkg.in/yaml.v3"

	"github.com/artemis-hunt/artemis-go/internal/spatial"
	"github.com/artemis-hunt/artemis-go/pkg/artemis/event"
)

// File is the on-disk reference data layout.
type File struct {
	Spawns  []SpawnEntry   `yaml:"spawns"`
	Species []SpeciesEntry `yaml:"species"`
}

type SpawnEntry struct {
	ID       int         `yaml:"id"`
	Name     string      `yaml:"name"`
	Planet   string      `yaml:"planet"`
	Density  string      `yaml:"density"`
	Centroid *Coordinate `yaml:"centroid"`
	Polygon  [][]float64 `yaml:"polygon"`
}

type Coordinate struct {
	Lon float64 `yaml:"lon"`
	Lat float64 `yaml:"lat"`
}

type SpeciesEntry struct {
	Name       string          `yaml:"name"`
	Loot       []string        `yaml:"loot"`
	Maturities []MaturityEntry `yaml:"maturities"`
}

type MaturityEntry struct {
	ID       string  `yaml:"id"`
	Maturity string  `yaml:"maturity"`
	HP       float64 `yaml:"hp"`
	HPMax    float64 `yaml:"hp_max"`
	Level    int     `yaml:"level"`
}

// Load reads a reference data file.
func Load(path string) (*MemoryStore, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening reference data: %w", err)
	}
	defer f.Close()

	store, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return store, nil
}

// Decode parses reference data YAML and validates it.
func Decode(r io.Reader) (*MemoryStore, error) {
	var file File
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil && err != io.EOF {
		return nil, fmt.Errorf("decoding reference data: %w", err)
	}
	return file.Store()
}

// Store validates f and converts it into a MemoryStore.
func (f *File) Store() (*MemoryStore, error) {
	spawns := make([]spatial.SpawnArea, 0, len(f.Spawns))
	for i, e := range f.Spawns {
		area, err := e.area()
		if err != nil {
			return nil, fmt.Errorf("spawn %d (%q): %w", i, e.Name, err)
		}
		spawns = append(spawns, area)
	}

	var health []spatial.SpeciesHealthRecord
	loot := make(map[string][]string, len(f.Species))
	for _, sp := range f.Species {
		if sp.Name == "" {
			return nil, fmt.Errorf("species without name")
		}
		if len(sp.Loot) > 0 {
			loot[sp.Name] = sp.Loot
		}
		for _, m := range sp.Maturities {
			if m.HP <= 0 {
				return nil, fmt.Errorf("species %q maturity %q: hp must be positive", sp.Name, m.Maturity)
			}
			if m.HPMax != 0 && m.HPMax < m.HP {
				return nil, fmt.Errorf("species %q maturity %q: hp_max below hp", sp.Name, m.Maturity)
			}
			id := m.ID
			if id == "" {
				id = event.JoinMobName(sp.Name, m.Maturity)
			}
			health = append(health, spatial.SpeciesHealthRecord{
				ID:       id,
				Species:  sp.Name,
				Maturity: m.Maturity,
				HP:       m.HP,
				HPMax:    m.HPMax,
				Level:    m.Level,
			})
		}
	}
	return NewMemoryStore(spawns, health, loot), nil
}

func (e SpawnEntry) area() (spatial.SpawnArea, error) {
	if e.Planet == "" {
		return spatial.SpawnArea{}, fmt.Errorf("missing planet")
	}
	ring := make(orb.Ring, 0, len(e.Polygon))
	for j, v := range e.Polygon {
		if len(v) != 2 {
			return spatial.SpawnArea{}, fmt.Errorf("polygon vertex %d: want [lon, lat], got %d values", j, len(v))
		}
		ring = append(ring, orb.Point{v[0], v[1]})
	}

	var centroid orb.Point
	switch {
	case e.Centroid != nil:
		centroid = orb.Point{e.Centroid.Lon, e.Centroid.Lat}
	case len(ring) > 0:
		centroid = spatial.Centroid(ring)
	default:
		return spatial.SpawnArea{}, fmt.Errorf("needs a centroid or a polygon")
	}

	name := e.Name
	if name == "" {
		name = "spawn " + strconv.Itoa(e.ID)
	}
	return spatial.SpawnArea{
		ID:          e.ID,
		Name:        name,
		Planet:      e.Planet,
		Centroid:    centroid,
		DensityTier: e.Density,
		Polygon:     ring,
	}, nil
}
