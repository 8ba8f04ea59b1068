package refdata

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artemis-hunt/artemis-go/internal/spatial"
	"github.com/artemis-hunt/artemis-go/pkg/artemis/event"
	"github.com/artemis-hunt/artemis-go/pkg/artemis/session"
)

const sampleYAML = `
spawns:
  - id: 101
    name: "Atrox - Young/Provider"
    planet: Calypso
    density: medium
    centroid: {lon: 79085, lat: 67537}
    polygon: [[78900, 67400], [79300, 67400], [79300, 67700], [78900, 67700]]
  - id: 102
    name: "Daikiba - Mature"
    planet: calypso
    polygon: [[0, 0], [10, 0], [10, 10], [0, 10]]
species:
  - name: Atrox
    loot: [Animal Oil Residue, Atrox Hide]
    maturities:
      - {maturity: Young, hp: 620, hp_max: 680, level: 8}
      - {maturity: Provider, hp: 1200, level: 14, id: atrox-prov}
  - name: Daikiba
    maturities:
      - {maturity: Mature, hp: 300}
`

func TestDecode(t *testing.T) {
	store, err := Decode(strings.NewReader(sampleYAML))
	require.NoError(t, err)
	ctx := context.Background()

	areas, err := store.SpawnAreas(ctx, "CALYPSO")
	require.NoError(t, err)
	require.Len(t, areas, 2)
	assert.Equal(t, orb.Point{79085, 67537}, areas[0].Centroid)
	assert.Equal(t, "medium", areas[0].DensityTier)
	assert.Len(t, areas[0].Polygon, 4)
	assert.Equal(t, orb.Point{5, 5}, areas[1].Centroid, "centroid derived from polygon")

	recs, err := store.SpeciesHealth(ctx, "atrox")
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "Atrox Young", recs[0].ID)
	assert.Equal(t, 680.0, recs[0].HPMax)
	assert.Equal(t, "atrox-prov", recs[1].ID)

	loot, err := store.SpeciesLoot(ctx, "Atrox")
	require.NoError(t, err)
	assert.Equal(t, []string{"Animal Oil Residue", "Atrox Hide"}, loot)

	assert.Equal(t, []string{"Atrox", "Daikiba"}, store.Species())
	assert.Equal(t, 2, store.SpawnCount())

	_, err = store.SpeciesHealth(ctx, "Feffoid")
	assert.ErrorIs(t, err, ErrUnknownSpecies)

	none, err := store.SpawnAreas(ctx, "Arkadia")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestDecode_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"missing planet", "spawns:\n  - {id: 1, polygon: [[0, 0], [1, 1], [1, 0]]}\n"},
		{"bad vertex", "spawns:\n  - {id: 1, planet: X, polygon: [[0, 0, 0]]}\n"},
		{"no geometry", "spawns:\n  - {id: 1, planet: X}\n"},
		{"non-positive hp", "species:\n  - {name: A, maturities: [{maturity: Young, hp: 0}]}\n"},
		{"hp_max below hp", "species:\n  - {name: A, maturities: [{maturity: Young, hp: 10, hp_max: 5}]}\n"},
		{"unknown field", "spawns:\n  - {id: 1, planet: X, colour: red, polygon: [[0, 0], [1, 1], [1, 0]]}\n"},
		{"not yaml", "spawns: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestDecode_Empty(t *testing.T) {
	store, err := Decode(strings.NewReader(""))
	require.NoError(t, err)
	assert.Zero(t, store.SpawnCount())
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reference.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleYAML), 0644))

	store, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2, store.SpawnCount())

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

type countingStore struct {
	spatial.ReferenceStore
	spawnCalls  int
	healthCalls int
	fail        bool
}

func (c *countingStore) SpawnAreas(ctx context.Context, planet string) ([]spatial.SpawnArea, error) {
	c.spawnCalls++
	return c.ReferenceStore.SpawnAreas(ctx, planet)
}

func (c *countingStore) SpeciesHealth(ctx context.Context, species string) ([]spatial.SpeciesHealthRecord, error) {
	c.healthCalls++
	if c.fail {
		return nil, errors.New("transient")
	}
	return c.ReferenceStore.SpeciesHealth(ctx, species)
}

func TestCachedStore(t *testing.T) {
	mem, err := Decode(strings.NewReader(sampleYAML))
	require.NoError(t, err)
	backing := &countingStore{ReferenceStore: mem}
	cache := NewCachedStore(backing, 8)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		areas, err := cache.SpawnAreas(ctx, "Calypso")
		require.NoError(t, err)
		assert.Len(t, areas, 2)
	}
	_, err = cache.SpawnAreas(ctx, "calypso")
	require.NoError(t, err)
	assert.Equal(t, 1, backing.spawnCalls)

	backing.fail = true
	_, err = cache.SpeciesHealth(ctx, "Atrox")
	assert.Error(t, err)
	backing.fail = false
	recs, err := cache.SpeciesHealth(ctx, "Atrox")
	require.NoError(t, err)
	assert.Len(t, recs, 2)
	_, err = cache.SpeciesHealth(ctx, "Atrox")
	require.NoError(t, err)
	assert.Equal(t, 2, backing.healthCalls, "errors are not cached")

	loot, err := cache.SpeciesLoot(ctx, "Atrox")
	require.NoError(t, err)
	assert.Len(t, loot, 2)
}

func TestCachedStore_FeedsIdentifier(t *testing.T) {
	mem, err := Decode(strings.NewReader(sampleYAML))
	require.NoError(t, err)
	id := spatial.New(NewCachedStore(mem, 0), spatial.DefaultConfig(), nil)

	loc := event.Location{Planet: "Calypso", Lon: 79085, Lat: 67537}
	res, ok := id.Identify(context.Background(), session.CombatSignature{EstimatedHealth: 650}, loc, nil)
	require.True(t, ok)
	assert.Equal(t, "Atrox Young", res.MobName())
}
