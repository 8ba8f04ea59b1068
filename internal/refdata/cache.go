package refdata

import (
	"context"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/artemis-hunt/artemis-go/internal/spatial"
)

// DefaultCacheSize is the number of entries kept per lookup kind.
const DefaultCacheSize = 256

// CachedStore memoizes lookups against a slower ReferenceStore.
// Failed lookups are not cached. It is safe for concurrent use.
type CachedStore struct {
	next   spatial.ReferenceStore
	spawns *lru.Cache[string, []spatial.SpawnArea]
	health *lru.Cache[string, []spatial.SpeciesHealthRecord]
	loot   *lru.Cache[string, []string]
}

var _ spatial.ReferenceStore = (*CachedStore)(nil)

// NewCachedStore wraps next. A non-positive size uses DefaultCacheSize.
func NewCachedStore(next spatial.ReferenceStore, size int) *CachedStore {
	if size <= 0 {
		size = DefaultCacheSize
	}
	// lru.New only fails for a non-positive size.
	spawns, _ := lru.New[string, []spatial.SpawnArea](size)
	health, _ := lru.New[string, []spatial.SpeciesHealthRecord](size)
	loot, _ := lru.New[string, []string](size)
	return &CachedStore{next: next, spawns: spawns, health: health, loot: loot}
}

func (c *CachedStore) SpawnAreas(ctx context.Context, planet string) ([]spatial.SpawnArea, error) {
	return cached(c.spawns, key(planet), func() ([]spatial.SpawnArea, error) {
		return c.next.SpawnAreas(ctx, planet)
	})
}

func (c *CachedStore) SpeciesHealth(ctx context.Context, species string) ([]spatial.SpeciesHealthRecord, error) {
	return cached(c.health, key(species), func() ([]spatial.SpeciesHealthRecord, error) {
		return c.next.SpeciesHealth(ctx, species)
	})
}

func (c *CachedStore) SpeciesLoot(ctx context.Context, species string) ([]string, error) {
	return cached(c.loot, key(species), func() ([]string, error) {
		return c.next.SpeciesLoot(ctx, species)
	})
}

func cached[V any](cache *lru.Cache[string, V], k string, load func() (V, error)) (V, error) {
	if v, ok := cache.Get(k); ok {
		return v, nil
	}
	v, err := load()
	if err != nil {
		return v, err
	}
	cache.Add(k, v)
	return v, nil
}
