// Package spatial identifies killed creatures from where they died and how
// much damage they absorbed.
package spatial

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"slices"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"

	"github.com/artemis-hunt/artemis-go/pkg/artemis/event"
	"github.com/artemis-hunt/artemis-go/pkg/artemis/session"
)

// Spatial confidence levels.
const (
	insideConfidence  = 1.0
	nearestConfidence = 0.6
)

// Config holds the identification thresholds.
type Config struct {
	// MaxAcceptRadius is the largest centroid distance at which the nearest
	// spawn is still considered when no polygon contains the kill.
	MaxAcceptRadius float64

	// HealthTolerance is the relative HP error at which the health score
	// drops to zero.
	HealthTolerance float64

	// MinConfidence is the acceptance threshold.
	MinConfidence float64

	// LootBoost is added when a looted item is known loot of the species.
	LootBoost float64
}

// DefaultConfig returns the default thresholds.
func DefaultConfig() Config {
	return Config{
		MaxAcceptRadius: 500,
		HealthTolerance: 0.2,
		MinConfidence:   0.55,
		LootBoost:       0.15,
	}
}

// Identifier implements session.Identifier over a ReferenceStore.
// It never mutates anything and is safe for concurrent use.
type Identifier struct {
	store  ReferenceStore
	cfg    Config
	logger *slog.Logger
}

var _ session.Identifier = (*Identifier)(nil)

// New creates an Identifier. Zero-valued fields of cfg take their defaults.
func New(store ReferenceStore, cfg Config, logger *slog.Logger) *Identifier {
	def := DefaultConfig()
	if cfg.MaxAcceptRadius <= 0 {
		cfg.MaxAcceptRadius = def.MaxAcceptRadius
	}
	if cfg.HealthTolerance <= 0 {
		cfg.HealthTolerance = def.HealthTolerance
	}
	if cfg.MinConfidence <= 0 {
		cfg.MinConfidence = def.MinConfidence
	}
	if cfg.LootBoost < 0 {
		cfg.LootBoost = 0
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Identifier{store: store, cfg: cfg, logger: logger}
}

// candidate is a spawn area considered for a kill.
type candidate struct {
	area     SpawnArea
	spatial  float64
	distance float64
	how      string
}

// Identify returns the best-scoring species and maturity for a kill, or
// false when nothing reaches the acceptance threshold. Reference lookup
// failures degrade to no match.
func (id *Identifier) Identify(ctx context.Context, sig session.CombatSignature, loc event.Location, lootHints []string) (*session.Identification, bool) {
	if !loc.IsKnown() {
		return nil, false
	}
	areas, err := id.store.SpawnAreas(ctx, loc.Planet)
	if err != nil {
		id.logger.Warn("spawn lookup failed", "planet", loc.Planet, "error", err)
		return nil, false
	}

	p := orb.Point{loc.Lon, loc.Lat}
	cands := id.candidates(areas, p)
	if len(cands) == 0 {
		id.logger.Debug("no spawn near kill", "location", loc.String())
		return nil, false
	}

	var (
		best      *session.Identification
		reasoning []string
	)
	for _, c := range cands {
		species, maturities := ParseSpawnName(c.area.Name)
		records, err := id.store.SpeciesHealth(ctx, species)
		if err != nil {
			reasoning = append(reasoning, fmt.Sprintf("%s: health lookup failed: %v", c.area.Name, err))
			continue
		}
		records = restrict(records, maturities)
		if len(records) == 0 {
			reasoning = append(reasoning, fmt.Sprintf("%s: no health records for %s", c.area.Name, species))
			continue
		}

		boost := id.lootBoost(ctx, species, lootHints)
		for _, rec := range records {
			health := healthScore(sig.EstimatedHealth, rec, id.cfg.HealthTolerance)
			// Loot only corroborates an HP match.
			loot := 0.0
			if health > 0 {
				loot = boost
			}
			conf := clamp(0.5*c.spatial+0.5*health+loot, 0, 1)
			verdict := "rejected"
			if conf >= id.cfg.MinConfidence {
				verdict = "accepted"
			}
			reasoning = append(reasoning, fmt.Sprintf(
				"%s %s in %q: spatial %.2f (%s), health %.2f (est %.0f vs %s), loot +%.2f, confidence %.2f %s",
				rec.Species, rec.Maturity, c.area.Name, c.spatial, c.how,
				health, sig.EstimatedHealth, hpRange(rec), loot, conf, verdict,
			))
			if conf < id.cfg.MinConfidence {
				continue
			}
			if best == nil || conf > best.Confidence {
				best = &session.Identification{
					Species:    rec.Species,
					Maturity:   rec.Maturity,
					MobID:      rec.ID,
					SpawnArea:  c.area.Name,
					Distance:   c.distance,
					Confidence: conf,
				}
			}
		}
	}

	for _, r := range reasoning {
		id.logger.Debug("identify candidate", "reason", r)
	}
	if best == nil {
		return nil, false
	}
	best.Reasoning = reasoning
	return best, true
}

// candidates returns every area whose polygon contains p, or else the single
// nearest area within the acceptance radius.
func (id *Identifier) candidates(areas []SpawnArea, p orb.Point) []candidate {
	var out []candidate
	for _, a := range areas {
		if Contains(a.Polygon, p) {
			out = append(out, candidate{
				area:     a,
				spatial:  insideConfidence,
				distance: planar.Distance(a.Centroid, p),
				how:      "inside",
			})
		}
	}
	if len(out) > 0 {
		return out
	}

	i, d := Nearest(areas, p)
	if i < 0 || d >= id.cfg.MaxAcceptRadius {
		return nil
	}
	spatial := nearestConfidence * (1 - d/id.cfg.MaxAcceptRadius)
	return []candidate{{area: areas[i], spatial: spatial, distance: d, how: fmt.Sprintf("nearest, %.0f away", d)}}
}

func (id *Identifier) lootBoost(ctx context.Context, species string, hints []string) float64 {
	if len(hints) == 0 || id.cfg.LootBoost == 0 {
		return 0
	}
	known, err := id.store.SpeciesLoot(ctx, species)
	if err != nil {
		return 0
	}
	for _, h := range hints {
		if slices.ContainsFunc(known, func(k string) bool { return strings.EqualFold(k, h) }) {
			return id.cfg.LootBoost
		}
	}
	return 0
}

// restrict keeps the records whose maturity the spawn lists. A spawn that
// lists none, or none that match, keeps every record.
func restrict(records []SpeciesHealthRecord, maturities []string) []SpeciesHealthRecord {
	if len(maturities) == 0 {
		return records
	}
	var out []SpeciesHealthRecord
	for _, r := range records {
		if slices.ContainsFunc(maturities, func(m string) bool { return strings.EqualFold(m, r.Maturity) }) {
			out = append(out, r)
		}
	}
	if len(out) == 0 {
		return records
	}
	return out
}

// healthScore is 1 inside the record's HP range and falls linearly to 0 as
// the relative error against the nearest bound reaches tol.
func healthScore(estimated float64, rec SpeciesHealthRecord, tol float64) float64 {
	if estimated <= 0 || rec.HP <= 0 {
		return 0
	}
	lo, hi := rec.HP, math.Max(rec.HP, rec.HPMax)
	if estimated >= lo && estimated <= hi {
		return 1
	}
	ref := lo
	if estimated > hi {
		ref = hi
	}
	rel := math.Abs(estimated-ref) / ref
	return clamp(1-rel/tol, 0, 1)
}

func hpRange(r SpeciesHealthRecord) string {
	if r.HPMax > r.HP {
		return fmt.Sprintf("%.0f-%.0f", r.HP, r.HPMax)
	}
	return fmt.Sprintf("%.0f", r.HP)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
