// Package zones groups located kills into hunting zones.
package zones

import (
	"slices"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"

	"github.com/artemis-hunt/artemis-go/pkg/artemis/event"
	"github.com/artemis-hunt/artemis-go/pkg/artemis/session"
)

// LocatedKill is a kill or death with a known position.
type LocatedKill struct {
	EventID   string         `json:"event_id"`
	Timestamp time.Time      `json:"timestamp"`
	Location  event.Location `json:"location"`
	Death     bool           `json:"death,omitempty"`

	// Profit is the loot credited to the kill minus the cost of the shots
	// fired since the previous kill.
	Profit float64 `json:"profit"`
}

func (k LocatedKill) point() orb.Point {
	return orb.Point{k.Location.Lon, k.Location.Lat}
}

// HuntingZone is a cluster of nearby kills.
type HuntingZone struct {
	Planet  string        `json:"planet"`
	Center  orb.Point     `json:"center"`
	Radius  float64       `json:"radius"`
	Kills   int           `json:"kills"`
	Deaths  int           `json:"deaths"`
	Profit  float64       `json:"profit"`
	Members []LocatedKill `json:"members"`
}

// ProfitPerKill is zero for a zone without kills.
func (z HuntingZone) ProfitPerKill() float64 {
	if z.Kills == 0 {
		return 0
	}
	return z.Profit / float64(z.Kills)
}

// Cluster groups kills in a single greedy pass. Each kill joins the first
// zone on the same planet whose center is within maxGroupDistance; that
// zone's center moves to the running mean of its members and its radius
// becomes the larger of minRadius and the farthest member. Otherwise the
// kill seeds a new zone. The result depends only on input order.
func Cluster(kills []LocatedKill, maxGroupDistance, minRadius float64) []HuntingZone {
	var zones []HuntingZone
	for _, k := range kills {
		p := k.point()
		i := slices.IndexFunc(zones, func(z HuntingZone) bool {
			return z.Planet == k.Location.Planet && planar.Distance(z.Center, p) <= maxGroupDistance
		})
		if i < 0 {
			zones = append(zones, HuntingZone{
				Planet: k.Location.Planet,
				Center: p,
				Radius: minRadius,
			})
			i = len(zones) - 1
		}
		zones[i].add(k, minRadius)
	}
	return zones
}

func (z *HuntingZone) add(k LocatedKill, minRadius float64) {
	z.Members = append(z.Members, k)
	n := float64(len(z.Members))
	p := k.point()
	z.Center[0] += (p[0] - z.Center[0]) / n
	z.Center[1] += (p[1] - z.Center[1]) / n

	z.Radius = minRadius
	for _, m := range z.Members {
		z.Radius = max(z.Radius, planar.Distance(z.Center, m.point()))
	}

	if k.Death {
		z.Deaths++
	} else {
		z.Kills++
	}
	z.Profit += k.Profit
}

// FromEvents extracts located kills and deaths from a session's events,
// sorted by timestamp. Loot is credited to the most recent kill; shots are
// charged to the next one.
func FromEvents(events []event.Event, profile session.CostProfile) []LocatedKill {
	type pending struct {
		LocatedKill
		located bool
	}
	var (
		out      []pending
		lastKill = -1
		cost     float64
	)
	for _, e := range events {
		switch p := e.Payload.(type) {
		case event.Shot:
			if e.Actor == event.ActorOther {
				continue
			}
			if p.AmmoCost > 0 {
				cost += p.AmmoCost
			} else {
				cost += profile.CostPerShot()
			}
		case event.Kill:
			out = append(out, pending{
				LocatedKill: LocatedKill{EventID: e.ID, Timestamp: e.Timestamp, Location: p.Location, Profit: -cost},
				located:     p.Location.IsKnown(),
			})
			lastKill = len(out) - 1
			cost = 0
		case event.Death:
			out = append(out, pending{
				LocatedKill: LocatedKill{EventID: e.ID, Timestamp: e.Timestamp, Location: p.Location, Death: true, Profit: -p.DecayCost},
				located:     p.Location.IsKnown(),
			})
		case event.Loot:
			if lastKill >= 0 {
				out[lastKill].Profit += p.TotalTTValue
			}
		}
	}

	kills := make([]LocatedKill, 0, len(out))
	for _, k := range out {
		if k.located {
			kills = append(kills, k.LocatedKill)
		}
	}
	slices.SortStableFunc(kills, func(a, b LocatedKill) int {
		return a.Timestamp.Compare(b.Timestamp)
	})
	return kills
}
