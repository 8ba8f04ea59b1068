package artemis

import "github.com/artemis-hunt/artemis-go/internal/zones"

// Default zone clustering parameters, in map units.
const (
	DefaultZoneGroupDistance = 500
	DefaultZoneMinRadius     = 50
)

// ClusterZones groups the located kills and deaths of s into hunting zones,
// pricing shots with profile. Kills without a location are left out.
func ClusterZones(s *Session, profile CostProfile, maxGroupDistance, minRadius float64) []HuntingZone {
	if s == nil {
		return nil
	}
	return zones.Cluster(zones.FromEvents(s.Events, profile), maxGroupDistance, minRadius)
}
