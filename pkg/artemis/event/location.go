package event

import (
	"fmt"
	"strings"
)

// UnknownCreature is the placeholder name of a kill whose target could not
// be read from the log.
const UnknownCreature = "Unknown Creature"

// Location is a planet coordinate as printed in location links.
type Location struct {
	Planet string  `json:"planet,omitempty"`
	Lon    float64 `json:"lon"`
	Lat    float64 `json:"lat"`
	Alt    float64 `json:"alt,omitempty"`
}

// UnknownLocation is the sentinel carried by events created before a GPS fix.
var UnknownLocation = Location{}

// IsKnown reports whether l holds a real fix.
func (l Location) IsKnown() bool {
	return l.Planet != "" || l.Lon != 0 || l.Lat != 0
}

func (l Location) String() string {
	if !l.IsKnown() {
		return "unknown"
	}
	return fmt.Sprintf("%s (%.0f, %.0f)", l.Planet, l.Lon, l.Lat)
}

// Maturities lists the creature maturity names in ascending order.
var Maturities = []string{
	"Young", "Mature", "Old", "Provider", "Guardian", "Dominant",
	"Alpha", "Prowler", "Stalker", "Hunter", "Brute", "Elder", "Champion",
}

// IsMaturity reports whether s names a maturity (case-insensitive).
func IsMaturity(s string) bool {
	for _, m := range Maturities {
		if strings.EqualFold(m, s) {
			return true
		}
	}
	return false
}

// SplitMobName splits "Atrox Young" into species and maturity.
// Names without a trailing maturity are returned whole as the species.
func SplitMobName(name string) (species, maturity string) {
	name = strings.TrimSpace(name)
	if name == "" || name == UnknownCreature {
		return "", ""
	}
	i := strings.LastIndexByte(name, ' ')
	if i < 0 {
		return name, ""
	}
	if last := name[i+1:]; IsMaturity(last) {
		return strings.TrimSpace(name[:i]), canonicalMaturity(last)
	}
	return name, ""
}

// JoinMobName is the inverse of SplitMobName.
func JoinMobName(species, maturity string) string {
	if maturity == "" {
		return species
	}
	return species + " " + maturity
}

func canonicalMaturity(s string) string {
	for _, m := range Maturities {
		if strings.EqualFold(m, s) {
			return m
		}
	}
	return s
}
