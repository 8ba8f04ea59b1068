package session

import (
	"time"

	"github.com/artemis-hunt/artemis-go/pkg/artemis/event"
)

// CostProfile is the active loadout's per-shot economics, in PED.
type CostProfile struct {
	ID   string `json:"id" koanf:"id"`
	Name string `json:"name" koanf:"name"`

	AmmoPerShot         float64 `json:"ammo_per_shot" koanf:"ammo_per_shot"`
	WeaponDecayPerShot  float64 `json:"weapon_decay_per_shot" koanf:"weapon_decay_per_shot"`
	ArmorDecayPerDamage float64 `json:"armor_decay_per_damage" koanf:"armor_decay_per_damage"`

	// ManualCostPerShot replaces ammo and weapon decay when UseManualCost is set.
	ManualCostPerShot float64 `json:"manual_cost_per_shot,omitempty" koanf:"manual_cost_per_shot"`
	UseManualCost     bool    `json:"use_manual_cost,omitempty" koanf:"use_manual_cost"`
}

// CostPerShot is the total cost of one shot whose cost the log does not state.
func (c CostProfile) CostPerShot() float64 {
	if c.UseManualCost {
		return c.ManualCostPerShot
	}
	return c.AmmoPerShot + c.WeaponDecayPerShot
}

// Stats is the running aggregate over a session's events.
//
// Counters are folded one event at a time. Cost-derived fields (AmmoCost
// through ProfitPerHour) are a pure function of the counters and the cost
// profile and are recomputed by finalize after every fold or profile change.
type Stats struct {
	Shots          int     `json:"shots"`
	Hits           int     `json:"hits"`
	Misses         int     `json:"misses"`
	Criticals      int     `json:"criticals"`
	DamageDealt    float64 `json:"damage_dealt"`
	CriticalDamage float64 `json:"critical_damage"`

	IncomingHits   int     `json:"incoming_hits"`
	IncomingMisses int     `json:"incoming_misses"`
	DamageTaken    float64 `json:"damage_taken"`

	SelfDodges     int `json:"self_dodges"`
	SelfEvades     int `json:"self_evades"`
	SelfDeflects   int `json:"self_deflects"`
	TargetDodges   int `json:"target_dodges"`
	TargetEvades   int `json:"target_evades"`
	TargetDeflects int `json:"target_deflects"`

	Kills  int `json:"kills"`
	Deaths int `json:"deaths"`

	LootEvents  int     `json:"loot_events"`
	LootItems   int     `json:"loot_items"`
	LootTTValue float64 `json:"loot_tt_value"`
	LootMVValue float64 `json:"loot_mv_value"`
	Globals     int     `json:"globals"`
	HallOfFames int     `json:"hall_of_fames"`

	SkillGains      int     `json:"skill_gains"`
	SkillExperience float64 `json:"skill_experience"`
	SkillRanks      int     `json:"skill_ranks"`
	AttributeGains  int     `json:"attribute_gains"`
	NewSkills       int     `json:"new_skills"`

	// StatedAmmoCost sums costs printed in the log itself; CostedShots are
	// the shots priced through the cost profile instead.
	StatedAmmoCost float64 `json:"stated_ammo_cost"`
	CostedShots    int     `json:"costed_shots"`
	DeathDecay     float64 `json:"death_decay"`

	AmmoCost      float64 `json:"ammo_cost"`
	DecayCost     float64 `json:"decay_cost"`
	TotalCost     float64 `json:"total_cost"`
	Accuracy      float64 `json:"accuracy"`
	CriticalRate  float64 `json:"critical_rate"`
	ReturnRate    float64 `json:"return_rate"`
	Profit        float64 `json:"profit"`
	ProfitPerHour float64 `json:"profit_per_hour"`

	FirstEvent time.Time `json:"first_event"`
	LastEvent  time.Time `json:"last_event"`
}

// Recompute folds events from scratch. For any event sequence and profile
// the result equals the incremental aggregate.
func Recompute(events []event.Event, profile CostProfile) Stats {
	var s Stats
	for i := range events {
		s.fold(events[i])
	}
	s.finalize(profile)
	return s
}

// fold adds one event's contribution to the counters.
func (s *Stats) fold(e event.Event) {
	if s.FirstEvent.IsZero() || e.Timestamp.Before(s.FirstEvent) {
		s.FirstEvent = e.Timestamp
	}
	if e.Timestamp.After(s.LastEvent) {
		s.LastEvent = e.Timestamp
	}

	self := e.Actor != event.ActorOther
	switch p := e.Payload.(type) {
	case event.Shot:
		s.Shots++
		if p.AmmoCost > 0 {
			s.StatedAmmoCost += p.AmmoCost
		} else {
			s.CostedShots++
		}
	case event.Hit:
		if self {
			s.Hits++
			s.DamageDealt += p.Damage
			if p.Critical {
				s.Criticals++
				s.CriticalDamage += p.Damage
			}
		} else {
			s.IncomingHits++
			s.DamageTaken += p.Damage
		}
	case event.Miss:
		if self {
			s.Misses++
		} else {
			s.IncomingMisses++
		}
	case event.Dodge:
		if self {
			s.SelfDodges++
		} else {
			s.TargetDodges++
		}
	case event.Evade:
		if self {
			s.SelfEvades++
		} else {
			s.TargetEvades++
		}
	case event.Deflect:
		if self {
			s.SelfDeflects++
		} else {
			s.TargetDeflects++
		}
	case event.Kill:
		s.Kills++
	case event.Death:
		s.Deaths++
		s.DeathDecay += p.DecayCost
	case event.Loot:
		s.LootEvents++
		for _, it := range p.Items {
			s.LootItems += it.Quantity
		}
		s.LootTTValue += p.TotalTTValue
		s.LootMVValue += p.TotalMVValue()
	case event.Global:
		if self {
			s.Globals++
			if p.HallOfFame {
				s.HallOfFames++
			}
		}
	case event.Skill:
		s.SkillGains++
		s.SkillExperience += p.Amount
	case event.SkillRank:
		s.SkillRanks++
	case event.Attribute:
		s.AttributeGains++
	case event.NewSkill:
		s.NewSkills++
	case event.Gps:
	}
}

// finalize derives the cost and ratio fields from the counters.
func (s *Stats) finalize(c CostProfile) {
	shots := float64(s.CostedShots)
	if c.UseManualCost {
		s.AmmoCost = s.StatedAmmoCost + shots*c.ManualCostPerShot
		s.DecayCost = s.DeathDecay
	} else {
		s.AmmoCost = s.StatedAmmoCost + shots*c.AmmoPerShot
		s.DecayCost = shots*c.WeaponDecayPerShot + s.DamageTaken*c.ArmorDecayPerDamage + s.DeathDecay
	}
	s.TotalCost = s.AmmoCost + s.DecayCost
	s.Profit = s.LootTTValue - s.TotalCost

	s.Accuracy = ratio(float64(s.Hits), float64(s.Shots))
	s.CriticalRate = ratio(float64(s.Criticals), float64(s.Hits))
	s.ReturnRate = ratio(s.LootTTValue, s.TotalCost)

	s.ProfitPerHour = 0
	if span := s.LastEvent.Sub(s.FirstEvent); span > 0 {
		s.ProfitPerHour = s.Profit / span.Hours()
	}
}

func ratio(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den
}
