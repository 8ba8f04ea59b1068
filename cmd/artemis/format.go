package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/artemis-hunt/artemis-go/pkg/artemis"
	"github.com/artemis-hunt/artemis-go/pkg/artemis/event"
)

// ValidFormats lists the accepted --format values for event output.
var ValidFormats = map[string]bool{
	"jsonl":  true,
	"pretty": true,
}

// OutputJSON writes v as a single JSON line.
func OutputJSON(v any, w io.Writer) error {
	return json.NewEncoder(w).Encode(v)
}

// OutputEvent writes ev in the given format.
func OutputEvent(format string, ev artemis.Event, w io.Writer) error {
	switch format {
	case "jsonl":
		return OutputJSON(ev, w)
	case "pretty":
		return OutputPretty(ev, w)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// OutputPatched writes an event that was emitted earlier and has since been
// amended. jsonl adds "patched": true to the event object.
func OutputPatched(format string, ev artemis.Event, w io.Writer) error {
	switch format {
	case "jsonl":
		data, err := json.Marshal(ev)
		if err != nil {
			return err
		}
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(data, &fields); err != nil {
			return err
		}
		fields["patched"] = json.RawMessage("true")
		return OutputJSON(fields, w)
	case "pretty":
		_, err := fmt.Fprintf(w, "[%s] updated: %s\n", ev.Timestamp.Format(time.TimeOnly), describe(ev))
		return err
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// OutputPretty writes ev as one human-readable line.
func OutputPretty(ev artemis.Event, w io.Writer) error {
	_, err := fmt.Fprintf(w, "[%s] %s\n", ev.Timestamp.Format(time.TimeOnly), describe(ev))
	return err
}

func describe(ev artemis.Event) string {
	self := ev.Actor != event.ActorOther
	switch p := ev.Payload.(type) {
	case event.Shot:
		s := "* Shot fired"
		if p.Weapon != "" {
			s += " with " + p.Weapon
		}
		if p.AmmoCost > 0 {
			s += fmt.Sprintf(" (%.4f PED)", p.AmmoCost)
		}
		return s
	case event.Hit:
		if !self {
			return fmt.Sprintf("< Took %.1f damage", p.Damage)
		}
		s := fmt.Sprintf("> Hit for %.1f damage", p.Damage)
		if p.Critical {
			s += " (critical)"
		}
		return s
	case event.Miss:
		if !self {
			return "~ Target missed you"
		}
		return "~ Missed"
	case event.Dodge:
		return avoided("dodged", self)
	case event.Evade:
		return avoided("evaded", self)
	case event.Deflect:
		return avoided("deflected", self)
	case event.Kill:
		return fmt.Sprintf("x Killed %s at %s", mobName(p.MobName), p.Location)
	case event.Death:
		return fmt.Sprintf("! Killed by %s at %s", mobName(p.MobName), p.Location)
	case event.Loot:
		names := make([]string, len(p.Items))
		for i, it := range p.Items {
			names[i] = fmt.Sprintf("%s x%d", it.Name, it.Quantity)
		}
		s := fmt.Sprintf("$ Looted %.2f PED", p.TotalTTValue)
		if len(names) > 0 {
			s += ": " + strings.Join(names, ", ")
		}
		return s
	case event.Gps:
		return "@ Location " + p.Location.String()
	case event.Skill:
		return fmt.Sprintf("+ %s +%.4f", p.Name, p.Amount)
	case event.SkillRank:
		return fmt.Sprintf("^ %s rank +%g", p.Name, p.Amount)
	case event.Attribute:
		return fmt.Sprintf("+ %s +%g (attribute)", p.Name, p.Amount)
	case event.NewSkill:
		return "+ New skill: " + p.Name
	case event.Global:
		s := fmt.Sprintf("# Global: %s, %s, %.0f PED", p.Player, p.Subject, p.Value)
		if p.HallOfFame {
			s += " (Hall of Fame)"
		}
		return s
	default:
		return fmt.Sprintf("? %s", ev.Type())
	}
}

func avoided(verb string, self bool) string {
	if self {
		return "= You " + verb + " the attack"
	}
	return "= Target " + verb + " your attack"
}

func mobName(name string) string {
	if name == "" {
		return event.UnknownCreature
	}
	return name
}

// OutputSummary writes a human-readable digest of s.
func OutputSummary(s *artemis.Session, w io.Writer) error {
	st := s.Stats
	loadout := s.LoadoutID
	if loadout == "" {
		loadout = "-"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Session %s\n", s.ID)
	fmt.Fprintf(&b, "  Duration:  %s\n", s.Duration.Round(time.Second))
	fmt.Fprintf(&b, "  Loadout:   %s\n", loadout)
	fmt.Fprintf(&b, "  Shots:     %d (hits %d, misses %d, accuracy %.1f%%)\n", st.Shots, st.Hits, st.Misses, st.Accuracy*100)
	fmt.Fprintf(&b, "  Criticals: %d (%.1f%% of hits)\n", st.Criticals, st.CriticalRate*100)
	fmt.Fprintf(&b, "  Damage:    %.1f dealt, %.1f taken\n", st.DamageDealt, st.DamageTaken)
	fmt.Fprintf(&b, "  Kills:     %d, deaths %d\n", st.Kills, st.Deaths)
	fmt.Fprintf(&b, "  Loot:      %.2f PED in %d events (%d globals)\n", st.LootTTValue, st.LootEvents, st.Globals)
	fmt.Fprintf(&b, "  Cost:      %.2f PED (ammo %.2f, decay %.2f)\n", st.TotalCost, st.AmmoCost, st.DecayCost)
	fmt.Fprintf(&b, "  Return:    %.1f%%\n", st.ReturnRate*100)
	fmt.Fprintf(&b, "  Profit:    %.2f PED (%.2f PED/h)\n", st.Profit, st.ProfitPerHour)
	_, err := io.WriteString(w, b.String())
	return err
}

// OutputZones writes hunting zones in the given format.
func OutputZones(format string, zones []artemis.HuntingZone, w io.Writer) error {
	for _, z := range zones {
		var err error
		switch format {
		case "jsonl":
			err = OutputJSON(z, w)
		case "pretty":
			_, err = fmt.Fprintf(w, "%s (%.0f, %.0f) r=%.0f: %d kills, %d deaths, %.2f PED (%.2f PED/kill)\n",
				z.Planet, z.Center[0], z.Center[1], z.Radius, z.Kills, z.Deaths, z.Profit, z.ProfitPerKill())
		default:
			return fmt.Errorf("unknown format: %s", format)
		}
		if err != nil {
			return err
		}
	}
	return nil
}
