package parser

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/artemis-hunt/artemis-go/pkg/artemis/event"
)

// Channel tags as printed in the chat log.
const (
	channelSystem  = "System"
	channelGlobals = "Globals"
)

// draft is an event before identity and time are assigned.
type draft struct {
	actor   event.Actor
	payload event.Payload
}

// line is the header-split form of a log line.
type line struct {
	channel string
	sender  string
	message string
}

type grammar struct {
	name string

	// channel restricts the grammar to one chat channel; "" matches any.
	channel string

	re *regexp.Regexp

	// modifier grammars produce no event; they amend the hit emitted for
	// the immediately preceding line.
	modifier bool

	build func(p *Parser, l line, m []string) ([]draft, error)
}

// errNotApplicable makes a grammar decline a structurally matching line so
// that later grammars may still claim it.
var errNotApplicable = errors.New("not applicable")

// registry is tested in order; the first grammar whose pattern matches wins.
var registry = []grammar{
	{
		name:    "critical_hit",
		channel: channelSystem,
		re:      regexp.MustCompile(`^Critical hit - (?:Additional damage|Armou?r penetration)! You inflicted (\S+) points of damage$`),
		build: func(_ *Parser, _ line, m []string) ([]draft, error) {
			dmg, err := parseAmount(m[1])
			if err != nil {
				return nil, err
			}
			return shotThen(event.ActorSelf, event.Hit{Damage: dmg, Critical: true}), nil
		},
	},
	{
		name:     "critical_modifier",
		channel:  channelSystem,
		re:       regexp.MustCompile(`^Critical hit - (?:Additional damage|Armou?r penetration)!$`),
		modifier: true,
	},
	{
		name:    "damage_inflicted",
		channel: channelSystem,
		re:      regexp.MustCompile(`^You inflicted (\S+) points of damage(?: to (.+?))?$`),
		build: func(_ *Parser, _ line, m []string) ([]draft, error) {
			dmg, err := parseAmount(m[1])
			if err != nil {
				return nil, err
			}
			return shotThen(event.ActorSelf, event.Hit{Damage: dmg, MobRef: m[2]}), nil
		},
	},
	{
		name:    "damage_taken",
		channel: channelSystem,
		re:      regexp.MustCompile(`^You took (\S+) points of damage( \(resisted\))?$`),
		build: func(_ *Parser, _ line, m []string) ([]draft, error) {
			dmg, err := parseAmount(m[1])
			if err != nil {
				return nil, err
			}
			return []draft{{actor: event.ActorOther, payload: event.Hit{Damage: dmg, Resisted: m[2] != ""}}}, nil
		},
	},
	{
		name:    "miss",
		channel: channelSystem,
		re:      regexp.MustCompile(`^(?:You missed|The attack missed you)$`),
		build: func(_ *Parser, _ line, m []string) ([]draft, error) {
			if strings.HasPrefix(m[0], "You") {
				return shotThen(event.ActorSelf, event.Miss{}), nil
			}
			return []draft{{actor: event.ActorOther, payload: event.Miss{}}}, nil
		},
	},
	{
		name:    "avoided_by_self",
		channel: channelSystem,
		re:      regexp.MustCompile(`^(?:You (Dodged|Evaded) the attack|Damage (deflected)!)$`),
		build: func(_ *Parser, _ line, m []string) ([]draft, error) {
			kind := m[1] + m[2]
			return []draft{{actor: event.ActorSelf, payload: avoidance(kind)}}, nil
		},
	},
	{
		name:    "avoided_by_target",
		channel: channelSystem,
		re:      regexp.MustCompile(`^The target (Dodged|Evaded|Jammed) your attack$`),
		build: func(_ *Parser, _ line, m []string) ([]draft, error) {
			return shotThen(event.ActorOther, avoidance(m[1]), event.ActorSelf), nil
		},
	},
	{
		name:    "loot_received",
		channel: channelSystem,
		re:      regexp.MustCompile(`^You received (.+?) x \((\S+)\) Value: (\S+) PED$`),
		build: func(_ *Parser, _ line, m []string) ([]draft, error) {
			qty, err := strconv.Atoi(m[2])
			if err != nil || qty < 0 {
				return nil, fmt.Errorf("loot quantity %q: invalid", m[2])
			}
			tt, err := parseAmount(m[3])
			if err != nil {
				return nil, err
			}
			item := event.LootItem{Name: strings.TrimSpace(m[1]), Quantity: qty, TTValue: tt, MVValue: tt}
			return []draft{{actor: event.ActorSelf, payload: event.Loot{Items: []event.LootItem{item}, TotalTTValue: tt}}}, nil
		},
	},
	{
		name:    "skill_gain",
		channel: channelSystem,
		re:      regexp.MustCompile(`^You have gained (\S+) experience in your (.+?) skill$`),
		build: func(_ *Parser, _ line, m []string) ([]draft, error) {
			amt, err := parseAmount(m[1])
			if err != nil {
				return nil, err
			}
			return []draft{{actor: event.ActorSelf, payload: event.Skill{Name: m[2], Amount: amt}}}, nil
		},
	},
	{
		name:    "skill_rank",
		channel: channelSystem,
		re:      regexp.MustCompile(`^You have gained a new rank in (.+?)!?$`),
		build: func(_ *Parser, _ line, m []string) ([]draft, error) {
			return []draft{{actor: event.ActorSelf, payload: event.SkillRank{Name: m[1], Amount: 1}}}, nil
		},
	},
	{
		name:    "attribute_gain",
		channel: channelSystem,
		re:      regexp.MustCompile(`^Your (.+?) has improved by (\S+)$`),
		build: func(_ *Parser, _ line, m []string) ([]draft, error) {
			amt, err := parseAmount(m[2])
			if err != nil {
				return nil, err
			}
			return []draft{{actor: event.ActorSelf, payload: event.Attribute{Name: m[1], Amount: amt}}}, nil
		},
	},
	{
		name:    "new_skill",
		channel: channelSystem,
		re:      regexp.MustCompile(`^Congratulations, you have acquired a new skill; (.+?)!?$`),
		build: func(_ *Parser, _ line, m []string) ([]draft, error) {
			return []draft{{actor: event.ActorSelf, payload: event.NewSkill{Name: m[1], Amount: 1}}}, nil
		},
	},
	{
		name:    "mob_killed",
		channel: channelSystem,
		re:      regexp.MustCompile(`^You killed(?: (.*?))?!?$`),
		build: func(_ *Parser, _ line, m []string) ([]draft, error) {
			name := cleanMobName(m[1])
			species, maturity := event.SplitMobName(name)
			return []draft{{actor: event.ActorSelf, payload: event.Kill{
				MobName:  name,
				Species:  species,
				Maturity: maturity,
				Location: event.UnknownLocation,
			}}}, nil
		},
	},
	{
		name:    "player_death",
		channel: channelSystem,
		re:      regexp.MustCompile(`^You were killed by (.+?)!?$`),
		build: func(_ *Parser, _ line, m []string) ([]draft, error) {
			return []draft{{actor: event.ActorSelf, payload: event.Death{
				MobName:  cleanMobName(m[1]),
				Location: event.UnknownLocation,
			}}}, nil
		},
	},
	{
		name: "gps_ping",
		re:   regexp.MustCompile(`\[([A-Za-z][\w' -]*), ([^,\s\]]+), ([^,\s\]]+), ([^,\s\]]+)(?:, [^\]]*)?\]`),
		build: func(p *Parser, l line, m []string) ([]draft, error) {
			if !p.isSelf(l.sender) && l.channel != channelSystem {
				return nil, errNotApplicable
			}
			var coords [3]float64
			for i := range coords {
				v, err := strconv.ParseFloat(m[i+2], 64)
				if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
					return nil, fmt.Errorf("coordinate %q: invalid", m[i+2])
				}
				coords[i] = v
			}
			loc := event.Location{Planet: m[1], Lon: coords[0], Lat: coords[1], Alt: coords[2]}
			return []draft{{actor: event.ActorSelf, payload: event.Gps{Location: loc}}}, nil
		},
	},
	{
		name:    "global",
		channel: channelGlobals,
		re:      regexp.MustCompile(`^(.+?) (?:killed a creature|constructed an item|found a deposit) \((.+?)\)(?: with a value of| worth) (\S+) PED!(.*)$`),
		build: func(p *Parser, _ line, m []string) ([]draft, error) {
			v, err := parseAmount(m[3])
			if err != nil {
				return nil, err
			}
			actor := event.ActorOther
			if p.isSelf(m[1]) && p.opts.PlayerName != "" {
				actor = event.ActorSelf
			}
			return []draft{{actor: actor, payload: event.Global{
				Player:     m[1],
				Subject:    m[2],
				Value:      v,
				HallOfFame: strings.Contains(m[4], "Hall of Fame"),
			}}}, nil
		},
	},
}

// shotThen prefixes an outcome with the ShotFired it implies. The optional
// shooter overrides the shot's actor when it differs from the outcome's.
func shotThen(actor event.Actor, outcome event.Payload, shooter ...event.Actor) []draft {
	shotActor := actor
	if len(shooter) > 0 {
		shotActor = shooter[0]
	}
	return []draft{
		{actor: shotActor, payload: event.Shot{}},
		{actor: actor, payload: outcome},
	}
}

func avoidance(kind string) event.Payload {
	switch kind {
	case "Dodged":
		return event.Dodge{}
	case "Evaded":
		return event.Evade{}
	default:
		return event.Deflect{}
	}
}

// parseAmount parses a non-negative finite decimal.
func parseAmount(s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("amount %q: %w", s, err)
	}
	if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("amount %q: out of range", s)
	}
	return v, nil
}

// cleanMobName reduces "a creature (Atrox Young)", "the Atrox Young" and
// similar phrasings to the bare name; an empty result is UnknownCreature.
func cleanMobName(s string) string {
	s = strings.TrimSpace(s)
	if i, j := strings.IndexByte(s, '('), strings.LastIndexByte(s, ')'); i >= 0 && j > i {
		s = s[i+1 : j]
	}
	for _, prefix := range []string{"a creature", "the ", "an ", "a "} {
		if strings.HasPrefix(strings.ToLower(s), prefix) {
			s = strings.TrimSpace(s[len(prefix):])
		}
	}
	if s == "" {
		return event.UnknownCreature
	}
	return s
}
