package event

// Payload is the closed set of event variants. The unexported marker keeps
// the union sealed to this package; consumers switch on the concrete type.
type Payload interface {
	Type() Type
	isPayload()
}

// Shot is an offensive attempt by the player. AmmoCost is zero unless the
// log itself states the cost, in which case the cost profile is not consulted.
type Shot struct {
	Weapon   string  `json:"weapon,omitempty"`
	AmmoCost float64 `json:"ammo_cost,omitempty"`
}

// Hit is damage landing on someone. Actor self means the player dealt it,
// actor other means the player took it.
type Hit struct {
	Damage   float64 `json:"damage"`
	MobRef   string  `json:"mob_ref,omitempty"`
	Critical bool    `json:"critical,omitempty"`
	Resisted bool    `json:"resisted,omitempty"`
}

type Miss struct{}

// Dodge, Evade and Deflect record an avoided attack. Actor self means the
// player avoided it, actor other means the target avoided the player's attack.
type Dodge struct{}

type Evade struct{}

type Deflect struct{}

type Kill struct {
	MobName  string   `json:"mob_name"`
	Species  string   `json:"species,omitempty"`
	Maturity string   `json:"maturity,omitempty"`
	Location Location `json:"location"`
	MobID    string   `json:"mob_id,omitempty"`
}

// Unidentified reports whether the kill still carries the placeholder name.
func (k Kill) Unidentified() bool {
	return k.MobName == "" || k.MobName == UnknownCreature
}

type Death struct {
	MobName   string   `json:"mob_name"`
	Location  Location `json:"location"`
	DecayCost float64  `json:"decay_cost,omitempty"`
}

type LootItem struct {
	Name     string  `json:"name"`
	Quantity int     `json:"quantity"`
	TTValue  float64 `json:"tt_value"`
	MVValue  float64 `json:"mv_value"`
}

type Loot struct {
	Items        []LootItem `json:"items"`
	TotalTTValue float64    `json:"total_tt_value"`
	IsGlobal     bool       `json:"is_global,omitempty"`
}

// TotalMVValue sums the market value of all items.
func (l Loot) TotalMVValue() float64 {
	var v float64
	for _, it := range l.Items {
		v += it.MVValue
	}
	return v
}

type Gps struct {
	Location Location `json:"location"`
}

type Skill struct {
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
}

type SkillRank struct {
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
}

type Attribute struct {
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
}

type NewSkill struct {
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
}

// Global is a server-wide announcement of a large loot or record.
type Global struct {
	Player     string  `json:"player"`
	Subject    string  `json:"subject"`
	Value      float64 `json:"value"`
	HallOfFame bool    `json:"hall_of_fame,omitempty"`
}

func (Shot) Type() Type      { return ShotFired }
func (Hit) Type() Type       { return HitRegistered }
func (Miss) Type() Type      { return MissRegistered }
func (Dodge) Type() Type     { return DodgeRegistered }
func (Evade) Type() Type     { return EvadeRegistered }
func (Deflect) Type() Type   { return DeflectRegistered }
func (Kill) Type() Type      { return MobKilled }
func (Death) Type() Type     { return PlayerDeath }
func (Loot) Type() Type      { return LootReceived }
func (Gps) Type() Type       { return GpsUpdate }
func (Skill) Type() Type     { return SkillGain }
func (SkillRank) Type() Type { return SkillRankGain }
func (Attribute) Type() Type { return AttributeGain }
func (NewSkill) Type() Type  { return NewSkillAcquired }
func (Global) Type() Type    { return GlobalAnnounced }

func (Shot) isPayload()      {}
func (Hit) isPayload()       {}
func (Miss) isPayload()      {}
func (Dodge) isPayload()     {}
func (Evade) isPayload()     {}
func (Deflect) isPayload()   {}
func (Kill) isPayload()      {}
func (Death) isPayload()     {}
func (Loot) isPayload()      {}
func (Gps) isPayload()       {}
func (Skill) isPayload()     {}
func (SkillRank) isPayload() {}
func (Attribute) isPayload() {}
func (NewSkill) isPayload()  {}
func (Global) isPayload()    {}
