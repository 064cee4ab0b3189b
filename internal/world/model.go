// Package world is a snapshot of the game state the action engine reads:
// players, cities, units, unit types, improvements, techs and the map.
package world

import "slices"

// Unit type flags the action engine interprets.
const (
	FlagDiplomat = "Diplomat"
	FlagSpy      = "Spy"
	FlagSuperSpy = "SuperSpy"
	FlagUnique   = "Unique"
)

// ExtraFlagDiplomatDefense marks extras (bases) that strengthen defending
// diplomats.
const ExtraFlagDiplomatDefense = "DiplomatDefense"

// Improvement genera.
const (
	GenusGreatWonder = "GreatWonder"
	GenusSmallWonder = "SmallWonder"
	GenusImprovement = "Improvement"
)

// Production kinds.
const (
	ProductionImprovement = "improvement"
	ProductionUnit        = "unit"
)

// Diplomatic states between two players.
const (
	DiplWar       = "war"
	DiplCeasefire = "ceasefire"
	DiplPeace     = "peace"
	DiplAlliance  = "alliance"
	DiplNoContact = "no_contact"
	DiplTeam      = "team"
)

type Player struct {
	ID         int
	Name       string
	Nation     string
	Government string
	Gold       int
	Techs      []string
	// Embassies holds the ids of players this player has a real embassy with.
	Embassies []int
}

// KnowsTech reports whether the player has researched tech.
func (p *Player) KnowsTech(tech string) bool {
	return slices.Contains(p.Techs, tech)
}

type Tile struct {
	X, Y    int
	Terrain string
	Extras  []string
}

type Extra struct {
	Name  string
	Flags []string
}

// VeteranLevel is one rung of a unit type's veteran ladder. PowerFact is a
// percentage; 100 is the baseline.
type VeteranLevel struct {
	Name      string
	PowerFact int
}

type UnitType struct {
	Name          string
	Flags         []string
	VeteranLevels []VeteranLevel
}

// HasFlag reports whether the unit type carries flag.
func (ut *UnitType) HasFlag(flag string) bool {
	return ut != nil && slices.Contains(ut.Flags, flag)
}

// PowerFact returns the power factor of veteran level lvl, clamped to the
// type's ladder. Types without a ladder use 100.
func (ut *UnitType) PowerFact(lvl int) int {
	if ut == nil || len(ut.VeteranLevels) == 0 {
		return 100
	}
	lvl = max(0, min(lvl, len(ut.VeteranLevels)-1))
	return ut.VeteranLevels[lvl].PowerFact
}

type Unit struct {
	ID        int
	Type      *UnitType
	Owner     *Player
	Tile      *Tile
	HomeCity  *City
	Veteran   int
	HP        int
	MovesLeft int
}

// HasFlag reports whether the unit's type carries flag.
func (u *Unit) HasFlag(flag string) bool {
	return u != nil && u.Type.HasFlag(flag)
}

type Improvement struct {
	Name      string
	Genus     string
	BuildCost int
}

// IsWonder reports whether the improvement is a great or small wonder.
func (i *Improvement) IsWonder() bool {
	return i != nil && (i.Genus == GenusGreatWonder || i.Genus == GenusSmallWonder)
}

// Production is what a city is currently building.
type Production struct {
	Kind string
	Name string
}

type City struct {
	ID          int
	Name        string
	Owner       *Player
	Tile        *Tile
	Size        int
	Buildings   []string
	Production  Production
	ShieldStock int
	// TradeRoutes holds the ids of partner cities.
	TradeRoutes []int
}

type Tech struct {
	Name string
	Reqs []string
}

// TechState is a player's research state for one tech.
type TechState int

const (
	TechUnknown TechState = iota
	TechPrereqsKnown
	TechKnown
)

// Settings are the game settings the world predicates depend on.
type Settings struct {
	MapWidth            int
	MapHeight           int
	WrapX               bool
	VisionRadius        int
	TradeMinDist        int
	MaxTradeRoutes      int
	TechStealAllowHoles bool
}

// DefaultSettings mirrors a classic small game.
func DefaultSettings() Settings {
	return Settings{
		MapWidth:       80,
		MapHeight:      50,
		VisionRadius:   2,
		TradeMinDist:   9,
		MaxTradeRoutes: 4,
	}
}
