package world

import (
	"slices"

	"github.com/rendis/actionrules/internal/requirements"
)

// ReqContext is the subject of a requirement vector evaluation. Any field
// may be nil or empty when it does not apply.
type ReqContext struct {
	Player      *Player
	OtherPlayer *Player
	City        *City
	Building    *Improvement
	Tile        *Tile
	Unit        *Unit
	UnitType    *UnitType
	Output      string
	Specialist  string
}

// Facts renders rc as requirement facts. A nil viewer is omniscient;
// otherwise values the viewer cannot know are left out and listed as
// unknown.
func (s *State) Facts(rc ReqContext, viewer *Player) requirements.Facts {
	vars := map[string]any{
		requirements.VarPlayer:      playerFacts(rc.Player),
		requirements.VarOtherPlayer: playerFacts(rc.OtherPlayer),
		requirements.VarRelation:    s.relationFacts(rc.Player, rc.OtherPlayer),
		requirements.VarCity:        cityFacts(rc.City),
		requirements.VarBuilding:    buildingFacts(rc.Building),
		requirements.VarTile:        tileFacts(rc.Tile),
		requirements.VarUnit:        unitFacts(rc.Unit),
		requirements.VarUnitType:    unitTypeFacts(rc.UnitType),
		requirements.VarOutput:      rc.Output,
		requirements.VarSpecialist:  rc.Specialist,
	}
	facts := requirements.Facts{Vars: vars}
	if viewer == nil {
		return facts
	}

	for key, p := range map[string]*Player{
		requirements.VarPlayer:      rc.Player,
		requirements.VarOtherPlayer: rc.OtherPlayer,
	} {
		if p != nil && !s.CanSeeTechsOf(viewer, p) {
			facts.Unknown = append(facts.Unknown, hide(vars[key], key, "gold", "techs")...)
		}
	}
	if rc.City != nil && !s.CanSeeCityInternals(viewer, rc.City) {
		facts.Unknown = append(facts.Unknown,
			hide(vars[requirements.VarCity], requirements.VarCity, "production", "shield_stock", "buildings")...)
	}
	slices.Sort(facts.Unknown)
	return facts
}

// UnitTypeFacts renders facts where only the unit type is known.
func UnitTypeFacts(ut *UnitType) requirements.Facts {
	vars := map[string]any{
		requirements.VarPlayer:      playerFacts(nil),
		requirements.VarOtherPlayer: playerFacts(nil),
		requirements.VarRelation:    map[string]any{},
		requirements.VarCity:        cityFacts(nil),
		requirements.VarBuilding:    buildingFacts(nil),
		requirements.VarTile:        tileFacts(nil),
		requirements.VarUnit:        unitFacts(nil),
		requirements.VarUnitType:    unitTypeFacts(ut),
		requirements.VarOutput:      "",
		requirements.VarSpecialist:  "",
	}
	return requirements.OnlyKnown(vars, requirements.VarUnitType)
}

// hide blanks keys the viewer cannot see. The keys stay in the map so
// that membership tests on them are not decided by their absence.
func hide(v any, prefix string, keys ...string) []string {
	m := v.(map[string]any)
	paths := make([]string, 0, len(keys))
	for _, k := range keys {
		m[k] = nil
		paths = append(paths, prefix+"."+k)
	}
	return paths
}

func playerFacts(p *Player) map[string]any {
	if p == nil {
		return map[string]any{"id": -1, "name": "", "nation": "", "government": "", "gold": 0, "techs": []string{}}
	}
	return map[string]any{
		"id":         p.ID,
		"name":       p.Name,
		"nation":     p.Nation,
		"government": p.Government,
		"gold":       p.Gold,
		"techs":      append([]string{}, p.Techs...),
	}
}

func (s *State) relationFacts(p, other *Player) map[string]any {
	return map[string]any{
		"state":         s.DiplState(p, other),
		"embassy":       s.HasRealEmbassy(p, other),
		"their_embassy": s.HasRealEmbassy(other, p),
		"foreign":       p != nil && other != nil && p != other,
	}
}

func cityFacts(c *City) map[string]any {
	if c == nil {
		return map[string]any{
			"id": -1, "name": "", "owner": "", "size": 0, "buildings": []string{},
			"production":   map[string]any{"kind": "", "name": ""},
			"shield_stock": 0,
			"trade_routes": 0,
		}
	}
	owner := ""
	if c.Owner != nil {
		owner = c.Owner.Name
	}
	return map[string]any{
		"id":           c.ID,
		"name":         c.Name,
		"owner":        owner,
		"size":         c.Size,
		"buildings":    append([]string{}, c.Buildings...),
		"production":   map[string]any{"kind": c.Production.Kind, "name": c.Production.Name},
		"shield_stock": c.ShieldStock,
		"trade_routes": len(c.TradeRoutes),
	}
}

func buildingFacts(b *Improvement) map[string]any {
	if b == nil {
		return map[string]any{"name": "", "genus": "", "wonder": false}
	}
	return map[string]any{"name": b.Name, "genus": b.Genus, "wonder": b.IsWonder()}
}

func tileFacts(t *Tile) map[string]any {
	if t == nil {
		return map[string]any{"x": -1, "y": -1, "terrain": "", "extras": []string{}}
	}
	return map[string]any{
		"x":       t.X,
		"y":       t.Y,
		"terrain": t.Terrain,
		"extras":  append([]string{}, t.Extras...),
	}
}

func unitFacts(u *Unit) map[string]any {
	if u == nil {
		return map[string]any{"id": -1, "veteran": 0, "hp": 0, "moves_left": 0, "has_home_city": false}
	}
	return map[string]any{
		"id":            u.ID,
		"veteran":       u.Veteran,
		"hp":            u.HP,
		"moves_left":    u.MovesLeft,
		"has_home_city": u.HomeCity != nil,
	}
}

func unitTypeFacts(ut *UnitType) map[string]any {
	if ut == nil {
		return map[string]any{"name": "", "flags": []string{}}
	}
	return map[string]any{"name": ut.Name, "flags": append([]string{}, ut.Flags...)}
}
