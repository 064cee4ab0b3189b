package world

import (
	"slices"
	"sort"
)

type playerPair struct{ a, b int }

func orderedPair(a, b int) playerPair {
	if a > b {
		a, b = b, a
	}
	return playerPair{a, b}
}

// State is a complete, mutable game snapshot. Queries never modify it.
type State struct {
	Settings     Settings
	Players      map[int]*Player
	Cities       map[int]*City
	Units        map[int]*Unit
	UnitTypes    map[string]*UnitType
	Improvements map[string]*Improvement
	Techs        map[string]*Tech
	Extras       map[string]*Extra

	tiles     map[[2]int]*Tile
	diplomacy map[playerPair]string
}

// NewState creates an empty snapshot.
func NewState(settings Settings) *State {
	return &State{
		Settings:     settings,
		Players:      make(map[int]*Player),
		Cities:       make(map[int]*City),
		Units:        make(map[int]*Unit),
		UnitTypes:    make(map[string]*UnitType),
		Improvements: make(map[string]*Improvement),
		Techs:        make(map[string]*Tech),
		Extras:       make(map[string]*Extra),
		tiles:        make(map[[2]int]*Tile),
		diplomacy:    make(map[playerPair]string),
	}
}

// Tile returns the tile at (x, y), creating a grassland tile on first use.
func (s *State) Tile(x, y int) *Tile {
	key := [2]int{x, y}
	if t, ok := s.tiles[key]; ok {
		return t
	}
	t := &Tile{X: x, Y: y, Terrain: "Grassland"}
	s.tiles[key] = t
	return t
}

func (s *State) AddPlayer(p *Player)           { s.Players[p.ID] = p }
func (s *State) AddCity(c *City)               { s.Cities[c.ID] = c }
func (s *State) AddUnit(u *Unit)               { s.Units[u.ID] = u }
func (s *State) AddUnitType(ut *UnitType)      { s.UnitTypes[ut.Name] = ut }
func (s *State) AddImprovement(i *Improvement) { s.Improvements[i.Name] = i }
func (s *State) AddTech(t *Tech)               { s.Techs[t.Name] = t }
func (s *State) AddExtra(e *Extra)             { s.Extras[e.Name] = e }

// SetDiplState records the symmetric diplomatic state between a and b.
func (s *State) SetDiplState(a, b *Player, state string) {
	s.diplomacy[orderedPair(a.ID, b.ID)] = state
}

// DiplState returns the diplomatic state between a and b. A player is in
// team state with itself; unrecorded pairs have no contact.
func (s *State) DiplState(a, b *Player) string {
	if a == nil || b == nil {
		return DiplNoContact
	}
	if a.ID == b.ID {
		return DiplTeam
	}
	if st, ok := s.diplomacy[orderedPair(a.ID, b.ID)]; ok {
		return st
	}
	return DiplNoContact
}

// RealDistance is the Chebyshev distance between two tiles, honouring
// horizontal wrapping.
func (s *State) RealDistance(a, b *Tile) int {
	dx := abs(a.X - b.X)
	if s.Settings.WrapX && s.Settings.MapWidth > 0 {
		dx = min(dx, s.Settings.MapWidth-dx)
	}
	dy := abs(a.Y - b.Y)
	return max(dx, dy)
}

// SameTile reports whether a and b denote the same map position.
func SameTile(a, b *Tile) bool {
	return a != nil && b != nil && a.X == b.X && a.Y == b.Y
}

// CanPlayerSeeTile reports whether one of p's units or cities has t within
// vision radius.
func (s *State) CanPlayerSeeTile(p *Player, t *Tile) bool {
	if p == nil || t == nil {
		return false
	}
	for _, u := range s.Units {
		if u.Owner == p && u.Tile != nil && s.RealDistance(u.Tile, t) <= s.Settings.VisionRadius {
			return true
		}
	}
	for _, c := range s.Cities {
		if c.Owner == p && c.Tile != nil && s.RealDistance(c.Tile, t) <= s.Settings.VisionRadius {
			return true
		}
	}
	return false
}

// CanPlayerSeeUnit reports whether p can see u.
func (s *State) CanPlayerSeeUnit(p *Player, u *Unit) bool {
	if p == nil || u == nil {
		return false
	}
	return u.Owner == p || s.CanPlayerSeeTile(p, u.Tile)
}

// HasRealEmbassy reports whether p has an established embassy with target.
func (s *State) HasRealEmbassy(p, target *Player) bool {
	return p != nil && target != nil && slices.Contains(p.Embassies, target.ID)
}

// CanSeeTechsOf reports whether p can inspect target's research.
func (s *State) CanSeeTechsOf(p, target *Player) bool {
	return p != nil && target != nil && (p == target || s.HasRealEmbassy(p, target))
}

// CanSeeCityInternals reports whether p can see production, stock and
// buildings of c.
func (s *State) CanSeeCityInternals(p *Player, c *City) bool {
	return p != nil && c != nil && c.Owner == p
}

// OwnsUniqueOfType reports whether ut is a unique unit type and p already
// owns a unit of it.
func (s *State) OwnsUniqueOfType(p *Player, ut *UnitType) bool {
	if p == nil || !ut.HasFlag(FlagUnique) {
		return false
	}
	for _, u := range s.Units {
		if u.Owner == p && u.Type == ut {
			return true
		}
	}
	return false
}

// CanCitiesTrade reports whether two cities could ever trade: they must be
// distinct, and domestic partners must be at least TradeMinDist apart.
func (s *State) CanCitiesTrade(a, b *City) bool {
	if a == nil || b == nil || a.ID == b.ID {
		return false
	}
	if a.Owner != b.Owner {
		return true
	}
	return s.RealDistance(a.Tile, b.Tile) >= s.Settings.TradeMinDist
}

// CanEstablishTradeRoute reports whether a new route between a and b is
// possible now: they can trade, are not yet partners, and both have a free
// route slot.
func (s *State) CanEstablishTradeRoute(a, b *City) bool {
	if !s.CanCitiesTrade(a, b) {
		return false
	}
	if slices.Contains(a.TradeRoutes, b.ID) {
		return false
	}
	limit := s.Settings.MaxTradeRoutes
	return len(a.TradeRoutes) < limit && len(b.TradeRoutes) < limit
}

// TechState returns p's research state for tech.
func (s *State) TechState(p *Player, tech string) TechState {
	if p.KnowsTech(tech) {
		return TechKnown
	}
	t, ok := s.Techs[tech]
	if !ok {
		return TechUnknown
	}
	for _, req := range t.Reqs {
		if !p.KnowsTech(req) {
			return TechUnknown
		}
	}
	return TechPrereqsKnown
}

// TechGettable reports whether p may receive tech by theft. Without holes
// every prerequisite must already be known.
func (s *State) TechGettable(p *Player, tech string) bool {
	if s.Settings.TechStealAllowHoles {
		return true
	}
	return s.TechState(p, tech) != TechUnknown
}

// StealableTech reports whether target knows a tech that actor lacks and
// could receive.
func (s *State) StealableTech(actor, target *Player) bool {
	if actor == nil || target == nil || actor == target {
		return false
	}
	for _, tech := range target.Techs {
		if actor.KnowsTech(tech) {
			continue
		}
		if s.TechGettable(actor, tech) {
			return true
		}
	}
	return false
}

// UnitsAt returns the units on t ordered by id.
func (s *State) UnitsAt(t *Tile) []*Unit {
	var out []*Unit
	for _, u := range s.Units {
		if SameTile(u.Tile, t) {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// CityAt returns the city on t, or nil.
func (s *State) CityAt(t *Tile) *City {
	for _, c := range s.Cities {
		if SameTile(c.Tile, t) {
			return c
		}
	}
	return nil
}

// TileHasExtraFlag reports whether any extra on t carries flag.
func (s *State) TileHasExtraFlag(t *Tile, flag string) bool {
	if t == nil {
		return false
	}
	for _, name := range t.Extras {
		if e, ok := s.Extras[name]; ok && slices.Contains(e.Flags, flag) {
			return true
		}
	}
	return false
}

// ProductionImprovement returns the improvement c is building, or nil when
// it builds a unit or an unknown improvement.
func (s *State) ProductionImprovement(c *City) *Improvement {
	if c == nil || c.Production.Kind != ProductionImprovement {
		return nil
	}
	return s.Improvements[c.Production.Name]
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
