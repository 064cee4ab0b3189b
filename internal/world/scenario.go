package world

import (
	"fmt"
	"io"
	"os"

	"github.com/rendis/actionrules/pkg/schema"
	"gopkg.in/yaml.v3"
)

// Scenario is the YAML document describing a game snapshot.
type Scenario struct {
	Settings     ScenarioSettings      `yaml:"settings"`
	Techs        []Tech                `yaml:"techs"`
	Extras       []Extra               `yaml:"extras"`
	Improvements []ScenarioImprovement `yaml:"improvements"`
	UnitTypes    []ScenarioUnitType    `yaml:"unit_types"`
	Players      []ScenarioPlayer      `yaml:"players"`
	Diplomacy    []ScenarioDiplomacy   `yaml:"diplomacy"`
	Tiles        []ScenarioTile        `yaml:"tiles"`
	Cities       []ScenarioCity        `yaml:"cities"`
	Units        []ScenarioUnit        `yaml:"units"`
}

type ScenarioSettings struct {
	MapWidth            int  `yaml:"map_width"`
	MapHeight           int  `yaml:"map_height"`
	WrapX               bool `yaml:"wrap_x"`
	VisionRadius        int  `yaml:"vision_radius"`
	TradeMinDist        int  `yaml:"trade_min_dist"`
	MaxTradeRoutes      int  `yaml:"max_trade_routes"`
	TechStealAllowHoles bool `yaml:"tech_steal_allow_holes"`
}

type ScenarioImprovement struct {
	Name      string `yaml:"name"`
	Genus     string `yaml:"genus"`
	BuildCost int    `yaml:"build_cost"`
}

type ScenarioUnitType struct {
	Name          string   `yaml:"name"`
	Flags         []string `yaml:"flags"`
	VeteranLevels []struct {
		Name      string `yaml:"name"`
		PowerFact int    `yaml:"power_fact"`
	} `yaml:"veteran_levels"`
}

type ScenarioPlayer struct {
	ID         int      `yaml:"id"`
	Name       string   `yaml:"name"`
	Nation     string   `yaml:"nation"`
	Government string   `yaml:"government"`
	Gold       int      `yaml:"gold"`
	Techs      []string `yaml:"techs"`
	Embassies  []int    `yaml:"embassies"`
}

type ScenarioDiplomacy struct {
	Players [2]int `yaml:"players"`
	State   string `yaml:"state"`
}

type ScenarioTile struct {
	X       int      `yaml:"x"`
	Y       int      `yaml:"y"`
	Terrain string   `yaml:"terrain"`
	Extras  []string `yaml:"extras"`
}

type ScenarioCity struct {
	ID         int      `yaml:"id"`
	Name       string   `yaml:"name"`
	Owner      int      `yaml:"owner"`
	X          int      `yaml:"x"`
	Y          int      `yaml:"y"`
	Size       int      `yaml:"size"`
	Buildings  []string `yaml:"buildings"`
	Production struct {
		Kind string `yaml:"kind"`
		Name string `yaml:"name"`
	} `yaml:"production"`
	ShieldStock int   `yaml:"shield_stock"`
	TradeRoutes []int `yaml:"trade_routes"`
}

type ScenarioUnit struct {
	ID        int    `yaml:"id"`
	Type      string `yaml:"type"`
	Owner     int    `yaml:"owner"`
	X         int    `yaml:"x"`
	Y         int    `yaml:"y"`
	HomeCity  int    `yaml:"home_city"`
	Veteran   int    `yaml:"veteran"`
	HP        int    `yaml:"hp"`
	MovesLeft int    `yaml:"moves_left"`
}

// LoadScenarioFile reads a YAML scenario from path.
func LoadScenarioFile(path string) (*State, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open scenario: %w", err)
	}
	defer f.Close()
	return LoadScenario(f)
}

// LoadScenario decodes a YAML scenario and resolves its references.
func LoadScenario(r io.Reader) (*State, error) {
	d := DefaultSettings()
	doc := Scenario{Settings: ScenarioSettings{
		MapWidth:       d.MapWidth,
		MapHeight:      d.MapHeight,
		VisionRadius:   d.VisionRadius,
		TradeMinDist:   d.TradeMinDist,
		MaxTradeRoutes: d.MaxTradeRoutes,
	}}

	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil && err != io.EOF {
		return nil, schema.NewError(schema.ErrCodeScenario, "decode scenario").WithCause(err)
	}
	return doc.Build()
}

// Build resolves the document into a State.
func (doc *Scenario) Build() (*State, error) {
	s := NewState(Settings{
		MapWidth:            doc.Settings.MapWidth,
		MapHeight:           doc.Settings.MapHeight,
		WrapX:               doc.Settings.WrapX,
		VisionRadius:        doc.Settings.VisionRadius,
		TradeMinDist:        doc.Settings.TradeMinDist,
		MaxTradeRoutes:      doc.Settings.MaxTradeRoutes,
		TechStealAllowHoles: doc.Settings.TechStealAllowHoles,
	})

	for i := range doc.Techs {
		t := doc.Techs[i]
		s.AddTech(&t)
	}
	for i := range doc.Extras {
		e := doc.Extras[i]
		s.AddExtra(&e)
	}
	for _, imp := range doc.Improvements {
		s.AddImprovement(&Improvement{Name: imp.Name, Genus: imp.Genus, BuildCost: imp.BuildCost})
	}
	for _, ut := range doc.UnitTypes {
		t := &UnitType{Name: ut.Name, Flags: ut.Flags}
		for _, lvl := range ut.VeteranLevels {
			t.VeteranLevels = append(t.VeteranLevels, VeteranLevel{Name: lvl.Name, PowerFact: lvl.PowerFact})
		}
		s.AddUnitType(t)
	}
	for _, p := range doc.Players {
		if _, dup := s.Players[p.ID]; dup {
			return nil, schema.NewErrorf(schema.ErrCodeScenario, "duplicate player id %d", p.ID)
		}
		s.AddPlayer(&Player{
			ID: p.ID, Name: p.Name, Nation: p.Nation, Government: p.Government,
			Gold: p.Gold, Techs: p.Techs, Embassies: p.Embassies,
		})
	}
	for _, dp := range doc.Diplomacy {
		a, err := s.player(dp.Players[0])
		if err != nil {
			return nil, err
		}
		b, err := s.player(dp.Players[1])
		if err != nil {
			return nil, err
		}
		s.SetDiplState(a, b, dp.State)
	}
	for _, t := range doc.Tiles {
		if err := s.checkOnMap(t.X, t.Y); err != nil {
			return nil, fmt.Errorf("tile: %w", err)
		}
		tile := s.Tile(t.X, t.Y)
		if t.Terrain != "" {
			tile.Terrain = t.Terrain
		}
		tile.Extras = t.Extras
	}
	for _, c := range doc.Cities {
		owner, err := s.player(c.Owner)
		if err != nil {
			return nil, fmt.Errorf("city %d: %w", c.ID, err)
		}
		if _, dup := s.Cities[c.ID]; dup {
			return nil, schema.NewErrorf(schema.ErrCodeScenario, "duplicate city id %d", c.ID)
		}
		if err := s.checkOnMap(c.X, c.Y); err != nil {
			return nil, fmt.Errorf("city %d: %w", c.ID, err)
		}
		s.AddCity(&City{
			ID: c.ID, Name: c.Name, Owner: owner, Tile: s.Tile(c.X, c.Y), Size: c.Size,
			Buildings:   c.Buildings,
			Production:  Production{Kind: c.Production.Kind, Name: c.Production.Name},
			ShieldStock: c.ShieldStock,
			TradeRoutes: c.TradeRoutes,
		})
	}
	for _, c := range doc.Cities {
		for _, id := range c.TradeRoutes {
			if _, ok := s.Cities[id]; !ok || id == c.ID {
				return nil, schema.NewErrorf(schema.ErrCodeScenario, "city %d: bad trade route partner %d", c.ID, id)
			}
		}
	}
	for _, u := range doc.Units {
		owner, err := s.player(u.Owner)
		if err != nil {
			return nil, fmt.Errorf("unit %d: %w", u.ID, err)
		}
		if _, dup := s.Units[u.ID]; dup {
			return nil, schema.NewErrorf(schema.ErrCodeScenario, "duplicate unit id %d", u.ID)
		}
		if err := s.checkOnMap(u.X, u.Y); err != nil {
			return nil, fmt.Errorf("unit %d: %w", u.ID, err)
		}
		ut, ok := s.UnitTypes[u.Type]
		if !ok {
			return nil, schema.NewErrorf(schema.ErrCodeScenario, "unit %d: unknown unit type %q", u.ID, u.Type)
		}
		var home *City
		if u.HomeCity != 0 {
			if home, ok = s.Cities[u.HomeCity]; !ok {
				return nil, schema.NewErrorf(schema.ErrCodeScenario, "unit %d: unknown home city %d", u.ID, u.HomeCity)
			}
		}
		s.AddUnit(&Unit{
			ID: u.ID, Type: ut, Owner: owner, Tile: s.Tile(u.X, u.Y), HomeCity: home,
			Veteran: u.Veteran, HP: u.HP, MovesLeft: u.MovesLeft,
		})
	}
	return s, nil
}

func (s *State) checkOnMap(x, y int) error {
	if x < 0 || x >= s.Settings.MapWidth || y < 0 || y >= s.Settings.MapHeight {
		return schema.NewErrorf(schema.ErrCodeScenario, "(%d,%d) is outside the %dx%d map",
			x, y, s.Settings.MapWidth, s.Settings.MapHeight)
	}
	return nil
}

func (s *State) player(id int) (*Player, error) {
	p, ok := s.Players[id]
	if !ok {
		return nil, schema.NewErrorf(schema.ErrCodeScenario, "unknown player %d", id)
	}
	return p, nil
}
