package world

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestState(t *testing.T) *State {
	t.Helper()
	s, err := LoadScenarioFile("../../testdata/scenario.yaml")
	require.NoError(t, err)
	return s
}

func TestRealDistance(t *testing.T) {
	s := NewState(Settings{MapWidth: 40, MapHeight: 25})
	tests := []struct {
		name           string
		x1, y1, x2, y2 int
		want           int
	}{
		{"same tile", 3, 3, 3, 3, 0},
		{"adjacent diagonal", 3, 3, 4, 4, 1},
		{"chebyshev", 0, 0, 3, 7, 7},
		{"no wrap", 0, 5, 39, 5, 39},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, s.RealDistance(s.Tile(tt.x1, tt.y1), s.Tile(tt.x2, tt.y2)))
		})
	}

	s.Settings.WrapX = true
	assert.Equal(t, 1, s.RealDistance(s.Tile(0, 5), s.Tile(39, 5)))
}

func TestTileIdentity(t *testing.T) {
	s := NewState(DefaultSettings())
	a := s.Tile(4, 4)
	assert.Same(t, a, s.Tile(4, 4))
	assert.True(t, SameTile(a, &Tile{X: 4, Y: 4}))
	assert.False(t, SameTile(a, nil))
}

func TestDiplState(t *testing.T) {
	s := newTestState(t)
	rome, babylon, egypt := s.Players[1], s.Players[2], s.Players[3]

	assert.Equal(t, DiplWar, s.DiplState(rome, babylon))
	assert.Equal(t, DiplWar, s.DiplState(babylon, rome))
	assert.Equal(t, DiplPeace, s.DiplState(egypt, rome))
	assert.Equal(t, DiplNoContact, s.DiplState(egypt, babylon))
	assert.Equal(t, DiplTeam, s.DiplState(rome, rome))
	assert.Equal(t, DiplNoContact, s.DiplState(nil, rome))
}

func TestCanPlayerSeeUnit(t *testing.T) {
	s := newTestState(t)
	rome, egypt := s.Players[1], s.Players[3]

	assert.True(t, s.CanPlayerSeeUnit(rome, s.Units[100]), "own unit")
	assert.True(t, s.CanPlayerSeeUnit(rome, s.Units[200]), "within vision of the spy")
	assert.False(t, s.CanPlayerSeeUnit(egypt, s.Units[200]), "far from every Egyptian asset")
	assert.False(t, s.CanPlayerSeeUnit(nil, s.Units[200]))
}

func TestEmbassyAndKnowledge(t *testing.T) {
	s := newTestState(t)
	rome, babylon, egypt := s.Players[1], s.Players[2], s.Players[3]

	assert.True(t, s.HasRealEmbassy(egypt, rome))
	assert.False(t, s.HasRealEmbassy(rome, egypt))
	assert.True(t, s.CanSeeTechsOf(egypt, rome))
	assert.True(t, s.CanSeeTechsOf(rome, rome))
	assert.False(t, s.CanSeeTechsOf(rome, babylon))

	assert.True(t, s.CanSeeCityInternals(rome, s.Cities[10]))
	assert.False(t, s.CanSeeCityInternals(rome, s.Cities[20]))
}

func TestOwnsUniqueOfType(t *testing.T) {
	s := newTestState(t)
	leader := s.UnitTypes["Leader"]

	assert.True(t, s.OwnsUniqueOfType(s.Players[2], leader))
	assert.False(t, s.OwnsUniqueOfType(s.Players[1], leader))
	assert.False(t, s.OwnsUniqueOfType(s.Players[2], s.UnitTypes["Warriors"]), "not unique")
}

func TestCityTrade(t *testing.T) {
	s := newTestState(t)
	rome, antium, babylon, thebes := s.Cities[10], s.Cities[11], s.Cities[20], s.Cities[30]

	assert.False(t, s.CanCitiesTrade(rome, rome))
	assert.True(t, s.CanCitiesTrade(rome, babylon), "foreign partners ignore distance")
	assert.True(t, s.CanCitiesTrade(rome, antium), "domestic at distance 12")
	assert.True(t, s.CanCitiesTrade(rome, thebes))

	s.Settings.TradeMinDist = 20
	assert.False(t, s.CanCitiesTrade(rome, antium))

	assert.True(t, s.CanEstablishTradeRoute(rome, babylon))
	rome.TradeRoutes = []int{20}
	assert.False(t, s.CanEstablishTradeRoute(rome, babylon), "already partners")
	rome.TradeRoutes = []int{30, 31}
	assert.False(t, s.CanEstablishTradeRoute(rome, babylon), "no free slot")
}

func TestResearch(t *testing.T) {
	s := newTestState(t)
	rome, babylon, egypt := s.Players[1], s.Players[2], s.Players[3]

	assert.Equal(t, TechKnown, s.TechState(rome, "Alphabet"))
	assert.Equal(t, TechPrereqsKnown, s.TechState(rome, "Writing"))
	assert.Equal(t, TechUnknown, s.TechState(egypt, "Writing"))

	assert.True(t, s.StealableTech(rome, babylon), "Writing and Currency are reachable")
	assert.False(t, s.StealableTech(babylon, rome), "Babylon knows everything Rome does")
	assert.False(t, s.StealableTech(egypt, egypt))

	// Egypt knows nothing, so Writing has a hole but Alphabet is stealable.
	assert.True(t, s.StealableTech(egypt, babylon))
	babylon.Techs = []string{"Currency"}
	assert.False(t, s.StealableTech(egypt, babylon), "Currency needs Bronze Working")
	s.Settings.TechStealAllowHoles = true
	assert.True(t, s.StealableTech(egypt, babylon))
}

func TestTileQueries(t *testing.T) {
	s := newTestState(t)
	fortress := s.Tile(12, 5)

	units := s.UnitsAt(fortress)
	require.Len(t, units, 2)
	assert.Equal(t, 200, units[0].ID)
	assert.Equal(t, 201, units[1].ID)

	assert.True(t, s.TileHasExtraFlag(fortress, ExtraFlagDiplomatDefense))
	assert.False(t, s.TileHasExtraFlag(s.Tile(10, 5), ExtraFlagDiplomatDefense))
	assert.Same(t, s.Cities[20], s.CityAt(s.Tile(10, 5)))
	assert.Nil(t, s.CityAt(fortress))
}

func TestProductionImprovement(t *testing.T) {
	s := newTestState(t)
	assert.True(t, s.ProductionImprovement(s.Cities[10]).IsWonder())
	assert.False(t, s.ProductionImprovement(s.Cities[20]).IsWonder())
	assert.Nil(t, s.ProductionImprovement(s.Cities[11]))
}

func TestPowerFact(t *testing.T) {
	s := newTestState(t)
	spy := s.UnitTypes["Spy"]
	assert.Equal(t, 100, spy.PowerFact(0))
	assert.Equal(t, 150, spy.PowerFact(1))
	assert.Equal(t, 150, spy.PowerFact(7))
	assert.Equal(t, 100, s.UnitTypes["Caravan"].PowerFact(3))
}
