package actions

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rendis/actionrules/internal/effects"
	"github.com/rendis/actionrules/internal/requirements"
	"github.com/rendis/actionrules/internal/world"
	"github.com/rendis/actionrules/pkg/schema"
)

// Scenario ids, see testdata/scenario.yaml.
const (
	caesar    = 1
	hammurabi = 2
	ramesses  = 3

	rome    = 10
	antium  = 11
	babylon = 20
	thebes  = 30

	romanDiplomat   = 100
	romanSpy        = 101
	romanCaravan    = 102
	homelessCaravan = 103
	babylonWarriors = 200
	babylonDiplomat = 201
	babylonLeader   = 202
)

const (
	reqDiplomat = `"Diplomat" in unit_type.flags`
	reqSpy      = `"Spy" in unit_type.flags`
	reqTrade    = `"TradeRoute" in unit_type.flags`
	reqHelp     = `"HelpWonder" in unit_type.flags`
	reqAtWar    = `relation.state == "war"`
)

type fixture struct {
	t      *testing.T
	state  *world.State
	reg    *Registry
	eval   *requirements.Evaluator
	fx     *effects.Set
	engine *Engine
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newFixture loads the test scenario into a ready registry with no enablers.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	state, err := world.LoadScenarioFile("../../testdata/scenario.yaml")
	require.NoError(t, err)

	ev, err := requirements.NewEvaluator(discardLogger())
	require.NoError(t, err)

	reg := NewRegistry()
	reg.Initialize()
	for _, id := range AllActionIDs() {
		require.NoError(t, reg.SetUIName(id, DefaultUIName(id)))
	}

	f := &fixture{t: t, state: state, reg: reg, eval: ev, fx: effects.NewSet(ev)}
	f.engine = f.newEngine(Settings{})
	return f
}

func (f *fixture) newEngine(settings Settings) *Engine {
	f.t.Helper()
	e, err := NewEngine(Config{
		Registry:  f.reg,
		World:     f.state,
		Evaluator: f.eval,
		Effects:   f.fx,
		Settings:  settings,
		Logger:    discardLogger(),
	})
	require.NoError(f.t, err)
	return e
}

func (f *fixture) vector(exprs ...string) requirements.Vector {
	f.t.Helper()
	defs := make([]schema.RequirementDefinition, 0, len(exprs))
	for _, e := range exprs {
		defs = append(defs, schema.RequirementDefinition{Expr: e})
	}
	vec, err := f.eval.CompileVector(defs)
	require.NoError(f.t, err)
	return vec
}

// enable registers an enabler for id with CEL actor and target requirements.
func (f *fixture) enable(id ActionID, actorReqs, targetReqs []string) *Enabler {
	f.t.Helper()
	en := NewEnabler(id, f.vector(actorReqs...), f.vector(targetReqs...))
	require.True(f.t, f.reg.AddEnabler(en))
	return en
}

// enableDefaults registers one enabler per action, close to a classic
// ruleset.
func (f *fixture) enableDefaults() {
	f.enable(ActionEstablishEmbassy, []string{reqDiplomat}, nil)
	f.enable(ActionInvestigateCity, []string{reqDiplomat}, []string{"city.size > 3"})
	f.enable(ActionPoisonCity, []string{reqSpy}, []string{"city.size > 2"})
	f.enable(ActionStealGold, []string{reqDiplomat, reqAtWar}, nil)
	f.enable(ActionSabotageCity, []string{reqDiplomat, reqAtWar}, nil)
	f.enable(ActionTargetedSabotageCity, []string{reqSpy, reqAtWar}, nil)
	f.enable(ActionStealTech, []string{reqDiplomat}, nil)
	f.enable(ActionTargetedStealTech, []string{reqSpy}, nil)
	f.enable(ActionInciteCity, []string{reqDiplomat}, []string{`!("Palace" in city.buildings)`})
	f.enable(ActionTradeRoute, []string{reqTrade}, nil)
	f.enable(ActionMarketplace, []string{reqTrade}, nil)
	f.enable(ActionHelpWonder, []string{reqHelp}, nil)
	f.enable(ActionBribeUnit, []string{reqDiplomat}, nil)
	f.enable(ActionSabotageUnit, []string{reqSpy}, nil)
}

func (f *fixture) unit(id int) *world.Unit {
	f.t.Helper()
	u, ok := f.state.Units[id]
	require.True(f.t, ok, "unit %d", id)
	return u
}

func (f *fixture) city(id int) *world.City {
	f.t.Helper()
	c, ok := f.state.Cities[id]
	require.True(f.t, ok, "city %d", id)
	return c
}

func (f *fixture) player(id int) *world.Player {
	f.t.Helper()
	p, ok := f.state.Players[id]
	require.True(f.t, ok, "player %d", id)
	return p
}

// vsCity builds the contexts the engine uses for a unit acting on a city.
func (f *fixture) vsCity(actor, target int) (world.ReqContext, world.ReqContext) {
	return f.engine.unitContext(f.unit(actor)), cityContext(f.city(target))
}

// vsUnit builds the contexts the engine uses for a unit acting on a unit.
func (f *fixture) vsUnit(actor, target int) (world.ReqContext, world.ReqContext) {
	return f.engine.unitContext(f.unit(actor)), f.engine.unitContext(f.unit(target))
}
