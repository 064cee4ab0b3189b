package actions

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rendis/actionrules/internal/logging"
	"github.com/rendis/actionrules/internal/tristate"
)

func TestIsActionEnabled_EmbassyScenario(t *testing.T) {
	f := newFixture(t)
	f.enable(ActionEstablishEmbassy, nil, nil)

	ctx := context.Background()
	assert.True(t, f.engine.IsActionEnabledUnitOnCity(ctx, ActionEstablishEmbassy, f.unit(romanDiplomat), f.city(babylon)))
}

func TestIsActionEnabled_NoEnablers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	assert.False(t, f.engine.IsActionEnabledUnitOnCity(ctx, ActionEstablishEmbassy, f.unit(romanDiplomat), f.city(babylon)))
}

func TestIsActionEnabled_HardRequirementsDominate(t *testing.T) {
	f := newFixture(t)
	for _, id := range AllActionIDs() {
		f.enable(id, nil, nil)
	}
	ctx := context.Background()

	tests := []struct {
		name   string
		id     ActionID
		actor  int
		target int
	}{
		{"steal gold from an empty treasury", ActionStealGold, romanDiplomat, thebes},
		{"trade route without home city", ActionTradeRoute, homelessCaravan, thebes},
		{"marketplace without home city", ActionMarketplace, homelessCaravan, thebes},
		{"help wonder when not building one", ActionHelpWonder, romanCaravan, thebes},
		{"embassy out of reach", ActionEstablishEmbassy, romanDiplomat, rome},
		{"investigate own city", ActionInvestigateCity, romanCaravan, rome},
	}
	f.unit(romanDiplomat).Tile = f.state.Tile(5, 3)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			actor, target := f.vsCity(tt.actor, tt.target)
			require.False(t, f.engine.IsActionPossible(tt.id, actor, target, true, false))
			assert.False(t, f.engine.IsActionEnabledUnitOnCity(ctx, tt.id, f.unit(tt.actor), f.city(tt.target)))
		})
	}
}

func TestIsActionEnabled_TradeRouteNoHomeCity(t *testing.T) {
	f := newFixture(t)
	f.enable(ActionTradeRoute, nil, nil)

	ctx := context.Background()
	assert.False(t, f.engine.IsActionEnabledUnitOnCity(ctx, ActionTradeRoute, f.unit(homelessCaravan), f.city(thebes)))
	assert.True(t, f.engine.IsActionEnabledUnitOnCity(ctx, ActionTradeRoute, f.unit(romanCaravan), f.city(thebes)))
}

func TestIsActionEnabled_OrAcrossEnablers(t *testing.T) {
	f := newFixture(t)
	f.enable(ActionStealGold, []string{`"Spy" in unit_type.flags`}, nil)
	ctx := context.Background()

	diplomat, city := f.unit(romanDiplomat), f.city(babylon)
	assert.False(t, f.engine.IsActionEnabledUnitOnCity(ctx, ActionStealGold, diplomat, city))

	f.enable(ActionStealGold, []string{reqDiplomat}, []string{"other_player.gold > 100"})
	assert.True(t, f.engine.IsActionEnabledUnitOnCity(ctx, ActionStealGold, diplomat, city),
		"the second enabler sees Caesar's 150 gold as the other player")
}

func TestIsActionEnabled_ActorAndTargetBothRequired(t *testing.T) {
	f := newFixture(t)
	f.enable(ActionInvestigateCity, []string{reqDiplomat}, []string{"city.size > 10"})
	ctx := context.Background()
	assert.False(t, f.engine.IsActionEnabledUnitOnCity(ctx, ActionInvestigateCity, f.unit(romanDiplomat), f.city(babylon)))
}

func TestIsActionEnabled_UnitOnUnit(t *testing.T) {
	f := newFixture(t)
	f.enableDefaults()
	ctx := context.Background()

	assert.True(t, f.engine.IsActionEnabledUnitOnUnit(ctx, ActionSabotageUnit, f.unit(romanSpy), f.unit(babylonWarriors)))
	assert.True(t, f.engine.IsActionEnabledUnitOnUnit(ctx, ActionBribeUnit, f.unit(romanSpy), f.unit(babylonDiplomat)))
	assert.False(t, f.engine.IsActionEnabledUnitOnUnit(ctx, ActionSabotageUnit, f.unit(romanDiplomat), f.unit(babylonWarriors)),
		"too far away")
}

func TestIsActionEnabled_UnitTypeNotCapable(t *testing.T) {
	f := newFixture(t)
	f.enable(ActionEstablishEmbassy, []string{reqDiplomat}, nil)
	ctx := context.Background()

	f.unit(romanCaravan).Tile = f.state.Tile(9, 4)
	assert.False(t, f.engine.CanUnitTypeDo(ctx, f.unit(romanCaravan).Type, ActionEstablishEmbassy))
	assert.False(t, f.engine.IsActionEnabledUnitOnCity(ctx, ActionEstablishEmbassy, f.unit(romanCaravan), f.city(babylon)))
}

func TestIsActionEnabled_NilArguments(t *testing.T) {
	f := newFixture(t)
	f.enableDefaults()
	ctx := context.Background()
	assert.False(t, f.engine.IsActionEnabledUnitOnCity(ctx, ActionEstablishEmbassy, nil, f.city(babylon)))
	assert.False(t, f.engine.IsActionEnabledUnitOnUnit(ctx, ActionBribeUnit, f.unit(romanSpy), nil))
}

func TestIsActionEnabled_TargetKindMismatchPanics(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	assert.Panics(t, func() {
		f.engine.IsActionEnabledUnitOnCity(ctx, ActionBribeUnit, f.unit(romanSpy), f.city(babylon))
	})
	assert.Panics(t, func() {
		f.engine.IsActionEnabledUnitOnUnit(ctx, ActionEstablishEmbassy, f.unit(romanSpy), f.unit(babylonWarriors))
	})
	assert.Panics(t, func() {
		f.engine.IsActionEnabledUnitOnCity(ctx, ActionCount, f.unit(romanSpy), f.city(babylon))
	})
}

func TestIsEnablerActive_OtherPlayer(t *testing.T) {
	f := newFixture(t)
	en := f.enable(ActionStealGold,
		[]string{`other_player.name == "Hammurabi"`, reqAtWar},
		[]string{`other_player.name == "Caesar"`})
	actor, target := f.vsCity(romanDiplomat, babylon)
	assert.True(t, f.engine.IsEnablerActive(context.Background(), en, actor, target))
}

func TestIsEnablerActive_MaybeIsNotActive(t *testing.T) {
	f := newFixture(t)
	en := f.enable(ActionStealGold, []string{"unit.no_such_field > 0"}, nil)
	actor, target := f.vsCity(romanDiplomat, babylon)
	assert.False(t, f.engine.IsEnablerActive(context.Background(), en, actor, target))
}

func TestCanUnitTypeDo(t *testing.T) {
	f := newFixture(t)
	f.enableDefaults()
	ctx := context.Background()
	types := f.state.UnitTypes

	assert.True(t, f.engine.CanUnitTypeDo(ctx, types["Diplomat"], ActionStealGold),
		"the war requirement is unknown from the unit type alone")
	assert.False(t, f.engine.CanUnitTypeDo(ctx, types["Diplomat"], ActionSabotageUnit))
	assert.True(t, f.engine.CanUnitTypeDo(ctx, types["Spy"], ActionSabotageUnit))
	assert.True(t, f.engine.CanUnitTypeDo(ctx, types["Caravan"], ActionHelpWonder))
	assert.False(t, f.engine.CanUnitTypeDo(ctx, types["Warriors"], ActionEstablishEmbassy))
	assert.False(t, f.engine.CanUnitTypeDo(ctx, nil, ActionEstablishEmbassy))
}

func TestCanUnitTypeDo_CacheFollowsRegistry(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	warriors := f.state.UnitTypes["Warriors"]

	assert.False(t, f.engine.CanUnitTypeDo(ctx, warriors, ActionSabotageCity))

	en := f.enable(ActionSabotageCity, nil, nil)
	assert.True(t, f.engine.CanUnitTypeDo(ctx, warriors, ActionSabotageCity))

	require.True(t, f.reg.RemoveEnabler(en))
	assert.False(t, f.engine.CanUnitTypeDo(ctx, warriors, ActionSabotageCity))
}

func TestActionEnabledLocal(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	actor, target := f.vsCity(romanDiplomat, babylon)
	assert.Equal(t, tristate.No, f.engine.ActionEnabledLocal(ctx, ActionInciteCity, actor, target),
		"no enablers")

	f.enable(ActionInciteCity, []string{reqDiplomat}, []string{`!("Palace" in city.buildings)`})
	assert.Equal(t, tristate.Maybe, f.engine.ActionEnabledLocal(ctx, ActionInciteCity, actor, target),
		"Babylon's buildings are hidden from Caesar")

	f.enable(ActionInciteCity, []string{reqDiplomat, "player.gold > 1000"}, nil)
	assert.Equal(t, tristate.Maybe, f.engine.ActionEnabledLocal(ctx, ActionInciteCity, actor, target),
		"a No enabler does not override a Maybe one")

	f.enable(ActionInciteCity, []string{reqDiplomat}, []string{"city.size >= 7"})
	assert.Equal(t, tristate.Yes, f.engine.ActionEnabledLocal(ctx, ActionInciteCity, actor, target))
}

func TestActionEnabledLocal_NoDominates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	actor, target := f.vsCity(romanDiplomat, babylon)

	f.enable(ActionStealGold, []string{`"Spy" in unit_type.flags`}, []string{"other_player.gold > 0"})
	f.enable(ActionStealGold, []string{reqDiplomat}, []string{"city.size > 20"})
	f.enable(ActionStealGold, []string{"player.gold < 0"}, []string{`"Temple" in city.buildings`})

	assert.Equal(t, tristate.No, f.engine.ActionEnabledLocal(ctx, ActionStealGold, actor, target))
}

func TestActionEnabledLocal_OwnKnowledge(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.enable(ActionHelpWonder, []string{reqHelp}, []string{`"Palace" in city.buildings`})
	actor, target := f.vsCity(romanCaravan, rome)
	assert.Equal(t, tristate.Yes, f.engine.ActionEnabledLocal(ctx, ActionHelpWonder, actor, target),
		"Caesar sees inside his own city")
}

func TestIsActionEnabled_LogsActionOnce(t *testing.T) {
	handlers := map[string]func(io.Writer) slog.Handler{
		"plain": func(w io.Writer) slog.Handler {
			return slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug})
		},
		"correlation": func(w io.Writer) slog.Handler {
			return logging.NewCorrelationHandler(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
		},
	}
	callers := map[string]string{
		"same action":  ActionEstablishEmbassy.String(),
		"other action": ActionStealGold.String(),
		"no action":    "",
	}

	for hname, newHandler := range handlers {
		for cname, callerAction := range callers {
			t.Run(hname+"/"+cname, func(t *testing.T) {
				f := newFixture(t)
				f.enable(ActionEstablishEmbassy, nil, nil)
				var buf bytes.Buffer
				engine, err := NewEngine(Config{
					Registry:  f.reg,
					World:     f.state,
					Evaluator: f.eval,
					Effects:   f.fx,
					Logger:    slog.New(newHandler(&buf)),
				})
				require.NoError(t, err)

				ctx := logging.WithQueryID(context.Background(), "q-1")
				if callerAction != "" {
					ctx = logging.WithAction(ctx, callerAction)
				}
				require.True(t, engine.IsActionEnabledUnitOnCity(ctx, ActionEstablishEmbassy, f.unit(romanDiplomat), f.city(babylon)))
				engine.ActionProbVsCity(ctx, f.unit(romanDiplomat), ActionEstablishEmbassy, f.city(babylon))

				lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
				require.NotEmpty(t, lines)
				want := `"action":"` + ActionEstablishEmbassy.String() + `"`
				for _, line := range lines {
					assert.Equal(t, 1, strings.Count(line, `"action"`), line)
					assert.Contains(t, line, want)
					assert.Equal(t, 1, strings.Count(line, `"query_id"`), line)
				}
			})
		}
	}
}
