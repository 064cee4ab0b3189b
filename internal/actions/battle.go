package actions

import (
	"context"

	"github.com/rendis/actionrules/internal/effects"
	"github.com/rendis/actionrules/internal/tristate"
	"github.com/rendis/actionrules/internal/world"
)

// diplomatBattle returns the chance that attacker gets past the defenders on
// victim's tile. Units of the attacker's owner do not defend, and the
// victim only defends itself when it is a super spy.
func (e *Engine) diplomatBattle(ctx context.Context, attacker, victim *world.Unit) Probability {
	if attacker == nil || victim == nil {
		return Impossible
	}
	for _, u := range e.world.UnitsAt(victim.Tile) {
		if u.Owner == attacker.Owner {
			continue
		}
		if u == victim && !u.HasFlag(world.FlagSuperSpy) {
			continue
		}
		if u.HasFlag(world.FlagDiplomat) || u.HasFlag(world.FlagSuperSpy) {
			return e.diplomatBattleWin(ctx, attacker, u)
		}
	}
	// No defender, no battle.
	return Certain
}

// diplomatBattleWin returns the chance that attacker beats defender.
func (e *Engine) diplomatBattleWin(ctx context.Context, attacker, defender *world.Unit) Probability {
	if defender.HasFlag(world.FlagSuperSpy) {
		return Impossible
	}
	if attacker.HasFlag(world.FlagSuperSpy) {
		return Certain
	}

	chance := 50
	if attacker.HasFlag(world.FlagSpy) {
		chance += 25
	}
	if defender.HasFlag(world.FlagSpy) {
		chance -= 25
	}
	chance += attacker.Type.PowerFact(attacker.Veteran) - defender.Type.PowerFact(defender.Veteran)

	if e.world.TileHasExtraFlag(defender.Tile, world.ExtraFlagDiplomatDefense) {
		chance -= chance * 25 / 100
	}

	if city := e.world.CityAt(defender.Tile); city != nil {
		facts := e.world.Facts(world.ReqContext{
			Player:      city.Owner,
			OtherPlayer: attacker.Owner,
			City:        city,
			Tile:        defender.Tile,
		}, attacker.Owner)
		bonus, known := e.effects.KnownBonus(ctx, effects.SpyResistant, facts)
		if known != tristate.Yes {
			return Unknown
		}
		chance -= chance * bonus / 100
	}

	chance = min(max(chance, 0), 100)
	return Range{Min: chance * ProbOnePc, Max: chance * ProbOnePc}
}
