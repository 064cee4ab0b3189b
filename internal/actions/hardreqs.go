package actions

import (
	"github.com/rendis/actionrules/internal/world"
)

// IsActionPossible checks the requirements every enabler of id implies.
// When omniscient is false, checks whose outcome the actor could not know
// are skipped. ignoreDist skips the adjacency check.
//
// A false result means the enablers of id are irrelevant for this pair.
func (e *Engine) IsActionPossible(id ActionID, actor, target world.ReqContext, omniscient, ignoreDist bool) bool {
	act := e.mustLookup(id)

	if !ignoreDist && !e.withinReach(actor.Tile, target.Tile) {
		return false
	}
	if act.TargetKind == TargetUnit && !e.world.CanPlayerSeeUnit(actor.Player, target.Unit) {
		return false
	}
	if act.ForeignOnly() && actor.Player == target.Player {
		return false
	}

	switch id {
	case ActionBribeUnit:
		// A unique unit type can only be owned once.
		if e.world.OwnsUniqueOfType(actor.Player, target.UnitType) {
			return false
		}

	case ActionEstablishEmbassy:
		if e.world.HasRealEmbassy(actor.Player, target.Player) {
			return false
		}

	case ActionTargetedStealTech:
		// The target tech must be picked from a visible inventory.
		if !e.world.CanSeeTechsOf(actor.Player, target.Player) {
			return false
		}

	case ActionStealGold:
		if target.Player == nil || target.Player.Gold <= 0 {
			return false
		}

	case ActionTradeRoute, ActionMarketplace:
		if actor.Unit == nil || actor.Unit.HomeCity == nil {
			return false
		}
		home := actor.Unit.HomeCity
		if !e.world.CanCitiesTrade(home, target.City) {
			return false
		}
		if id == ActionMarketplace {
			if e.settings.ForceTradeRoute && e.world.CanEstablishTradeRoute(home, target.City) {
				return false
			}
		} else if !e.world.CanEstablishTradeRoute(home, target.City) {
			return false
		}

	case ActionHelpWonder:
		if omniscient || e.world.CanSeeCityInternals(actor.Player, target.City) {
			wonder := e.world.ProductionImprovement(target.City)
			if wonder == nil || !wonder.IsWonder() {
				return false
			}
			if target.City.ShieldStock >= wonder.BuildCost {
				return false
			}
		}

	case ActionPoisonCity, ActionSabotageCity, ActionTargetedSabotageCity,
		ActionStealTech, ActionInciteCity, ActionInvestigateCity, ActionSabotageUnit:
		// Nothing beyond the checks above.
	}

	return true
}

// withinReach reports whether the tiles are the same or adjacent.
func (e *Engine) withinReach(a, b *world.Tile) bool {
	if a == nil || b == nil {
		return false
	}
	return e.world.RealDistance(a, b) <= 1
}
