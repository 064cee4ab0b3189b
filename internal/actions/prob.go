package actions

import (
	"context"
	"log/slog"
	"time"

	"github.com/rendis/actionrules/internal/logging"
	"github.com/rendis/actionrules/internal/tristate"
	"github.com/rendis/actionrules/internal/world"
)

// actionProb estimates the chance that the actor succeeds, from the point
// of view of the actor's player.
func (e *Engine) actionProb(ctx context.Context, id ActionID, actor, target world.ReqContext) Probability {
	if !e.IsActionPossible(id, actor, target, false, false) {
		return Impossible
	}

	known := e.ActionEnabledLocal(ctx, id, actor, target)

	var chance Probability = NotImplemented{}
	switch id {
	case ActionSabotageUnit, ActionBribeUnit:
		chance = e.diplomatBattle(ctx, actor.Unit, target.Unit)

	case ActionEstablishEmbassy, ActionInvestigateCity, ActionMarketplace, ActionHelpWonder:
		chance = Certain

	case ActionStealTech, ActionTargetedStealTech:
		// Is there anything worth taking?
		known = tristate.And(known, e.techCanBeStolen(actor.Player, target.Player))

	case ActionPoisonCity, ActionSabotageCity, ActionTargetedSabotageCity,
		ActionInciteCity, ActionStealGold, ActionTradeRoute:
		// Success chance is not modelled.
	}

	return fromKnowledge(known, chance)
}

// techCanBeStolen reports whether target knows a tech the actor could
// receive. It is Maybe when the actor can not see the target's research.
func (e *Engine) techCanBeStolen(actor, target *world.Player) tristate.Tristate {
	if actor == nil || target == nil || actor == target {
		return tristate.No
	}
	if !e.world.CanSeeTechsOf(actor, target) {
		return tristate.Maybe
	}
	return tristate.FromBool(e.world.StealableTech(actor, target))
}

// ActionProbVsCity returns the chance that actor succeeds in doing id to
// target. id must target cities.
func (e *Engine) ActionProbVsCity(ctx context.Context, actor *world.Unit, id ActionID, target *world.City) Probability {
	e.requireKinds(id, TargetCity)
	if actor == nil || target == nil {
		return Impossible
	}
	return e.recordProbability(ctx, id, time.Now(), func() Probability {
		if !e.CanUnitTypeDo(ctx, actor.Type, id) {
			return Impossible
		}
		return e.actionProb(ctx, id, e.unitContext(actor), cityContext(target))
	})
}

// ActionProbVsUnit returns the chance that actor succeeds in doing id to
// target. id must target units.
func (e *Engine) ActionProbVsUnit(ctx context.Context, actor *world.Unit, id ActionID, target *world.Unit) Probability {
	e.requireKinds(id, TargetUnit)
	if actor == nil || target == nil {
		return Impossible
	}
	return e.recordProbability(ctx, id, time.Now(), func() Probability {
		if !e.CanUnitTypeDo(ctx, actor.Type, id) {
			return Impossible
		}
		return e.actionProb(ctx, id, e.unitContext(actor), e.unitContext(target))
	})
}

// ActionProbability pairs an action with its success chance.
type ActionProbability struct {
	Action      ActionID    `json:"action"`
	Probability Probability `json:"probability"`
}

// ProbabilitiesVsCity lists the chance of every action for actor against
// target. Actions that target units are NotRelevant.
func (e *Engine) ProbabilitiesVsCity(ctx context.Context, actor *world.Unit, target *world.City) []ActionProbability {
	out := make([]ActionProbability, 0, ActionCount)
	for _, act := range e.registry.Actions() {
		var p Probability = NotRelevant{}
		if act.TargetKind == TargetCity {
			p = e.ActionProbVsCity(ctx, actor, act.ID, target)
		}
		out = append(out, ActionProbability{Action: act.ID, Probability: p})
	}
	return out
}

// ProbabilitiesVsUnit lists the chance of every action for actor against
// target. Actions that target cities are NotRelevant.
func (e *Engine) ProbabilitiesVsUnit(ctx context.Context, actor, target *world.Unit) []ActionProbability {
	out := make([]ActionProbability, 0, ActionCount)
	for _, act := range e.registry.Actions() {
		var p Probability = NotRelevant{}
		if act.TargetKind == TargetUnit {
			p = e.ActionProbVsUnit(ctx, actor, act.ID, target)
		}
		out = append(out, ActionProbability{Action: act.ID, Probability: p})
	}
	return out
}

func (e *Engine) recordProbability(ctx context.Context, id ActionID, start time.Time, query func() Probability) Probability {
	p := query()
	e.metrics.RecordProbability(id.String(), p.Kind().String(), time.Since(start))
	ctx = withAction(ctx, id)
	logging.LogWith(ctx, e.logger).DebugContext(ctx, "action probability",
		slog.String("kind", p.Kind().String()),
		slog.String("text", ProbabilityText(p)))
	return p
}
