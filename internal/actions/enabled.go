package actions

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/rendis/actionrules/internal/logging"
	"github.com/rendis/actionrules/internal/tristate"
	"github.com/rendis/actionrules/internal/world"
	"github.com/rendis/actionrules/pkg/schema"
)

// IsEnablerActive reports whether both requirement vectors of en hold with
// certainty. Actor requirements see the target player as the other player
// and the other way around.
func (e *Engine) IsEnablerActive(ctx context.Context, en *Enabler, actor, target world.ReqContext) bool {
	actor.OtherPlayer, target.OtherPlayer = target.Player, actor.Player
	return e.eval.AreActive(ctx, e.world.Facts(actor, nil), en.ActorReqs) &&
		e.eval.AreActive(ctx, e.world.Facts(target, nil), en.TargetReqs)
}

// withAction names id as the action of ctx for log correlation.
func withAction(ctx context.Context, id ActionID) context.Context {
	if logging.Action(ctx) == id.String() {
		return ctx
	}
	return logging.WithAction(ctx, id.String())
}

// isActionEnabled is the omniscient yes/no decision shared by the typed
// entry points.
func (e *Engine) isActionEnabled(ctx context.Context, id ActionID, actor, target world.ReqContext) bool {
	ctx = withAction(ctx, id)
	logger := logging.LogWith(ctx, e.logger)

	if !e.IsActionPossible(id, actor, target, true, false) {
		logger.DebugContext(ctx, "hard requirements not met")
		return false
	}
	for _, en := range e.registry.Enablers(id) {
		if e.IsEnablerActive(ctx, en, actor, target) {
			logger.DebugContext(ctx, "enabler active", slog.String("enabler", en.Label()))
			return true
		}
	}
	return false
}

// IsActionEnabledUnitOnCity reports whether actor may perform id against
// target right now. id must target cities.
func (e *Engine) IsActionEnabledUnitOnCity(ctx context.Context, id ActionID, actor *world.Unit, target *world.City) bool {
	e.requireKinds(id, TargetCity)
	if actor == nil || target == nil {
		return false
	}
	return e.recordEnabled(id, time.Now(), func() bool {
		if !e.CanUnitTypeDo(ctx, actor.Type, id) {
			return false
		}
		return e.isActionEnabled(ctx, id, e.unitContext(actor), cityContext(target))
	})
}

// IsActionEnabledUnitOnUnit reports whether actor may perform id against
// target right now. id must target units.
func (e *Engine) IsActionEnabledUnitOnUnit(ctx context.Context, id ActionID, actor, target *world.Unit) bool {
	e.requireKinds(id, TargetUnit)
	if actor == nil || target == nil {
		return false
	}
	return e.recordEnabled(id, time.Now(), func() bool {
		if !e.CanUnitTypeDo(ctx, actor.Type, id) {
			return false
		}
		return e.isActionEnabled(ctx, id, e.unitContext(actor), e.unitContext(target))
	})
}

// ActionEnabledLocal decides whether id is enabled as far as the actor's
// player can tell. Enablers are combined with three-valued OR, each one
// being the three-valued AND of its actor and target vectors.
func (e *Engine) ActionEnabledLocal(ctx context.Context, id ActionID, actor, target world.ReqContext) tristate.Tristate {
	viewer := actor.Player
	actor.OtherPlayer, target.OtherPlayer = target.Player, actor.Player
	actorFacts := e.world.Facts(actor, viewer)
	targetFacts := e.world.Facts(target, viewer)

	result := tristate.No
	for _, en := range e.registry.Enablers(id) {
		current := tristate.And(
			e.eval.Evaluate(ctx, actorFacts, en.ActorReqs),
			e.eval.Evaluate(ctx, targetFacts, en.TargetReqs),
		)
		if current == tristate.Yes {
			return tristate.Yes
		}
		result = tristate.Or(result, current)
	}
	return result
}

// requireKinds panics unless id is a unit-performed action against target.
func (e *Engine) requireKinds(id ActionID, target TargetKind) {
	act := e.mustLookup(id)
	if act.ActorKind != ActorUnit {
		schema.Invariantf("action %s is not performed by units", id)
	}
	if act.TargetKind != target {
		schema.Invariantf("action %s targets %s, queried against %s", id, act.TargetKind, target)
	}
}

func (e *Engine) recordEnabled(id ActionID, start time.Time, query func() bool) bool {
	ok := query()
	e.metrics.RecordEnabled(id.String(), strconv.FormatBool(ok), time.Since(start))
	return ok
}
