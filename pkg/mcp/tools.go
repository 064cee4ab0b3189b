package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/rendis/actionrules/internal/actions"
	"github.com/rendis/actionrules/internal/logging"
	"github.com/rendis/actionrules/internal/world"
)

const noID = -1

// target is the resolved subject of a query. Exactly one of city and unit
// is set.
type target struct {
	actor *world.Unit
	city  *world.City
	unit  *world.Unit
}

func (t target) kind() actions.TargetKind {
	if t.unit != nil {
		return actions.TargetUnit
	}
	return actions.TargetCity
}

func (t target) id() int {
	if t.unit != nil {
		return t.unit.ID
	}
	return t.city.ID
}

// handleList lists every registered action.
func (s *ActionServer) handleList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	reg := s.engine.Registry()
	rows := make([]map[string]any, 0, actions.ActionCount)
	for _, act := range reg.Actions() {
		rows = append(rows, map[string]any{
			"action":       act.RuleName(),
			"ui_name":      act.UIName,
			"target_kind":  act.TargetKind.String(),
			"hostile":      act.Hostile,
			"foreign_only": act.ForeignOnly(),
			"enablers":     len(reg.Enablers(act.ID)),
		})
	}
	return s.filtered(req, rows)
}

// handleEnabled answers whether the action is enabled for the actor.
func (s *ActionServer) handleEnabled(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	act, errResult := s.resolveAction(req)
	if errResult != nil {
		return errResult, nil
	}
	tgt, errResult := s.resolveTarget(req)
	if errResult != nil {
		return errResult, nil
	}
	if act.TargetKind != tgt.kind() {
		return mcp.NewToolResultError(fmt.Sprintf("%s targets a %s, not a %s", act.RuleName(), act.TargetKind, tgt.kind())), nil
	}

	ctx = s.queryContext(ctx, act.RuleName())
	var enabled bool
	if tgt.unit != nil {
		enabled = s.engine.IsActionEnabledUnitOnUnit(ctx, act.ID, tgt.actor, tgt.unit)
	} else {
		enabled = s.engine.IsActionEnabledUnitOnCity(ctx, act.ID, tgt.actor, tgt.city)
	}

	return marshalResult(map[string]any{
		"query_id":    logging.QueryID(ctx),
		"action":      act.RuleName(),
		"actor_id":    tgt.actor.ID,
		"target_kind": tgt.kind().String(),
		"target_id":   tgt.id(),
		"enabled":     enabled,
	})
}

// handleProbability estimates the chance of success from the point of view
// of the actor's owner.
func (s *ActionServer) handleProbability(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	act, errResult := s.resolveAction(req)
	if errResult != nil {
		return errResult, nil
	}
	tgt, errResult := s.resolveTarget(req)
	if errResult != nil {
		return errResult, nil
	}
	if act.TargetKind != tgt.kind() {
		return mcp.NewToolResultError(fmt.Sprintf("%s targets a %s, not a %s", act.RuleName(), act.TargetKind, tgt.kind())), nil
	}

	ctx = s.queryContext(ctx, act.RuleName())
	var p actions.Probability
	if tgt.unit != nil {
		p = s.engine.ActionProbVsUnit(ctx, tgt.actor, act.ID, tgt.unit)
	} else {
		p = s.engine.ActionProbVsCity(ctx, tgt.actor, act.ID, tgt.city)
	}

	uiName, err := s.engine.Registry().PrepareUIName(act.ID, req.GetString("mnemonic", ""), p)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("display name: %v", err)), nil
	}

	return marshalResult(map[string]any{
		"query_id":    logging.QueryID(ctx),
		"action":      act.RuleName(),
		"actor_id":    tgt.actor.ID,
		"target_kind": tgt.kind().String(),
		"target_id":   tgt.id(),
		"probability": p,
		"possible":    actions.Possible(p),
		"ui_name":     uiName,
		"tooltip":     actions.ToolTip(p),
	})
}

// handleMatrix estimates every action of the actor against one target.
func (s *ActionServer) handleMatrix(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	tgt, errResult := s.resolveTarget(req)
	if errResult != nil {
		return errResult, nil
	}

	ctx = s.queryContext(ctx, "")
	var probs []actions.ActionProbability
	if tgt.unit != nil {
		probs = s.engine.ProbabilitiesVsUnit(ctx, tgt.actor, tgt.unit)
	} else {
		probs = s.engine.ProbabilitiesVsCity(ctx, tgt.actor, tgt.city)
	}

	rows := make([]map[string]any, 0, len(probs))
	for _, ap := range probs {
		rows = append(rows, map[string]any{
			"action":      ap.Action.String(),
			"probability": ap.Probability,
			"possible":    actions.Possible(ap.Probability),
			"text":        actions.ProbabilityText(ap.Probability),
		})
	}
	return s.filtered(req, rows)
}

// --- Helpers ---

func (s *ActionServer) resolveAction(req mcp.CallToolRequest) (*actions.Action, *mcp.CallToolResult) {
	name, err := req.RequireString("action")
	if err != nil {
		return nil, mcp.NewToolResultError("action is required")
	}
	id, err := actions.ParseActionID(name)
	if err != nil {
		return nil, mcp.NewToolResultError(err.Error())
	}
	act, err := s.engine.Registry().Lookup(id)
	if err != nil {
		return nil, mcp.NewToolResultError(fmt.Sprintf("action lookup failed: %v", err))
	}
	return act, nil
}

func (s *ActionServer) resolveTarget(req mcp.CallToolRequest) (target, *mcp.CallToolResult) {
	actorID, err := req.RequireInt("actor_id")
	if err != nil {
		return target{}, mcp.NewToolResultError("actor_id is required")
	}
	actor, ok := s.world.Units[actorID]
	if !ok {
		return target{}, mcp.NewToolResultError(fmt.Sprintf("unit %d not found", actorID))
	}

	cityID := req.GetInt("target_city_id", noID)
	unitID := req.GetInt("target_unit_id", noID)
	switch {
	case cityID != noID && unitID != noID:
		return target{}, mcp.NewToolResultError("give either target_city_id or target_unit_id, not both")
	case cityID != noID:
		city, ok := s.world.Cities[cityID]
		if !ok {
			return target{}, mcp.NewToolResultError(fmt.Sprintf("city %d not found", cityID))
		}
		return target{actor: actor, city: city}, nil
	case unitID != noID:
		unit, ok := s.world.Units[unitID]
		if !ok {
			return target{}, mcp.NewToolResultError(fmt.Sprintf("unit %d not found", unitID))
		}
		return target{actor: actor, unit: unit}, nil
	default:
		return target{}, mcp.NewToolResultError("target_city_id or target_unit_id is required")
	}
}

// queryContext tags ctx with a fresh query id, the action and the ruleset.
func (s *ActionServer) queryContext(ctx context.Context, action string) context.Context {
	return logging.WithIDs(ctx, uuid.NewString(), action, s.ruleset)
}

// filtered applies the optional jq filter argument before marshalling.
func (s *ActionServer) filtered(req mcp.CallToolRequest, v any) (*mcp.CallToolResult, error) {
	expression := req.GetString("filter", "")
	if expression == "" {
		return marshalResult(v)
	}
	out, err := s.filter.Apply(expression, v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("filter failed: %v", err)), nil
	}
	return marshalResult(out)
}

// marshalResult converts a value to a JSON text tool result.
func marshalResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal result: %v", err)), nil
	}
	return mcp.NewToolResultJSON(json.RawMessage(data))
}
