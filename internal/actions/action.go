package actions

import (
	"fmt"

	"github.com/rendis/actionrules/pkg/schema"
)

// ActionID identifies one kind of action. The set is closed.
type ActionID int

const (
	ActionEstablishEmbassy ActionID = iota
	ActionInvestigateCity
	ActionPoisonCity
	ActionStealGold
	ActionSabotageCity
	ActionTargetedSabotageCity
	ActionStealTech
	ActionTargetedStealTech
	ActionInciteCity
	ActionTradeRoute
	ActionMarketplace
	ActionHelpWonder
	ActionBribeUnit
	ActionSabotageUnit

	// ActionCount is the number of action kinds.
	ActionCount
)

// ActorKind is the kind of entity performing an action.
type ActorKind int

const (
	ActorUnit ActorKind = iota
)

func (k ActorKind) String() string {
	if k == ActorUnit {
		return "unit"
	}
	return fmt.Sprintf("ActorKind(%d)", int(k))
}

// TargetKind is the kind of entity an action is performed against.
type TargetKind int

const (
	TargetCity TargetKind = iota
	TargetUnit
)

func (k TargetKind) String() string {
	switch k {
	case TargetCity:
		return "city"
	case TargetUnit:
		return "unit"
	default:
		return fmt.Sprintf("TargetKind(%d)", int(k))
	}
}

// catalogEntry is the static description of one action kind.
type catalogEntry struct {
	ruleName    string
	target      TargetKind
	hostile     bool
	foreignOnly bool
	uiName      string
}

// catalog holds one entry per ActionID, in declaration order. UI names use
// "%s" twice: first for the mnemonic, then for the probability suffix.
var catalog = [ActionCount]catalogEntry{
	ActionEstablishEmbassy:     {"Establish Embassy", TargetCity, false, true, "Establish %sEmbassy%s"},
	ActionInvestigateCity:      {"Investigate City", TargetCity, false, true, "%sInvestigate City%s"},
	ActionPoisonCity:           {"Poison City", TargetCity, true, false, "%sPoison City%s"},
	ActionStealGold:            {"Steal Gold", TargetCity, true, true, "Steal %sGold%s"},
	ActionSabotageCity:         {"Sabotage City", TargetCity, true, false, "S%sabotage City%s"},
	ActionTargetedSabotageCity: {"Targeted Sabotage City", TargetCity, true, false, "Industrial %sSabotage%s"},
	ActionStealTech:            {"Steal Tech", TargetCity, true, true, "Steal %sTechnology%s"},
	ActionTargetedStealTech:    {"Targeted Steal Tech", TargetCity, true, true, "In%sdustrial Espionage%s"},
	ActionInciteCity:           {"Incite City", TargetCity, true, true, "Incite a %sRevolt%s"},
	ActionTradeRoute:           {"Establish Trade Route", TargetCity, false, false, "Establish Trade %sRoute%s"},
	ActionMarketplace:          {"Enter Marketplace", TargetCity, false, false, "Enter %sMarketplace%s"},
	ActionHelpWonder:           {"Help Wonder", TargetCity, false, false, "Help %sbuild Wonder%s"},
	ActionBribeUnit:            {"Bribe Unit", TargetUnit, true, true, "Bribe Enemy %sUnit%s"},
	ActionSabotageUnit:         {"Sabotage Unit", TargetUnit, true, false, "%sSabotage Enemy Unit%s"},
}

// Valid reports whether id belongs to the closed set of actions.
func (id ActionID) Valid() bool {
	return id >= 0 && id < ActionCount
}

// String returns the rule name of the action.
func (id ActionID) String() string {
	if !id.Valid() {
		return fmt.Sprintf("ActionID(%d)", int(id))
	}
	return catalog[id].ruleName
}

// MarshalText encodes the action by rule name.
func (id ActionID) MarshalText() ([]byte, error) {
	if !id.Valid() {
		return nil, schema.NewErrorf(schema.ErrCodeUnknownAction, "invalid action id %d", int(id))
	}
	return []byte(catalog[id].ruleName), nil
}

// UnmarshalText decodes an action rule name.
func (id *ActionID) UnmarshalText(text []byte) error {
	parsed, err := ParseActionID(string(text))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// ParseActionID resolves a rule name such as "Bribe Unit".
func ParseActionID(ruleName string) (ActionID, error) {
	for id := range ActionCount {
		if catalog[id].ruleName == ruleName {
			return id, nil
		}
	}
	return 0, schema.NewErrorf(schema.ErrCodeUnknownAction, "unknown action %q", ruleName)
}

// AllActionIDs returns every action id in declaration order.
func AllActionIDs() []ActionID {
	ids := make([]ActionID, 0, ActionCount)
	for id := range ActionCount {
		ids = append(ids, id)
	}
	return ids
}

// DefaultUIName returns the built-in UI name template for id.
func DefaultUIName(id ActionID) string {
	if !id.Valid() {
		return ""
	}
	return catalog[id].uiName
}

// Action is the registered description of one action kind.
type Action struct {
	ID         ActionID
	ActorKind  ActorKind
	TargetKind TargetKind
	Hostile    bool

	// UIName is the display-name template assigned by the ruleset.
	// An empty UIName means the action is not ready.
	UIName string
}

// RuleName returns the untranslated rule name of the action.
func (a *Action) RuleName() string {
	return a.ID.String()
}

// ForeignOnly reports whether actor and target must belong to different
// players.
func (a *Action) ForeignOnly() bool {
	return catalog[a.ID].foreignOnly
}

func newAction(id ActionID) *Action {
	entry := catalog[id]
	return &Action{
		ID:         id,
		ActorKind:  ActorUnit,
		TargetKind: entry.target,
		Hostile:    entry.hostile,
	}
}
