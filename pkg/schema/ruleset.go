package schema

// RulesetDefinition is the serializable ruleset format, read from YAML or JSON.
type RulesetDefinition struct {
	Name     string              `json:"name" yaml:"name"`
	Version  string              `json:"version,omitempty" yaml:"version,omitempty"`
	Settings RulesetSettings     `json:"settings,omitempty" yaml:"settings,omitempty"`
	Actions  []ActionDefinition  `json:"actions,omitempty" yaml:"actions,omitempty"`
	Enablers []EnablerDefinition `json:"enablers,omitempty" yaml:"enablers,omitempty"`
	Effects  []EffectDefinition  `json:"effects,omitempty" yaml:"effects,omitempty"`
}

// RulesetSettings are the game-rule switches the action engine reads.
type RulesetSettings struct {
	ForceTradeRoute bool `json:"force_trade_route,omitempty" yaml:"force_trade_route,omitempty"`
}

// ActionDefinition overrides presentation data of one built-in action.
type ActionDefinition struct {
	Action string `json:"action" yaml:"action"`
	UIName string `json:"ui_name,omitempty" yaml:"ui_name,omitempty"`
}

// EnablerDefinition is one action enabler: both vectors must hold.
type EnablerDefinition struct {
	ID         string                  `json:"id,omitempty" yaml:"id,omitempty"`
	Action     string                  `json:"action" yaml:"action"`
	ActorReqs  []RequirementDefinition `json:"actor_reqs,omitempty" yaml:"actor_reqs,omitempty"`
	TargetReqs []RequirementDefinition `json:"target_reqs,omitempty" yaml:"target_reqs,omitempty"`
}

// EffectDefinition grants Value to effect Type while Reqs hold.
type EffectDefinition struct {
	Type  string                  `json:"type" yaml:"type"`
	Value int                     `json:"value" yaml:"value"`
	Reqs  []RequirementDefinition `json:"reqs,omitempty" yaml:"reqs,omitempty"`
}

// RequirementDefinition is a single requirement expression.
// Lang is "cel" (default) or "expr". Present defaults to true.
type RequirementDefinition struct {
	Lang    string `json:"lang,omitempty" yaml:"lang,omitempty"`
	Expr    string `json:"expr" yaml:"expr"`
	Present *bool  `json:"present,omitempty" yaml:"present,omitempty"`
}

// IsPresent reports whether the requirement must hold (true) or must not hold.
func (r RequirementDefinition) IsPresent() bool {
	return r.Present == nil || *r.Present
}
