package ruleset

import (
	"fmt"
	"strings"

	"github.com/rendis/actionrules/internal/actions"
	"github.com/rendis/actionrules/internal/effects"
	"github.com/rendis/actionrules/pkg/schema"
)

// knownEffects are the effect types the engine interprets.
var knownEffects = map[string]bool{
	effects.SpyResistant: true,
}

// validateSemantic checks what the schema can not express: action names
// resolve, action entries and enabler ids are unique and UI names carry
// exactly two placeholders.
func validateSemantic(def *schema.RulesetDefinition) *schema.ValidationResult {
	result := &schema.ValidationResult{}

	seenActions := make(map[string]bool, len(def.Actions))
	for i, a := range def.Actions {
		path := fmt.Sprintf("actions[%d]", i)
		if _, err := actions.ParseActionID(a.Action); err != nil {
			result.AddError(path+".action", schema.ErrCodeUnknownAction,
				fmt.Sprintf("unknown action %q", a.Action))
			continue
		}
		if seenActions[a.Action] {
			result.AddError(path+".action", schema.ErrCodeConflict,
				fmt.Sprintf("action %q listed more than once", a.Action))
		}
		seenActions[a.Action] = true

		if a.UIName != "" {
			if n := strings.Count(a.UIName, "%s"); n != 2 {
				result.AddError(path+".ui_name", schema.ErrCodeValidation,
					fmt.Sprintf("ui name %q needs exactly two %%s placeholders, has %d", a.UIName, n))
			}
		}
	}

	enabled := make(map[string]bool)
	seenIDs := make(map[string]bool, len(def.Enablers))
	for i, en := range def.Enablers {
		path := fmt.Sprintf("enablers[%d]", i)
		if _, err := actions.ParseActionID(en.Action); err != nil {
			result.AddError(path+".action", schema.ErrCodeUnknownAction,
				fmt.Sprintf("unknown action %q", en.Action))
		} else {
			enabled[en.Action] = true
		}
		if en.ID != "" {
			if seenIDs[en.ID] {
				result.AddError(path+".id", schema.ErrCodeConflict,
					fmt.Sprintf("duplicate enabler id %q", en.ID))
			}
			seenIDs[en.ID] = true
		}
	}

	for _, id := range actions.AllActionIDs() {
		if !enabled[id.String()] {
			result.AddWarning("enablers", schema.ErrCodeValidation,
				fmt.Sprintf("action %q has no enablers and can never be performed", id))
		}
	}

	for i, fx := range def.Effects {
		if !knownEffects[fx.Type] {
			result.AddWarning(fmt.Sprintf("effects[%d].type", i), schema.ErrCodeValidation,
				fmt.Sprintf("effect type %q is not used by the action engine", fx.Type))
		}
	}

	return result
}
