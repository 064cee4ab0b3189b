package ruleset

import (
	"encoding/json"
	"fmt"
	"strings"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/rendis/actionrules/pkg/schema"
)

const rulesetSchemaURL = "https://actionrules.dev/schemas/ruleset.json"

// rulesetSchemaJSON is the JSON Schema for ruleset documents.
const rulesetSchemaJSON = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "$id": "https://actionrules.dev/schemas/ruleset.json",
  "type": "object",
  "required": ["name"],
  "properties": {
    "name": { "type": "string", "minLength": 1 },
    "version": { "type": "string" },
    "settings": {
      "type": "object",
      "properties": {
        "force_trade_route": { "type": "boolean" }
      },
      "additionalProperties": false
    },
    "actions": {
      "type": "array",
      "items": { "$ref": "#/$defs/action" }
    },
    "enablers": {
      "type": "array",
      "items": { "$ref": "#/$defs/enabler" }
    },
    "effects": {
      "type": "array",
      "items": { "$ref": "#/$defs/effect" }
    }
  },
  "additionalProperties": false,
  "$defs": {
    "action": {
      "type": "object",
      "required": ["action"],
      "properties": {
        "action": { "type": "string", "minLength": 1 },
        "ui_name": { "type": "string", "minLength": 1 }
      },
      "additionalProperties": false
    },
    "enabler": {
      "type": "object",
      "required": ["action"],
      "properties": {
        "id": { "type": "string" },
        "action": { "type": "string", "minLength": 1 },
        "actor_reqs": { "$ref": "#/$defs/vector" },
        "target_reqs": { "$ref": "#/$defs/vector" }
      },
      "additionalProperties": false
    },
    "effect": {
      "type": "object",
      "required": ["type", "value"],
      "properties": {
        "type": { "type": "string", "minLength": 1 },
        "value": { "type": "integer" },
        "reqs": { "$ref": "#/$defs/vector" }
      },
      "additionalProperties": false
    },
    "vector": {
      "type": "array",
      "items": { "$ref": "#/$defs/requirement" }
    },
    "requirement": {
      "type": "object",
      "required": ["expr"],
      "properties": {
        "lang": { "type": "string", "enum": ["cel", "expr"] },
        "expr": { "type": "string", "minLength": 1 },
        "present": { "type": "boolean" }
      },
      "additionalProperties": false
    }
  }
}`

// SchemaValidator checks raw ruleset documents against the ruleset JSON
// Schema. It is safe for concurrent use.
type SchemaValidator struct {
	schema *jsonschema.Schema
}

// NewSchemaValidator compiles the ruleset schema.
func NewSchemaValidator() (*SchemaValidator, error) {
	c := jsonschema.NewCompiler()
	c.AssertFormat()

	doc, err := jsonschema.UnmarshalJSON(strings.NewReader(rulesetSchemaJSON))
	if err != nil {
		return nil, fmt.Errorf("unmarshal ruleset schema: %w", err)
	}
	if err := c.AddResource(rulesetSchemaURL, doc); err != nil {
		return nil, fmt.Errorf("add ruleset schema resource: %w", err)
	}
	compiled, err := c.Compile(rulesetSchemaURL)
	if err != nil {
		return nil, fmt.Errorf("compile ruleset schema: %w", err)
	}
	return &SchemaValidator{schema: compiled}, nil
}

// Validate checks a decoded document (maps, slices and scalars).
func (v *SchemaValidator) Validate(raw any) error {
	if raw == nil {
		return schema.NewError(schema.ErrCodeValidation, "ruleset document is empty")
	}
	doc, err := toJSONValue(raw)
	if err != nil {
		return schema.NewError(schema.ErrCodeValidation, "failed to serialize ruleset document").WithCause(err)
	}
	if err := v.schema.Validate(doc); err != nil {
		return toRulesError(err)
	}
	return nil
}

// toJSONValue round-trips a Go value through JSON encoding/decoding so that
// numeric values become json.Number (required by the jsonschema library).
func toJSONValue(v any) (any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return jsonschema.UnmarshalJSON(strings.NewReader(string(b)))
}

// toRulesError converts a jsonschema.ValidationError into a RulesError
// listing every leaf violation with its document location.
func toRulesError(err error) *schema.RulesError {
	verr, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return schema.NewError(schema.ErrCodeValidation, err.Error())
	}

	violations := collectViolations(verr)
	if len(violations) == 0 {
		return schema.NewError(schema.ErrCodeValidation, verr.Error())
	}
	if len(violations) == 1 {
		return schema.NewError(schema.ErrCodeValidation, violations[0]).
			WithDetails(map[string]any{"violations": violations})
	}

	msg := fmt.Sprintf("ruleset schema validation failed with %d errors", len(violations))
	return schema.NewError(schema.ErrCodeValidation, msg).
		WithDetails(map[string]any{"violations": violations})
}

func collectViolations(verr *jsonschema.ValidationError) []string {
	if len(verr.Causes) == 0 {
		loc := "/"
		if len(verr.InstanceLocation) > 0 {
			loc = "/" + strings.Join(verr.InstanceLocation, "/")
		}
		return []string{fmt.Sprintf("%s: %s", loc, verr.Error())}
	}

	var violations []string
	for _, cause := range verr.Causes {
		violations = append(violations, collectViolations(cause)...)
	}
	return violations
}
