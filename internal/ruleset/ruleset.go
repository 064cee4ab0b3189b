// Package ruleset loads action rulesets: UI names, enablers and effects,
// read from YAML or JSON documents.
package ruleset

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/rendis/actionrules/internal/actions"
	"github.com/rendis/actionrules/internal/effects"
	"github.com/rendis/actionrules/internal/logging"
	"github.com/rendis/actionrules/internal/requirements"
	"github.com/rendis/actionrules/pkg/schema"
)

// Ruleset is a loaded, compiled ruleset.
type Ruleset struct {
	Name     string
	Version  string
	Settings actions.Settings
	Registry *actions.Registry
	Effects  *effects.Set

	// Validation holds the warnings found while loading.
	Validation *schema.ValidationResult
}

// Loader decodes, validates and compiles rulesets.
type Loader struct {
	eval   *requirements.Evaluator
	schema *SchemaValidator
	logger *slog.Logger
}

// NewLoader creates a Loader compiling requirements with ev.
func NewLoader(ev *requirements.Evaluator, logger *slog.Logger) (*Loader, error) {
	if ev == nil {
		return nil, schema.NewError(schema.ErrCodeValidation, "ruleset loader needs an evaluator")
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}
	sv, err := NewSchemaValidator()
	if err != nil {
		return nil, err
	}
	return &Loader{eval: ev, schema: sv, logger: logger}, nil
}

// LoadFile reads a ruleset from path.
func (l *Loader) LoadFile(ctx context.Context, path string) (*Ruleset, error) {
	def, err := l.DecodeFile(path)
	if err != nil {
		return nil, err
	}
	return l.Build(ctx, def)
}

// Load reads a YAML or JSON ruleset document.
func (l *Loader) Load(ctx context.Context, r io.Reader) (*Ruleset, error) {
	def, err := l.Decode(r)
	if err != nil {
		return nil, err
	}
	return l.Build(ctx, def)
}

// DecodeFile reads path and checks it against the document schema.
func (l *Loader) DecodeFile(path string) (*schema.RulesetDefinition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, schema.NewErrorf(schema.ErrCodeRuleset, "read ruleset %s", path).WithCause(err)
	}
	return l.Decode(bytes.NewReader(data))
}

// Decode reads a YAML or JSON ruleset document and checks it against the
// document schema. Unknown fields are rejected.
func (l *Loader) Decode(r io.Reader) (*schema.RulesetDefinition, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, schema.NewError(schema.ErrCodeRuleset, "read ruleset").WithCause(err)
	}

	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, schema.NewError(schema.ErrCodeRuleset, "decode ruleset").WithCause(err)
	}
	if err := l.schema.Validate(raw); err != nil {
		return nil, err
	}

	var def schema.RulesetDefinition
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&def); err != nil {
		return nil, schema.NewError(schema.ErrCodeRuleset, "decode ruleset").WithCause(err)
	}
	return &def, nil
}

// Validate runs the semantic and compile checks on def without building
// a registry. Unlike Build it reports compile errors even when semantic
// checks fail.
func (l *Loader) Validate(def *schema.RulesetDefinition) *schema.ValidationResult {
	result := validateSemantic(def)
	for i, en := range def.Enablers {
		l.compileVector(fmt.Sprintf("enablers[%d].actor_reqs", i), en.ActorReqs, result)
		l.compileVector(fmt.Sprintf("enablers[%d].target_reqs", i), en.TargetReqs, result)
	}
	for i, fx := range def.Effects {
		l.compileVector(fmt.Sprintf("effects[%d].reqs", i), fx.Reqs, result)
	}
	return result
}

// Build compiles def into a ready registry and an effect set.
func (l *Loader) Build(ctx context.Context, def *schema.RulesetDefinition) (*Ruleset, error) {
	ctx = logging.WithRuleset(ctx, def.Name)
	logger := logging.LogWith(ctx, l.logger)

	result := validateSemantic(def)
	if !result.Valid() {
		return nil, result.ToError()
	}

	reg := actions.NewRegistry()
	reg.Initialize()
	for _, id := range actions.AllActionIDs() {
		if err := reg.SetUIName(id, actions.DefaultUIName(id)); err != nil {
			return nil, err
		}
	}
	for _, a := range def.Actions {
		if a.UIName == "" {
			continue
		}
		id, _ := actions.ParseActionID(a.Action)
		if err := reg.SetUIName(id, a.UIName); err != nil {
			return nil, err
		}
	}

	for i, en := range def.Enablers {
		path := fmt.Sprintf("enablers[%d]", i)
		actorReqs := l.compileVector(path+".actor_reqs", en.ActorReqs, result)
		targetReqs := l.compileVector(path+".target_reqs", en.TargetReqs, result)
		if !result.Valid() {
			continue
		}
		id, _ := actions.ParseActionID(en.Action)
		enabler := actions.NewEnabler(id, actorReqs, targetReqs)
		enabler.Name = en.ID
		if parsed, err := uuid.Parse(en.ID); err == nil {
			enabler.ID = parsed
		}
		reg.AddEnabler(enabler)
	}

	fx := effects.NewSet(l.eval)
	for i, e := range def.Effects {
		reqs := l.compileVector(fmt.Sprintf("effects[%d].reqs", i), e.Reqs, result)
		if result.Valid() {
			fx.Add(effects.Effect{Type: e.Type, Value: e.Value, Reqs: reqs})
		}
	}

	if !result.Valid() {
		reg.Teardown()
		return nil, result.ToError()
	}
	if !reg.IsReady() {
		schema.Invariantf("ruleset %q left actions without ui names", def.Name)
	}

	for _, w := range result.Warnings {
		logger.WarnContext(ctx, "ruleset warning", slog.String("path", w.Path), slog.String("message", w.Message))
	}
	logger.InfoContext(ctx, "ruleset loaded",
		slog.Int("enablers", reg.EnablerCount()),
		slog.Int("effects", len(def.Effects)))

	return &Ruleset{
		Name:    def.Name,
		Version: def.Version,
		Settings: actions.Settings{
			ForceTradeRoute: def.Settings.ForceTradeRoute,
		},
		Registry:   reg,
		Effects:    fx,
		Validation: result,
	}, nil
}

func (l *Loader) compileVector(path string, defs []schema.RequirementDefinition, result *schema.ValidationResult) requirements.Vector {
	vec := make(requirements.Vector, 0, len(defs))
	for i, def := range defs {
		req, err := l.eval.Compile(def)
		if err != nil {
			result.AddError(fmt.Sprintf("%s[%d]", path, i), schema.ErrCodeCompile, err.Error())
			continue
		}
		vec = append(vec, req)
	}
	return vec
}
