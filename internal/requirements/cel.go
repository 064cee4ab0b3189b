package requirements

import (
	"fmt"
	"strings"
	"sync"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"
	"github.com/google/cel-go/interpreter"
	"github.com/rendis/actionrules/internal/tristate"
	"github.com/rendis/actionrules/pkg/schema"
)

// CELEngine compiles requirements written in Common Expression Language.
// Programs are built with partial evaluation so that references to unknown
// facts produce an unknown result instead of an error.
// Thread-safe: compiled programs are cached and reused across goroutines.
type CELEngine struct {
	env *cel.Env

	mu    sync.RWMutex
	cache map[string]*celProgram
}

// NewCELEngine creates a CEL engine whose environment declares every
// requirement context variable.
func NewCELEngine() (*CELEngine, error) {
	mapType := cel.MapType(cel.StringType, cel.DynType)

	opts := make([]cel.EnvOption, 0, len(Variables))
	for _, v := range Variables {
		switch v {
		case VarOutput, VarSpecialist:
			opts = append(opts, cel.Variable(v, cel.StringType))
		default:
			opts = append(opts, cel.Variable(v, mapType))
		}
	}

	env, err := cel.NewEnv(opts...)
	if err != nil {
		return nil, fmt.Errorf("create CEL environment: %w", err)
	}

	return &CELEngine{
		env:   env,
		cache: make(map[string]*celProgram),
	}, nil
}

// Name returns the engine identifier.
func (e *CELEngine) Name() string {
	return LangCEL
}

// Compile returns a cached program or compiles and caches a new one.
func (e *CELEngine) Compile(source string) (Program, error) {
	if source == "" {
		return nil, schema.NewError(schema.ErrCodeCompile, "empty CEL requirement")
	}

	e.mu.RLock()
	if prg, ok := e.cache[source]; ok {
		e.mu.RUnlock()
		return prg, nil
	}
	e.mu.RUnlock()

	e.mu.Lock()
	defer e.mu.Unlock()

	if prg, ok := e.cache[source]; ok {
		return prg, nil
	}

	ast, issues := e.env.Compile(source)
	if issues != nil && issues.Err() != nil {
		return nil, schema.NewErrorf(schema.ErrCodeCompile,
			"CEL compile error in %q: %s", source, issues.Err().Error()).
			WithCause(issues.Err()).
			WithDetails(map[string]any{"expression": source})
	}
	if !ast.OutputType().IsExactType(types.BoolType) && !ast.OutputType().IsExactType(types.DynType) {
		return nil, schema.NewErrorf(schema.ErrCodeCompile,
			"CEL requirement %q must be boolean, got %s", source, ast.OutputType()).
			WithDetails(map[string]any{"expression": source})
	}

	prg, err := e.env.Program(ast, cel.EvalOptions(cel.OptPartialEval))
	if err != nil {
		return nil, schema.NewErrorf(schema.ErrCodeCompile,
			"CEL program error for %q: %s", source, err.Error()).
			WithCause(err).
			WithDetails(map[string]any{"expression": source})
	}

	compiled := &celProgram{source: source, prg: prg}
	e.cache[source] = compiled
	return compiled, nil
}

type celProgram struct {
	source string
	prg    cel.Program
}

func (p *celProgram) Eval(facts Facts) (tristate.Tristate, error) {
	patterns := make([]*interpreter.AttributePattern, 0, len(facts.Unknown))
	for _, path := range facts.Unknown {
		patterns = append(patterns, attributePattern(path))
	}

	vars := facts.Vars
	if vars == nil {
		vars = emptyVars()
	}
	act, err := cel.PartialVars(vars, patterns...)
	if err != nil {
		return tristate.Maybe, schema.NewErrorf(schema.ErrCodeEvaluation,
			"CEL activation for %q: %s", p.source, err.Error()).WithCause(err)
	}

	out, _, err := p.prg.Eval(act)
	if err != nil {
		return tristate.Maybe, schema.NewErrorf(schema.ErrCodeEvaluation,
			"CEL evaluation failed for %q: %s", p.source, err.Error()).
			WithCause(err).
			WithDetails(map[string]any{"expression": p.source})
	}
	if types.IsUnknown(out) {
		return tristate.Maybe, nil
	}

	b, ok := out.Value().(bool)
	if !ok {
		return tristate.Maybe, schema.NewErrorf(schema.ErrCodeEvaluation,
			"CEL requirement %q returned %T, want bool", p.source, out.Value())
	}
	return tristate.FromBool(b), nil
}

// attributePattern turns "other_player.gold" into a CEL attribute pattern.
func attributePattern(path string) *interpreter.AttributePattern {
	parts := strings.Split(path, ".")
	pattern := cel.AttributePattern(parts[0])
	for _, q := range parts[1:] {
		pattern = pattern.QualString(q)
	}
	return pattern
}

var _ Engine = (*CELEngine)(nil)
