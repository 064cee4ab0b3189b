package requirements

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/rendis/actionrules/internal/tristate"
	"github.com/rendis/actionrules/pkg/schema"
)

// Requirement is one compiled condition. When Present is false the
// requirement holds exactly when the expression does not.
type Requirement struct {
	Lang    string
	Source  string
	Present bool

	program Program
}

// Vector is an ordered, AND-combined list of requirements.
// The empty vector is always active.
type Vector []Requirement

// Evaluator compiles and evaluates requirement vectors.
type Evaluator struct {
	engines map[string]Engine
	logger  *slog.Logger
}

// NewEvaluator creates an Evaluator with the CEL and Expr engines.
func NewEvaluator(logger *slog.Logger) (*Evaluator, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}
	celEngine, err := NewCELEngine()
	if err != nil {
		return nil, err
	}
	return &Evaluator{
		engines: map[string]Engine{
			LangCEL:  celEngine,
			LangExpr: NewExprEngine(),
		},
		logger: logger,
	}, nil
}

// Compile compiles a single requirement definition.
func (ev *Evaluator) Compile(def schema.RequirementDefinition) (Requirement, error) {
	lang := def.Lang
	if lang == "" {
		lang = LangCEL
	}
	engine, ok := ev.engines[lang]
	if !ok {
		return Requirement{}, schema.NewErrorf(schema.ErrCodeCompile,
			"unsupported requirement language %q", lang)
	}
	prg, err := engine.Compile(def.Expr)
	if err != nil {
		return Requirement{}, err
	}
	return Requirement{
		Lang:    lang,
		Source:  def.Expr,
		Present: def.IsPresent(),
		program: prg,
	}, nil
}

// CompileVector compiles every definition, failing on the first error.
func (ev *Evaluator) CompileVector(defs []schema.RequirementDefinition) (Vector, error) {
	vec := make(Vector, 0, len(defs))
	for i, def := range defs {
		req, err := ev.Compile(def)
		if err != nil {
			return nil, fmt.Errorf("requirement %d: %w", i, err)
		}
		vec = append(vec, req)
	}
	return vec, nil
}

// AreActive is the certain form: every requirement must be known to hold.
func (ev *Evaluator) AreActive(ctx context.Context, facts Facts, vec Vector) bool {
	for i := range vec {
		if ev.eval(ctx, facts, &vec[i], true) != tristate.Yes {
			return false
		}
	}
	return true
}

// Evaluate is the three-valued form: No if any requirement is known not to
// hold, otherwise Maybe if any is undetermined, otherwise Yes.
func (ev *Evaluator) Evaluate(ctx context.Context, facts Facts, vec Vector) tristate.Tristate {
	result := tristate.Yes
	for i := range vec {
		result = tristate.And(result, ev.eval(ctx, facts, &vec[i], false))
		if result == tristate.No {
			return tristate.No
		}
	}
	return result
}

// eval evaluates one requirement. Runtime errors make the requirement
// unmet in certain mode and undetermined otherwise.
func (ev *Evaluator) eval(ctx context.Context, facts Facts, req *Requirement, certain bool) tristate.Tristate {
	if req.program == nil {
		schema.Invariantf("requirement %q used before compilation", req.Source)
	}
	out, err := req.program.Eval(facts)
	if err != nil {
		ev.logger.WarnContext(ctx, "requirement evaluation failed",
			slog.String("lang", req.Lang),
			slog.String("expression", req.Source),
			slog.String("error", err.Error()))
		if certain {
			return tristate.No
		}
		return tristate.Maybe
	}
	if !req.Present {
		out = tristate.Not(out)
	}
	return out
}
