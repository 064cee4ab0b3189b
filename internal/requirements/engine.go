// Package requirements evaluates requirement vectors: AND-combined lists of
// expressions over a requirement context.
//
// Two languages are supported. CEL is the default; Expr is available for
// rulesets that prefer its syntax. Both are evaluated either in certain mode
// (unknown facts count as unmet) or in three-valued mode, where an expression
// whose outcome depends on a fact the viewer cannot know yields Maybe.
package requirements

import "github.com/rendis/actionrules/internal/tristate"

// Engine compiles requirement source text in one language.
type Engine interface {
	Name() string
	Compile(source string) (Program, error)
}

// Program is a compiled requirement expression.
type Program interface {
	// Eval returns Yes/No when the outcome is determined by the known facts
	// and Maybe when it depends on a fact listed in Facts.Unknown.
	Eval(facts Facts) (tristate.Tristate, error)
}

// Language names accepted in requirement definitions.
const (
	LangCEL  = "cel"
	LangExpr = "expr"
)
