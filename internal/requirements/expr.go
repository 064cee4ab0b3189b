package requirements

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/ast"
	"github.com/expr-lang/expr/parser"
	"github.com/expr-lang/expr/vm"
	"github.com/rendis/actionrules/internal/tristate"
	"github.com/rendis/actionrules/pkg/schema"
)

// ExprEngine compiles requirements written in expr-lang/expr.
// Expr has no partial evaluation. The boolean skeleton of an expression
// (and, or, not) is evaluated with three-valued logic; every other
// sub-expression is a leaf compiled on its own, which yields Maybe when it
// reads a member path unknown to the viewer.
// Thread-safe: compiled programs are cached and reused across goroutines.
type ExprEngine struct {
	mu    sync.RWMutex
	cache map[string]*exprProgram
}

// NewExprEngine creates a new Expr requirement engine.
func NewExprEngine() *ExprEngine {
	return &ExprEngine{
		cache: make(map[string]*exprProgram),
	}
}

// Name returns the engine identifier.
func (e *ExprEngine) Name() string {
	return LangExpr
}

// Compile returns a cached program or compiles and caches a new one.
func (e *ExprEngine) Compile(source string) (Program, error) {
	if source == "" {
		return nil, schema.NewError(schema.ErrCodeCompile, "empty expr requirement")
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

	tree, err := parser.Parse(source)
	if err != nil {
		return nil, schema.NewErrorf(schema.ErrCodeCompile,
			"expr parse error in %q: %s", source, err.Error()).
			WithCause(err).
			WithDetails(map[string]any{"expression": source})
	}

	// Type-check the whole expression once; leaves are checked again below.
	if _, err := compileBool(source); err != nil {
		return nil, schema.NewErrorf(schema.ErrCodeCompile,
			"expr compile error in %q: %s", source, err.Error()).
			WithCause(err).
			WithDetails(map[string]any{"expression": source})
	}

	root, err := buildExprNode(tree.Node)
	if err != nil {
		return nil, schema.NewErrorf(schema.ErrCodeCompile,
			"expr compile error in %q: %s", source, err.Error()).
			WithCause(err).
			WithDetails(map[string]any{"expression": source})
	}

	collector := &pathCollector{seen: make(map[string]bool)}
	ast.Walk(&tree.Node, collector)

	compiled := &exprProgram{source: source, root: root, paths: collector.sorted()}
	e.cache[source] = compiled
	return compiled, nil
}

func compileBool(source string) (*vm.Program, error) {
	return expr.Compile(source,
		expr.Env(emptyVars()),
		expr.AllowUndefinedVariables(),
		expr.AsBool(),
	)
}

type exprProgram struct {
	source string
	root   exprNode
	// paths lists every member path the expression reads.
	paths []string
}

func (p *exprProgram) Eval(facts Facts) (tristate.Tristate, error) {
	if facts.Vars == nil {
		facts.Vars = emptyVars()
	}
	out, err := p.root.eval(facts)
	if err != nil {
		return tristate.Maybe, schema.NewErrorf(schema.ErrCodeEvaluation,
			"expr evaluation failed for %q: %s", p.source, err.Error()).
			WithCause(err).
			WithDetails(map[string]any{"expression": p.source})
	}
	return out, nil
}

// exprNode is one node of the boolean skeleton of an expression.
type exprNode interface {
	eval(facts Facts) (tristate.Tristate, error)
}

// buildExprNode splits n at and/or/not operators and compiles the rest as
// leaves.
func buildExprNode(n ast.Node) (exprNode, error) {
	switch node := n.(type) {
	case *ast.BinaryNode:
		switch node.Operator {
		case "&&", "and", "||", "or":
			left, err := buildExprNode(node.Left)
			if err != nil {
				return nil, err
			}
			right, err := buildExprNode(node.Right)
			if err != nil {
				return nil, err
			}
			if node.Operator == "&&" || node.Operator == "and" {
				return &exprAnd{left: left, right: right}, nil
			}
			return &exprOr{left: left, right: right}, nil
		}
	case *ast.UnaryNode:
		if node.Operator == "!" || node.Operator == "not" {
			operand, err := buildExprNode(node.Node)
			if err != nil {
				return nil, err
			}
			return &exprNot{operand: operand}, nil
		}
	}
	return newExprLeaf(n)
}

type exprAnd struct{ left, right exprNode }

// eval returns No as soon as either side is known to be No, even when the
// other side fails.
func (n *exprAnd) eval(facts Facts) (tristate.Tristate, error) {
	l, lerr := n.left.eval(facts)
	if lerr == nil && l == tristate.No {
		return tristate.No, nil
	}
	r, rerr := n.right.eval(facts)
	if rerr == nil && r == tristate.No {
		return tristate.No, nil
	}
	if err := errors.Join(lerr, rerr); err != nil {
		return tristate.Maybe, err
	}
	return tristate.And(l, r), nil
}

type exprOr struct{ left, right exprNode }

// eval returns Yes as soon as either side is known to be Yes.
func (n *exprOr) eval(facts Facts) (tristate.Tristate, error) {
	l, lerr := n.left.eval(facts)
	if lerr == nil && l == tristate.Yes {
		return tristate.Yes, nil
	}
	r, rerr := n.right.eval(facts)
	if rerr == nil && r == tristate.Yes {
		return tristate.Yes, nil
	}
	if err := errors.Join(lerr, rerr); err != nil {
		return tristate.Maybe, err
	}
	return tristate.Or(l, r), nil
}

type exprNot struct{ operand exprNode }

func (n *exprNot) eval(facts Facts) (tristate.Tristate, error) {
	v, err := n.operand.eval(facts)
	if err != nil {
		return tristate.Maybe, err
	}
	return tristate.Not(v), nil
}

// exprLeaf is a sub-expression without boolean connectives. It is Maybe
// when any path it reads is unknown.
type exprLeaf struct {
	source string
	prg    *vm.Program
	paths  []string
}

func newExprLeaf(n ast.Node) (*exprLeaf, error) {
	source := n.String()
	prg, err := compileBool(source)
	if err != nil {
		return nil, fmt.Errorf("operand %q: %w", source, err)
	}
	collector := &pathCollector{seen: make(map[string]bool)}
	ast.Walk(&n, collector)
	return &exprLeaf{source: source, prg: prg, paths: collector.sorted()}, nil
}

func (l *exprLeaf) eval(facts Facts) (tristate.Tristate, error) {
	for _, path := range l.paths {
		if facts.IsUnknown(path) {
			return tristate.Maybe, nil
		}
	}

	out, err := vm.Run(l.prg, facts.Vars)
	if err != nil {
		return tristate.Maybe, fmt.Errorf("%q: %w", l.source, err)
	}
	b, ok := out.(bool)
	if !ok {
		return tristate.Maybe, fmt.Errorf("%q returned %T, want bool", l.source, out)
	}
	return tristate.FromBool(b), nil
}

// pathCollector records every identifier and member chain read by an
// expression, e.g. "player", "player.gold".
type pathCollector struct {
	seen map[string]bool
}

func (c *pathCollector) Visit(node *ast.Node) {
	if path, ok := memberPath(*node); ok {
		c.seen[path] = true
	}
}

func (c *pathCollector) sorted() []string {
	out := make([]string, 0, len(c.seen))
	for p := range c.seen {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

func memberPath(node ast.Node) (string, bool) {
	switch n := node.(type) {
	case *ast.IdentifierNode:
		return n.Value, true
	case *ast.MemberNode:
		base, ok := memberPath(n.Node)
		if !ok {
			return "", false
		}
		prop, ok := n.Property.(*ast.StringNode)
		if !ok {
			return "", false
		}
		return base + "." + prop.Value, true
	default:
		return "", false
	}
}

var _ Engine = (*ExprEngine)(nil)
