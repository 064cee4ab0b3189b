// Package effects holds ruleset effects: numeric bonuses that apply while
// their requirement vector is active.
package effects

import (
	"context"

	"github.com/rendis/actionrules/internal/requirements"
	"github.com/rendis/actionrules/internal/tristate"
)

// SpyResistant reduces the success chance of hostile diplomats against
// defenders inside a city, in percent.
const SpyResistant = "SpyResistant"

type Effect struct {
	Type  string
	Value int
	Reqs  requirements.Vector
}

// Set is the collection of effects loaded from a ruleset.
type Set struct {
	eval    *requirements.Evaluator
	effects map[string][]Effect
}

// NewSet creates an empty Set evaluated with ev.
func NewSet(ev *requirements.Evaluator) *Set {
	return &Set{eval: ev, effects: make(map[string][]Effect)}
}

// Add registers an effect.
func (s *Set) Add(e Effect) {
	s.effects[e.Type] = append(s.effects[e.Type], e)
}

// Len returns the number of effects of type typ.
func (s *Set) Len(typ string) int {
	return len(s.effects[typ])
}

// Bonus sums the values of every effect of type typ whose requirements are
// known to hold.
func (s *Set) Bonus(ctx context.Context, typ string, facts requirements.Facts) int {
	total := 0
	for _, e := range s.effects[typ] {
		if s.eval.AreActive(ctx, facts, e.Reqs) {
			total += e.Value
		}
	}
	return total
}

// KnownBonus sums the values of active effects of type typ. The returned
// Tristate is Maybe when some effect's activity can not be decided from the
// facts, in which case the sum only covers the decided ones.
func (s *Set) KnownBonus(ctx context.Context, typ string, facts requirements.Facts) (int, tristate.Tristate) {
	total := 0
	known := tristate.Yes
	for _, e := range s.effects[typ] {
		switch s.eval.Evaluate(ctx, facts, e.Reqs) {
		case tristate.Yes:
			total += e.Value
		case tristate.Maybe:
			known = tristate.Maybe
		}
	}
	return total, known
}
