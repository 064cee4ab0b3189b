package actions

import (
	"encoding/json"
	"fmt"

	"github.com/rendis/actionrules/internal/tristate"
)

// Probability scale: 0 is 0%, ProbMax is 100%, in steps of 0.5%.
const (
	ProbMax   = 200
	ProbOnePc = 2
)

// Probability is the estimated chance that an action succeeds. It is one
// of Range, NotRelevant or NotImplemented.
type Probability interface {
	Kind() ProbabilityKind
	isProbability()
}

// ProbabilityKind classifies a Probability.
type ProbabilityKind int

const (
	KindRange ProbabilityKind = iota
	KindImpossible
	KindCertain
	KindUnknown
	KindNotRelevant
	KindNotImplemented
)

var kindNames = map[ProbabilityKind]string{
	KindRange:          "range",
	KindImpossible:     "impossible",
	KindCertain:        "certain",
	KindUnknown:        "unknown",
	KindNotRelevant:    "not_relevant",
	KindNotImplemented: "not_implemented",
}

func (k ProbabilityKind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("ProbabilityKind(%d)", int(k))
}

// Range is a real probability interval with 0 <= Min <= Max <= ProbMax.
type Range struct {
	Min int
	Max int
}

var (
	// Impossible is the interval [0%, 0%].
	Impossible = Range{Min: 0, Max: 0}
	// Certain is the interval [100%, 100%].
	Certain = Range{Min: ProbMax, Max: ProbMax}
	// Unknown spans the whole scale: the viewer lacks the information.
	Unknown = Range{Min: 0, Max: ProbMax}
)

func (r Range) Kind() ProbabilityKind {
	switch r {
	case Impossible:
		return KindImpossible
	case Certain:
		return KindCertain
	case Unknown:
		return KindUnknown
	default:
		return KindRange
	}
}

func (Range) isProbability() {}

// Percent returns the bounds as percentages.
func (r Range) Percent() (lo, hi float64) {
	return float64(r.Min) / ProbOnePc, float64(r.Max) / ProbOnePc
}

// NotRelevant marks an action whose category does not apply to the target.
type NotRelevant struct{}

func (NotRelevant) Kind() ProbabilityKind { return KindNotRelevant }
func (NotRelevant) isProbability()        {}

// NotImplemented marks an action whose success chance is not computed.
type NotImplemented struct{}

func (NotImplemented) Kind() ProbabilityKind { return KindNotImplemented }
func (NotImplemented) isProbability()        {}

// Possible reports whether the action may succeed. NotImplemented is
// treated as possible; a Range is possible when its maximum is above zero.
func Possible(p Probability) bool {
	switch v := p.(type) {
	case Range:
		return v.Max > 0
	case NotImplemented:
		return true
	default:
		return false
	}
}

// probabilityJSON is the wire form of every Probability variant.
type probabilityJSON struct {
	Kind string `json:"kind"`
	Min  *int   `json:"min,omitempty"`
	Max  *int   `json:"max,omitempty"`
	Text string `json:"text,omitempty"`
}

func (r Range) MarshalJSON() ([]byte, error) {
	lo, hi := r.Min, r.Max
	return json.Marshal(probabilityJSON{
		Kind: r.Kind().String(),
		Min:  &lo,
		Max:  &hi,
		Text: ProbabilityText(r),
	})
}

func (n NotRelevant) MarshalJSON() ([]byte, error) {
	return json.Marshal(probabilityJSON{Kind: n.Kind().String()})
}

func (n NotImplemented) MarshalJSON() ([]byte, error) {
	return json.Marshal(probabilityJSON{Kind: n.Kind().String()})
}

// fromKnowledge folds the three-valued enabler result into chance.
func fromKnowledge(known tristate.Tristate, chance Probability) Probability {
	switch known {
	case tristate.No:
		return Impossible
	case tristate.Maybe:
		return Unknown
	default:
		return chance
	}
}
