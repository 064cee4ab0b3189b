// Package tristate implements Yes/No/Maybe logic for reasoning under
// incomplete information.
package tristate

import (
	"fmt"
	"strings"
)

// Tristate is a three-valued truth value. The zero value is No.
type Tristate uint8

const (
	No Tristate = iota
	Maybe
	Yes
)

// FromBool maps true to Yes and false to No.
func FromBool(b bool) Tristate {
	if b {
		return Yes
	}
	return No
}

// And is Kleene conjunction: No dominates, then Maybe.
func And(a, b Tristate) Tristate {
	if a == No || b == No {
		return No
	}
	if a == Maybe || b == Maybe {
		return Maybe
	}
	return Yes
}

// Or is Kleene disjunction: Yes dominates, then Maybe.
func Or(a, b Tristate) Tristate {
	if a == Yes || b == Yes {
		return Yes
	}
	if a == Maybe || b == Maybe {
		return Maybe
	}
	return No
}

// Not swaps Yes and No. Maybe stays Maybe.
func Not(a Tristate) Tristate {
	switch a {
	case Yes:
		return No
	case No:
		return Yes
	default:
		return Maybe
	}
}

func (a Tristate) String() string {
	switch a {
	case No:
		return "no"
	case Maybe:
		return "maybe"
	case Yes:
		return "yes"
	default:
		return fmt.Sprintf("tristate(%d)", uint8(a))
	}
}

// MarshalText renders the lowercase name.
func (a Tristate) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText accepts "yes", "no" and "maybe" in any case.
func (a *Tristate) UnmarshalText(text []byte) error {
	switch strings.ToLower(string(text)) {
	case "no":
		*a = No
	case "maybe":
		*a = Maybe
	case "yes":
		*a = Yes
	default:
		return fmt.Errorf("invalid tristate %q", string(text))
	}
	return nil
}
