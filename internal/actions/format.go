package actions

import (
	"fmt"
	"strings"
)

// ProbabilityText renders p for display, e.g. "45%" or "[25%, 50%]".
// Signals that carry no chance render as "".
func ProbabilityText(p Probability) string {
	r, ok := p.(Range)
	if !ok {
		return ""
	}
	lo, hi := r.Percent()
	if r.Min == r.Max {
		return formatPercent(hi)
	}
	return fmt.Sprintf("[%s, %s]", formatPercent(lo), formatPercent(hi))
}

func formatPercent(v float64) string {
	if v == float64(int(v)) {
		return fmt.Sprintf("%d%%", int(v))
	}
	return fmt.Sprintf("%.1f%%", v)
}

// PrepareUIName fills the display-name template of id with mnemonic and,
// when p carries a chance, a " (45%)" style suffix.
func (r *Registry) PrepareUIName(id ActionID, mnemonic string, p Probability) (string, error) {
	act, err := r.Lookup(id)
	if err != nil {
		return "", err
	}
	template := act.UIName
	if template == "" {
		template = DefaultUIName(id)
	}

	suffix := ""
	if text := ProbabilityText(p); text != "" {
		suffix = " (" + text + ")"
	}
	name := strings.Replace(template, "%s", mnemonic, 1)
	return strings.Replace(name, "%s", suffix, 1), nil
}

// ToolTip explains p to a player.
func ToolTip(p Probability) string {
	switch v := p.(type) {
	case NotImplemented:
		return "Starting to do this may currently be impossible."
	case Range:
		lo, hi := v.Percent()
		if v.Min == v.Max {
			return fmt.Sprintf("The probability of success is %s.", formatPercent(hi))
		}
		return fmt.Sprintf("The probability of success is %s, %s or somewhere in between. "+
			"(This is the most precise interval that can be calculated with the information available.)",
			formatPercent(lo), formatPercent(hi))
	default:
		return ""
	}
}
