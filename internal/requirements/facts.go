package requirements

import "strings"

// Top-level variables visible to requirement expressions. They mirror the
// requirement context: the subject player and its counterpart, the relation
// between them, and the city, building, tile, unit and unit type in focus.
const (
	VarPlayer      = "player"
	VarOtherPlayer = "other_player"
	VarRelation    = "relation"
	VarCity        = "city"
	VarBuilding    = "building"
	VarTile        = "tile"
	VarUnit        = "unit"
	VarUnitType    = "unit_type"
	VarOutput      = "output"
	VarSpecialist  = "specialist"
)

// Variables lists every top-level variable in declaration order.
var Variables = []string{
	VarPlayer, VarOtherPlayer, VarRelation, VarCity, VarBuilding,
	VarTile, VarUnit, VarUnitType, VarOutput, VarSpecialist,
}

// Facts is the data a requirement vector is evaluated against.
// Unknown lists dotted paths (e.g. "other_player.gold") whose value the
// viewer cannot know; an empty Unknown means omniscient evaluation.
type Facts struct {
	Vars    map[string]any
	Unknown []string
}

// IsUnknown reports whether path is, or lies below, an unknown path.
func (f Facts) IsUnknown(path string) bool {
	for _, u := range f.Unknown {
		if path == u || strings.HasPrefix(path, u+".") {
			return true
		}
	}
	return false
}

// OnlyKnown returns facts where every top-level variable except keep is
// unknown. Used for static questions such as "could this unit type ever
// satisfy the vector".
func OnlyKnown(vars map[string]any, keep ...string) Facts {
	kept := make(map[string]bool, len(keep))
	for _, k := range keep {
		kept[k] = true
	}
	f := Facts{Vars: vars}
	for _, v := range Variables {
		if !kept[v] {
			f.Unknown = append(f.Unknown, v)
		}
	}
	return f
}

// emptyVars returns a value for every top-level variable with no content.
// Used as the compile-time environment.
func emptyVars() map[string]any {
	vars := make(map[string]any, len(Variables))
	for _, v := range Variables {
		switch v {
		case VarOutput, VarSpecialist:
			vars[v] = ""
		default:
			vars[v] = map[string]any{}
		}
	}
	return vars
}
