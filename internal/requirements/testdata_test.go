package requirements

func spyFacts() map[string]any {
	vars := emptyVars()
	vars[VarPlayer] = map[string]any{
		"name":  "Caesar",
		"gold":  120,
		"techs": []string{"Writing", "Bronze Working"},
	}
	vars[VarOtherPlayer] = map[string]any{
		"name":  "Hammurabi",
		"gold":  40,
		"techs": []string{"Alphabet"},
	}
	vars[VarRelation] = map[string]any{"state": "war", "embassy": false, "foreign": true}
	vars[VarUnit] = map[string]any{"veteran": 1, "hp": 10}
	vars[VarUnitType] = map[string]any{"name": "Spy", "flags": []string{"Diplomat", "Spy"}}
	vars[VarCity] = map[string]any{"name": "Babylon", "size": 6, "buildings": []string{"Palace"}}
	return vars
}
