package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/google/uuid"

	"github.com/rendis/actionrules/internal/actions"
	"github.com/rendis/actionrules/internal/logging"
)

type inspectRow struct {
	Action      string              `json:"action"`
	Enabled     bool                `json:"enabled"`
	Probability actions.Probability `json:"probability"`
	UIName      string              `json:"ui_name"`
}

// runInspect prints every relevant action of one unit against a city or a
// unit.
func runInspect(args []string, out io.Writer) int {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	fs := flag.NewFlagSet("inspect", flag.ContinueOnError)
	bindConfigFlags(fs, &cfg)
	actorID := fs.Int("actor", -1, "acting unit id")
	cityID := fs.Int("city", -1, "target city id")
	unitID := fs.Int("unit", -1, "target unit id")
	asJSON := fs.Bool("json", false, "print JSON instead of a table")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if (*cityID < 0) == (*unitID < 0) {
		fmt.Fprintln(os.Stderr, "Error: give exactly one of -city or -unit")
		return 2
	}

	ctx := logging.WithQueryID(context.Background(), uuid.NewString())
	a, err := newApp(ctx, cfg, newLogger(cfg), nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	actor, ok := a.state.Units[*actorID]
	if !ok {
		fmt.Fprintf(os.Stderr, "Error: unit %d not found\n", *actorID)
		return 1
	}

	var rows []inspectRow
	if *cityID >= 0 {
		city, ok := a.state.Cities[*cityID]
		if !ok {
			fmt.Fprintf(os.Stderr, "Error: city %d not found\n", *cityID)
			return 1
		}
		for _, ap := range a.engine.ProbabilitiesVsCity(ctx, actor, city) {
			if ap.Probability.Kind() == actions.KindNotRelevant {
				continue
			}
			rows = append(rows, a.row(ap, a.engine.IsActionEnabledUnitOnCity(ctx, ap.Action, actor, city)))
		}
	} else {
		target, ok := a.state.Units[*unitID]
		if !ok {
			fmt.Fprintf(os.Stderr, "Error: unit %d not found\n", *unitID)
			return 1
		}
		for _, ap := range a.engine.ProbabilitiesVsUnit(ctx, actor, target) {
			if ap.Probability.Kind() == actions.KindNotRelevant {
				continue
			}
			rows = append(rows, a.row(ap, a.engine.IsActionEnabledUnitOnUnit(ctx, ap.Action, actor, target)))
		}
	}

	if *asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(rows); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		return 0
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ACTION\tENABLED\tCHANCE\tNAME")
	for _, r := range rows {
		fmt.Fprintf(tw, "%s\t%t\t%s\t%s\n", r.Action, r.Enabled, chanceColumn(r.Probability), r.UIName)
	}
	if err := tw.Flush(); err != nil {
		return 1
	}
	return 0
}

func (a *app) row(ap actions.ActionProbability, enabled bool) inspectRow {
	name, err := a.ruleset.Registry.PrepareUIName(ap.Action, "", ap.Probability)
	if err != nil {
		name = ap.Action.String()
	}
	return inspectRow{
		Action:      ap.Action.String(),
		Enabled:     enabled,
		Probability: ap.Probability,
		UIName:      name,
	}
}

// chanceColumn prints the percentage, or the kind when there is none.
func chanceColumn(p actions.Probability) string {
	if text := actions.ProbabilityText(p); text != "" {
		return text
	}
	return p.Kind().String()
}
