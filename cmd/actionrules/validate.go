package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/rendis/actionrules/internal/requirements"
	"github.com/rendis/actionrules/internal/ruleset"
	"github.com/rendis/actionrules/pkg/schema"
)

// runValidate loads a ruleset and reports its errors and warnings.
func runValidate(args []string, out io.Writer) int {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	fs := flag.NewFlagSet("validate", flag.ContinueOnError)
	bindConfigFlags(fs, &cfg)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() > 0 {
		cfg.RulesetPath = fs.Arg(0)
	}

	logger := newLogger(cfg)
	ev, err := requirements.NewEvaluator(logger)
	if err != nil {
		fmt.Fprintf(out, "Error: %v\n", err)
		return 1
	}
	loader, err := ruleset.NewLoader(ev, logger)
	if err != nil {
		fmt.Fprintf(out, "Error: %v\n", err)
		return 1
	}

	def, err := loader.DecodeFile(cfg.RulesetPath)
	if err != nil {
		fmt.Fprintf(out, "%s: invalid\n", cfg.RulesetPath)
		printRulesError(out, err)
		return 1
	}

	result := loader.Validate(def)
	for _, w := range result.Warnings {
		fmt.Fprintln(out, w.String())
	}
	if !result.Valid() {
		fmt.Fprintf(out, "%s: invalid (%d errors)\n", cfg.RulesetPath, len(result.Errors))
		for _, issue := range result.Errors {
			fmt.Fprintln(out, issue.String())
		}
		return 1
	}
	fmt.Fprintf(out, "%s: ok (ruleset %q, %d enablers)\n", cfg.RulesetPath, def.Name, len(def.Enablers))
	return 0
}

func printRulesError(out io.Writer, err error) {
	var rErr *schema.RulesError
	if !errors.As(err, &rErr) {
		fmt.Fprintln(out, err)
		return
	}
	switch {
	case rErr.Details["errors"] != nil:
		issues, _ := rErr.Details["errors"].([]schema.ValidationIssue)
		for _, issue := range issues {
			fmt.Fprintln(out, issue.String())
		}
	case rErr.Details["violations"] != nil:
		violations, _ := rErr.Details["violations"].([]string)
		for _, v := range violations {
			fmt.Fprintln(out, v)
		}
	default:
		fmt.Fprintln(out, rErr.Error())
	}
}
