package main

import (
	"fmt"
	"os"
)

const usage = `usage: actionrules <command> [flags]

commands:
  serve     answer action queries over MCP (stdio)
  validate  check a ruleset document
  inspect   print what a unit can do to a city or unit
  version   print the version`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}

	args := os.Args[2:]
	switch os.Args[1] {
	case "serve":
		os.Exit(runServe(args))
	case "validate":
		os.Exit(runValidate(args, os.Stdout))
	case "inspect":
		os.Exit(runInspect(args, os.Stdout))
	case "version", "-v", "--version":
		printVersion()
	case "help", "-h", "--help":
		fmt.Println(usage)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s\n", os.Args[1], usage)
		os.Exit(2)
	}
}
