package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/launchdarkly/app-communicator/framework/ldtest"
)

type commandParams struct {
	filters      ldtest.RegexFilters
	scenariosDir string
	skipBuiltin  bool
	listApps     bool
	debug        bool
	debugAll     bool
	jUnitFile    string
}

func (c *commandParams) Read(args []string) bool {
	fs := flag.NewFlagSet("", flag.ContinueOnError)
	fs.Var(&c.filters.MustMatch, "run", "regex pattern(s) to select tests to run")
	fs.Var(&c.filters.MustNotMatch, "skip", "regex pattern(s) to select tests not to run")
	fs.StringVar(&c.scenariosDir, "scenarios", "", "directory of additional JSON or YAML scenario files")
	fs.BoolVar(&c.skipBuiltin, "skip-builtin", false, "do not run the built-in scenarios")
	fs.BoolVar(&c.listApps, "list-apps", false, "print the names of the sample applications and exit")
	fs.BoolVar(&c.debug, "debug", false, "enable debug logging for failed tests")
	fs.BoolVar(&c.debugAll, "debug-all", false, "enable debug logging for all tests")
	fs.StringVar(&c.jUnitFile, "junit", "", "write JUnit XML output to the specified path")

	if err := fs.Parse(args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return false
	}
	if fs.NArg() != 0 {
		fmt.Fprintf(os.Stderr, "unexpected arguments: %v\n", fs.Args())
		fs.Usage()
		return false
	}
	return true
}
