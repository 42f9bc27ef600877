package main

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/launchdarkly/app-communicator/framework"
	"github.com/launchdarkly/app-communicator/framework/ldtest"
	"github.com/launchdarkly/app-communicator/sampleapps"
	"github.com/launchdarkly/app-communicator/scenarios"
	"github.com/launchdarkly/app-communicator/selftests"
)

func main() {
	var params commandParams
	if !params.Read(os.Args) {
		os.Exit(1)
	}

	if params.listApps {
		for _, name := range sampleapps.Names() {
			fmt.Println(name)
		}
		return
	}

	results, err := run(params)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if !results.OK() {
		os.Exit(1)
	}
}

func run(params commandParams) (*ldtest.Results, error) {
	mainDebugLogger := framework.NullLogger()
	if params.debugAll {
		mainDebugLogger = log.New(os.Stdout, "", log.LstdFlags)
	}

	allScenarios, err := loadScenarios(params, mainDebugLogger)
	if err != nil {
		return nil, err
	}

	ldtest.PrintFilterDescription(params.filters)

	var testLogger ldtest.TestLogger
	consoleLogger := ldtest.ConsoleTestLogger{
		DebugOutputOnFailure: params.debug || params.debugAll,
		DebugOutputOnSuccess: params.debugAll,
	}
	if params.jUnitFile == "" {
		testLogger = consoleLogger
	} else {
		testLogger = &ldtest.MultiTestLogger{Loggers: []ldtest.TestLogger{
			consoleLogger,
			ldtest.NewJUnitTestLogger(params.jUnitFile, "communicator self-tests", map[string]string{
				"scenarios.dir":   params.scenariosDir,
				"scenarios.count": fmt.Sprint(len(allScenarios)),
				"apps":            strings.Join(sampleapps.Names(), ","),
			}, params.filters),
		}}
	}

	results := selftests.RunSuite(params.filters, testLogger, allScenarios)

	if err := testLogger.EndLog(results); err != nil {
		return nil, fmt.Errorf("error writing log: %w", err)
	}
	return &results, nil
}

// loadScenarios returns the built-in scenarios, plus those in the scenarios directory if one was
// given.
func loadScenarios(params commandParams, logger framework.Logger) ([]scenarios.Scenario, error) {
	var all []scenarios.Scenario
	if !params.skipBuiltin {
		builtin, err := scenarios.Builtin()
		if err != nil {
			return nil, fmt.Errorf("built-in scenarios: %w", err)
		}
		all = append(all, builtin...)
	}
	if params.scenariosDir != "" {
		fromDir, err := scenarios.LoadDir(params.scenariosDir)
		if err != nil {
			return nil, fmt.Errorf("scenarios in %s: %w", params.scenariosDir, err)
		}
		for _, s := range fromDir {
			for _, existing := range all {
				if existing.Name == s.Name {
					return nil, fmt.Errorf("scenario %q in %s has the same name as a built-in scenario",
						s.Name, s.Source.FilePath)
				}
			}
		}
		all = append(all, fromDir...)
	}
	if len(all) == 0 && params.skipBuiltin {
		return nil, errors.New("-skip-builtin requires -scenarios with at least one scenario")
	}
	logger.Printf("Loaded %d scenario(s)", len(all))
	return all, nil
}
