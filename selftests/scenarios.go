package selftests

import (
	"github.com/launchdarkly/app-communicator/framework/ldtest"
)

func doScenarioTests(t *ldtest.T) {
	all := suiteContext(t).scenarios
	if len(all) == 0 {
		t.SkipWithReason("no scenarios were loaded")
	}
	for _, s := range all {
		s := s
		t.Run(s.Name, func(t *ldtest.T) {
			if params := s.Source.ParamsString(); params != "" {
				t.Debug("Scenario from %s %s", s.Source.FilePath, params)
			} else if s.Source.FilePath != "" {
				t.Debug("Scenario from %s", s.Source.FilePath)
			}
			s.Run(t, t.DebugLogger())
		})
	}
}
