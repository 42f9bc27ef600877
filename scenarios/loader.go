package scenarios

import (
	"embed"
	"fmt"
	"io/fs"
	"os"

	"github.com/launchdarkly/app-communicator/data"
)

//go:embed data-files
var builtinFiles embed.FS

const builtinDir = "data-files"

// Builtin returns the scenarios that are compiled into the module.
func Builtin() ([]Scenario, error) {
	return Load(builtinFiles, builtinDir)
}

// LoadDir reads every JSON or YAML scenario file in a directory of the local filesystem.
func LoadDir(dir string) ([]Scenario, error) {
	return Load(os.DirFS(dir), ".")
}

// Load reads every JSON or YAML scenario file in dir within fsys. A parameterized file produces
// one scenario per parameter set; if such a scenario has no name of its own, it is named after the
// file and its parameters.
func Load(fsys fs.FS, dir string) ([]Scenario, error) {
	sources, err := data.LoadAllDataFiles(fsys, dir)
	if err != nil {
		return nil, err
	}
	ret := make([]Scenario, 0, len(sources))
	seen := make(map[string]string)
	for _, source := range sources {
		var s Scenario
		if err := source.ParseInto(&s); err != nil {
			return nil, err
		}
		s.Source = source
		if s.Name == "" {
			s.Name = source.BaseName
			if params := source.ParamsString(); params != "" {
				s.Name += " " + params
			}
		}
		if err := s.Validate(); err != nil {
			return nil, fmt.Errorf("invalid scenario in %q %s: %w", source.FilePath, source.ParamsString(), err)
		}
		if other, ok := seen[s.Name]; ok {
			return nil, fmt.Errorf("scenario name %q in %q is already used in %q", s.Name, source.FilePath, other)
		}
		seen[s.Name] = source.FilePath
		ret = append(ret, s)
	}
	return ret, nil
}
