package data

import (
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/launchdarkly/go-sdk-common/v3/ldvalue"
	"golang.org/x/exp/slices"
)

var dataFileExtensions = []string{".json", ".yaml", ".yml"} //nolint:gochecknoglobals

// SourceInfo represents JSON or YAML data that was read from a file, after expanding constants and
// parameters. A file without parameters produces one SourceInfo; a parameterized file produces one
// per parameter set, each with its own version of Data.
type SourceInfo struct {
	FilePath string
	BaseName string
	Params   map[string]ldvalue.Value
	Data     []byte
}

func (s SourceInfo) ParseInto(target interface{}) error {
	if err := ParseJSONOrYAML(s.Data, target); err != nil {
		return fmt.Errorf("error parsing %q %s: %w", s.BaseName, s.ParamsString(), err)
	}
	return nil
}

// ParamsString describes the parameter set in a stable order, or returns "" if there is none.
func (s SourceInfo) ParamsString() string {
	if len(s.Params) == 0 {
		return ""
	}
	keys := make([]string, 0, len(s.Params))
	for k := range s.Params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+s.Params[k].String())
	}
	return "(" + strings.Join(parts, ",") + ")"
}

// LoadDataFile reads a data file from fsys and performs any constant/parameter substitutions. It
// can return more than one SourceInfo because any file can be parameterized.
func LoadDataFile(fsys fs.FS, filePath string) ([]SourceInfo, error) {
	data, err := fs.ReadFile(fsys, filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read %q: %w", filePath, err)
	}
	sources, err := expandSubstitutions(data)
	if err != nil {
		return nil, fmt.Errorf("error reading %q: %w", filePath, err)
	}
	baseName := path.Base(filePath)
	for i := range sources {
		sources[i].FilePath = filePath
		sources[i].BaseName = baseName
	}
	return sources, nil
}

// LoadAllDataFiles reads every JSON or YAML file in a directory of fsys, in name order. Other
// files and subdirectories are ignored.
func LoadAllDataFiles(fsys fs.FS, dir string) ([]SourceInfo, error) {
	files, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, err
	}
	var ret []SourceInfo
	for _, file := range files {
		if file.IsDir() || !slices.Contains(dataFileExtensions, path.Ext(file.Name())) {
			continue
		}
		sources, err := LoadDataFile(fsys, path.Join(dir, file.Name()))
		if err != nil {
			return nil, err
		}
		ret = append(ret, sources...)
	}
	return ret, nil
}
