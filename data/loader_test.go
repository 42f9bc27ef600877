package data

import (
	"testing"
	"testing/fstest"

	"github.com/launchdarkly/go-sdk-common/v3/ldvalue"
	m "github.com/launchdarkly/go-test-helpers/v2/matchers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadAllDataFiles(t *testing.T) {
	fsys := fstest.MapFS{
		"scenarios/b.yaml":        {Data: []byte("name: b\n")},
		"scenarios/a.json":        {Data: []byte(`{"name":"a"}`)},
		"scenarios/README.md":     {Data: []byte("# not data")},
		"scenarios/nested/c.yaml": {Data: []byte("name: c\n")},
	}
	sources, err := LoadAllDataFiles(fsys, "scenarios")
	require.NoError(t, err)
	require.Len(t, sources, 2)

	assert.Equal(t, "scenarios/a.json", sources[0].FilePath)
	assert.Equal(t, "a.json", sources[0].BaseName)
	assert.Equal(t, "b.yaml", sources[1].BaseName)

	var out struct {
		Name string `json:"name"`
	}
	require.NoError(t, sources[1].ParseInto(&out))
	assert.Equal(t, "b", out.Name)
}

func TestLoadDataFileWithParameters(t *testing.T) {
	fsys := fstest.MapFS{
		"p.yaml": {Data: []byte(`---
parameters:
  - app: echo
  - app: greeter
name: "<app> round trip"
app: <app>
`)},
	}
	sources, err := LoadDataFile(fsys, "p.yaml")
	require.NoError(t, err)
	require.Len(t, sources, 2)

	var names []string
	for _, s := range sources {
		var out struct {
			Name string `json:"name"`
			App  string `json:"app"`
		}
		require.NoError(t, s.ParseInto(&out))
		assert.Equal(t, out.App+" round trip", out.Name)
		names = append(names, out.App)
	}
	assert.ElementsMatch(t, []string{"echo", "greeter"}, names)
	assert.Equal(t, "(app=echo)", sources[0].ParamsString())
}

func TestLoadDataFileErrors(t *testing.T) {
	fsys := fstest.MapFS{
		"bad.yaml": {Data: []byte("parameters: 3\n")},
	}
	_, err := LoadDataFile(fsys, "missing.yaml")
	assert.Error(t, err)

	_, err = LoadDataFile(fsys, "bad.yaml")
	assert.Error(t, err)
}

func TestSourceInfoParseIntoReportsParams(t *testing.T) {
	s := SourceInfo{
		BaseName: "x.yaml",
		Params:   map[string]ldvalue.Value{"b": ldvalue.Int(2), "a": ldvalue.String("y")},
		Data:     []byte("{not valid"),
	}
	var out interface{}
	err := s.ParseInto(&out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"x.yaml" (a=y,b=2)`)
}

func TestTypedSubstitution(t *testing.T) {
	fsys := fstest.MapFS{
		"c.yaml": {Data: []byte(`---
constants:
  count: 3
scope:
  failAfter: "<count>"
  label: "after <count>"
`)},
	}
	sources, err := LoadDataFile(fsys, "c.yaml")
	require.NoError(t, err)
	require.Len(t, sources, 1)
	var out struct {
		Scope ldvalue.Value `json:"scope"`
	}
	require.NoError(t, sources[0].ParseInto(&out))
	m.In(t).Assert(out.Scope, m.JSONStrEqual(`{"failAfter":3,"label":"after 3"}`))
}
