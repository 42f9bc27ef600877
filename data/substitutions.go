package data

import (
	"errors"
	"sort"
	"strings"

	"github.com/launchdarkly/go-sdk-common/v3/ldvalue"
)

var errBadParameters = errors.New( //nolint:gochecknoglobals
	`"parameters" must be a list of objects, or a list of lists of objects`)

// substitutionSet maps a placeholder name to its value. In the data, "<name>" as a whole string
// is replaced by the value with its own type, and <name> anywhere else inside a string is
// replaced by the value's text.
type substitutionSet map[string]ldvalue.Value

// substitutionHeader is the part of a data file that declares its substitutions.
type substitutionHeader struct {
	Constants  substitutionSet `json:"constants"`
	Parameters ldvalue.Value   `json:"parameters"`
}

func expandSubstitutions(data []byte) ([]SourceInfo, error) {
	var header substitutionHeader
	if err := ParseJSONOrYAML(data, &header); err != nil {
		return nil, err
	}
	paramSets, err := parameterSets(header.Parameters)
	if err != nil {
		return nil, err
	}
	if len(paramSets) == 0 {
		return []SourceInfo{{Data: header.Constants.apply(data)}}, nil
	}
	ret := make([]SourceInfo, 0, len(paramSets))
	for _, params := range paramSets {
		// a constant's value can contain a parameter placeholder, and a parameter's value can
		// contain a constant placeholder
		expanded := header.Constants.apply(params.apply(header.Constants.apply(data)))
		ret = append(ret, SourceInfo{Data: expanded, Params: params})
	}
	return ret, nil
}

// parameterSets interprets the "parameters" value. A list of objects gives one parameter set per
// object. A list of lists gives every combination that takes one object from each list, with the
// first list varying slowest.
func parameterSets(parameters ldvalue.Value) ([]substitutionSet, error) {
	if parameters.IsNull() {
		return nil, nil
	}
	if parameters.Type() != ldvalue.ArrayType {
		return nil, errBadParameters
	}
	items := parameters.AsValueArray().AsSlice()
	if len(items) == 0 || items[0].Type() == ldvalue.ObjectType {
		return objectsToSets(items)
	}
	dimensions := make([][]substitutionSet, 0, len(items))
	for _, item := range items {
		if item.Type() != ldvalue.ArrayType {
			return nil, errBadParameters
		}
		sets, err := objectsToSets(item.AsValueArray().AsSlice())
		if err != nil {
			return nil, err
		}
		if len(sets) == 0 {
			return nil, errors.New(`a list of alternatives in "parameters" cannot be empty`)
		}
		dimensions = append(dimensions, sets)
	}
	return combine(dimensions), nil
}

func objectsToSets(values []ldvalue.Value) ([]substitutionSet, error) {
	sets := make([]substitutionSet, 0, len(values))
	for _, v := range values {
		if v.Type() != ldvalue.ObjectType {
			return nil, errBadParameters
		}
		set := make(substitutionSet, v.Count())
		for _, k := range v.Keys(nil) {
			set[k] = v.GetByKey(k)
		}
		sets = append(sets, set)
	}
	return sets, nil
}

func combine(dimensions [][]substitutionSet) []substitutionSet {
	combined := []substitutionSet{{}}
	for _, alternatives := range dimensions {
		next := make([]substitutionSet, 0, len(combined)*len(alternatives))
		for _, prefix := range combined {
			for _, alt := range alternatives {
				merged := make(substitutionSet, len(prefix)+len(alt))
				for k, v := range prefix {
					merged[k] = v
				}
				for k, v := range alt {
					merged[k] = v
				}
				next = append(next, merged)
			}
		}
		combined = next
	}
	return combined
}

// apply replaces the placeholders in data. Names are processed in sorted order so that the
// result does not depend on map iteration when one value contains another placeholder.
func (s substitutionSet) apply(data []byte) []byte {
	if len(s) == 0 {
		return data
	}
	// JSON encoders may have escaped the angle brackets
	text := strings.NewReplacer(`\u003c`, "<", `\u003e`, ">").Replace(string(data))
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		value := s[name]
		asJSON := value.JSONString()
		asText := asJSON
		if value.IsString() {
			asText = value.StringValue()
		}
		text = strings.ReplaceAll(text, `"<`+name+`>"`, asJSON)
		text = strings.ReplaceAll(text, "<"+name+">", asText)
	}
	return []byte(text)
}
