package helpers

import (
	"encoding/json"

	"github.com/launchdarkly/go-sdk-common/v3/ldvalue"
)

// AsJSON is just a shortcut for calling json.Marshal and taking only the first result.
func AsJSON(value interface{}) []byte {
	ret, _ := json.Marshal(value)
	return ret
}

// AsJSONString calls json.Marshal and returns the result as a string.
func AsJSONString(value interface{}) string { return string(AsJSON(value)) }

// CanonicalizedJSONString reformats a JSON value so that object properties are alphabetized,
// so that messages are printed the same way every time.
func CanonicalizedJSONString(value ldvalue.Value) string {
	// encoding/json sorts map keys
	return AsJSONString(value.AsArbitraryValue())
}
