package helpers

import (
	"testing"

	"github.com/launchdarkly/go-sdk-common/v3/ldvalue"
	"github.com/stretchr/testify/assert"
)

func TestAsJSONString(t *testing.T) {
	assert.Equal(t, `{"type":"x"}`, AsJSONString(map[string]string{"type": "x"}))
	assert.Equal(t, `null`, AsJSONString(nil))
}

func TestCanonicalizedJSONString(t *testing.T) {
	value := ldvalue.Parse([]byte(`{"text":"hi","type":"websocket.send","extra":{"b":1,"a":[true,null]}}`))
	assert.Equal(t, `{"extra":{"a":[true,null],"b":1},"text":"hi","type":"websocket.send"}`,
		CanonicalizedJSONString(value))
	assert.Equal(t, `"x"`, CanonicalizedJSONString(ldvalue.String("x")))
	assert.Equal(t, `null`, CanonicalizedJSONString(ldvalue.Null()))
}
