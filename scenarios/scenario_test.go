package scenarios

import (
	"testing"

	"github.com/launchdarkly/go-sdk-common/v3/ldvalue"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStepKind(t *testing.T) {
	message := ldvalue.String("x")
	assert.Equal(t, "send", Step{Send: &message}.Kind())
	assert.Equal(t, "expect", Step{Expect: &message}.Kind())
	assert.Equal(t, "expectNothing", Step{ExpectNothing: &ExpectNothingStep{}}.Kind())
	assert.Equal(t, "expectFault", Step{ExpectFault: &ExpectFaultStep{}}.Kind())
	assert.Equal(t, "expectTimeout", Step{ExpectTimeout: &TimeoutStep{}}.Kind())
	assert.Equal(t, "wait", Step{Wait: &TimeoutStep{}}.Kind())
	assert.Equal(t, "stop", Step{Stop: &StopStep{}}.Kind())
	assert.Equal(t, "invalid", Step{}.Kind())
	assert.Equal(t, "invalid", Step{Send: &message, Wait: &TimeoutStep{}}.Kind())
}

func TestValidate(t *testing.T) {
	message := ldvalue.String("x")
	valid := Scenario{Name: "ok", App: "echo", Steps: []Step{{Send: &message}}}
	require.NoError(t, valid.Validate())

	t.Run("missing name and app", func(t *testing.T) {
		err := Scenario{Steps: valid.Steps}.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "scenario has no name")
		assert.Contains(t, err.Error(), "scenario has no app")
	})

	t.Run("unknown app", func(t *testing.T) {
		s := valid
		s.App = "nonexistent"
		assert.EqualError(t, s.Validate(), `unknown app "nonexistent"`)
	})

	t.Run("no steps", func(t *testing.T) {
		s := valid
		s.Steps = nil
		assert.EqualError(t, s.Validate(), "scenario has no steps")
	})

	t.Run("bad steps", func(t *testing.T) {
		s := valid
		s.Steps = []Step{{Send: &message}, {}, {Expect: &message, Stop: &StopStep{}}}
		err := s.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "step 2 has no action")
		assert.Contains(t, err.Error(), "step 3 has more than one action (expect, stop)")
	})
}
