package planning_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/taskflow-api/internal/planning"
)

func TestParseDecisionAutomatable(t *testing.T) {
	t.Parallel()

	raw := `{"automatable": true, "workflow": {"nodes": [{"type": "webhook"}], "connections": {}}}`

	decision, err := planning.ParseDecision(raw)

	require.NoError(t, err)
	assert.True(t, decision.Automatable)
	assert.JSONEq(t, `{"nodes": [{"type": "webhook"}], "connections": {}}`, string(decision.Workflow))
	assert.Empty(t, decision.Reason)
}

func TestParseDecisionNotAutomatable(t *testing.T) {
	t.Parallel()

	raw := `{"automatable": false, "reason": "requires physical presence"}`

	decision, err := planning.ParseDecision(raw)

	require.NoError(t, err)
	assert.False(t, decision.Automatable)
	assert.Equal(t, "requires physical presence", decision.Reason)
	assert.Empty(t, decision.Workflow)
}

func TestParseDecisionStripsCodeFences(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		raw  string
	}{
		{
			name: "plain fence",
			raw:  "```\n{\"automatable\": false, \"reason\": \"no API available\"}\n```",
		},
		{
			name: "json language tag",
			raw:  "```json\n{\"automatable\": false, \"reason\": \"no API available\"}\n```",
		},
		{
			name: "surrounding whitespace",
			raw:  "\n\n  ```json\n{\"automatable\": false, \"reason\": \"no API available\"}\n```  \n",
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			decision, err := planning.ParseDecision(tc.raw)
			require.NoError(t, err)
			assert.False(t, decision.Automatable)
			assert.Equal(t, "no API available", decision.Reason)
		})
	}
}

func TestParseDecisionInvalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		raw  string
	}{
		{name: "empty input", raw: ""},
		{name: "whitespace only", raw: "   \n  "},
		{name: "not JSON", raw: "I cannot automate this task."},
		{name: "JSON string instead of object", raw: `"automatable"`},
		{name: "missing automatable", raw: `{"workflow": {"nodes": []}}`},
		{name: "automatable wrong type", raw: `{"automatable": "yes", "workflow": {}}`},
		{name: "automatable null", raw: `{"automatable": null, "workflow": {}}`},
		{name: "automatable true without workflow", raw: `{"automatable": true}`},
		{name: "automatable true with null workflow", raw: `{"automatable": true, "workflow": null}`},
		{name: "automatable false without reason", raw: `{"automatable": false}`},
		{name: "automatable false with empty reason", raw: `{"automatable": false, "reason": ""}`},
		{
			name: "trailing content after object",
			raw:  `{"automatable": false, "reason": "x"} and some commentary`,
		},
		{
			name: "trailing prose sentence",
			raw:  `{"automatable": false, "reason": "x"} sorry, one more note`,
		},
		{
			name: "trailing JSON document",
			raw:  `{"automatable": false, "reason": "x"} {"automatable": true}`,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			decision, err := planning.ParseDecision(tc.raw)
			assert.Nil(t, decision)
			assert.ErrorIs(t, err, planning.ErrInvalidResponse)
		})
	}
}

// TestParseDecisionAllowsTrailingWhitespace verifies that whitespace
// after the object does not count as trailing content.
func TestParseDecisionAllowsTrailingWhitespace(t *testing.T) {
	t.Parallel()

	decision, err := planning.ParseDecision("{\"automatable\": false, \"reason\": \"x\"}  \n\t")

	require.NoError(t, err)
	assert.False(t, decision.Automatable)
}

// TestParseDecisionIsIdempotent verifies that parsing the same raw text
// twice yields the same decision or the same failure classification.
func TestParseDecisionIsIdempotent(t *testing.T) {
	t.Parallel()

	valid := `{"automatable": true, "workflow": {"nodes": []}}`
	first, err1 := planning.ParseDecision(valid)
	second, err2 := planning.ParseDecision(valid)
	require.NoError(t, err1)
	require.NoError(t, err2)
	assert.Equal(t, first, second)

	invalid := `{"automatable": true}`
	_, err1 = planning.ParseDecision(invalid)
	_, err2 = planning.ParseDecision(invalid)
	assert.ErrorIs(t, err1, planning.ErrInvalidResponse)
	assert.ErrorIs(t, err2, planning.ErrInvalidResponse)
	assert.Equal(t, err1.Error(), err2.Error())
}
