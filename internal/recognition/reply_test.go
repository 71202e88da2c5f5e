package recognition

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/equation-board/internal/sampler"
)

func TestParseReply(t *testing.T) {
	content := `{"dependentVariable":"y","expression":"(x - 1) * (x - 4)","scope":{"x":0},"ranges":{"x":[-10,10]}}`

	d, err := ParseReply(content)
	require.NoError(t, err)
	assert.Equal(t, "(x - 1) * (x - 4)", d.Expression)
	assert.Equal(t, "y", d.DependentVariable)
	assert.Equal(t, map[string]float64{"x": 0}, d.Scope)
	assert.Equal(t, sampler.Range{-10, 10}, d.Ranges["x"])
}

func TestParseReply_CodeFence(t *testing.T) {
	content := "```json\n{\"expression\": \"x^2\", \"scope\": {\"x\": 1}}\n```"

	d, err := ParseReply(content)
	require.NoError(t, err)
	assert.Equal(t, "x^2", d.Expression)
	assert.Equal(t, "y", d.DependentVariable)
}

func TestParseReply_SurroundingProse(t *testing.T) {
	d, err := ParseReply(`Here you go: {"expression": "2*t"} Hope this helps.`)
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"t": 0}, d.Scope)
}

func TestParseReply_Failures(t *testing.T) {
	tests := []struct {
		name        string
		content     string
		wantMessage string
	}{
		{"error key", `{"error": "Unable to parse the handwritten equation."}`, "Unable to parse the handwritten equation."},
		{"missing expression", `{"dependentVariable": "y"}`, GenericMessage},
		{"not json", `I cannot read this image.`, GenericMessage},
		{"malformed json", `{"expression": "x",}`, GenericMessage},
		{"wrong types", `{"expression": "x", "scope": {"x": "zero"}}`, GenericMessage},
		{"empty", ``, GenericMessage},
		{"does not compile", `{"expression": "2x + 1", "scope": {"x": 0}, "ranges": {"x": [-10, 10]}}`, GenericMessage},
		{"short range", `{"expression": "x", "scope": {"x": 0}, "ranges": {"x": [-10]}}`, GenericMessage},
		{"long range", `{"expression": "x", "scope": {"x": 0}, "ranges": {"x": [1, 2, 3]}}`, GenericMessage},
		{"inverted range", `{"expression": "x", "scope": {"x": 0}, "ranges": {"x": [5, -5]}}`, GenericMessage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseReply(tt.content)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrRecognition)
			assert.Equal(t, tt.wantMessage, UserMessage(err))
		})
	}
}

func TestFailure_Unwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := Fail("", cause)

	assert.ErrorIs(t, err, ErrRecognition)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, GenericMessage, err.Message)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestUserMessage_NonFailure(t *testing.T) {
	assert.Equal(t, GenericMessage, UserMessage(errors.New("boom")))
}

func TestParseReply_InvalidExpressionCause(t *testing.T) {
	_, err := ParseReply(`{"expression":"2x + 1","scope":{"x":0},"ranges":{"x":[-10,10]}}`)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRecognition)
	assert.ErrorIs(t, err, sampler.ErrInvalidExpression)
}
