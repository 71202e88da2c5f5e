package voice

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		transcript string
		want       Intent
	}{
		{"clear", Clear},
		{"please clear and solve equation", Clear},
		{"solve equation now", Solve},
		{"lös ekvationen", Solve},
		{"draw graph", Draw},
		{"could you draw the graph please", Draw},
		{"rita grafen", Draw},
		{"rensa tavlan", Clear},
		{"do a backflip", Unrecognized},
		{"", Unrecognized},
		{"   ", Unrecognized},
		{"solve", Unrecognized},
	}

	for _, tt := range tests {
		t.Run(tt.transcript, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.transcript))
		})
	}
}

func TestClassify_Normalization(t *testing.T) {
	tests := []struct {
		name       string
		transcript string
		want       Intent
	}{
		{"upper case", "SOLVE EQUATION", Solve},
		{"extra whitespace", "  draw \t  graph ", Draw},
		{"swedish upper case", "LÖS EKVATIONEN", Solve},
		// "o" followed by U+0308 COMBINING DIAERESIS.
		{"decomposed umlaut", "lo\u0308s ekvationen", Solve},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.transcript))
		})
	}
}

func TestClassify_PriorityOrder(t *testing.T) {
	assert.Equal(t, Clear, Classify("draw graph then clear"))
	assert.Equal(t, Solve, Classify("draw graph and solve equation"))
}

func TestInterpreter_LanguageLexicon(t *testing.T) {
	en, err := ForLanguage("en")
	require.NoError(t, err)

	in := New(WithLexicon(en))
	assert.Equal(t, Solve, in.Classify("solve equation"))
	assert.Equal(t, Unrecognized, in.Classify("lös ekvationen"))

	_, err = ForLanguage("klingon")
	assert.Error(t, err)
}

func TestInterpreter_Fuzzy(t *testing.T) {
	exact := New()
	fuzzy := New(WithFuzzyThreshold(0.8))

	assert.Equal(t, Unrecognized, exact.Classify("solve equasion"))
	assert.Equal(t, Solve, fuzzy.Classify("solve equasion"))
	assert.Equal(t, Draw, fuzzy.Classify("please draw grapf"))
	assert.Equal(t, Unrecognized, fuzzy.Classify("do a backflip"))
}

func TestWithFuzzyThreshold_OutOfRangeDisables(t *testing.T) {
	for _, threshold := range []float64{-1, 0, 1.5} {
		in := New(WithFuzzyThreshold(threshold))
		assert.Equal(t, Unrecognized, in.Classify("solve equasion"), "threshold %v", threshold)
	}
}

func TestIntent_String(t *testing.T) {
	assert.Equal(t, "clear", Clear.String())
	assert.Equal(t, "solve", Solve.String())
	assert.Equal(t, "draw", Draw.String())
	assert.Equal(t, "unrecognized", Unrecognized.String())
}
