package recognition

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/equation-board/internal/sampler"
)

func TestParseEquationText(t *testing.T) {
	tests := []struct {
		text      string
		wantExpr  string
		wantDep   string
		wantScope map[string]float64
	}{
		{"y = x^2 - 1\n", "x^2 - 1", "y", map[string]float64{"x": 0}},
		{"x² − 1", "x^2 - 1", "y", map[string]float64{"x": 0}},
		{"v = 3 × t", "3 * t", "v", map[string]float64{"t": 0}},
		{"f(x) = sin(x)", "sin(x)", "f", map[string]float64{"x": 0}},
		{"2 + 2", "2 + 2", "y", map[string]float64{}},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			d, err := ParseEquationText(tt.text, sampler.DefaultRange)
			require.NoError(t, err)
			assert.Equal(t, tt.wantExpr, d.Expression)
			assert.Equal(t, tt.wantDep, d.DependentVariable)
			assert.Equal(t, tt.wantScope, d.Scope)
		})
	}
}

func TestParseEquationText_Range(t *testing.T) {
	d, err := ParseEquationText("y = 2*x", sampler.Range{-3, 3})
	require.NoError(t, err)
	assert.Equal(t, sampler.Range{-3, 3}, d.Ranges["x"])
}

func TestParseEquationText_Failures(t *testing.T) {
	for _, text := range []string{"", "  \n ", "y = x +", "=="} {
		t.Run(text, func(t *testing.T) {
			_, err := ParseEquationText(text, sampler.DefaultRange)
			assert.ErrorIs(t, err, ErrRecognition)
		})
	}
}
