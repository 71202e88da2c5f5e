package recognition

import (
	"errors"
	"strings"

	"github.com/ironsheep/equation-board/internal/sampler"
)

// ocrReplacer fixes characters Tesseract commonly substitutes in handwritten
// arithmetic.
var ocrReplacer = strings.NewReplacer(
	"\n", " ",
	"\u2014", "-",
	"‘", "",
	"’", "",
	"“", "",
	"”", "",
)

// ParseEquationText builds a descriptor from recognized text such as
// "y = x^2 - 1" or "x^2 - 1". The dependent variable defaults to "y". Every
// free identifier is bound to 0 in the scope; when there is exactly one it
// also gets the range r.
func ParseEquationText(text string, r sampler.Range) (*sampler.Descriptor, error) {
	line := strings.TrimSpace(ocrReplacer.Replace(text))
	if line == "" {
		return nil, Fail("", errors.New("no text recognized"))
	}

	d := &sampler.Descriptor{Expression: line}
	if name, rhs, ok := sampler.SplitAssignment(line); ok {
		d.DependentVariable = name
		d.Expression = rhs
	}
	d.Expression = sampler.Canonical(d.Expression)

	vars := sampler.FreeVariables(d.Expression)
	d.Scope = make(map[string]float64, len(vars))
	for _, v := range vars {
		d.Scope[v] = 0
	}
	if len(vars) == 1 {
		d.Ranges = map[string]sampler.Range{vars[0]: r}
	}

	return complete(d)
}
