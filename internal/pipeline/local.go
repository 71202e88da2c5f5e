package pipeline

import (
	"context"
	"errors"

	"github.com/ironsheep/equation-board/internal/recognition"
	"github.com/ironsheep/equation-board/internal/sampler"
)

// Local runs every step in-process.
type Local struct {
	recognizer   recognition.Recognizer
	steps        int
	defaultRange sampler.Range
}

// NewLocal creates a Local back end. steps below 1 and an invalid default
// range fall back to sampler.DefaultSteps and sampler.DefaultRange.
func NewLocal(r recognition.Recognizer, steps int, defaultRange sampler.Range) *Local {
	if steps < 1 {
		steps = sampler.DefaultSteps
	}
	if defaultRange.Validate() != nil {
		defaultRange = sampler.DefaultRange
	}
	return &Local{recognizer: r, steps: steps, defaultRange: defaultRange}
}

// Extract delegates to the recognizer.
func (l *Local) Extract(ctx context.Context, img recognition.Image) (*sampler.Descriptor, error) {
	if l.recognizer == nil {
		return nil, recognition.Fail("", errors.New("no recognizer configured"))
	}
	return l.recognizer.Recognize(ctx, img)
}

// Solve evaluates equation with scope.
func (l *Local) Solve(ctx context.Context, equation string, scope map[string]float64) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return sampler.Solve(equation, scope)
}

// Graph samples d over its variable's range or the default range.
func (l *Local) Graph(ctx context.Context, d sampler.Descriptor) (*sampler.Series, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return sampler.Graph(d, l.steps, l.defaultRange)
}
