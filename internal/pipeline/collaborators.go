package pipeline

import (
	"context"

	"github.com/ironsheep/equation-board/internal/geometry"
	"github.com/ironsheep/equation-board/internal/recognition"
	"github.com/ironsheep/equation-board/internal/sampler"
)

// Surface is the drawing surface the orchestrator captures from and writes
// annotations to.
type Surface interface {
	// Objects returns the current objects in z-order.
	Objects() []geometry.Object
	Add(obj geometry.Object)
	Clear()
	SetDrawingMode(on bool)
}

// ChartRenderer shows at most one chart at a time.
type ChartRenderer interface {
	Render(series sampler.Series)
	Destroy()
}

// Notifier surfaces a message the user must acknowledge.
type Notifier interface {
	Notify(message string)
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(message string)

// Notify calls f.
func (f NotifierFunc) Notify(message string) { f(message) }

// Backend performs the external steps of the pipeline.
type Backend interface {
	// Extract recognizes the equation in a snapshot. Errors carry a
	// recognition.Failure.
	Extract(ctx context.Context, img recognition.Image) (*sampler.Descriptor, error)
	// Solve evaluates an equation or expression.
	Solve(ctx context.Context, equation string, scope map[string]float64) (float64, error)
	// Graph samples a descriptor.
	Graph(ctx context.Context, d sampler.Descriptor) (*sampler.Series, error)
}
