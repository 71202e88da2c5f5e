package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/ironsheep/equation-board/internal/geometry"
	"github.com/ironsheep/equation-board/internal/imaging"
	"github.com/ironsheep/equation-board/internal/recognition"
	"github.com/ironsheep/equation-board/internal/sampler"
	"github.com/ironsheep/equation-board/internal/voice"
)

var (
	// ErrNoEquation is returned by Graph before any successful capture.
	ErrNoEquation = errors.New("no equation extracted")
	// ErrBusy is returned when another call is still in flight.
	ErrBusy = errors.New("another request is in progress")
	// ErrStale is returned when a call's result arrived after the
	// orchestrator moved on; the result was discarded.
	ErrStale = errors.New("result superseded by a newer request")
)

// User-visible messages.
const (
	MsgNothingToExtract  = "No objects found on the canvas to extract equation from."
	MsgNoEquation        = "No equation extracted. Please extract an equation first."
	MsgNoEquationToSolve = "No equation found to solve."
	MsgGraphFailed       = "An error occurred while generating the graph."
	MsgInvalidEquation   = "Invalid equation."
	MsgInvalidParameters = "Invalid equation or parameters."
	MsgBusy              = "Please wait for the current request to finish."
)

// State is the capture lifecycle state.
type State int

const (
	Idle State = iota
	Extracting
	Ready
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Extracting:
		return "extracting"
	case Ready:
		return "ready"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Orchestrator drives one whiteboard.
type Orchestrator struct {
	surface     Surface
	chart       ChartRenderer
	notifier    Notifier
	backend     Backend
	interpreter *voice.Interpreter
	format      imaging.Format
	logger      *slog.Logger

	mu         sync.Mutex
	state      State
	resume     State // state to return to if the capture fails or is abandoned
	descriptor *sampler.Descriptor
	busy       bool
	generation uint64
	cancel     context.CancelFunc
	chartLive  bool
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithInterpreter sets the voice command interpreter.
func WithInterpreter(in *voice.Interpreter) Option {
	return func(o *Orchestrator) { o.interpreter = in }
}

// WithSnapshotFormat sets the encoding of captured snapshots. The default is
// JPEG.
func WithSnapshotFormat(f imaging.Format) Option {
	return func(o *Orchestrator) { o.format = f }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *Orchestrator) { o.logger = l }
}

// New creates an Orchestrator in the Idle state.
func New(surface Surface, chart ChartRenderer, notifier Notifier, backend Backend, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		surface:  surface,
		chart:    chart,
		notifier: notifier,
		backend:  backend,
		format:   imaging.JPEG,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.interpreter == nil {
		o.interpreter = voice.New()
	}
	return o
}

// State returns the current state.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// Descriptor returns a copy of the stored descriptor.
func (o *Orchestrator) Descriptor() (sampler.Descriptor, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.descriptor == nil {
		return sampler.Descriptor{}, false
	}
	return o.descriptor.Clone(), true
}

// Busy reports whether a call is in flight.
func (o *Orchestrator) Busy() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.busy
}

// begin reserves the orchestrator for one external call. o.mu must be held.
func (o *Orchestrator) begin(ctx context.Context) (context.Context, uint64) {
	o.busy = true
	o.generation++
	ctx, o.cancel = context.WithCancel(ctx)
	return ctx, o.generation
}

// finish releases the reservation taken by begin. It reports false when the
// call was superseded. o.mu must be held.
func (o *Orchestrator) finish(gen uint64) bool {
	if gen != o.generation {
		return false
	}
	o.busy = false
	if o.cancel != nil {
		o.cancel()
		o.cancel = nil
	}
	return true
}

// abandonLocked supersedes the in-flight call, if any. o.mu must be held.
func (o *Orchestrator) abandonLocked() {
	o.generation++
	o.busy = false
	if o.cancel != nil {
		o.cancel()
		o.cancel = nil
	}
	if o.state == Extracting {
		o.state = o.resume
	}
}

func (o *Orchestrator) notify(message string) {
	if message != "" && o.notifier != nil {
		o.notifier.Notify(message)
	}
}

// Capture snapshots the surface, recognizes the equation and, on success,
// stores its descriptor and echoes it below the captured ink.
func (o *Orchestrator) Capture(ctx context.Context) error {
	o.mu.Lock()
	if o.busy {
		o.mu.Unlock()
		o.notify(MsgBusy)
		return ErrBusy
	}

	objects := o.surface.Objects()
	box := geometry.ComputeBoundingBox(objects)
	if box == nil {
		o.mu.Unlock()
		o.notify(MsgNothingToExtract)
		return geometry.ErrEmptyExtraction
	}
	snap, err := imaging.CropToBoundingBox(objects, box, o.format)
	if err != nil {
		o.mu.Unlock()
		o.logger.Error("snapshot failed", "error", err)
		o.notify(recognition.GenericMessage)
		return err
	}

	o.resume = o.state
	o.state = Extracting
	callCtx, gen := o.begin(ctx)
	o.mu.Unlock()

	o.logger.Debug("capturing equation", "objects", len(objects), "width", snap.Width, "height", snap.Height)
	d, err := o.backend.Extract(callCtx, recognition.Image{Data: snap.Data, MimeType: snap.MimeType, Raster: snap.Image})
	if err == nil {
		err = CheckDescriptor(d)
	}

	o.mu.Lock()
	if !o.finish(gen) {
		o.mu.Unlock()
		o.logger.Debug("discarding stale extraction", "generation", gen)
		return ErrStale
	}
	if err != nil {
		o.state = o.resume
		o.mu.Unlock()
		o.logger.Warn("extraction failed", "error", err)
		o.notify(recognition.UserMessage(err))
		return err
	}

	stored := d.Clone()
	o.descriptor = &stored
	o.state = Ready
	o.surface.Add(equationObject(stored, *box))
	o.mu.Unlock()

	o.logger.Info("equation extracted", "equation", stored.Equation())
	return nil
}

// Graph samples the stored descriptor and replaces the live chart.
func (o *Orchestrator) Graph(ctx context.Context) error {
	o.mu.Lock()
	if o.busy {
		o.mu.Unlock()
		o.notify(MsgBusy)
		return ErrBusy
	}
	if o.descriptor == nil {
		o.mu.Unlock()
		o.notify(MsgNoEquation)
		return ErrNoEquation
	}
	d := o.descriptor.Clone()
	callCtx, gen := o.begin(ctx)
	o.mu.Unlock()

	series, err := o.backend.Graph(callCtx, d)

	o.mu.Lock()
	if !o.finish(gen) {
		o.mu.Unlock()
		o.logger.Debug("discarding stale graph", "generation", gen)
		return ErrStale
	}
	if err != nil {
		o.mu.Unlock()
		o.logger.Warn("graph failed", "expression", d.Expression, "error", err)
		o.notify(failureMessage(err, MsgGraphFailed))
		return err
	}

	if o.chartLive {
		o.chart.Destroy()
	}
	o.chart.Render(*series)
	o.chartLive = true
	o.mu.Unlock()

	o.logger.Debug("graph rendered", "points", len(series.Points))
	return nil
}

// Solve evaluates the first typed equation on the surface, or the stored
// descriptor when there is none, and writes the result onto the surface.
func (o *Orchestrator) Solve(ctx context.Context) error {
	o.mu.Lock()
	if o.busy {
		o.mu.Unlock()
		o.notify(MsgBusy)
		return ErrBusy
	}

	var equation string
	var scope map[string]float64
	if obj, ok := geometry.FirstText(o.surface.Objects(), geometry.KindIText); ok {
		equation = obj.Text
		if obj.ID == EquationObjectID && o.descriptor != nil {
			equation = o.descriptor.Expression
			scope = o.descriptor.Clone().Scope
		}
	} else if o.descriptor != nil {
		equation = o.descriptor.Expression
		scope = o.descriptor.Clone().Scope
	}
	if strings.TrimSpace(equation) == "" {
		o.mu.Unlock()
		o.notify(MsgNoEquationToSolve)
		return geometry.ErrEmptyExtraction
	}
	callCtx, gen := o.begin(ctx)
	o.mu.Unlock()

	v, err := o.backend.Solve(callCtx, equation, scope)

	o.mu.Lock()
	if !o.finish(gen) {
		o.mu.Unlock()
		return ErrStale
	}
	if err != nil {
		o.mu.Unlock()
		o.logger.Debug("solve failed", "equation", equation, "error", err)
		o.notify(failureMessage(err, MsgInvalidEquation))
		return err
	}
	o.surface.Add(resultObject(v))
	o.mu.Unlock()
	return nil
}

// Clear discards the descriptor, supersedes any in-flight call, destroys the
// chart and empties the surface. Drawing mode is switched back on.
func (o *Orchestrator) Clear() {
	o.mu.Lock()
	o.abandonLocked()
	o.descriptor = nil
	o.state = Idle
	if o.chartLive {
		o.chart.Destroy()
		o.chartLive = false
	}
	o.surface.Clear()
	o.surface.SetDrawingMode(true)
	o.mu.Unlock()
}

// Abandon supersedes the in-flight call, if any. Its result will be dropped
// with ErrStale and the stored descriptor is kept.
func (o *Orchestrator) Abandon() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.busy {
		o.logger.Debug("abandoning in-flight request", "generation", o.generation)
		o.abandonLocked()
	}
}

// Placeholder adds an editable prompt at (x, y) for typing an equation.
func (o *Orchestrator) Placeholder(x, y float64) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.surface.Add(placeholderObject(x, y))
}

// HandleTranscript classifies a voice transcript and runs the matching
// command. An unrecognized transcript is reported to the user and returns
// voice.ErrUnrecognizedCommand.
func (o *Orchestrator) HandleTranscript(ctx context.Context, transcript string) (voice.Intent, error) {
	intent := o.interpreter.Classify(transcript)
	o.logger.Debug("voice command", "transcript", transcript, "intent", intent)

	switch intent {
	case voice.Clear:
		o.Clear()
		return intent, nil
	case voice.Solve:
		return intent, o.Solve(ctx)
	case voice.Draw:
		return intent, o.Graph(ctx)
	default:
		o.notify(voice.UnrecognizedMessage)
		return intent, voice.ErrUnrecognizedCommand
	}
}

// CheckDescriptor rejects a recognition result that must not be stored: a
// missing descriptor or an expression that does not compile.
func CheckDescriptor(d *sampler.Descriptor) error {
	if d == nil {
		return recognition.Fail("", errors.New("back end returned no descriptor"))
	}
	if err := d.Validate(); err != nil {
		return recognition.Fail(MsgInvalidEquation, err)
	}
	return nil
}

// failureMessage picks the user-visible text for a back-end error.
func failureMessage(err error, fallback string) string {
	var remote *RemoteError
	if errors.As(err, &remote) && remote.Message != "" {
		return remote.Message
	}
	if errors.Is(err, sampler.ErrInvalidExpression) || errors.Is(err, sampler.ErrInvalidRange) {
		if fallback == MsgGraphFailed {
			return MsgInvalidParameters
		}
	}
	return fallback
}
