package pipeline

import (
	"context"
	"errors"
	"sync"

	"github.com/ironsheep/equation-board/internal/geometry"
	"github.com/ironsheep/equation-board/internal/recognition"
	"github.com/ironsheep/equation-board/internal/sampler"
)

type fakeSurface struct {
	mu      sync.Mutex
	objects []geometry.Object
	cleared int
	drawing []bool
}

func (s *fakeSurface) Objects() []geometry.Object {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]geometry.Object(nil), s.objects...)
}

func (s *fakeSurface) Add(obj geometry.Object) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects = append(s.objects, obj)
}

func (s *fakeSurface) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects = nil
	s.cleared++
}

func (s *fakeSurface) SetDrawingMode(on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.drawing = append(s.drawing, on)
}

func (s *fakeSurface) find(id string) (geometry.Object, bool) {
	for _, obj := range s.Objects() {
		if obj.ID == id {
			return obj, true
		}
	}
	return geometry.Object{}, false
}

type fakeChart struct {
	mu     sync.Mutex
	events []string
	series []sampler.Series
}

func (c *fakeChart) Render(series sampler.Series) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, "render")
	c.series = append(c.series, series)
}

func (c *fakeChart) Destroy() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, "destroy")
}

func (c *fakeChart) Events() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.events...)
}

type fakeNotifier struct {
	mu       sync.Mutex
	messages []string
}

func (n *fakeNotifier) Notify(message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, message)
}

func (n *fakeNotifier) Messages() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.messages...)
}

// fakeBackend uses the in-process sampler for Solve and Graph unless a hook
// overrides them.
type fakeBackend struct {
	local *Local

	mu           sync.Mutex
	extractCalls int
	extract      func(ctx context.Context, img recognition.Image) (*sampler.Descriptor, error)
	solve        func(ctx context.Context, equation string, scope map[string]float64) (float64, error)
	graph        func(ctx context.Context, d sampler.Descriptor) (*sampler.Series, error)
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{local: NewLocal(nil, sampler.DefaultSteps, sampler.DefaultRange)}
}

func (b *fakeBackend) Extract(ctx context.Context, img recognition.Image) (*sampler.Descriptor, error) {
	b.mu.Lock()
	b.extractCalls++
	fn := b.extract
	b.mu.Unlock()
	if fn == nil {
		return nil, errors.New("no extraction configured")
	}
	return fn(ctx, img)
}

func (b *fakeBackend) Solve(ctx context.Context, equation string, scope map[string]float64) (float64, error) {
	if b.solve != nil {
		return b.solve(ctx, equation, scope)
	}
	return b.local.Solve(ctx, equation, scope)
}

func (b *fakeBackend) Graph(ctx context.Context, d sampler.Descriptor) (*sampler.Series, error) {
	if b.graph != nil {
		return b.graph(ctx, d)
	}
	return b.local.Graph(ctx, d)
}

func (b *fakeBackend) ExtractCalls() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.extractCalls
}

// returning makes Extract answer with d.
func returning(d sampler.Descriptor) func(context.Context, recognition.Image) (*sampler.Descriptor, error) {
	return func(context.Context, recognition.Image) (*sampler.Descriptor, error) {
		c := d.Clone()
		return &c, nil
	}
}

// gate blocks an Extract call until released.
type gate struct {
	started chan struct{}
	release chan struct{}
	ctxErr  chan error
}

func newGate() *gate {
	return &gate{
		started: make(chan struct{}),
		release: make(chan struct{}),
		ctxErr:  make(chan error, 1),
	}
}

func (g *gate) extract(d sampler.Descriptor) func(context.Context, recognition.Image) (*sampler.Descriptor, error) {
	return func(ctx context.Context, _ recognition.Image) (*sampler.Descriptor, error) {
		close(g.started)
		<-g.release
		g.ctxErr <- ctx.Err()
		c := d.Clone()
		return &c, nil
	}
}
