package sampler

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
)

// DefaultSteps is the number of intervals a range is divided into.
const DefaultSteps = 100

// DefaultRange is used for a variable without an explicit range.
var DefaultRange = Range{-10, 10}

// ErrInvalidRange is returned for a range with min > max, non-finite bounds
// or a non-positive step count.
var ErrInvalidRange = errors.New("invalid range")

// Point is a sampled (x, y) pair.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Range is a closed [min, max] interval. It encodes as a two-element array.
type Range [2]float64

// Min returns the lower bound.
func (r Range) Min() float64 { return r[0] }

// Max returns the upper bound.
func (r Range) Max() float64 { return r[1] }

// UnmarshalJSON accepts exactly two numbers; plain array decoding would
// zero-fill a short array and drop the tail of a long one.
func (r *Range) UnmarshalJSON(b []byte) error {
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		return nil
	}
	var bounds []float64
	if err := json.Unmarshal(b, &bounds); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRange, err)
	}
	if len(bounds) != 2 {
		return fmt.Errorf("%w: want [min, max], got %d values", ErrInvalidRange, len(bounds))
	}
	*r = Range{bounds[0], bounds[1]}
	return nil
}

// Validate checks that both bounds are finite and min <= max.
func (r Range) Validate() error {
	for _, v := range r {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: bound %v is not finite", ErrInvalidRange, v)
		}
	}
	if r[0] > r[1] {
		return fmt.Errorf("%w: min %v is greater than max %v", ErrInvalidRange, r[0], r[1])
	}
	return nil
}

// Sample evaluates e over r divided into steps equal intervals, binding the
// sampled value to variable on top of a copy of scope. Points whose value is
// not a finite real number are skipped, so the result holds at most steps+1
// points in ascending x order.
func Sample(e *Expression, variable string, scope map[string]float64, r Range, steps int) ([]Point, error) {
	if steps < 1 {
		return nil, fmt.Errorf("%w: steps must be positive, got %d", ErrInvalidRange, steps)
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}

	env := make(map[string]float64, len(scope)+1)
	for k, v := range scope {
		env[k] = v
	}

	step := (r.Max() - r.Min()) / float64(steps)
	points := make([]Point, 0, steps+1)
	for i := 0; i <= steps; i++ {
		x := r.Min() + float64(i)*step
		if i == steps {
			x = r.Max()
		}
		env[variable] = x
		if y, ok := e.Eval(env); ok {
			points = append(points, Point{X: x, Y: y})
		}
	}
	return points, nil
}
