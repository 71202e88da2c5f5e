package sampler

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// Descriptor is the structured form of a recognized equation.
type Descriptor struct {
	// Expression is the right-hand side, e.g. "x^2 + 2*x + 1".
	Expression string `json:"expression"`
	// DependentVariable is the left-hand side name, e.g. "y".
	DependentVariable string `json:"dependentVariable"`
	// Scope binds independent variables to sample values.
	Scope map[string]float64 `json:"scope"`
	// Ranges optionally bounds independent variables for plotting.
	Ranges map[string]Range `json:"ranges,omitempty"`
}

// Clone returns a copy that shares no maps with d.
func (d Descriptor) Clone() Descriptor {
	c := d
	if d.Scope != nil {
		c.Scope = make(map[string]float64, len(d.Scope))
		for k, v := range d.Scope {
			c.Scope[k] = v
		}
	}
	if d.Ranges != nil {
		c.Ranges = make(map[string]Range, len(d.Ranges))
		for k, v := range d.Ranges {
			c.Ranges[k] = v
		}
	}
	return c
}

// Equation renders the descriptor as "dep = expression".
func (d Descriptor) Equation() string {
	dep := d.DependentVariable
	if dep == "" {
		dep = "y"
	}
	return dep + " = " + d.Expression
}

// Variables returns the sorted union of the scope and range keys.
func (d Descriptor) Variables() []string {
	seen := map[string]bool{}
	var vars []string
	for k := range d.Scope {
		if !seen[k] {
			seen[k] = true
			vars = append(vars, k)
		}
	}
	for k := range d.Ranges {
		if !seen[k] {
			seen[k] = true
			vars = append(vars, k)
		}
	}
	sort.Strings(vars)
	return vars
}

// Compile compiles the expression with every scope and range key as a
// variable.
func (d Descriptor) Compile() (*Expression, error) {
	return Compile(d.Expression, d.Variables()...)
}

// Validate checks that the descriptor names an expression that compiles and
// that every explicit range is well formed.
func (d Descriptor) Validate() error {
	if strings.TrimSpace(d.Expression) == "" {
		return fmt.Errorf("%w: missing expression", ErrInvalidExpression)
	}
	for name, r := range d.Ranges {
		if err := r.Validate(); err != nil {
			return fmt.Errorf("range for %q: %w", name, err)
		}
	}
	_, err := d.Compile()
	return err
}

// SelectVariable picks the independent variable to sample: the only scope
// key, or failing that the only range key. Any other shape is rejected.
func SelectVariable(scope map[string]float64, ranges map[string]Range) (string, error) {
	if len(scope) == 1 {
		for k := range scope {
			return k, nil
		}
	}
	if len(scope) == 0 && len(ranges) == 1 {
		for k := range ranges {
			return k, nil
		}
	}

	n := len(scope)
	if n == 0 {
		n = len(ranges)
	}
	return "", fmt.Errorf("%w: exactly one independent variable required, got %d", ErrInvalidExpression, n)
}

// Series is a sampled curve ready to be charted.
type Series struct {
	Variable          string  `json:"variable"`
	DependentVariable string  `json:"dependentVariable"`
	Range             Range   `json:"range"`
	Points            []Point `json:"points"`
}

// Label returns the chart legend, e.g. "y = f(x)".
func (s Series) Label() string {
	dep := s.DependentVariable
	if dep == "" {
		dep = "y"
	}
	v := s.Variable
	if v == "" {
		v = "x"
	}
	return fmt.Sprintf("%s = f(%s)", dep, v)
}

// Graph samples the descriptor's expression over its independent variable.
// A variable without an explicit range uses fallback.
func Graph(d Descriptor, steps int, fallback Range) (*Series, error) {
	variable, err := SelectVariable(d.Scope, d.Ranges)
	if err != nil {
		return nil, err
	}
	e, err := d.Compile()
	if err != nil {
		return nil, err
	}

	r, ok := d.Ranges[variable]
	if !ok {
		r = fallback
	}
	points, err := Sample(e, variable, d.Scope, r, steps)
	if err != nil {
		return nil, err
	}

	return &Series{
		Variable:          variable,
		DependentVariable: d.DependentVariable,
		Range:             r,
		Points:            points,
	}, nil
}

// Solve evaluates an expression or assignment ("y = 2*x") with the given
// bindings. Only the right-hand side of an assignment is evaluated.
func Solve(equation string, scope map[string]float64) (float64, error) {
	source := equation
	if _, rhs, ok := SplitAssignment(equation); ok {
		source = rhs
	}

	vars := make([]string, 0, len(scope))
	for k := range scope {
		vars = append(vars, k)
	}
	e, err := Compile(source, vars...)
	if err != nil {
		return 0, err
	}

	y, ok := e.Eval(scope)
	if !ok {
		return 0, fmt.Errorf("%w: %q does not evaluate to a finite number", ErrInvalidExpression, source)
	}
	return y, nil
}

var assignmentLHS = regexp.MustCompile(`^([A-Za-z_][A-Za-z0-9_]*)\s*(\([^()]*\))?$`)

// SplitAssignment splits "y = rhs" or "f(x) = rhs" into the assigned name and
// the right-hand side. Comparison operators (==, <=, >=, !=) are not
// assignments. ok is false when equation is not a single assignment.
func SplitAssignment(equation string) (name, rhs string, ok bool) {
	at := -1
	for i := 0; i < len(equation); i++ {
		if equation[i] != '=' {
			continue
		}
		if i > 0 && strings.ContainsRune("=<>!", rune(equation[i-1])) {
			continue
		}
		if i+1 < len(equation) && equation[i+1] == '=' {
			i++
			continue
		}
		if at >= 0 {
			return "", "", false
		}
		at = i
	}
	if at < 0 {
		return "", "", false
	}

	m := assignmentLHS.FindStringSubmatch(strings.TrimSpace(equation[:at]))
	rhs = strings.TrimSpace(equation[at+1:])
	if m == nil || rhs == "" {
		return "", "", false
	}
	return m[1], rhs, true
}
