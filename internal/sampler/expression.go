package sampler

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// ErrInvalidExpression is returned when an expression cannot be compiled.
var ErrInvalidExpression = errors.New("invalid expression")

// constants are bound in every evaluation. Scope values shadow them.
var constants = map[string]float64{
	"pi":  math.Pi,
	"PI":  math.Pi,
	"e":   math.E,
	"E":   math.E,
	"tau": 2 * math.Pi,
}

// unaryFuncs are the one-argument math functions available to expressions.
var unaryFuncs = map[string]func(float64) float64{
	"sin":   math.Sin,
	"cos":   math.Cos,
	"tan":   math.Tan,
	"asin":  math.Asin,
	"acos":  math.Acos,
	"atan":  math.Atan,
	"sinh":  math.Sinh,
	"cosh":  math.Cosh,
	"tanh":  math.Tanh,
	"sqrt":  math.Sqrt,
	"cbrt":  math.Cbrt,
	"exp":   math.Exp,
	"log":   math.Log,
	"ln":    math.Log,
	"log10": math.Log10,
	"log2":  math.Log2,
	"sign": func(x float64) float64 {
		switch {
		case x > 0:
			return 1
		case x < 0:
			return -1
		}
		return x
	},
}

// builtins are expr's own numeric functions that expressions may use.
var builtins = []string{"abs", "ceil", "floor", "round", "max", "min"}

var functionOptions = buildFunctionOptions()

func buildFunctionOptions() []expr.Option {
	opts := make([]expr.Option, 0, len(unaryFuncs)+1)
	for name, fn := range unaryFuncs {
		opts = append(opts, expr.Function(name, unary(name, fn)))
	}
	opts = append(opts, expr.Function("pow", func(params ...any) (any, error) {
		if len(params) != 2 {
			return nil, fmt.Errorf("pow: expected 2 arguments, got %d", len(params))
		}
		x, ok1 := toFloat(params[0])
		y, ok2 := toFloat(params[1])
		if !ok1 || !ok2 {
			return nil, fmt.Errorf("pow: arguments must be numbers")
		}
		return math.Pow(x, y), nil
	}))
	return opts
}

func unary(name string, fn func(float64) float64) func(params ...any) (any, error) {
	return func(params ...any) (any, error) {
		if len(params) != 1 {
			return nil, fmt.Errorf("%s: expected 1 argument, got %d", name, len(params))
		}
		x, ok := toFloat(params[0])
		if !ok {
			return nil, fmt.Errorf("%s: argument must be a number", name)
		}
		return fn(x), nil
	}
}

// Expression is a compiled expression ready for repeated evaluation.
type Expression struct {
	source    string
	variables []string
	program   *vm.Program
}

// Compile parses source with the given free variables. Identifiers that are
// neither variables, constants nor functions are rejected.
func Compile(source string, variables ...string) (*Expression, error) {
	canonical := Canonical(source)
	if canonical == "" {
		return nil, fmt.Errorf("%w: empty expression", ErrInvalidExpression)
	}

	env := make(map[string]any, len(constants)+len(variables))
	for name, v := range constants {
		env[name] = v
	}
	for _, v := range variables {
		if !identPattern.MatchString(v) {
			return nil, fmt.Errorf("%w: invalid variable name %q", ErrInvalidExpression, v)
		}
		env[v] = 0.0
	}

	opts := append([]expr.Option{expr.Env(env)}, functionOptions...)
	program, err := expr.Compile(canonical, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidExpression, err)
	}

	vars := append([]string(nil), variables...)
	sort.Strings(vars)
	return &Expression{source: canonical, variables: vars, program: program}, nil
}

// String returns the canonical source of the expression.
func (e *Expression) String() string { return e.source }

// Eval evaluates the expression with the given variable bindings. ok is false
// when evaluation fails or the result is not a finite real number.
func (e *Expression) Eval(scope map[string]float64) (y float64, ok bool) {
	env := make(map[string]any, len(constants)+len(scope))
	for name, v := range constants {
		env[name] = v
	}
	for name, v := range scope {
		env[name] = v
	}

	out, err := expr.Run(e.program, env)
	if err != nil {
		return 0, false
	}
	y, ok = toFloat(out)
	if !ok || math.IsNaN(y) || math.IsInf(y, 0) {
		return 0, false
	}
	return y, true
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	}
	return 0, false
}

var (
	identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
	identScan    = regexp.MustCompile(`\b[A-Za-z_][A-Za-z0-9_]*`)
)

// symbolReplacer maps handwriting and typesetting symbols to ASCII operators.
var symbolReplacer = strings.NewReplacer(
	"×", "*",
	"·", "*",
	"⋅", "*",
	"÷", "/",
	"−", "-",
	"–", "-",
	"²", "^2",
	"³", "^3",
	"π", "pi",
	"**", "^",
)

// Canonical rewrites typographic operators to the ASCII forms the evaluator
// understands and trims surrounding space.
func Canonical(source string) string {
	return strings.TrimSpace(symbolReplacer.Replace(source))
}

// IsReserved reports whether name is a constant or function name.
func IsReserved(name string) bool {
	if _, ok := constants[name]; ok {
		return true
	}
	if _, ok := unaryFuncs[name]; ok {
		return true
	}
	if name == "pow" {
		return true
	}
	for _, b := range builtins {
		if b == name {
			return true
		}
	}
	return false
}

// FreeVariables returns the sorted, distinct identifiers in source that are
// not constants or functions.
func FreeVariables(source string) []string {
	seen := map[string]bool{}
	var vars []string
	for _, name := range identScan.FindAllString(Canonical(source), -1) {
		if IsReserved(name) || seen[name] {
			continue
		}
		seen[name] = true
		vars = append(vars, name)
	}
	sort.Strings(vars)
	return vars
}
