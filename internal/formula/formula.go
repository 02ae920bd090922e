// Package formula compiles the expression strings diagrams use for
// plotted functions, vector fields and point-dependent geometry.
//
// Expressions are numeric and see the variables x, y, t and time, the
// coordinates of named points as p.x and p.y, and the usual math
// functions. Evaluation never fails: a runtime error or a non-numeric
// result yields NaN, which the sampler treats as a gap in the curve.
package formula

import (
	"errors"
	"fmt"
	"maps"
	"math"
	"slices"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/inamate/graphpad/internal/sample"
	"github.com/inamate/graphpad/internal/vec"
)

var ErrCompile = errors.New("formula: compile")

// Variables available to every expression.
const (
	VarX    = "x"
	VarY    = "y"
	VarT    = "t"
	VarTime = "time"
)

var functions = map[string]any{
	"sin":   math.Sin,
	"cos":   math.Cos,
	"tan":   math.Tan,
	"asin":  math.Asin,
	"acos":  math.Acos,
	"atan":  math.Atan,
	"atan2": math.Atan2,
	"sinh":  math.Sinh,
	"cosh":  math.Cosh,
	"tanh":  math.Tanh,
	"sqrt":  math.Sqrt,
	"cbrt":  math.Cbrt,
	"exp":   math.Exp,
	"log":   math.Log,
	"log2":  math.Log2,
	"log10": math.Log10,
	"pow":   math.Pow,
	"hypot": math.Hypot,
	"sign": func(v float64) float64 {
		switch {
		case v > 0:
			return 1
		case v < 0:
			return -1
		}
		return 0
	},
	"pi": math.Pi,
	"e":  math.E,
}

// Reserved reports whether name cannot be used for a point.
func Reserved(name string) bool {
	if _, ok := functions[name]; ok {
		return true
	}
	switch name {
	case VarX, VarY, VarT, VarTime:
		return true
	}
	return false
}

// Expr is a compiled expression. It is safe for concurrent use; the Env
// passed to Eval is not.
type Expr struct {
	src     string
	program *vm.Program
}

// Compile type-checks src against the standard variables plus the given
// point names.
func Compile(src string, points ...string) (*Expr, error) {
	if src == "" {
		return nil, fmt.Errorf("%w: empty expression", ErrCompile)
	}
	decl := NewEnv()
	for _, p := range points {
		if Reserved(p) {
			return nil, fmt.Errorf("%w: point name %q is reserved", ErrCompile, p)
		}
		decl.SetPoint(p, vec.Vector2{})
	}

	program, err := expr.Compile(src, expr.Env(decl.vars), expr.AsFloat64())
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %w", ErrCompile, src, err)
	}
	return &Expr{src: src, program: program}, nil
}

// MustCompile is Compile for expressions known to be valid.
func MustCompile(src string, points ...string) *Expr {
	e, err := Compile(src, points...)
	if err != nil {
		panic(err)
	}
	return e
}

func (e *Expr) String() string { return e.src }

// Eval runs the expression in env.
func (e *Expr) Eval(env *Env) float64 {
	out, err := expr.Run(e.program, env.vars)
	if err != nil {
		return math.NaN()
	}
	f, ok := out.(float64)
	if !ok {
		return math.NaN()
	}
	return f
}

// Env holds the values an expression runs against. The zero value is not
// usable; call NewEnv.
type Env struct {
	vars map[string]any
}

// NewEnv returns an environment with every variable at zero.
func NewEnv() *Env {
	vars := make(map[string]any, len(functions)+8)
	maps.Copy(vars, functions)
	vars[VarX] = 0.0
	vars[VarY] = 0.0
	vars[VarT] = 0.0
	vars[VarTime] = 0.0
	return &Env{vars: vars}
}

// Clone returns an independent copy of env.
func (env *Env) Clone() *Env {
	return &Env{vars: maps.Clone(env.vars)}
}

func (env *Env) Set(name string, v float64) *Env {
	env.vars[name] = v
	return env
}

// SetPoint exposes p as name.x and name.y.
func (env *Env) SetPoint(name string, p vec.Vector2) *Env {
	env.vars[name] = map[string]float64{"x": p.X, "y": p.Y}
	return env
}

// Points returns the names of the points set on env, sorted.
func (env *Env) Points() []string {
	var out []string
	for k, v := range env.vars {
		if _, ok := v.(map[string]float64); ok {
			out = append(out, k)
		}
	}
	slices.Sort(out)
	return out
}

// OfX adapts e to y = f(x). The returned function owns a copy of env.
func OfX(e *Expr, env *Env) func(x float64) float64 {
	local := env.Clone()
	return func(x float64) float64 {
		return e.Eval(local.Set(VarX, x))
	}
}

// OfY adapts e to x = f(y).
func OfY(e *Expr, env *Env) func(y float64) float64 {
	local := env.Clone()
	return func(y float64) float64 {
		return e.Eval(local.Set(VarY, y))
	}
}

// Parametric pairs two expressions of t into a curve.
func Parametric(x, y *Expr, env *Env) sample.Func {
	local := env.Clone()
	return func(t float64) vec.Vector2 {
		local.Set(VarT, t)
		return vec.V(x.Eval(local), y.Eval(local))
	}
}

// Field pairs two expressions of x and y into a vector field.
func Field(dx, dy *Expr, env *Env) func(x, y float64) vec.Vector2 {
	local := env.Clone()
	return func(x, y float64) vec.Vector2 {
		local.Set(VarX, x).Set(VarY, y)
		return vec.V(dx.Eval(local), dy.Eval(local))
	}
}

// Scalar pairs an expression of x and y into a scalar field, used for
// vector field opacity.
func Scalar(e *Expr, env *Env) func(x, y float64) float64 {
	local := env.Clone()
	return func(x, y float64) float64 {
		return e.Eval(local.Set(VarX, x).Set(VarY, y))
	}
}
