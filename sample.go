package gosolve

import (
	"encoding/json"
	"math"
)

// SampleRoot marks a real root on a plot. Exact is nil when the root is only
// known numerically.
type SampleRoot struct {
	X     float64
	Exact Expr
}

// Sample is a function evaluated on a uniform grid. Y[i] is NaN where the
// function is undefined at X[i].
type Sample struct {
	X, Y  []float64
	Roots []SampleRoot
}

// SampleView is the wire form of a Sample; undefined points are nil.
type SampleView struct {
	X     []float64        `json:"x" msgpack:"x"`
	Y     []*float64       `json:"y" msgpack:"y"`
	Roots []SampleRootView `json:"roots" msgpack:"roots"`
}

// SampleRootView is the wire form of a SampleRoot.
type SampleRootView struct {
	X      float64 `json:"x" msgpack:"x"`
	Approx string  `json:"approx" msgpack:"approx"`
	Exact  string  `json:"exact,omitempty" msgpack:"exact,omitempty"`
}

// View converts the sample for serialization.
func (s Sample) View(digits int) SampleView {
	v := SampleView{X: s.X, Y: make([]*float64, len(s.Y)), Roots: make([]SampleRootView, len(s.Roots))}
	for i, y := range s.Y {
		if !math.IsNaN(y) {
			y := y
			v.Y[i] = &y
		}
	}
	for i, r := range s.Roots {
		rv := SampleRootView{X: r.X, Approx: FormatApprox(r.X, digits)}
		if r.Exact != nil {
			rv.Exact = r.Exact.String()
		}
		v.Roots[i] = rv
	}
	return v
}

// MarshalJSON encodes undefined points as null.
func (s Sample) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.View(DefaultSignificantDigits))
}

// Defined counts the grid points where the function has a value.
func (s Sample) Defined() int {
	n := 0
	for _, y := range s.Y {
		if !math.IsNaN(y) {
			n++
		}
	}
	return n
}

// SampleExpr evaluates expr over opts.SampleCount points spanning
// [opts.DomainMin, opts.DomainMax]. Points where evaluation is undefined
// become NaN and sampling continues. Roots are the real roots of expr = 0
// that lie inside the sampled domain.
func SampleExpr(expr Expr, symbol string, opts Options) (Sample, error) {
	opts = opts.withDefaults()
	n := opts.SampleCount
	lo, hi := opts.DomainMin, opts.DomainMax
	s := Sample{X: make([]float64, n), Y: make([]float64, n)}
	env := map[string]float64{}
	for i := 0; i < n; i++ {
		x := lo
		if n > 1 {
			x = lo + (hi-lo)*float64(i)/float64(n-1)
		}
		s.X[i] = x
		env[symbol] = x
		y, err := expr.Evalf(env)
		if err != nil || math.IsInf(y, 0) {
			y = math.NaN()
		}
		s.Y[i] = y
	}

	if !hasSymbol(expr, symbol) {
		return s, nil
	}
	out := solveSingle(expr, symbol, opts)
	if out.Err != nil {
		return s, out.Err
	}
	for _, r := range out.Roots() {
		if !r.IsReal() || r.Real() < lo || r.Real() > hi {
			continue
		}
		root := SampleRoot{X: r.Real()}
		if e, ok := r.Expr(); ok {
			root.Exact = e
		}
		s.Roots = append(s.Roots, root)
	}
	return s, nil
}
