package gosolve

import (
	"math"
	"math/cmplx"
	"sort"
	"strings"
)

// Value is a solved value. Re and Im hold the exact real and imaginary parts;
// Im is nil for a real value and both are nil when the value is only known
// numerically. Approx is always set.
type Value struct {
	Re, Im Expr
	Approx complex128
}

// realValue wraps an exact real expression.
func realValue(re Expr) Value {
	if containsApprox(re) {
		f, _ := re.Evalf(nil)
		return numericValue(complex(f, 0))
	}
	f, _ := re.Evalf(nil)
	return Value{Re: re, Approx: complex(f, 0)}
}

// complexValue wraps an exact pair re + im*i with im != 0.
func complexValue(re, im Expr) Value {
	fr, _ := re.Evalf(nil)
	fi, _ := im.Evalf(nil)
	if containsApprox(re) || containsApprox(im) {
		return numericValue(complex(fr, fi))
	}
	return Value{Re: re, Im: im, Approx: complex(fr, fi)}
}

func numericValue(z complex128) Value { return Value{Approx: z} }

// IsExact reports whether an exact form is known.
func (v Value) IsExact() bool { return v.Re != nil }

// IsReal reports whether the value has no imaginary part.
func (v Value) IsReal() bool { return imag(v.Approx) == 0 }

// Real returns the approximate real part.
func (v Value) Real() float64 { return real(v.Approx) }

// Expr returns the exact form of a real value.
func (v Value) Expr() (Expr, bool) {
	if v.Re == nil || v.Im != nil {
		return nil, false
	}
	return v.Re, true
}

// String renders the exact form when known, otherwise the approximation.
func (v Value) String() string {
	if v.Re == nil {
		return FormatComplex(v.Approx, DefaultSignificantDigits)
	}
	if v.Im == nil {
		return v.Re.String()
	}
	body, neg := termString(v.Im)
	sign := " + "
	if neg {
		sign = " - "
	}
	im := "i"
	if body != "1" {
		im = body + "*i"
	}
	return v.Re.String() + sign + im
}

// ApproxString renders the approximation with digits significant digits.
func (v Value) ApproxString(digits int) string { return FormatComplex(v.Approx, digits) }

func containsApprox(e Expr) bool {
	switch v := e.(type) {
	case *Num:
		return v.approx
	case *Add:
		for _, t := range v.terms {
			if containsApprox(t) {
				return true
			}
		}
	case *Mul:
		for _, f := range v.factors {
			if containsApprox(f) {
				return true
			}
		}
	case *Pow:
		return containsApprox(v.base) || containsApprox(v.exp)
	case *Func:
		return containsApprox(v.arg)
	}
	return false
}

// snapReal drops an imaginary part below tol.
func snapReal(z complex128, tol float64) complex128 {
	if math.Abs(imag(z)) < tol {
		return complex(real(z), 0)
	}
	return z
}

// sortValues orders by real part, then by descending imaginary part so
// that a conjugate pair lists +i first.
func sortValues(vs []Value) {
	sort.SliceStable(vs, func(i, j int) bool {
		a, b := vs[i].Approx, vs[j].Approx
		if !closeReal(real(a), real(b)) {
			return real(a) < real(b)
		}
		return imag(a) > imag(b)
	})
}

// closeReal treats real parts within dedupeTolerance (relative) as equal,
// so numeric conjugates that differ in the last bits still pair up.
func closeReal(a, b float64) bool {
	scale := math.Max(1, math.Max(math.Abs(a), math.Abs(b)))
	return math.Abs(a-b) <= dedupeTolerance*scale
}

// dedupeValues removes values within tol of an earlier one, preferring the
// first occurrence.
func dedupeValues(vs []Value, tol float64) []Value {
	out := vs[:0:0]
	for _, v := range vs {
		dup := false
		for _, o := range out {
			if v.IsExact() && o.IsExact() && v.Im == nil && o.Im == nil {
				if v.Re.Equal(o.Re) {
					dup = true
					break
				}
				continue
			}
			if cmplx.Abs(v.Approx-o.Approx) <= tol*math.Max(1, cmplx.Abs(o.Approx)) {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, v)
		}
	}
	return out
}

// ============================================================
// Solution variants
// ============================================================

// Solution is one of *Exact, *Numeric, *Inconsistent or *Underdetermined.
type Solution interface {
	Kind() string
	solution()
}

// Binding assigns a value to one symbol.
type Binding struct {
	Symbol string
	Value  Value
}

// Branch is one solution point, ordered by symbol name.
type Branch []Binding

func (b Branch) String() string {
	parts := make([]string, len(b))
	for i, bind := range b {
		parts[i] = bind.Symbol + " = " + bind.Value.String()
	}
	return strings.Join(parts, ", ")
}

// Lookup returns the value bound to symbol.
func (b Branch) Lookup(symbol string) (Value, bool) {
	for _, bind := range b {
		if bind.Symbol == symbol {
			return bind.Value, true
		}
	}
	return Value{}, false
}

func newBranch(binds ...Binding) Branch {
	b := Branch(binds)
	sort.Slice(b, func(i, j int) bool { return b[i].Symbol < b[j].Symbol })
	return b
}

// Exact holds branches whose values all have exact forms.
type Exact struct{ Branches []Branch }

// Numeric holds branches where at least one value is only approximate.
type Numeric struct{ Branches []Branch }

// Inconsistent means no assignment satisfies the input.
type Inconsistent struct{}

// Assignment expresses a dependent symbol in terms of free ones.
type Assignment struct {
	Symbol string
	Expr   Expr
}

func (a Assignment) String() string { return a.Symbol + " = " + a.Expr.String() }

// Underdetermined describes a solution family: every choice of the Free
// symbols yields a solution through one of the Families.
type Underdetermined struct {
	Free     []string
	Families [][]Assignment
}

func (*Exact) Kind() string           { return "exact" }
func (*Numeric) Kind() string         { return "numeric" }
func (*Inconsistent) Kind() string    { return "inconsistent" }
func (*Underdetermined) Kind() string { return "underdetermined" }

func (*Exact) solution()           {}
func (*Numeric) solution()         {}
func (*Inconsistent) solution()    {}
func (*Underdetermined) solution() {}

// branchSolution picks Exact when every value is exact.
func branchSolution(branches []Branch) Solution {
	for _, b := range branches {
		for _, bind := range b {
			if !bind.Value.IsExact() {
				return &Numeric{Branches: branches}
			}
		}
	}
	if len(branches) == 0 {
		return &Numeric{}
	}
	return &Exact{Branches: branches}
}

// Branches returns the solution points of an Exact or Numeric solution.
func Branches(s Solution) []Branch {
	switch v := s.(type) {
	case *Exact:
		return v.Branches
	case *Numeric:
		return v.Branches
	}
	return nil
}

// rootsOf lists the values bound to symbol across branches.
func rootsOf(s Solution, symbol string) []Value {
	var out []Value
	for _, b := range Branches(s) {
		if v, ok := b.Lookup(symbol); ok {
			out = append(out, v)
		}
	}
	return out
}

func singleVarSolution(symbol string, roots []Value) Solution {
	branches := make([]Branch, len(roots))
	for i, r := range roots {
		branches[i] = newBranch(Binding{Symbol: symbol, Value: r})
	}
	return branchSolution(branches)
}
