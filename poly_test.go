package gosolve

import (
	"math"
	"math/cmplx"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ints(cs ...int64) poly {
	coeffs := make([]*Num, len(cs))
	for i, c := range cs {
		coeffs[i] = N(c)
	}
	return poly{coeffs: coeffs}.trim()
}

func ratStrings(ns []*Num) []string {
	out := make([]string, len(ns))
	for i, n := range ns {
		out[i] = n.String()
	}
	return out
}

func TestPolyFromExpr(t *testing.T) {
	x := S("x")
	p, ok := polyFromExpr(AddOf(PowOf(x, N(2)), MulOf(N(-3), x), N(2)), "x")
	require.True(t, ok)
	assert.Equal(t, 2, p.degree())
	assert.Equal(t, []string{"2", "-3", "1"}, ratStrings(p.coeffs))

	p, ok = polyFromExpr(AddOf(x, SqrtOf(N(2))), "x")
	require.True(t, ok)
	assert.False(t, p.isExact())

	_, ok = polyFromExpr(AddOf(x, S("y")), "x")
	assert.False(t, ok)
	_, ok = polyFromExpr(PowOf(x, N(-1)), "x")
	assert.False(t, ok)
}

func TestRationalRoots(t *testing.T) {
	roots, rest := ints(2, -3, 0, 1).rationalRoots() // x^3 - 3x + 2
	assert.Equal(t, []string{"-2", "1", "1"}, ratStrings(roots))
	assert.Equal(t, 0, rest.degree())

	roots, rest = ints(-1, 0, 6, -5).rationalRoots() // -5x^3 + 6x^2 - 1 = -(x - 1)(5x^2 - x - 1)
	assert.Equal(t, []string{"1"}, ratStrings(roots))
	assert.Equal(t, 2, rest.degree())

	roots, _ = ints(0, 0, -1, 1).rationalRoots() // x^3 - x^2
	assert.Equal(t, []string{"0", "0", "1"}, ratStrings(roots))

	roots, rest = ints(-2, 0, 1).rationalRoots()
	assert.Empty(t, roots)
	assert.Equal(t, 2, rest.degree())
}

func TestSquareFree(t *testing.T) {
	// (x - 1)^2 (x + 2) = x^3 - 3x + 2
	sf := ints(2, -3, 0, 1).squareFree()
	assert.Equal(t, 2, sf.degree())
	assert.True(t, sf.eval(N(1)).IsZero())
	assert.True(t, sf.eval(N(-2)).IsZero())

	p := ints(-2, 0, 1)
	assert.Equal(t, p.coeffs, p.squareFree().coeffs)
}

func TestDivmod(t *testing.T) {
	q, r := ints(-4, 0, 1).divmod(ints(-2, 1))
	assert.Equal(t, []string{"2", "1"}, ratStrings(q.coeffs))
	assert.True(t, r.isZero())

	q, r = ints(1, 0, 1).divmod(ints(1, 1))
	assert.Equal(t, []string{"-1", "1"}, ratStrings(q.coeffs))
	assert.Equal(t, []string{"2"}, ratStrings(r.coeffs))
}

func TestIntegerize(t *testing.T) {
	p := poly{coeffs: []*Num{F(1, 2), F(-3, 4)}}
	content, prim := p.integerize()
	assert.Equal(t, "-1/4", content.String()) // -1/4 * (-2 + 3x) = 1/2 - 3x/4
	require.Len(t, prim, 2)
	assert.Equal(t, int64(-2), prim[0].Int64())
	assert.Equal(t, int64(3), prim[1].Int64())
}

func TestCardano(t *testing.T) {
	zs := cardano([]float64{-2, 0, 0, 1}) // x^3 - 2
	require.Len(t, zs, 3)
	var reals []float64
	for _, z := range zs {
		assert.InDelta(t, 0, cmplx.Abs(z*z*z-2), 1e-9)
		if math.Abs(imag(z)) < 1e-12 {
			reals = append(reals, real(z))
		}
	}
	require.Len(t, reals, 1)
	assert.InDelta(t, math.Cbrt(2), reals[0], 1e-12)

	// Three real roots: (x - 1)(x - 2)(x - 3).
	zs = cardano([]float64{-6, 11, -6, 1})
	require.Len(t, zs, 3)
	for _, z := range zs {
		assert.InDelta(t, 0, imag(z), 1e-12)
		assert.InDelta(t, 0, cmplx.Abs(ints(-6, 11, -6, 1).evalComplex(z)), 1e-9)
	}
}

func TestDurandKerner(t *testing.T) {
	p := ints(-1, -1, 0, 0, 0, 1) // x^5 - x - 1
	zs, err := durandKerner(p, DefaultOptions())
	require.NoError(t, err)
	require.Len(t, zs, 5)

	reals := 0
	for _, z := range zs {
		assert.InDelta(t, 0, cmplx.Abs(p.evalComplex(z)), 1e-8)
		if imag(z) == 0 {
			reals++
			assert.InDelta(t, 1.1673, real(z), 1e-4)
		}
	}
	assert.Equal(t, 1, reals)
}

func TestCombineRoots_Dedupes(t *testing.T) {
	roots, rest := ints(2, -3, 0, 1).rationalRoots()
	vs, err := combineRoots(roots, rest, DefaultOptions())
	require.NoError(t, err)
	require.Len(t, vs, 2)
	assert.Equal(t, "-2", vs[0].String())
	assert.Equal(t, "1", vs[1].String())
}

func TestScanRoots_SkipsPoles(t *testing.T) {
	// tan changes sign across its poles without crossing zero there.
	f := func(v float64) (float64, error) { return math.Tan(v), nil }
	roots := scanRoots(f, -2, 2, 400)
	require.Len(t, roots, 1)
	assert.InDelta(t, 0, roots[0], 1e-9)
}

func TestClearDenominators(t *testing.T) {
	x := S("x")
	e := AddOf(PowOf(x, N(-1)), N(-2))
	cleared, dens, ok := clearDenominators(e, "x")
	require.True(t, ok)
	assert.Equal(t, "-2*x + 1", cleared.String())
	require.Len(t, dens, 1)
	assert.Equal(t, "x", dens[0].String())

	_, _, ok = clearDenominators(AddOf(x, N(1)), "x")
	assert.False(t, ok)
}

func TestSortValues_ConjugatesPlusFirst(t *testing.T) {
	re := -0.92932
	vs := []Value{
		numericValue(complex(re, -0.67519)),
		numericValue(complex(math.Nextafter(re, 0), 0.67519)),
		numericValue(complex(1.1487, 0)),
		numericValue(complex(-2, 0)),
	}
	sortValues(vs)
	assert.Equal(t, -2.0, real(vs[0].Approx))
	assert.Greater(t, imag(vs[1].Approx), 0.0)
	assert.Less(t, imag(vs[2].Approx), 0.0)
	assert.Equal(t, 1.1487, real(vs[3].Approx))
}
