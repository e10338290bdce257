package gosolve_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/njchilds90/gosolve"
)

func TestExpand(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"(x + 1)^2", "x^2 + 2*x + 1"},
		{"(x + 2)*(x - 2)", "x^2 - 4"},
		{"2*(x + 1)", "2*x + 2"},
		{"(x - 1)^3", "x^3 - 3*x^2 + 3*x - 1"},
		{"x*(x + 1) - x^2", "x"},
		{"(x - 1)^2*(x + 1)", "x^3 - x^2 - x + 1"},
		{"(x + 1)^1", "x + 1"},
		{"(x + 1)^20", "(x + 1)^20"},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			assert.Equal(t, tc.want, gosolve.Expand(mustParse(t, tc.in)).String())
		})
	}
}

func TestExpand_PowerOfSumTerminates(t *testing.T) {
	// Each power of a sum reached through Expand must distribute fully
	// instead of folding back into a power.
	for _, in := range []string{"(x + 1)^2", "(x - 1)^2", "(2x + 3)^4", "(x^2 + x + 1)^3"} {
		t.Run(in, func(t *testing.T) {
			got := gosolve.Expand(mustParse(t, in))
			_, isPow := got.(*gosolve.Pow)
			assert.False(t, isPow, "got %s", got)
			assert.True(t, gosolve.Expand(got).Equal(got), "expand is not idempotent on %s", got)
		})
	}

	x4, err := gosolve.Parse("(2x + 3)^4")
	require.NoError(t, err)
	assert.Equal(t, "16*x^4 + 96*x^3 + 216*x^2 + 216*x + 81", gosolve.Expand(x4).String())
}

func TestFactor(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"x^2 - 4", "(x + 2)*(x - 2)"},
		{"x^2 - 2x + 1", "(x - 1)^2"},
		{"x^2 + 3x + 2", "(x + 1)*(x + 2)"},
		{"2x^2 - 8", "2*(x + 2)*(x - 2)"},
		{"x^4 - 5x^2 + 4", "(x + 1)*(x + 2)*(x - 1)*(x - 2)"},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			assert.Equal(t, tc.want, gosolve.Factor(mustParse(t, tc.in)).String())
		})
	}
}

func TestFactor_LeavesIrreducibleUnchanged(t *testing.T) {
	for _, in := range []string{"x^2 - 2", "x^2 + 1", "x + 1", "x^2 + y", "sin(x) + 1"} {
		e := mustParse(t, in)
		assert.True(t, gosolve.Factor(e).Equal(e), in)
	}
}

func TestFactorPoly_Result(t *testing.T) {
	r := gosolve.FactorPoly(mustParse(t, "x^2 - 2"), "x")
	assert.False(t, r.Success)
	require.Len(t, r.Factors, 1)

	r = gosolve.FactorPoly(mustParse(t, "x^3 - 3x + 2"), "x")
	require.True(t, r.Success)
	assert.Len(t, r.Factors, 3)
}

func TestFactor_ExpandRoundTrip(t *testing.T) {
	for _, in := range []string{
		"x^2 - 4",
		"2x^2 - 8",
		"x^3 - 3x + 2",
		"x^4 - 5x^2 + 4",
		"6x^2 - 5x + 1",
		"x^4 + 4",
	} {
		e := gosolve.Expand(mustParse(t, in))
		assert.True(t, gosolve.Expand(gosolve.Factor(e)).Equal(e), in)
	}
}
