package gosolve_test

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/njchilds90/gosolve"
)

func solve(t *testing.T, input string) *gosolve.Outcome {
	t.Helper()
	sys, err := gosolve.ParseInput(input)
	require.NoError(t, err)
	return gosolve.Solve(sys, gosolve.DefaultOptions())
}

func exactStrings(t *testing.T, vs []gosolve.Value) []string {
	t.Helper()
	out := make([]string, len(vs))
	for i, v := range vs {
		require.True(t, v.IsExact(), "root %d is not exact", i)
		out[i] = v.String()
	}
	return out
}

func realRoots(vs []gosolve.Value) []float64 {
	var out []float64
	for _, v := range vs {
		if v.IsReal() {
			out = append(out, v.Real())
		}
	}
	return out
}

// ============================================================
// Classification
// ============================================================

func TestClassify(t *testing.T) {
	cases := []struct {
		in   string
		want gosolve.Path
	}{
		{"x^2 = 4", gosolve.PathSingle},
		{"x^2 = 4, x > 0", gosolve.PathSingle},
		{"x + y = 2", gosolve.PathSystem},
		{"x + y = 2, x - y = 0", gosolve.PathSystem},
		{"x^2 < 4", gosolve.PathInequality},
	}
	for _, tc := range cases {
		sys, err := gosolve.ParseInput(tc.in)
		require.NoError(t, err)
		path, err := gosolve.Classify(sys)
		require.NoError(t, err)
		assert.Equal(t, tc.want, path, tc.in)
	}
}

func TestSolve_NoValidInput(t *testing.T) {
	out := solve(t, "1 = 1, 2 = 2")
	assert.True(t, errors.Is(out.Err, gosolve.ErrNoValidInput))
}

// ============================================================
// Single equations
// ============================================================

func TestSolve_Linear(t *testing.T) {
	out := solve(t, "2x + 3 = 7")
	require.NoError(t, out.Err)
	assert.Equal(t, 1, out.Degree)
	assert.Equal(t, []string{"2"}, exactStrings(t, out.Roots()))
}

func TestSolve_Quadratic(t *testing.T) {
	out := solve(t, "x^2 - 4 = 0")
	require.NoError(t, out.Err)
	assert.Equal(t, gosolve.PathSingle, out.Path)
	assert.Equal(t, "x", out.Variable)
	assert.Equal(t, 2, out.Degree)
	assert.Equal(t, "(x + 2)*(x - 2)", out.Factored.String())
	require.NotNil(t, out.Quadratic)
	assert.Equal(t, "16", out.Quadratic.D.String())
	assert.IsType(t, &gosolve.Exact{}, out.Solution)
	assert.Equal(t, []string{"2", "-2"}, exactStrings(t, out.Roots()))
}

func TestSolve_QuadraticDoubleRoot(t *testing.T) {
	out := solve(t, "x^2 - 2x + 1 = 0")
	require.NoError(t, out.Err)
	assert.Equal(t, "0", out.Quadratic.D.String())
	assert.Equal(t, "(x - 1)^2", out.Factored.String())
	assert.Equal(t, []string{"1"}, exactStrings(t, out.Roots()))
}

func TestSolve_QuadraticIrrational(t *testing.T) {
	out := solve(t, "x^2 = 2")
	require.NoError(t, out.Err)
	roots := out.Roots()
	require.Len(t, roots, 2)
	assert.Equal(t, "sqrt(2)", roots[0].String())
	assert.Equal(t, "-sqrt(2)", roots[1].String())
	assert.InDelta(t, math.Sqrt2, roots[0].Real(), 1e-12)
}

func TestSolve_QuadraticComplex(t *testing.T) {
	out := solve(t, "x^2 + 1 = 0")
	require.NoError(t, out.Err)
	roots := out.Roots()
	require.Len(t, roots, 2)
	assert.Equal(t, "0 + i", roots[0].String())
	assert.Equal(t, "0 - i", roots[1].String())
	assert.False(t, roots[0].IsReal())
	assert.Equal(t, "0 + 1.0000i", roots[0].ApproxString(5))
	assert.Equal(t, out.Expanded.String(), out.Factored.String())
}

func TestSolve_IrrationalCoefficients(t *testing.T) {
	cases := []struct {
		in   string
		want []string
	}{
		{"sqrt3 x = 3", []string{"sqrt(3)"}},
		{"2sqrt3 = x", []string{"2*sqrt(3)"}},
		{"x = sqrt(2) + 1", []string{"sqrt(2) + 1"}},
		{"x^2 - 2sqrt3 x + 3 = 0", []string{"sqrt(3)"}},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			out := solve(t, tc.in)
			require.NoError(t, out.Err)
			assert.IsType(t, &gosolve.Exact{}, out.Solution)
			assert.Equal(t, tc.want, exactStrings(t, out.Roots()))
		})
	}
}

func TestSolve_IrrationalCoefficientsComplex(t *testing.T) {
	out := solve(t, "x^2 + sqrt3 = 0")
	require.NoError(t, out.Err)
	roots := out.Roots()
	require.Len(t, roots, 2)
	fourthRoot3 := math.Pow(3, 0.25)
	for i, sign := range []float64{1, -1} {
		assert.True(t, roots[i].IsExact())
		assert.False(t, roots[i].IsReal())
		assert.InDelta(t, 0, real(roots[i].Approx), 1e-12)
		assert.InDelta(t, sign*fourthRoot3, imag(roots[i].Approx), 1e-9)
	}
}

func TestSolve_HigherDegreeRational(t *testing.T) {
	out := solve(t, "x^4 - 5x^2 + 4 = 0")
	require.NoError(t, out.Err)
	assert.IsType(t, &gosolve.Exact{}, out.Solution)
	assert.Equal(t, []string{"-2", "-1", "1", "2"}, exactStrings(t, out.Roots()))
}

func TestSolve_RepeatedRootReportedOnce(t *testing.T) {
	out := solve(t, "x^3 - 3x + 2 = 0")
	require.NoError(t, out.Err)
	assert.Equal(t, []string{"-2", "1"}, exactStrings(t, out.Roots()))
}

func TestSolve_CubicWithoutRationalRoot(t *testing.T) {
	out := solve(t, "x^3 = 2")
	require.NoError(t, out.Err)
	assert.IsType(t, &gosolve.Numeric{}, out.Solution)
	roots := out.Roots()
	require.Len(t, roots, 3)
	reals := realRoots(roots)
	require.Len(t, reals, 1)
	assert.InDelta(t, 1.25992, reals[0], 1e-5)
}

func TestSolve_Quintic(t *testing.T) {
	out := solve(t, "x^5 - x - 1 = 0")
	require.NoError(t, out.Err)
	assert.IsType(t, &gosolve.Numeric{}, out.Solution)
	roots := out.Roots()
	assert.Len(t, roots, 5)
	reals := realRoots(roots)
	require.Len(t, reals, 1)
	assert.InDelta(t, 1.1673, reals[0], 1e-4)
}

func TestSolve_NumericConjugatesListPlusFirst(t *testing.T) {
	out := solve(t, "x^5 - 2.0 = 0")
	require.NoError(t, out.Err)
	roots := out.Roots()
	require.Len(t, roots, 5)
	pairs := 0
	for i := 0; i+1 < len(roots); i++ {
		a, b := roots[i].Approx, roots[i+1].Approx
		if math.Abs(real(a)-real(b)) < 1e-9 {
			pairs++
			assert.Greater(t, imag(a), 0.0, "root %d", i)
			assert.Less(t, imag(b), 0.0, "root %d", i+1)
		}
	}
	assert.Equal(t, 2, pairs)
}

func TestSolve_NonPolynomial(t *testing.T) {
	out := solve(t, "exp(x) = 2")
	require.NoError(t, out.Err)
	assert.Equal(t, -1, out.Degree)
	roots := out.Roots()
	require.Len(t, roots, 1)
	assert.False(t, roots[0].IsExact())
	assert.InDelta(t, math.Ln2, roots[0].Real(), 1e-9)
}

func TestSolve_RationalEquation(t *testing.T) {
	out := solve(t, "1/x = 2")
	require.NoError(t, out.Err)
	assert.Equal(t, "-2*x + 1", out.Expanded.String())
	require.Len(t, out.Conditions, 1)
	assert.Equal(t, "x", out.Conditions[0].String())
	assert.Equal(t, []string{"1/2"}, exactStrings(t, out.Roots()))
}

func TestSolve_ExcludedRootIsInconsistent(t *testing.T) {
	out := solve(t, "x/(x - 1) = 1/(x - 1)")
	require.NoError(t, out.Err)
	assert.IsType(t, &gosolve.Inconsistent{}, out.Solution)
}

func TestSolve_IdentityAndContradiction(t *testing.T) {
	out := solve(t, "x = x")
	require.NoError(t, out.Err)
	u, ok := out.Solution.(*gosolve.Underdetermined)
	require.True(t, ok)
	assert.Equal(t, []string{"x"}, u.Free)

	out = solve(t, "x = x + 1")
	require.NoError(t, out.Err)
	assert.IsType(t, &gosolve.Inconsistent{}, out.Solution)
}

func TestSolve_EquationFilteredByInequality(t *testing.T) {
	out := solve(t, "x^2 = 4, x > 0")
	require.NoError(t, out.Err)
	assert.Equal(t, []string{"2"}, exactStrings(t, out.Roots()))

	out = solve(t, "x^2 = 4, x > 5")
	require.NoError(t, out.Err)
	assert.IsType(t, &gosolve.Inconsistent{}, out.Solution)
}

func TestSolve_DidNotConverge(t *testing.T) {
	sys, err := gosolve.ParseInput("x^5 - x - 1 = 0")
	require.NoError(t, err)
	opts := gosolve.DefaultOptions()
	opts.MaxIterations = 1
	out := gosolve.Solve(sys, opts)
	require.Error(t, out.Err)
	assert.True(t, errors.Is(out.Err, gosolve.ErrDidNotConverge))
}

// ============================================================
// Systems
// ============================================================

func TestSolve_LinearSystem(t *testing.T) {
	out := solve(t, "x + y = 2, x - y = 0")
	require.NoError(t, out.Err)
	assert.Equal(t, gosolve.PathSystem, out.Path)
	branches := gosolve.Branches(out.Solution)
	require.Len(t, branches, 1)
	assert.Equal(t, "x = 1, y = 1", branches[0].String())
}

func TestSolve_InconsistentSystem(t *testing.T) {
	out := solve(t, "x + y = 2, 2x + 2y = 5")
	require.NoError(t, out.Err)
	assert.IsType(t, &gosolve.Inconsistent{}, out.Solution)
}

func TestSolve_UnderdeterminedSystem(t *testing.T) {
	out := solve(t, "x + y = 2")
	require.NoError(t, out.Err)
	u, ok := out.Solution.(*gosolve.Underdetermined)
	require.True(t, ok)
	assert.Equal(t, []string{"y"}, u.Free)
	require.Len(t, u.Families, 1)
	require.Len(t, u.Families[0], 1)
	assert.Equal(t, "x = -y + 2", u.Families[0][0].String())
}

func TestSolve_NonlinearSystem(t *testing.T) {
	out := solve(t, "x^2 + y^2 = 25, x - y = 1")
	require.NoError(t, out.Err)
	branches := gosolve.Branches(out.Solution)
	require.Len(t, branches, 2)

	got := map[string]bool{}
	for _, b := range branches {
		got[b.String()] = true
	}
	assert.True(t, got["x = 4, y = 3"], "%v", got)
	assert.True(t, got["x = -3, y = -4"], "%v", got)
}

// ============================================================
// Inequalities
// ============================================================

func TestSolve_Inequalities(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"x^2 < 4", "(-2, 2)"},
		{"x^2 <= 4", "[-2, 2]"},
		{"x^2 > 4", "(-oo, -2) U (2, oo)"},
		{"x^2 + 1 > 0", "(-oo, oo)"},
		{"x^2 < 0", "EmptySet"},
		{"0 < x < 2", "(0, 2)"},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			out := solve(t, tc.in)
			require.NoError(t, out.Err)
			assert.Equal(t, gosolve.PathInequality, out.Path)
			assert.Equal(t, "x", out.Variable)
			assert.Equal(t, tc.want, out.Intervals.String())
		})
	}
}

func TestIntervalSet_Contains(t *testing.T) {
	out := solve(t, "x^2 > 4")
	require.NoError(t, out.Err)
	assert.True(t, out.Intervals.Contains(-3))
	assert.False(t, out.Intervals.Contains(0))
	assert.False(t, out.Intervals.Contains(2))
	assert.True(t, out.Intervals.Contains(10))
}

func TestRelation_Holds(t *testing.T) {
	assert.True(t, gosolve.Less.Holds(-1))
	assert.False(t, gosolve.Less.Holds(0))
	assert.True(t, gosolve.LessEqual.Holds(0))
	assert.True(t, gosolve.GreaterEqual.Holds(0))
	assert.False(t, gosolve.Greater.Holds(0))
	assert.True(t, gosolve.Greater.Strict())
	assert.False(t, gosolve.GreaterEqual.Strict())
}

func TestSolve_UnsupportedInequality(t *testing.T) {
	for _, in := range []string{"x*y > 0", "sin(x) > 0"} {
		out := solve(t, in)
		require.Error(t, out.Err, in)
		assert.True(t, errors.Is(out.Err, gosolve.ErrUnsupportedInequality), in)
	}
}
