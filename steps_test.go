package gosolve_test

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/njchilds90/gosolve"
)

func views(t *testing.T, input string) []gosolve.StepView {
	t.Helper()
	engine := gosolve.NewEngine(gosolve.DefaultOptions(), nil)
	return engine.Solve(input).Views(engine.Options().SignificantDigits)
}

func TestSteps_Quadratic(t *testing.T) {
	want := []gosolve.StepView{
		{Kind: "GivenEquation", LHS: "x^2 - 4", RHS: "0", Relation: "="},
		{Kind: "Simplified", Before: "x^2 - 4", After: "x^2 - 4", Variable: "x"},
		{Kind: "Factored", Before: "x^2 - 4", After: "(x + 2)*(x - 2)", Variable: "x"},
		{Kind: "QuadraticDetail", A: "1", B: "0", C: "-4", D: "16", Variable: "x"},
		{Kind: "Solved", Variable: "x", Status: "exact", Roots: []gosolve.ValueView{
			{Exact: "2", Approx: "2.0000", Real: true},
			{Exact: "-2", Approx: "-2.0000", Real: true},
		}},
	}
	if diff := cmp.Diff(want, views(t, "x^2 - 4 = 0")); diff != "" {
		t.Errorf("steps mismatch (-want +got):\n%s", diff)
	}
}

func TestSteps_NoFactoredStepWhenIrreducible(t *testing.T) {
	got := views(t, "x^2 + 1 = 0")
	kinds := make([]string, len(got))
	for i, v := range got {
		kinds[i] = v.Kind
	}
	assert.Equal(t, []string{"GivenEquation", "Simplified", "QuadraticDetail", "Solved"}, kinds)

	last := got[len(got)-1]
	want := []gosolve.ValueView{
		{Exact: "0 + i", Approx: "0 + 1.0000i"},
		{Exact: "0 - i", Approx: "0 - 1.0000i"},
	}
	if diff := cmp.Diff(want, last.Roots); diff != "" {
		t.Errorf("roots mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, "x = 0 + i ≈ 0 + 1.0000i, x = 0 - i ≈ 0 - 1.0000i", last.Summary())
}

func TestSteps_NumericRoots(t *testing.T) {
	got := views(t, "x^5 - x - 1 = 0")
	last := got[len(got)-1]
	assert.Equal(t, "NumericRoots", last.Kind)
	assert.Equal(t, "numeric", last.Status)
	for _, r := range last.Roots {
		assert.Empty(t, r.Exact)
	}
}

func TestSteps_RationalConditions(t *testing.T) {
	got := views(t, "1/x = 2")
	require.GreaterOrEqual(t, len(got), 3)
	assert.Equal(t, "Simplified", got[1].Kind)
	assert.Equal(t, "-2*x + 1", got[1].After)
	assert.Equal(t, []string{"x"}, got[1].Conditions)
	assert.Equal(t, "x = 1/2 ≈ 0.50000", got[len(got)-1].Summary())
}

func TestSteps_System(t *testing.T) {
	want := []gosolve.StepView{
		{Kind: "GivenEquation", LHS: "x + y", RHS: "2", Relation: "="},
		{Kind: "GivenEquation", LHS: "x - y", RHS: "0", Relation: "="},
		{Kind: "SystemSolution", Status: "exact", Branches: [][]gosolve.BindingView{{
			{Symbol: "x", Value: gosolve.ValueView{Exact: "1", Approx: "1.0000", Real: true}},
			{Symbol: "y", Value: gosolve.ValueView{Exact: "1", Approx: "1.0000", Real: true}},
		}}},
	}
	got := views(t, "x + y = 2, x - y = 0")
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("steps mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, "{x = 1, y = 1}", got[2].Summary())
}

func TestSteps_Underdetermined(t *testing.T) {
	got := views(t, "x + y = 2")
	last := got[len(got)-1]
	assert.Equal(t, "underdetermined", last.Status)
	assert.Equal(t, []string{"y"}, last.Free)
	assert.Equal(t, "x = -y + 2 for any y", last.Summary())

	got = views(t, "x = x")
	assert.Equal(t, "every x is a solution", got[len(got)-1].Summary())
}

func TestSteps_Inequality(t *testing.T) {
	got := views(t, "x^2 < 4")
	require.NotEmpty(t, got)
	assert.Equal(t, "x^2", got[0].LHS)
	assert.Equal(t, "<", got[0].Relation)
	assert.Equal(t, "<", got[1].Relation)

	last := got[len(got)-1]
	assert.Equal(t, "Solved", last.Kind)
	assert.Equal(t, "(-2, 2)", last.Intervals)
	assert.Equal(t, "x in (-2, 2)", last.Summary())
}

func TestSteps_Summaries(t *testing.T) {
	for _, in := range []string{"x = x + 1", "x + y = 2, 2x + 2y = 5", "x/(x - 1) = 1/(x - 1)"} {
		got := views(t, in)
		assert.Equal(t, "no solution", got[len(got)-1].Summary(), in)
	}
}

func TestSteps_ErrorIsSingleStep(t *testing.T) {
	for _, in := range []string{"x = = 1", "2 +", "1 = 1"} {
		got := views(t, in)
		require.Len(t, got, 1, in)
		assert.Equal(t, "Error", got[0].Kind)
		assert.NotEmpty(t, got[0].Error)
		assert.Contains(t, got[0].Summary(), "Error: ")
	}
}

func TestStep_MarshalJSON(t *testing.T) {
	engine := gosolve.NewEngine(gosolve.DefaultOptions(), nil)
	report := engine.Solve("2x = 4")
	require.NoError(t, report.Err())

	b, err := json.Marshal(report.Steps)
	require.NoError(t, err)

	var decoded []gosolve.StepView
	require.NoError(t, json.Unmarshal(b, &decoded))
	if diff := cmp.Diff(report.Views(gosolve.DefaultSignificantDigits), decoded); diff != "" {
		t.Errorf("json mismatch (-want +got):\n%s", diff)
	}
}

func TestStepKind_String(t *testing.T) {
	assert.Equal(t, "QuadraticDetail", gosolve.StepQuadraticDetail.String())
	assert.Equal(t, "Unknown", gosolve.StepKind(99).String())
}

func TestSteps_StableAcrossRuns(t *testing.T) {
	for _, in := range []string{
		"z + y + x = 3, x - y = 0, y - z = 0",
		"x^2 + y^2 = 25, x - y = 1",
		"x^2 - 5x + 6 = 0",
		"x^5 - x - 1 = 0",
	} {
		t.Run(in, func(t *testing.T) {
			first := views(t, in)
			require.NotEmpty(t, first)
			assert.NotEqual(t, "Error", first[len(first)-1].Kind)
			for run := 1; run < 20; run++ {
				if diff := cmp.Diff(first, views(t, in)); diff != "" {
					t.Fatalf("run %d differs (-first +got):\n%s", run, diff)
				}
			}
		})
	}
}

func TestSteps_ThreeVariableSystem(t *testing.T) {
	got := views(t, "z + y + x = 3, x - y = 0, y - z = 0")
	assert.Equal(t, "{x = 1, y = 1, z = 1}", got[len(got)-1].Summary())
}
