package gosolve

import "fmt"

// Path is the solver branch chosen for a system.
type Path int

const (
	PathSingle Path = iota + 1
	PathSystem
	PathInequality
)

func (p Path) String() string {
	switch p {
	case PathSingle:
		return "single"
	case PathSystem:
		return "system"
	case PathInequality:
		return "inequality"
	}
	return "unknown"
}

// Classify picks the solver path for sys.
func Classify(sys *System) (Path, error) {
	switch {
	case len(sys.Equations) == 0 && len(sys.Inequalities) == 0:
		return 0, ErrNoValidInput
	case len(sys.Equations) == 0:
		return PathInequality, nil
	case len(sys.Equations) == 1 && len(sys.Symbols) == 1:
		return PathSingle, nil
	}
	return PathSystem, nil
}

// Outcome collects the intermediate results of one solve. Err is set when
// the request failed; the other fields then hold whatever was computed
// before the failure.
type Outcome struct {
	Path     Path
	Variable string

	// Combined is lhs - rhs; Expanded and Factored follow from it. For a
	// rational function Expanded is the cleared numerator.
	Combined, Expanded, Factored Expr
	// Conditions are denominators that must stay nonzero.
	Conditions []Expr
	// Relation is set when a single inequality was simplified.
	Relation Relation

	Degree    int
	Quadratic *QuadraticDetail
	Solution  Solution
	Intervals IntervalSet
	Err       error
}

// Roots lists the values of the single variable across branches.
func (o *Outcome) Roots() []Value { return rootsOf(o.Solution, o.Variable) }

// Solve runs the solver path chosen by Classify. It never panics on valid
// systems; failures are reported through Outcome.Err.
func Solve(sys *System, opts Options) *Outcome {
	opts = opts.withDefaults()
	path, err := Classify(sys)
	if err != nil {
		return &Outcome{Err: err}
	}
	var out *Outcome
	switch path {
	case PathSingle:
		out = solveSingle(sys.Equations[0].Residual(), sys.Symbols[0], opts)
	case PathSystem:
		out = solveEquations(sys.Equations, opts)
	case PathInequality:
		out = inequalityOutcome(sys.Inequalities)
	}
	out.Path = path
	if out.Err == nil && path != PathInequality && len(sys.Inequalities) > 0 {
		out.Solution = filterSolution(out.Solution, sys.Inequalities)
	}
	return out
}

// solveSingle solves combined = 0 for name.
func solveSingle(combined Expr, name string, opts Options) *Outcome {
	out := &Outcome{Variable: name, Combined: combined}
	out.Expanded = Expand(combined)

	target := out.Expanded
	p, ok := polyFromExpr(target, name)
	if !ok {
		if cleared, dens, ok2 := clearDenominators(target, name); ok2 {
			if cp, ok3 := polyFromExpr(cleared, name); ok3 {
				target, p, ok = cleared, cp, true
				out.Expanded = cleared
				out.Conditions = dens
			}
		}
	}
	out.Factored = Factor(out.Expanded)

	if !ok {
		out.Degree = -1
		roots := scanRoots(func(x float64) (float64, error) {
			return target.Evalf(map[string]float64{name: x})
		}, opts.RootSearchMin, opts.RootSearchMax, opts.ScanPoints)
		vals := make([]Value, len(roots))
		for i, r := range roots {
			vals[i] = numericValue(complex(r, 0))
		}
		out.Solution = singleVarSolution(name, vals)
		return out
	}

	out.Degree = p.degree()
	if out.Degree == 0 {
		if p.coeffs[0].IsZero() {
			out.Solution = &Underdetermined{Free: []string{name}}
		} else {
			out.Solution = &Inconsistent{}
		}
		return out
	}

	roots, detail, err := polyRoots(p, opts)
	if err != nil {
		out.Err = solveErrorf("solve "+name, err)
		return out
	}
	out.Quadratic = detail
	if !p.isExact() && p.degree() <= 2 && !containsApprox(target) {
		if exact, ok := symbolicRoots(target, name); ok {
			roots = exact
		}
	}
	if len(out.Conditions) > 0 {
		kept := roots[:0:0]
		for _, r := range roots {
			if !hitsCondition(out.Conditions, name, r) {
				kept = append(kept, r)
			}
		}
		roots = kept
		if len(roots) == 0 {
			out.Solution = &Inconsistent{}
			return out
		}
	}
	out.Solution = singleVarSolution(name, roots)
	return out
}

func hitsCondition(conds []Expr, name string, v Value) bool {
	for _, c := range conds {
		if vanishesAt(c, name, v) {
			return true
		}
	}
	return false
}

func inequalityOutcome(qs []*Inequality) *Outcome {
	out := &Outcome{}
	if len(qs) == 1 {
		out.Combined = qs[0].Residual()
		out.Expanded = Expand(out.Combined)
		out.Factored = Factor(out.Expanded)
		out.Relation = qs[0].Op
	}
	name, set, err := solveInequalities(qs)
	if err != nil {
		out.Err = err
		return out
	}
	out.Variable = name
	out.Intervals = set
	if len(qs) == 1 {
		if p, ok := polyFromExpr(out.Expanded, name); ok {
			out.Degree = p.degree()
			if p.degree() == 2 {
				_, out.Quadratic = quadraticRoots(p)
			}
		}
	}
	return out
}

// filterSolution keeps the branches that satisfy every inequality.
func filterSolution(s Solution, qs []*Inequality) Solution {
	branches := Branches(s)
	if branches == nil {
		return s
	}
	kept := make([]Branch, 0, len(branches))
	for _, b := range branches {
		ok := true
		for _, q := range qs {
			if !holdsAt(q, b) {
				ok = false
				break
			}
		}
		if ok {
			kept = append(kept, b)
		}
	}
	if len(kept) == 0 {
		return &Inconsistent{}
	}
	return branchSolution(kept)
}

// describe summarizes an outcome for logs.
func (o *Outcome) describe() string {
	if o.Err != nil {
		return "error"
	}
	if o.Solution != nil {
		return o.Solution.Kind()
	}
	return fmt.Sprintf("intervals(%d)", len(o.Intervals))
}
