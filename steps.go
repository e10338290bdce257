package gosolve

import (
	"encoding/json"
	"strconv"
	"strings"
)

// StepKind identifies a solution step.
type StepKind int

const (
	StepGivenEquation StepKind = iota + 1
	StepSimplified
	StepFactored
	StepQuadraticDetail
	StepSolved
	StepNumericRoots
	StepSystemSolution
	StepError
)

var stepKindNames = map[StepKind]string{
	StepGivenEquation:   "GivenEquation",
	StepSimplified:      "Simplified",
	StepFactored:        "Factored",
	StepQuadraticDetail: "QuadraticDetail",
	StepSolved:          "Solved",
	StepNumericRoots:    "NumericRoots",
	StepSystemSolution:  "SystemSolution",
	StepError:           "Error",
}

func (k StepKind) String() string {
	if s, ok := stepKindNames[k]; ok {
		return s
	}
	return "Unknown"
}

// Step is one structured record of the solution. Only the fields relevant
// to Kind are set; nothing in a Step is pre-formatted.
type Step struct {
	Kind StepKind

	// GivenEquation
	Given *Given

	// Simplified (Combined -> Expanded) and Factored (Expanded -> Factored).
	Before, After Expr
	Relation      Relation
	Conditions    []Expr

	Variable  string
	Quadratic *QuadraticDetail

	// Solved, NumericRoots and SystemSolution
	Solution  Solution
	Intervals IntervalSet

	Err error
}

// RenderSteps turns a system and its outcome into the ordered step list:
// the givens, then Simplified, Factored (only when it differs), the
// quadratic detail for degree 2, and finally the solution. A failed
// outcome renders as a single Error step.
func RenderSteps(sys *System, out *Outcome) []Step {
	if out.Err != nil {
		return []Step{{Kind: StepError, Err: out.Err}}
	}
	steps := make([]Step, 0, len(sys.Givens)+5)
	for i := range sys.Givens {
		steps = append(steps, Step{Kind: StepGivenEquation, Given: &sys.Givens[i]})
	}

	if out.Path == PathSystem {
		return append(steps, Step{Kind: StepSystemSolution, Solution: out.Solution})
	}

	if out.Expanded != nil {
		steps = append(steps, Step{
			Kind:       StepSimplified,
			Before:     out.Combined,
			After:      out.Expanded,
			Relation:   out.Relation,
			Conditions: out.Conditions,
			Variable:   out.Variable,
		})
		if out.Factored != nil && !out.Factored.Equal(out.Expanded) {
			steps = append(steps, Step{
				Kind:     StepFactored,
				Before:   out.Expanded,
				After:    out.Factored,
				Relation: out.Relation,
				Variable: out.Variable,
			})
		}
	}
	if out.Degree == 2 && out.Quadratic != nil {
		steps = append(steps, Step{Kind: StepQuadraticDetail, Variable: out.Variable, Quadratic: out.Quadratic})
	}

	if out.Path == PathInequality {
		return append(steps, Step{Kind: StepSolved, Variable: out.Variable, Intervals: out.Intervals})
	}
	kind := StepSolved
	if _, ok := out.Solution.(*Numeric); ok {
		kind = StepNumericRoots
	}
	return append(steps, Step{Kind: kind, Variable: out.Variable, Solution: out.Solution})
}

// ============================================================
// Wire form
// ============================================================

// ValueView is the wire form of a Value.
type ValueView struct {
	Exact  string `json:"exact,omitempty" msgpack:"exact,omitempty"`
	Approx string `json:"approx" msgpack:"approx"`
	Real   bool   `json:"real" msgpack:"real"`
}

// BindingView is the wire form of a Binding.
type BindingView struct {
	Symbol string    `json:"symbol" msgpack:"symbol"`
	Value  ValueView `json:"value" msgpack:"value"`
}

// AssignmentView is the wire form of an Assignment.
type AssignmentView struct {
	Symbol string `json:"symbol" msgpack:"symbol"`
	Expr   string `json:"expr" msgpack:"expr"`
}

// StepView is the serialization of a Step. Approximate values carry the
// requested number of significant digits.
type StepView struct {
	Kind       string             `json:"kind" msgpack:"kind"`
	LHS        string             `json:"lhs,omitempty" msgpack:"lhs,omitempty"`
	RHS        string             `json:"rhs,omitempty" msgpack:"rhs,omitempty"`
	Relation   string             `json:"relation,omitempty" msgpack:"relation,omitempty"`
	Before     string             `json:"before,omitempty" msgpack:"before,omitempty"`
	After      string             `json:"after,omitempty" msgpack:"after,omitempty"`
	Conditions []string           `json:"conditions,omitempty" msgpack:"conditions,omitempty"`
	Variable   string             `json:"variable,omitempty" msgpack:"variable,omitempty"`
	A          string             `json:"a,omitempty" msgpack:"a,omitempty"`
	B          string             `json:"b,omitempty" msgpack:"b,omitempty"`
	C          string             `json:"c,omitempty" msgpack:"c,omitempty"`
	D          string             `json:"d,omitempty" msgpack:"d,omitempty"`
	Status     string             `json:"status,omitempty" msgpack:"status,omitempty"`
	Roots      []ValueView        `json:"roots,omitempty" msgpack:"roots,omitempty"`
	Branches   [][]BindingView    `json:"branches,omitempty" msgpack:"branches,omitempty"`
	Free       []string           `json:"free,omitempty" msgpack:"free,omitempty"`
	Families   [][]AssignmentView `json:"families,omitempty" msgpack:"families,omitempty"`
	Intervals  string             `json:"intervals,omitempty" msgpack:"intervals,omitempty"`
	Error      string             `json:"error,omitempty" msgpack:"error,omitempty"`
}

// ViewValue renders v for the wire.
func ViewValue(v Value, digits int) ValueView {
	vv := ValueView{Approx: v.ApproxString(digits), Real: v.IsReal()}
	if v.IsExact() {
		vv.Exact = v.String()
	}
	return vv
}

// View renders the step with digits significant digits.
func (s Step) View(digits int) StepView {
	v := StepView{Kind: s.Kind.String(), Variable: s.Variable}
	switch s.Kind {
	case StepGivenEquation:
		if eq := s.Given.Equation; eq != nil {
			v.LHS, v.RHS, v.Relation = eq.LHS.String(), eq.RHS.String(), "="
		} else {
			q := s.Given.Inequality
			v.LHS, v.RHS, v.Relation = q.LHS.String(), q.RHS.String(), string(q.Op)
		}
	case StepSimplified, StepFactored:
		v.Before, v.After, v.Relation = s.Before.String(), s.After.String(), string(s.Relation)
		for _, c := range s.Conditions {
			v.Conditions = append(v.Conditions, c.String())
		}
	case StepQuadraticDetail:
		q := s.Quadratic
		v.A, v.B, v.C, v.D = q.A.String(), q.B.String(), q.C.String(), q.D.String()
	case StepSolved, StepNumericRoots, StepSystemSolution:
		if s.Solution == nil {
			v.Intervals = s.Intervals.String()
			break
		}
		v.Status = s.Solution.Kind()
		switch sol := s.Solution.(type) {
		case *Underdetermined:
			v.Free = sol.Free
			for _, fam := range sol.Families {
				views := make([]AssignmentView, len(fam))
				for i, a := range fam {
					views[i] = AssignmentView{Symbol: a.Symbol, Expr: a.Expr.String()}
				}
				v.Families = append(v.Families, views)
			}
		case *Exact, *Numeric:
			if s.Kind == StepSystemSolution {
				for _, b := range Branches(sol) {
					views := make([]BindingView, len(b))
					for i, bind := range b {
						views[i] = BindingView{Symbol: bind.Symbol, Value: ViewValue(bind.Value, digits)}
					}
					v.Branches = append(v.Branches, views)
				}
				break
			}
			for _, r := range rootsOf(sol, s.Variable) {
				v.Roots = append(v.Roots, ViewValue(r, digits))
			}
		}
	case StepError:
		v.Error = s.Err.Error()
	}
	return v
}

// MarshalJSON encodes the step view at the default precision.
func (s Step) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.View(DefaultSignificantDigits))
}

// ViewSteps renders every step.
func ViewSteps(steps []Step, digits int) []StepView {
	out := make([]StepView, len(steps))
	for i, s := range steps {
		out[i] = s.View(digits)
	}
	return out
}

// Summary renders a terminal step as one line, such as "x = 2, x = -2" or
// "x in (-2, 2)". Other steps summarize to their kind.
func (v StepView) Summary() string {
	switch {
	case v.Error != "":
		return "Error: " + v.Error
	case v.Intervals != "":
		return v.Variable + " in " + v.Intervals
	case len(v.Roots) > 0:
		parts := make([]string, len(v.Roots))
		for i, r := range v.Roots {
			parts[i] = v.Variable + " = " + r.text()
		}
		return strings.Join(parts, ", ")
	case len(v.Branches) > 0:
		parts := make([]string, len(v.Branches))
		for i, b := range v.Branches {
			binds := make([]string, len(b))
			for j, bind := range b {
				binds[j] = bind.Symbol + " = " + bind.Value.text()
			}
			parts[i] = "{" + strings.Join(binds, ", ") + "}"
		}
		return strings.Join(parts, " or ")
	case len(v.Families) > 0:
		parts := make([]string, 0, len(v.Families[0]))
		for _, a := range v.Families[0] {
			parts = append(parts, a.Symbol+" = "+a.Expr)
		}
		return strings.Join(parts, ", ") + " for any " + strings.Join(v.Free, ", ")
	}
	switch v.Status {
	case "underdetermined":
		return "every " + strings.Join(v.Free, ", ") + " is a solution"
	case "inconsistent":
		return "no solution"
	case "numeric", "exact":
		return "no real solution"
	}
	return v.Kind
}

func (v ValueView) text() string {
	if v.Exact == "" {
		return v.Approx
	}
	if _, err := strconv.ParseFloat(v.Exact, 64); err == nil {
		return v.Exact
	}
	return v.Exact + " ≈ " + v.Approx
}
