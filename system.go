package gosolve

import (
	"fmt"
	"math"
	"sort"
)

// solveEquations is the system path: Gaussian elimination when every
// equation is linear in every symbol, substitution otherwise.
func solveEquations(eqs []*Equation, opts Options) *Outcome {
	residuals := make([]Expr, len(eqs))
	seen := map[string]struct{}{}
	for i, eq := range eqs {
		residuals[i] = Expand(eq.Residual())
		for _, side := range []Expr{eq.LHS, eq.RHS} {
			for _, name := range FreeSymbols(side) {
				seen[name] = struct{}{}
			}
		}
	}
	vars := make([]string, 0, len(seen))
	for name := range seen {
		vars = append(vars, name)
	}
	sort.Strings(vars)

	out := &Outcome{}
	if m, ok := linearMatrix(residuals, vars); ok {
		out.Degree = 1
		out.Solution = eliminate(m, vars)
		return out
	}
	s := &substitution{vars: vars, budget: len(residuals), opts: opts}
	if err := s.solve(residuals, nil, 0); err != nil {
		out.Err = solveErrorf("system", err)
		return out
	}
	out.Solution = s.result()
	return out
}

// ============================================================
// Linear systems
// ============================================================

// linearMatrix builds the augmented matrix [A | b] of A*vars = b, or
// reports false when some residual is not linear with numeric coefficients.
func linearMatrix(residuals []Expr, vars []string) ([][]*Num, bool) {
	col := make(map[string]int, len(vars))
	for i, v := range vars {
		col[v] = i
	}
	m := make([][]*Num, len(residuals))
	for r, e := range residuals {
		row := make([]*Num, len(vars)+1)
		for i := range row {
			row[i] = N(0)
		}
		terms := []Expr{e}
		if a, ok := e.(*Add); ok {
			terms = a.terms
		}
		for _, t := range terms {
			if n, ok := t.(*Num); ok {
				row[len(vars)] = numSub(row[len(vars)], n)
				continue
			}
			coeff, rest := splitCoeff(t)
			s, ok := rest.(*Sym)
			if !ok {
				return nil, false
			}
			j := col[s.name]
			row[j] = numAdd(row[j], coeff)
		}
		m[r] = row
	}
	return m, true
}

// negligible treats tiny approximate values as zero during elimination.
func negligible(n *Num) bool {
	return n.IsZero() || (n.approx && math.Abs(n.Float64()) < 1e-12)
}

// eliminate reduces m to reduced row echelon form with partial pivoting
// (largest magnitude first) and reads off the solution.
func eliminate(m [][]*Num, vars []string) Solution {
	nv := len(vars)
	var pivots []int
	row := 0
	for c := 0; c < nv && row < len(m); c++ {
		best := -1
		for r := row; r < len(m); r++ {
			if negligible(m[r][c]) {
				continue
			}
			if best < 0 || numCmp(numAbs(m[r][c]), numAbs(m[best][c])) > 0 {
				best = r
			}
		}
		if best < 0 {
			continue
		}
		m[row], m[best] = m[best], m[row]
		inv := numRecip(m[row][c])
		for j := c; j <= nv; j++ {
			m[row][j] = numMul(m[row][j], inv)
		}
		for r := range m {
			if r == row || negligible(m[r][c]) {
				continue
			}
			f := m[r][c]
			for j := c; j <= nv; j++ {
				m[r][j] = numSub(m[r][j], numMul(f, m[row][j]))
			}
		}
		pivots = append(pivots, c)
		row++
	}
	for r := row; r < len(m); r++ {
		if !negligible(m[r][nv]) {
			return &Inconsistent{}
		}
	}

	isPivot := make(map[int]int, len(pivots))
	for r, c := range pivots {
		isPivot[c] = r
	}
	if len(pivots) < nv {
		var free []string
		for c, v := range vars {
			if _, ok := isPivot[c]; !ok {
				free = append(free, v)
			}
		}
		family := make([]Assignment, 0, len(pivots))
		for r, c := range pivots {
			terms := []Expr{m[r][nv]}
			for j := 0; j < nv; j++ {
				if _, ok := isPivot[j]; ok || negligible(m[r][j]) {
					continue
				}
				terms = append(terms, MulOf(numNeg(m[r][j]), S(vars[j])))
			}
			family = append(family, Assignment{Symbol: vars[c], Expr: AddOf(terms...)})
		}
		return &Underdetermined{Free: free, Families: [][]Assignment{family}}
	}

	binds := make([]Binding, nv)
	for r, c := range pivots {
		binds[r] = Binding{Symbol: vars[c], Value: realValue(m[r][nv])}
	}
	return branchSolution([]Branch{newBranch(binds...)})
}

// ============================================================
// Substitution
// ============================================================

// maxSubstitutionDegree is the largest univariate degree a substitution
// step solves to branch on.
const maxSubstitutionDegree = 2

// substitution solves a non-linear system by eliminating one variable per
// pass. Each pass consumes one equation, so the pass budget is the
// equation count.
type substitution struct {
	vars     []string
	budget   int
	opts     Options
	branches [][]Assignment
}

func (s *substitution) solve(eqs []Expr, bound []Assignment, depth int) error {
	live := make([]Expr, 0, len(eqs))
	for _, e := range eqs {
		e = Expand(e)
		if len(FreeSymbols(e)) == 0 {
			n, ok := e.Eval()
			if ok && negligible(n) {
				continue
			}
			if !ok {
				if f, err := e.Evalf(nil); err == nil && math.Abs(f) < 1e-9 {
					continue
				}
			}
			return nil
		}
		live = append(live, e)
	}
	if len(live) == 0 {
		s.branches = append(s.branches, bound)
		return nil
	}
	if depth >= s.budget {
		return fmt.Errorf("%w: no reduction after %d passes", ErrUnsupportedSystem, depth)
	}

	for i, e := range live {
		for _, v := range FreeSymbols(e) {
			coeffs, ok := PolyCoeffs(e, v)
			if !ok || len(coeffs) == 0 || maxKey(coeffs) != 1 {
				continue
			}
			a := coeffs[1]
			if len(FreeSymbols(a)) > 0 {
				continue
			}
			if n, ok := a.(*Num); ok && negligible(n) {
				continue
			}
			c, ok := coeffs[0]
			if !ok {
				c = N(0)
			}
			val := Expand(MulOf(N(-1), c, PowOf(a, N(-1))))
			return s.solve(substituteAll(without(live, i), v, val), extend(bound, v, val), depth+1)
		}
	}

	for i, e := range live {
		syms := FreeSymbols(e)
		if len(syms) != 1 {
			continue
		}
		p, ok := polyFromExpr(e, syms[0])
		if !ok || p.degree() > maxSubstitutionDegree {
			continue
		}
		roots, _, err := polyRoots(p, s.opts)
		if err != nil {
			return err
		}
		rest := without(live, i)
		for _, r := range roots {
			if !r.IsReal() {
				continue
			}
			val, ok := r.Expr()
			if !ok {
				val = NFloat(r.Real())
			}
			if err := s.solve(substituteAll(rest, syms[0], val), extend(bound, syms[0], val), depth+1); err != nil {
				return err
			}
		}
		return nil
	}
	return fmt.Errorf("%w: no equation is linear in a variable or univariate of degree <= %d", ErrUnsupportedSystem, maxSubstitutionDegree)
}

// result back-substitutes each branch. Branches that leave a variable
// unassigned make the whole solution an underdetermined family.
func (s *substitution) result() Solution {
	if len(s.branches) == 0 {
		return &Inconsistent{}
	}
	var points []Branch
	var families [][]Assignment
	freeSet := map[string]struct{}{}
	for _, bound := range s.branches {
		resolved := make([]Assignment, len(bound))
		known := map[string]Expr{}
		for i := len(bound) - 1; i >= 0; i-- {
			e := bound[i].Expr
			for name, val := range known {
				e = e.Sub(name, val)
			}
			e = Expand(e)
			known[bound[i].Symbol] = e
			resolved[i] = Assignment{Symbol: bound[i].Symbol, Expr: e}
		}
		sort.Slice(resolved, func(i, j int) bool { return resolved[i].Symbol < resolved[j].Symbol })
		families = append(families, resolved)

		complete := true
		for _, v := range s.vars {
			if _, ok := known[v]; !ok {
				freeSet[v] = struct{}{}
				complete = false
			}
		}
		if !complete {
			continue
		}
		binds := make([]Binding, len(resolved))
		for i, a := range resolved {
			binds[i] = Binding{Symbol: a.Symbol, Value: realValue(a.Expr)}
		}
		points = append(points, newBranch(binds...))
	}
	if len(freeSet) > 0 {
		free := make([]string, 0, len(freeSet))
		for v := range freeSet {
			free = append(free, v)
		}
		sort.Strings(free)
		return &Underdetermined{Free: free, Families: families}
	}
	return branchSolution(points)
}

func maxKey(m map[int]Expr) int {
	k := 0
	for d := range m {
		if d > k {
			k = d
		}
	}
	return k
}

func without(es []Expr, i int) []Expr {
	out := make([]Expr, 0, len(es)-1)
	out = append(out, es[:i]...)
	return append(out, es[i+1:]...)
}

func substituteAll(es []Expr, name string, val Expr) []Expr {
	out := make([]Expr, len(es))
	for i, e := range es {
		out[i] = e.Sub(name, val)
	}
	return out
}

func extend(bound []Assignment, name string, val Expr) []Assignment {
	out := make([]Assignment, len(bound), len(bound)+1)
	copy(out, bound)
	return append(out, Assignment{Symbol: name, Expr: val})
}
