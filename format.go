package gosolve

import (
	"math"
	"math/big"
	"strconv"
	"strings"
)

// DefaultSignificantDigits is the presentation precision of approximate values.
const DefaultSignificantDigits = 5

// Precedence levels used to decide parenthesization in String.
const (
	precAdd = iota + 1
	precMul
	precPow
	precAtom
)

func precedence(e Expr) int {
	switch v := e.(type) {
	case *Add:
		return precAdd
	case *Mul:
		return precMul
	case *Num:
		if v.IsNegative() || (!v.approx && !v.IsInteger()) {
			return precMul
		}
		return precAtom
	case *Pow:
		if n, ok := v.exp.(*Num); ok && !n.approx {
			if n.IsNegative() {
				return precMul
			}
			if n.val.Cmp(big.NewRat(1, 2)) == 0 {
				return precAtom
			}
		}
		return precPow
	}
	return precAtom
}

func wrap(e Expr, min int) string {
	if precedence(e) < min {
		return "(" + e.String() + ")"
	}
	return e.String()
}

func (n *Num) String() string {
	if n.approx {
		return formatFloat(n.Float64())
	}
	if n.val.IsInt() {
		return n.val.Num().String()
	}
	return n.val.RatString()
}

// formatFloat renders an approximate value in shortest round-trip form,
// always distinguishable from an exact integer.
func formatFloat(f float64) string {
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eEnN") {
		s += ".0"
	}
	return s
}

func addString(a *Add) string {
	var sb strings.Builder
	for i, t := range a.terms {
		body, neg := termString(t)
		switch {
		case i == 0 && neg:
			sb.WriteString("-")
		case i > 0 && neg:
			sb.WriteString(" - ")
		case i > 0:
			sb.WriteString(" + ")
		}
		sb.WriteString(body)
	}
	return sb.String()
}

// termString renders a summand without its leading sign.
func termString(t Expr) (string, bool) {
	switch v := t.(type) {
	case *Num:
		if v.IsNegative() {
			return numNeg(v).String(), true
		}
	case *Mul:
		return mulString(v.factors)
	}
	return t.String(), false
}

// mulString renders factors as numerator/denominator, pulling negative
// powers and the coefficient denominator below the line.
func mulString(factors []Expr) (string, bool) {
	var num, den []string
	neg := false
	rest := factors
	if c, ok := factors[0].(*Num); ok {
		rest = factors[1:]
		if c.IsNegative() {
			neg = true
			c = numNeg(c)
		}
		switch {
		case c.approx:
			if !c.IsOne() || len(rest) == 0 {
				num = append(num, c.String())
			}
		default:
			if c.val.Num().Cmp(big.NewInt(1)) != 0 || len(rest) == 0 {
				num = append(num, c.val.Num().String())
			}
			if !c.IsInteger() {
				den = append(den, c.val.Denom().String())
			}
		}
	}
	for _, f := range rest {
		if p, ok := f.(*Pow); ok {
			if e, ok := p.exp.(*Num); ok && !e.approx && e.IsNegative() {
				inv := &Pow{base: p.base, exp: numNeg(e)}
				if inv.exp.(*Num).IsOne() {
					den = append(den, wrap(p.base, precPow))
				} else {
					den = append(den, wrap(inv, precPow))
				}
				continue
			}
		}
		num = append(num, wrap(f, precMul+1))
	}
	body := "1"
	if len(num) > 0 {
		body = strings.Join(num, "*")
	}
	switch len(den) {
	case 0:
		return body, neg
	case 1:
		return body + "/" + den[0], neg
	}
	return body + "/(" + strings.Join(den, "*") + ")", neg
}

func powString(p *Pow) string {
	if e, ok := p.exp.(*Num); ok && !e.approx {
		if e.IsNegative() {
			body, _ := mulString([]Expr{p})
			return body
		}
		if e.val.Cmp(big.NewRat(1, 2)) == 0 {
			return "sqrt(" + p.base.String() + ")"
		}
	}
	return wrap(p.base, precAtom) + "^" + wrap(p.exp, precAtom)
}

// FormatApprox renders f with exactly digits significant digits. Values
// with a decimal exponent outside [-5, 5) use scientific notation.
func FormatApprox(f float64, digits int) string {
	if digits <= 0 {
		digits = DefaultSignificantDigits
	}
	switch {
	case math.IsNaN(f):
		return "undefined"
	case math.IsInf(f, 1):
		return "oo"
	case math.IsInf(f, -1):
		return "-oo"
	case f == 0:
		return "0"
	}
	sci := strconv.FormatFloat(f, 'e', digits-1, 64)
	exp, err := strconv.Atoi(sci[strings.IndexByte(sci, 'e')+1:])
	if err != nil || exp < -5 || exp >= 5 {
		return sci
	}
	decimals := digits - 1 - exp
	if decimals < 0 {
		decimals = 0
	}
	return strconv.FormatFloat(f, 'f', decimals, 64)
}

// FormatComplex renders z as "re + im i" or "re - im i", the sign taken
// from the imaginary part. Real values render without an imaginary part.
func FormatComplex(z complex128, digits int) string {
	re, im := real(z), imag(z)
	if im == 0 {
		return FormatApprox(re, digits)
	}
	sign := " + "
	if im < 0 {
		sign = " - "
		im = -im
	}
	return FormatApprox(re, digits) + sign + FormatApprox(im, digits) + "i"
}
