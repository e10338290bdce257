package gosolve

import (
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// Options are the process-wide numeric settings. They are read-only once an
// Engine is built; a zero field takes its default.
type Options struct {
	// Sampling domain and grid size.
	DomainMin   float64
	DomainMax   float64
	SampleCount int

	// Durand–Kerner iteration budget and convergence threshold.
	MaxIterations int
	Tolerance     float64
	// ImagTolerance is the imaginary magnitude below which a root is real.
	ImagTolerance float64

	SignificantDigits int

	// Bracketing scan for non-polynomial equations.
	RootSearchMin float64
	RootSearchMax float64
	ScanPoints    int
}

func DefaultOptions() Options {
	return Options{
		DomainMin:         -10,
		DomainMax:         10,
		SampleCount:       400,
		MaxIterations:     100,
		Tolerance:         1e-10,
		ImagTolerance:     1e-8,
		SignificantDigits: DefaultSignificantDigits,
		RootSearchMin:     -100,
		RootSearchMax:     100,
		ScanPoints:        2000,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.DomainMin == 0 && o.DomainMax == 0 {
		o.DomainMin, o.DomainMax = d.DomainMin, d.DomainMax
	}
	if o.SampleCount <= 0 {
		o.SampleCount = d.SampleCount
	}
	if o.MaxIterations <= 0 {
		o.MaxIterations = d.MaxIterations
	}
	if o.Tolerance <= 0 {
		o.Tolerance = d.Tolerance
	}
	if o.ImagTolerance <= 0 {
		o.ImagTolerance = d.ImagTolerance
	}
	if o.SignificantDigits <= 0 {
		o.SignificantDigits = d.SignificantDigits
	}
	if o.RootSearchMin == 0 && o.RootSearchMax == 0 {
		o.RootSearchMin, o.RootSearchMax = d.RootSearchMin, d.RootSearchMax
	}
	if o.ScanPoints <= 0 {
		o.ScanPoints = d.ScanPoints
	}
	return o
}

// Engine runs requests end to end. It holds no mutable state and is safe
// for concurrent use.
type Engine struct {
	opts Options
	log  *zap.Logger
}

// NewEngine returns an engine; a nil logger disables logging.
func NewEngine(opts Options, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{opts: opts.withDefaults(), log: logger}
}

func (e *Engine) Options() Options { return e.opts }

// Report is the result of one solve request.
type Report struct {
	System  *System
	Outcome *Outcome
	Steps   []Step
}

// Err returns the request-level failure, if any.
func (r Report) Err() error {
	if r.Outcome == nil {
		return nil
	}
	return r.Outcome.Err
}

// Views renders the steps at the engine precision.
func (r Report) Views(digits int) []StepView { return ViewSteps(r.Steps, digits) }

// Solve parses text, solves it and renders the steps. Failures, parse
// errors included, are reported as a single Error step.
func (e *Engine) Solve(text string) Report {
	sys, err := ParseInput(text)
	if err != nil {
		e.log.Warn("parse failed", zap.Error(err))
		out := &Outcome{Err: err}
		return Report{Outcome: out, Steps: RenderSteps(&System{}, out)}
	}
	e.log.Debug("parsed input",
		zap.Int("equations", len(sys.Equations)),
		zap.Int("inequalities", len(sys.Inequalities)),
		zap.Int("filtered", sys.Filtered),
		zap.Strings("symbols", sys.Symbols))

	out := Solve(sys, e.opts)
	if out.Err != nil {
		e.log.Warn("solve failed", zap.Stringer("path", out.Path), zap.Error(out.Err))
	} else {
		e.log.Debug("solved",
			zap.Stringer("path", out.Path),
			zap.String("variable", out.Variable),
			zap.Int("degree", out.Degree),
			zap.String("solution", out.describe()))
	}
	return Report{System: sys, Outcome: out, Steps: RenderSteps(sys, out)}
}

// Sample parses "y = f(x)" or a bare expression and samples it over the
// configured domain. The sampled symbol is the sole free symbol, or x for
// a constant.
func (e *Engine) Sample(text string) (Sample, error) {
	sys, err := ParseInput(text)
	if err != nil {
		return Sample{}, err
	}
	if len(sys.Givens) != 1 || sys.Givens[0].Equation == nil {
		return Sample{}, fmt.Errorf("sample: %w", ErrNoValidInput)
	}
	eq := sys.Givens[0].Equation
	expr := eq.LHS
	if s, ok := eq.LHS.(*Sym); ok && s.name == "y" && !hasSymbol(eq.RHS, "y") {
		expr = eq.RHS
	} else if !isNumEqual(eq.RHS, 0) {
		expr = eq.Residual()
	}

	syms := FreeSymbols(expr)
	symbol := "x"
	switch len(syms) {
	case 0:
	case 1:
		symbol = syms[0]
	default:
		return Sample{}, fmt.Errorf("sample %s: %w", expr, ErrNotUnivariate)
	}

	s, err := SampleExpr(expr, symbol, e.opts)
	if err != nil {
		e.log.Warn("sample roots failed", zap.String("expr", expr.String()), zap.Error(err))
		return s, err
	}
	e.log.Debug("sampled",
		zap.String("expr", expr.String()),
		zap.Int("points", len(s.X)),
		zap.Int("defined", s.Defined()),
		zap.Int("roots", len(s.Roots)))
	return s, nil
}

// IsDomainError reports whether err only marks an undefined point.
func IsDomainError(err error) bool { return errors.Is(err, ErrDomain) }
