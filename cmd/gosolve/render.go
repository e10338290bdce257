package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/vmihailenco/msgpack/v5"
	"golang.org/x/term"

	"github.com/njchilds90/gosolve"
)

// useColor resolves the --color flag against the output writer.
func useColor(mode string, out io.Writer) bool {
	switch mode {
	case "on":
		return true
	case "off":
		return false
	}
	f, ok := out.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

type palette struct {
	label, result, failure, muted *color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		label:   color.New(color.FgCyan, color.Bold),
		result:  color.New(color.FgGreen, color.Bold),
		failure: color.New(color.FgRed, color.Bold),
		muted:   color.New(color.Faint),
	}
	for _, c := range []*color.Color{p.label, p.result, p.failure, p.muted} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

// requestView is the wire form of one solve request.
type requestView struct {
	ID    string             `json:"id,omitempty" msgpack:"id,omitempty"`
	Input string             `json:"input" msgpack:"input"`
	Steps []gosolve.StepView `json:"steps" msgpack:"steps"`
}

type renderer struct {
	out    io.Writer
	format string
	colors palette
	digits int
}

func (a *app) renderer(out io.Writer) renderer {
	return renderer{
		out:    out,
		format: a.format,
		colors: newPalette(useColor(a.color, out)),
		digits: a.cfg.Engine.SignificantDigits,
	}
}

func (r renderer) encode(v interface{}) error {
	switch r.format {
	case "json":
		enc := json.NewEncoder(r.out)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "msgpack":
		return msgpack.NewEncoder(r.out).Encode(v)
	}
	return fmt.Errorf("unsupported format %q", r.format)
}

// requests renders solved requests. A single request is encoded as one
// object, a batch as an array in input order.
func (r renderer) requests(views []requestView) error {
	if r.format != "text" {
		if len(views) == 1 {
			return r.encode(views[0])
		}
		return r.encode(views)
	}
	for i, v := range views {
		if len(views) > 1 {
			if i > 0 {
				fmt.Fprintln(r.out)
			}
			fmt.Fprintf(r.out, "%s %s\n", r.colors.muted.Sprintf("[%d]", i+1), v.Input)
		}
		for _, s := range v.Steps {
			fmt.Fprintln(r.out, r.stepLine(s))
		}
	}
	return nil
}

func relation(rel string) string {
	if rel == "" {
		return "="
	}
	return rel
}

func (r renderer) stepLine(s gosolve.StepView) string {
	label := func(text string) string { return r.colors.label.Sprintf("%-10s", text) }
	switch s.Kind {
	case "GivenEquation":
		return label("Given") + " " + s.LHS + " " + s.Relation + " " + s.RHS
	case "Simplified":
		line := label("Simplify") + " " + s.After + " " + relation(s.Relation) + " 0"
		if len(s.Conditions) > 0 {
			conds := make([]string, len(s.Conditions))
			for i, c := range s.Conditions {
				conds[i] = c + " ≠ 0"
			}
			line += r.colors.muted.Sprint("  (" + strings.Join(conds, ", ") + ")")
		}
		return line
	case "Factored":
		return label("Factor") + " " + s.After + " " + relation(s.Relation) + " 0"
	case "QuadraticDetail":
		return label("Quadratic") + fmt.Sprintf(" a = %s, b = %s, c = %s, D = b^2 - 4ac = %s", s.A, s.B, s.C, s.D)
	case "NumericRoots":
		return label("Numeric") + " " + r.colors.result.Sprint(s.Summary())
	case "Error":
		return r.colors.failure.Sprint("Error") + "      " + s.Error
	}
	return label("Solution") + " " + r.colors.result.Sprint(s.Summary())
}

// sample renders a sampled function. Text output is a two-column table;
// undefined points print as "undefined".
func (r renderer) sample(s gosolve.Sample) error {
	view := s.View(r.digits)
	if r.format != "text" {
		return r.encode(view)
	}
	fmt.Fprintf(r.out, "%s\n", r.colors.label.Sprintf("%-14s %s", "x", "y"))
	for i, x := range view.X {
		y := "undefined"
		if view.Y[i] != nil {
			y = gosolve.FormatApprox(*view.Y[i], r.digits)
		}
		fmt.Fprintf(r.out, "%-14s %s\n", gosolve.FormatApprox(x, r.digits), y)
	}
	for _, root := range view.Roots {
		text := root.Approx
		if _, err := strconv.ParseFloat(root.Exact, 64); err == nil {
			text = root.Exact
		} else if root.Exact != "" {
			text = root.Exact + " ≈ " + root.Approx
		}
		fmt.Fprintf(r.out, "%s x = %s\n", r.colors.result.Sprint("root"), text)
	}
	return nil
}
