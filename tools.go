package gosolve

import (
	"encoding/json"
	"fmt"
	"strings"

	"fortio.org/safecast"
)

// ============================================================
// Tool Interface
// ============================================================

// ToolRequest is one JSON tool call.
type ToolRequest struct {
	Tool   string                 `json:"tool"`
	Params map[string]interface{} `json:"params"`
}

// ToolResponse carries either a result or an error.
type ToolResponse struct {
	Result interface{} `json:"result,omitempty"`
	String string      `json:"string,omitempty"`
	Error  string      `json:"error,omitempty"`
}

// HandleToolCall dispatches a tool request. Expression parameters may be
// given as text or as a JSON tree.
func (e *Engine) HandleToolCall(req ToolRequest) ToolResponse {
	getString := func(key string) (string, error) {
		v, ok := req.Params[key]
		if !ok {
			return "", fmt.Errorf("missing param: %s", key)
		}
		s, ok := v.(string)
		if !ok {
			return "", fmt.Errorf("param %s must be a string", key)
		}
		return s, nil
	}
	getExpr := func(key string) (Expr, error) {
		v, ok := req.Params[key]
		if !ok {
			return nil, fmt.Errorf("missing param: %s", key)
		}
		switch val := v.(type) {
		case string:
			return Parse(val)
		case map[string]interface{}:
			return FromJSON(val)
		}
		return nil, fmt.Errorf("param %s must be a string or an expression object", key)
	}
	getNumber := func(key string, def float64) (float64, error) {
		v, ok := req.Params[key]
		if !ok {
			return def, nil
		}
		f, ok := v.(float64)
		if !ok {
			return 0, fmt.Errorf("param %s must be a number", key)
		}
		return f, nil
	}
	respond := func(x Expr) ToolResponse {
		return ToolResponse{Result: x.toJSON(), String: x.String()}
	}
	fail := func(err error) ToolResponse { return ToolResponse{Error: err.Error()} }

	switch req.Tool {
	case "solve":
		text, err := getString("input")
		if err != nil {
			return fail(err)
		}
		report := e.Solve(text)
		views := report.Views(e.opts.SignificantDigits)
		resp := ToolResponse{Result: views, String: summarize(views)}
		if err := report.Err(); err != nil {
			resp.Error = err.Error()
		}
		return resp

	case "sample":
		text, err := getString("input")
		if err != nil {
			return fail(err)
		}
		eng := e
		opts := e.opts
		if opts.DomainMin, err = getNumber("min", opts.DomainMin); err != nil {
			return fail(err)
		}
		if opts.DomainMax, err = getNumber("max", opts.DomainMax); err != nil {
			return fail(err)
		}
		count, err := getNumber("count", float64(opts.SampleCount))
		if err != nil {
			return fail(err)
		}
		if opts.SampleCount, err = safecast.Convert[int](count); err != nil {
			return fail(fmt.Errorf("param count must be a whole number: %w", err))
		}
		if opts.DomainMin >= opts.DomainMax || opts.SampleCount < 2 {
			return fail(fmt.Errorf("invalid sample domain [%g, %g] with %d points", opts.DomainMin, opts.DomainMax, opts.SampleCount))
		}
		if opts != e.opts {
			eng = NewEngine(opts, e.log)
		}
		s, err := eng.Sample(text)
		if err != nil {
			return fail(err)
		}
		return ToolResponse{Result: s.View(opts.SignificantDigits), String: fmt.Sprintf("%d points, %d roots", len(s.X), len(s.Roots))}

	case "parse":
		x, err := getExpr("expr")
		if err != nil {
			return fail(err)
		}
		return respond(x)

	case "expand":
		x, err := getExpr("expr")
		if err != nil {
			return fail(err)
		}
		return respond(Expand(x))

	case "factor":
		x, err := getExpr("expr")
		if err != nil {
			return fail(err)
		}
		return respond(Factor(Expand(x)))

	case "free_symbols":
		x, err := getExpr("expr")
		if err != nil {
			return fail(err)
		}
		syms := FreeSymbols(x)
		return ToolResponse{Result: syms, String: strings.Join(syms, ", ")}

	case "mcp_spec":
		return ToolResponse{Result: MCPToolSpec(), String: "MCP tool specification"}
	}

	return ToolResponse{Error: fmt.Sprintf("unknown tool: %s", req.Tool)}
}

// summarize describes the outcome of a solve in one line.
func summarize(views []StepView) string {
	if len(views) == 0 {
		return ""
	}
	return views[len(views)-1].Summary()
}

// MCPToolSpec returns the tool schema for agent registration.
func MCPToolSpec() string {
	tools := []map[string]interface{}{
		ts("solve", "Solve equations, systems or inequalities given as text, one clause per line or comma", []string{"input"}, map[string]string{"input": "string"}),
		ts("sample", "Sample y = f(x) for plotting and mark its real roots. Optional: min, max, count", []string{"input"}, map[string]string{"input": "string", "min": "number", "max": "number", "count": "integer"}),
		ts("parse", "Parse text into an expression tree", []string{"expr"}, map[string]string{"expr": "string"}),
		ts("expand", "Algebraically expand expression", []string{"expr"}, map[string]string{"expr": "object"}),
		ts("factor", "Factor a univariate polynomial over the rationals", []string{"expr"}, map[string]string{"expr": "object"}),
		ts("free_symbols", "Return free symbol names", []string{"expr"}, map[string]string{"expr": "object"}),
		ts("mcp_spec", "Return this tool schema", []string{}, map[string]string{}),
	}
	spec := map[string]interface{}{"tools": tools}
	b, _ := json.MarshalIndent(spec, "", "  ")
	return string(b)
}

func ts(name, description string, required []string, props map[string]string) map[string]interface{} {
	properties := map[string]interface{}{}
	for k, typ := range props {
		properties[k] = map[string]interface{}{"type": typ}
	}
	return map[string]interface{}{
		"name":        name,
		"description": description,
		"inputSchema": map[string]interface{}{
			"type":       "object",
			"properties": properties,
			"required":   required,
		},
	}
}
