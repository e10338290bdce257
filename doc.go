// Package gosolve is a step-by-step algebra engine for Go.
//
// It turns free-form text such as "x^2 - 4 = 0", "x + y = 2, x - y = 0" or
// "x^2 < 4" into an ordered list of solving steps and a solution set.
//
// Design goals:
//   - Exact rational arithmetic (math/big.Rat) with approximate values only
//     where a decimal literal or a numeric root finder produces them
//   - Canonical expression trees so equal inputs print identically
//   - Deterministic steps: the same request always renders the same output
//   - JSON and msgpack views for tool servers and agent backends
//   - Stateless Engine, safe to share between goroutines
//
// The pipeline is ParseInput, Solve, RenderSteps; Engine wires the three
// together with logging. SampleExpr evaluates an expression on a grid for
// plotting.
package gosolve
