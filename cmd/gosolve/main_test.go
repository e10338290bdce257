package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"github.com/njchilds90/gosolve"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// run executes the CLI with color off and logging limited to errors.
func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("GOSOLVE_LOG_LEVEL", "error")
	var out bytes.Buffer
	root := newRootCmd()
	root.SetArgs(append([]string{"--color", "off"}, args...))
	root.SetIn(strings.NewReader(stdin))
	root.SetOut(&out)
	root.SetErr(&out)
	err := root.Execute()
	return out.String(), err
}

func kinds(steps []gosolve.StepView) []string {
	out := make([]string, len(steps))
	for i, s := range steps {
		out[i] = s.Kind
	}
	return out
}

func TestSolve_Text(t *testing.T) {
	out, err := run(t, "", "solve", "x^2 - 4 = 0")
	require.NoError(t, err)
	assert.Contains(t, out, "Given")
	assert.Contains(t, out, "D = b^2 - 4ac = 16")
	assert.Contains(t, out, "x = 2, x = -2")
}

func TestSolve_JSONStepOrder(t *testing.T) {
	out, err := run(t, "", "solve", "--format", "json", "x^2 - 4 = 0")
	require.NoError(t, err)

	var view requestView
	require.NoError(t, json.Unmarshal([]byte(out), &view))
	assert.Equal(t, "x^2 - 4 = 0", view.Input)
	assert.Equal(t, []string{"GivenEquation", "Simplified", "Factored", "QuadraticDetail", "Solved"}, kinds(view.Steps))
	assert.Equal(t, "16", view.Steps[3].D)
}

func TestSolve_BatchKeepsInputOrder(t *testing.T) {
	stdin := "x + 1 = 0\n\n2x = 4\nx^2 = 9\n"
	out, err := run(t, stdin, "solve", "--batch", "--format", "json")
	require.NoError(t, err)

	var views []requestView
	require.NoError(t, json.Unmarshal([]byte(out), &views))
	require.Len(t, views, 3)
	assert.Equal(t, []string{"x + 1 = 0", "2x = 4", "x^2 = 9"}, []string{views[0].Input, views[1].Input, views[2].Input})

	ids := map[string]bool{}
	for _, v := range views {
		require.NotEmpty(t, v.ID)
		ids[v.ID] = true
	}
	assert.Len(t, ids, 3)

	last := views[1].Steps[len(views[1].Steps)-1]
	require.Len(t, last.Roots, 1)
	assert.Equal(t, "2", last.Roots[0].Exact)
}

func TestSolve_FailedRequest(t *testing.T) {
	out, err := run(t, "", "solve", "x = = 2")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 1 requests failed")
	assert.Contains(t, out, "Error")
}

func TestSolve_Msgpack(t *testing.T) {
	out, err := run(t, "", "solve", "--format", "msgpack", "x + y = 2, x - y = 0")
	require.NoError(t, err)

	var view requestView
	require.NoError(t, msgpack.Unmarshal([]byte(out), &view))
	require.NotEmpty(t, view.Steps)
	last := view.Steps[len(view.Steps)-1]
	assert.Equal(t, "SystemSolution", last.Kind)
	assert.Equal(t, "{x = 1, y = 1}", last.Summary())
}

func TestSolve_RejectsUnknownFormat(t *testing.T) {
	_, err := run(t, "", "solve", "--format", "xml", "x = 1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported format")
}

func TestSample_JSONMarksUndefined(t *testing.T) {
	out, err := run(t, "", "sample", "--format", "json", "--min", "-1", "--max", "1", "--count", "3", "1/x")
	require.NoError(t, err)

	var view gosolve.SampleView
	require.NoError(t, json.Unmarshal([]byte(out), &view))
	assert.Equal(t, []float64{-1, 0, 1}, view.X)
	require.Len(t, view.Y, 3)
	assert.Nil(t, view.Y[1])
	require.NotNil(t, view.Y[0])
	assert.Equal(t, -1.0, *view.Y[0])
	assert.Empty(t, view.Roots)
}

func TestSample_Text(t *testing.T) {
	out, err := run(t, "", "sample", "--min", "-2", "--max", "2", "--count", "5", "y = x^2 - 1")
	require.NoError(t, err)
	assert.Contains(t, out, "root x = -1")
	assert.Contains(t, out, "root x = 1")
}

func TestVersion_JSON(t *testing.T) {
	out, err := run(t, "", "version", "--format", "json")
	require.NoError(t, err)

	var payload versionPayload
	require.NoError(t, json.Unmarshal([]byte(out), &payload))
	assert.Equal(t, "gosolve", payload.Tool)
	assert.Equal(t, Version, payload.Version)
}

func TestReadInput(t *testing.T) {
	text, err := readInput([]string{"x", "=", "1"}, "", nil)
	require.NoError(t, err)
	assert.Equal(t, "x = 1", text)

	_, err = readInput([]string{"x"}, "in.txt", nil)
	assert.Error(t, err)

	text, err = readInput(nil, "-", strings.NewReader("x^2 = 4\n"))
	require.NoError(t, err)
	assert.Equal(t, "x^2 = 4\n", text)

	assert.Equal(t, []string{"a = 1", "b = 2"}, splitBatch("  a = 1 \n\n\tb = 2\n"))
}

func TestToolMux(t *testing.T) {
	mux := newToolMux(gosolve.NewEngine(gosolve.DefaultOptions(), nil), zap.NewNop(), 1<<20)

	t.Run("solve", func(t *testing.T) {
		body := `{"tool":"solve","params":{"input":"x^2 - 4 = 0"}}`
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/tool", strings.NewReader(body)))

		require.Equal(t, http.StatusOK, rec.Code)
		assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
		var resp gosolve.ToolResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Empty(t, resp.Error)
		assert.Equal(t, "x = 2, x = -2", resp.String)
	})

	t.Run("unknown field", func(t *testing.T) {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/tool", strings.NewReader(`{"tool":"solve","extra":1}`)))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("trailing data", func(t *testing.T) {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/tool", strings.NewReader(`{"tool":"parse"} {}`)))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("method", func(t *testing.T) {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/tool", nil))
		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	})

	t.Run("schema and health", func(t *testing.T) {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/schema", nil))
		var schema map[string]interface{}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &schema))
		assert.Len(t, schema["tools"], 7)

		rec = httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
		var health map[string]interface{}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &health))
		assert.Equal(t, "ok", health["status"])
	})
}
