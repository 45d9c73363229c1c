package report

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simonhull/heron/pkg/analyzer"
)

func intPtr(n int) *int { return &n }

func sampleReport() *Report {
	r := New("/src/project", "verified")
	r.Graph = map[string][]string{
		"app.main":   {"app.models"},
		"app.models": {"app.views"},
		"app.views":  {"app.models"},
		"app.unused": {},
	}
	r.Cycles = []analyzer.Cycle{{"app.models", "app.views", "app.models"}}
	r.DeadModules = []string{"app.unused"}
	r.Metrics = map[string]analyzer.ModuleMetrics{
		"app.main":   {InDegree: 0, OutDegree: 1, Lines: intPtr(12)},
		"app.models": {InDegree: 2, OutDegree: 1, Lines: intPtr(40)},
		"app.views":  {InDegree: 1, OutDegree: 1},
		"app.unused": {InDegree: 0, OutDegree: 0, Lines: intPtr(3)},
	}
	r.FilesScanned = 4
	r.ImportsFound = 6
	r.EntryPoints = []string{"app.main"}
	r.Unresolved = []UnresolvedImport{
		{Module: "app.main", Import: "os", File: "/src/project/app/main.py", Line: 1},
		{Module: "app.views", Import: "app.modls", File: "/src/project/app/views.py", Line: 2, Suggestion: "app.models"},
	}
	return r
}

func TestNew(t *testing.T) {
	r := New("/src", "raw")

	_, err := uuid.Parse(r.RunID)
	require.NoError(t, err)
	assert.NotEqual(t, r.RunID, New("/src", "raw").RunID)
	assert.False(t, r.GeneratedAt.IsZero())
	assert.NotNil(t, r.Graph)
	assert.Zero(t, r.Edges())
}

func TestWriteReadJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "out", "report.json")
	r := sampleReport()

	require.NoError(t, WriteJSON(path, r))

	loaded, err := ReadJSON(path)
	require.NoError(t, err)
	assert.Equal(t, r.RunID, loaded.RunID)
	assert.Equal(t, r.Graph, loaded.Graph)
	assert.Equal(t, r.Cycles, loaded.Cycles)
	assert.Equal(t, r.Metrics, loaded.Metrics)
	assert.Equal(t, r.Unresolved, loaded.Unresolved)
	assert.True(t, r.GeneratedAt.Equal(loaded.GeneratedAt))
}

func TestWriteJSON_Layout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.json")
	require.NoError(t, WriteJSON(path, sampleReport()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	for _, key := range []string{"graph", "cycles", "dead_modules", "metrics", "files_scanned", "imports_found"} {
		assert.Contains(t, raw, key)
	}

	metrics := raw["metrics"].(map[string]any)
	assert.Contains(t, metrics["app.main"], "lines")
	assert.NotContains(t, metrics["app.views"], "lines", "unknown size is omitted")
	assert.Contains(t, string(data), "\n  \"graph\": {")
}

func TestReadJSON_Errors(t *testing.T) {
	dir := t.TempDir()
	notJSON := filepath.Join(dir, "bad.json")
	noGraph := filepath.Join(dir, "other.json")
	require.NoError(t, os.WriteFile(notJSON, []byte("{nope"), 0644))
	require.NoError(t, os.WriteFile(noGraph, []byte(`{"name": "package.json"}`), 0644))

	_, err := ReadJSON(notJSON)
	assert.ErrorIs(t, err, ErrNotReport)

	_, err = ReadJSON(noGraph)
	assert.ErrorIs(t, err, ErrNotReport)

	_, err = ReadJSON(filepath.Join(dir, "missing.json"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
