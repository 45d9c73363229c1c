package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simonhull/heron/pkg/analyzer"
	"github.com/simonhull/heron/pkg/config"
	"github.com/simonhull/heron/pkg/logger"
)

func writeProject(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for rel, body := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	}
	return root
}

var sampleProject = map[string]string{
	"main.py":            "import app.views\nimport os\n",
	"app/__init__.py":    "",
	"app/models.py":      "from . import views\nfrom .db import session\nfrom .views import render\n",
	"app/views.py":       "from .models import User\nimport app.modls\n",
	"app/db.py":          "import sqlalchemy\n",
	"app/legacy.py":      "import json\n",
	"app/broken.py":      "def oops(:\n",
	"venv/lib/site.py":   "import app.models\n",
	"scripts/seed.py":    "mod = __import__('app.db')\n",
	".hidden/ignored.py": "import app.legacy\n",
}

func run(t *testing.T, cfg *config.Config, root string) *Outcome {
	t.Helper()
	out, err := New(cfg).WithLogger(logger.NewSilentLogger()).Run(context.Background(), root)
	require.NoError(t, err)
	return out
}

func TestPipeline_Verified(t *testing.T) {
	root := writeProject(t, sampleProject)
	cfg := config.DefaultConfig()
	cfg.Analysis.EntryPoints = []string{"main"}

	out := run(t, cfg, root)
	rep := out.Report

	assert.Equal(t, map[string][]string{
		"app":          {},
		"app.broken":   {},
		"app.db":       {},
		"app.legacy":   {},
		"app.models":   {"app", "app.db", "app.views"},
		"app.views":    {"app.models"},
		"main":         {"app.views"},
		"scripts.seed": {"app.db"},
	}, rep.Graph)

	assert.Equal(t, []analyzer.Cycle{{"app.models", "app.views", "app.models"}}, rep.Cycles)
	assert.Equal(t, []string{"app.broken", "app.legacy", "scripts.seed"}, rep.DeadModules)
	assert.Equal(t, 8, rep.FilesScanned)
	assert.Equal(t, 10, rep.ImportsFound)
	assert.Equal(t, []string{"main"}, rep.EntryPoints)

	require.NotNil(t, rep.Metrics["main"].Lines)
	assert.Equal(t, 2, *rep.Metrics["main"].Lines)
	assert.Equal(t, 3, rep.Metrics["app.models"].OutDegree)
	assert.Equal(t, 2, rep.Metrics["app.db"].InDegree)

	assert.Contains(t, out.Failures, filepath.Join(root, "app", "broken.py"))

	suggestions := map[string]string{}
	for _, u := range rep.Unresolved {
		suggestions[u.Import] = u.Suggestion
	}
	assert.Equal(t, "app.models", suggestions["app.modls"])
	assert.Contains(t, suggestions, "os")
	assert.Empty(t, suggestions["os"])

	meta, ok := out.Graph.Meta("app.db")
	require.True(t, ok)
	assert.Equal(t, filepath.Join(root, "app", "db.py"), meta["file"])
}

func TestPipeline_RawMode(t *testing.T) {
	root := writeProject(t, sampleProject)
	cfg := config.DefaultConfig()
	cfg.Resolve.Mode = config.ModeRaw
	cfg.Analysis.CountLines = false

	out := run(t, cfg, root)

	assert.Equal(t, []string{".", ".db", ".views"}, out.Report.Graph["app.models"])
	assert.Equal(t, []string{"app.views", "os"}, out.Report.Graph["main"])
	assert.Contains(t, out.Report.Graph, "sqlalchemy")
	assert.Empty(t, out.Report.Unresolved)
	assert.Nil(t, out.Report.Metrics["main"].Lines)
}

func TestPipeline_Deterministic(t *testing.T) {
	root := writeProject(t, sampleProject)

	first := run(t, nil, root).Report
	second := run(t, nil, root).Report

	assert.Equal(t, first.Graph, second.Graph)
	assert.Equal(t, first.Cycles, second.Cycles)
	assert.Equal(t, first.DeadModules, second.DeadModules)
	assert.Equal(t, first.Metrics, second.Metrics)
	assert.NotEqual(t, first.RunID, second.RunID)
}

func TestPipeline_MissingRoot(t *testing.T) {
	_, err := New(nil).WithLogger(logger.NewSilentLogger()).Run(context.Background(), filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}
