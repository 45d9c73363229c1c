package imports

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, src string) []Spec {
	t.Helper()
	specs, err := NewPythonParser(0).Parse(context.Background(), []byte(src), "mod.py")
	require.NoError(t, err)
	return specs
}

// summary flattens specs to "kind text" strings for compact assertions.
func summary(specs []Spec) []string {
	out := make([]string, 0, len(specs))
	for _, s := range specs {
		out = append(out, s.Kind.String()+" "+s.Text())
	}
	return out
}

func TestPythonParser_ImportStatements(t *testing.T) {
	specs := parse(t, `import os
import app.models, app.views as views
import a.b.c as abc
`)

	assert.Equal(t, []string{
		"absolute os",
		"absolute app.models",
		"absolute app.views",
		"absolute a.b.c",
	}, summary(specs))
	assert.Equal(t, 1, specs[0].Line)
	assert.Equal(t, 2, specs[2].Line)
	assert.Equal(t, "mod.py", specs[0].File)
}

func TestPythonParser_FromImports(t *testing.T) {
	specs := parse(t, `from app.models import User, Group as G
from . import views
from .. import settings
from ..core.db import (
    session,
    engine,
)
from .utils import *
`)

	assert.Equal(t, []string{
		"absolute app.models",
		"relative(1) .",
		"relative(2) ..",
		"relative(2) ..core.db",
		"relative(1) .utils",
	}, summary(specs))

	assert.Equal(t, []string{"User", "Group"}, specs[0].Names)
	assert.Equal(t, "", specs[1].Name)
	assert.Equal(t, 1, specs[1].Dots())
	assert.Equal(t, "core.db", specs[3].Name)
	assert.Equal(t, []string{"session", "engine"}, specs[3].Names)
	assert.Equal(t, []string{"*"}, specs[4].Names)
}

func TestPythonParser_NestedImports(t *testing.T) {
	specs := parse(t, `def load():
    import json
    if True:
        from app import plugins
    return json

class Worker:
    def run(self):
        try:
            import fast_io
        except ImportError:
            import slow_io
`)

	assert.Equal(t, []string{
		"absolute json",
		"absolute app",
		"absolute fast_io",
		"absolute slow_io",
	}, summary(specs))
	assert.Equal(t, 2, specs[0].Line)
}

func TestPythonParser_DynamicImports(t *testing.T) {
	specs := parse(t, `import importlib
from importlib import import_module

a = __import__("app.plugins")
b = importlib.import_module('app.handlers')
c = import_module("app.tasks")
d = registry.import_module("app.extra")
e = importlib.import_module(name)
f = importlib.import_module(f"app.{name}")
g = __import__(b"bytes")
h = importlib.import_module(name="app.kw")
i = importlib.reload(mod)
`)

	assert.Equal(t, []string{
		"absolute importlib",
		"absolute importlib",
		"dynamic app.plugins",
		"dynamic app.handlers",
		"dynamic app.tasks",
		"dynamic app.extra",
	}, summary(specs))
	assert.Equal(t, 4, specs[2].Line)
}

func TestPythonParser_FutureImport(t *testing.T) {
	specs := parse(t, "from __future__ import annotations\nimport os\n")

	require.Len(t, specs, 2)
	assert.Equal(t, "__future__", specs[0].Name)
	assert.Equal(t, []string{"annotations"}, specs[0].Names)
}

func TestPythonParser_Errors(t *testing.T) {
	tests := []struct {
		name    string
		parser  *PythonParser
		content string
		wantErr error
	}{
		{"syntax error", NewPythonParser(0), "def broken(:\n    import os\n", ErrSyntax},
		{"too large", NewPythonParser(8), "import os, sys\n", ErrFileTooLarge},
		{"invalid utf8", NewPythonParser(0), "import os\n\xff\n", ErrInvalidContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.parser.Parse(context.Background(), []byte(tt.content), "bad.py")
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestPythonParser_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewPythonParser(0).Parse(ctx, []byte("import os\n"), "mod.py")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPythonParser_EmptyFile(t *testing.T) {
	assert.Empty(t, parse(t, ""))
	assert.Empty(t, parse(t, "# only a comment\n"))
}

func TestSpec_Text(t *testing.T) {
	tests := []struct {
		spec Spec
		want string
	}{
		{NewAbsolute("app.db", "f.py", 1), "app.db"},
		{NewRelative(2, "models", "f.py", 1), "..models"},
		{NewRelative(1, "", "f.py", 1), "."},
		{NewDynamic("app.plugins", "f.py", 1), "app.plugins"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.spec.Text())
	}
	assert.True(t, strings.Contains(NewRelative(3, "x", "f.py", 9).String(), "relative(3)"))
}
