package imports

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/simonhull/heron/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockParser returns one absolute import named after the file contents.
type mockParser struct {
	calls atomic.Int32
	fail  map[string]bool
}

func (m *mockParser) Parse(ctx context.Context, content []byte, path string) ([]Spec, error) {
	m.calls.Add(1)
	if m.fail[filepath.Base(path)] {
		return nil, ErrSyntax
	}
	return []Spec{NewAbsolute(string(content), path, 1)}, nil
}

func writeFiles(t *testing.T, contents map[string]string) (string, []string) {
	t.Helper()
	dir := t.TempDir()
	paths := make([]string, 0, len(contents))
	for name, body := range contents {
		p := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(p, []byte(body), 0644))
		paths = append(paths, p)
	}
	return dir, paths
}

func TestExtractor_ExtractAll(t *testing.T) {
	dir, paths := writeFiles(t, map[string]string{
		"a.py": "app.b",
		"b.py": "app.c",
		"c.py": "app.a",
		"d.py": "broken",
	})
	parser := &mockParser{fail: map[string]bool{"d.py": true}}

	ex := NewExtractor(parser, 2).WithLogger(logger.NewSilentLogger())
	got, err := ex.ExtractAll(context.Background(), append(paths, filepath.Join(dir, "missing.py")))
	require.NoError(t, err)

	assert.Len(t, got.Specs, 5)
	assert.Equal(t, "app.b", got.Specs[filepath.Join(dir, "a.py")][0].Name)
	assert.Empty(t, got.Specs[filepath.Join(dir, "d.py")])
	assert.Empty(t, got.Specs[filepath.Join(dir, "missing.py")])
	assert.ErrorIs(t, got.Failures[filepath.Join(dir, "d.py")], ErrSyntax)
	assert.True(t, errors.Is(got.Failures[filepath.Join(dir, "missing.py")], os.ErrNotExist))
	assert.Equal(t, 3, got.Count())
	assert.Equal(t, int32(4), parser.calls.Load())
}

func TestExtractor_RealParser(t *testing.T) {
	_, paths := writeFiles(t, map[string]string{
		"views.py": "from .models import User\nimport app.db\n",
	})

	ex := NewExtractor(NewPythonParser(0), 0).WithLogger(logger.NewSilentLogger())
	got, err := ex.ExtractAll(context.Background(), paths)
	require.NoError(t, err)

	specs := got.Specs[paths[0]]
	require.Len(t, specs, 2)
	assert.Equal(t, Relative{Dots: 1}, specs[0].Kind)
	assert.Equal(t, Absolute{}, specs[1].Kind)
}

func TestExtractor_SizeLimitChecksBeforeReading(t *testing.T) {
	_, paths := writeFiles(t, map[string]string{"big.py": "import os, sys, json\n"})

	ex := NewExtractor(NewPythonParser(4), 1).WithLogger(logger.NewSilentLogger())
	got, err := ex.ExtractAll(context.Background(), paths)
	require.NoError(t, err)

	assert.ErrorIs(t, got.Failures[paths[0]], ErrFileTooLarge)
}

func TestExtractor_Cancelled(t *testing.T) {
	_, paths := writeFiles(t, map[string]string{"a.py": "x"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewExtractor(&mockParser{}, 1).WithLogger(logger.NewSilentLogger()).ExtractAll(ctx, paths)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestExtractor_NoFiles(t *testing.T) {
	got, err := NewExtractor(&mockParser{}, 3).ExtractAll(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, got.Specs)
	assert.Zero(t, got.Count())
}
