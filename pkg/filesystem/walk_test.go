package filesystem

import (
	"bufio"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
)

func writeTree(t *testing.T, root string, files ...string) {
	t.Helper()
	for _, f := range files {
		path := filepath.Join(root, filepath.FromSlash(f))
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte("x = 1\n"), 0644); err != nil {
			t.Fatal(err)
		}
	}
}

func relPaths(t *testing.T, root string, paths []string) []string {
	t.Helper()
	absRoot, _ := filepath.Abs(root)
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		rel, err := filepath.Rel(absRoot, p)
		if err != nil {
			t.Fatal(err)
		}
		out = append(out, filepath.ToSlash(rel))
	}
	return out
}

func TestWalk(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root,
		"main.go",
		"node_modules/lib.js",
		".hidden/secret.txt",
		"internal/app.go",
		"internal/app.tmp",
	)

	var visited []string
	err := Walk(root, WalkOptions{IgnorePatterns: []string{"*.tmp"}}, func(path string, info os.FileInfo) error {
		if !info.IsDir() {
			visited = append(visited, path)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Walk() error = %v", err)
	}

	got := relPaths(t, root, visited)
	sort.Strings(got)
	want := []string{"internal/app.go", "main.go"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("Walk() visited %v, want %v", got, want)
	}
}

func TestSourceFiles(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root,
		"app/__init__.py",
		"app/models.py",
		"app/.internal/helpers.py",
		"app/__pycache__/models.cpython-312.py",
		"venv/lib/site.py",
		"pkg/.venv/lib/x.py",
		".tox/py.py",
		".setup.py",
		"build/gen.py",
		"README.md",
		"main.py",
	)

	files, err := SourceFiles(root, SourceOptions{})
	if err != nil {
		t.Fatalf("SourceFiles() error = %v", err)
	}

	got := relPaths(t, root, files)
	want := []string{
		"app/.internal/helpers.py",
		"app/__init__.py",
		"app/models.py",
		"build/gen.py",
		"main.py",
	}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("SourceFiles() = %v, want %v", got, want)
	}
	for _, f := range files {
		if !filepath.IsAbs(f) {
			t.Errorf("expected absolute path, got %s", f)
		}
	}
}

func TestSourceFiles_NotADirectory(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, "single.py")

	if _, err := SourceFiles(filepath.Join(root, "single.py"), SourceOptions{}); err == nil {
		t.Error("expected error when root is a file")
	}
	if _, err := SourceFiles(filepath.Join(root, "missing"), SourceOptions{}); err == nil {
		t.Error("expected error when root does not exist")
	}
}

func TestCountLines(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    int
		wantErr error
	}{
		{"empty", "", 0, nil},
		{"single unterminated", "import os", 1, nil},
		{"single terminated", "import os\n", 1, nil},
		{"three lines", "a\nb\nc", 3, nil},
		{"blank lines", "\n\n", 2, nil},
		{"crlf", "a\r\nb\r\n", 2, nil},
		{"lone cr", "a\rb", 2, nil},
		{"utf8", "名前 = 'héron'\n", 1, nil},
		{"invalid utf8", "a\n\xff\xfe\n", 0, ErrInvalidUTF8},
		{"truncated rune", "a\n\xe5\x90", 0, ErrInvalidUTF8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := countLines(bufio.NewReader(strings.NewReader(tt.content)))
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("countLines() error = %v, want %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("countLines() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestCountLines_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mod.py")
	if err := os.WriteFile(path, []byte("import a\nimport b\n"), 0644); err != nil {
		t.Fatal(err)
	}

	n, err := CountLines(path)
	if err != nil || n != 2 {
		t.Errorf("CountLines() = %d, %v; want 2, nil", n, err)
	}

	if _, err := CountLines(filepath.Join(t.TempDir(), "gone.py")); err == nil {
		t.Error("expected error for missing file")
	}
}
